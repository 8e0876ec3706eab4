package adapters

import (
	"encoding/json"
	"fmt"
	"time"

	"brandai_backend/internal/feature/workflow/domain/entity"
)

// SessionModel is the GORM model for the workflow_sessions table.
// The session body is stored as JSON; only the columns used in queries are split out.
type SessionModel struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Step      string    `gorm:"size:32;not null"`
	Payload   []byte    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
}

// TableName returns the table name for GORM.
func (SessionModel) TableName() string {
	return "workflow_sessions"
}

// ToEntity converts the GORM model to a domain entity.
func (m *SessionModel) ToEntity() (*entity.Session, error) {
	var s entity.Session
	if err := json.Unmarshal(m.Payload, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session %s: %w", m.ID, err)
	}
	return &s, nil
}

// SessionModelFromEntity converts a domain entity to a GORM model.
func SessionModelFromEntity(s *entity.Session) (*SessionModel, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session %s: %w", s.ID, err)
	}
	return &SessionModel{
		ID:        s.ID,
		Step:      string(s.Step),
		Payload:   payload,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		ExpiresAt: s.ExpiresAt,
	}, nil
}
