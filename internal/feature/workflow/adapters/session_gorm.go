// Package adapters provides repository implementations for the workflow feature.
package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"brandai_backend/internal/feature/workflow/domain"
	"brandai_backend/internal/feature/workflow/domain/entity"
	"brandai_backend/internal/feature/workflow/usecase"
	"brandai_backend/internal/platform/db"
)

// sessionGorm is a GORM implementation of the SessionRepository interface.
// It works with both the sqlite and postgres drivers.
type sessionGorm struct {
	db  *gorm.DB
	now func() time.Time
}

// Compile-time check to ensure sessionGorm implements SessionRepository.
var _ usecase.SessionRepository = (*sessionGorm)(nil)

// NewSessionGorm creates a new instance of sessionGorm.
func NewSessionGorm(db *gorm.DB) *sessionGorm {
	return &sessionGorm{db: db, now: time.Now}
}

// Get retrieves an unexpired session by its ID.
func (r *sessionGorm) Get(ctx context.Context, id string) (*entity.Session, error) {
	var model SessionModel
	if err := r.db.WithContext(ctx).
		Where("id = ? AND expires_at > ?", id, r.now()).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, err
	}
	return model.ToEntity()
}

// Save inserts the session or overwrites the stored row with the same ID.
func (r *sessionGorm) Save(ctx context.Context, s *entity.Session) error {
	model, err := SessionModelFromEntity(s)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Create(model).Error
	if err == nil || !db.IsDuplicateKey(err) {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&SessionModel{}).
		Where("id = ?", model.ID).
		Updates(map[string]any{
			"step":       model.Step,
			"payload":    model.Payload,
			"updated_at": r.now(),
			"expires_at": model.ExpiresAt,
		}).Error
}

// Delete removes a session by its ID. Deleting a missing session is not an error.
func (r *sessionGorm) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&SessionModel{}, "id = ?", id).Error
}

// DeleteExpired removes all expired sessions from storage.
func (r *sessionGorm) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at <= ?", r.now()).
		Delete(&SessionModel{})
	return result.RowsAffected, result.Error
}
