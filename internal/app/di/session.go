package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	workflowadapters "brandai_backend/internal/feature/workflow/adapters"
	"brandai_backend/internal/feature/workflow/usecase"
	"brandai_backend/internal/platform/session"
)

// NewSessionRepository creates a SessionRepository implementation.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to the GORM store (sqlite or postgres).
func NewSessionRepository(rdb *redis.Client, db *gorm.DB) usecase.SessionRepository {
	if rdb != nil {
		return session.NewSessionRedis(rdb, session.DefaultPrefix)
	}
	return workflowadapters.NewSessionGorm(db)
}
