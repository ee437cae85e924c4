package repositories

import (
	"context"

	"xivttw/internal/models"
)

// SessionRepository stores admin sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *models.AdminSession) error
	Get(ctx context.Context, id string) (*models.AdminSession, error)
	// Delete is idempotent; removing an unknown session is not an error.
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.AdminSession, error)
}

// AttemptRepository stores consecutive failed login counters.
type AttemptRepository interface {
	// Get returns the counter for identity, or a zero counter if none exists.
	Get(ctx context.Context, identity string) (*models.LoginAttempt, error)
	Save(ctx context.Context, attempt *models.LoginAttempt) error
	Reset(ctx context.Context, identity string) error
}

// AdminUserRepository defines the interface for back-office account access.
type AdminUserRepository interface {
	Create(ctx context.Context, user *models.AdminUser) error
	GetByEmail(ctx context.Context, email string) (*models.AdminUser, error)
}
