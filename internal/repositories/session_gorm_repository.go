package repositories

import (
	"context"
	"fmt"
	"time"

	"xivttw/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMSessionRepository is a GORM implementation of SessionRepository.
type GORMSessionRepository struct {
	db *gorm.DB
}

// NewGORMSessionRepository creates a new instance of GORMSessionRepository.
func NewGORMSessionRepository(db *gorm.DB) *GORMSessionRepository {
	return &GORMSessionRepository{db: db}
}

func (r *GORMSessionRepository) Create(ctx context.Context, session *models.AdminSession) error {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *GORMSessionRepository) Get(ctx context.Context, id string) (*models.AdminSession, error) {
	var s models.AdminSession
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("session not found: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

func (r *GORMSessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.db.WithContext(ctx).Delete(&models.AdminSession{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *GORMSessionRepository) List(ctx context.Context) ([]models.AdminSession, error) {
	var sessions []models.AdminSession
	if err := r.db.WithContext(ctx).Order("expires_at ASC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// GORMAttemptRepository is a GORM implementation of AttemptRepository.
type GORMAttemptRepository struct {
	db *gorm.DB
}

// NewGORMAttemptRepository creates a new instance of GORMAttemptRepository.
func NewGORMAttemptRepository(db *gorm.DB) *GORMAttemptRepository {
	return &GORMAttemptRepository{db: db}
}

func (r *GORMAttemptRepository) Get(ctx context.Context, identity string) (*models.LoginAttempt, error) {
	var a models.LoginAttempt
	res := r.db.WithContext(ctx).Where("identity = ?", identity).Limit(1).Find(&a)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to get login attempts: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return &models.LoginAttempt{Identity: identity}, nil
	}
	return &a, nil
}

func (r *GORMAttemptRepository) Save(ctx context.Context, attempt *models.LoginAttempt) error {
	attempt.UpdatedAt = time.Now()
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "identity"}},
		DoUpdates: clause.AssignmentColumns([]string{"failures", "locked_until", "updated_at"}),
	}).Create(attempt).Error
	if err != nil {
		return fmt.Errorf("failed to save login attempts: %w", err)
	}
	return nil
}

func (r *GORMAttemptRepository) Reset(ctx context.Context, identity string) error {
	if err := r.db.WithContext(ctx).Delete(&models.LoginAttempt{}, "identity = ?", identity).Error; err != nil {
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}
	return nil
}

// GORMAdminUserRepository is a GORM implementation of AdminUserRepository.
type GORMAdminUserRepository struct {
	db *gorm.DB
}

// NewGORMAdminUserRepository creates a new instance of GORMAdminUserRepository.
func NewGORMAdminUserRepository(db *gorm.DB) *GORMAdminUserRepository {
	return &GORMAdminUserRepository{db: db}
}

// Create creates a new admin user in the database.
func (r *GORMAdminUserRepository) Create(ctx context.Context, user *models.AdminUser) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("email '%s' already registered: %w", user.Email, ErrDuplicate)
		}
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	return nil
}

// GetByEmail retrieves an admin user by their email from the database.
func (r *GORMAdminUserRepository) GetByEmail(ctx context.Context, email string) (*models.AdminUser, error) {
	var user models.AdminUser
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("user with email %s not found: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return &user, nil
}
