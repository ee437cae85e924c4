package repositories

import (
	"context"
	"fmt"

	"xivttw/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContactRepository defines the interface for contact message access.
type ContactRepository interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
	List(ctx context.Context) ([]models.ContactMessage, error)
	SetRead(ctx context.Context, id string, read bool) error
}

// GORMContactRepository is a GORM implementation of ContactRepository.
type GORMContactRepository struct {
	db *gorm.DB
}

// NewGORMContactRepository creates a new instance of GORMContactRepository.
func NewGORMContactRepository(db *gorm.DB) *GORMContactRepository {
	return &GORMContactRepository{db: db}
}

func (r *GORMContactRepository) Create(ctx context.Context, msg *models.ContactMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return fmt.Errorf("failed to create contact message: %w", err)
	}
	return nil
}

// List returns every message, newest first.
func (r *GORMContactRepository) List(ctx context.Context) ([]models.ContactMessage, error) {
	var msgs []models.ContactMessage
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&msgs).Error; err != nil {
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}
	return msgs, nil
}

func (r *GORMContactRepository) SetRead(ctx context.Context, id string, read bool) error {
	res := r.db.WithContext(ctx).Model(&models.ContactMessage{}).Where("id = ?", id).Update("read", read)
	if res.Error != nil {
		return fmt.Errorf("failed to update contact message %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("contact message with ID %s not found: %w", id, ErrNotFound)
	}
	return nil
}
