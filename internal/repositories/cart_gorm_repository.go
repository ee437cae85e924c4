package repositories

import (
	"context"
	"fmt"

	"xivttw/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{db: db}
}

func ownerScope(owner models.CartOwner) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if owner.UserID != "" {
			return db.Where("user_id = ?", owner.UserID)
		}
		return db.Where("session_id = ? AND (user_id = '' OR user_id IS NULL)", owner.SessionID)
	}
}

func (r *GORMCartRepository) ListByOwner(ctx context.Context, owner models.CartOwner) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.db.WithContext(ctx).Scopes(ownerScope(owner)).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list cart for %s: %w", owner.Key(), err)
	}
	return items, nil
}

func (r *GORMCartRepository) FindLine(ctx context.Context, owner models.CartOwner, productID, size, color string) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).Scopes(ownerScope(owner)).
		Where("product_id = ? AND size = ? AND color = ?", productID, size, color).
		First(&item).Error
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("cart line for product %s not found: %w", productID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find cart line: %w", err)
	}
	return &item, nil
}

func (r *GORMCartRepository) Create(ctx context.Context, item *models.CartItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create cart line: %w", err)
	}
	return nil
}

func (r *GORMCartRepository) UpdateQuantity(ctx context.Context, owner models.CartOwner, id string, quantity int) error {
	res := r.db.WithContext(ctx).Model(&models.CartItem{}).Scopes(ownerScope(owner)).
		Where("id = ?", id).Update("quantity", quantity)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart line %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart line with ID %s not found for update: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GORMCartRepository) Delete(ctx context.Context, owner models.CartOwner, id string) error {
	res := r.db.WithContext(ctx).Scopes(ownerScope(owner)).Delete(&models.CartItem{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete cart line %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart line with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GORMCartRepository) DeleteByOwner(ctx context.Context, owner models.CartOwner) error {
	if err := r.db.WithContext(ctx).Scopes(ownerScope(owner)).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear cart for %s: %w", owner.Key(), err)
	}
	return nil
}
