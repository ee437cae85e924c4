package repositories

import (
	"context"

	"xivttw/internal/models"
)

// CartRepository defines the interface for cart line data access.
// Every call is scoped to a single owner.
type CartRepository interface {
	ListByOwner(ctx context.Context, owner models.CartOwner) ([]models.CartItem, error)
	FindLine(ctx context.Context, owner models.CartOwner, productID, size, color string) (*models.CartItem, error)
	Create(ctx context.Context, item *models.CartItem) error
	UpdateQuantity(ctx context.Context, owner models.CartOwner, id string, quantity int) error
	Delete(ctx context.Context, owner models.CartOwner, id string) error
	DeleteByOwner(ctx context.Context, owner models.CartOwner) error
}
