package repositories

import (
	"context"

	"xivttw/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByReference(ctx context.Context, reference string) (*models.Order, error)
	// CreateIfAbsent inserts the order unless one with the same idempotency
	// key exists, in which case the stored order is returned with created=false.
	CreateIfAbsent(ctx context.Context, order *models.Order) (stored *models.Order, created bool, err error)
	AttachPayment(ctx context.Context, id, reference, paymentURL string) error
	MarkPaid(ctx context.Context, id string) error
	UpdateFulfillment(ctx context.Context, id string, status models.FulfillmentStatus) error
	Delete(ctx context.Context, id string) error
}

// matchesStatus reports whether the order carries the combined status.
func matchesStatus(o models.Order, status string) bool {
	return status == "" || o.Status() == status
}
