package repositories

import (
	"context"
	"fmt"

	"xivttw/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{db: db}
}

// statusScope translates a combined status into column conditions.
func statusScope(status string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch status {
		case "":
			return db
		case models.StatusPending:
			return db.Where("fulfillment_status = ? AND payment_status <> ?", models.FulfillmentUnfulfilled, models.PaymentPaid)
		case models.StatusPaid:
			return db.Where("fulfillment_status = ? AND payment_status = ?", models.FulfillmentUnfulfilled, models.PaymentPaid)
		default:
			return db.Where("fulfillment_status = ?", status)
		}
	}
}

func (r *GORMOrderRepository) List(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	q := r.db.WithContext(ctx).Scopes(statusScope(filter.Status)).Order("created_at DESC")
	if filter.From != nil {
		q = q.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("created_at <= ?", *filter.To)
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("order with ID %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

func (r *GORMOrderRepository) GetByReference(ctx context.Context, reference string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).First(&order, "payment_reference = ?", reference).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("order with reference %s not found: %w", reference, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by reference %s: %w", reference, err)
	}
	return &order, nil
}

func (r *GORMOrderRepository) CreateIfAbsent(ctx context.Context, order *models.Order) (*models.Order, bool, error) {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.IdempotencyKey == "" {
		order.IdempotencyKey = order.ID
	}

	var (
		stored  models.Order
		created bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("idempotency_key = ?", order.IdempotencyKey).Limit(1).Find(&stored)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}
		stored, created = *order, true
		return nil
	})
	if err != nil {
		if isDuplicate(err) {
			// Lost a race with a concurrent submit of the same key.
			if lookupErr := r.db.WithContext(ctx).First(&stored, "idempotency_key = ?", order.IdempotencyKey).Error; lookupErr == nil {
				return &stored, false, nil
			}
		}
		return nil, false, fmt.Errorf("failed to create order: %w", err)
	}
	return &stored, created, nil
}

func (r *GORMOrderRepository) AttachPayment(ctx context.Context, id, reference, paymentURL string) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).
		Updates(map[string]interface{}{"payment_reference": reference, "payment_url": paymentURL})
	if res.Error != nil {
		return fmt.Errorf("failed to attach payment to order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s not found for payment update: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GORMOrderRepository) MarkPaid(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).
		Update("payment_status", models.PaymentPaid)
	if res.Error != nil {
		return fmt.Errorf("failed to mark order %s paid: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s not found for status update: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GORMOrderRepository) UpdateFulfillment(ctx context.Context, id string, status models.FulfillmentStatus) error {
	res := r.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).
		Update("fulfillment_status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update order status for order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s not found for status update: %w", id, ErrNotFound)
	}
	return nil
}

func (r *GORMOrderRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Order{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	return nil
}
