package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"xivttw/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
	now    func() time.Time
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
		now:    time.Now,
	}
}

// List returns orders matching the filter, newest first.
func (r *MockOrderRepository) List(_ context.Context, filter models.OrderFilter) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		if !matchesStatus(order, filter.Status) {
			continue
		}
		if filter.From != nil && order.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && order.CreatedAt.After(*filter.To) {
			continue
		}
		orderList = append(orderList, order)
	}
	sort.Slice(orderList, func(i, j int) bool {
		return orderList[i].CreatedAt.After(orderList[j].CreatedAt)
	})
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s not found: %w", id, ErrNotFound)
	}
	return &order, nil
}

func (r *MockOrderRepository) GetByReference(_ context.Context, reference string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, order := range r.orders {
		if reference != "" && order.PaymentReference == reference {
			o := order
			return &o, nil
		}
	}
	return nil, fmt.Errorf("order with reference %s not found: %w", reference, ErrNotFound)
}

// CreateIfAbsent adds a new order unless its idempotency key is taken.
func (r *MockOrderRepository) CreateIfAbsent(_ context.Context, order *models.Order) (*models.Order, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if order.IdempotencyKey == "" {
		order.IdempotencyKey = order.ID
	}
	for _, existing := range r.orders {
		if existing.IdempotencyKey == order.IdempotencyKey {
			o := existing
			return &o, false, nil
		}
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = r.now()
	}
	order.UpdatedAt = r.now()
	r.orders[order.ID] = *order
	stored := *order
	return &stored, true, nil
}

func (r *MockOrderRepository) AttachPayment(_ context.Context, id, reference, paymentURL string) error {
	return r.update(id, "payment update", func(o *models.Order) {
		o.PaymentReference = reference
		o.PaymentURL = paymentURL
	})
}

func (r *MockOrderRepository) MarkPaid(_ context.Context, id string) error {
	return r.update(id, "status update", func(o *models.Order) {
		o.PaymentStatus = models.PaymentPaid
	})
}

// UpdateFulfillment updates the fulfillment status of an order.
func (r *MockOrderRepository) UpdateFulfillment(_ context.Context, id string, status models.FulfillmentStatus) error {
	return r.update(id, "status update", func(o *models.Order) {
		o.FulfillmentStatus = status
	})
}

func (r *MockOrderRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return fmt.Errorf("order with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	delete(r.orders, id)
	return nil
}

func (r *MockOrderRepository) update(id, what string, fn func(*models.Order)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s not found for %s: %w", id, what, ErrNotFound)
	}
	fn(&order)
	order.UpdatedAt = r.now()
	r.orders[id] = order
	return nil
}
