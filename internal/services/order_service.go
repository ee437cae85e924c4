package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"xivttw/internal/models"
	"xivttw/internal/repositories"

	"github.com/shopspring/decimal"
)

// OrderService handles back-office order management.
type OrderService struct {
	log    *slog.Logger
	orders repositories.OrderRepository
}

// NewOrderService creates a new OrderService.
func NewOrderService(log *slog.Logger, orders repositories.OrderRepository) *OrderService {
	return &OrderService{log: log, orders: orders}
}

// GetAllOrders lists orders newest first.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.orders.List(ctx, models.OrderFilter{})
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	return s.orders.GetByID(ctx, id)
}

// GetOrdersByStatus filters on the derived status.
func (s *OrderService) GetOrdersByStatus(ctx context.Context, status string) ([]models.Order, error) {
	return s.orders.List(ctx, models.OrderFilter{Status: status})
}

// GetOrdersByDateRange returns orders created within [from, to].
func (s *OrderService) GetOrdersByDateRange(ctx context.Context, from, to time.Time) ([]models.Order, error) {
	if to.Before(from) {
		return nil, &ValidationError{Fields: map[string]string{"to": "Field 'to' failed on the 'gtefield' tag"}}
	}
	return s.orders.List(ctx, models.OrderFilter{From: &from, To: &to})
}

// UpdateFulfillmentStatus moves an order along the fulfillment machine.
func (s *OrderService) UpdateFulfillmentStatus(ctx context.Context, id, status string) (*models.Order, error) {
	const op = "services.OrderService.UpdateFulfillmentStatus"
	if !models.ValidFulfillmentStatus(status) {
		return nil, &ValidationError{Fields: map[string]string{"status": "Field 'status' failed on the 'oneof' tag"}}
	}
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next := models.FulfillmentStatus(status)
	if !models.CanTransition(order.PaymentStatus, order.FulfillmentStatus, next) {
		return nil, fmt.Errorf("%w: %s to %s with payment %s", ErrInvalidTransition, order.FulfillmentStatus, next, order.PaymentStatus)
	}
	if err := s.orders.UpdateFulfillment(ctx, id, next); err != nil {
		return nil, err
	}
	s.log.Info("order fulfillment updated",
		slog.String("op", op),
		slog.String("order_id", id),
		slog.String("from", string(order.FulfillmentStatus)),
		slog.String("to", status),
	)
	order.FulfillmentStatus = next
	return order, nil
}

// DeleteOrder deletes an order by its ID.
func (s *OrderService) DeleteOrder(ctx context.Context, id string) error {
	return s.orders.Delete(ctx, id)
}

// Revenue sums the totals of paid orders.
func (s *OrderService) Revenue(ctx context.Context) (decimal.Decimal, error) {
	orders, err := s.orders.List(ctx, models.OrderFilter{})
	if err != nil {
		return decimal.Zero, err
	}
	return paidRevenue(orders), nil
}

func paidRevenue(orders []models.Order) decimal.Decimal {
	total := decimal.Zero
	for _, o := range orders {
		if o.PaymentStatus == models.PaymentPaid {
			total = total.Add(o.TotalAmount)
		}
	}
	return total
}
