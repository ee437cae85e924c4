package services

import (
	"context"
	"errors"
	"log/slog"

	"xivttw/internal/models"
	"xivttw/internal/payment"
	"xivttw/internal/repositories"
	"xivttw/pkg/rabbitmq"
)

// Confirmation results.
const (
	ConfirmSuccess = "success"
	ConfirmPending = "pending"
	ConfirmFailed  = "failed"
)

// Confirmation is the outcome shown on the order confirmation page.
type Confirmation struct {
	Result       string        `json:"result"`
	Reference    string        `json:"reference,omitempty"`
	OrderID      string        `json:"order_id,omitempty"`
	OrderStatus  string        `json:"order_status,omitempty"`
	OrderUpdated bool          `json:"order_updated"`
	Order        *models.Order `json:"order,omitempty"`
}

// PaymentService confirms payments returned from the gateway.
type PaymentService struct {
	log       *slog.Logger
	orders    repositories.OrderRepository
	gateway   payment.Gateway
	publisher EventPublisher
}

// NewPaymentService creates a new PaymentService. publisher may be nil.
func NewPaymentService(log *slog.Logger, orders repositories.OrderRepository, gateway payment.Gateway, publisher EventPublisher) *PaymentService {
	return &PaymentService{log: log, orders: orders, gateway: gateway, publisher: publisher}
}

// Confirm verifies reference with the gateway and marks the order paid on
// success. Without a reference, orderID only reports the stored state.
// Gateway failures never mutate the order.
func (s *PaymentService) Confirm(ctx context.Context, reference, orderID string) (*Confirmation, error) {
	const op = "services.PaymentService.Confirm"
	logger := s.log.With(slog.String("op", op), slog.String("reference", reference))

	if reference == "" {
		if orderID == "" {
			return nil, ErrNoReference
		}
		order, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		// Public by order id: no customer details.
		result := ConfirmPending
		switch order.PaymentStatus {
		case models.PaymentPaid:
			result = ConfirmSuccess
		case models.PaymentFailed:
			result = ConfirmFailed
		}
		return &Confirmation{Result: result, OrderID: order.ID, OrderStatus: order.Status()}, nil
	}

	v, err := s.gateway.Verify(ctx, reference)
	if err != nil {
		logger.Error("payment verification failed", slog.Any("error", err))
		return &Confirmation{Result: ConfirmFailed, Reference: reference, OrderID: orderID}, nil
	}
	if v.Status != payment.StatusSuccess {
		logger.Info("payment not successful", slog.String("status", v.Status))
		return &Confirmation{Result: ConfirmFailed, Reference: reference, OrderID: firstNonEmpty(v.OrderID, orderID)}, nil
	}

	conf := &Confirmation{Result: ConfirmSuccess, Reference: reference}
	order, err := s.resolveOrder(ctx, v)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			logger.Warn("payment verified but no order matched", slog.String("metadata_order_id", v.OrderID))
			return conf, nil
		}
		return nil, err
	}
	conf.OrderID = order.ID

	if order.PaymentStatus != models.PaymentPaid {
		if err := s.orders.MarkPaid(ctx, order.ID); err != nil {
			logger.Error("failed to mark order paid", slog.String("order_id", order.ID), slog.Any("error", err))
			return nil, err
		}
		order.PaymentStatus = models.PaymentPaid
		conf.OrderUpdated = true
		logger.Info("order paid", slog.String("order_id", order.ID))
		if s.publisher != nil {
			if err := s.publisher.PublishEvent(rabbitmq.EventOrderPaid, order); err != nil {
				logger.Error("failed to publish order event", slog.String("event", rabbitmq.EventOrderPaid), slog.Any("error", err))
			}
		}
	}
	conf.Order = order
	return conf, nil
}

func (s *PaymentService) resolveOrder(ctx context.Context, v *payment.Verification) (*models.Order, error) {
	if v.OrderID != "" {
		order, err := s.orders.GetByID(ctx, v.OrderID)
		if err == nil || !errors.Is(err, repositories.ErrNotFound) {
			return order, err
		}
	}
	return s.orders.GetByReference(ctx, v.Reference)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
