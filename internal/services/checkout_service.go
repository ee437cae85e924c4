package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"xivttw/internal/models"
	"xivttw/internal/payment"
	"xivttw/internal/repositories"
	"xivttw/pkg/rabbitmq"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CheckoutState is a step of the checkout flow.
type CheckoutState string

const (
	StateFormEditing      CheckoutState = "form_editing"
	StateSubmitting       CheckoutState = "submitting"
	StateOrderCreated     CheckoutState = "order_created"
	StatePaymentInitiated CheckoutState = "payment_initiated"
	StateRedirected       CheckoutState = "redirected"
	StateError            CheckoutState = "error"
)

// StateFor maps a checkout error to the state the flow stopped in.
func StateFor(err error) CheckoutState {
	var verr *ValidationError
	switch {
	case err == nil:
		return StateRedirected
	case errors.As(err, &verr), errors.Is(err, ErrEmptyCart):
		return StateFormEditing
	default:
		return StateError
	}
}

// EventPublisher publishes order events. *rabbitmq.Client satisfies it.
type EventPublisher interface {
	PublishEvent(eventType string, data interface{}) error
}

// Pricing holds the shipping and tax rules applied at checkout.
type Pricing struct {
	ShippingFee       decimal.Decimal
	FreeShippingAbove decimal.Decimal
	TaxRate           decimal.Decimal
}

// DefaultPricing is 10 flat shipping, free above 100, and 8% tax.
func DefaultPricing() Pricing {
	return Pricing{
		ShippingFee:       decimal.NewFromInt(10),
		FreeShippingAbove: decimal.NewFromInt(100),
		TaxRate:           decimal.RequireFromString("0.08"),
	}
}

// Totals computes shipping, tax and total for a subtotal.
func (p Pricing) Totals(subtotal decimal.Decimal) (shipping, tax, total decimal.Decimal) {
	shipping = p.ShippingFee
	if subtotal.GreaterThan(p.FreeShippingAbove) {
		shipping = decimal.Zero
	}
	tax = subtotal.Mul(p.TaxRate).Round(2)
	total = subtotal.Add(shipping).Add(tax)
	return shipping, tax, total
}

// CheckoutInput is the submitted checkout form.
type CheckoutInput struct {
	FirstName           string `json:"firstName" validate:"required,min=2,max=100"`
	LastName            string `json:"lastName" validate:"required,min=2,max=100"`
	Email               string `json:"email" validate:"required,email"`
	Phone               string `json:"phone" validate:"required,min=10,max=40"`
	Address             string `json:"address" validate:"required,min=10"`
	City                string `json:"city" validate:"required,min=2,max=100"`
	State               string `json:"state" validate:"required,min=2,max=100"`
	ZipCode             string `json:"zipCode" validate:"required,min=5,max=20"`
	Country             string `json:"country" validate:"required,min=2,max=100"`
	PaymentMethod       string `json:"paymentMethod" validate:"required,oneof=squadco"`
	SpecialInstructions string `json:"specialInstructions" validate:"max=1000"`
	IdempotencyKey      string `json:"idempotencyKey" validate:"omitempty,max=64"`
}

// CheckoutResult is returned once the customer can be sent to the gateway.
type CheckoutResult struct {
	Order       *models.Order `json:"order"`
	CheckoutURL string        `json:"checkout_url"`
	Reference   string        `json:"reference"`
	State       CheckoutState `json:"state"`
}

// CheckoutConfig holds checkout settings.
type CheckoutConfig struct {
	Pricing     Pricing
	Currency    string
	CallbackURL string
	Now         func() time.Time
}

// CheckoutService turns a cart into a pending order and a gateway checkout.
type CheckoutService struct {
	log       *slog.Logger
	carts     *CartService
	orders    repositories.OrderRepository
	gateway   payment.Gateway
	publisher EventPublisher
	cfg       CheckoutConfig
	validate  *validator.Validate
}

// NewCheckoutService creates a new CheckoutService. publisher may be nil.
func NewCheckoutService(log *slog.Logger, cfg CheckoutConfig, carts *CartService, orders repositories.OrderRepository, gateway payment.Gateway, publisher EventPublisher) *CheckoutService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Pricing == (Pricing{}) {
		cfg.Pricing = DefaultPricing()
	}
	return &CheckoutService{
		log:       log,
		carts:     carts,
		orders:    orders,
		gateway:   gateway,
		publisher: publisher,
		cfg:       cfg,
		validate:  newValidator(),
	}
}

// NewIdempotencyKey issues a key for one checkout form.
func (s *CheckoutService) NewIdempotencyKey() string {
	return uuid.New().String()
}

// Checkout validates the form, records a pending order and starts payment.
func (s *CheckoutService) Checkout(ctx context.Context, owner models.CartOwner, in CheckoutInput) (*CheckoutResult, error) {
	const op = "services.CheckoutService.Checkout"
	logger := s.log.With(slog.String("op", op), slog.String("owner", owner.Key()))

	logger.Debug("checkout submitted", slog.String("state", string(StateSubmitting)))
	in = normalizeCheckout(in)
	if err := s.validate.Struct(in); err != nil {
		return nil, NewValidationError(err)
	}

	cart, err := s.carts.View(ctx, owner)
	if err != nil {
		return nil, err
	}
	if err := checkSellable(cart); err != nil {
		logger.Info("checkout rejected", slog.String("reason", err.Error()))
		return nil, err
	}

	order := s.buildOrder(in, cart)
	stored, created, err := s.orders.CreateIfAbsent(ctx, order)
	if err != nil {
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	logger = logger.With(slog.String("order_id", stored.ID))
	if created {
		logger.Debug("order recorded", slog.String("state", string(StateOrderCreated)))
	} else {
		logger.Info("checkout resubmitted", slog.String("status", stored.Status()))
		if stored.PaymentURL != "" || stored.PaymentStatus == models.PaymentPaid {
			return &CheckoutResult{
				Order:       stored,
				CheckoutURL: stored.PaymentURL,
				Reference:   stored.PaymentReference,
				State:       StateRedirected,
			}, nil
		}
	}

	reference := payment.NewReference(s.cfg.Now())
	started, err := s.gateway.Initialize(ctx, payment.InitializeRequest{
		Amount:      stored.TotalAmount,
		Email:       stored.CustomerEmail,
		Currency:    s.cfg.Currency,
		Reference:   reference,
		CallbackURL: s.cfg.CallbackURL,
		Metadata: payment.Metadata{
			OrderID:      stored.ID,
			CustomerName: stored.CustomerName,
			Items:        stored.Items,
		},
	})
	if err != nil {
		logger.Error("payment initialization failed", slog.Any("error", err))
		if !errors.Is(err, payment.ErrGateway) {
			err = fmt.Errorf("%w: %v", payment.ErrGateway, err)
		}
		return nil, err
	}
	if started.Reference != "" {
		reference = started.Reference
	}
	logger.Debug("payment initialized", slog.String("state", string(StatePaymentInitiated)))

	if err := s.orders.AttachPayment(ctx, stored.ID, reference, started.CheckoutURL); err != nil {
		logger.Error("failed to attach payment reference, removing order", slog.Any("error", err))
		if delErr := s.orders.Delete(ctx, stored.ID); delErr != nil {
			logger.Error("failed to remove orphaned order", slog.Any("error", delErr))
		}
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	stored.PaymentReference = reference
	stored.PaymentURL = started.CheckoutURL

	s.publish(logger, rabbitmq.EventOrderCreated, stored)
	logger.Info("checkout redirected to gateway", slog.String("reference", reference), slog.String("total", stored.TotalAmount.StringFixed(2)))
	return &CheckoutResult{
		Order:       stored,
		CheckoutURL: started.CheckoutURL,
		Reference:   reference,
		State:       StateRedirected,
	}, nil
}

func (s *CheckoutService) buildOrder(in CheckoutInput, cart *CartView) *models.Order {
	items := make([]models.OrderItem, 0, len(cart.Lines))
	for _, l := range cart.Lines {
		items = append(items, models.OrderItem{
			ProductID:   l.ProductID,
			ProductName: l.ProductName,
			Quantity:    l.Quantity,
			Price:       l.Price,
			Size:        l.Size,
			Color:       l.Color,
		})
	}
	shipping, tax, total := s.cfg.Pricing.Totals(cart.Total)
	return &models.Order{
		IdempotencyKey:      in.IdempotencyKey,
		CustomerName:        in.FirstName + " " + in.LastName,
		CustomerEmail:       in.Email,
		CustomerPhone:       in.Phone,
		ShippingAddress:     in.Address,
		ShippingCity:        in.City,
		ShippingState:       in.State,
		ShippingZipCode:     in.ZipCode,
		ShippingCountry:     in.Country,
		PaymentMethod:       in.PaymentMethod,
		PaymentStatus:       models.PaymentPending,
		FulfillmentStatus:   models.FulfillmentUnfulfilled,
		SpecialInstructions: in.SpecialInstructions,
		Subtotal:            cart.Total,
		ShippingCost:        shipping,
		TaxAmount:           tax,
		TotalAmount:         total,
		Items:               items,
	}
}

func (s *CheckoutService) publish(logger *slog.Logger, eventType string, order *models.Order) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishEvent(eventType, order); err != nil {
		logger.Error("failed to publish order event", slog.String("event", eventType), slog.Any("error", err))
	}
}

// checkSellable rejects carts holding lines whose product was removed or
// deactivated after it was added. A cart with nothing sellable is empty.
func checkSellable(cart *CartView) error {
	fields := map[string]string{}
	for _, line := range cart.Lines {
		if !line.Available {
			fields["items."+line.ID] = fmt.Sprintf("Product %s is no longer available", line.ProductID)
		}
	}
	if len(fields) == len(cart.Lines) {
		return ErrEmptyCart
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func normalizeCheckout(in CheckoutInput) CheckoutInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.ZipCode = strings.TrimSpace(in.ZipCode)
	in.Country = strings.TrimSpace(in.Country)
	if in.Country == "" {
		in.Country = "Nigeria"
	}
	if in.PaymentMethod == "" {
		in.PaymentMethod = "squadco"
	}
	// A form without a key is a one-off submission.
	if in.IdempotencyKey == "" {
		in.IdempotencyKey = uuid.New().String()
	}
	return in
}
