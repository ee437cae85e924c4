package services_test

import (
	"context"
	"fmt"
	"testing"

	"xivttw/internal/models"
	"xivttw/internal/payment"
	"xivttw/internal/repositories"
	"xivttw/internal/services"
	"xivttw/pkg/rabbitmq"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func seedPendingOrder(t *testing.T, orders *repositories.MockOrderRepository, reference string) *models.Order {
	t.Helper()
	ctx := context.Background()
	stored, created, err := orders.CreateIfAbsent(ctx, &models.Order{
		CustomerName:      "Ada Obi",
		CustomerEmail:     "ada@example.com",
		PaymentStatus:     models.PaymentPending,
		FulfillmentStatus: models.FulfillmentUnfulfilled,
		TotalAmount:       decimal.RequireFromString("129.60"),
	})
	require.NoError(t, err)
	require.True(t, created)
	if reference != "" {
		require.NoError(t, orders.AttachPayment(ctx, stored.ID, reference, "https://pay/"+reference))
	}
	return stored
}

func TestPaymentService_ConfirmSuccess(t *testing.T) {
	ctx := context.Background()
	orders := repositories.NewMockOrderRepository()
	gateway := new(MockGateway)
	publisher := new(MockPublisher)
	svc := services.NewPaymentService(discardLogger(), orders, gateway, publisher)

	order := seedPendingOrder(t, orders, "BLVCK_1_ABC")
	gateway.On("Verify", mock.Anything, "BLVCK_1_ABC").
		Return(&payment.Verification{Status: payment.StatusSuccess, Reference: "BLVCK_1_ABC", Amount: 12960, OrderID: order.ID}, nil).Once()
	publisher.On("PublishEvent", rabbitmq.EventOrderPaid, mock.AnythingOfType("*models.Order")).Return(nil).Once()

	conf, err := svc.Confirm(ctx, "BLVCK_1_ABC", "")
	require.NoError(t, err)
	assert.Equal(t, services.ConfirmSuccess, conf.Result)
	assert.True(t, conf.OrderUpdated)
	assert.Equal(t, order.ID, conf.OrderID)

	stored, err := orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, stored.Status())

	// confirming again does not republish
	gateway.On("Verify", mock.Anything, "BLVCK_1_ABC").
		Return(&payment.Verification{Status: payment.StatusSuccess, Reference: "BLVCK_1_ABC", OrderID: order.ID}, nil).Once()
	conf, err = svc.Confirm(ctx, "BLVCK_1_ABC", "")
	require.NoError(t, err)
	assert.False(t, conf.OrderUpdated)

	gateway.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestPaymentService_ConfirmFallsBackToReference(t *testing.T) {
	ctx := context.Background()
	orders := repositories.NewMockOrderRepository()
	gateway := new(MockGateway)
	svc := services.NewPaymentService(discardLogger(), orders, gateway, nil)

	order := seedPendingOrder(t, orders, "REF-2")
	gateway.On("Verify", mock.Anything, "REF-2").
		Return(&payment.Verification{Status: payment.StatusSuccess, Reference: "REF-2"}, nil).Once()

	conf, err := svc.Confirm(ctx, "REF-2", "")
	require.NoError(t, err)
	assert.True(t, conf.OrderUpdated)
	assert.Equal(t, order.ID, conf.OrderID)
}

func TestPaymentService_ConfirmWithoutMatchingOrder(t *testing.T) {
	ctx := context.Background()
	gateway := new(MockGateway)
	svc := services.NewPaymentService(discardLogger(), repositories.NewMockOrderRepository(), gateway, nil)

	gateway.On("Verify", mock.Anything, "REF-3").
		Return(&payment.Verification{Status: payment.StatusSuccess, Reference: "REF-3"}, nil).Once()

	conf, err := svc.Confirm(ctx, "REF-3", "")
	require.NoError(t, err)
	assert.Equal(t, services.ConfirmSuccess, conf.Result)
	assert.False(t, conf.OrderUpdated)
}

func TestPaymentService_ConfirmFailedLeavesOrder(t *testing.T) {
	ctx := context.Background()
	orders := repositories.NewMockOrderRepository()
	gateway := new(MockGateway)
	svc := services.NewPaymentService(discardLogger(), orders, gateway, nil)

	order := seedPendingOrder(t, orders, "REF-4")
	gateway.On("Verify", mock.Anything, "REF-4").
		Return(&payment.Verification{Status: payment.StatusFailed, Reference: "REF-4", OrderID: order.ID}, nil).Once()
	gateway.On("Verify", mock.Anything, "REF-5").
		Return(nil, fmt.Errorf("%w: timeout", payment.ErrGateway)).Once()

	conf, err := svc.Confirm(ctx, "REF-4", "")
	require.NoError(t, err)
	assert.Equal(t, services.ConfirmFailed, conf.Result)
	assert.Equal(t, order.ID, conf.OrderID)

	conf, err = svc.Confirm(ctx, "REF-5", order.ID)
	require.NoError(t, err)
	assert.Equal(t, services.ConfirmFailed, conf.Result)

	stored, err := orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status())
}

func TestPaymentService_ConfirmByOrderID(t *testing.T) {
	ctx := context.Background()
	orders := repositories.NewMockOrderRepository()
	gateway := new(MockGateway)
	svc := services.NewPaymentService(discardLogger(), orders, gateway, nil)

	order := seedPendingOrder(t, orders, "")

	conf, err := svc.Confirm(ctx, "", order.ID)
	require.NoError(t, err)
	assert.Equal(t, services.ConfirmPending, conf.Result)
	assert.Equal(t, models.StatusPending, conf.OrderStatus)
	assert.False(t, conf.OrderUpdated)
	assert.Nil(t, conf.Order, "customer details are not exposed by order id")
	assert.Empty(t, conf.Reference)

	require.NoError(t, orders.MarkPaid(ctx, order.ID))
	conf, err = svc.Confirm(ctx, "", order.ID)
	require.NoError(t, err)
	assert.Equal(t, services.ConfirmSuccess, conf.Result)
	assert.Equal(t, models.StatusPaid, conf.OrderStatus)
	assert.Nil(t, conf.Order)

	_, err = svc.Confirm(ctx, "", "")
	assert.ErrorIs(t, err, services.ErrNoReference)

	_, err = svc.Confirm(ctx, "", "missing")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	gateway.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
}
