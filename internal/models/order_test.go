package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestOrder_Status(t *testing.T) {
	tests := []struct {
		name        string
		payment     PaymentStatus
		fulfillment FulfillmentStatus
		want        string
	}{
		{"new order", PaymentPending, FulfillmentUnfulfilled, StatusPending},
		{"failed payment stays pending", PaymentFailed, FulfillmentUnfulfilled, StatusPending},
		{"paid", PaymentPaid, FulfillmentUnfulfilled, StatusPaid},
		{"processing", PaymentPaid, FulfillmentProcessing, StatusProcessing},
		{"shipped", PaymentPaid, FulfillmentShipped, StatusShipped},
		{"delivered", PaymentPaid, FulfillmentDelivered, StatusDelivered},
		{"cancelled wins", PaymentPaid, FulfillmentCancelled, StatusCancelled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Order{PaymentStatus: tt.payment, FulfillmentStatus: tt.fulfillment}
			assert.Equal(t, tt.want, o.Status())
		})
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(PaymentPaid, FulfillmentUnfulfilled, FulfillmentProcessing))
	assert.True(t, CanTransition(PaymentPaid, FulfillmentShipped, FulfillmentDelivered))
	assert.True(t, CanTransition(PaymentPending, FulfillmentUnfulfilled, FulfillmentCancelled))

	assert.False(t, CanTransition(PaymentPending, FulfillmentUnfulfilled, FulfillmentProcessing), "unpaid orders cannot ship")
	assert.False(t, CanTransition(PaymentPaid, FulfillmentDelivered, FulfillmentCancelled), "delivered is terminal")
	assert.False(t, CanTransition(PaymentPaid, FulfillmentCancelled, FulfillmentProcessing), "cancelled is terminal")
	assert.False(t, CanTransition(PaymentPaid, FulfillmentUnfulfilled, FulfillmentDelivered))
}

func TestOrder_ItemCount(t *testing.T) {
	o := Order{Items: []OrderItem{
		{ProductID: "a", Quantity: 2, Price: decimal.NewFromInt(10)},
		{ProductID: "b", Quantity: 3, Price: decimal.NewFromInt(5)},
	}}
	assert.Equal(t, 5, o.ItemCount())
}

func TestCartOwner_Valid(t *testing.T) {
	assert.True(t, CartOwner{UserID: "u"}.Valid())
	assert.True(t, CartOwner{SessionID: "s"}.Valid())
	assert.False(t, CartOwner{}.Valid())
	assert.False(t, CartOwner{UserID: "u", SessionID: "s"}.Valid())
}

func TestOrder_MarshalJSONIncludesStatus(t *testing.T) {
	o := Order{ID: "o-1", PaymentStatus: PaymentPaid, FulfillmentStatus: FulfillmentUnfulfilled}
	b, err := json.Marshal(o)
	assert.NoError(t, err)
	assert.Contains(t, string(b), `"status":"paid"`)
	assert.Contains(t, string(b), `"id":"o-1"`)
	assert.NotContains(t, string(b), "IdempotencyKey")
}
