package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus tracks the money side of an order.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// FulfillmentStatus tracks the shipping side of an order.
type FulfillmentStatus string

const (
	FulfillmentUnfulfilled FulfillmentStatus = "unfulfilled"
	FulfillmentProcessing  FulfillmentStatus = "processing"
	FulfillmentShipped     FulfillmentStatus = "shipped"
	FulfillmentDelivered   FulfillmentStatus = "delivered"
	FulfillmentCancelled   FulfillmentStatus = "cancelled"
)

// Combined order statuses exposed to clients.
const (
	StatusPending    = "pending"
	StatusPaid       = "paid"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

var fulfillmentTransitions = map[FulfillmentStatus][]FulfillmentStatus{
	FulfillmentUnfulfilled: {FulfillmentProcessing, FulfillmentCancelled},
	FulfillmentProcessing:  {FulfillmentShipped, FulfillmentCancelled},
	FulfillmentShipped:     {FulfillmentDelivered},
}

// CanTransition reports whether the fulfillment state may move to next
// given the payment state. Anything past unfulfilled needs a paid order,
// except cancellation.
func CanTransition(payment PaymentStatus, from, next FulfillmentStatus) bool {
	if next != FulfillmentCancelled && payment != PaymentPaid {
		return false
	}
	for _, allowed := range fulfillmentTransitions[from] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ValidFulfillmentStatus reports whether s names a fulfillment state.
func ValidFulfillmentStatus(s string) bool {
	switch FulfillmentStatus(s) {
	case FulfillmentUnfulfilled, FulfillmentProcessing, FulfillmentShipped, FulfillmentDelivered, FulfillmentCancelled:
		return true
	}
	return false
}

// OrderItem represents a single item within an order.
type OrderItem struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"` // Price at the time of order
	Size        string          `json:"size,omitempty"`
	Color       string          `json:"color,omitempty"`
}

// Order represents a customer order.
type Order struct {
	ID                  string            `json:"id" gorm:"primaryKey;type:varchar(36)"`
	IdempotencyKey      string            `json:"-" gorm:"uniqueIndex;type:varchar(64);not null"`
	CustomerName        string            `json:"customer_name" gorm:"type:varchar(200)"`
	CustomerEmail       string            `json:"customer_email" gorm:"type:varchar(255);index"`
	CustomerPhone       string            `json:"customer_phone" gorm:"type:varchar(40)"`
	ShippingAddress     string            `json:"shipping_address"`
	ShippingCity        string            `json:"shipping_city" gorm:"type:varchar(100)"`
	ShippingState       string            `json:"shipping_state" gorm:"type:varchar(100)"`
	ShippingZipCode     string            `json:"shipping_zip_code" gorm:"type:varchar(20)"`
	ShippingCountry     string            `json:"shipping_country" gorm:"type:varchar(100)"`
	PaymentMethod       string            `json:"payment_method" gorm:"type:varchar(40)"`
	PaymentReference    string            `json:"payment_reference,omitempty" gorm:"type:varchar(100);index"`
	PaymentURL          string            `json:"payment_url,omitempty"`
	PaymentStatus       PaymentStatus     `json:"payment_status" gorm:"type:varchar(20);index;default:pending"`
	FulfillmentStatus   FulfillmentStatus `json:"fulfillment_status" gorm:"type:varchar(20);index;default:unfulfilled"`
	SpecialInstructions string            `json:"special_instructions,omitempty"`
	Subtotal            decimal.Decimal   `json:"subtotal" gorm:"type:numeric(12,2)"`
	ShippingCost        decimal.Decimal   `json:"shipping_cost" gorm:"type:numeric(12,2)"`
	TaxAmount           decimal.Decimal   `json:"tax_amount" gorm:"type:numeric(12,2)"`
	TotalAmount         decimal.Decimal   `json:"total_amount" gorm:"type:numeric(12,2)"`
	Items               []OrderItem       `json:"items" gorm:"serializer:json"`
	CreatedAt           time.Time         `json:"created_at" gorm:"index"`
	UpdatedAt           time.Time         `json:"updated_at"`
}

// Status derives the combined status from the payment and fulfillment states.
func (o Order) Status() string {
	switch o.FulfillmentStatus {
	case FulfillmentCancelled:
		return StatusCancelled
	case FulfillmentDelivered:
		return StatusDelivered
	case FulfillmentShipped:
		return StatusShipped
	case FulfillmentProcessing:
		return StatusProcessing
	}
	if o.PaymentStatus == PaymentPaid {
		return StatusPaid
	}
	return StatusPending
}

// MarshalJSON adds the derived status to the wire form.
func (o Order) MarshalJSON() ([]byte, error) {
	type plain Order
	return json.Marshal(struct {
		plain
		Status string `json:"status"`
	}{plain(o), o.Status()})
}

// ItemCount is the total number of units in the order.
func (o Order) ItemCount() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

// OrderFilter narrows admin order listings.
type OrderFilter struct {
	Status string // combined status, see Order.Status
	From   *time.Time
	To     *time.Time
}
