package models

import "time"

// CartOwner identifies whose cart a line belongs to. Exactly one of the
// two fields is set.
type CartOwner struct {
	UserID    string
	SessionID string
}

// Valid reports whether exactly one identity is present.
func (o CartOwner) Valid() bool {
	return (o.UserID == "") != (o.SessionID == "")
}

// Key returns the identity in use, for logs.
func (o CartOwner) Key() string {
	if o.UserID != "" {
		return "user:" + o.UserID
	}
	return "session:" + o.SessionID
}

// CartItem is a single line in a cart. Lines merge on
// (owner, product, size, color).
type CartItem struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID    string    `json:"user_id,omitempty" gorm:"type:varchar(36);index"`
	SessionID string    `json:"session_id,omitempty" gorm:"type:varchar(100);index"`
	ProductID string    `json:"product_id" gorm:"type:varchar(36);not null"`
	Quantity  int       `json:"quantity"`
	Size      string    `json:"size,omitempty" gorm:"type:varchar(20)"`
	Color     string    `json:"color,omitempty" gorm:"type:varchar(40)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Owner returns the owner the line is attached to.
func (c CartItem) Owner() CartOwner {
	return CartOwner{UserID: c.UserID, SessionID: c.SessionID}
}

// Matches reports whether the line holds the given product variant.
func (c CartItem) Matches(productID, size, color string) bool {
	return c.ProductID == productID && c.Size == size && c.Color == color
}
