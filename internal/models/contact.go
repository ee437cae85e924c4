package models

import "time"

// ContactMessage is a message submitted through the storefront contact form.
type ContactMessage struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(100)" validate:"required,min=2,max=100"`
	Email     string    `json:"email" gorm:"type:varchar(255)" validate:"required,email"`
	Subject   string    `json:"subject" gorm:"type:varchar(200)" validate:"required,min=2,max=200"`
	Message   string    `json:"message" validate:"required,min=10,max=5000"`
	Read      bool      `json:"read" gorm:"index"`
	CreatedAt time.Time `json:"created_at"`
}
