package models

import "time"

const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// AdminUser is a back-office account checked by the database verifier.
type AdminUser struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Email        string    `json:"email" gorm:"uniqueIndex;type:varchar(255)"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255)"` // No json for security
	FirstName    string    `json:"first_name" gorm:"type:varchar(100)"`
	LastName     string    `json:"last_name" gorm:"type:varchar(100)"`
	Role         string    `json:"role" gorm:"type:varchar(20);default:admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AdminSession is a live back-office session. It is never extended.
type AdminSession struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	UserID    string    `json:"user_id" gorm:"type:varchar(36);index"`
	Email     string    `json:"email" gorm:"type:varchar(255)"`
	FirstName string    `json:"first_name" gorm:"type:varchar(100)"`
	LastName  string    `json:"last_name" gorm:"type:varchar(100)"`
	Role      string    `json:"role" gorm:"type:varchar(20)"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at" gorm:"index"`
}

// Expired reports whether the session is no longer valid at t.
func (s AdminSession) Expired(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// LoginAttempt tracks consecutive failed logins for one identity.
type LoginAttempt struct {
	Identity    string     `json:"identity" gorm:"primaryKey;type:varchar(255)"`
	Failures    int        `json:"failures"`
	LockedUntil *time.Time `json:"locked_until,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Locked reports whether the identity is locked out at t.
func (a LoginAttempt) Locked(t time.Time) bool {
	return a.LockedUntil != nil && t.Before(*a.LockedUntil)
}
