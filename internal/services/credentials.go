package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"xivttw/internal/models"
	"xivttw/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

// UserIdentity is the authenticated admin returned by a CredentialVerifier.
type UserIdentity struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// CredentialVerifier checks an email/password pair. Implementations return
// ErrInvalidCredentials for any mismatch and other errors only for
// infrastructure failures.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) (*UserIdentity, error)
}

// StaticVerifier accepts a single configured admin identity.
type StaticVerifier struct {
	identity UserIdentity
	hash     []byte
}

// NewStaticVerifier hashes password once so comparisons run in bcrypt time
// for every attempt.
func NewStaticVerifier(identity UserIdentity, password string) (*StaticVerifier, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	identity.Email = normalizeEmail(identity.Email)
	if identity.Role == "" {
		identity.Role = models.RoleAdmin
	}
	return &StaticVerifier{identity: identity, hash: hash}, nil
}

func (v *StaticVerifier) Verify(_ context.Context, email, password string) (*UserIdentity, error) {
	emailOK := subtle.ConstantTimeCompare([]byte(normalizeEmail(email)), []byte(v.identity.Email)) == 1
	passErr := bcrypt.CompareHashAndPassword(v.hash, []byte(password))
	if !emailOK || passErr != nil {
		return nil, ErrInvalidCredentials
	}
	id := v.identity
	return &id, nil
}

// AdminUserVerifier checks credentials against the admin_users table.
type AdminUserVerifier struct {
	users repositories.AdminUserRepository
}

// NewAdminUserVerifier creates a database-backed verifier.
func NewAdminUserVerifier(users repositories.AdminUserRepository) *AdminUserVerifier {
	return &AdminUserVerifier{users: users}
}

func (v *AdminUserVerifier) Verify(ctx context.Context, email, password string) (*UserIdentity, error) {
	user, err := v.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up admin user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &UserIdentity{
		ID:        user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
	}, nil
}

// RegisterAdmin hashes the password and stores a new admin user.
func RegisterAdmin(ctx context.Context, users repositories.AdminUserRepository, user *models.AdminUser, password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Email = normalizeEmail(user.Email)
	user.PasswordHash = string(hashedPassword)
	if user.Role == "" {
		user.Role = models.RoleAdmin
	}
	if err := users.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to register admin: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
