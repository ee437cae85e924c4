package services_test

import (
	"context"
	"testing"
	"time"

	"xivttw/internal/models"
	"xivttw/internal/repositories"
	"xivttw/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time          { return c.t }
func (c *clock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type authFixture struct {
	svc      *services.AuthService
	sessions *repositories.MockSessionRepository
	attempts *repositories.MockAttemptRepository
	clock    *clock
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	verifier, err := services.NewStaticVerifier(services.UserIdentity{
		ID:        "admin-1",
		Email:     "admin@xivttw.com",
		FirstName: "Admin",
		LastName:  "User",
	}, "admin123")
	require.NoError(t, err)

	f := &authFixture{
		sessions: repositories.NewMockSessionRepository(),
		attempts: repositories.NewMockAttemptRepository(),
		clock:    &clock{t: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
	}
	f.svc = services.NewAuthService(discardLogger(), services.AuthConfig{
		JWTSecret: "test-secret",
		Now:       f.clock.Now,
	}, verifier, f.sessions, f.attempts)
	return f
}

func TestAuthService_LoginSuccess(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	res, err := f.svc.Login(ctx, " Admin@XIVTTW.com ", "admin123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "admin-1", res.Session.UserID)
	assert.Equal(t, models.RoleAdmin, res.Session.Role)
	assert.Equal(t, f.clock.Now().Add(24*time.Hour), res.Session.ExpiresAt)

	status := f.svc.Status(ctx, res.Token)
	assert.True(t, status.Authenticated)
	assert.Equal(t, "admin@xivttw.com", status.User.Email)
	assert.False(t, status.ExpiringSoon)
}

func TestAuthService_WrongPasswordCountsOneFailure(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	_, err := f.svc.Login(ctx, "admin@xivttw.com", "nope")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)

	attempt, err := f.attempts.Get(ctx, "admin@xivttw.com")
	require.NoError(t, err)
	assert.Equal(t, 1, attempt.Failures)
	assert.Nil(t, attempt.LockedUntil)

	_, err = f.svc.Login(ctx, "someone@else.com", "admin123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}

func TestAuthService_Lockout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	for i := 0; i < 5; i++ {
		_, err := f.svc.Login(ctx, "admin@xivttw.com", "wrong")
		require.ErrorIs(t, err, services.ErrInvalidCredentials)
	}
	attempt, _ := f.attempts.Get(ctx, "admin@xivttw.com")
	require.NotNil(t, attempt.LockedUntil)
	lockedUntil := *attempt.LockedUntil
	assert.Equal(t, f.clock.Now().Add(15*time.Minute), lockedUntil)

	// correct password is rejected while locked, without extending the lock
	f.clock.Advance(10 * time.Minute)
	_, err := f.svc.Login(ctx, "admin@xivttw.com", "admin123")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	assert.ErrorIs(t, err, services.ErrAccountLocked)
	attempt, _ = f.attempts.Get(ctx, "admin@xivttw.com")
	assert.Equal(t, 5, attempt.Failures)
	assert.Equal(t, lockedUntil, *attempt.LockedUntil)

	f.clock.Advance(5 * time.Minute)
	res, err := f.svc.Login(ctx, "admin@xivttw.com", "admin123")
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	attempt, _ = f.attempts.Get(ctx, "admin@xivttw.com")
	assert.Equal(t, 0, attempt.Failures)
}

func TestAuthService_FailureAfterLockoutStartsOver(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	for i := 0; i < 5; i++ {
		_, _ = f.svc.Login(ctx, "admin@xivttw.com", "wrong")
	}
	f.clock.Advance(16 * time.Minute)

	_, err := f.svc.Login(ctx, "admin@xivttw.com", "wrong")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	assert.NotErrorIs(t, err, services.ErrAccountLocked)

	attempt, _ := f.attempts.Get(ctx, "admin@xivttw.com")
	assert.Equal(t, 1, attempt.Failures)
	assert.Nil(t, attempt.LockedUntil)
}

func TestAuthService_SessionExpiry(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	res, err := f.svc.Login(ctx, "admin@xivttw.com", "admin123")
	require.NoError(t, err)

	f.clock.Advance(23*time.Hour + 59*time.Minute)
	status := f.svc.Status(ctx, res.Token)
	assert.True(t, status.Authenticated)
	assert.True(t, status.ExpiringSoon)
	assert.Equal(t, time.Minute, status.Remaining)

	f.clock.Advance(time.Minute)
	status = f.svc.Status(ctx, res.Token)
	assert.False(t, status.Authenticated)

	_, err = f.sessions.Get(ctx, res.Session.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	res, err := f.svc.Login(ctx, "admin@xivttw.com", "admin123")
	require.NoError(t, err)

	f.svc.Logout(ctx, res.Token)
	f.svc.Logout(ctx, res.Token)
	f.svc.Logout(ctx, "garbage")

	_, err = f.svc.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

func TestAuthService_RejectsForeignToken(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)

	res, err := f.svc.Login(ctx, "admin@xivttw.com", "admin123")
	require.NoError(t, err)

	other := services.NewAuthService(discardLogger(), services.AuthConfig{JWTSecret: "other", Now: f.clock.Now}, nil, f.sessions, f.attempts)
	_, err = other.Authenticate(ctx, res.Token)
	assert.ErrorIs(t, err, services.ErrUnauthenticated)

	_, err = f.svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, services.ErrUnauthenticated)
}

func TestAdminUserVerifier(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	users := repositories.NewGORMAdminUserRepository(db)

	require.NoError(t, services.RegisterAdmin(ctx, users, &models.AdminUser{Email: "Owner@XIVTTW.com", FirstName: "Ada"}, "s3cret!"))

	v := services.NewAdminUserVerifier(users)
	id, err := v.Verify(ctx, "owner@xivttw.com", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, "Ada", id.FirstName)
	assert.Equal(t, models.RoleAdmin, id.Role)

	_, err = v.Verify(ctx, "owner@xivttw.com", "bad")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	_, err = v.Verify(ctx, "ghost@xivttw.com", "s3cret!")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
}
