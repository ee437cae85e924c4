package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"xivttw/internal/models"
	"xivttw/internal/repositories"

	"github.com/dgrijalva/jwt-go"
)

// AuthConfig tunes session lifetime and lockout.
type AuthConfig struct {
	JWTSecret        string
	SessionTTL       time.Duration
	WarningWindow    time.Duration
	LockoutThreshold int
	LockoutWindow    time.Duration
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// AuthService handles admin login, logout and session checks.
type AuthService struct {
	log       *slog.Logger
	verifier  CredentialVerifier
	sessions  repositories.SessionRepository
	attempts  repositories.AttemptRepository
	jwtSecret []byte
	ttl       time.Duration
	warning   time.Duration
	threshold int
	lockout   time.Duration
	now       func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(log *slog.Logger, cfg AuthConfig, verifier CredentialVerifier, sessions repositories.SessionRepository, attempts repositories.AttemptRepository) *AuthService {
	s := &AuthService{
		log:       log,
		verifier:  verifier,
		sessions:  sessions,
		attempts:  attempts,
		jwtSecret: []byte(cfg.JWTSecret),
		ttl:       cfg.SessionTTL,
		warning:   cfg.WarningWindow,
		threshold: cfg.LockoutThreshold,
		lockout:   cfg.LockoutWindow,
		now:       cfg.Now,
	}
	if s.ttl <= 0 {
		s.ttl = 24 * time.Hour
	}
	if s.warning <= 0 {
		s.warning = 30 * time.Minute
	}
	if s.threshold <= 0 {
		s.threshold = 5
	}
	if s.lockout <= 0 {
		s.lockout = 15 * time.Minute
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token   string
	Session *models.AdminSession
}

// SessionStatus describes the caller's session at the time of the check.
type SessionStatus struct {
	Authenticated bool                 `json:"authenticated"`
	User          *UserIdentity        `json:"user,omitempty"`
	ExpiresAt     *time.Time           `json:"expires_at,omitempty"`
	Remaining     time.Duration        `json:"-"`
	ExpiringSoon  bool                 `json:"expiring_soon"`
	Session       *models.AdminSession `json:"-"`
}

// Login checks credentials and opens a session. Every failure, including a
// locked account, is reported as ErrInvalidCredentials to the caller; the
// wrapped cause is only for logs.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	const op = "services.AuthService.Login"
	identity := normalizeEmail(email)
	logger := s.log.With(slog.String("op", op), slog.String("identity", identity))

	attempt, err := s.attempts.Get(ctx, identity)
	if err != nil {
		logger.Error("failed to load login attempts", slog.Any("error", err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	now := s.now()
	if attempt.Locked(now) {
		logger.Warn("login rejected, account locked", slog.Time("locked_until", *attempt.LockedUntil))
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, ErrAccountLocked)
	}
	if attempt.LockedUntil != nil {
		// lockout elapsed, counting starts over
		attempt.Failures = 0
		attempt.LockedUntil = nil
	}

	user, err := s.verifier.Verify(ctx, identity, password)
	if err != nil {
		if !errors.Is(err, ErrInvalidCredentials) {
			logger.Error("credential check failed", slog.Any("error", err))
			return nil, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
		}
		attempt.Failures++
		if attempt.Failures >= s.threshold {
			until := now.Add(s.lockout)
			attempt.LockedUntil = &until
			logger.Warn("account locked after repeated failures", slog.Int("failures", attempt.Failures))
		} else {
			logger.Info("login failed", slog.Int("failures", attempt.Failures))
		}
		if saveErr := s.attempts.Save(ctx, attempt); saveErr != nil {
			logger.Error("failed to record login failure", slog.Any("error", saveErr))
		}
		return nil, ErrInvalidCredentials
	}

	if err := s.attempts.Reset(ctx, identity); err != nil {
		logger.Error("failed to reset login attempts", slog.Any("error", err))
	}

	id, err := newSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}
	session := &models.AdminSession{
		ID:        id,
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		logger.Error("failed to store session", slog.Any("error", err))
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid":  session.ID,
		"sub":  user.ID,
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  session.ExpiresAt.Unix(),
	})
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	logger.Info("admin logged in", slog.String("user_id", user.ID))
	return &LoginResult{Token: tokenString, Session: session}, nil
}

// Logout clears the session behind token. It never fails.
func (s *AuthService) Logout(ctx context.Context, token string) {
	const op = "services.AuthService.Logout"
	sid, err := s.sessionID(token)
	if err != nil {
		return
	}
	if err := s.sessions.Delete(ctx, sid); err != nil {
		s.log.Error("failed to delete session", slog.String("op", op), slog.Any("error", err))
	}
}

// Status reports whether token maps to a live session. An expired session
// found here is removed.
func (s *AuthService) Status(ctx context.Context, token string) SessionStatus {
	session, err := s.Authenticate(ctx, token)
	if err != nil {
		return SessionStatus{}
	}
	remaining := session.ExpiresAt.Sub(s.now())
	expiresAt := session.ExpiresAt
	return SessionStatus{
		Authenticated: true,
		User:          identityOf(session),
		ExpiresAt:     &expiresAt,
		Remaining:     remaining,
		ExpiringSoon:  remaining <= s.warning,
		Session:       session,
	}
}

// Authenticate resolves token to its live session or returns ErrUnauthenticated.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.AdminSession, error) {
	const op = "services.AuthService.Authenticate"
	sid, err := s.sessionID(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	session, err := s.sessions.Get(ctx, sid)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			s.log.Error("failed to load session", slog.String("op", op), slog.Any("error", err))
		}
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	if session.Expired(s.now()) {
		s.log.Info("session expired, forcing logout", slog.String("op", op), slog.String("user_id", session.UserID))
		if err := s.sessions.Delete(ctx, sid); err != nil {
			s.log.Error("failed to delete expired session", slog.String("op", op), slog.Any("error", err))
		}
		return nil, fmt.Errorf("%w: session expired", ErrUnauthenticated)
	}
	return session, nil
}

// sessionID checks the token signature and returns its session id. Expiry
// is checked against the service clock, the stored session being the
// source of truth.
func (s *AuthService) sessionID(tokenString string) (string, error) {
	if tokenString == "" {
		return "", fmt.Errorf("invalid token")
	}
	parser := &jwt.Parser{SkipClaimsValidation: true}
	token, err := parser.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token")
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", fmt.Errorf("invalid token: missing session id")
	}
	return sid, nil
}

func identityOf(s *models.AdminSession) *UserIdentity {
	return &UserIdentity{
		ID:        s.UserID,
		Email:     s.Email,
		FirstName: s.FirstName,
		LastName:  s.LastName,
		Role:      s.Role,
	}
}

func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
