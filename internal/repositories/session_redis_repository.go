package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"xivttw/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	sessionKeyPrefix = "admin_session:"
	attemptKeyPrefix = "login_attempts:"
	// attemptTTL bounds how long an idle failure counter survives.
	attemptTTL = 24 * time.Hour
)

// RedisSessionRepository keeps sessions in redis with a TTL matching their expiry.
type RedisSessionRepository struct {
	client *redis.Client
}

// NewRedisSessionRepository creates a redis-backed session store.
func NewRedisSessionRepository(client *redis.Client) *RedisSessionRepository {
	return &RedisSessionRepository{client: client}
}

func (r *RedisSessionRepository) Create(ctx context.Context, s *models.AdminSession) error {
	if s.ID == "" || s.UserID == "" {
		return fmt.Errorf("session: missing id or user_id")
	}
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session: expires_at must be in the future")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("session: failed to marshal: %w", err)
	}
	if err := r.client.Set(ctx, sessionKeyPrefix+s.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *RedisSessionRepository) Get(ctx context.Context, id string) (*models.AdminSession, error) {
	val, err := r.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("session not found: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	var s models.AdminSession
	if err := json.Unmarshal(val, &s); err != nil {
		return nil, fmt.Errorf("session: failed to unmarshal: %w", err)
	}
	return &s, nil
}

func (r *RedisSessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *RedisSessionRepository) List(ctx context.Context) ([]models.AdminSession, error) {
	var sessions []models.AdminSession
	iter := r.client.Scan(ctx, 0, sessionKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		val, err := r.client.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue // expired between SCAN and GET
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read session %s: %w", iter.Val(), err)
		}
		var s models.AdminSession
		if err := json.Unmarshal(val, &s); err != nil {
			return nil, fmt.Errorf("session: failed to unmarshal: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// RedisAttemptRepository keeps failed login counters in redis.
type RedisAttemptRepository struct {
	client *redis.Client
}

// NewRedisAttemptRepository creates a redis-backed attempt store.
func NewRedisAttemptRepository(client *redis.Client) *RedisAttemptRepository {
	return &RedisAttemptRepository{client: client}
}

func (r *RedisAttemptRepository) Get(ctx context.Context, identity string) (*models.LoginAttempt, error) {
	val, err := r.client.Get(ctx, attemptKeyPrefix+identity).Bytes()
	if errors.Is(err, redis.Nil) {
		return &models.LoginAttempt{Identity: identity}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get login attempts: %w", err)
	}
	var a models.LoginAttempt
	if err := json.Unmarshal(val, &a); err != nil {
		return nil, fmt.Errorf("login attempts: failed to unmarshal: %w", err)
	}
	return &a, nil
}

func (r *RedisAttemptRepository) Save(ctx context.Context, attempt *models.LoginAttempt) error {
	attempt.UpdatedAt = time.Now()
	data, err := json.Marshal(attempt)
	if err != nil {
		return fmt.Errorf("login attempts: failed to marshal: %w", err)
	}
	ttl := attemptTTL
	if attempt.LockedUntil != nil {
		if untilUnlock := time.Until(*attempt.LockedUntil); untilUnlock > ttl {
			ttl = untilUnlock
		}
	}
	if err := r.client.Set(ctx, attemptKeyPrefix+attempt.Identity, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save login attempts: %w", err)
	}
	return nil
}

func (r *RedisAttemptRepository) Reset(ctx context.Context, identity string) error {
	if err := r.client.Del(ctx, attemptKeyPrefix+identity).Err(); err != nil {
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}
	return nil
}
