package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"xivttw/internal/models"
)

// MockSessionRepository is an in-memory implementation of SessionRepository.
type MockSessionRepository struct {
	sessions map[string]models.AdminSession
	mu       sync.RWMutex
}

// NewMockSessionRepository creates a new instance of MockSessionRepository.
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{sessions: make(map[string]models.AdminSession)}
}

func (r *MockSessionRepository) Create(_ context.Context, s *models.AdminSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = *s
	return nil
}

func (r *MockSessionRepository) Get(_ context.Context, id string) (*models.AdminSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("session not found: %w", ErrNotFound)
	}
	return &s, nil
}

func (r *MockSessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

func (r *MockSessionRepository) List(_ context.Context) ([]models.AdminSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.AdminSession, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(out[j].ExpiresAt) })
	return out, nil
}

// MockAttemptRepository is an in-memory implementation of AttemptRepository.
type MockAttemptRepository struct {
	attempts map[string]models.LoginAttempt
	mu       sync.RWMutex
}

// NewMockAttemptRepository creates a new instance of MockAttemptRepository.
func NewMockAttemptRepository() *MockAttemptRepository {
	return &MockAttemptRepository{attempts: make(map[string]models.LoginAttempt)}
}

func (r *MockAttemptRepository) Get(_ context.Context, identity string) (*models.LoginAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.attempts[identity]
	if !ok {
		return &models.LoginAttempt{Identity: identity}, nil
	}
	return &a, nil
}

func (r *MockAttemptRepository) Save(_ context.Context, a *models.LoginAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[a.Identity] = *a
	return nil
}

func (r *MockAttemptRepository) Reset(_ context.Context, identity string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.attempts, identity)
	return nil
}
