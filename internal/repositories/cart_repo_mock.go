package repositories

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"xivttw/internal/models"

	"github.com/google/uuid"
)

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	items map[string]models.CartItem
	mu    sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{items: make(map[string]models.CartItem)}
}

func (r *MockCartRepository) ListByOwner(_ context.Context, owner models.CartOwner) ([]models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.CartItem
	for _, it := range r.items {
		if it.Owner() == owner {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *MockCartRepository) FindLine(_ context.Context, owner models.CartOwner, productID, size, color string) (*models.CartItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, it := range r.items {
		if it.Owner() == owner && it.Matches(productID, size, color) {
			line := it
			return &line, nil
		}
	}
	return nil, fmt.Errorf("cart line for product %s not found: %w", productID, ErrNotFound)
}

func (r *MockCartRepository) Create(_ context.Context, item *models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	// Strictly increasing timestamps keep listing order stable.
	item.CreatedAt = time.Now().Add(time.Duration(len(r.items)) * time.Nanosecond)
	item.UpdatedAt = item.CreatedAt
	r.items[item.ID] = *item
	return nil
}

func (r *MockCartRepository) UpdateQuantity(_ context.Context, owner models.CartOwner, id string, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.items[id]
	if !ok || it.Owner() != owner {
		return fmt.Errorf("cart line with ID %s not found for update: %w", id, ErrNotFound)
	}
	it.Quantity = quantity
	it.UpdatedAt = time.Now()
	r.items[id] = it
	return nil
}

func (r *MockCartRepository) Delete(_ context.Context, owner models.CartOwner, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	it, ok := r.items[id]
	if !ok || it.Owner() != owner {
		return fmt.Errorf("cart line with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	delete(r.items, id)
	return nil
}

func (r *MockCartRepository) DeleteByOwner(_ context.Context, owner models.CartOwner) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, it := range r.items {
		if it.Owner() == owner {
			delete(r.items, id)
		}
	}
	return nil
}
