package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"xivttw/internal/models"
	"xivttw/internal/repositories"

	"github.com/shopspring/decimal"
)

// CartLine is a cart item joined with the current product data.
type CartLine struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	ImageURL    string          `json:"image_url,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Size        string          `json:"size,omitempty"`
	Color       string          `json:"color,omitempty"`
	LineTotal   decimal.Decimal `json:"line_total"`
	// Available is false when the product was removed or deactivated.
	Available bool `json:"available"`
}

// CartView is the priced state of a cart.
type CartView struct {
	Lines []CartLine      `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// AddItemInput describes a product variant to put in the cart.
type AddItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size" validate:"omitempty,max=20"`
	Color     string `json:"color" validate:"omitempty,max=40"`
}

// CartService implements the cart aggregate.
type CartService struct {
	log      *slog.Logger
	carts    repositories.CartRepository
	products repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(log *slog.Logger, carts repositories.CartRepository, products repositories.ProductRepository) *CartService {
	return &CartService{log: log, carts: carts, products: products}
}

// AddItem adds quantity units of a product variant, merging with an
// existing line for the same (product, size, color).
func (s *CartService) AddItem(ctx context.Context, owner models.CartOwner, in AddItemInput) (*CartView, error) {
	if !owner.Valid() {
		return nil, ErrInvalidCartOwner
	}
	if in.Quantity < 1 {
		in.Quantity = 1
	}

	product, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product.Status != models.ProductStatusActive {
		return nil, ErrProductInactive
	}

	line, err := s.carts.FindLine(ctx, owner, in.ProductID, in.Size, in.Color)
	switch {
	case err == nil:
		if err := s.carts.UpdateQuantity(ctx, owner, line.ID, line.Quantity+in.Quantity); err != nil {
			return nil, err
		}
	case errors.Is(err, repositories.ErrNotFound):
		item := &models.CartItem{
			UserID:    owner.UserID,
			SessionID: owner.SessionID,
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			Size:      in.Size,
			Color:     in.Color,
		}
		if err := s.carts.Create(ctx, item); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	return s.View(ctx, owner)
}

// SetQuantity sets a line's quantity; zero or less removes the line.
func (s *CartService) SetQuantity(ctx context.Context, owner models.CartOwner, lineID string, quantity int) (*CartView, error) {
	if !owner.Valid() {
		return nil, ErrInvalidCartOwner
	}
	var err error
	if quantity <= 0 {
		err = s.carts.Delete(ctx, owner, lineID)
	} else {
		err = s.carts.UpdateQuantity(ctx, owner, lineID, quantity)
	}
	if err != nil {
		return nil, err
	}
	return s.View(ctx, owner)
}

// RemoveItem deletes a line.
func (s *CartService) RemoveItem(ctx context.Context, owner models.CartOwner, lineID string) (*CartView, error) {
	if !owner.Valid() {
		return nil, ErrInvalidCartOwner
	}
	if err := s.carts.Delete(ctx, owner, lineID); err != nil {
		return nil, err
	}
	return s.View(ctx, owner)
}

// Clear empties the cart.
func (s *CartService) Clear(ctx context.Context, owner models.CartOwner) error {
	if !owner.Valid() {
		return ErrInvalidCartOwner
	}
	return s.carts.DeleteByOwner(ctx, owner)
}

// View prices the cart with current product prices.
func (s *CartService) View(ctx context.Context, owner models.CartOwner) (*CartView, error) {
	if !owner.Valid() {
		return nil, ErrInvalidCartOwner
	}
	items, err := s.carts.ListByOwner(ctx, owner)
	if err != nil {
		return nil, err
	}

	view := &CartView{Lines: make([]CartLine, 0, len(items)), Total: decimal.Zero}
	for _, it := range items {
		line := CartLine{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Size:      it.Size,
			Color:     it.Color,
			Price:     decimal.Zero,
			LineTotal: decimal.Zero,
		}
		product, err := s.products.GetByID(ctx, it.ProductID)
		switch {
		case err == nil:
			line.ProductName = product.Name
			line.ImageURL = product.ImageURL
			line.Price = product.Price
			line.LineTotal = product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
			line.Available = product.Status == models.ProductStatusActive
		case errors.Is(err, repositories.ErrNotFound):
			// product deleted since it was added; priced at zero
		default:
			return nil, err
		}
		view.Lines = append(view.Lines, line)
		view.Total = view.Total.Add(line.LineTotal)
		view.Count += it.Quantity
	}
	return view, nil
}

// Merge moves every line of from into to, summing quantities of matching
// variants, then empties from.
func (s *CartService) Merge(ctx context.Context, from, to models.CartOwner) (*CartView, error) {
	const op = "services.CartService.Merge"
	if !from.Valid() || !to.Valid() {
		return nil, ErrInvalidCartOwner
	}
	if from == to {
		return s.View(ctx, to)
	}

	items, err := s.carts.ListByOwner(ctx, from)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		existing, err := s.carts.FindLine(ctx, to, it.ProductID, it.Size, it.Color)
		switch {
		case err == nil:
			err = s.carts.UpdateQuantity(ctx, to, existing.ID, existing.Quantity+it.Quantity)
		case errors.Is(err, repositories.ErrNotFound):
			err = s.carts.Create(ctx, &models.CartItem{
				UserID:    to.UserID,
				SessionID: to.SessionID,
				ProductID: it.ProductID,
				Quantity:  it.Quantity,
				Size:      it.Size,
				Color:     it.Color,
			})
		}
		if err != nil {
			return nil, fmt.Errorf("failed to merge cart line %s: %w", it.ID, err)
		}
	}
	if err := s.carts.DeleteByOwner(ctx, from); err != nil {
		return nil, err
	}
	s.log.Info("cart merged", slog.String("op", op), slog.String("from", from.Key()), slog.String("to", to.Key()), slog.Int("lines", len(items)))
	return s.View(ctx, to)
}
