package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"xivttw/internal/models"
	"xivttw/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// ProductService handles business logic related to products and categories.
type ProductService struct {
	repo       repositories.ProductRepository
	categories repositories.CategoryRepository
	validate   *validator.Validate
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, categories repositories.CategoryRepository) *ProductService {
	return &ProductService{
		repo:       repo,
		categories: categories,
		validate:   newValidator(),
	}
}

// ListActiveProducts returns products visible on the storefront.
func (s *ProductService) ListActiveProducts(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	filter.Status = models.ProductStatusActive
	return s.repo.List(ctx, filter)
}

// GetActiveProduct returns a storefront product; inactive ones read as missing.
func (s *ProductService) GetActiveProduct(ctx context.Context, id string) (*models.Product, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != models.ProductStatusActive {
		return nil, fmt.Errorf("product with ID %s not found: %w", id, repositories.ErrNotFound)
	}
	return p, nil
}

// GetAllProducts retrieves all products for the back-office.
func (s *ProductService) GetAllProducts(ctx context.Context) ([]models.Product, error) {
	return s.repo.List(ctx, models.ProductFilter{})
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(ctx context.Context, id string) (*models.Product, error) {
	return s.repo.GetByID(ctx, id)
}

// CreateProduct validates and stores a new product.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product) error {
	if product.Slug == "" {
		product.Slug = Slugify(product.Name)
	}
	if err := s.check(product); err != nil {
		return err
	}
	return s.repo.Create(ctx, product)
}

// UpdateProduct validates and replaces an existing product. A missing
// status means active, as on create.
func (s *ProductService) UpdateProduct(ctx context.Context, product *models.Product) error {
	if product.Slug == "" {
		product.Slug = Slugify(product.Name)
	}
	if product.Status == "" {
		product.Status = models.ProductStatusActive
	}
	if err := s.check(product); err != nil {
		return err
	}
	return s.repo.Update(ctx, product)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *ProductService) check(product *models.Product) error {
	if err := s.validate.Struct(product); err != nil {
		return NewValidationError(err)
	}
	if !product.Price.IsPositive() {
		return &ValidationError{Fields: map[string]string{"price": "Field 'price' failed on the 'gt' tag"}}
	}
	if product.ComparePrice != nil && product.ComparePrice.IsNegative() {
		return &ValidationError{Fields: map[string]string{"compare_price": "Field 'compare_price' failed on the 'gte' tag"}}
	}
	return nil
}

// GetAllCategories lists categories by name.
func (s *ProductService) GetAllCategories(ctx context.Context) ([]models.Category, error) {
	return s.categories.GetAll(ctx)
}

func (s *ProductService) GetCategoryByID(ctx context.Context, id string) (*models.Category, error) {
	return s.categories.GetByID(ctx, id)
}

func (s *ProductService) CreateCategory(ctx context.Context, category *models.Category) error {
	if category.Slug == "" {
		category.Slug = Slugify(category.Name)
	}
	if err := s.validate.Struct(category); err != nil {
		return NewValidationError(err)
	}
	return s.categories.Create(ctx, category)
}

func (s *ProductService) UpdateCategory(ctx context.Context, category *models.Category) error {
	if category.Slug == "" {
		category.Slug = Slugify(category.Name)
	}
	if err := s.validate.Struct(category); err != nil {
		return NewValidationError(err)
	}
	return s.categories.Update(ctx, category)
}

func (s *ProductService) DeleteCategory(ctx context.Context, id string) error {
	return s.categories.Delete(ctx, id)
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases name and joins its words with dashes.
func Slugify(name string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(name), "-"), "-")
}
