package repositories

import (
	"context"
	"fmt"

	"xivttw/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// List retrieves products matching the filter, newest first, with their category.
func (r *GORMProductRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	q := r.db.WithContext(ctx).Preload("Category").Order("created_at DESC")
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.CategoryID != "" {
		q = q.Where("category_id = ?", filter.CategoryID)
	}
	if filter.Featured != nil {
		q = q.Where("featured = ?", *filter.Featured)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var products []models.Product
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("product with ID %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if product.Status == "" {
		product.Status = models.ProductStatusActive
	}
	if err := r.db.WithContext(ctx).Omit("Category").Create(product).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("product with slug %s: %w", product.Slug, ErrDuplicate)
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update updates an existing product in the database.
func (r *GORMProductRepository) Update(ctx context.Context, product *models.Product) error {
	res := r.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", product.ID).
		Select("*").Omit("id", "created_at", "Category").Updates(product)
	if res.Error != nil {
		if isDuplicate(res.Error) {
			return fmt.Errorf("product with slug %s: %w", product.Slug, ErrDuplicate)
		}
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Updates reports no error for a missing row.
		return fmt.Errorf("product with ID %s not found for update: %w", product.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s not found for deletion: %w", id, ErrNotFound)
	}
	return nil
}

// Count returns the number of products regardless of status.
func (r *GORMProductRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Product{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return n, nil
}

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

func (r *GORMCategoryRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to get all categories: %w", err)
	}
	return categories, nil
}

func (r *GORMCategoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("category with ID %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get category by ID %s: %w", id, err)
	}
	return &category, nil
}

func (r *GORMCategoryRepository) Create(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("category with slug %s: %w", category.Slug, ErrDuplicate)
		}
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *GORMCategoryRepository) Update(ctx context.Context, category *models.Category) error {
	res := r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", category.ID).
		Select("name", "slug", "description", "image_url", "updated_at").Updates(category)
	if res.Error != nil {
		if isDuplicate(res.Error) {
			return fmt.Errorf("category with slug %s: %w", category.Slug, ErrDuplicate)
		}
		return fmt.Errorf("failed to update category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("category with ID %s not found for update: %w", category.ID, ErrNotFound)
	}
	return nil
}

// Delete removes the category and detaches its products.
func (r *GORMCategoryRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach products from category %s: %w", id, err)
		}
		res := tx.Delete(&models.Category{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete category: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("category with ID %s not found for deletion: %w", id, ErrNotFound)
		}
		return nil
	})
}
