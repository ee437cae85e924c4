package handlers

import (
	"fmt"

	"xivttw/internal/models"
	"xivttw/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products and categories.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// RegisterRoutes registers the storefront catalog routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/products", h.HandleListProducts)
	router.Get("/products/:id", h.HandleGetProduct)
	router.Get("/categories", h.HandleGetCategories)
	router.Get("/categories/:id", h.HandleGetCategoryByID)
}

// RegisterAdminRoutes registers the catalog management routes.
func (h *ProductHandler) RegisterAdminRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetAllProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)

	categoryRoutes := router.Group("/categories")
	categoryRoutes.Get("/", h.HandleGetCategories)
	categoryRoutes.Get("/:id", h.HandleGetCategoryByID)
	categoryRoutes.Post("/", h.HandleCreateCategory)
	categoryRoutes.Put("/:id", h.HandleUpdateCategory)
	categoryRoutes.Delete("/:id", h.HandleDeleteCategory)
}

// HandleListProducts lists active products. Supports ?featured=true,
// ?category=<id> and ?limit=<n>.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	filter := models.ProductFilter{
		CategoryID: c.Query("category"),
		Limit:      c.QueryInt("limit", 0),
	}
	if c.Query("featured") != "" {
		featured := c.QueryBool("featured")
		filter.Featured = &featured
	}
	products, err := h.service.ListActiveProducts(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

// HandleGetProduct returns one active product.
func (h *ProductHandler) HandleGetProduct(c *fiber.Ctx) error {
	product, err := h.service.GetActiveProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// HandleGetAllProducts lists products of every status.
func (h *ProductHandler) HandleGetAllProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve products")
	}
	return c.JSON(products)
}

func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return badBody(c, err)
	}
	product.ID = ""
	if err := h.service.CreateProduct(c.UserContext(), &product); err != nil {
		return respondError(c, err, "Could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return badBody(c, err)
	}
	product.ID = c.Params("id")
	if err := h.service.UpdateProduct(c.UserContext(), &product); err != nil {
		return respondError(c, err, "Could not update product")
	}
	return c.JSON(product)
}

func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteProduct(c.UserContext(), id); err != nil {
		return respondError(c, err, "Could not delete product")
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Product %s deleted successfully", id),
	})
}

func (h *ProductHandler) HandleGetCategories(c *fiber.Ctx) error {
	categories, err := h.service.GetAllCategories(c.UserContext())
	if err != nil {
		return respondError(c, err, "Could not retrieve categories")
	}
	return c.JSON(categories)
}

func (h *ProductHandler) HandleGetCategoryByID(c *fiber.Ctx) error {
	category, err := h.service.GetCategoryByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err, "Could not retrieve category")
	}
	return c.JSON(category)
}

func (h *ProductHandler) HandleCreateCategory(c *fiber.Ctx) error {
	var category models.Category
	if err := c.BodyParser(&category); err != nil {
		return badBody(c, err)
	}
	category.ID = ""
	if err := h.service.CreateCategory(c.UserContext(), &category); err != nil {
		return respondError(c, err, "Could not create category")
	}
	return c.Status(fiber.StatusCreated).JSON(category)
}

func (h *ProductHandler) HandleUpdateCategory(c *fiber.Ctx) error {
	var category models.Category
	if err := c.BodyParser(&category); err != nil {
		return badBody(c, err)
	}
	category.ID = c.Params("id")
	if err := h.service.UpdateCategory(c.UserContext(), &category); err != nil {
		return respondError(c, err, "Could not update category")
	}
	return c.JSON(category)
}

func (h *ProductHandler) HandleDeleteCategory(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.DeleteCategory(c.UserContext(), id); err != nil {
		return respondError(c, err, "Could not delete category")
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Category %s deleted successfully", id),
	})
}
