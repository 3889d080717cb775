package handlers

import (
	"fmt"
	"log"

	"pasar/internal/models"
	"pasar/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products and stock.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Get("/:id/stock", h.HandleGetAvailableStock)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Patch("/:id/restock", h.HandleRestock)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)

	router.Get("/stores/:id/products", h.HandleGetProductsByStore)
}

// HandleGetProductsByStore lists the products of a single store.
func (h *ProductHandler) HandleGetProductsByStore(c *fiber.Ctx) error {
	storeID := c.Params("id")
	products, err := h.service.GetProductsByStore(storeID)
	if err != nil {
		log.Printf("Error getting products for store %s: %v", storeID, err)
		return respondError(c, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// HandleGetProducts retrieves all products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		log.Printf("Error getting all products: %v", err)
		return respondError(c, "Could not retrieve products", err)
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	productID := c.Params("id")
	product, err := h.service.GetProductByID(productID)
	if err != nil {
		log.Printf("Error getting product by ID %s: %v", productID, err)
		return respondError(c, "Could not retrieve product", err)
	}
	return c.JSON(product)
}

// HandleGetAvailableStock returns the quantity not yet promised to pending orders.
func (h *ProductHandler) HandleGetAvailableStock(c *fiber.Ctx) error {
	productID := c.Params("id")
	available, err := h.service.AvailableStock(c.Context(), productID)
	if err != nil {
		log.Printf("Error getting available stock for product %s: %v", productID, err)
		return respondError(c, "Could not retrieve available stock", err)
	}
	return c.JSON(fiber.Map{
		"product_id":         productID,
		"available_quantity": available,
	})
}

// HandleCreateProduct creates a new listing for the caller's store.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	if err := h.validate.Struct(product); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	userID, role := actor(c)
	if err := h.service.CreateProduct(c.Context(), &product, userID, role); err != nil {
		log.Printf("Error creating product: %v", err)
		return respondError(c, "Could not create product", err)
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct updates listing metadata of an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	product.ID = c.Params("id")

	userID, role := actor(c)
	if err := h.service.UpdateProduct(c.Context(), &product, userID, role); err != nil {
		log.Printf("Error updating product %s: %v", product.ID, err)
		return respondError(c, "Could not update product", err)
	}
	return c.JSON(fiber.Map{
		"message": "Product updated",
	})
}

type restockRequest struct {
	TotalQuantity *int `json:"total_quantity" validate:"required"`
}

// HandleRestock sets the product's total stock through the ledger, which
// refuses to shrink it below what pending orders already hold.
func (h *ProductHandler) HandleRestock(c *fiber.Ctx) error {
	productID := c.Params("id")

	var req restockRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.TotalQuantity == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "total_quantity is required for restock.",
		})
	}

	userID, role := actor(c)
	if err := h.service.Restock(c.Context(), productID, *req.TotalQuantity, userID, role); err != nil {
		log.Printf("Error restocking product %s: %v", productID, err)
		return respondError(c, "Could not restock product", err)
	}
	return c.JSON(fiber.Map{
		"message": "Product restocked",
	})
}

// HandleDeleteProduct removes a listing. Historical orders keep their price
// snapshots and are unaffected.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	productID := c.Params("id")
	userID, role := actor(c)

	if err := h.service.DeleteProduct(c.Context(), productID, userID, role); err != nil {
		log.Printf("Error deleting product %s: %v", productID, err)
		return respondError(c, "Could not delete product", err)
	}
	return c.JSON(fiber.Map{
		"message": "Product deleted",
	})
}
