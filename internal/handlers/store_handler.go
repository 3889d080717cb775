package handlers

import (
	"fmt"
	"log"

	"pasar/internal/models"
	"pasar/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// StoreHandler handles HTTP requests for stores and their approval lifecycle.
type StoreHandler struct {
	service  *services.StoreService
	validate *validator.Validate
}

// NewStoreHandler creates a new StoreHandler.
func NewStoreHandler(service *services.StoreService) *StoreHandler {
	return &StoreHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the store routes with the Fiber app.
func (h *StoreHandler) RegisterRoutes(router fiber.Router) {
	storeRoutes := router.Group("/stores")
	storeRoutes.Get("/", h.HandleGetStores)
	storeRoutes.Get("/:id", h.HandleGetStoreByID)
	storeRoutes.Post("/", h.HandleCreateStore)
	storeRoutes.Put("/:id", h.HandleUpdateStore)
	storeRoutes.Patch("/:id/status", h.HandleSetStatus)
}

// HandleGetStores retrieves all stores.
func (h *StoreHandler) HandleGetStores(c *fiber.Ctx) error {
	stores, err := h.service.GetAllStores(c.Context())
	if err != nil {
		log.Printf("Error getting all stores: %v", err)
		return respondError(c, "Could not retrieve stores", err)
	}
	return c.JSON(stores)
}

// HandleGetStoreByID retrieves a single store by its ID.
func (h *StoreHandler) HandleGetStoreByID(c *fiber.Ctx) error {
	storeID := c.Params("id")
	store, err := h.service.GetStore(c.Context(), storeID)
	if err != nil {
		log.Printf("Error getting store by ID %s: %v", storeID, err)
		return respondError(c, "Could not retrieve store", err)
	}
	return c.JSON(store)
}

// HandleCreateStore registers a new store for the caller. New stores start
// pending and cannot sell until an admin approves them.
func (h *StoreHandler) HandleCreateStore(c *fiber.Ctx) error {
	var store models.Store
	if err := c.BodyParser(&store); err != nil {
		log.Printf("Error parsing store request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	userID, _ := actor(c)
	store.OwnerID = userID

	if err := h.validate.Struct(store); err != nil {
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

	if err := h.service.CreateStore(c.Context(), &store); err != nil {
		log.Printf("Error creating store: %v", err)
		return respondError(c, "Could not create store", err)
	}
	return c.Status(fiber.StatusCreated).JSON(store)
}

// HandleUpdateStore updates store metadata. Status never changes here.
func (h *StoreHandler) HandleUpdateStore(c *fiber.Ctx) error {
	var store models.Store
	if err := c.BodyParser(&store); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	store.ID = c.Params("id")

	userID, role := actor(c)
	if err := h.service.UpdateStore(c.Context(), &store, userID, role); err != nil {
		log.Printf("Error updating store %s: %v", store.ID, err)
		return respondError(c, "Could not update store", err)
	}
	return c.JSON(fiber.Map{
		"message": "Store updated",
	})
}

type storeStatusRequest struct {
	Status models.StoreStatus `json:"status" validate:"required"`
	Reason string             `json:"reason"`
}

// HandleSetStatus moves a store through its approval lifecycle. Admin only.
func (h *StoreHandler) HandleSetStatus(c *fiber.Ctx) error {
	_, role := actor(c)
	if role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Only admins can change store status.",
		})
	}

	storeID := c.Params("id")

	var req storeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "status is required.",
		})
	}

	if err := h.service.SetStatus(c.Context(), storeID, req.Status, req.Reason); err != nil {
		log.Printf("Error setting status for store %s: %v", storeID, err)
		return respondError(c, "Could not update store status", err)
	}
	return c.JSON(fiber.Map{
		"message": "Store status updated",
	})
}
