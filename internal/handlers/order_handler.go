package handlers

import (
	"log"

	"pasar/internal/models"
	"pasar/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for checkout and the order lifecycle.
type OrderHandler struct {
	orderService    *services.OrderService
	checkoutService *services.CheckoutService
	validate        *validator.Validate
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *services.OrderService, checkoutService *services.CheckoutService) *OrderHandler {
	return &OrderHandler{
		orderService:    orderService,
		checkoutService: checkoutService,
		validate:        validator.New(),
	}
}

// RegisterRoutes registers the checkout and order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/checkout", h.HandleCheckout)

	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Post("/:id/cancel", h.HandleCancelOrder)
	orderRoutes.Post("/:id/pay", h.HandleMarkPaid)
	orderRoutes.Patch("/:id/status", h.HandleAdvanceOrder)
}

type checkoutRequest struct {
	Items []services.CheckoutItem `json:"items" validate:"required,min=1,dive"`
}

// HandleCheckout submits a cart for the authenticated customer.
func (h *OrderHandler) HandleCheckout(c *fiber.Ctx) error {
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing checkout request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "At least one item is required for checkout.",
			"error":   err.Error(),
		})
	}

	userID, _ := actor(c)
	order, err := h.checkoutService.Checkout(c.Context(), userID, req.Items)
	if err != nil {
		log.Printf("Checkout failed for user %s: %v", userID, err)
		return respondError(c, "Could not complete checkout", err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// HandleGetOrders retrieves the caller's orders, or every order for admins.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	userID, role := actor(c)

	var orders []models.Order
	var err error
	if role == models.RoleAdmin {
		orders, err = h.orderService.GetAllOrders(c.Context())
	} else {
		orders, err = h.orderService.GetOrdersForUser(c.Context(), userID)
	}
	if err != nil {
		log.Printf("Error getting orders: %v", err)
		return respondError(c, "Could not retrieve orders", err)
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.orderService.GetOrderByID(c.Context(), orderID)
	if err != nil {
		log.Printf("Error getting order by ID %s: %v", orderID, err)
		return respondError(c, "Could not retrieve order", err)
	}

	userID, role := actor(c)
	if role != models.RoleAdmin && order.UserID != userID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Order not found",
		})
	}
	return c.JSON(order)
}

// HandleCancelOrder cancels an unpaid order, releasing its reservation. An
// order that already progressed is reported as a conflict, not ignored.
func (h *OrderHandler) HandleCancelOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	userID, role := actor(c)

	if err := h.orderService.Cancel(c.Context(), orderID, userID, role); err != nil {
		log.Printf("Error cancelling order %s: %v", orderID, err)
		return respondError(c, "Could not cancel order", err)
	}
	return c.JSON(fiber.Map{
		"message": "Order cancelled",
	})
}

type paymentRequest struct {
	PaymentReference string `json:"payment_reference" validate:"required"`
}

// HandleMarkPaid processes a payment confirmation. Duplicate deliveries of
// the same confirmation are answered idempotently.
func (h *OrderHandler) HandleMarkPaid(c *fiber.Ctx) error {
	orderID := c.Params("id")

	var req paymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "payment_reference is required.",
			"error":   err.Error(),
		})
	}

	if err := h.orderService.MarkPaid(c.Context(), orderID, req.PaymentReference); err != nil {
		log.Printf("Error marking order %s paid: %v", orderID, err)
		return respondError(c, "Could not confirm payment", err)
	}
	return c.JSON(fiber.Map{
		"message": "Payment confirmed",
	})
}

type advanceRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

// HandleAdvanceOrder lets an admin advance a paid order through fulfillment
// (PROCESSING, SHIPPED, DELIVERED) or to REFUNDED.
func (h *OrderHandler) HandleAdvanceOrder(c *fiber.Ctx) error {
	_, role := actor(c)
	if role != models.RoleAdmin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Admin role required",
		})
	}

	orderID := c.Params("id")
	var req advanceRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status is required for order status update.",
		})
	}

	if err := h.orderService.Advance(c.Context(), orderID, req.Status); err != nil {
		log.Printf("Error advancing order %s to %s: %v", orderID, req.Status, err)
		return respondError(c, "Could not update order status", err)
	}
	return c.JSON(fiber.Map{
		"message": "Order status updated",
		"status":  req.Status,
	})
}
