package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"pasar/internal/models"
	"pasar/internal/repositories"

	"github.com/google/uuid"
)

// EventPublisher publishes order lifecycle events. *rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// CheckoutConfig carries the policy knobs of the checkout orchestrator.
// These are configuration, not invariants of the engine.
type CheckoutConfig struct {
	OrderExpiry      time.Duration // deadline for AWAITING_PAYMENT orders
	OrderLimitMax    int           // max unpaid orders per customer in the window
	OrderLimitWindow time.Duration
}

// DefaultCheckoutConfig returns the stock policy: 24h expiry, at most 3
// unpaid orders per customer per 24h.
func DefaultCheckoutConfig() CheckoutConfig {
	return CheckoutConfig{
		OrderExpiry:      24 * time.Hour,
		OrderLimitMax:    3,
		OrderLimitWindow: 24 * time.Hour,
	}
}

// CheckoutItem is one line of a cart submission.
type CheckoutItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required"`
}

// CheckoutService validates a cart and atomically creates an order while
// reserving stock across all of its items.
type CheckoutService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	storeRepo   repositories.StoreRepository
	mqClient    EventPublisher
	cfg         CheckoutConfig
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, storeRepo repositories.StoreRepository, mqClient EventPublisher, cfg CheckoutConfig) *CheckoutService {
	return &CheckoutService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		storeRepo:   storeRepo,
		mqClient:    mqClient,
		cfg:         cfg,
	}
}

// Checkout turns a cart into an AWAITING_PAYMENT order.
//
// Duplicate product lines are summed so a cart can never double-reserve the
// same product under two entries. Reservation across all items is
// all-or-nothing; a single shortage rolls everything back.
func (s *CheckoutService) Checkout(ctx context.Context, userID string, items []CheckoutItem) (*models.Order, error) {
	if userID == "" {
		return nil, fmt.Errorf("customer id is required")
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("cart must contain at least one item: %w", models.ErrInvalidQuantity)
	}

	merged := make(map[string]int, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("quantity %d for product %s: %w", item.Quantity, item.ProductID, models.ErrInvalidQuantity)
		}
		merged[item.ProductID] += item.Quantity
	}

	// Admission control: coarse backpressure against a single customer
	// holding unbounded stock hostage in unpaid orders.
	since := time.Now().Add(-s.cfg.OrderLimitWindow)
	var unpaid int
	err := withRetry(ctx, "count unpaid orders", func() error {
		var countErr error
		unpaid, countErr = s.orderRepo.CountRecentAwaiting(ctx, userID, since)
		return countErr
	})
	if err != nil {
		return nil, err
	}
	if unpaid >= s.cfg.OrderLimitMax {
		return nil, fmt.Errorf("customer %s has %d unpaid orders: %w", userID, unpaid, models.ErrOrderLimitExceeded)
	}

	// Resolve products, require every owning store to be APPROVED, and
	// snapshot unit prices. Later price changes must not touch this order.
	sellable := make(map[string]bool)
	orderItems := make([]models.OrderItem, 0, len(merged))
	var total int64
	for productID, quantity := range merged {
		product, err := s.productRepo.GetByID(productID)
		if err != nil {
			return nil, err
		}
		if !product.IsActive {
			return nil, fmt.Errorf("product %s is not active: %w", productID, models.ErrNotFound)
		}
		approved, seen := sellable[product.StoreID]
		if !seen {
			store, err := s.storeRepo.GetByID(ctx, product.StoreID)
			if err != nil {
				return nil, err
			}
			approved = store.Sellable()
			sellable[product.StoreID] = approved
		}
		if !approved {
			return nil, fmt.Errorf("store %s: %w", product.StoreID, models.ErrStoreNotSellable)
		}

		orderItems = append(orderItems, models.OrderItem{
			ProductID: productID,
			Quantity:  quantity,
			UnitPrice: product.Price,
		})
		total += product.Price * int64(quantity)
	}

	// Reserve in ascending product-id order so two carts sharing products
	// cannot deadlock against each other.
	sort.Slice(orderItems, func(i, j int) bool { return orderItems[i].ProductID < orderItems[j].ProductID })

	order := &models.Order{
		ID:          uuid.New().String(),
		UserID:      userID,
		Items:       orderItems,
		TotalAmount: total,
		Status:      models.OrderAwaitingPayment,
		ExpiresAt:   time.Now().Add(s.cfg.OrderExpiry),
	}

	err = withRetry(ctx, "create order", func() error {
		return s.orderRepo.CreateWithReservation(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.publishOrderEvent("order.created", order)
	return order, nil
}

// publishOrderEvent publishes a lifecycle event, best-effort. A broker outage
// never fails the business operation.
func (s *CheckoutService) publishOrderEvent(routingKey string, order *models.Order) {
	publishOrderEvent(s.mqClient, routingKey, order)
}

func publishOrderEvent(mqClient EventPublisher, routingKey string, order *models.Order) {
	if mqClient == nil {
		log.Println("RabbitMQ client is not initialized. Skipping message publication.")
		return
	}
	event := map[string]interface{}{
		"orderID": order.ID,
		"userID":  order.UserID,
		"status":  order.Status,
		"total":   order.TotalAmount,
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal order event to JSON: %v", err)
		return
	}
	if err := mqClient.Publish("order", routingKey, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for order %s: %v", routingKey, order.ID, err)
	}
}
