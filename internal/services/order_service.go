package services

import (
	"context"
	"errors"
	"fmt"

	"pasar/internal/models"
	"pasar/internal/repositories"
)

// OrderService drives the order lifecycle state machine. Every transition is
// a compare-and-set on the current status paired with at most one stock
// ledger effect, executed in one atomic unit by the repository, so duplicate
// notifications can never double-consume or double-release stock.
type OrderService struct {
	orderRepo repositories.OrderRepository
	mqClient  EventPublisher
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, mqClient EventPublisher) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		mqClient:  mqClient,
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]models.Order, error) {
	return s.orderRepo.GetAll(ctx)
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(ctx context.Context, id string) (*models.Order, error) {
	return s.orderRepo.GetByID(ctx, id)
}

// GetOrdersForUser retrieves all orders belonging to a customer.
func (s *OrderService) GetOrdersForUser(ctx context.Context, userID string) ([]models.Order, error) {
	return s.orderRepo.GetByUser(ctx, userID)
}

// MarkPaid handles a payment confirmation: AWAITING_PAYMENT -> PAID, which
// consumes the reservation. A webhook firing twice with the same payment
// reference is answered idempotently; any other out-of-order confirmation
// fails with models.ErrInvalidTransition.
func (s *OrderService) MarkPaid(ctx context.Context, orderID, paymentRef string) error {
	if paymentRef == "" {
		return fmt.Errorf("payment reference is required")
	}
	err := withRetry(ctx, "mark order paid", func() error {
		return s.orderRepo.Transition(ctx, orderID, models.OrderAwaitingPayment, models.OrderPaid, paymentRef)
	})
	if errors.Is(err, models.ErrInvalidTransition) {
		order, getErr := s.orderRepo.GetByID(ctx, orderID)
		if getErr == nil && order.Status == models.OrderPaid && order.PaymentReference == paymentRef {
			// Duplicate delivery of the same confirmation; the consume
			// already happened exactly once.
			return nil
		}
		return err
	}
	if err != nil {
		return err
	}

	s.publishStatusEvent(ctx, orderID, "order.paid")
	return nil
}

// Cancel handles a customer or admin cancellation of an unpaid order:
// AWAITING_PAYMENT -> CANCELLED, releasing the reservation. An order that
// already progressed is rejected, not silently ignored, so the caller can
// tell the user it moved on.
func (s *OrderService) Cancel(ctx context.Context, orderID, actorID, role string) error {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if role != models.RoleAdmin && order.UserID != actorID {
		return fmt.Errorf("order %s does not belong to user %s: %w", orderID, actorID, models.ErrNotFound)
	}

	err = withRetry(ctx, "cancel order", func() error {
		return s.orderRepo.Transition(ctx, orderID, models.OrderAwaitingPayment, models.OrderCancelled, "")
	})
	if err != nil {
		return err
	}

	s.publishStatusEvent(ctx, orderID, "order.cancelled")
	return nil
}

// Expire moves a stale unpaid order to EXPIRED, releasing its reservation.
// Safe to call from concurrent sweeper instances: the compare-and-set lets
// exactly one caller win.
func (s *OrderService) Expire(ctx context.Context, orderID string) error {
	err := withRetry(ctx, "expire order", func() error {
		return s.orderRepo.Transition(ctx, orderID, models.OrderAwaitingPayment, models.OrderExpired, "")
	})
	if err != nil {
		return err
	}

	s.publishStatusEvent(ctx, orderID, "order.expired")
	return nil
}

// fulfillmentTargets are the statuses an admin may advance an order to after
// payment. All of them are ledger-neutral: the stock was consumed on PAID.
var fulfillmentTargets = map[models.OrderStatus]string{
	models.OrderProcessing: "order.processing",
	models.OrderShipped:    "order.shipped",
	models.OrderDelivered:  "order.delivered",
	models.OrderRefunded:   "order.refunded",
}

// Advance moves a paid order along the fulfillment chain
// (PROCESSING -> SHIPPED -> DELIVERED) or to REFUNDED. Refunds do not restock;
// whether returned goods re-enter inventory is a separate business decision.
func (s *OrderService) Advance(ctx context.Context, orderID string, target models.OrderStatus) error {
	routingKey, ok := fulfillmentTargets[target]
	if !ok {
		return fmt.Errorf("status %s is not a fulfillment target: %w", target, models.ErrInvalidTransition)
	}

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !models.CanTransitionOrder(order.Status, target) {
		return fmt.Errorf("order %s cannot move from %s to %s: %w", orderID, order.Status, target, models.ErrInvalidTransition)
	}

	err = withRetry(ctx, "advance order", func() error {
		return s.orderRepo.Transition(ctx, orderID, order.Status, target, "")
	})
	if err != nil {
		return err
	}

	s.publishStatusEvent(ctx, orderID, routingKey)
	return nil
}

func (s *OrderService) publishStatusEvent(ctx context.Context, orderID, routingKey string) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return
	}
	publishOrderEvent(s.mqClient, routingKey, order)
}
