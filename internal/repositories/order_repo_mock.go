package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pasar/internal/models"

	"github.com/google/uuid"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
// It shares a MockStockRepository so that reservation-coupled operations have
// the same exactly-once semantics as the database-backed implementation: the
// status compare-and-set decides a single winner, and only the winner touches
// the ledger.
type MockOrderRepository struct {
	orders map[string]models.Order
	stock  *MockStockRepository
	mu     sync.Mutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository backed
// by the given in-memory stock ledger.
func NewMockOrderRepository(stock *MockStockRepository) *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
		stock:  stock,
	}
}

// GetAll returns all orders.
func (r *MockOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orderList = append(orderList, order)
	}
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, models.ErrNotFound)
	}
	return &order, nil
}

// GetByUser returns all orders for a customer.
func (r *MockOrderRepository) GetByUser(ctx context.Context, userID string) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var orderList []models.Order
	for _, order := range r.orders {
		if order.UserID == userID {
			orderList = append(orderList, order)
		}
	}
	return orderList, nil
}

// CreateWithReservation reserves stock for every item, all-or-nothing, then
// stores the order.
func (r *MockOrderRepository) CreateWithReservation(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	if err := r.stock.reserveAll(order.Items); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	r.orders[order.ID] = *order
	return nil
}

// Transition performs the status compare-and-set and, for the single winner,
// applies the paired ledger effect.
func (r *MockOrderRepository) Transition(ctx context.Context, id string, from, to models.OrderStatus, paymentRef string) error {
	r.mu.Lock()
	order, ok := r.orders[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("order %s: %w", id, models.ErrNotFound)
	}
	if order.Status != from {
		r.mu.Unlock()
		return fmt.Errorf("order %s is no longer %s: %w", id, from, models.ErrInvalidTransition)
	}
	order.Status = to
	if paymentRef != "" {
		order.PaymentReference = paymentRef
	}
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	items := order.Items
	r.mu.Unlock()

	switch models.TransitionLedgerEffect(from, to) {
	case models.LedgerConsume:
		for _, item := range items {
			if err := r.stock.Consume(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
	case models.LedgerRelease:
		for _, item := range items {
			if err := r.stock.Release(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
	}
	return nil
}

// CountRecentAwaiting counts unpaid orders a customer created since the cutoff.
func (r *MockOrderRepository) CountRecentAwaiting(ctx context.Context, userID string, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, order := range r.orders {
		if order.UserID == userID && order.Status == models.OrderAwaitingPayment && !order.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

// FindExpired returns orders still awaiting payment past their deadline.
func (r *MockOrderRepository) FindExpired(ctx context.Context, now time.Time, limit int) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var expired []models.Order
	for _, order := range r.orders {
		if order.Status == models.OrderAwaitingPayment && order.ExpiresAt.Before(now) {
			expired = append(expired, order)
			if len(expired) == limit {
				break
			}
		}
	}
	return expired, nil
}
