package repositories

import (
	"context"
	"time"

	"pasar/internal/models"
)

// OrderRepository defines the interface for order data access. The
// reservation-coupled operations (CreateWithReservation, Transition) pair the
// order mutation and the stock ledger effect in one atomic unit so that stock
// is never consumed or released more than once per order.
type OrderRepository interface {
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByUser(ctx context.Context, userID string) ([]models.Order, error)

	// CreateWithReservation inserts the order and its items while reserving
	// stock for every item, all-or-nothing. Items must be sorted by ascending
	// product ID before the call.
	CreateWithReservation(ctx context.Context, order *models.Order) error

	// Transition performs a compare-and-set from the expected current status
	// to the new one, applying the paired ledger effect in the same atomic
	// unit. A lost race or stale expectation fails with
	// models.ErrInvalidTransition and leaves the ledger untouched.
	Transition(ctx context.Context, id string, from, to models.OrderStatus, paymentRef string) error

	// CountRecentAwaiting counts the user's AWAITING_PAYMENT orders created
	// at or after the given time. Used for checkout admission control.
	CountRecentAwaiting(ctx context.Context, userID string, since time.Time) (int, error)

	// FindExpired returns up to limit orders still AWAITING_PAYMENT whose
	// deadline has passed.
	FindExpired(ctx context.Context, now time.Time, limit int) ([]models.Order, error)
}
