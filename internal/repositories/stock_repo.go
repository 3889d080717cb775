package repositories

import "context"

// StockRepository is the stock ledger: it owns the total_quantity and
// reserved_quantity counters of every product and is the only component
// allowed to mutate them. Every call is one atomic unit of work; concurrent
// callers on the same product never oversell.
type StockRepository interface {
	// Reserve claims quantity units for a pending order. Fails with
	// models.ErrInsufficientStock when available stock is short.
	Reserve(ctx context.Context, productID string, quantity int) error

	// Release returns quantity units from the reserved pool, floored at zero.
	// Callers are responsible for releasing exactly once per order.
	Release(ctx context.Context, productID string, quantity int) error

	// Consume permanently removes quantity units from both the total and
	// reserved pools, representing fulfillment commitment on payment.
	Consume(ctx context.Context, productID string, quantity int) error

	// Restock sets total_quantity to newTotal. Fails with
	// models.ErrInvalidQuantity when newTotal is below what is already
	// promised to pending orders.
	Restock(ctx context.Context, productID string, newTotal int) error

	// AvailableQuantity returns total_quantity - reserved_quantity.
	AvailableQuantity(ctx context.Context, productID string) (int, error)
}
