package repositories

import (
	"context"
	"fmt"
	"sync"

	"pasar/internal/models"
)

// MockStockRepository is an in-memory implementation of StockRepository.
// All operations hold one mutex, giving the same atomicity guarantees as the
// database-backed implementation.
type MockStockRepository struct {
	products map[string]*models.Product
	mu       sync.Mutex
}

// NewMockStockRepository creates a new instance of MockStockRepository.
func NewMockStockRepository() *MockStockRepository {
	return &MockStockRepository{
		products: make(map[string]*models.Product),
	}
}

// Seed registers a product with the ledger.
func (r *MockStockRepository) Seed(product models.Product) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := product
	r.products[p.ID] = &p
}

// Snapshot returns a copy of the product's current ledger state.
func (r *MockStockRepository) Snapshot(productID string) (models.Product, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[productID]
	if !ok {
		return models.Product{}, false
	}
	return *p, true
}

// Reserve claims stock for a pending order.
func (r *MockStockRepository) Reserve(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("reserve %d of product %s: %w", quantity, productID, models.ErrInvalidQuantity)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[productID]
	if !ok {
		return fmt.Errorf("product %s: %w", productID, models.ErrNotFound)
	}
	if p.AvailableQuantity() < quantity {
		return fmt.Errorf("product %s: %w", productID, models.ErrInsufficientStock)
	}
	p.ReservedQuantity += quantity
	return nil
}

// Release returns reserved stock, floored at zero.
func (r *MockStockRepository) Release(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("release %d of product %s: %w", quantity, productID, models.ErrInvalidQuantity)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[productID]
	if !ok {
		return fmt.Errorf("product %s: %w", productID, models.ErrNotFound)
	}
	p.ReservedQuantity -= quantity
	if p.ReservedQuantity < 0 {
		p.ReservedQuantity = 0
	}
	return nil
}

// Consume permanently decrements both pools.
func (r *MockStockRepository) Consume(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("consume %d of product %s: %w", quantity, productID, models.ErrInvalidQuantity)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[productID]
	if !ok {
		return fmt.Errorf("product %s: %w", productID, models.ErrNotFound)
	}
	if p.ReservedQuantity < quantity || p.TotalQuantity < quantity {
		return fmt.Errorf("consume of %d on product %s exceeds ledger counters", quantity, productID)
	}
	p.TotalQuantity -= quantity
	p.ReservedQuantity -= quantity
	return nil
}

// Restock sets total_quantity, refusing to shrink below the reserved pool.
func (r *MockStockRepository) Restock(ctx context.Context, productID string, newTotal int) error {
	if newTotal < 0 {
		return fmt.Errorf("restock product %s to %d: %w", productID, newTotal, models.ErrInvalidQuantity)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[productID]
	if !ok {
		return fmt.Errorf("product %s: %w", productID, models.ErrNotFound)
	}
	if newTotal < p.ReservedQuantity {
		return fmt.Errorf("restock product %s to %d below reserved stock: %w",
			productID, newTotal, models.ErrInvalidQuantity)
	}
	p.TotalQuantity = newTotal
	return nil
}

// AvailableQuantity returns the stock not yet promised to pending orders.
func (r *MockStockRepository) AvailableQuantity(ctx context.Context, productID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[productID]
	if !ok {
		return 0, fmt.Errorf("product %s: %w", productID, models.ErrNotFound)
	}
	return p.AvailableQuantity(), nil
}

// reserveAll atomically reserves every item or none; items must already be
// sorted by product ID. Used by MockOrderRepository to mirror the one
// transaction the database-backed checkout runs in.
func (r *MockStockRepository) reserveAll(items []models.OrderItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, it := range items {
		p, ok := r.products[it.ProductID]
		if !ok {
			return fmt.Errorf("product %s: %w", it.ProductID, models.ErrNotFound)
		}
		if p.AvailableQuantity() < it.Quantity {
			return fmt.Errorf("product %s: %w", it.ProductID, models.ErrInsufficientStock)
		}
	}
	for _, it := range items {
		r.products[it.ProductID].ReservedQuantity += it.Quantity
	}
	return nil
}
