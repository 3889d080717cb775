package repositories

import (
	"context"
	"fmt"
	"log"

	"pasar/internal/models"

	"gorm.io/gorm"
)

// GORMStockRepository is a GORM implementation of StockRepository.
//
// Every mutation is a single conditional UPDATE whose WHERE clause carries the
// ledger invariant, so the database row lock is the only mutual exclusion
// needed and two racing callers can never jointly exceed available stock.
type GORMStockRepository struct {
	db *gorm.DB
}

// NewGORMStockRepository creates a new instance of GORMStockRepository.
func NewGORMStockRepository(db *gorm.DB) *GORMStockRepository {
	return &GORMStockRepository{
		db: db,
	}
}

// Reserve claims stock for a pending order.
func (r *GORMStockRepository) Reserve(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("reserve %d of product %s: %w", quantity, productID, models.ErrInvalidQuantity)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return reserveStockTx(tx, productID, quantity)
	})
}

// Release returns reserved stock, floored at zero.
func (r *GORMStockRepository) Release(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("release %d of product %s: %w", quantity, productID, models.ErrInvalidQuantity)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return releaseStockTx(tx, productID, quantity)
	})
}

// Consume permanently decrements both pools.
func (r *GORMStockRepository) Consume(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return fmt.Errorf("consume %d of product %s: %w", quantity, productID, models.ErrInvalidQuantity)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return consumeStockTx(tx, productID, quantity)
	})
}

// Restock sets total_quantity, refusing to shrink below the reserved pool.
func (r *GORMStockRepository) Restock(ctx context.Context, productID string, newTotal int) error {
	if newTotal < 0 {
		return fmt.Errorf("restock product %s to %d: %w", productID, newTotal, models.ErrInvalidQuantity)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).
			Where("id = ? AND reserved_quantity <= ?", productID, newTotal).
			UpdateColumn("total_quantity", newTotal)
		if res.Error != nil {
			return fmt.Errorf("failed to restock product %s: %w", productID, res.Error)
		}
		if res.RowsAffected == 0 {
			exists, err := productExistsTx(tx, productID)
			if err != nil {
				return err
			}
			if !exists {
				return fmt.Errorf("product %s: %w", productID, models.ErrNotFound)
			}
			return fmt.Errorf("restock product %s to %d below reserved stock: %w",
				productID, newTotal, models.ErrInvalidQuantity)
		}
		return nil
	})
}

// AvailableQuantity returns the stock not yet promised to pending orders.
func (r *GORMStockRepository) AvailableQuantity(ctx context.Context, productID string) (int, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", productID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return 0, fmt.Errorf("product %s: %w", productID, models.ErrNotFound)
		}
		return 0, fmt.Errorf("failed to get product %s: %w", productID, err)
	}
	return product.AvailableQuantity(), nil
}

// reserveStockTx applies a reservation inside an existing transaction. The
// availability check rides in the WHERE clause so the reserve is atomic.
func reserveStockTx(tx *gorm.DB, productID string, quantity int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND total_quantity - reserved_quantity >= ?", productID, quantity).
		UpdateColumn("reserved_quantity", gorm.Expr("reserved_quantity + ?", quantity))
	if res.Error != nil {
		return fmt.Errorf("failed to reserve stock for product %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		exists, err := productExistsTx(tx, productID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("product %s: %w", productID, models.ErrNotFound)
		}
		return fmt.Errorf("product %s: %w", productID, models.ErrInsufficientStock)
	}
	return nil
}

// releaseStockTx returns reserved stock inside an existing transaction,
// flooring the counter at zero in a single statement.
func releaseStockTx(tx *gorm.DB, productID string, quantity int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ?", productID).
		UpdateColumn("reserved_quantity", gorm.Expr(
			"CASE WHEN reserved_quantity >= ? THEN reserved_quantity - ? ELSE 0 END",
			quantity, quantity))
	if res.Error != nil {
		return fmt.Errorf("failed to release stock for product %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %s: %w", productID, models.ErrNotFound)
	}
	return nil
}

// consumeStockTx permanently decrements both pools inside an existing
// transaction. A guard failure here means a reservation went missing, which
// is an invariant breach, not a user error.
func consumeStockTx(tx *gorm.DB, productID string, quantity int) error {
	res := tx.Model(&models.Product{}).
		Where("id = ? AND reserved_quantity >= ? AND total_quantity >= ?",
			productID, quantity, quantity).
		UpdateColumns(map[string]interface{}{
			"total_quantity":    gorm.Expr("total_quantity - ?", quantity),
			"reserved_quantity": gorm.Expr("reserved_quantity - ?", quantity),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to consume stock for product %s: %w", productID, res.Error)
	}
	if res.RowsAffected == 0 {
		log.Printf("INVARIANT BREACH: consume of %d on product %s exceeds ledger counters, rolling back",
			quantity, productID)
		return fmt.Errorf("consume of %d on product %s exceeds ledger counters", quantity, productID)
	}
	return nil
}

func productExistsTx(tx *gorm.DB, productID string) (bool, error) {
	var count int64
	if err := tx.Model(&models.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check product %s: %w", productID, err)
	}
	return count > 0, nil
}
