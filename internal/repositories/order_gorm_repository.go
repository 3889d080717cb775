package repositories

import (
	"context"
	"fmt"
	"sort"
	"time"

	"pasar/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAll retrieves all orders with their items.
func (r *GORMOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).Preload("Items").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order with its items.
func (r *GORMOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("order %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	return &order, nil
}

// GetByUser retrieves all orders for a customer.
func (r *GORMOrderRepository) GetByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.WithContext(ctx).Preload("Items").
		Where("user_id = ?", userID).Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders for user %s: %w", userID, err)
	}
	return orders, nil
}

// CreateWithReservation inserts the order and reserves stock for every item
// in one transaction. If any single reservation fails, the whole transaction
// rolls back and no partial reservation is left in place.
func (r *GORMOrderRepository) CreateWithReservation(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range order.Items {
			if err := reserveStockTx(tx, item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
}

// Transition moves the order from one status to another with a conditional
// update keyed on the current status, then applies the paired ledger effect
// inside the same transaction. Exactly one of two racing callers wins; the
// loser gets models.ErrInvalidTransition and the ledger is untouched.
func (r *GORMOrderRepository) Transition(ctx context.Context, id string, from, to models.OrderStatus, paymentRef string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{"status": to}
		if paymentRef != "" {
			updates["payment_reference"] = paymentRef
		}
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, from).
			Updates(updates)
		if res.Error != nil {
			return fmt.Errorf("failed to transition order %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.Order{}).Where("id = ?", id).Count(&count).Error; err != nil {
				return fmt.Errorf("failed to check order %s: %w", id, err)
			}
			if count == 0 {
				return fmt.Errorf("order %s: %w", id, models.ErrNotFound)
			}
			return fmt.Errorf("order %s is no longer %s: %w", id, from, models.ErrInvalidTransition)
		}

		effect := models.TransitionLedgerEffect(from, to)
		if effect == models.LedgerNone {
			return nil
		}

		var items []models.OrderItem
		if err := tx.Where("order_id = ?", id).Find(&items).Error; err != nil {
			return fmt.Errorf("failed to load items for order %s: %w", id, err)
		}
		sort.Slice(items, func(i, j int) bool { return items[i].ProductID < items[j].ProductID })

		for _, item := range items {
			var err error
			switch effect {
			case models.LedgerConsume:
				err = consumeStockTx(tx, item.ProductID, item.Quantity)
			case models.LedgerRelease:
				err = releaseStockTx(tx, item.ProductID, item.Quantity)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// CountRecentAwaiting counts unpaid orders a customer created since the cutoff.
func (r *GORMOrderRepository) CountRecentAwaiting(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("user_id = ? AND status = ? AND created_at >= ?", userID, models.OrderAwaitingPayment, since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count unpaid orders for user %s: %w", userID, err)
	}
	return int(count), nil
}

// FindExpired returns orders still awaiting payment past their deadline.
func (r *GORMOrderRepository) FindExpired(ctx context.Context, now time.Time, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND expires_at < ?", models.OrderAwaitingPayment, now).
		Limit(limit).Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find expired orders: %w", err)
	}
	return orders, nil
}
