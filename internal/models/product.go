package models

import "gorm.io/gorm"

// Product represents a listing owned by exactly one store.
//
// The stock ledger invariant 0 <= ReservedQuantity <= TotalQuantity is
// enforced by the stock repository; nothing else may mutate these counters.
type Product struct {
	ID               string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	StoreID          string `json:"store_id" gorm:"index;type:varchar(36)" validate:"required"`
	Name             string `json:"name" validate:"required,min=3,max=100"`
	Description      string `json:"description" validate:"omitempty,max=500"`
	Price            int64  `json:"price" validate:"gte=0"` // smallest currency unit
	TotalQuantity    int    `json:"total_quantity" validate:"gte=0"`
	ReservedQuantity int    `json:"reserved_quantity" validate:"gte=0"`
	IsActive         bool   `json:"is_active"`
	gorm.Model       `json:"-"`
}

// AvailableQuantity is the stock not yet promised to pending orders.
func (p *Product) AvailableQuantity() int {
	return p.TotalQuantity - p.ReservedQuantity
}
