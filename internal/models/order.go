package models

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderAwaitingPayment OrderStatus = "AWAITING_PAYMENT"
	OrderPaid            OrderStatus = "PAID"
	OrderProcessing      OrderStatus = "PROCESSING"
	OrderShipped         OrderStatus = "SHIPPED"
	OrderDelivered       OrderStatus = "DELIVERED"
	OrderCancelled       OrderStatus = "CANCELLED"
	OrderRefunded        OrderStatus = "REFUNDED"
	OrderExpired         OrderStatus = "EXPIRED"
)

// validOrderTransitions is the single source of truth for the order state
// machine. DELIVERED, CANCELLED, REFUNDED and EXPIRED are terminal.
var validOrderTransitions = map[OrderStatus]map[OrderStatus]bool{
	OrderAwaitingPayment: {OrderPaid: true, OrderCancelled: true, OrderExpired: true},
	OrderPaid:            {OrderProcessing: true, OrderRefunded: true},
	OrderProcessing:      {OrderShipped: true},
	OrderShipped:         {OrderDelivered: true},
	OrderDelivered:       {},
	OrderCancelled:       {},
	OrderRefunded:        {},
	OrderExpired:         {},
}

// CanTransitionOrder reports whether an order may move from one status to another.
func CanTransitionOrder(from, to OrderStatus) bool {
	return validOrderTransitions[from][to]
}

// Terminal reports whether no further transition is permitted from s.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderDelivered, OrderCancelled, OrderRefunded, OrderExpired:
		return true
	}
	return false
}

// LedgerEffect describes the stock ledger call paired with a transition.
type LedgerEffect int

const (
	LedgerNone LedgerEffect = iota
	LedgerConsume
	LedgerRelease
)

// TransitionLedgerEffect returns the ledger call required when an order moves
// from one status to another: entering PAID consumes the reservation, leaving
// AWAITING_PAYMENT for CANCELLED or EXPIRED releases it, everything else is
// ledger-neutral (REFUNDED deliberately does not restock).
func TransitionLedgerEffect(from, to OrderStatus) LedgerEffect {
	if from != OrderAwaitingPayment {
		return LedgerNone
	}
	switch to {
	case OrderPaid:
		return LedgerConsume
	case OrderCancelled, OrderExpired:
		return LedgerRelease
	}
	return LedgerNone
}

// OrderItem is a single line of an order. UnitPrice is a snapshot of the
// product price at creation time; later price changes never touch it.
type OrderItem struct {
	ID        uint   `json:"-" gorm:"primaryKey"`
	OrderID   string `json:"-" gorm:"index;type:varchar(36)"`
	ProductID string `json:"product_id" gorm:"type:varchar(36)"`
	Quantity  int    `json:"quantity"`
	UnitPrice int64  `json:"unit_price"`
}

// Order represents a customer order. Items are fixed at creation; only
// Status and PaymentReference change afterwards.
type Order struct {
	ID               string      `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID           string      `json:"user_id" gorm:"index;type:varchar(36)"`
	Items            []OrderItem `json:"items" gorm:"foreignKey:OrderID"`
	TotalAmount      int64       `json:"total_amount"`
	Status           OrderStatus `json:"status" gorm:"type:varchar(20);index"`
	PaymentReference string      `json:"payment_reference,omitempty" gorm:"type:varchar(100)"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
	ExpiresAt        time.Time   `json:"expires_at" gorm:"index"`
}
