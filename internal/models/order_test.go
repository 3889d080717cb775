package models_test

import (
	"testing"

	"pasar/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestOrderTransitions(t *testing.T) {
	assert.True(t, models.CanTransitionOrder(models.OrderAwaitingPayment, models.OrderPaid))
	assert.True(t, models.CanTransitionOrder(models.OrderAwaitingPayment, models.OrderCancelled))
	assert.True(t, models.CanTransitionOrder(models.OrderAwaitingPayment, models.OrderExpired))
	assert.True(t, models.CanTransitionOrder(models.OrderPaid, models.OrderProcessing))
	assert.True(t, models.CanTransitionOrder(models.OrderPaid, models.OrderRefunded))
	assert.True(t, models.CanTransitionOrder(models.OrderProcessing, models.OrderShipped))
	assert.True(t, models.CanTransitionOrder(models.OrderShipped, models.OrderDelivered))

	// Skipping states is not allowed.
	assert.False(t, models.CanTransitionOrder(models.OrderAwaitingPayment, models.OrderShipped))
	assert.False(t, models.CanTransitionOrder(models.OrderPaid, models.OrderDelivered))
	assert.False(t, models.CanTransitionOrder(models.OrderProcessing, models.OrderRefunded))
}

func TestOrderTerminalStatesAreClosed(t *testing.T) {
	all := []models.OrderStatus{
		models.OrderAwaitingPayment, models.OrderPaid, models.OrderProcessing,
		models.OrderShipped, models.OrderDelivered, models.OrderCancelled,
		models.OrderRefunded, models.OrderExpired,
	}
	terminals := []models.OrderStatus{
		models.OrderDelivered, models.OrderCancelled, models.OrderRefunded, models.OrderExpired,
	}

	for _, from := range terminals {
		assert.True(t, from.Terminal())
		for _, to := range all {
			assert.False(t, models.CanTransitionOrder(from, to),
				"terminal state %s must not transition to %s", from, to)
		}
	}
}

func TestTransitionLedgerEffect(t *testing.T) {
	assert.Equal(t, models.LedgerConsume, models.TransitionLedgerEffect(models.OrderAwaitingPayment, models.OrderPaid))
	assert.Equal(t, models.LedgerRelease, models.TransitionLedgerEffect(models.OrderAwaitingPayment, models.OrderCancelled))
	assert.Equal(t, models.LedgerRelease, models.TransitionLedgerEffect(models.OrderAwaitingPayment, models.OrderExpired))

	// Everything past AWAITING_PAYMENT is ledger-neutral, including refunds.
	assert.Equal(t, models.LedgerNone, models.TransitionLedgerEffect(models.OrderPaid, models.OrderProcessing))
	assert.Equal(t, models.LedgerNone, models.TransitionLedgerEffect(models.OrderPaid, models.OrderRefunded))
	assert.Equal(t, models.LedgerNone, models.TransitionLedgerEffect(models.OrderShipped, models.OrderDelivered))
}

func TestStoreTransitions(t *testing.T) {
	assert.True(t, models.CanTransitionStore(models.StorePending, models.StoreApproved))
	assert.True(t, models.CanTransitionStore(models.StorePending, models.StoreRejected))
	assert.True(t, models.CanTransitionStore(models.StoreApproved, models.StoreSuspended))
	assert.True(t, models.CanTransitionStore(models.StoreRejected, models.StoreApproved))
	assert.True(t, models.CanTransitionStore(models.StoreSuspended, models.StoreApproved))

	assert.False(t, models.CanTransitionStore(models.StorePending, models.StoreSuspended))
	assert.False(t, models.CanTransitionStore(models.StoreApproved, models.StoreRejected))
	assert.False(t, models.CanTransitionStore(models.StoreApproved, models.StorePending))
}

func TestStoreSellableOnlyWhenApproved(t *testing.T) {
	for _, tc := range []struct {
		status   models.StoreStatus
		sellable bool
	}{
		{models.StorePending, false},
		{models.StoreApproved, true},
		{models.StoreRejected, false},
		{models.StoreSuspended, false},
	} {
		s := &models.Store{Status: tc.status}
		assert.Equal(t, tc.sellable, s.Sellable(), "status %s", tc.status)
		assert.Equal(t, tc.sellable, s.Editable(), "status %s", tc.status)
	}
}
