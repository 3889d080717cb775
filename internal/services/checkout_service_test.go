package services_test

import (
	"context"
	"testing"
	"time"

	"pasar/internal/models"
	"pasar/internal/repositories"
	"pasar/internal/services"

	"github.com/stretchr/testify/assert"
)

// checkoutFixture wires a CheckoutService against the in-memory repositories,
// matching the wiring in main but without a broker.
type checkoutFixture struct {
	stock    *repositories.MockStockRepository
	orders   *repositories.MockOrderRepository
	products *repositories.MockProductRepository
	stores   *repositories.MockStoreRepository
	checkout *services.CheckoutService
	order    *services.OrderService
}

func newCheckoutFixture(cfg services.CheckoutConfig) *checkoutFixture {
	stock := repositories.NewMockStockRepository()
	orders := repositories.NewMockOrderRepository(stock)
	products := repositories.NewMockProductRepository()
	stores := repositories.NewMockStoreRepository()
	return &checkoutFixture{
		stock:    stock,
		orders:   orders,
		products: products,
		stores:   stores,
		checkout: services.NewCheckoutService(orders, products, stores, nil, cfg),
		order:    services.NewOrderService(orders, nil),
	}
}

func (f *checkoutFixture) addStore(id string, status models.StoreStatus) {
	f.stores.Create(context.Background(), &models.Store{ID: id, OwnerID: "owner-" + id, Name: "Store " + id})
	if status != models.StorePending {
		var approvedAt *time.Time
		if status == models.StoreApproved {
			now := time.Now()
			approvedAt = &now
		}
		_ = f.stores.UpdateStatusIf(context.Background(), id, models.StorePending, status, approvedAt, "")
	}
}

func (f *checkoutFixture) addProduct(id, storeID string, price int64, total int) {
	p := models.Product{
		ID: id, StoreID: storeID, Name: "Product " + id,
		Price: price, TotalQuantity: total, IsActive: true,
	}
	f.products.Create(&p)
	f.stock.Seed(p)
}

func TestCheckout_Success(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(services.DefaultCheckoutConfig())
	f.addStore("store-1", models.StoreApproved)
	f.addProduct("prod-1", "store-1", 1500, 10)

	order, err := f.checkout.Checkout(ctx, "user-1", []services.CheckoutItem{
		{ProductID: "prod-1", Quantity: 4},
	})
	assert.NoError(t, err)
	assert.Equal(t, models.OrderAwaitingPayment, order.Status)
	assert.Equal(t, int64(6000), order.TotalAmount)
	assert.True(t, order.ExpiresAt.After(time.Now()))

	p, _ := f.stock.Snapshot("prod-1")
	assert.Equal(t, 4, p.ReservedQuantity)
	assert.Equal(t, 10, p.TotalQuantity)
}

func TestCheckout_CancelReleasesReservation(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(services.DefaultCheckoutConfig())
	f.addStore("store-1", models.StoreApproved)
	f.addProduct("prod-1", "store-1", 1500, 10)

	order, err := f.checkout.Checkout(ctx, "user-1", []services.CheckoutItem{
		{ProductID: "prod-1", Quantity: 4},
	})
	assert.NoError(t, err)

	assert.NoError(t, f.order.Cancel(ctx, order.ID, "user-1", models.RoleCustomer))

	got, err := f.order.GetOrderByID(ctx, order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, got.Status)

	p, _ := f.stock.Snapshot("prod-1")
	assert.Equal(t, 0, p.ReservedQuantity)
	assert.Equal(t, 10, p.TotalQuantity)
}

func TestCheckout_InsufficientStockAfterExhaustion(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(services.DefaultCheckoutConfig())
	f.addStore("store-1", models.StoreApproved)
	f.addProduct("prod-1", "store-1", 1000, 10)

	_, err := f.checkout.Checkout(ctx, "user-1", []services.CheckoutItem{
		{ProductID: "prod-1", Quantity: 10},
	})
	assert.NoError(t, err)

	_, err = f.checkout.Checkout(ctx, "user-2", []services.CheckoutItem{
		{ProductID: "prod-1", Quantity: 1},
	})
	assert.ErrorIs(t, err, models.ErrInsufficientStock)
}

func TestCheckout_StoreNotSellableUntilApproved(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(services.DefaultCheckoutConfig())
	f.addStore("store-1", models.StorePending)
	f.addProduct("prod-1", "store-1", 1000, 10)

	items := []services.CheckoutItem{{ProductID: "prod-1", Quantity: 1}}

	_, err := f.checkout.Checkout(ctx, "user-1", items)
	assert.ErrorIs(t, err, models.ErrStoreNotSellable)

	// No reservation may leak from the refused checkout.
	p, _ := f.stock.Snapshot("prod-1")
	assert.Equal(t, 0, p.ReservedQuantity)

	// Admin approves the store; the same checkout now succeeds.
	storeService := services.NewStoreService(f.stores)
	assert.NoError(t, storeService.SetStatus(ctx, "store-1", models.StoreApproved, ""))

	order, err := f.checkout.Checkout(ctx, "user-1", items)
	assert.NoError(t, err)
	assert.Equal(t, models.OrderAwaitingPayment, order.Status)
}

func TestCheckout_OrderLimitExceeded(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(services.DefaultCheckoutConfig())
	f.addStore("store-1", models.StoreApproved)
	f.addProduct("prod-1", "store-1", 1000, 100)

	items := []services.CheckoutItem{{ProductID: "prod-1", Quantity: 1}}
	for i := 0; i < 3; i++ {
		_, err := f.checkout.Checkout(ctx, "user-1", items)
		assert.NoError(t, err)
	}

	// The 4th unpaid order is refused regardless of stock availability.
	_, err := f.checkout.Checkout(ctx, "user-1", items)
	assert.ErrorIs(t, err, models.ErrOrderLimitExceeded)

	// A different customer is unaffected.
	_, err = f.checkout.Checkout(ctx, "user-2", items)
	assert.NoError(t, err)
}

func TestCheckout_RejectsNonPositiveQuantity(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(services.DefaultCheckoutConfig())
	f.addStore("store-1", models.StoreApproved)
	f.addProduct("prod-1", "store-1", 1000, 10)

	_, err := f.checkout.Checkout(ctx, "user-1", []services.CheckoutItem{
		{ProductID: "prod-1", Quantity: 0},
	})
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)

	_, err = f.checkout.Checkout(ctx, "user-1", []services.CheckoutItem{
		{ProductID: "prod-1", Quantity: -2},
	})
	assert.ErrorIs(t, err, models.ErrInvalidQuantity)

	_, err = f.checkout.Checkout(ctx, "user-1", nil)
	assert.Error(t, err)

	p, _ := f.stock.Snapshot("prod-1")
	assert.Equal(t, 0, p.ReservedQuantity)
}

func TestCheckout_DuplicateLinesAreSummed(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(services.DefaultCheckoutConfig())
	f.addStore("store-1", models.StoreApproved)
	f.addProduct("prod-1", "store-1", 500, 10)

	order, err := f.checkout.Checkout(ctx, "user-1", []services.CheckoutItem{
		{ProductID: "prod-1", Quantity: 2},
		{ProductID: "prod-1", Quantity: 3},
	})
	assert.NoError(t, err)
	assert.Len(t, order.Items, 1)
	assert.Equal(t, 5, order.Items[0].Quantity)

	p, _ := f.stock.Snapshot("prod-1")
	assert.Equal(t, 5, p.ReservedQuantity)
}

func TestCheckout_MultiItemIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(services.DefaultCheckoutConfig())
	f.addStore("store-1", models.StoreApproved)
	f.addProduct("prod-a", "store-1", 1000, 10)
	f.addProduct("prod-b", "store-1", 2000, 3)

	_, err := f.checkout.Checkout(ctx, "user-1", []services.CheckoutItem{
		{ProductID: "prod-a", Quantity: 3},
		{ProductID: "prod-b", Quantity: 1000000},
	})
	assert.ErrorIs(t, err, models.ErrInsufficientStock)

	pa, _ := f.stock.Snapshot("prod-a")
	assert.Equal(t, 0, pa.ReservedQuantity, "no partial reservation may survive")
	pb, _ := f.stock.Snapshot("prod-b")
	assert.Equal(t, 0, pb.ReservedQuantity)
}

func TestCheckout_InactiveProductRefused(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(services.DefaultCheckoutConfig())
	f.addStore("store-1", models.StoreApproved)

	p := models.Product{ID: "prod-1", StoreID: "store-1", Name: "Hidden", Price: 100, TotalQuantity: 5, IsActive: false}
	f.products.Create(&p)
	f.stock.Seed(p)

	_, err := f.checkout.Checkout(ctx, "user-1", []services.CheckoutItem{
		{ProductID: "prod-1", Quantity: 1},
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestCheckout_PriceSnapshotSurvivesRepricing(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture(services.DefaultCheckoutConfig())
	f.addStore("store-1", models.StoreApproved)
	f.addProduct("prod-1", "store-1", 1500, 10)

	order, err := f.checkout.Checkout(ctx, "user-1", []services.CheckoutItem{
		{ProductID: "prod-1", Quantity: 2},
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(1500), order.Items[0].UnitPrice)

	// Reprice the product after the order exists.
	updated := models.Product{ID: "prod-1", StoreID: "store-1", Name: "Product prod-1", Price: 9999, IsActive: true}
	assert.NoError(t, f.products.Update(&updated))

	got, err := f.order.GetOrderByID(ctx, order.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(1500), got.Items[0].UnitPrice)
	assert.Equal(t, int64(3000), got.TotalAmount)
}
