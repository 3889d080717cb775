package services_test

import (
	"context"
	"testing"

	"pasar/internal/models"
	"pasar/internal/repositories"
	"pasar/internal/services"

	"github.com/stretchr/testify/assert"
)

func newStoreFixture(t *testing.T) (*services.StoreService, *models.Store) {
	t.Helper()
	repo := repositories.NewMockStoreRepository()
	service := services.NewStoreService(repo)

	store := &models.Store{OwnerID: "owner-1", Name: "Warung Maju"}
	assert.NoError(t, service.CreateStore(context.Background(), store))
	assert.Equal(t, models.StorePending, store.Status)
	return service, store
}

func TestStoreService_ApprovalStampsTimestamp(t *testing.T) {
	ctx := context.Background()
	service, store := newStoreFixture(t)

	assert.NoError(t, service.SetStatus(ctx, store.ID, models.StoreApproved, ""))

	got, err := service.GetStore(ctx, store.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.StoreApproved, got.Status)
	assert.NotNil(t, got.ApprovedAt)

	sellable, err := service.IsSellable(ctx, store.ID)
	assert.NoError(t, err)
	assert.True(t, sellable)
}

func TestStoreService_RejectionRecordsReason(t *testing.T) {
	ctx := context.Background()
	service, store := newStoreFixture(t)

	assert.NoError(t, service.SetStatus(ctx, store.ID, models.StoreRejected, "incomplete documents"))

	got, _ := service.GetStore(ctx, store.ID)
	assert.Equal(t, models.StoreRejected, got.Status)
	assert.Equal(t, "incomplete documents", got.RejectionReason)

	sellable, _ := service.IsSellable(ctx, store.ID)
	assert.False(t, sellable)

	// Reactivation clears the path back to APPROVED.
	assert.NoError(t, service.SetStatus(ctx, store.ID, models.StoreApproved, ""))
	got, _ = service.GetStore(ctx, store.ID)
	assert.Equal(t, models.StoreApproved, got.Status)
}

func TestStoreService_SuspendAndReactivate(t *testing.T) {
	ctx := context.Background()
	service, store := newStoreFixture(t)

	assert.NoError(t, service.SetStatus(ctx, store.ID, models.StoreApproved, ""))
	assert.NoError(t, service.SetStatus(ctx, store.ID, models.StoreSuspended, ""))

	sellable, _ := service.IsSellable(ctx, store.ID)
	assert.False(t, sellable)
	editable, _ := service.IsEditable(ctx, store.ID)
	assert.False(t, editable)

	assert.NoError(t, service.SetStatus(ctx, store.ID, models.StoreApproved, ""))
	sellable, _ = service.IsSellable(ctx, store.ID)
	assert.True(t, sellable)
}

func TestStoreService_InvalidTransitionsRejected(t *testing.T) {
	ctx := context.Background()
	service, store := newStoreFixture(t)

	// No direct PENDING -> SUSPENDED edge.
	err := service.SetStatus(ctx, store.ID, models.StoreSuspended, "")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	assert.NoError(t, service.SetStatus(ctx, store.ID, models.StoreApproved, ""))

	// APPROVED may not move back to PENDING or to REJECTED.
	err = service.SetStatus(ctx, store.ID, models.StorePending, "")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
	err = service.SetStatus(ctx, store.ID, models.StoreRejected, "late rejection")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	// Unknown statuses never reach the repository.
	err = service.SetStatus(ctx, store.ID, models.StoreStatus("DISABLED"), "")
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestStoreService_UpdateRequiresOwnership(t *testing.T) {
	ctx := context.Background()
	service, store := newStoreFixture(t)

	edit := &models.Store{ID: store.ID, Name: "Warung Maju Jaya", Description: "Renamed"}

	err := service.UpdateStore(ctx, edit, "intruder", models.RoleCustomer)
	assert.Error(t, err)

	assert.NoError(t, service.UpdateStore(ctx, edit, "owner-1", models.RoleSeller))
	got, _ := service.GetStore(ctx, store.ID)
	assert.Equal(t, "Warung Maju Jaya", got.Name)

	// Admins may edit any store.
	edit.Description = "Admin note"
	assert.NoError(t, service.UpdateStore(ctx, edit, "admin-1", models.RoleAdmin))
}
