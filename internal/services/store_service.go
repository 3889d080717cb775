package services

import (
	"context"
	"fmt"
	"time"

	"pasar/internal/models"
	"pasar/internal/repositories"
)

// StoreService handles the store approval workflow. All status transitions
// are administrator-initiated and applied as a compare-and-set on the current
// status so a stale read cannot clobber a more recent transition.
type StoreService struct {
	storeRepo repositories.StoreRepository
}

// NewStoreService creates a new StoreService.
func NewStoreService(storeRepo repositories.StoreRepository) *StoreService {
	return &StoreService{
		storeRepo: storeRepo,
	}
}

// CreateStore registers a new store in PENDING status for the given owner.
func (s *StoreService) CreateStore(ctx context.Context, store *models.Store) error {
	if store.OwnerID == "" {
		return fmt.Errorf("store owner is required")
	}
	return s.storeRepo.Create(ctx, store)
}

// GetStore retrieves a single store by its ID.
func (s *StoreService) GetStore(ctx context.Context, id string) (*models.Store, error) {
	return s.storeRepo.GetByID(ctx, id)
}

// GetAllStores retrieves all stores.
func (s *StoreService) GetAllStores(ctx context.Context) ([]models.Store, error) {
	return s.storeRepo.GetAll(ctx)
}

// UpdateStore lets the owner (or an admin) edit store metadata.
func (s *StoreService) UpdateStore(ctx context.Context, store *models.Store, actorID, role string) error {
	existing, err := s.storeRepo.GetByID(ctx, store.ID)
	if err != nil {
		return err
	}
	if role != models.RoleAdmin && existing.OwnerID != actorID {
		return fmt.Errorf("store %s does not belong to user %s: %w", store.ID, actorID, models.ErrNotFound)
	}
	return s.storeRepo.Update(ctx, store)
}

// SetStatus applies an administrative approval transition. Invalid edges,
// including PENDING -> SUSPENDED, fail with models.ErrInvalidTransition.
func (s *StoreService) SetStatus(ctx context.Context, storeID string, newStatus models.StoreStatus, reason string) error {
	if !models.IsValidStoreStatus(newStatus) {
		return fmt.Errorf("unknown store status %q: %w", newStatus, models.ErrInvalidTransition)
	}

	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return err
	}
	if !models.CanTransitionStore(store.Status, newStatus) {
		return fmt.Errorf("store %s cannot move from %s to %s: %w",
			storeID, store.Status, newStatus, models.ErrInvalidTransition)
	}

	var approvedAt *time.Time
	rejectionReason := ""
	switch newStatus {
	case models.StoreApproved:
		now := time.Now()
		approvedAt = &now
	case models.StoreRejected:
		rejectionReason = reason
	}

	return withRetry(ctx, "set store status", func() error {
		return s.storeRepo.UpdateStatusIf(ctx, storeID, store.Status, newStatus, approvedAt, rejectionReason)
	})
}

// IsSellable reports whether the store's products may currently be purchased.
func (s *StoreService) IsSellable(ctx context.Context, storeID string) (bool, error) {
	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return false, err
	}
	return store.Sellable(), nil
}

// IsEditable reports whether the owner may currently edit the store's products.
func (s *StoreService) IsEditable(ctx context.Context, storeID string) (bool, error) {
	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return false, err
	}
	return store.Editable(), nil
}
