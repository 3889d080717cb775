package repositories

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pasar/internal/models"

	"github.com/google/uuid"
)

// MockStoreRepository is an in-memory implementation of StoreRepository.
type MockStoreRepository struct {
	stores map[string]models.Store
	mu     sync.RWMutex
}

// NewMockStoreRepository creates a new instance of MockStoreRepository.
func NewMockStoreRepository() *MockStoreRepository {
	return &MockStoreRepository{
		stores: make(map[string]models.Store),
	}
}

// Create adds a new store in PENDING status.
func (r *MockStoreRepository) Create(ctx context.Context, store *models.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if store.ID == "" {
		store.ID = uuid.New().String()
	}
	store.Status = models.StorePending
	r.stores[store.ID] = *store
	return nil
}

// GetByID returns a store by its ID.
func (r *MockStoreRepository) GetByID(ctx context.Context, id string) (*models.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	store, ok := r.stores[id]
	if !ok {
		return nil, fmt.Errorf("store %s: %w", id, models.ErrNotFound)
	}
	return &store, nil
}

// GetAll returns all stores.
func (r *MockStoreRepository) GetAll(ctx context.Context) ([]models.Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	storeList := make([]models.Store, 0, len(r.stores))
	for _, s := range r.stores {
		storeList = append(storeList, s)
	}
	return storeList, nil
}

// Update modifies store metadata.
func (r *MockStoreRepository) Update(ctx context.Context, store *models.Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.stores[store.ID]
	if !ok {
		return fmt.Errorf("store %s: %w", store.ID, models.ErrNotFound)
	}
	existing.Name = store.Name
	existing.Description = store.Description
	r.stores[store.ID] = existing
	return nil
}

// UpdateStatusIf applies the approval transition as a compare-and-set.
func (r *MockStoreRepository) UpdateStatusIf(ctx context.Context, id string, from, to models.StoreStatus, approvedAt *time.Time, rejectionReason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	store, ok := r.stores[id]
	if !ok {
		return fmt.Errorf("store %s: %w", id, models.ErrNotFound)
	}
	if store.Status != from {
		return fmt.Errorf("store %s is no longer %s: %w", id, from, models.ErrInvalidTransition)
	}
	store.Status = to
	store.ApprovedAt = approvedAt
	store.RejectionReason = rejectionReason
	r.stores[id] = store
	return nil
}
