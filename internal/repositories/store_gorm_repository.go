package repositories

import (
	"context"
	"fmt"
	"time"

	"pasar/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMStoreRepository is a GORM implementation of StoreRepository.
type GORMStoreRepository struct {
	db *gorm.DB
}

// NewGORMStoreRepository creates a new instance of GORMStoreRepository.
func NewGORMStoreRepository(db *gorm.DB) *GORMStoreRepository {
	return &GORMStoreRepository{
		db: db,
	}
}

// Create creates a new store. New stores always start PENDING.
func (r *GORMStoreRepository) Create(ctx context.Context, store *models.Store) error {
	if store.ID == "" {
		store.ID = uuid.New().String()
	}
	store.Status = models.StorePending
	if err := r.db.WithContext(ctx).Create(store).Error; err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}
	return nil
}

// GetByID retrieves a single store by its ID.
func (r *GORMStoreRepository) GetByID(ctx context.Context, id string) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).First(&store, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("store %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get store %s: %w", id, err)
	}
	return &store, nil
}

// GetAll retrieves all stores.
func (r *GORMStoreRepository) GetAll(ctx context.Context) ([]models.Store, error) {
	var stores []models.Store
	if err := r.db.WithContext(ctx).Find(&stores).Error; err != nil {
		return nil, fmt.Errorf("failed to get all stores: %w", err)
	}
	return stores, nil
}

// Update updates store metadata (name, description). Status is never touched
// here; it only moves through UpdateStatusIf.
func (r *GORMStoreRepository) Update(ctx context.Context, store *models.Store) error {
	res := r.db.WithContext(ctx).Model(&models.Store{}).
		Where("id = ?", store.ID).
		Updates(map[string]interface{}{
			"name":        store.Name,
			"description": store.Description,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update store %s: %w", store.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("store %s: %w", store.ID, models.ErrNotFound)
	}
	return nil
}

// UpdateStatusIf applies the approval transition as a conditional update.
func (r *GORMStoreRepository) UpdateStatusIf(ctx context.Context, id string, from, to models.StoreStatus, approvedAt *time.Time, rejectionReason string) error {
	updates := map[string]interface{}{
		"status":           to,
		"rejection_reason": rejectionReason,
	}
	if approvedAt != nil {
		updates["approved_at"] = *approvedAt
	}
	res := r.db.WithContext(ctx).Model(&models.Store{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("failed to update status of store %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&models.Store{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check store %s: %w", id, err)
		}
		if count == 0 {
			return fmt.Errorf("store %s: %w", id, models.ErrNotFound)
		}
		return fmt.Errorf("store %s is no longer %s: %w", id, from, models.ErrInvalidTransition)
	}
	return nil
}
