package repositories

import (
	"context"
	"time"

	"pasar/internal/models"
)

// StoreRepository defines the interface for store data access. Status changes
// go through UpdateStatusIf, a compare-and-set keyed on the current status,
// so a stale read can never clobber a more recent transition.
type StoreRepository interface {
	Create(ctx context.Context, store *models.Store) error
	GetByID(ctx context.Context, id string) (*models.Store, error)
	GetAll(ctx context.Context) ([]models.Store, error)
	Update(ctx context.Context, store *models.Store) error

	// UpdateStatusIf sets the store status to "to" only while it is still
	// "from", stamping approvedAt and rejectionReason as given. A lost race
	// fails with models.ErrInvalidTransition.
	UpdateStatusIf(ctx context.Context, id string, from, to models.StoreStatus, approvedAt *time.Time, rejectionReason string) error
}
