package repositories

import (
	"pasar/internal/models"
)

// ProductRepository defines the interface for product data access.
// Update only touches listing metadata; the stock counters belong to the
// StockRepository and are never written through this interface.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	GetByStore(storeID string) ([]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
}
