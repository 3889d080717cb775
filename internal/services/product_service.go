package services

import (
	"context"
	"fmt"

	"pasar/internal/models"
	"pasar/internal/repositories"
)

// ProductService handles business logic related to products. Listing edits
// are gated on the owning store being APPROVED; stock changes go through the
// stock ledger and never through a plain product update.
type ProductService struct {
	repo      repositories.ProductRepository
	storeRepo repositories.StoreRepository
	stockRepo repositories.StockRepository
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, storeRepo repositories.StoreRepository, stockRepo repositories.StockRepository) *ProductService {
	return &ProductService{
		repo:      repo,
		storeRepo: storeRepo,
		stockRepo: stockRepo,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// GetProductsByStore retrieves all products of a store.
func (s *ProductService) GetProductsByStore(storeID string) ([]models.Product, error) {
	return s.repo.GetByStore(storeID)
}

// CreateProduct creates a new listing for an approved store owned by the actor.
func (s *ProductService) CreateProduct(ctx context.Context, product *models.Product, actorID, role string) error {
	if err := s.requireEditable(ctx, product.StoreID, actorID, role); err != nil {
		return err
	}
	if product.Price < 0 || product.TotalQuantity < 0 {
		return fmt.Errorf("price and quantity must not be negative: %w", models.ErrInvalidQuantity)
	}
	product.ReservedQuantity = 0
	return s.repo.Create(product)
}

// UpdateProduct updates listing metadata of an existing product.
func (s *ProductService) UpdateProduct(ctx context.Context, product *models.Product, actorID, role string) error {
	existing, err := s.repo.GetByID(product.ID)
	if err != nil {
		return err
	}
	if err := s.requireEditable(ctx, existing.StoreID, actorID, role); err != nil {
		return err
	}
	product.StoreID = existing.StoreID
	return s.repo.Update(product)
}

// DeleteProduct removes a listing. Historical orders keep their price
// snapshots, so deleting a product never corrupts them.
func (s *ProductService) DeleteProduct(ctx context.Context, id, actorID, role string) error {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.requireEditable(ctx, existing.StoreID, actorID, role); err != nil {
		return err
	}
	return s.repo.Delete(id)
}

// Restock sets the product's total stock through the ledger, which refuses to
// shrink it below what is already promised to pending orders.
func (s *ProductService) Restock(ctx context.Context, productID string, newTotal int, actorID, role string) error {
	product, err := s.repo.GetByID(productID)
	if err != nil {
		return err
	}
	if err := s.requireOwnership(ctx, product.StoreID, actorID, role); err != nil {
		return err
	}
	return withRetry(ctx, "restock product", func() error {
		return s.stockRepo.Restock(ctx, productID, newTotal)
	})
}

// AvailableStock returns the quantity not yet promised to pending orders.
func (s *ProductService) AvailableStock(ctx context.Context, productID string) (int, error) {
	return s.stockRepo.AvailableQuantity(ctx, productID)
}

// requireEditable checks ownership and that the store is APPROVED.
func (s *ProductService) requireEditable(ctx context.Context, storeID, actorID, role string) error {
	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return err
	}
	if role != models.RoleAdmin && store.OwnerID != actorID {
		return fmt.Errorf("store %s does not belong to user %s: %w", storeID, actorID, models.ErrNotFound)
	}
	if role != models.RoleAdmin && !store.Editable() {
		return fmt.Errorf("store %s: %w", storeID, models.ErrStoreNotSellable)
	}
	return nil
}

// requireOwnership checks ownership without the APPROVED gate; restocking is
// allowed even while a store is suspended.
func (s *ProductService) requireOwnership(ctx context.Context, storeID, actorID, role string) error {
	store, err := s.storeRepo.GetByID(ctx, storeID)
	if err != nil {
		return err
	}
	if role != models.RoleAdmin && store.OwnerID != actorID {
		return fmt.Errorf("store %s does not belong to user %s: %w", storeID, actorID, models.ErrNotFound)
	}
	return nil
}
