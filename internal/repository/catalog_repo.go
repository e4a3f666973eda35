package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jaehyun/stocklens/internal/domain"
	"gorm.io/gorm"
)

// CatalogRepository handles product and recipe reads for a store.
type CatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new CatalogRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *CatalogRepository: repository instance bound to db.
func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListProductsForStore retrieves all active products belonging to a store.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - storeID: owning store ID.
// Returns:
//   - []domain.Product: active products for the store.
//   - error: non-nil if the query fails.
func (r *CatalogRepository) ListProductsForStore(ctx context.Context, storeID string) ([]domain.Product, error) {
	var products []domain.Product
	if err := r.db.WithContext(ctx).
		Where("store_id = ? AND active = ?", storeID, true).
		Order("name").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct retrieves a product by ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: product ID.
// Returns:
//   - *domain.Product: product record if found.
//   - error: domain.ErrNotFound if no record matches; other errors verbatim.
func (r *CatalogRepository) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var product domain.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &product, nil
}

// ListActiveRecipesForProduct retrieves the active recipe lines of a product.
// Each line carries an inventory reference and a per-unit consumption amount.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - productID: product ID.
// Returns:
//   - []domain.RecipeLine: active recipe lines; empty when the product has no recipe.
//   - error: non-nil if the query fails.
func (r *CatalogRepository) ListActiveRecipesForProduct(ctx context.Context, productID string) ([]domain.RecipeLine, error) {
	var lines []domain.RecipeLine
	if err := r.db.WithContext(ctx).
		Where("product_id = ? AND active = ?", productID, true).
		Find(&lines).Error; err != nil {
		return nil, err
	}
	return lines, nil
}
