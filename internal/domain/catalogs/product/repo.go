package product

import (
	"context"

	"tradebook/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// GetByBrand retrieves active products of a brand.
	GetByBrand(ctx context.Context, brand string) ([]*Product, error)
}
