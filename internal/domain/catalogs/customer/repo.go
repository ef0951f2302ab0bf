package customer

import (
	"context"

	"tradebook/internal/core/id"
	"tradebook/internal/domain"
)

// Repository defines the interface for Customer persistence.
type Repository interface {
	domain.CatalogRepository[*Customer]

	// GetForUpdate retrieves customer with row lock (for transactional updates).
	GetForUpdate(ctx context.Context, id id.ID) (*Customer, error)

	// GetByArea retrieves active customers in a collection area.
	GetByArea(ctx context.Context, area string) ([]*Customer, error)
}
