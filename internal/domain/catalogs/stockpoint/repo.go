package stockpoint

import (
	"context"

	"tradebook/internal/core/id"
	"tradebook/internal/domain"
)

// Repository defines the interface for StockPoint persistence.
type Repository interface {
	domain.CatalogRepository[*StockPoint]

	// GetForUpdate retrieves stock point with row lock (for transactional updates).
	GetForUpdate(ctx context.Context, id id.ID) (*StockPoint, error)

	// ClearDefault clears the default flag on all stock points.
	ClearDefault(ctx context.Context) error

	// GetDirect retrieves the virtual direct-supply point, if configured.
	GetDirect(ctx context.Context) (*StockPoint, error)
}
