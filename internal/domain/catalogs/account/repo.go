package account

import (
	"context"

	"tradebook/internal/core/id"
	"tradebook/internal/domain"
)

// Repository defines the interface for Account persistence.
type Repository interface {
	domain.CatalogRepository[*Account]

	// GetForUpdate retrieves account with row lock (for transactional updates).
	GetForUpdate(ctx context.Context, id id.ID) (*Account, error)

	// ClearDefault clears the default flag on all accounts (before setting new default).
	ClearDefault(ctx context.Context) error
}
