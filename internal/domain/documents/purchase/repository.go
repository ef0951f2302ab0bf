package purchase

import (
	"context"
	"time"

	"tradebook/internal/core/id"
	"tradebook/internal/domain"
)

// Repository defines persistence operations for purchases.
type Repository interface {
	Create(ctx context.Context, doc *Purchase) error
	GetByID(ctx context.Context, docID id.ID) (*Purchase, error)
	GetByNumber(ctx context.Context, number string) (*Purchase, error)
	GetBySource(ctx context.Context, sourceDocID id.ID) (*Purchase, error)
	Update(ctx context.Context, doc *Purchase) error
	Delete(ctx context.Context, docID id.ID) error
	DeleteBySource(ctx context.Context, sourceDocID id.ID) error

	GetLines(ctx context.Context, docID id.ID) ([]Line, error)
	SaveLines(ctx context.Context, docID id.ID, lines []Line) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Purchase], error)
}

// ListFilter for filtering purchases.
type ListFilter struct {
	domain.ListFilter

	Origin       *Origin
	SupplierName *string
	ProductID    *id.ID
	Posted       *bool
	DateFrom     *time.Time
	DateTo       *time.Time

	// ExcludeZeroCost drops synthesized cards with no monetary value
	// from cost reports.
	ExcludeZeroCost bool
}
