package sale

import (
	"context"
	"time"

	"tradebook/internal/core/id"
	"tradebook/internal/domain"
)

// Repository defines persistence operations for sales.
type Repository interface {
	Create(ctx context.Context, doc *Sale) error
	GetByID(ctx context.Context, docID id.ID) (*Sale, error)
	GetByNumber(ctx context.Context, number string) (*Sale, error)
	Update(ctx context.Context, doc *Sale) error
	Delete(ctx context.Context, docID id.ID) error

	GetLines(ctx context.Context, docID id.ID) ([]SaleLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []SaleLine) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Sale], error)
	GetForUpdate(ctx context.Context, docID id.ID) (*Sale, error)
}

// ListFilter for filtering sales.
type ListFilter struct {
	domain.ListFilter

	CustomerID   *id.ID
	StockPointID *id.ID
	Posted       *bool
	DateFrom     *time.Time
	DateTo       *time.Time
}
