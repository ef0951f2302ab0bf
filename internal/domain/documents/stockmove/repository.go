package stockmove

import (
	"context"
	"time"

	"tradebook/internal/core/id"
	"tradebook/internal/domain"
)

// Repository defines persistence operations for stock moves.
type Repository interface {
	Create(ctx context.Context, doc *StockMove) error
	GetByID(ctx context.Context, docID id.ID) (*StockMove, error)
	GetByNumber(ctx context.Context, number string) (*StockMove, error)
	Update(ctx context.Context, doc *StockMove) error
	Delete(ctx context.Context, docID id.ID) error

	GetLines(ctx context.Context, docID id.ID) ([]StockMoveLine, error)
	SaveLines(ctx context.Context, docID id.ID, lines []StockMoveLine) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*StockMove], error)
	GetForUpdate(ctx context.Context, docID id.ID) (*StockMove, error)
}

// ListFilter for filtering stock moves.
type ListFilter struct {
	domain.ListFilter

	Kind         *Kind
	StockPointID *id.ID // matches either side of the move
	Posted       *bool
	DateFrom     *time.Time
	DateTo       *time.Time
}
