package fundsmove

import (
	"context"
	"time"

	"tradebook/internal/core/id"
	"tradebook/internal/domain"
)

// Repository defines persistence operations for funds moves.
type Repository interface {
	Create(ctx context.Context, doc *FundsMove) error
	GetByID(ctx context.Context, docID id.ID) (*FundsMove, error)
	GetByNumber(ctx context.Context, number string) (*FundsMove, error)
	Update(ctx context.Context, doc *FundsMove) error
	Delete(ctx context.Context, docID id.ID) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*FundsMove], error)
	GetForUpdate(ctx context.Context, docID id.ID) (*FundsMove, error)
}

// ListFilter for filtering funds moves.
type ListFilter struct {
	domain.ListFilter

	Kind      *Kind
	AccountID *id.ID // matches either side of the move
	Category  *string
	Posted    *bool
	DateFrom  *time.Time
	DateTo    *time.Time

	// ExcludeExpenses hides expense rows from the transactions view.
	ExcludeExpenses bool
}
