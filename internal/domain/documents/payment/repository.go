package payment

import (
	"context"
	"time"

	"tradebook/internal/core/id"
	"tradebook/internal/domain"
)

// Repository defines persistence operations for payments.
type Repository interface {
	Create(ctx context.Context, doc *Payment) error
	GetByID(ctx context.Context, docID id.ID) (*Payment, error)
	GetByNumber(ctx context.Context, number string) (*Payment, error)
	Update(ctx context.Context, doc *Payment) error
	Delete(ctx context.Context, docID id.ID) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Payment], error)
	GetForUpdate(ctx context.Context, docID id.ID) (*Payment, error)
}

// ListFilter for filtering payments.
type ListFilter struct {
	domain.ListFilter

	Kind       *Kind
	CustomerID *id.ID
	AccountID  *id.ID
	Posted     *bool
	DateFrom   *time.Time
	DateTo     *time.Time
}
