package reminders

import (
	"context"
	"time"

	"tradebook/internal/core/id"
	"tradebook/internal/domain"
)

// Repository defines persistence operations for reminders.
type Repository interface {
	Create(ctx context.Context, r *Reminder) error
	GetByID(ctx context.Context, reminderID id.ID) (*Reminder, error)
	Update(ctx context.Context, r *Reminder) error
	Delete(ctx context.Context, reminderID id.ID) error

	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Reminder], error)
}

// ListFilter for filtering reminders.
type ListFilter struct {
	domain.ListFilter

	CustomerID *id.ID
	Done       *bool
	DueBefore  *time.Time
	DueAfter   *time.Time
}
