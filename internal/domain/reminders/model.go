// Package reminders provides collection reminders: notes to chase a
// customer for payment on a given day.
package reminders

import (
	"context"
	"time"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
	"tradebook/internal/core/id"
)

// Reminder represents a follow-up note for a customer.
type Reminder struct {
	entity.BaseDocument

	// CustomerID is the customer to chase
	CustomerID id.ID `db:"customer_id" json:"customerId"`

	// DueDate is when the follow-up is due
	DueDate time.Time `db:"due_date" json:"dueDate"`

	// Note is the free-form reminder text
	Note string `db:"note" json:"note"`

	// Done marks the reminder as handled
	Done bool `db:"done" json:"done"`

	// DoneAt is when the reminder was handled
	DoneAt *time.Time `db:"done_at" json:"doneAt,omitempty"`
}

// NewReminder creates a new reminder.
func NewReminder(customerID id.ID, dueDate time.Time, note string) *Reminder {
	return &Reminder{
		BaseDocument: entity.NewBaseDocument(),
		CustomerID:   customerID,
		DueDate:      dueDate,
		Note:         note,
	}
}

// Validate implements entity.Validatable.
func (r *Reminder) Validate(ctx context.Context) error {
	if id.IsNil(r.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}
	if r.DueDate.IsZero() {
		return apperror.NewValidation("due date is required").
			WithDetail("field", "dueDate")
	}
	if r.Note == "" {
		return apperror.NewValidation("note is required").
			WithDetail("field", "note")
	}
	return nil
}

// MarkDone completes the reminder.
func (r *Reminder) MarkDone() {
	now := time.Now().UTC()
	r.Done = true
	r.DoneAt = &now
	r.Touch()
}

// Reopen clears the done flag.
func (r *Reminder) Reopen() {
	r.Done = false
	r.DoneAt = nil
	r.Touch()
}

// IsOverdue reports whether the reminder is past due and unhandled.
func (r *Reminder) IsOverdue(now time.Time) bool {
	return !r.Done && r.DueDate.Before(now)
}
