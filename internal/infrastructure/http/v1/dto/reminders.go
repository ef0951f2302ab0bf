package dto

import (
	"time"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/domain/reminders"
)

type CreateReminderRequest struct {
	CustomerID string    `json:"customerId" binding:"required"`
	DueDate    time.Time `json:"dueDate" binding:"required"`
	Note       string    `json:"note"`
}

func (r *CreateReminderRequest) ToEntity() (*reminders.Reminder, error) {
	customerID, err := id.Parse(r.CustomerID)
	if err != nil {
		return nil, apperror.NewValidation("invalid customer id").WithDetail("value", r.CustomerID)
	}
	return reminders.NewReminder(customerID, r.DueDate, r.Note), nil
}

type UpdateReminderRequest struct {
	DueDate *time.Time `json:"dueDate"`
	Note    *string    `json:"note"`
	Done    *bool      `json:"done"`
}

func (r *UpdateReminderRequest) ApplyTo(rem *reminders.Reminder) {
	if r.DueDate != nil {
		rem.DueDate = *r.DueDate
	}
	if r.Note != nil {
		rem.Note = *r.Note
	}
	if r.Done != nil {
		if *r.Done {
			rem.MarkDone()
		} else {
			rem.Reopen()
		}
	}
}

type ReminderResponse struct {
	ID         string     `json:"id"`
	CustomerID string     `json:"customerId"`
	DueDate    time.Time  `json:"dueDate"`
	Note       string     `json:"note,omitempty"`
	Done       bool       `json:"done"`
	DoneAt     *time.Time `json:"doneAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func FromReminder(r *reminders.Reminder) ReminderResponse {
	return ReminderResponse{
		ID:         r.ID.String(),
		CustomerID: r.CustomerID.String(),
		DueDate:    r.DueDate,
		Note:       r.Note,
		Done:       r.Done,
		DoneAt:     r.DoneAt,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}
