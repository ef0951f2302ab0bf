package reminders

import (
	"context"
	"time"

	"tradebook/internal/core/id"
	"tradebook/internal/core/tx"
	"tradebook/internal/domain"
	"tradebook/pkg/logger"
)

// Service provides business operations for reminders.
type Service struct {
	repo      Repository
	txManager tx.Manager
}

// NewService creates a new reminders service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
	}
}

// Create creates a new reminder.
func (s *Service) Create(ctx context.Context, r *Reminder) error {
	if err := r.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, r)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "reminder created", "id", r.ID, "customer_id", r.CustomerID, "due", r.DueDate)
	return nil
}

// GetByID retrieves a reminder.
func (s *Service) GetByID(ctx context.Context, reminderID id.ID) (*Reminder, error) {
	return s.repo.GetByID(ctx, reminderID)
}

// Update updates a reminder.
func (s *Service) Update(ctx context.Context, r *Reminder) error {
	if err := r.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, r)
	})
}

// Complete marks a reminder as handled.
func (s *Service) Complete(ctx context.Context, reminderID id.ID) error {
	r, err := s.repo.GetByID(ctx, reminderID)
	if err != nil {
		return err
	}

	r.MarkDone()
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, r)
	})
}

// Delete removes a reminder.
func (s *Service) Delete(ctx context.Context, reminderID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, reminderID)
	})
}

// List retrieves reminders with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Reminder], error) {
	return s.repo.List(ctx, filter)
}

// ListDue retrieves unhandled reminders due by the given time.
func (s *Service) ListDue(ctx context.Context, by time.Time) ([]*Reminder, error) {
	done := false
	result, err := s.repo.List(ctx, ListFilter{
		ListFilter: domain.ListFilter{Limit: 200, OrderBy: "due_date"},
		Done:       &done,
		DueBefore:  &by,
	})
	if err != nil {
		return nil, err
	}
	return result.Items, nil
}
