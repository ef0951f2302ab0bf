package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"tradebook/internal/domain"
	"tradebook/internal/domain/reminders"
	"tradebook/internal/infrastructure/storage/postgres"
)

const remindersTable = "doc_reminders"

// ReminderRepo implements reminders.Repository.
type ReminderRepo struct {
	*BaseDocumentRepo[*reminders.Reminder]
}

// NewReminderRepo creates a new reminder repository.
func NewReminderRepo(txManager *postgres.TxManager) *ReminderRepo {
	return &ReminderRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*reminders.Reminder](
			txManager,
			remindersTable,
			postgres.ExtractDBColumns[reminders.Reminder](),
			func() *reminders.Reminder { return &reminders.Reminder{} },
		),
	}
}

// List retrieves reminders with filtering.
func (r *ReminderRepo) List(ctx context.Context, filter reminders.ListFilter) (domain.ListResult[*reminders.Reminder], error) {
	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}

	if filter.Done != nil {
		q = q.Where(squirrel.Eq{"done": *filter.Done})
	}

	if filter.DueBefore != nil {
		q = q.Where(squirrel.LtOrEq{"due_date": *filter.DueBefore})
	}

	if filter.DueAfter != nil {
		q = q.Where(squirrel.GtOrEq{"due_date": *filter.DueAfter})
	}

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"note": "%" + filter.Search + "%"})
	}

	return r.runListQuery(ctx, q, filter.ListFilter)
}
