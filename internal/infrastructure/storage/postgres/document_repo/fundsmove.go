package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"tradebook/internal/domain"
	"tradebook/internal/domain/documents/fundsmove"
	"tradebook/internal/infrastructure/storage/postgres"
)

const fundsMovesTable = "doc_funds_moves"

// FundsMoveRepo implements fundsmove.Repository.
type FundsMoveRepo struct {
	*BaseDocumentRepo[*fundsmove.FundsMove]
}

// NewFundsMoveRepo creates a new funds move repository.
func NewFundsMoveRepo(txManager *postgres.TxManager) *FundsMoveRepo {
	return &FundsMoveRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*fundsmove.FundsMove](
			txManager,
			fundsMovesTable,
			postgres.ExtractDBColumns[fundsmove.FundsMove](),
			func() *fundsmove.FundsMove { return &fundsmove.FundsMove{} },
		),
	}
}

// List retrieves funds moves with filtering.
func (r *FundsMoveRepo) List(ctx context.Context, filter fundsmove.ListFilter) (domain.ListResult[*fundsmove.FundsMove], error) {
	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": *filter.Kind})
	}

	if filter.ExcludeExpenses {
		q = q.Where(squirrel.NotEq{"kind": fundsmove.KindExpense})
	}

	if filter.AccountID != nil {
		// Matches either side of the move
		q = q.Where(squirrel.Or{
			squirrel.Eq{"from_id": *filter.AccountID},
			squirrel.Eq{"to_id": *filter.AccountID},
		})
	}

	if filter.Category != nil {
		q = q.Where(squirrel.Eq{"category": *filter.Category})
	}

	if filter.Posted != nil {
		q = q.Where(squirrel.Eq{"posted": *filter.Posted})
	}

	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"date": *filter.DateFrom})
	}

	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"date": *filter.DateTo})
	}

	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + filter.Search + "%"})
	}

	return r.runListQuery(ctx, q, filter.ListFilter)
}
