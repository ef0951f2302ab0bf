package document_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"tradebook/internal/domain"
	"tradebook/internal/domain/documents/payment"
	"tradebook/internal/infrastructure/storage/postgres"
)

const paymentsTable = "doc_payments"

// PaymentRepo implements payment.Repository.
type PaymentRepo struct {
	*BaseDocumentRepo[*payment.Payment]
}

// NewPaymentRepo creates a new payment repository.
func NewPaymentRepo(txManager *postgres.TxManager) *PaymentRepo {
	return &PaymentRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*payment.Payment](
			txManager,
			paymentsTable,
			postgres.ExtractDBColumns[payment.Payment](),
			func() *payment.Payment { return &payment.Payment{} },
		),
	}
}

// List retrieves payments with filtering.
func (r *PaymentRepo) List(ctx context.Context, filter payment.ListFilter) (domain.ListResult[*payment.Payment], error) {
	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": *filter.Kind})
	}

	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}

	if filter.AccountID != nil {
		q = q.Where(squirrel.Eq{"account_id": *filter.AccountID})
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
