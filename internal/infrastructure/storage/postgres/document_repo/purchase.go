package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/domain"
	"tradebook/internal/domain/documents/purchase"
	"tradebook/internal/infrastructure/storage/postgres"
)

const (
	purchasesTable     = "doc_purchases"
	purchaseLinesTable = "doc_purchase_lines"
)

// PurchaseRepo implements purchase.Repository.
type PurchaseRepo struct {
	*BaseDocumentRepo[*purchase.Purchase]
}

// NewPurchaseRepo creates a new purchase repository.
func NewPurchaseRepo(txManager *postgres.TxManager) *PurchaseRepo {
	return &PurchaseRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*purchase.Purchase](
			txManager,
			purchasesTable,
			postgres.ExtractDBColumns[purchase.Purchase](),
			func() *purchase.Purchase { return &purchase.Purchase{} },
		),
	}
}

// GetBySource retrieves the purchase card linked to a source document.
func (r *PurchaseRepo) GetBySource(ctx context.Context, sourceDocID id.ID) (*purchase.Purchase, error) {
	doc := &purchase.Purchase{}

	q := r.baseSelect().
		Where(squirrel.Eq{"source_doc_id": sourceDocID}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Get(ctx, r.Querier(ctx), doc, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("purchase", sourceDocID.String())
		}
		return nil, fmt.Errorf("get by source: %w", err)
	}

	return doc, nil
}

// DeleteBySource removes the purchase card linked to a source document.
// Lines go with it via ON DELETE CASCADE.
func (r *PurchaseRepo) DeleteBySource(ctx context.Context, sourceDocID id.ID) error {
	q := r.Builder().
		Delete(purchasesTable).
		Where(squirrel.Eq{"source_doc_id": sourceDocID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete by source: %w", err)
	}

	return nil
}

// GetLines retrieves lines for a purchase.
func (r *PurchaseRepo) GetLines(ctx context.Context, docID id.ID) ([]purchase.Line, error) {
	q := r.Builder().
		Select("line_id", "line_no", "product_id", "quantity", "unit_price", "amount").
		From(purchaseLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []purchase.Line
	if err := pgxscan.Select(ctx, r.Querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// SaveLines saves lines for a purchase (delete existing + insert new).
func (r *PurchaseRepo) SaveLines(ctx context.Context, docID id.ID, lines []purchase.Line) error {
	querier := r.Querier(ctx)

	deleteSQL := "DELETE FROM " + purchaseLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(purchaseLinesTable).
		Columns("line_id", "document_id", "line_no", "product_id", "quantity", "unit_price", "amount")

	for _, line := range lines {
		q = q.Values(line.LineID, docID, line.LineNo, line.ProductID, line.Quantity, line.UnitPrice, line.Amount)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert lines: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}

	return nil
}

// List retrieves purchases with filtering.
func (r *PurchaseRepo) List(ctx context.Context, filter purchase.ListFilter) (domain.ListResult[*purchase.Purchase], error) {
	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.Origin != nil {
		q = q.Where(squirrel.Eq{"origin": *filter.Origin})
	}

	if filter.SupplierName != nil {
		q = q.Where(squirrel.ILike{"supplier_name": "%" + *filter.SupplierName + "%"})
	}

	if filter.ProductID != nil {
		q = q.Where(squirrel.Expr(
			"id IN (SELECT document_id FROM doc_purchase_lines WHERE product_id = ?)",
			*filter.ProductID,
		))
	}

	if filter.ExcludeZeroCost {
		q = q.Where(squirrel.Gt{"total_amount": 0})
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
		searchPattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": searchPattern},
			squirrel.ILike{"supplier_name": searchPattern},
		})
	}

	return r.runListQuery(ctx, q, filter.ListFilter)
}
