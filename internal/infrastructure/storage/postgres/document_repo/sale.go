package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradebook/internal/core/id"
	"tradebook/internal/domain"
	"tradebook/internal/domain/documents/sale"
	"tradebook/internal/infrastructure/storage/postgres"
)

const (
	salesTable     = "doc_sales"
	saleLinesTable = "doc_sale_lines"
)

// SaleRepo implements sale.Repository.
type SaleRepo struct {
	*BaseDocumentRepo[*sale.Sale]
}

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txManager *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*sale.Sale](
			txManager,
			salesTable,
			postgres.ExtractDBColumns[sale.Sale](),
			func() *sale.Sale { return &sale.Sale{} },
		),
	}
}

// GetLines retrieves lines for a sale.
func (r *SaleRepo) GetLines(ctx context.Context, docID id.ID) ([]sale.SaleLine, error) {
	q := r.Builder().
		Select("line_id", "line_no", "product_id", "quantity", "unit_price", "amount").
		From(saleLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []sale.SaleLine
	if err := pgxscan.Select(ctx, r.Querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// SaveLines saves lines for a sale (delete existing + insert new).
func (r *SaleRepo) SaveLines(ctx context.Context, docID id.ID, lines []sale.SaleLine) error {
	querier := r.Querier(ctx)

	deleteSQL := "DELETE FROM " + saleLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(saleLinesTable).
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

// List retrieves sales with filtering.
func (r *SaleRepo) List(ctx context.Context, filter sale.ListFilter) (domain.ListResult[*sale.Sale], error) {
	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}

	if filter.StockPointID != nil {
		q = q.Where(squirrel.Eq{"stock_point_id": *filter.StockPointID})
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
