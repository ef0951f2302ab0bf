package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradebook/internal/core/id"
	"tradebook/internal/domain"
	"tradebook/internal/domain/documents/stockmove"
	"tradebook/internal/infrastructure/storage/postgres"
)

const (
	stockMovesTable     = "doc_stock_moves"
	stockMoveLinesTable = "doc_stock_move_lines"
)

// StockMoveRepo implements stockmove.Repository.
type StockMoveRepo struct {
	*BaseDocumentRepo[*stockmove.StockMove]
}

// NewStockMoveRepo creates a new stock move repository.
func NewStockMoveRepo(txManager *postgres.TxManager) *StockMoveRepo {
	return &StockMoveRepo{
		BaseDocumentRepo: NewBaseDocumentRepo[*stockmove.StockMove](
			txManager,
			stockMovesTable,
			postgres.ExtractDBColumns[stockmove.StockMove](),
			func() *stockmove.StockMove { return &stockmove.StockMove{} },
		),
	}
}

// GetLines retrieves lines for a stock move.
func (r *StockMoveRepo) GetLines(ctx context.Context, docID id.ID) ([]stockmove.StockMoveLine, error) {
	q := r.Builder().
		Select("line_id", "line_no", "product_id", "quantity", "unit_price").
		From(stockMoveLinesTable).
		Where(squirrel.Eq{"document_id": docID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []stockmove.StockMoveLine
	if err := pgxscan.Select(ctx, r.Querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}

	return lines, nil
}

// SaveLines saves lines for a stock move (delete existing + insert new).
func (r *StockMoveRepo) SaveLines(ctx context.Context, docID id.ID, lines []stockmove.StockMoveLine) error {
	querier := r.Querier(ctx)

	deleteSQL := "DELETE FROM " + stockMoveLinesTable + " WHERE document_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, docID); err != nil {
		return fmt.Errorf("delete existing lines: %w", err)
	}

	if len(lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(stockMoveLinesTable).
		Columns("line_id", "document_id", "line_no", "product_id", "quantity", "unit_price")

	for _, line := range lines {
		q = q.Values(line.LineID, docID, line.LineNo, line.ProductID, line.Quantity, line.UnitPrice)
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

// List retrieves stock moves with filtering.
func (r *StockMoveRepo) List(ctx context.Context, filter stockmove.ListFilter) (domain.ListResult[*stockmove.StockMove], error) {
	q := r.baseSelect()

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deletion_mark": false})
	}

	if filter.Kind != nil {
		q = q.Where(squirrel.Eq{"kind": *filter.Kind})
	}

	if filter.StockPointID != nil {
		// Matches either side of the move
		q = q.Where(squirrel.Or{
			squirrel.Eq{"from_id": *filter.StockPointID},
			squirrel.Eq{"to_id": *filter.StockPointID},
		})
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
