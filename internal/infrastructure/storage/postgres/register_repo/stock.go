package register_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"tradebook/internal/core/entity"
	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
	"tradebook/internal/domain/registers/stock"
	"tradebook/internal/infrastructure/storage/postgres"
)

const (
	stockMovementsTable = "reg_stock_movements"
	stockBalancesTable  = "reg_stock_balances"
)

// stockDim identifies one balance row.
type stockDim struct {
	stockPointID id.ID
	productID    id.ID
}

// StockRepo implements stock.Repository.
type StockRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewStockRepo creates a new stock register repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateMovements batch inserts movements and applies balance deltas.
// Uses COPY when inside a transaction, which posting always is.
func (r *StockRepo) CreateMovements(ctx context.Context, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	columns := []string{
		"line_id", "recorder_id", "recorder_type", "recorder_version",
		"period", "record_type",
		"stock_point_id", "product_id", "quantity", "created_at",
	}

	if tx := r.txManager.GetTx(ctx); tx != nil {
		inserter := postgres.NewBatchInserter(r.txManager)
		rows := make([][]any, 0, len(movements))
		for _, m := range movements {
			rows = append(rows, []any{
				m.LineID, m.RecorderID, m.RecorderType, m.RecorderVersion,
				m.Period, m.RecordType,
				m.StockPointID, m.ProductID, m.Quantity, m.CreatedAt,
			})
		}
		if _, err := inserter.CopyFromSlice(ctx, stockMovementsTable, columns, rows); err != nil {
			return fmt.Errorf("copy movements: %w", err)
		}
	} else {
		q := r.builder.Insert(stockMovementsTable).Columns(columns...)
		for _, m := range movements {
			q = q.Values(
				m.LineID, m.RecorderID, m.RecorderType, m.RecorderVersion,
				m.Period, m.RecordType,
				m.StockPointID, m.ProductID, m.Quantity, m.CreatedAt,
			)
		}

		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}

		if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert movements: %w", err)
		}
	}

	// Apply balance deltas (aggregated per stock point + product)
	deltas := make(map[stockDim]types.Quantity, len(movements))
	lastMovement := make(map[stockDim]time.Time, len(movements))
	order := make([]stockDim, 0, len(movements))
	for i := range movements {
		m := &movements[i]
		dim := stockDim{stockPointID: m.StockPointID, productID: m.ProductID}
		if _, seen := deltas[dim]; !seen {
			order = append(order, dim)
		}
		deltas[dim] += m.SignedQuantity()
		if m.Period.After(lastMovement[dim]) {
			lastMovement[dim] = m.Period
		}
	}

	for _, dim := range order {
		if err := r.applyBalanceDelta(ctx, dim, deltas[dim], lastMovement[dim]); err != nil {
			return err
		}
	}

	return nil
}

func (r *StockRepo) applyBalanceDelta(ctx context.Context, dim stockDim, delta types.Quantity, movementAt time.Time) error {
	sql := `
		INSERT INTO reg_stock_balances (stock_point_id, product_id, quantity, last_movement_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (stock_point_id, product_id) DO UPDATE SET
			quantity = reg_stock_balances.quantity + EXCLUDED.quantity,
			last_movement_at = GREATEST(reg_stock_balances.last_movement_at, EXCLUDED.last_movement_at),
			updated_at = NOW()
	`

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, dim.stockPointID, dim.productID, delta, movementAt); err != nil {
		return fmt.Errorf("apply balance delta: %w", err)
	}

	return nil
}

// DeleteMovementsByRecorder removes stale movements and reverses their balance effect.
func (r *StockRepo) DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	sql := `
		DELETE FROM reg_stock_movements
		WHERE recorder_id = $1 AND recorder_version < $2
		RETURNING stock_point_id, product_id, record_type, quantity
	`

	querier := r.txManager.GetQuerier(ctx)
	rows, err := querier.Query(ctx, sql, recorderID, beforeVersion)
	if err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}
	defer rows.Close()

	deltas := make(map[stockDim]types.Quantity)
	for rows.Next() {
		var dim stockDim
		var recordType entity.RecordType
		var quantity types.Quantity
		if err := rows.Scan(&dim.stockPointID, &dim.productID, &recordType, &quantity); err != nil {
			return fmt.Errorf("scan deleted movement: %w", err)
		}
		if recordType == entity.RecordTypeReceipt {
			deltas[dim] -= quantity
		} else {
			deltas[dim] += quantity
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read deleted movements: %w", err)
	}
	rows.Close()

	now := time.Now()
	for dim, delta := range deltas {
		if delta == 0 {
			continue
		}
		if err := r.applyBalanceDelta(ctx, dim, delta, now); err != nil {
			return err
		}
	}

	return nil
}

// GetMovementsByRecorder retrieves movements for a document.
func (r *StockRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error) {
	q := r.builder.Select(
		"line_id", "recorder_id", "recorder_type", "recorder_version",
		"period", "record_type",
		"stock_point_id", "product_id", "quantity", "created_at",
	).From(stockMovementsTable).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.StockMovement
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

// GetBalance returns current balance for stock point + product.
func (r *StockRepo) GetBalance(ctx context.Context, stockPointID, productID id.ID) (entity.StockBalance, error) {
	return r.getBalance(ctx, stockPointID, productID, false)
}

// GetBalanceForUpdate returns balance with pessimistic lock.
func (r *StockRepo) GetBalanceForUpdate(ctx context.Context, stockPointID, productID id.ID) (entity.StockBalance, error) {
	return r.getBalance(ctx, stockPointID, productID, true)
}

func (r *StockRepo) getBalance(ctx context.Context, stockPointID, productID id.ID, forUpdate bool) (entity.StockBalance, error) {
	var balance entity.StockBalance

	sql := `
		SELECT stock_point_id, product_id, quantity, last_movement_at, updated_at
		FROM reg_stock_balances
		WHERE stock_point_id = $1 AND product_id = $2
	`
	if forUpdate {
		sql += " FOR UPDATE"
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &balance, sql, stockPointID, productID); err != nil {
		if pgxscan.NotFound(err) {
			return entity.StockBalance{
				StockPointID: stockPointID,
				ProductID:    productID,
				Quantity:     0,
			}, nil
		}
		return balance, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// GetBalancesByStockPoint returns balances for a stock point.
func (r *StockRepo) GetBalancesByStockPoint(ctx context.Context, stockPointID id.ID, filter stock.BalanceFilter) ([]entity.StockBalance, error) {
	q := r.builder.Select(
		"stock_point_id", "product_id",
		"quantity", "last_movement_at", "updated_at",
	).From(stockBalancesTable).
		Where(squirrel.Eq{"stock_point_id": stockPointID})

	if filter.ExcludeZero {
		q = q.Where(squirrel.NotEq{"quantity": int64(0)})
	}

	if len(filter.ProductIDs) > 0 {
		q = q.Where(squirrel.Eq{"product_id": filter.ProductIDs})
	}

	if filter.MinQuantity != nil {
		q = q.Where(squirrel.GtOrEq{"quantity": filter.MinQuantity.Int64Scaled()})
	}

	if filter.MaxQuantity != nil {
		q = q.Where(squirrel.LtOrEq{"quantity": filter.MaxQuantity.Int64Scaled()})
	}

	q = q.OrderBy("product_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []entity.StockBalance
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}

	return balances, nil
}

// GetBalancesByProduct returns balances for a product across stock points.
func (r *StockRepo) GetBalancesByProduct(ctx context.Context, productID id.ID) ([]entity.StockBalance, error) {
	q := r.builder.Select(
		"stock_point_id", "product_id",
		"quantity", "last_movement_at", "updated_at",
	).From(stockBalancesTable).
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.NotEq{"quantity": int64(0)}).
		OrderBy("stock_point_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []entity.StockBalance
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}

	return balances, nil
}

// GetBalancesAtDate calculates balance as of a specific date.
func (r *StockRepo) GetBalancesAtDate(ctx context.Context, stockPointID, productID id.ID, date time.Time) (types.Quantity, error) {
	sql := `
		SELECT COALESCE(
			SUM(CASE WHEN record_type = 'receipt' THEN quantity ELSE -quantity END),
			0
		)
		FROM reg_stock_movements
		WHERE stock_point_id = $1
		  AND product_id = $2
		  AND period <= $3
	`

	var balanceScaled int64
	querier := r.txManager.GetQuerier(ctx)
	err := querier.QueryRow(ctx, sql, stockPointID, productID, date).Scan(&balanceScaled)
	if err != nil && err != pgx.ErrNoRows {
		return 0, fmt.Errorf("calculate balance at date: %w", err)
	}

	return types.NewQuantityFromInt64Scaled(balanceScaled), nil
}

// GetMovementHistory returns movement history for a product.
func (r *StockRepo) GetMovementHistory(ctx context.Context, productID id.ID, filter stock.MovementFilter) ([]entity.StockMovement, error) {
	q := r.builder.Select(
		"line_id", "recorder_id", "recorder_type", "recorder_version",
		"period", "record_type",
		"stock_point_id", "product_id", "quantity", "created_at",
	).From(stockMovementsTable).
		Where(squirrel.Eq{"product_id": productID})

	if filter.StockPointID != nil {
		q = q.Where(squirrel.Eq{"stock_point_id": *filter.StockPointID})
	}

	if filter.RecordType != nil {
		q = q.Where(squirrel.Eq{"record_type": *filter.RecordType})
	}

	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"period": *filter.FromDate})
	}

	if filter.ToDate != nil {
		q = q.Where(squirrel.LtOrEq{"period": *filter.ToDate})
	}

	q = q.OrderBy("period DESC", "created_at DESC")

	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.StockMovement
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}

	return movements, nil
}

// GetTurnover calculates turnover for period.
func (r *StockRepo) GetTurnover(ctx context.Context, filter stock.TurnoverFilter) (stock.Turnover, error) {
	var result stock.Turnover

	args := []any{filter.FromDate, filter.ToDate}
	conditions := "period >= $1 AND period < $2"
	argIndex := 3

	if filter.StockPointID != nil {
		conditions += fmt.Sprintf(" AND stock_point_id = $%d", argIndex)
		args = append(args, *filter.StockPointID)
		argIndex++
	}

	if filter.ProductID != nil {
		conditions += fmt.Sprintf(" AND product_id = $%d", argIndex)
		args = append(args, *filter.ProductID)
	}

	sql := fmt.Sprintf(`
		SELECT
			COALESCE(SUM(CASE WHEN record_type = 'receipt' THEN quantity ELSE 0 END), 0) as receipt,
			COALESCE(SUM(CASE WHEN record_type = 'expense' THEN quantity ELSE 0 END), 0) as expense
		FROM reg_stock_movements
		WHERE %s
	`, conditions)

	querier := r.txManager.GetQuerier(ctx)
	var receiptScaled, expenseScaled int64
	err := querier.QueryRow(ctx, sql, args...).Scan(&receiptScaled, &expenseScaled)
	if err != nil && err != pgx.ErrNoRows {
		return result, fmt.Errorf("calculate turnover: %w", err)
	}

	result.Receipt = types.NewQuantityFromInt64Scaled(receiptScaled)
	result.Expense = types.NewQuantityFromInt64Scaled(expenseScaled)

	return result, nil
}

// RecalculateBalances rebuilds the balance table from movements.
func (r *StockRepo) RecalculateBalances(ctx context.Context, stockPointID, productID *id.ID) error {
	querier := r.txManager.GetQuerier(ctx)

	conditions := ""
	args := []any{}
	argIndex := 1

	if stockPointID != nil {
		conditions += fmt.Sprintf(" AND stock_point_id = $%d", argIndex)
		args = append(args, *stockPointID)
		argIndex++
	}
	if productID != nil {
		conditions += fmt.Sprintf(" AND product_id = $%d", argIndex)
		args = append(args, *productID)
	}

	deleteSQL := "DELETE FROM reg_stock_balances WHERE TRUE" + conditions
	if _, err := querier.Exec(ctx, deleteSQL, args...); err != nil {
		return fmt.Errorf("clear balances: %w", err)
	}

	insertSQL := fmt.Sprintf(`
		INSERT INTO reg_stock_balances (stock_point_id, product_id, quantity, last_movement_at, updated_at)
		SELECT stock_point_id, product_id,
			   COALESCE(SUM(CASE WHEN record_type = 'receipt' THEN quantity ELSE -quantity END), 0),
			   COALESCE(MAX(period), NOW()),
			   NOW()
		FROM reg_stock_movements
		WHERE TRUE%s
		GROUP BY stock_point_id, product_id
	`, conditions)
	if _, err := querier.Exec(ctx, insertSQL, args...); err != nil {
		return fmt.Errorf("rebuild balances: %w", err)
	}

	return nil
}

// Ensure interface compliance.
var _ stock.Repository = (*StockRepo)(nil)
