// Package register_repo provides PostgreSQL implementations for register repositories.
//
// Balance tables are maintained here, not by database triggers: every
// movement write and delete applies the matching balance delta in the same
// transaction, so balances and movements can never drift apart.
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
	"tradebook/internal/domain/registers/receivable"
	"tradebook/internal/infrastructure/storage/postgres"
)

const (
	receivableMovementsTable = "reg_receivable_movements"
	receivableBalancesTable  = "reg_receivable_balances"
)

// ReceivableRepo implements receivable.Repository.
type ReceivableRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewReceivableRepo creates a new receivable register repository.
func NewReceivableRepo(txManager *postgres.TxManager) *ReceivableRepo {
	return &ReceivableRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateMovements batch inserts movements and applies balance deltas.
func (r *ReceivableRepo) CreateMovements(ctx context.Context, movements []entity.ReceivableMovement) error {
	if len(movements) == 0 {
		return nil
	}

	q := r.builder.Insert(receivableMovementsTable).Columns(
		"line_id", "recorder_id", "recorder_type", "recorder_version",
		"period", "record_type",
		"customer_id", "amount", "created_at",
	)

	for _, m := range movements {
		q = q.Values(
			m.LineID, m.RecorderID, m.RecorderType, m.RecorderVersion,
			m.Period, m.RecordType,
			m.CustomerID, m.Amount, m.CreatedAt,
		)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert movements: %w", err)
	}

	// Apply balance deltas (aggregated per customer)
	deltas := make(map[id.ID]types.MinorUnits, len(movements))
	lastMovement := make(map[id.ID]time.Time, len(movements))
	order := make([]id.ID, 0, len(movements))
	for i := range movements {
		m := &movements[i]
		if _, seen := deltas[m.CustomerID]; !seen {
			order = append(order, m.CustomerID)
		}
		deltas[m.CustomerID] += m.SignedAmount()
		if m.Period.After(lastMovement[m.CustomerID]) {
			lastMovement[m.CustomerID] = m.Period
		}
	}

	for _, customerID := range order {
		if err := r.applyBalanceDelta(ctx, customerID, deltas[customerID], lastMovement[customerID]); err != nil {
			return err
		}
	}

	return nil
}

// applyBalanceDelta upserts a balance row with the given delta.
func (r *ReceivableRepo) applyBalanceDelta(ctx context.Context, customerID id.ID, delta types.MinorUnits, movementAt time.Time) error {
	sql := `
		INSERT INTO reg_receivable_balances (customer_id, amount, last_movement_at, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (customer_id) DO UPDATE SET
			amount = reg_receivable_balances.amount + EXCLUDED.amount,
			last_movement_at = GREATEST(reg_receivable_balances.last_movement_at, EXCLUDED.last_movement_at),
			updated_at = NOW()
	`

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, customerID, delta, movementAt); err != nil {
		return fmt.Errorf("apply balance delta: %w", err)
	}

	return nil
}

// DeleteMovementsByRecorder removes stale movements and reverses their balance effect.
func (r *ReceivableRepo) DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	sql := `
		DELETE FROM reg_receivable_movements
		WHERE recorder_id = $1 AND recorder_version < $2
		RETURNING customer_id, record_type, amount
	`

	querier := r.txManager.GetQuerier(ctx)
	rows, err := querier.Query(ctx, sql, recorderID, beforeVersion)
	if err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}
	defer rows.Close()

	deltas := make(map[id.ID]types.MinorUnits)
	for rows.Next() {
		var customerID id.ID
		var recordType entity.RecordType
		var amount types.MinorUnits
		if err := rows.Scan(&customerID, &recordType, &amount); err != nil {
			return fmt.Errorf("scan deleted movement: %w", err)
		}
		// Reverse: a deleted receipt decreases the balance, a deleted expense increases it
		if recordType == entity.RecordTypeReceipt {
			deltas[customerID] -= amount
		} else {
			deltas[customerID] += amount
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read deleted movements: %w", err)
	}
	rows.Close()

	now := time.Now()
	for customerID, delta := range deltas {
		if delta == 0 {
			continue
		}
		if err := r.applyBalanceDelta(ctx, customerID, delta, now); err != nil {
			return err
		}
	}

	return nil
}

// GetMovementsByRecorder retrieves movements for a document.
func (r *ReceivableRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.ReceivableMovement, error) {
	q := r.builder.Select(
		"line_id", "recorder_id", "recorder_type", "recorder_version",
		"period", "record_type",
		"customer_id", "amount", "created_at",
	).From(receivableMovementsTable).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.ReceivableMovement
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

// GetBalance returns current register balance for a customer.
func (r *ReceivableRepo) GetBalance(ctx context.Context, customerID id.ID) (entity.ReceivableBalance, error) {
	return r.getBalance(ctx, customerID, false)
}

// GetBalanceForUpdate returns balance with pessimistic lock.
func (r *ReceivableRepo) GetBalanceForUpdate(ctx context.Context, customerID id.ID) (entity.ReceivableBalance, error) {
	return r.getBalance(ctx, customerID, true)
}

func (r *ReceivableRepo) getBalance(ctx context.Context, customerID id.ID, forUpdate bool) (entity.ReceivableBalance, error) {
	var balance entity.ReceivableBalance

	sql := `
		SELECT customer_id, amount, last_movement_at, updated_at
		FROM reg_receivable_balances
		WHERE customer_id = $1
	`
	if forUpdate {
		sql += " FOR UPDATE"
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &balance, sql, customerID); err != nil {
		if pgxscan.NotFound(err) {
			return entity.ReceivableBalance{
				CustomerID: customerID,
				Amount:     0,
			}, nil
		}
		return balance, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// GetBalances returns balances with filtering.
func (r *ReceivableRepo) GetBalances(ctx context.Context, filter receivable.BalanceFilter) ([]entity.ReceivableBalance, error) {
	q := r.builder.Select(
		"customer_id", "amount", "last_movement_at", "updated_at",
	).From(receivableBalancesTable)

	if len(filter.CustomerIDs) > 0 {
		q = q.Where(squirrel.Eq{"customer_id": filter.CustomerIDs})
	}

	if filter.ExcludeZero {
		q = q.Where(squirrel.NotEq{"amount": int64(0)})
	}

	if filter.MinAmount != nil {
		q = q.Where(squirrel.GtOrEq{"amount": int64(*filter.MinAmount)})
	}

	q = q.OrderBy("customer_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []entity.ReceivableBalance
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}

	return balances, nil
}

// GetBalanceAtDate calculates balance as of a specific date.
func (r *ReceivableRepo) GetBalanceAtDate(ctx context.Context, customerID id.ID, date time.Time) (types.MinorUnits, error) {
	sql := `
		SELECT COALESCE(
			SUM(CASE WHEN record_type = 'receipt' THEN amount ELSE -amount END),
			0
		)
		FROM reg_receivable_movements
		WHERE customer_id = $1 AND period <= $2
	`

	var balance int64
	querier := r.txManager.GetQuerier(ctx)
	err := querier.QueryRow(ctx, sql, customerID, date).Scan(&balance)
	if err != nil && err != pgx.ErrNoRows {
		return 0, fmt.Errorf("calculate balance at date: %w", err)
	}

	return types.MinorUnits(balance), nil
}

// GetMovementHistory returns movement history for a customer.
func (r *ReceivableRepo) GetMovementHistory(ctx context.Context, customerID id.ID, filter receivable.MovementFilter) ([]entity.ReceivableMovement, error) {
	q := r.builder.Select(
		"line_id", "recorder_id", "recorder_type", "recorder_version",
		"period", "record_type",
		"customer_id", "amount", "created_at",
	).From(receivableMovementsTable).
		Where(squirrel.Eq{"customer_id": customerID})

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

	var movements []entity.ReceivableMovement
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}

	return movements, nil
}

// GetTurnover calculates turnover for period.
func (r *ReceivableRepo) GetTurnover(ctx context.Context, filter receivable.TurnoverFilter) (receivable.Turnover, error) {
	var result receivable.Turnover

	args := []any{filter.FromDate, filter.ToDate}
	conditions := "period >= $1 AND period < $2"

	if filter.CustomerID != nil {
		conditions += " AND customer_id = $3"
		args = append(args, *filter.CustomerID)
	}

	sql := fmt.Sprintf(`
		SELECT
			COALESCE(SUM(CASE WHEN record_type = 'receipt' THEN amount ELSE 0 END), 0) as receipt,
			COALESCE(SUM(CASE WHEN record_type = 'expense' THEN amount ELSE 0 END), 0) as expense
		FROM reg_receivable_movements
		WHERE %s
	`, conditions)

	querier := r.txManager.GetQuerier(ctx)
	var receipt, expense int64
	err := querier.QueryRow(ctx, sql, args...).Scan(&receipt, &expense)
	if err != nil && err != pgx.ErrNoRows {
		return result, fmt.Errorf("calculate turnover: %w", err)
	}

	result.Receipt = types.MinorUnits(receipt)
	result.Expense = types.MinorUnits(expense)

	return result, nil
}

// RecalculateBalances rebuilds the balance table from movements.
func (r *ReceivableRepo) RecalculateBalances(ctx context.Context, customerID *id.ID) error {
	querier := r.txManager.GetQuerier(ctx)

	if customerID != nil {
		sql := `
			INSERT INTO reg_receivable_balances (customer_id, amount, last_movement_at, updated_at)
			SELECT customer_id,
				   COALESCE(SUM(CASE WHEN record_type = 'receipt' THEN amount ELSE -amount END), 0),
				   COALESCE(MAX(period), NOW()),
				   NOW()
			FROM reg_receivable_movements
			WHERE customer_id = $1
			GROUP BY customer_id
			ON CONFLICT (customer_id) DO UPDATE SET
				amount = EXCLUDED.amount,
				last_movement_at = EXCLUDED.last_movement_at,
				updated_at = NOW()
		`
		if _, err := querier.Exec(ctx, sql, *customerID); err != nil {
			return fmt.Errorf("recalculate balance: %w", err)
		}
		// Customer may have no movements left at all
		resetSQL := `
			UPDATE reg_receivable_balances SET amount = 0, updated_at = NOW()
			WHERE customer_id = $1
			  AND NOT EXISTS (SELECT 1 FROM reg_receivable_movements WHERE customer_id = $1)
		`
		if _, err := querier.Exec(ctx, resetSQL, *customerID); err != nil {
			return fmt.Errorf("reset empty balance: %w", err)
		}
		return nil
	}

	if _, err := querier.Exec(ctx, "DELETE FROM reg_receivable_balances"); err != nil {
		return fmt.Errorf("clear balances: %w", err)
	}

	sql := `
		INSERT INTO reg_receivable_balances (customer_id, amount, last_movement_at, updated_at)
		SELECT customer_id,
			   COALESCE(SUM(CASE WHEN record_type = 'receipt' THEN amount ELSE -amount END), 0),
			   COALESCE(MAX(period), NOW()),
			   NOW()
		FROM reg_receivable_movements
		GROUP BY customer_id
	`
	if _, err := querier.Exec(ctx, sql); err != nil {
		return fmt.Errorf("rebuild balances: %w", err)
	}

	return nil
}

// Ensure interface compliance.
var _ receivable.Repository = (*ReceivableRepo)(nil)
