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
	"tradebook/internal/domain/registers/funds"
	"tradebook/internal/infrastructure/storage/postgres"
)

const (
	fundsMovementsTable = "reg_funds_movements"
	fundsBalancesTable  = "reg_funds_balances"
)

// FundsRepo implements funds.Repository.
type FundsRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewFundsRepo creates a new funds register repository.
func NewFundsRepo(txManager *postgres.TxManager) *FundsRepo {
	return &FundsRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// CreateMovements batch inserts movements and applies balance deltas.
func (r *FundsRepo) CreateMovements(ctx context.Context, movements []entity.FundsMovement) error {
	if len(movements) == 0 {
		return nil
	}

	q := r.builder.Insert(fundsMovementsTable).Columns(
		"line_id", "recorder_id", "recorder_type", "recorder_version",
		"period", "record_type",
		"account_id", "amount", "created_at",
	)

	for _, m := range movements {
		q = q.Values(
			m.LineID, m.RecorderID, m.RecorderType, m.RecorderVersion,
			m.Period, m.RecordType,
			m.AccountID, m.Amount, m.CreatedAt,
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

	deltas := make(map[id.ID]types.MinorUnits, len(movements))
	lastMovement := make(map[id.ID]time.Time, len(movements))
	order := make([]id.ID, 0, len(movements))
	for i := range movements {
		m := &movements[i]
		if _, seen := deltas[m.AccountID]; !seen {
			order = append(order, m.AccountID)
		}
		deltas[m.AccountID] += m.SignedAmount()
		if m.Period.After(lastMovement[m.AccountID]) {
			lastMovement[m.AccountID] = m.Period
		}
	}

	for _, accountID := range order {
		if err := r.applyBalanceDelta(ctx, accountID, deltas[accountID], lastMovement[accountID]); err != nil {
			return err
		}
	}

	return nil
}

func (r *FundsRepo) applyBalanceDelta(ctx context.Context, accountID id.ID, delta types.MinorUnits, movementAt time.Time) error {
	sql := `
		INSERT INTO reg_funds_balances (account_id, amount, last_movement_at, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (account_id) DO UPDATE SET
			amount = reg_funds_balances.amount + EXCLUDED.amount,
			last_movement_at = GREATEST(reg_funds_balances.last_movement_at, EXCLUDED.last_movement_at),
			updated_at = NOW()
	`

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, accountID, delta, movementAt); err != nil {
		return fmt.Errorf("apply balance delta: %w", err)
	}

	return nil
}

// DeleteMovementsByRecorder removes stale movements and reverses their balance effect.
func (r *FundsRepo) DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	sql := `
		DELETE FROM reg_funds_movements
		WHERE recorder_id = $1 AND recorder_version < $2
		RETURNING account_id, record_type, amount
	`

	querier := r.txManager.GetQuerier(ctx)
	rows, err := querier.Query(ctx, sql, recorderID, beforeVersion)
	if err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}
	defer rows.Close()

	deltas := make(map[id.ID]types.MinorUnits)
	for rows.Next() {
		var accountID id.ID
		var recordType entity.RecordType
		var amount types.MinorUnits
		if err := rows.Scan(&accountID, &recordType, &amount); err != nil {
			return fmt.Errorf("scan deleted movement: %w", err)
		}
		if recordType == entity.RecordTypeReceipt {
			deltas[accountID] -= amount
		} else {
			deltas[accountID] += amount
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read deleted movements: %w", err)
	}
	rows.Close()

	now := time.Now()
	for accountID, delta := range deltas {
		if delta == 0 {
			continue
		}
		if err := r.applyBalanceDelta(ctx, accountID, delta, now); err != nil {
			return err
		}
	}

	return nil
}

// GetMovementsByRecorder retrieves movements for a document.
func (r *FundsRepo) GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.FundsMovement, error) {
	q := r.builder.Select(
		"line_id", "recorder_id", "recorder_type", "recorder_version",
		"period", "record_type",
		"account_id", "amount", "created_at",
	).From(fundsMovementsTable).
		Where(squirrel.Eq{"recorder_id": recorderID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []entity.FundsMovement
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}

	return movements, nil
}

// GetBalance returns current register balance for an account.
func (r *FundsRepo) GetBalance(ctx context.Context, accountID id.ID) (entity.FundsBalance, error) {
	return r.getBalance(ctx, accountID, false)
}

// GetBalanceForUpdate returns balance with pessimistic lock.
func (r *FundsRepo) GetBalanceForUpdate(ctx context.Context, accountID id.ID) (entity.FundsBalance, error) {
	return r.getBalance(ctx, accountID, true)
}

func (r *FundsRepo) getBalance(ctx context.Context, accountID id.ID, forUpdate bool) (entity.FundsBalance, error) {
	var balance entity.FundsBalance

	sql := `
		SELECT account_id, amount, last_movement_at, updated_at
		FROM reg_funds_balances
		WHERE account_id = $1
	`
	if forUpdate {
		sql += " FOR UPDATE"
	}

	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &balance, sql, accountID); err != nil {
		if pgxscan.NotFound(err) {
			return entity.FundsBalance{
				AccountID: accountID,
				Amount:    0,
			}, nil
		}
		return balance, fmt.Errorf("get balance: %w", err)
	}

	return balance, nil
}

// GetBalances returns balances with filtering.
func (r *FundsRepo) GetBalances(ctx context.Context, filter funds.BalanceFilter) ([]entity.FundsBalance, error) {
	q := r.builder.Select(
		"account_id", "amount", "last_movement_at", "updated_at",
	).From(fundsBalancesTable)

	if len(filter.AccountIDs) > 0 {
		q = q.Where(squirrel.Eq{"account_id": filter.AccountIDs})
	}

	if filter.ExcludeZero {
		q = q.Where(squirrel.NotEq{"amount": int64(0)})
	}

	q = q.OrderBy("account_id")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var balances []entity.FundsBalance
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &balances, sql, args...); err != nil {
		return nil, fmt.Errorf("select balances: %w", err)
	}

	return balances, nil
}

// GetBalanceAtDate calculates balance as of a specific date.
func (r *FundsRepo) GetBalanceAtDate(ctx context.Context, accountID id.ID, date time.Time) (types.MinorUnits, error) {
	sql := `
		SELECT COALESCE(
			SUM(CASE WHEN record_type = 'receipt' THEN amount ELSE -amount END),
			0
		)
		FROM reg_funds_movements
		WHERE account_id = $1 AND period <= $2
	`

	var balance int64
	querier := r.txManager.GetQuerier(ctx)
	err := querier.QueryRow(ctx, sql, accountID, date).Scan(&balance)
	if err != nil && err != pgx.ErrNoRows {
		return 0, fmt.Errorf("calculate balance at date: %w", err)
	}

	return types.MinorUnits(balance), nil
}

// GetMovementHistory returns movement history for an account.
func (r *FundsRepo) GetMovementHistory(ctx context.Context, accountID id.ID, filter funds.MovementFilter) ([]entity.FundsMovement, error) {
	q := r.builder.Select(
		"line_id", "recorder_id", "recorder_type", "recorder_version",
		"period", "record_type",
		"account_id", "amount", "created_at",
	).From(fundsMovementsTable).
		Where(squirrel.Eq{"account_id": accountID})

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

	var movements []entity.FundsMovement
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("select history: %w", err)
	}

	return movements, nil
}

// GetTurnover calculates turnover for period.
func (r *FundsRepo) GetTurnover(ctx context.Context, filter funds.TurnoverFilter) (funds.Turnover, error) {
	var result funds.Turnover

	args := []any{filter.FromDate, filter.ToDate}
	conditions := "period >= $1 AND period < $2"

	if filter.AccountID != nil {
		conditions += " AND account_id = $3"
		args = append(args, *filter.AccountID)
	}

	sql := fmt.Sprintf(`
		SELECT
			COALESCE(SUM(CASE WHEN record_type = 'receipt' THEN amount ELSE 0 END), 0) as receipt,
			COALESCE(SUM(CASE WHEN record_type = 'expense' THEN amount ELSE 0 END), 0) as expense
		FROM reg_funds_movements
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
func (r *FundsRepo) RecalculateBalances(ctx context.Context, accountID *id.ID) error {
	querier := r.txManager.GetQuerier(ctx)

	if accountID != nil {
		sql := `
			INSERT INTO reg_funds_balances (account_id, amount, last_movement_at, updated_at)
			SELECT account_id,
				   COALESCE(SUM(CASE WHEN record_type = 'receipt' THEN amount ELSE -amount END), 0),
				   COALESCE(MAX(period), NOW()),
				   NOW()
			FROM reg_funds_movements
			WHERE account_id = $1
			GROUP BY account_id
			ON CONFLICT (account_id) DO UPDATE SET
				amount = EXCLUDED.amount,
				last_movement_at = EXCLUDED.last_movement_at,
				updated_at = NOW()
		`
		if _, err := querier.Exec(ctx, sql, *accountID); err != nil {
			return fmt.Errorf("recalculate balance: %w", err)
		}
		resetSQL := `
			UPDATE reg_funds_balances SET amount = 0, updated_at = NOW()
			WHERE account_id = $1
			  AND NOT EXISTS (SELECT 1 FROM reg_funds_movements WHERE account_id = $1)
		`
		if _, err := querier.Exec(ctx, resetSQL, *accountID); err != nil {
			return fmt.Errorf("reset empty balance: %w", err)
		}
		return nil
	}

	if _, err := querier.Exec(ctx, "DELETE FROM reg_funds_balances"); err != nil {
		return fmt.Errorf("clear balances: %w", err)
	}

	sql := `
		INSERT INTO reg_funds_balances (account_id, amount, last_movement_at, updated_at)
		SELECT account_id,
			   COALESCE(SUM(CASE WHEN record_type = 'receipt' THEN amount ELSE -amount END), 0),
			   COALESCE(MAX(period), NOW()),
			   NOW()
		FROM reg_funds_movements
		GROUP BY account_id
	`
	if _, err := querier.Exec(ctx, sql); err != nil {
		return fmt.Errorf("rebuild balances: %w", err)
	}

	return nil
}

// Ensure interface compliance.
var _ funds.Repository = (*FundsRepo)(nil)
