// Package funds provides the money accumulation register.
package funds

import (
	"context"
	"time"

	"tradebook/internal/core/entity"
	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
)

// Repository defines operations for the funds register.
type Repository interface {
	// Movement operations

	// CreateMovements batch inserts movements (used during posting)
	CreateMovements(ctx context.Context, movements []entity.FundsMovement) error

	// DeleteMovementsByRecorder removes movements of a document with
	// recorder_version below the given one
	DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error

	// GetMovementsByRecorder retrieves all movements for a document
	GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.FundsMovement, error)

	// Balance operations

	// GetBalance returns current register balance for an account
	GetBalance(ctx context.Context, accountID id.ID) (entity.FundsBalance, error)

	// GetBalanceForUpdate returns balance with row lock (overdraft control)
	GetBalanceForUpdate(ctx context.Context, accountID id.ID) (entity.FundsBalance, error)

	// GetBalances returns balances for all accounts
	GetBalances(ctx context.Context, filter BalanceFilter) ([]entity.FundsBalance, error)

	// GetBalanceAtDate calculates balance as of a specific date (for reports)
	GetBalanceAtDate(ctx context.Context, accountID id.ID, date time.Time) (types.MinorUnits, error)

	// Reporting

	// GetMovementHistory returns movement history for an account
	GetMovementHistory(ctx context.Context, accountID id.ID, filter MovementFilter) ([]entity.FundsMovement, error)

	// GetTurnover calculates receipt and expense totals for a period
	GetTurnover(ctx context.Context, filter TurnoverFilter) (Turnover, error)

	// Maintenance

	// RecalculateBalances rebuilds balance table from movements
	RecalculateBalances(ctx context.Context, accountID *id.ID) error
}

// BalanceFilter for filtering balance queries.
type BalanceFilter struct {
	AccountIDs  []id.ID
	ExcludeZero bool
}

// MovementFilter for filtering movement history.
type MovementFilter struct {
	RecordType *entity.RecordType
	FromDate   *time.Time
	ToDate     *time.Time
	Limit      int
	Offset     int
}

// TurnoverFilter for turnover calculations.
type TurnoverFilter struct {
	AccountID *id.ID
	FromDate  time.Time
	ToDate    time.Time
}

// Turnover holds receipt and expense totals for a period.
type Turnover struct {
	Receipt types.MinorUnits `db:"receipt" json:"receipt"`
	Expense types.MinorUnits `db:"expense" json:"expense"`
}

// Net returns receipts minus expenses.
func (t Turnover) Net() types.MinorUnits {
	return t.Receipt - t.Expense
}
