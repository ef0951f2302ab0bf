// Package stock provides the stock accumulation register.
package stock

import (
	"context"
	"time"

	"tradebook/internal/core/entity"
	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
)

// Repository defines operations for the stock register.
type Repository interface {
	// Movement operations

	// CreateMovements batch inserts movements (used during posting)
	CreateMovements(ctx context.Context, movements []entity.StockMovement) error

	// DeleteMovementsByRecorder removes movements of a document with
	// recorder_version below the given one
	DeleteMovementsByRecorder(ctx context.Context, recorderID id.ID, beforeVersion int) error

	// GetMovementsByRecorder retrieves all movements for a document
	GetMovementsByRecorder(ctx context.Context, recorderID id.ID) ([]entity.StockMovement, error)

	// Balance operations

	// GetBalance returns current balance for stock point + product
	GetBalance(ctx context.Context, stockPointID, productID id.ID) (entity.StockBalance, error)

	// GetBalanceForUpdate returns balance with row lock for stock control
	GetBalanceForUpdate(ctx context.Context, stockPointID, productID id.ID) (entity.StockBalance, error)

	// GetBalancesByStockPoint returns balances for a stock point
	GetBalancesByStockPoint(ctx context.Context, stockPointID id.ID, filter BalanceFilter) ([]entity.StockBalance, error)

	// GetBalancesByProduct returns balances across all stock points for a product
	GetBalancesByProduct(ctx context.Context, productID id.ID) ([]entity.StockBalance, error)

	// GetBalancesAtDate calculates balance as of a specific date (for reports)
	GetBalancesAtDate(ctx context.Context, stockPointID, productID id.ID, date time.Time) (types.Quantity, error)

	// Reporting

	// GetMovementHistory returns movement history for a product
	GetMovementHistory(ctx context.Context, productID id.ID, filter MovementFilter) ([]entity.StockMovement, error)

	// GetTurnover calculates receipt and expense totals for a period
	GetTurnover(ctx context.Context, filter TurnoverFilter) (Turnover, error)

	// Maintenance

	// RecalculateBalances rebuilds balance table from movements
	RecalculateBalances(ctx context.Context, stockPointID, productID *id.ID) error
}

// BalanceFilter for filtering balance queries.
type BalanceFilter struct {
	ProductIDs  []id.ID
	ExcludeZero bool
	MinQuantity *types.Quantity
	MaxQuantity *types.Quantity
}

// MovementFilter for filtering movement history.
type MovementFilter struct {
	StockPointID *id.ID
	RecordType   *entity.RecordType
	FromDate     *time.Time
	ToDate       *time.Time
	Limit        int
	Offset       int
}

// TurnoverFilter for turnover calculations.
type TurnoverFilter struct {
	StockPointID *id.ID
	ProductID    *id.ID
	FromDate     time.Time
	ToDate       time.Time
}

// Turnover holds receipt and expense totals for a period.
type Turnover struct {
	Receipt types.Quantity `db:"receipt" json:"receipt"`
	Expense types.Quantity `db:"expense" json:"expense"`
}

// Net returns receipts minus expenses.
func (t Turnover) Net() types.Quantity {
	return t.Receipt - t.Expense
}
