// Package entity provides core domain entities.
package entity

import (
	"time"

	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
)

// RecordType defines movement direction for accumulation registers.
type RecordType string

const (
	// RecordTypeReceipt increases balance
	RecordTypeReceipt RecordType = "receipt"
	// RecordTypeExpense decreases balance
	RecordTypeExpense RecordType = "expense"
)

// MovementBase contains common fields for all register movements.
// Movements are immutable - they are never updated, only deleted and recreated.
type MovementBase struct {
	// LineID is unique identifier for this movement line (UUIDv7)
	LineID id.ID `db:"line_id" json:"lineId"`

	// RecorderID is the document that created this movement
	RecorderID id.ID `db:"recorder_id" json:"recorderId"`

	// RecorderType is the document type (e.g., "Sale", "Payment")
	RecorderType string `db:"recorder_type" json:"recorderType"`

	// RecorderVersion tracks which posting iteration created this movement
	// Allows efficient cleanup: DELETE WHERE recorder_id = X AND recorder_version < Y
	RecorderVersion int `db:"recorder_version" json:"recorderVersion"`

	// Period is the business date for the movement (for period-based queries)
	Period time.Time `db:"period" json:"period"`

	// RecordType: receipt or expense
	RecordType RecordType `db:"record_type" json:"recordType"`

	// CreatedAt is when the movement was recorded
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// NewMovementBase creates a new movement base with generated LineID.
func NewMovementBase(recorderID id.ID, recorderType string, recorderVersion int, period time.Time, recordType RecordType) MovementBase {
	return MovementBase{
		LineID:          id.New(),
		RecorderID:      recorderID,
		RecorderType:    recorderType,
		RecorderVersion: recorderVersion,
		Period:          period,
		RecordType:      recordType,
		CreatedAt:       time.Now().UTC(),
	}
}

// ReceivableMovement represents a movement in the customer receivable register.
// Receipt increases what the customer owes, expense decreases it.
type ReceivableMovement struct {
	MovementBase

	// Dimensions
	CustomerID id.ID `db:"customer_id" json:"customerId"`

	// Resources
	Amount types.MinorUnits `db:"amount" json:"amount"`
}

// NewReceivableMovement creates a new receivable movement.
func NewReceivableMovement(
	recorderID id.ID,
	recorderType string,
	recorderVersion int,
	period time.Time,
	recordType RecordType,
	customerID id.ID,
	amount types.MinorUnits,
) ReceivableMovement {
	return ReceivableMovement{
		MovementBase: NewMovementBase(recorderID, recorderType, recorderVersion, period, recordType),
		CustomerID:   customerID,
		Amount:       amount,
	}
}

// SignedAmount returns amount with sign based on record type.
// Receipt = positive, Expense = negative.
func (m *ReceivableMovement) SignedAmount() types.MinorUnits {
	if m.RecordType == RecordTypeExpense {
		return m.Amount.Neg()
	}
	return m.Amount
}

// ReceivableBalance represents the current debt of a customer.
// This is a materialized/cached view for fast balance queries.
type ReceivableBalance struct {
	// Dimensions
	CustomerID id.ID `db:"customer_id" json:"customerId"`

	// Balances
	Amount types.MinorUnits `db:"amount" json:"amount"`

	// Metadata
	LastMovementAt time.Time `db:"last_movement_at" json:"lastMovementAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// FundsMovement represents a movement in the funds accumulation register.
// Tracks money flowing in and out of cash/bank accounts.
type FundsMovement struct {
	MovementBase

	// Dimensions
	AccountID id.ID `db:"account_id" json:"accountId"`

	// Resources
	Amount types.MinorUnits `db:"amount" json:"amount"`
}

// NewFundsMovement creates a new funds movement.
func NewFundsMovement(
	recorderID id.ID,
	recorderType string,
	recorderVersion int,
	period time.Time,
	recordType RecordType,
	accountID id.ID,
	amount types.MinorUnits,
) FundsMovement {
	return FundsMovement{
		MovementBase: NewMovementBase(recorderID, recorderType, recorderVersion, period, recordType),
		AccountID:    accountID,
		Amount:       amount,
	}
}

// SignedAmount returns amount with sign based on record type.
func (m *FundsMovement) SignedAmount() types.MinorUnits {
	if m.RecordType == RecordTypeExpense {
		return m.Amount.Neg()
	}
	return m.Amount
}

// FundsBalance represents the current balance of an account.
type FundsBalance struct {
	// Dimensions
	AccountID id.ID `db:"account_id" json:"accountId"`

	// Balances
	Amount types.MinorUnits `db:"amount" json:"amount"`

	// Metadata
	LastMovementAt time.Time `db:"last_movement_at" json:"lastMovementAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// StockMovement represents a movement in the stock accumulation register.
// Tracks quantity changes for products at stock points.
type StockMovement struct {
	MovementBase

	// Dimensions
	StockPointID id.ID `db:"stock_point_id" json:"stockPointId"`
	ProductID    id.ID `db:"product_id" json:"productId"`

	// Resources
	Quantity types.Quantity `db:"quantity" json:"quantity"`
}

// NewStockMovement creates a new stock movement.
func NewStockMovement(
	recorderID id.ID,
	recorderType string,
	recorderVersion int,
	period time.Time,
	recordType RecordType,
	stockPointID, productID id.ID,
	quantity types.Quantity,
) StockMovement {
	return StockMovement{
		MovementBase: NewMovementBase(recorderID, recorderType, recorderVersion, period, recordType),
		StockPointID: stockPointID,
		ProductID:    productID,
		Quantity:     quantity,
	}
}

// SignedQuantity returns quantity with sign based on record type.
// Receipt = positive, Expense = negative.
func (m *StockMovement) SignedQuantity() types.Quantity {
	if m.RecordType == RecordTypeExpense {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// StockBalance represents current balance in the stock register.
type StockBalance struct {
	// Dimensions
	StockPointID id.ID `db:"stock_point_id" json:"stockPointId"`
	ProductID    id.ID `db:"product_id" json:"productId"`

	// Balances
	Quantity types.Quantity `db:"quantity" json:"quantity"`

	// Metadata
	LastMovementAt time.Time `db:"last_movement_at" json:"lastMovementAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}
