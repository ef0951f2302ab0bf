// Package sale provides the Sale document.
// A sale records goods handed to a customer on credit: the customer's
// debt goes up, the stock at the issuing point goes down. Direct-supply
// sales bypass stock entirely.
package sale

import (
	"context"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
	"tradebook/internal/domain/posting"
)

// Sale represents a credit sale document.
type Sale struct {
	entity.Document

	// CustomerID is the buying customer
	CustomerID id.ID `db:"customer_id" json:"customerId"`

	// StockPointID is the point goods are issued from
	StockPointID id.ID `db:"stock_point_id" json:"stockPointId"`

	// DirectSupply is set when StockPointID is a direct (pass-through)
	// point: goods go supplier -> customer without touching stock.
	// Resolved from the stock point type at save time.
	DirectSupply bool `db:"direct_supply" json:"directSupply"`

	// Totals (calculated from lines)
	TotalQuantity types.Quantity   `db:"total_quantity" json:"totalQuantity"`
	TotalAmount   types.MinorUnits `db:"total_amount" json:"totalAmount"`

	// Table part: sold goods
	Lines []SaleLine `db:"-" json:"lines"`
}

// SaleLine represents a line in the sale.
type SaleLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID id.ID            `db:"product_id" json:"productId"`
	Quantity  types.Quantity   `db:"quantity" json:"quantity"`
	UnitPrice types.MinorUnits `db:"unit_price" json:"unitPrice"`
	Amount    types.MinorUnits `db:"amount" json:"amount"`
}

// NewSale creates a new sale document.
func NewSale(customerID, stockPointID id.ID) *Sale {
	return &Sale{
		Document:     entity.NewDocument(),
		CustomerID:   customerID,
		StockPointID: stockPointID,
		Lines:        make([]SaleLine, 0),
	}
}

// AddLine adds a line to the sale and recalculates totals.
func (s *Sale) AddLine(productID id.ID, quantity types.Quantity, unitPrice types.MinorUnits) {
	lineNo := len(s.Lines) + 1

	// Quantity is scaled by 10000, UnitPrice is in minor units.
	amount := types.MinorUnits((quantity.Int64Scaled() * int64(unitPrice)) / 10000)

	line := SaleLine{
		LineID:    id.New(),
		LineNo:    lineNo,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Amount:    amount,
	}

	s.Lines = append(s.Lines, line)
	s.recalculateTotals()
}

func (s *Sale) recalculateTotals() {
	s.TotalQuantity = types.Quantity(0)
	s.TotalAmount = types.MinorUnits(0)

	for _, line := range s.Lines {
		s.TotalQuantity += line.Quantity
		s.TotalAmount += line.Amount
	}
}

// Validate implements entity.Validatable.
func (s *Sale) Validate(ctx context.Context) error {
	if err := s.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(s.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}

	if id.IsNil(s.StockPointID) {
		return apperror.NewValidation("stock point is required").
			WithDetail("field", "stockPointId")
	}

	if len(s.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range s.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !line.Quantity.IsPositive() {
			return apperror.NewInvalidAmount("quantity", line.Quantity.Float64()).
				WithDetail("lineNo", i+1)
		}
		if line.UnitPrice.IsNegative() {
			return apperror.NewInvalidAmount("unitPrice", int64(line.UnitPrice)).
				WithDetail("lineNo", i+1)
		}
	}

	if !s.TotalAmount.IsPositive() {
		return apperror.NewInvalidAmount("totalAmount", int64(s.TotalAmount))
	}

	return nil
}

// --- Postable interface implementation ---
// GetID, GetPostedVersion, IsPosted, CanPost, MarkPosted, MarkUnposted are inherited from entity.Document

func (s *Sale) GetDocumentType() string { return "Sale" }

// GenerateMovements creates register movements for this document.
// Receivable receipt for the full amount; stock expenses per line
// unless this is a direct-supply sale.
func (s *Sale) GenerateMovements(ctx context.Context) (*posting.MovementSet, error) {
	movements := posting.NewMovementSet()
	newVersion := s.PostedVersion + 1

	movements.AddReceivable(entity.NewReceivableMovement(
		s.ID,
		s.GetDocumentType(),
		newVersion,
		s.Date,
		entity.RecordTypeReceipt,
		s.CustomerID,
		s.TotalAmount,
	))

	if !s.DirectSupply {
		for _, line := range s.Lines {
			movements.AddStock(entity.NewStockMovement(
				s.ID,
				s.GetDocumentType(),
				newVersion,
				s.Date,
				entity.RecordTypeExpense,
				s.StockPointID,
				line.ProductID,
				line.Quantity,
			))
		}
	}

	return movements, nil
}

// Ensure compile-time interface compliance.
var _ posting.Postable = (*Sale)(nil)
