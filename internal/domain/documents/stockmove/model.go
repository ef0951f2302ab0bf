// Package stockmove provides the StockMove document.
// Stock moves change where goods sit: loads bring goods in from the
// supplier, transfers shift them between points, dumps record the
// supplier pushing unsolicited goods into a shop.
package stockmove

import (
	"context"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
	"tradebook/internal/domain/posting"
)

// Kind defines the stock move category.
type Kind string

const (
	// KindLoad - goods arrive from the supplier (paired with a purchase)
	KindLoad Kind = "load"
	// KindTransfer - goods move between two stock points
	KindTransfer Kind = "transfer"
	// KindDump - supplier pushes extra goods in; a dump purchase card
	// is auto-created alongside
	KindDump Kind = "dump"
)

// StockMove represents a goods movement document.
type StockMove struct {
	entity.Document

	// Kind defines the move category
	Kind Kind `db:"kind" json:"kind"`

	// FromID is the source point (transfers only)
	FromID *id.ID `db:"from_id" json:"fromId,omitempty"`

	// ToID is the destination point
	ToID id.ID `db:"to_id" json:"toId"`

	// Totals (calculated from lines)
	TotalQuantity types.Quantity `db:"total_quantity" json:"totalQuantity"`

	// Table part: moved goods
	Lines []StockMoveLine `db:"-" json:"lines"`
}

// StockMoveLine represents a line in the stock move.
type StockMoveLine struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID id.ID          `db:"product_id" json:"productId"`
	Quantity  types.Quantity `db:"quantity" json:"quantity"`

	// UnitPrice values dump lines for the auto-created purchase card
	UnitPrice types.MinorUnits `db:"unit_price" json:"unitPrice"`
}

// NewLoad creates a goods arrival document.
func NewLoad(toID id.ID) *StockMove {
	return &StockMove{
		Document: entity.NewDocument(),
		Kind:     KindLoad,
		ToID:     toID,
		Lines:    make([]StockMoveLine, 0),
	}
}

// NewTransfer creates a point-to-point transfer document.
func NewTransfer(fromID, toID id.ID) *StockMove {
	return &StockMove{
		Document: entity.NewDocument(),
		Kind:     KindTransfer,
		FromID:   &fromID,
		ToID:     toID,
		Lines:    make([]StockMoveLine, 0),
	}
}

// NewDump creates a supplier dump document.
func NewDump(toID id.ID) *StockMove {
	return &StockMove{
		Document: entity.NewDocument(),
		Kind:     KindDump,
		ToID:     toID,
		Lines:    make([]StockMoveLine, 0),
	}
}

// AddLine adds a line to the move and recalculates totals.
func (m *StockMove) AddLine(productID id.ID, quantity types.Quantity, unitPrice types.MinorUnits) {
	m.Lines = append(m.Lines, StockMoveLine{
		LineID:    id.New(),
		LineNo:    len(m.Lines) + 1,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	})
	m.recalculateTotals()
}

func (m *StockMove) recalculateTotals() {
	m.TotalQuantity = types.Quantity(0)
	for _, line := range m.Lines {
		m.TotalQuantity += line.Quantity
	}
}

// Validate implements entity.Validatable.
func (m *StockMove) Validate(ctx context.Context) error {
	if err := m.Document.Validate(ctx); err != nil {
		return err
	}

	if !isValidKind(m.Kind) {
		return apperror.NewValidation("invalid stock move kind").
			WithDetail("field", "kind").
			WithDetail("value", string(m.Kind))
	}

	if id.IsNil(m.ToID) {
		return apperror.NewValidation("destination stock point is required").
			WithDetail("field", "toId")
	}

	switch m.Kind {
	case KindTransfer:
		if m.FromID == nil || id.IsNil(*m.FromID) {
			return apperror.NewInvalidTransfer("source stock point is required").
				WithDetail("field", "fromId")
		}
		if *m.FromID == m.ToID {
			return apperror.NewInvalidTransfer("source and destination must differ").
				WithDetail("from_id", m.FromID.String()).
				WithDetail("to_id", m.ToID.String())
		}
	case KindLoad, KindDump:
		if m.FromID != nil {
			return apperror.NewValidation("source is not allowed for this kind").
				WithDetail("field", "fromId").
				WithDetail("kind", string(m.Kind))
		}
	}

	if len(m.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range m.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if !line.Quantity.IsPositive() {
			if m.Kind == KindTransfer {
				return apperror.NewInvalidTransfer("transfer quantity must be positive").
					WithDetail("lineNo", i+1)
			}
			return apperror.NewInvalidAmount("quantity", line.Quantity.Float64()).
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// --- Postable interface implementation ---

func (m *StockMove) GetDocumentType() string { return "StockMove" }

// GenerateMovements creates register movements for this document.
// Loads and dumps receive at the destination; transfers expense the
// source and receive at the destination in one movement set.
func (m *StockMove) GenerateMovements(ctx context.Context) (*posting.MovementSet, error) {
	movements := posting.NewMovementSet()
	newVersion := m.PostedVersion + 1

	for _, line := range m.Lines {
		if m.Kind == KindTransfer {
			movements.AddStock(entity.NewStockMovement(
				m.ID,
				m.GetDocumentType(),
				newVersion,
				m.Date,
				entity.RecordTypeExpense,
				*m.FromID,
				line.ProductID,
				line.Quantity,
			))
		}
		movements.AddStock(entity.NewStockMovement(
			m.ID,
			m.GetDocumentType(),
			newVersion,
			m.Date,
			entity.RecordTypeReceipt,
			m.ToID,
			line.ProductID,
			line.Quantity,
		))
	}

	return movements, nil
}

var _ posting.Postable = (*StockMove)(nil)

func isValidKind(k Kind) bool {
	switch k {
	case KindLoad, KindTransfer, KindDump:
		return true
	}
	return false
}
