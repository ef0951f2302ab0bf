// Package purchase provides the Purchase document.
// Purchases are informational record cards: what came in from the
// supplier and on what terms. They post no register movements - money
// leaving for the supplier is recorded with a funds move, and goods
// arriving are recorded with a stock move.
package purchase

import (
	"context"
	"time"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
	"tradebook/internal/domain/posting"
)

// Origin defines how the purchase came about.
type Origin string

const (
	// OriginMonetary - regular paid purchase from the supplier
	OriginMonetary Origin = "monetary"
	// OriginDump - unsolicited extra goods pushed by the supplier
	OriginDump Origin = "dump"
	// OriginPassThrough - goods that went supplier -> customer directly
	OriginPassThrough Origin = "passthrough"
)

// Purchase represents a purchase record card.
type Purchase struct {
	entity.Document

	// Origin defines the purchase category
	Origin Origin `db:"origin" json:"origin"`

	// SupplierName is free text; the business buys from one distributor
	SupplierName *string `db:"supplier_name" json:"supplierName,omitempty"`

	// SourceDocID links auto-created cards (dump, passthrough) to the
	// stock move or sale that produced them
	SourceDocID *id.ID `db:"source_doc_id" json:"sourceDocId,omitempty"`

	// SourceDocType is the type of the source document
	SourceDocType *string `db:"source_doc_type" json:"sourceDocType,omitempty"`

	// Totals (calculated from lines)
	TotalQuantity types.Quantity   `db:"total_quantity" json:"totalQuantity"`
	TotalAmount   types.MinorUnits `db:"total_amount" json:"totalAmount"`

	// Table part: purchased goods
	Lines []Line `db:"-" json:"lines"`
}

// Line represents a line in the purchase.
type Line struct {
	LineID id.ID `db:"line_id" json:"lineId"`
	LineNo int   `db:"line_no" json:"lineNo"`

	ProductID id.ID            `db:"product_id" json:"productId"`
	Quantity  types.Quantity   `db:"quantity" json:"quantity"`
	UnitPrice types.MinorUnits `db:"unit_price" json:"unitPrice"`
	Amount    types.MinorUnits `db:"amount" json:"amount"`
}

// NewPurchase creates a new purchase record.
func NewPurchase(origin Origin) *Purchase {
	return &Purchase{
		Document: entity.NewDocument(),
		Origin:   origin,
		Lines:    make([]Line, 0),
	}
}

// AddLine adds a line to the purchase and recalculates totals.
func (p *Purchase) AddLine(productID id.ID, quantity types.Quantity, unitPrice types.MinorUnits) {
	lineNo := len(p.Lines) + 1
	amount := types.MinorUnits((quantity.Int64Scaled() * int64(unitPrice)) / 10000)

	p.Lines = append(p.Lines, Line{
		LineID:    id.New(),
		LineNo:    lineNo,
		ProductID: productID,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		Amount:    amount,
	})
	p.recalculateTotals()
}

func (p *Purchase) recalculateTotals() {
	p.TotalQuantity = types.Quantity(0)
	p.TotalAmount = types.MinorUnits(0)

	for _, line := range p.Lines {
		p.TotalQuantity += line.Quantity
		p.TotalAmount += line.Amount
	}
}

// SetSource links this card to the document that produced it.
func (p *Purchase) SetSource(docID id.ID, docType string, date time.Time) {
	p.SourceDocID = &docID
	p.SourceDocType = &docType
	p.Date = date
}

// Validate implements entity.Validatable.
func (p *Purchase) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}

	if !isValidOrigin(p.Origin) {
		return apperror.NewValidation("invalid purchase origin").
			WithDetail("field", "origin").
			WithDetail("value", string(p.Origin))
	}

	if len(p.Lines) == 0 {
		return apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	for i, line := range p.Lines {
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

	// Auto-created cards must carry their source
	if p.Origin != OriginMonetary && p.SourceDocID == nil {
		return apperror.NewValidation("source document is required").
			WithDetail("field", "sourceDocId").
			WithDetail("origin", string(p.Origin))
	}

	return nil
}

// --- Postable interface implementation ---

func (p *Purchase) GetDocumentType() string { return "Purchase" }

// GenerateMovements returns an empty set: purchase cards are
// informational and never touch the registers.
func (p *Purchase) GenerateMovements(ctx context.Context) (*posting.MovementSet, error) {
	return posting.NewMovementSet(), nil
}

var _ posting.Postable = (*Purchase)(nil)

func isValidOrigin(o Origin) bool {
	switch o {
	case OriginMonetary, OriginDump, OriginPassThrough:
		return true
	}
	return false
}
