// Package stockpoint provides the StockPoint catalog.
// Stock points are the locations goods sit at: retail shops, godowns,
// and the virtual direct-supply point goods pass through on the way
// from supplier to customer.
package stockpoint

import (
	"context"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
	"tradebook/internal/core/types"
)

// PointType defines the type of stock point.
type PointType string

const (
	TypeShop   PointType = "shop"   // retail shop floor
	TypeGodown PointType = "godown" // storage godown
	TypeDirect PointType = "direct" // virtual pass-through point
)

// StockPoint represents a goods location.
type StockPoint struct {
	entity.Catalog

	// Type defines the stock point category
	Type PointType `db:"type" json:"type"`

	// Address is the physical address (empty for direct points)
	Address *string `db:"address" json:"address,omitempty"`

	// Threshold triggers low-stock warnings when balance drops below it.
	// Zero disables the warning.
	Threshold types.Quantity `db:"threshold" json:"threshold"`

	// IsActive indicates if stock point is operational
	IsActive bool `db:"is_active" json:"isActive"`

	// IsDefault indicates if this is the default point for sales
	IsDefault bool `db:"is_default" json:"isDefault"`
}

// NewStockPoint creates a new StockPoint with required fields.
func NewStockPoint(code, name string, pointType PointType) *StockPoint {
	return &StockPoint{
		Catalog:  entity.NewCatalog(code, name),
		Type:     pointType,
		IsActive: true,
	}
}

// Validate implements entity.Validatable interface.
func (p *StockPoint) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidPointType(p.Type) {
		return apperror.NewValidation("invalid stock point type").
			WithDetail("field", "type").
			WithDetail("value", string(p.Type))
	}

	if p.Threshold.IsNegative() {
		return apperror.NewValidation("threshold cannot be negative").
			WithDetail("field", "threshold")
	}

	return nil
}

// CanHoldStock returns true if goods can be loaded into this point.
// Direct points never accumulate stock; they only pass goods through.
func (p *StockPoint) CanHoldStock() bool {
	return p.IsActive && !p.IsFolder && !p.DeletionMark && p.Type != TypeDirect
}

func isValidPointType(t PointType) bool {
	switch t {
	case TypeShop, TypeGodown, TypeDirect:
		return true
	}
	return false
}
