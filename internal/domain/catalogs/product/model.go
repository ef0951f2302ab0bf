// Package product provides the Product catalog.
// For a single-brand distributorship this is a short list: the handful
// of SKUs the business actually moves.
package product

import (
	"context"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
	"tradebook/internal/core/types"
)

// Product represents a traded good.
type Product struct {
	entity.Catalog

	// Brand groups products by manufacturer line
	Brand *string `db:"brand" json:"brand,omitempty"`

	// Unit is the trade unit name (e.g., "case", "bag")
	Unit string `db:"unit" json:"unit"`

	// UnitsPerPack is how many retail pieces one trade unit holds
	UnitsPerPack int `db:"units_per_pack" json:"unitsPerPack"`

	// DefaultPrice is the usual selling price per unit
	DefaultPrice types.MinorUnits `db:"default_price" json:"defaultPrice"`

	// IsActive indicates if product is still traded
	IsActive bool `db:"is_active" json:"isActive"`
}

// NewProduct creates a new Product with required fields.
func NewProduct(code, name, unit string) *Product {
	return &Product{
		Catalog:  entity.NewCatalog(code, name),
		Unit:     unit,
		IsActive: true,
	}
}

// Validate implements entity.Validatable interface.
func (p *Product) Validate(ctx context.Context) error {
	if err := p.Catalog.Validate(ctx); err != nil {
		return err
	}

	if p.Unit == "" {
		return apperror.NewValidation("unit is required").
			WithDetail("field", "unit")
	}

	if p.UnitsPerPack < 0 {
		return apperror.NewValidation("units per pack cannot be negative").
			WithDetail("field", "unitsPerPack")
	}

	if p.DefaultPrice.IsNegative() {
		return apperror.NewValidation("default price cannot be negative").
			WithDetail("field", "defaultPrice")
	}

	return nil
}
