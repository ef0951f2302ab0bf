// Package customer provides the Customer catalog.
// Customers are the parties whose credit purchases and repayments the
// ledger tracks.
package customer

import (
	"context"
	"regexp"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
	"tradebook/internal/core/types"
)

var phoneRE = regexp.MustCompile(`^[+0-9][0-9 \-]{5,19}$`)

// Customer represents a credit customer.
type Customer struct {
	entity.Catalog

	// Phone is the primary contact number
	Phone *string `db:"phone" json:"phone,omitempty"`

	// Address is the delivery/visit address
	Address *string `db:"address" json:"address,omitempty"`

	// Area is a free-form route/locality grouping for collection rounds
	Area *string `db:"area" json:"area,omitempty"`

	// OpeningBalance is the debt carried in from before the ledger
	// started. Current balance = OpeningBalance + receivable register.
	OpeningBalance types.MinorUnits `db:"opening_balance" json:"openingBalance"`

	// IsActive indicates the customer is still traded with
	IsActive bool `db:"is_active" json:"isActive"`

	// Comment is a free-form note
	Comment *string `db:"comment" json:"comment,omitempty"`
}

// NewCustomer creates a new Customer with required fields.
func NewCustomer(code, name string) *Customer {
	return &Customer{
		Catalog:  entity.NewCatalog(code, name),
		IsActive: true,
	}
}

// Validate implements entity.Validatable interface.
func (c *Customer) Validate(ctx context.Context) error {
	if err := c.Catalog.Validate(ctx); err != nil {
		return err
	}

	if c.Phone != nil && *c.Phone != "" && !phoneRE.MatchString(*c.Phone) {
		return apperror.NewValidation("invalid phone number").
			WithDetail("field", "phone").
			WithDetail("value", *c.Phone)
	}

	return nil
}

// CanTrade returns true if documents can reference this customer.
func (c *Customer) CanTrade() bool {
	return c.IsActive && !c.IsFolder && !c.DeletionMark
}
