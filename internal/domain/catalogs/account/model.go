// Package account provides the Account catalog.
// Accounts are the cash boxes and bank accounts money moves between.
package account

import (
	"context"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
	"tradebook/internal/core/types"
)

// AccountType defines the kind of account.
type AccountType string

const (
	TypeCash AccountType = "cash" // physical cash box
	TypeBank AccountType = "bank" // bank account
	TypeUPI  AccountType = "upi"  // UPI/wallet account
)

// Account represents a money account.
type Account struct {
	entity.Catalog

	// Type defines the account category
	Type AccountType `db:"type" json:"type"`

	// Holder is the person or institution keeping the account
	Holder *string `db:"holder" json:"holder,omitempty"`

	// OpeningBalance is the balance carried in from before the ledger
	// started. Current balance = OpeningBalance + funds register.
	OpeningBalance types.MinorUnits `db:"opening_balance" json:"openingBalance"`

	// AllowOverdraft permits the balance to go negative.
	// Cash boxes that front payouts before deposits keep this on.
	AllowOverdraft bool `db:"allow_overdraft" json:"allowOverdraft"`

	// IsActive indicates if account is operational
	IsActive bool `db:"is_active" json:"isActive"`

	// IsDefault indicates if this is the default account for payments
	IsDefault bool `db:"is_default" json:"isDefault"`
}

// NewAccount creates a new Account with required fields.
func NewAccount(code, name string, accType AccountType) *Account {
	return &Account{
		Catalog:        entity.NewCatalog(code, name),
		Type:           accType,
		AllowOverdraft: true,
		IsActive:       true,
	}
}

// Validate implements entity.Validatable interface.
func (a *Account) Validate(ctx context.Context) error {
	if err := a.Catalog.Validate(ctx); err != nil {
		return err
	}

	if !isValidAccountType(a.Type) {
		return apperror.NewValidation("invalid account type").
			WithDetail("field", "type").
			WithDetail("value", string(a.Type))
	}

	return nil
}

// CanReceive returns true if account can accept money.
func (a *Account) CanReceive() bool {
	return a.IsActive && !a.IsFolder && !a.DeletionMark
}

// CanSpend returns true if account can be debited.
func (a *Account) CanSpend() bool {
	return a.IsActive && !a.IsFolder && !a.DeletionMark
}

func isValidAccountType(t AccountType) bool {
	switch t {
	case TypeCash, TypeBank, TypeUPI:
		return true
	}
	return false
}
