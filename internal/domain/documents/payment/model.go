// Package payment provides the Payment document.
// A payment records money collected from a customer into an account;
// a discount waives part of the customer's debt without money moving.
package payment

import (
	"context"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
	"tradebook/internal/domain/posting"
)

// Kind defines the payment category.
type Kind string

const (
	// KindPayment - money received from the customer
	KindPayment Kind = "payment"
	// KindDiscount - debt waived, no money moves
	KindDiscount Kind = "discount"
)

// Payment represents a customer payment or discount document.
type Payment struct {
	entity.Document

	// Kind defines whether money moved
	Kind Kind `db:"kind" json:"kind"`

	// CustomerID is the paying customer
	CustomerID id.ID `db:"customer_id" json:"customerId"`

	// AccountID is the receiving account (payments only)
	AccountID *id.ID `db:"account_id" json:"accountId,omitempty"`

	// Percent requests a discount as a share of the current balance.
	// Basis points (1000 = 10%). Zero means Amount was entered directly.
	Percent int `db:"percent" json:"percent,omitempty"`

	// RequestedAmount is what the user asked for. For percent discounts
	// it is computed from the balance at posting time.
	RequestedAmount types.MinorUnits `db:"requested_amount" json:"requestedAmount"`

	// Amount is the applied amount. For discounts this is the requested
	// amount clamped to the policy cap; the clamp is resolved when the
	// document posts.
	Amount types.MinorUnits `db:"amount" json:"amount"`
}

// NewPayment creates a money payment document.
func NewPayment(customerID, accountID id.ID, amount types.MinorUnits) *Payment {
	return &Payment{
		Document:        entity.NewDocument(),
		Kind:            KindPayment,
		CustomerID:      customerID,
		AccountID:       &accountID,
		RequestedAmount: amount,
		Amount:          amount,
	}
}

// NewDiscount creates a fixed-amount discount document.
func NewDiscount(customerID id.ID, amount types.MinorUnits) *Payment {
	return &Payment{
		Document:        entity.NewDocument(),
		Kind:            KindDiscount,
		CustomerID:      customerID,
		RequestedAmount: amount,
		Amount:          amount,
	}
}

// NewPercentDiscount creates a discount expressed in basis points of
// the customer's balance (1000 = 10%).
func NewPercentDiscount(customerID id.ID, percentBP int) *Payment {
	return &Payment{
		Document:   entity.NewDocument(),
		Kind:       KindDiscount,
		CustomerID: customerID,
		Percent:    percentBP,
	}
}

// IsPercentDiscount reports whether the amount derives from the balance.
func (p *Payment) IsPercentDiscount() bool {
	return p.Kind == KindDiscount && p.Percent > 0
}

// Validate implements entity.Validatable.
func (p *Payment) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}

	if !isValidKind(p.Kind) {
		return apperror.NewValidation("invalid payment kind").
			WithDetail("field", "kind").
			WithDetail("value", string(p.Kind))
	}

	if id.IsNil(p.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}

	switch p.Kind {
	case KindPayment:
		if p.AccountID == nil || id.IsNil(*p.AccountID) {
			return apperror.NewValidation("account is required").
				WithDetail("field", "accountId")
		}
		if !p.Amount.IsPositive() {
			return apperror.NewInvalidAmount("amount", int64(p.Amount))
		}
	case KindDiscount:
		if p.AccountID != nil {
			return apperror.NewValidation("discount cannot reference an account").
				WithDetail("field", "accountId")
		}
		if p.IsPercentDiscount() {
			if p.Percent > 10000 {
				return apperror.NewInvalidAmount("percent", p.Percent)
			}
		} else if !p.RequestedAmount.IsPositive() {
			return apperror.NewInvalidAmount("amount", int64(p.RequestedAmount))
		}
	}

	return nil
}

// --- Postable interface implementation ---

func (p *Payment) GetDocumentType() string { return "Payment" }

// CanPost requires the applied amount to be resolved. For percent
// discounts that happens in the service, under the balance row lock.
func (p *Payment) CanPost(ctx context.Context) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}
	if !p.Amount.IsPositive() {
		return apperror.NewInvalidAmount("amount", int64(p.Amount))
	}
	return nil
}

// GenerateMovements creates register movements for this document.
// Debt goes down for both kinds; money arrives only for payments.
func (p *Payment) GenerateMovements(ctx context.Context) (*posting.MovementSet, error) {
	movements := posting.NewMovementSet()
	newVersion := p.PostedVersion + 1

	movements.AddReceivable(entity.NewReceivableMovement(
		p.ID,
		p.GetDocumentType(),
		newVersion,
		p.Date,
		entity.RecordTypeExpense,
		p.CustomerID,
		p.Amount,
	))

	if p.Kind == KindPayment {
		movements.AddFunds(entity.NewFundsMovement(
			p.ID,
			p.GetDocumentType(),
			newVersion,
			p.Date,
			entity.RecordTypeReceipt,
			*p.AccountID,
			p.Amount,
		))
	}

	return movements, nil
}

var _ posting.Postable = (*Payment)(nil)

func isValidKind(k Kind) bool {
	switch k {
	case KindPayment, KindDiscount:
		return true
	}
	return false
}
