// Package fundsmove provides the FundsMove document.
// Funds moves shift money without a customer involved: deposits into
// an account, withdrawals, account-to-account transfers, and business
// expenses paid out of an account.
package fundsmove

import (
	"context"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
	"tradebook/internal/domain/posting"
)

// Kind defines the funds move category.
type Kind string

const (
	// KindDeposit - money put into an account from outside the ledger
	KindDeposit Kind = "deposit"
	// KindWithdrawal - money taken out of an account
	KindWithdrawal Kind = "withdrawal"
	// KindTransfer - money moved between two accounts
	KindTransfer Kind = "transfer"
	// KindExpense - business expense paid out of an account
	KindExpense Kind = "expense"
)

// FundsMove represents a money movement document.
type FundsMove struct {
	entity.Document

	// Kind defines the move category
	Kind Kind `db:"kind" json:"kind"`

	// FromID is the source account (withdrawal, transfer, expense)
	FromID *id.ID `db:"from_id" json:"fromId,omitempty"`

	// ToID is the destination account (deposit, transfer)
	ToID *id.ID `db:"to_id" json:"toId,omitempty"`

	// Amount is the moved amount
	Amount types.MinorUnits `db:"amount" json:"amount"`

	// Category labels expenses (e.g. "fuel", "rent")
	Category *string `db:"category" json:"category,omitempty"`
}

// NewDeposit creates a deposit document.
func NewDeposit(toID id.ID, amount types.MinorUnits) *FundsMove {
	return &FundsMove{
		Document: entity.NewDocument(),
		Kind:     KindDeposit,
		ToID:     &toID,
		Amount:   amount,
	}
}

// NewWithdrawal creates a withdrawal document.
func NewWithdrawal(fromID id.ID, amount types.MinorUnits) *FundsMove {
	return &FundsMove{
		Document: entity.NewDocument(),
		Kind:     KindWithdrawal,
		FromID:   &fromID,
		Amount:   amount,
	}
}

// NewTransfer creates an account-to-account transfer document.
func NewTransfer(fromID, toID id.ID, amount types.MinorUnits) *FundsMove {
	return &FundsMove{
		Document: entity.NewDocument(),
		Kind:     KindTransfer,
		FromID:   &fromID,
		ToID:     &toID,
		Amount:   amount,
	}
}

// NewExpense creates a business expense document.
func NewExpense(fromID id.ID, amount types.MinorUnits, category string) *FundsMove {
	return &FundsMove{
		Document: entity.NewDocument(),
		Kind:     KindExpense,
		FromID:   &fromID,
		Amount:   amount,
		Category: &category,
	}
}

// Validate implements entity.Validatable.
func (f *FundsMove) Validate(ctx context.Context) error {
	if err := f.Document.Validate(ctx); err != nil {
		return err
	}

	if !isValidKind(f.Kind) {
		return apperror.NewValidation("invalid funds move kind").
			WithDetail("field", "kind").
			WithDetail("value", string(f.Kind))
	}

	if !f.Amount.IsPositive() {
		if f.Kind == KindTransfer {
			return apperror.NewInvalidTransfer("transfer amount must be positive").
				WithDetail("amount", int64(f.Amount))
		}
		return apperror.NewInvalidAmount("amount", int64(f.Amount))
	}

	needsFrom := f.Kind == KindWithdrawal || f.Kind == KindTransfer || f.Kind == KindExpense
	needsTo := f.Kind == KindDeposit || f.Kind == KindTransfer

	if needsFrom && (f.FromID == nil || id.IsNil(*f.FromID)) {
		return apperror.NewInvalidTransfer("source account is required").
			WithDetail("field", "fromId").
			WithDetail("kind", string(f.Kind))
	}
	if needsTo && (f.ToID == nil || id.IsNil(*f.ToID)) {
		return apperror.NewInvalidTransfer("destination account is required").
			WithDetail("field", "toId").
			WithDetail("kind", string(f.Kind))
	}

	if f.Kind == KindTransfer && *f.FromID == *f.ToID {
		return apperror.NewInvalidTransfer("source and destination must differ").
			WithDetail("from_id", f.FromID.String()).
			WithDetail("to_id", f.ToID.String())
	}

	return nil
}

// --- Postable interface implementation ---

func (f *FundsMove) GetDocumentType() string { return "FundsMove" }

// GenerateMovements creates register movements for this document.
// Transfers produce an expense and a receipt in one movement set, so
// money is conserved across the pair.
func (f *FundsMove) GenerateMovements(ctx context.Context) (*posting.MovementSet, error) {
	movements := posting.NewMovementSet()
	newVersion := f.PostedVersion + 1

	if f.FromID != nil {
		movements.AddFunds(entity.NewFundsMovement(
			f.ID,
			f.GetDocumentType(),
			newVersion,
			f.Date,
			entity.RecordTypeExpense,
			*f.FromID,
			f.Amount,
		))
	}
	if f.ToID != nil {
		movements.AddFunds(entity.NewFundsMovement(
			f.ID,
			f.GetDocumentType(),
			newVersion,
			f.Date,
			entity.RecordTypeReceipt,
			*f.ToID,
			f.Amount,
		))
	}

	return movements, nil
}

var _ posting.Postable = (*FundsMove)(nil)

func isValidKind(k Kind) bool {
	switch k {
	case KindDeposit, KindWithdrawal, KindTransfer, KindExpense:
		return true
	}
	return false
}
