package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/core/tx"
	"tradebook/internal/core/types"
	"tradebook/internal/domain"
	"tradebook/internal/domain/catalogs/customer"
	"tradebook/internal/domain/posting"
	"tradebook/pkg/logger"
	"tradebook/pkg/numerator"
)

// BalanceReader reads the receivable register balance under a row lock.
// Implemented by the receivable register service.
type BalanceReader interface {
	GetBalanceForUpdate(ctx context.Context, customerID id.ID) (types.MinorUnits, error)
}

// CustomerResolver resolves customers for opening balances.
// Implemented by the customer catalog service.
type CustomerResolver interface {
	GetByID(ctx context.Context, id id.ID) (*customer.Customer, error)
}

// Service provides business operations for payment documents.
type Service struct {
	repo          Repository
	postingEngine *posting.Engine
	numerator     numerator.Generator
	txManager     tx.Manager
	balances      BalanceReader
	customers     CustomerResolver
}

// NewService creates a new payment service.
func NewService(
	repo Repository,
	postingEngine *posting.Engine,
	numerator numerator.Generator,
	txManager tx.Manager,
	balances BalanceReader,
	customers CustomerResolver,
) *Service {
	return &Service{
		repo:          repo,
		postingEngine: postingEngine,
		numerator:     numerator,
		txManager:     txManager,
		balances:      balances,
		customers:     customers,
	}
}

func (s *Service) assignNumber(ctx context.Context, doc *Payment) error {
	if doc.Number != "" {
		return nil
	}
	cfg := numerator.DefaultConfig(NumeratorPrefix)
	number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
	if err != nil {
		return fmt.Errorf("generate number: %w", err)
	}
	doc.Number = number
	return nil
}

// Create creates a new payment document without posting it.
func (s *Service) Create(ctx context.Context, doc *Payment) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}
	if err := s.assignNumber(ctx, doc); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create document: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "payment created", "id", doc.ID, "number", doc.Number, "kind", doc.Kind)
	return nil
}

// GetByID retrieves a payment.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Payment, error) {
	return s.repo.GetByID(ctx, docID)
}

// Update updates an unposted payment.
func (s *Service) Update(ctx context.Context, doc *Payment) error {
	if err := doc.CanModify(); err != nil {
		return err
	}
	if err := doc.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, doc)
	})
}

// Delete removes a payment. A posted payment is unposted first, so the
// customer's debt comes back in the same transaction.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if doc.Posted {
			if err := s.postingEngine.Unpost(ctx, doc, func(ctx context.Context) error {
				return s.repo.Update(ctx, doc)
			}); err != nil {
				return err
			}
		}
		return s.repo.Delete(ctx, docID)
	})
}

// Post records the payment's movements. Discounts are clamped against
// the customer's balance inside the transaction, under a row lock, so
// two concurrent discounts cannot both read the pre-discount balance.
func (s *Service) Post(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	return s.postResolved(ctx, doc, func(ctx context.Context) error {
		return s.repo.Update(ctx, doc)
	})
}

// PostAndSave validates, saves, and posts a payment in one transaction.
func (s *Service) PostAndSave(ctx context.Context, doc *Payment) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}
	if err := s.assignNumber(ctx, doc); err != nil {
		return err
	}

	isNew := doc.Version == 1 && !doc.Posted

	persist := func(ctx context.Context) error {
		if isNew {
			return s.repo.Create(ctx, doc)
		}
		return s.repo.Update(ctx, doc)
	}

	return s.postResolved(ctx, doc, persist)
}

// Unpost reverses the payment's movements without deleting the document.
func (s *Service) Unpost(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	return s.postingEngine.Unpost(ctx, doc, func(ctx context.Context) error {
		return s.repo.Update(ctx, doc)
	})
}

// postResolved resolves the discount clamp and posts in one transaction.
func (s *Service) postResolved(ctx context.Context, doc *Payment, updateDoc func(ctx context.Context) error) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if doc.Kind == KindDiscount {
			if err := s.resolveDiscount(ctx, doc); err != nil {
				return err
			}
		}
		return s.postingEngine.Post(ctx, doc, updateDoc)
	})
}

// resolveDiscount computes the applied discount amount from the
// customer's current balance. Must run inside the posting transaction.
func (s *Service) resolveDiscount(ctx context.Context, doc *Payment) error {
	cust, err := s.customers.GetByID(ctx, doc.CustomerID)
	if err != nil {
		return err
	}

	registerBalance, err := s.balances.GetBalanceForUpdate(ctx, doc.CustomerID)
	if err != nil {
		return err
	}

	// On repost the register still carries this document's previous
	// expense; add back the stored amount so the clamp sees the
	// pre-discount balance. The in-memory document may already carry
	// edited values, so the old amount comes from the repository.
	balance := cust.OpeningBalance + registerBalance
	if doc.Posted {
		stored, err := s.repo.GetByID(ctx, doc.ID)
		if err != nil {
			return err
		}
		balance += stored.Amount
	}

	if !balance.IsPositive() {
		return apperror.NewBusinessRule(
			apperror.CodeInvalidAmount,
			"cannot discount a customer with no outstanding balance",
		).WithDetail("customer_id", doc.CustomerID.String()).
			WithDetail("balance", int64(balance))
	}

	balanceDec := decimal.NewFromInt(int64(balance))

	requested := doc.RequestedAmount
	if doc.IsPercentDiscount() {
		requested = types.MinorUnits(balanceDec.
			Mul(decimal.NewFromInt(int64(doc.Percent))).
			Div(decimal.NewFromInt(10000)).
			Round(0).IntPart())
		doc.RequestedAmount = requested
	}

	capAmount := types.MinorUnits(balanceDec.
		Mul(decimal.NewFromInt(MaxDiscountBP)).
		Div(decimal.NewFromInt(10000)).
		Round(0).IntPart())

	applied := requested
	if applied > capAmount {
		applied = capAmount
		logger.Info(ctx, "discount clamped",
			"customer_id", doc.CustomerID,
			"requested", int64(requested),
			"applied", int64(applied),
		)
	}

	if !applied.IsPositive() {
		return apperror.NewInvalidAmount("amount", int64(applied))
	}

	doc.Amount = applied
	return nil
}

// List retrieves payments with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Payment], error) {
	return s.repo.List(ctx, filter)
}
