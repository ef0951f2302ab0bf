package account

import (
	"context"
	"fmt"
	"time"

	"tradebook/internal/core/id"
	"tradebook/internal/core/tx"
	"tradebook/internal/core/types"
	"tradebook/internal/domain"
	"tradebook/pkg/numerator"
)

// Service provides business logic for Account catalog.
type Service struct {
	*domain.CatalogService[*Account]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Account service.
func NewService(
	repo Repository,
	numerator numerator.Generator,
	txManager tx.Manager,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Account]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  numerator,
		EntityName: "account",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      numerator,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)
	base.Hooks().OnBeforeUpdate(svc.prepareForUpdate)

	return svc
}

// prepareForCreate handles code generation and default flag.
func (s *Service) prepareForCreate(ctx context.Context, a *Account) error {
	if a.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("AC"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		a.Code = code
	}

	if a.IsDefault {
		if err := s.repo.ClearDefault(ctx); err != nil {
			return err
		}
	}

	return nil
}

// prepareForUpdate handles default flag.
func (s *Service) prepareForUpdate(ctx context.Context, a *Account) error {
	if a.IsDefault {
		if err := s.repo.ClearDefault(ctx); err != nil {
			return err
		}
	}
	return nil
}

// OverdraftPolicy reports whether an account may go negative and its
// opening balance. Implements the funds register's AccountPolicy contract.
func (s *Service) OverdraftPolicy(ctx context.Context, accountID id.ID) (bool, types.MinorUnits, error) {
	a, err := s.GetByID(ctx, accountID)
	if err != nil {
		return false, 0, err
	}
	return a.AllowOverdraft, a.OpeningBalance, nil
}
