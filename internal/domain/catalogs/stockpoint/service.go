package stockpoint

import (
	"context"
	"fmt"
	"time"

	"tradebook/internal/core/tx"
	"tradebook/internal/domain"
	"tradebook/pkg/numerator"
)

// Service provides business logic for StockPoint catalog.
type Service struct {
	*domain.CatalogService[*StockPoint]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new StockPoint service.
func NewService(
	repo Repository,
	numerator numerator.Generator,
	txManager tx.Manager,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*StockPoint]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  numerator,
		EntityName: "stock_point",
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
func (s *Service) prepareForCreate(ctx context.Context, p *StockPoint) error {
	if p.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("SP"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		p.Code = code
	}

	if p.IsDefault {
		if err := s.repo.ClearDefault(ctx); err != nil {
			return err
		}
	}

	return nil
}

// prepareForUpdate handles default flag.
func (s *Service) prepareForUpdate(ctx context.Context, p *StockPoint) error {
	if p.IsDefault {
		if err := s.repo.ClearDefault(ctx); err != nil {
			return err
		}
	}
	return nil
}

// GetDirect retrieves the virtual direct-supply point.
func (s *Service) GetDirect(ctx context.Context) (*StockPoint, error) {
	return s.repo.GetDirect(ctx)
}
