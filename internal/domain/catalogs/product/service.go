package product

import (
	"context"
	"fmt"
	"time"

	"tradebook/internal/core/tx"
	"tradebook/internal/domain"
	"tradebook/pkg/numerator"
)

// Service provides business logic for Product catalog.
type Service struct {
	*domain.CatalogService[*Product]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Product service.
func NewService(
	repo Repository,
	numerator numerator.Generator,
	txManager tx.Manager,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  numerator,
		EntityName: "product",
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		numerator:      numerator,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)

	return svc
}

// prepareForCreate generates a code when none was provided.
func (s *Service) prepareForCreate(ctx context.Context, p *Product) error {
	if p.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("PR"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		p.Code = code
	}
	return nil
}

// GetByBrand retrieves active products of a brand.
func (s *Service) GetByBrand(ctx context.Context, brand string) ([]*Product, error) {
	return s.repo.GetByBrand(ctx, brand)
}
