package customer

import (
	"context"
	"fmt"
	"time"

	"tradebook/internal/core/tx"
	"tradebook/internal/domain"
	"tradebook/pkg/numerator"
)

// Service provides business logic for Customer catalog.
// Uses composition with domain.CatalogService for common CRUD operations.
type Service struct {
	*domain.CatalogService[*Customer]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new Customer service.
func NewService(
	repo Repository,
	numerator numerator.Generator,
	txManager tx.Manager,
) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Customer]{
		Repo:       repo,
		TxManager:  txManager,
		Numerator:  numerator,
		EntityName: "customer",
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
func (s *Service) prepareForCreate(ctx context.Context, c *Customer) error {
	if c.Code == "" {
		code, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig("CU"), nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		c.Code = code
	}
	return nil
}

// GetByArea retrieves active customers in a collection area.
func (s *Service) GetByArea(ctx context.Context, area string) ([]*Customer, error) {
	return s.repo.GetByArea(ctx, area)
}
