package fundsmove

import (
	"context"
	"fmt"
	"time"

	"tradebook/internal/core/id"
	"tradebook/internal/core/tx"
	"tradebook/internal/domain"
	"tradebook/internal/domain/posting"
	"tradebook/pkg/logger"
	"tradebook/pkg/numerator"
)

// Service provides business operations for funds move documents.
type Service struct {
	repo          Repository
	postingEngine *posting.Engine
	numerator     numerator.Generator
	txManager     tx.Manager
}

// NewService creates a new funds move service.
func NewService(
	repo Repository,
	postingEngine *posting.Engine,
	numerator numerator.Generator,
	txManager tx.Manager,
) *Service {
	return &Service{
		repo:          repo,
		postingEngine: postingEngine,
		numerator:     numerator,
		txManager:     txManager,
	}
}

func (s *Service) assignNumber(ctx context.Context, doc *FundsMove) error {
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

// Create creates a new funds move without posting it.
func (s *Service) Create(ctx context.Context, doc *FundsMove) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}
	if err := s.assignNumber(ctx, doc); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, doc)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "funds move created", "id", doc.ID, "number", doc.Number, "kind", doc.Kind)
	return nil
}

// GetByID retrieves a funds move.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*FundsMove, error) {
	return s.repo.GetByID(ctx, docID)
}

// Update updates an unposted funds move.
func (s *Service) Update(ctx context.Context, doc *FundsMove) error {
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

// Delete removes a funds move. A posted move is unposted first, so both
// account balances are restored in the same transaction.
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

// Post records the move's movements. Both legs of a transfer land in
// one transaction; the overdraft policy of the source account is
// enforced by the funds register.
func (s *Service) Post(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	return s.postingEngine.Post(ctx, doc, func(ctx context.Context) error {
		return s.repo.Update(ctx, doc)
	})
}

// PostAndSave validates, saves, and posts a funds move in one transaction.
func (s *Service) PostAndSave(ctx context.Context, doc *FundsMove) error {
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

	return s.postingEngine.Post(ctx, doc, persist)
}

// Unpost reverses the move's movements without deleting the document.
func (s *Service) Unpost(ctx context.Context, docID id.ID) error {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	return s.postingEngine.Unpost(ctx, doc, func(ctx context.Context) error {
		return s.repo.Update(ctx, doc)
	})
}

// List retrieves funds moves with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*FundsMove], error) {
	return s.repo.List(ctx, filter)
}
