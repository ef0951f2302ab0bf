package purchase

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

// Service provides business operations for purchase records.
type Service struct {
	repo          Repository
	postingEngine *posting.Engine
	numerator     numerator.Generator
	txManager     tx.Manager
}

// NewService creates a new purchase service.
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

func (s *Service) assignNumber(ctx context.Context, doc *Purchase) error {
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

// Create creates a new purchase record.
func (s *Service) Create(ctx context.Context, doc *Purchase) error {
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
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "purchase created", "id", doc.ID, "number", doc.Number, "origin", doc.Origin)
	return nil
}

// GetByID retrieves a purchase with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Purchase, error) {
	doc, err := s.repo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}

	lines, err := s.repo.GetLines(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("get lines: %w", err)
	}
	doc.Lines = lines

	return doc, nil
}

// GetBySource retrieves the auto-created card for a source document.
func (s *Service) GetBySource(ctx context.Context, sourceDocID id.ID) (*Purchase, error) {
	return s.repo.GetBySource(ctx, sourceDocID)
}

// Update updates a purchase record.
func (s *Service) Update(ctx context.Context, doc *Purchase) error {
	if err := doc.CanModify(); err != nil {
		return err
	}

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		return nil
	})
}

// Delete removes a purchase record.
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

// Post marks the record card as posted. Purchases write no movements,
// posting only locks the card against casual edits.
func (s *Service) Post(ctx context.Context, docID id.ID) error {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	return s.postingEngine.Post(ctx, doc, func(ctx context.Context) error {
		return s.repo.Update(ctx, doc)
	})
}

// Unpost unlocks the record card.
func (s *Service) Unpost(ctx context.Context, docID id.ID) error {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	return s.postingEngine.Unpost(ctx, doc, func(ctx context.Context) error {
		return s.repo.Update(ctx, doc)
	})
}

// List retrieves purchases with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Purchase], error) {
	return s.repo.List(ctx, filter)
}

// --- Auto-created cards ---

// RecordSourced creates a posted purchase card linked to a source
// document (direct-supply sale or dump stock move). Runs inside the
// caller's transaction.
func (s *Service) RecordSourced(ctx context.Context, origin Origin, sourceDocID id.ID, sourceDocType string, date time.Time, lines []Line) error {
	doc := NewPurchase(origin)
	doc.SetSource(sourceDocID, sourceDocType, date)

	// Sourced cards record quantities only. The goods cost the business
	// nothing, whatever the source document priced them at.
	doc.Lines = make([]Line, 0, len(lines))
	for _, l := range lines {
		l.UnitPrice = 0
		l.Amount = 0
		doc.Lines = append(doc.Lines, l)
	}
	doc.recalculateTotals()

	if err := doc.Validate(ctx); err != nil {
		return err
	}

	if err := s.assignNumber(ctx, doc); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, doc); err != nil {
			return fmt.Errorf("create sourced purchase: %w", err)
		}
		if err := s.repo.SaveLines(ctx, doc.ID, doc.Lines); err != nil {
			return fmt.Errorf("save lines: %w", err)
		}
		// Lock the card: it mirrors its source document
		doc.MarkPosted()
		if err := s.repo.Update(ctx, doc); err != nil {
			return fmt.Errorf("mark posted: %w", err)
		}
		return nil
	})
}

// DeleteBySource removes the auto-created card for a source document.
// Used when the source sale or stock move is edited or deleted.
func (s *Service) DeleteBySource(ctx context.Context, sourceDocID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.DeleteBySource(ctx, sourceDocID)
	})
}
