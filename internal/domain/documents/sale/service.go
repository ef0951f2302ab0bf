package sale

import (
	"context"
	"fmt"
	"time"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/internal/core/tx"
	"tradebook/internal/domain"
	"tradebook/internal/domain/catalogs/stockpoint"
	"tradebook/internal/domain/documents/purchase"
	"tradebook/internal/domain/posting"
	"tradebook/pkg/logger"
	"tradebook/pkg/numerator"
)

// StockPointResolver resolves stock point properties at save time.
// Implemented by the stockpoint catalog service.
type StockPointResolver interface {
	GetByID(ctx context.Context, id id.ID) (*stockpoint.StockPoint, error)
}

// PurchaseRecorder maintains the auto-created pass-through purchase
// cards for direct-supply sales. Implemented by the purchase service.
type PurchaseRecorder interface {
	RecordSourced(ctx context.Context, origin purchase.Origin, sourceDocID id.ID, sourceDocType string, date time.Time, lines []purchase.Line) error
	DeleteBySource(ctx context.Context, sourceDocID id.ID) error
}

// Service provides business operations for sale documents.
type Service struct {
	repo          Repository
	postingEngine *posting.Engine
	numerator     numerator.Generator
	txManager     tx.Manager
	stockPoints   StockPointResolver
	purchases     PurchaseRecorder
}

// NewService creates a new sale service.
func NewService(
	repo Repository,
	postingEngine *posting.Engine,
	numerator numerator.Generator,
	txManager tx.Manager,
	stockPoints StockPointResolver,
	purchases PurchaseRecorder,
) *Service {
	return &Service{
		repo:          repo,
		postingEngine: postingEngine,
		numerator:     numerator,
		txManager:     txManager,
		stockPoints:   stockPoints,
		purchases:     purchases,
	}
}

// prepare resolves the direct-supply flag from the stock point type and
// assigns a document number when missing.
func (s *Service) prepare(ctx context.Context, doc *Sale) error {
	sp, err := s.stockPoints.GetByID(ctx, doc.StockPointID)
	if err != nil {
		return err
	}
	if !sp.IsActive || sp.IsFolder {
		return apperror.NewValidation("stock point cannot be used in documents").
			WithDetail("stock_point_id", sp.ID.String())
	}
	doc.DirectSupply = sp.Type == stockpoint.TypeDirect

	if doc.Number == "" {
		cfg := numerator.DefaultConfig(NumeratorPrefix)
		number, err := s.numerator.GetNextNumber(ctx, cfg, &numerator.Options{Strategy: NumeratorStrategy}, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		doc.Number = number
	}

	return nil
}

// Create creates a new sale document without posting it.
func (s *Service) Create(ctx context.Context, doc *Sale) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}
	if err := s.prepare(ctx, doc); err != nil {
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

	logger.Info(ctx, "sale created", "id", doc.ID, "number", doc.Number)
	return nil
}

// GetByID retrieves a sale with lines.
func (s *Service) GetByID(ctx context.Context, docID id.ID) (*Sale, error) {
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

// Update updates an unposted sale. Posted sales are edited through
// Repost, which reverses and reapplies movements atomically.
func (s *Service) Update(ctx context.Context, doc *Sale) error {
	if err := doc.CanModify(); err != nil {
		return err
	}
	if err := doc.Validate(ctx); err != nil {
		return err
	}
	if err := s.prepare(ctx, doc); err != nil {
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

// Delete removes a sale. A posted sale is unposted first, so customer
// debt and stock are restored in the same transaction that deletes the
// document and its pass-through card.
func (s *Service) Delete(ctx context.Context, docID id.ID) error {
	doc, err := s.GetByID(ctx, docID)
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
		if err := s.purchases.DeleteBySource(ctx, docID); err != nil {
			return fmt.Errorf("delete pass-through card: %w", err)
		}
		return s.repo.Delete(ctx, docID)
	})
}

// Post records the sale's movements: customer debt up, stock down
// (unless direct supply). Direct-supply sales get their pass-through
// purchase card in the same transaction.
func (s *Service) Post(ctx context.Context, docID id.ID) error {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	return s.postAndRecord(ctx, doc, func(ctx context.Context) error {
		return s.repo.Update(ctx, doc)
	})
}

// PostAndSave validates, saves, and posts a sale in one transaction.
// Works for new documents and for edits of already-posted ones - the
// posting engine reverses the previous movements before reapplying.
func (s *Service) PostAndSave(ctx context.Context, doc *Sale) error {
	if err := doc.Validate(ctx); err != nil {
		return err
	}
	if err := s.prepare(ctx, doc); err != nil {
		return err
	}

	// MarkPosted bumps the version inside the engine, so capture
	// newness before posting starts.
	isNew := doc.Version == 1 && !doc.Posted

	persist := func(ctx context.Context) error {
		if isNew {
			if err := s.repo.Create(ctx, doc); err != nil {
				return err
			}
		} else {
			if err := s.repo.Update(ctx, doc); err != nil {
				return err
			}
		}
		return s.repo.SaveLines(ctx, doc.ID, doc.Lines)
	}

	return s.postAndRecord(ctx, doc, persist)
}

// Unpost reverses the sale's movements without deleting the document.
func (s *Service) Unpost(ctx context.Context, docID id.ID) error {
	doc, err := s.GetByID(ctx, docID)
	if err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.postingEngine.Unpost(ctx, doc, func(ctx context.Context) error {
			return s.repo.Update(ctx, doc)
		}); err != nil {
			return err
		}
		// The pass-through card mirrors the posted state
		if doc.DirectSupply {
			if err := s.purchases.DeleteBySource(ctx, docID); err != nil {
				return fmt.Errorf("delete pass-through card: %w", err)
			}
		}
		return nil
	})
}

// postAndRecord posts the document and refreshes the pass-through card
// in one transaction.
func (s *Service) postAndRecord(ctx context.Context, doc *Sale, updateDoc func(ctx context.Context) error) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		wasPosted := doc.Posted

		if err := s.postingEngine.Post(ctx, doc, updateDoc); err != nil {
			return err
		}

		// Replace the pass-through card on repost, create on first post
		if wasPosted {
			if err := s.purchases.DeleteBySource(ctx, doc.ID); err != nil {
				return fmt.Errorf("delete pass-through card: %w", err)
			}
		}
		if doc.DirectSupply {
			lines := make([]purchase.Line, 0, len(doc.Lines))
			for _, l := range doc.Lines {
				lines = append(lines, purchase.Line{
					LineID:    id.New(),
					LineNo:    l.LineNo,
					ProductID: l.ProductID,
					Quantity:  l.Quantity,
				})
			}
			if err := s.purchases.RecordSourced(ctx, purchase.OriginPassThrough, doc.ID, doc.GetDocumentType(), doc.Date, lines); err != nil {
				return fmt.Errorf("record pass-through card: %w", err)
			}
		}

		return nil
	})
}

// List retrieves sales with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Sale], error) {
	return s.repo.List(ctx, filter)
}
