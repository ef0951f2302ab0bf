package posting

import (
	"context"
	"fmt"

	"tradebook/internal/core/entity"
	"tradebook/internal/core/id"
	"tradebook/internal/core/tx"
	"tradebook/internal/core/types"
	"tradebook/pkg/logger"
)

// StockRequirement is an aggregated expense demand against one
// stock point + product dimension.
type StockRequirement struct {
	StockPointID id.ID
	ProductID    id.ID
	Quantity     types.Quantity
}

// FundsRequirement is an aggregated expense demand against one account.
type FundsRequirement struct {
	AccountID id.ID
	Amount    types.MinorUnits
}

// ReceivableRegister records customer debt movements.
type ReceivableRegister interface {
	RecordMovements(ctx context.Context, movements []entity.ReceivableMovement) error
	ReverseMovements(ctx context.Context, recorderID id.ID, beforeVersion int) error
}

// FundsRegister records account movements and enforces overdraft policy.
type FundsRegister interface {
	RecordMovements(ctx context.Context, movements []entity.FundsMovement) error
	ReverseMovements(ctx context.Context, recorderID id.ID, beforeVersion int) error

	// CheckAndReserve validates availability with row locks.
	// Accounts with overdraft enabled always pass.
	CheckAndReserve(ctx context.Context, requirements []FundsRequirement) error
}

// StockRegister records stock movements and enforces non-negative balances.
type StockRegister interface {
	RecordMovements(ctx context.Context, movements []entity.StockMovement) error
	ReverseMovements(ctx context.Context, recorderID id.ID, beforeVersion int) error

	// CheckAndReserve validates availability with row locks.
	CheckAndReserve(ctx context.Context, requirements []StockRequirement) error
}

// Engine posts and unposts documents against the accumulation registers.
// All register operations for one document run in a single transaction.
type Engine struct {
	receivable ReceivableRegister
	funds      FundsRegister
	stock      StockRegister
	txManager  tx.Manager
}

// NewEngine creates a posting engine.
func NewEngine(
	receivable ReceivableRegister,
	funds FundsRegister,
	stock StockRegister,
	txManager tx.Manager,
) *Engine {
	return &Engine{
		receivable: receivable,
		funds:      funds,
		stock:      stock,
		txManager:  txManager,
	}
}

// Post records document movements into registers and marks the document
// posted. If the document is already posted, the previous iteration's
// movements are deleted first, so an edit becomes one atomic
// reverse-then-reapply. updateDoc persists the document row itself.
func (e *Engine) Post(ctx context.Context, doc Postable, updateDoc func(ctx context.Context) error) error {
	return e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := doc.CanPost(ctx); err != nil {
			return err
		}

		newVersion := doc.GetPostedVersion() + 1

		// Repost: drop movements of all previous iterations.
		// Balances are decremented as part of the delete, so the
		// availability check below sees the pre-document state.
		if doc.IsPosted() {
			if err := e.reverseAll(ctx, doc.GetID(), newVersion); err != nil {
				return err
			}
		}

		movements, err := doc.GenerateMovements(ctx)
		if err != nil {
			return fmt.Errorf("generate movements: %w", err)
		}

		if err := e.checkAvailability(ctx, movements); err != nil {
			return err
		}

		if err := e.recordAll(ctx, movements); err != nil {
			return err
		}

		doc.MarkPosted()
		if err := updateDoc(ctx); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		logger.Info(ctx, "document posted",
			"document_type", doc.GetDocumentType(),
			"document_id", doc.GetID(),
			"posted_version", doc.GetPostedVersion(),
			"movements", movements.Count(),
		)
		return nil
	})
}

// Unpost removes all register movements of a document and clears the
// posted flag. Unposting a document that is not posted is a no-op.
func (e *Engine) Unpost(ctx context.Context, doc Postable, updateDoc func(ctx context.Context) error) error {
	if !doc.IsPosted() {
		return nil
	}

	return e.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		// Delete every iteration up to and including the current one.
		if err := e.reverseAll(ctx, doc.GetID(), doc.GetPostedVersion()+1); err != nil {
			return err
		}

		doc.MarkUnposted()
		if err := updateDoc(ctx); err != nil {
			return fmt.Errorf("update document: %w", err)
		}

		logger.Info(ctx, "document unposted",
			"document_type", doc.GetDocumentType(),
			"document_id", doc.GetID(),
		)
		return nil
	})
}

func (e *Engine) reverseAll(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	if err := e.receivable.ReverseMovements(ctx, recorderID, beforeVersion); err != nil {
		return fmt.Errorf("reverse receivable movements: %w", err)
	}
	if err := e.funds.ReverseMovements(ctx, recorderID, beforeVersion); err != nil {
		return fmt.Errorf("reverse funds movements: %w", err)
	}
	if err := e.stock.ReverseMovements(ctx, recorderID, beforeVersion); err != nil {
		return fmt.Errorf("reverse stock movements: %w", err)
	}
	return nil
}

func (e *Engine) recordAll(ctx context.Context, movements *MovementSet) error {
	if err := e.receivable.RecordMovements(ctx, movements.Receivable); err != nil {
		return fmt.Errorf("record receivable movements: %w", err)
	}
	if err := e.funds.RecordMovements(ctx, movements.Funds); err != nil {
		return fmt.Errorf("record funds movements: %w", err)
	}
	if err := e.stock.RecordMovements(ctx, movements.Stock); err != nil {
		return fmt.Errorf("record stock movements: %w", err)
	}
	return nil
}

// checkAvailability aggregates expense movements per register dimension
// and asks the registers to validate them under row locks.
func (e *Engine) checkAvailability(ctx context.Context, movements *MovementSet) error {
	if reqs := aggregateStockExpenses(movements.Stock); len(reqs) > 0 {
		if err := e.stock.CheckAndReserve(ctx, reqs); err != nil {
			return err
		}
	}
	if reqs := aggregateFundsExpenses(movements.Funds); len(reqs) > 0 {
		if err := e.funds.CheckAndReserve(ctx, reqs); err != nil {
			return err
		}
	}
	return nil
}

type stockDim struct {
	stockPointID id.ID
	productID    id.ID
}

func aggregateStockExpenses(movements []entity.StockMovement) []StockRequirement {
	totals := make(map[stockDim]types.Quantity)
	order := make([]stockDim, 0)

	for _, m := range movements {
		if m.RecordType != entity.RecordTypeExpense {
			continue
		}
		dim := stockDim{m.StockPointID, m.ProductID}
		if _, ok := totals[dim]; !ok {
			order = append(order, dim)
		}
		totals[dim] += m.Quantity
	}

	reqs := make([]StockRequirement, 0, len(order))
	for _, dim := range order {
		reqs = append(reqs, StockRequirement{
			StockPointID: dim.stockPointID,
			ProductID:    dim.productID,
			Quantity:     totals[dim],
		})
	}
	return reqs
}

func aggregateFundsExpenses(movements []entity.FundsMovement) []FundsRequirement {
	totals := make(map[id.ID]types.MinorUnits)
	order := make([]id.ID, 0)

	for _, m := range movements {
		if m.RecordType != entity.RecordTypeExpense {
			continue
		}
		if _, ok := totals[m.AccountID]; !ok {
			order = append(order, m.AccountID)
		}
		totals[m.AccountID] += m.Amount
	}

	reqs := make([]FundsRequirement, 0, len(order))
	for _, accountID := range order {
		reqs = append(reqs, FundsRequirement{
			AccountID: accountID,
			Amount:    totals[accountID],
		})
	}
	return reqs
}
