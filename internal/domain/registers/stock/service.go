// Package stock provides the stock accumulation register service.
package stock

import (
	"context"
	"fmt"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
	"tradebook/internal/domain/posting"
	"tradebook/pkg/logger"
)

// Service provides business operations for the stock register.
// Transactions are managed by the caller (posting engine).
type Service struct {
	repo Repository
}

// NewService creates a new stock register service.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// RecordMovements records stock movements from a document posting.
// This is called during document posting within a transaction.
func (s *Service) RecordMovements(ctx context.Context, movements []entity.StockMovement) error {
	if len(movements) == 0 {
		return nil
	}

	for i, m := range movements {
		if !m.Quantity.IsPositive() {
			return apperror.NewValidation(fmt.Sprintf("movement %d: quantity must be positive", i))
		}
		if id.IsNil(m.RecorderID) {
			return apperror.NewValidation(fmt.Sprintf("movement %d: recorder_id is required", i))
		}
	}

	if err := s.repo.CreateMovements(ctx, movements); err != nil {
		return fmt.Errorf("create movements: %w", err)
	}

	logger.Info(ctx, "recorded stock movements",
		"count", len(movements),
		"recorder_id", movements[0].RecorderID,
	)

	return nil
}

// ReverseMovements removes movements for a document (used during unposting).
func (s *Service) ReverseMovements(ctx context.Context, recorderID id.ID, beforeVersion int) error {
	if err := s.repo.DeleteMovementsByRecorder(ctx, recorderID, beforeVersion); err != nil {
		return fmt.Errorf("delete movements: %w", err)
	}

	logger.Info(ctx, "reversed stock movements",
		"recorder_id", recorderID,
		"before_version", beforeVersion,
	)

	return nil
}

// CheckAndReserve validates stock availability with pessimistic locking.
// Should be called within a transaction before creating expense movements.
func (s *Service) CheckAndReserve(ctx context.Context, requirements []posting.StockRequirement) error {
	for _, req := range requirements {
		balance, err := s.repo.GetBalanceForUpdate(ctx, req.StockPointID, req.ProductID)
		if err != nil {
			return fmt.Errorf("get balance for %s: %w", req.ProductID, err)
		}

		if balance.Quantity < req.Quantity {
			return apperror.NewInsufficientStock(
				req.StockPointID.String(),
				req.Quantity.Float64(),
				balance.Quantity.Float64(),
			)
		}
	}

	return nil
}

// GetBalance returns current balance for stock point + product.
func (s *Service) GetBalance(ctx context.Context, stockPointID, productID id.ID) (types.Quantity, error) {
	balance, err := s.repo.GetBalance(ctx, stockPointID, productID)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance.Quantity, nil
}

// GetProductAvailability returns available quantity across stock points.
func (s *Service) GetProductAvailability(ctx context.Context, productID id.ID) (types.Quantity, error) {
	balances, err := s.repo.GetBalancesByProduct(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("get balances: %w", err)
	}

	var total types.Quantity
	for _, b := range balances {
		total += b.Quantity
	}

	return total, nil
}

// GetStockPointStock returns all products with stock at a stock point.
func (s *Service) GetStockPointStock(ctx context.Context, stockPointID id.ID) ([]entity.StockBalance, error) {
	return s.repo.GetBalancesByStockPoint(ctx, stockPointID, BalanceFilter{
		ExcludeZero: true,
	})
}

// GetMovementHistory returns movement history for a product.
func (s *Service) GetMovementHistory(ctx context.Context, productID id.ID, filter MovementFilter) ([]entity.StockMovement, error) {
	return s.repo.GetMovementHistory(ctx, productID, filter)
}

// GetTurnover calculates receipt and expense totals for a period.
func (s *Service) GetTurnover(ctx context.Context, filter TurnoverFilter) (Turnover, error) {
	return s.repo.GetTurnover(ctx, filter)
}
