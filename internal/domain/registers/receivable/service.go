// Package receivable provides the customer debt accumulation register.
package receivable

import (
	"context"
	"fmt"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
	"tradebook/internal/core/id"
	"tradebook/internal/core/types"
	"tradebook/pkg/logger"
)

// Service provides business operations for the receivable register.
// Transactions are managed by the caller (posting engine).
type Service struct {
	repo Repository
}

// NewService creates a new receivable register service.
func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// RecordMovements records receivable movements from a document posting.
// This is called during document posting within a transaction.
func (s *Service) RecordMovements(ctx context.Context, movements []entity.ReceivableMovement) error {
	if len(movements) == 0 {
		return nil
	}

	for i, m := range movements {
		if !m.Amount.IsPositive() {
			return apperror.NewValidation(fmt.Sprintf("movement %d: amount must be positive", i))
		}
		if id.IsNil(m.RecorderID) {
			return apperror.NewValidation(fmt.Sprintf("movement %d: recorder_id is required", i))
		}
	}

	if err := s.repo.CreateMovements(ctx, movements); err != nil {
		return fmt.Errorf("create movements: %w", err)
	}

	logger.Info(ctx, "recorded receivable movements",
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

	logger.Info(ctx, "reversed receivable movements",
		"recorder_id", recorderID,
		"before_version", beforeVersion,
	)

	return nil
}

// GetBalance returns the register balance for a customer.
// This excludes the customer's opening balance; callers that need the
// full debt add Customer.OpeningBalance.
func (s *Service) GetBalance(ctx context.Context, customerID id.ID) (types.MinorUnits, error) {
	balance, err := s.repo.GetBalance(ctx, customerID)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance.Amount, nil
}

// GetBalanceForUpdate returns the register balance under a row lock.
// Used by the discount clamp so two concurrent discounts cannot both
// read the pre-discount balance.
func (s *Service) GetBalanceForUpdate(ctx context.Context, customerID id.ID) (types.MinorUnits, error) {
	balance, err := s.repo.GetBalanceForUpdate(ctx, customerID)
	if err != nil {
		return 0, fmt.Errorf("get balance for update: %w", err)
	}
	return balance.Amount, nil
}

// GetBalances returns register balances for all customers.
func (s *Service) GetBalances(ctx context.Context, filter BalanceFilter) ([]entity.ReceivableBalance, error) {
	return s.repo.GetBalances(ctx, filter)
}

// GetMovementHistory returns movement history for a customer.
func (s *Service) GetMovementHistory(ctx context.Context, customerID id.ID, filter MovementFilter) ([]entity.ReceivableMovement, error) {
	return s.repo.GetMovementHistory(ctx, customerID, filter)
}

// GetTurnover calculates receipt and expense totals for a period.
func (s *Service) GetTurnover(ctx context.Context, filter TurnoverFilter) (Turnover, error) {
	return s.repo.GetTurnover(ctx, filter)
}
