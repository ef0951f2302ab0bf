// Package funds provides the money accumulation register.
package funds

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

// AccountPolicy resolves overdraft rules for accounts.
// Implemented by the account catalog service.
type AccountPolicy interface {
	// OverdraftPolicy returns whether the account may go negative and
	// its opening balance.
	OverdraftPolicy(ctx context.Context, accountID id.ID) (bool, types.MinorUnits, error)
}

// Service provides business operations for the funds register.
// Transactions are managed by the caller (posting engine).
type Service struct {
	repo   Repository
	policy AccountPolicy
}

// NewService creates a new funds register service.
func NewService(repo Repository, policy AccountPolicy) *Service {
	return &Service{
		repo:   repo,
		policy: policy,
	}
}

// RecordMovements records funds movements from a document posting.
// This is called during document posting within a transaction.
func (s *Service) RecordMovements(ctx context.Context, movements []entity.FundsMovement) error {
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

	logger.Info(ctx, "recorded funds movements",
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

	logger.Info(ctx, "reversed funds movements",
		"recorder_id", recorderID,
		"before_version", beforeVersion,
	)

	return nil
}

// CheckAndReserve validates funds availability with row locks.
// Accounts with overdraft enabled always pass; for the rest the
// available balance (opening + register) must cover the requirement.
func (s *Service) CheckAndReserve(ctx context.Context, requirements []posting.FundsRequirement) error {
	for _, req := range requirements {
		allowOverdraft, opening, err := s.policy.OverdraftPolicy(ctx, req.AccountID)
		if err != nil {
			return fmt.Errorf("account policy for %s: %w", req.AccountID, err)
		}
		if allowOverdraft {
			continue
		}

		balance, err := s.repo.GetBalanceForUpdate(ctx, req.AccountID)
		if err != nil {
			return fmt.Errorf("get balance for %s: %w", req.AccountID, err)
		}

		available := opening + balance.Amount
		if available < req.Amount {
			return apperror.NewInsufficientFunds(
				req.AccountID.String(),
				int64(req.Amount),
				int64(available),
			)
		}
	}

	return nil
}

// GetBalance returns the register balance for an account.
// This excludes the account's opening balance.
func (s *Service) GetBalance(ctx context.Context, accountID id.ID) (types.MinorUnits, error) {
	balance, err := s.repo.GetBalance(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance.Amount, nil
}

// GetBalances returns register balances for all accounts.
func (s *Service) GetBalances(ctx context.Context, filter BalanceFilter) ([]entity.FundsBalance, error) {
	return s.repo.GetBalances(ctx, filter)
}

// GetMovementHistory returns movement history for an account.
func (s *Service) GetMovementHistory(ctx context.Context, accountID id.ID, filter MovementFilter) ([]entity.FundsMovement, error) {
	return s.repo.GetMovementHistory(ctx, accountID, filter)
}

// GetTurnover calculates receipt and expense totals for a period.
func (s *Service) GetTurnover(ctx context.Context, filter TurnoverFilter) (Turnover, error) {
	return s.repo.GetTurnover(ctx, filter)
}
