package reports

import (
	"context"
	"fmt"
	"time"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/id"
	"tradebook/pkg/logger"
)

// Service provides report generation business logic
type Service struct {
	repo Repository
}

// NewService creates a new report service
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetCustomerBalanceReport generates customer balances as of a date
func (s *Service) GetCustomerBalanceReport(ctx context.Context, filter CustomerBalanceReportFilter) (*CustomerBalanceReport, error) {
	// Set default date if not provided
	if filter.AsOfDate == nil {
		now := time.Now()
		filter.AsOfDate = &now
	}

	// Set default pagination
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	report, err := s.repo.GetCustomerBalanceReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to generate customer balance report: %w", err)
	}

	return report, nil
}

// GetCustomerStatement generates a statement for one customer over a period
func (s *Service) GetCustomerStatement(ctx context.Context, filter CustomerStatementFilter) (*CustomerStatement, error) {
	if id.IsNil(filter.CustomerID) {
		return nil, apperror.NewValidation("customer is required")
	}

	// Default to the last 30 days
	if filter.ToDate.IsZero() {
		filter.ToDate = time.Now()
	}
	if filter.FromDate.IsZero() {
		filter.FromDate = filter.ToDate.AddDate(0, 0, -30)
	}
	if filter.FromDate.After(filter.ToDate) {
		return nil, apperror.NewValidation("fromDate must be before toDate")
	}

	statement, err := s.repo.GetCustomerStatement(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to generate customer statement: %w", err)
	}

	return statement, nil
}

// GetAccountBalanceReport generates account positions as of a date
func (s *Service) GetAccountBalanceReport(ctx context.Context, filter AccountBalanceReportFilter) (*AccountBalanceReport, error) {
	if filter.AsOfDate == nil {
		now := time.Now()
		filter.AsOfDate = &now
	}

	report, err := s.repo.GetAccountBalanceReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to generate account balance report: %w", err)
	}

	return report, nil
}

// GetStockBalanceReport generates stock balance report as of a date
func (s *Service) GetStockBalanceReport(ctx context.Context, filter StockBalanceReportFilter) (*StockBalanceReport, error) {
	// Set default date if not provided
	if filter.AsOfDate == nil {
		now := time.Now()
		filter.AsOfDate = &now
	}

	// Set default pagination
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	report, err := s.repo.GetStockBalanceReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to generate stock balance report: %w", err)
	}

	return report, nil
}

// GetDocumentJournal generates document journal with filtering
func (s *Service) GetDocumentJournal(ctx context.Context, filter DocumentJournalFilter) (*DocumentJournal, error) {
	// Validate date range
	if filter.FromDate != nil && filter.ToDate != nil {
		if filter.FromDate.After(*filter.ToDate) {
			return nil, apperror.NewValidation("fromDate must be before toDate")
		}
	}

	// Set default sorting
	if filter.SortBy == "" {
		filter.SortBy = "date"
	}
	if filter.SortOrder == "" {
		filter.SortOrder = "desc"
	}

	// Validate sort field
	switch filter.SortBy {
	case "date", "number", "type", "amount":
	default:
		return nil, apperror.NewValidation("invalid sort field: " + filter.SortBy)
	}

	// Set default pagination
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	journal, err := s.repo.GetDocumentJournal(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to generate document journal: %w", err)
	}

	// Get summary statistics on the first page only
	if filter.Offset == 0 {
		summary, err := s.repo.GetDocumentTypeSummary(ctx, filter)
		if err != nil {
			logger.Warn(ctx, "failed to get document type summary", "error", err)
		} else {
			journal.Summary = summary
		}
	}

	return journal, nil
}

// VerifyConsistency recomputes all register balances from movements and
// reports any rows where the stored balance disagrees.
func (s *Service) VerifyConsistency(ctx context.Context) (*ConsistencyReport, error) {
	report, err := s.repo.VerifyConsistency(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to verify register consistency: %w", err)
	}

	if !report.Consistent() {
		logger.Error(ctx, "register consistency violation detected",
			"issues", len(report.Issues))
	}

	return report, nil
}

// RequireConsistency runs a verification and returns an error unless every
// balance row matches its movement totals.
func (s *Service) RequireConsistency(ctx context.Context) error {
	report, err := s.VerifyConsistency(ctx)
	if err != nil {
		return err
	}
	if !report.Consistent() {
		issue := report.Issues[0]
		return apperror.NewConsistencyViolation(fmt.Sprintf(
			"%s balance for %s is %d but movements total %d",
			issue.Register, issue.Dimension, issue.BalanceValue, issue.MovementTotal))
	}
	return nil
}
