package reports

import (
	"context"
)

// Repository defines the interface for report data access
type Repository interface {
	// GetCustomerBalanceReport returns customer balances as of a date
	GetCustomerBalanceReport(ctx context.Context, filter CustomerBalanceReportFilter) (*CustomerBalanceReport, error)

	// GetCustomerStatement returns a customer statement for a period
	GetCustomerStatement(ctx context.Context, filter CustomerStatementFilter) (*CustomerStatement, error)

	// GetAccountBalanceReport returns account balances as of a date
	GetAccountBalanceReport(ctx context.Context, filter AccountBalanceReportFilter) (*AccountBalanceReport, error)

	// GetStockBalanceReport returns stock balances at a specific date
	GetStockBalanceReport(ctx context.Context, filter StockBalanceReportFilter) (*StockBalanceReport, error)

	// GetDocumentJournal returns list of documents with filtering
	GetDocumentJournal(ctx context.Context, filter DocumentJournalFilter) (*DocumentJournal, error)

	// GetDocumentTypeSummary returns summary statistics by document type
	GetDocumentTypeSummary(ctx context.Context, filter DocumentJournalFilter) ([]DocumentTypeSummary, error)

	// VerifyConsistency recomputes balances from movements and compares
	// them to the balance tables
	VerifyConsistency(ctx context.Context) (*ConsistencyReport, error)
}
