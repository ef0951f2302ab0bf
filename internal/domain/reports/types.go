// Package reports provides report generation services.
package reports

import (
	"time"

	"tradebook/internal/core/id"
)

// --- Customer Balance Report ---

// CustomerBalanceReportFilter defines filter for the balance list.
type CustomerBalanceReportFilter struct {
	// AsOfDate - report date (defaults to now)
	AsOfDate *time.Time

	// Filters
	CustomerIDs []id.ID
	Area        *string

	// Exclude settled customers
	ExcludeZero bool

	// Pagination
	Limit  int
	Offset int
}

// CustomerBalanceReportItem represents a single row in the balance list.
type CustomerBalanceReportItem struct {
	CustomerID   id.ID  `json:"customerId"`
	CustomerName string `json:"customerName"`
	Area         string `json:"area,omitempty"`
	Phone        string `json:"phone,omitempty"`

	// All amounts in minor units
	OpeningBalance  int64 `json:"openingBalance"`
	RegisterBalance int64 `json:"registerBalance"`
	Balance         int64 `json:"balance"`
}

// CustomerBalanceReport represents the full balance list.
type CustomerBalanceReport struct {
	AsOfDate   time.Time                   `json:"asOfDate"`
	Items      []CustomerBalanceReportItem `json:"items"`
	TotalItems int                         `json:"totalItems"`

	// Summary
	TotalBalance int64 `json:"totalBalance"`
}

// --- Customer Statement ---

// CustomerStatementFilter defines filter for a customer statement.
type CustomerStatementFilter struct {
	CustomerID id.ID
	FromDate   time.Time
	ToDate     time.Time
}

// StatementEntry is one document line in a customer statement.
type StatementEntry struct {
	Date         time.Time `json:"date"`
	DocumentType string    `json:"documentType"`
	DocumentID   id.ID     `json:"documentId"`
	Number       string    `json:"number"`

	// Debit increases the customer's debt, credit decreases it
	Debit  int64 `json:"debit"`
	Credit int64 `json:"credit"`

	// RunningBalance after this entry
	RunningBalance int64 `json:"runningBalance"`
}

// CustomerStatement represents a customer's account statement.
type CustomerStatement struct {
	CustomerID   id.ID     `json:"customerId"`
	CustomerName string    `json:"customerName"`
	FromDate     time.Time `json:"fromDate"`
	ToDate       time.Time `json:"toDate"`

	OpeningBalance int64            `json:"openingBalance"`
	Entries        []StatementEntry `json:"entries"`
	ClosingBalance int64            `json:"closingBalance"`
}

// --- Account Balance Report ---

// AccountBalanceReportFilter defines filter for the account position list.
type AccountBalanceReportFilter struct {
	// AsOfDate - report date (defaults to now)
	AsOfDate *time.Time

	AccountIDs  []id.ID
	AccountType *string

	ExcludeZero bool
}

// AccountBalanceReportItem represents one account's position.
type AccountBalanceReportItem struct {
	AccountID   id.ID  `json:"accountId"`
	AccountName string `json:"accountName"`
	AccountType string `json:"accountType"`

	OpeningBalance  int64 `json:"openingBalance"`
	RegisterBalance int64 `json:"registerBalance"`
	Balance         int64 `json:"balance"`
}

// AccountBalanceReport represents the full account list.
type AccountBalanceReport struct {
	AsOfDate   time.Time                  `json:"asOfDate"`
	Items      []AccountBalanceReportItem `json:"items"`
	TotalItems int                        `json:"totalItems"`

	TotalBalance int64 `json:"totalBalance"`
}

// --- Stock Balance Report ---

// StockBalanceReportFilter defines filter for stock balance report.
type StockBalanceReportFilter struct {
	// AsOfDate - report date (defaults to now)
	AsOfDate *time.Time

	// Filters
	StockPointIDs []id.ID
	ProductIDs    []id.ID

	// Exclude zero balances
	ExcludeZero bool

	// LowStockOnly keeps rows below the stock point threshold
	LowStockOnly bool

	// Pagination
	Limit  int
	Offset int
}

// StockBalanceReportItem represents a single row in stock balance report.
type StockBalanceReportItem struct {
	StockPointID   id.ID   `json:"stockPointId"`
	StockPointName string  `json:"stockPointName"`
	ProductID      id.ID   `json:"productId"`
	ProductName    string  `json:"productName"`
	Unit           string  `json:"unit"`
	Quantity       float64 `json:"quantity"`

	// LowStock is set when quantity is below the point's threshold
	LowStock bool `json:"lowStock"`
}

// StockBalanceReport represents the full stock balance report.
type StockBalanceReport struct {
	AsOfDate   time.Time                `json:"asOfDate"`
	Items      []StockBalanceReportItem `json:"items"`
	TotalItems int                      `json:"totalItems"`

	TotalQuantity float64 `json:"totalQuantity"`
}

// --- Document Journal ---

// DocumentJournalFilter defines filter for document journal.
type DocumentJournalFilter struct {
	// Period
	FromDate *time.Time
	ToDate   *time.Time

	// Document types filter (Sale, Payment, Purchase, StockMove, FundsMove)
	DocumentTypes []string

	// Status filter
	Posted *bool

	// Search by number
	NumberContains string

	// Filters by references
	CustomerIDs   []id.ID
	AccountIDs    []id.ID
	StockPointIDs []id.ID

	// Sorting
	SortBy    string // "date", "number", "type", "amount"
	SortOrder string // "asc", "desc"

	// Pagination
	Limit  int
	Offset int
}

// DocumentJournalItem represents a document in the journal.
type DocumentJournalItem struct {
	ID           id.ID     `json:"id"`
	DocumentType string    `json:"documentType"`
	Number       string    `json:"number"`
	Date         time.Time `json:"date"`
	Posted       bool      `json:"posted"`

	CustomerID   *id.ID `json:"customerId,omitempty"`
	CustomerName string `json:"customerName,omitempty"`

	TotalQuantity float64 `json:"totalQuantity"`
	TotalAmount   int64   `json:"totalAmount"`

	Description  string    `json:"description,omitempty"`
	DeletionMark bool      `json:"deletionMark"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// DocumentJournal represents the document journal result.
type DocumentJournal struct {
	Items      []DocumentJournalItem `json:"items"`
	TotalCount int                   `json:"totalCount"`
	Limit      int                   `json:"limit"`
	Offset     int                   `json:"offset"`

	// Summary by document type
	Summary []DocumentTypeSummary `json:"summary,omitempty"`
}

// DocumentTypeSummary provides count and totals by document type.
type DocumentTypeSummary struct {
	DocumentType  string  `json:"documentType"`
	Count         int     `json:"count"`
	PostedCount   int     `json:"postedCount"`
	TotalQuantity float64 `json:"totalQuantity"`
	TotalAmount   int64   `json:"totalAmount"`
}

// --- Consistency Check ---

// ConsistencyIssue is one balance row that disagrees with its movements.
type ConsistencyIssue struct {
	Register  string `json:"register"` // "receivable", "funds", "stock"
	Dimension string `json:"dimension"`

	BalanceValue  int64 `json:"balanceValue"`
	MovementTotal int64 `json:"movementTotal"`
}

// ConsistencyReport is the result of a full register verification.
type ConsistencyReport struct {
	CheckedAt time.Time          `json:"checkedAt"`
	Issues    []ConsistencyIssue `json:"issues"`
}

// Consistent reports whether every balance row matched.
func (r *ConsistencyReport) Consistent() bool {
	return len(r.Issues) == 0
}
