// Package report_repo provides PostgreSQL implementations for report repositories.
package report_repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"tradebook/internal/core/apperror"
	"tradebook/internal/domain/reports"
	"tradebook/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository.
type ReportRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetCustomerBalanceReport returns every customer's outstanding balance.
// Balances are computed from movements, not the balance table, so the
// report works for any as-of date.
func (r *ReportRepo) GetCustomerBalanceReport(ctx context.Context, filter reports.CustomerBalanceReportFilter) (*reports.CustomerBalanceReport, error) {
	asOfDate := time.Now()
	if filter.AsOfDate != nil {
		asOfDate = *filter.AsOfDate
	}

	query := `
		SELECT
			c.id as customer_id,
			c.name as customer_name,
			COALESCE(c.area, '') as area,
			COALESCE(c.phone, '') as phone,
			c.opening_balance,
			COALESCE(m.register_balance, 0) as register_balance,
			c.opening_balance + COALESCE(m.register_balance, 0) as balance
		FROM cat_customers c
		LEFT JOIN (
			SELECT customer_id,
				   SUM(CASE WHEN record_type = 'receipt' THEN amount ELSE -amount END) as register_balance
			FROM reg_receivable_movements
			WHERE period <= $1
			GROUP BY customer_id
		) m ON m.customer_id = c.id
		WHERE c.deletion_mark = false
	`
	args := []any{asOfDate}
	argIndex := 2

	if len(filter.CustomerIDs) > 0 {
		placeholders := make([]string, len(filter.CustomerIDs))
		for i, cID := range filter.CustomerIDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, cID)
			argIndex++
		}
		query += fmt.Sprintf(" AND c.id IN (%s)", strings.Join(placeholders, ","))
	}

	if filter.Area != nil {
		query += fmt.Sprintf(" AND c.area = $%d", argIndex)
		args = append(args, *filter.Area)
		argIndex++
	}

	if filter.ExcludeZero {
		query += " AND c.opening_balance + COALESCE(m.register_balance, 0) != 0"
	}

	query += " ORDER BY c.name"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var items []reports.CustomerBalanceReportItem
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query, args...); err != nil {
		return nil, fmt.Errorf("customer balance report: %w", err)
	}

	var totalBalance int64
	for _, item := range items {
		totalBalance += item.Balance
	}

	return &reports.CustomerBalanceReport{
		AsOfDate:     asOfDate,
		Items:        items,
		TotalItems:   len(items),
		TotalBalance: totalBalance,
	}, nil
}

// GetCustomerStatement builds a chronological debit/credit statement
// with a running balance for one customer.
func (r *ReportRepo) GetCustomerStatement(ctx context.Context, filter reports.CustomerStatementFilter) (*reports.CustomerStatement, error) {
	querier := r.txManager.GetQuerier(ctx)

	var customerName string
	var openingBalance int64
	err := querier.QueryRow(ctx, `
		SELECT name, opening_balance FROM cat_customers WHERE id = $1
	`, filter.CustomerID).Scan(&customerName, &openingBalance)
	if err != nil {
		return nil, apperror.NewNotFound("customer", filter.CustomerID.String())
	}

	// Carry forward everything posted before the statement period
	var carriedScaled int64
	err = querier.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN record_type = 'receipt' THEN amount ELSE -amount END), 0)
		FROM reg_receivable_movements
		WHERE customer_id = $1 AND period < $2
	`, filter.CustomerID, filter.FromDate).Scan(&carriedScaled)
	if err != nil {
		return nil, fmt.Errorf("statement opening balance: %w", err)
	}
	openingBalance += carriedScaled

	entryQuery := `
		SELECT date, document_type, document_id, number, debit, credit
		FROM (
			SELECT date, 'Sale' as document_type, id as document_id, number,
				   total_amount as debit, 0::bigint as credit
			FROM doc_sales
			WHERE customer_id = $1 AND posted = true AND deletion_mark = false

			UNION ALL

			SELECT date,
				   CASE WHEN kind = 'discount' THEN 'Discount' ELSE 'Payment' END as document_type,
				   id as document_id, number,
				   0::bigint as debit, amount as credit
			FROM doc_payments
			WHERE customer_id = $1 AND posted = true AND deletion_mark = false
		) entries
		WHERE date >= $2 AND date < $3
		ORDER BY date, number
	`

	var rows []reports.StatementEntry
	if err := pgxscan.Select(ctx, querier, &rows, entryQuery, filter.CustomerID, filter.FromDate, filter.ToDate); err != nil {
		return nil, fmt.Errorf("statement entries: %w", err)
	}

	running := openingBalance
	for i := range rows {
		running += rows[i].Debit - rows[i].Credit
		rows[i].RunningBalance = running
	}

	return &reports.CustomerStatement{
		CustomerID:     filter.CustomerID,
		CustomerName:   customerName,
		FromDate:       filter.FromDate,
		ToDate:         filter.ToDate,
		OpeningBalance: openingBalance,
		Entries:        rows,
		ClosingBalance: running,
	}, nil
}

// GetAccountBalanceReport returns the position of every money account.
func (r *ReportRepo) GetAccountBalanceReport(ctx context.Context, filter reports.AccountBalanceReportFilter) (*reports.AccountBalanceReport, error) {
	asOfDate := time.Now()
	if filter.AsOfDate != nil {
		asOfDate = *filter.AsOfDate
	}

	query := `
		SELECT
			a.id as account_id,
			a.name as account_name,
			a.type as account_type,
			a.opening_balance,
			COALESCE(m.register_balance, 0) as register_balance,
			a.opening_balance + COALESCE(m.register_balance, 0) as balance
		FROM cat_accounts a
		LEFT JOIN (
			SELECT account_id,
				   SUM(CASE WHEN record_type = 'receipt' THEN amount ELSE -amount END) as register_balance
			FROM reg_funds_movements
			WHERE period <= $1
			GROUP BY account_id
		) m ON m.account_id = a.id
		WHERE a.deletion_mark = false
	`
	args := []any{asOfDate}
	argIndex := 2

	if len(filter.AccountIDs) > 0 {
		placeholders := make([]string, len(filter.AccountIDs))
		for i, aID := range filter.AccountIDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, aID)
			argIndex++
		}
		query += fmt.Sprintf(" AND a.id IN (%s)", strings.Join(placeholders, ","))
	}

	if filter.AccountType != nil {
		query += fmt.Sprintf(" AND a.type = $%d", argIndex)
		args = append(args, *filter.AccountType)
		argIndex++
	}

	if filter.ExcludeZero {
		query += " AND a.opening_balance + COALESCE(m.register_balance, 0) != 0"
	}

	query += " ORDER BY a.name"

	var items []reports.AccountBalanceReportItem
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query, args...); err != nil {
		return nil, fmt.Errorf("account balance report: %w", err)
	}

	var totalBalance int64
	for _, item := range items {
		totalBalance += item.Balance
	}

	return &reports.AccountBalanceReport{
		AsOfDate:     asOfDate,
		Items:        items,
		TotalItems:   len(items),
		TotalBalance: totalBalance,
	}, nil
}

// GetStockBalanceReport generates stock balance report with product and
// stock point details.
func (r *ReportRepo) GetStockBalanceReport(ctx context.Context, filter reports.StockBalanceReportFilter) (*reports.StockBalanceReport, error) {
	asOfDate := time.Now()
	if filter.AsOfDate != nil {
		asOfDate = *filter.AsOfDate
	}

	query := `
		WITH balance_data AS (
			SELECT
				m.stock_point_id,
				m.product_id,
				SUM(CASE WHEN m.record_type = 'receipt' THEN m.quantity ELSE -m.quantity END) as quantity_scaled
			FROM reg_stock_movements m
			WHERE m.period <= $1
	`
	args := []any{asOfDate}
	argIndex := 2

	if len(filter.StockPointIDs) > 0 {
		placeholders := make([]string, len(filter.StockPointIDs))
		for i, spID := range filter.StockPointIDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, spID)
			argIndex++
		}
		query += fmt.Sprintf(" AND m.stock_point_id IN (%s)", strings.Join(placeholders, ","))
	}

	if len(filter.ProductIDs) > 0 {
		placeholders := make([]string, len(filter.ProductIDs))
		for i, pID := range filter.ProductIDs {
			placeholders[i] = fmt.Sprintf("$%d", argIndex)
			args = append(args, pID)
			argIndex++
		}
		query += fmt.Sprintf(" AND m.product_id IN (%s)", strings.Join(placeholders, ","))
	}

	havingClause := ""
	if filter.ExcludeZero {
		havingClause = "HAVING SUM(CASE WHEN m.record_type = 'receipt' THEN m.quantity ELSE -m.quantity END) != 0"
	}

	query += fmt.Sprintf(`
			GROUP BY m.stock_point_id, m.product_id
			%s
		)
		SELECT
			bd.stock_point_id,
			sp.name as stock_point_name,
			bd.product_id,
			p.name as product_name,
			COALESCE(p.unit, '') as unit,
			bd.quantity_scaled::float8 / 10000.0 as quantity,
			(sp.threshold > 0 AND bd.quantity_scaled < sp.threshold) as low_stock
		FROM balance_data bd
		JOIN cat_stock_points sp ON bd.stock_point_id = sp.id
		JOIN cat_products p ON bd.product_id = p.id
	`, havingClause)

	if filter.LowStockOnly {
		query += " WHERE sp.threshold > 0 AND bd.quantity_scaled < sp.threshold"
	}

	query += " ORDER BY sp.name, p.name"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var items []reports.StockBalanceReportItem
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, query, args...); err != nil {
		return nil, fmt.Errorf("stock balance report: %w", err)
	}

	var totalQuantity float64
	for _, item := range items {
		totalQuantity += item.Quantity
	}

	return &reports.StockBalanceReport{
		AsOfDate:      asOfDate,
		Items:         items,
		TotalItems:    len(items),
		TotalQuantity: totalQuantity,
	}, nil
}

var journalDocTypes = []string{"Sale", "Payment", "Purchase", "StockMove", "FundsMove"}

// GetDocumentJournal retrieves documents of every type for journal view.
func (r *ReportRepo) GetDocumentJournal(ctx context.Context, filter reports.DocumentJournalFilter) (*reports.DocumentJournal, error) {
	docTypes := filter.DocumentTypes
	if len(docTypes) == 0 {
		docTypes = journalDocTypes
	}

	var unions []string
	var args []any
	argIndex := 1

	appendCommon := func(q string, dateCol string) string {
		if filter.FromDate != nil {
			q += fmt.Sprintf(" AND %s >= $%d", dateCol, argIndex)
			args = append(args, *filter.FromDate)
			argIndex++
		}
		if filter.ToDate != nil {
			q += fmt.Sprintf(" AND %s < $%d", dateCol, argIndex)
			args = append(args, *filter.ToDate)
			argIndex++
		}
		if filter.Posted != nil {
			q += fmt.Sprintf(" AND posted = $%d", argIndex)
			args = append(args, *filter.Posted)
			argIndex++
		}
		if filter.NumberContains != "" {
			q += fmt.Sprintf(" AND number ILIKE $%d", argIndex)
			args = append(args, "%"+filter.NumberContains+"%")
			argIndex++
		}
		return q
	}

	for _, docType := range docTypes {
		switch docType {
		case "Sale":
			q := `
				SELECT
					d.id, 'Sale' as document_type, d.number, d.date, d.posted,
					d.customer_id, COALESCE(c.name, '') as customer_name,
					d.total_quantity::float8 / 10000.0 as total_quantity,
					d.total_amount,
					d.comment as description, d.deletion_mark, d.created_at, d.updated_at
				FROM doc_sales d
				LEFT JOIN cat_customers c ON d.customer_id = c.id
				WHERE d.deletion_mark = false
			`
			q = appendCommon(q, "d.date")
			if len(filter.CustomerIDs) > 0 {
				placeholders := make([]string, len(filter.CustomerIDs))
				for i, cID := range filter.CustomerIDs {
					placeholders[i] = fmt.Sprintf("$%d", argIndex)
					args = append(args, cID)
					argIndex++
				}
				q += fmt.Sprintf(" AND d.customer_id IN (%s)", strings.Join(placeholders, ","))
			}
			if len(filter.StockPointIDs) > 0 {
				placeholders := make([]string, len(filter.StockPointIDs))
				for i, spID := range filter.StockPointIDs {
					placeholders[i] = fmt.Sprintf("$%d", argIndex)
					args = append(args, spID)
					argIndex++
				}
				q += fmt.Sprintf(" AND d.stock_point_id IN (%s)", strings.Join(placeholders, ","))
			}
			unions = append(unions, q)

		case "Payment":
			q := `
				SELECT
					d.id, 'Payment' as document_type, d.number, d.date, d.posted,
					d.customer_id, COALESCE(c.name, '') as customer_name,
					0.0 as total_quantity,
					d.amount as total_amount,
					d.comment as description, d.deletion_mark, d.created_at, d.updated_at
				FROM doc_payments d
				LEFT JOIN cat_customers c ON d.customer_id = c.id
				WHERE d.deletion_mark = false
			`
			q = appendCommon(q, "d.date")
			if len(filter.CustomerIDs) > 0 {
				placeholders := make([]string, len(filter.CustomerIDs))
				for i, cID := range filter.CustomerIDs {
					placeholders[i] = fmt.Sprintf("$%d", argIndex)
					args = append(args, cID)
					argIndex++
				}
				q += fmt.Sprintf(" AND d.customer_id IN (%s)", strings.Join(placeholders, ","))
			}
			if len(filter.AccountIDs) > 0 {
				placeholders := make([]string, len(filter.AccountIDs))
				for i, aID := range filter.AccountIDs {
					placeholders[i] = fmt.Sprintf("$%d", argIndex)
					args = append(args, aID)
					argIndex++
				}
				q += fmt.Sprintf(" AND d.account_id IN (%s)", strings.Join(placeholders, ","))
			}
			unions = append(unions, q)

		case "Purchase":
			q := `
				SELECT
					d.id, 'Purchase' as document_type, d.number, d.date, d.posted,
					NULL::uuid as customer_id, COALESCE(d.supplier_name, '') as customer_name,
					d.total_quantity::float8 / 10000.0 as total_quantity,
					d.total_amount,
					d.comment as description, d.deletion_mark, d.created_at, d.updated_at
				FROM doc_purchases d
				WHERE d.deletion_mark = false
			`
			q = appendCommon(q, "d.date")
			if len(filter.StockPointIDs) > 0 {
				placeholders := make([]string, len(filter.StockPointIDs))
				for i, spID := range filter.StockPointIDs {
					placeholders[i] = fmt.Sprintf("$%d", argIndex)
					args = append(args, spID)
					argIndex++
				}
				q += fmt.Sprintf(" AND d.stock_point_id IN (%s)", strings.Join(placeholders, ","))
			}
			unions = append(unions, q)

		case "StockMove":
			q := `
				SELECT
					d.id, 'StockMove' as document_type, d.number, d.date, d.posted,
					NULL::uuid as customer_id, '' as customer_name,
					d.total_quantity::float8 / 10000.0 as total_quantity,
					0::bigint as total_amount,
					d.comment as description, d.deletion_mark, d.created_at, d.updated_at
				FROM doc_stock_moves d
				WHERE d.deletion_mark = false
			`
			q = appendCommon(q, "d.date")
			if len(filter.StockPointIDs) > 0 {
				placeholders := make([]string, len(filter.StockPointIDs))
				for i, spID := range filter.StockPointIDs {
					placeholders[i] = fmt.Sprintf("$%d", argIndex)
					args = append(args, spID)
					argIndex++
				}
				spList := strings.Join(placeholders, ",")
				q += fmt.Sprintf(" AND (d.from_id IN (%s) OR d.to_id IN (%s))", spList, spList)
			}
			unions = append(unions, q)

		case "FundsMove":
			q := `
				SELECT
					d.id, 'FundsMove' as document_type, d.number, d.date, d.posted,
					NULL::uuid as customer_id, '' as customer_name,
					0.0 as total_quantity,
					d.amount as total_amount,
					d.comment as description, d.deletion_mark, d.created_at, d.updated_at
				FROM doc_funds_moves d
				WHERE d.deletion_mark = false
			`
			q = appendCommon(q, "d.date")
			if len(filter.AccountIDs) > 0 {
				placeholders := make([]string, len(filter.AccountIDs))
				for i, aID := range filter.AccountIDs {
					placeholders[i] = fmt.Sprintf("$%d", argIndex)
					args = append(args, aID)
					argIndex++
				}
				aList := strings.Join(placeholders, ",")
				q += fmt.Sprintf(" AND (d.from_id IN (%s) OR d.to_id IN (%s))", aList, aList)
			}
			unions = append(unions, q)
		}
	}

	if len(unions) == 0 {
		return &reports.DocumentJournal{
			Items:      []reports.DocumentJournalItem{},
			TotalCount: 0,
		}, nil
	}

	query := strings.Join(unions, " UNION ALL ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM (%s) j", query)

	querier := r.txManager.GetQuerier(ctx)
	var totalCount int
	if err := querier.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, fmt.Errorf("document journal count: %w", err)
	}

	query += " ORDER BY " + journalOrderBy(filter.SortBy, filter.SortOrder)

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	var items []reports.DocumentJournalItem
	if err := pgxscan.Select(ctx, querier, &items, query, args...); err != nil {
		return nil, fmt.Errorf("document journal: %w", err)
	}

	return &reports.DocumentJournal{
		Items:      items,
		TotalCount: totalCount,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

// journalOrderBy maps sort params onto journal columns.
// Callers validate the sort field, unknown values fall back to date.
func journalOrderBy(sortBy, sortOrder string) string {
	column := "date"
	switch sortBy {
	case "number":
		column = "number"
	case "type":
		column = "document_type"
	case "amount":
		column = "total_amount"
	}

	direction := "DESC"
	if sortOrder == "asc" {
		direction = "ASC"
	}

	if column == "date" {
		return fmt.Sprintf("date %s, number", direction)
	}
	return fmt.Sprintf("%s %s, date DESC", column, direction)
}

// GetDocumentTypeSummary returns document counts and totals by type.
func (r *ReportRepo) GetDocumentTypeSummary(ctx context.Context, filter reports.DocumentJournalFilter) ([]reports.DocumentTypeSummary, error) {
	var result []reports.DocumentTypeSummary

	docTypes := filter.DocumentTypes
	if len(docTypes) == 0 {
		docTypes = journalDocTypes
	}

	querier := r.txManager.GetQuerier(ctx)

	for _, docType := range docTypes {
		var summary reports.DocumentTypeSummary
		summary.DocumentType = docType

		var query string
		switch docType {
		case "Sale":
			query = summaryQuery("doc_sales", "total_quantity::float8 / 10000.0", "total_amount")
		case "Payment":
			query = summaryQuery("doc_payments", "0.0", "amount")
		case "Purchase":
			query = summaryQuery("doc_purchases", "total_quantity::float8 / 10000.0", "total_amount")
		case "StockMove":
			query = summaryQuery("doc_stock_moves", "total_quantity::float8 / 10000.0", "0")
		case "FundsMove":
			query = summaryQuery("doc_funds_moves", "0.0", "amount")
		default:
			continue
		}

		var args []any
		argIndex := 1
		if filter.FromDate != nil {
			query += fmt.Sprintf(" AND date >= $%d", argIndex)
			args = append(args, *filter.FromDate)
			argIndex++
		}
		if filter.ToDate != nil {
			query += fmt.Sprintf(" AND date < $%d", argIndex)
			args = append(args, *filter.ToDate)
			argIndex++
		}

		err := querier.QueryRow(ctx, query, args...).Scan(
			&summary.Count,
			&summary.PostedCount,
			&summary.TotalQuantity,
			&summary.TotalAmount,
		)
		if err != nil {
			return nil, fmt.Errorf("document type summary for %s: %w", docType, err)
		}

		result = append(result, summary)
	}

	return result, nil
}

func summaryQuery(table, quantityExpr, amountExpr string) string {
	return fmt.Sprintf(`
		SELECT
			COUNT(*) as count,
			COUNT(*) FILTER (WHERE posted = true) as posted_count,
			COALESCE(SUM(%s), 0.0) as total_quantity,
			COALESCE(SUM(%s), 0)::bigint as total_amount
		FROM %s
		WHERE deletion_mark = false
	`, quantityExpr, amountExpr, table)
}

// consistencyRow is one mismatched balance row.
type consistencyRow struct {
	Dimension     string `db:"dimension"`
	BalanceValue  int64  `db:"balance_value"`
	MovementTotal int64  `db:"movement_total"`
}

// VerifyConsistency recomputes every register balance from movements and
// reports any row that disagrees with the balance table.
func (r *ReportRepo) VerifyConsistency(ctx context.Context) (*reports.ConsistencyReport, error) {
	report := &reports.ConsistencyReport{
		CheckedAt: time.Now(),
		Issues:    []reports.ConsistencyIssue{},
	}

	checks := []struct {
		register string
		query    string
	}{
		{
			register: "receivable",
			query: `
				SELECT
					COALESCE(b.customer_id, m.customer_id)::text as dimension,
					COALESCE(b.amount, 0) as balance_value,
					COALESCE(m.total, 0) as movement_total
				FROM reg_receivable_balances b
				FULL OUTER JOIN (
					SELECT customer_id,
						   SUM(CASE WHEN record_type = 'receipt' THEN amount ELSE -amount END) as total
					FROM reg_receivable_movements
					GROUP BY customer_id
				) m ON m.customer_id = b.customer_id
				WHERE COALESCE(b.amount, 0) != COALESCE(m.total, 0)
			`,
		},
		{
			register: "funds",
			query: `
				SELECT
					COALESCE(b.account_id, m.account_id)::text as dimension,
					COALESCE(b.amount, 0) as balance_value,
					COALESCE(m.total, 0) as movement_total
				FROM reg_funds_balances b
				FULL OUTER JOIN (
					SELECT account_id,
						   SUM(CASE WHEN record_type = 'receipt' THEN amount ELSE -amount END) as total
					FROM reg_funds_movements
					GROUP BY account_id
				) m ON m.account_id = b.account_id
				WHERE COALESCE(b.amount, 0) != COALESCE(m.total, 0)
			`,
		},
		{
			register: "stock",
			query: `
				SELECT
					COALESCE(b.stock_point_id, m.stock_point_id)::text || '/' ||
						COALESCE(b.product_id, m.product_id)::text as dimension,
					COALESCE(b.quantity, 0) as balance_value,
					COALESCE(m.total, 0) as movement_total
				FROM reg_stock_balances b
				FULL OUTER JOIN (
					SELECT stock_point_id, product_id,
						   SUM(CASE WHEN record_type = 'receipt' THEN quantity ELSE -quantity END) as total
					FROM reg_stock_movements
					GROUP BY stock_point_id, product_id
				) m ON m.stock_point_id = b.stock_point_id AND m.product_id = b.product_id
				WHERE COALESCE(b.quantity, 0) != COALESCE(m.total, 0)
			`,
		},
	}

	querier := r.txManager.GetQuerier(ctx)
	for _, check := range checks {
		var mismatches []consistencyRow
		if err := pgxscan.Select(ctx, querier, &mismatches, check.query); err != nil {
			return nil, fmt.Errorf("verify %s register: %w", check.register, err)
		}

		for _, row := range mismatches {
			report.Issues = append(report.Issues, reports.ConsistencyIssue{
				Register:      check.register,
				Dimension:     row.Dimension,
				BalanceValue:  row.BalanceValue,
				MovementTotal: row.MovementTotal,
			})
		}
	}

	return report, nil
}

// Ensure interface compliance
var _ reports.Repository = (*ReportRepo)(nil)
