package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"tradebook/internal/core/apperror"
	"tradebook/internal/domain/reports"
)

// ReportsHandler serves the reporting endpoints.
type ReportsHandler struct {
	BaseHandler
	svc *reports.Service
}

// NewReportsHandler creates a reports handler.
func NewReportsHandler(svc *reports.Service) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

// RegisterRoutes attaches report routes to the group.
func (h *ReportsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/customer-balances", h.CustomerBalances)
	rg.GET("/customer-statement/:customerId", h.CustomerStatement)
	rg.GET("/account-balances", h.AccountBalances)
	rg.GET("/stock-balances", h.StockBalances)
	rg.GET("/document-journal", h.DocumentJournal)
	rg.GET("/consistency", h.Consistency)
}

// CustomerBalances handles GET /reports/customer-balances.
func (h *ReportsHandler) CustomerBalances(c *gin.Context) {
	filter := reports.CustomerBalanceReportFilter{
		Limit:  h.ParseIntQuery(c, "limit", 0),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}
	var ok bool
	if filter.AsOfDate, ok = h.ParseTimeQuery(c, "asOfDate"); !ok {
		return
	}
	if v := h.ParseBoolQuery(c, "excludeZero"); v != nil {
		filter.ExcludeZero = *v
	}
	if area := c.Query("area"); area != "" {
		filter.Area = &area
	}
	for _, raw := range c.QueryArray("customerId") {
		customerID, ok := h.parseRawID(c, raw)
		if !ok {
			return
		}
		filter.CustomerIDs = append(filter.CustomerIDs, customerID)
	}

	report, err := h.svc.GetCustomerBalanceReport(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// CustomerStatement handles GET /reports/customer-statement/:customerId.
func (h *ReportsHandler) CustomerStatement(c *gin.Context) {
	customerID, ok := h.ParseID(c, "customerId")
	if !ok {
		return
	}

	from, ok := h.ParseTimeQuery(c, "dateFrom")
	if !ok {
		return
	}
	to, ok := h.ParseTimeQuery(c, "dateTo")
	if !ok {
		return
	}

	// Defaults to the current month.
	now := time.Now()
	filter := reports.CustomerStatementFilter{
		CustomerID: customerID,
		FromDate:   time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()),
		ToDate:     now,
	}
	if from != nil {
		filter.FromDate = *from
	}
	if to != nil {
		filter.ToDate = *to
	}
	if !filter.ToDate.After(filter.FromDate) {
		h.Error(c, apperror.NewValidation("dateTo must be after dateFrom"))
		return
	}

	statement, err := h.svc.GetCustomerStatement(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, statement)
}

// AccountBalances handles GET /reports/account-balances.
func (h *ReportsHandler) AccountBalances(c *gin.Context) {
	filter := reports.AccountBalanceReportFilter{}
	var ok bool
	if filter.AsOfDate, ok = h.ParseTimeQuery(c, "asOfDate"); !ok {
		return
	}
	if v := h.ParseBoolQuery(c, "excludeZero"); v != nil {
		filter.ExcludeZero = *v
	}
	if accountType := c.Query("type"); accountType != "" {
		filter.AccountType = &accountType
	}
	for _, raw := range c.QueryArray("accountId") {
		accountID, ok := h.parseRawID(c, raw)
		if !ok {
			return
		}
		filter.AccountIDs = append(filter.AccountIDs, accountID)
	}

	report, err := h.svc.GetAccountBalanceReport(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// StockBalances handles GET /reports/stock-balances.
func (h *ReportsHandler) StockBalances(c *gin.Context) {
	filter := reports.StockBalanceReportFilter{
		Limit:  h.ParseIntQuery(c, "limit", 0),
		Offset: h.ParseIntQuery(c, "offset", 0),
	}
	var ok bool
	if filter.AsOfDate, ok = h.ParseTimeQuery(c, "asOfDate"); !ok {
		return
	}
	if v := h.ParseBoolQuery(c, "excludeZero"); v != nil {
		filter.ExcludeZero = *v
	}
	if v := h.ParseBoolQuery(c, "lowStockOnly"); v != nil {
		filter.LowStockOnly = *v
	}
	for _, raw := range c.QueryArray("stockPointId") {
		stockPointID, ok := h.parseRawID(c, raw)
		if !ok {
			return
		}
		filter.StockPointIDs = append(filter.StockPointIDs, stockPointID)
	}
	for _, raw := range c.QueryArray("productId") {
		productID, ok := h.parseRawID(c, raw)
		if !ok {
			return
		}
		filter.ProductIDs = append(filter.ProductIDs, productID)
	}

	report, err := h.svc.GetStockBalanceReport(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, report)
}

// DocumentJournal handles GET /reports/document-journal.
func (h *ReportsHandler) DocumentJournal(c *gin.Context) {
	filter := reports.DocumentJournalFilter{
		DocumentTypes:  c.QueryArray("type"),
		Posted:         h.ParseBoolQuery(c, "posted"),
		NumberContains: c.Query("number"),
		SortBy:         c.Query("sortBy"),
		SortOrder:      c.Query("sortOrder"),
		Limit:          h.ParseIntQuery(c, "limit", 50),
		Offset:         h.ParseIntQuery(c, "offset", 0),
	}
	var ok bool
	if filter.FromDate, ok = h.ParseTimeQuery(c, "dateFrom"); !ok {
		return
	}
	if filter.ToDate, ok = h.ParseTimeQuery(c, "dateTo"); !ok {
		return
	}
	for _, raw := range c.QueryArray("customerId") {
		customerID, ok := h.parseRawID(c, raw)
		if !ok {
			return
		}
		filter.CustomerIDs = append(filter.CustomerIDs, customerID)
	}
	for _, raw := range c.QueryArray("accountId") {
		accountID, ok := h.parseRawID(c, raw)
		if !ok {
			return
		}
		filter.AccountIDs = append(filter.AccountIDs, accountID)
	}
	for _, raw := range c.QueryArray("stockPointId") {
		stockPointID, ok := h.parseRawID(c, raw)
		if !ok {
			return
		}
		filter.StockPointIDs = append(filter.StockPointIDs, stockPointID)
	}

	journal, err := h.svc.GetDocumentJournal(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, journal)
}

// Consistency handles GET /reports/consistency. It recomputes each
// register balance from movements and reports any rows that disagree.
func (h *ReportsHandler) Consistency(c *gin.Context) {
	report, err := h.svc.VerifyConsistency(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"checkedAt":  report.CheckedAt,
		"consistent": report.Consistent(),
		"issues":     report.Issues,
	})
}
