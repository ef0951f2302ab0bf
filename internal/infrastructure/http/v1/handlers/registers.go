package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"tradebook/internal/core/apperror"
	"tradebook/internal/core/entity"
	"tradebook/internal/domain/registers/funds"
	"tradebook/internal/domain/registers/receivable"
	"tradebook/internal/domain/registers/stock"
)

// RegistersHandler exposes read access to the three accumulation
// registers: customer receivables, account funds, and stock.
type RegistersHandler struct {
	BaseHandler
	receivable *receivable.Service
	funds      *funds.Service
	stock      *stock.Service
}

// NewRegistersHandler creates a registers handler.
func NewRegistersHandler(receivableSvc *receivable.Service, fundsSvc *funds.Service, stockSvc *stock.Service) *RegistersHandler {
	return &RegistersHandler{
		receivable: receivableSvc,
		funds:      fundsSvc,
		stock:      stockSvc,
	}
}

// RegisterRoutes attaches register routes to the group.
func (h *RegistersHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rec := rg.Group("/receivable")
	{
		rec.GET("/balances", h.ReceivableBalances)
		rec.GET("/:customerId/balance", h.ReceivableBalance)
		rec.GET("/:customerId/history", h.ReceivableHistory)
		rec.GET("/:customerId/turnover", h.ReceivableTurnover)
	}

	fnd := rg.Group("/funds")
	{
		fnd.GET("/balances", h.FundsBalances)
		fnd.GET("/:accountId/balance", h.FundsBalance)
		fnd.GET("/:accountId/history", h.FundsHistory)
		fnd.GET("/:accountId/turnover", h.FundsTurnover)
	}

	stk := rg.Group("/stock")
	{
		stk.GET("/balance", h.StockBalance)
		stk.GET("/points/:stockPointId", h.StockPointStock)
		stk.GET("/products/:productId/availability", h.ProductAvailability)
		stk.GET("/products/:productId/history", h.StockHistory)
		stk.GET("/turnover", h.StockTurnover)
	}
}

// --- Receivable ---

// ReceivableBalance returns one customer's outstanding balance.
func (h *RegistersHandler) ReceivableBalance(c *gin.Context) {
	customerID, ok := h.ParseID(c, "customerId")
	if !ok {
		return
	}

	balance, err := h.receivable.GetBalance(c.Request.Context(), customerID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"customerId": customerID.String(), "balance": balance})
}

// ReceivableBalances returns balances across customers.
func (h *RegistersHandler) ReceivableBalances(c *gin.Context) {
	balanceFilter := receivable.BalanceFilter{}
	if v := h.ParseBoolQuery(c, "excludeZero"); v != nil {
		balanceFilter.ExcludeZero = *v
	}
	for _, raw := range c.QueryArray("customerId") {
		customerID, ok := h.parseRawID(c, raw)
		if !ok {
			return
		}
		balanceFilter.CustomerIDs = append(balanceFilter.CustomerIDs, customerID)
	}

	balances, err := h.receivable.GetBalances(c.Request.Context(), balanceFilter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": balances})
}

// ReceivableHistory returns movement history for one customer.
func (h *RegistersHandler) ReceivableHistory(c *gin.Context) {
	customerID, ok := h.ParseID(c, "customerId")
	if !ok {
		return
	}

	movementFilter, ok := h.movementFilter(c)
	if !ok {
		return
	}
	filter := receivable.MovementFilter{
		RecordType: movementFilter.recordType,
		FromDate:   movementFilter.fromDate,
		ToDate:     movementFilter.toDate,
		Limit:      movementFilter.limit,
		Offset:     movementFilter.offset,
	}

	movements, err := h.receivable.GetMovementHistory(c.Request.Context(), customerID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": movements})
}

// ReceivableTurnover returns receipt/expense totals for a period.
func (h *RegistersHandler) ReceivableTurnover(c *gin.Context) {
	customerID, ok := h.ParseID(c, "customerId")
	if !ok {
		return
	}

	from, to, ok := h.turnoverPeriod(c)
	if !ok {
		return
	}

	turnover, err := h.receivable.GetTurnover(c.Request.Context(), receivable.TurnoverFilter{
		CustomerID: &customerID,
		FromDate:   from,
		ToDate:     to,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"receipt": turnover.Receipt,
		"expense": turnover.Expense,
		"net":     turnover.Net(),
	})
}

// --- Funds ---

// FundsBalance returns one account's balance.
func (h *RegistersHandler) FundsBalance(c *gin.Context) {
	accountID, ok := h.ParseID(c, "accountId")
	if !ok {
		return
	}

	balance, err := h.funds.GetBalance(c.Request.Context(), accountID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"accountId": accountID.String(), "balance": balance})
}

// FundsBalances returns balances across accounts.
func (h *RegistersHandler) FundsBalances(c *gin.Context) {
	balanceFilter := funds.BalanceFilter{}
	if v := h.ParseBoolQuery(c, "excludeZero"); v != nil {
		balanceFilter.ExcludeZero = *v
	}
	for _, raw := range c.QueryArray("accountId") {
		accountID, ok := h.parseRawID(c, raw)
		if !ok {
			return
		}
		balanceFilter.AccountIDs = append(balanceFilter.AccountIDs, accountID)
	}

	balances, err := h.funds.GetBalances(c.Request.Context(), balanceFilter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": balances})
}

// FundsHistory returns movement history for one account.
func (h *RegistersHandler) FundsHistory(c *gin.Context) {
	accountID, ok := h.ParseID(c, "accountId")
	if !ok {
		return
	}

	movementFilter, ok := h.movementFilter(c)
	if !ok {
		return
	}
	filter := funds.MovementFilter{
		RecordType: movementFilter.recordType,
		FromDate:   movementFilter.fromDate,
		ToDate:     movementFilter.toDate,
		Limit:      movementFilter.limit,
		Offset:     movementFilter.offset,
	}

	movements, err := h.funds.GetMovementHistory(c.Request.Context(), accountID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": movements})
}

// FundsTurnover returns receipt/expense totals for a period.
func (h *RegistersHandler) FundsTurnover(c *gin.Context) {
	accountID, ok := h.ParseID(c, "accountId")
	if !ok {
		return
	}

	from, to, ok := h.turnoverPeriod(c)
	if !ok {
		return
	}

	turnover, err := h.funds.GetTurnover(c.Request.Context(), funds.TurnoverFilter{
		AccountID: &accountID,
		FromDate:  from,
		ToDate:    to,
	})
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"receipt": turnover.Receipt,
		"expense": turnover.Expense,
		"net":     turnover.Net(),
	})
}

// --- Stock ---

// StockBalance returns the quantity of one product at one point.
func (h *RegistersHandler) StockBalance(c *gin.Context) {
	stockPointID, ok := h.ParseIDQuery(c, "stockPointId")
	if !ok {
		return
	}
	productID, ok := h.ParseIDQuery(c, "productId")
	if !ok {
		return
	}
	if stockPointID == nil || productID == nil {
		h.Error(c, apperror.NewValidation("stockPointId and productId are required"))
		return
	}

	quantity, err := h.stock.GetBalance(c.Request.Context(), *stockPointID, *productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"stockPointId": stockPointID.String(),
		"productId":    productID.String(),
		"quantity":     quantity,
	})
}

// StockPointStock returns all product balances at one stock point.
func (h *RegistersHandler) StockPointStock(c *gin.Context) {
	stockPointID, ok := h.ParseID(c, "stockPointId")
	if !ok {
		return
	}

	balances, err := h.stock.GetStockPointStock(c.Request.Context(), stockPointID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": balances})
}

// ProductAvailability returns total quantity of a product across all
// stock points.
func (h *RegistersHandler) ProductAvailability(c *gin.Context) {
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	quantity, err := h.stock.GetProductAvailability(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"productId": productID.String(), "quantity": quantity})
}

// StockHistory returns movement history for one product.
func (h *RegistersHandler) StockHistory(c *gin.Context) {
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	movementFilter, ok := h.movementFilter(c)
	if !ok {
		return
	}
	filter := stock.MovementFilter{
		RecordType: movementFilter.recordType,
		FromDate:   movementFilter.fromDate,
		ToDate:     movementFilter.toDate,
		Limit:      movementFilter.limit,
		Offset:     movementFilter.offset,
	}
	if filter.StockPointID, ok = h.ParseIDQuery(c, "stockPointId"); !ok {
		return
	}

	movements, err := h.stock.GetMovementHistory(c.Request.Context(), productID, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": movements})
}

// StockTurnover returns receipt/expense quantities for a period.
func (h *RegistersHandler) StockTurnover(c *gin.Context) {
	from, to, ok := h.turnoverPeriod(c)
	if !ok {
		return
	}

	turnoverFilter := stock.TurnoverFilter{FromDate: from, ToDate: to}
	if turnoverFilter.StockPointID, ok = h.ParseIDQuery(c, "stockPointId"); !ok {
		return
	}
	if turnoverFilter.ProductID, ok = h.ParseIDQuery(c, "productId"); !ok {
		return
	}

	turnover, err := h.stock.GetTurnover(c.Request.Context(), turnoverFilter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{
		"receipt": turnover.Receipt,
		"expense": turnover.Expense,
	})
}

// --- shared parsing ---

type movementQuery struct {
	recordType *entity.RecordType
	fromDate   *time.Time
	toDate     *time.Time
	limit      int
	offset     int
}

func (h *RegistersHandler) movementFilter(c *gin.Context) (movementQuery, bool) {
	q := movementQuery{
		limit:  h.ParseIntQuery(c, "limit", 100),
		offset: h.ParseIntQuery(c, "offset", 0),
	}

	if raw := c.Query("recordType"); raw != "" {
		rt := entity.RecordType(raw)
		if rt != entity.RecordTypeReceipt && rt != entity.RecordTypeExpense {
			h.Error(c, apperror.NewValidation("invalid record type").WithDetail("value", raw))
			return q, false
		}
		q.recordType = &rt
	}

	var ok bool
	if q.fromDate, ok = h.ParseTimeQuery(c, "dateFrom"); !ok {
		return q, false
	}
	if q.toDate, ok = h.ParseTimeQuery(c, "dateTo"); !ok {
		return q, false
	}
	return q, true
}

func (h *RegistersHandler) turnoverPeriod(c *gin.Context) (time.Time, time.Time, bool) {
	from, ok := h.ParseTimeQuery(c, "dateFrom")
	if !ok {
		return time.Time{}, time.Time{}, false
	}
	to, ok := h.ParseTimeQuery(c, "dateTo")
	if !ok {
		return time.Time{}, time.Time{}, false
	}

	now := time.Now()
	start := now.AddDate(0, -1, 0)
	end := now
	if from != nil {
		start = *from
	}
	if to != nil {
		end = *to
	}
	return start, end, true
}
