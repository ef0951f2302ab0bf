package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"tradebook/internal/domain"
	"tradebook/internal/domain/documents/stockmove"
	"tradebook/internal/infrastructure/http/v1/dto"
)

// StockMoveHandler serves the stock move document endpoints: loads,
// transfers between points, and supplier dumps.
type StockMoveHandler struct {
	*BaseDocumentHandler[*stockmove.StockMove, dto.CreateStockMoveRequest, dto.UpdateStockMoveRequest]
	svc *stockmove.Service
}

// NewStockMoveHandler creates a stock move handler.
func NewStockMoveHandler(svc *stockmove.Service, audit AuditLogger) *StockMoveHandler {
	base := NewBaseDocumentHandler(DocumentHandlerConfig[*stockmove.StockMove, dto.CreateStockMoveRequest, dto.UpdateStockMoveRequest]{
		Service:    svc,
		EntityName: "stock move",
		MapCreate: func(req *dto.CreateStockMoveRequest) (*stockmove.StockMove, error) {
			return req.ToEntity()
		},
		ShouldPost: func(req *dto.CreateStockMoveRequest) bool { return req.Post },
		PostAndSave: func(ctx context.Context, doc *stockmove.StockMove) error {
			return svc.PostAndSave(ctx, doc)
		},
		MapUpdate: func(req *dto.UpdateStockMoveRequest, existing *stockmove.StockMove) error {
			return req.ApplyTo(existing)
		},
		MapToDTO: func(doc *stockmove.StockMove) any { return dto.FromStockMove(doc) },
		Audit:    audit,
	})
	return &StockMoveHandler{BaseDocumentHandler: base, svc: svc}
}

// RegisterRoutes attaches stock move routes to the group.
func (h *StockMoveHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.GET("/:id/history", h.History)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/post", h.Post)
	rg.POST("/:id/unpost", h.Unpost)
}

// List handles GET / with stock-move-specific filters.
func (h *StockMoveHandler) List(c *gin.Context) {
	listFilter := stockmove.ListFilter{ListFilter: domain.DefaultListFilter()}
	listFilter.OrderBy = "-date"
	listFilter.Limit = h.ParseIntQuery(c, "limit", listFilter.Limit)
	listFilter.Offset = h.ParseIntQuery(c, "offset", 0)
	listFilter.Posted = h.ParseBoolQuery(c, "posted")

	if raw := c.Query("kind"); raw != "" {
		kind := stockmove.Kind(raw)
		listFilter.Kind = &kind
	}

	var ok bool
	if listFilter.StockPointID, ok = h.ParseIDQuery(c, "stockPointId"); !ok {
		return
	}
	if listFilter.DateFrom, ok = h.ParseTimeQuery(c, "dateFrom"); !ok {
		return
	}
	if listFilter.DateTo, ok = h.ParseTimeQuery(c, "dateTo"); !ok {
		return
	}

	result, err := h.svc.List(c.Request.Context(), listFilter)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.StockMoveResponse, 0, len(result.Items))
	for _, doc := range result.Items {
		items = append(items, dto.FromStockMove(doc))
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
