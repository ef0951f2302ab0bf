package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"tradebook/internal/domain"
	"tradebook/internal/domain/documents/sale"
	"tradebook/internal/infrastructure/http/v1/dto"
)

// SaleHandler serves the sale document endpoints.
type SaleHandler struct {
	*BaseDocumentHandler[*sale.Sale, dto.CreateSaleRequest, dto.UpdateSaleRequest]
	svc *sale.Service
}

// NewSaleHandler creates a sale handler.
func NewSaleHandler(svc *sale.Service, audit AuditLogger) *SaleHandler {
	base := NewBaseDocumentHandler(DocumentHandlerConfig[*sale.Sale, dto.CreateSaleRequest, dto.UpdateSaleRequest]{
		Service:    svc,
		EntityName: "sale",
		MapCreate: func(req *dto.CreateSaleRequest) (*sale.Sale, error) {
			return req.ToEntity()
		},
		ShouldPost: func(req *dto.CreateSaleRequest) bool { return req.Post },
		PostAndSave: func(ctx context.Context, doc *sale.Sale) error {
			return svc.PostAndSave(ctx, doc)
		},
		MapUpdate: func(req *dto.UpdateSaleRequest, existing *sale.Sale) error {
			return req.ApplyTo(existing)
		},
		MapToDTO: func(doc *sale.Sale) any { return dto.FromSale(doc) },
		Audit:    audit,
	})
	return &SaleHandler{BaseDocumentHandler: base, svc: svc}
}

// RegisterRoutes attaches sale routes to the group.
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.GET("/:id/history", h.History)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/post", h.Post)
	rg.POST("/:id/unpost", h.Unpost)
}

// List handles GET / with sale-specific filters.
func (h *SaleHandler) List(c *gin.Context) {
	listFilter := sale.ListFilter{ListFilter: domain.DefaultListFilter()}
	listFilter.OrderBy = "-date"
	listFilter.Limit = h.ParseIntQuery(c, "limit", listFilter.Limit)
	listFilter.Offset = h.ParseIntQuery(c, "offset", 0)
	listFilter.Posted = h.ParseBoolQuery(c, "posted")

	var ok bool
	if listFilter.CustomerID, ok = h.ParseIDQuery(c, "customerId"); !ok {
		return
	}
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

	items := make([]dto.SaleResponse, 0, len(result.Items))
	for _, doc := range result.Items {
		items = append(items, dto.FromSale(doc))
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
