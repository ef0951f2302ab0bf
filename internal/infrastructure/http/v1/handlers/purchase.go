package handlers

import (
	"github.com/gin-gonic/gin"

	"tradebook/internal/domain"
	"tradebook/internal/domain/documents/purchase"
	"tradebook/internal/infrastructure/http/v1/dto"
)

// PurchaseHandler serves the purchase document endpoints. Dump and
// pass-through purchases are normally recorded by stock move and sale
// posting; the manual endpoints cover monetary purchases and fixups.
type PurchaseHandler struct {
	*BaseDocumentHandler[*purchase.Purchase, dto.CreatePurchaseRequest, dto.UpdatePurchaseRequest]
	svc *purchase.Service
}

// NewPurchaseHandler creates a purchase handler.
func NewPurchaseHandler(svc *purchase.Service, audit AuditLogger) *PurchaseHandler {
	base := NewBaseDocumentHandler(DocumentHandlerConfig[*purchase.Purchase, dto.CreatePurchaseRequest, dto.UpdatePurchaseRequest]{
		Service:    svc,
		EntityName: "purchase",
		MapCreate: func(req *dto.CreatePurchaseRequest) (*purchase.Purchase, error) {
			return req.ToEntity()
		},
		ShouldPost: func(req *dto.CreatePurchaseRequest) bool { return req.Post },
		MapUpdate: func(req *dto.UpdatePurchaseRequest, existing *purchase.Purchase) error {
			return req.ApplyTo(existing)
		},
		MapToDTO: func(doc *purchase.Purchase) any { return dto.FromPurchase(doc) },
		Audit:    audit,
	})
	return &PurchaseHandler{BaseDocumentHandler: base, svc: svc}
}

// RegisterRoutes attaches purchase routes to the group.
func (h *PurchaseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.GET("/:id/history", h.History)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/post", h.Post)
	rg.POST("/:id/unpost", h.Unpost)
}

// List handles GET / with purchase-specific filters.
func (h *PurchaseHandler) List(c *gin.Context) {
	listFilter := purchase.ListFilter{ListFilter: domain.DefaultListFilter()}
	listFilter.OrderBy = "-date"
	listFilter.Limit = h.ParseIntQuery(c, "limit", listFilter.Limit)
	listFilter.Offset = h.ParseIntQuery(c, "offset", 0)
	listFilter.Posted = h.ParseBoolQuery(c, "posted")

	if raw := c.Query("origin"); raw != "" {
		origin := purchase.Origin(raw)
		listFilter.Origin = &origin
	}

	if raw := c.Query("supplier"); raw != "" {
		listFilter.SupplierName = &raw
	}

	listFilter.ExcludeZeroCost = c.Query("excludeZeroCost") == "true"

	var ok bool
	if listFilter.ProductID, ok = h.ParseIDQuery(c, "productId"); !ok {
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

	items := make([]dto.PurchaseResponse, 0, len(result.Items))
	for _, doc := range result.Items {
		items = append(items, dto.FromPurchase(doc))
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
