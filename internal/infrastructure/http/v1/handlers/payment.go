package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"tradebook/internal/domain"
	"tradebook/internal/domain/documents/payment"
	"tradebook/internal/infrastructure/http/v1/dto"
)

// PaymentHandler serves the payment document endpoints. Discounts are
// payments of kind "discount".
type PaymentHandler struct {
	*BaseDocumentHandler[*payment.Payment, dto.CreatePaymentRequest, dto.UpdatePaymentRequest]
	svc *payment.Service
}

// NewPaymentHandler creates a payment handler.
func NewPaymentHandler(svc *payment.Service, audit AuditLogger) *PaymentHandler {
	base := NewBaseDocumentHandler(DocumentHandlerConfig[*payment.Payment, dto.CreatePaymentRequest, dto.UpdatePaymentRequest]{
		Service:    svc,
		EntityName: "payment",
		MapCreate: func(req *dto.CreatePaymentRequest) (*payment.Payment, error) {
			return req.ToEntity()
		},
		ShouldPost: func(req *dto.CreatePaymentRequest) bool { return req.Post },
		PostAndSave: func(ctx context.Context, doc *payment.Payment) error {
			return svc.PostAndSave(ctx, doc)
		},
		MapUpdate: func(req *dto.UpdatePaymentRequest, existing *payment.Payment) error {
			return req.ApplyTo(existing)
		},
		MapToDTO: func(doc *payment.Payment) any { return dto.FromPayment(doc) },
		Audit:    audit,
	})
	return &PaymentHandler{BaseDocumentHandler: base, svc: svc}
}

// RegisterRoutes attaches payment routes to the group.
func (h *PaymentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.POST("", h.Create)
	rg.GET("/:id", h.Get)
	rg.GET("/:id/history", h.History)
	rg.PUT("/:id", h.Update)
	rg.DELETE("/:id", h.Delete)
	rg.POST("/:id/post", h.Post)
	rg.POST("/:id/unpost", h.Unpost)
}

// List handles GET / with payment-specific filters.
func (h *PaymentHandler) List(c *gin.Context) {
	listFilter := payment.ListFilter{ListFilter: domain.DefaultListFilter()}
	listFilter.OrderBy = "-date"
	listFilter.Limit = h.ParseIntQuery(c, "limit", listFilter.Limit)
	listFilter.Offset = h.ParseIntQuery(c, "offset", 0)
	listFilter.Posted = h.ParseBoolQuery(c, "posted")

	if raw := c.Query("kind"); raw != "" {
		kind := payment.Kind(raw)
		listFilter.Kind = &kind
	}

	var ok bool
	if listFilter.CustomerID, ok = h.ParseIDQuery(c, "customerId"); !ok {
		return
	}
	if listFilter.AccountID, ok = h.ParseIDQuery(c, "accountId"); !ok {
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

	items := make([]dto.PaymentResponse, 0, len(result.Items))
	for _, doc := range result.Items {
		items = append(items, dto.FromPayment(doc))
	}

	h.OK(c, dto.ListResponse{
		Items:      items,
		TotalCount: result.TotalCount,
		Limit:      result.Limit,
		Offset:     result.Offset,
	})
}
