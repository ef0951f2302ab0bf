// Package v1 provides the HTTP API router.
package v1

import (
	"time"

	"github.com/gin-gonic/gin"

	"tradebook/internal/domain/auth"
	"tradebook/internal/domain/catalogs/account"
	"tradebook/internal/domain/catalogs/customer"
	"tradebook/internal/domain/catalogs/product"
	"tradebook/internal/domain/catalogs/stockpoint"
	"tradebook/internal/domain/documents/fundsmove"
	"tradebook/internal/domain/documents/payment"
	"tradebook/internal/domain/documents/purchase"
	"tradebook/internal/domain/documents/sale"
	"tradebook/internal/domain/documents/stockmove"
	"tradebook/internal/domain/posting"
	"tradebook/internal/domain/registers/funds"
	"tradebook/internal/domain/registers/receivable"
	"tradebook/internal/domain/registers/stock"
	"tradebook/internal/domain/reminders"
	"tradebook/internal/domain/reports"
	"tradebook/internal/infrastructure/http/v1/handlers"
	"tradebook/internal/infrastructure/http/v1/middleware"
	"tradebook/internal/infrastructure/storage/postgres"
	"tradebook/internal/infrastructure/storage/postgres/catalog_repo"
	"tradebook/internal/infrastructure/storage/postgres/document_repo"
	"tradebook/internal/infrastructure/storage/postgres/register_repo"
	"tradebook/internal/infrastructure/storage/postgres/report_repo"
	"tradebook/pkg/logger"
	"tradebook/pkg/numerator"
)

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Pool      *postgres.Pool
	TxManager *postgres.TxManager
	Logger    *logger.Logger

	JWTValidator middleware.JWTValidator
	AuthService  *auth.Service

	// Numerator for document number generation
	Numerator numerator.Generator

	// Audit records document mutations into sys_audit. Optional.
	Audit *postgres.AuditService

	// IdempotencyEnabled turns on replay protection for mutating
	// requests carrying an X-Idempotency-Key header.
	IdempotencyEnabled bool
	IdempotencyTTL     time.Duration

	Version string
}

// NewRouter creates the HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(
		middleware.Recovery(),
		middleware.Trace(),
		middleware.Logger(cfg.Logger),
		middleware.ErrorHandler(),
	)

	// Health probes are unauthenticated.
	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Version)
	healthHandler.RegisterRoutes(router.Group("/health"))

	api := router.Group("/api/v1")

	// Auth: login/refresh are public, the rest sits behind the token.
	authHandler := handlers.NewAuthHandler(cfg.AuthService)
	authPublic := api.Group("/auth")
	authProtected := api.Group("/auth", middleware.Auth(cfg.JWTValidator))
	authHandler.RegisterRoutes(authPublic, authProtected)

	protected := api.Group("", middleware.Auth(cfg.JWTValidator))
	if cfg.IdempotencyEnabled {
		ttl := cfg.IdempotencyTTL
		if ttl == 0 {
			ttl = 24 * time.Hour
		}
		store := postgres.NewIdempotencyStore(cfg.TxManager, ttl)
		protected.Use(middleware.Idempotency(store))
	}

	wireRoutes(protected, cfg)

	return router
}

// wireRoutes builds the repository/service graph and registers all
// business routes.
func wireRoutes(rg *gin.RouterGroup, cfg RouterConfig) {
	txm := cfg.TxManager

	// --- Catalog services ---
	customerSvc := customer.NewService(catalog_repo.NewCustomerRepo(txm), cfg.Numerator, txm)
	accountSvc := account.NewService(catalog_repo.NewAccountRepo(txm), cfg.Numerator, txm)
	stockPointSvc := stockpoint.NewService(catalog_repo.NewStockPointRepo(txm), cfg.Numerator, txm)
	productSvc := product.NewService(catalog_repo.NewProductRepo(txm), cfg.Numerator, txm)

	// --- Registers ---
	receivableSvc := receivable.NewService(register_repo.NewReceivableRepo(txm))
	fundsSvc := funds.NewService(register_repo.NewFundsRepo(txm), accountSvc)
	stockSvc := stock.NewService(register_repo.NewStockRepo(txm))

	postingEngine := posting.NewEngine(receivableSvc, fundsSvc, stockSvc, txm)

	// --- Document services ---
	purchaseSvc := purchase.NewService(document_repo.NewPurchaseRepo(txm), postingEngine, cfg.Numerator, txm)
	saleSvc := sale.NewService(document_repo.NewSaleRepo(txm), postingEngine, cfg.Numerator, txm, stockPointSvc, purchaseSvc)
	paymentSvc := payment.NewService(document_repo.NewPaymentRepo(txm), postingEngine, cfg.Numerator, txm, receivableSvc, customerSvc)
	stockMoveSvc := stockmove.NewService(document_repo.NewStockMoveRepo(txm), postingEngine, cfg.Numerator, txm, stockPointSvc, purchaseSvc)
	fundsMoveSvc := fundsmove.NewService(document_repo.NewFundsMoveRepo(txm), postingEngine, cfg.Numerator, txm)

	remindersSvc := reminders.NewService(document_repo.NewReminderRepo(txm), txm)
	reportsSvc := reports.NewService(report_repo.NewReportRepo(txm))

	// --- Catalog routes ---
	catalogs := rg.Group("/catalogs")
	{
		handlers.NewCustomerHandler(customerSvc).RegisterRoutes(catalogs.Group("/customers"))
		handlers.NewAccountHandler(accountSvc).RegisterRoutes(catalogs.Group("/accounts"))
		handlers.NewStockPointHandler(stockPointSvc).RegisterRoutes(catalogs.Group("/stock-points"))
		handlers.NewProductHandler(productSvc).RegisterRoutes(catalogs.Group("/products"))
	}

	// Typed nil must not become a non-nil interface.
	var auditLog handlers.AuditLogger
	if cfg.Audit != nil {
		auditLog = cfg.Audit
	}

	// --- Document routes ---
	documents := rg.Group("/documents")
	{
		handlers.NewSaleHandler(saleSvc, auditLog).RegisterRoutes(documents.Group("/sales"))
		handlers.NewPaymentHandler(paymentSvc, auditLog).RegisterRoutes(documents.Group("/payments"))
		handlers.NewPurchaseHandler(purchaseSvc, auditLog).RegisterRoutes(documents.Group("/purchases"))
		handlers.NewStockMoveHandler(stockMoveSvc, auditLog).RegisterRoutes(documents.Group("/stock-moves"))
		handlers.NewFundsMoveHandler(fundsMoveSvc, auditLog).RegisterRoutes(documents.Group("/funds-moves"))
	}

	// --- Register routes ---
	registersHandler := handlers.NewRegistersHandler(receivableSvc, fundsSvc, stockSvc)
	registersHandler.RegisterRoutes(rg.Group("/registers"))

	// --- Report routes ---
	handlers.NewReportsHandler(reportsSvc).RegisterRoutes(rg.Group("/reports"))

	// --- Reminder routes ---
	handlers.NewRemindersHandler(remindersSvc).RegisterRoutes(rg.Group("/reminders"))
}
