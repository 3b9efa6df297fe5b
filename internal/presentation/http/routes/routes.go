package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sangkips/bizdesk-api/internal/config"
	domainRepo "github.com/sangkips/bizdesk-api/internal/domain/repository"
	"github.com/sangkips/bizdesk-api/internal/presentation/http/handler"
	"github.com/sangkips/bizdesk-api/internal/presentation/http/middleware"
	"github.com/sangkips/bizdesk-api/pkg/utils"
)

// Permissions checked per resource group. Administrators hold all of them.
const (
	PermManageLeads      = "manage-leads"
	PermManageClients    = "manage-clients"
	PermManageServices   = "manage-services"
	PermManageQuotations = "manage-quotations"
	PermManageInvoices   = "manage-invoices"
	PermViewDashboard    = "view-dashboard"
	PermUsePrinter       = "use-printer"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Lead      *handler.LeadHandler
	Client    *handler.ClientHandler
	Catalog   *handler.CatalogHandler
	Quotation *handler.QuotationHandler
	Invoice   *handler.InvoiceHandler
	Billing   *handler.BillingHandler
	Stream    *handler.StreamHandler
	Dashboard *handler.DashboardHandler
	Printer   *handler.PrinterHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	// RateLimiter is built from Cfg.RateLimit when nil.
	RateLimiter *middleware.ActorRateLimiter
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		rateLimiter := deps.RateLimiter
		if rateLimiter == nil {
			rateLimiter = middleware.NewActorRateLimiter(RateLimiterConfig(deps.Cfg.RateLimit))
		}
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

// RateLimiterConfig turns "Requests per Duration seconds" into a token bucket.
func RateLimiterConfig(cfg config.RateLimitConfig) middleware.RateLimiterConfig {
	rl := middleware.DefaultRateLimiterConfig()
	if cfg.Requests > 0 && cfg.Duration > 0 {
		rl.RequestsPerSecond = float64(cfg.Requests) / float64(cfg.Duration)
		rl.BurstSize = cfg.Requests
	}
	rl.CleanupInterval = 5 * time.Minute
	rl.EntryTTL = 10 * time.Minute
	return rl
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	idempotent := middleware.IdempotencyRequired(middleware.IdempotencyConfig{
		Repo: deps.IdempotencyRepo,
	})

	// Dashboard
	protected.GET("/dashboard", middleware.RequirePermission(PermViewDashboard), h.Dashboard.GetStats)

	// Live collection snapshots
	protected.GET("/stream/:collection", h.Stream.Stream)

	registerLeadRoutes(protected, h, idempotent)
	registerClientRoutes(protected, h)
	registerServiceRoutes(protected, h)
	registerQuotationRoutes(protected, h, idempotent)
	registerInvoiceRoutes(protected, h, idempotent)
	registerBillingRoutes(protected, h)
	registerPrinterRoutes(protected, h)
}

func registerLeadRoutes(protected *gin.RouterGroup, h *Handlers, idempotent gin.HandlerFunc) {
	leads := protected.Group("/leads")
	leads.Use(middleware.RequirePermission(PermManageLeads))
	{
		leads.GET("", h.Lead.List)
		leads.POST("", h.Lead.Create)
		leads.POST("/duplicates", h.Lead.CheckDuplicate)
		leads.POST("/standardize", middleware.RequireRole(utils.RoleAdmin, utils.RoleSuperAdmin), h.Lead.Standardize)
		leads.GET("/:id", h.Lead.Get)
		leads.PUT("/:id", h.Lead.Update)
		leads.DELETE("/:id", h.Lead.Delete)
		leads.POST("/:id/convert", idempotent, h.Lead.Convert)
	}
}

func registerClientRoutes(protected *gin.RouterGroup, h *Handlers) {
	clients := protected.Group("/clients")
	clients.Use(middleware.RequirePermission(PermManageClients))
	{
		clients.GET("", h.Client.List)
		clients.POST("", h.Client.Create)
		clients.GET("/:id", h.Client.Get)
		clients.PUT("/:id", h.Client.Update)
		clients.DELETE("/:id", h.Client.Delete)
	}
}

func registerServiceRoutes(protected *gin.RouterGroup, h *Handlers) {
	services := protected.Group("/services")
	services.Use(middleware.RequirePermission(PermManageServices))
	{
		services.GET("", h.Catalog.List)
		services.POST("", h.Catalog.Create)
		services.GET("/:id", h.Catalog.Get)
		services.PUT("/:id", h.Catalog.Update)
		services.DELETE("/:id", h.Catalog.Delete)
	}
}

func registerQuotationRoutes(protected *gin.RouterGroup, h *Handlers, idempotent gin.HandlerFunc) {
	quotations := protected.Group("/quotations")
	quotations.Use(middleware.RequirePermission(PermManageQuotations))
	{
		quotations.GET("", h.Quotation.List)
		quotations.POST("", h.Quotation.Create)
		quotations.GET("/:id", h.Quotation.Get)
		quotations.PUT("/:id", h.Quotation.Update)
		quotations.DELETE("/:id", h.Quotation.Delete)
		quotations.PUT("/:id/status", h.Quotation.UpdateStatus)
		quotations.POST("/:id/convert", idempotent, h.Quotation.Convert)
		quotations.GET("/:id/pdf", h.Quotation.PDF)
	}
}

func registerInvoiceRoutes(protected *gin.RouterGroup, h *Handlers, idempotent gin.HandlerFunc) {
	invoices := protected.Group("/invoices")
	invoices.Use(middleware.RequirePermission(PermManageInvoices))
	{
		invoices.GET("", h.Invoice.List)
		invoices.POST("", h.Invoice.Create)
		invoices.GET("/export", h.Invoice.Export)
		invoices.GET("/:id", h.Invoice.Get)
		invoices.PUT("/:id", h.Invoice.Update)
		invoices.DELETE("/:id", h.Invoice.Delete)
		invoices.PUT("/:id/payment-status", h.Invoice.ChangePaymentStatus)
		invoices.GET("/:id/allowed-statuses", h.Invoice.AllowedStatuses)
		invoices.POST("/:id/payments", idempotent, h.Invoice.RecordPayment)
		invoices.GET("/:id/pdf", h.Invoice.PDF)
	}
}

func registerBillingRoutes(protected *gin.RouterGroup, h *Handlers) {
	billing := protected.Group("/billing")
	{
		billing.POST("/totals", h.Billing.Totals)
		billing.GET("/next-number", h.Billing.NextNumber)
	}
}

func registerPrinterRoutes(protected *gin.RouterGroup, h *Handlers) {
	printerGroup := protected.Group("/printer")
	printerGroup.Use(middleware.RequirePermission(PermUsePrinter))
	{
		printerGroup.GET("/status", h.Printer.GetStatus)
		printerGroup.POST("/test", h.Printer.TestPrint)
		printerGroup.POST("/receipt", h.Printer.PrintReceipt)
	}
}
