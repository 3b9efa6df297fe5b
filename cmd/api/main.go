package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/bizdesk-api/internal/application/service"
	"github.com/sangkips/bizdesk-api/internal/config"
	"github.com/sangkips/bizdesk-api/internal/domain/entity"
	"github.com/sangkips/bizdesk-api/internal/infrastructure/seed"
	"github.com/sangkips/bizdesk-api/internal/infrastructure/store"
	"github.com/sangkips/bizdesk-api/internal/observability/metrics"
	"github.com/sangkips/bizdesk-api/internal/presentation/http/handler"
	"github.com/sangkips/bizdesk-api/internal/presentation/http/middleware"
	"github.com/sangkips/bizdesk-api/internal/presentation/http/routes"
	"github.com/sangkips/bizdesk-api/pkg/events"
	"github.com/sangkips/bizdesk-api/pkg/printer"
	"github.com/sangkips/bizdesk-api/pkg/utils"
)

const idempotencyCleanupInterval = time.Hour

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics.Init()

	// ctx is cancelled on shutdown and stops the background loops
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Open the document store
	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Store.Driver, err)
	}
	defer func() {
		if st.Close != nil {
			if err := st.Close(); err != nil {
				log.Printf("Warning: failed to close store: %v", err)
			}
		}
	}()

	// Seed the services catalog
	items, err := seed.LoadCatalogFile(cfg.Store.CatalogSeedFile)
	if err != nil {
		log.Printf("Warning: Failed to read catalog seed: %v", err)
	} else if n, err := seed.SeedCatalog(ctx, st.Services, items); err != nil {
		log.Printf("Warning: Failed to seed catalog: %v", err)
	} else if n > 0 {
		log.Printf("Seeded %d catalog services", n)
	}

	publisher := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer publisher.Close()

	// Tokens are issued by the identity provider; the expiry only applies to
	// locally minted development tokens.
	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, time.Hour)

	// All dates, numbers and dashboard buckets use the business timezone
	loc := cfg.App.Location()
	clock := func() time.Time { return time.Now().In(loc) }

	billingOpts := service.BillingOptions{
		InvoicePrefix:   cfg.Billing.InvoicePrefix,
		QuotationPrefix: cfg.Billing.QuotationPrefix,
		DueDays:         cfg.Billing.InvoiceDueDays,
	}
	header := entity.ReceiptHeader{
		BusinessName: cfg.Business.Name,
		Address:      cfg.Business.Address,
		Phone:        cfg.Business.Phone,
	}
	if header.BusinessName == "" {
		header.BusinessName = cfg.App.Name
	}

	// Initialize services
	leadService := service.NewLeadService(st.Leads, st.Clients, publisher).WithClock(clock)
	clientService := service.NewClientService(st.Clients, publisher)
	catalogService := service.NewCatalogService(st.Services, publisher)
	quotationService := service.NewQuotationService(st.Quotations, st.Clients, st.Invoices, publisher, billingOpts).WithClock(clock)
	invoiceService := service.NewInvoiceService(st.Invoices, st.Clients, publisher, billingOpts).WithClock(clock)
	dashboardService := service.NewDashboardService(st.Leads, st.Clients, st.Quotations, st.Invoices).WithClock(clock)
	exportService := service.NewExportService(invoiceService, st.Quotations, header)

	// Initialize thermal printer
	thermalPrinter, err := printer.New(printer.Config{
		Type:    cfg.Printer.Type,
		USBPath: cfg.Printer.USBPath,
		Address: cfg.Printer.Address,
	})
	if err != nil {
		log.Printf("Warning: Failed to initialize printer: %v", err)
		thermalPrinter = printer.NullPrinter{}
	}
	defer thermalPrinter.Close()
	printerService := service.NewPrinterService(thermalPrinter, st.Invoices, st.Quotations, header, cfg.Printer.Type)

	// Initialize handlers
	handlers := &routes.Handlers{
		Lead:      handler.NewLeadHandler(leadService),
		Client:    handler.NewClientHandler(clientService),
		Catalog:   handler.NewCatalogHandler(catalogService),
		Quotation: handler.NewQuotationHandler(quotationService, exportService),
		Invoice:   handler.NewInvoiceHandler(invoiceService, exportService),
		Billing:   handler.NewBillingHandler(quotationService),
		Stream:    handler.NewStreamHandler(st),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Printer:   handler.NewPrinterHandler(printerService),
	}

	rateLimiter := middleware.NewActorRateLimiter(routes.RateLimiterConfig(cfg.RateLimit))
	defer rateLimiter.Stop()

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: st.Idempotency,
		RateLimiter:     rateLimiter,
	})

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		invoiceService.StartOverdueSweep(ctx, cfg.Billing.OverdueSweepInterval)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(idempotencyCleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := st.Idempotency.DeleteExpired(ctx); err != nil {
					log.Printf("Warning: Failed to delete expired idempotency keys: %v", err)
				}
			}
		}
	}()

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Request contexts end with ctx so open event streams close on shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	srv.RegisterOnShutdown(cancel)

	go func() {
		log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
		log.Printf("Environment: %s, store: %s", cfg.App.Env, cfg.Store.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	received := <-stop
	log.Printf("Received signal: %v. Shutting down...", received)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Warning: server shutdown: %v", err)
		_ = srv.Close()
	}

	wg.Wait()
	log.Println("Server stopped")
}
