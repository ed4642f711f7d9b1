// Package app assembles the service: config, database, adapters, services, workers
// and the HTTP server.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	itineraryhandlers "github.com/creator-platform/creator_service/internal/api/handlers/itinerary"
	mediahandlers "github.com/creator-platform/creator_service/internal/api/handlers/media"
	wallethandlers "github.com/creator-platform/creator_service/internal/api/handlers/wallet"
	"github.com/creator-platform/creator_service/internal/api/routes"
	itinerarysvc "github.com/creator-platform/creator_service/internal/domain/services/itinerary"
	mediasvc "github.com/creator-platform/creator_service/internal/domain/services/media"
	walletsvc "github.com/creator-platform/creator_service/internal/domain/services/wallet"
	mediaadapter "github.com/creator-platform/creator_service/internal/infrastructure/adapters/media"
	"github.com/creator-platform/creator_service/internal/infrastructure/adapters/paypal"
	"github.com/creator-platform/creator_service/internal/infrastructure/config"
	"github.com/creator-platform/creator_service/internal/infrastructure/database"
	"github.com/creator-platform/creator_service/internal/infrastructure/repositories"
	"github.com/creator-platform/creator_service/internal/workers/reconciliation"
	"github.com/creator-platform/creator_service/pkg/logger"
	"github.com/creator-platform/creator_service/pkg/metrics"
)

// Application is the composed service
type Application struct {
	cfg    *config.Config
	log    *logger.Logger
	db     *sqlx.DB
	server *http.Server

	reconciliationScheduler *reconciliation.Scheduler
	workerCancel            context.CancelFunc
}

// NewApplication creates an empty application instance
func NewApplication() *Application {
	return &Application{}
}

// Initialize loads config and builds every component
func (app *Application) Initialize() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	app.cfg = cfg

	app.log = logger.New(cfg.LogLevel, cfg.Environment)

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	app.db = db

	if err := database.RunMigrations(cfg.Database.URL); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	minWithdrawal, err := decimal.NewFromString(cfg.Wallet.MinWithdrawal)
	if err != nil {
		return fmt.Errorf("parse minimum withdrawal: %w", err)
	}

	walletRepo := repositories.NewWalletRepository(db)
	withdrawalRepo := repositories.NewWithdrawalRepository(db)
	itineraryRepo := repositories.NewItineraryRepository(db)

	payoutGateway := paypal.NewClient(cfg.PayPal, app.log)
	mediaClient := mediaadapter.NewClient(cfg.Media, app.log)

	walletService := walletsvc.NewService(walletRepo, withdrawalRepo, payoutGateway, minWithdrawal, app.log)
	itineraryService := itinerarysvc.NewService(itineraryRepo, app.log)
	mediaService := mediasvc.NewService(mediaClient, app.log)

	if cfg.Reconciliation.Enabled {
		app.reconciliationScheduler = reconciliation.NewScheduler(
			walletService,
			cfg.Reconciliation.Interval,
			app.log,
		)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := routes.Setup(routes.Handlers{
		Wallet:    wallethandlers.NewHandlers(walletService, app.log),
		Itinerary: itineraryhandlers.NewHandlers(itineraryService, app.log),
		Media:     mediahandlers.NewHandlers(mediaService, app.log),
	})

	app.server = &http.Server{
		Addr:           fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:        router,
		ReadTimeout:    time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	return nil
}

// Start launches the HTTP server and background workers
func (app *Application) Start() error {
	workerCtx, cancel := context.WithCancel(context.Background())
	app.workerCancel = cancel

	if app.reconciliationScheduler != nil {
		if err := app.reconciliationScheduler.Start(workerCtx); err != nil {
			return fmt.Errorf("start reconciliation scheduler: %w", err)
		}
	}

	go app.collectPoolMetrics(workerCtx)

	go func() {
		app.log.Info("Starting server",
			"port", app.cfg.Server.Port,
			"environment", app.cfg.Environment)

		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.log.Fatal("Failed to start server", "error", err)
		}
	}()

	return nil
}

// collectPoolMetrics publishes database pool stats every 30 seconds
func (app *Application) collectPoolMetrics(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := app.db.Stats()
			metrics.DatabaseConnectionsGauge.WithLabelValues("open").Set(float64(stats.OpenConnections))
			metrics.DatabaseConnectionsGauge.WithLabelValues("idle").Set(float64(stats.Idle))
			metrics.DatabaseConnectionsGauge.WithLabelValues("in_use").Set(float64(stats.InUse))
		}
	}
}

// Shutdown stops workers and drains the HTTP server
func (app *Application) Shutdown() error {
	app.log.Info("Shutting down server...")

	if app.reconciliationScheduler != nil {
		if err := app.reconciliationScheduler.Stop(); err != nil {
			app.log.Warn("Error stopping reconciliation scheduler", "error", err)
		}
	}
	if app.workerCancel != nil {
		app.workerCancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if err := app.db.Close(); err != nil {
		app.log.Warn("Error closing database", "error", err)
	}

	app.log.Info("Server exited gracefully")
	return nil
}

// WaitForShutdown blocks until an interrupt signal arrives
func (app *Application) WaitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}
