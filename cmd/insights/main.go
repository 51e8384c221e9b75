package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chatservice "github.com/boddenberg/spending-insights-go/internal/chat/service"
	"github.com/boddenberg/spending-insights-go/internal/config"
	"github.com/boddenberg/spending-insights-go/internal/handler"
	"github.com/boddenberg/spending-insights-go/internal/infra/cache"
	"github.com/boddenberg/spending-insights-go/internal/infra/observability"
	"github.com/boddenberg/spending-insights-go/internal/infra/resilience"
	"github.com/boddenberg/spending-insights-go/internal/infra/source"
	"github.com/boddenberg/spending-insights-go/internal/ledger"
	"github.com/boddenberg/spending-insights-go/internal/port"
	"github.com/boddenberg/spending-insights-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	current, previous, _ := cfg.Periods()
	schema, _ := cfg.Schema()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.String("ledger_source", cfg.LedgerSource),
		zap.Stringer("current_period", current),
		zap.Stringer("previous_period", previous),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("source_cache_ttl", cfg.SourceCacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Bool("admin_auth", cfg.AdminPasswordHash != ""),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "spending-insights")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Engine ---
	engine := ledger.NewEngine(ledger.Options{
		Current:  current,
		Previous: previous,
		Schema:   schema,
	})

	// --- Source ---
	sourceCache := cache.New[string](cfg.SourceCacheTTL)
	defer sourceCache.Close()

	var ledgerSource port.LedgerSource
	if cfg.LedgerSource != "" {
		ledgerSource, err = source.New(cfg.LedgerSource, source.Options{
			HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
			Resilience: resilience.Config{
				MaxRetries:     cfg.MaxRetries,
				InitialBackoff: cfg.InitialBackoff,
			},
			Cache:   sourceCache,
			Metrics: metrics,
		})
		if err != nil {
			logger.Fatal("invalid ledger source", zap.Error(err))
		}
	} else {
		logger.Warn("LEDGER_SOURCE not set, starting empty; POST /v1/ledger to load")
	}

	// --- Services ---
	insightsSvc := service.NewInsightsService(engine, ledgerSource, metrics, logger)
	authSvc := service.NewAuthService(cfg.AdminPasswordHash, cfg.JWTSecret, cfg.JWTAccessTTL, logger)
	if !authSvc.Enabled() {
		logger.Warn("ADMIN_PASSWORD_HASH not set, ledger write routes are unauthenticated")
	}
	chatSvc := chatservice.NewChatService(insightsSvc, chatservice.DefaultStrategies(insightsSvc), logger)

	// --- Initial load ---
	// A failed load leaves the engine empty; /readyz reports 503 until a
	// later reload succeeds.
	if ledgerSource != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*cfg.HTTPTimeout)
		if _, err := insightsSvc.Reload(ctx, false); err != nil {
			logger.Error("initial ledger load failed", zap.Error(err))
		}
		cancel()
	}

	// --- Router ---
	router := handler.NewRouter(insightsSvc, authSvc, chatSvc, metrics, logger, cfg.CORSAllowedOrigins)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
