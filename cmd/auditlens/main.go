package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/auditlens/auditlens-go/internal/config"
	"github.com/auditlens/auditlens-go/internal/domain"
	"github.com/auditlens/auditlens-go/internal/handler"
	"github.com/auditlens/auditlens-go/internal/infra/cache"
	"github.com/auditlens/auditlens-go/internal/infra/client"
	"github.com/auditlens/auditlens-go/internal/infra/observability"
	"github.com/auditlens/auditlens-go/internal/infra/resilience"
	"github.com/auditlens/auditlens-go/internal/infra/storage"
	"github.com/auditlens/auditlens-go/internal/port"
	"github.com/auditlens/auditlens-go/internal/refdata"
	"github.com/auditlens/auditlens-go/internal/service"

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

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Duration("review_retention", cfg.ReviewRetention),
		zap.Bool("auth_disabled", cfg.AuthDisabled),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "auditlens")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Reference table ---
	// Statutory thresholds effective as of process start. Versioned
	// snapshots can be loaded on top when figures change.
	table := refdata.Default(time.Now().UTC())

	// --- Cache ---
	reviewCache := cache.New[*domain.ReviewResult](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	cb := resilience.NewCircuitBreaker("extractor-api")

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	extractor := client.NewExtractorClient(httpClient, cfg.ExtractorAPIURL, cb, resilienceCfg)

	// --- Store ---
	var store port.Store
	if cfg.DatabaseURL != "" {
		pg, err := storage.Connect(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("failed to connect to postgres", zap.Error(err))
		}
		defer pg.Close()
		store = pg
		logger.Info("using postgres store")
	} else {
		store = storage.NewMemory()
		logger.Warn("DATABASE_URL not set, using in-memory store (data is lost on restart)")
	}

	// --- Services ---
	complianceSvc := service.NewCompliance(table, logger)
	validationSvc := service.NewValidation(table, logger)
	reviewSvc := service.NewReview(store, extractor, complianceSvc, validationSvc, reviewCache, metrics, logger)

	// --- Stale review cleanup ---
	purgeCtx, stopPurge := context.WithCancel(context.Background())
	defer stopPurge()
	go purgeStaleReviews(purgeCtx, store, cfg.ReviewRetention, logger)

	// --- Router ---
	router := handler.NewRouter(reviewSvc, metrics, handler.RouterConfig{
		JWTSecret:    cfg.JWTSecret,
		AuthDisabled: cfg.AuthDisabled,
	}, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
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

// purgeStaleReviews drops review results older than the retention window
// once a day. Housekeeping only: profiles and the usage counter are kept.
func purgeStaleReviews(ctx context.Context, store port.Store, retention time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dropped, err := store.PurgeStaleReviews(ctx, retention)
			if err != nil {
				logger.Error("stale review purge failed", zap.Error(err))
				continue
			}
			if dropped > 0 {
				logger.Info("purged stale reviews", zap.Int("dropped", dropped))
			}
		}
	}
}
