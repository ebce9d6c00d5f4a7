package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"rentdesk/internal/auth"
	"rentdesk/internal/cache"
	"rentdesk/internal/cli"
	apphttp "rentdesk/internal/http"
	"rentdesk/internal/log"
	"rentdesk/internal/metrics"
	"rentdesk/internal/middleware/ratelimit"
	"rentdesk/internal/services"
	"rentdesk/internal/sheets"
)

func main() {
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentApp)

	ctx := context.Background()
	be := cli.InitBackend(ctx, logger, cfg)

	m := metrics.New(prometheus.DefaultRegisterer)

	var publisher services.Publisher
	if be.Publisher != nil {
		publisher = be.Publisher
	}
	payments := services.NewPaymentService(be.Repository, publisher, m, logger)

	var exporter sheets.ReportExporter
	if client := cli.InitSheets(ctx, logger, cfg); client != nil {
		exporter = client
	}

	rl := ratelimit.DefaultConfig()
	rl.RequestsPerSecond = cfg.RateLimitPerSecond
	rl.Burst = cfg.RateLimitBurst

	srv, err := apphttp.NewServer(apphttp.Config{
		Addr:            ":" + cfg.Port,
		RateLimit:       rl,
		ReportCacheSize: cfg.ReportCacheSize,
		ReportCacheTTL:  cfg.ReportCacheTTL,
		HSTSMaxAge:      cfg.HSTSMaxAge,
	}, apphttp.Deps{
		Repo:     be.Repository,
		Auth:     auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL),
		Payments: payments,
		Exporter: exporter,
		Metrics:  m,
		Gatherer: prometheus.DefaultGatherer,
		Logger:   logger,
	})
	if err != nil {
		logger.Error("Failed to build HTTP server", log.FieldError, err)
		os.Exit(1)
	}

	caches := cache.NewManager(logger)
	for _, c := range srv.Caches() {
		caches.Register(c)
	}
	caches.Start(ctx, time.Minute)

	shutdownCtx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		caches.Stop()
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	logger.Info("Starting rentdesk server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"amqp", be.Publisher != nil,
		"sheets", exporter != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
