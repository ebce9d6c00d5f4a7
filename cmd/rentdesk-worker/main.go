package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"rentdesk/internal/cli"
	"rentdesk/internal/core"
	"rentdesk/internal/log"
	"rentdesk/internal/metrics"
	"rentdesk/internal/worker"
)

func main() {
	backfill := flag.String("backfill", "", "export every payment of `YYYY-MM` and exit")
	metricsAddr := flag.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9102")
	flag.Parse()

	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	logger.Info("Starting rentdesk-worker")

	ctx := context.Background()
	be := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	}()

	exporter := cli.InitSheets(ctx, logger, cfg)
	if exporter == nil {
		logger.Error("rentdesk-worker requires GOOGLE_SPREADSHEET_ID")
		os.Exit(1)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	w := worker.NewExportWorker(be.Repository, exporter, m, logger)

	if *backfill != "" {
		if err := runBackfill(ctx, w, *backfill); err != nil {
			logger.Error("Backfill failed", log.FieldError, err, log.FieldPeriod, *backfill)
			os.Exit(1)
		}
		return
	}

	if be.Publisher == nil {
		logger.Error("rentdesk-worker requires a reachable AMQP broker (AMQP_URL)")
		os.Exit(1)
	}

	var metricsSrv *http.Server
	if *metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("GET /metrics", promhttp.Handler())
		metricsSrv = &http.Server{Addr: *metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Metrics server error", log.FieldError, err)
			}
		}()
	}

	shutdownCtx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if metricsSrv != nil {
			_ = metricsSrv.Shutdown(ctx)
		}
	})

	err := be.Publisher.ConsumePaymentRecorded(shutdownCtx, w.HandlePaymentRecorded)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("rentdesk-worker stopped")
}

func runBackfill(ctx context.Context, w *worker.ExportWorker, month string) error {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return fmt.Errorf("invalid -backfill %q: want YYYY-MM", month)
	}
	n, err := w.Backfill(ctx, core.CurrentPeriod(t))
	if err != nil {
		return err
	}
	fmt.Printf("exported %d payments for %s\n", n, month)
	return nil
}
