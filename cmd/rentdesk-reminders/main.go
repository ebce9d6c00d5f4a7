package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"rentdesk/internal/cli"
	"rentdesk/internal/log"
	"rentdesk/internal/metrics"
	"rentdesk/internal/services"
)

func main() {
	once := flag.Bool("once", false, "run a single reminder pass and exit")
	flag.Parse()

	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, log.ComponentReminder)
	logger.Info("Starting rentdesk-reminders")

	ctx := context.Background()
	be := cli.InitBackend(ctx, logger, cfg)
	defer func() {
		if err := be.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	}()

	m := metrics.New(prometheus.DefaultRegisterer)
	service := services.NewReminderService(be.Repository, m, logger)

	if *once {
		stats, err := service.Run(ctx, time.Now())
		fmt.Printf("tenants=%d created=%d existing=%d failed=%d\n", stats.Tenants, stats.Created, stats.Existing, stats.Failed)
		if err != nil {
			logger.Error("Reminder run failed", log.FieldError, err)
			os.Exit(1)
		}
		return
	}

	logger.Info("Reminder scheduler configured",
		"interval", cfg.ReminderInterval,
		"backend", cfg.DataBackend)
	scheduler := services.NewReminderScheduler(service, cfg.ReminderInterval)

	shutdownCtx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := scheduler.Stop(ctx); err != nil {
			logger.Error("Failed to stop reminder scheduler", log.FieldError, err)
		}
	})
	if err := scheduler.Start(shutdownCtx); err != nil {
		logger.Error("Failed to start reminder scheduler", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("rentdesk-reminders stopped")
}
