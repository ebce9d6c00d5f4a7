// Package worker consumes payment.recorded messages and mirrors payments to
// Google Sheets.
package worker

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"rentdesk/internal/amqp"
	"rentdesk/internal/core"
	"rentdesk/internal/log"
	"rentdesk/internal/metrics"
	"rentdesk/internal/revenue"
	"rentdesk/internal/sheets"
	"rentdesk/internal/store"
)

// Repository is what the worker reads to rebuild a report row.
type Repository interface {
	store.LedgerReader
	GetPayment(ctx context.Context, id string) (core.Payment, error)
}

// ExportWorker turns payment IDs into report rows and hands them to a
// PaymentExporter.
type ExportWorker struct {
	repo     Repository
	exporter sheets.PaymentExporter
	metrics  *metrics.Metrics
	logger   *log.Logger
}

func NewExportWorker(repo Repository, exporter sheets.PaymentExporter, m *metrics.Metrics, logger *log.Logger) *ExportWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &ExportWorker{
		repo:     repo,
		exporter: exporter,
		metrics:  m,
		logger:   logger.WithComponent(log.ComponentWorker),
	}
}

// HandlePaymentRecorded processes a single payment.recorded message. A
// payment that no longer exists is logged and acknowledged; any other error
// is returned so the message is requeued.
func (w *ExportWorker) HandlePaymentRecorded(ctx context.Context, msg *amqp.PaymentRecordedMessage) error {
	w.logger.InfoContext(ctx, "Processing payment.recorded message",
		log.FieldPaymentID, msg.PaymentID,
		log.FieldStatus, msg.Status)

	var (
		payment    core.Payment
		tenants    []core.Tenant
		properties []core.Property
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := w.repo.GetPayment(gctx, msg.PaymentID)
		if err != nil {
			return fmt.Errorf("get payment: %w", err)
		}
		payment = p
		return nil
	})
	g.Go(func() error {
		ts, err := w.repo.ListTenants(gctx)
		if err != nil {
			return fmt.Errorf("list tenants: %w", err)
		}
		tenants = ts
		return nil
	})
	g.Go(func() error {
		ps, err := w.repo.ListProperties(gctx)
		if err != nil {
			return fmt.Errorf("list properties: %w", err)
		}
		properties = ps
		return nil
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			w.logger.WarnContext(ctx, "Payment no longer exists, skipping export",
				log.FieldPaymentID, msg.PaymentID)
			return nil
		}
		return err
	}

	row := revenue.BuildReportRow(payment, tenants, properties)
	if _, err := w.export(ctx, row); err != nil {
		return fmt.Errorf("export payment %s: %w", payment.ID, err)
	}
	return nil
}

// Backfill exports every payment dated in period. It recovers from messages
// lost while the worker was down; rows already exported are updated in place.
func (w *ExportWorker) Backfill(ctx context.Context, period core.Period) (int, error) {
	ledger, err := store.LoadLedger(ctx, w.repo)
	if err != nil {
		return 0, fmt.Errorf("load ledger: %w", err)
	}

	payments := revenue.FilterByMonth(ledger.Payments, period, revenue.AllProperties, ledger.Tenants)
	idx := revenue.NewIndex(ledger.Tenants, ledger.Properties)

	w.logger.InfoContext(ctx, "Backfilling payment exports",
		log.FieldPeriod, period.String(),
		"count", len(payments))

	exported := 0
	var errs []error
	for _, p := range payments {
		if err := ctx.Err(); err != nil {
			return exported, err
		}
		if _, err := w.export(ctx, idx.Row(p)); err != nil {
			errs = append(errs, fmt.Errorf("payment %s: %w", p.ID, err))
			continue
		}
		exported++
	}

	w.logger.InfoContext(ctx, "Backfill completed",
		"total", len(payments),
		"exported", exported,
		"errors", len(errs))
	return exported, errors.Join(errs...)
}

func (w *ExportWorker) export(ctx context.Context, row revenue.ReportRow) (string, error) {
	ref, err := w.exporter.AppendPayment(ctx, row)
	w.metrics.Export("payment", err)
	if err != nil {
		log.NewStructuredLogger(w.logger).LogError(ctx, "Payment export failed", err,
			log.ComponentSheets, log.OpExport, log.NewFields().WithPayment(row.PaymentID, "", row.Amount.Cents, string(row.Status)))
		return "", err
	}
	w.logger.InfoContext(ctx, "Payment exported",
		log.FieldPaymentID, row.PaymentID,
		log.FieldSheetsRef, ref)
	return ref, nil
}
