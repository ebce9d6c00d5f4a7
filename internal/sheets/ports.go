// Package sheets declares the outbound ports for spreadsheet exports.
package sheets

import (
	"context"
	"errors"

	"rentdesk/internal/revenue"
)

// ErrNotConfigured is returned when no spreadsheet is configured.
var ErrNotConfigured = errors.New("google sheets export not configured")

type (
	// PaymentExporter writes one payment to the ledger sheet. Exporting the
	// same payment again updates its row in place.
	PaymentExporter interface {
		AppendPayment(ctx context.Context, row revenue.ReportRow) (rowRef string, err error)
	}

	// ReportExporter writes a full monthly report to its own sheet,
	// replacing any previous export of the same period and filter.
	ReportExporter interface {
		ExportReport(ctx context.Context, r revenue.Report) (rangeRef string, err error)
	}

	Exporter interface {
		PaymentExporter
		ReportExporter
	}
)
