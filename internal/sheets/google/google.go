// Package google exports payments and reports to a Google spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"rentdesk/internal/log"
	"rentdesk/internal/revenue"
	ports "rentdesk/internal/sheets"
)

var _ ports.Exporter = (*Client)(nil)

// Config selects the spreadsheet and the service account used to reach it.
type Config struct {
	SpreadsheetID   string
	LedgerSheet     string
	CredentialsJSON string
	CredentialsFile string
}

// valuesAPI is the slice of the Sheets API the client uses.
type valuesAPI interface {
	Get(ctx context.Context, rng string) ([][]any, error)
	Update(ctx context.Context, rng string, values [][]any) error
	Clear(ctx context.Context, rng string) error
	EnsureSheet(ctx context.Context, title string) error
}

type Client struct {
	api         valuesAPI
	ledgerSheet string
	logger      *log.Logger
}

// New creates a client authenticated with service-account credentials.
func New(ctx context.Context, cfg Config, logger *log.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, ports.ErrNotConfigured
	}
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentSheets)

	svc, err := newSheetsService(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(&serviceAPI{svc: svc, spreadsheetID: cfg.SpreadsheetID}, cfg.LedgerSheet, logger), nil
}

func newClient(api valuesAPI, ledgerSheet string, logger *log.Logger) *Client {
	if strings.TrimSpace(ledgerSheet) == "" {
		ledgerSheet = "Payments"
	}
	if logger == nil {
		logger = log.Discard()
	}
	return &Client{api: api, ledgerSheet: ledgerSheet, logger: logger}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, cfg Config, logger *log.Logger) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.CredentialsJSON) != "":
		logger.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(cfg.CredentialsJSON)
	case strings.TrimSpace(cfg.CredentialsFile) != "":
		logger.InfoContext(ctx, "Reading credentials from file", "path", cfg.CredentialsFile)
		b, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	logger.InfoContext(ctx, "Google Sheets service created successfully")
	return service, nil
}

// AppendPayment writes row to the ledger sheet. A payment already present
// (matched on its ID column) is overwritten, so redelivered messages and
// status changes never duplicate rows.
func (c *Client) AppendPayment(ctx context.Context, row revenue.ReportRow) (string, error) {
	if row.PaymentID == "" {
		return "", errors.New("payment row without id")
	}

	ids, err := c.api.Get(ctx, sheetRange(c.ledgerSheet, ledgerIDColumn+":"+ledgerIDColumn))
	if err != nil {
		return "", fmt.Errorf("failed to read ledger ids from %s: %w", c.ledgerSheet, err)
	}

	target := findPaymentRow(ids, row.PaymentID)
	if target == 0 {
		target = len(ids) + 1
		if target == 1 {
			if err := c.api.Update(ctx, sheetRange(c.ledgerSheet, "A1:I1"), [][]any{ledgerHeader}); err != nil {
				return "", fmt.Errorf("failed to write ledger header: %w", err)
			}
			target = 2
		}
	}

	ref := sheetRange(c.ledgerSheet, fmt.Sprintf("A%d:I%d", target, target))
	if err := c.api.Update(ctx, ref, [][]any{ledgerRow(row)}); err != nil {
		return "", fmt.Errorf("failed to update %s: %w", ref, err)
	}
	c.logger.InfoContext(ctx, "Payment exported",
		log.FieldPaymentID, row.PaymentID,
		log.FieldSheetsRef, ref)
	return ref, nil
}

// ExportReport writes r to its period sheet, creating the sheet on first use.
func (c *Client) ExportReport(ctx context.Context, r revenue.Report) (string, error) {
	title := reportSheetTitle(r)
	if err := c.api.EnsureSheet(ctx, title); err != nil {
		return "", fmt.Errorf("ensure sheet %q: %w", title, err)
	}
	if err := c.api.Clear(ctx, sheetRange(title, "A:F")); err != nil {
		return "", fmt.Errorf("clear sheet %q: %w", title, err)
	}

	values := reportValues(r)
	ref := sheetRange(title, fmt.Sprintf("A1:F%d", len(values)))
	if err := c.api.Update(ctx, ref, values); err != nil {
		return "", fmt.Errorf("failed to update %s: %w", ref, err)
	}
	c.logger.InfoContext(ctx, "Report exported",
		log.FieldPeriod, r.Period.String(),
		log.FieldProperty, string(r.Filter),
		log.FieldRows, len(r.Rows),
		log.FieldSheetsRef, ref)
	return ref, nil
}

// serviceAPI implements valuesAPI over the generated Sheets client.
type serviceAPI struct {
	svc           *gsheet.Service
	spreadsheetID string
}

func (s *serviceAPI) Get(ctx context.Context, rng string) ([][]any, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (s *serviceAPI) Update(ctx context.Context, rng string, values [][]any) error {
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, &gsheet.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	return err
}

func (s *serviceAPI) Clear(ctx context.Context, rng string) error {
	_, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (s *serviceAPI) EnsureSheet(ctx context.Context, title string) error {
	ss, err := s.svc.Spreadsheets.Get(s.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return err
	}
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			return nil
		}
	}
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: title}},
	}}}
	_, err = s.svc.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
	return err
}
