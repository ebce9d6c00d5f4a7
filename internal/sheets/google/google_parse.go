package google

import (
	"fmt"
	"strings"

	"rentdesk/internal/report"
	"rentdesk/internal/revenue"
)

var ledgerHeader = []any{"Date", "Tenant", "Property", "Unit", "Amount", "Status", "Method", "Reference", "Payment ID"}

// ledgerIDColumn is the column holding the payment ID, used to find rows.
const ledgerIDColumn = "I"

// sheetRange quotes a sheet title for A1 notation.
func sheetRange(title, rng string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'!" + rng
}

// reportSheetTitle is "2025-01 Report", suffixed with the property filter
// when the report is not for all properties.
func reportSheetTitle(r revenue.Report) string {
	title := r.Period.String() + " Report"
	if !r.Filter.IsAll() && r.Filter != "" {
		title += " - " + string(r.Filter)
	}
	return title
}

func ledgerRow(row revenue.ReportRow) []any {
	return []any{
		row.Date.String(),
		report.SafeCell(row.TenantLabel()),
		report.SafeCell(row.PropertyLabel()),
		report.SafeCell(row.Unit),
		row.Amount.Units(),
		string(row.Status),
		string(row.Method),
		report.SafeCell(row.Reference),
		row.PaymentID,
	}
}

// reportValues lays out a report the same way the CSV download does.
func reportValues(r revenue.Report) [][]any {
	values := make([][]any, 0, len(r.Rows)+len(r.ByProperty)+6)
	values = append(values, []any{"Tenant", "Property", "Unit", "Amount", "Date", "Status"})
	for _, row := range r.Rows {
		values = append(values, []any{
			report.SafeCell(row.TenantLabel()), report.SafeCell(row.PropertyLabel()), report.SafeCell(row.Unit),
			row.Amount.Units(), row.Date.String(), string(row.Status),
		})
	}
	values = append(values, []any{}, []any{"Property", "Revenue"})
	for _, p := range r.ByProperty {
		values = append(values, []any{report.SafeCell(p.Label()), p.Amount.Units()})
	}
	values = append(values,
		[]any{},
		[]any{"Total Revenue", r.PeriodTotal.Units()},
		[]any{"All-time Revenue", r.AllTimeTotal.Units()},
	)
	return values
}

// findPaymentRow returns the 1-based row whose first cell equals id, or 0.
// values is the ID column as returned by the Sheets API.
func findPaymentRow(values [][]any, id string) int {
	for i, row := range values {
		if len(row) == 0 {
			continue
		}
		if strings.TrimSpace(fmt.Sprint(row[0])) == id {
			return i + 1
		}
	}
	return 0
}
