package report

import (
	"encoding/csv"
	"io"

	"rentdesk/internal/revenue"
)

var csvHeader = []string{"Tenant", "Property", "Unit", "Amount", "Date", "Status"}

// RenderCSV writes one line per report row, a blank line, the per-property
// summary and the totals. Amounts are plain decimals in KSH; text cells go
// through SafeCell.
func RenderCSV(w io.Writer, r revenue.Report) error {
	cw := csv.NewWriter(w)
	records := make([][]string, 0, len(r.Rows)+len(r.ByProperty)+6)
	records = append(records, csvHeader)
	for _, row := range r.Rows {
		records = append(records, []string{
			SafeCell(row.TenantLabel()),
			SafeCell(row.PropertyLabel()),
			SafeCell(row.Unit),
			row.Amount.String(),
			row.Date.String(),
			string(row.Status),
		})
	}

	records = append(records, []string{}, []string{"Property", "Revenue"})
	for _, p := range r.ByProperty {
		records = append(records, []string{SafeCell(p.Label()), p.Amount.String()})
	}
	records = append(records,
		[]string{},
		[]string{"Total Revenue", r.PeriodTotal.String()},
		[]string{"All-time Revenue", r.AllTimeTotal.String()},
	)
	return cw.WriteAll(records)
}
