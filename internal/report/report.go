// Package report renders revenue.Report values as downloadable documents.
package report

import (
	"errors"
	"fmt"
	"strings"

	"rentdesk/internal/revenue"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
)

var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat accepts csv or html, case-insensitively. Empty means csv.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatHTML:
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// SafeCell quotes free text that a spreadsheet would otherwise evaluate as a
// formula. The leading apostrophe makes the cell literal text.
func SafeCell(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}

func (f Format) ContentType() string {
	if f == FormatHTML {
		return "text/html; charset=utf-8"
	}
	return "text/csv; charset=utf-8"
}

// Filename is the attachment name, e.g. payment-report-2025-01-all.csv.
func Filename(r revenue.Report, f Format) string {
	return fmt.Sprintf("payment-report-%s-%s.%s", r.Period, r.Filter, f)
}

// propertyLabel names the filter the report was built with.
func propertyLabel(r revenue.Report) string {
	if r.Filter.IsAll() {
		return "All Properties"
	}
	for _, p := range r.ByProperty {
		if p.PropertyID == string(r.Filter) && p.Name != "" {
			return p.Name
		}
	}
	return string(r.Filter)
}
