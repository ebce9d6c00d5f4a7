package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"rentdesk/internal/core"
	"rentdesk/internal/revenue"
	"rentdesk/web"
)

func sampleReport(filter revenue.PropertyFilter) revenue.Report {
	properties := []core.Property{
		{ID: "1", Name: "Sunset Apartments", Units: 24},
		{ID: "2", Name: "Ocean View Complex", Units: 16},
	}
	tenants := []core.Tenant{
		{ID: "1", PropertyID: "1", Name: "John Doe", Unit: "101"},
		{ID: "2", PropertyID: "1", Name: "Jane Smith", Unit: "102"},
	}
	payments := []core.Payment{
		{ID: "p1", TenantID: "1", Amount: core.Money{Cents: 1500000}, Date: core.NewDate(2025, 1, 1), Status: core.StatusCompleted},
		{ID: "p2", TenantID: "2", Amount: core.Money{Cents: 1800000}, Date: core.NewDate(2025, 1, 1), Status: core.StatusPending},
		{ID: "p3", TenantID: "ghost", Amount: core.Money{Cents: 50000}, Date: core.NewDate(2025, 1, 15), Status: core.StatusFailed},
		{ID: "p4", TenantID: "1", Amount: core.Money{Cents: 1500000}, Date: core.NewDate(2025, 2, 1), Status: core.StatusCompleted},
	}
	return revenue.BuildReport(revenue.ReportInput{
		Period:      core.Period{Year: 2025, Month: time.January},
		Filter:      filter,
		Payments:    payments,
		Tenants:     tenants,
		Properties:  properties,
		GeneratedAt: time.Date(2025, 2, 2, 10, 30, 0, 0, time.UTC),
	})
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatCSV, false},
		{"csv", FormatCSV, false},
		{" HTML ", FormatHTML, false},
		{"pdf", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Fatalf("ParseFormat(%q) error = %v", tt.in, err)
		}
		if err != nil && !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("ParseFormat(%q) error should wrap ErrUnknownFormat", tt.in)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderCSV(&buf, sampleReport(revenue.AllProperties)); err != nil {
		t.Fatalf("RenderCSV() error = %v", err)
	}
	want := strings.Join([]string{
		"Tenant,Property,Unit,Amount,Date,Status",
		"John Doe,Sunset Apartments,101,15000.00,2025-01-01,completed",
		"Jane Smith,Sunset Apartments,102,18000.00,2025-01-01,pending",
		"Unknown,Unknown,,500.00,2025-01-15,failed",
		"",
		"Property,Revenue",
		"Sunset Apartments,33000.00",
		"",
		"Total Revenue,33500.00",
		"All-time Revenue,48500.00",
		"",
	}, "\n")
	if got := buf.String(); got != want {
		t.Errorf("RenderCSV() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderCSV_EmptyPeriod(t *testing.T) {
	r := revenue.BuildReport(revenue.ReportInput{Period: core.Period{Year: 2030, Month: time.March}})
	var buf bytes.Buffer
	if err := RenderCSV(&buf, r); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "Tenant,Property,Unit,Amount,Date,Status\n\nProperty,Revenue\n") {
		t.Errorf("unexpected output %q", buf.String())
	}
	if !strings.Contains(buf.String(), "Total Revenue,0.00") {
		t.Errorf("missing zero total in %q", buf.String())
	}
}

func TestRenderHTML(t *testing.T) {
	rd, err := NewRenderer(web.TemplatesFS)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	var buf bytes.Buffer
	if err := rd.Render(&buf, FormatHTML, sampleReport(revenue.AllProperties)); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"<h1>Payment Report</h1>",
		"Period: January 2025",
		"Property: All Properties",
		"Generated on: Feb 02, 2025 10:30",
		"Sunset Apartments",
		"KSH 33,000",
		"Total Revenue: KSH 33,500",
		"All-time Revenue: KSH 48,500",
		"<td>Unknown</td>",
		`class="status-pending">PENDING`,
		"Jan 15, 2025",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("HTML output missing %q", want)
		}
	}
}

func TestRenderHTML_FilteredProperty(t *testing.T) {
	rd, err := NewRenderer(web.TemplatesFS)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := rd.RenderHTML(&buf, sampleReport("1")); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "Property: Sunset Apartments") {
		t.Error("filtered report should name the property")
	}
	if strings.Contains(out, "<td>Unknown</td>") {
		t.Error("unresolved tenants are excluded under a property filter")
	}

	buf.Reset()
	if err := rd.RenderHTML(&buf, sampleReport("2")); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No payments for this period") {
		t.Error("empty report should say so")
	}
}

func TestNewRenderer_MissingTemplate(t *testing.T) {
	if _, err := NewRenderer(fstest.MapFS{}); err == nil {
		t.Fatal("expected error for missing template")
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(sampleReport(revenue.AllProperties), FormatCSV); got != "payment-report-2025-01-all.csv" {
		t.Errorf("Filename() = %q", got)
	}
	if FormatHTML.ContentType() != "text/html; charset=utf-8" {
		t.Error("unexpected html content type")
	}
}

func TestSafeCell(t *testing.T) {
	tests := []struct{ in, want string }{
		{"John Doe", "John Doe"},
		{"", ""},
		{"=HYPERLINK(\"http://x\")", "'=HYPERLINK(\"http://x\")"},
		{"+254700000000", "'+254700000000"},
		{"-1", "'-1"},
		{"@SUM(A1)", "'@SUM(A1)"},
		{"\t=1", "'\t=1"},
		{"A=B", "A=B"},
	}
	for _, tt := range tests {
		if got := SafeCell(tt.in); got != tt.want {
			t.Errorf("SafeCell(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRenderCSVQuotesFormulaNames(t *testing.T) {
	r := revenue.BuildReport(revenue.ReportInput{
		Period:     core.Period{Year: 2025, Month: time.January},
		Filter:     revenue.AllProperties,
		Properties: []core.Property{{ID: "1", Name: "@Towers", Units: 4}},
		Tenants:    []core.Tenant{{ID: "1", PropertyID: "1", Name: "=1+1", Unit: "-3"}},
		Payments: []core.Payment{
			{ID: "p1", TenantID: "1", Amount: core.Money{Cents: 100}, Date: core.NewDate(2025, 1, 3), Status: core.StatusCompleted},
		},
	})
	var buf bytes.Buffer
	if err := RenderCSV(&buf, r); err != nil {
		t.Fatalf("RenderCSV: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "'=1+1,'@Towers,'-3,1.00") {
		t.Errorf("row cells not quoted:\n%s", out)
	}
	if !strings.Contains(out, "'@Towers,1.00") {
		t.Errorf("summary label not quoted:\n%s", out)
	}
}
