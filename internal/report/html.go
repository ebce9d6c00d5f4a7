package report

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"rentdesk/internal/core"
	"rentdesk/internal/revenue"
)

const htmlTemplate = "report.html"

type (
	summaryLine struct {
		Name   string
		Amount string
	}

	rowView struct {
		Tenant      string
		Property    string
		Unit        string
		Amount      string
		Date        string
		Status      string
		StatusClass string
	}

	htmlView struct {
		Period        core.Period
		PropertyLabel string
		GeneratedAt   string
		Summary       []summaryLine
		Rows          []rowView
		PeriodTotal   string
		AllTimeTotal  string
	}
)

// Renderer holds the parsed HTML template. It is safe for concurrent use.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses templates/report.html from fsys (web.TemplatesFS).
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	t, err := template.ParseFS(fsys, "templates/"+htmlTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse report template: %w", err)
	}
	return &Renderer{tmpl: t}, nil
}

// Render writes r in format f.
func (rd *Renderer) Render(w io.Writer, f Format, r revenue.Report) error {
	switch f {
	case FormatCSV:
		return RenderCSV(w, r)
	case FormatHTML:
		return rd.RenderHTML(w, r)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

// RenderHTML writes the printable report document.
func (rd *Renderer) RenderHTML(w io.Writer, r revenue.Report) error {
	return rd.tmpl.ExecuteTemplate(w, htmlTemplate, newHTMLView(r))
}

func newHTMLView(r revenue.Report) htmlView {
	v := htmlView{
		Period:        r.Period,
		PropertyLabel: propertyLabel(r),
		GeneratedAt:   r.GeneratedAt.Format("Jan 02, 2006 15:04"),
		Summary:       make([]summaryLine, 0, len(r.ByProperty)),
		Rows:          make([]rowView, 0, len(r.Rows)),
		PeriodTotal:   r.PeriodTotal.FormatKSH(),
		AllTimeTotal:  r.AllTimeTotal.FormatKSH(),
	}
	for _, p := range r.ByProperty {
		v.Summary = append(v.Summary, summaryLine{Name: p.Label(), Amount: p.Amount.FormatKSH()})
	}
	for _, row := range r.Rows {
		v.Rows = append(v.Rows, rowView{
			Tenant:      row.TenantLabel(),
			Property:    row.PropertyLabel(),
			Unit:        row.Unit,
			Amount:      row.Amount.FormatKSH(),
			Date:        row.Date.Display(),
			Status:      row.StatusLabel(),
			StatusClass: string(row.Status),
		})
	}
	return v
}
