package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"rentdesk/internal/log"
	"rentdesk/internal/report"
	"rentdesk/internal/revenue"
	"rentdesk/internal/sheets"
	"rentdesk/internal/store"
)

// buildReport loads the ledger and aggregates the month selected by the
// query parameters.
func (s *Server) buildReport(r *http.Request) (revenue.Report, error) {
	q := r.URL.Query()
	period, err := ParsePeriod(q, s.now())
	if err != nil {
		return revenue.Report{}, err
	}
	ledger, err := store.LoadLedger(r.Context(), s.repo)
	if err != nil {
		return revenue.Report{}, fmt.Errorf("load ledger: %w", err)
	}
	return revenue.BuildReport(revenue.ReportInput{
		Period:      period,
		Filter:      parseFilter(q),
		Payments:    ledger.Payments,
		Tenants:     ledger.Tenants,
		Properties:  ledger.Properties,
		GeneratedAt: s.now(),
	}), nil
}

func (s *Server) handleRevenue(w http.ResponseWriter, r *http.Request) {
	rep, err := s.buildReport(r)
	if err != nil {
		s.fail(w, r, "revenue", err)
		return
	}
	writeJSON(w, http.StatusOK, reportViewOf(rep))
}

// reportCacheKey identifies a rendered document. The data version makes
// entries from before the last mutation unreachable.
func (s *Server) reportCacheKey(r *http.Request, f report.Format) (string, error) {
	q := r.URL.Query()
	period, err := ParsePeriod(q, s.now())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s|%s|%s|%d", period, parseFilter(q), f, s.version.Load()), nil
}

// handlePaymentReport serves the month's payments as a CSV or HTML download.
func (s *Server) handlePaymentReport(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		s.fail(w, r, "report", err)
		return
	}
	key, err := s.reportCacheKey(r, format)
	if err != nil {
		s.fail(w, r, "report", err)
		return
	}

	doc, hit := s.reportCache.Get(key)
	s.metrics.ReportCache(hit)
	if !hit {
		rep, err := s.buildReport(r)
		if err != nil {
			s.fail(w, r, "report", err)
			return
		}
		var buf bytes.Buffer
		if err := s.renderer.Render(&buf, format, rep); err != nil {
			s.fail(w, r, "report", fmt.Errorf("render %s report: %w", format, err))
			return
		}
		doc = renderedReport{
			Body:        buf.Bytes(),
			ContentType: format.ContentType(),
			Filename:    report.Filename(rep, format),
		}
		s.reportCache.Set(key, doc)
		s.metrics.ReportRendered(string(format))
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogReportRendered(r.Context(), rep.Period.String(), string(rep.Filter), string(format), len(rep.Rows))
	}

	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Body)
}

// handleExportReport writes the month's report to its own spreadsheet tab.
func (s *Server) handleExportReport(w http.ResponseWriter, r *http.Request) {
	if s.exporter == nil {
		s.fail(w, r, "export_report", sheets.ErrNotConfigured)
		return
	}
	rep, err := s.buildReport(r)
	if err != nil {
		s.fail(w, r, "export_report", err)
		return
	}
	ref, err := s.exporter.ExportReport(r.Context(), rep)
	s.metrics.Export("report", err)
	if err != nil {
		s.fail(w, r, "export_report", fmt.Errorf("export report: %w", err))
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Report exported",
		log.FieldPeriod, rep.Period.String(),
		log.FieldProperty, string(rep.Filter),
		log.FieldSheetsRef, ref)
	writeJSON(w, http.StatusOK, map[string]any{
		"ref":    ref,
		"period": rep.Period.String(),
		"rows":   len(rep.Rows),
	})
}
