package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"rentdesk/internal/auth"
	"rentdesk/internal/core"
	"rentdesk/internal/log"
	"rentdesk/internal/report"
	"rentdesk/internal/services"
	"rentdesk/internal/sheets"
	"rentdesk/internal/store"
)

const maxBodyBytes = 1 << 20

var (
	errBadRequest      = errors.New("malformed request")
	errUnknownProperty = errors.New("unknown property")
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest), errors.Is(err, report.ErrUnknownFormat):
		return http.StatusBadRequest
	case core.IsValidationError(err), errors.Is(err, services.ErrUnknownTenant), errors.Is(err, errUnknownProperty):
		return http.StatusUnprocessableEntity
	case errors.Is(err, auth.ErrMissingToken), errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, auth.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, sheets.ErrNotConfigured):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// fail writes err with its mapped status. Server errors are logged and their
// detail withheld from the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.NewStructuredLogger(log.FromContext(r.Context())).
			LogError(r.Context(), "Request failed", err, log.ComponentHTTP, op, nil)
		if status == http.StatusInternalServerError {
			err = errors.New("internal server error")
		}
	}
	writeError(w, status, err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// decodeJSON reads one JSON object from the request body into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// sanitizeInput drops control characters other than tab and newlines, and
// trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s))
}

// claimsTenant returns the tenant ID of a tenant session.
func claimsTenant(r *http.Request) (string, error) {
	c, ok := auth.FromContext(r.Context())
	if !ok || c.TenantID == "" {
		return "", auth.ErrForbidden
	}
	return c.TenantID, nil
}
