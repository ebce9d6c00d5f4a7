package http

import (
	"net/http"
	"strings"

	"rentdesk/internal/core"
)

// handleListPayments lists payments in recording order, optionally for one
// tenant.
func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	var (
		payments []core.Payment
		err      error
	)
	if tenantID := sanitizeInput(r.URL.Query().Get("tenant_id")); tenantID != "" {
		payments, err = s.repo.ListTenantPayments(r.Context(), tenantID)
	} else {
		payments, err = s.repo.ListPayments(r.Context())
	}
	if err != nil {
		s.fail(w, r, "list_payments", err)
		return
	}
	writePayments(w, payments)
}

func (s *Server) handleRecordPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, "record_payment", err)
		return
	}
	p, err := req.payment()
	if err != nil {
		s.fail(w, r, "record_payment", err)
		return
	}
	p, err = s.payments.Record(r.Context(), p)
	if err != nil {
		s.fail(w, r, "record_payment", err)
		return
	}
	s.changed()
	writeJSON(w, http.StatusCreated, paymentViewOf(p))
}

func (s *Server) handleUpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, "update_payment_status", err)
		return
	}
	status := core.PaymentStatus(strings.ToLower(sanitizeInput(req.Status)))
	p, err := s.payments.UpdateStatus(r.Context(), r.PathValue("id"), status)
	if err != nil {
		s.fail(w, r, "update_payment_status", err)
		return
	}
	s.changed()
	writeJSON(w, http.StatusOK, paymentViewOf(p))
}

func writePayments(w http.ResponseWriter, payments []core.Payment) {
	out := make([]paymentView, 0, len(payments))
	for _, p := range payments {
		out = append(out, paymentViewOf(p))
	}
	writeJSON(w, http.StatusOK, out)
}
