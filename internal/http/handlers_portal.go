package http

import (
	"errors"
	"net/http"
	"strings"

	"rentdesk/internal/core"
	"rentdesk/internal/services"
	"rentdesk/internal/store"
)

// Tenant portal. Every handler is scoped to the tenant named in the session
// claims.

type meView struct {
	Tenant              tenantView    `json:"tenant"`
	Property            *propertyView `json:"property"`
	NextDueDate         string        `json:"next_due_date"`
	UnreadNotifications int           `json:"unread_notifications"`
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	tenantID, err := claimsTenant(r)
	if err != nil {
		s.fail(w, r, "me", err)
		return
	}
	t, err := s.repo.GetTenant(r.Context(), tenantID)
	if err != nil {
		s.fail(w, r, "me", err)
		return
	}
	out := meView{
		Tenant:      tenantViewOf(t),
		NextDueDate: services.NextDueDate(t, core.DateOf(s.now())).String(),
	}
	switch p, err := s.repo.GetProperty(r.Context(), t.PropertyID); {
	case err == nil:
		pv := propertyViewOf(p)
		out.Property = &pv
	case !errors.Is(err, store.ErrNotFound):
		s.fail(w, r, "me", err)
		return
	}
	notes, err := s.repo.ListNotifications(r.Context(), tenantID)
	if err != nil {
		s.fail(w, r, "me", err)
		return
	}
	for _, n := range notes {
		if !n.Read {
			out.UnreadNotifications++
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMyPayments(w http.ResponseWriter, r *http.Request) {
	tenantID, err := claimsTenant(r)
	if err != nil {
		s.fail(w, r, "my_payments", err)
		return
	}
	payments, err := s.repo.ListTenantPayments(r.Context(), tenantID)
	if err != nil {
		s.fail(w, r, "my_payments", err)
		return
	}
	writePayments(w, payments)
}

type tenantPaymentRequest struct {
	Amount    amountInput `json:"amount"`
	Method    string      `json:"method"`
	Reference string      `json:"reference"`
}

// handleSubmitPayment records a pending payment the landlord confirms later.
func (s *Server) handleSubmitPayment(w http.ResponseWriter, r *http.Request) {
	tenantID, err := claimsTenant(r)
	if err != nil {
		s.fail(w, r, "submit_payment", err)
		return
	}
	var req tenantPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, "submit_payment", err)
		return
	}
	amount, err := req.Amount.Money()
	if err != nil {
		s.fail(w, r, "submit_payment", err)
		return
	}
	p, err := s.payments.SubmitTenantPayment(r.Context(), tenantID, core.Payment{
		Amount:    amount,
		Method:    core.PaymentMethod(strings.ToLower(sanitizeInput(req.Method))),
		Reference: sanitizeInput(req.Reference),
	})
	if err != nil {
		s.fail(w, r, "submit_payment", err)
		return
	}
	s.changed()
	writeJSON(w, http.StatusCreated, paymentViewOf(p))
}

func (s *Server) handleMyNotifications(w http.ResponseWriter, r *http.Request) {
	tenantID, err := claimsTenant(r)
	if err != nil {
		s.fail(w, r, "my_notifications", err)
		return
	}
	notes, err := s.repo.ListNotifications(r.Context(), tenantID)
	if err != nil {
		s.fail(w, r, "my_notifications", err)
		return
	}
	out := make([]notificationView, 0, len(notes))
	for _, n := range notes {
		out = append(out, notificationViewOf(n))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	tenantID, err := claimsTenant(r)
	if err != nil {
		s.fail(w, r, "mark_notification_read", err)
		return
	}
	if err := s.repo.MarkNotificationRead(r.Context(), tenantID, r.PathValue("id")); err != nil {
		s.fail(w, r, "mark_notification_read", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMyMessages(w http.ResponseWriter, r *http.Request) {
	tenantID, err := claimsTenant(r)
	if err != nil {
		s.fail(w, r, "my_messages", err)
		return
	}
	s.writeMessages(w, r, tenantID)
}

func (s *Server) handleSendMyMessage(w http.ResponseWriter, r *http.Request) {
	tenantID, err := claimsTenant(r)
	if err != nil {
		s.fail(w, r, "send_message", err)
		return
	}
	m, err := s.createMessage(r, tenantID, false)
	if err != nil {
		s.fail(w, r, "send_message", err)
		return
	}
	writeJSON(w, http.StatusCreated, messageViewOf(m))
}
