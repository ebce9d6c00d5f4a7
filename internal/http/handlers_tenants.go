package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"rentdesk/internal/core"
	"rentdesk/internal/log"
	"rentdesk/internal/store"
)

func (s *Server) handleListTenants(w http.ResponseWriter, r *http.Request) {
	tenants, err := s.repo.ListTenants(r.Context())
	if err != nil {
		s.fail(w, r, "list_tenants", err)
		return
	}
	propertyID := sanitizeInput(r.URL.Query().Get("property_id"))
	out := make([]tenantView, 0, len(tenants))
	for _, t := range tenants {
		if propertyID != "" && t.PropertyID != propertyID {
			continue
		}
		out = append(out, tenantViewOf(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTenant(w http.ResponseWriter, r *http.Request) {
	t, err := s.repo.GetTenant(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, "get_tenant", err)
		return
	}
	writeJSON(w, http.StatusOK, tenantViewOf(t))
}

func (s *Server) handleCreateTenant(w http.ResponseWriter, r *http.Request) {
	t, err := s.tenantFromRequest(r, "")
	if err != nil {
		s.fail(w, r, "create_tenant", err)
		return
	}
	t, err = s.repo.CreateTenant(r.Context(), t)
	if err != nil {
		s.fail(w, r, "create_tenant", err)
		return
	}
	s.changed()
	log.FromContext(r.Context()).InfoContext(r.Context(), "Tenant created",
		log.FieldTenantID, t.ID,
		log.FieldProperty, t.PropertyID)
	writeJSON(w, http.StatusCreated, tenantViewOf(t))
}

func (s *Server) handleUpdateTenant(w http.ResponseWriter, r *http.Request) {
	t, err := s.tenantFromRequest(r, r.PathValue("id"))
	if err != nil {
		s.fail(w, r, "update_tenant", err)
		return
	}
	t, err = s.repo.UpdateTenant(r.Context(), t)
	if err != nil {
		s.fail(w, r, "update_tenant", err)
		return
	}
	s.changed()
	writeJSON(w, http.StatusOK, tenantViewOf(t))
}

// handleDeleteTenant keeps the tenant's payments. They still count toward
// totals but no longer toward a property.
func (s *Server) handleDeleteTenant(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.repo.DeleteTenant(r.Context(), id); err != nil {
		s.fail(w, r, "delete_tenant", err)
		return
	}
	s.changed()
	log.FromContext(r.Context()).InfoContext(r.Context(), "Tenant deleted", log.FieldTenantID, id)
	w.WriteHeader(http.StatusNoContent)
}

// tenantFromRequest decodes and validates a tenant body. The referenced
// property must exist.
func (s *Server) tenantFromRequest(r *http.Request, id string) (core.Tenant, error) {
	var req tenantRequest
	if err := decodeJSON(r, &req); err != nil {
		return core.Tenant{}, err
	}
	t, err := req.tenant(id)
	if err != nil {
		return core.Tenant{}, err
	}
	if err := t.Validate(); err != nil {
		return core.Tenant{}, err
	}
	if err := s.requireProperty(r.Context(), t.PropertyID); err != nil {
		return core.Tenant{}, err
	}
	return t, nil
}

func (s *Server) requireProperty(ctx context.Context, id string) error {
	_, err := s.repo.GetProperty(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", errUnknownProperty, id)
	}
	return err
}

func (s *Server) handleListTenantMessages(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.repo.GetTenant(r.Context(), id); err != nil {
		s.fail(w, r, "list_messages", err)
		return
	}
	s.writeMessages(w, r, id)
}

// handleSendTenantMessage stores a landlord message and notifies the tenant.
func (s *Server) handleSendTenantMessage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if _, err := s.repo.GetTenant(r.Context(), id); err != nil {
		s.fail(w, r, "send_message", err)
		return
	}
	m, err := s.createMessage(r, id, true)
	if err != nil {
		s.fail(w, r, "send_message", err)
		return
	}
	_, err = s.repo.CreateNotification(r.Context(), core.Notification{
		TenantID: id,
		Type:     core.NotificationMessage,
		Content:  "New message from your landlord",
		Date:     core.DateOf(s.now()),
	})
	if err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Failed to create message notification",
			log.FieldTenantID, id,
			log.FieldError, err)
	}
	writeJSON(w, http.StatusCreated, messageViewOf(m))
}

func (s *Server) createMessage(r *http.Request, tenantID string, fromAdmin bool) (core.Message, error) {
	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		return core.Message{}, err
	}
	return s.repo.CreateMessage(r.Context(), core.Message{
		TenantID:  tenantID,
		FromAdmin: fromAdmin,
		Content:   sanitizeInput(req.Content),
		SentAt:    s.now().UTC(),
	})
}

func (s *Server) writeMessages(w http.ResponseWriter, r *http.Request, tenantID string) {
	msgs, err := s.repo.ListMessages(r.Context(), tenantID)
	if err != nil {
		s.fail(w, r, "list_messages", err)
		return
	}
	out := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageViewOf(m))
	}
	writeJSON(w, http.StatusOK, out)
}
