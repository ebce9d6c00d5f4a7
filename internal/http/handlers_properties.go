package http

import (
	"net/http"

	"rentdesk/internal/log"
)

func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	props, err := s.repo.ListProperties(r.Context())
	if err != nil {
		s.fail(w, r, "list_properties", err)
		return
	}
	out := make([]propertyView, 0, len(props))
	for _, p := range props {
		out = append(out, propertyViewOf(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	p, err := s.repo.GetProperty(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, "get_property", err)
		return
	}
	writeJSON(w, http.StatusOK, propertyViewOf(p))
}

func (s *Server) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	var req propertyRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, "create_property", err)
		return
	}
	p, err := s.repo.CreateProperty(r.Context(), req.property(""))
	if err != nil {
		s.fail(w, r, "create_property", err)
		return
	}
	s.changed()
	log.FromContext(r.Context()).InfoContext(r.Context(), "Property created", log.FieldProperty, p.ID)
	writeJSON(w, http.StatusCreated, propertyViewOf(p))
}

func (s *Server) handleUpdateProperty(w http.ResponseWriter, r *http.Request) {
	var req propertyRequest
	if err := decodeJSON(r, &req); err != nil {
		s.fail(w, r, "update_property", err)
		return
	}
	p, err := s.repo.UpdateProperty(r.Context(), req.property(r.PathValue("id")))
	if err != nil {
		s.fail(w, r, "update_property", err)
		return
	}
	s.changed()
	writeJSON(w, http.StatusOK, propertyViewOf(p))
}

// handleDeleteProperty leaves the property's tenants in place; their
// payments report under "Unknown" afterwards.
func (s *Server) handleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.repo.DeleteProperty(r.Context(), id); err != nil {
		s.fail(w, r, "delete_property", err)
		return
	}
	s.changed()
	log.FromContext(r.Context()).InfoContext(r.Context(), "Property deleted", log.FieldProperty, id)
	w.WriteHeader(http.StatusNoContent)
}
