package web

import (
	"net/http"

	"github.com/vbonduro/homeclean/internal/domain"
)

type nameRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListAreaTypes(w http.ResponseWriter, r *http.Request) {
	ats, err := s.repos.AreaTypes.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ats)
}

func (s *Server) handleCreateAreaType(w http.ResponseWriter, r *http.Request) {
	var req nameRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	at, err := s.repos.AreaTypes.Create(r.Context(), req.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, at)
}

func (s *Server) handleGetAreaType(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	at, err := s.repos.AreaTypes.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.notFoundIfNil(w, r, at, at == nil, domain.EntityAreaType, id)
}

func (s *Server) handleUpdateAreaType(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req nameRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	at := &domain.AreaType{ID: id, Name: req.Name}
	if err := s.repos.AreaTypes.Update(r.Context(), at); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, at)
}

func (s *Server) handleDeleteAreaType(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.repos.AreaTypes.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAreaTypeAreas(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	areas, err := s.repos.AreaTypes.ListAreas(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, areas)
}
