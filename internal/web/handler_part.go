package web

import (
	"net/http"
	"time"

	"github.com/vbonduro/homeclean/internal/domain"
)

type partRequest struct {
	Name       string     `json:"name"`
	ItemID     int64      `json:"itemId"`
	FreqDays   int        `json:"freqDays"`
	LastDoneAt *time.Time `json:"lastDoneAt"`
}

func (s *Server) handleListParts(w http.ResponseWriter, r *http.Request) {
	parts, err := s.repos.ItemParts.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, parts)
}

func (s *Server) handleListDueParts(w http.ResponseWriter, r *http.Request) {
	due, err := s.service.DueParts(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, due)
}

func (s *Server) handleCreatePart(w http.ResponseWriter, r *http.Request) {
	var req partRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	part, err := s.repos.ItemParts.Create(r.Context(), req.Name, req.ItemID, req.FreqDays, req.LastDoneAt)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, part)
}

func (s *Server) handleGetPart(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	detail, err := s.service.PartDetail(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleUpdatePart(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req partRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	part := &domain.ItemPart{ID: id, Name: req.Name, ItemID: req.ItemID, FreqDays: req.FreqDays, LastDoneAt: req.LastDoneAt}
	if err := s.repos.ItemParts.Update(r.Context(), part); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, part)
}

func (s *Server) handleDeletePart(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.repos.ItemParts.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkDone(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	detail, err := s.service.MarkDone(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}
