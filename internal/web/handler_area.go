package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/vbonduro/homeclean/internal/domain"
)

type areaRequest struct {
	Name       string `json:"name"`
	AreaTypeID int64  `json:"areaTypeId"`
}

// handleListAreas lists every area, or only those of one type when the
// areaTypeId query parameter is set.
func (s *Server) handleListAreas(w http.ResponseWriter, r *http.Request) {
	var (
		areas []*domain.Area
		err   error
	)
	if q := r.URL.Query().Get("areaTypeId"); q != "" {
		areaTypeID, perr := strconv.ParseInt(q, 10, 64)
		if perr != nil {
			s.writeError(w, r, fmt.Errorf("%w: invalid areaTypeId %q", errBadRequest, q))
			return
		}
		areas, err = s.repos.Areas.ListByAreaTypeID(r.Context(), areaTypeID)
	} else {
		areas, err = s.repos.Areas.List(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, areas)
}

func (s *Server) handleCreateArea(w http.ResponseWriter, r *http.Request) {
	var req areaRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	area, err := s.repos.Areas.Create(r.Context(), req.Name, req.AreaTypeID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, area)
}

func (s *Server) handleGetArea(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	detail, err := s.service.AreaDetail(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleUpdateArea(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req areaRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	area := &domain.Area{ID: id, Name: req.Name, AreaTypeID: req.AreaTypeID}
	if err := s.repos.Areas.Update(r.Context(), area); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, area)
}

func (s *Server) handleDeleteArea(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if err := s.repos.Areas.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListAreaItems(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	items, err := s.repos.Areas.ListItems(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleListAreaGroupsForArea(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	groups, err := s.repos.AreaGroups.ListGroupsForArea(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}
