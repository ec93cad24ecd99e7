package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/vbonduro/homeclean/internal/backup"
	"github.com/vbonduro/homeclean/internal/db"
	"github.com/vbonduro/homeclean/internal/domain"
)

var errBadRequest = errors.New("bad request")

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code and a JSON error body. Anything
// unrecognised is logged and reported as a 500 without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		ve *domain.ValidationError
		mb *http.MaxBytesError
	)
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Kind: "validation", Field: ve.Field})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, backup.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Kind: "not_found"})
	case errors.Is(err, domain.ErrConstraint):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Kind: "constraint"})
	case errors.As(err, &mb):
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large", Kind: "bad_request"})
	case errors.Is(err, errBadRequest),
		errors.Is(err, backup.ErrUnknownFormat),
		errors.Is(err, backup.ErrInvalidName),
		errors.Is(err, backup.ErrMalformed),
		errors.Is(err, db.ErrUnknownCollection),
		errors.Is(err, db.ErrInvalidKey),
		errors.Is(err, db.ErrInvalidRecord):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Kind: "bad_request"})
	default:
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		kind := "internal"
		if errors.Is(err, domain.ErrTransaction) {
			kind = "transaction"
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error", Kind: kind})
	}
}

func parseID(r *http.Request, param string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", errBadRequest, param, chi.URLParam(r, param))
	}
	return id, nil
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var mb *http.MaxBytesError
		if errors.As(err, &mb) {
			return mb
		}
		return fmt.Errorf("%w: malformed JSON body: %v", errBadRequest, err)
	}
	return nil
}

// notFoundIfNil writes v, or a 404 when the lookup found nothing.
func (s *Server) notFoundIfNil(w http.ResponseWriter, r *http.Request, v any, isNil bool, entity string, id int64) {
	if isNil {
		s.writeError(w, r, &domain.NotFoundError{Entity: entity, ID: id})
		return
	}
	writeJSON(w, http.StatusOK, v)
}
