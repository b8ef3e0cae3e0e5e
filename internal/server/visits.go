package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/runnerr0/trail/internal/activity"
)

type trackResponse struct {
	Recorded bool             `json:"recorded"`
	Record   *activity.Record `json:"record,omitempty"`
}

type listResponse struct {
	Count    int               `json:"count"`
	Selector string            `json:"selector"`
	Records  []activity.Record `json:"records"`
}

type idsResponse struct {
	Count    int      `json:"count"`
	Selector string   `json:"selector"`
	IDs      []string `json:"ids"`
}

type removeResponse struct {
	Removed int `json:"removed"`
}

func (s *Server) trackVisit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxRequestSize)

	var route activity.Route
	if err := decodeJSON(r, &route); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "TOO_LARGE", "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body: "+err.Error())
		return
	}
	if strings.TrimSpace(route.Path) == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PATH", "path is required")
		return
	}

	rec, ok := s.tracker.Track(r.Context(), route)
	if !ok {
		writeJSON(w, http.StatusOK, trackResponse{Recorded: false})
		return
	}
	writeJSON(w, http.StatusCreated, trackResponse{Recorded: true, Record: &rec})
}

func (s *Server) listVisits(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a non-negative integer")
		return
	}
	selector := r.URL.Query().Get("selector")
	recs := s.tracker.Query(selector).Get(r.Context(), limit)
	writeJSON(w, http.StatusOK, listResponse{Count: len(recs), Selector: selector, Records: recs})
}

func (s *Server) listVisitIDs(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a non-negative integer")
		return
	}
	selector := r.URL.Query().Get("selector")
	ids := s.tracker.Query(selector).IDs(r.Context(), limit)
	writeJSON(w, http.StatusOK, idsResponse{Count: len(ids), Selector: selector, IDs: ids})
}

func (s *Server) removeVisits(w http.ResponseWriter, r *http.Request) {
	selector := r.URL.Query().Get("selector")
	n := s.tracker.Query(selector).Remove(r.Context())
	s.logger.Info("removed visits", "selector", selector, "removed", n)
	writeJSON(w, http.StatusOK, removeResponse{Removed: n})
}
