package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/codearena/portal/internal/portal/export"
	"github.com/codearena/portal/internal/portal/service"
	"github.com/codearena/portal/internal/portal/store"
	"github.com/codearena/portal/internal/portal/types"
)

// handleRecordViolations ingests one candidate or a batch.  The acting user
// always comes from the session; a client-supplied user id has no effect
// here.  The response mirrors the request shape: object in, object out.
func (s *Server) handleRecordViolations(w http.ResponseWriter, r *http.Request, u types.User) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_body", "could not read request body")
		return
	}

	var (
		cands []types.Candidate
		batch bool
	)
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		batch = true
		if err := json.Unmarshal(body, &cands); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json", "invalid candidate array")
			return
		}
	} else {
		var c types.Candidate
		if err := json.Unmarshal(body, &c); err != nil {
			writeError(w, http.StatusBadRequest, "bad_json", "invalid candidate")
			return
		}
		cands = []types.Candidate{c}
	}
	if len(cands) == 0 {
		writeError(w, http.StatusBadRequest, "empty_batch", "no candidates supplied")
		return
	}

	created, err := s.violations.Record(r.Context(), u.ID, cands)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCandidate):
			writeError(w, http.StatusBadRequest, "invalid_candidate", err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusUnauthorized, "unauthenticated", "session user no longer exists")
		default:
			s.internalError(w, "record violations", err)
		}
		return
	}

	if batch {
		writeJSON(w, http.StatusOK, created)
		return
	}
	writeJSON(w, http.StatusOK, created[0])
}

func (s *Server) handleListViolations(w http.ResponseWriter, r *http.Request, _ types.User) {
	vs, err := s.violations.List(r.Context(), store.ViolationFilter{})
	if err != nil {
		s.internalError(w, "list violations", err)
		return
	}
	if vs == nil {
		vs = []types.Violation{}
	}
	writeJSON(w, http.StatusOK, vs)
}

type simulateRequest struct {
	UserID  string         `json:"userId" validate:"required"`
	Type    string         `json:"type" validate:"required"`
	Details map[string]any `json:"details"`
}

// handleSimulateViolation injects a violation attributed to an arbitrary
// user.  This is the one path allowed to name a target user id, and it sits
// behind the admin check.
func (s *Server) handleSimulateViolation(w http.ResponseWriter, r *http.Request, _ types.User) {
	var req simulateRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	v, err := s.violations.Simulate(r.Context(), req.UserID, types.Candidate{
		Type:    types.ViolationType(req.Type),
		Details: req.Details,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCandidate):
			writeError(w, http.StatusBadRequest, "invalid_candidate", err.Error())
		case errors.Is(err, service.ErrUserNotFound):
			writeError(w, http.StatusBadRequest, "unknown_user", "target user does not exist")
		default:
			s.internalError(w, "simulate violation", err)
		}
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleExportViolations(w http.ResponseWriter, r *http.Request, _ types.User) {
	q := r.URL.Query()
	filter := store.ViolationFilter{
		Type:     types.ViolationType(q.Get("type")),
		Severity: types.Severity(q.Get("severity")),
	}

	if raw := q.Get("since"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_since", "since must be an RFC 3339 timestamp")
			return
		}
		filter.Since = &t
	}
	if raw := q.Get("until"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_until", "until must be an RFC 3339 timestamp")
			return
		}
		filter.Until = &t
	}

	vs, err := s.violations.List(r.Context(), filter)
	if err != nil {
		s.internalError(w, "export violations", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="violations.csv"`)
	if err := export.WriteCSV(w, vs); err != nil {
		s.logger.Printf("export write error: %v", err)
	}
}
