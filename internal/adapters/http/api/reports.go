// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	serviceerrors "github.com/roadpulse/roadpulse/internal/app"
)

// ReportDependencies defines the interface for report submission.
type ReportDependencies interface {
	SubmitReport(ctx context.Context, contentType string, body io.Reader) error
}

// ReportsHandler forwards voice hazard reports to the backend. The audio
// bytes pass through untouched.
type ReportsHandler struct {
	deps ReportDependencies
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(deps ReportDependencies) *ReportsHandler {
	return &ReportsHandler{deps: deps}
}

// HandlePostReport handles POST /reports requests.
func (h *ReportsHandler) HandlePostReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_report"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	if err := h.deps.SubmitReport(r.Context(), contentType, r.Body); err != nil {
		if errors.Is(err, serviceerrors.ErrNoSession) {
			writeError(w, http.StatusConflict, "no_session", NewKind(op, ErrNoSession))
			return
		}
		writeError(w, http.StatusBadGateway, "upstream_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}
