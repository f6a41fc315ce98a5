// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/roadpulse/roadpulse/internal/domain/model"
)

// AlertDependencies defines the interface for alert operations.
type AlertDependencies interface {
	Alerts(ctx context.Context) []model.AlertRecord
	DismissAlert(ctx context.Context, id string)
}

// AlertsHandler serves the active alert list and dismissal.
type AlertsHandler struct {
	deps AlertDependencies
}

// NewAlertsHandler creates a new alerts handler.
func NewAlertsHandler(deps AlertDependencies) *AlertsHandler {
	return &AlertsHandler{deps: deps}
}

// HandleAlerts handles GET /alerts requests. Records come back in insertion
// order, oldest first, matching the on-screen stacking.
func (h *AlertsHandler) HandleAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	records := h.deps.Alerts(r.Context())
	if records == nil {
		records = []model.AlertRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

// HandleDismiss handles DELETE /alerts/{id} requests. Dismissal is
// idempotent: deleting an unknown or already-expired id still succeeds.
func (h *AlertsHandler) HandleDismiss(w http.ResponseWriter, r *http.Request) {
	const op = "api.dismiss_alert"
	if r.Method != http.MethodDelete {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/alerts/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	h.deps.DismissAlert(r.Context(), id)
	writeJSON(w, http.StatusOK, ackResponse{Status: "dismissed"})
}
