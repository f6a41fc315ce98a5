// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/roadpulse/roadpulse/internal/domain/model"
)

// HazardDependencies defines the interface for hazard list operations.
type HazardDependencies interface {
	Hazards(ctx context.Context) []model.HazardEvent
}

// HazardsHandler serves the distance-sorted hazard list.
type HazardsHandler struct {
	deps HazardDependencies
}

// NewHazardsHandler creates a new hazards handler.
func NewHazardsHandler(deps HazardDependencies) *HazardsHandler {
	return &HazardsHandler{deps: deps}
}

// HandleGetHazards handles GET /hazards requests.
func (h *HazardsHandler) HandleGetHazards(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	hazards := h.deps.Hazards(r.Context())
	if hazards == nil {
		hazards = []model.HazardEvent{}
	}
	writeJSON(w, http.StatusOK, hazards)
}
