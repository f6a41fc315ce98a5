// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/roadpulse/roadpulse/internal/domain/model"
)

// PositionDependencies defines the interface for position reads.
type PositionDependencies interface {
	Position(ctx context.Context) (*model.Position, bool)
}

// PositionHandler serves the current position for map centering.
type PositionHandler struct {
	deps PositionDependencies
}

// NewPositionHandler creates a new position handler.
func NewPositionHandler(deps PositionDependencies) *PositionHandler {
	return &PositionHandler{deps: deps}
}

// positionResponse carries the position plus the location-unavailable
// advisory flag. Position is null before the first fix.
type positionResponse struct {
	Position  *model.Position `json:"position"`
	Available bool            `json:"available"`
}

// HandleGetPosition handles GET /position requests.
func (h *PositionHandler) HandleGetPosition(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	pos, available := h.deps.Position(r.Context())
	writeJSON(w, http.StatusOK, positionResponse{Position: pos, Available: available})
}
