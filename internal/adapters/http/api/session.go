// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/roadpulse/roadpulse/internal/domain/model"
)

// SessionDependencies defines the interface for session control.
type SessionDependencies interface {
	StartSession(ctx context.Context, sess model.Session) error
	EndSession()
	ConnectionState() string
}

// SessionHandler starts and ends the pipeline session. POSTing a new token
// is the reconnect path: the previous channel is fully closed first.
type SessionHandler struct {
	deps SessionDependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps SessionDependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

// sessionRequest mirrors the POST /session body.
type sessionRequest struct {
	UserID    string `json:"user_id"`
	AuthToken string `json:"auth_token"`
}

func (s sessionRequest) validate() error {
	if strings.TrimSpace(s.AuthToken) == "" {
		return errors.New("missing auth_token")
	}
	return nil
}

// sessionResponse reports the resulting connection state.
type sessionResponse struct {
	Status          string `json:"status"`
	ConnectionState string `json:"connection_state"`
}

// HandleSession handles POST /session and DELETE /session requests.
func (h *SessionHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.session"
	switch r.Method {
	case http.MethodPost:
		var req sessionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if err := req.validate(); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		if err := h.deps.StartSession(r.Context(), model.Session{
			UserID:    req.UserID,
			AuthToken: req.AuthToken,
		}); err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
			return
		}
		writeJSON(w, http.StatusOK, sessionResponse{
			Status:          "started",
			ConnectionState: h.deps.ConnectionState(),
		})
	case http.MethodDelete:
		h.deps.EndSession()
		writeJSON(w, http.StatusOK, ackResponse{Status: "ended"})
	default:
		http.NotFound(w, r)
	}
}
