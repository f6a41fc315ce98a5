// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/roadpulse/roadpulse/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Alerts(ctx context.Context) []model.AlertRecord
	DismissAlert(ctx context.Context, id string)
	Hazards(ctx context.Context) []model.HazardEvent
	Position(ctx context.Context) (*model.Position, bool)
	StartSession(ctx context.Context, sess model.Session) error
	EndSession()
	SubmitReport(ctx context.Context, contentType string, body io.Reader) error
	ConnectionState() string
}

// Server wires HTTP routes for the dashboard API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	alertsHandler   *AlertsHandler
	hazardsHandler  *HazardsHandler
	positionHandler *PositionHandler
	sessionHandler  *SessionHandler
	reportsHandler  *ReportsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		alertsHandler:   NewAlertsHandler(deps),
		hazardsHandler:  NewHazardsHandler(deps),
		positionHandler: NewPositionHandler(deps),
		sessionHandler:  NewSessionHandler(deps),
		reportsHandler:  NewReportsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/alerts", MetricsMiddleware(s.alertsHandler.HandleAlerts, "alerts"))
	mux.HandleFunc("/alerts/", MetricsMiddleware(s.alertsHandler.HandleDismiss, "alerts"))
	mux.HandleFunc("/hazards", MetricsMiddleware(s.hazardsHandler.HandleGetHazards, "hazards"))
	mux.HandleFunc("/position", MetricsMiddleware(s.positionHandler.HandleGetPosition, "position"))
	mux.HandleFunc("/session", MetricsMiddleware(s.sessionHandler.HandleSession, "session"))
	mux.HandleFunc("/reports", MetricsMiddleware(s.reportsHandler.HandlePostReport, "reports"))
	mux.Handle("/metrics", MetricsHandler())
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ackResponse struct {
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
