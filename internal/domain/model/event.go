// Package model contains domain models passed between layers.
package model

import "time"

// Position is a WGS-84 coordinate pair, always in degrees.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// HazardEvent is a backend-originated report of a road condition at a
// location. Immutable once received; identity is ID.
type HazardEvent struct {
	ID          string    `json:"id"`
	Category    string    `json:"category"` // e.g. "pothole", "flooding", "debris"
	Description string    `json:"description"`
	Confidence  float64   `json:"confidence"` // detection confidence, percentage in [0,100]
	Position    Position  `json:"position"`
	ReportedBy  string    `json:"reported_by,omitempty"`
	ReportedAt  time.Time `json:"reported_at"`
}

// AlertRecord is a locally-held, time-boxed notification derived from an
// admitted HazardEvent. ID is generated locally, one per arrival.
type AlertRecord struct {
	ID         string      `json:"id"`
	Hazard     HazardEvent `json:"hazard"`
	ReceivedAt time.Time   `json:"received_at"`
}

// Session identifies the authenticated user the pipeline runs for. The
// pipeline consumes AuthToken to authenticate the live channel; UserID tags
// outbound submissions.
type Session struct {
	UserID    string `json:"user_id"`
	AuthToken string `json:"auth_token"`
}
