// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// NATSURL points at the live event broker.
	NATSURL string `koanf:"nats_url"`

	// BackendURL is the base URL of the hazard backend REST API.
	BackendURL string `koanf:"backend_url"`

	// AuthToken and UserID identify the session to start at boot. When
	// AuthToken is empty no session is started until POST /session.
	AuthToken string `koanf:"auth_token"`
	UserID    string `koanf:"user_id"`

	// AdmissionRadiusKm sets the proximity alert radius.
	AdmissionRadiusKm float64 `koanf:"admission_radius_km"`

	// AlertTTLSeconds sets how long an alert stays up before auto-expiry.
	AlertTTLSeconds int `koanf:"alert_ttl_seconds"`

	// LocationIntervalSeconds sets the position sampling cadence.
	LocationIntervalSeconds int `koanf:"location_interval_seconds"`

	// RefreshIntervalSeconds sets the hazard list polling cadence.
	RefreshIntervalSeconds int `koanf:"refresh_interval_seconds"`

	// RequestTimeoutSeconds and UploadTimeoutSeconds bound backend calls.
	RequestTimeoutSeconds int `koanf:"request_timeout_seconds"`
	UploadTimeoutSeconds  int `koanf:"upload_timeout_seconds"`

	// QueueSize bounds the in-memory event queue.
	QueueSize int `koanf:"queue_size"`

	// DedupeSize sets the size of the deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// StartLatitude and StartLongitude seed the fixed location source.
	StartLatitude  float64 `koanf:"start_latitude"`
	StartLongitude float64 `koanf:"start_longitude"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use and is
// currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:                "info",
		Addr:                    ":9080",
		NATSURL:                 "nats://127.0.0.1:4222",
		BackendURL:              "http://127.0.0.1:8080",
		AdmissionRadiusKm:       3.0,
		AlertTTLSeconds:         10,
		LocationIntervalSeconds: 30,
		RefreshIntervalSeconds:  30,
		RequestTimeoutSeconds:   60,
		UploadTimeoutSeconds:    120,
		QueueSize:               4096,
		DedupeSize:              50_000,
		StartLatitude:           0,
		StartLongitude:          0,
	}
	return c
}
