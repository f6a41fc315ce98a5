package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNoSession     = errors.New("no active session")
	ErrMissingToken  = errors.New("missing auth token")
	ErrNotConfigured = errors.New("service collaborators not configured")
)
