// Package worker implements the admission loop that turns inbound hazard
// events into alerts.
package worker

import "github.com/roadpulse/roadpulse/pkg/logger"

// Option applies a configuration option to the Admitter.
type Option func(*Admitter)

// WithRadiusKm sets the admission radius in kilometers.
func WithRadiusKm(radius float64) Option {
	return func(a *Admitter) {
		if radius > 0 {
			a.radiusKm = radius
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(a *Admitter) {
		if l != nil {
			a.logger = l
		}
	}
}
