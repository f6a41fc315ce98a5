package service

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/roadpulse/roadpulse/internal/location"
	"github.com/roadpulse/roadpulse/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithRadiusKm sets the admission radius in kilometers.
func WithRadiusKm(radius float64) Option {
	return func(s *Service) {
		if radius > 0 {
			s.radiusKm = radius
		}
	}
}

// WithAlertTTL sets the alert display lifetime.
func WithAlertTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.alertTTL = ttl
		}
	}
}

// WithLocationInterval sets the position resampling period.
func WithLocationInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.locationInterval = interval
		}
	}
}

// WithRefreshInterval sets the hazard list polling period.
func WithRefreshInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.refreshInterval = interval
		}
	}
}

// WithQueueSize bounds the inbound event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithClock sets the time source shared by all session timers.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithChannelFactory sets how live channels are built per session.
func WithChannelFactory(f ChannelFactory) Option {
	return func(s *Service) {
		s.newChannel = f
	}
}

// WithBackendFactory sets how REST clients are built per session.
func WithBackendFactory(f BackendFactory) Option {
	return func(s *Service) {
		s.newBackend = f
	}
}

// WithSource sets the position source.
func WithSource(src location.Source) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
