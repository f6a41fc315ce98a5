// Package alerts holds the transient notification queue of admitted hazards.
package alerts

import (
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/roadpulse/roadpulse/pkg/logger"
)

// Option applies a configuration option to the Queue.
type Option func(*Queue)

// WithTTL sets the per-record display lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(q *Queue) {
		if ttl > 0 {
			q.ttl = ttl
		}
	}
}

// WithClock sets the time source. Tests inject a fake clock here.
func WithClock(clock clockwork.Clock) Option {
	return func(q *Queue) {
		if clock != nil {
			q.clock = clock
		}
	}
}

// WithRefreshHook sets the fire-and-forget callback invoked once per enqueue
// to keep the hazard list consistent with newly confirmed nearby hazards.
func WithRefreshHook(hook func()) Option {
	return func(q *Queue) {
		q.onEnqueue = hook
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(q *Queue) {
		if l != nil {
			q.logger = l
		}
	}
}
