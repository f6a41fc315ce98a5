// Package worker implements the admission loop that turns inbound hazard
// events into alerts.
//
// Exactly one worker consumes the queue: admission decisions must be made in
// arrival order against the position known at that moment, so the loop is
// deliberately not a pool.
package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/roadpulse/roadpulse/internal/domain/geo"
	"github.com/roadpulse/roadpulse/internal/domain/model"
	"github.com/roadpulse/roadpulse/pkg/logger"
	"github.com/roadpulse/roadpulse/pkg/metrics"
)

const shutdownTimeout = 5 * time.Second

// Event is what the worker reads off the queue.
type Event = model.HazardEvent

// Queue defines how the worker receives events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Deduper tracks hazard ids already seen this session.
type Deduper interface {
	SeenAndRecord(ctx context.Context, id string) bool
}

// PositionProvider exposes the most recently known position.
// A nil result means no fix yet.
type PositionProvider interface {
	Position() *model.Position
}

// AlertSink receives admitted hazard events.
type AlertSink interface {
	Enqueue(ctx context.Context, ev model.HazardEvent) model.AlertRecord
}

// HazardSink records every well-formed hazard event for the list and map views.
type HazardSink interface {
	Upsert(ctx context.Context, ev model.HazardEvent) bool
}

// Admitter is the single consumer of the event queue. For each event it
// checks idempotency, stores the hazard, and applies the proximity rule.
type Admitter struct {
	queue    Queue
	deduper  Deduper
	position PositionProvider
	alerts   AlertSink
	hazards  HazardSink
	radiusKm float64

	shutdown chan struct{}
	done     chan struct{}

	logger logger.Logger
}

// NewAdmitter creates the admission loop with configuration options.
func NewAdmitter(queue Queue, deduper Deduper, position PositionProvider, alerts AlertSink, hazards HazardSink, opts ...Option) *Admitter {
	a := &Admitter{
		queue:    queue,
		deduper:  deduper,
		position: position,
		alerts:   alerts,
		hazards:  hazards,
		radiusKm: geo.DefaultAdmissionRadiusKm,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("admitter"),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Run starts the admission loop until ctx is canceled, the queue closes, or
// Shutdown is called.
func (a *Admitter) Run(ctx context.Context) {
	defer close(a.done)

	eventChan := a.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.shutdown:
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			a.processEvent(ctx, event)
		}
	}
}

// Shutdown gracefully stops the loop.
func (a *Admitter) Shutdown(ctx context.Context) error {
	close(a.shutdown)

	waitCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	select {
	case <-a.done:
		return nil
	case <-waitCtx.Done():
		a.logger.Warn(ctx, "admitter shutdown timed out")
		return fmt.Errorf("admitter shutdown timed out: %w", waitCtx.Err())
	}
}

// processEvent makes the one-time admission decision for a single event.
// Failures degrade to a rejection; they never escape the loop.
func (a *Admitter) processEvent(ctx context.Context, event Event) {
	metrics.RecordEventReceived()

	if a.deduper.SeenAndRecord(ctx, event.ID) {
		metrics.RecordEventRejected(metrics.ReasonDuplicate)
		a.logger.Debug(ctx, "duplicate hazard event, skipping",
			logger.String("hazardID", event.ID),
		)
		return
	}

	a.hazards.Upsert(ctx, event)

	pos := a.position.Position()
	if pos == nil {
		// No fix yet: non-admissible, not an error.
		metrics.RecordEventRejected(metrics.ReasonNoPosition)
		a.logger.Debug(ctx, "no position known, hazard not admitted",
			logger.String("hazardID", event.ID),
		)
		return
	}

	if !geo.Admit(pos, event, a.radiusKm) {
		metrics.RecordEventRejected(metrics.ReasonOutOfRange)
		a.logger.Debug(ctx, "hazard outside admission radius",
			logger.String("hazardID", event.ID),
			logger.Float64("distanceKm", geo.Distance(*pos, event.Position)),
		)
		return
	}

	metrics.RecordEventAdmitted()
	record := a.alerts.Enqueue(ctx, event)
	a.logger.Info(ctx, "hazard admitted",
		logger.String("hazardID", event.ID),
		logger.String("alertID", record.ID),
		logger.String("category", event.Category),
	)
}
