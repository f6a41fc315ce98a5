// Package alerts holds the transient notification queue of admitted hazards.
//
// Records keep insertion order, expire individually, and are removed exactly
// once whether by user dismissal or by the expiry timer.
package alerts

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/roadpulse/roadpulse/internal/domain/model"
	"github.com/roadpulse/roadpulse/pkg/logger"
	"github.com/roadpulse/roadpulse/pkg/metrics"
)

// DefaultTTL is how long a record stays visible unless dismissed first.
const DefaultTTL = 10 * time.Second

// Queue is an ordered, mutable set of active alert records, each with an
// independent lifetime.
type Queue struct {
	mu      sync.Mutex
	records []model.AlertRecord
	timers  map[string]clockwork.Timer
	closed  bool

	ttl       time.Duration
	clock     clockwork.Clock
	onEnqueue func()

	logger logger.Logger
}

// New creates an alert queue with configuration options.
func New(opts ...Option) *Queue {
	q := &Queue{
		timers: make(map[string]clockwork.Timer),
		ttl:    DefaultTTL,
		clock:  clockwork.NewRealClock(),
		logger: logger.Get().Named("alerts"),
	}

	for _, opt := range opts {
		opt(q)
	}

	return q
}

// Enqueue appends a new AlertRecord for ev with a freshly generated id and
// schedules its expiry. It triggers the configured refresh hook exactly once,
// fire-and-forget.
func (q *Queue) Enqueue(ctx context.Context, ev model.HazardEvent) model.AlertRecord {
	record := model.AlertRecord{
		ID:         uuid.NewString(),
		Hazard:     ev,
		ReceivedAt: q.clock.Now(),
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return record
	}
	q.records = append(q.records, record)
	id := record.ID
	q.timers[id] = q.clock.AfterFunc(q.ttl, func() {
		q.expire(id)
	})
	active := len(q.records)
	hook := q.onEnqueue
	q.mu.Unlock()

	metrics.RecordAlertRaised()
	metrics.UpdateAlertsActive(active)

	if hook != nil {
		// Refresh failures are the hook owner's problem; the queue does not
		// wait on or observe the outcome.
		go hook()
	}

	return record
}

// Dismiss removes the record with the given id and cancels its expiry.
// Unknown ids are a no-op.
func (q *Queue) Dismiss(id string) {
	if q.remove(id) {
		metrics.RecordAlertDismissed()
	}
}

// expire is the timer callback; the record may already have been dismissed.
func (q *Queue) expire(id string) {
	if q.remove(id) {
		metrics.RecordAlertExpired()
	}
}

// remove deletes the record and stops its timer. Returns false if absent.
func (q *Queue) remove(id string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	timer, ok := q.timers[id]
	if !ok {
		return false
	}
	timer.Stop()
	delete(q.timers, id)

	for i, r := range q.records {
		if r.ID == id {
			q.records = append(q.records[:i], q.records[i+1:]...)
			break
		}
	}

	metrics.UpdateAlertsActive(len(q.records))
	return true
}

// Snapshot returns the active records in insertion order, oldest first.
func (q *Queue) Snapshot() []model.AlertRecord {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]model.AlertRecord, len(q.records))
	copy(out, q.records)
	return out
}

// Len returns the number of active records.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.records)
}

// Close cancels all pending expiries and drops the records. The queue
// accepts no further enqueues.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true

	for id, timer := range q.timers {
		timer.Stop()
		delete(q.timers, id)
	}
	q.records = nil
	metrics.UpdateAlertsActive(0)
}
