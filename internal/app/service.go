// Package service provides the session-scoped orchestrator that wires the
// live channel, the admission loop, the alert queue, and the location
// tracker together, and implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/roadpulse/roadpulse/internal/adapters/channel"
	eventqueue "github.com/roadpulse/roadpulse/internal/adapters/mq/queue"
	"github.com/roadpulse/roadpulse/internal/adapters/mq/worker"
	"github.com/roadpulse/roadpulse/internal/adapters/repository"
	"github.com/roadpulse/roadpulse/internal/alerts"
	"github.com/roadpulse/roadpulse/internal/domain/dedupe"
	"github.com/roadpulse/roadpulse/internal/domain/geo"
	"github.com/roadpulse/roadpulse/internal/domain/model"
	"github.com/roadpulse/roadpulse/internal/location"
	"github.com/roadpulse/roadpulse/pkg/logger"
	"github.com/roadpulse/roadpulse/pkg/metrics"
)

// Backend is the REST collaborator consumed by the pipeline.
type Backend interface {
	FetchHazards(ctx context.Context) ([]model.HazardEvent, error)
	SubmitLocation(ctx context.Context, pos model.Position) error
	SubmitReport(ctx context.Context, contentType string, body io.Reader) error
}

// ChannelFactory builds a fresh live channel for a session. One instance per
// session keeps reconnect semantics clean: the old channel is fully closed
// before a new one exists.
type ChannelFactory func() channel.Channel

// BackendFactory builds the REST client for a session's credentials.
type BackendFactory func(sess model.Session) Backend

// Service owns at most one active session and its pipeline.
type Service struct {
	// transition serializes session starts and ends: one teardown-and-rebuild
	// completes before the next begins. mu guards only the state swap.
	transition sync.Mutex

	mu sync.RWMutex

	// Configuration
	radiusKm         float64
	alertTTL         time.Duration
	locationInterval time.Duration
	refreshInterval  time.Duration
	queueSize        int
	dedupeSize       int

	// Collaborator wiring
	newChannel ChannelFactory
	newBackend BackendFactory
	source     location.Source
	clock      clockwork.Clock

	// State
	generation int
	sess       *sessionState

	logger logger.Logger
}

// sessionState bundles everything owned by one session. Results of in-flight
// work are keyed by generation and discarded if the session is gone.
type sessionState struct {
	session    model.Session
	generation int
	backend    Backend
	ch         channel.Channel
	queue      *eventqueue.InMemoryQueue
	deduper    dedupe.Deduper
	alerts     *alerts.Queue
	tracker    *location.Tracker
	store      repository.Store
	admitter   *worker.Admitter

	cancel   context.CancelFunc
	pumpDone chan struct{}
	pollDone chan struct{}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		radiusKm:         geo.DefaultAdmissionRadiusKm,
		alertTTL:         alerts.DefaultTTL,
		locationInterval: location.DefaultInterval,
		refreshInterval:  30 * time.Second,
		queueSize:        4096,
		dedupeSize:       50000,
		clock:            clockwork.NewRealClock(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// StartSession tears down any previous session completely, then builds and
// starts the pipeline for sess. Concurrent calls are serialized; each start
// replaces whatever session the previous transition installed. A channel that
// cannot connect degrades to the disconnected state; it does not fail the
// session.
func (s *Service) StartSession(ctx context.Context, sess model.Session) error {
	if sess.AuthToken == "" {
		return ErrMissingToken
	}

	s.transition.Lock()
	defer s.transition.Unlock()

	s.mu.Lock()
	if s.newChannel == nil || s.newBackend == nil || s.source == nil {
		s.mu.Unlock()
		return ErrNotConfigured
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	old := s.detachLocked()
	s.mu.Unlock()

	// Old channel fully closed before the new one opens.
	s.shutdownSession(old)

	s.mu.Lock()
	s.generation++
	sctx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	backend := s.newBackend(sess)
	store := repository.NewMemStore()
	deduper := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	queue := eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	tracker := location.NewTracker(s.source, backend,
		location.WithInterval(s.locationInterval),
		location.WithClock(s.clock),
	)

	st := &sessionState{
		session:    sess,
		generation: s.generation,
		backend:    backend,
		ch:         s.newChannel(),
		queue:      queue,
		deduper:    deduper,
		tracker:    tracker,
		store:      store,
		cancel:     cancel,
		pumpDone:   make(chan struct{}),
		pollDone:   make(chan struct{}),
	}

	gen := st.generation
	st.alerts = alerts.New(
		alerts.WithTTL(s.alertTTL),
		alerts.WithClock(s.clock),
		alerts.WithRefreshHook(func() {
			s.refreshHazards(sctx, gen)
		}),
	)

	st.admitter = worker.NewAdmitter(queue, deduper, tracker, st.alerts, store,
		worker.WithRadiusKm(s.radiusKm),
	)

	s.sess = st
	s.mu.Unlock()

	tracker.Start(sctx)
	go st.admitter.Run(sctx)
	go s.pumpEvents(sctx, st)
	go s.pollHazards(sctx, st)
	go s.watchChannel(sctx, st)

	// Connect runs outside s.mu so a slow broker never holds up readers.
	if err := st.ch.Connect(sctx, sess.AuthToken); err != nil {
		// Non-fatal: connection state stays observable and the poller keeps
		// the list fresh.
		s.logger.Warn(sctx, "live channel connect failed, continuing degraded",
			logger.Error(err),
		)
	}

	s.logger.Info(sctx, "session started",
		logger.String("userID", sess.UserID),
		logger.Int("generation", gen),
	)
	return nil
}

// EndSession tears down the active session. No-op without one.
func (s *Service) EndSession() {
	s.transition.Lock()
	defer s.transition.Unlock()

	s.mu.Lock()
	st := s.detachLocked()
	s.mu.Unlock()

	s.shutdownSession(st)
}

// detachLocked removes the active session from the service so readers see it
// gone before its resources wind down. Must be called with s.mu held.
func (s *Service) detachLocked() *sessionState {
	st := s.sess
	s.sess = nil
	return st
}

// shutdownSession stops every session-scoped resource deterministically:
// channel, event pump, admission loop, poller, tracker, alert timers.
// Runs without holding s.mu so in-flight work can observe the detachment.
func (s *Service) shutdownSession(st *sessionState) {
	if st == nil {
		return
	}

	ctx := context.Background()
	st.cancel()

	// Closing the channel ends the pump, which closes the queue, which lets
	// the admitter drain and exit.
	st.ch.Disconnect()
	<-st.pumpDone
	_ = st.admitter.Shutdown(ctx)
	<-st.pollDone

	st.tracker.Stop()
	st.alerts.Close()

	if s.logger != nil {
		s.logger.Info(ctx, "session ended", logger.Int("generation", st.generation))
	}
}

// pumpEvents moves inbound channel events onto the bounded queue, preserving
// arrival order. Ends when the channel closes its event stream.
func (s *Service) pumpEvents(ctx context.Context, st *sessionState) {
	defer close(st.pumpDone)
	defer func() { _ = st.queue.Close() }()

	for ev := range st.ch.Events() {
		st.queue.Enqueue(ctx, ev)
	}
}

// pollHazards fetches the hazard list once at session start and then every
// refresh interval, independently of the push channel.
func (s *Service) pollHazards(ctx context.Context, st *sessionState) {
	defer close(st.pollDone)

	s.refreshHazards(ctx, st.generation)

	ticker := s.clock.NewTicker(s.refreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			s.refreshHazards(ctx, st.generation)
		}
	}
}

// refreshHazards fetches the list and applies it only if the session it was
// started for is still the current one. Failures are transient: logged,
// counted, retried by the next scheduled poll.
func (s *Service) refreshHazards(ctx context.Context, gen int) {
	s.mu.RLock()
	st := s.sess
	s.mu.RUnlock()
	if st == nil || st.generation != gen {
		return
	}

	metrics.RecordRefresh()
	hazards, err := st.backend.FetchHazards(ctx)
	if err != nil {
		metrics.RecordRefreshFailure()
		s.logger.Warn(ctx, "hazard list refresh failed", logger.Error(err))
		return
	}

	// Re-check: the session may have ended while the request was in flight.
	s.mu.RLock()
	current := s.sess
	s.mu.RUnlock()
	if current == nil || current.generation != gen {
		return
	}

	current.store.ReplaceAll(ctx, hazards)
	s.logger.Debug(ctx, "hazard list refreshed", logger.Int("hazards", len(hazards)))
}

// watchChannel logs connection state transitions for the session.
func (s *Service) watchChannel(ctx context.Context, st *sessionState) {
	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-st.ch.StateChanges():
			if !ok {
				return
			}
			s.logger.Info(ctx, "live channel state changed",
				logger.String("state", string(state)),
			)
		}
	}
}

// Alerts returns the active alert records in insertion order.
func (s *Service) Alerts(ctx context.Context) []model.AlertRecord {
	s.mu.RLock()
	st := s.sess
	s.mu.RUnlock()
	if st == nil {
		return nil
	}
	return st.alerts.Snapshot()
}

// DismissAlert removes the alert with the given id. Unknown ids are a no-op.
func (s *Service) DismissAlert(ctx context.Context, id string) {
	s.mu.RLock()
	st := s.sess
	s.mu.RUnlock()
	if st == nil {
		return
	}
	st.alerts.Dismiss(id)
}

// Hazards returns the known hazards sorted by distance from the current
// position, or in arrival order before the first fix.
func (s *Service) Hazards(ctx context.Context) []model.HazardEvent {
	s.mu.RLock()
	st := s.sess
	s.mu.RUnlock()
	if st == nil {
		return nil
	}
	return st.store.ListByDistance(ctx, st.tracker.Position())
}

// Position returns the current position (nil before first fix) and whether
// location sampling is currently working.
func (s *Service) Position(ctx context.Context) (*model.Position, bool) {
	s.mu.RLock()
	st := s.sess
	s.mu.RUnlock()
	if st == nil {
		return nil, false
	}
	return st.tracker.Position(), st.tracker.Available()
}

// SubmitReport forwards a voice report to the backend.
func (s *Service) SubmitReport(ctx context.Context, contentType string, body io.Reader) error {
	s.mu.RLock()
	st := s.sess
	s.mu.RUnlock()
	if st == nil {
		return ErrNoSession
	}
	return st.backend.SubmitReport(ctx, contentType, body)
}

// ConnectionState reports the live channel state for the active session.
func (s *Service) ConnectionState() string {
	s.mu.RLock()
	st := s.sess
	s.mu.RUnlock()
	if st == nil {
		return string(channel.StateDisconnected)
	}
	return string(st.ch.State())
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	st := s.sess
	generation := s.generation
	s.mu.RUnlock()

	stats := map[string]interface{}{
		"sessionActive": st != nil,
		"generation":    generation,
		"radiusKm":      s.radiusKm,
	}

	if st != nil {
		ctx := context.Background()
		stats["userID"] = st.session.UserID
		stats["connectionState"] = string(st.ch.State())
		stats["alertsActive"] = st.alerts.Len()
		stats["hazardsTracked"] = st.store.Count(ctx)
		stats["queueLength"] = st.queue.Len(ctx)
		stats["dedupeSize"] = st.deduper.Size()
		stats["positionKnown"] = st.tracker.Position() != nil
		stats["locationAvailable"] = st.tracker.Available()
	}

	return stats
}
