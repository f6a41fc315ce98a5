package location

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/roadpulse/roadpulse/internal/domain/model"
	"github.com/roadpulse/roadpulse/pkg/logger"
	"github.com/roadpulse/roadpulse/pkg/metrics"
)

// DefaultInterval is the resampling period.
const DefaultInterval = 30 * time.Second

// Submitter pushes sampled positions to the backend.
type Submitter interface {
	SubmitLocation(ctx context.Context, pos model.Position) error
}

// Tracker samples the position source once at start and then on a fixed
// interval. Each successful sample updates local state (last-write-wins) and
// is pushed to the backend fire-and-forget.
type Tracker struct {
	source    Source
	submitter Submitter
	interval  time.Duration
	clock     clockwork.Clock

	mu          sync.RWMutex
	pos         *model.Position
	unavailable bool

	stop    chan struct{}
	done    chan struct{}
	once    sync.Once
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithInterval sets the resampling period.
func WithInterval(interval time.Duration) Option {
	return func(t *Tracker) {
		if interval > 0 {
			t.interval = interval
		}
	}
}

// WithClock sets the time source. Tests inject a fake clock here.
func WithClock(clock clockwork.Clock) Option {
	return func(t *Tracker) {
		if clock != nil {
			t.clock = clock
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}

// NewTracker creates a tracker for the given source and submitter.
// Submitter may be nil, in which case samples stay local.
func NewTracker(source Source, submitter Submitter, opts ...Option) *Tracker {
	t := &Tracker{
		source:    source,
		submitter: submitter,
		interval:  DefaultInterval,
		clock:     clockwork.NewRealClock(),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
		logger:    logger.Get().Named("location"),
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Start takes one immediate sample and then launches the interval loop.
// A failed first sample surfaces through Available(); it blocks nothing.
func (t *Tracker) Start(ctx context.Context) {
	t.mu.Lock()
	if t.started {
		t.mu.Unlock()
		return
	}
	t.started = true
	t.mu.Unlock()

	t.sample(ctx)

	go t.run(ctx)
}

func (t *Tracker) run(ctx context.Context) {
	defer close(t.done)

	ticker := t.clock.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stop:
			return
		case <-ticker.Chan():
			t.sample(ctx)
		}
	}
}

// Stop cancels the sampling loop. Safe to call more than once.
func (t *Tracker) Stop() {
	t.once.Do(func() {
		close(t.stop)
	})

	t.mu.RLock()
	started := t.started
	t.mu.RUnlock()
	if started {
		<-t.done
	}
}

// Position returns a copy of the most recently known position, or nil before
// the first successful fix.
func (t *Tracker) Position() *model.Position {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.pos == nil {
		return nil
	}
	p := *t.pos
	return &p
}

// Available reports whether the last sample attempt succeeded. False is the
// persistent location-unavailable advisory state, not an error.
func (t *Tracker) Available() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return !t.unavailable && t.pos != nil
}

func (t *Tracker) sample(ctx context.Context) {
	pos, err := t.source.Sample(ctx)
	if err != nil {
		metrics.RecordLocationFailure()
		t.mu.Lock()
		t.unavailable = true
		t.mu.Unlock()
		t.logger.Warn(ctx, "position sample failed",
			logger.String("source", t.source.Name()),
			logger.Error(err),
		)
		return
	}

	metrics.RecordLocationSample()
	t.mu.Lock()
	t.pos = &pos
	t.unavailable = false
	t.mu.Unlock()

	if t.submitter != nil {
		go func() {
			if err := t.submitter.SubmitLocation(ctx, pos); err != nil {
				metrics.RecordLocationSubmitFailure()
				t.logger.Warn(ctx, "position submit failed", logger.Error(err))
			}
		}()
	}
}
