package location_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/roadpulse/roadpulse/internal/domain/model"
	"github.com/roadpulse/roadpulse/internal/location"
	"github.com/roadpulse/roadpulse/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// scriptedSource replays a fixed sequence of samples, repeating the last one.
type scriptedSource struct {
	mu      sync.Mutex
	samples []sampleResult
	calls   int
}

type sampleResult struct {
	pos model.Position
	err error
}

func (s *scriptedSource) Name() string { return "scripted" }

func (s *scriptedSource) Sample(ctx context.Context) (model.Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	if i >= len(s.samples) {
		i = len(s.samples) - 1
	}
	s.calls++
	return s.samples[i].pos, s.samples[i].err
}

func (s *scriptedSource) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type recordingSubmitter struct {
	mu        sync.Mutex
	submitted []model.Position
	err       error
}

func (r *recordingSubmitter) SubmitLocation(ctx context.Context, pos model.Position) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitted = append(r.submitted, pos)
	return r.err
}

func (r *recordingSubmitter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.submitted)
}

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func TestTracker(t *testing.T) {
	Convey("Given a location tracker with a fake clock", t, func() {
		clock := clockwork.NewFakeClock()
		ctx := context.Background()
		home := model.Position{Latitude: 40.0, Longitude: -74.0}

		Convey("When the tracker has not started", func() {
			tr := location.NewTracker(location.NewFixedSource(home), nil, location.WithClock(clock))

			Convey("Then no position is known", func() {
				So(tr.Position(), ShouldBeNil)
				So(tr.Available(), ShouldBeFalse)
			})

			Convey("And stopping it anyway does not hang", func() {
				tr.Stop()
				So(tr.Position(), ShouldBeNil)
			})
		})

		Convey("When the tracker starts", func() {
			src := &scriptedSource{samples: []sampleResult{{pos: home}}}
			tr := location.NewTracker(src, nil, location.WithClock(clock))
			tr.Start(ctx)
			defer tr.Stop()

			Convey("Then it samples immediately, before any tick", func() {
				So(src.callCount(), ShouldEqual, 1)
				So(tr.Position(), ShouldNotBeNil)
				So(*tr.Position(), ShouldResemble, home)
				So(tr.Available(), ShouldBeTrue)
			})

			Convey("And the returned position is a copy", func() {
				p := tr.Position()
				p.Latitude = 0

				So(tr.Position().Latitude, ShouldEqual, home.Latitude)
			})
		})

		Convey("When the interval elapses", func() {
			moved := model.Position{Latitude: 40.1, Longitude: -74.1}
			src := &scriptedSource{samples: []sampleResult{{pos: home}, {pos: moved}}}
			tr := location.NewTracker(src, nil,
				location.WithClock(clock),
				location.WithInterval(30*time.Second),
			)
			tr.Start(ctx)
			defer tr.Stop()

			clock.BlockUntil(1)
			clock.Advance(30 * time.Second)

			Convey("Then a fresh sample replaces the old position", func() {
				So(eventually(func() bool { return src.callCount() >= 2 }), ShouldBeTrue)
				So(eventually(func() bool { return tr.Position().Latitude == moved.Latitude }), ShouldBeTrue)
			})
		})

		Convey("When sampling fails", func() {
			src := &scriptedSource{samples: []sampleResult{
				{pos: home},
				{err: errors.New("gps lost")},
			}}
			tr := location.NewTracker(src, nil,
				location.WithClock(clock),
				location.WithInterval(30*time.Second),
			)
			tr.Start(ctx)
			defer tr.Stop()

			clock.BlockUntil(1)
			clock.Advance(30 * time.Second)

			Convey("Then the advisory flag flips but the last fix is kept", func() {
				So(eventually(func() bool { return !tr.Available() }), ShouldBeTrue)
				So(tr.Position(), ShouldNotBeNil)
				So(tr.Position().Latitude, ShouldEqual, home.Latitude)
			})
		})

		Convey("When the very first sample fails", func() {
			src := &scriptedSource{samples: []sampleResult{{err: errors.New("no fix")}}}
			tr := location.NewTracker(src, nil, location.WithClock(clock))
			tr.Start(ctx)
			defer tr.Stop()

			Convey("Then no position is known and the tracker keeps running", func() {
				So(tr.Position(), ShouldBeNil)
				So(tr.Available(), ShouldBeFalse)
			})
		})

		Convey("When a submitter is attached", func() {
			sub := &recordingSubmitter{}
			tr := location.NewTracker(location.NewFixedSource(home), sub, location.WithClock(clock))
			tr.Start(ctx)
			defer tr.Stop()

			Convey("Then each successful sample is pushed to it", func() {
				So(eventually(func() bool { return sub.count() >= 1 }), ShouldBeTrue)
			})
		})

		Convey("When the submitter errors", func() {
			sub := &recordingSubmitter{err: errors.New("backend down")}
			tr := location.NewTracker(location.NewFixedSource(home), sub, location.WithClock(clock))
			tr.Start(ctx)
			defer tr.Stop()

			Convey("Then local state is unaffected", func() {
				So(eventually(func() bool { return sub.count() >= 1 }), ShouldBeTrue)
				So(tr.Position(), ShouldNotBeNil)
				So(tr.Available(), ShouldBeTrue)
			})
		})

		Convey("When the tracker stops", func() {
			src := &scriptedSource{samples: []sampleResult{{pos: home}}}
			tr := location.NewTracker(src, nil,
				location.WithClock(clock),
				location.WithInterval(30*time.Second),
			)
			tr.Start(ctx)

			clock.BlockUntil(1)
			tr.Stop()

			Convey("Then no further samples are taken", func() {
				before := src.callCount()
				clock.Advance(5 * time.Minute)
				time.Sleep(20 * time.Millisecond)
				So(src.callCount(), ShouldEqual, before)
			})

			Convey("And stopping again is safe", func() {
				tr.Stop()
				So(tr.Position(), ShouldNotBeNil)
			})
		})
	})
}
