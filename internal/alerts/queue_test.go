package alerts_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/roadpulse/roadpulse/internal/alerts"
	"github.com/roadpulse/roadpulse/internal/domain/model"
	"github.com/roadpulse/roadpulse/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func hazard(id string) model.HazardEvent {
	return model.HazardEvent{
		ID:       id,
		Category: "pothole",
		Position: model.Position{Latitude: 40.0, Longitude: -74.0},
	}
}

// eventuallyLen polls because fake-clock timer callbacks run on their own
// goroutines.
func eventuallyLen(q *alerts.Queue, want int) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if q.Len() == want {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return q.Len() == want
}

func TestQueue(t *testing.T) {
	Convey("Given an alert queue with a fake clock", t, func() {
		clock := clockwork.NewFakeClock()
		ctx := context.Background()

		Convey("When a hazard is enqueued", func() {
			q := alerts.New(alerts.WithClock(clock))
			defer q.Close()

			record := q.Enqueue(ctx, hazard("h1"))

			Convey("Then the record gets a fresh id and timestamp", func() {
				So(record.ID, ShouldNotBeEmpty)
				So(record.Hazard.ID, ShouldEqual, "h1")
				So(record.ReceivedAt, ShouldEqual, clock.Now())
				So(q.Len(), ShouldEqual, 1)
			})
		})

		Convey("When the display lifetime elapses", func() {
			q := alerts.New(alerts.WithClock(clock), alerts.WithTTL(10*time.Second))
			defer q.Close()

			q.Enqueue(ctx, hazard("h1"))

			Convey("And just under the lifetime has passed", func() {
				clock.Advance(9 * time.Second)

				Convey("Then the record is still active", func() {
					So(q.Len(), ShouldEqual, 1)
				})
			})

			Convey("And the full lifetime has passed", func() {
				clock.Advance(10 * time.Second)

				Convey("Then the record expires on its own", func() {
					So(eventuallyLen(q, 0), ShouldBeTrue)
				})
			})
		})

		Convey("When records are dismissed", func() {
			q := alerts.New(alerts.WithClock(clock))
			defer q.Close()

			record := q.Enqueue(ctx, hazard("h1"))

			Convey("And the id is known", func() {
				q.Dismiss(record.ID)

				Convey("Then the record is gone and its expiry canceled", func() {
					So(q.Len(), ShouldEqual, 0)

					clock.Advance(time.Minute)
					So(q.Len(), ShouldEqual, 0)
				})
			})

			Convey("And the id is unknown", func() {
				q.Dismiss("no-such-id")

				Convey("Then nothing changes", func() {
					So(q.Len(), ShouldEqual, 1)
				})
			})

			Convey("And the same id is dismissed twice", func() {
				q.Dismiss(record.ID)
				q.Dismiss(record.ID)

				Convey("Then the second dismissal is a no-op", func() {
					So(q.Len(), ShouldEqual, 0)
				})
			})
		})

		Convey("When several hazards are enqueued", func() {
			q := alerts.New(alerts.WithClock(clock))
			defer q.Close()

			q.Enqueue(ctx, hazard("h1"))
			q.Enqueue(ctx, hazard("h2"))
			q.Enqueue(ctx, hazard("h3"))

			Convey("Then the snapshot preserves insertion order", func() {
				snap := q.Snapshot()
				So(snap, ShouldHaveLength, 3)
				So(snap[0].Hazard.ID, ShouldEqual, "h1")
				So(snap[1].Hazard.ID, ShouldEqual, "h2")
				So(snap[2].Hazard.ID, ShouldEqual, "h3")
			})

			Convey("And dismissing the middle one keeps the rest in order", func() {
				snap := q.Snapshot()
				q.Dismiss(snap[1].ID)

				after := q.Snapshot()
				So(after, ShouldHaveLength, 2)
				So(after[0].Hazard.ID, ShouldEqual, "h1")
				So(after[1].Hazard.ID, ShouldEqual, "h3")
			})
		})

		Convey("When a refresh hook is configured", func() {
			var calls atomic.Int64
			q := alerts.New(
				alerts.WithClock(clock),
				alerts.WithRefreshHook(func() { calls.Add(1) }),
			)
			defer q.Close()

			q.Enqueue(ctx, hazard("h1"))
			q.Enqueue(ctx, hazard("h2"))

			Convey("Then the hook fires once per enqueue", func() {
				deadline := time.Now().Add(2 * time.Second)
				for calls.Load() < 2 && time.Now().Before(deadline) {
					time.Sleep(5 * time.Millisecond)
				}
				So(calls.Load(), ShouldEqual, 2)
			})
		})

		Convey("When the queue is closed", func() {
			q := alerts.New(alerts.WithClock(clock))

			q.Enqueue(ctx, hazard("h1"))
			q.Close()

			Convey("Then the records are dropped", func() {
				So(q.Len(), ShouldEqual, 0)
			})

			Convey("And further enqueues are rejected", func() {
				q.Enqueue(ctx, hazard("h2"))
				So(q.Len(), ShouldEqual, 0)
			})

			Convey("And closing again is harmless", func() {
				q.Close()
				So(q.Len(), ShouldEqual, 0)
			})
		})
	})
}
