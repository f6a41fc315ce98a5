package config_test

import (
	"context"
	"testing"

	"github.com/roadpulse/roadpulse/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("Given a default configuration", t, func() {
		cfg := config.New(context.Background())

		Convey("Then the pipeline defaults are set", func() {
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.Addr, ShouldEqual, ":9080")
			So(cfg.AdmissionRadiusKm, ShouldEqual, 3.0)
			So(cfg.AlertTTLSeconds, ShouldEqual, 10)
			So(cfg.LocationIntervalSeconds, ShouldEqual, 30)
			So(cfg.RefreshIntervalSeconds, ShouldEqual, 30)
			So(cfg.RequestTimeoutSeconds, ShouldEqual, 60)
			So(cfg.UploadTimeoutSeconds, ShouldEqual, 120)
			So(cfg.QueueSize, ShouldBeGreaterThan, 0)
			So(cfg.DedupeSize, ShouldBeGreaterThan, 0)
		})

		Convey("Then no session credentials are preset", func() {
			So(cfg.AuthToken, ShouldBeEmpty)
			So(cfg.UserID, ShouldBeEmpty)
		})
	})
}
