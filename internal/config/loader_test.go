package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/roadpulse/roadpulse/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLoad(t *testing.T) {
	Convey("Given the layered config loader", t, func() {
		ctx := context.Background()

		// Convey re-runs this block for every leaf, but t.Setenv only
		// restores at test end, so values set in one branch would leak
		// into its siblings. Start each branch from a clean environment.
		for _, key := range []string{
			"ROADPULSE_ADDR",
			"ROADPULSE_ADMISSION_RADIUS_KM",
			"ROADPULSE_NATS_URL",
			"ROADPULSE_CONFIG",
			"ROADPULSE_ALERT_TTL_SECONDS",
		} {
			t.Setenv(key, "")
			So(os.Unsetenv(key), ShouldBeNil)
		}

		Convey("When nothing overrides the defaults", func() {
			cfg, err := config.Load(ctx)

			Convey("Then the defaults load cleanly", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":9080")
				So(cfg.AdmissionRadiusKm, ShouldEqual, 3.0)
			})
		})

		Convey("When environment variables override", func() {
			t.Setenv("ROADPULSE_ADDR", ":7070")
			t.Setenv("ROADPULSE_ADMISSION_RADIUS_KM", "5.5")
			t.Setenv("ROADPULSE_NATS_URL", "nats://broker:4222")

			cfg, err := config.Load(ctx)

			Convey("Then the env values win", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":7070")
				So(cfg.AdmissionRadiusKm, ShouldEqual, 5.5)
				So(cfg.NATSURL, ShouldEqual, "nats://broker:4222")
			})

			Convey("And untouched fields keep their defaults", func() {
				So(err, ShouldBeNil)
				So(cfg.AlertTTLSeconds, ShouldEqual, 10)
			})
		})

		Convey("When a YAML file is provided", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			err := os.WriteFile(path, []byte("addr: \":6060\"\nqueue_size: 128\n"), 0o600)
			So(err, ShouldBeNil)
			t.Setenv("ROADPULSE_CONFIG", path)

			cfg, err := config.Load(ctx)

			Convey("Then the file values apply", func() {
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":6060")
				So(cfg.QueueSize, ShouldEqual, 128)
			})

			Convey("And env still outranks the file", func() {
				t.Setenv("ROADPULSE_ADDR", ":5050")

				cfg, err := config.Load(ctx)
				So(err, ShouldBeNil)
				So(cfg.Addr, ShouldEqual, ":5050")
				So(cfg.QueueSize, ShouldEqual, 128)
			})
		})

		Convey("When the config file does not exist", func() {
			t.Setenv("ROADPULSE_CONFIG", "/nonexistent/config.yaml")

			_, err := config.Load(ctx)

			Convey("Then loading fails with the load sentinel", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, config.ErrLoadConfig.Error())
			})
		})

		Convey("When a value fails validation", func() {
			t.Setenv("ROADPULSE_ALERT_TTL_SECONDS", "0")

			_, err := config.Load(ctx)

			Convey("Then loading fails with the invalid sentinel", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, config.ErrInvalidConfig.Error())
			})
		})
	})
}
