package rest_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	rest "github.com/roadpulse/roadpulse/internal/adapters/rest"
	"github.com/roadpulse/roadpulse/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestClient_FetchHazards(t *testing.T) {
	Convey("Given a backend serving a hazard list", t, func() {
		var gotAuth string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			if r.URL.Path != "/hazards" || r.Method != http.MethodGet {
				http.NotFound(w, r)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			io.WriteString(w, `[
				{
					"id": "h-1",
					"hazard_type": "pothole",
					"description": "deep pothole",
					"confidence": 90,
					"location": {"lat": 40.7, "lon": -74.0},
					"timestamp": 1723456789,
					"user_id": "driver-1"
				},
				{
					"id": "h-2",
					"hazard_type": "flooding",
					"location": {"lat": 40.8, "lon": -74.1},
					"timestamp": 1723456790
				}
			]`)
		}))
		defer srv.Close()

		client := rest.NewClient(srv.URL, rest.WithToken("secret-token"))

		Convey("When fetching hazards", func() {
			hazards, err := client.FetchHazards(context.Background())

			Convey("Then the list decodes into domain events", func() {
				So(err, ShouldBeNil)
				So(hazards, ShouldHaveLength, 2)
				So(hazards[0].ID, ShouldEqual, "h-1")
				So(hazards[0].Category, ShouldEqual, "pothole")
				So(hazards[0].Position.Latitude, ShouldEqual, 40.7)
				So(hazards[0].ReportedAt, ShouldEqual, time.Unix(1723456789, 0).UTC())
				So(hazards[1].ID, ShouldEqual, "h-2")
			})

			Convey("And the bearer token is attached", func() {
				So(err, ShouldBeNil)
				So(gotAuth, ShouldEqual, "Bearer secret-token")
			})
		})
	})

	Convey("Given a backend returning errors", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		client := rest.NewClient(srv.URL)

		Convey("When fetching hazards", func() {
			_, err := client.FetchHazards(context.Background())

			Convey("Then the status surfaces as an error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "500")
			})
		})
	})

	Convey("Given a backend serving malformed JSON", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{not json`)
		}))
		defer srv.Close()

		client := rest.NewClient(srv.URL)

		Convey("When fetching hazards", func() {
			_, err := client.FetchHazards(context.Background())

			Convey("Then decoding fails cleanly", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestClient_SubmitLocation(t *testing.T) {
	Convey("Given a backend accepting location submissions", t, func() {
		type received struct {
			UserID string  `json:"user_id"`
			Lat    float64 `json:"lat"`
			Lon    float64 `json:"lon"`
		}
		var got received
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/locations" || r.Method != http.MethodPost {
				http.NotFound(w, r)
				return
			}
			_ = json.NewDecoder(r.Body).Decode(&got)
			w.WriteHeader(http.StatusNoContent)
		}))
		defer srv.Close()

		client := rest.NewClient(srv.URL, rest.WithUserID("driver-1"))

		Convey("When submitting a position", func() {
			err := client.SubmitLocation(context.Background(), model.Position{Latitude: 40.5, Longitude: -74.2})

			Convey("Then the payload carries the user and coordinates", func() {
				So(err, ShouldBeNil)
				So(got.UserID, ShouldEqual, "driver-1")
				So(got.Lat, ShouldEqual, 40.5)
				So(got.Lon, ShouldEqual, -74.2)
			})
		})
	})

	Convey("Given a backend rejecting submissions", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		client := rest.NewClient(srv.URL)

		Convey("When submitting a position", func() {
			err := client.SubmitLocation(context.Background(), model.Position{})

			Convey("Then the rejection surfaces as an error", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestClient_SubmitReport(t *testing.T) {
	Convey("Given a backend accepting report uploads", t, func() {
		var gotContentType string
		var gotBody []byte
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/reports" || r.Method != http.MethodPost {
				http.NotFound(w, r)
				return
			}
			gotContentType = r.Header.Get("Content-Type")
			gotBody, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusAccepted)
		}))
		defer srv.Close()

		client := rest.NewClient(srv.URL)

		Convey("When uploading an audio report", func() {
			err := client.SubmitReport(context.Background(), "audio/wav", strings.NewReader("RIFF-fake-audio"))

			Convey("Then the bytes pass through untouched", func() {
				So(err, ShouldBeNil)
				So(gotContentType, ShouldEqual, "audio/wav")
				So(string(gotBody), ShouldEqual, "RIFF-fake-audio")
			})
		})
	})
}
