// Command test-events publishes synthetic hazard alerts to the live channel
// so the pipeline can be exercised without the production backend.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/nats-io/nats.go"
)

// Default configuration constants.
const (
	defaultNumEvents = 100
	defaultInterval  = 200 * time.Millisecond
	subjectHazard    = "roadpulse.hazard.alert"
)

// Spread of generated coordinates around the center, in degrees. Roughly
// 0.05 degrees of latitude is 5.5 km, so most events land outside the
// admission radius and a visible fraction inside it.
const coordSpread = 0.05

var hazardTypes = []string{"pothole", "accident", "debris", "flooding", "ice", "construction"}

type hazardAlert struct {
	ID          string  `json:"id,omitempty"`
	HazardType  string  `json:"hazard_type"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	Location    *struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"location"`
	Timestamp int64  `json:"timestamp"`
	UserID    string `json:"user_id"`
}

func main() {
	var (
		url       = flag.String("url", nats.DefaultURL, "NATS server URL")
		token     = flag.String("token", "", "Connection token")
		numEvents = flag.Int("events", defaultNumEvents, "Number of hazard alerts to publish")
		interval  = flag.Duration("interval", defaultInterval, "Delay between alerts")
		centerLat = flag.Float64("lat", 40.0, "Center latitude for generated hazards")
		centerLon = flag.Float64("lon", -74.0, "Center longitude for generated hazards")
		dropLoc   = flag.Float64("drop-location", 0.1, "Fraction of alerts published without a location")
	)
	flag.Parse()

	gofakeit.Seed(time.Now().UnixNano())

	opts := []nats.Option{nats.Name("roadpulse-test-events")}
	if *token != "" {
		opts = append(opts, nats.Token(*token))
	}
	nc, err := nats.Connect(*url, opts...)
	if err != nil {
		log.Fatalf("connect to %s: %v", *url, err)
	}
	defer nc.Drain() //nolint:errcheck

	log.Printf("publishing %d hazard alerts to %s", *numEvents, subjectHazard)

	for i := 0; i < *numEvents; i++ {
		alert := generateAlert(*centerLat, *centerLon, *dropLoc)
		data, err := json.Marshal(alert)
		if err != nil {
			log.Printf("marshal alert: %v", err)
			continue
		}
		if err := nc.Publish(subjectHazard, data); err != nil {
			log.Printf("publish alert: %v", err)
			continue
		}
		if *interval > 0 && i < *numEvents-1 {
			time.Sleep(*interval)
		}
	}

	log.Printf("done")
}

func generateAlert(centerLat, centerLon, dropLoc float64) hazardAlert {
	alert := hazardAlert{
		HazardType:  hazardTypes[rand.Intn(len(hazardTypes))],
		Description: gofakeit.Sentence(6),
		Confidence:  50 + rand.Float64()*50,
		Timestamp:   time.Now().Unix(),
		UserID:      gofakeit.Username(),
	}
	if rand.Float64() >= dropLoc {
		alert.Location = &struct {
			Lat float64 `json:"lat"`
			Lon float64 `json:"lon"`
		}{
			Lat: centerLat + (rand.Float64()*2-1)*coordSpread,
			Lon: centerLon + (rand.Float64()*2-1)*coordSpread,
		}
	}
	return alert
}
