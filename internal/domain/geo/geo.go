// Package geo provides the shared great-circle distance routine and the
// proximity admission rule built on it.
//
// Admission, hazard-list sorting, and map annotation must all go through
// Distance so the three call sites cannot drift apart.
package geo

import (
	"math"

	"github.com/roadpulse/roadpulse/internal/domain/model"
)

// Geometry constants.
const (
	earthRadiusKm = 6371.0

	// DefaultAdmissionRadiusKm is the proximity threshold controlling which
	// events become alerts. The boundary is inclusive.
	DefaultAdmissionRadiusKm = 3.0
)

// Distance returns the haversine great-circle distance between a and b in
// kilometers.
func Distance(a, b model.Position) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)

	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// Admit reports whether ev is nearby relative to pos. A nil pos means no
// position fix is known yet and nothing is admitted.
func Admit(pos *model.Position, ev model.HazardEvent, radiusKm float64) bool {
	if pos == nil {
		return false
	}
	return Distance(*pos, ev.Position) <= radiusKm
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
