// Package location maintains the single current position, refreshed
// periodically for the lifetime of a session.
package location

import (
	"context"

	"github.com/roadpulse/roadpulse/internal/domain/model"
)

// Source produces position samples. Implementations wrap whatever sensor or
// feed supplies the device location.
type Source interface {
	Name() string
	Sample(ctx context.Context) (model.Position, error)
}

// FixedSource always reports the same position. Useful as the default when
// the deployment pins the dashboard to a known location.
type FixedSource struct {
	pos model.Position
}

// NewFixedSource creates a source pinned to pos.
func NewFixedSource(pos model.Position) *FixedSource {
	return &FixedSource{pos: pos}
}

// Name identifies the source.
func (s *FixedSource) Name() string { return "fixed" }

// Sample returns the pinned position.
func (s *FixedSource) Sample(ctx context.Context) (model.Position, error) {
	return s.pos, nil
}
