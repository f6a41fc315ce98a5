// Package repository defines the hazard store interface and errors.
package repository

import (
	"context"

	"github.com/roadpulse/roadpulse/internal/domain/model"
)

// Store holds the latest known hazard events backing the list and map views.
type Store interface {
	// Upsert inserts or replaces the hazard with ev's id.
	// Returns true if the hazard was new.
	Upsert(ctx context.Context, ev model.HazardEvent) bool

	// Get returns the hazard with the given id.
	// Returns ErrNotFound if unknown.
	Get(ctx context.Context, id string) (model.HazardEvent, error)

	// List returns all hazards in arrival order.
	List(ctx context.Context) []model.HazardEvent

	// ListByDistance returns all hazards ordered by distance from pos,
	// nearest first. A nil pos falls back to arrival order.
	ListByDistance(ctx context.Context, pos *model.Position) []model.HazardEvent

	// ReplaceAll swaps the full hazard set, as delivered by a list refresh.
	ReplaceAll(ctx context.Context, hazards []model.HazardEvent)

	// Count returns the number of hazards tracked.
	Count(ctx context.Context) int
}
