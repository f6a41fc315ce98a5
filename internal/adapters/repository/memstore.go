package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/roadpulse/roadpulse/internal/domain/geo"
	"github.com/roadpulse/roadpulse/internal/domain/model"
	"github.com/roadpulse/roadpulse/pkg/metrics"
)

// MemStore implements Store with a mutex-guarded map plus arrival order.
//
// Distance ordering is computed at read time against the caller's position:
// the reference point moves with every location sample, so no maintained
// index could stay valid.
type MemStore struct {
	mu      sync.RWMutex
	hazards map[string]model.HazardEvent
	order   []string
}

// NewMemStore creates an empty hazard store.
func NewMemStore() *MemStore {
	return &MemStore{
		hazards: make(map[string]model.HazardEvent),
	}
}

// Upsert inserts or replaces the hazard with ev's id.
func (s *MemStore) Upsert(ctx context.Context, ev model.HazardEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.hazards[ev.ID]
	s.hazards[ev.ID] = ev
	if !exists {
		s.order = append(s.order, ev.ID)
	}
	metrics.UpdateHazardsTracked(len(s.hazards))
	return !exists
}

// Get returns the hazard with the given id.
func (s *MemStore) Get(ctx context.Context, id string) (model.HazardEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ev, ok := s.hazards[id]
	if !ok {
		return model.HazardEvent{}, ErrNotFound
	}
	return ev, nil
}

// List returns all hazards in arrival order.
func (s *MemStore) List(ctx context.Context) []model.HazardEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// ListByDistance returns all hazards ordered by distance from pos.
func (s *MemStore) ListByDistance(ctx context.Context, pos *model.Position) []model.HazardEvent {
	s.mu.RLock()
	out := s.snapshot()
	s.mu.RUnlock()

	if pos == nil {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		return geo.Distance(*pos, out[i].Position) < geo.Distance(*pos, out[j].Position)
	})
	return out
}

// ReplaceAll swaps the full hazard set.
func (s *MemStore) ReplaceAll(ctx context.Context, hazards []model.HazardEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hazards = make(map[string]model.HazardEvent, len(hazards))
	s.order = s.order[:0]
	for _, ev := range hazards {
		if _, exists := s.hazards[ev.ID]; exists {
			continue
		}
		s.hazards[ev.ID] = ev
		s.order = append(s.order, ev.ID)
	}
	metrics.UpdateHazardsTracked(len(s.hazards))
}

// Count returns the number of hazards tracked.
func (s *MemStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.hazards)
}

// snapshot copies the hazard set in arrival order. Callers hold s.mu.
func (s *MemStore) snapshot() []model.HazardEvent {
	out := make([]model.HazardEvent, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.hazards[id])
	}
	return out
}
