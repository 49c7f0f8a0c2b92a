// Package markers keeps the rendered map markers consistent with the
// viewport, the active filters and the underlying data.
package markers

import (
	"context"
	"sync"

	"loolook_backend/internal/toilets/transport"
	"loolook_backend/platform/events"
)

// Event names published by the store.
const (
	EventFiltersChanged   = "markers.filters_changed"
	EventSelectionChanged = "markers.selection_changed"
)

// FiltersChanged is published after a filter merge with the resulting
// full filter state.
type FiltersChanged struct {
	events.BaseEvent
	Filters map[string]bool
}

func (FiltersChanged) EventName() string { return EventFiltersChanged }

// SelectionChanged is published after the selection is replaced.
// Selected is nil when the selection was cleared.
type SelectionChanged struct {
	events.BaseEvent
	Selected *transport.Toilet
}

func (SelectionChanged) EventName() string { return EventSelectionChanged }

// State is a consistent read of the store.
type State struct {
	Filters  map[string]bool
	Selected *transport.Toilet
}

// MapStore is the single source of truth for active filters and the
// selected record. It is safe for concurrent use.
type MapStore struct {
	mu       sync.RWMutex
	filters  map[string]bool
	selected *transport.Toilet
	bus      events.Bus
}

// NewMapStore creates an empty store. bus may be nil.
func NewMapStore(bus events.Bus) *MapStore {
	return &MapStore{
		filters: make(map[string]bool),
		bus:     bus,
	}
}

// SetFilters shallow-merges the given entries into the current filters.
// Keys not present in the argument keep their value; unknown keys are
// legal and simply ignored by consumers.
func (s *MapStore) SetFilters(ctx context.Context, partial map[string]bool) {
	s.mu.Lock()
	for k, v := range partial {
		s.filters[k] = v
	}
	merged := copyFilters(s.filters)
	s.mu.Unlock()

	if s.bus != nil {
		s.bus.Publish(ctx, FiltersChanged{BaseEvent: events.NewBaseEvent(), Filters: merged})
	}
}

// SetSelected replaces the selection wholesale. nil clears it.
func (s *MapStore) SetSelected(ctx context.Context, t *transport.Toilet) {
	s.mu.Lock()
	s.selected = t
	s.mu.Unlock()

	if s.bus != nil {
		s.bus.Publish(ctx, SelectionChanged{BaseEvent: events.NewBaseEvent(), Selected: t})
	}
}

// Snapshot returns a consistent copy of the current state.
func (s *MapStore) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Filters:  copyFilters(s.filters),
		Selected: s.selected,
	}
}

// ActiveFilters returns the keys currently toggled on.
func (s *MapStore) ActiveFilters() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	active := make([]string, 0, len(s.filters))
	for k, v := range s.filters {
		if v {
			active = append(active, k)
		}
	}
	return active
}

func copyFilters(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
