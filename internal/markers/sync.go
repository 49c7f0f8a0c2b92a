package markers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"loolook_backend/internal/geo"
	"loolook_backend/internal/geocode"
	"loolook_backend/internal/toilets/transport"
	"loolook_backend/platform/events"
	"loolook_backend/platform/logger"
)

const (
	debounceDelay = 300 * time.Millisecond
	chunkSize     = 200
)

// ToiletSource fetches the rows visible to the map view.
type ToiletSource interface {
	FetchVisible(ctx context.Context) ([]transport.Toilet, error)
}

// GeocodeFallback resolves an address for rows without stored
// coordinates.
type GeocodeFallback interface {
	Resolve(ctx context.Context, addr string) (*geo.Point, error)
}

// ClusterLayer receives the finished marker set. Replace must swap the
// whole set at once; the layer never shows a partial update.
type ClusterLayer interface {
	Replace(markers []Marker)
}

// Marker pairs a toilet row with its resolved position.
type Marker struct {
	Row      transport.Toilet
	Position geo.Point
}

// Synchronizer keeps the cluster layer in sync with the store and the
// backend. Triggers are debounced; a new trigger cancels the in-flight
// fetch so at most one is outstanding and stale results never commit.
type Synchronizer struct {
	source  ToiletSource
	geocode GeocodeFallback
	cluster ClusterLayer
	store   *MapStore
	log     *logger.Logger

	// cache memoizes fallback lookups: a given address is resolved at
	// most once per session.
	cache *geocode.MemoryCache

	mu         sync.Mutex
	timer      *time.Timer
	cancel     context.CancelFunc
	generation uint64

	baseCtx context.Context
}

// NewSynchronizer creates a synchronizer bound to the given ports.
// fallback may be nil; rows without coordinates are then dropped. When the
// store carries an event bus, filter changes schedule a refresh so the
// rendered markers track the active toggles without a viewport move.
func NewSynchronizer(ctx context.Context, source ToiletSource, fallback GeocodeFallback, cluster ClusterLayer, store *MapStore, log *logger.Logger) *Synchronizer {
	s := &Synchronizer{
		source:  source,
		geocode: fallback,
		cluster: cluster,
		store:   store,
		log:     log,
		cache:   geocode.NewMemoryCache(),
		baseCtx: ctx,
	}

	if store != nil && store.bus != nil {
		store.bus.Subscribe(EventFiltersChanged, events.HandlerFunc(func(context.Context, events.Event) error {
			s.Trigger()
			return nil
		}))
	}

	return s
}

// Trigger schedules a refresh. Rapid successive triggers (pan/zoom
// sequences, filter toggling) coalesce into a single fetch.
func (s *Synchronizer) Trigger() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(debounceDelay, s.refresh)
}

// TriggerNow bypasses the debounce, for the initial mount.
func (s *Synchronizer) TriggerNow() {
	s.refresh()
}

// Close cancels any in-flight fetch and pending trigger.
func (s *Synchronizer) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.cancel != nil {
		s.cancel()
	}
}

// Select publishes the row behind a clicked marker into the store,
// with the resolved position substituted for the stored one.
func (s *Synchronizer) Select(ctx context.Context, m Marker) {
	row := m.Row
	lat, lng := m.Position.Lat, m.Position.Lng
	row.Lat, row.Lng = &lat, &lng
	s.store.SetSelected(ctx, &row)
}

func (s *Synchronizer) refresh() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(s.baseCtx)
	s.cancel = cancel
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	go s.run(ctx, gen)
}

func (s *Synchronizer) run(ctx context.Context, gen uint64) {
	rows, err := s.source.FetchVisible(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.log.Error("marker fetch failed", "error", err)
		}
		return
	}

	active := s.store.ActiveFilters()
	markers := make([]Marker, 0, len(rows))
	for i, row := range rows {
		if i%chunkSize == 0 && ctx.Err() != nil {
			return
		}
		if !matchesFilters(row, active) {
			continue
		}
		pos := s.resolvePosition(ctx, row)
		if pos == nil {
			continue
		}
		markers = append(markers, Marker{Row: row, Position: *pos})
	}

	s.commit(ctx, gen, markers)
}

// commit replaces the cluster layer's marker set, unless a newer fetch
// has started in the meantime.
func (s *Synchronizer) commit(ctx context.Context, gen uint64, markers []Marker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation || ctx.Err() != nil {
		return
	}
	s.cluster.Replace(markers)
}

// resolvePosition returns the row's stored coordinate when it is inside
// the Korean bounding box, otherwise falls back to geocoding the
// address through the session cache.
func (s *Synchronizer) resolvePosition(ctx context.Context, row transport.Toilet) *geo.Point {
	if row.Lat != nil && row.Lng != nil && geo.InKorea(*row.Lat, *row.Lng) {
		return &geo.Point{Lat: *row.Lat, Lng: *row.Lng}
	}

	addr := strings.TrimSpace(row.Address)
	if addr == "" || s.geocode == nil {
		return nil
	}

	if p, ok := s.cache.Get(addr); ok {
		return &p
	}

	p, err := s.geocode.Resolve(ctx, addr)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.log.Error("geocode fallback failed", "address", addr, "error", err)
		}
		return nil
	}
	if p == nil || !geo.InKorea(p.Lat, p.Lng) {
		return nil
	}
	s.cache.Set(addr, *p)
	return p
}

// matchesFilters reports whether the row satisfies every active filter
// toggle. Most facilities use the O/X string convention; baby_change
// additionally accepts the wider truthy vocabulary and its boolean form.
func matchesFilters(row transport.Toilet, active []string) bool {
	for _, key := range active {
		if !matchesFilter(row, key) {
			return false
		}
	}
	return true
}

func matchesFilter(row transport.Toilet, key string) bool {
	switch key {
	case "male_toilet":
		return isO(row.MaleToilet)
	case "female_toilet":
		return isO(row.FemaleToilet)
	case "male_disabled":
		return isO(row.MaleDisabled)
	case "female_disabled":
		return isO(row.FemaleDisabled)
	case "male_child":
		return isO(row.MaleChild)
	case "female_child":
		return isO(row.FemaleChild)
	case "emergency_bell":
		return row.EmergencyBell != nil && *row.EmergencyBell
	case "cctv":
		return row.CCTV != nil && *row.CCTV
	case "baby_change":
		return row.BabyChange != nil && *row.BabyChange
	default:
		return false
	}
}

func isO(v *string) bool {
	return v != nil && *v == "O"
}
