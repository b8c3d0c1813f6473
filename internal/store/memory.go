package store

import (
	"cmp"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/i474232898/gowindow/internal/weather"
)

var (
	// ErrNotFound is returned when no data is available for a given location.
	ErrNotFound = errors.New("no forecast data for location")
)

// historyKey separates daily and hourly fetches of the same place.
type historyKey struct {
	location string
	kind     weather.Kind
}

// MemoryStore keeps recent forecast snapshots per location and fetch kind.
type MemoryStore struct {
	mu      sync.RWMutex
	history map[historyKey][]weather.Snapshot

	maxHistory int           // per location and kind; <= 0 is unlimited
	maxAge     time.Duration // <= 0 keeps snapshots regardless of age
	now        func() time.Time
}

// NewMemoryStore creates a MemoryStore with the given retention limits.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		history:    make(map[historyKey][]weather.Snapshot),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveSnapshot appends snapshot to its location and kind, then trims by count
// and age. The newest snapshot of a kind always survives.
func (s *MemoryStore) SaveSnapshot(loc weather.Location, snapshot weather.Snapshot) {
	key := historyKey{location: loc.Key(), kind: snapshot.Kind}

	s.mu.Lock()
	defer s.mu.Unlock()

	snaps := append(s.history[key], snapshot)
	if s.maxHistory > 0 && len(snaps) > s.maxHistory {
		snaps = snaps[len(snaps)-s.maxHistory:]
	}
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		keep := slices.IndexFunc(snaps, func(snap weather.Snapshot) bool {
			return !snap.FetchedAt.Before(cutoff)
		})
		if keep < 0 {
			keep = len(snaps) - 1
		}
		snaps = snaps[keep:]
	}
	s.history[key] = snaps
}

// GetLatest returns the most recent snapshot of kind for loc.
func (s *MemoryStore) GetLatest(loc weather.Location, kind weather.Kind) (weather.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snaps := s.history[historyKey{location: loc.Key(), kind: kind}]
	if len(snaps) == 0 {
		return weather.Snapshot{}, ErrNotFound
	}
	return snaps[len(snaps)-1], nil
}

// GetRange returns snapshots of every kind for loc fetched within [from, to],
// oldest first.
func (s *MemoryStore) GetRange(loc weather.Location, from, to time.Time) ([]weather.Snapshot, error) {
	s.mu.RLock()
	var result []weather.Snapshot
	for _, kind := range []weather.Kind{weather.KindDaily, weather.KindHourly} {
		for _, snap := range s.history[historyKey{location: loc.Key(), kind: kind}] {
			if !snap.FetchedAt.Before(from) && !snap.FetchedAt.After(to) {
				result = append(result, snap)
			}
		}
	}
	s.mu.RUnlock()

	if len(result) == 0 {
		return nil, ErrNotFound
	}
	slices.SortStableFunc(result, func(a, b weather.Snapshot) int {
		return cmp.Compare(a.FetchedAt.UnixNano(), b.FetchedAt.UnixNano())
	})
	return result, nil
}

var _ weather.Store = (*MemoryStore)(nil)
