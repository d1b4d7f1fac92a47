package config

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/sonicwave-radio/sonicwave/internal/station"
)

// Favorites is the insertion-ordered set of favorite station records, keyed
// by station UUID. The list is loaded once at construction and persisted on
// every mutation. Full records are stored (not just IDs) so favorites remain
// playable when the directory is unreachable.
type Favorites struct {
	mu       sync.RWMutex
	store    Store
	stations []station.Station
}

// NewFavorites loads the favorites list from the given store. A missing or
// corrupt entry yields an empty list.
func NewFavorites(store Store) *Favorites {
	f := &Favorites{store: store}

	raw, ok := store.Get(KeyFavorites)
	if !ok || raw == "" {
		return f
	}
	if err := json.Unmarshal([]byte(raw), &f.stations); err != nil {
		log.Warn().Err(err).Msg("Corrupt persisted favorites, starting empty")
		f.stations = nil
	}
	return f
}

// All returns a copy of the favorites in insertion order.
func (f *Favorites) All() []station.Station {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]station.Station, len(f.stations))
	copy(out, f.stations)
	return out
}

// Count returns the number of favorites.
func (f *Favorites) Count() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.stations)
}

// IsFavorite reports whether a station UUID is in the set.
func (f *Favorites) IsFavorite(uuid string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.indexLocked(uuid) >= 0
}

// Toggle adds the station when absent and removes it when present, keyed by
// UUID, and persists the result. Toggling twice restores the original set.
func (f *Favorites) Toggle(s station.Station) {
	f.mu.Lock()
	if i := f.indexLocked(s.UUID); i >= 0 {
		f.stations = append(f.stations[:i], f.stations[i+1:]...)
	} else {
		f.stations = append(f.stations, s)
	}
	f.persistLocked()
	f.mu.Unlock()
}

func (f *Favorites) indexLocked(uuid string) int {
	for i, s := range f.stations {
		if s.UUID == uuid {
			return i
		}
	}
	return -1
}

func (f *Favorites) persistLocked() {
	raw, err := json.Marshal(f.stations)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to marshal favorites")
		return
	}
	if err := f.store.Set(KeyFavorites, string(raw)); err != nil {
		log.Warn().Err(err).Msg("Failed to persist favorites")
	}
}
