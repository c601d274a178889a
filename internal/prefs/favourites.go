package prefs

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/mmcdole/reel/internal/domain"
)

// Favourites is the set of favourited stream IDs.
type Favourites struct {
	backend domain.BlobStore
	persist bool
	logger  *slog.Logger

	mu     sync.Mutex
	loaded bool
	ids    []int64
}

// NewFavourites creates a favourites store. With hasStorage false (or a nil
// backend) it stays in memory only.
func NewFavourites(backend domain.BlobStore, hasStorage bool, logger *slog.Logger) *Favourites {
	if logger == nil {
		logger = slog.Default()
	}
	return &Favourites{backend: backend, persist: hasStorage && backend != nil, logger: logger}
}

// ensureLoaded must be called with mu held.
func (f *Favourites) ensureLoaded() {
	if f.loaded {
		return
	}
	f.loaded = true
	if !f.persist {
		return
	}

	seen := make(map[int64]struct{})
	for _, id := range loadIDs(f.backend, FavouritesKey, f.logger) {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		f.ids = append(f.ids, id)
	}
}

func (f *Favourites) IsFavourite(id int64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensureLoaded()
	return slices.Contains(f.ids, id)
}

// Toggle adds id if absent or removes it if present, then persists the set.
// It returns whether id is a favourite afterwards; if persisting fails the
// set is left as it was.
func (f *Favourites) Toggle(id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensureLoaded()

	next := slices.Clone(f.ids)
	now := false
	if i := slices.Index(next, id); i >= 0 {
		next = slices.Delete(next, i, i+1)
	} else {
		next = append(next, id)
		now = true
	}

	if f.persist {
		if err := saveIDs(f.backend, FavouritesKey, next); err != nil {
			return !now, err
		}
	}
	f.ids = next
	return now, nil
}

// IDs returns the favourites in the order they were added.
func (f *Favourites) IDs() []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ensureLoaded()
	return slices.Clone(f.ids)
}
