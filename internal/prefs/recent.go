package prefs

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/mmcdole/reel/internal/domain"
)

// RecentlyViewed is the most-recent-first list of viewed stream IDs, capped at MaxRecent.
type RecentlyViewed struct {
	backend domain.BlobStore
	persist bool
	logger  *slog.Logger

	mu     sync.Mutex
	loaded bool
	ids    []int64
}

// NewRecentlyViewed creates a history store. With hasStorage false (or a nil
// backend) it stays in memory only.
func NewRecentlyViewed(backend domain.BlobStore, hasStorage bool, logger *slog.Logger) *RecentlyViewed {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecentlyViewed{backend: backend, persist: hasStorage && backend != nil, logger: logger}
}

// ensureLoaded must be called with mu held.
func (r *RecentlyViewed) ensureLoaded() {
	if r.loaded {
		return
	}
	r.loaded = true
	if !r.persist {
		return
	}

	seen := make(map[int64]struct{})
	for _, id := range loadIDs(r.backend, RecentKey, r.logger) {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		r.ids = append(r.ids, id)
		if len(r.ids) == MaxRecent {
			break
		}
	}
}

// Add moves id to the front of the history, dropping anything past MaxRecent,
// then persists the list. The history is unchanged if persisting fails.
func (r *RecentlyViewed) Add(id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLoaded()

	next := make([]int64, 0, min(len(r.ids)+1, MaxRecent))
	next = append(next, id)
	for _, existing := range r.ids {
		if existing != id {
			next = append(next, existing)
		}
	}
	if len(next) > MaxRecent {
		next = next[:MaxRecent]
	}
	if r.persist {
		if err := saveIDs(r.backend, RecentKey, next); err != nil {
			return err
		}
	}
	r.ids = next
	return nil
}

// IDs returns the history, most recent first.
func (r *RecentlyViewed) IDs() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensureLoaded()
	return slices.Clone(r.ids)
}
