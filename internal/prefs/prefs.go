// Package prefs holds the user's favourites and viewing history.
//
// Both stores persist their full contents as a JSON array of stream IDs
// after every mutation. Stores built without storage start empty and never
// touch the backend.
package prefs

import (
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/mmcdole/reel/internal/domain"
)

// Storage keys
const (
	FavouritesKey = "movieFavourites"
	RecentKey     = "recentMovies"
)

// MaxRecent bounds the recently-viewed list.
const MaxRecent = 50

// loadIDs reads an ID list from the backend. Missing, unreadable or
// malformed blobs all come back as an empty list.
func loadIDs(backend domain.BlobStore, key string, logger *slog.Logger) []int64 {
	raw, ok, err := backend.Get(key)
	if err != nil {
		logger.Warn("failed to read preferences", "key", key, "error", err)
		return nil
	}
	if !ok {
		return nil
	}

	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		logger.Debug("discarding malformed preferences", "key", key, "error", err)
		return nil
	}
	return ids
}

func saveIDs(backend domain.BlobStore, key string, ids []int64) error {
	if ids == nil {
		ids = []int64{}
	}
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return backend.Set(key, data)
}

// Store bundles both preference stores and implements domain.Preferences.
type Store struct {
	Favourites *Favourites
	Recent     *RecentlyViewed
}

// New creates both stores over one backend.
func New(backend domain.BlobStore, hasStorage bool, logger *slog.Logger) *Store {
	return &Store{
		Favourites: NewFavourites(backend, hasStorage, logger),
		Recent:     NewRecentlyViewed(backend, hasStorage, logger),
	}
}

func (s *Store) FavouriteIDs() []int64 { return s.Favourites.IDs() }
func (s *Store) RecentIDs() []int64    { return s.Recent.IDs() }
