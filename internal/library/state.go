package library

import (
	"sync"

	"github.com/mmcdole/reel/internal/domain"
)

// State is the in-memory view of the catalog shared by the synchronizer and
// its readers. The caller owns it and passes it to Commands and Queries.
type State struct {
	mu         sync.RWMutex
	categories []domain.Category
	rows       []domain.CatalogRow
	lastSync   *int64
	syncing    bool
	syncErr    string
}

// NewState returns an empty, never-synced state.
func NewState() *State {
	return &State{}
}

func (s *State) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categories
}

func (s *State) Rows() []domain.CatalogRow {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rows
}

// LastSync returns the epoch millis of the snapshot currently held, nil if none.
func (s *State) LastSync() *int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync
}

func (s *State) IsSyncing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.syncing
}

// SyncError returns the user-facing message from the last failed sync, or "".
func (s *State) SyncError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.syncErr
}

// FindMovie looks a movie up by stream ID, returning it with its category.
func (s *State) FindMovie(id int64) (domain.Movie, domain.Category, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, row := range s.rows {
		for _, m := range row.Movies {
			if m.StreamID == id {
				return m, row.Category, true
			}
		}
	}
	return domain.Movie{}, domain.Category{}, false
}

func (s *State) beginSync() {
	s.mu.Lock()
	s.syncing = true
	s.syncErr = ""
	s.mu.Unlock()
}

func (s *State) endSync(errMsg string) {
	s.mu.Lock()
	s.syncing = false
	if errMsg != "" {
		s.syncErr = errMsg
	}
	s.mu.Unlock()
}

func (s *State) apply(cats []domain.Category, rows []domain.CatalogRow, lastSync *int64) {
	s.mu.Lock()
	s.categories = cats
	s.rows = rows
	s.lastSync = lastSync
	s.mu.Unlock()
}
