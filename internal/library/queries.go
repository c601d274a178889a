package library

import (
	"context"
	"log/slog"

	"github.com/mmcdole/reel/internal/domain"
)

// Queries provides cache-only reads. Nothing here touches the network.
type Queries struct {
	store  domain.CatalogStore
	state  *State
	logger *slog.Logger
}

// NewQueries creates a new Queries instance.
func NewQueries(store domain.CatalogStore, state *State, logger *slog.Logger) *Queries {
	if logger == nil {
		logger = slog.Default()
	}
	return &Queries{store: store, state: state, logger: logger}
}

// LoadFromCache hydrates State from the local store.
// State is left untouched when the store holds no previous sync.
func (q *Queries) LoadFromCache(ctx context.Context) error {
	if q.store == nil {
		return nil
	}

	snap, err := q.store.LoadAll(ctx)
	if err != nil {
		q.logger.Error("failed to load catalog from cache", "error", err)
		return err
	}
	if len(snap.Categories) == 0 && snap.LastSync == nil {
		q.logger.Debug("catalog cache empty")
		return nil
	}

	q.state.apply(snap.Categories, snap.Rows, snap.LastSync)
	q.logger.Debug("loaded catalog from cache", "categories", len(snap.Categories), "movies", snap.MovieCount())
	return nil
}

// CategoryCounts returns the number of cached movies per category, using the store's index.
func (q *Queries) CategoryCounts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	if q.store == nil {
		for _, row := range q.state.Rows() {
			counts[row.Category.ID] = len(row.Movies)
		}
		return counts, nil
	}

	for _, cat := range q.state.Categories() {
		movies, err := q.store.MoviesByCategory(ctx, cat.ID)
		if err != nil {
			return nil, err
		}
		counts[cat.ID] = len(movies)
	}
	return counts, nil
}

// Movie returns a cached movie and its category by stream ID.
func (q *Queries) Movie(id int64) (domain.Movie, domain.Category, error) {
	m, cat, ok := q.state.FindMovie(id)
	if !ok {
		return domain.Movie{}, domain.Category{}, domain.ErrMovieNotFound
	}
	return m, cat, nil
}
