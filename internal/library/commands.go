package library

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/mmcdole/reel/internal/domain"
)

const defaultSyncErrorMessage = "Failed to sync movie library."

// Commands runs operations that hit the network.
// A nil store gives a memory-only synchronizer: State is updated but nothing is persisted.
type Commands struct {
	source   domain.CatalogSource
	store    domain.CatalogStore
	state    *State
	observer domain.SyncObserver
	logger   *slog.Logger

	inFlight atomic.Bool
	now      func() time.Time
}

// NewCommands creates a new Commands instance.
func NewCommands(source domain.CatalogSource, store domain.CatalogStore, state *State, logger *slog.Logger) *Commands {
	if logger == nil {
		logger = slog.Default()
	}
	return &Commands{
		source:   source,
		store:    store,
		state:    state,
		observer: domain.NoOpObserver{},
		logger:   logger,
		now:      time.Now,
	}
}

// SetObserver sets the receiver for per-category progress updates.
func (c *Commands) SetObserver(o domain.SyncObserver) {
	if o == nil {
		o = domain.NoOpObserver{}
	}
	c.observer = o
}

// Sync performs a full refresh of the local catalog from the remote server.
//
// Categories are listed, filtered through the blocklist, and each surviving
// category's movies are fetched one at a time. A category whose fetch fails
// is kept with no movies and the sync carries on. Failing to list
// categories, or to persist the result, aborts the sync and leaves the
// previous snapshot in place. A second call while one is running returns
// domain.ErrSyncInProgress.
func (c *Commands) Sync(ctx context.Context) error {
	if !c.inFlight.CompareAndSwap(false, true) {
		return domain.ErrSyncInProgress
	}
	defer c.inFlight.Store(false)

	c.state.beginSync()

	err := c.sync(ctx)
	if err != nil {
		c.logger.Error("catalog sync failed", "error", err)
		c.state.endSync(syncErrorMessage(err))
		return err
	}
	c.state.endSync("")
	return nil
}

func (c *Commands) sync(ctx context.Context) error {
	allCats, err := c.source.ListCategories(ctx)
	if err != nil {
		return err
	}

	allowed := FilterCategories(allCats)
	c.logger.Debug("fetched categories", "total", len(allCats), "allowed", len(allowed))

	rows := make([]domain.CatalogRow, 0, len(allowed))
	skipped := 0
	for i, cat := range allowed {
		if err := ctx.Err(); err != nil {
			return err
		}

		remote, err := c.source.ListMovies(ctx, cat.ID)
		if err != nil {
			c.logger.Warn("skipping category", "categoryID", cat.ID, "name", cat.Name, "error", err)
			skipped++
			rows = append(rows, domain.CatalogRow{Category: cat, Movies: []domain.Movie{}})
			c.observer.OnProgress(domain.SyncProgress{
				CategoryID:   cat.ID,
				CategoryName: cat.Name,
				Loaded:       i + 1,
				Total:        len(allowed),
				Err:          err,
			})
			continue
		}

		movies := SlimAll(remote)
		rows = append(rows, domain.CatalogRow{Category: cat, Movies: movies})
		c.observer.OnProgress(domain.SyncProgress{
			CategoryID:   cat.ID,
			CategoryName: cat.Name,
			Loaded:       i + 1,
			Total:        len(allowed),
			Movies:       len(movies),
		})
	}

	now := c.now().UnixMilli()

	if c.store != nil {
		if err := c.store.ReplaceAll(ctx, allowed, rows, now); err != nil {
			return err
		}
	}

	c.state.apply(allowed, rows, &now)

	count := 0
	for _, row := range rows {
		count += len(row.Movies)
	}
	c.logger.Info("synced catalog", "categories", len(allowed), "movies", count, "skipped", skipped)
	return nil
}

func syncErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotConfigured):
		return "Not logged in. Run `reel login` first."
	case errors.Is(err, domain.ErrAuthFailed):
		return "The server rejected your credentials."
	case errors.Is(err, domain.ErrServerOffline):
		return "Could not reach the catalog server."
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return defaultSyncErrorMessage
}
