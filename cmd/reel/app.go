package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mmcdole/reel/internal/adapter"
	"github.com/mmcdole/reel/internal/adapter/source"
	"github.com/mmcdole/reel/internal/adapter/source/xtream"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/library"
	"github.com/mmcdole/reel/internal/prefs"
	"github.com/mmcdole/reel/internal/recommend"
	"github.com/mmcdole/reel/internal/search"
	"github.com/mmcdole/reel/internal/store"
)

// appEnv wires configuration, storage and services for one command run.
// Catalog storage is opened lazily since it is keyed by server URL.
type appEnv struct {
	configs *adapter.ConfigStore
	cfg     *adapter.Config
	logger  *slog.Logger
	closers []io.Closer

	prefs   *prefs.Store
	state   *library.State
	catalog *store.CatalogStore
	queries *library.Queries
}

func newAppEnv(configDir string) (*appEnv, error) {
	configs := adapter.NewConfigStore(configDir)
	cfg, err := configs.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	env := &appEnv{configs: configs, cfg: cfg, state: library.NewState()}

	logger, closer, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	} else {
		env.closers = append(env.closers, closer)
	}
	slog.SetDefault(logger)
	env.logger = logger

	blobs, err := store.NewBlobStore(cfg.CachePath())
	if err != nil {
		// Preferences become memory-only for this run
		logger.Warn("preference storage unavailable", "error", err)
		env.prefs = prefs.New(nil, false, logger)
	} else {
		env.closers = append(env.closers, blobs)
		env.prefs = prefs.New(blobs, true, logger)
	}

	return env, nil
}

// openCatalog opens the catalog store for the configured server and loads it into state
func (e *appEnv) openCatalog(ctx context.Context) error {
	if e.catalog != nil {
		return nil
	}
	if !e.cfg.IsConfigured() {
		return domain.ErrNotConfigured
	}

	catalog, err := store.NewCatalogStore(e.cfg.CachePath(), e.cfg.Server.URL)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	e.catalog = catalog
	e.closers = append(e.closers, catalog)
	e.queries = library.NewQueries(catalog, e.state, e.logger)

	return e.queries.LoadFromCache(ctx)
}

func (e *appEnv) client() (*xtream.Client, error) {
	return source.NewClientFromConfig(e.cfg, e.logger)
}

func (e *appEnv) commands() (*library.Commands, error) {
	client, err := e.client()
	if err != nil {
		return nil, err
	}
	return library.NewCommands(client, e.catalog, e.state, e.logger), nil
}

func (e *appEnv) scorer() *recommend.Scorer {
	return recommend.NewScorer(e.prefs, recommend.DefaultWeights(), e.cfg.Recommend.PrimaryLanguage)
}

func (e *appEnv) search() *search.Service {
	return search.NewService(e.logger)
}

func (e *appEnv) launcher() *adapter.Launcher {
	return adapter.NewLauncher(e.cfg.Player.Command, e.cfg.Player.Args, e.logger)
}

// Close releases storage and the log file, newest first
func (e *appEnv) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		errs = append(errs, e.closers[i].Close())
	}
	return errors.Join(errs...)
}
