package source

import (
	"log/slog"

	"github.com/mmcdole/reel/internal/adapter"
	"github.com/mmcdole/reel/internal/adapter/source/xtream"
	"github.com/mmcdole/reel/internal/domain"
)

// CatalogSource is a remote catalog that can also build playable URLs
type CatalogSource interface {
	domain.CatalogSource
	StreamURL(m domain.Movie) string
}

// NewClientFromConfig creates a catalog client from the application config.
// Missing credentials fail fast with domain.ErrNotConfigured.
func NewClientFromConfig(cfg *adapter.Config, logger *slog.Logger) (*xtream.Client, error) {
	if cfg == nil || !cfg.IsConfigured() {
		return nil, domain.ErrNotConfigured
	}

	return xtream.NewClient(xtream.Config{
		URL:               cfg.Server.URL,
		Username:          cfg.Server.Username,
		Password:          cfg.Server.Password,
		Timeout:           cfg.Library.RequestTimeout,
		RequestsPerSecond: cfg.Library.RequestsPerSecond,
	}, logger), nil
}

var _ CatalogSource = (*xtream.Client)(nil)
