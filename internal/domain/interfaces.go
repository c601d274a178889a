package domain

import "context"

// CatalogSource is the remote catalog API (implemented by source clients).
type CatalogSource interface {
	// ListCategories returns every VOD category the server exposes
	ListCategories(ctx context.Context) ([]Category, error)

	// ListMovies returns the raw, unprojected movies for one category
	ListMovies(ctx context.Context, categoryID string) ([]RemoteMovie, error)
}

// CatalogStore is the local mirror of the catalog.
// ReplaceAll writes categories, movies and sync metadata as three separate
// transactions; a crash between them can leave tables from different syncs.
type CatalogStore interface {
	ReplaceAll(ctx context.Context, categories []Category, rows []CatalogRow, syncedAt int64) error
	LoadAll(ctx context.Context) (Snapshot, error)
	MoviesByCategory(ctx context.Context, categoryID string) ([]Movie, error)
	LastSync(ctx context.Context) (*int64, error)
	Close() error
}

// BlobStore is simple string-keyed durable storage for preference data.
type BlobStore interface {
	// Get returns the stored value and whether the key exists
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
}

// Preferences exposes the user's favourites and viewing history to the recommender.
type Preferences interface {
	FavouriteIDs() []int64
	RecentIDs() []int64
}
