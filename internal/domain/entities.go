package domain

// Category is a named grouping of catalog movies
type Category struct {
	ID   string `json:"category_id"`   // Remote-assigned unique key
	Name string `json:"category_name"` // Display name, e.g. "EN - Action"
}

// Movie is the persisted projection of a remote VOD stream.
// Only the fields kept by the sync projection live here.
type Movie struct {
	StreamID           int64    `json:"stream_id"`
	Name               string   `json:"name"`
	StreamType         string   `json:"stream_type,omitempty"`
	StreamIcon         string   `json:"stream_icon,omitempty"`          // Poster URL, empty if none
	Rating             string   `json:"rating,omitempty"`               // Free-form 0-10 rating, empty if none
	Rating5Based       *float64 `json:"rating_5based,omitempty"`        // 0-5 scale; nil when the server omits it
	Added              string   `json:"added,omitempty"`                // Epoch seconds as a string
	CategoryID         string   `json:"category_id,omitempty"`          // Category reported by the server
	ContainerExtension string   `json:"container_extension,omitempty"` // "mkv", "mp4"
}

// HasRating reports whether the server supplied any rating value
func (m Movie) HasRating() bool {
	return m.Rating != "" || m.Rating5Based != nil
}

// RemoteMovie is the full record returned by the catalog API.
// It is a superset of Movie; the synchronizer projects it down before persisting.
type RemoteMovie struct {
	Num                int
	Name               string
	StreamType         string
	StreamID           int64
	StreamIcon         string
	Rating             string
	Rating5Based       *float64
	TMDB               string
	Added              string
	IsAdult            bool
	CategoryID         string
	ContainerExtension string
	CustomSID          string
	DirectSource       string
}

// CatalogRow pairs a category with the movies that belong to it.
// Rows are rebuilt on load; they are never persisted as their own entity.
type CatalogRow struct {
	Category Category
	Movies   []Movie
}

// Snapshot is the full persisted catalog
type Snapshot struct {
	Categories []Category
	Rows       []CatalogRow
	LastSync   *int64 // Epoch millis of the last full sync, nil if never synced
}

// MovieCount returns the number of movies across all rows
func (s Snapshot) MovieCount() int {
	n := 0
	for _, row := range s.Rows {
		n += len(row.Movies)
	}
	return n
}
