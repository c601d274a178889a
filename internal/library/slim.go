package library

import "github.com/mmcdole/reel/internal/domain"

// Slim projects a remote movie down to the persisted field set:
// identity, display, rating, artwork, category linkage and container type.
// Everything else the server sends is dropped.
func Slim(m domain.RemoteMovie) domain.Movie {
	return domain.Movie{
		StreamID:           m.StreamID,
		Name:               m.Name,
		StreamType:         m.StreamType,
		StreamIcon:         m.StreamIcon,
		Rating:             m.Rating,
		Rating5Based:       m.Rating5Based,
		Added:              m.Added,
		CategoryID:         m.CategoryID,
		ContainerExtension: m.ContainerExtension,
	}
}

// SlimAll projects a batch of remote movies.
func SlimAll(remote []domain.RemoteMovie) []domain.Movie {
	movies := make([]domain.Movie, len(remote))
	for i, m := range remote {
		movies[i] = Slim(m)
	}
	return movies
}
