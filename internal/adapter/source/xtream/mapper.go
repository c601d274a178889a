package xtream

import (
	"strings"

	"github.com/mmcdole/reel/internal/domain"
)

// MapCategories converts category DTOs to domain categories, dropping entries without an ID
func MapCategories(dtos []CategoryDTO) []domain.Category {
	cats := make([]domain.Category, 0, len(dtos))
	for _, d := range dtos {
		id := strings.TrimSpace(string(d.CategoryID))
		if id == "" {
			continue
		}
		cats = append(cats, domain.Category{
			ID:   id,
			Name: string(d.CategoryName),
		})
	}
	return cats
}

// MapStreams converts stream DTOs to raw remote movies, dropping entries without a stream ID
func MapStreams(dtos []StreamDTO) []domain.RemoteMovie {
	movies := make([]domain.RemoteMovie, 0, len(dtos))
	for _, d := range dtos {
		if d.StreamID <= 0 {
			continue
		}
		m := domain.RemoteMovie{
			Num:                int(d.Num),
			Name:               string(d.Name),
			StreamType:         string(d.StreamType),
			StreamID:           int64(d.StreamID),
			StreamIcon:         string(d.StreamIcon),
			Rating:             string(d.Rating),
			TMDB:               string(d.TMDB),
			Added:              string(d.Added),
			IsAdult:            bool(d.IsAdult),
			CategoryID:         string(d.CategoryID),
			ContainerExtension: string(d.ContainerExtension),
			CustomSID:          string(d.CustomSID),
			DirectSource:       string(d.DirectSource),
		}
		if d.Rating5Based.Valid {
			v := d.Rating5Based.Value
			m.Rating5Based = &v
		}
		movies = append(movies, m)
	}
	return movies
}
