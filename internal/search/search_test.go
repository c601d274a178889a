package search

import (
	"testing"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRows() []domain.CatalogRow {
	return []domain.CatalogRow{
		{
			Category: domain.Category{ID: "1", Name: "EN - Action"},
			Movies: []domain.Movie{
				{StreamID: 1, Name: "The Matrix"},
				{StreamID: 2, Name: "Mad Max: Fury Road"},
			},
		},
		{
			Category: domain.Category{ID: "2", Name: "EN - Sci-Fi"},
			Movies: []domain.Movie{
				{StreamID: 3, Name: "The Matrix Reloaded"},
				{StreamID: 1, Name: "The Matrix"},
			},
		},
	}
}

func TestMoviesFindsTitles(t *testing.T) {
	svc := NewService(nil)

	results := svc.Movies("matrix", testRows(), 0)
	require.Len(t, results, 2)

	got := []int64{results[0].Movie.StreamID, results[1].Movie.StreamID}
	assert.ElementsMatch(t, []int64{1, 3}, got)
	for _, r := range results {
		assert.NotEmpty(t, r.MatchedIndexes)
		if r.Movie.StreamID == 1 {
			assert.Equal(t, "1", r.Category.ID)
		}
	}
}

func TestMoviesIsCaseInsensitive(t *testing.T) {
	results := NewService(nil).Movies("FURY", testRows(), 0)
	require.Len(t, results, 1)
	assert.Equal(t, int64(2), results[0].Movie.StreamID)
}

func TestMoviesLimit(t *testing.T) {
	results := NewService(nil).Movies("matrix", testRows(), 1)
	assert.Len(t, results, 1)
}

func TestMoviesEmptyQuery(t *testing.T) {
	assert.Nil(t, NewService(nil).Movies("   ", testRows(), 0))
	assert.Nil(t, NewService(nil).Movies("matrix", nil, 0))
}

func TestIndexDedupesStreams(t *testing.T) {
	idx := NewIndex(testRows())
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, "the matrix reloaded", idx.String(2))
}

func TestFilterCategories(t *testing.T) {
	cats := []domain.Category{
		{ID: "1", Name: "EN - Action"},
		{ID: "2", Name: "EN - Comedy"},
		{ID: "3", Name: "Action Classics"},
	}
	svc := NewService(nil)

	got := svc.FilterCategories("action", cats)
	require.Len(t, got, 2)
	assert.ElementsMatch(t, []string{"1", "3"}, []string{got[0].ID, got[1].ID})

	assert.Equal(t, cats, svc.FilterCategories("", cats))
	assert.Empty(t, svc.FilterCategories("western", cats))
}

func TestMatchedIndexesPointIntoOriginalTitle(t *testing.T) {
	rows := []domain.CatalogRow{{
		Category: domain.Category{ID: "1", Name: "TR - Drama"},
		Movies:   []domain.Movie{{StreamID: 5, Name: "İstanbul Heat"}},
	}}

	results := NewService(nil).Movies("heat", rows, 0)
	require.Len(t, results, 1)

	name := results[0].Movie.Name
	var got []byte
	for _, i := range results[0].MatchedIndexes {
		got = append(got, name[i])
	}
	assert.Equal(t, []int{10, 11, 12, 13}, results[0].MatchedIndexes)
	assert.Equal(t, "Heat", string(got))
}

func TestFoldTitleOffsets(t *testing.T) {
	lower, offsets := foldTitle("\u212AO")
	assert.Equal(t, "ko", lower)
	assert.Equal(t, []int{0, 3}, offsets)

	lower, offsets = foldTitle("Ab")
	assert.Equal(t, "ab", lower)
	assert.Equal(t, []int{0, 1}, offsets)
}
