package recommend

import (
	"testing"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePrefs struct {
	favs   []int64
	recent []int64
}

func (f fakePrefs) FavouriteIDs() []int64 { return f.favs }
func (f fakePrefs) RecentIDs() []int64    { return f.recent }

func ptr(v float64) *float64 { return &v }

func ids(movies []domain.Movie) []int64 {
	out := make([]int64, len(movies))
	for i, m := range movies {
		out[i] = m.StreamID
	}
	return out
}

func TestScoreUpperBoundary(t *testing.T) {
	cat := domain.Category{ID: "1", Name: "  EN - Action"}
	movie := domain.Movie{StreamID: 42, Name: "Top", Rating5Based: ptr(5), StreamIcon: "http://img/42.jpg"}

	p := &Profile{
		FavCategoryCounts:    map[string]int{"1": 10},
		RecentCategoryCounts: map[string]int{"1": 10},
		favourites:           map[int64]struct{}{42: {}},
		recentRank:           map[int64]int{42: 0},
		maxRank:              1,
	}

	s := NewScorer(fakePrefs{}, DefaultWeights(), "")
	got := s.score(entry{movie: movie, category: cat}, p)

	// 0.4 quality + 0.5 favourite + 0.6 fav-category cap + 0.4 recent-category cap
	// + 0.2 self-recency + 0.1 locale
	assert.InDelta(t, 2.2, got, 1e-9)
}

func TestScoreFloorsAtZero(t *testing.T) {
	p := BuildProfile(nil, nil, nil)
	s := NewScorer(fakePrefs{}, DefaultWeights(), "")

	got := s.score(entry{movie: domain.Movie{StreamID: 1, Name: "Bare"}}, p)
	assert.Zero(t, got)
}

func TestRating10(t *testing.T) {
	tests := []struct {
		name  string
		movie domain.Movie
		want  float64
	}{
		{"five based wins", domain.Movie{Rating: "3", Rating5Based: ptr(4.5)}, 9},
		{"free form", domain.Movie{Rating: "7.2"}, 7.2},
		{"padded", domain.Movie{Rating: " 6 "}, 6},
		{"unparsable", domain.Movie{Rating: "N/A"}, 0},
		{"infinite", domain.Movie{Rating: "Inf"}, 0},
		{"missing", domain.Movie{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, rating10(tt.movie), 1e-9)
		})
	}
}

func TestRankOrdersBySignals(t *testing.T) {
	rows := []domain.CatalogRow{
		{
			Category: domain.Category{ID: "1", Name: "FR - Films"},
			Movies: []domain.Movie{
				{StreamID: 1, Name: "Low", Rating: "2", StreamIcon: "x"},
				{StreamID: 2, Name: "High", Rating: "9", StreamIcon: "x"},
			},
		},
		{
			Category: domain.Category{ID: "2", Name: "EN - Films"},
			Movies: []domain.Movie{
				{StreamID: 3, Name: "Liked", Rating: "5", StreamIcon: "x"},
				{StreamID: 4, Name: "Sibling", Rating: "5", StreamIcon: "x"},
			},
		},
	}

	s := NewScorer(fakePrefs{favs: []int64{3}}, DefaultWeights(), "EN -")
	ranked := s.Rank(rows)

	assert.Equal(t, []int64{3, 4, 2, 1}, ids(ranked))
}

func TestRankStableForTies(t *testing.T) {
	rows := []domain.CatalogRow{
		{
			Category: domain.Category{ID: "1", Name: "Films"},
			Movies: []domain.Movie{
				{StreamID: 10, Name: "A", Rating: "5", StreamIcon: "x"},
				{StreamID: 11, Name: "B", Rating: "5", StreamIcon: "x"},
			},
		},
		{
			Category: domain.Category{ID: "2", Name: "More"},
			Movies: []domain.Movie{
				{StreamID: 9, Name: "C", Rating: "5", StreamIcon: "x"},
			},
		},
	}

	s := NewScorer(fakePrefs{}, DefaultWeights(), "")
	for range 5 {
		assert.Equal(t, []int64{10, 11, 9}, ids(s.Rank(rows)))
	}
}

func TestSelfRecencyDecays(t *testing.T) {
	rows := []domain.CatalogRow{{
		Category: domain.Category{ID: "1", Name: "Films"},
		Movies: []domain.Movie{
			{StreamID: 1, Name: "Old", Rating: "5", StreamIcon: "x"},
			{StreamID: 2, Name: "New", Rating: "5", StreamIcon: "x"},
		},
	}}

	s := NewScorer(fakePrefs{recent: []int64{2, 1}}, DefaultWeights(), "")
	scored := s.Score(rows)
	require.Len(t, scored, 2)

	assert.Equal(t, int64(2), scored[0].Movie.StreamID)
	// 0.2 quality + 0.2 recent-category (2 views) + 0.2 * 2/2
	assert.InDelta(t, 0.6, scored[0].Score, 1e-9)
	// 0.2 quality + 0.2 recent-category + 0.2 * 1/2
	assert.InDelta(t, 0.5, scored[1].Score, 1e-9)
}

func TestBuildProfileFirstSeenWins(t *testing.T) {
	rows := []domain.CatalogRow{
		{Category: domain.Category{ID: "1"}, Movies: []domain.Movie{{StreamID: 5}}},
		{Category: domain.Category{ID: "2"}, Movies: []domain.Movie{{StreamID: 5}, {StreamID: 6}}},
		{Category: domain.Category{ID: ""}, Movies: []domain.Movie{{StreamID: 7}}},
	}

	p := BuildProfile(rows, []int64{5, 6, 7, 99}, []int64{6})

	assert.Equal(t, 3, p.Len())
	assert.Equal(t, []int64{5, 6, 7}, p.order)
	assert.Equal(t, "1", p.index[5].category.ID)
	assert.Equal(t, map[string]int{"1": 1, "2": 1}, p.FavCategoryCounts)
	assert.Equal(t, map[string]int{"2": 1}, p.RecentCategoryCounts)
}
