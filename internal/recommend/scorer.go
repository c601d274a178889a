package recommend

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/mmcdole/reel/internal/domain"
)

// Scored pairs a movie with its recommendation score.
type Scored struct {
	Movie    domain.Movie
	Category domain.Category
	Score    float64
}

// Scorer ranks cached movies for the current user.
type Scorer struct {
	prefs           domain.Preferences
	weights         Weights
	primaryLanguage string
}

// NewScorer creates a scorer reading favourites and history from prefs.
// An empty primaryLanguage falls back to DefaultPrimaryLanguage.
func NewScorer(prefs domain.Preferences, weights Weights, primaryLanguage string) *Scorer {
	primaryLanguage = strings.ToLower(strings.TrimSpace(primaryLanguage))
	if primaryLanguage == "" {
		primaryLanguage = DefaultPrimaryLanguage
	}
	return &Scorer{prefs: prefs, weights: weights, primaryLanguage: primaryLanguage}
}

// Rank returns every movie in rows ordered by descending score.
// Movies with equal scores keep their catalog order.
func (s *Scorer) Rank(rows []domain.CatalogRow) []domain.Movie {
	scored := s.Score(rows)
	movies := make([]domain.Movie, len(scored))
	for i, sc := range scored {
		movies[i] = sc.Movie
	}
	return movies
}

// Score is Rank with the scores attached.
func (s *Scorer) Score(rows []domain.CatalogRow) []Scored {
	p := BuildProfile(rows, s.prefs.FavouriteIDs(), s.prefs.RecentIDs())

	scored := make([]Scored, 0, p.Len())
	for _, id := range p.order {
		e := p.index[id]
		scored = append(scored, Scored{
			Movie:    e.movie,
			Category: e.category,
			Score:    s.score(e, p),
		})
	}

	slices.SortStableFunc(scored, func(a, b Scored) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return scored
}

func (s *Scorer) score(e entry, p *Profile) float64 {
	w := s.weights
	m := e.movie
	id := m.StreamID

	score := rating10(m) / 10 * w.Quality

	if _, ok := p.favourites[id]; ok {
		score += w.Favourite
	}

	if cid := e.category.ID; cid != "" {
		score += math.Min(float64(p.FavCategoryCounts[cid])*w.FavCategoryStep, w.FavCategoryCap)
		score += math.Min(float64(p.RecentCategoryCounts[cid])*w.RecentCategoryStep, w.RecentCategoryCap)
	}

	if rank, ok := p.recentRank[id]; ok {
		score += float64(p.maxRank-rank) / float64(p.maxRank) * w.SelfRecency
	}

	if name := strings.ToLower(strings.TrimSpace(e.category.Name)); name != "" && strings.HasPrefix(name, s.primaryLanguage) {
		score += w.Locale
	}

	if m.Rating == "" && m.StreamIcon == "" {
		score -= w.NoArtwork
	}

	return max(score, 0)
}

// rating10 normalizes a movie's rating to 0-10.
// rating_5based wins when present; otherwise the free-form rating is parsed,
// with anything unparsable counting as 0.
func rating10(m domain.Movie) float64 {
	if m.Rating5Based != nil {
		return *m.Rating5Based * 2
	}
	if m.Rating == "" {
		return 0
	}
	r, err := strconv.ParseFloat(strings.TrimSpace(m.Rating), 64)
	if err != nil || math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}
