package recommend

import "github.com/mmcdole/reel/internal/domain"

// entry is a movie resolved to the category it was first seen in.
type entry struct {
	movie    domain.Movie
	category domain.Category
}

// Profile is the taste profile derived from the catalog and the user's history.
// It is rebuilt for every ranking request.
type Profile struct {
	// order lists stream IDs in first-seen order (categories, then movies)
	order []int64
	index map[int64]entry

	// FavCategoryCounts counts favourited movies per category ID
	FavCategoryCounts map[string]int
	// RecentCategoryCounts counts recently viewed movies per category ID
	RecentCategoryCounts map[string]int

	favourites map[int64]struct{}
	recentRank map[int64]int // position in the history, 0 = most recent
	maxRank    int
}

// BuildProfile indexes the catalog and derives per-category affinity counts.
//
// A stream ID listed under more than one category resolves to the first
// category it appears in. Catalogs are expected to list each movie once, so
// this only matters for malformed data.
func BuildProfile(rows []domain.CatalogRow, favourites, recent []int64) *Profile {
	p := &Profile{
		index:                make(map[int64]entry),
		FavCategoryCounts:    make(map[string]int),
		RecentCategoryCounts: make(map[string]int),
		favourites:           make(map[int64]struct{}, len(favourites)),
		recentRank:           make(map[int64]int, len(recent)),
		maxRank:              max(len(recent), 1),
	}

	for _, row := range rows {
		for _, m := range row.Movies {
			if _, seen := p.index[m.StreamID]; seen {
				continue
			}
			p.index[m.StreamID] = entry{movie: m, category: row.Category}
			p.order = append(p.order, m.StreamID)
		}
	}

	for _, id := range favourites {
		p.favourites[id] = struct{}{}
		if e, ok := p.index[id]; ok && e.category.ID != "" {
			p.FavCategoryCounts[e.category.ID]++
		}
	}

	for i, id := range recent {
		if _, seen := p.recentRank[id]; !seen {
			p.recentRank[id] = i
		}
		if e, ok := p.index[id]; ok && e.category.ID != "" {
			p.RecentCategoryCounts[e.category.ID]++
		}
	}

	return p
}

// Len returns the number of distinct movies in the profile's index.
func (p *Profile) Len() int { return len(p.order) }
