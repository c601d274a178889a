package search

import (
	"log/slog"
	"slices"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
	sfuzzy "github.com/sahilm/fuzzy"

	"github.com/mmcdole/reel/internal/domain"
)

// Result is a movie matched by a title search
type Result struct {
	Movie          domain.Movie
	Category       domain.Category
	MatchedIndexes []int // Byte offsets into Movie.Name of matched characters
	Score          int   // Higher is better
}

// Index implements sahilm/fuzzy.Source over cached movie titles
type Index struct {
	movies      []domain.Movie
	categories  []domain.Category
	lowerTitles []string // Pre-computed lowercase titles
	offsets     [][]int  // Byte offset in lowerTitles[i] -> byte offset in the original title
}

// String returns the lowercase title at index i (implements fuzzy.Source)
func (idx *Index) String(i int) string { return idx.lowerTitles[i] }

// Len returns the number of movies (implements fuzzy.Source)
func (idx *Index) Len() int { return len(idx.movies) }

// NewIndex builds a title index from catalog rows, one entry per stream ID.
func NewIndex(rows []domain.CatalogRow) *Index {
	idx := &Index{}
	seen := make(map[int64]bool)
	for _, row := range rows {
		for _, m := range row.Movies {
			if seen[m.StreamID] {
				continue
			}
			seen[m.StreamID] = true
			idx.movies = append(idx.movies, m)
			idx.categories = append(idx.categories, row.Category)
			lower, offsets := foldTitle(m.Name)
			idx.lowerTitles = append(idx.lowerTitles, lower)
			idx.offsets = append(idx.offsets, offsets)
		}
	}
	return idx
}

// foldTitle lowercases name rune by rune. Lowercasing can change a rune's
// encoded length, so it also returns, for every byte of the result, the
// byte offset of the rune it came from in name.
func foldTitle(name string) (string, []int) {
	var b strings.Builder
	b.Grow(len(name))
	offsets := make([]int, 0, len(name))
	for i, r := range name {
		n, _ := b.WriteRune(unicode.ToLower(r))
		for range n {
			offsets = append(offsets, i)
		}
	}
	return b.String(), offsets
}

// originalIndexes maps match offsets in the folded title back onto the original
func (idx *Index) originalIndexes(i int, matched []int) []int {
	out := make([]int, 0, len(matched))
	for _, m := range matched {
		if m < 0 || m >= len(idx.offsets[i]) {
			continue
		}
		orig := idx.offsets[i][m]
		if len(out) == 0 || out[len(out)-1] != orig {
			out = append(out, orig)
		}
	}
	return out
}

// Service handles fuzzy search over the cached catalog
type Service struct {
	logger *slog.Logger
}

// NewService creates a new search service
func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Movies returns up to limit movies whose title fuzzy-matches query, best first.
// A limit of 0 or less returns every match.
func (s *Service) Movies(query string, rows []domain.CatalogRow, limit int) []Result {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	idx := NewIndex(rows)
	if idx.Len() == 0 {
		return nil
	}

	matches := sfuzzy.FindFrom(strings.ToLower(query), idx)
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}

	results := make([]Result, len(matches))
	for i, match := range matches {
		results[i] = Result{
			Movie:          idx.movies[match.Index],
			Category:       idx.categories[match.Index],
			MatchedIndexes: idx.originalIndexes(match.Index, match.MatchedIndexes),
			Score:          match.Score,
		}
	}

	s.logger.Debug("title search", "query", query, "indexed", idx.Len(), "results", len(results))
	return results
}

// FilterCategories returns the categories whose name contains the letters of
// query in order, ignoring case and diacritics, closest match first.
// An empty query returns cats unchanged.
func (s *Service) FilterCategories(query string, cats []domain.Category) []domain.Category {
	query = strings.TrimSpace(query)
	if query == "" {
		return cats
	}

	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}

	ranks := fuzzy.RankFindNormalizedFold(query, names)
	slices.SortStableFunc(ranks, func(a, b fuzzy.Rank) int {
		if a.Distance != b.Distance {
			return a.Distance - b.Distance
		}
		return a.OriginalIndex - b.OriginalIndex
	})

	out := make([]domain.Category, len(ranks))
	for i, r := range ranks {
		out[i] = cats[r.OriginalIndex]
	}
	return out
}
