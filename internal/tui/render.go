package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/tui/styles"
)

const (
	nameWidth     = 44
	categoryWidth = 24
)

// MovieRow is one line of a rendered movie list
type MovieRow struct {
	Movie     domain.Movie
	Category  domain.Category
	Favourite bool
	Score     *float64 // shown when non-nil
	Matched   []int    // byte offsets of search matches in Movie.Name
}

// RenderMovies renders movies as aligned lines: favourite marker, ID, name, rating, category
func RenderMovies(rows []MovieRow) string {
	if len(rows) == 0 {
		return styles.DimStyle.Render("No movies.") + "\n"
	}

	idWidth := 0
	for _, r := range rows {
		idWidth = max(idWidth, len(strconv.FormatInt(r.Movie.StreamID, 10)))
	}

	var b strings.Builder
	for _, r := range rows {
		marker := " "
		if r.Favourite {
			marker = styles.FavouriteStar
		}

		name := styles.Truncate(r.Movie.Name, nameWidth)
		padded := styles.Pad(name, nameWidth)
		if len(r.Matched) > 0 && name == r.Movie.Name {
			padded = styles.Pad(styles.Highlight(name, r.Matched), nameWidth)
		}

		fmt.Fprintf(&b, "%s %s  %s  %s  %s",
			marker,
			styles.DimStyle.Render(fmt.Sprintf("%*d", idWidth, r.Movie.StreamID)),
			padded,
			styles.AccentStyle.Render(fmt.Sprintf("%4s", ratingLabel(r.Movie))),
			styles.SubtitleStyle.Render(styles.Truncate(r.Category.Name, categoryWidth)),
		)
		if r.Score != nil {
			fmt.Fprintf(&b, "  %s", styles.DimStyle.Render(fmt.Sprintf("%.3f", *r.Score)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ratingLabel formats the rating on a 0-10 scale, or "-" when missing
func ratingLabel(m domain.Movie) string {
	if !m.HasRating() {
		return "-"
	}
	if m.Rating5Based != nil {
		return strconv.FormatFloat(*m.Rating5Based*2, 'f', 1, 64)
	}
	if r, err := strconv.ParseFloat(strings.TrimSpace(m.Rating), 64); err == nil {
		return strconv.FormatFloat(r, 'f', 1, 64)
	}
	return "-"
}

// RenderCategories renders category names with their cached movie counts
func RenderCategories(cats []domain.Category, counts map[string]int) string {
	if len(cats) == 0 {
		return styles.DimStyle.Render("No categories.") + "\n"
	}

	var b strings.Builder
	for _, c := range cats {
		fmt.Fprintf(&b, "%s  %s  %s\n",
			styles.DimStyle.Render(fmt.Sprintf("%8s", c.ID)),
			styles.Pad(c.Name, nameWidth),
			styles.AccentStyle.Render(strconv.Itoa(counts[c.ID])),
		)
	}
	return b.String()
}

// RenderStatus renders a one-screen summary of the local catalog
func RenderStatus(server string, snap domain.Snapshot, favourites, recent int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", styles.TitleStyle.Render("Server:"), server)
	if snap.LastSync == nil {
		fmt.Fprintf(&b, "%s %s\n", styles.TitleStyle.Render("Last sync:"), styles.DimStyle.Render("never"))
	} else {
		t := time.UnixMilli(*snap.LastSync)
		fmt.Fprintf(&b, "%s %s\n", styles.TitleStyle.Render("Last sync:"), t.Format(time.DateTime))
	}
	fmt.Fprintf(&b, "%s %d\n", styles.TitleStyle.Render("Categories:"), len(snap.Categories))
	fmt.Fprintf(&b, "%s %d\n", styles.TitleStyle.Render("Movies:"), snap.MovieCount())
	fmt.Fprintf(&b, "%s %d\n", styles.TitleStyle.Render("Favourites:"), favourites)
	fmt.Fprintf(&b, "%s %d\n", styles.TitleStyle.Render("Recently viewed:"), recent)
	return b.String()
}

// RenderError renders an error message
func RenderError(err error) string {
	return styles.ErrorStyle.Render("Error: "+err.Error()) + "\n"
}
