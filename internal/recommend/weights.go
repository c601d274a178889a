package recommend

// DefaultPrimaryLanguage is the category-name prefix that marks the main content language.
const DefaultPrimaryLanguage = "en -"

// Weights holds the contribution of each scoring signal.
// The defaults were tuned by hand; change them together, not one at a time.
type Weights struct {
	// Quality scales the 0-10 rating normalized to 0-1.
	Quality float64

	// Favourite is a flat bonus for movies the user has favourited.
	Favourite float64

	// FavCategoryStep is added per favourite in the movie's category, up to FavCategoryCap.
	FavCategoryStep float64
	FavCategoryCap  float64

	// RecentCategoryStep is added per recent view in the movie's category, up to RecentCategoryCap.
	RecentCategoryStep float64
	RecentCategoryCap  float64

	// SelfRecency is the bonus for the most recently viewed movie, decaying linearly down the history.
	SelfRecency float64

	// Locale is a flat bonus for categories in the primary language.
	Locale float64

	// NoArtwork is subtracted from movies with neither a rating nor a poster.
	NoArtwork float64
}

// DefaultWeights returns the standard scoring weights.
func DefaultWeights() Weights {
	return Weights{
		Quality:            0.4,
		Favourite:          0.5,
		FavCategoryStep:    0.15,
		FavCategoryCap:     0.6,
		RecentCategoryStep: 0.10,
		RecentCategoryCap:  0.4,
		SelfRecency:        0.2,
		Locale:             0.1,
		NoArtwork:          0.1,
	}
}
