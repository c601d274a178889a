package library

import (
	"strings"

	"github.com/mmcdole/reel/internal/domain"
)

// blockedPrefixes lists category-name prefixes (lowercased) that are never synced.
// Mostly regional-language tags, plus sports and subtitle-only sections.
var blockedPrefixes = []string{
	"soccer",
	"de -",
	"be -",
	"pt/br -",
	"es -",
	"fr -",
	"la -",
	"af -",
	"qc -",
	"it -",
	"nl -",
	"gr -",
	"nordic",
	"svenska",
	"danske",
	"norge",
	"mt -",
	"bg -",
	"al -",
	"ex -",
	"tr -",
	"ir -",
	"so -",
	"in -",
	"bn -",
	"pk -",
	"br -",
	"pl -",
	"en - italian sub eng",
}

// IsBlockedCategoryName reports whether a category name starts with a blocked prefix, ignoring case.
func IsBlockedCategoryName(name string) bool {
	lower := strings.ToLower(name)
	for _, prefix := range blockedPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// FilterCategories returns the categories that pass the blocklist, preserving order.
func FilterCategories(cats []domain.Category) []domain.Category {
	allowed := make([]domain.Category, 0, len(cats))
	for _, c := range cats {
		if !IsBlockedCategoryName(c.Name) {
			allowed = append(allowed, c)
		}
	}
	return allowed
}
