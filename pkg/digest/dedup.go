package digest

import (
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/gamedigest/pkg/domain"
)

// DefaultSimilarityThreshold treats titles at or above this ratio as the same story
const DefaultSimilarityThreshold = 0.85

// Deduplicator removes duplicate items by exact URL and fuzzy title similarity
type Deduplicator struct {
	threshold float64
}

// NewDeduplicator creates a deduplicator with the given title similarity
// threshold, falling back to the default for non-positive values
func NewDeduplicator(threshold float64) *Deduplicator {
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &Deduplicator{threshold: threshold}
}

// Deduplicate walks items in order and drops any item whose non-empty URL was
// already seen or whose normalized title is similar to a previously kept one.
// The first occurrence wins, so callers sorting by priority beforehand keep
// the best duplicate. Surviving items preserve their input order.
func (d *Deduplicator) Deduplicate(items []domain.Item) []domain.Item {
	if len(items) == 0 {
		return []domain.Item{}
	}

	unique := make([]domain.Item, 0, len(items))
	seenURLs := make(map[string]struct{}, len(items))
	keptTitles := make([]string, 0, len(items))

	for _, item := range items {
		if item.URL != "" {
			if _, ok := seenURLs[item.URL]; ok {
				lgr.Printf("[DEBUG] dedup: duplicate url %q", item.URL)
				continue
			}
		}

		title := normalizeTitle(item.Title)
		if d.hasSimilarTitle(title, keptTitles) {
			lgr.Printf("[DEBUG] dedup: similar title %q", item.Title)
			continue
		}

		unique = append(unique, item)
		if item.URL != "" {
			seenURLs[item.URL] = struct{}{}
		}
		keptTitles = append(keptTitles, title)
	}

	if removed := len(items) - len(unique); removed > 0 {
		lgr.Printf("[INFO] dedup: %d -> %d items, %d duplicates removed", len(items), len(unique), removed)
	}
	return unique
}

// hasSimilarTitle compares a normalized title against every kept title.
// Quadratic over kept titles, fine for the tens of items a run produces.
func (d *Deduplicator) hasSimilarTitle(title string, kept []string) bool {
	for _, k := range kept {
		if title == k {
			return true
		}
		if similarityRatio(title, k) >= d.threshold {
			return true
		}
	}
	return false
}

func normalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}
