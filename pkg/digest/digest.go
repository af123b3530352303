// Package digest implements the ranking core of the content pipeline:
// deduplication by URL and title similarity, heuristic tier classification,
// engagement/recency scoring, and quota-constrained top-K selection.
// Everything here is a pure in-memory computation; fetching and delivery
// live elsewhere.
package digest

import (
	"sort"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/gamedigest/pkg/domain"
)

// Ranker composes classification and scoring into a single ranking step
type Ranker struct {
	classifier *Classifier
	scorer     *Scorer
}

// NewRanker creates a ranker from a classifier and scorer
func NewRanker(classifier *Classifier, scorer *Scorer) *Ranker {
	return &Ranker{classifier: classifier, scorer: scorer}
}

// Rank classifies and scores every item against the topic's official sources
// and returns the annotated records sorted descending by score. Input items
// are not modified; each run classifies a record exactly once.
func (r *Ranker) Rank(items []domain.Item, officialSources []string, now time.Time) []domain.Ranked {
	ranked := make([]domain.Ranked, 0, len(items))
	for _, item := range items {
		contentType := r.classifier.Classify(item, officialSources)
		score := r.scorer.Score(item, contentType, now)
		ranked = append(ranked, domain.Ranked{Item: item, ContentType: contentType, Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Score > ranked[j].Score })
	lgr.Printf("[INFO] ranked %d items", len(ranked))
	return ranked
}
