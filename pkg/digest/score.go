package digest

import (
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/gamedigest/pkg/domain"
)

// ScorerConfig holds the weights and thresholds of the rank formula
type ScorerConfig struct {
	Weights      map[domain.ContentType]float64 // base weight per tier
	PreferredAge time.Duration                  // items younger than this get the full recency boost
	FallbackAge  time.Duration                  // items younger than this get the reduced recency boost
	VideoDivisor float64                        // view count divisor for video engagement normalization
	ForumDivisor float64                        // upvote divisor for forum engagement normalization
	Cap          float64                        // upper bound on the engagement boost
}

// default scoring model: tier dominates, engagement and recency adjust within it
var defaultWeights = map[domain.ContentType]float64{
	domain.ContentOfficial:   100,
	domain.ContentMajorNews:  75,
	domain.ContentCommunity:  50,
	domain.ContentDiscussion: 25,
}

const (
	defaultPreferredAge = 24 * time.Hour
	defaultFallbackAge  = 72 * time.Hour
	defaultVideoDivisor = 10000
	defaultForumDivisor = 100
	defaultCap          = 20

	preferredRecencyBoost = 25
	fallbackRecencyBoost  = 10
)

// Scorer converts (tier, engagement, recency) into a single rank score
type Scorer struct {
	cfg ScorerConfig
}

// NewScorer creates a scorer, filling zero-valued settings with defaults
func NewScorer(cfg ScorerConfig) *Scorer {
	if len(cfg.Weights) == 0 {
		cfg.Weights = defaultWeights
	}
	if cfg.PreferredAge == 0 {
		cfg.PreferredAge = defaultPreferredAge
	}
	if cfg.FallbackAge == 0 {
		cfg.FallbackAge = defaultFallbackAge
	}
	if cfg.VideoDivisor == 0 {
		cfg.VideoDivisor = defaultVideoDivisor
	}
	if cfg.ForumDivisor == 0 {
		cfg.ForumDivisor = defaultForumDivisor
	}
	if cfg.Cap == 0 {
		cfg.Cap = defaultCap
	}
	return &Scorer{cfg: cfg}
}

// Score computes the rank score of an item for the given tier. It is a pure
// function of the inputs and now, so runs scoring the same pool with the same
// clock produce identical ranks.
func (s *Scorer) Score(item domain.Item, contentType domain.ContentType, now time.Time) float64 {
	base := s.cfg.Weights[contentType]
	engagement := s.engagementBoost(item)
	recency := s.recencyBoost(item, now)

	total := base + engagement + recency
	lgr.Printf("[DEBUG] score %q: base=%.0f engagement=%.1f recency=%.0f total=%.1f",
		truncate(item.Title, 50), base, engagement, recency, total)
	return total
}

// engagementBoost normalizes the engagement metric into [0, cap]. View counts
// and upvotes live on incompatible scales, so each kind gets its own divisor;
// news items carry no engagement signal and get nothing.
func (s *Scorer) engagementBoost(item domain.Item) float64 {
	switch item.Kind {
	case domain.SourceVideo:
		return min(float64(item.Engagement)/s.cfg.VideoDivisor, s.cfg.Cap)
	case domain.SourceForum:
		return min(float64(item.Engagement)/s.cfg.ForumDivisor, s.cfg.Cap)
	}
	return 0
}

// recencyBoost rewards fresh content in two steps; items with no known
// publish time get no boost
func (s *Scorer) recencyBoost(item domain.Item, now time.Time) float64 {
	if item.Published.IsZero() {
		return 0
	}
	age := now.Sub(item.Published)
	switch {
	case age <= s.cfg.PreferredAge:
		return preferredRecencyBoost
	case age <= s.cfg.FallbackAge:
		return fallbackRecencyBoost
	}
	return 0
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
