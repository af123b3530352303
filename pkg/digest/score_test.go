package digest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/umputun/gamedigest/pkg/domain"
)

func TestScorer_Score(t *testing.T) {
	s := NewScorer(ScorerConfig{})
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("tier weight dominates", func(t *testing.T) {
		official := domain.Item{Kind: domain.SourceNews, Published: now.Add(-100 * time.Hour)}
		discussion := domain.Item{Kind: domain.SourceNews, Published: now.Add(-100 * time.Hour)}
		assert.InEpsilon(t, 100.0, s.Score(official, domain.ContentOfficial, now), 1e-9)
		assert.InEpsilon(t, 25.0, s.Score(discussion, domain.ContentDiscussion, now), 1e-9)
	})

	t.Run("forum engagement normalized by 100", func(t *testing.T) {
		item := domain.Item{Kind: domain.SourceForum, Engagement: 600, Published: now.Add(-100 * time.Hour)}
		assert.InEpsilon(t, 50.0+6.0, s.Score(item, domain.ContentCommunity, now), 1e-9)
	})

	t.Run("video engagement normalized by 10000", func(t *testing.T) {
		item := domain.Item{Kind: domain.SourceVideo, Engagement: 50000, Published: now.Add(-100 * time.Hour)}
		assert.InEpsilon(t, 50.0+5.0, s.Score(item, domain.ContentCommunity, now), 1e-9)
	})

	t.Run("engagement boost capped at 20", func(t *testing.T) {
		forum := domain.Item{Kind: domain.SourceForum, Engagement: 1000000, Published: now.Add(-100 * time.Hour)}
		video := domain.Item{Kind: domain.SourceVideo, Engagement: 100000000, Published: now.Add(-100 * time.Hour)}
		assert.InEpsilon(t, 50.0+20.0, s.Score(forum, domain.ContentCommunity, now), 1e-9)
		assert.InEpsilon(t, 50.0+20.0, s.Score(video, domain.ContentCommunity, now), 1e-9)
	})

	t.Run("news gets no engagement boost", func(t *testing.T) {
		item := domain.Item{Kind: domain.SourceNews, Engagement: 99999, Published: now.Add(-100 * time.Hour)}
		assert.InEpsilon(t, 75.0, s.Score(item, domain.ContentMajorNews, now), 1e-9)
	})

	t.Run("recency tiers", func(t *testing.T) {
		fresh := domain.Item{Kind: domain.SourceNews, Published: now.Add(-1 * time.Hour)}
		recent := domain.Item{Kind: domain.SourceNews, Published: now.Add(-48 * time.Hour)}
		old := domain.Item{Kind: domain.SourceNews, Published: now.Add(-200 * time.Hour)}
		assert.InEpsilon(t, 75.0+25.0, s.Score(fresh, domain.ContentMajorNews, now), 1e-9)
		assert.InEpsilon(t, 75.0+10.0, s.Score(recent, domain.ContentMajorNews, now), 1e-9)
		assert.InEpsilon(t, 75.0, s.Score(old, domain.ContentMajorNews, now), 1e-9)
	})

	t.Run("recency boundaries are inclusive", func(t *testing.T) {
		at24h := domain.Item{Kind: domain.SourceNews, Published: now.Add(-24 * time.Hour)}
		at72h := domain.Item{Kind: domain.SourceNews, Published: now.Add(-72 * time.Hour)}
		assert.InEpsilon(t, 75.0+25.0, s.Score(at24h, domain.ContentMajorNews, now), 1e-9)
		assert.InEpsilon(t, 75.0+10.0, s.Score(at72h, domain.ContentMajorNews, now), 1e-9)
	})

	t.Run("zero publish time gets no recency boost", func(t *testing.T) {
		item := domain.Item{Kind: domain.SourceNews}
		assert.InEpsilon(t, 75.0, s.Score(item, domain.ContentMajorNews, now), 1e-9)
	})

	t.Run("deterministic for fixed now", func(t *testing.T) {
		item := domain.Item{Kind: domain.SourceForum, Engagement: 123, Published: now.Add(-3 * time.Hour)}
		first := s.Score(item, domain.ContentDiscussion, now)
		for i := 0; i < 5; i++ {
			assert.InEpsilon(t, first, s.Score(item, domain.ContentDiscussion, now), 1e-9)
		}
	})
}

func TestScorer_Bounds(t *testing.T) {
	s := NewScorer(ScorerConfig{})
	now := time.Now()

	engagements := []int64{0, 1, 99, 100, 500, 10000, 123456789}
	for _, e := range engagements {
		forum := domain.Item{Kind: domain.SourceForum, Engagement: e}
		video := domain.Item{Kind: domain.SourceVideo, Engagement: e}

		fb := s.engagementBoost(forum)
		vb := s.engagementBoost(video)
		assert.GreaterOrEqual(t, fb, 0.0)
		assert.LessOrEqual(t, fb, 20.0)
		assert.GreaterOrEqual(t, vb, 0.0)
		assert.LessOrEqual(t, vb, 20.0)
	}

	ages := []time.Duration{0, time.Hour, 24 * time.Hour, 25 * time.Hour, 72 * time.Hour, 1000 * time.Hour}
	for _, age := range ages {
		item := domain.Item{Kind: domain.SourceNews, Published: now.Add(-age)}
		boost := s.recencyBoost(item, now)
		assert.Contains(t, []float64{0, 10, 25}, boost)
	}
}

func TestScorer_CustomConfig(t *testing.T) {
	s := NewScorer(ScorerConfig{
		Weights:      map[domain.ContentType]float64{domain.ContentOfficial: 10},
		PreferredAge: time.Hour,
		FallbackAge:  2 * time.Hour,
		ForumDivisor: 10,
		Cap:          5,
	})
	now := time.Now()

	item := domain.Item{Kind: domain.SourceForum, Engagement: 100, Published: now.Add(-90 * time.Minute)}
	// weight 10 + capped engagement 5 + fallback recency 10
	assert.InEpsilon(t, 25.0, s.Score(item, domain.ContentOfficial, now), 1e-9)
}
