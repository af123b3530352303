package digest

import (
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/gamedigest/pkg/domain"
)

// rankedPool builds a score-sorted pool with the given kinds, highest first
func rankedPool(kinds ...domain.SourceKind) []domain.Ranked {
	pool := make([]domain.Ranked, 0, len(kinds))
	for i, kind := range kinds {
		pool = append(pool, domain.Ranked{
			Item: domain.Item{
				Title: fmt.Sprintf("item %d", i),
				URL:   fmt.Sprintf("https://example.com/%d", i),
				Kind:  kind,
			},
			Score: float64(1000 - i),
		})
	}
	return pool
}

func TestSelector_Select(t *testing.T) {
	t.Run("empty pool", func(t *testing.T) {
		s := NewSelector(SelectorConfig{})
		assert.Empty(t, s.Select(nil, 5))
		assert.Empty(t, s.Select([]domain.Ranked{}, 5))
	})

	t.Run("zero and negative count", func(t *testing.T) {
		s := NewSelector(SelectorConfig{})
		pool := rankedPool(domain.SourceNews, domain.SourceForum)
		assert.Empty(t, s.Select(pool, 0))
		assert.Empty(t, s.Select(pool, -1))
	})

	t.Run("fewer items than count returns all", func(t *testing.T) {
		s := NewSelector(SelectorConfig{})
		pool := rankedPool(domain.SourceNews, domain.SourceForum, domain.SourceVideo)
		got := s.Select(pool, 10)
		assert.Len(t, got, 3)
	})

	t.Run("count contract holds for arbitrary k", func(t *testing.T) {
		s := NewSelector(SelectorConfig{})
		pool := rankedPool(
			domain.SourceNews, domain.SourceNews, domain.SourceForum, domain.SourceForum,
			domain.SourceVideo, domain.SourceVideo, domain.SourceForum, domain.SourceNews,
		)
		for k := 0; k <= 12; k++ {
			got := s.Select(pool, k)
			want := k
			if len(pool) < k {
				want = len(pool)
			}
			assert.Len(t, got, want, "k=%d", k)
		}
	})

	t.Run("result sorted by score descending", func(t *testing.T) {
		s := NewSelector(SelectorConfig{})
		pool := rankedPool(
			domain.SourceVideo, domain.SourceVideo, domain.SourceNews,
			domain.SourceForum, domain.SourceNews, domain.SourceForum,
		)
		got := s.Select(pool, 4)
		require.Len(t, got, 4)
		assert.True(t, sort.SliceIsSorted(got, func(i, j int) bool { return got[i].Score > got[j].Score }))
	})

	t.Run("equal split across non-empty kinds", func(t *testing.T) {
		s := NewSelector(SelectorConfig{})
		pool := rankedPool(
			domain.SourceForum, domain.SourceForum, domain.SourceForum,
			domain.SourceVideo, domain.SourceVideo, domain.SourceVideo,
			domain.SourceNews, domain.SourceNews, domain.SourceNews,
		)
		got := s.Select(pool, 6)
		require.Len(t, got, 6)
		counts := kindCounts(got)
		assert.Equal(t, 2, counts[domain.SourceNews])
		assert.Equal(t, 2, counts[domain.SourceForum])
		assert.Equal(t, 2, counts[domain.SourceVideo])
	})

	t.Run("missing kind cedes slots to fill pass", func(t *testing.T) {
		s := NewSelector(SelectorConfig{})
		pool := rankedPool(
			domain.SourceForum, domain.SourceForum, domain.SourceForum,
			domain.SourceForum, domain.SourceVideo, domain.SourceVideo,
		)
		got := s.Select(pool, 6)
		assert.Len(t, got, 6, "no news items, still fills from the rest")
	})

	t.Run("quota table uses range midpoints", func(t *testing.T) {
		s := NewSelector(SelectorConfig{Quotas: map[domain.SourceKind]QuotaRange{
			domain.SourceNews:  {Min: 1, Max: 3}, // midpoint 2
			domain.SourceForum: {Min: 1, Max: 1}, // midpoint 1
			domain.SourceVideo: {Min: 0, Max: 2}, // midpoint 1
		}})
		pool := rankedPool(
			domain.SourceVideo, domain.SourceVideo, domain.SourceVideo,
			domain.SourceForum, domain.SourceForum,
			domain.SourceNews, domain.SourceNews, domain.SourceNews,
		)
		got := s.Select(pool, 4)
		require.Len(t, got, 4)
		counts := kindCounts(got)
		assert.Equal(t, 2, counts[domain.SourceNews])
		assert.Equal(t, 1, counts[domain.SourceForum])
		assert.Equal(t, 1, counts[domain.SourceVideo])
	})

	t.Run("quota best effort with rich pool", func(t *testing.T) {
		s := NewSelector(SelectorConfig{})
		pool := rankedPool(
			domain.SourceVideo, domain.SourceVideo, domain.SourceVideo, domain.SourceVideo,
			domain.SourceForum, domain.SourceForum, domain.SourceForum,
			domain.SourceNews, domain.SourceNews, domain.SourceNews,
		)
		got := s.Select(pool, 6)
		require.Len(t, got, 6)
		counts := kindCounts(got)
		assert.GreaterOrEqual(t, counts[domain.SourceNews], 1)
		assert.GreaterOrEqual(t, counts[domain.SourceForum], 1)
		assert.GreaterOrEqual(t, counts[domain.SourceVideo], 1)
	})

	t.Run("shared url picked once", func(t *testing.T) {
		s := NewSelector(SelectorConfig{})
		pool := []domain.Ranked{
			{Item: domain.Item{Title: "crosspost", URL: "https://example.com/same", Kind: domain.SourceNews}, Score: 90},
			{Item: domain.Item{Title: "crosspost", URL: "https://example.com/same", Kind: domain.SourceForum}, Score: 80},
			{Item: domain.Item{Title: "other", URL: "https://example.com/other", Kind: domain.SourceVideo}, Score: 70},
		}
		got := s.Select(pool, 3)
		require.Len(t, got, 2)
		urls := []string{got[0].URL, got[1].URL}
		assert.Contains(t, urls, "https://example.com/same")
		assert.Contains(t, urls, "https://example.com/other")
	})

	t.Run("items without url use identity", func(t *testing.T) {
		s := NewSelector(SelectorConfig{})
		pool := []domain.Ranked{
			{Item: domain.Item{Title: "first", Kind: domain.SourceForum}, Score: 90},
			{Item: domain.Item{Title: "second", Kind: domain.SourceForum}, Score: 80},
		}
		got := s.Select(pool, 2)
		assert.Len(t, got, 2, "empty urls do not alias each other")
	})
}
