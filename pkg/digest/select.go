package digest

import (
	"sort"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/gamedigest/pkg/domain"
)

// QuotaRange is an inclusive target range for one source kind; the selector
// aims for the midpoint of the range
type QuotaRange struct {
	Min int
	Max int
}

// SelectorConfig controls how selection slots are split across source kinds.
// With an empty Quotas table the target count is divided equally among the
// source kinds that actually contributed items.
type SelectorConfig struct {
	Quotas map[domain.SourceKind]QuotaRange
}

// quotaOrder fixes the priority in which bucket targets are satisfied
var quotaOrder = []domain.SourceKind{domain.SourceNews, domain.SourceForum, domain.SourceVideo}

// Selector picks a bounded, source-diverse subset from a ranked pool
type Selector struct {
	cfg SelectorConfig
}

// NewSelector creates a selector with the given quota policy
func NewSelector(cfg SelectorConfig) *Selector {
	return &Selector{cfg: cfg}
}

// Select returns up to count items from the ranked pool, highest score first.
// The pool must already be sorted descending by score. A quota pass takes the
// top items of each source kind up to its target, then a fill pass walks the
// whole pool in score order until count is reached. A kind with no items
// simply cedes its slots to the fill pass.
func (s *Selector) Select(pool []domain.Ranked, count int) []domain.Ranked {
	if count <= 0 || len(pool) == 0 {
		return []domain.Ranked{}
	}

	buckets := make(map[domain.SourceKind][]int, 3)
	for i, item := range pool {
		buckets[item.Kind] = append(buckets[item.Kind], i)
	}
	targets := s.bucketTargets(buckets, count)

	picked := make(map[int]bool, count)
	seenURLs := make(map[string]bool, count)
	selected := make([]int, 0, count)

	// quota pass, fixed kind order
	for _, kind := range quotaOrder {
		target := targets[kind]
		for _, idx := range buckets[kind] {
			if target <= 0 || len(selected) >= count {
				break
			}
			if s.alreadyPicked(pool[idx], idx, picked, seenURLs) {
				continue
			}
			selected = append(selected, idx)
			s.markPicked(pool[idx], idx, picked, seenURLs)
			target--
		}
	}

	// fill pass in score order
	for idx := range pool {
		if len(selected) >= count {
			break
		}
		if s.alreadyPicked(pool[idx], idx, picked, seenURLs) {
			continue
		}
		selected = append(selected, idx)
		s.markPicked(pool[idx], idx, picked, seenURLs)
	}

	result := make([]domain.Ranked, 0, len(selected))
	for _, idx := range selected {
		result = append(result, pool[idx])
	}

	// quota pass inserts by bucket, not by score, so a final sort is required
	sort.SliceStable(result, func(i, j int) bool { return result[i].Score > result[j].Score })
	if len(result) > count {
		result = result[:count]
	}

	lgr.Printf("[INFO] selected %d of %d items, distribution: %v", len(result), len(pool), kindCounts(result))
	return result
}

// bucketTargets computes per-kind targets: quota-range midpoints when the
// quota table is configured, otherwise an equal split among non-empty kinds
func (s *Selector) bucketTargets(buckets map[domain.SourceKind][]int, count int) map[domain.SourceKind]int {
	targets := make(map[domain.SourceKind]int, 3)

	if len(s.cfg.Quotas) > 0 {
		for kind, q := range s.cfg.Quotas {
			targets[kind] = (q.Min + q.Max) / 2
		}
		return targets
	}

	nonEmpty := 0
	for _, idxs := range buckets {
		if len(idxs) > 0 {
			nonEmpty++
		}
	}
	if nonEmpty == 0 {
		return targets
	}
	per := count / nonEmpty
	if per < 1 {
		per = 1
	}
	for kind, idxs := range buckets {
		if len(idxs) > 0 {
			targets[kind] = per
		}
	}
	return targets
}

// identity is the URL when present, pool position otherwise
func (s *Selector) alreadyPicked(item domain.Ranked, idx int, picked map[int]bool, seenURLs map[string]bool) bool {
	if picked[idx] {
		return true
	}
	return item.URL != "" && seenURLs[item.URL]
}

func (s *Selector) markPicked(item domain.Ranked, idx int, picked map[int]bool, seenURLs map[string]bool) {
	picked[idx] = true
	if item.URL != "" {
		seenURLs[item.URL] = true
	}
}

func kindCounts(items []domain.Ranked) map[domain.SourceKind]int {
	counts := make(map[domain.SourceKind]int, 3)
	for _, item := range items {
		counts[item.Kind]++
	}
	return counts
}
