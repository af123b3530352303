package digest

import (
	"strings"

	"github.com/umputun/gamedigest/pkg/domain"
)

// ClassifierConfig holds the source and keyword tables driving tier assignment
type ClassifierConfig struct {
	AnnouncementKeywords []string // title keywords promoting an item to official
	MajorOutlets         []string // recognized news outlets
	TrustedChannels      []string // video channels treated as major news
	CommunityThreshold   int64    // forum engagement above this counts as community
}

// default classification tables, matching the editorial model the digest was tuned on
var (
	defaultAnnouncementKeywords = []string{"patch", "update", "announcement", "release", "launch", "developer", "official", "confirmed"}
	defaultMajorOutlets         = []string{"ign", "kotaku", "pc gamer", "polygon", "eurogamer", "vg247"}
	defaultTrustedChannels      = []string{"ign", "gamespot", "eurogamer", "pc gamer", "polygon"}
)

// defaultCommunityThreshold separates viral forum posts from plain discussion
const defaultCommunityThreshold = 500

// Classifier assigns each item one of the fixed priority tiers using
// source identity and keyword heuristics
type Classifier struct {
	cfg ClassifierConfig
}

// NewClassifier creates a classifier, filling empty tables with defaults
func NewClassifier(cfg ClassifierConfig) *Classifier {
	if len(cfg.AnnouncementKeywords) == 0 {
		cfg.AnnouncementKeywords = defaultAnnouncementKeywords
	}
	if len(cfg.MajorOutlets) == 0 {
		cfg.MajorOutlets = defaultMajorOutlets
	}
	if len(cfg.TrustedChannels) == 0 {
		cfg.TrustedChannels = defaultTrustedChannels
	}
	if cfg.CommunityThreshold == 0 {
		cfg.CommunityThreshold = defaultCommunityThreshold
	}
	return &Classifier{cfg: cfg}
}

// Classify determines the priority tier of an item. Rules apply in order and
// the first match wins: official sources and announcement keywords beat
// outlet recognition, which beats kind-specific engagement heuristics.
// All matching is case-insensitive substring containment, so short keywords
// match inside larger words as well.
func (c *Classifier) Classify(item domain.Item, officialSources []string) domain.ContentType {
	title := strings.ToLower(item.Title)
	source := strings.ToLower(item.Source)
	content := title + " " + source + " " + strings.ToLower(item.Description)

	if containsAny(content, officialSources) {
		return domain.ContentOfficial
	}
	if containsAny(title, c.cfg.AnnouncementKeywords) {
		return domain.ContentOfficial
	}

	switch item.Kind {
	case domain.SourceNews:
		if containsAny(source, c.cfg.MajorOutlets) {
			return domain.ContentMajorNews
		}
	case domain.SourceVideo:
		if containsAny(source, c.cfg.TrustedChannels) {
			return domain.ContentMajorNews
		}
		return domain.ContentCommunity
	case domain.SourceForum:
		if item.Engagement > c.cfg.CommunityThreshold {
			return domain.ContentCommunity
		}
		return domain.ContentDiscussion
	}

	return domain.ContentDiscussion
}

// containsAny reports whether text contains any of the needles, ignoring case
func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
