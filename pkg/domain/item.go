package domain

import "time"

// SourceKind identifies the class of origin that produced an item
type SourceKind string

// known source kinds, set by aggregators and never changed downstream
const (
	SourceForum SourceKind = "forum"
	SourceVideo SourceKind = "video"
	SourceNews  SourceKind = "news"
)

// ContentType is the editorial priority tier assigned by classification
type ContentType string

// priority tiers, highest to lowest
const (
	ContentOfficial   ContentType = "official"
	ContentMajorNews  ContentType = "major_news"
	ContentCommunity  ContentType = "community"
	ContentDiscussion ContentType = "discussion"
)

// Item is the canonical content record every aggregator emits.
// Engagement semantics differ by kind: upvotes for forum posts, view counts
// for videos, zero for news articles which carry no engagement signal.
type Item struct {
	Title       string
	URL         string
	Engagement  int64
	Published   time.Time
	Source      string // display name of the originating subreddit/channel/outlet
	Kind        SourceKind
	Description string
	Thumbnail   string
	Author      string
}

// Ranked annotates an item with its classification and rank score.
// Ranking produces new Ranked values instead of mutating items, so the same
// item slice can be safely reranked with different settings.
type Ranked struct {
	Item
	ContentType ContentType
	Score       float64
}

// Section is a named group of ranked items ready for delivery
type Section struct {
	Name  string
	Items []Ranked
}
