package aggregator

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-pkgz/lgr"
	"github.com/mmcdole/gofeed"

	"github.com/umputun/gamedigest/pkg/domain"
)

// NewsConfig holds settings for the RSS news aggregator
type NewsConfig struct {
	Feeds   map[string]string // feed name -> URL
	MaxAge  time.Duration     // drop articles older than this
	Timeout time.Duration     // per feed fetch timeout
}

// News aggregates articles from gaming news sites via RSS feeds
type News struct {
	cfg    NewsConfig
	parser *gofeed.Parser
}

// NewNews creates a news aggregator for the configured feeds
func NewNews(cfg NewsConfig) *News {
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 7 * 24 * time.Hour
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &News{cfg: cfg, parser: gofeed.NewParser()}
}

// Aggregate fetches all configured feeds and returns articles matching the
// keywords. Feeds are fetched sequentially in name order; a failing feed is
// logged and skipped.
func (n *News) Aggregate(ctx context.Context, keywords []string) []domain.Item {
	names := make([]string, 0, len(n.cfg.Feeds))
	for name := range n.cfg.Feeds {
		names = append(names, name)
	}
	sort.Strings(names)

	var all []domain.Item
	for _, name := range names {
		articles := n.fetchFeed(ctx, name, n.cfg.Feeds[name], keywords)
		all = append(all, articles...)
	}
	lgr.Printf("[INFO] news: aggregated %d articles from %d feeds", len(all), len(names))
	return all
}

// fetchFeed retrieves one RSS feed and filters its entries by age and keywords
func (n *News) fetchFeed(ctx context.Context, name, feedURL string, keywords []string) []domain.Item {
	fetchCtx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	feed, err := n.parser.ParseURLWithContext(feedURL, fetchCtx)
	if err != nil {
		lgr.Printf("[WARN] news: failed to fetch feed %s: %v", name, err)
		return nil
	}

	cutoff := time.Now().Add(-n.cfg.MaxAge)
	var articles []domain.Item
	for _, entry := range feed.Items {
		published := entryTime(entry)
		if published.Before(cutoff) {
			continue
		}
		if !matchesKeywords(entry.Title+" "+entry.Description, keywords) {
			continue
		}

		articles = append(articles, domain.Item{
			Title:       entry.Title,
			URL:         entry.Link,
			Engagement:  0, // rss carries no engagement signal
			Published:   published,
			Source:      strings.ToUpper(name),
			Kind:        domain.SourceNews,
			Description: cleanDescription(entry.Description),
			Thumbnail:   entryThumbnail(entry),
			Author:      entryAuthor(entry, name),
		})
	}

	lgr.Printf("[DEBUG] news: %d relevant articles from %s", len(articles), name)
	return articles
}

// entryTime resolves the publish time of a feed entry: parsed publish or
// update time, a dateparse attempt on the raw strings, or now as last resort
func entryTime(entry *gofeed.Item) time.Time {
	if entry.PublishedParsed != nil {
		return *entry.PublishedParsed
	}
	if entry.UpdatedParsed != nil {
		return *entry.UpdatedParsed
	}
	for _, raw := range []string{entry.Published, entry.Updated} {
		if raw == "" {
			continue
		}
		if ts, err := dateparse.ParseAny(raw); err == nil {
			return ts
		}
	}
	return time.Now()
}

// entryThumbnail extracts a media thumbnail from RSS media extensions
func entryThumbnail(entry *gofeed.Item) string {
	if entry.Image != nil && entry.Image.URL != "" {
		return entry.Image.URL
	}
	media, ok := entry.Extensions["media"]
	if !ok {
		return ""
	}
	for _, key := range []string{"thumbnail", "content"} {
		for _, ext := range media[key] {
			if url := ext.Attrs["url"]; url != "" {
				return url
			}
		}
	}
	return ""
}

func entryAuthor(entry *gofeed.Item, feedName string) string {
	if entry.Author != nil && entry.Author.Name != "" {
		return entry.Author.Name
	}
	return feedName
}
