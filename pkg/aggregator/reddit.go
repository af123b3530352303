package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/mmcdole/gofeed"

	"github.com/umputun/gamedigest/pkg/domain"
)

// RedditConfig holds settings for the subreddit aggregator
type RedditConfig struct {
	BaseURL      string        // listing endpoint base, defaults to https://www.reddit.com
	UserAgent    string        // reddit throttles unknown agents hard
	Limit        int           // posts per subreddit
	Timeout      time.Duration // per request timeout
	RequestDelay time.Duration // pause between subreddit requests
	MaxAge       time.Duration // drop posts older than this
}

// Reddit aggregates posts from subreddits. The JSON listing endpoint is the
// primary source because it carries post scores; the RSS feed is a fallback
// that contributes posts with zero engagement.
type Reddit struct {
	cfg    RedditConfig
	client *http.Client
	parser *gofeed.Parser
}

// NewReddit creates a subreddit aggregator
func NewReddit(cfg RedditConfig) *Reddit {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.reddit.com"
	}
	if cfg.Limit == 0 {
		cfg.Limit = 25
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 7 * 24 * time.Hour
	}
	return &Reddit{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		parser: gofeed.NewParser(),
	}
}

// Aggregate fetches recent posts from all subreddits sequentially, pausing
// between requests to stay under reddit's rate limits
func (r *Reddit) Aggregate(ctx context.Context, subreddits []string) []domain.Item {
	var all []domain.Item
	for i, sub := range subreddits {
		if i > 0 {
			sleep(ctx, r.cfg.RequestDelay)
		}
		if ctx.Err() != nil {
			break
		}
		all = append(all, r.subreddit(ctx, sub)...)
	}
	lgr.Printf("[INFO] reddit: aggregated %d posts from %d subreddits", len(all), len(subreddits))
	return all
}

// subreddit fetches one subreddit, preferring the JSON listing
func (r *Reddit) subreddit(ctx context.Context, sub string) []domain.Item {
	posts, err := r.fetchListing(ctx, sub)
	if err != nil {
		lgr.Printf("[WARN] reddit: listing failed for r/%s, trying rss: %v", sub, err)
		posts = r.fetchRSS(ctx, sub)
	}

	cutoff := time.Now().Add(-r.cfg.MaxAge)
	recent := make([]domain.Item, 0, len(posts))
	for _, p := range posts {
		if p.Published.Before(cutoff) {
			continue
		}
		recent = append(recent, p)
	}
	lgr.Printf("[DEBUG] reddit: %d recent posts from r/%s", len(recent), sub)
	return recent
}

// redditListing is the subset of the listing response the digest needs
type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title      string  `json:"title"`
				Permalink  string  `json:"permalink"`
				Score      int64   `json:"score"`
				CreatedUTC float64 `json:"created_utc"`
				Author     string  `json:"author"`
				Selftext   string  `json:"selftext"`
				Stickied   bool    `json:"stickied"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// fetchListing pulls the hot listing as JSON, which includes post scores
func (r *Reddit) fetchListing(ctx context.Context, sub string) ([]domain.Item, error) {
	url := fmt.Sprintf("%s/r/%s/hot.json?limit=%d&raw_json=1", r.cfg.BaseURL, sub, r.cfg.Limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.cfg.UserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch listing: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}

	posts := make([]domain.Item, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		p := child.Data
		if p.Stickied { // pinned mod posts are rarely news
			continue
		}
		description := cleanDescription(p.Selftext)
		if description == "" {
			description = p.Title
		}
		posts = append(posts, domain.Item{
			Title:       p.Title,
			URL:         "https://www.reddit.com" + p.Permalink,
			Engagement:  p.Score,
			Published:   time.Unix(int64(p.CreatedUTC), 0).UTC(),
			Source:      "r/" + sub,
			Kind:        domain.SourceForum,
			Description: description,
			Author:      p.Author,
		})
	}
	return posts, nil
}

// fetchRSS is the degraded path: no scores, but titles and links still flow
func (r *Reddit) fetchRSS(ctx context.Context, sub string) []domain.Item {
	url := fmt.Sprintf("%s/r/%s/.rss?limit=%d", r.cfg.BaseURL, sub, r.cfg.Limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		lgr.Printf("[WARN] reddit: create rss request for r/%s: %v", sub, err)
		return nil
	}
	req.Header.Set("User-Agent", r.cfg.UserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		lgr.Printf("[WARN] reddit: rss fetch failed for r/%s: %v", sub, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		lgr.Printf("[WARN] reddit: rss fetch for r/%s returned %s", sub, resp.Status)
		return nil
	}

	feed, err := r.parser.Parse(resp.Body)
	if err != nil {
		lgr.Printf("[WARN] reddit: rss parse failed for r/%s: %v", sub, err)
		return nil
	}

	posts := make([]domain.Item, 0, len(feed.Items))
	for _, entry := range feed.Items {
		posts = append(posts, domain.Item{
			Title:       entry.Title,
			URL:         entry.Link,
			Engagement:  0, // rss does not expose scores
			Published:   entryTime(entry),
			Source:      "r/" + sub,
			Kind:        domain.SourceForum,
			Description: cleanDescription(entry.Description),
			Author:      entryAuthor(entry, "unknown"),
		})
	}
	return posts
}
