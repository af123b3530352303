package aggregator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/gamedigest/pkg/domain"
)

// YouTubeConfig holds settings for the video aggregator
type YouTubeConfig struct {
	APIKey       string        // Data API v3 key, empty disables the source
	BaseURL      string        // API base, defaults to https://www.googleapis.com/youtube/v3
	MaxResults   int           // videos per search keyword
	SearchWindow time.Duration // publishedAfter window for searches
	MaxAge       time.Duration // drop videos older than this
	Timeout      time.Duration // per request timeout
}

// YouTube aggregates videos through the Data API v3: a search request per
// keyword followed by a statistics lookup for view counts
type YouTube struct {
	cfg    YouTubeConfig
	client *http.Client
}

// NewYouTube creates a video aggregator
func NewYouTube(cfg YouTubeConfig) *YouTube {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://www.googleapis.com/youtube/v3"
	}
	if cfg.MaxResults == 0 {
		cfg.MaxResults = 5
	}
	if cfg.SearchWindow == 0 {
		cfg.SearchWindow = 7 * 24 * time.Hour
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 7 * 24 * time.Hour
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &YouTube{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

// Aggregate searches for videos matching each keyword and merges the results,
// dropping videos already seen under another keyword
func (y *YouTube) Aggregate(ctx context.Context, keywords []string) []domain.Item {
	if y.cfg.APIKey == "" {
		lgr.Printf("[WARN] youtube: no api key configured, skipping video source")
		return nil
	}

	seen := make(map[string]struct{})
	var all []domain.Item
	for _, keyword := range keywords {
		videos, err := y.search(ctx, keyword)
		if err != nil {
			lgr.Printf("[WARN] youtube: search failed for %q: %v", keyword, err)
			continue
		}
		for _, v := range videos {
			if _, ok := seen[v.URL]; ok {
				continue
			}
			seen[v.URL] = struct{}{}
			all = append(all, v)
		}
	}
	lgr.Printf("[INFO] youtube: aggregated %d unique videos", len(all))
	return all
}

type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
	} `json:"items"`
}

type thumbnail struct {
	URL string `json:"url"`
}

type videosResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title        string               `json:"title"`
			Description  string               `json:"description"`
			ChannelTitle string               `json:"channelTitle"`
			PublishedAt  string               `json:"publishedAt"`
			Thumbnails   map[string]thumbnail `json:"thumbnails"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount string `json:"viewCount"`
		} `json:"statistics"`
	} `json:"items"`
}

// search finds recent videos for one keyword and resolves their statistics
func (y *YouTube) search(ctx context.Context, keyword string) ([]domain.Item, error) {
	publishedAfter := time.Now().Add(-y.cfg.SearchWindow).UTC().Format(time.RFC3339)

	params := url.Values{}
	params.Set("part", "id,snippet")
	params.Set("q", keyword)
	params.Set("type", "video")
	params.Set("order", "relevance")
	params.Set("maxResults", strconv.Itoa(y.cfg.MaxResults))
	params.Set("publishedAfter", publishedAfter)
	params.Set("relevanceLanguage", "en")
	params.Set("safeSearch", "moderate")
	params.Set("key", y.cfg.APIKey)

	var search searchResponse
	if err := y.getJSON(ctx, y.cfg.BaseURL+"/search?"+params.Encode(), &search); err != nil {
		return nil, fmt.Errorf("search videos: %w", err)
	}

	ids := make([]string, 0, len(search.Items))
	for _, item := range search.Items {
		if item.ID.VideoID != "" {
			ids = append(ids, item.ID.VideoID)
		}
	}
	if len(ids) == 0 {
		return nil, nil
	}

	return y.videoDetails(ctx, ids)
}

// videoDetails fetches snippets and view counts for the given video ids
func (y *YouTube) videoDetails(ctx context.Context, ids []string) ([]domain.Item, error) {
	params := url.Values{}
	params.Set("part", "snippet,statistics")
	params.Set("id", strings.Join(ids, ","))
	params.Set("key", y.cfg.APIKey)

	var details videosResponse
	if err := y.getJSON(ctx, y.cfg.BaseURL+"/videos?"+params.Encode(), &details); err != nil {
		return nil, fmt.Errorf("video statistics: %w", err)
	}

	cutoff := time.Now().Add(-y.cfg.MaxAge)
	videos := make([]domain.Item, 0, len(details.Items))
	for _, item := range details.Items {
		published, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
		if err != nil {
			lgr.Printf("[DEBUG] youtube: bad publish time %q for video %s", item.Snippet.PublishedAt, item.ID)
			published = time.Now()
		}
		if published.Before(cutoff) {
			continue
		}

		views, _ := strconv.ParseInt(item.Statistics.ViewCount, 10, 64) // missing stats mean zero views

		videos = append(videos, domain.Item{
			Title:       item.Snippet.Title,
			URL:         "https://www.youtube.com/watch?v=" + item.ID,
			Engagement:  views,
			Published:   published,
			Source:      item.Snippet.ChannelTitle,
			Kind:        domain.SourceVideo,
			Description: truncateText(item.Snippet.Description, maxDescriptionLen),
			Thumbnail:   pickThumbnail(item.Snippet.Thumbnails),
			Author:      item.Snippet.ChannelTitle,
		})
	}
	return videos, nil
}

func (y *YouTube) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := y.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// pickThumbnail prefers the highest useful resolution
func pickThumbnail(thumbnails map[string]thumbnail) string {
	for _, quality := range []string{"high", "medium", "default"} {
		if t, ok := thumbnails[quality]; ok && t.URL != "" {
			return t.URL
		}
	}
	return ""
}
