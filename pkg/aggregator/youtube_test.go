package aggregator

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/gamedigest/pkg/domain"
)

// youtubeStub serves canned search and videos responses keyed by video id
func youtubeStub(t *testing.T, ids []string, videosJSON string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			assert.Equal(t, "video", r.URL.Query().Get("type"))
			assert.Equal(t, "test-key", r.URL.Query().Get("key"))
			assert.NotEmpty(t, r.URL.Query().Get("publishedAfter"))
			fmt.Fprint(w, `{"items":[`)
			for i, id := range ids {
				if i > 0 {
					fmt.Fprint(w, ",")
				}
				fmt.Fprintf(w, `{"id":{"videoId":"%s"}}`, id)
			}
			fmt.Fprint(w, `]}`)
		case "/videos":
			fmt.Fprint(w, videosJSON)
		default:
			t.Errorf("unexpected request path %s", r.URL.Path)
		}
	}))
}

func TestYouTube_Aggregate(t *testing.T) {
	t.Run("search and details combined", func(t *testing.T) {
		published := time.Now().UTC().Add(-3 * time.Hour).Format(time.RFC3339)
		server := youtubeStub(t, []string{"vid1"}, fmt.Sprintf(`{"items":[{
			"id":"vid1",
			"snippet":{
				"title":"Battlefield 6 review",
				"description":"full review of the game",
				"channelTitle":"IGN",
				"publishedAt":"%s",
				"thumbnails":{"default":{"url":"https://i.ytimg.com/default.jpg"},"high":{"url":"https://i.ytimg.com/high.jpg"}}
			},
			"statistics":{"viewCount":"54321"}
		}]}`, published))
		defer server.Close()

		yt := NewYouTube(YouTubeConfig{APIKey: "test-key", BaseURL: server.URL})
		items := yt.Aggregate(context.Background(), []string{"battlefield 6"})

		require.Len(t, items, 1)
		assert.Equal(t, "Battlefield 6 review", items[0].Title)
		assert.Equal(t, "https://www.youtube.com/watch?v=vid1", items[0].URL)
		assert.Equal(t, int64(54321), items[0].Engagement)
		assert.Equal(t, "IGN", items[0].Source)
		assert.Equal(t, domain.SourceVideo, items[0].Kind)
		assert.Equal(t, "https://i.ytimg.com/high.jpg", items[0].Thumbnail, "prefers high resolution")
	})

	t.Run("no api key disables source", func(t *testing.T) {
		yt := NewYouTube(YouTubeConfig{})
		assert.Nil(t, yt.Aggregate(context.Background(), []string{"anything"}))
	})

	t.Run("duplicate videos across keywords merged", func(t *testing.T) {
		published := time.Now().UTC().Format(time.RFC3339)
		server := youtubeStub(t, []string{"vid1"}, fmt.Sprintf(`{"items":[{
			"id":"vid1",
			"snippet":{"title":"Shared video","channelTitle":"GameSpot","publishedAt":"%s"},
			"statistics":{"viewCount":"100"}
		}]}`, published))
		defer server.Close()

		yt := NewYouTube(YouTubeConfig{APIKey: "test-key", BaseURL: server.URL})
		items := yt.Aggregate(context.Background(), []string{"keyword one", "keyword two"})
		assert.Len(t, items, 1, "same video found twice kept once")
	})

	t.Run("old videos filtered out", func(t *testing.T) {
		published := time.Now().UTC().Add(-30 * 24 * time.Hour).Format(time.RFC3339)
		server := youtubeStub(t, []string{"vid1"}, fmt.Sprintf(`{"items":[{
			"id":"vid1",
			"snippet":{"title":"Old video","channelTitle":"c","publishedAt":"%s"},
			"statistics":{"viewCount":"100"}
		}]}`, published))
		defer server.Close()

		yt := NewYouTube(YouTubeConfig{APIKey: "test-key", BaseURL: server.URL})
		assert.Empty(t, yt.Aggregate(context.Background(), []string{"old"}))
	})

	t.Run("missing view count means zero engagement", func(t *testing.T) {
		published := time.Now().UTC().Format(time.RFC3339)
		server := youtubeStub(t, []string{"vid1"}, fmt.Sprintf(`{"items":[{
			"id":"vid1",
			"snippet":{"title":"No stats","channelTitle":"c","publishedAt":"%s"},
			"statistics":{}
		}]}`, published))
		defer server.Close()

		yt := NewYouTube(YouTubeConfig{APIKey: "test-key", BaseURL: server.URL})
		items := yt.Aggregate(context.Background(), []string{"stats"})
		require.Len(t, items, 1)
		assert.Equal(t, int64(0), items[0].Engagement)
	})

	t.Run("empty search results skip details call", func(t *testing.T) {
		server := youtubeStub(t, nil, `{"items":[]}`)
		defer server.Close()

		yt := NewYouTube(YouTubeConfig{APIKey: "test-key", BaseURL: server.URL})
		assert.Empty(t, yt.Aggregate(context.Background(), []string{"nothing"}))
	})

	t.Run("api failure skips keyword", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden) // quota exceeded
		}))
		defer server.Close()

		yt := NewYouTube(YouTubeConfig{APIKey: "test-key", BaseURL: server.URL})
		assert.Empty(t, yt.Aggregate(context.Background(), []string{"quota"}))
	})
}

func TestPickThumbnail(t *testing.T) {
	assert.Equal(t, "high.jpg", pickThumbnail(map[string]thumbnail{
		"default": {URL: "default.jpg"}, "medium": {URL: "medium.jpg"}, "high": {URL: "high.jpg"},
	}))
	assert.Equal(t, "medium.jpg", pickThumbnail(map[string]thumbnail{
		"default": {URL: "default.jpg"}, "medium": {URL: "medium.jpg"},
	}))
	assert.Equal(t, "default.jpg", pickThumbnail(map[string]thumbnail{"default": {URL: "default.jpg"}}))
	assert.Empty(t, pickThumbnail(nil))
}
