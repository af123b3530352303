// Package aggregator implements the three content sources feeding the digest
// pipeline: subreddit listings, YouTube search, and news RSS feeds. All
// aggregators are best-effort: transport and parse failures are logged and
// degrade to an empty result, a failed source simply contributes nothing.
package aggregator

import (
	"context"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

// maxDescriptionLen bounds item descriptions in the digest payload
const maxDescriptionLen = 300

var stripPolicy = bluemonday.StrictPolicy()

// cleanDescription strips HTML from feed content and bounds its length
func cleanDescription(s string) string {
	text := html.UnescapeString(stripPolicy.Sanitize(s))
	text = strings.Join(strings.Fields(text), " ")
	return truncateText(text, maxDescriptionLen)
}

func truncateText(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// matchesKeywords reports whether text contains any keyword, ignoring case.
// An empty keyword list accepts everything.
func matchesKeywords(text string, keywords []string) bool {
	if len(keywords) == 0 {
		return true
	}
	text = strings.ToLower(text)
	for _, k := range keywords {
		if k == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(k)) {
			return true
		}
	}
	return false
}

// sleep waits for the duration unless the context is cancelled first
func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}
