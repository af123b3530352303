// Package notify delivers the assembled digest to a Discord-compatible
// webhook: one message per section, chunked to the platform's message size
// limit, with backoff retries on transport failures.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"

	"github.com/umputun/gamedigest/pkg/domain"
)

// maxMessageLen is Discord's content limit per webhook message
const maxMessageLen = 2000

// DiscordConfig holds webhook delivery settings
type DiscordConfig struct {
	WebhookURL   string
	Timeout      time.Duration // per request timeout
	Retries      int           // attempts per message
	MessageDelay time.Duration // pause between messages to respect rate limits
}

// Discord sends formatted digests through a webhook
type Discord struct {
	cfg    DiscordConfig
	client *http.Client
}

// NewDiscord creates a webhook sender
func NewDiscord(cfg DiscordConfig) *Discord {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.Retries == 0 {
		cfg.Retries = 3
	}
	if cfg.MessageDelay == 0 {
		cfg.MessageDelay = time.Second
	}
	return &Discord{cfg: cfg, client: &http.Client{Timeout: cfg.Timeout}}
}

// SendDigest delivers one message per section. A failed section is logged and
// does not block the remaining sections; the first failure is reported after
// all sections were attempted.
func (d *Discord) SendDigest(ctx context.Context, sections []domain.Section) error {
	var firstErr error
	for i, section := range sections {
		if i > 0 {
			d.pause(ctx)
		}
		if err := d.sendText(ctx, FormatSection(section)); err != nil {
			lgr.Printf("[ERROR] notify: failed to send section %q: %v", section.Name, err)
			if firstErr == nil {
				firstErr = fmt.Errorf("send section %q: %w", section.Name, err)
			}
			continue
		}
		lgr.Printf("[INFO] notify: sent section %q with %d items", section.Name, len(section.Items))
	}
	return firstErr
}

// SendError posts an error notification embed, best effort
func (d *Discord) SendError(ctx context.Context, message string) error {
	payload := map[string]any{
		"embeds": []map[string]any{{
			"title":       "Gaming digest error",
			"description": "The digest run failed:\n\n" + truncate(message, 1500),
			"color":       15158332, // red
			"timestamp":   time.Now().UTC().Format(time.RFC3339),
		}},
	}
	return d.post(ctx, payload)
}

// FormatSection renders a section as a numbered list. URLs are wrapped in
// angle brackets so the chat client does not unfurl every link.
func FormatSection(section domain.Section) string {
	if len(section.Items) == 0 {
		return fmt.Sprintf("%s\n\nNo new content found today. Check back tomorrow!", section.Name)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s - Top %d\n\n", section.Name, len(section.Items))
	for i, item := range section.Items {
		source := item.Source
		if source == "" {
			source = "Unknown"
		}
		fmt.Fprintf(&b, "%d. [%s] %s - <%s>\n", i+1, source, strings.TrimSpace(item.Title), item.URL)
	}
	return b.String()
}

// sendText posts a text message, splitting it into chunks under the size limit
func (d *Discord) sendText(ctx context.Context, content string) error {
	for _, chunk := range splitMessage(content, maxMessageLen) {
		if err := d.post(ctx, map[string]any{"content": chunk}); err != nil {
			return err
		}
	}
	return nil
}

// post delivers one payload with backoff retries
func (d *Discord) post(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	retrier := repeater.NewBackoff(d.cfg.Retries, 500*time.Millisecond, repeater.WithMaxDelay(5*time.Second))
	return retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.cfg.WebhookURL, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := d.client.Do(req)
		if err != nil {
			return fmt.Errorf("post webhook: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusBadRequest {
			return fmt.Errorf("webhook returned %s", resp.Status)
		}
		return nil
	})
}

func (d *Discord) pause(ctx context.Context) {
	select {
	case <-ctx.Done():
	case <-time.After(d.cfg.MessageDelay):
	}
}

// splitMessage breaks content into chunks at line boundaries. A single line
// longer than the limit is hard-cut.
func splitMessage(content string, limit int) []string {
	if len(content) <= limit {
		return []string{content}
	}

	var chunks []string
	var current strings.Builder
	for _, line := range strings.Split(content, "\n") {
		for len(line) > limit {
			chunks = appendChunk(chunks, current.String())
			current.Reset()
			chunks = append(chunks, line[:limit])
			line = line[limit:]
		}
		if current.Len()+len(line)+1 > limit {
			chunks = appendChunk(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(line)
	}
	return appendChunk(chunks, current.String())
}

func appendChunk(chunks []string, chunk string) []string {
	if strings.TrimSpace(chunk) == "" {
		return chunks
	}
	return append(chunks, chunk)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
