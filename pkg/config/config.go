// Package config loads and validates the YAML configuration. Environment
// variables referenced as ${VAR} in the file are expanded before parsing,
// which keeps secrets like the webhook URL out of the config itself.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=status server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=status server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Status server configuration"`

	Webhook struct {
		URL          string        `yaml:"url" json:"url" jsonschema:"required,description=Discord-compatible webhook URL"`
		Timeout      time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=webhook request timeout"`
		Retries      int           `yaml:"retries" json:"retries" jsonschema:"default=3,description=delivery attempts per message"`
		MessageDelay time.Duration `yaml:"message_delay" json:"message_delay" jsonschema:"default=1s,description=pause between messages to respect rate limits"`
	} `yaml:"webhook" json:"webhook" jsonschema:"description=Digest delivery configuration"`

	Schedule struct {
		Interval time.Duration `yaml:"interval" json:"interval" jsonschema:"default=24h,description=time between digest runs"`
	} `yaml:"schedule" json:"schedule" jsonschema:"description=Scheduler configuration"`

	Games []Game `yaml:"games" json:"games" jsonschema:"description=Tracked games"`

	Feeds map[string]string `yaml:"feeds" json:"feeds" jsonschema:"description=News RSS feeds as name to URL"`

	Trending Trending `yaml:"trending" json:"trending" jsonschema:"description=General trending news section"`

	Ranking Ranking `yaml:"ranking" json:"ranking" jsonschema:"description=Classification and scoring settings"`

	Fetch Fetch `yaml:"fetch" json:"fetch" jsonschema:"description=Source fetching settings"`
}

// Game describes one tracked game
type Game struct {
	Name            string   `yaml:"name" json:"name" jsonschema:"required,description=display name used in the digest"`
	Keywords        []string `yaml:"keywords" json:"keywords" jsonschema:"description=search and filter keywords"`
	Subreddits      []string `yaml:"subreddits" json:"subreddits" jsonschema:"description=subreddits to pull posts from"`
	OfficialSources []string `yaml:"official_sources" json:"official_sources" jsonschema:"description=names marking content as official"`
}

// Trending configures the general gaming news section appended after the games
type Trending struct {
	Name     string   `yaml:"name" json:"name" jsonschema:"default=Top Gaming News,description=section display name"`
	Keywords []string `yaml:"keywords" json:"keywords" jsonschema:"description=keywords to filter trending items; empty accepts everything"`
	Count    int      `yaml:"count" json:"count" jsonschema:"default=3,description=number of trending items"`
	Disabled bool     `yaml:"disabled" json:"disabled" jsonschema:"default=false,description=skip the trending section"`
}

// QuotaRange is an inclusive per-kind selection target range
type QuotaRange struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

// Ranking holds the editorial priority model settings
type Ranking struct {
	Weights              map[string]float64    `yaml:"weights" json:"weights" jsonschema:"description=base score per tier (official/major_news/community/discussion)"`
	PreferredAgeHours    int                   `yaml:"preferred_age_hours" json:"preferred_age_hours" jsonschema:"default=24,description=age for the full recency boost"`
	FallbackAgeHours     int                   `yaml:"fallback_age_hours" json:"fallback_age_hours" jsonschema:"default=72,description=age for the reduced recency boost"`
	SimilarityThreshold  float64               `yaml:"similarity_threshold" json:"similarity_threshold" jsonschema:"default=0.85,minimum=0,maximum=1,description=title similarity treated as duplicate"`
	ItemsPerSection      int                   `yaml:"items_per_section" json:"items_per_section" jsonschema:"default=5,description=items selected per game section"`
	CommunityThreshold   int64                 `yaml:"community_threshold" json:"community_threshold" jsonschema:"default=500,description=forum engagement above this counts as community"`
	AnnouncementKeywords []string              `yaml:"announcement_keywords" json:"announcement_keywords" jsonschema:"description=title keywords promoting an item to official"`
	MajorOutlets         []string              `yaml:"major_outlets" json:"major_outlets" jsonschema:"description=recognized major news outlets"`
	TrustedChannels      []string              `yaml:"trusted_channels" json:"trusted_channels" jsonschema:"description=video channels treated as major news"`
	Quotas               map[string]QuotaRange `yaml:"quotas" json:"quotas" jsonschema:"description=per source kind selection ranges; empty means equal split"`
}

// Fetch holds source-fetching settings shared by the aggregators
type Fetch struct {
	Timeout           time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=per request timeout"`
	RequestDelay      time.Duration `yaml:"request_delay" json:"request_delay" jsonschema:"default=2s,description=pause between requests to one origin"`
	MaxAgeDays        int           `yaml:"max_age_days" json:"max_age_days" jsonschema:"default=7,description=drop content older than this"`
	UserAgent         string        `yaml:"user_agent" json:"user_agent" jsonschema:"description=user agent for forum requests"`
	RedditLimit       int           `yaml:"reddit_limit" json:"reddit_limit" jsonschema:"default=25,description=posts per subreddit"`
	YouTubeAPIKey     string        `yaml:"youtube_api_key" json:"youtube_api_key" jsonschema:"description=YouTube Data API key; empty disables the video source"`
	YouTubeMaxResults int           `yaml:"youtube_max_results" json:"youtube_max_results" jsonschema:"default=5,description=videos per search keyword"`
	YouTubeSearchDays int           `yaml:"youtube_search_days" json:"youtube_search_days" jsonschema:"default=7,description=search window in days"`
}

// defaultUserAgent mimics a browser, reddit throttles unknown agents hard
const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.setDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}

	if c.Webhook.Timeout == 0 {
		c.Webhook.Timeout = 30 * time.Second
	}
	if c.Webhook.Retries == 0 {
		c.Webhook.Retries = 3
	}
	if c.Webhook.MessageDelay == 0 {
		c.Webhook.MessageDelay = time.Second
	}

	if c.Schedule.Interval == 0 {
		c.Schedule.Interval = 24 * time.Hour
	}

	if c.Trending.Name == "" {
		c.Trending.Name = "Top Gaming News"
	}
	if c.Trending.Count == 0 {
		c.Trending.Count = 3
	}

	if c.Ranking.PreferredAgeHours == 0 {
		c.Ranking.PreferredAgeHours = 24
	}
	if c.Ranking.FallbackAgeHours == 0 {
		c.Ranking.FallbackAgeHours = 72
	}
	if c.Ranking.SimilarityThreshold == 0 {
		c.Ranking.SimilarityThreshold = 0.85
	}
	if c.Ranking.ItemsPerSection == 0 {
		c.Ranking.ItemsPerSection = 5
	}
	if c.Ranking.CommunityThreshold == 0 {
		c.Ranking.CommunityThreshold = 500
	}

	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = 30 * time.Second
	}
	if c.Fetch.RequestDelay == 0 {
		c.Fetch.RequestDelay = 2 * time.Second
	}
	if c.Fetch.MaxAgeDays == 0 {
		c.Fetch.MaxAgeDays = 7
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = defaultUserAgent
	}
	if c.Fetch.RedditLimit == 0 {
		c.Fetch.RedditLimit = 25
	}
	if c.Fetch.YouTubeMaxResults == 0 {
		c.Fetch.YouTubeMaxResults = 5
	}
	if c.Fetch.YouTubeSearchDays == 0 {
		c.Fetch.YouTubeSearchDays = 7
	}
}

func (c *Config) validate() error {
	if c.Webhook.URL == "" {
		return fmt.Errorf("webhook url is required")
	}
	if len(c.Games) == 0 && len(c.Feeds) == 0 {
		return fmt.Errorf("at least one game or news feed must be configured")
	}
	for i, g := range c.Games {
		if g.Name == "" {
			return fmt.Errorf("game %d has no name", i)
		}
	}
	if c.Ranking.SimilarityThreshold < 0 || c.Ranking.SimilarityThreshold > 1 {
		return fmt.Errorf("similarity threshold must be in [0, 1], got %v", c.Ranking.SimilarityThreshold)
	}
	return nil
}

// GetServerConfig returns the status server listen address and timeout
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}
