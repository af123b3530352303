package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"

	"github.com/umputun/gamedigest/pkg/aggregator"
	"github.com/umputun/gamedigest/pkg/config"
	"github.com/umputun/gamedigest/pkg/digest"
	"github.com/umputun/gamedigest/pkg/domain"
	"github.com/umputun/gamedigest/pkg/notify"
	"github.com/umputun/gamedigest/pkg/scheduler"
	"github.com/umputun/gamedigest/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"c" long:"config" env:"CONFIG" default:"config.yml" description:"config file path"`
	Once   bool   `long:"once" description:"run a single digest and exit"`

	// Common options
	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	setupLog(opts.Debug)

	cfg, err := config.Load(opts.Config)
	if err != nil {
		log.Printf("[ERROR] can't load config: %v", err)
		os.Exit(1)
	}

	// redo log setup with secrets masked
	setupLog(opts.Debug, cfg.Webhook.URL, cfg.Fetch.YouTubeAPIKey)

	log.Printf("[INFO] starting gamedigest version %s", revision)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	sched := makeScheduler(cfg)

	if opts.Once {
		if err := sched.RunOnce(ctx); err != nil {
			log.Printf("[ERROR] digest run failed: %v", err)
			cancel()
			os.Exit(1)
		}
		cancel()
		log.Print("[INFO] digest sent")
		return
	}

	sched.Start(ctx)

	srv := server.New(cfg, sched, revision, opts.Debug)
	err = srv.Run(ctx)
	cancel()
	sched.Stop()

	if err != nil {
		log.Printf("[ERROR] server failed: %v", err)
		os.Exit(1)
	}

	log.Print("[INFO] shutdown complete")
}

// makeScheduler builds the full pipeline from config: aggregators, ranking
// core, notifier, and the run loop tying them together
func makeScheduler(cfg *config.Config) *scheduler.Scheduler {
	maxAge := time.Duration(cfg.Fetch.MaxAgeDays) * 24 * time.Hour

	forum := aggregator.NewReddit(aggregator.RedditConfig{
		UserAgent:    cfg.Fetch.UserAgent,
		Limit:        cfg.Fetch.RedditLimit,
		Timeout:      cfg.Fetch.Timeout,
		RequestDelay: cfg.Fetch.RequestDelay,
		MaxAge:       maxAge,
	})

	video := aggregator.NewYouTube(aggregator.YouTubeConfig{
		APIKey:       cfg.Fetch.YouTubeAPIKey,
		MaxResults:   cfg.Fetch.YouTubeMaxResults,
		SearchWindow: time.Duration(cfg.Fetch.YouTubeSearchDays) * 24 * time.Hour,
		MaxAge:       maxAge,
		Timeout:      cfg.Fetch.Timeout,
	})

	news := aggregator.NewNews(aggregator.NewsConfig{
		Feeds:   cfg.Feeds,
		MaxAge:  maxAge,
		Timeout: cfg.Fetch.Timeout,
	})

	classifier := digest.NewClassifier(digest.ClassifierConfig{
		AnnouncementKeywords: cfg.Ranking.AnnouncementKeywords,
		MajorOutlets:         cfg.Ranking.MajorOutlets,
		TrustedChannels:      cfg.Ranking.TrustedChannels,
		CommunityThreshold:   cfg.Ranking.CommunityThreshold,
	})

	scorer := digest.NewScorer(digest.ScorerConfig{
		Weights:      tierWeights(cfg.Ranking.Weights),
		PreferredAge: time.Duration(cfg.Ranking.PreferredAgeHours) * time.Hour,
		FallbackAge:  time.Duration(cfg.Ranking.FallbackAgeHours) * time.Hour,
	})

	selector := digest.NewSelector(digest.SelectorConfig{Quotas: quotaTable(cfg.Ranking.Quotas)})

	notifier := notify.NewDiscord(notify.DiscordConfig{
		WebhookURL:   cfg.Webhook.URL,
		Timeout:      cfg.Webhook.Timeout,
		Retries:      cfg.Webhook.Retries,
		MessageDelay: cfg.Webhook.MessageDelay,
	})

	games := make([]scheduler.Game, 0, len(cfg.Games))
	for _, g := range cfg.Games {
		games = append(games, scheduler.Game{
			Name:            g.Name,
			Keywords:        g.Keywords,
			Subreddits:      g.Subreddits,
			OfficialSources: g.OfficialSources,
		})
	}

	return scheduler.New(forum, video, news, notifier,
		digest.NewDeduplicator(cfg.Ranking.SimilarityThreshold),
		digest.NewRanker(classifier, scorer),
		selector,
		scheduler.Config{
			Games:            games,
			Interval:         cfg.Schedule.Interval,
			ItemsPerSection:  cfg.Ranking.ItemsPerSection,
			TrendingName:     cfg.Trending.Name,
			TrendingKeywords: cfg.Trending.Keywords,
			TrendingCount:    cfg.Trending.Count,
			TrendingDisabled: cfg.Trending.Disabled,
		})
}

// tierWeights converts the config weight table to typed tiers
func tierWeights(weights map[string]float64) map[domain.ContentType]float64 {
	if len(weights) == 0 {
		return nil
	}
	result := make(map[domain.ContentType]float64, len(weights))
	for tier, weight := range weights {
		result[domain.ContentType(tier)] = weight
	}
	return result
}

// quotaTable converts the config quota table to typed source kinds
func quotaTable(quotas map[string]config.QuotaRange) map[domain.SourceKind]digest.QuotaRange {
	if len(quotas) == 0 {
		return nil
	}
	result := make(map[domain.SourceKind]digest.QuotaRange, len(quotas))
	for kind, q := range quotas {
		result[domain.SourceKind(kind)] = digest.QuotaRange{Min: q.Min, Max: q.Max}
	}
	return result
}

func setupLog(dbg bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))

	for _, s := range secs {
		if s != "" {
			logOpts = append(logOpts, lgr.Secret(s))
		}
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
