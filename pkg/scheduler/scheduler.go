// Package scheduler runs the digest pipeline on a fixed interval: aggregate
// per game from the three sources, deduplicate, rank, select, then deliver
// all sections through the notifier.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/gamedigest/pkg/digest"
	"github.com/umputun/gamedigest/pkg/domain"
)

// ForumSource aggregates posts from subreddits
type ForumSource interface {
	Aggregate(ctx context.Context, subreddits []string) []domain.Item
}

// VideoSource aggregates videos matching search keywords
type VideoSource interface {
	Aggregate(ctx context.Context, keywords []string) []domain.Item
}

// NewsSource aggregates news articles matching keywords
type NewsSource interface {
	Aggregate(ctx context.Context, keywords []string) []domain.Item
}

// Notifier delivers assembled sections
type Notifier interface {
	SendDigest(ctx context.Context, sections []domain.Section) error
	SendError(ctx context.Context, message string) error
}

// Game describes one tracked game for the run loop
type Game struct {
	Name            string
	Keywords        []string
	Subreddits      []string
	OfficialSources []string
}

// Config holds scheduler configuration
type Config struct {
	Games            []Game
	Interval         time.Duration
	ItemsPerSection  int
	TrendingName     string
	TrendingKeywords []string
	TrendingCount    int
	TrendingDisabled bool
}

// SectionStatus summarizes one delivered section
type SectionStatus struct {
	Name  string `json:"name"`
	Items int    `json:"items"`
}

// RunStatus reports the outcome of the most recent digest run
type RunStatus struct {
	Runs      int             `json:"runs"`
	LastRun   time.Time       `json:"last_run,omitzero"`
	LastError string          `json:"last_error,omitempty"`
	Sections  []SectionStatus `json:"sections,omitempty"`
}

// Scheduler orchestrates periodic digest generation and delivery
type Scheduler struct {
	forum    ForumSource
	video    VideoSource
	news     NewsSource
	notifier Notifier

	dedup    *digest.Deduplicator
	ranker   *digest.Ranker
	selector *digest.Selector

	cfg    Config
	wg     sync.WaitGroup
	cancel context.CancelFunc

	mu     sync.Mutex
	status RunStatus
}

// New creates a scheduler wiring sources, the ranking core, and the notifier
func New(forum ForumSource, video VideoSource, news NewsSource, notifier Notifier,
	dedup *digest.Deduplicator, ranker *digest.Ranker, selector *digest.Selector, cfg Config) *Scheduler {

	if cfg.Interval == 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.ItemsPerSection == 0 {
		cfg.ItemsPerSection = 5
	}
	if cfg.TrendingName == "" {
		cfg.TrendingName = "Top Gaming News"
	}
	if cfg.TrendingCount == 0 {
		cfg.TrendingCount = 3
	}

	return &Scheduler{
		forum:    forum,
		video:    video,
		news:     news,
		notifier: notifier,
		dedup:    dedup,
		ranker:   ranker,
		selector: selector,
		cfg:      cfg,
	}
}

// Start begins the run loop: an immediate run, then one per interval
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go s.runWorker(ctx)

	lgr.Printf("[INFO] scheduler started, interval %v, %d games", s.cfg.Interval, len(s.cfg.Games))
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	lgr.Printf("[INFO] stopping scheduler...")
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	lgr.Printf("[INFO] scheduler stopped")
}

// Status returns a copy of the last run outcome
func (s *Scheduler) Status() RunStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := s.status
	status.Sections = append([]SectionStatus(nil), s.status.Sections...)
	return status
}

func (s *Scheduler) runWorker(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	// run immediately on start
	if err := s.RunOnce(ctx); err != nil {
		lgr.Printf("[ERROR] digest run failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.RunOnce(ctx); err != nil {
				lgr.Printf("[ERROR] digest run failed: %v", err)
			}
		}
	}
}

// RunOnce executes a full digest cycle: build every section, deliver, and
// record the outcome. A delivery failure triggers a best-effort error
// notification.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	started := time.Now()
	lgr.Printf("[INFO] digest run started")

	sections := make([]domain.Section, 0, len(s.cfg.Games)+1)
	for _, game := range s.cfg.Games {
		sections = append(sections, s.gameSection(ctx, game, started))
	}
	if !s.cfg.TrendingDisabled {
		sections = append(sections, s.trendingSection(ctx, started))
	}

	err := s.notifier.SendDigest(ctx, sections)
	s.recordRun(started, sections, err)

	if err != nil {
		if notifyErr := s.notifier.SendError(ctx, err.Error()); notifyErr != nil {
			lgr.Printf("[WARN] failed to send error notification: %v", notifyErr)
		}
		return err
	}

	lgr.Printf("[INFO] digest run completed in %v, %d sections", time.Since(started).Round(time.Millisecond), len(sections))
	return nil
}

// gameSection aggregates all three sources for one game sequentially and runs
// the pool through the ranking core
func (s *Scheduler) gameSection(ctx context.Context, game Game, now time.Time) domain.Section {
	lgr.Printf("[INFO] aggregating content for %s", game.Name)

	var pool []domain.Item
	pool = append(pool, s.forum.Aggregate(ctx, game.Subreddits)...)
	pool = append(pool, s.video.Aggregate(ctx, game.Keywords)...)
	pool = append(pool, s.news.Aggregate(ctx, game.Keywords)...)
	lgr.Printf("[INFO] %s: %d items aggregated", game.Name, len(pool))

	items := s.process(pool, game.OfficialSources, now)
	return domain.Section{Name: game.Name, Items: items}
}

// trendingSection builds the general gaming news section from the news source
// alone, with no official-source promotion
func (s *Scheduler) trendingSection(ctx context.Context, now time.Time) domain.Section {
	lgr.Printf("[INFO] aggregating trending gaming news")

	pool := s.news.Aggregate(ctx, s.cfg.TrendingKeywords)
	unique := s.dedup.Deduplicate(pool)
	ranked := s.ranker.Rank(unique, nil, now)
	items := s.selector.Select(ranked, s.cfg.TrendingCount)
	return domain.Section{Name: s.cfg.TrendingName, Items: items}
}

// process runs the core pipeline: dedup, rank, quota-aware selection
func (s *Scheduler) process(pool []domain.Item, officialSources []string, now time.Time) []domain.Ranked {
	unique := s.dedup.Deduplicate(pool)
	ranked := s.ranker.Rank(unique, officialSources, now)
	return s.selector.Select(ranked, s.cfg.ItemsPerSection)
}

func (s *Scheduler) recordRun(started time.Time, sections []domain.Section, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status.Runs++
	s.status.LastRun = started
	s.status.LastError = ""
	if err != nil {
		s.status.LastError = err.Error()
	}
	s.status.Sections = s.status.Sections[:0]
	for _, section := range sections {
		s.status.Sections = append(s.status.Sections, SectionStatus{Name: section.Name, Items: len(section.Items)})
	}
}
