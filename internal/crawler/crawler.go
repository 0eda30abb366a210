package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/fandomtools/wikicrawl/internal/archive"
	"github.com/fandomtools/wikicrawl/internal/config"
	"github.com/fandomtools/wikicrawl/internal/extract"
	"github.com/fandomtools/wikicrawl/internal/frontier"
	"github.com/fandomtools/wikicrawl/internal/model"
	"github.com/fandomtools/wikicrawl/internal/ratelimit"
	"github.com/fandomtools/wikicrawl/internal/robots"
	"github.com/fandomtools/wikicrawl/internal/session"
	"github.com/fandomtools/wikicrawl/internal/state"
	"github.com/fandomtools/wikicrawl/internal/urlutil"
)

// Extractor turns a fetched page into structured content. An extractor
// reporting empty MainContent means the page had nothing usable and is
// skipped.
type Extractor interface {
	Extract(page *model.Page) (*model.ExtractResult, error)
}

// Saver persists extracted content and returns its storage location.
// Save failures are logged by the orchestrator but never fail a fetch.
type Saver interface {
	Save(ctx context.Context, page *model.Page, result *model.ExtractResult) (string, error)
}

// Orchestrator drives the crawl loop for one project workspace.
//
// Design decision: one Orchestrator instance per run, constructed
// against the project workspace, because:
//  1. All mutable state (frontier, caches, counters) stays owned by the
//     instance, so multiple projects can crawl in one process.
//  2. Resumption falls out naturally: construction loads whatever the
//     workspace already holds.
//  3. There is no global state to reset between tests.
type Orchestrator struct {
	cfg         *config.Config
	projectName string
	projectDir  string

	frontier    *frontier.Frontier
	limiter     *ratelimit.Limiter
	policy      *ratelimit.Policy
	robots      *robots.Engine
	session     *session.Manager
	checkpoints *state.Store

	extractor Extractor
	saver     Saver

	// store is the default archive, kept when the orchestrator built it
	// so Close can release it and ContentStats can query it.
	store *archive.Archive

	logger *slog.Logger

	stats     *model.Statistics
	targetURL string

	// sleep waits for a robots crawl-delay; injectable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithExtractor replaces the default wiki page extractor.
func WithExtractor(e Extractor) Option {
	return func(o *Orchestrator) {
		o.extractor = e
	}
}

// WithSaver replaces the default content archive.
func WithSaver(s Saver) Option {
	return func(o *Orchestrator) {
		o.saver = s
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New creates an Orchestrator for the named project. The project
// workspace under cfg.DataDir is created if absent, or loaded as-is if
// it already holds a prior run's state.
func New(projectName string, cfg *config.Config, opts ...Option) (*Orchestrator, error) {
	if err := ValidateProjectName(projectName); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	projectDir := ProjectDir(cfg.DataDir, projectName)
	if err := scaffoldWorkspace(projectDir); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		cfg:         cfg,
		projectName: projectName,
		projectDir:  projectDir,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	var err error
	o.frontier, err = frontier.New(filepath.Join(projectDir, "cache"), o.logger)
	if err != nil {
		return nil, fmt.Errorf("initialize frontier: %w", err)
	}

	o.limiter, err = ratelimit.NewLimiter(cfg.DefaultDelay)
	if err != nil {
		return nil, err
	}

	o.policy, err = ratelimit.NewPolicy(cfg.BackoffBase, cfg.BackoffMax, cfg.MaxRetries)
	if err != nil {
		return nil, err
	}

	if cfg.RespectRobots {
		o.robots, err = robots.NewEngine(cfg.UserAgent, filepath.Join(projectDir, "cache", "robots"),
			robots.WithTTL(cfg.RobotsCacheTTL),
			robots.WithLogger(o.logger),
		)
		if err != nil {
			return nil, fmt.Errorf("initialize robots engine: %w", err)
		}
	}

	o.session = session.NewManager(cfg.UserAgent, cfg.Timeout,
		session.WithMaxBodySize(cfg.MaxBodySize),
		session.WithHeaders(cfg.Headers),
	)

	o.checkpoints, err = state.NewStore(filepath.Join(projectDir, "crawl_state"), o.logger)
	if err != nil {
		return nil, err
	}

	if o.extractor == nil {
		o.extractor = extract.NewExtractor(cfg.TargetNamespaces)
	}
	if o.saver == nil {
		o.store, err = archive.Open(projectDir, archive.DefaultOptions())
		if err != nil {
			return nil, fmt.Errorf("initialize content archive: %w", err)
		}
		o.saver = o.store
	}

	return o, nil
}

// Close releases resources the orchestrator owns. Safe to call after a
// finished run.
func (o *Orchestrator) Close() error {
	o.session.CloseSession()
	if o.store != nil {
		return o.store.Close()
	}
	return nil
}

// ProjectPath returns the project workspace directory.
func (o *Orchestrator) ProjectPath() string {
	return o.projectDir
}

// Crawl runs a crawl from the given seed URLs. maxPages of zero means
// no page limit. It always returns statistics, partial ones when the
// run aborts, and per-page failures never abort the run.
func (o *Orchestrator) Crawl(ctx context.Context, seeds []string, maxPages int) (*model.Statistics, error) {
	if len(seeds) == 0 {
		return nil, ErrNoSeeds
	}
	for _, seed := range seeds {
		if !urlutil.IsValid(seed) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSeed, seed)
		}
	}
	if maxPages < 0 {
		return nil, ErrInvalidMaxPages
	}

	o.stats = model.NewStatistics()
	o.targetURL = seeds[0]

	for _, seed := range seeds {
		normalized, err := urlutil.Normalize(seed)
		if err != nil {
			normalized = seed
		}
		o.frontier.Enqueue(normalized, 0)
	}

	return o.run(ctx, maxPages)
}

// Resume continues a previously interrupted crawl. The frontier was
// loaded at construction; the target domain is restored from the last
// checkpoint.
func (o *Orchestrator) Resume(ctx context.Context, maxPages int) (*model.Statistics, error) {
	if maxPages < 0 {
		return nil, ErrInvalidMaxPages
	}

	cp, err := o.checkpoints.Load()
	if err != nil {
		return nil, err
	}
	if cp == nil || cp.TargetDomainURL == "" {
		return nil, ErrNoCheckpoint
	}

	o.stats = model.NewStatistics()
	o.targetURL = cp.TargetDomainURL

	o.logger.Info("resuming crawl",
		slog.String("project", o.projectName),
		slog.String("target", o.targetURL),
		slog.Int("queued", o.frontier.Size()))

	return o.run(ctx, maxPages)
}

// run drives the crawl loop until the frontier empties, the page limit
// is reached, or the context is canceled. The session is released on
// every exit path.
func (o *Orchestrator) run(ctx context.Context, maxPages int) (*model.Statistics, error) {
	defer o.session.CloseSession()

	sinceCheckpoint := 0

	for {
		if maxPages > 0 && o.stats.PagesCrawled >= maxPages {
			o.logger.Info("page limit reached", slog.Int("max_pages", maxPages))
			break
		}
		if err := ctx.Err(); err != nil {
			return o.abort(err)
		}

		pageURL, ok := o.frontier.Dequeue()
		if !ok {
			break
		}
		o.stats.PagesAttempted++

		if err := o.limiter.WaitIfNeeded(ctx, pageURL); err != nil {
			return o.abort(err)
		}

		result, err := o.processURL(ctx, pageURL)
		if err != nil && ctx.Err() != nil {
			return o.abort(err)
		}
		if err != nil || result == nil {
			reason := "no usable content"
			if err != nil {
				reason = err.Error()
			}
			o.frontier.MarkFailed(pageURL, reason)
			o.stats.Errors++
			o.logger.Warn("page failed",
				slog.String("url", pageURL),
				slog.String("reason", reason))
			continue
		}

		o.stats.PagesCrawled++
		o.stats.CharactersFound += len(result.Mentions)
		o.frontier.MarkVisited(pageURL)
		o.frontier.EnqueueMany(o.filterLinks(result.Links), 0)

		o.logger.Debug("page crawled",
			slog.String("url", pageURL),
			slog.String("title", result.Title),
			slog.Int("links", len(result.Links)))

		sinceCheckpoint++
		if sinceCheckpoint >= o.cfg.SaveStateEvery {
			if err := o.persistState(); err != nil {
				return o.abort(err)
			}
			sinceCheckpoint = 0
		}
	}

	o.finalize()
	if err := o.persistState(); err != nil {
		o.stats.FatalError = err.Error()
		return o.stats, err
	}

	o.logger.Info("crawl finished",
		slog.Int("pages_crawled", o.stats.PagesCrawled),
		slog.Int("pages_attempted", o.stats.PagesAttempted),
		slog.Int("errors", o.stats.Errors),
		slog.Int("urls_in_queue", o.stats.URLsInQueue))

	return o.stats, nil
}

// abort records a fatal orchestration error, persists what it can, and
// returns the partial statistics alongside the error.
func (o *Orchestrator) abort(err error) (*model.Statistics, error) {
	o.stats.FatalError = err.Error()
	o.finalize()
	if perr := o.persistState(); perr != nil {
		o.logger.Error("failed to persist state during abort", slog.String("error", perr.Error()))
	}
	return o.stats, err
}

// finalize stamps the end-of-run fields on the statistics.
func (o *Orchestrator) finalize() {
	o.stats.URLsInQueue = o.frontier.Size()
	o.stats.Finalize()
}

// persistState writes the frontier files and a checkpoint.
func (o *Orchestrator) persistState() error {
	if err := o.frontier.Persist(); err != nil {
		return fmt.Errorf("persist frontier: %w", err)
	}

	o.stats.URLsInQueue = o.frontier.Size()
	cp := &model.Checkpoint{
		Statistics:      o.stats,
		TargetDomainURL: o.targetURL,
	}
	if err := o.checkpoints.Save(cp); err != nil {
		return fmt.Errorf("persist checkpoint: %w", err)
	}
	return nil
}

// processURL fetches one URL through the politeness stack and extracts
// its content. A nil result with a nil error never happens; the caller
// treats any error as a per-page failure.
func (o *Orchestrator) processURL(ctx context.Context, pageURL string) (*model.ExtractResult, error) {
	if o.robots != nil {
		decision := o.robots.Check(ctx, pageURL)
		if !decision.Allowed {
			return nil, fmt.Errorf("blocked by robots.txt: %s", decision.Reason)
		}
		if delay, ok := o.robots.CrawlDelay(ctx, pageURL); ok && delay > 0 {
			if err := o.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
	}

	page, err := o.fetchWithRetry(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	if page.Body == "" {
		return nil, fmt.Errorf("empty response body")
	}
	if !session.IsHTML(page) {
		return nil, fmt.Errorf("not an html page: %s", page.ContentType)
	}

	result, err := o.extractor.Extract(page)
	if err != nil {
		return nil, fmt.Errorf("extraction failed: %w", err)
	}
	if result.MainContent == "" {
		return nil, fmt.Errorf("no main content")
	}

	if location, err := o.saver.Save(ctx, page, result); err != nil {
		// Persistence failures are logged, never propagated.
		o.logger.Warn("failed to save page content",
			slog.String("url", pageURL),
			slog.String("error", err.Error()))
	} else {
		result.SavedTo = location
	}

	return result, nil
}

// fetchWithRetry issues the GET, retrying retriable HTTP statuses with
// backoff per the policy. Network errors are not status-coded and are
// not retried.
func (o *Orchestrator) fetchWithRetry(ctx context.Context, pageURL string) (*model.Page, error) {
	for attempt := 1; ; attempt++ {
		page, err := o.session.Get(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("fetch failed: %w", err)
		}

		if page.StatusCode == http.StatusOK {
			o.policy.RecordSuccess(pageURL)
			return page, nil
		}

		o.policy.RecordFailure(pageURL, page.StatusCode)
		if !o.policy.ShouldRetry(pageURL, page.StatusCode, attempt) {
			return nil, fmt.Errorf("fetch failed: status %d", page.StatusCode)
		}

		o.logger.Debug("retrying after server error",
			slog.String("url", pageURL),
			slog.Int("status", page.StatusCode),
			slog.Int("attempt", attempt))

		if err := o.policy.WaitForAttempt(ctx, attempt); err != nil {
			return nil, err
		}
	}
}

// filterLinks keeps only links worth enqueuing: same wiki site as the
// first seed, an accepted namespace, and no excluded substring. The
// survivors are normalized for dedup.
func (o *Orchestrator) filterLinks(links []string) []string {
	kept := lo.Filter(links, func(link string, _ int) bool {
		if !urlutil.IsValid(link) {
			return false
		}
		if !urlutil.SameSite(link, o.targetURL) {
			return false
		}
		for _, pattern := range o.cfg.ExcludePatterns {
			if pattern != "" && strings.Contains(link, pattern) {
				return false
			}
		}
		ns := urlutil.Namespace(link)
		if ns == "" {
			return false
		}
		if len(o.cfg.TargetNamespaces) > 0 && !lo.Contains(o.cfg.TargetNamespaces, ns) {
			return false
		}
		return true
	})

	normalized := lo.Map(kept, func(link string, _ int) string {
		n, err := urlutil.Normalize(link)
		if err != nil {
			return link
		}
		return n
	})
	return lo.Uniq(normalized)
}

// Status reports the frontier's current counts and the last checkpoint,
// for inspection without starting a run.
func (o *Orchestrator) Status() (frontier.Stats, *model.Checkpoint, error) {
	cp, err := o.checkpoints.Load()
	if err != nil {
		return frontier.Stats{}, nil, err
	}
	return o.frontier.Statistics(), cp, nil
}

// FailedURLs returns a copy of the frontier's failed map.
func (o *Orchestrator) FailedURLs() map[string]string {
	return o.frontier.FailedURLs()
}

// ContentStats returns the default archive's per-namespace counts, or
// nil when a custom Saver is in use.
func (o *Orchestrator) ContentStats(ctx context.Context) (*archive.Stats, error) {
	if o.store == nil {
		return nil, nil
	}
	return o.store.ContentStats(ctx)
}

// sleepContext waits for d or until the context is canceled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
