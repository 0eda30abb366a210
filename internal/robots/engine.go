package robots

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/sync/singleflight"

	"github.com/fandomtools/wikicrawl/internal/urlutil"
)

// DefaultTTL is the default validity window for cached rule sets.
const DefaultTTL = 24 * time.Hour

// maxRobotsSize caps how much of a robots.txt response is read.
// Real-world robots files are a few KB; 512KB is already pathological.
const maxRobotsSize = 512 * 1024

// Decision is the outcome of a compliance check.
//
// Design decision: We return a typed outcome instead of a bare bool so the
// fail-open path is observable. Inconclusive means the check itself broke
// and Allowed is true by policy, not because a rule permitted the fetch.
type Decision struct {
	// Allowed reports whether the URL may be fetched.
	Allowed bool

	// Inconclusive is true when the check failed internally and the
	// engine defaulted to allow.
	Inconclusive bool

	// Reason explains an Inconclusive or disallowed decision.
	Reason string
}

// Engine fetches, caches, and evaluates robots.txt rules per domain.
type Engine struct {
	// userAgent is the client identifier rules are evaluated against.
	userAgent string

	// cacheDir is the disk cache directory for fetched robots files.
	cacheDir string

	// ttl is the validity window for both cache tiers.
	ttl time.Duration

	// client issues the robots.txt fetches.
	client *http.Client

	// mem is the in-memory cache tier, keyed by domain.
	mem map[string]*cacheEntry

	// fetches deduplicates concurrent network fetches per domain.
	fetches singleflight.Group

	logger *slog.Logger

	// now is indirected for TTL tests.
	now func() time.Time
}

// cacheEntry is a parsed rule set with its fetch time.
type cacheEntry struct {
	data    *robotstxt.RobotsData
	fetched time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithTTL overrides the cache validity window.
func WithTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.ttl = ttl
	}
}

// WithHTTPClient sets the client used for robots.txt fetches.
// Tests use this to point the engine at a local server.
func WithHTTPClient(client *http.Client) Option {
	return func(e *Engine) {
		e.client = client
	}
}

// WithLogger sets the engine's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates a compliance engine for the given client identifier,
// with its disk cache rooted at cacheDir (created if absent).
func NewEngine(userAgent, cacheDir string, opts ...Option) (*Engine, error) {
	if err := os.MkdirAll(cacheDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create robots cache directory: %w", err)
	}

	e := &Engine{
		userAgent: userAgent,
		cacheDir:  cacheDir,
		ttl:       DefaultTTL,
		client:    &http.Client{Timeout: 30 * time.Second},
		mem:       make(map[string]*cacheEntry),
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// CanFetch reports whether the URL may be fetched under the domain's
// robots.txt rules. Internal failures log a warning and allow the fetch.
func (e *Engine) CanFetch(ctx context.Context, pageURL string) bool {
	decision := e.Check(ctx, pageURL)
	if decision.Inconclusive {
		e.logger.Warn("robots check inconclusive, allowing by policy",
			"url", pageURL, "reason", decision.Reason)
	}
	return decision.Allowed
}

// Check evaluates the URL against the domain's rule set and returns a
// typed decision. The check fails open: any internal error yields an
// allowed-but-inconclusive decision.
func (e *Engine) Check(ctx context.Context, pageURL string) Decision {
	u, err := url.Parse(pageURL)
	if err != nil {
		return Decision{Allowed: true, Inconclusive: true, Reason: fmt.Sprintf("unparseable url: %v", err)}
	}

	data, err := e.rules(ctx, u)
	if err != nil {
		return Decision{Allowed: true, Inconclusive: true, Reason: err.Error()}
	}

	path := u.Path
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	if !data.FindGroup(e.userAgent).Test(path) {
		return Decision{Allowed: false, Reason: "disallowed by robots.txt"}
	}
	return Decision{Allowed: true}
}

// CrawlDelay returns the crawl-delay directive for the engine's client
// identifier at the URL's domain. The second return is false when no delay
// is specified or the rule set is unavailable.
func (e *Engine) CrawlDelay(ctx context.Context, pageURL string) (time.Duration, bool) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return 0, false
	}
	data, err := e.rules(ctx, u)
	if err != nil {
		return 0, false
	}

	if delay := data.FindGroup(e.userAgent).CrawlDelay; delay > 0 {
		return delay, true
	}
	return 0, false
}

// ClearCache empties both the memory and disk tiers.
func (e *Engine) ClearCache() error {
	e.mem = make(map[string]*cacheEntry)

	files, err := filepath.Glob(filepath.Join(e.cacheDir, "*.txt"))
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := os.Remove(f); err != nil {
			return fmt.Errorf("failed to remove cached robots file: %w", err)
		}
	}
	return nil
}

// rules returns the domain's rule set, consulting memory, then disk, then
// the network.
func (e *Engine) rules(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	domain, err := urlutil.DomainKey(u.String())
	if err != nil {
		return nil, err
	}

	if entry, ok := e.mem[domain]; ok && e.now().Sub(entry.fetched) < e.ttl {
		return entry.data, nil
	}

	if data, ok := e.loadFromDisk(domain); ok {
		e.mem[domain] = &cacheEntry{data: data, fetched: e.now()}
		return data, nil
	}

	data, err, _ := e.fetches.Do(domain, func() (any, error) {
		return e.fetch(ctx, u.Scheme, domain)
	})
	if err != nil {
		return nil, err
	}

	parsed := data.(*robotstxt.RobotsData)
	e.mem[domain] = &cacheEntry{data: parsed, fetched: e.now()}
	return parsed, nil
}

// fetch retrieves robots.txt over the network and populates the disk tier.
// A 404 is cached as an allow-all rule set; other failures are not cached.
func (e *Engine) fetch(ctx context.Context, scheme, domain string) (*robotstxt.RobotsData, error) {
	robotsURL := scheme + "://" + domain + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build robots request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("robots fetch failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // Read side is what matters

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsSize))
		if err != nil {
			return nil, fmt.Errorf("failed to read robots body: %w", err)
		}
		data, err := robotstxt.FromBytes(body)
		if err != nil {
			return nil, fmt.Errorf("failed to parse robots.txt: %w", err)
		}
		e.saveToDisk(domain, body)
		return data, nil

	case resp.StatusCode == http.StatusNotFound:
		// Missing robots.txt means everything is allowed. Cache the
		// empty rule set so we do not refetch within the TTL.
		data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build allow-all rule set: %w", err)
		}
		e.saveToDisk(domain, nil)
		return data, nil

	default:
		return nil, fmt.Errorf("robots fetch returned HTTP %d", resp.StatusCode)
	}
}

// loadFromDisk returns the domain's cached rule set if the cache file is
// still within the TTL. An unreadable or unparseable file is ignored.
func (e *Engine) loadFromDisk(domain string) (*robotstxt.RobotsData, bool) {
	path := e.cachePath(domain)

	info, err := os.Stat(path)
	if err != nil || e.now().Sub(info.ModTime()) >= e.ttl {
		return nil, false
	}

	body, err := os.ReadFile(path) //nolint:gosec // Cache paths are engine-owned
	if err != nil {
		return nil, false
	}
	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return nil, false
	}
	return data, true
}

// saveToDisk writes the raw robots body to the disk tier. Failures are
// logged, not propagated: the disk cache is an optimization.
func (e *Engine) saveToDisk(domain string, body []byte) {
	if err := os.WriteFile(e.cachePath(domain), body, 0600); err != nil {
		e.logger.Warn("failed to write robots cache file", "domain", domain, "reason", err)
	}
}

// cachePath returns the disk cache file for a domain. The name is a hash so
// arbitrary hosts (including ports) map to safe file names.
func (e *Engine) cachePath(domain string) string {
	sum := sha256.Sum256([]byte(domain))
	return filepath.Join(e.cacheDir, hex.EncodeToString(sum[:8])+".txt")
}
