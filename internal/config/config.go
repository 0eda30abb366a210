package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These mirror the politeness defaults of well-behaved wiki crawlers:
// conservative delays, bounded retries, and a 24h robots.txt cache.
const (
	// DefaultTimeout is the per-request HTTP timeout. Wiki pages are
	// plain HTML and should respond well within 30 seconds; anything
	// slower is treated as a per-page failure.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxRetries bounds retry attempts for retriable HTTP
	// statuses (429 and transient 5xx). Three attempts is enough to
	// ride out short outages without hammering a struggling server.
	DefaultMaxRetries = 3

	// DefaultSaveStateEvery is how many successfully crawled pages pass
	// between checkpoint writes. Ten keeps resumption loss small while
	// avoiding a disk write per page.
	DefaultSaveStateEvery = 10

	// DefaultDataDir is the workspace root when none is configured.
	// Project state lives under <data-dir>/projects/<project-name>.
	DefaultDataDir = "./data"

	// DefaultRobotsCacheTTL is how long cached robots.txt rule sets stay
	// valid, in both the memory and disk tiers. 24 hours matches the
	// de facto standard refresh interval for robots files.
	DefaultRobotsCacheTTL = 24 * time.Hour

	// DefaultBackoffBase is the first-attempt backoff delay.
	DefaultBackoffBase = 1 * time.Second

	// DefaultBackoffMax caps exponential backoff growth. Five minutes is
	// long enough to outlast most rate-limit windows.
	DefaultBackoffMax = 300 * time.Second

	// DefaultMaxBodySize limits the response body size to read.
	// 5MB is generous for wiki HTML while preventing memory exhaustion
	// from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024

	// AppName is the application name used for XDG directory paths.
	AppName = "wikicrawl"
)

// Config holds all resolved configuration for a crawl. It is populated
// from CLI flags and the optional YAML file, then passed through the
// application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., RobotsConfig, SessionConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
type Config struct {
	// RespectRobots enables robots.txt compliance checking. When false,
	// the compliance engine is not constructed at all.
	RespectRobots bool

	// UserAgent is sent with every HTTP request and used as the client
	// identifier when evaluating robots.txt rules.
	UserAgent string

	// DefaultDelay is the minimum spacing between consecutive requests
	// to the same domain. Per-domain overrides can raise or lower it.
	DefaultDelay time.Duration

	// TargetNamespaces restricts frontier expansion to links whose wiki
	// namespace appears in this list. An empty (but present) list means
	// all namespaces are accepted.
	TargetNamespaces []string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// MaxRetries bounds fetch retries for retriable HTTP statuses.
	MaxRetries int

	// ExcludePatterns are substrings; a discovered link matching any of
	// them is never enqueued.
	ExcludePatterns []string

	// SaveStateEvery is the checkpoint cadence in successfully crawled
	// pages.
	SaveStateEvery int

	// DataDir is the workspace root directory.
	DataDir string

	// RobotsCacheTTL is the validity window for cached robots.txt data.
	RobotsCacheTTL time.Duration

	// BackoffBase and BackoffMax parameterize the retry backoff policy.
	BackoffBase time.Duration
	BackoffMax  time.Duration

	// MaxBodySize is the response body size cap in bytes.
	MaxBodySize int64

	// Headers are extra HTTP headers sent with every request, e.g. a
	// session cookie for wikis that gate content. Values that look like
	// credentials are redacted from logs by the log package.
	Headers map[string]string

	// Verbose enables debug-level log output.
	Verbose bool
}

// NewConfig creates a Config with default values. Required settings
// (UserAgent, DefaultDelay, TargetNamespaces, RespectRobots) have no
// defaults and must be supplied before Validate passes.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (timeouts, cadences).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:        DefaultTimeout,
		MaxRetries:     DefaultMaxRetries,
		SaveStateEvery: DefaultSaveStateEvery,
		DataDir:        DefaultDataDir,
		RobotsCacheTTL: DefaultRobotsCacheTTL,
		BackoffBase:    DefaultBackoffBase,
		BackoffMax:     DefaultBackoffMax,
		MaxBodySize:    DefaultMaxBodySize,
	}
}

// Validate checks that the resolved configuration is usable.
// It returns the first problem found as a sentinel error so callers can
// test for specific failures with errors.Is.
func (c *Config) Validate() error {
	if c.UserAgent == "" {
		return ErrMissingUserAgent
	}
	if c.DefaultDelay <= 0 {
		return ErrInvalidDelay
	}
	if c.TargetNamespaces == nil {
		return ErrMissingTargetNamespaces
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}
	if c.SaveStateEvery <= 0 {
		return ErrInvalidSaveStateEvery
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	return nil
}

// XDGConfigDir returns the XDG config directory for wikicrawl.
// On Linux: ~/.config/wikicrawl
// On macOS: ~/Library/Application Support/wikicrawl
// On Windows: %APPDATA%\wikicrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGDataDir returns the XDG data directory for wikicrawl.
// Used as the workspace root when the user passes "xdg" as the data dir.
// On Linux: ~/.local/share/wikicrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}
