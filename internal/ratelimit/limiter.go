package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/fandomtools/wikicrawl/internal/urlutil"
)

// requestHistoryWindow is how long request timestamps are retained per
// domain. The history feeds DomainStats only; the wait calculation never
// looks at it.
const requestHistoryWindow = time.Minute

// ErrNonPositiveDelay is returned when a delay override is not positive.
var ErrNonPositiveDelay = errors.New("delay must be positive")

// DomainStats describes the rate limiter's view of one domain.
type DomainStats struct {
	// RequestCount is the number of requests recorded inside the
	// retention window.
	RequestCount int

	// LastRequestTime is when the most recent request was recorded.
	// Zero if the domain has not been requested yet.
	LastRequestTime time.Time

	// Delay is the spacing currently in force for the domain.
	Delay time.Duration
}

// Limiter enforces a minimum delay between consecutive requests to the
// same domain. Domain state is created lazily on first request and keyed
// by the lower-cased host (plus non-default port).
type Limiter struct {
	// defaultDelay applies to every domain without an override.
	defaultDelay time.Duration

	// delays holds per-domain delay overrides.
	delays map[string]time.Duration

	// requests holds recent request timestamps per domain, newest last.
	requests map[string][]time.Time

	// now and sleep are indirected for tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewLimiter creates a Limiter with the given default delay.
func NewLimiter(defaultDelay time.Duration) (*Limiter, error) {
	if defaultDelay <= 0 {
		return nil, ErrNonPositiveDelay
	}
	return &Limiter{
		defaultDelay: defaultDelay,
		delays:       make(map[string]time.Duration),
		requests:     make(map[string][]time.Time),
		now:          time.Now,
		sleep:        sleepContext,
	}, nil
}

// WaitIfNeeded suspends before a request to the URL's domain. The first
// request to a domain returns immediately; every later request waits the
// domain's full configured delay. The request is recorded after the wait.
//
// The returned error is a urlutil validation error for unusable URLs, or
// the context's error if it is cancelled mid-wait.
func (l *Limiter) WaitIfNeeded(ctx context.Context, url string) error {
	domain, err := urlutil.DomainKey(url)
	if err != nil {
		return err
	}

	if len(l.requests[domain]) > 0 {
		if err := l.sleep(ctx, l.delayFor(domain)); err != nil {
			return err
		}
	}

	l.record(domain)
	return nil
}

// SetDomainDelay overrides the default delay for one domain.
func (l *Limiter) SetDomainDelay(domain string, delay time.Duration) error {
	if delay <= 0 {
		return ErrNonPositiveDelay
	}
	l.delays[domain] = delay
	return nil
}

// RecordRequest appends a request timestamp for the URL's domain without
// waiting. Used when a request is issued outside WaitIfNeeded, e.g. the
// robots.txt fetch.
func (l *Limiter) RecordRequest(url string) error {
	domain, err := urlutil.DomainKey(url)
	if err != nil {
		return err
	}
	l.record(domain)
	return nil
}

// DomainStats returns the limiter's current view of a domain.
func (l *Limiter) DomainStats(domain string) DomainStats {
	stats := DomainStats{Delay: l.delayFor(domain)}
	if history := l.requests[domain]; len(history) > 0 {
		stats.RequestCount = len(history)
		stats.LastRequestTime = history[len(history)-1]
	}
	return stats
}

// delayFor returns the delay in force for a domain.
func (l *Limiter) delayFor(domain string) time.Duration {
	if delay, ok := l.delays[domain]; ok {
		return delay
	}
	return l.defaultDelay
}

// record appends a timestamp and prunes history beyond the retention window.
func (l *Limiter) record(domain string) {
	now := l.now()
	history := append(l.requests[domain], now)

	cutoff := now.Add(-requestHistoryWindow)
	kept := history[:0]
	for _, ts := range history {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	l.requests[domain] = kept
}

// sleepContext sleeps for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
