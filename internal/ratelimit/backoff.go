package ratelimit

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/fandomtools/wikicrawl/internal/urlutil"
)

// jitterFraction is the symmetric jitter applied to backoff delays.
// A computed delay d becomes a uniform value in [0.75d, 1.25d], re-clamped
// to the cap afterwards.
const jitterFraction = 0.25

// retriableStatuses are HTTP statuses worth retrying: rate limiting,
// transient server errors, and the Cloudflare 52x family.
var retriableStatuses = map[int]bool{
	429: true, // Too Many Requests
	500: true, // Internal Server Error
	502: true, // Bad Gateway
	503: true, // Service Unavailable
	504: true, // Gateway Timeout
	520: true, // Cloudflare: Unknown Error
	521: true, // Cloudflare: Web Server Is Down
	522: true, // Cloudflare: Connection Timed Out
	523: true, // Cloudflare: Origin Is Unreachable
	524: true, // Cloudflare: A Timeout Occurred
}

// Backoff policy construction errors.
var (
	// ErrInvalidBaseDelay is returned when the base delay is not positive.
	ErrInvalidBaseDelay = errors.New("base delay must be positive")

	// ErrInvalidMaxDelay is returned when the max delay is not positive
	// or smaller than the base delay.
	ErrInvalidMaxDelay = errors.New("max delay must be positive and >= base delay")

	// ErrInvalidMaxRetries is returned when the retry bound is negative.
	ErrInvalidMaxRetries = errors.New("max retries must be non-negative")
)

// Policy computes retry delays and eligibility for failed fetches, and
// tracks a consecutive-failure counter per domain.
type Policy struct {
	baseDelay  time.Duration
	maxDelay   time.Duration
	maxRetries int

	// failures counts consecutive failures per domain key.
	failures map[string]int

	// randFloat and sleep are indirected for tests.
	randFloat func() float64
	sleep     func(ctx context.Context, d time.Duration) error
}

// NewPolicy creates a backoff policy. baseDelay and maxDelay must be
// positive with maxDelay >= baseDelay; maxRetries must be non-negative
// (zero disables retries).
func NewPolicy(baseDelay, maxDelay time.Duration, maxRetries int) (*Policy, error) {
	if baseDelay <= 0 {
		return nil, ErrInvalidBaseDelay
	}
	if maxDelay <= 0 || maxDelay < baseDelay {
		return nil, ErrInvalidMaxDelay
	}
	if maxRetries < 0 {
		return nil, ErrInvalidMaxRetries
	}
	return &Policy{
		baseDelay:  baseDelay,
		maxDelay:   maxDelay,
		maxRetries: maxRetries,
		failures:   make(map[string]int),
		randFloat:  rand.Float64,
		sleep:      sleepContext,
	}, nil
}

// DelayForAttempt returns the backoff delay before the given attempt:
// min(maxDelay, baseDelay * 2^(attempt-1)), perturbed by symmetric jitter,
// then re-clamped so jitter never pushes the result above the cap.
// Attempts <= 0 yield no wait.
func (p *Policy) DelayForAttempt(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}

	delay := p.baseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= p.maxDelay {
			delay = p.maxDelay
			break
		}
	}

	// Uniform jitter in [1-jitterFraction, 1+jitterFraction].
	factor := 1 + jitterFraction*(2*p.randFloat()-1)
	jittered := time.Duration(float64(delay) * factor)
	if jittered > p.maxDelay {
		jittered = p.maxDelay
	}
	if jittered < 0 {
		jittered = 0
	}
	return jittered
}

// WaitForAttempt suspends for DelayForAttempt(attempt), honoring context
// cancellation.
func (p *Policy) WaitForAttempt(ctx context.Context, attempt int) error {
	return p.sleep(ctx, p.DelayForAttempt(attempt))
}

// ShouldRetry reports whether a fetch of url that returned statusCode is
// worth another attempt. attempt is 1-based: attempt N asks whether retry
// number N may proceed.
func (p *Policy) ShouldRetry(_ string, statusCode, attempt int) bool {
	if attempt > p.maxRetries {
		return false
	}
	return retriableStatuses[statusCode]
}

// RecordFailure increments the consecutive-failure counter for the URL's
// domain. Unparseable URLs are ignored; there is no domain to charge.
func (p *Policy) RecordFailure(url string, _ int) {
	domain, err := urlutil.DomainKey(url)
	if err != nil {
		return
	}
	p.failures[domain]++
}

// RecordSuccess resets the consecutive-failure counter for the URL's domain.
func (p *Policy) RecordSuccess(url string) {
	domain, err := urlutil.DomainKey(url)
	if err != nil {
		return
	}
	delete(p.failures, domain)
}

// FailureCount returns the consecutive-failure count for the URL's domain.
func (p *Policy) FailureCount(url string) int {
	domain, err := urlutil.DomainKey(url)
	if err != nil {
		return 0
	}
	return p.failures[domain]
}

// MaxRetries returns the configured retry bound.
func (p *Policy) MaxRetries() int {
	return p.maxRetries
}
