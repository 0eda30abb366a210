// Package ratelimit implements the two politeness timing policies of the
// crawler: the per-domain rate limiter and the exponential backoff retry
// policy.
//
// # Rate limiter
//
// The Limiter enforces a minimum spacing between consecutive requests to the
// same domain. After a domain's first request, every subsequent call waits
// the full configured delay regardless of how much wall-clock time already
// passed. The fixed, non-adaptive wait guarantees a worst-case minimum
// spacing even under bursty call patterns, at the cost of sometimes waiting
// longer than strictly necessary.
//
// # Backoff policy
//
// The Policy computes exponential-backoff-with-jitter delays and decides
// retry eligibility per HTTP status, tracking a consecutive-failure counter
// per domain. Jitter is symmetric (plus or minus 25 percent) and the result
// is re-clamped so it never exceeds the configured cap.
package ratelimit
