// Package urlutil provides URL validation, normalization, and site-matching
// helpers shared by the frontier, rate limiter, and orchestrator.
//
// All domain-keyed state in wikicrawl (rate limiting, robots caching, backoff
// counters) is keyed through DomainKey so that case differences and default
// ports never split one logical domain into several entries.
package urlutil
