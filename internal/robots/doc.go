// Package robots implements robots.txt compliance checking with a two-tier
// (memory + disk) TTL cache.
//
// # Cache resolution
//
// A rule set lookup tries the in-memory cache first (valid while younger
// than the TTL), then the on-disk cache (valid while the file's modification
// time is within the TTL), then the network. A successful fetch populates
// both tiers; a 404 populates both tiers with an allow-all rule set so the
// engine never refetches a missing robots.txt inside the TTL window. Any
// other fetch failure is not cached.
//
// The disk tier bounds network fetches to one per domain per TTL window even
// across process restarts; the memory tier avoids disk I/O on the hot path
// within a single run.
//
// # Fail-open policy
//
// When the compliance check itself breaks (network failure, parse failure),
// the engine fails OPEN: the page is treated as allowed. This is a deliberate
// policy decision, surfaced as a typed Decision with Inconclusive set rather
// than a silently swallowed error, so operators can observe it in logs.
package robots
