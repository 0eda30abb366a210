// Package frontier implements the crawl frontier: a persisted, deduplicated,
// priority-ordered queue of URLs awaiting a fetch, together with the visited
// set and the failed-URL map.
//
// # Ordering
//
// Entries dequeue in descending priority order; entries with equal priority
// dequeue in insertion order (FIFO within a priority). The queue is a binary
// heap keyed by (-priority, insertion sequence), so both enqueue and dequeue
// are O(log n).
//
// # Persistence
//
// The three collections are serialized as human-inspectable JSON files under
// the project's cache directory (queue.json, visited.json, failed.json).
// Loading happens automatically on construction; malformed or missing files
// are treated as "no prior state" and reset to empty collections rather than
// failing, so a corrupted cache never blocks a new crawl.
//
// # Concurrency
//
// The frontier is driven by the single-task crawl loop and performs no
// internal locking. Concurrent access from multiple goroutines, or multiple
// processes sharing one workspace, is unsupported.
package frontier
