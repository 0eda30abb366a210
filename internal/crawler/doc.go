// Package crawler provides the orchestrating crawl loop for wiki sites.
//
// # Architecture
//
// The crawler package is designed around the Orchestrator type, which
// drives a single-task crawl loop over a persisted URL frontier. Each
// iteration applies the politeness stack in order: the per-domain rate
// limiter, the robots.txt compliance engine, and the retry/backoff
// policy around the actual fetch. Extraction and content persistence
// are pluggable collaborators behind the Extractor and Saver
// interfaces.
//
// # Components
//
//   - Orchestrator: the main loop tying frontier, politeness, session,
//     extraction, and checkpointing together
//   - Extractor: turns a fetched page into structured content and links
//   - Saver: persists extracted content and reports its location
//
// # Politeness
//
// The crawler is designed to be polite:
//   - Respects robots.txt and its crawl-delay directives (configurable)
//   - Enforces a minimum delay between requests to the same domain
//   - Backs off exponentially on retriable server errors
//   - Never fetches more than one URL at a time
//
// # Resumption
//
// All crawl state (queue, visited set, failed map, checkpoint) lives in
// the project workspace. Constructing an Orchestrator against an
// existing workspace loads that state, so an interrupted run continues
// where it left off.
//
// # Usage
//
//	orc, err := crawler.New("starwars", cfg)
//	stats, err := orc.Crawl(ctx, []string{"https://starwars.fandom.com/wiki/Main_Page"}, 100)
package crawler
