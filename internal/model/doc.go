// Package model defines the core data structures used throughout wikicrawl.
//
// This package contains the following main types:
//   - Page: A fetched page as seen by the session layer
//   - ExtractResult: Structured content produced by an Extractor
//   - Statistics: Aggregate counters for a crawl run
//   - Checkpoint: A durable snapshot of run statistics for resumption
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (session, extract, crawler, report, state)
// need to use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for checkpoint files
// and report output. Field names use snake_case JSON tags so the persisted
// files remain human-inspectable and diff-friendly.
package model
