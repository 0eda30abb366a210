// Package log provides a redacting slog handler for wikicrawl.
//
// Crawl configurations may carry session cookies or authorization headers
// for wikis that gate content behind a login. Those values must never reach
// log output, so every logger in the application wraps its handler in
// RedactingHandler, which masks attribute values whose keys or shapes look
// like credentials before delegating to the underlying handler.
package log
