// Package session manages the crawler's pooled HTTP client.
//
// One session (a configured http.Client with a pooled transport) is shared
// across all fetches in a crawl run. The session is created lazily on the
// first request, carries a fixed default header set (user agent, accept
// headers, do-not-track), and is closed deterministically when the run ends.
//
// Errors are never retried here; retry policy belongs to the caller.
package session
