package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// Page represents a single fetched page before extraction.
// It holds the response metadata and the decoded HTML body.
type Page struct {
	// URL is the full URL the page was fetched from.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// ContentType is the MIME type from the Content-Type header.
	ContentType string `json:"content_type"`

	// Body is the response body decoded to UTF-8.
	// The session layer caps its size to prevent memory exhaustion.
	Body string `json:"-"`
}

// ContentHash returns the SHA-256 hex digest of the page body.
// Used by the archive for deduplication and change detection.
func (p *Page) ContentHash() string {
	sum := sha256.Sum256([]byte(p.Body))
	return hex.EncodeToString(sum[:])
}

// ExtractResult is the structured content an Extractor produces from a page.
// The orchestrator only depends on MainContent (emptiness means the page is
// skipped) and Links (frontier expansion); everything else is carried for
// the content archive and downstream consumers.
type ExtractResult struct {
	// URL is the page the content was extracted from.
	URL string `json:"url"`

	// Title is the article title.
	Title string `json:"title"`

	// MainContent is the article body text. An empty value means the
	// page had no usable content and should not count as crawled.
	MainContent string `json:"main_content"`

	// Links are resolved absolute URLs discovered on the page.
	Links []string `json:"links,omitempty"`

	// Infobox holds key/value pairs from a portable infobox, if present.
	Infobox map[string]string `json:"infobox,omitempty"`

	// Categories are the category names the article belongs to.
	Categories []string `json:"categories,omitempty"`

	// Namespace is the wiki namespace of the page ("Main" for articles).
	Namespace string `json:"namespace"`

	// IsDisambiguation reports whether the page is a disambiguation page.
	IsDisambiguation bool `json:"is_disambiguation,omitempty"`

	// Mentions are names of other articles referenced from the main
	// content. The orchestrator accumulates their count into the
	// characters_found statistic.
	Mentions []string `json:"mentions,omitempty"`

	// SavedTo is the storage location reported by the persistence
	// collaborator, filled in after a successful save.
	SavedTo string `json:"saved_to,omitempty"`
}
