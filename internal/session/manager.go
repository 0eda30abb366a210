package session

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/fandomtools/wikicrawl/internal/model"
)

// Connection pool settings.
// A single-domain politeness crawler needs very few connections; the pool
// exists for keep-alive reuse, not parallelism.
const (
	maxIdleConns        = 20
	maxIdleConnsPerHost = 10
	idleConnTimeout     = 90 * time.Second
	keepAliveInterval   = 30 * time.Second
	dialTimeout         = 10 * time.Second
)

// Manager owns the pooled HTTP client for a crawl run.
type Manager struct {
	// userAgent identifies the crawler in every request.
	userAgent string

	// timeout is the fixed per-request timeout.
	timeout time.Duration

	// maxBodySize caps how many bytes of a response body are read.
	maxBodySize int64

	// headers are extra headers merged into every request after the
	// defaults, e.g. a session cookie for gated wikis.
	headers map[string]string

	// client is the live session. Nil until the first request or an
	// explicit CreateSession call.
	client *http.Client

	// newClient is indirected so tests can substitute a server client.
	newClient func() *http.Client
}

// Option configures a Manager.
type Option func(*Manager)

// WithMaxBodySize caps the response body size read per request.
func WithMaxBodySize(size int64) Option {
	return func(m *Manager) {
		if size > 0 {
			m.maxBodySize = size
		}
	}
}

// WithHeaders sets extra headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(m *Manager) {
		m.headers = headers
	}
}

// NewManager creates a session manager. No connections are opened until
// the first request.
func NewManager(userAgent string, timeout time.Duration, opts ...Option) *Manager {
	m := &Manager{
		userAgent:   userAgent,
		timeout:     timeout,
		maxBodySize: 5 * 1024 * 1024,
	}
	m.newClient = m.buildClient
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateSession builds a fresh pooled client, closing and replacing any
// existing session.
func (m *Manager) CreateSession() {
	m.CloseSession()
	m.client = m.newClient()
}

// CloseSession releases the session's pooled connections.
// Safe to call multiple times or without an open session.
func (m *Manager) CloseSession() {
	if m.client != nil {
		m.client.CloseIdleConnections()
		m.client = nil
	}
}

// Get issues a GET request and returns the fetched page with its body
// decoded to UTF-8. A session is created lazily if none exists.
// Non-200 statuses are returned as pages, not errors; the caller owns
// status handling and retry policy.
func (m *Manager) Get(ctx context.Context, pageURL string) (*model.Page, error) {
	resp, err := m.do(ctx, http.MethodGet, pageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck // Read side is what matters

	page := &model.Page{
		URL:         pageURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}

	// Decode to UTF-8 using the declared charset; most wikis are UTF-8
	// already, but older mirrors still serve legacy encodings.
	reader, err := charset.NewReader(io.LimitReader(resp.Body, m.maxBodySize), page.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to build charset reader: %w", err)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	page.Body = string(body)

	return page, nil
}

// Head issues a HEAD request, useful for probing content type and size
// without transferring the body.
func (m *Manager) Head(ctx context.Context, pageURL string) (*model.Page, error) {
	resp, err := m.do(ctx, http.MethodHead, pageURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck // HEAD bodies are empty

	return &model.Page{
		URL:         pageURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}

// do issues a request with the default header set applied.
func (m *Manager) do(ctx context.Context, method, pageURL string) (*http.Response, error) {
	if m.client == nil {
		m.client = m.newClient()
	}

	req, err := http.NewRequestWithContext(ctx, method, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	for key, value := range m.defaultHeaders() {
		req.Header.Set(key, value)
	}
	for key, value := range m.headers {
		req.Header.Set(key, value)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// defaultHeaders returns the headers sent with every request.
func (m *Manager) defaultHeaders() map[string]string {
	return map[string]string{
		"User-Agent":      m.userAgent,
		"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
		"Accept-Language": "en-US,en;q=0.5",
		"DNT":             "1",
	}
}

// buildClient constructs the pooled HTTP client.
func (m *Manager) buildClient() *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   dialTimeout,
			KeepAlive: keepAliveInterval,
		}).DialContext,
		MaxIdleConns:        maxIdleConns,
		MaxIdleConnsPerHost: maxIdleConnsPerHost,
		IdleConnTimeout:     idleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   m.timeout,
		// Limit redirects to prevent loops; wikis redirect liberally
		// between article title variants.
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// IsHTML reports whether a page's content type is HTML.
func IsHTML(page *model.Page) bool {
	return strings.Contains(page.ContentType, "text/html") ||
		strings.Contains(page.ContentType, "application/xhtml+xml")
}
