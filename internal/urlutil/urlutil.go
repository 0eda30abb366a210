package urlutil

import (
	"errors"
	"net/url"
	"sort"
	"strings"
)

// Wiki platform domain suffixes. Two hosts that both carry one of these
// suffixes belong to the same wiki when their subdomains match.
var wikiPlatformSuffixes = []string{
	".fandom.com",
	".wikia.org",
	".wikia.com",
}

// Platform meta-domains that are never part of a target wiki, even though
// they share the platform suffix.
var platformMetaDomains = map[string]bool{
	"community.fandom.com": true,
	"fandom.zendesk.com":   true,
	"about.fandom.com":     true,
	"auth.fandom.com":      true,
}

// Validation errors returned by this package.
var (
	// ErrEmptyURL is returned when a URL is empty or only whitespace.
	ErrEmptyURL = errors.New("url must be a non-empty string")

	// ErrInvalidURL is returned when a URL cannot be parsed or lacks a host.
	ErrInvalidURL = errors.New("invalid url: cannot extract domain")

	// ErrUnsupportedScheme is returned for schemes other than http/https.
	ErrUnsupportedScheme = errors.New("unsupported url scheme: expected http or https")
)

// IsValid reports whether the URL is well-formed, uses http or https,
// and has a host.
func IsValid(rawURL string) bool {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return false
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	host := u.Host
	if host == "" || host == "." || host == ".." || strings.HasPrefix(host, ".") {
		return false
	}
	return true
}

// DomainKey extracts the lower-cased host (including a non-default port)
// from a URL. This is the canonical key for all per-domain state maps.
func DomainKey(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", ErrEmptyURL
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrUnsupportedScheme
	}
	if u.Host == "" {
		return "", ErrInvalidURL
	}

	host := strings.ToLower(u.Host)

	// Drop default ports so http://example.com and http://example.com:80
	// share one rate-limit and robots entry.
	switch {
	case u.Scheme == "http" && strings.HasSuffix(host, ":80"):
		host = strings.TrimSuffix(host, ":80")
	case u.Scheme == "https" && strings.HasSuffix(host, ":443"):
		host = strings.TrimSuffix(host, ":443")
	}

	return host, nil
}

// Normalize canonicalizes a URL for deduplication: the scheme and host are
// lower-cased, the fragment is dropped, query parameters are sorted, and an
// empty path becomes "/". The path keeps its case because wiki article
// titles are case-sensitive.
func Normalize(rawURL string) (string, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return "", ErrEmptyURL
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", ErrInvalidURL
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	if u.Path == "" {
		u.Path = "/"
	}

	if u.RawQuery != "" {
		values, err := url.ParseQuery(u.RawQuery)
		if err == nil {
			keys := make([]string, 0, len(values))
			for k := range values {
				keys = append(keys, k)
			}
			sort.Strings(keys)

			var b strings.Builder
			for _, k := range keys {
				vs := values[k]
				sort.Strings(vs)
				for _, v := range vs {
					if b.Len() > 0 {
						b.WriteByte('&')
					}
					b.WriteString(url.QueryEscape(k))
					b.WriteByte('=')
					b.WriteString(url.QueryEscape(v))
				}
			}
			u.RawQuery = b.String()
		}
	}

	return u.String(), nil
}

// Resolve resolves a possibly-relative href against a base URL and returns
// the absolute form.
func Resolve(baseURL, href string) (string, error) {
	base, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", ErrInvalidURL
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return "", ErrInvalidURL
	}
	return base.ResolveReference(ref).String(), nil
}

// SameSite reports whether a candidate URL belongs to the same wiki site as
// the target URL. Two URLs match when their hosts are identical, or when
// both hosts carry the same wiki platform suffix and the same wiki
// subdomain. Platform meta-domains never match.
func SameSite(candidateURL, targetURL string) bool {
	candHost, err := hostOf(candidateURL)
	if err != nil {
		return false
	}
	targetHost, err := hostOf(targetURL)
	if err != nil {
		return false
	}

	if platformMetaDomains[candHost] {
		return false
	}
	if candHost == targetHost {
		return true
	}

	candWiki, candOK := wikiName(candHost)
	targetWiki, targetOK := wikiName(targetHost)
	return candOK && targetOK && candWiki == targetWiki
}

// Namespace returns the wiki namespace of a URL's article path.
// For paths of the form /wiki/Name:Title the namespace is "Name";
// article pages without a colon are in the "Main" namespace.
// Non-article paths return an empty string.
func Namespace(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}

	const articlePrefix = "/wiki/"
	if !strings.HasPrefix(u.Path, articlePrefix) {
		return ""
	}

	title := strings.TrimPrefix(u.Path, articlePrefix)
	if title == "" {
		return ""
	}
	if name, _, found := strings.Cut(title, ":"); found {
		return name
	}
	return "Main"
}

// hostOf returns the lower-cased host of a URL without port handling.
// SameSite comparisons are host-to-host, so ports must match literally.
func hostOf(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", ErrInvalidURL
	}
	if u.Host == "" {
		return "", ErrInvalidURL
	}
	return strings.ToLower(u.Host), nil
}

// wikiName extracts the wiki subdomain from a platform host
// (e.g. "harrypotter" from "harrypotter.fandom.com").
func wikiName(host string) (string, bool) {
	for _, suffix := range wikiPlatformSuffixes {
		if name, found := strings.CutSuffix(host, suffix); found && name != "" {
			return name, true
		}
	}
	return "", false
}
