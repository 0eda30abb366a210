package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samber/lo"

	"github.com/fandomtools/wikicrawl/internal/model"
	"github.com/fandomtools/wikicrawl/internal/urlutil"
)

// minContentLength is the shortest article body that counts as usable
// content. Pages below this threshold are treated as empty.
const minContentLength = 50

// Selector lists tried in order. The first match wins.
var (
	titleSelectors = []string{
		"h1.page-header__title",
		"h1#firstHeading",
		"h1",
		"title",
	}

	contentSelectors = []string{
		".mw-parser-output",
		".mw-content-text",
		"main",
		".page-content",
		"#content",
		"article",
	}

	ignoreSelectors = []string{
		"nav",
		".navigation",
		".sidebar",
		".rail",
		"footer",
		"script",
		"style",
		".toc",
		".portable-infobox",
		".advertisement",
	}

	categorySelectors = []string{
		".page-header__categories a",
		"#mw-normal-catlinks ul li a",
	}
)

// disambiguationMarkers are phrases that identify a disambiguation page.
var disambiguationMarkers = []string{
	"disambiguation",
	"may refer to:",
	"can refer to:",
	"might refer to:",
}

var whitespaceRE = regexp.MustCompile(`\s+`)

// Extractor parses wiki article HTML into an ExtractResult.
// The zero value is not usable; construct one with NewExtractor.
type Extractor struct {
	// targetNamespaces restricts which article links are reported as
	// mentions. Empty means every namespace is eligible.
	targetNamespaces map[string]bool
}

// NewExtractor creates an extractor that treats the given namespaces as
// article content when collecting mentions.
func NewExtractor(targetNamespaces []string) *Extractor {
	nsSet := make(map[string]bool, len(targetNamespaces))
	for _, ns := range targetNamespaces {
		nsSet[ns] = true
	}
	return &Extractor{targetNamespaces: nsSet}
}

// Extract parses the page body and returns its structured content.
// A page whose article body is shorter than the usable-content threshold
// yields a result with an empty MainContent; that is not an error.
func (e *Extractor) Extract(page *model.Page) (*model.ExtractResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page.Body))
	if err != nil {
		return nil, fmt.Errorf("parse page %s: %w", page.URL, err)
	}

	result := &model.ExtractResult{
		URL:              page.URL,
		Title:            e.title(doc),
		Links:            e.links(doc, page.URL),
		Infobox:          e.infobox(doc),
		Categories:       e.categories(doc),
		Namespace:        urlutil.Namespace(page.URL),
		IsDisambiguation: e.isDisambiguation(doc),
	}

	// The infobox and chrome are stripped before the body text is read,
	// so strip on a detached copy of the content node.
	result.MainContent = e.mainContent(doc)
	result.Mentions = e.mentions(result.Links, page.URL)

	return result, nil
}

// title returns the first non-empty text among the title selectors.
func (e *Extractor) title(doc *goquery.Document) string {
	for _, sel := range titleSelectors {
		if text := cleanText(doc.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

// mainContent returns the article body text with navigation chrome
// removed, or an empty string when the body is too short to be usable.
func (e *Extractor) mainContent(doc *goquery.Document) string {
	for _, sel := range contentSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}

		clone := node.Clone()
		for _, ignore := range ignoreSelectors {
			clone.Find(ignore).Remove()
		}

		if text := cleanText(clone.Text()); len(text) >= minContentLength {
			return text
		}
	}
	return ""
}

// links returns the deduplicated absolute URLs of every anchor on the
// page. Fragment-only and unparsable hrefs are skipped; same-site
// filtering is the orchestrator's job.
func (e *Extractor) links(doc *goquery.Document, baseURL string) []string {
	var links []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") {
			return
		}
		abs, err := urlutil.Resolve(baseURL, href)
		if err != nil || !urlutil.IsValid(abs) {
			return
		}
		links = append(links, abs)
	})
	return lo.Uniq(links)
}

// infobox extracts key/value pairs from the first infobox-style element.
// Portable infoboxes use dt/dd pairs; classic wikitables use th/td rows.
func (e *Extractor) infobox(doc *goquery.Document) map[string]string {
	for _, sel := range []string{".portable-infobox", ".infobox", ".wikitable"} {
		box := doc.Find(sel).First()
		if box.Length() == 0 {
			continue
		}

		data := map[string]string{}

		box.Find("tr").Each(func(_ int, row *goquery.Selection) {
			key := cleanText(row.Find("th").First().Text())
			value := cleanText(row.Find("td").First().Text())
			if key != "" && value != "" {
				data[key] = value
			}
		})

		box.Find("dt").Each(func(_ int, dt *goquery.Selection) {
			key := cleanText(dt.Text())
			value := cleanText(dt.NextFiltered("dd").Text())
			if key != "" && value != "" {
				data[key] = value
			}
		})

		if len(data) > 0 {
			return data
		}
	}
	return nil
}

// categories returns the article's category names.
func (e *Extractor) categories(doc *goquery.Document) []string {
	for _, sel := range categorySelectors {
		nodes := doc.Find(sel)
		if nodes.Length() == 0 {
			continue
		}

		cats := make([]string, 0, nodes.Length())
		nodes.Each(func(_ int, a *goquery.Selection) {
			if name := cleanText(a.Text()); name != "" && !strings.EqualFold(name, "Categories") {
				cats = append(cats, name)
			}
		})
		if len(cats) > 0 {
			return lo.Uniq(cats)
		}
	}
	return nil
}

// isDisambiguation reports whether the page text carries a
// disambiguation marker.
func (e *Extractor) isDisambiguation(doc *goquery.Document) bool {
	text := strings.ToLower(doc.Text())
	return lo.SomeBy(disambiguationMarkers, func(marker string) bool {
		return strings.Contains(text, marker)
	})
}

// mentions derives article names from the page's same-site article
// links. Only links in a target namespace contribute.
func (e *Extractor) mentions(links []string, baseURL string) []string {
	var names []string
	for _, link := range links {
		if !urlutil.SameSite(link, baseURL) {
			continue
		}
		ns := urlutil.Namespace(link)
		if ns == "" {
			continue
		}
		if len(e.targetNamespaces) > 0 && !e.targetNamespaces[ns] {
			continue
		}
		if name := articleName(link); name != "" {
			names = append(names, name)
		}
	}
	return lo.Uniq(names)
}

// articleName converts a /wiki/ path into a readable article name,
// turning underscores into spaces and decoding percent escapes.
func articleName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	title := strings.TrimPrefix(u.Path, "/wiki/")
	if title == u.Path || title == "" {
		return ""
	}
	if _, rest, found := strings.Cut(title, ":"); found {
		title = rest
	}
	if decoded, err := url.PathUnescape(title); err == nil {
		title = decoded
	}
	return strings.ReplaceAll(title, "_", " ")
}

// cleanText collapses runs of whitespace and trims the result.
func cleanText(s string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}
