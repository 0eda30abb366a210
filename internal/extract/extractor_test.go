package extract

import (
	"strings"
	"testing"

	"github.com/fandomtools/wikicrawl/internal/model"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Luke Skywalker | Wookieepedia</title></head>
<body>
<nav><a href="/wiki/Special:Random">Random page</a></nav>
<h1 class="page-header__title">Luke Skywalker</h1>
<div class="page-header__categories">
  <a href="/wiki/Category:Jedi">Jedi</a>
  <a href="/wiki/Category:Humans">Humans</a>
</div>
<div class="mw-parser-output">
  <aside class="portable-infobox">
    <h2>Luke Skywalker</h2>
    <div><dt>Species</dt><dd>Human</dd></div>
    <div><dt>Homeworld</dt><dd>Tatooine</dd></div>
  </aside>
  <p>Luke Skywalker was a legendary Jedi Master who fought in the Galactic
  Civil War during the reign of the Galactic Empire, trained by
  <a href="/wiki/Obi-Wan_Kenobi">Obi-Wan Kenobi</a> and
  <a href="/wiki/Yoda">Yoda</a>. See also
  <a href="/wiki/Category:Jedi">the Jedi category</a> and
  <a href="https://external.example.com/luke">an external site</a>.</p>
  <script>trackPageView();</script>
</div>
<footer>About - Terms of Use</footer>
</body>
</html>`

const baseURL = "https://starwars.fandom.com/wiki/Luke_Skywalker"

func TestExtract(t *testing.T) {
	t.Parallel()

	extractor := NewExtractor([]string{"Main"})
	result, err := extractor.Extract(&model.Page{URL: baseURL, Body: samplePage})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t.Run("title", func(t *testing.T) {
		if result.Title != "Luke Skywalker" {
			t.Errorf("expected article title, got %q", result.Title)
		}
	})

	t.Run("main content", func(t *testing.T) {
		if !strings.Contains(result.MainContent, "legendary Jedi Master") {
			t.Errorf("expected article text, got %q", result.MainContent)
		}
		if strings.Contains(result.MainContent, "Random page") {
			t.Error("expected navigation to be stripped")
		}
		if strings.Contains(result.MainContent, "trackPageView") {
			t.Error("expected scripts to be stripped")
		}
		if strings.Contains(result.MainContent, "Tatooine") {
			t.Error("expected the infobox to be stripped from body text")
		}
	})

	t.Run("links are absolute and deduplicated", func(t *testing.T) {
		want := "https://starwars.fandom.com/wiki/Obi-Wan_Kenobi"
		if !contains(result.Links, want) {
			t.Errorf("expected %q among links %v", want, result.Links)
		}
		if !contains(result.Links, "https://external.example.com/luke") {
			t.Error("expected off-site links to be reported; filtering is the caller's job")
		}
		seen := map[string]int{}
		for _, l := range result.Links {
			seen[l]++
		}
		for l, n := range seen {
			if n > 1 {
				t.Errorf("link %q appears %d times", l, n)
			}
		}
	})

	t.Run("infobox", func(t *testing.T) {
		if got := result.Infobox["Species"]; got != "Human" {
			t.Errorf("expected Species=Human, got %q", got)
		}
		if got := result.Infobox["Homeworld"]; got != "Tatooine" {
			t.Errorf("expected Homeworld=Tatooine, got %q", got)
		}
	})

	t.Run("categories", func(t *testing.T) {
		if !contains(result.Categories, "Jedi") || !contains(result.Categories, "Humans") {
			t.Errorf("expected Jedi and Humans, got %v", result.Categories)
		}
	})

	t.Run("namespace", func(t *testing.T) {
		if result.Namespace != "Main" {
			t.Errorf("expected Main namespace, got %q", result.Namespace)
		}
	})

	t.Run("mentions come from target-namespace article links", func(t *testing.T) {
		if !contains(result.Mentions, "Obi-Wan Kenobi") {
			t.Errorf("expected Obi-Wan Kenobi among mentions %v", result.Mentions)
		}
		if !contains(result.Mentions, "Yoda") {
			t.Errorf("expected Yoda among mentions %v", result.Mentions)
		}
		if contains(result.Mentions, "Jedi") {
			t.Errorf("category links must not count as mentions, got %v", result.Mentions)
		}
	})

	t.Run("not a disambiguation page", func(t *testing.T) {
		if result.IsDisambiguation {
			t.Error("expected a regular article")
		}
	})
}

func TestExtractEdgeCases(t *testing.T) {
	t.Parallel()

	t.Run("short body yields empty main content", func(t *testing.T) {
		t.Parallel()

		extractor := NewExtractor(nil)
		page := &model.Page{
			URL:  baseURL,
			Body: `<html><body><div class="mw-parser-output"><p>Stub.</p></div></body></html>`,
		}
		result, err := extractor.Extract(page)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.MainContent != "" {
			t.Errorf("expected empty content for a stub page, got %q", result.MainContent)
		}
	})

	t.Run("disambiguation page is flagged", func(t *testing.T) {
		t.Parallel()

		extractor := NewExtractor(nil)
		page := &model.Page{
			URL:  "https://starwars.fandom.com/wiki/Skywalker",
			Body: `<html><body><div class="mw-parser-output"><p>Skywalker may refer to: several members of the Skywalker family across the galaxy far far away.</p></div></body></html>`,
		}
		result, err := extractor.Extract(page)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.IsDisambiguation {
			t.Error("expected disambiguation flag")
		}
	})

	t.Run("empty body", func(t *testing.T) {
		t.Parallel()

		extractor := NewExtractor(nil)
		result, err := extractor.Extract(&model.Page{URL: baseURL, Body: ""})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.MainContent != "" || result.Title != "" {
			t.Errorf("expected empty result, got %+v", result)
		}
	})

	t.Run("classic wikitable infobox", func(t *testing.T) {
		t.Parallel()

		extractor := NewExtractor(nil)
		page := &model.Page{
			URL: baseURL,
			Body: `<html><body><table class="infobox">
				<tr><th>Born</th><td>19 BBY</td></tr>
				<tr><th>Died</th><td>34 ABY</td></tr>
			</table></body></html>`,
		}
		result, err := extractor.Extract(page)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := result.Infobox["Born"]; got != "19 BBY" {
			t.Errorf("expected Born=19 BBY, got %q", got)
		}
	})
}

func contains(ss []string, want string) bool {
	for _, s := range ss {
		if s == want {
			return true
		}
	}
	return false
}
