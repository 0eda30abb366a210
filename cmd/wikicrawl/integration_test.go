package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// startTestWiki serves a tiny three-page wiki over HTTP for end-to-end
// command tests.
func startTestWiki(t *testing.T) *httptest.Server {
	t.Helper()

	page := func(title string, links ...string) string {
		var sb strings.Builder
		sb.WriteString("<html><head><title>" + title + "</title></head><body>")
		sb.WriteString("<h1 class=\"page-header__title\">" + title + "</h1>")
		sb.WriteString("<div class=\"mw-parser-output\"><p>")
		sb.WriteString(title + " is an article with enough body text to pass content extraction checks.")
		sb.WriteString("</p>")
		for _, link := range links {
			sb.WriteString(fmt.Sprintf("<a href=%q>%s</a>", link, link))
		}
		sb.WriteString("</div></body></html>")
		return sb.String()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/wiki/Start", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page("Start", "/wiki/Second", "/wiki/Third"))
	})
	mux.HandleFunc("/wiki/Second", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page("Second"))
	})
	mux.HandleFunc("/wiki/Third", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page("Third"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// TestCrawlStatusResume exercises the crawl, status, and resume commands
// end to end against a local test wiki.
func TestCrawlStatusResume(t *testing.T) {
	srv := startTestWiki(t)
	dataDir := t.TempDir()
	cfgPath := writeTestConfig(t, dataDir)

	reportPath := filepath.Join(t.TempDir(), "report.json")

	// Crawl one page; the two discovered links stay queued.
	crawlCmd := NewCrawlCmd()
	crawlCmd.SetArgs([]string{
		"-c", cfgPath,
		"-p", "1",
		"-j", "-o", reportPath,
		"testwiki", srv.URL + "/wiki/Start",
	})
	if err := crawlCmd.Execute(); err != nil {
		t.Fatalf("crawl failed: %v", err)
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}

	var parsed struct {
		Summary struct {
			Statistics struct {
				PagesCrawled int `json:"pages_crawled"`
				URLsInQueue  int `json:"urls_in_queue"`
			} `json:"statistics"`
		} `json:"summary"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if parsed.Summary.Statistics.PagesCrawled != 1 {
		t.Errorf("expected 1 page crawled, got %d", parsed.Summary.Statistics.PagesCrawled)
	}
	if parsed.Summary.Statistics.URLsInQueue != 2 {
		t.Errorf("expected 2 queued URLs, got %d", parsed.Summary.Statistics.URLsInQueue)
	}

	// Status reflects the interrupted crawl.
	var statusOut bytes.Buffer
	statusCmd := NewStatusCmd()
	statusCmd.SetOut(&statusOut)
	statusCmd.SetArgs([]string{"-c", cfgPath, "testwiki"})
	if err := statusCmd.Execute(); err != nil {
		t.Fatalf("status failed: %v", err)
	}
	output := statusOut.String()
	if !strings.Contains(output, "Queued:  2") {
		t.Errorf("expected status to show 2 queued URLs, got:\n%s", output)
	}
	if !strings.Contains(output, "LAST CHECKPOINT") {
		t.Errorf("expected status to show a checkpoint, got:\n%s", output)
	}

	// Resume drains the remaining queue.
	resumeReport := filepath.Join(t.TempDir(), "resume.json")
	resumeCmd := NewResumeCmd()
	resumeCmd.SetArgs([]string{
		"-c", cfgPath,
		"-j", "-o", resumeReport,
		"testwiki",
	})
	if err := resumeCmd.Execute(); err != nil {
		t.Fatalf("resume failed: %v", err)
	}

	data, err = os.ReadFile(resumeReport)
	if err != nil {
		t.Fatalf("failed to read resume report: %v", err)
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("resume report is not valid JSON: %v", err)
	}
	if parsed.Summary.Statistics.PagesCrawled != 2 {
		t.Errorf("expected 2 pages crawled on resume, got %d", parsed.Summary.Statistics.PagesCrawled)
	}
	if parsed.Summary.Statistics.URLsInQueue != 0 {
		t.Errorf("expected empty queue after resume, got %d", parsed.Summary.Statistics.URLsInQueue)
	}
}

// TestResumeWithoutCheckpoint verifies resume refuses projects that were
// never crawled.
func TestResumeWithoutCheckpoint(t *testing.T) {
	cfgPath := writeTestConfig(t, t.TempDir())

	cmd := NewResumeCmd()
	cmd.SetArgs([]string{"-c", cfgPath, "fresh-project"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for project without checkpoint")
	}
	if !strings.Contains(err.Error(), "checkpoint") {
		t.Errorf("expected checkpoint error, got %v", err)
	}
}

// TestStatusFreshProject verifies status works before any crawl.
func TestStatusFreshProject(t *testing.T) {
	cfgPath := writeTestConfig(t, t.TempDir())

	var out bytes.Buffer
	cmd := NewStatusCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"-c", cfgPath, "untouched"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if !strings.Contains(out.String(), "has not been crawled yet") {
		t.Errorf("expected fresh-project message, got:\n%s", out.String())
	}
}
