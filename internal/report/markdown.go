package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs crawl summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the crawl summary in Markdown format.
func (w *MarkdownWriter) Write(summary *Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeStatistics(md, summary)
	w.writeNamespaces(md, summary)
	w.writeFailures(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *Summary) {
	md.H1("Crawl Report: " + summary.ProjectName)
	md.PlainText("")

	stats := summary.Statistics
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target", "`" + summary.TargetURL + "`"},
			{"Run ID", "`" + stats.RunID + "`"},
			{"Started", stats.StartTime.Format("2006-01-02 15:04:05 MST")},
			{"Duration", fmt.Sprintf("%.1fs", stats.DurationSeconds)},
			{"Status", w.statusText(summary)},
		},
	})
	md.PlainText("")
}

// statusText returns the status text based on how the run ended.
func (w *MarkdownWriter) statusText(summary *Summary) string {
	if summary.Statistics.FatalError != "" {
		return "❌ Aborted - " + summary.Statistics.FatalError
	}
	if summary.Statistics.URLsInQueue > 0 {
		return "⏸️ Paused (resumable)"
	}
	return "✅ Complete"
}

// writeStatistics writes the crawl counters section.
func (w *MarkdownWriter) writeStatistics(md *markdown.Markdown, summary *Summary) {
	stats := summary.Statistics

	md.H2("Crawl Statistics")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Value"},
		Rows: [][]string{
			{"Pages crawled", strconv.Itoa(stats.PagesCrawled)},
			{"Pages attempted", strconv.Itoa(stats.PagesAttempted)},
			{"Errors", strconv.Itoa(stats.Errors)},
			{"Characters found", strconv.Itoa(stats.CharactersFound)},
			{"URLs still queued", strconv.Itoa(stats.URLsInQueue)},
		},
	})
	md.PlainText("")

	switch {
	case stats.FatalError != "":
		md.Cautionf("The run aborted: %s. Resume to continue from the last checkpoint.", stats.FatalError)
	case stats.Errors > 0:
		md.Warningf("%d page(s) failed and were skipped. See the failed URLs section.", stats.Errors)
	default:
		md.Tip("All attempted pages were crawled without errors.")
	}
	md.PlainText("")
}

// writeNamespaces writes the namespace distribution with a pie chart.
func (w *MarkdownWriter) writeNamespaces(md *markdown.Markdown, summary *Summary) {
	if len(summary.NamespaceCounts) == 0 {
		return
	}

	md.H2("Pages by Namespace")
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Archived Pages by Namespace"),
		piechart.WithShowData(true),
	)
	for _, ns := range sortedKeys(summary.NamespaceCounts) {
		if count := summary.NamespaceCounts[ns]; count > 0 {
			chart.LabelAndIntValue(ns, uint64(count))
		}
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFailures writes the failed URLs table.
func (w *MarkdownWriter) writeFailures(md *markdown.Markdown, summary *Summary) {
	md.H2("Failed URLs")
	md.PlainText("")

	if len(summary.FailedURLs) == 0 {
		md.PlainText("No failed URLs.")
		md.PlainText("")
		return
	}

	failed := summary.failedList()
	rows := make([][]string, len(failed))
	for i, f := range failed {
		rows[i] = []string{
			truncateString(f[0], 80),
			truncateString(f[1], 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"URL", "Last Error"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by wikicrawl*")
}

// sortedKeys returns the map's keys in sorted order.
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
