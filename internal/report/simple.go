package report

import (
	"fmt"
	"io"
	"strings"
)

// SimpleWriter outputs human-readable text summaries.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no entries are shown.
	showEmpty bool

	// verbose enables the full failed-URL error messages.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the crawl summary in human-readable format.
func (w *SimpleWriter) Write(summary *Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeStatistics(&sb, summary)
	w.writeNamespaces(&sb, summary)
	w.writeFailures(&sb, summary)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *Summary) {
	stats := summary.Statistics

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                          CRAWL REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Project:   %s\n", summary.ProjectName))
	sb.WriteString(fmt.Sprintf("Target:    %s\n", summary.TargetURL))
	sb.WriteString(fmt.Sprintf("Run ID:    %s\n", stats.RunID))
	sb.WriteString(fmt.Sprintf("Started:   %s\n", stats.StartTime.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Duration:  %.1fs\n", stats.DurationSeconds))

	switch {
	case stats.FatalError != "":
		sb.WriteString(fmt.Sprintf("Status:    ABORTED - %s\n", stats.FatalError))
	case stats.URLsInQueue > 0:
		sb.WriteString("Status:    Paused (resumable)\n")
	default:
		sb.WriteString("Status:    Complete\n")
	}

	sb.WriteString("\n")
}

// writeStatistics writes the crawl counters section.
func (w *SimpleWriter) writeStatistics(sb *strings.Builder, summary *Summary) {
	stats := summary.Statistics

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("CRAWL STATISTICS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Pages crawled:     %d\n", stats.PagesCrawled))
	sb.WriteString(fmt.Sprintf("  Pages attempted:   %d\n", stats.PagesAttempted))
	sb.WriteString(fmt.Sprintf("  Errors:            %d\n", stats.Errors))
	sb.WriteString(fmt.Sprintf("  Characters found:  %d\n", stats.CharactersFound))
	sb.WriteString(fmt.Sprintf("  URLs still queued: %d\n", stats.URLsInQueue))
	sb.WriteString("\n")
}

// writeNamespaces writes the per-namespace archive counts.
func (w *SimpleWriter) writeNamespaces(sb *strings.Builder, summary *Summary) {
	if len(summary.NamespaceCounts) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("PAGES BY NAMESPACE\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(summary.NamespaceCounts) == 0 {
		sb.WriteString("  No pages archived\n")
	} else {
		for _, ns := range sortedKeys(summary.NamespaceCounts) {
			sb.WriteString(fmt.Sprintf("  %-20s %d\n", ns, summary.NamespaceCounts[ns]))
		}
	}
	sb.WriteString("\n")
}

// writeFailures writes the failed URLs section.
func (w *SimpleWriter) writeFailures(sb *strings.Builder, summary *Summary) {
	if len(summary.FailedURLs) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("FAILED URLS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(summary.FailedURLs) == 0 {
		sb.WriteString("  No failed URLs\n")
	} else {
		for _, f := range summary.failedList() {
			sb.WriteString(fmt.Sprintf("  [!] %s\n", f[0]))
			if w.verbose {
				sb.WriteString(fmt.Sprintf("      %s\n", f[1]))
			}
		}
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by wikicrawl\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
