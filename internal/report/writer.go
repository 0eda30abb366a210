package report

import (
	"io"
	"sort"

	"github.com/fandomtools/wikicrawl/internal/model"
)

// Summary aggregates everything a crawl run report needs: the run's
// statistics plus the archive and frontier views that the statistics
// alone don't carry.
type Summary struct {
	// ProjectName is the crawl project the run belongs to.
	ProjectName string `json:"project_name"`

	// TargetURL is the run's target domain URL.
	TargetURL string `json:"target_url"`

	// Statistics is the run's final counters.
	Statistics *model.Statistics `json:"statistics"`

	// NamespaceCounts is the archived-page count per wiki namespace.
	NamespaceCounts map[string]int `json:"namespace_counts,omitempty"`

	// FailedURLs maps each failed URL to its last error message.
	FailedURLs map[string]string `json:"failed_urls,omitempty"`
}

// failedList returns the failed URLs sorted for stable output.
func (s *Summary) failedList() [][2]string {
	keys := make([]string, 0, len(s.FailedURLs))
	for url := range s.FailedURLs {
		keys = append(keys, url)
	}
	sort.Strings(keys)

	list := make([][2]string, 0, len(keys))
	for _, url := range keys {
		list = append(list, [2]string{url, s.FailedURLs[url]})
	}
	return list
}

// Writer defines the interface for report output.
// Implementations write crawl summaries in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs the summary to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(summary *Summary) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write summaries, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the summary to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(summary *Summary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
