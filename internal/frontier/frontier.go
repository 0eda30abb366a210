package frontier

import (
	"container/heap"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Persisted file names under the cache directory.
const (
	queueFile   = "queue.json"
	visitedFile = "visited.json"
	failedFile  = "failed.json"
)

// Entry is a queued URL with its crawl priority.
// Higher priorities dequeue first.
type Entry struct {
	// URL is the absolute URL awaiting a fetch.
	URL string `json:"url"`

	// Priority orders the queue; entries with equal priority keep their
	// relative insertion order.
	Priority int `json:"priority"`

	// seq is the insertion sequence number, used as the FIFO tie-break.
	// It is not persisted; reloading assigns fresh sequence numbers in
	// file order, which preserves the observable dequeue order.
	seq int
}

// Stats summarizes the frontier's collections.
type Stats struct {
	// QueueSize is the number of URLs awaiting a fetch.
	QueueSize int `json:"queue_size"`

	// VisitedCount is the number of successfully processed URLs.
	VisitedCount int `json:"visited_count"`

	// FailedCount is the number of URLs whose last attempt failed.
	FailedCount int `json:"failed_count"`
}

// Frontier manages the URL queue, visited set, and failed map for one
// project workspace.
type Frontier struct {
	// queue is the priority heap of pending entries. It may contain
	// stale entries for URLs that were since visited; queued is the
	// authority and stale entries are skipped on dequeue.
	queue entryHeap

	// queued tracks which URLs are currently in the queue.
	queued map[string]bool

	// visited is the set of successfully processed URLs. It only grows.
	visited map[string]bool

	// failed maps a URL to its last error message. Cleared on success.
	failed map[string]string

	// seq is the next insertion sequence number.
	seq int

	// cacheDir is where the three JSON files live.
	cacheDir string

	logger *slog.Logger
}

// New creates a Frontier backed by the given cache directory, creating the
// directory if needed and loading any prior persisted state. Corrupted or
// missing state files reset the corresponding collection to empty.
func New(cacheDir string, logger *slog.Logger) (*Frontier, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(cacheDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create frontier cache directory: %w", err)
	}

	f := &Frontier{
		queue:    make(entryHeap, 0),
		queued:   make(map[string]bool),
		visited:  make(map[string]bool),
		failed:   make(map[string]string),
		cacheDir: cacheDir,
		logger:   logger,
	}
	f.load()
	return f, nil
}

// Enqueue adds a URL with the given priority. It returns false without
// modifying the queue when the URL is blank, already visited, or already
// queued.
func (f *Frontier) Enqueue(url string, priority int) bool {
	url = strings.TrimSpace(url)
	if url == "" {
		return false
	}
	if f.visited[url] || f.queued[url] {
		return false
	}

	heap.Push(&f.queue, &Entry{URL: url, Priority: priority, seq: f.seq})
	f.seq++
	f.queued[url] = true
	return true
}

// EnqueueMany adds each URL with the given priority and returns how many
// were actually added.
func (f *Frontier) EnqueueMany(urls []string, priority int) int {
	added := 0
	for _, url := range urls {
		if f.Enqueue(url, priority) {
			added++
		}
	}
	return added
}

// Dequeue pops the highest-priority (then earliest-inserted) URL.
// It returns false when the queue is empty.
func (f *Frontier) Dequeue() (string, bool) {
	for f.queue.Len() > 0 {
		entry := heap.Pop(&f.queue).(*Entry)
		if !f.queued[entry.URL] {
			// Stale heap entry for a URL removed out of band.
			continue
		}
		delete(f.queued, entry.URL)
		return entry.URL, true
	}
	return "", false
}

// MarkVisited records a URL as successfully processed. Any failed-map entry
// for the URL is cleared, and a still-queued duplicate is dropped so the
// queue and visited set never overlap.
func (f *Frontier) MarkVisited(url string) {
	f.visited[url] = true
	delete(f.failed, url)
	delete(f.queued, url)
}

// MarkFailed records (or overwrites) the last error message for a URL.
// A URL that was already visited stays visited.
func (f *Frontier) MarkFailed(url, errMsg string) {
	f.failed[url] = errMsg
}

// IsVisited reports whether the URL has been successfully processed.
func (f *Frontier) IsVisited(url string) bool {
	return f.visited[url]
}

// IsQueued reports whether the URL is currently awaiting a fetch.
func (f *Frontier) IsQueued(url string) bool {
	return f.queued[url]
}

// Size returns the number of URLs awaiting a fetch.
func (f *Frontier) Size() int {
	return len(f.queued)
}

// VisitedCount returns the number of successfully processed URLs.
func (f *Frontier) VisitedCount() int {
	return len(f.visited)
}

// FailedURLs returns a copy of the failed-URL map.
func (f *Frontier) FailedURLs() map[string]string {
	out := make(map[string]string, len(f.failed))
	for url, msg := range f.failed {
		out[url] = msg
	}
	return out
}

// Statistics returns counts over the three collections.
func (f *Frontier) Statistics() Stats {
	return Stats{
		QueueSize:    len(f.queued),
		VisitedCount: len(f.visited),
		FailedCount:  len(f.failed),
	}
}

// ClearQueue drops all pending URLs but keeps the visited set and failed map.
func (f *Frontier) ClearQueue() {
	f.queue = make(entryHeap, 0)
	f.queued = make(map[string]bool)
}

// Persist writes the three collections to the cache directory.
// The queue file lists entries in dequeue order so the file is
// human-inspectable and reloads reproduce the same dequeue sequence.
func (f *Frontier) Persist() error {
	entries := f.snapshotQueue()
	if err := writeJSON(filepath.Join(f.cacheDir, queueFile), entries); err != nil {
		return fmt.Errorf("failed to persist queue: %w", err)
	}

	visited := make([]string, 0, len(f.visited))
	for url := range f.visited {
		visited = append(visited, url)
	}
	sort.Strings(visited)
	if err := writeJSON(filepath.Join(f.cacheDir, visitedFile), visited); err != nil {
		return fmt.Errorf("failed to persist visited set: %w", err)
	}

	if err := writeJSON(filepath.Join(f.cacheDir, failedFile), f.failed); err != nil {
		return fmt.Errorf("failed to persist failed map: %w", err)
	}
	return nil
}

// snapshotQueue returns the live queue entries in dequeue order without
// disturbing the heap.
func (f *Frontier) snapshotQueue() []Entry {
	scratch := make(entryHeap, 0, f.queue.Len())
	for _, e := range f.queue {
		if f.queued[e.URL] {
			scratch = append(scratch, e)
		}
	}
	heap.Init(&scratch)

	entries := make([]Entry, 0, scratch.Len())
	for scratch.Len() > 0 {
		e := heap.Pop(&scratch).(*Entry)
		entries = append(entries, Entry{URL: e.URL, Priority: e.Priority})
	}
	return entries
}

// load restores persisted state. Each file that is missing or malformed
// resets its collection to empty; a partial cache never blocks a crawl.
func (f *Frontier) load() {
	var entries []Entry
	if err := readJSON(filepath.Join(f.cacheDir, queueFile), &entries); err != nil {
		if !os.IsNotExist(err) {
			f.logger.Warn("resetting corrupted queue file", "path", queueFile, "reason", err)
		}
		entries = nil
	}
	for _, e := range entries {
		f.Enqueue(e.URL, e.Priority)
	}

	var visited []string
	if err := readJSON(filepath.Join(f.cacheDir, visitedFile), &visited); err != nil {
		if !os.IsNotExist(err) {
			f.logger.Warn("resetting corrupted visited file", "path", visitedFile, "reason", err)
		}
		visited = nil
	}
	for _, url := range visited {
		f.visited[url] = true
		delete(f.queued, url)
	}

	failed := make(map[string]string)
	if err := readJSON(filepath.Join(f.cacheDir, failedFile), &failed); err != nil {
		if !os.IsNotExist(err) {
			f.logger.Warn("resetting corrupted failed file", "path", failedFile, "reason", err)
		}
		failed = make(map[string]string)
	}
	for url, msg := range failed {
		if !f.visited[url] {
			f.failed[url] = msg
		}
	}
}

// writeJSON writes v as indented JSON via a temp file rename so a crash
// mid-write cannot truncate prior state.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// readJSON reads path into v.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path) //nolint:gosec // Workspace paths are crawler-owned
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// entryHeap orders entries by descending priority, then ascending insertion
// sequence (FIFO within a priority).
type entryHeap []*Entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].Priority != h[j].Priority {
		return h[i].Priority > h[j].Priority
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) {
	*h = append(*h, x.(*Entry))
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return e
}
