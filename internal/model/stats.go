package model

import (
	"time"

	"github.com/google/uuid"
)

// Statistics holds the aggregate counters for a single crawl run.
// It is created when the run starts, mutated throughout the loop, and
// persisted inside every Checkpoint.
type Statistics struct {
	// RunID uniquely identifies the crawl run that produced these numbers.
	RunID string `json:"run_id"`

	// StartTime is when the run began, in UTC.
	StartTime time.Time `json:"start_time"`

	// EndTime is when the run finished, in UTC. Zero while running.
	EndTime time.Time `json:"end_time,omitzero"`

	// DurationSeconds is the wall-clock length of the run.
	DurationSeconds float64 `json:"duration_seconds"`

	// PagesCrawled counts pages that yielded usable content.
	PagesCrawled int `json:"pages_crawled"`

	// PagesAttempted counts every URL pulled from the frontier.
	PagesAttempted int `json:"pages_attempted"`

	// Errors counts per-page failures. These never abort the run.
	Errors int `json:"errors"`

	// CharactersFound accumulates mention counts reported by the extractor.
	CharactersFound int `json:"characters_found"`

	// URLsInQueue is the frontier size at the time of the snapshot.
	URLsInQueue int `json:"urls_in_queue"`

	// FatalError carries the message of an unexpected orchestration error.
	// Empty for runs that completed normally.
	FatalError string `json:"error,omitempty"`
}

// NewStatistics returns run statistics with a fresh run ID and the
// start time set to now.
func NewStatistics() *Statistics {
	return &Statistics{
		RunID:     uuid.NewString(),
		StartTime: time.Now().UTC(),
	}
}

// Finalize records the end time and duration of the run.
func (s *Statistics) Finalize() {
	s.EndTime = time.Now().UTC()
	s.DurationSeconds = s.EndTime.Sub(s.StartTime).Seconds()
}

// Checkpoint is a durable snapshot of a crawl run. It is overwritten,
// not versioned, on each save; the frontier files carry the queue state
// so the checkpoint only needs statistics and the run's target domain.
type Checkpoint struct {
	// Statistics is the run's counters at the time of the snapshot.
	Statistics *Statistics `json:"statistics"`

	// Timestamp is when the checkpoint was written, in UTC.
	Timestamp time.Time `json:"timestamp"`

	// TargetDomainURL is the first seed URL of the run. It anchors the
	// same-site restriction and lets a resumed run restore its filter.
	TargetDomainURL string `json:"target_domain_url"`
}
