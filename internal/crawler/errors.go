package crawler

import "errors"

// Validation errors returned before any I/O happens.
var (
	// ErrEmptyProjectName is returned when the project name is empty or
	// only whitespace.
	ErrEmptyProjectName = errors.New("project name must be a non-empty string")

	// ErrInvalidProjectName is returned when the project name contains
	// characters that are unsafe in a directory name.
	ErrInvalidProjectName = errors.New(`project name must not contain / \ : * ? " < > |`)

	// ErrNoSeeds is returned when Crawl is called without seed URLs.
	ErrNoSeeds = errors.New("at least one seed url is required")

	// ErrInvalidSeed is returned when a seed URL is malformed or uses an
	// unsupported scheme.
	ErrInvalidSeed = errors.New("seed url must be a well-formed http(s) url")

	// ErrInvalidMaxPages is returned for a negative page limit.
	ErrInvalidMaxPages = errors.New("max pages must be positive, or zero for no limit")

	// ErrNoCheckpoint is returned by Resume when the project workspace
	// has no checkpoint to restore the target domain from.
	ErrNoCheckpoint = errors.New("no checkpoint found: nothing to resume")
)
