package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fandomtools/wikicrawl/internal/model"
)

// checkpointFile is the checkpoint file name under the state directory.
const checkpointFile = "checkpoint.json"

// Store reads and writes crawl checkpoints in a project's state directory.
//
// Design decision: the checkpoint is overwritten on each save rather than
// versioned, because:
//  1. Only the latest snapshot is needed to resume a run.
//  2. The frontier files already carry the expensive-to-rebuild state.
//  3. A temp-file rename makes each overwrite atomic, so a crash mid-save
//     leaves the previous checkpoint intact.
type Store struct {
	// dir is the state directory, typically <project>/crawl_state.
	dir string

	logger *slog.Logger
}

// NewStore creates a checkpoint store rooted at dir, creating the
// directory if needed.
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// Save writes the checkpoint, stamping it with the current time.
func (s *Store) Save(cp *model.Checkpoint) error {
	cp.Timestamp = time.Now().UTC()

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	path := s.path()
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}

	s.logger.Debug("checkpoint saved",
		slog.String("path", path),
		slog.Int("pages_crawled", cp.Statistics.PagesCrawled))
	return nil
}

// Load returns the stored checkpoint, or nil if none exists. A corrupted
// checkpoint is treated as absent so a damaged file never blocks a new
// crawl; the damage is logged.
func (s *Store) Load() (*model.Checkpoint, error) {
	data, err := os.ReadFile(s.path()) //nolint:gosec // Workspace paths are crawler-owned
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	var cp model.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		s.logger.Warn("discarding corrupted checkpoint",
			slog.String("path", s.path()),
			slog.String("error", err.Error()))
		return nil, nil
	}
	return &cp, nil
}

// Has reports whether a checkpoint file exists.
func (s *Store) Has() bool {
	_, err := os.Stat(s.path())
	return err == nil
}

// Clear removes the checkpoint file. Clearing an absent checkpoint is
// not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove checkpoint: %w", err)
	}
	return nil
}

func (s *Store) path() string {
	return filepath.Join(s.dir, checkpointFile)
}
