// Package state persists crawl checkpoints so an interrupted run can be
// resumed. A checkpoint is a single JSON document holding the run's
// statistics and target domain; the frontier persists the queue and
// visited set separately, so a checkpoint plus the frontier files fully
// describe a resumable run.
package state
