package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fandomtools/wikicrawl/internal/crawler"
	"github.com/fandomtools/wikicrawl/internal/log"
	"github.com/fandomtools/wikicrawl/internal/model"
	"github.com/spf13/cobra"
)

// NewResumeCmd creates the resume command.
func NewResumeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume <project-name>",
		Short: "Continue an interrupted crawl from its last checkpoint",
		Long: `Resume continues a previously interrupted crawl. The frontier queue,
visited set, and target domain are restored from the project workspace,
so already-archived pages are not fetched again.

A project must have at least one checkpoint to be resumable; start a
new crawl with "wikicrawl crawl" first.

Examples:
  # Continue crawling with no page limit
  wikicrawl resume starwars

  # Continue for at most 50 more pages
  wikicrawl resume starwars -p 50`,
		Args: cobra.ExactArgs(1),
		RunE: runResumeCmd,
	}

	addCrawlFlags(cmd)
	return cmd
}

// runResumeCmd executes the resume command.
func runResumeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadCrawlConfig(cmd)
	if err != nil {
		return err
	}

	projectName := args[0]

	maxPages, err := cmd.Flags().GetInt("max-pages")
	if err != nil {
		return err
	}

	verbose := getVerboseFlag(cmd)
	logger := log.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	ctx, cancel := signalContext(logger)
	defer cancel()

	orch, err := crawler.New(projectName, cfg, crawler.WithLogger(logger))
	if err != nil {
		return err
	}
	defer orch.Close()

	fmt.Printf("Resuming project %q...\n", projectName)

	stats, resumeErr := withSpinner(verbose, " crawling...", func() (*model.Statistics, error) {
		return orch.Resume(ctx, maxPages)
	})

	// The target domain comes from the restored checkpoint, not from the
	// command line.
	targetURL := ""
	if _, cp, err := orch.Status(); err == nil && cp != nil {
		targetURL = cp.TargetDomainURL
	}

	return finishRun(cmd, orch, projectName, targetURL, stats, resumeErr, verbose, logger)
}
