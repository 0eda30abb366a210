package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/fandomtools/wikicrawl/internal/crawler"
	"github.com/fandomtools/wikicrawl/internal/log"
	"github.com/spf13/cobra"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <project-name>",
		Short: "Show the crawl state of a project",
		Long: `Status prints the frontier and checkpoint state of a project: how many
URLs are queued, visited, and failed, plus the statistics of the last
checkpointed run and the archive's per-namespace page counts.

Examples:
  # Show the state of the starwars project
  wikicrawl status starwars`,
		Args: cobra.ExactArgs(1),
		RunE: runStatusCmd,
	}

	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .wikicrawl.yml in current, XDG config, or home directory)")
	cmd.Flags().String("data-dir", "",
		"Workspace root directory (overrides config; \"xdg\" selects the platform data directory)")

	return cmd
}

// runStatusCmd executes the status command.
func runStatusCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadCrawlConfig(cmd)
	if err != nil {
		return err
	}

	projectName := args[0]
	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))

	orch, err := crawler.New(projectName, cfg, crawler.WithLogger(logger))
	if err != nil {
		return err
	}
	defer orch.Close()

	frontierStats, checkpoint, err := orch.Status()
	if err != nil {
		return fmt.Errorf("failed to read project state: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Project:   %s\n", projectName)
	fmt.Fprintf(out, "Workspace: %s\n\n", orch.ProjectPath())

	fmt.Fprintln(out, "FRONTIER")
	fmt.Fprintf(out, "  Queued:  %d\n", frontierStats.QueueSize)
	fmt.Fprintf(out, "  Visited: %d\n", frontierStats.VisitedCount)
	fmt.Fprintf(out, "  Failed:  %d\n", frontierStats.FailedCount)

	if checkpoint == nil {
		fmt.Fprintln(out, "\nNo checkpoint found; this project has not been crawled yet.")
	} else {
		fmt.Fprintln(out, "\nLAST CHECKPOINT")
		fmt.Fprintf(out, "  Saved:   %s\n", checkpoint.Timestamp.Format("2006-01-02 15:04:05 MST"))
		fmt.Fprintf(out, "  Target:  %s\n", checkpoint.TargetDomainURL)
		if stats := checkpoint.Statistics; stats != nil {
			fmt.Fprintf(out, "  Run ID:  %s\n", stats.RunID)
			fmt.Fprintf(out, "  Crawled: %d pages (%d attempted, %d errors)\n",
				stats.PagesCrawled, stats.PagesAttempted, stats.Errors)
		}
	}

	if contentStats, err := orch.ContentStats(context.Background()); err == nil && contentStats != nil {
		fmt.Fprintln(out, "\nARCHIVE")
		fmt.Fprintf(out, "  Total pages: %d\n", contentStats.TotalPages)

		namespaces := make([]string, 0, len(contentStats.ByNamespace))
		for ns := range contentStats.ByNamespace {
			namespaces = append(namespaces, ns)
		}
		sort.Strings(namespaces)
		for _, ns := range namespaces {
			fmt.Fprintf(out, "  %-12s %d\n", ns+":", contentStats.ByNamespace[ns])
		}
	}

	return nil
}
