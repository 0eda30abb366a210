package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fandomtools/wikicrawl/internal/config"
	"github.com/fandomtools/wikicrawl/internal/crawler"
	"github.com/fandomtools/wikicrawl/internal/log"
	"github.com/fandomtools/wikicrawl/internal/model"
	"github.com/fandomtools/wikicrawl/internal/report"
	"github.com/spf13/cobra"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <project-name> <seed-url>...",
		Short: "Crawl a wiki starting from one or more seed URLs",
		Long: `Crawl fetches wiki pages starting from the given seed URLs, one page
at a time, honoring robots.txt and per-domain rate limits.

The first seed URL anchors the crawl: only links on the same site are
followed. Extracted articles are archived under the project workspace
at <data-dir>/projects/<project-name>.

Progress is checkpointed periodically, so an interrupted crawl can be
continued with "wikicrawl resume".

Examples:
  # Crawl up to 100 pages starting from one article
  wikicrawl crawl starwars https://starwars.fandom.com/wiki/Luke_Skywalker -p 100

  # Crawl without a page limit (stops when the frontier is empty)
  wikicrawl crawl starwars https://starwars.fandom.com/wiki/Main_Page

  # Use a custom configuration file and write a Markdown report
  wikicrawl crawl -c myconfig.yml -m -o report.md starwars https://starwars.fandom.com/wiki/Main_Page`,
		Args: cobra.MinimumNArgs(2),
		RunE: runCrawlCmd,
	}

	addCrawlFlags(cmd)
	return cmd
}

// addCrawlFlags registers the flag set shared by crawl and resume.
func addCrawlFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .wikicrawl.yml in current, XDG config, or home directory)")
	cmd.Flags().IntP("max-pages", "p", 0,
		"Maximum number of pages to crawl (0 = unlimited)")
	cmd.Flags().String("data-dir", "",
		"Workspace root directory (overrides config; \"xdg\" selects the platform data directory)")
	cmd.Flags().Duration("delay", 0,
		"Minimum delay between requests to the same domain (overrides config)")
	cmd.Flags().DurationP("timeout", "t", 0,
		"Per-request HTTP timeout (overrides config)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadCrawlConfig(cmd)
	if err != nil {
		return err
	}

	projectName := args[0]
	seeds := args[1:]

	maxPages, err := cmd.Flags().GetInt("max-pages")
	if err != nil {
		return err
	}

	// Set up structured logging
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

	fmt.Printf("Crawling %s (project %q)...\n", seeds[0], projectName)

	stats, crawlErr := withSpinner(verbose, " crawling...", func() (*model.Statistics, error) {
		return orch.Crawl(ctx, seeds, maxPages)
	})

	return finishRun(cmd, orch, projectName, seeds[0], stats, crawlErr, verbose, logger)
}

// finishRun emits the report for a completed or interrupted run and maps
// the crawl error to the command's exit behavior. An interrupt is not an
// error: state is already persisted and the run can be resumed.
func finishRun(cmd *cobra.Command, orch *crawler.Orchestrator, projectName, targetURL string, stats *model.Statistics, runErr error, verbose bool, logger *slog.Logger) error {
	if stats != nil {
		summary := buildSummary(orch, projectName, targetURL, stats)
		if err := outputReport(cmd, summary, verbose); err != nil {
			logger.Error("report failed", "project", projectName, "error", err)
		}
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			fmt.Printf("\nCrawl interrupted; progress saved. Run \"wikicrawl resume %s\" to continue.\n", projectName)
			return nil
		}
		return runErr
	}
	return nil
}

// buildSummary assembles the report input from the run's final state.
func buildSummary(orch *crawler.Orchestrator, projectName, targetURL string, stats *model.Statistics) *report.Summary {
	summary := &report.Summary{
		ProjectName: projectName,
		TargetURL:   targetURL,
		Statistics:  stats,
		FailedURLs:  orch.FailedURLs(),
	}

	// Namespace counts come from the archive index. A custom saver has
	// no index, in which case the section is simply omitted.
	if contentStats, err := orch.ContentStats(context.Background()); err == nil && contentStats != nil {
		summary.NamespaceCounts = contentStats.ByNamespace
	}

	return summary
}

// outputReport writes the crawl summary in the requested format.
func outputReport(cmd *cobra.Command, summary *report.Summary, verbose bool) error {
	jsonReport, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownReport, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonReport && markdownReport {
		return errors.New("--json and --markdown are mutually exclusive")
	}

	reportFile, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	// Determine output destination
	var output *os.File
	if reportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(reportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(reportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	switch {
	case jsonReport:
		writer := report.NewJSONWriter(output, report.WithPrettyPrint(), report.WithVersion(getVersion()))
		_, err := writer.Write(summary)
		return err
	case markdownReport:
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(summary)
		return err
	default:
		writer := report.NewSimpleWriter(output, report.WithVerbose(verbose))
		_, err := writer.Write(summary)
		return err
	}
}

// loadCrawlConfig locates and loads the configuration file, then applies
// flag overrides. The four required settings (robots compliance, user
// agent, default delay, target namespaces) only come from the file, so a
// missing file is an error rather than a silent fallback.
func loadCrawlConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	path := config.Find(configPath)
	if path == "" {
		if configPath != "" {
			// User explicitly specified a config file that doesn't exist
			return nil, fmt.Errorf("configuration file not found: %s", configPath)
		}
		return nil, fmt.Errorf("no configuration file found (run \"wikicrawl init\" to create one)")
	}

	file, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Resolve(file)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", path, err)
	}

	if err := applyFlagOverrides(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)
	return cfg, nil
}

// applyFlagOverrides lets CLI flags override optional file settings.
// Changed() is false for flags a command does not define, so commands
// with a narrower flag set share this helper safely.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("data-dir") {
		dataDir, err := cmd.Flags().GetString("data-dir")
		if err != nil {
			return err
		}
		if dataDir == "xdg" {
			dataDir = config.XDGDataDir()
		}
		cfg.DataDir = dataDir
	}

	if cmd.Flags().Changed("delay") {
		delay, err := cmd.Flags().GetDuration("delay")
		if err != nil {
			return err
		}
		cfg.DefaultDelay = delay
	}

	if cmd.Flags().Changed("timeout") {
		timeout, err := cmd.Flags().GetDuration("timeout")
		if err != nil {
			return err
		}
		cfg.Timeout = timeout
	}

	return cfg.Validate()
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return ctx, cancel
}

// withSpinner runs fn with a terminal spinner unless verbose logging is
// on, in which case the spinner would interleave with log lines.
func withSpinner(verbose bool, suffix string, fn func() (*model.Statistics, error)) (*model.Statistics, error) {
	if verbose {
		return fn()
	}

	sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	sp.Suffix = suffix
	sp.Start()
	defer sp.Stop()

	start := time.Now()
	stats, err := fn()
	sp.Stop()
	fmt.Printf("Finished in %s\n\n", time.Since(start).Round(time.Millisecond))
	return stats, err
}
