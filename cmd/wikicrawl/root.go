// Package main provides the entry point for the wikicrawl CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for wikicrawl.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wikicrawl",
		Short: "Polite, resumable wiki crawler and article archiver",
		Long: `wikicrawl is a polite, resumable crawler for MediaWiki and Fandom-style
wikis. It fetches article pages one at a time, honors robots.txt and
per-domain rate limits, extracts article content, and archives the
results in a per-project workspace.

Crawls are interruptible: press Ctrl-C at any time and continue later
with "wikicrawl resume".`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewResumeCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
