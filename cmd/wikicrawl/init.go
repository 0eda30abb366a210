package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed templates/wikicrawl.yml
var configTemplate embed.FS

// configFileName is the default configuration file name.
const configFileName = ".wikicrawl.yml"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new wikicrawl configuration file",
		Long: `Initialize creates a new .wikicrawl.yml configuration file in the
current directory.

The generated file includes:
- The four required settings with sensible starting values
- Commented examples for all optional settings
- Documentation for every option

Examples:
  # Create .wikicrawl.yml in current directory
  wikicrawl init

  # Create config file at a specific path
  wikicrawl init -o myconfig.yml

  # Force overwrite existing file
  wikicrawl init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	// Check if file already exists
	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	// Read template from embedded filesystem
	content, err := configTemplate.ReadFile("templates/wikicrawl.yml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	// Create parent directories if needed
	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	// Write configuration file
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Printf("Created configuration file: %s\n", outputPath)
	fmt.Println("\nEdit this file before crawling. At minimum set:")
	fmt.Println("  - user_agent with your contact information")
	fmt.Println("  - default_delay_seconds for the site you are crawling")
	fmt.Println("  - target_namespaces to the namespaces you want archived")

	return nil
}
