package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/khanh-ng/housescan/internal/config"
	"github.com/khanh-ng/housescan/internal/log"
)

// NewRootCmd creates the root command for housescan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "housescan",
		Short: "Versioned crawler for real-estate listings",
		Long: `housescan crawls onehousing.vn property listings in two phases.

The crawl phase walks the paginated search results and writes the
discovered listing URLs to a JSON manifest. The details phase renders
each listing in headless Chrome, extracts its fields, and appends a
new version into a SQLite store that keeps every listing's history.

Stores from crawls run on different machines can be merged, and the
newest version of every listing exported for downstream cleaning.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewDetailsCmd())
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewMergeCmd())
	cmd.AddCommand(NewExportCmd())
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

// setupLogger installs the redacting logger as the process default and
// returns it.
func setupLogger(verbose bool) *slog.Logger {
	logger := log.NewLogger(os.Stderr, verbose)
	slog.SetDefault(logger)
	return logger
}

// loadSiteConfig resolves and applies the .housescan file. An
// explicitly given path that does not exist is an error; a missing
// default file is not.
func loadSiteConfig(cfg *config.Config, configPath string) error {
	found := config.FindConfigFile(configPath)
	if found == "" {
		if configPath != "" {
			return fmt.Errorf("%w: %s", config.ErrConfigNotFound, configPath)
		}
		return nil
	}

	site, err := config.LoadConfigFile(found)
	if err != nil {
		return fmt.Errorf("failed to load config file %s: %w", found, err)
	}
	cfg.ApplySite(site)
	return nil
}
