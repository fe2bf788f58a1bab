package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/khanh-ng/housescan/internal/config"
	"github.com/khanh-ng/housescan/internal/pipeline"
)

// NewRunCmd creates the run command.
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: crawl, then details",
		Long: `Run walks the listing pages into a manifest and immediately extracts
every discovered listing into the store. Equivalent to running crawl
followed by details with the same configuration.

Examples:
  # Full crawl with defaults
  housescan run

  # Fixed page range, 2 extraction workers
  housescan run --start-page 1 --end-page 506 --workers 2`,
		Args: cobra.NoArgs,
		RunE: runRunCmd,
	}

	cmd.Flags().IntP("start-page", "s", config.DefaultStartPage,
		"First listing page to fetch")
	cmd.Flags().IntP("end-page", "e", config.DefaultEndPage,
		"Last listing page to fetch (0 walks until an empty page)")
	cmd.Flags().StringP("manifest", "m", "",
		"Manifest path (default: data dir/listing_urls.json)")
	cmd.Flags().StringP("db", "d", "",
		"Store path (default: data dir/listings.db)")
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of concurrent extractions")
	cmd.Flags().StringP("config", "c", "",
		"Site configuration file path (default: .housescan in current or home directory)")

	return cmd
}

// runRunCmd executes both pipeline phases in order.
func runRunCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildRunConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(getVerboseFlag(cmd))

	ctx, cancel := signalContext(logger)
	defer cancel()

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddSteps(
		pipeline.NewCrawlStep(cfg, logger),
		pipeline.NewDetailsStep(cfg, logger),
	)

	fmt.Printf("Running phases: %v\n", p.StepNames())
	start := time.Now()

	var res pipeline.Result
	execErr := p.Execute(ctx, &res)

	if res.ManifestPath != "" {
		fmt.Printf("Collected %d listing URLs into %s\n", res.FrontierSize, res.ManifestPath)
	}
	if res.StoppedEarly {
		fmt.Fprintln(os.Stderr, "Walk stopped early: consecutive page failures tripped the breaker.")
	}

	switch {
	case execErr == nil:
	case errors.Is(execErr, context.Canceled):
		fmt.Println("Run cancelled; the manifest and records stored so far are kept.")
	default:
		return execErr
	}

	fmt.Printf("Stored %d listings (%d failed) in %s\n",
		res.Stored, res.Failed, time.Since(start).Round(time.Millisecond))
	return nil
}

// buildRunConfig creates a Config from run command flags.
func buildRunConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.New()

	var err error
	cfg.StartPage, err = cmd.Flags().GetInt("start-page")
	if err != nil {
		return nil, err
	}
	cfg.EndPage, err = cmd.Flags().GetInt("end-page")
	if err != nil {
		return nil, err
	}
	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}
	if manifest, err := cmd.Flags().GetString("manifest"); err != nil {
		return nil, err
	} else if manifest != "" {
		cfg.ManifestPath = manifest
	}
	if dbPath, err := cmd.Flags().GetString("db"); err != nil {
		return nil, err
	} else if dbPath != "" {
		cfg.DBPath = dbPath
	}

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if err := loadSiteConfig(cfg, configPath); err != nil {
		return nil, err
	}

	return cfg, nil
}
