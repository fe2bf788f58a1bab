package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/khanh-ng/housescan/internal/config"
	"github.com/khanh-ng/housescan/internal/pipeline"
)

// NewDetailsCmd creates the details command.
func NewDetailsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "details",
		Short: "Extract listing details from the manifest into the store",
		Long: `Details reads the URL manifest written by crawl, renders each listing
page in headless Chrome, and appends the extracted record into the
SQLite store as a new version of its listing.

A listing that fails extraction is retried and then skipped; one dead
page never stops the batch. Interrupting the run keeps everything
already stored.

Examples:
  # Extract everything in the default manifest
  housescan details

  # Use explicit paths
  housescan details --manifest ./data/listing_urls.json --db ./data/listings.db

  # Run 2 extractions concurrently
  housescan details --workers 2`,
		Args: cobra.NoArgs,
		RunE: runDetailsCmd,
	}

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

// runDetailsCmd executes the details command.
func runDetailsCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildDetailsConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(getVerboseFlag(cmd))

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runDetails(ctx, cfg, logger)
}

// buildDetailsConfig creates a Config from details command flags.
func buildDetailsConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.New()

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

	var err error
	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
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

// runDetails runs the extraction phase on its own.
func runDetails(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	fmt.Printf("Extracting listings from %s with %d worker(s)...\n",
		cfg.ManifestPath, cfg.Workers)
	start := time.Now()

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddStep(pipeline.NewDetailsStep(cfg, logger))

	var res pipeline.Result
	err := p.Execute(ctx, &res)

	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		fmt.Println("Extraction cancelled; records stored so far are kept.")
	default:
		return err
	}

	fmt.Printf("Stored %d listings (%d failed) in %s\n",
		res.Stored, res.Failed, time.Since(start).Round(time.Millisecond))
	return nil
}
