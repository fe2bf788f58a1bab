package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/khanh-ng/housescan/internal/config"
	"github.com/khanh-ng/housescan/internal/pipeline"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Walk the listing pages and write the URL manifest",
		Long: `Crawl walks the paginated search results with plain HTTP and collects
every listing detail URL into a JSON manifest for the details phase.

Each page is retried on failure; three consecutive failed pages of the
same kind end the walk early. URLs collected before an early stop are
still written, so an interrupted crawl loses nothing.

Examples:
  # Walk until the first empty page (the default)
  housescan crawl

  # Walk a fixed page range
  housescan crawl --start-page 1 --end-page 506

  # Write the manifest somewhere specific
  housescan crawl --manifest ./data/listing_urls.json`,
		Args: cobra.NoArgs,
		RunE: runCrawlCmd,
	}

	cmd.Flags().IntP("start-page", "s", config.DefaultStartPage,
		"First listing page to fetch")
	cmd.Flags().IntP("end-page", "e", config.DefaultEndPage,
		"Last listing page to fetch (0 walks until an empty page)")
	cmd.Flags().StringP("manifest", "o", "",
		"Manifest output path (default: data dir/listing_urls.json)")
	cmd.Flags().StringP("config", "c", "",
		"Site configuration file path (default: .housescan in current or home directory)")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildCrawlConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(getVerboseFlag(cmd))

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runCrawl(ctx, cfg, logger)
}

// buildCrawlConfig creates a Config from crawl command flags.
func buildCrawlConfig(cmd *cobra.Command) (*config.Config, error) {
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
	if manifest, err := cmd.Flags().GetString("manifest"); err != nil {
		return nil, err
	} else if manifest != "" {
		cfg.ManifestPath = manifest
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

// runCrawl runs the crawl phase on its own. The manifest survives
// cancellation and breaker trips: a partial frontier is still a
// usable frontier.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if cfg.Unbounded() {
		fmt.Println("Walking listing pages until the first empty page...")
	} else {
		fmt.Printf("Walking listing pages %d to %d...\n", cfg.StartPage, cfg.EndPage)
	}

	p := pipeline.New(pipeline.WithLogger(logger))
	p.AddStep(pipeline.NewCrawlStep(cfg, logger))

	var res pipeline.Result
	err := p.Execute(ctx, &res)

	if res.ManifestPath != "" {
		fmt.Printf("Saved %d listing URLs to %s\n", res.FrontierSize, res.ManifestPath)
	}
	if res.StoppedEarly {
		fmt.Fprintln(os.Stderr, "Walk stopped early: consecutive page failures tripped the breaker.")
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "Walk cancelled; manifest holds the URLs collected so far.")
		return nil
	default:
		return err
	}
}

// signalContext returns a context cancelled by SIGINT or SIGTERM.
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
