package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khanh-ng/housescan/internal/config"
	"github.com/khanh-ng/housescan/internal/database"
)

// NewMergeCmd creates the merge command.
func NewMergeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge another store's listings into the master store",
		Long: `Merge copies listings from a secondary store into the master store.

Only listings whose identity is absent from the master are copied;
their full version history comes with them. Listings already present
in the master are left untouched, even when the secondary holds newer
versions. Crawls run on separate machines are combined this way.

Examples:
  # Merge a laptop's crawl into the default store
  housescan merge --secondary ./laptop/listings.db

  # Explicit master store
  housescan merge --master ./data/listings.db --secondary ./other.db`,
		Args: cobra.NoArgs,
		RunE: runMergeCmd,
	}

	cmd.Flags().StringP("master", "m", "",
		"Master store path (default: data dir/listings.db)")
	cmd.Flags().StringP("secondary", "s", "",
		"Secondary store to merge from (required)")
	_ = cmd.MarkFlagRequired("secondary")

	return cmd
}

// runMergeCmd executes the merge command.
func runMergeCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.New()

	if master, err := cmd.Flags().GetString("master"); err != nil {
		return err
	} else if master != "" {
		cfg.DBPath = master
	}
	secondary, err := cmd.Flags().GetString("secondary")
	if err != nil {
		return err
	}

	logger := setupLogger(getVerboseFlag(cmd))

	db, err := database.Open(cfg.DBPath, database.Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
		Logger:            logger,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()

	added, err := db.MergeFrom(ctx, secondary)
	if err != nil {
		return err
	}

	identities, err := db.IdentityCount(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Merged %d rows from %s\n", added, secondary)
	fmt.Printf("Master store %s now holds %d listings\n", cfg.DBPath, identities)

	return nil
}
