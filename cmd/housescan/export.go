package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/khanh-ng/housescan/internal/config"
	"github.com/khanh-ng/housescan/internal/database"
	"github.com/khanh-ng/housescan/internal/report"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the newest version of every listing",
		Long: `Export reads the store and writes the current view: one record per
listing, the newest stored version of each. Historical versions stay
in the store.

Examples:
  # Plain summary on the terminal
  housescan export

  # Full data as JSON for downstream cleaning
  housescan export --json -o listings.json

  # Markdown summary report
  housescan export --markdown -o report.md`,
		Args: cobra.NoArgs,
		RunE: runExportCmd,
	}

	cmd.Flags().StringP("db", "d", "",
		"Store path (default: data dir/listings.db)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write output to specified file path (creates directories if needed)")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, _ []string) error {
	cfg := config.New()

	if dbPath, err := cmd.Flags().GetString("db"); err != nil {
		return err
	} else if dbPath != "" {
		cfg.DBPath = dbPath
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	logger := setupLogger(getVerboseFlag(cmd))

	// Exporting never creates a store; an absent store is an error.
	db, err := database.Open(cfg.DBPath, database.Options{Logger: logger})
	if err != nil {
		if errors.Is(err, database.ErrStoreNotFound) {
			return fmt.Errorf("%w (run 'housescan run' first)", err)
		}
		return err
	}
	defer db.Close()

	ctx := context.Background()

	listings, err := db.Latest(ctx)
	if err != nil {
		return err
	}
	totalRows, err := db.RowCount(ctx)
	if err != nil {
		return err
	}

	export := report.NewExport(cfg.DBPath, totalRows, listings)

	output, cleanup, err := openOutput(outputPath)
	if err != nil {
		return err
	}
	defer cleanup()

	var writer report.Writer
	switch {
	case jsonOutput:
		writer = report.NewJSONWriter(output, report.WithPrettyPrint())
	case markdownOutput:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewTextWriter(output)
	}

	_, err = writer.Write(export)
	return err
}

// openOutput returns the export destination and its cleanup. Stdout
// when no path is given; otherwise the file is created with owner-only
// permissions, directories included.
func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
