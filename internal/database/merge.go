package database

import (
	"context"
	"fmt"
	"os"
)

// MergeFrom copies rows from the secondary store at secondaryPath into
// this store. Merging is identity-exclusive: every row of an identity
// absent from this store is copied with its version history intact,
// and identities already present here are skipped entirely, even when
// the secondary holds newer versions. Returns the number of rows
// copied.
//
// A missing secondary is an error; the primary is left unchanged.
func (ldb *ListingDB) MergeFrom(ctx context.Context, secondaryPath string) (int64, error) {
	if _, err := os.Stat(secondaryPath); os.IsNotExist(err) {
		return 0, fmt.Errorf("%w: %s", ErrSecondaryNotFound, secondaryPath)
	} else if err != nil {
		return 0, fmt.Errorf("failed to check secondary store: %w", err)
	}

	ldb.mu.Lock()
	defer ldb.mu.Unlock()

	if _, err := ldb.db.ExecContext(ctx, "ATTACH DATABASE ? AS secondary", secondaryPath); err != nil {
		return 0, fmt.Errorf("failed to attach secondary store: %w", err)
	}
	defer func() {
		_, _ = ldb.db.ExecContext(ctx, "DETACH DATABASE secondary")
	}()

	// New ids are assigned by main's autoincrement, so copied rows
	// keep their relative version order but not their original ids.
	query := `
	INSERT INTO main.listings (
		property_id, listing_title, total_price, unit_price,
		property_url, image_url, city, district, alley_width,
		features, property_description, has_updated, updated_at
	)
	SELECT property_id, listing_title, total_price, unit_price,
	       property_url, image_url, city, district, alley_width,
	       features, property_description, has_updated, updated_at
	FROM secondary.listings
	WHERE property_id NOT IN (SELECT property_id FROM main.listings)
	ORDER BY id
	`

	result, err := ldb.db.ExecContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to merge secondary store: %w", err)
	}

	added, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count merged rows: %w", err)
	}

	ldb.logger.Info("merged secondary store", "secondary", secondaryPath, "rows_added", added)

	return added, nil
}
