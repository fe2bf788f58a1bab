package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/khanh-ng/housescan/internal/model"
)

// ListingDB is the append-only, identity-versioned listing store.
// Every successful extraction becomes a new row; rows are never updated
// or deleted apart from the has_updated flag on prior versions of the
// same identity. The row id (autoincrement) is the version order.
type ListingDB struct {
	db     *sql.DB
	dbPath string
	logger *slog.Logger

	// mu guards the count → flag → insert sequence in Append. The
	// existence check and the flag update must be atomic relative to
	// any other writer, or two concurrent appends for one identity
	// could both observe "no history" and skip flagging.
	mu sync.Mutex
}

// Options configures ListingDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file (and its directory)
	// if missing. When false, a missing file is an error; the merge
	// command relies on this to refuse a nonexistent secondary store.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging. Recommended: the crawl
	// writes while exports read.
	EnableWAL bool

	// Logger receives warnings for dropped records and write failures.
	// Nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the options used by the crawl phases.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a ListingDB at the given file path.
func Open(dbPath string, opts Options) (*ListingDB, error) {
	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrStoreNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check store path: %w", err)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0750); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw refuses to create
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	// SQLite supports a single writer; the pool mirrors that.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ldb := &ListingDB{
		db:     db,
		dbPath: dbPath,
		logger: logger,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := ldb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return ldb, nil
}

// Close closes the underlying connection.
func (ldb *ListingDB) Close() error {
	return ldb.db.Close()
}

// Path returns the store's file path.
func (ldb *ListingDB) Path() string {
	return ldb.dbPath
}

// createTables creates the schema if it doesn't exist. The id column's
// autoincrement order is the version sequence within each property_id
// group; the index supports the existence checks in Append and the
// identity-presence test in MergeFrom.
func (ldb *ListingDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS listings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		property_id TEXT,
		listing_title TEXT,
		total_price TEXT,
		unit_price TEXT,
		property_url TEXT,
		image_url TEXT,
		city TEXT,
		district TEXT,
		alley_width TEXT,
		features TEXT,
		property_description TEXT,
		has_updated INTEGER DEFAULT 0,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_listings_property_id ON listings(property_id);
	`

	_, err := ldb.db.ExecContext(context.Background(), schema)
	return err
}

// Append inserts rec as a new version of its identity.
//
// A record without a property_id cannot be versioned: it is dropped
// with a warning and a nil error, because one unidentifiable listing
// must not abort the batch. When prior rows for the identity exist,
// all of them and the new row are flagged has_updated: the flag marks
// "this identity has history", on predecessors and successor alike.
func (ldb *ListingDB) Append(ctx context.Context, rec *model.ListingRecord) error {
	if rec == nil {
		return nil
	}
	if !rec.HasIdentity() {
		ldb.logger.Warn("dropping record without property_id", "url", rec.URL)
		return nil
	}

	ldb.mu.Lock()
	defer ldb.mu.Unlock()

	var count int
	err := ldb.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM listings WHERE property_id = ?", rec.PropertyID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to count versions for %s: %w", rec.PropertyID, err)
	}

	hasUpdated := 0
	if count > 0 {
		if _, err := ldb.db.ExecContext(ctx,
			"UPDATE listings SET has_updated = 1 WHERE property_id = ?", rec.PropertyID,
		); err != nil {
			return fmt.Errorf("failed to flag prior versions of %s: %w", rec.PropertyID, err)
		}
		hasUpdated = 1
		ldb.logger.Debug("appending new version", "property_id", rec.PropertyID, "prior_versions", count)
	}

	query := `
	INSERT INTO listings (
		property_id, listing_title, total_price, unit_price,
		property_url, image_url, city, district, alley_width,
		features, property_description, has_updated, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`

	_, err = ldb.db.ExecContext(ctx, query,
		rec.PropertyID,
		rec.Title,
		rec.TotalPrice,
		rec.UnitPrice,
		rec.URL,
		rec.ImageURL,
		rec.City,
		rec.District,
		rec.AlleyWidth,
		rec.JoinedFeatures(),
		rec.Description,
		hasUpdated,
	)
	if err != nil {
		return fmt.Errorf("failed to insert record for %s: %w", rec.PropertyID, err)
	}

	return nil
}

// Latest returns exactly one record per distinct property_id: the row
// with the greatest id within that identity group. This is the current
// view handed to exports; the crawl itself never reads it.
func (ldb *ListingDB) Latest(ctx context.Context) ([]model.ListingRecord, error) {
	query := `
	SELECT property_id, listing_title, total_price, unit_price,
	       property_url, image_url, city, district, alley_width,
	       features, property_description, has_updated, updated_at
	FROM listings
	WHERE id IN (SELECT MAX(id) FROM listings GROUP BY property_id)
	ORDER BY property_id
	`

	rows, err := ldb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest listings: %w", err)
	}
	defer rows.Close()

	var records []model.ListingRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// History returns every stored version of one identity, oldest first.
func (ldb *ListingDB) History(ctx context.Context, propertyID string) ([]model.ListingRecord, error) {
	query := `
	SELECT property_id, listing_title, total_price, unit_price,
	       property_url, image_url, city, district, alley_width,
	       features, property_description, has_updated, updated_at
	FROM listings
	WHERE property_id = ?
	ORDER BY id
	`

	rows, err := ldb.db.QueryContext(ctx, query, propertyID)
	if err != nil {
		return nil, fmt.Errorf("failed to query history for %s: %w", propertyID, err)
	}
	defer rows.Close()

	var records []model.ListingRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// RowCount returns the total number of rows, all versions included.
func (ldb *ListingDB) RowCount(ctx context.Context) (int, error) {
	var count int
	err := ldb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM listings").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return count, nil
}

// IdentityCount returns the number of distinct identities.
func (ldb *ListingDB) IdentityCount(ctx context.Context) (int, error) {
	var count int
	err := ldb.db.QueryRowContext(ctx,
		"SELECT COUNT(DISTINCT property_id) FROM listings").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count identities: %w", err)
	}
	return count, nil
}

// VersionCount returns the number of stored versions for one identity.
func (ldb *ListingDB) VersionCount(ctx context.Context, propertyID string) (int, error) {
	var count int
	err := ldb.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM listings WHERE property_id = ?", propertyID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count versions for %s: %w", propertyID, err)
	}
	return count, nil
}

// scanner abstracts *sql.Rows and *sql.Row for scanRecord.
type scanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one listings row into a ListingRecord. Every column
// scans through its Null type: a merged secondary produced outside this
// program may hold NULLs, and a NULL reads as the empty value instead
// of failing the whole result set.
func scanRecord(s scanner) (model.ListingRecord, error) {
	var (
		propertyID, title, totalPrice, unitPrice  sql.NullString
		url, imageURL, city, district, alleyWidth sql.NullString
		features, description, updatedAt          sql.NullString
		hasUpdated                                sql.NullInt64
	)

	err := s.Scan(
		&propertyID,
		&title,
		&totalPrice,
		&unitPrice,
		&url,
		&imageURL,
		&city,
		&district,
		&alleyWidth,
		&features,
		&description,
		&hasUpdated,
		&updatedAt,
	)
	if err != nil {
		return model.ListingRecord{}, fmt.Errorf("failed to scan listing row: %w", err)
	}

	rec := model.ListingRecord{
		PropertyID:  propertyID.String,
		Title:       title.String,
		TotalPrice:  totalPrice.String,
		UnitPrice:   unitPrice.String,
		URL:         url.String,
		ImageURL:    imageURL.String,
		City:        city.String,
		District:    district.String,
		AlleyWidth:  alleyWidth.String,
		Description: description.String,
	}
	rec.Features = model.SplitFeatures(features.String)
	rec.HasUpdated = hasUpdated.Int64 != 0
	rec.UpdatedAt = parseTimestamp(updatedAt.String)

	return rec, nil
}

// timestampFormats contains the timestamp formats SQLite may return,
// most specific first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp parses a timestamp string against the known formats.
// Returns zero time when nothing matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
