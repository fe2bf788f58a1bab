package database

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestListingDB_MergeFrom(t *testing.T) {
	t.Parallel()

	t.Run("copies only new identities", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		dir := t.TempDir()

		master, err := Open(filepath.Join(dir, "master.db"), DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open master: %v", err)
		}
		defer master.Close()

		secondary, err := Open(filepath.Join(dir, "secondary.db"), DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open secondary: %v", err)
		}

		if err := master.Append(ctx, testRecord("SHARED")); err != nil {
			t.Fatalf("failed to seed master: %v", err)
		}

		newer := testRecord("SHARED")
		newer.TotalPrice = "9 tỷ"
		if err := secondary.Append(ctx, newer); err != nil {
			t.Fatalf("failed to seed secondary: %v", err)
		}
		if err := secondary.Append(ctx, testRecord("ONLY-SECONDARY")); err != nil {
			t.Fatalf("failed to seed secondary: %v", err)
		}
		if err := secondary.Close(); err != nil {
			t.Fatalf("failed to close secondary: %v", err)
		}

		added, err := master.MergeFrom(ctx, filepath.Join(dir, "secondary.db"))
		if err != nil {
			t.Fatalf("merge failed: %v", err)
		}
		if added != 1 {
			t.Errorf("expected 1 row added, got %d", added)
		}

		// SHARED must keep the master's version, not the secondary's.
		history, err := master.History(ctx, "SHARED")
		if err != nil {
			t.Fatalf("failed to read history: %v", err)
		}
		if len(history) != 1 {
			t.Fatalf("expected 1 version of SHARED, got %d", len(history))
		}
		if history[0].TotalPrice == "9 tỷ" {
			t.Error("merge replaced an existing identity's data")
		}

		identities, err := master.IdentityCount(ctx)
		if err != nil {
			t.Fatalf("failed to count identities: %v", err)
		}
		if identities != 2 {
			t.Errorf("expected 2 identities after merge, got %d", identities)
		}
	})

	t.Run("copies full version history of new identities", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		dir := t.TempDir()

		master, err := Open(filepath.Join(dir, "master.db"), DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open master: %v", err)
		}
		defer master.Close()

		secondary, err := Open(filepath.Join(dir, "secondary.db"), DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open secondary: %v", err)
		}
		if err := secondary.Append(ctx, testRecord("V")); err != nil {
			t.Fatalf("failed to seed secondary: %v", err)
		}
		if err := secondary.Append(ctx, testRecord("V")); err != nil {
			t.Fatalf("failed to seed secondary: %v", err)
		}
		if err := secondary.Close(); err != nil {
			t.Fatalf("failed to close secondary: %v", err)
		}

		added, err := master.MergeFrom(ctx, filepath.Join(dir, "secondary.db"))
		if err != nil {
			t.Fatalf("merge failed: %v", err)
		}
		if added != 2 {
			t.Errorf("expected 2 rows added, got %d", added)
		}

		versions, err := master.VersionCount(ctx, "V")
		if err != nil {
			t.Fatalf("failed to count versions: %v", err)
		}
		if versions != 2 {
			t.Errorf("expected 2 versions of V after merge, got %d", versions)
		}
	})

	t.Run("missing secondary leaves master unchanged", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		dir := t.TempDir()

		master, err := Open(filepath.Join(dir, "master.db"), DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open master: %v", err)
		}
		defer master.Close()

		if err := master.Append(ctx, testRecord("KEEP")); err != nil {
			t.Fatalf("failed to seed master: %v", err)
		}

		_, err = master.MergeFrom(ctx, filepath.Join(dir, "does-not-exist.db"))
		if !errors.Is(err, ErrSecondaryNotFound) {
			t.Errorf("expected ErrSecondaryNotFound, got %v", err)
		}

		count, err := master.RowCount(ctx)
		if err != nil {
			t.Fatalf("failed to count rows: %v", err)
		}
		if count != 1 {
			t.Errorf("expected master unchanged with 1 row, got %d", count)
		}
	})
}
