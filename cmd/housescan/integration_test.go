package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/khanh-ng/housescan/internal/database"
	"github.com/khanh-ng/housescan/internal/frontier"
	"github.com/khanh-ng/housescan/internal/model"
)

// These tests run whole subcommands end to end. The crawl test fetches
// from an httptest server; nothing here needs Chrome or the network.

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

func seedStore(t *testing.T, path string, ids ...string) {
	t.Helper()

	db, err := database.Open(path, database.DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer db.Close()

	for _, id := range ids {
		rec := &model.ListingRecord{
			PropertyID: id,
			Title:      "Bán nhà " + id,
			TotalPrice: "3 tỷ",
			URL:        "https://onehousing.vn/ban-nha/" + id,
			City:       "Hà Nội",
		}
		if err := db.Append(context.Background(), rec); err != nil {
			t.Fatalf("failed to seed store: %v", err)
		}
	}
}

func TestCrawlCmd(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		fmt.Fprintf(w, `<html><body><a data-role="property-card" href="/ban-nha/p%s">card</a></body></html>`, page)
	}))
	defer srv.Close()

	t.Setenv("HOUSESCAN_BASE_URL", srv.URL)
	t.Setenv("HOUSESCAN_CRAWL_DELAY", "0s")

	manifest := filepath.Join(t.TempDir(), "listing_urls.json")
	if _, err := execute(t, "crawl", "--start-page", "1", "--end-page", "3", "--manifest", manifest); err != nil {
		t.Fatalf("crawl failed: %v", err)
	}

	urls, err := frontier.LoadManifest(manifest)
	if err != nil {
		t.Fatalf("failed to load written manifest: %v", err)
	}
	if len(urls) != 3 {
		t.Errorf("expected 3 URLs in manifest, got %d", len(urls))
	}
}

func TestDetailsCmd_MissingManifest(t *testing.T) {
	manifest := filepath.Join(t.TempDir(), "missing.json")
	t.Setenv("HOUSESCAN_MANIFEST_PATH", manifest)

	_, err := execute(t, "details", "--manifest", manifest)
	if err == nil {
		t.Fatal("expected an error for a missing manifest")
	}
	if !strings.Contains(err.Error(), "manifest") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestMergeCmd(t *testing.T) {
	dir := t.TempDir()
	master := filepath.Join(dir, "master.db")
	secondary := filepath.Join(dir, "secondary.db")

	seedStore(t, master, "SHARED")
	seedStore(t, secondary, "SHARED", "ONLY-SECONDARY")

	if _, err := execute(t, "merge", "--master", master, "--secondary", secondary); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	db, err := database.Open(master, database.Options{})
	if err != nil {
		t.Fatalf("failed to reopen master: %v", err)
	}
	defer db.Close()

	identities, err := db.IdentityCount(context.Background())
	if err != nil {
		t.Fatalf("failed to count identities: %v", err)
	}
	if identities != 2 {
		t.Errorf("expected 2 identities after merge, got %d", identities)
	}
}

func TestMergeCmd_MissingSecondary(t *testing.T) {
	dir := t.TempDir()
	master := filepath.Join(dir, "master.db")
	seedStore(t, master, "KEEP")

	_, err := execute(t, "merge", "--master", master, "--secondary", filepath.Join(dir, "gone.db"))
	if err == nil {
		t.Fatal("expected an error for a missing secondary store")
	}
}

func TestExportCmd_JSON(t *testing.T) {
	dir := t.TempDir()
	store := filepath.Join(dir, "listings.db")
	seedStore(t, store, "OH-1", "OH-2")

	out := filepath.Join(dir, "out", "listings.json")
	if _, err := execute(t, "export", "--db", store, "--json", "-o", out); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("failed to read export file: %v", err)
	}

	var decoded struct {
		Listings []model.ListingRecord `json:"listings"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(decoded.Listings) != 2 {
		t.Errorf("expected 2 listings in export, got %d", len(decoded.Listings))
	}
}

func TestExportCmd_MissingStore(t *testing.T) {
	_, err := execute(t, "export", "--db", filepath.Join(t.TempDir(), "gone.db"))
	if err == nil {
		t.Fatal("expected an error for a missing store")
	}
	if !strings.Contains(err.Error(), "housescan run") {
		t.Errorf("expected the hint about running a crawl, got %v", err)
	}
}
