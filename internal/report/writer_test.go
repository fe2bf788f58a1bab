package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/khanh-ng/housescan/internal/model"
)

func testExport() *Export {
	return NewExport("/data/listings.db", 5, []model.ListingRecord{
		{
			PropertyID: "OH-1",
			Title:      "Bán nhà riêng phố Thái Hà, ngõ thông, 40m²",
			TotalPrice: "5,2 tỷ",
			URL:        "https://onehousing.vn/ban-nha/oh-1",
			City:       "Hà Nội",
			District:   "Đống Đa",
			HasUpdated: true,
		},
		{
			PropertyID: "OH-2",
			Title:      "Bán căn hộ chung cư",
			TotalPrice: "3,1 tỷ",
			URL:        "https://onehousing.vn/ban-can-ho/oh-2",
			City:       "Hà Nội",
		},
		{
			PropertyID: "OH-3",
			Title:      "Bán đất nền",
			TotalPrice: "2 tỷ",
			URL:        "https://onehousing.vn/ban-dat/oh-3",
			City:       "Hồ Chí Minh",
		},
		{
			PropertyID: "OH-4",
			Title:      "Bán nhà không rõ khu vực",
			TotalPrice: "1 tỷ",
			URL:        "https://onehousing.vn/ban-nha/oh-4",
		},
	})
}

func TestExport_Counts(t *testing.T) {
	t.Parallel()

	export := testExport()

	if got := export.ListingCount(); got != 4 {
		t.Errorf("ListingCount = %d, want 4", got)
	}
	if got := export.VersionedCount(); got != 1 {
		t.Errorf("VersionedCount = %d, want 1", got)
	}

	breakdown := export.CityBreakdown()
	if len(breakdown) != 3 {
		t.Fatalf("expected 3 cities, got %d", len(breakdown))
	}
	if breakdown[0].City != "Hà Nội" || breakdown[0].Count != 2 {
		t.Errorf("expected Hà Nội first with 2, got %+v", breakdown[0])
	}
	found := false
	for _, cc := range breakdown {
		if cc.City == "Unknown" && cc.Count == 1 {
			found = true
		}
	}
	if !found {
		t.Error("expected listings without a city under Unknown")
	}
}

func TestJSONWriter_Write(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	n, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(testExport())
	if err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if n != buf.Len() {
		t.Errorf("reported %d bytes, wrote %d", n, buf.Len())
	}

	var decoded Export
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Listings) != 4 {
		t.Errorf("expected 4 listings in JSON, got %d", len(decoded.Listings))
	}
	if decoded.Store != "/data/listings.db" {
		t.Errorf("unexpected store path: %q", decoded.Store)
	}
}

func TestMarkdownWriter_Write(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(testExport()); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Listing Store Report",
		"## Listings by City",
		"Hà Nội",
		"OH-1",
		"pie",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
}

func TestMarkdownWriter_EmptyStore(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(NewExport("/data/empty.db", 0, nil)); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if !strings.Contains(buf.String(), "No listings in the store.") {
		t.Error("expected the empty-store message")
	}
}

func TestTextWriter_Write(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewTextWriter(&buf).Write(testExport()); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Listings:  4") {
		t.Errorf("expected listing count in output, got %q", out)
	}
	if !strings.Contains(out, "Hà Nội") {
		t.Error("expected city breakdown in output")
	}
}

func TestMultiWriter_Write(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	mw := NewMultiWriter(NewTextWriter(&a), NewTextWriter(&b))

	if _, err := mw.Write(testExport()); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if a.String() != b.String() {
		t.Error("expected identical output from both writers")
	}
	if a.Len() == 0 {
		t.Error("expected non-empty output")
	}
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{name: "short stays", input: "Bán nhà", maxLen: 10, want: "Bán nhà"},
		{name: "long gets ellipsis", input: "Bán nhà riêng phố Thái Hà", maxLen: 10, want: "Bán nhà..."},
		{name: "multibyte boundary", input: "ngõ ngõ ngõ ngõ", maxLen: 6, want: "ngõ..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := truncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}
