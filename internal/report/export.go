package report

import (
	"sort"
	"time"

	"github.com/khanh-ng/housescan/internal/model"
)

// Export is the current view of a listing store prepared for output:
// the newest version of every identity plus store-level counts.
type Export struct {
	// GeneratedAt is when the export was built.
	GeneratedAt time.Time `json:"generated_at"`

	// Store is the path of the source store file.
	Store string `json:"store"`

	// TotalRows counts every stored row, historical versions included.
	TotalRows int `json:"total_rows"`

	// Listings holds the latest version per identity.
	Listings []model.ListingRecord `json:"listings"`
}

// NewExport builds an Export from the latest store view.
func NewExport(store string, totalRows int, listings []model.ListingRecord) *Export {
	return &Export{
		GeneratedAt: time.Now(),
		Store:       store,
		TotalRows:   totalRows,
		Listings:    listings,
	}
}

// ListingCount returns the number of distinct identities.
func (e *Export) ListingCount() int {
	return len(e.Listings)
}

// VersionedCount returns how many identities carry more than one
// stored version.
func (e *Export) VersionedCount() int {
	count := 0
	for _, rec := range e.Listings {
		if rec.HasUpdated {
			count++
		}
	}
	return count
}

// CityCount pairs a city with its number of listings.
type CityCount struct {
	City  string `json:"city"`
	Count int    `json:"count"`
}

// CityBreakdown returns listing counts per city, largest first, ties
// broken by name. Listings without a city group under "Unknown".
func (e *Export) CityBreakdown() []CityCount {
	counts := make(map[string]int)
	for _, rec := range e.Listings {
		city := rec.City
		if city == "" {
			city = "Unknown"
		}
		counts[city]++
	}

	breakdown := make([]CityCount, 0, len(counts))
	for city, count := range counts {
		breakdown = append(breakdown, CityCount{City: city, Count: count})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].Count != breakdown[j].Count {
			return breakdown[i].Count > breakdown[j].Count
		}
		return breakdown[i].City < breakdown[j].City
	})

	return breakdown
}
