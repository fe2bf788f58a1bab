package model

import (
	"strings"
	"time"
)

// FeatureSeparator joins the ordered feature pairs into the single
// delimited string stored in the features column.
const FeatureSeparator = "; "

// ListingRecord is one extracted snapshot of a property listing at a
// point in time. PropertyID is the business identity shared by every
// version of the same listing; it is not a row key. All scalar fields
// are optional: an empty string means the selector found nothing, which
// is an expected outcome on this site, never an error.
//
// A record is created by a detail extractor, handed to the store's
// Append exactly once, and never mutated afterwards. HasUpdated and
// UpdatedAt are owned by the store: the extractor leaves them zero.
type ListingRecord struct {
	// PropertyID identifies the real-world listing across versions.
	// Records without it cannot be versioned and are dropped at the
	// store boundary.
	PropertyID string `json:"property_id"`

	// Title is the listing headline.
	Title string `json:"listing_title,omitempty"`

	// TotalPrice and UnitPrice are kept as the raw display strings
	// (e.g. "5,2 tỷ"); normalization happens downstream.
	TotalPrice string `json:"total_price,omitempty"`
	UnitPrice  string `json:"unit_price,omitempty"`

	// URL is the detail page the record was extracted from.
	URL string `json:"property_url,omitempty"`

	// ImageURL is the primary preview image.
	ImageURL string `json:"image_url,omitempty"`

	// City and District come from the page's breadcrumb trail.
	City     string `json:"city,omitempty"`
	District string `json:"district,omitempty"`

	// AlleyWidth is the access-road width shown in the overview block.
	AlleyWidth string `json:"alley_width,omitempty"`

	// Features holds ordered "label: value" pairs from the key-feature
	// grid. Storage keeps them as a single delimited string; see
	// JoinedFeatures.
	Features []string `json:"features,omitempty"`

	// Description is the free-text listing description, already joined
	// from its source paragraphs by the extractor.
	Description string `json:"property_description,omitempty"`

	// HasUpdated marks that at least one other version of this identity
	// exists in the store. Both predecessor rows and the newly inserted
	// row are flagged; it is a "has history" marker, not "is stale".
	// Assigned by the store.
	HasUpdated bool `json:"has_updated"`

	// UpdatedAt is the store-assigned insertion timestamp.
	UpdatedAt time.Time `json:"updated_at"`
}

// JoinedFeatures returns the features column value: the ordered pairs
// joined with FeatureSeparator, or the empty string when there are none.
func (r *ListingRecord) JoinedFeatures() string {
	return strings.Join(r.Features, FeatureSeparator)
}

// SplitFeatures restores a Features slice from the stored delimited
// string. The inverse of JoinedFeatures for non-empty input.
func SplitFeatures(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, FeatureSeparator)
}

// HasIdentity reports whether the record carries the versioning key.
func (r *ListingRecord) HasIdentity() bool {
	return strings.TrimSpace(r.PropertyID) != ""
}
