package extractor

import (
	"context"
	"errors"

	"github.com/khanh-ng/housescan/internal/browser"
	"github.com/khanh-ng/housescan/internal/model"
)

// ErrNotFound is returned when a detail page rendered but carried none
// of the listing anchors (title, property id, price). Usually the page
// loaded before its data did; worth retrying on the same session.
var ErrNotFound = errors.New("listing details not found on page")

// Extractor turns one listing detail URL into a record.
//
// Implementations return browser errors unwrapped enough that the
// caller can test browser.IsFatal and discard the session.
type Extractor interface {
	Extract(ctx context.Context, sess *browser.Session, url string) (*model.ListingRecord, error)
}
