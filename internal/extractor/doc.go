// Package extractor turns rendered listing detail pages into records.
//
// The browser session supplies the rendered HTML; parsing itself is
// pure goquery over that snapshot, so the site contract in
// selectors.go can be exercised against fixture pages in tests.
package extractor
