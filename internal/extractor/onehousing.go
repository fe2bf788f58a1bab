package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/khanh-ng/housescan/internal/browser"
	"github.com/khanh-ng/housescan/internal/model"
)

// descriptionSeparator joins description paragraphs in the stored
// record, matching the stored-data format of existing crawls.
const descriptionSeparator = ". "

// OneHousing extracts listing records from onehousing.vn detail pages.
// The page builds its content client side, so the session provides
// rendered HTML and goquery does the reading.
type OneHousing struct {
	logger *slog.Logger
}

// NewOneHousing creates the onehousing.vn extractor.
func NewOneHousing(logger *slog.Logger) *OneHousing {
	if logger == nil {
		logger = slog.Default()
	}
	return &OneHousing{logger: logger}
}

// Extract renders the page in the given session and parses it. Browser
// errors pass through for the caller's fatality check; a rendered page
// with no listing content maps to ErrNotFound.
func (o *OneHousing) Extract(ctx context.Context, sess *browser.Session, url string) (*model.ListingRecord, error) {
	html, err := sess.HTML(ctx, url, waitSelector)
	if err != nil {
		return nil, err
	}

	rec, err := parseListing(url, html)
	if err != nil {
		return nil, err
	}

	o.logger.Debug("extracted listing",
		"url", url, "property_id", rec.PropertyID, "features", len(rec.Features))

	return rec, nil
}

// parseListing reads a rendered detail page into a record. Every field
// is optional; only a page with no title, id, and price at all is an
// error. Pure function so the selectors are testable without Chrome.
func parseListing(pageURL, html string) (*model.ListingRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse detail page: %w", err)
	}

	rec := &model.ListingRecord{
		URL:        pageURL,
		Title:      elementText(doc, selTitle),
		PropertyID: elementText(doc, selPropertyID),
		TotalPrice: elementText(doc, selTotalPrice),
		UnitPrice:  elementText(doc, selUnitPrice),
		AlleyWidth: elementText(doc, selAlleyWidth),
	}

	if rec.Title == "" && rec.PropertyID == "" && rec.TotalPrice == "" {
		return nil, fmt.Errorf("%s: %w", pageURL, ErrNotFound)
	}

	rec.ImageURL = imageURL(doc)
	rec.City, rec.District = breadcrumbPlaces(doc)
	rec.Features = features(doc)
	rec.Description = description(doc)

	return rec, nil
}

// elementText returns the trimmed text of the first selector match.
func elementText(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

// imageURL pulls the hero image from the preload hint's imagesrcset:
// the URL before the first width descriptor of the first candidate.
func imageURL(doc *goquery.Document) string {
	srcset := doc.Find(selPreloadImage).First().AttrOr("imagesrcset", "")
	if srcset == "" {
		return ""
	}
	first, _, _ := strings.Cut(srcset, ",")
	url, _, _ := strings.Cut(strings.TrimSpace(first), " ")
	return url
}

// breadcrumbList mirrors the schema.org BreadcrumbList structured data.
type breadcrumbList struct {
	Type  string `json:"@type"`
	Items []struct {
		Position int    `json:"position"`
		Name     string `json:"name"`
	} `json:"itemListElement"`
}

// breadcrumbPlaces reads city and district from the BreadcrumbList
// JSON-LD block: position 2 is the city, position 3 the district.
func breadcrumbPlaces(doc *goquery.Document) (city, district string) {
	doc.Find(selJSONLD).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var crumbs breadcrumbList
		if err := json.Unmarshal([]byte(s.Text()), &crumbs); err != nil {
			return true
		}
		if crumbs.Type != "BreadcrumbList" {
			return true
		}
		for _, item := range crumbs.Items {
			switch item.Position {
			case 2:
				city = item.Name
			case 3:
				district = item.Name
			}
		}
		return false
	})
	return city, district
}

// features collects the key-feature items as "label: value" pairs in
// page order. Items missing either half are skipped.
func features(doc *goquery.Document) []string {
	var out []string
	doc.Find(selFeatureItem).Each(func(_ int, s *goquery.Selection) {
		label := strings.TrimSpace(s.Find(selFeatureTitle).First().Text())
		value := strings.TrimSpace(s.Find(selFeatureValue).First().Text())
		if label != "" && value != "" {
			out = append(out, label+": "+value)
		}
	})
	return out
}

// description prefers the dedicated description block and falls back
// to the heading list items, joined in page order.
func description(doc *goquery.Document) string {
	if text := strings.TrimSpace(doc.Find(selDescription).First().Text()); text != "" {
		return text
	}

	var parts []string
	doc.Find(selDescriptionItems).Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, descriptionSeparator)
}
