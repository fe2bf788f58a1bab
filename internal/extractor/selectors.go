package extractor

// Selectors for onehousing.vn detail pages. These are a contract with
// the site's markup and break together when the frontend changes, so
// they live in one place.
//
// The feature and title ids repeat across elements on the page, which
// is invalid HTML but how the site actually renders. CSS id selectors
// match every occurrence, so iteration still works.
const (
	// waitSelector gates the rendered-HTML snapshot.
	waitSelector = "body"

	selTitle      = "#detail_title"
	selPropertyID = "#container-property div:nth-child(5) div.flex.cursor-pointer p"
	selTotalPrice = "#total-price"
	selUnitPrice  = "#unit-price"
	selAlleyWidth = `#overview_content div[data-impression-index="1"]`

	// The hero image is declared as a preload hint; its imagesrcset
	// holds the CDN URL ahead of any srcset candidates.
	selPreloadImage = `link[rel="preload"][as="image"]`

	// City and district come from the BreadcrumbList structured data,
	// positions 2 and 3.
	selJSONLD = `script[type="application/ld+json"]`

	selFeatureItem  = "#key-feature-item"
	selFeatureTitle = "#item_title"
	selFeatureValue = "#key-feature-text"

	selDescription      = `div[data-testid="property-description"]`
	selDescriptionItems = `ul[aria-label="description-heading"].relative li`
)
