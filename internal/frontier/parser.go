package frontier

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// cardLinkAttr marks anchor elements that wrap a listing card on the
// paginated search results. Pagination controls and navigation chrome
// use other roles, so filtering on this attribute is what keeps the
// frontier free of non-listing URLs.
const (
	cardLinkAttr  = "data-role"
	cardLinkValue = "property-card"
)

// Parser extracts listing detail URLs from a search results page.
//
// Design decision: We use golang.org/x/net/html for parsing rather than
// regex because:
//  1. It correctly handles malformed HTML common on the web
//  2. Provides a proper DOM-like structure
//  3. More maintainable than complex regex patterns
type Parser struct {
	// baseURL is the page's own URL, used for resolving relative hrefs.
	baseURL *url.URL
}

// NewParser creates a parser that resolves relative links against baseURL.
func NewParser(baseURL string) (*Parser, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	return &Parser{baseURL: u}, nil
}

// ListingLinks returns the absolute detail URLs of every listing card
// on the page, in document order. Duplicate hrefs within one page are
// kept; the walker's URL set deduplicates across the whole crawl.
func (p *Parser) ListingLinks(content io.Reader) ([]string, error) {
	doc, err := html.Parse(content)
	if err != nil {
		return nil, err
	}

	links := make([]string, 0)

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" && getAttr(n, cardLinkAttr) == cardLinkValue {
			if resolved := p.resolveURL(getAttr(n, "href")); resolved != "" {
				links = append(links, resolved)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return links, nil
}

// resolveURL resolves a relative href against the base URL. Anchors and
// non-navigational schemes resolve to the empty string.
func (p *Parser) resolveURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" ||
		strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") {
		return ""
	}

	u, err := url.Parse(href)
	if err != nil {
		return ""
	}

	return p.baseURL.ResolveReference(u).String()
}

// getAttr retrieves an attribute value from an HTML node.
func getAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
