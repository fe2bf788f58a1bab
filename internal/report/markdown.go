package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// maxTableListings caps the per-listing table so a full crawl's export
// stays readable; the JSON writer carries the complete data.
const maxTableListings = 50

// MarkdownWriter outputs exports as a Markdown summary report.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the export in Markdown format.
func (w *MarkdownWriter) Write(export *Export) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, export)
	w.writeCityBreakdown(md, export)
	w.writeListings(md, export)

	return len(md.String()), md.Build()
}

// writeHeader writes the store-level counts.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, export *Export) {
	md.H1("Listing Store Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Store", "`" + export.Store + "`"},
			{"Generated", export.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Listings", strconv.Itoa(export.ListingCount())},
			{"With version history", strconv.Itoa(export.VersionedCount())},
			{"Total stored rows", strconv.Itoa(export.TotalRows)},
		},
	})
	md.PlainText("")
}

// writeCityBreakdown writes per-city counts with a pie chart.
func (w *MarkdownWriter) writeCityBreakdown(md *markdown.Markdown, export *Export) {
	md.H2("Listings by City")
	md.PlainText("")

	breakdown := export.CityBreakdown()
	if len(breakdown) == 0 {
		md.PlainText("No listings in the store.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(breakdown))
	for i, cc := range breakdown {
		rows[i] = []string{cc.City, strconv.Itoa(cc.Count)}
	}
	md.Table(markdown.TableSet{
		Header: []string{"City", "Listings"},
		Rows:   rows,
	})
	md.PlainText("")

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Listing Distribution by City"),
		piechart.WithShowData(true),
	)
	for _, cc := range breakdown {
		chart.LabelAndIntValue(cc.City, uint64(cc.Count))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeListings writes the listing table, truncated past the cap.
func (w *MarkdownWriter) writeListings(md *markdown.Markdown, export *Export) {
	md.H2("Listings")
	md.PlainText("")

	if export.ListingCount() == 0 {
		md.PlainText("No listings in the store.")
		md.PlainText("")
		return
	}

	listings := export.Listings
	truncated := false
	if len(listings) > maxTableListings {
		listings = listings[:maxTableListings]
		truncated = true
	}

	rows := make([][]string, len(listings))
	for i, rec := range listings {
		district := rec.District
		if district == "" {
			district = "-"
		}
		rows[i] = []string{
			rec.PropertyID,
			truncateString(rec.Title, 50),
			rec.TotalPrice,
			district,
			"[link](" + rec.URL + ")",
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"ID", "Title", "Price", "District", "URL"},
		Rows:   rows,
	})
	md.PlainText("")

	if truncated {
		md.PlainTextf("*Showing %d of %d listings. Use the JSON export for the full set.*",
			maxTableListings, export.ListingCount())
		md.PlainText("")
	}
}

// truncateString truncates a string to maxLen runes with ellipsis.
// Rune-based so Vietnamese titles never get cut mid-character.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
