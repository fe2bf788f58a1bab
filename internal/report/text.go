package report

import (
	"fmt"
	"io"
	"strings"
)

// TextWriter outputs a short plain-text summary for the terminal. It
// is the default export format when no file output is requested.
type TextWriter struct {
	baseWriter
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer) *TextWriter {
	return &TextWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the export summary as plain text.
func (w *TextWriter) Write(export *Export) (int, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "Store:     %s\n", export.Store)
	fmt.Fprintf(&b, "Listings:  %d (%d with version history, %d rows total)\n",
		export.ListingCount(), export.VersionedCount(), export.TotalRows)

	breakdown := export.CityBreakdown()
	if len(breakdown) > 0 {
		b.WriteString("By city:\n")
		for _, cc := range breakdown {
			fmt.Fprintf(&b, "  %-20s %d\n", cc.City, cc.Count)
		}
	}

	return io.WriteString(w.output, b.String())
}
