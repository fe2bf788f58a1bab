// Package main provides the entry point for the housescan CLI.
//
// housescan crawls a real-estate listing site in two phases: walking
// the paginated search results into a URL manifest, then extracting
// each listing's details through headless Chrome into a versioned
// SQLite store. Stores from separate crawls can be merged, and the
// current view exported as JSON or Markdown.
//
// Usage:
//
//	housescan crawl
//	housescan details
//	housescan run
//	housescan merge --secondary other.db
//	housescan export --json
//
// See --help for all available options.
package main

// main is the entry point for housescan.
func main() {
	Execute()
}
