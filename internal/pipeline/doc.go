// Package pipeline orchestrates the crawl and extraction phases.
//
// A Pipeline executes Steps in order against a shared Result. The two
// production steps are CrawlStep, which walks the paginated listing
// pages into a URL manifest, and DetailsStep, which renders each
// manifest URL in headless Chrome and appends the extracted record to
// the versioned store. Batch provides the bounded concurrent fan-out
// used by the details phase.
package pipeline
