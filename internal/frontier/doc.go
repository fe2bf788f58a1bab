// Package frontier walks the paginated search results of the listing
// site and maintains the crawl frontier: the set of listing detail
// URLs to extract.
//
// The walk is the cheap phase of the pipeline. Pages are fetched with
// plain HTTP under a rate limiter, each page retried on failure, and
// runs of consecutive failed pages cut short by a circuit breaker. The
// resulting URL set is persisted as a sorted JSON manifest that the
// detail-extraction phase consumes.
package frontier
