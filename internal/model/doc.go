// Package model defines the core data structures used throughout housescan.
//
// The central type is ListingRecord, one immutable snapshot of a property
// listing at extraction time. Multiple records may share a PropertyID; the
// store keeps every version and flags superseded rows.
//
// Design decision: ListingRecord is a struct with explicit fields rather
// than a generic key/value map so the identity field and the optional-ness
// of every other field are enforced at construction time. Several packages
// (extractor, database, report) share these types, so centralizing them
// here prevents import cycles.
package model
