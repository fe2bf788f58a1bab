// Package report renders the current view of a listing store for
// humans and downstream tools.
//
// An Export pairs the latest version of every listing with store-level
// counts; writers serialize it as JSON, a Markdown report, or a plain
// terminal summary.
package report
