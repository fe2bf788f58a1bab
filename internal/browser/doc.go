// Package browser manages headless Chrome sessions for pages that only
// materialize their content after JavaScript runs.
//
// The pool keeps one resident session alive across the whole detail
// phase and replaces it when the browser dies mid-crawl. Acquire grants
// exclusive use of that session until Release, so concurrent workers
// never interleave actions on the same tab. Callers treat
// errors wrapping ErrSessionDead as fatal to the session (Discard it);
// everything else is a page-level failure worth retrying on the same
// session.
package browser
