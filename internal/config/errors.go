package config

import "errors"

// Configuration validation errors returned by Config.Validate().
//
// Design decision: package-level sentinel errors rather than ad-hoc
// errors.New calls inside Validate, so callers can match with errors.Is
// while the messages stay human-readable.
var (
	// ErrNoBaseURL is returned when the listing site base URL is empty.
	ErrNoBaseURL = errors.New("no base URL configured")

	// ErrInvalidPageRange is returned when the start page is below 1 or
	// the end page precedes the start page.
	ErrInvalidPageRange = errors.New("invalid page range: start must be >= 1 and end must be 0 (unbounded) or >= start")

	// ErrInvalidMaxRetries is returned when the retry bound is below 1.
	// At least one attempt is required for any operation to run at all.
	ErrInvalidMaxRetries = errors.New("invalid max retries: must be at least 1")

	// ErrInvalidRetryDelay is returned when the inter-attempt delay is
	// negative. Zero is valid and means retry immediately.
	ErrInvalidRetryDelay = errors.New("invalid retry delay: must be non-negative")

	// ErrInvalidTimeout is returned when the request timeout is not
	// positive; a zero timeout would fail every fetch immediately.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidWorkers is returned when the detail worker count is
	// below 1.
	ErrInvalidWorkers = errors.New("invalid workers: must be at least 1")
)
