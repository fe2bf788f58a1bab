// Package log provides logging with automatic masking of credentials,
// built on top of the standard slog package.
//
// Site configurations may carry session cookies and custom auth headers
// for the listing site. Request attributes are logged liberally in
// verbose mode, so the SecureHandler masks cookie-, token-, and
// auth-shaped attributes before they reach the underlying handler. This
// keeps secrets out of logs even when operators share them.
//
// Usage:
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
package log
