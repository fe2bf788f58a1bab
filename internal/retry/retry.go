package retry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrExhausted wraps the last error after all attempts failed.
// Callers that treat "not obtained" as a loggable, non-fatal outcome
// match it with errors.Is.
var ErrExhausted = errors.New("all retry attempts failed")

// fatalError marks an error that must not be retried.
type fatalError struct {
	err error
}

func (e *fatalError) Error() string { return e.err.Error() }
func (e *fatalError) Unwrap() error { return e.err }

// Fatal wraps err so Do propagates it immediately instead of retrying.
// Use it for failures a retry cannot fix, such as a tripped circuit
// breaker or a cancelled run.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

// IsFatal reports whether err was wrapped by Fatal.
func IsFatal(err error) bool {
	var fe *fatalError
	return errors.As(err, &fe)
}

// Config holds the parameters for the retry driver.
type Config struct {
	// MaxAttempts bounds the number of executions, including the first.
	MaxAttempts int

	// Delay is the fixed pause between attempts. Fixed rather than
	// exponential: the failures being retried are page-level hiccups,
	// not load shedding.
	Delay time.Duration

	// Logger receives a warn line per failed attempt. Nil uses
	// slog.Default().
	Logger *slog.Logger
}

// Do executes op up to cfg.MaxAttempts times and returns the first
// successful result. The context is checked before every attempt and
// during every inter-attempt delay, so a cancelled run stops without
// waiting out the pause. An error wrapped with Fatal short-circuits the
// loop and is returned as-is. After the final attempt the last error is
// returned wrapped in ErrExhausted.
func Do[T any](ctx context.Context, cfg Config, name string, op func(context.Context) (T, error)) (T, error) {
	var zero T

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		if IsFatal(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}

		lastErr = err
		if attempt < attempts {
			logger.Warn("operation failed, retrying",
				"operation", name,
				"attempt", attempt,
				"max_attempts", attempts,
				"error", err,
			)
			if err := sleep(ctx, cfg.Delay); err != nil {
				return zero, err
			}
		}
	}

	return zero, fmt.Errorf("%s: %w: %w", name, ErrExhausted, lastErr)
}

// sleep waits for d or until ctx is cancelled, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
