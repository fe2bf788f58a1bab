package retry

import (
	"errors"
	"fmt"
)

// ErrTripped is returned by Breaker.Failure when a failure class has
// reached its consecutive threshold. It signals a crawl-halting
// condition, distinct from ErrExhausted which is local to one page.
var ErrTripped = errors.New("circuit breaker tripped")

// Class identifies an independent consecutive-failure counter.
type Class int

// Failure classes tracked by the breaker. HTTP errors and empty bodies
// indicate different site states (blocking vs. walked-past-the-end or
// broken rendering), so each gets its own run counter.
const (
	ClassHTTPError Class = iota
	ClassEmptyBody
)

// String returns the class name for logs and error messages.
func (c Class) String() string {
	switch c {
	case ClassHTTPError:
		return "http-error"
	case ClassEmptyBody:
		return "empty-body"
	default:
		return fmt.Sprintf("class(%d)", int(c))
	}
}

// Breaker escalates a run of consecutive same-class failures into a
// hard stop. It counts page-level outcomes: one exhausted page counts
// once regardless of how many retry attempts it consumed, and any
// successful page resets every class.
//
// The breaker is used by a single walking goroutine and is not
// synchronized.
type Breaker struct {
	threshold int
	counts    map[Class]int
}

// NewBreaker creates a Breaker that trips after threshold consecutive
// failures of one class. Thresholds below 1 are coerced to 1.
func NewBreaker(threshold int) *Breaker {
	if threshold < 1 {
		threshold = 1
	}
	return &Breaker{
		threshold: threshold,
		counts:    make(map[Class]int),
	}
}

// Failure records one page-level failure of the given class. It returns
// an error wrapping ErrTripped when that class reaches the threshold,
// and nil otherwise.
func (b *Breaker) Failure(class Class) error {
	b.counts[class]++
	if b.counts[class] >= b.threshold {
		return fmt.Errorf("%w: %d consecutive %s failures", ErrTripped, b.counts[class], class)
	}
	return nil
}

// Success resets every class counter. A single recovered page breaks
// all failure runs.
func (b *Breaker) Success() {
	clear(b.counts)
}

// Count returns the current consecutive-failure count for a class.
func (b *Breaker) Count(class Class) int {
	return b.counts[class]
}
