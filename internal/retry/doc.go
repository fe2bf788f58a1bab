// Package retry provides the failure-handling layer for all network and
// extraction operations: a bounded fixed-delay retry driver and a
// consecutive-failure circuit breaker.
//
// The two operate at different scopes and must not be conflated:
//
//   - Do retries one operation (one page fetch, one detail extraction)
//     up to a bound, with a fixed pause between attempts.
//   - Breaker counts page-level outcomes across distinct pages. Three
//     consecutive pages failing with the same class halts the whole
//     walk; a page that recovers within its retries resets every
//     counter.
//
// Design decision: operations return errors, and Fatal/IsFatal classify
// the non-retryable ones explicitly. This keeps expected-failure control
// flow in return values where the compiler can see it, instead of
// encoding it in panics or sentinel result types.
package retry
