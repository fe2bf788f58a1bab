package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDo(t *testing.T) {
	t.Parallel()

	t.Run("returns first success", func(t *testing.T) {
		t.Parallel()

		calls := 0
		got, err := Do(context.Background(), Config{MaxAttempts: 3}, "op", func(context.Context) (string, error) {
			calls++
			return "ok", nil
		})
		if err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if got != "ok" || calls != 1 {
			t.Errorf("got %q after %d calls, want %q after 1", got, calls, "ok")
		}
	})

	t.Run("recovers after transient failures", func(t *testing.T) {
		t.Parallel()

		calls := 0
		got, err := Do(context.Background(), Config{MaxAttempts: 3}, "op", func(context.Context) (int, error) {
			calls++
			if calls < 3 {
				return 0, errors.New("transient")
			}
			return 42, nil
		})
		if err != nil {
			t.Fatalf("Do() error = %v", err)
		}
		if got != 42 || calls != 3 {
			t.Errorf("got %d after %d calls, want 42 after 3", got, calls)
		}
	})

	t.Run("exhaustion wraps ErrExhausted and last error", func(t *testing.T) {
		t.Parallel()

		lastErr := errors.New("still broken")
		calls := 0
		_, err := Do(context.Background(), Config{MaxAttempts: 3}, "op", func(context.Context) (int, error) {
			calls++
			return 0, lastErr
		})
		if !errors.Is(err, ErrExhausted) {
			t.Errorf("error = %v, want ErrExhausted", err)
		}
		if !errors.Is(err, lastErr) {
			t.Errorf("error = %v, want wrapped %v", err, lastErr)
		}
		if calls != 3 {
			t.Errorf("calls = %d, want 3", calls)
		}
	})

	t.Run("fatal error short-circuits", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("session gone")
		calls := 0
		_, err := Do(context.Background(), Config{MaxAttempts: 3}, "op", func(context.Context) (int, error) {
			calls++
			return 0, Fatal(boom)
		})
		if !errors.Is(err, boom) {
			t.Errorf("error = %v, want wrapped %v", err, boom)
		}
		if !IsFatal(err) {
			t.Error("fatal classification lost through Do")
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1 (no retry of fatal error)", calls)
		}
	})

	t.Run("cancelled context stops before first attempt", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		calls := 0
		_, err := Do(ctx, Config{MaxAttempts: 3}, "op", func(context.Context) (int, error) {
			calls++
			return 0, errors.New("should not run")
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
		if calls != 0 {
			t.Errorf("calls = %d, want 0", calls)
		}
	})

	t.Run("cancellation during delay stops the loop", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		_, err := Do(ctx, Config{MaxAttempts: 5, Delay: time.Minute}, "op", func(context.Context) (int, error) {
			calls++
			cancel()
			return 0, errors.New("transient")
		})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
		if calls != 1 {
			t.Errorf("calls = %d, want 1 (cancel must cut the delay short)", calls)
		}
	})
}

func TestFatal(t *testing.T) {
	t.Parallel()

	if Fatal(nil) != nil {
		t.Error("Fatal(nil) should stay nil")
	}
	if IsFatal(errors.New("plain")) {
		t.Error("plain error misclassified as fatal")
	}

	err := Fatal(errors.New("boom"))
	if !IsFatal(err) {
		t.Error("Fatal error not recognized")
	}
	// classification survives wrapping
	wrapped := errors.Join(errors.New("outer"), err)
	if !IsFatal(wrapped) {
		t.Error("fatal classification lost through wrapping")
	}
}

func TestBreaker(t *testing.T) {
	t.Parallel()

	t.Run("trips at exactly the threshold", func(t *testing.T) {
		t.Parallel()

		b := NewBreaker(3)
		if err := b.Failure(ClassHTTPError); err != nil {
			t.Fatalf("failure 1 tripped early: %v", err)
		}
		if err := b.Failure(ClassHTTPError); err != nil {
			t.Fatalf("failure 2 tripped early: %v", err)
		}
		err := b.Failure(ClassHTTPError)
		if !errors.Is(err, ErrTripped) {
			t.Errorf("failure 3 = %v, want ErrTripped", err)
		}
	})

	t.Run("success resets every class", func(t *testing.T) {
		t.Parallel()

		b := NewBreaker(3)
		_ = b.Failure(ClassHTTPError)
		_ = b.Failure(ClassHTTPError)
		_ = b.Failure(ClassEmptyBody)
		b.Success()

		if b.Count(ClassHTTPError) != 0 || b.Count(ClassEmptyBody) != 0 {
			t.Errorf("counts after Success = %d/%d, want 0/0",
				b.Count(ClassHTTPError), b.Count(ClassEmptyBody))
		}

		// Three more failures are needed to trip again.
		_ = b.Failure(ClassHTTPError)
		_ = b.Failure(ClassHTTPError)
		if err := b.Failure(ClassHTTPError); !errors.Is(err, ErrTripped) {
			t.Errorf("third failure after reset = %v, want ErrTripped", err)
		}
	})

	t.Run("classes count independently", func(t *testing.T) {
		t.Parallel()

		b := NewBreaker(3)
		_ = b.Failure(ClassHTTPError)
		_ = b.Failure(ClassEmptyBody)
		_ = b.Failure(ClassHTTPError)
		_ = b.Failure(ClassEmptyBody)

		if b.Count(ClassHTTPError) != 2 || b.Count(ClassEmptyBody) != 2 {
			t.Fatalf("counts = %d/%d, want 2/2", b.Count(ClassHTTPError), b.Count(ClassEmptyBody))
		}
		if err := b.Failure(ClassEmptyBody); !errors.Is(err, ErrTripped) {
			t.Errorf("empty-body class should trip independently, got %v", err)
		}
	})
}
