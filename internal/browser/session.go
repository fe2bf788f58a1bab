package browser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/khanh-ng/housescan/internal/config"
)

// Session is one headless Chrome instance. The browser context stays
// resident across navigations, so one session amortizes Chrome's
// startup cost over the whole detail phase.
//
// A session whose underlying browser has died reports errors wrapping
// ErrSessionDead from HTML; the pool replaces it on the next Acquire.
type Session struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc

	renderWait time.Duration
	timeout    time.Duration
	logger     *slog.Logger
}

// SessionOptions configures browser sessions created by the pool.
type SessionOptions struct {
	// RenderWait is the settle time after navigation when no wait
	// selector is given.
	RenderWait time.Duration

	// Timeout bounds a single HTML call, navigation included.
	Timeout time.Duration

	// Headless disables the visible browser window. Tests and debugging
	// may turn it off.
	Headless bool

	// UserAgent overrides the rotating pool. Empty picks randomly.
	UserAgent string

	Logger *slog.Logger
}

// DefaultSessionOptions returns the options used by the detail phase.
func DefaultSessionOptions() SessionOptions {
	return SessionOptions{
		RenderWait: config.DefaultRenderWait,
		Timeout:    60 * time.Second,
		Headless:   true,
	}
}

// newSession builds the allocator and browser contexts. Chrome itself
// launches lazily on the first navigation, so construction is cheap
// and never fails; launch errors surface from HTML.
func newSession(opts SessionOptions) *Session {
	ua := opts.UserAgent
	if ua == "" {
		ua = config.RandomUserAgent()
	}

	execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.UserAgent(ua),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), execOpts...)
	ctx, cancel := chromedp.NewContext(allocCtx)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Session{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		ctx:         ctx,
		cancel:      cancel,
		renderWait:  opts.RenderWait,
		timeout:     opts.Timeout,
		logger:      logger,
	}
}

// HTML navigates to pageURL and returns the rendered document. When
// waitSelector is non-empty the call waits for that element; otherwise
// it sleeps for the configured render wait. The caller's ctx cancels
// the navigation without killing the browser.
func (s *Session) HTML(ctx context.Context, pageURL, waitSelector string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if !s.Alive() {
		return "", fmt.Errorf("navigate %s: %w", pageURL, ErrSessionDead)
	}

	runCtx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	// Propagate caller cancellation into the chromedp context without
	// tearing down the session itself.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	actions := []chromedp.Action{chromedp.Navigate(pageURL)}
	if waitSelector != "" {
		actions = append(actions, chromedp.WaitReady(waitSelector, chromedp.ByQuery))
	} else if s.renderWait > 0 {
		actions = append(actions, chromedp.Sleep(s.renderWait))
	}

	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	start := time.Now()
	if err := chromedp.Run(runCtx, actions...); err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return "", cerr
		}
		if !s.Alive() || isBrowserGone(err) {
			return "", fmt.Errorf("navigate %s: %w: %v", pageURL, ErrSessionDead, err)
		}
		return "", fmt.Errorf("navigate %s: %w", pageURL, err)
	}

	s.logger.Debug("rendered page",
		"url", pageURL, "latency_ms", time.Since(start).Milliseconds(), "html_bytes", len(html))

	return html, nil
}

// Alive reports whether the browser context is still usable.
func (s *Session) Alive() bool {
	return s.ctx.Err() == nil
}

// close tears down the browser and its allocator.
func (s *Session) close() {
	s.cancel()
	s.allocCancel()
}

// isBrowserGone recognizes chromedp failures that mean the Chrome
// process or its connection died, as opposed to a page-level problem.
func isBrowserGone(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "chrome failed to start") ||
		strings.Contains(msg, "websocket") ||
		strings.Contains(msg, "context canceled")
}

// IsFatal reports whether err means the session's browser is gone and
// the session must be discarded. Page-level failures, timeouts
// included, leave the session usable.
func IsFatal(err error) bool {
	return errors.Is(err, ErrSessionDead)
}
