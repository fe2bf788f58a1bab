package frontier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/khanh-ng/housescan/internal/config"
	"github.com/khanh-ng/housescan/internal/retry"
)

// Walker iterates the paginated search results and collects listing
// detail URLs into a URLSet.
//
// Each page fetch runs under the retry controller; a page that exhausts
// its retries is recorded against the circuit breaker and skipped, so
// one broken page never loses the rest of the walk. The breaker counts
// consecutive failed pages per failure class and ends the walk early
// when a class reaches its threshold, keeping everything collected so
// far.
type Walker struct {
	// client performs the page fetches. Listing pages render their
	// cards server side, so plain HTTP is enough here; only detail
	// pages need a browser.
	client *resty.Client

	// pageURL builds the URL of the numbered results page.
	pageURL func(page int) string

	// startPage and endPage bound the walk, inclusive. endPage <= 0
	// means unbounded: walk until a page yields zero listing links.
	startPage int
	endPage   int

	// retryCfg drives the per-page retry loop.
	retryCfg retry.Config

	// breaker tracks consecutive failed page iterations per class.
	breaker *retry.Breaker

	// limiter paces page fetches.
	limiter *rate.Limiter

	// headers and cookie are sent with every page request on top of
	// the rotating User-Agent.
	headers map[string]string
	cookie  string

	logger *slog.Logger
}

// WalkerOption configures a Walker.
type WalkerOption func(*Walker)

// WithHTTPClient replaces the default resty client.
func WithHTTPClient(client *resty.Client) WalkerOption {
	return func(w *Walker) {
		w.client = client
	}
}

// WithWalkerLogger sets the logger used for walk progress and failures.
func WithWalkerLogger(logger *slog.Logger) WalkerOption {
	return func(w *Walker) {
		w.logger = logger
	}
}

// NewWalker creates a Walker from the crawl configuration.
func NewWalker(cfg *config.Config, opts ...WalkerOption) *Walker {
	w := &Walker{
		client:    resty.New().SetTimeout(cfg.Timeout),
		pageURL:   cfg.ListingPageURL,
		startPage: cfg.StartPage,
		endPage:   cfg.EndPage,
		retryCfg: retry.Config{
			MaxAttempts: cfg.MaxRetries,
			Delay:       cfg.RetryDelay,
		},
		breaker: retry.NewBreaker(cfg.BreakerThreshold),
		limiter: rate.NewLimiter(rate.Every(cfg.CrawlDelay), 1),
		headers: cfg.Site.Headers,
		cookie:  cfg.Site.Cookie,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(w)
	}
	w.retryCfg.Logger = w.logger

	return w
}

// Walk fetches pages from startPage onward and returns the collected
// URL set. The set is returned alongside any error: a cancelled or
// breaker-tripped walk still hands back everything collected before it
// stopped, so the caller can persist a partial frontier.
func (w *Walker) Walk(ctx context.Context) (*URLSet, error) {
	set := NewURLSet()

	for page := w.startPage; w.endPage <= 0 || page <= w.endPage; page++ {
		if err := ctx.Err(); err != nil {
			return set, err
		}
		if err := w.limiter.Wait(ctx); err != nil {
			return set, err
		}

		links, err := retry.Do(ctx, w.retryCfg, fmt.Sprintf("page %d", page),
			func(ctx context.Context) ([]string, error) {
				return w.fetchPage(ctx, page)
			})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return set, err
			}

			class := classifyPageError(err)
			w.logger.Warn("page failed after retries",
				"page", page, "class", class.String(), "error", err)

			if tripErr := w.breaker.Failure(class); tripErr != nil {
				w.logger.Error("circuit breaker tripped, ending walk",
					"page", page, "class", class.String(), "collected", set.Len())
				return set, fmt.Errorf("walk aborted at page %d: %w", page, tripErr)
			}
			continue
		}

		w.breaker.Success()

		if len(links) == 0 && w.endPage <= 0 {
			w.logger.Info("empty results page ends unbounded walk", "page", page)
			break
		}

		added := 0
		for _, link := range links {
			if set.Add(link) {
				added++
			}
		}
		w.logger.Info("walked page", "page", page, "links", len(links), "new", added)
	}

	return set, nil
}

// fetchPage fetches one results page and extracts its listing links.
// Failures carry a breaker class so the walk can account for them.
func (w *Walker) fetchPage(ctx context.Context, page int) ([]string, error) {
	pageURL := w.pageURL(page)

	req := w.client.R().
		SetContext(ctx).
		SetHeader("User-Agent", config.RandomUserAgent()).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for key, value := range w.headers {
		req.SetHeader(key, value)
	}
	if w.cookie != "" {
		req.SetHeader("Cookie", w.cookie)
	}

	resp, err := req.Get(pageURL)
	if err != nil {
		return nil, &pageError{
			class: retry.ClassHTTPError,
			err:   fmt.Errorf("failed to fetch page %d: %w", page, err),
		}
	}
	if resp.StatusCode() >= 400 {
		return nil, &pageError{
			class: retry.ClassHTTPError,
			err:   fmt.Errorf("page %d returned status %d", page, resp.StatusCode()),
		}
	}

	body := resp.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, &pageError{
			class: retry.ClassEmptyBody,
			err:   fmt.Errorf("page %d returned an empty body", page),
		}
	}

	parser, err := NewParser(pageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid page URL %s: %w", pageURL, err)
	}

	return parser.ListingLinks(bytes.NewReader(body))
}

// pageError classifies a page failure for the circuit breaker.
type pageError struct {
	class retry.Class
	err   error
}

func (e *pageError) Error() string {
	return e.err.Error()
}

func (e *pageError) Unwrap() error {
	return e.err
}

// classifyPageError extracts the breaker class from a page failure.
// Failures without a class (URL construction, parse errors) count as
// HTTP errors.
func classifyPageError(err error) retry.Class {
	var perr *pageError
	if errors.As(err, &perr) {
		return perr.class
	}
	return retry.ClassHTTPError
}
