package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/khanh-ng/housescan/internal/browser"
	"github.com/khanh-ng/housescan/internal/database"
	"github.com/khanh-ng/housescan/internal/extractor"
	"github.com/khanh-ng/housescan/internal/model"
	"github.com/khanh-ng/housescan/internal/retry"
)

// Batch handles concurrent extraction of multiple listing URLs.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate Batch rather than putting the
// fan-out inside DetailsStep because:
// 1. It keeps the step focused on wiring up its dependencies
// 2. It allows different batch strategies (e.g., per-URL rate limiting)
// 3. It can be tested without a rendered page behind it
type Batch struct {
	// pool hands out browser sessions to workers.
	pool *browser.Pool

	// extractor turns a rendered listing page into a record.
	extractor extractor.Extractor

	// store receives extracted records as new listing versions.
	store *database.ListingDB

	// retryCfg governs per-URL retries.
	retryCfg retry.Config

	// concurrency is the maximum number of concurrent extractions.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a Batch.
type BatchOption func(*Batch)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *Batch) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent extractions.
// Default is 1 if not specified. Page renders always serialize on the
// session pool's exclusive slot; extra workers overlap the parsing,
// retry waits, and storage around them.
func WithConcurrency(n int) BatchOption {
	return func(b *Batch) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatch creates a Batch over the given session pool, extractor,
// and store.
func NewBatch(pool *browser.Pool, ext extractor.Extractor, store *database.ListingDB, retryCfg retry.Config, opts ...BatchOption) *Batch {
	b := &Batch{
		pool:        pool,
		extractor:   ext,
		store:       store,
		retryCfg:    retryCfg,
		concurrency: 1,
	}

	for _, opt := range opts {
		opt(b)
	}

	if b.logger == nil {
		b.logger = slog.Default()
	}

	return b
}

// Process extracts every URL concurrently and appends the results to
// the store. A URL that keeps failing is counted and skipped; one dead
// page never stops the batch. Only cancellation ends the run early,
// and records stored before that point are kept.
//
// Returns the number of listings stored and the number given up on.
func (b *Batch) Process(ctx context.Context, urls []string) (stored, failed int64, err error) {
	b.logger.Info("starting extraction batch",
		"total_urls", len(urls),
		"concurrency", b.concurrency,
	)
	startTime := time.Now()

	var storedCount, failedCount atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)

	for i, url := range urls {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			b.logger.Debug("extracting listing",
				"url", url,
				"index", i+1,
				"total", len(urls),
			)

			rec, err := b.extractOne(gctx, url)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				failedCount.Add(1)
				b.logger.Error("giving up on listing", "url", url, "error", err)
				return nil
			}

			if err := b.store.Append(gctx, rec); err != nil {
				failedCount.Add(1)
				b.logger.Error("failed to store listing", "url", url, "error", err)
				return nil
			}

			storedCount.Add(1)
			return nil
		})
	}

	waitErr := g.Wait()

	b.logger.Info("extraction batch complete",
		"stored", storedCount.Load(),
		"failed", failedCount.Load(),
		"elapsed", time.Since(startTime),
	)

	return storedCount.Load(), failedCount.Load(), waitErr
}

// extractOne runs one URL through the retry controller. A session that
// produced a fatal browser error is discarded inside the attempt, so
// the following attempt acquires a fresh one.
func (b *Batch) extractOne(ctx context.Context, url string) (*model.ListingRecord, error) {
	return retry.Do(ctx, b.retryCfg, "extract "+url,
		func(ctx context.Context) (*model.ListingRecord, error) {
			sess, err := b.pool.Acquire(ctx)
			if err != nil {
				if errors.Is(err, browser.ErrPoolClosed) {
					return nil, retry.Fatal(err)
				}
				return nil, err
			}
			defer b.pool.Release(sess)

			rec, err := b.extractor.Extract(ctx, sess, url)
			if err != nil {
				if browser.IsFatal(err) {
					b.pool.Discard(sess)
				}
				return nil, err
			}
			return rec, nil
		})
}
