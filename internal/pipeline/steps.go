package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/khanh-ng/housescan/internal/browser"
	"github.com/khanh-ng/housescan/internal/config"
	"github.com/khanh-ng/housescan/internal/database"
	"github.com/khanh-ng/housescan/internal/extractor"
	"github.com/khanh-ng/housescan/internal/frontier"
	"github.com/khanh-ng/housescan/internal/retry"
)

// sessionTimeout bounds a single page render inside the browser.
const sessionTimeout = 60 * time.Second

// CrawlStep walks the paginated listing pages and writes the URL
// manifest. The manifest is saved even when the walk ends early, so
// an interrupted crawl loses nothing.
type CrawlStep struct {
	cfg    *config.Config
	logger *slog.Logger
}

// NewCrawlStep creates the crawl phase of the pipeline.
func NewCrawlStep(cfg *config.Config, logger *slog.Logger) *CrawlStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &CrawlStep{cfg: cfg, logger: logger}
}

// Name returns the step name for logging.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do walks the listing pages and persists the manifest. A tripped
// breaker is recorded in the result and is not an error: the URLs
// collected before the trip are a usable frontier.
func (s *CrawlStep) Do(ctx context.Context, res *Result) error {
	walker := frontier.NewWalker(s.cfg, frontier.WithWalkerLogger(s.logger))
	set, walkErr := walker.Walk(ctx)

	if err := frontier.SaveManifest(s.cfg.ManifestPath, set); err != nil {
		return err
	}
	res.ManifestPath = s.cfg.ManifestPath
	res.FrontierSize = set.Len()

	switch {
	case walkErr == nil:
		return nil
	case errors.Is(walkErr, retry.ErrTripped):
		s.logger.Warn("walk stopped early", "error", walkErr)
		res.StoppedEarly = true
		return nil
	default:
		return walkErr
	}
}

// DetailsStep reads the URL manifest, renders each listing page in
// headless Chrome, and appends the extracted records into the SQLite
// store as new versions of their listings.
type DetailsStep struct {
	cfg       *config.Config
	extractor extractor.Extractor
	logger    *slog.Logger
}

// NewDetailsStep creates the extraction phase of the pipeline.
func NewDetailsStep(cfg *config.Config, logger *slog.Logger) *DetailsStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &DetailsStep{
		cfg:       cfg,
		extractor: extractor.NewOneHousing(logger),
		logger:    logger,
	}
}

// Name returns the step name for logging.
func (s *DetailsStep) Name() string {
	return "details"
}

// Do extracts every manifest URL into the store. A missing manifest is
// a hard error; an empty one completes the step with nothing stored.
func (s *DetailsStep) Do(ctx context.Context, res *Result) error {
	urls, err := frontier.LoadManifest(s.cfg.ManifestPath)
	if err != nil {
		return err
	}
	if len(urls) == 0 {
		s.logger.Info("manifest is empty, nothing to extract")
		return nil
	}

	db, err := database.Open(s.cfg.DBPath, database.Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
		Logger:            s.logger,
	})
	if err != nil {
		return err
	}
	defer db.Close()

	pool := browser.NewPool(
		browser.WithPoolLogger(s.logger),
		browser.WithSessionOptions(browser.SessionOptions{
			RenderWait: s.cfg.RenderWait,
			Timeout:    sessionTimeout,
			Headless:   true,
			Logger:     s.logger,
		}),
	)
	defer pool.CloseAll()

	batch := NewBatch(pool, s.extractor, db,
		retry.Config{
			MaxAttempts: s.cfg.MaxRetries,
			Delay:       s.cfg.RetryDelay,
			Logger:      s.logger,
		},
		WithConcurrency(s.cfg.Workers),
		WithBatchLogger(s.logger),
	)

	stored, failed, batchErr := batch.Process(ctx, urls)
	res.Stored = stored
	res.Failed = failed
	return batchErr
}
