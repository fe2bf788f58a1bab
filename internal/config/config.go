package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/joho/godotenv"
)

// Default configuration values. These mirror the operational defaults the
// crawler has been run with in production; all of them can be overridden
// via environment variables, the .housescan file, or CLI flags.
const (
	// DefaultBaseURL is the root of the listing site. Relative card links
	// discovered on listing pages are resolved against it.
	DefaultBaseURL = "https://onehousing.vn"

	// DefaultListingPath is the paginated listing endpoint. The page
	// number is appended as the "page" query parameter.
	DefaultListingPath = "/nha-dat-ban"

	// DefaultMaxRetries is the per-operation retry bound. Three attempts
	// recover the vast majority of transient fetch failures without
	// stalling the walk on genuinely dead pages.
	DefaultMaxRetries = 3

	// DefaultRetryDelay is the fixed pause between retry attempts.
	// Deliberately fixed rather than exponential: the site throttles by
	// request burst, not by sustained rate, so backoff buys nothing.
	DefaultRetryDelay = 2 * time.Second

	// DefaultBreakerThreshold is the number of consecutive same-class
	// page failures that halts the whole walk.
	DefaultBreakerThreshold = 3

	// DefaultTimeout is the per-request timeout for listing page fetches.
	DefaultTimeout = 10 * time.Second

	// DefaultRenderWait is how long a detail page is given to render
	// before its DOM is read.
	DefaultRenderWait = 5 * time.Second

	// DefaultStartPage is the first listing page index (the site counts
	// from 1).
	DefaultStartPage = 1

	// DefaultEndPage of 0 selects unbounded mode: the walk continues
	// until a page yields zero listing links.
	DefaultEndPage = 0

	// DefaultCrawlDelay paces listing-page fetches. A politeness
	// setting, not a correctness one.
	DefaultCrawlDelay = 500 * time.Millisecond

	// DefaultWorkers is the number of concurrent detail extractions.
	// The browser pool holds a single session, so raising this only
	// helps once the pool grows with it.
	DefaultWorkers = 1

	// AppName is the application name used for XDG directory paths.
	AppName = "housescan"

	// ManifestFileName is the frontier manifest written after a crawl.
	ManifestFileName = "listing_urls.json"

	// DBFileName is the SQLite store file name inside the output dir.
	DBFileName = "listings.db"
)

// Config holds all options for a housescan run. It is populated from
// defaults, then environment variables, then the optional .housescan
// file, then CLI flags, and passed through the application by value
// injection rather than global state.
type Config struct {
	// BaseURL is the site root used to resolve relative listing links.
	BaseURL string

	// ListingPath is the paginated listing endpoint under BaseURL.
	ListingPath string

	// OutputDir is where the manifest and store live by default.
	OutputDir string

	// ManifestPath is the frontier manifest location. Defaults to
	// OutputDir/listing_urls.json.
	ManifestPath string

	// DBPath is the SQLite store location. Defaults to
	// OutputDir/listings.db.
	DBPath string

	// StartPage and EndPage bound the listing walk, both inclusive.
	// EndPage 0 means unbounded: walk until an empty page.
	StartPage int
	EndPage   int

	// MaxRetries bounds attempts per fetch or extract operation.
	MaxRetries int

	// RetryDelay is the fixed pause between attempts.
	RetryDelay time.Duration

	// BreakerThreshold is the consecutive same-class page-failure count
	// that halts the walk.
	BreakerThreshold int

	// Timeout applies to each listing-page HTTP request.
	Timeout time.Duration

	// RenderWait is the detail-page render settle time.
	RenderWait time.Duration

	// CrawlDelay paces listing-page fetches.
	CrawlDelay time.Duration

	// Workers is the number of concurrent detail extractions.
	Workers int

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// Site holds optional per-site settings loaded from the .housescan
	// file (cookie, extra headers, page range override).
	Site SiteConfig
}

// New returns a Config populated with defaults and environment
// overrides. A .env file in the working directory is honored when
// present; its absence is not an error.
func New() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[config] skipping .env: %v", err)
	}

	outputDir := getEnv("HOUSESCAN_OUTPUT_DIR", filepath.Join(xdg.DataHome, AppName))

	return &Config{
		BaseURL:          getEnv("HOUSESCAN_BASE_URL", DefaultBaseURL),
		ListingPath:      getEnv("HOUSESCAN_LISTING_PATH", DefaultListingPath),
		OutputDir:        outputDir,
		ManifestPath:     getEnv("HOUSESCAN_MANIFEST_PATH", filepath.Join(outputDir, ManifestFileName)),
		DBPath:           getEnv("HOUSESCAN_DB_PATH", filepath.Join(outputDir, DBFileName)),
		StartPage:        getEnvInt("HOUSESCAN_START_PAGE", DefaultStartPage),
		EndPage:          getEnvInt("HOUSESCAN_END_PAGE", DefaultEndPage),
		MaxRetries:       getEnvInt("HOUSESCAN_MAX_RETRIES", DefaultMaxRetries),
		RetryDelay:       getEnvDuration("HOUSESCAN_RETRY_DELAY", DefaultRetryDelay),
		BreakerThreshold: DefaultBreakerThreshold,
		Timeout:          getEnvDuration("HOUSESCAN_TIMEOUT", DefaultTimeout),
		RenderWait:       getEnvDuration("HOUSESCAN_RENDER_WAIT", DefaultRenderWait),
		CrawlDelay:       getEnvDuration("HOUSESCAN_CRAWL_DELAY", DefaultCrawlDelay),
		Workers:          getEnvInt("HOUSESCAN_WORKERS", DefaultWorkers),
	}
}

// ListingPageURL returns the URL of one listing page index.
func (c *Config) ListingPageURL(page int) string {
	return c.BaseURL + c.ListingPath + "?page=" + strconv.Itoa(page)
}

// Unbounded reports whether the walk runs until an empty page instead
// of a fixed range.
func (c *Config) Unbounded() bool {
	return c.EndPage <= 0
}

// Validate checks the configuration and returns the first problem found.
// Called once after flag parsing, before any phase starts, so failures
// surface before network or disk work begins.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrNoBaseURL
	}
	if c.StartPage < 1 {
		return ErrInvalidPageRange
	}
	if c.EndPage != 0 && c.EndPage < c.StartPage {
		return ErrInvalidPageRange
	}
	if c.MaxRetries < 1 {
		return ErrInvalidMaxRetries
	}
	if c.RetryDelay < 0 {
		return ErrInvalidRetryDelay
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Workers < 1 {
		return ErrInvalidWorkers
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
		log.Printf("[config] ignoring malformed %s=%q", key, val)
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
		log.Printf("[config] ignoring malformed %s=%q", key, val)
	}
	return fallback
}
