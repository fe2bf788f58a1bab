package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default site configuration file name.
const DefaultConfigFile = ".housescan"

// ErrConfigNotFound is returned when the site configuration file does
// not exist. Callers decide whether that matters: an explicitly given
// path that is missing is an error, a missing default file is not.
var ErrConfigNotFound = errors.New("configuration file not found")

// SiteConfig holds per-site settings loaded from the .housescan file.
// These cover the knobs that vary between deployments of the same
// crawler without a rebuild: auth, politeness, and the page window.
type SiteConfig struct {
	// Cookie is sent with every request to the site.
	// Format: "name=value" or "name1=value1; name2=value2".
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers for every request.
	Headers map[string]string `yaml:"headers,omitempty"`

	// StartPage and EndPage override the page range when non-zero.
	StartPage int `yaml:"startPage,omitempty"`
	EndPage   int `yaml:"endPage,omitempty"`

	// CrawlDelay overrides the listing-page pacing when set
	// (Go duration string, e.g. "750ms").
	CrawlDelay string `yaml:"crawlDelay,omitempty"`
}

// LoadConfigFile loads site settings from a YAML file.
// Returns ErrConfigNotFound when the file does not exist.
func LoadConfigFile(path string) (*SiteConfig, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var sc SiteConfig
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}

// FindConfigFile searches for the site configuration file:
//  1. the explicit path, when given
//  2. .housescan in the current directory
//  3. .housescan in the user's home directory
//
// Returns the path found, or empty string.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		p := filepath.Join(home, DefaultConfigFile)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// ApplySite merges the loaded site settings into the config. Only
// non-zero values override.
func (c *Config) ApplySite(site *SiteConfig) {
	if site == nil {
		return
	}
	c.Site = *site
	if site.StartPage > 0 {
		c.StartPage = site.StartPage
	}
	if site.EndPage > 0 {
		c.EndPage = site.EndPage
	}
	if site.CrawlDelay != "" {
		if d, err := time.ParseDuration(site.CrawlDelay); err == nil {
			c.CrawlDelay = d
		}
	}
}
