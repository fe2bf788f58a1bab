package frontier

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

var (
	// ErrManifestNotFound is returned by LoadManifest when the manifest
	// file does not exist. The detail phase must not run against a
	// frontier that was never written.
	ErrManifestNotFound = errors.New("frontier manifest not found")

	// ErrManifestMalformed is returned when the manifest file exists
	// but is not a JSON string array.
	ErrManifestMalformed = errors.New("frontier manifest is malformed")
)

// URLSet is a deduplicating collection of listing URLs. It is not safe
// for concurrent use; the walker fills it from a single goroutine.
type URLSet struct {
	urls map[string]struct{}
}

// NewURLSet creates an empty URLSet.
func NewURLSet() *URLSet {
	return &URLSet{urls: make(map[string]struct{})}
}

// Add inserts a URL and reports whether it was new.
func (s *URLSet) Add(url string) bool {
	if _, ok := s.urls[url]; ok {
		return false
	}
	s.urls[url] = struct{}{}
	return true
}

// Contains reports whether the set holds url.
func (s *URLSet) Contains(url string) bool {
	_, ok := s.urls[url]
	return ok
}

// Len returns the number of distinct URLs.
func (s *URLSet) Len() int {
	return len(s.urls)
}

// Sorted returns the URLs in lexicographic order. The manifest is
// written from this so successive crawls produce diffable files.
func (s *URLSet) Sorted() []string {
	urls := make([]string, 0, len(s.urls))
	for u := range s.urls {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}

// SaveManifest writes the set to path as a sorted JSON string array,
// creating parent directories as needed.
func SaveManifest(path string, set *URLSet) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}

	data, err := json.MarshalIndent(set.Sorted(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}

// LoadManifest reads a manifest written by SaveManifest. A missing or
// malformed file is an error, never an empty frontier.
func LoadManifest(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrManifestNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var urls []string
	if err := json.Unmarshal(data, &urls); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrManifestMalformed, path, err)
	}

	return urls, nil
}
