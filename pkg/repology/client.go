// Package repology provides access to the Repology package metadata API.
//
// Repology (https://repology.org) aggregates package information across
// distribution repositories. A single "project" (e.g., lttng-tools) maps to
// one entry per (repository, package) pair; lttngpack uses those entries to
// recover which LTTng version each distro release ships.
package repology

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eepp/lttngpack/pkg/cache"
	"github.com/eepp/lttngpack/pkg/fetch"
)

// PackageEntry is one (repository, package) pair from the Repology project API.
//
// Zero values: all fields empty. This struct is safe for concurrent reads
// after construction.
type PackageEntry struct {
	Repo        string `json:"repo"`        // Repology repository identifier (e.g., "alpine_3_19", "debian_bookworm")
	VisibleName string `json:"visiblename"` // Package name as shown by the repository (e.g., "lttng-ust")
	Version     string `json:"version"`     // Packaged version string (e.g., "2.13.8")
}

// Client provides access to the Repology API.
// It handles HTTP requests with caching and automatic retries.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*fetch.Client
	baseURL string
}

// NewClient creates a Repology client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration) *Client {
	return &Client{
		Client:  fetch.NewClient(backend, "repology:", cacheTTL, nil),
		baseURL: "https://repology.org/api/v1",
	}
}

// NewClientWithBaseURL creates a client against a custom API endpoint.
// Used by tests to point at a fake server.
func NewClientWithBaseURL(backend cache.Cache, cacheTTL time.Duration, baseURL string) *Client {
	c := NewClient(backend, cacheTTL)
	c.baseURL = baseURL
	return c
}

// Project retrieves all package entries for a Repology project.
//
// If refresh is true, the cache is bypassed and a fresh API call is made.
//
// Returns:
//   - the project's entries on success (possibly empty)
//   - [fetch.ErrNotFound] if the project doesn't exist
//   - [fetch.ErrNetwork] for HTTP failures (timeout, 5xx, etc.)
func (c *Client) Project(ctx context.Context, name string, refresh bool) ([]PackageEntry, error) {
	var entries []PackageEntry
	err := c.Cached(ctx, name, refresh, &entries, func() error {
		url := fmt.Sprintf("%s/project/%s", c.baseURL, name)
		if err := c.Get(ctx, url, &entries); err != nil {
			if errors.Is(err, fetch.ErrNotFound) {
				return fmt.Errorf("%w: repology project %s", err, name)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Projects retrieves and concatenates the entries of several projects,
// preserving the order of names. A missing project fails the whole call.
func (c *Client) Projects(ctx context.Context, names []string, refresh bool) ([]PackageEntry, error) {
	var all []PackageEntry
	for _, name := range names {
		entries, err := c.Project(ctx, name, refresh)
		if err != nil {
			return nil, err
		}
		all = append(all, entries...)
	}
	return all, nil
}
