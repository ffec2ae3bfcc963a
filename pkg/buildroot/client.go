// Package buildroot scrapes LTTng package versions from the Buildroot cgit
// instance.
//
// Buildroot isn't covered by Repology, but its cgit serves the raw .mk
// package files per release branch. Each LTTng package file carries a
// LTTNG_*_VERSION assignment; walking the release branches quarter by
// quarter recovers the full history.
package buildroot

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/eepp/lttngpack/pkg/cache"
	"github.com/eepp/lttngpack/pkg/distro"
	"github.com/eepp/lttngpack/pkg/fetch"
)

// Buildroot releases quarterly: YYYY.02, YYYY.05, YYYY.08, YYYY.11.
// 2019.02 is the first series shipping all three LTTng packages.
const (
	startYear  = 2019
	startMonth = 2
	monthStep  = 3
	lastMonth  = 11
)

// packages are the Buildroot package directory names for the LTTng components.
var packages = []string{"lttng-tools", "lttng-libust", "lttng-modules"}

var versionRE = regexp.MustCompile(`(?m)^LTTNG_.+_VERSION\s+=\s+(\S+)`)

// Client scrapes the Buildroot cgit instance.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*fetch.Client
	baseURL string
	refresh bool
}

// NewClient creates a Buildroot client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration, refresh bool) *Client {
	return &Client{
		Client:  fetch.NewClient(backend, "buildroot:", cacheTTL, nil),
		baseURL: "https://git.buildroot.net",
		refresh: refresh,
	}
}

// NewClientWithBaseURL creates a client against a custom cgit endpoint.
// Used by tests to point at a fake server.
func NewClientWithBaseURL(backend cache.Cache, cacheTTL time.Duration, refresh bool, baseURL string) *Client {
	c := NewClient(backend, cacheTTL, refresh)
	c.baseURL = baseURL
	return c
}

// Name returns the provider's display name.
func (c *Client) Name() string { return "Buildroot" }

// Fetch walks the Buildroot release series starting at 2019.02 and collects
// the LTTng package versions of each. Iteration stops at the first series
// whose branch doesn't exist yet.
func (c *Client) Fetch(ctx context.Context) (*distro.Distro, error) {
	var releases []distro.Release

	year, month := startYear, startMonth
	for {
		series := fmt.Sprintf("%d.%02d", year, month)
		rel, err := c.release(ctx, series)
		if err != nil {
			return nil, err
		}
		if rel == nil {
			break
		}
		releases = append(releases, *rel)

		month += monthStep
		if month > lastMonth {
			year++
			month = startMonth
		}
	}

	return &distro.Distro{Name: c.Name(), Releases: releases}, nil
}

// release fetches one release series. Returns nil if the series' branch
// doesn't exist (the lttng-tools package file is missing), which ends the
// walk. A missing companion package only omits that package.
func (c *Client) release(ctx context.Context, series string) (*distro.Release, error) {
	rel := distro.Release{Version: series}

	for i, name := range packages {
		pkg, err := c.packageVersion(ctx, series, name)
		if err != nil {
			return nil, err
		}
		if pkg == nil {
			if i == 0 {
				return nil, nil // no lttng-tools: branch doesn't exist
			}
			continue
		}
		rel.Packages = append(rel.Packages, *pkg)
	}
	return &rel, nil
}

// packageVersion fetches and parses one package's .mk file for a series.
// Returns nil if the branch doesn't exist or the file carries no version.
func (c *Client) packageVersion(ctx context.Context, series, name string) (*distro.Package, error) {
	url := fmt.Sprintf("%s/buildroot/plain/package/%s/%s.mk?h=%s.x", c.baseURL, name, name, series)
	key := fmt.Sprintf("%s:%s", series, name)

	text, err := c.CachedText(ctx, key, c.refresh, func() (string, error) {
		return c.GetText(ctx, url)
	})
	if errors.Is(err, fetch.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	// cgit answers 200 with an error page for unknown branches.
	if strings.Contains(text, "Invalid branch") {
		return nil, nil
	}

	m := versionRE.FindStringSubmatch(text)
	if m == nil {
		return nil, nil
	}
	return &distro.Package{Name: name, Version: m[1]}, nil
}

// Ensure Client implements distro.Provider.
var _ distro.Provider = (*Client)(nil)
