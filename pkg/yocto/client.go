// Package yocto scrapes LTTng recipe versions from the OpenEmbedded cgit
// instance.
//
// Yocto branches are named after release codenames (kirkstone, scarthgap,
// ...). The cgit summary page lists them in its branch selector; each
// branch's meta/recipes-kernel/lttng tree names the recipe files with the
// packaged version (lttng-tools_2.13.9.bb).
package yocto

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/sync/errgroup"

	"github.com/eepp/lttngpack/pkg/cache"
	"github.com/eepp/lttngpack/pkg/distro"
	"github.com/eepp/lttngpack/pkg/fetch"
)

// branchFetchers bounds the number of branch pages fetched concurrently.
const branchFetchers = 4

// branchBlocklist filters out branches that aren't Yocto releases: work
// branches, numeric branches, master, and codenames from before the LTTng
// recipes settled in recipes-kernel/lttng.
var branchBlocklist = []*regexp.Regexp{
	regexp.MustCompile(`^.*-next.*`),
	regexp.MustCompile(`^\d`),
	regexp.MustCompile(`^daisy`),
	regexp.MustCompile(`^danny`),
	regexp.MustCompile(`^denzil`),
	regexp.MustCompile(`^dizzy`),
	regexp.MustCompile(`^dora`),
	regexp.MustCompile(`^dylan`),
	regexp.MustCompile(`^fido`),
	regexp.MustCompile(`^jethro`),
	regexp.MustCompile(`^krogoth`),
	regexp.MustCompile(`^master`),
	regexp.MustCompile(`^morty`),
	regexp.MustCompile(`^pyro`),
	regexp.MustCompile(`^rocko`),
	regexp.MustCompile(`^sumo`),
}

var (
	toolsRE   = regexp.MustCompile(`lttng-tools_([\d.]+)\.bb`)
	ustRE     = regexp.MustCompile(`lttng-ust_([\d.]+)\.bb`)
	modulesRE = regexp.MustCompile(`lttng-modules_([\d.]+)\.bb`)
)

// Client scrapes the OpenEmbedded cgit instance.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*fetch.Client
	baseURL string
	refresh bool
}

// NewClient creates a Yocto client with the given cache backend.
func NewClient(backend cache.Cache, cacheTTL time.Duration, refresh bool) *Client {
	return &Client{
		Client:  fetch.NewClient(backend, "yocto:", cacheTTL, nil),
		baseURL: "https://git.openembedded.org",
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
func (c *Client) Name() string { return "Yocto" }

// Fetch lists the release branches from the cgit summary page, then reads
// each branch's LTTng recipe directory. Branches without an lttng-tools
// recipe are skipped.
func (c *Client) Fetch(ctx context.Context) (*distro.Distro, error) {
	branches, err := c.branches(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*distro.Release, len(branches))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(branchFetchers)

	for i, branch := range branches {
		g.Go(func() error {
			rel, err := c.release(ctx, branch)
			if err != nil {
				return fmt.Errorf("branch %s: %w", branch, err)
			}
			results[i] = rel
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var releases []distro.Release
	for _, rel := range results {
		if rel != nil {
			releases = append(releases, *rel)
		}
	}
	return &distro.Distro{Name: c.Name(), Releases: releases}, nil
}

// branches scrapes the branch selector from the cgit summary page and
// filters it against the blocklist.
func (c *Client) branches(ctx context.Context) ([]string, error) {
	page, err := c.CachedText(ctx, "branches", c.refresh, func() (string, error) {
		return c.GetText(ctx, c.baseURL+"/openembedded-core/")
	})
	if err != nil {
		return nil, err
	}

	all, err := parseBranchOptions(page)
	if err != nil {
		return nil, err
	}

	var branches []string
	for _, b := range all {
		if !blocked(b) {
			branches = append(branches, b)
		}
	}
	return branches, nil
}

func blocked(branch string) bool {
	for _, re := range branchBlocklist {
		if re.MatchString(branch) {
			return true
		}
	}
	return false
}

// release reads one branch's recipe directory listing. Returns nil if the
// branch has no lttng-tools recipe; a missing companion recipe only omits
// that package.
func (c *Client) release(ctx context.Context, branch string) (*distro.Release, error) {
	url := fmt.Sprintf("%s/openembedded-core/tree/meta/recipes-kernel/lttng?h=%s", c.baseURL, branch)
	page, err := c.CachedText(ctx, "tree:"+branch, c.refresh, func() (string, error) {
		return c.GetText(ctx, url)
	})
	if err != nil {
		return nil, err
	}

	rel := distro.Release{Version: branch}
	for _, rc := range []struct {
		name string
		re   *regexp.Regexp
	}{
		{"lttng-tools", toolsRE},
		{"lttng-ust", ustRE},
		{"lttng-modules", modulesRE},
	} {
		m := rc.re.FindStringSubmatch(page)
		if m == nil {
			if rc.name == "lttng-tools" {
				return nil, nil
			}
			continue
		}
		rel.Packages = append(rel.Packages, distro.Package{Name: rc.name, Version: m[1]})
	}
	return &rel, nil
}

// parseBranchOptions extracts the option values of the branch selector
// (the <select name="h"> element inside the #cgit container).
func parseBranchOptions(page string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse cgit page: %w", err)
	}

	cgit := findByID(doc, "cgit")
	if cgit == nil {
		return nil, fmt.Errorf("cgit page: no #cgit element")
	}
	sel := findSelect(cgit, "h")
	if sel == nil {
		return nil, fmt.Errorf("cgit page: no branch selector")
	}

	var branches []string
	for n := range sel.Descendants() {
		if n.Type == html.ElementNode && n.Data == "option" {
			if v, ok := attr(n, "value"); ok && v != "" {
				branches = append(branches, v)
			}
		}
	}
	return branches, nil
}

func findByID(n *html.Node, id string) *html.Node {
	for d := range n.Descendants() {
		if d.Type == html.ElementNode {
			if v, ok := attr(d, "id"); ok && v == id {
				return d
			}
		}
	}
	return nil
}

func findSelect(n *html.Node, name string) *html.Node {
	for d := range n.Descendants() {
		if d.Type == html.ElementNode && d.Data == "select" {
			if v, ok := attr(d, "name"); ok && v == name {
				return d
			}
		}
	}
	return nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Ensure Client implements distro.Provider.
var _ distro.Provider = (*Client)(nil)
