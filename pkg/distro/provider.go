package distro

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Provider produces the LTTng packaging data for one distro.
type Provider interface {
	// Name returns the distro's display name (e.g., "Debian").
	Name() string
	// Fetch retrieves the distro's releases and their packages.
	Fetch(ctx context.Context) (*Distro, error)
}

// Collect fetches all providers concurrently and returns the distros sorted
// by name, case-insensitively. A failing provider fails the whole collection;
// the error names the provider.
func Collect(ctx context.Context, providers []Provider) ([]Distro, error) {
	distros := make([]Distro, len(providers))
	g, ctx := errgroup.WithContext(ctx)

	for i, p := range providers {
		g.Go(func() error {
			d, err := p.Fetch(ctx)
			if err != nil {
				return fmt.Errorf("%s: %w", p.Name(), err)
			}
			distros[i] = *d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(distros, func(i, j int) bool {
		return strings.ToLower(distros[i].Name) < strings.ToLower(distros[j].Name)
	})
	return distros, nil
}
