package distro

import (
	"context"
	"fmt"
	"regexp"
	"sync"

	"github.com/eepp/lttngpack/pkg/repology"
)

// Source fetches the Repology entries for the LTTng projects once and shares
// the result between the repology-backed providers. The six distros served
// by Repology all derive from the same three project listings, so a shared
// Source keeps one run at three API calls instead of eighteen.
//
// Safe for concurrent use; the first caller triggers the fetch, the rest wait.
type Source struct {
	client  *repology.Client
	refresh bool

	once    sync.Once
	entries []repology.PackageEntry
	err     error
}

// NewSource creates a Source reading the standard LTTng projects.
func NewSource(client *repology.Client, refresh bool) *Source {
	return &Source{client: client, refresh: refresh}
}

// Entries returns the concatenated package entries for all LTTng projects.
func (s *Source) Entries(ctx context.Context) ([]repology.PackageEntry, error) {
	s.once.Do(func() {
		s.entries, s.err = s.client.Projects(ctx, Projects, s.refresh)
	})
	return s.entries, s.err
}

// VersionFunc maps a Repology entry to a distro release version.
// Returning ok=false skips the entry (it belongs to another distro or to an
// excluded repository such as Debian sid).
type VersionFunc func(e repology.PackageEntry) (version string, ok bool)

// RepologyProvider derives one distro's releases from Repology entries.
type RepologyProvider struct {
	name    string
	source  *Source
	version VersionFunc
}

// NewRepologyProvider creates a provider that filters the source's entries
// through the given version mapping.
func NewRepologyProvider(name string, source *Source, version VersionFunc) *RepologyProvider {
	return &RepologyProvider{name: name, source: source, version: version}
}

// Name returns the distro's display name.
func (p *RepologyProvider) Name() string { return p.name }

// Fetch maps the shared Repology entries to this distro's releases.
func (p *RepologyProvider) Fetch(ctx context.Context) (*Distro, error) {
	entries, err := p.source.Entries(ctx)
	if err != nil {
		return nil, err
	}
	return &Distro{Name: p.name, Releases: ReleasesFromEntries(entries, p.version)}, nil
}

// ReleasesFromEntries groups Repology entries into releases using the version
// mapping. Releases appear in first-seen order; entries mapping to the same
// release version accumulate their packages into one Release.
func ReleasesFromEntries(entries []repology.PackageEntry, version VersionFunc) []Release {
	var releases []Release
	index := make(map[string]int)

	for _, e := range entries {
		v, ok := version(e)
		if !ok {
			continue
		}
		i, seen := index[v]
		if !seen {
			i = len(releases)
			index[v] = i
			releases = append(releases, Release{Version: v})
		}
		releases[i].Packages = append(releases[i].Packages, Package{
			Name:    e.VisibleName,
			Version: e.Version,
		})
	}
	return releases
}

var (
	alpineRE   = regexp.MustCompile(`^alpine_(\d+)_(\d+)$`)
	debianRE   = regexp.MustCompile(`^debian_(.+)$`)
	fedoraRE   = regexp.MustCompile(`^fedora_(\d+)$`)
	opensuseRE = regexp.MustCompile(`^opensuse_leap_(\d+)_(\d+)$`)
	ubuntuRE   = regexp.MustCompile(`^ubuntu_(\d+)_(\d+)$`)
)

// NewAlpine maps alpine_X_Y repositories to "X.Y" releases.
func NewAlpine(source *Source) *RepologyProvider {
	return NewRepologyProvider("Alpine Linux", source, func(e repology.PackageEntry) (string, bool) {
		if m := alpineRE.FindStringSubmatch(e.Repo); m != nil {
			return fmt.Sprintf("%s.%s", m[1], m[2]), true
		}
		return "", false
	})
}

// NewArch maps the single rolling arch repository to a "(rolling)" release.
func NewArch(source *Source) *RepologyProvider {
	return NewRepologyProvider("Arch Linux", source, func(e repology.PackageEntry) (string, bool) {
		if e.Repo == "arch" {
			return "(rolling)", true
		}
		return "", false
	})
}

// NewDebian maps debian_<release> repositories to their codename, except sid.
func NewDebian(source *Source) *RepologyProvider {
	return NewRepologyProvider("Debian", source, func(e repology.PackageEntry) (string, bool) {
		if m := debianRE.FindStringSubmatch(e.Repo); m != nil && m[1] != "sid" {
			return m[1], true
		}
		return "", false
	})
}

// NewFedora maps fedora_N repositories to "N" releases.
func NewFedora(source *Source) *RepologyProvider {
	return NewRepologyProvider("Fedora", source, func(e repology.PackageEntry) (string, bool) {
		if m := fedoraRE.FindStringSubmatch(e.Repo); m != nil {
			return m[1], true
		}
		return "", false
	})
}

// NewOpenSUSE maps opensuse_leap_X_Y repositories to "X.Y" releases.
func NewOpenSUSE(source *Source) *RepologyProvider {
	return NewRepologyProvider("openSUSE Leap", source, func(e repology.PackageEntry) (string, bool) {
		if m := opensuseRE.FindStringSubmatch(e.Repo); m != nil {
			return fmt.Sprintf("%s.%s", m[1], m[2]), true
		}
		return "", false
	})
}

// NewUbuntu maps ubuntu_X_Y repositories to "X.Y" releases.
func NewUbuntu(source *Source) *RepologyProvider {
	return NewRepologyProvider("Ubuntu", source, func(e repology.PackageEntry) (string, bool) {
		if m := ubuntuRE.FindStringSubmatch(e.Repo); m != nil {
			return fmt.Sprintf("%s.%s", m[1], m[2]), true
		}
		return "", false
	})
}
