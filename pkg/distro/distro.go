// Package distro defines the data model for LTTng packaging information and
// the providers that produce it.
//
// A Distro is a distribution or build system (Debian, Buildroot, ...) with a
// list of Releases; each Release carries the LTTng packages it ships. The
// Provider interface abstracts over the data sources: six distros come from
// the Repology API, Buildroot and Yocto are scraped from their cgit instances.
package distro

import "strings"

// Projects are the Repology project names tracked by lttngpack.
var Projects = []string{"lttng-tools", "lttng-ust", "lttng-modules"}

// Package is one packaged LTTng component in a distro release.
type Package struct {
	Name    string `json:"name"`    // Package name as the distro calls it (e.g., "lttng-libust")
	Version string `json:"version"` // Packaged version string (e.g., "2.13.8")
}

// Release is one release of a distro with its LTTng packages.
type Release struct {
	Version  string    `json:"version"` // Release identifier (e.g., "12", "24.04", "(rolling)", "bookworm")
	Packages []Package `json:"packages"`
}

// Lookup returns the first package matching any of the candidate names,
// in candidate order. Distros disagree on package naming (lttng-ust vs ust
// vs lttng-libust), so callers pass the known aliases for a component.
func (r *Release) Lookup(names []string) (Package, bool) {
	for _, name := range names {
		for _, pkg := range r.Packages {
			if pkg.Name == name {
				return pkg, true
			}
		}
	}
	return Package{}, false
}

// Distro is a distribution or build system with its known releases.
type Distro struct {
	Name     string    `json:"name"`
	Releases []Release `json:"releases"`
}

// EqualName reports whether the distro matches name, case-insensitively.
func (d *Distro) EqualName(name string) bool {
	return strings.EqualFold(d.Name, name)
}
