// Package report assembles the version matrix and renders it.
//
// The matrix has one row per (distro, release) with the versions of the
// three LTTng components. Rendering targets: a styled terminal table
// (lipgloss), a plain table for non-TTY output, and JSON.
package report

import (
	"encoding/json"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/eepp/lttngpack/pkg/distro"
)

// Package name aliases per component. Distros disagree on naming: Debian
// shipped LTTng-tools as ltt-control up to wheezy, UST appears as ust,
// lttng-ust, or lttng-libust depending on the distro. First match wins.
var (
	toolsAliases   = []string{"lttng-tools", "ltt-control"}
	ustAliases     = []string{"lttng-ust", "ust", "lttng-libust"}
	modulesAliases = []string{"lttng-modules"}
)

// Headers are the matrix column titles, in order.
var Headers = []string{"Distro / Project", "LTTng-tools", "LTTng-UST", "LTTng-modules"}

// Row is one (distro, release) line of the matrix.
// Component fields are empty when the release doesn't ship that package.
type Row struct {
	Distro  string `json:"distro"`
	Release string `json:"release"`
	Tools   string `json:"lttng_tools,omitempty"`
	UST     string `json:"lttng_ust,omitempty"`
	Modules string `json:"lttng_modules,omitempty"`
}

// Label returns the row's first column: "<distro> <release>".
func (r *Row) Label() string {
	return r.Distro + " " + r.Release
}

// Matrix is the assembled version matrix.
type Matrix struct {
	GeneratedAt time.Time `json:"generated_at"`
	Rows        []Row     `json:"rows"`
}

// Build assembles the matrix from collected distros. Distros are ordered by
// name (case-insensitive) and releases ascending by version, with
// non-parsing versions (codenames, "(rolling)") falling back to string
// order; see [distro.CompareVersions].
func Build(distros []distro.Distro) *Matrix {
	m := &Matrix{GeneratedAt: time.Now().UTC()}

	sorted := make([]distro.Distro, len(distros))
	copy(sorted, distros)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
	})

	for _, d := range sorted {
		releases := make([]distro.Release, len(d.Releases))
		copy(releases, d.Releases)
		sort.SliceStable(releases, func(i, j int) bool {
			return distro.CompareVersions(releases[i].Version, releases[j].Version) < 0
		})

		for _, rel := range releases {
			m.Rows = append(m.Rows, Row{
				Distro:  d.Name,
				Release: rel.Version,
				Tools:   versionOf(&rel, toolsAliases),
				UST:     versionOf(&rel, ustAliases),
				Modules: versionOf(&rel, modulesAliases),
			})
		}
	}
	return m
}

func versionOf(rel *distro.Release, aliases []string) string {
	if pkg, ok := rel.Lookup(aliases); ok {
		return pkg.Version
	}
	return ""
}

// JSON writes the matrix as indented JSON.
func (m *Matrix) JSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(m)
}
