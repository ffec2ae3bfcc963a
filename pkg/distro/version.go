package distro

import (
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// CompareVersions orders two version strings, returning a negative number,
// zero, or a positive number as a sorts before, equal to, or after b.
//
// Both sides are compared semantically with hashicorp/go-version when they
// parse ("3.18" < "3.9" lexically but not numerically). Release identifiers
// like "(rolling)" or Debian codenames don't parse; those fall back to plain
// string comparison, which keeps the ordering total and deterministic.
func CompareVersions(a, b string) int {
	va, errA := goversion.NewVersion(a)
	vb, errB := goversion.NewVersion(b)
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}
	return strings.Compare(a, b)
}
