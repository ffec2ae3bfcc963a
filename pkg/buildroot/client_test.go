package buildroot

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/eepp/lttngpack/pkg/cache"
)

// mkFile builds a minimal Buildroot .mk file for a package.
func mkFile(prefix, version string) string {
	return fmt.Sprintf(`################################################################################
#
# %s
#
################################################################################

%s_VERSION = %s
%s_SITE = https://lttng.org/files
`, prefix, prefix, version, prefix)
}

func testServer(t *testing.T, branches map[string]map[string]string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		branch := r.URL.Query().Get("h")
		files, ok := branches[branch]
		if !ok {
			// cgit answers 200 with an error page for unknown branches
			fmt.Fprint(w, "<html>Invalid branch: "+branch+"</html>")
			return
		}
		body, ok := files[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, body)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestClient_Fetch(t *testing.T) {
	branches := map[string]map[string]string{
		"2019.02.x": {
			"/buildroot/plain/package/lttng-tools/lttng-tools.mk":     mkFile("LTTNG_TOOLS", "2.10.6"),
			"/buildroot/plain/package/lttng-libust/lttng-libust.mk":   mkFile("LTTNG_LIBUST", "2.10.3"),
			"/buildroot/plain/package/lttng-modules/lttng-modules.mk": mkFile("LTTNG_MODULES", "2.10.9"),
		},
		"2019.05.x": {
			"/buildroot/plain/package/lttng-tools/lttng-tools.mk":     mkFile("LTTNG_TOOLS", "2.10.7"),
			"/buildroot/plain/package/lttng-libust/lttng-libust.mk":   mkFile("LTTNG_LIBUST", "2.10.5"),
			"/buildroot/plain/package/lttng-modules/lttng-modules.mk": mkFile("LTTNG_MODULES", "2.10.10"),
		},
		// 2019.08 missing: iteration stops there
	}
	server := testServer(t, branches)

	c := NewClientWithBaseURL(cache.NewNullCache(), time.Hour, false, server.URL)

	d, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if d.Name != "Buildroot" {
		t.Errorf("Name = %q", d.Name)
	}
	if len(d.Releases) != 2 {
		t.Fatalf("expected 2 releases, got %d: %+v", len(d.Releases), d.Releases)
	}
	if d.Releases[0].Version != "2019.02" || d.Releases[1].Version != "2019.05" {
		t.Errorf("releases = %q, %q", d.Releases[0].Version, d.Releases[1].Version)
	}

	rel := d.Releases[0]
	if len(rel.Packages) != 3 {
		t.Fatalf("expected 3 packages, got %d", len(rel.Packages))
	}
	pkg, ok := rel.Lookup([]string{"lttng-libust"})
	if !ok || pkg.Version != "2.10.3" {
		t.Errorf("lttng-libust = %+v, ok=%v", pkg, ok)
	}
}

func TestClient_Fetch_MissingCompanionPackage(t *testing.T) {
	branches := map[string]map[string]string{
		"2019.02.x": {
			"/buildroot/plain/package/lttng-tools/lttng-tools.mk": mkFile("LTTNG_TOOLS", "2.10.6"),
			// no lttng-libust, no lttng-modules
		},
	}
	server := testServer(t, branches)

	c := NewClientWithBaseURL(cache.NewNullCache(), time.Hour, false, server.URL)

	d, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(d.Releases) != 1 {
		t.Fatalf("expected 1 release, got %d", len(d.Releases))
	}
	if len(d.Releases[0].Packages) != 1 {
		t.Errorf("expected only lttng-tools, got %+v", d.Releases[0].Packages)
	}
}

func TestClient_Fetch_NoBranches(t *testing.T) {
	server := testServer(t, nil)

	c := NewClientWithBaseURL(cache.NewNullCache(), time.Hour, false, server.URL)

	d, err := c.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(d.Releases) != 0 {
		t.Errorf("expected no releases, got %d", len(d.Releases))
	}
}

func TestVersionRE(t *testing.T) {
	tests := []struct {
		text string
		want string
		ok   bool
	}{
		{"LTTNG_TOOLS_VERSION = 2.13.8", "2.13.8", true},
		{"LTTNG_MODULES_VERSION  =  2.13.10\n", "2.13.10", true},
		{"# LTTNG_TOOLS_VERSION = commented", "", false},
		{"FOO_VERSION = 1.0", "", false},
	}

	for _, tt := range tests {
		m := versionRE.FindStringSubmatch(tt.text)
		if tt.ok != (m != nil) {
			t.Errorf("versionRE match on %q = %v, want %v", tt.text, m != nil, tt.ok)
			continue
		}
		if tt.ok && m[1] != tt.want {
			t.Errorf("versionRE on %q = %q, want %q", tt.text, m[1], tt.want)
		}
	}
}
