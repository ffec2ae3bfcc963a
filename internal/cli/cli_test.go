package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/eepp/lttngpack/pkg/config"
	"github.com/eepp/lttngpack/pkg/distro"
	"github.com/eepp/lttngpack/pkg/errors"
	"github.com/eepp/lttngpack/pkg/report"
)

func testProviders() []distro.Provider {
	return providers(config.Default(), nil, false)
}

func TestProviderNames(t *testing.T) {
	names := providerNames(testProviders())

	want := []string{"Alpine Linux", "Arch Linux", "Buildroot", "Debian", "Fedora", "openSUSE Leap", "Ubuntu", "Yocto"}
	if len(names) != len(want) {
		t.Fatalf("got %d providers, want %d: %v", len(names), len(want), names)
	}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("provider %d = %q, want %q", i, names[i], name)
		}
	}
}

func TestFilterProviders(t *testing.T) {
	all := testProviders()

	t.Run("empty filter returns all", func(t *testing.T) {
		got, err := filterProviders(all, nil)
		if err != nil {
			t.Fatalf("filterProviders() error = %v", err)
		}
		if len(got) != len(all) {
			t.Errorf("got %d providers, want %d", len(got), len(all))
		}
	})

	t.Run("case-insensitive match", func(t *testing.T) {
		got, err := filterProviders(all, []string{"debian", "UBUNTU"})
		if err != nil {
			t.Fatalf("filterProviders() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("got %d providers, want 2", len(got))
		}
		if got[0].Name() != "Debian" || got[1].Name() != "Ubuntu" {
			t.Errorf("got %q, %q", got[0].Name(), got[1].Name())
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := filterProviders(all, []string{"Gentoo"})
		if err == nil {
			t.Fatal("expected error for unknown distro")
		}
		if !errors.Is(err, errors.ErrCodeInvalidDistro) {
			t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidDistro)
		}
		if !strings.Contains(err.Error(), "Debian") {
			t.Errorf("error should list available distros: %v", err)
		}
	})
}

func TestRunTableRejectsUnknownFormat(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	opts := defaultTableOpts()
	opts.format = "xml"

	err := c.runTable(context.Background(), opts)
	if err == nil {
		t.Fatal("expected error for unknown format")
	}
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidFormat)
	}
}

func TestWriteMatrix(t *testing.T) {
	m := report.Build([]distro.Distro{
		{
			Name: "Debian",
			Releases: []distro.Release{
				{Version: "12", Packages: []distro.Package{{Name: "lttng-tools", Version: "2.13.9"}}},
			},
		},
	})

	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeMatrix(&buf, m, formatJSON); err != nil {
			t.Fatalf("writeMatrix() error = %v", err)
		}
		var decoded report.Matrix
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("output is not valid JSON: %v", err)
		}
		if len(decoded.Rows) != 1 {
			t.Errorf("got %d rows, want 1", len(decoded.Rows))
		}
	})

	t.Run("plain", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeMatrix(&buf, m, formatPlain); err != nil {
			t.Fatalf("writeMatrix() error = %v", err)
		}
		out := buf.String()
		if !strings.Contains(out, "Debian 12") {
			t.Errorf("plain output should contain the distro label:\n%s", out)
		}
		if strings.Contains(out, "\x1b[") {
			t.Error("plain output should not contain ANSI escapes")
		}
	})

	t.Run("table to non-file writer", func(t *testing.T) {
		var buf bytes.Buffer
		if err := writeMatrix(&buf, m, formatTable); err != nil {
			t.Fatalf("writeMatrix() error = %v", err)
		}
		if !strings.Contains(buf.String(), "2.13.9") {
			t.Errorf("table output should contain the version:\n%s", buf.String())
		}
	})
}

func TestRootCommandWiring(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)
	root := c.RootCommand()

	want := []string{"table", "distros", "browse", "serve", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command missing subcommand %q", name)
		}
	}

	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("root command missing --config flag")
	}
	if root.Flags().Lookup("format") == nil {
		t.Error("root command missing --format flag")
	}
}

func TestNewBackendNoCache(t *testing.T) {
	c := New(io.Discard, log.InfoLevel)

	backend, err := c.newBackend(context.Background(), config.Default(), true)
	if err != nil {
		t.Fatalf("newBackend() error = %v", err)
	}
	defer backend.Close()

	if _, ok, _ := backend.Get(context.Background(), "anything"); ok {
		t.Error("null cache should never report a hit")
	}
}
