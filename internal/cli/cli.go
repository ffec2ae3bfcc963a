// Package cli implements the lttngpack command-line interface.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/eepp/lttngpack/internal/server"
	"github.com/eepp/lttngpack/pkg/buildinfo"
	"github.com/eepp/lttngpack/pkg/buildroot"
	"github.com/eepp/lttngpack/pkg/cache"
	"github.com/eepp/lttngpack/pkg/config"
	"github.com/eepp/lttngpack/pkg/distro"
	"github.com/eepp/lttngpack/pkg/errors"
	"github.com/eepp/lttngpack/pkg/repology"
	"github.com/eepp/lttngpack/pkg/yocto"
)

// appName is the application name used for directories and display.
const appName = "lttngpack"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// Running the root command without a subcommand renders the version table,
// matching what most users want from a one-shot invocation.
func (c *CLI) RootCommand() *cobra.Command {
	opts := defaultTableOpts()

	root := &cobra.Command{
		Use:          appName,
		Short:        "lttngpack reports LTTng package versions across distributions",
		Long:         `lttngpack collects the LTTng-tools, LTTng-UST, and LTTng-modules versions shipped by Linux distributions and embedded build systems (via the Repology API and the Buildroot and OpenEmbedded cgit instances) and renders them as a version table.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTable(cmd.Context(), opts)
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ~/.config/lttngpack/config.toml)")
	addTableFlags(root.Flags(), opts)

	root.AddCommand(c.tableCommand())
	root.AddCommand(c.distrosCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads and validates the configuration file.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	c.Logger.Debug("loaded config", "config", cfg)
	return cfg, nil
}

// newBackend selects the cache backend: null when disabled, redis when
// configured, the file cache otherwise. A failing file cache setup degrades
// to no caching instead of aborting the run.
func (c *CLI) newBackend(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.Redis != "" {
		return cache.NewRedisCache(ctx, cfg.Cache.Redis, "")
	}
	dir, err := cfg.CacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	backend, err := cache.NewFileCache(dir)
	if err != nil {
		c.Logger.Warn("file cache unavailable, caching disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return backend, nil
}

// providers assembles all distro providers against the given cache backend.
func providers(cfg *config.Config, backend cache.Cache, refresh bool) []distro.Provider {
	ttl := cfg.Cache.TTL.Std()
	timeout := cfg.HTTP.Timeout.Std()

	rep := repology.NewClient(backend, ttl)
	rep.SetTimeout(timeout)
	src := distro.NewSource(rep, refresh)

	br := buildroot.NewClient(backend, ttl, refresh)
	br.SetTimeout(timeout)
	yo := yocto.NewClient(backend, ttl, refresh)
	yo.SetTimeout(timeout)

	return []distro.Provider{
		distro.NewAlpine(src),
		distro.NewArch(src),
		br,
		distro.NewDebian(src),
		distro.NewFedora(src),
		distro.NewOpenSUSE(src),
		distro.NewUbuntu(src),
		yo,
	}
}

// filterProviders restricts providers to the requested distro names.
// Unknown names are an error listing the known providers.
func filterProviders(all []distro.Provider, names []string) ([]distro.Provider, error) {
	if len(names) == 0 {
		return all, nil
	}

	var out []distro.Provider
	for _, name := range names {
		found := false
		for _, p := range all {
			if strings.EqualFold(p.Name(), name) {
				out = append(out, p)
				found = true
				break
			}
		}
		if !found {
			return nil, errors.New(errors.ErrCodeInvalidDistro,
				"unknown distro %q (available: %s)", name, strings.Join(providerNames(all), ", "))
		}
	}
	return out, nil
}

func providerNames(providers []distro.Provider) []string {
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.Name()
	}
	return names
}

// newCollector builds the server's collector: every call assembles fresh
// providers so the shared Repology source is re-fetched once its cached
// responses expire.
func (c *CLI) newCollector(cfg *config.Config, backend cache.Cache) server.Collector {
	return func(ctx context.Context) ([]distro.Distro, error) {
		ps, err := filterProviders(providers(cfg, backend, false), cfg.Distros)
		if err != nil {
			return nil, err
		}
		return distro.Collect(ctx, ps)
	}
}
