// Package config loads the optional lttngpack configuration file.
//
// The file lives at $XDG_CONFIG_HOME/lttngpack/config.toml (falling back to
// ~/.config/lttngpack/config.toml). A missing file yields the defaults;
// command-line flags override file values.
//
// Example:
//
//	[cache]
//	ttl = "12h"
//	redis = "localhost:6379"
//
//	[http]
//	timeout = "30s"
//
//	[server]
//	listen = ":8099"
//
//	distros = ["Debian", "Ubuntu", "Yocto"]
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/eepp/lttngpack/pkg/errors"
)

const appName = "lttngpack"

// DefaultCacheTTL is how long remote responses stay cached by default.
const DefaultCacheTTL = 24 * time.Hour

// Duration wraps time.Duration for TOML decoding of strings like "12h".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config holds the user configuration.
type Config struct {
	Cache  CacheConfig  `toml:"cache"`
	HTTP   HTTPConfig   `toml:"http"`
	Server ServerConfig `toml:"server"`

	// Distros restricts the report to the named providers (case-insensitive).
	// Empty means all.
	Distros []string `toml:"distros"`
}

// CacheConfig configures the response cache.
type CacheConfig struct {
	TTL   Duration `toml:"ttl"`   // cache entry lifetime (default 24h)
	Dir   string   `toml:"dir"`   // file cache directory (default XDG cache dir)
	Redis string   `toml:"redis"` // redis address; empty selects the file cache
}

// HTTPConfig configures outbound HTTP behavior.
type HTTPConfig struct {
	Timeout Duration `toml:"timeout"` // per-request timeout (default 10s)
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Listen string `toml:"listen"` // listen address (default :8099)
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Cache: CacheConfig{TTL: Duration(DefaultCacheTTL)},
		HTTP:  HTTPConfig{Timeout: Duration(10 * time.Second)},
		Server: ServerConfig{
			Listen: ":8099",
		},
	}
}

// Load reads the configuration file at path. An empty path selects the
// default location; a missing file at the default location is not an error.
// A file named explicitly must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			return Default(), nil
		}
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config file %s", path)
	}
	return cfg, nil
}

// DefaultPath returns the default config file location following the XDG
// base directory convention.
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// CacheDir returns the cache directory: the configured one, or the XDG
// cache dir (~/.cache/lttngpack).
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl cannot be negative")
	}
	if c.HTTP.Timeout <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "http.timeout must be positive")
	}
	if c.Server.Listen == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "server.listen cannot be empty")
	}
	return nil
}

// String implements fmt.Stringer for debug logging.
func (c *Config) String() string {
	redis := c.Cache.Redis
	if redis == "" {
		redis = "(file cache)"
	}
	return fmt.Sprintf("ttl=%s redis=%s listen=%s", c.Cache.TTL.Std(), redis, c.Server.Listen)
}
