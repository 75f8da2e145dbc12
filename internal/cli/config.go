package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/htrtools/pageconv/pkg/errors"
	"github.com/htrtools/pageconv/pkg/pagexml"
)

// appName names the per-user config and cache directories.
const appName = "pageconv"

// Config is the optional TOML configuration file. Every field has a
// working zero value, so running without a config file uses the canonical
// defaults. Flags override config values where both exist.
type Config struct {
	Placeholders PlaceholderConfig `toml:"placeholders"`
	Batch        BatchConfig       `toml:"batch"`
	Cache        CacheConfig       `toml:"cache"`
	Serve        ServeConfig       `toml:"serve"`
}

// PlaceholderConfig overrides the filler values for synthesized content.
type PlaceholderConfig struct {
	Text           string `toml:"text"`
	RegionPoints   string `toml:"region_points"`
	LinePoints     string `toml:"line_points"`
	BaselinePoints string `toml:"baseline_points"`
}

// BatchConfig tunes directory conversion.
type BatchConfig struct {
	// Jobs is the number of documents converted concurrently.
	// Zero means one worker per CPU.
	Jobs int `toml:"jobs"`
}

// CacheConfig controls the conversion result cache.
type CacheConfig struct {
	// Dir overrides the cache directory (default: ~/.cache/pageconv).
	Dir string `toml:"dir"`

	// Disabled turns caching off entirely.
	Disabled bool `toml:"disabled"`
}

// ServeConfig configures the HTTP service.
type ServeConfig struct {
	// Addr is the listen address (default ":8650").
	Addr string `toml:"addr"`

	// Redis, when Addr is set, selects a shared Redis cache instead of the
	// local file cache.
	Redis RedisConfig `toml:"redis"`
}

// RedisConfig mirrors cache.RedisConfig in TOML form.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// DefaultServeAddr is the listen address when neither flag nor config set one.
const DefaultServeAddr = ":8650"

// LoadConfig reads the TOML config at path. An empty path means the
// default location (os.UserConfigDir()/pageconv/config.toml); a missing
// file at the default location is not an error, while a missing file at an
// explicitly given path is.
func LoadConfig(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		dir, err := os.UserConfigDir()
		if err != nil {
			return Config{}, nil
		}
		path = filepath.Join(dir, appName, "config.toml")
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) && !explicit {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeIO, err, "read config %s", path)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	return cfg, nil
}

// transformOptions maps the config's placeholder section onto the core
// transform options. Unset fields fall through to the canonical defaults.
func (c Config) transformOptions() pagexml.Options {
	return pagexml.Options{
		TextPlaceholder: c.Placeholders.Text,
		RegionPoints:    c.Placeholders.RegionPoints,
		LinePoints:      c.Placeholders.LinePoints,
		BaselinePoints:  c.Placeholders.BaselinePoints,
	}
}

// serveAddr resolves the HTTP listen address.
func (c Config) serveAddr() string {
	if c.Serve.Addr != "" {
		return c.Serve.Addr
	}
	return DefaultServeAddr
}
