// Package config loads server settings from defaults, an optional YAML file
// and PORTFOLIO_* environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/devkumarp/portfolio/internal/profile"
)

const envPrefix = "PORTFOLIO_"

type Config struct {
	Addr        string `koanf:"addr"`
	Mode        string `koanf:"mode"` // gin mode: debug, release or test
	LogLevel    string `koanf:"log_level"`
	Variant     string `koanf:"variant"`
	ProfilePath string `koanf:"profile_path"`
	StaticDir   string `koanf:"static_dir"`

	// StrictAnchors logs selections whose section has no element on the page
	// at warn level instead of debug.
	StrictAnchors bool `koanf:"strict_anchors"`

	Views    ViewsConfig    `koanf:"views"`
	Tracking TrackingConfig `koanf:"tracking"`
	Admin    AdminConfig    `koanf:"admin"`
}

type ViewsConfig struct {
	TTL             time.Duration `koanf:"ttl"`
	MaxViews        int           `koanf:"max_views"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

type TrackingConfig struct {
	Enabled   bool          `koanf:"enabled"`
	DBPath    string        `koanf:"db_path"`
	Retention time.Duration `koanf:"retention"`
}

type AdminConfig struct {
	// Token guards /admin/stats; the route is not mounted when empty.
	Token string `koanf:"token"`
}

// DefaultConfig returns the settings used when nothing overrides them. The
// listen port follows PORT like most hosting platforms expect.
func DefaultConfig() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	return &Config{
		Addr:      ":" + port,
		Mode:      "release",
		LogLevel:  "info",
		Variant:   "complete",
		StaticDir: "./static",
		Views: ViewsConfig{
			TTL:             30 * time.Minute,
			MaxViews:        10000,
			CleanupInterval: time.Minute,
		},
		Tracking: TrackingConfig{
			Enabled:   true,
			DBPath:    "data/visits.db",
			Retention: 365 * 24 * time.Hour,
		},
	}
}

// Load reads path (if it exists) over the defaults, then applies
// PORTFOLIO_* variables: PORTFOLIO_TRACKING__DB_PATH sets tracking.db_path.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return cfg, nil
}

var validModes = map[string]bool{
	"debug":   true,
	"release": true,
	"test":    true,
}

// Validate checks that the configuration contains usable values.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if !validModes[c.Mode] {
		return fmt.Errorf("invalid mode %q: must be one of debug, release, test", c.Mode)
	}
	if _, err := profile.PresetFeatures(c.Variant); err != nil {
		return fmt.Errorf("invalid variant %q: must be one of %s", c.Variant, strings.Join(profile.Variants(), ", "))
	}
	if c.Views.TTL <= 0 {
		return fmt.Errorf("views.ttl must be positive")
	}
	if c.Views.MaxViews < 0 {
		return fmt.Errorf("views.max_views must be non-negative")
	}
	if c.Views.CleanupInterval <= 0 {
		return fmt.Errorf("views.cleanup_interval must be positive")
	}
	if c.Tracking.Enabled && c.Tracking.DBPath == "" {
		return fmt.Errorf("tracking.db_path is required when tracking is enabled")
	}
	if c.Tracking.Retention < 0 {
		return fmt.Errorf("tracking.retention must be non-negative")
	}
	return nil
}

// Features resolves the configured variant.
func (c *Config) Features() (profile.Features, error) {
	return profile.PresetFeatures(c.Variant)
}
