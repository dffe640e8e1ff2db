package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("PORT", "")

	cfg := DefaultConfig()
	require.Equal(t, ":8080", cfg.Addr)
	require.Equal(t, "release", cfg.Mode)
	require.Equal(t, "complete", cfg.Variant)
	require.Equal(t, 30*time.Minute, cfg.Views.TTL)
	require.True(t, cfg.Tracking.Enabled)
	require.Empty(t, cfg.Admin.Token)
	require.NoError(t, cfg.Validate())
}

func TestDefaultConfigHonorsPort(t *testing.T) {
	t.Setenv("PORT", "9090")
	require.Equal(t, ":9090", DefaultConfig().Addr)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFileAndEnv(t *testing.T) {
	t.Setenv("PORT", "")
	path := filepath.Join(t.TempDir(), "portfolio.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
addr: ":3000"
variant: resume
strict_anchors: true
views:
  ttl: 5m
  max_views: 50
tracking:
  db_path: /tmp/visits.db
admin:
  token: from-file
`), 0o644))

	t.Setenv("PORTFOLIO_MODE", "debug")
	t.Setenv("PORTFOLIO_ADMIN__TOKEN", "from-env")
	t.Setenv("PORTFOLIO_TRACKING__ENABLED", "false")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, ":3000", cfg.Addr)
	require.Equal(t, "resume", cfg.Variant)
	require.True(t, cfg.StrictAnchors)
	require.Equal(t, 5*time.Minute, cfg.Views.TTL)
	require.Equal(t, 50, cfg.Views.MaxViews)
	require.Equal(t, time.Minute, cfg.Views.CleanupInterval, "untouched keys keep defaults")
	require.Equal(t, "/tmp/visits.db", cfg.Tracking.DBPath)
	require.Equal(t, "debug", cfg.Mode)
	require.Equal(t, "from-env", cfg.Admin.Token)
	require.False(t, cfg.Tracking.Enabled)
	require.NoError(t, cfg.Validate())

	f, err := cfg.Features()
	require.NoError(t, err)
	require.True(t, f.MobileMenu)
	require.False(t, f.Credentials)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(path, []byte("addr: [unclosed"), 0o644))
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"empty addr", func(c *Config) { c.Addr = "" }, "addr is required"},
		{"bad mode", func(c *Config) { c.Mode = "prod" }, "invalid mode"},
		{"bad variant", func(c *Config) { c.Variant = "v9" }, "invalid variant"},
		{"zero ttl", func(c *Config) { c.Views.TTL = 0 }, "views.ttl"},
		{"negative max views", func(c *Config) { c.Views.MaxViews = -1 }, "views.max_views"},
		{"zero cleanup", func(c *Config) { c.Views.CleanupInterval = 0 }, "views.cleanup_interval"},
		{"no db path", func(c *Config) { c.Tracking.DBPath = "" }, "tracking.db_path"},
		{"negative retention", func(c *Config) { c.Tracking.Retention = -time.Hour }, "tracking.retention"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			require.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}

	cfg := DefaultConfig()
	cfg.Tracking.Enabled = false
	cfg.Tracking.DBPath = ""
	require.NoError(t, cfg.Validate(), "db path only matters with tracking on")
}
