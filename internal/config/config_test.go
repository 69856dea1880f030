package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Joseda-hg/lazystreak/internal/activity"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoadJSONOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"backend":"json","web_port":9191,"qualifying_filter":"completed"}`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Backend)
	assert.Equal(t, 9191, cfg.WebPort)
	assert.Equal(t, "completed", cfg.QualifyingFilter)
	assert.Equal(t, "tasks", cfg.ActivitySource, "unset keys keep their defaults")
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "backend: csv\ngrid_mode: presence\nwindow_weeks: 12\ncache_ttl: 30s\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "csv", cfg.Backend)
	assert.Equal(t, "presence", cfg.GridMode)
	assert.Equal(t, 12, cfg.WindowWeeks)

	ttl, err := cfg.CacheDuration()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, ttl)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"backend":"json"}`), 0o644))
	t.Setenv("LAZYSTREAK_BACKEND", "memory")
	t.Setenv("LAZYSTREAK_WEB_PORT", "7070")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Backend)
	assert.Equal(t, 7070, cfg.WebPort)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"backend":`), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"config.json", "config.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			cfg := Default()
			cfg.Backend = "mongo"
			cfg.WebEnabled = true
			cfg.ActivitySource = "log"

			require.NoError(t, Save(path, cfg))
			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]func(*Config){
		"backend":           func(c *Config) { c.Backend = "redis" },
		"qualifying_filter": func(c *Config) { c.QualifyingFilter = "pending" },
		"grid_mode":         func(c *Config) { c.GridMode = "heat" },
		"activity_source":   func(c *Config) { c.ActivitySource = "calendar" },
		"window_weeks":      func(c *Config) { c.WindowWeeks = -1 },
		"web_port":          func(c *Config) { c.WebPort = 70000 },
		"cache_ttl":         func(c *Config) { c.CacheTTL = "soon" },
	}
	for key, mutate := range cases {
		t.Run(key, func(t *testing.T) {
			cfg := Default()
			mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestCacheDurationDisabled(t *testing.T) {
	for _, value := range []string{"", "0", "off", "OFF"} {
		cfg := Config{CacheTTL: value}
		ttl, err := cfg.CacheDuration()
		require.NoError(t, err)
		assert.Zero(t, ttl)
	}
}

func TestFillPathsAndOptions(t *testing.T) {
	cfg := Default()
	cfg.WebPort = 0
	cfg.FillPaths("/tmp/lazystreak")

	assert.Equal(t, filepath.Join("/tmp/lazystreak", "lazystreak.db"), cfg.DBPath)
	assert.Equal(t, filepath.Join("/tmp/lazystreak", "activity.json"), cfg.ActivityPath)
	assert.Equal(t, 8080, cfg.WebPort)

	opts, err := cfg.DBOptions()
	require.NoError(t, err)
	assert.Equal(t, cfg.DBPath, opts.DBPath)
	assert.Equal(t, 5*time.Minute, opts.CacheTTL)

	agg, err := cfg.Aggregator()
	require.NoError(t, err)
	assert.Equal(t, activity.FilterAny, agg.Filter)
	assert.Equal(t, activity.ModeCount, agg.Mode)
	assert.Equal(t, activity.DefaultWindowWeeks, agg.WindowWeeks)
}
