package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actionsum/recentapps/pkg/apps"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  path: /tmp/focus.db
tracker:
  poll_interval: 5s
provider:
  strategy: usage-window
observer:
  period: 250ms
log:
  level: debug
`)

	cfg := Default()
	require.NoError(t, LoadFile(cfg, path))

	assert.Equal(t, "/tmp/focus.db", cfg.Database.Path)
	assert.Equal(t, 5*time.Second, cfg.Tracker.PollInterval)
	assert.Equal(t, 250*time.Millisecond, cfg.Observer.Period)
	assert.Equal(t, 10, cfg.Observer.Limit, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Log.Level)

	capability, ok := cfg.Capability()
	assert.True(t, ok)
	assert.Equal(t, apps.CapabilityUsageWindow, capability)
}

func TestLoadFileRejectsGarbage(t *testing.T) {
	path := writeConfig(t, "tracker: [not, a, map]\n")
	assert.Error(t, LoadFile(Default(), path))
	assert.Error(t, LoadFile(Default(), filepath.Join(t.TempDir(), "missing.yaml")))
}

func TestEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "web:\n  port: 9000\nprovider:\n  strategy: event-log\n")

	t.Setenv(EnvConfigPath, path)
	t.Setenv("RECENTAPPS_WEB_PORT", "9100")
	t.Setenv("RECENTAPPS_STRATEGY", "running-tasks")
	t.Setenv("RECENTAPPS_POLL_INTERVAL", "3")
	t.Setenv("RECENTAPPS_PERIOD", "1500ms")
	t.Setenv("RECENTAPPS_LIMIT", "4")
	t.Setenv("RECENTAPPS_RETENTION", "48h")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Web.Port)
	assert.Equal(t, "running-tasks", cfg.Provider.Strategy)
	assert.Equal(t, 3*time.Second, cfg.Tracker.PollInterval)
	assert.Equal(t, 1500*time.Millisecond, cfg.Observer.Period)
	assert.Equal(t, 4, cfg.Observer.Limit)
	assert.Equal(t, 48*time.Hour, cfg.Tracker.Retention)
}

func TestEnvironmentIgnoresInvalidValues(t *testing.T) {
	t.Setenv("RECENTAPPS_POLL_INTERVAL", "3600")
	t.Setenv("RECENTAPPS_WEB_PORT", "99999")
	t.Setenv("RECENTAPPS_PERIOD", "-1s")

	cfg := New()
	def := Default()
	assert.Equal(t, def.Tracker.PollInterval, cfg.Tracker.PollInterval)
	assert.Equal(t, def.Web.Port, cfg.Web.Port)
	assert.Equal(t, def.Observer.Period, cfg.Observer.Period)
}

func TestLoadInvalidStrategy(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("RECENTAPPS_STRATEGY", "magic")

	_, err := Load("")
	assert.ErrorContains(t, err, "unknown provider strategy")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"poll too fast", func(c *Config) { c.Tracker.PollInterval = time.Millisecond }},
		{"poll too slow", func(c *Config) { c.Tracker.PollInterval = time.Hour }},
		{"short retention", func(c *Config) { c.Tracker.Retention = time.Minute }},
		{"negative limit", func(c *Config) { c.Observer.Limit = -1 }},
		{"zero period", func(c *Config) { c.Observer.Period = 0 }},
		{"bad port", func(c *Config) { c.Web.Port = 0 }},
		{"empty host", func(c *Config) { c.Web.Host = "" }},
		{"empty pid file", func(c *Config) { c.Daemon.PIDFile = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
