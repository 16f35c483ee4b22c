package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the variable that points at the config file
const EnvConfigPath = "RECENTAPPS_CONFIG"

// DefaultPath returns ~/.config/recentapps/config.yaml
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "recentapps", "config.yaml")
}

// LoadFile overlays the YAML file at path onto cfg. Keys missing from the
// file keep their current values.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "failed to read config file")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return errors.Wrapf(err, "failed to parse config file %s", path)
	}
	return nil
}

// parseDuration accepts Go durations ("1500ms") and plain seconds ("2")
func parseDuration(s string) (time.Duration, bool) {
	if seconds, err := strconv.Atoi(s); err == nil {
		return time.Duration(seconds) * time.Second, seconds > 0
	}
	d, err := time.ParseDuration(s)
	return d, err == nil && d > 0
}

// LoadFromEnv loads configuration from environment variables
// Environment variables override file and default values
func LoadFromEnv(cfg *Config) {
	// Database configuration
	if dbPath := os.Getenv("RECENTAPPS_DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	// Tracker configuration
	if pollInterval := os.Getenv("RECENTAPPS_POLL_INTERVAL"); pollInterval != "" {
		if interval, ok := parseDuration(pollInterval); ok {
			if interval >= cfg.Tracker.MinPollInterval && interval <= cfg.Tracker.MaxPollInterval {
				cfg.Tracker.PollInterval = interval
			}
		}
	}

	if retention := os.Getenv("RECENTAPPS_RETENTION"); retention != "" {
		if d, ok := parseDuration(retention); ok {
			cfg.Tracker.Retention = d
		}
	}

	// Provider and observer configuration
	if strategy := os.Getenv("RECENTAPPS_STRATEGY"); strategy != "" {
		cfg.Provider.Strategy = strategy
	}

	if limit := os.Getenv("RECENTAPPS_LIMIT"); limit != "" {
		if n, err := strconv.Atoi(limit); err == nil && n >= 0 {
			cfg.Observer.Limit = n
		}
	}

	if period := os.Getenv("RECENTAPPS_PERIOD"); period != "" {
		if d, ok := parseDuration(period); ok {
			cfg.Observer.Period = d
		}
	}

	// Daemon configuration
	if pidFile := os.Getenv("RECENTAPPS_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	// Web configuration
	if webHost := os.Getenv("RECENTAPPS_WEB_HOST"); webHost != "" {
		cfg.Web.Host = webHost
	}

	if webPort := os.Getenv("RECENTAPPS_WEB_PORT"); webPort != "" {
		if port, err := strconv.Atoi(webPort); err == nil && port > 0 && port <= 65535 {
			cfg.Web.Port = port
		}
	}

	// Logging configuration
	if level := os.Getenv("RECENTAPPS_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if file := os.Getenv("RECENTAPPS_LOG_FILE"); file != "" {
		cfg.Log.File = file
	}
}

// New creates a new Config with default values and loads from environment
func New() *Config {
	cfg := Default()
	LoadFromEnv(cfg)
	return cfg
}

// Load builds the effective configuration: defaults, then the config file,
// then the environment. An explicit path must exist; the default path is
// read only when present.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, err
		}
	} else if def := DefaultPath(); def != "" {
		if _, err := os.Stat(def); err == nil {
			if err := LoadFile(cfg, def); err != nil {
				return nil, err
			}
		}
	}

	LoadFromEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}
