package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/actionsum/recentapps/pkg/apps"
)

// Config holds all application configuration
type Config struct {
	// Database configuration
	Database DatabaseConfig `yaml:"database"`

	// Tracker configuration
	Tracker TrackerConfig `yaml:"tracker"`

	// Provider selection
	Provider ProviderConfig `yaml:"provider"`

	// Observer defaults for watch and the web stream
	Observer ObserverConfig `yaml:"observer"`

	// Daemon configuration
	Daemon DaemonConfig `yaml:"daemon"`

	// Web server configuration
	Web WebConfig `yaml:"web"`

	// Logging configuration
	Log LogConfig `yaml:"log"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Path string `yaml:"path"` // Path to SQLite database file
}

// TrackerConfig holds recorder behavior configuration
type TrackerConfig struct {
	PollInterval    time.Duration `yaml:"poll_interval"`     // How often to check focused window
	MinPollInterval time.Duration `yaml:"min_poll_interval"` // Minimum allowed poll interval
	MaxPollInterval time.Duration `yaml:"max_poll_interval"` // Maximum allowed poll interval
	Retention       time.Duration `yaml:"retention"`         // How long focus events are kept
	Display         string        `yaml:"display"`           // X display, empty means $DISPLAY
}

// ProviderConfig controls which recent-apps strategy is bound
type ProviderConfig struct {
	Strategy        string   `yaml:"strategy"`         // auto, event-log, usage-window or running-tasks
	ApplicationDirs []string `yaml:"application_dirs"` // empty means the XDG defaults
}

// ObserverConfig holds the live-query defaults
type ObserverConfig struct {
	Limit  int           `yaml:"limit"`
	Period time.Duration `yaml:"period"`
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile    string `yaml:"pid_file"`     // PID file of the recorder
	WebPIDFile string `yaml:"web_pid_file"` // PID file of the web server
}

// WebConfig holds web server configuration
type WebConfig struct {
	Host string `yaml:"host"` // Host to bind web server to
	Port int    `yaml:"port"` // Port for web server
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"` // empty means stderr
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path: "", // Empty means use default ~/.local/share/recentapps/focus.db
		},
		Tracker: TrackerConfig{
			PollInterval:    2 * time.Second,
			MinPollInterval: 500 * time.Millisecond,
			MaxPollInterval: 60 * time.Second,
			Retention:       7 * 24 * time.Hour,
		},
		Provider: ProviderConfig{
			Strategy: "auto",
		},
		Observer: ObserverConfig{
			Limit:  10,
			Period: time.Second,
		},
		Daemon: DaemonConfig{
			PIDFile:    fmt.Sprintf("/tmp/recentapps-%d.pid", os.Getuid()),
			WebPIDFile: fmt.Sprintf("/tmp/recentapps-web-%d.pid", os.Getuid()),
		},
		Web: WebConfig{
			Host: "localhost",
			Port: 20000 + os.Getuid()%10000, // per-user default port
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate tracker intervals
	if c.Tracker.PollInterval < c.Tracker.MinPollInterval {
		return errors.Errorf("poll interval (%v) cannot be less than minimum (%v)",
			c.Tracker.PollInterval, c.Tracker.MinPollInterval)
	}

	if c.Tracker.PollInterval > c.Tracker.MaxPollInterval {
		return errors.Errorf("poll interval (%v) cannot be greater than maximum (%v)",
			c.Tracker.PollInterval, c.Tracker.MaxPollInterval)
	}

	if c.Tracker.Retention < time.Hour {
		return errors.Errorf("retention must be at least 1h, got %v", c.Tracker.Retention)
	}

	if _, ok := c.Capability(); !ok {
		return errors.Errorf("unknown provider strategy %q", c.Provider.Strategy)
	}

	if c.Observer.Limit < 0 {
		return errors.Errorf("observer limit cannot be negative, got %d", c.Observer.Limit)
	}

	if c.Observer.Period <= 0 {
		return errors.Errorf("observer period must be positive, got %v", c.Observer.Period)
	}

	// Validate web config
	if c.Web.Port < 1 || c.Web.Port > 65535 {
		return errors.Errorf("web port must be between 1 and 65535, got %d", c.Web.Port)
	}

	if c.Web.Host == "" {
		return errors.New("web host cannot be empty")
	}

	// Validate daemon config
	if c.Daemon.PIDFile == "" || c.Daemon.WebPIDFile == "" {
		return errors.New("PID file paths cannot be empty")
	}

	return nil
}

// Capability returns the forced provider capability. apps.CapabilityNone
// means automatic selection; ok is false for an unknown strategy name.
func (c *Config) Capability() (apps.Capability, bool) {
	return apps.ParseCapability(c.Provider.Strategy)
}

// SetPollInterval sets the poll interval with validation
func (c *Config) SetPollInterval(interval time.Duration) error {
	if interval < c.Tracker.MinPollInterval {
		return errors.Errorf("poll interval cannot be less than %v", c.Tracker.MinPollInterval)
	}
	if interval > c.Tracker.MaxPollInterval {
		return errors.Errorf("poll interval cannot be greater than %v", c.Tracker.MaxPollInterval)
	}
	c.Tracker.PollInterval = interval
	return nil
}

// SetWebPort sets the web server port with validation
func (c *Config) SetWebPort(port int) error {
	if port < 1 || port > 65535 {
		return errors.Errorf("port must be between 1 and 65535, got %d", port)
	}
	c.Web.Port = port
	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Database:
    Path: %s
  Tracker:
    Poll Interval: %v
    Retention: %v
    Display: %s
  Provider:
    Strategy: %s
  Observer:
    Limit: %d
    Period: %v
  Daemon:
    PID File: %s
    Web PID File: %s
  Web:
    Host: %s
    Port: %d
  Log:
    Level: %s
    File: %s`,
		c.Database.Path,
		c.Tracker.PollInterval,
		c.Tracker.Retention,
		c.Tracker.Display,
		c.Provider.Strategy,
		c.Observer.Limit,
		c.Observer.Period,
		c.Daemon.PIDFile,
		c.Daemon.WebPIDFile,
		c.Web.Host,
		c.Web.Port,
		c.Log.Level,
		c.Log.File,
	)
}
