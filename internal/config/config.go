// ABOUTME: Cycles configuration management with backend selection.
// ABOUTME: Handles the JSON config file, .env overrides, and the storage backend factory.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/harperreed/cycles/internal/charm"
	"github.com/harperreed/cycles/internal/storage"
	"github.com/joho/godotenv"
	"github.com/oklog/ulid/v2"
)

const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendCharm  = "charm"

	// DefaultReminderSchedule checks reminders every morning at 08:00.
	DefaultReminderSchedule = "0 8 * * *"
	// DefaultReminderLeadDays is how far ahead period and ovulation reminders look.
	DefaultReminderLeadDays = 2
)

// Config stores cycles tool configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default), "badger", or "charm".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for data storage.
	// SQLite puts cycles.db here; badger uses a badger/ subdirectory.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/cycles.
	DataDir string `json:"data_dir,omitempty"`

	// Session identifies the snapshot in the KV backends.
	Session string `json:"session,omitempty"`

	LogLevel  string `json:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty"`

	// ReminderSchedule is a five-field cron expression for `remind --watch`.
	ReminderSchedule string `json:"reminder_schedule,omitempty"`
	ReminderLeadDays int    `json:"reminder_lead_days,omitempty"`

	// InsightCommand is a command line that reads an analysis prompt on
	// stdin and prints a JSON result, e.g. an LLM CLI.
	InsightCommand string `json:"insight_command,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return BackendSQLite
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// GetReminderSchedule returns the cron schedule for reminders.
func (c *Config) GetReminderSchedule() string {
	if c.ReminderSchedule == "" {
		return DefaultReminderSchedule
	}
	return c.ReminderSchedule
}

// GetReminderLeadDays returns the reminder look-ahead in days.
func (c *Config) GetReminderLeadDays() int {
	if c.ReminderLeadDays <= 0 {
		return DefaultReminderLeadDays
	}
	return c.ReminderLeadDays
}

// EnsureSession assigns a new session ID if none is set. It reports whether
// one was generated so callers know to save the config.
func (c *Config) EnsureSession() bool {
	if c.Session != "" {
		return false
	}
	c.Session = GenerateSessionID()
	return true
}

// GenerateSessionID creates a new unique session ID.
func GenerateSessionID() string {
	return ulid.Make().String()
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStorage creates a Store implementation based on the configured backend.
func (c *Config) OpenStorage() (storage.Store, error) {
	backend := c.GetBackend()
	dataDir := c.GetDataDir()

	switch backend {
	case BackendSQLite:
		return storage.Open(storage.DBPath(dataDir))
	case BackendBadger:
		return storage.OpenBadger(filepath.Join(dataDir, "badger"), c.Session)
	case BackendCharm:
		return charm.InitClient(c.Session)
	default:
		return nil, fmt.Errorf("unknown backend: %q", backend)
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "cycles", "config.json")
}

// Load reads config from disk and applies environment overrides. A .env
// file in the working directory is read first; it never overrides
// variables already set in the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg, err := loadFile(GetConfigPath())
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv overlays CYCLES_* environment variables on the file config.
func (c *Config) applyEnv() error {
	overrides := []struct {
		name string
		dst  *string
	}{
		{"CYCLES_BACKEND", &c.Backend},
		{"CYCLES_DATA_DIR", &c.DataDir},
		{"CYCLES_SESSION", &c.Session},
		{"CYCLES_LOG_LEVEL", &c.LogLevel},
		{"CYCLES_LOG_FORMAT", &c.LogFormat},
		{"CYCLES_REMINDER_SCHEDULE", &c.ReminderSchedule},
		{"CYCLES_INSIGHT_COMMAND", &c.InsightCommand},
	}
	for _, o := range overrides {
		if v := strings.TrimSpace(os.Getenv(o.name)); v != "" {
			*o.dst = v
		}
	}

	if v := strings.TrimSpace(os.Getenv("CYCLES_REMINDER_LEAD_DAYS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid CYCLES_REMINDER_LEAD_DAYS: %w", err)
		}
		c.ReminderLeadDays = n
	}
	return nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
