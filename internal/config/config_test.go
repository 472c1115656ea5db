// ABOUTME: Tests for cycles configuration management.
// ABOUTME: Covers load, save, defaults, env overrides, backend selection, and path expansion.
package config

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/harperreed/cycles/internal/models"
	"github.com/harperreed/cycles/internal/storage"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"CYCLES_BACKEND", "CYCLES_DATA_DIR", "CYCLES_SESSION", "CYCLES_LOG_LEVEL",
		"CYCLES_LOG_FORMAT", "CYCLES_REMINDER_SCHEDULE", "CYCLES_REMINDER_LEAD_DAYS",
		"CYCLES_INSIGHT_COMMAND",
	} {
		t.Setenv(name, "")
	}
}

func TestGetBackendDefault(t *testing.T) {
	cfg := &Config{}
	if got := cfg.GetBackend(); got != "sqlite" {
		t.Errorf("GetBackend() = %q, want %q", got, "sqlite")
	}
}

func TestGetBackendExplicit(t *testing.T) {
	cfg := &Config{Backend: "badger"}
	if got := cfg.GetBackend(); got != "badger" {
		t.Errorf("GetBackend() = %q, want %q", got, "badger")
	}
}

func TestGetDataDir(t *testing.T) {
	if got := (&Config{}).GetDataDir(); got == "" {
		t.Error("GetDataDir() returned empty string")
	}
	if got := (&Config{DataDir: "/tmp/cycles-test"}).GetDataDir(); got != "/tmp/cycles-test" {
		t.Errorf("GetDataDir() = %q, want %q", got, "/tmp/cycles-test")
	}

	home, _ := os.UserHomeDir()
	cfg := &Config{DataDir: "~/cycles-data"}
	if got, want := cfg.GetDataDir(), filepath.Join(home, "cycles-data"); got != want {
		t.Errorf("GetDataDir() = %q, want %q", got, want)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/tmp/foo", "/tmp/foo"},
		{"~", home},
		{"~/data/cycles", filepath.Join(home, "data/cycles")},
		{"data/cycles", "data/cycles"},
	}
	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReminderDefaults(t *testing.T) {
	cfg := &Config{}
	if got := cfg.GetReminderSchedule(); got != DefaultReminderSchedule {
		t.Errorf("GetReminderSchedule() = %q", got)
	}
	if got := cfg.GetReminderLeadDays(); got != DefaultReminderLeadDays {
		t.Errorf("GetReminderLeadDays() = %d", got)
	}

	cfg = &Config{ReminderSchedule: "30 7 * * 1-5", ReminderLeadDays: 4}
	if cfg.GetReminderSchedule() != "30 7 * * 1-5" || cfg.GetReminderLeadDays() != 4 {
		t.Errorf("explicit reminder settings ignored: %+v", cfg)
	}
}

func TestEnsureSession(t *testing.T) {
	cfg := &Config{}
	if !cfg.EnsureSession() {
		t.Fatal("EnsureSession() should generate an ID for an empty config")
	}
	if len(cfg.Session) != 26 {
		t.Errorf("session %q is not a ULID", cfg.Session)
	}

	first := cfg.Session
	if cfg.EnsureSession() || cfg.Session != first {
		t.Error("EnsureSession() must keep an existing ID")
	}
	if GenerateSessionID() == GenerateSessionID() {
		t.Error("session IDs should be unique")
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with no config file should not error: %v", err)
	}
	if cfg.Backend != "" || cfg.DataDir != "" {
		t.Errorf("expected empty config, got %+v", cfg)
	}
}

func TestSaveAndLoad(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := &Config{
		Backend:          "badger",
		DataDir:          "/tmp/cycles-data",
		Session:          "01HZXAMPLESESSION000000000",
		ReminderLeadDays: 3,
	}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if *loaded != *cfg {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if err := (&Config{Backend: "sqlite", LogLevel: "warn"}).Save(); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	t.Setenv("CYCLES_BACKEND", "badger")
	t.Setenv("CYCLES_LOG_LEVEL", "debug")
	t.Setenv("CYCLES_REMINDER_LEAD_DAYS", "5")
	t.Setenv("CYCLES_INSIGHT_COMMAND", "llm -m local")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Backend != "badger" || cfg.LogLevel != "debug" || cfg.ReminderLeadDays != 5 || cfg.InsightCommand != "llm -m local" {
		t.Errorf("env overrides not applied: %+v", cfg)
	}

	t.Setenv("CYCLES_REMINDER_LEAD_DAYS", "soon")
	if _, err := Load(); err == nil {
		t.Error("expected error for non-numeric lead days")
	}
}

func TestSaveCreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "nonexistent"))

	cfg := &Config{Backend: "sqlite"}
	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() should create directory: %v", err)
	}

	configDir := filepath.Join(tmpDir, "nonexistent", "cycles")
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		t.Error("Expected config directory to be created")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	configDir := filepath.Join(tmpDir, "cycles")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.json"), []byte("invalid json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("Expected error for invalid JSON config")
	}
}

func TestGetConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	want := filepath.Join(tmpDir, "cycles", "config.json")
	if got := GetConfigPath(); got != want {
		t.Errorf("GetConfigPath() = %q, want %q", got, want)
	}
}

func TestOpenStorageSQLite(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := &Config{Backend: "sqlite", DataDir: tmpDir}

	store, err := cfg.OpenStorage()
	if err != nil {
		t.Fatalf("OpenStorage() for sqlite failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(filepath.Join(tmpDir, "cycles.db")); os.IsNotExist(err) {
		t.Error("Expected cycles.db to be created")
	}

	_, err = store.Load(context.Background())
	if !errors.Is(err, storage.ErrNoSnapshot) {
		t.Errorf("fresh store Load() error = %v, want ErrNoSnapshot", err)
	}
}

func TestOpenStorageBadger(t *testing.T) {
	tmpDir := t.TempDir()
	cfg := &Config{Backend: "badger", DataDir: tmpDir, Session: "test"}

	store, err := cfg.OpenStorage()
	if err != nil {
		t.Fatalf("OpenStorage() for badger failed: %v", err)
	}
	defer store.Close()

	snap := models.NewSnapshot()
	if err := store.Save(context.Background(), &snap); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "badger")); os.IsNotExist(err) {
		t.Error("Expected badger directory to be created")
	}
}

func TestOpenStorageInvalidBackend(t *testing.T) {
	cfg := &Config{Backend: "invalid", DataDir: "/tmp"}
	if _, err := cfg.OpenStorage(); err == nil {
		t.Error("Expected error for invalid backend")
	}
}

func TestConfigJSONSerialization(t *testing.T) {
	cfg := &Config{Backend: "badger", DataDir: "~/cycles-data", LogFormat: "json"}

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if loaded != *cfg {
		t.Errorf("round trip = %+v, want %+v", loaded, *cfg)
	}
}

func TestConfigJSONOmitsEmpty(t *testing.T) {
	data, err := json.Marshal(&Config{})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != "{}" {
		t.Errorf("Expected empty JSON object, got %s", string(data))
	}
}
