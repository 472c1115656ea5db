// ABOUTME: Root Cobra command for the cycles CLI.
// ABOUTME: Loads config, configures logging, and owns the storage lifecycle via PersistentPre/PostRunE.
package main

import (
	"fmt"

	"github.com/harperreed/cycles/internal/config"
	"github.com/harperreed/cycles/internal/logger"
	"github.com/harperreed/cycles/internal/storage"
	"github.com/spf13/cobra"
)

var (
	cfg   *config.Config
	store storage.Store

	flagBackend  string
	flagDataDir  string
	flagLogLevel string
)

// noStoreCommands run without opening a backend.
var noStoreCommands = map[string]bool{
	"help":          true,
	"version":       true,
	"completion":    true,
	"convert":       true,
	"install-skill": true,
	"migrate":       true,
	"sync":          true,
	"link":          true,
	"unlink":        true,
	"repair":        true,
	"reset":         true,
	"wipe":          true,
}

var rootCmd = &cobra.Command{
	Use:   "cycles",
	Short: "Menstrual cycle and pregnancy tracker",
	Long: `Cycles is a CLI tool for tracking menstrual cycles, pregnancy, and postpartum recovery.

WHAT IT TRACKS:

  Cycles       period days with flow, symptoms, mood, basal temperature, cervical mucus
  Predictions  next period, ovulation, fertile window, current phase
  Pregnancy    due date, week, trimester, symptoms, weight, blood pressure, appointments
  Postpartum   recovery symptoms, journal notes, first period return

QUICK START:

  $ cycles log --bleeding medium --symptoms cramps   # Log today
  $ cycles log 2024-01-02 --mood tired --temp 97.6   # Log a past day
  $ cycles predict                                  # Next period and fertile window
  $ cycles calendar                                 # Colored month view
  $ cycles cycle list                               # Cycle history

PREGNANCY:

  $ cycles pregnancy start 2024-01-01       # Start from last period date
  $ cycles pregnancy status                 # Week, trimester, due date
  $ cycles pregnancy appointment add 2024-03-20 "Dating scan"

STORAGE:

  Data lives in SQLite at ~/.local/share/cycles/cycles.db by default.
  Set "backend" in ~/.config/cycles/config.json (or CYCLES_BACKEND) to
  "badger" for an embedded KV store or "charm" for encrypted cloud sync.

MCP INTEGRATION:

  Run 'cycles mcp' to start the Model Context Protocol server:

  {
    "mcpServers": {
      "cycles": { "command": "cycles", "args": ["mcp"] }
    }
  }`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyFlagOverrides(cfg)
		logger.Init(cfg.LogLevel, cfg.LogFormat)

		if noStoreCommands[cmd.Name()] {
			return nil
		}

		if cfg.EnsureSession() {
			if err := cfg.Save(); err != nil {
				logger.Log.WithError(err).Warn("could not save generated session id")
			}
		}

		store, err = cfg.OpenStorage()
		if err != nil {
			return fmt.Errorf("failed to open %s storage: %w", cfg.GetBackend(), err)
		}
		logger.Log.WithField("backend", cfg.GetBackend()).Debug("storage opened")
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeStore()
	},
}

func applyFlagOverrides(c *config.Config) {
	if flagBackend != "" {
		c.Backend = flagBackend
	}
	if flagDataDir != "" {
		c.DataDir = flagDataDir
	}
	if flagLogLevel != "" {
		c.LogLevel = flagLogLevel
	}
}

// closeStore releases the open backend. Safe to call more than once.
func closeStore() error {
	if store == nil {
		return nil
	}
	err := store.Close()
	store = nil
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "storage backend: sqlite, badger, or charm")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.local/share/cycles)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug, info, warn, error")
}
