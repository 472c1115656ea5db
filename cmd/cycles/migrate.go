// ABOUTME: CLI command for copying the snapshot between storage backends.
// ABOUTME: Opens both backends from config and refuses to overwrite unless forced.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/cycles/internal/config"
	"github.com/harperreed/cycles/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateFrom  string
	migrateTo    string
	migrateForce bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy data between storage backends",
	Long: `Copy all tracking data from one storage backend to another.

BACKENDS:

  sqlite   ~/.local/share/cycles/cycles.db
  badger   ~/.local/share/cycles/badger/
  charm    Charm KV with encrypted cloud sync

The destination must be empty unless --force is given. After migrating,
set "backend" in ~/.config/cycles/config.json to start using the new store.

EXAMPLES:

  cycles migrate --from sqlite --to badger
  cycles migrate --from sqlite --to charm --force`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if migrateFrom == migrateTo {
			return fmt.Errorf("source and destination are both %s", migrateFrom)
		}

		if cfg.EnsureSession() {
			if err := cfg.Save(); err != nil {
				return fmt.Errorf("save session id: %w", err)
			}
		}

		src, err := openBackend(cfg, migrateFrom)
		if err != nil {
			return fmt.Errorf("open source: %w", err)
		}
		defer src.Close()

		dst, err := openBackend(cfg, migrateTo)
		if err != nil {
			return fmt.Errorf("open destination: %w", err)
		}
		defer dst.Close()

		summary, err := storage.MigrateData(cmd.Context(), src, dst, migrateForce)
		if errors.Is(err, storage.ErrDestinationNotEmpty) {
			return fmt.Errorf("%s already holds data; use --force to overwrite", migrateTo)
		}
		if errors.Is(err, storage.ErrNoSnapshot) {
			color.Yellow("Nothing to migrate: %s is empty", migrateFrom)
			return nil
		}
		if err != nil {
			return err
		}

		color.Green("✓ Migrated %s → %s", migrateFrom, migrateTo)
		fmt.Printf("  Cycles:       %d\n", summary.Cycles)
		fmt.Printf("  Logged days:  %d\n", summary.Days)
		fmt.Printf("  Symptoms:     %d\n", summary.Symptoms)
		fmt.Printf("  Measurements: %d\n", summary.Measurements)
		fmt.Printf("  Appointments: %d\n", summary.Appointments)
		return nil
	},
}

// openBackend opens backend with the rest of c unchanged.
func openBackend(c *config.Config, backend string) (storage.Store, error) {
	alt := *c
	alt.Backend = backend
	return alt.OpenStorage()
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", config.BackendSQLite, "source backend")
	migrateCmd.Flags().StringVar(&migrateTo, "to", config.BackendBadger, "destination backend")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "overwrite data in the destination")
	rootCmd.AddCommand(migrateCmd)
}
