// ABOUTME: CLI commands for exporting and importing tracking data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/harperreed/cycles/internal/models"
	"github.com/harperreed/cycles/internal/storage"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportSince  string
	importForce  bool
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export tracking data",
	Long: `Export tracking data in various formats.

FORMATS:

  json       Full JSON export (suitable for backup/restore)
  yaml       YAML export (human-readable)
  markdown   Markdown tables (for sharing with a clinician)

OPTIONS:

  --output, -o   Write to file instead of stdout
  --since        Only include cycles and entries since this date (markdown only)

EXAMPLES:

  cycles export json                        # Export all data as JSON
  cycles export json -o backup.json         # Save to file
  cycles export yaml                        # Export as YAML
  cycles export markdown --since 2024-01-01 # Cycles from 2024 onward`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		format := args[0]

		snap, err := loadSnapshot(cmd.Context())
		if err != nil {
			return err
		}

		var data []byte
		switch format {
		case "json":
			data, err = storage.ExportJSON(snap, now())
		case "yaml":
			data, err = storage.ExportYAML(snap, now())
		case "markdown", "md":
			var since *models.Date
			if exportSince != "" {
				d, err := models.ParseDate(exportSince)
				if err != nil {
					return err
				}
				since = &d
			}
			data = []byte(storage.ExportMarkdown(snap, since, now()))
		default:
			return fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			color.Green("✓ Exported to %s", exportOutput)
		} else {
			fmt.Println(string(data))
		}
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import tracking data from JSON",
	Long: `Import tracking data from a JSON backup made with 'cycles export json'.

The backup replaces the stored data as a whole. Existing data is only
overwritten with --force.

EXAMPLES:

  cycles import backup.json
  cycles import backup.json --force`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}
		snap, err := storage.ImportJSON(data)
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		if !importForce {
			_, err := store.Load(cmd.Context())
			switch {
			case err == nil:
				return fmt.Errorf("import failed: %w (use --force to replace it)", storage.ErrDestinationNotEmpty)
			case !errors.Is(err, storage.ErrNoSnapshot):
				return fmt.Errorf("import failed: %w", err)
			}
		}

		if err := store.Save(cmd.Context(), snap); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		color.Green("✓ Imported from %s", filename)
		fmt.Printf("  %d cycles, mode %s\n", len(snap.Cycles), snap.Mode)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().StringVar(&exportSince, "since", "", "only include data since date (YYYY-MM-DD)")
	importCmd.Flags().BoolVar(&importForce, "force", false, "replace existing data")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
