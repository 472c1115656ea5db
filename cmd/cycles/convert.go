// ABOUTME: CLI command for converting temperatures between Fahrenheit and Celsius.
// ABOUTME: Runs without opening storage.
package main

import (
	"fmt"
	"strconv"

	"github.com/harperreed/cycles/internal/models"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert <value> <from> <to>",
	Short: "Convert a temperature between F and C",
	Long: `Convert a temperature. Units are F or C, case-insensitive.

Examples:
  cycles convert 98.6 F C
  cycles convert 36.5 c f`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid value: %s", args[0])
		}
		from, err := models.ParseTemperatureUnit(args[1])
		if err != nil {
			return err
		}
		to, err := models.ParseTemperatureUnit(args[2])
		if err != nil {
			return err
		}
		out, err := models.ConvertTemperature(value, from, to)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%.1f°%s = %.1f°%s\n", value, from, models.RoundForDisplay(out), to)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
