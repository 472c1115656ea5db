// ABOUTME: CLI commands for managing cycles directly.
// ABOUTME: Supports add, list, show, and delete-day.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/cycles/internal/models"
	"github.com/harperreed/cycles/internal/tracker"
	"github.com/spf13/cobra"
)

var cycleListLimit int

var cycleCmd = &cobra.Command{
	Use:     "cycle",
	Aliases: []string{"c"},
	Short:   "Manage cycles",
	Long: `Add, list, and inspect cycles.

Most cycles are created by 'cycles log --bleeding'. Use 'cycle add' to
backfill history from a calendar or another app.`,
}

var cycleAddCmd = &cobra.Command{
	Use:   "add <start-date> [end-date]",
	Short: "Add a cycle",
	Long: `Add a cycle by its first period day, optionally with its last day.

An open cycle that started earlier is closed the day before the new one.
Cycles may not overlap.

Examples:
  cycles cycle add 2024-01-01 2024-01-28
  cycles cycle add 2024-01-29`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := models.ParseDate(args[0])
		if err != nil {
			return err
		}
		cycle := models.NewCycle(start)
		if len(args) == 2 {
			end, err := models.ParseDate(args[1])
			if err != nil {
				return err
			}
			cycle = cycle.WithEndDate(end)
		}

		_, err = updateSnapshot(cmd.Context(), func(snap models.Snapshot) (models.Snapshot, error) {
			return tracker.AddCycle(snap, cycle)
		})
		if err != nil {
			return fmt.Errorf("failed to add cycle: %w", err)
		}

		color.Green("✓ Added cycle starting %s", start)
		return nil
	},
}

var cycleListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List cycles, most recent first",
	Long: `List cycles with their cycle length and period length.

OUTPUT FORMAT:

  START       END         LENGTH  PERIOD  DAYS LOGGED

  Open cycles show "current" instead of an end date.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot(cmd.Context())
		if err != nil {
			return err
		}
		if len(snap.Cycles) == 0 {
			fmt.Println("No cycles logged yet.")
			return nil
		}

		shown := 0
		for i := len(snap.Cycles) - 1; i >= 0; i-- {
			if cycleListLimit > 0 && shown >= cycleListLimit {
				break
			}
			printCycleLine(snap.Cycles[i])
			shown++
		}

		stats := tracker.BuildCycleStats(snap.Cycles)
		if stats.AverageCycleLength > 0 {
			fmt.Println()
			fmt.Printf("Average cycle %.1f days (%d to %d), average period %.1f days\n",
				stats.AverageCycleLength, stats.ShortestCycle, stats.LongestCycle, stats.AveragePeriodLength)
		}
		return nil
	},
}

var cycleShowCmd = &cobra.Command{
	Use:   "show [date]",
	Short: "Show every logged day of the cycle covering a date",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := dateArg(args, 0)
		if err != nil {
			return err
		}
		snap, err := loadSnapshot(cmd.Context())
		if err != nil {
			return err
		}
		idx, ok := tracker.FindCycle(snap.Cycles, date)
		if !ok {
			return &models.NoActiveCycleError{Date: date}
		}

		c := snap.Cycles[idx]
		printCycleLine(c)
		for _, d := range c.Days {
			printDay(d, c.StartDate)
		}
		return nil
	},
}

var cycleDeleteDayCmd = &cobra.Command{
	Use:     "delete-day <date>",
	Aliases: []string{"rm-day"},
	Short:   "Delete the observations logged on a day",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := models.ParseDate(args[0])
		if err != nil {
			return err
		}

		_, err = updateSnapshot(cmd.Context(), func(snap models.Snapshot) (models.Snapshot, error) {
			next, removed := tracker.DeleteCycleDay(snap, date)
			if !removed {
				return snap, fmt.Errorf("nothing logged on %s: %w", date, models.ErrNotFound)
			}
			return next, nil
		})
		if err != nil {
			return err
		}

		color.Green("✓ Deleted %s", date)
		return nil
	},
}

func printCycleLine(c models.Cycle) {
	end := "current   "
	if c.EndDate != nil {
		end = c.EndDate.String()
	}
	length := "  -"
	if n, ok := c.Length(); ok {
		length = fmt.Sprintf("%3d", n)
	}
	fmt.Printf("%s  %s  %s days  %s  %s\n",
		c.StartDate, end, length,
		color.RedString("%d period", c.PeriodLength()),
		faint(fmt.Sprintf("%d logged", len(c.Days))))
}

func init() {
	cycleListCmd.Flags().IntVarP(&cycleListLimit, "limit", "n", 12, "max number of cycles")

	cycleCmd.AddCommand(cycleAddCmd)
	cycleCmd.AddCommand(cycleListCmd)
	cycleCmd.AddCommand(cycleShowCmd)
	cycleCmd.AddCommand(cycleDeleteDayCmd)
	rootCmd.AddCommand(cycleCmd)
}
