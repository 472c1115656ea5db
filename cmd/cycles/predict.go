// ABOUTME: CLI commands for predictions, day status, and the month calendar.
// ABOUTME: Rendering precedence in the calendar is logged flow, predicted period, ovulation, fertile.
package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/cycles/internal/models"
	"github.com/harperreed/cycles/internal/tracker"
	"github.com/spf13/cobra"
)

var predictCmd = &cobra.Command{
	Use:     "predict",
	Aliases: []string{"p"},
	Short:   "Show the next period, ovulation, and fertile window",
	Long: `Predict the next period from the latest cycle start and the average cycle
length in settings. Ovulation is 14 days before the next period; the fertile
window runs from 5 days before ovulation to 1 day after.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot(cmd.Context())
		if err != nil {
			return err
		}
		preds, ok := tracker.CalculatePredictions(snap.Cycles, snap.Settings)
		if !ok {
			fmt.Println("No cycles logged yet. Log a period day with 'cycles log --bleeding medium'.")
			return nil
		}

		t := today()
		if n, ok := tracker.CycleDayNumber(snap.Cycles, t); ok {
			fmt.Printf("Today is cycle day %d (%s phase)\n\n", n, tracker.CurrentPhase(t, snap.Cycles, snap.Settings))
		}
		fmt.Printf("  %s  %s %s\n", padRight("Next period", 16), color.RedString(preds.NextPeriod.String()), faint(relativeDays(preds.NextPeriod.DaysSince(t))))
		fmt.Printf("  %s  %s %s\n", padRight("Ovulation", 16), color.YellowString(preds.Ovulation.String()), faint(relativeDays(preds.Ovulation.DaysSince(t))))
		fmt.Printf("  %s  %s to %s\n", padRight("Fertile window", 16),
			color.CyanString(preds.FertileWindow.Start.String()), color.CyanString(preds.FertileWindow.End.String()))

		if snap.Mode != models.ModeCycle {
			fmt.Println()
			color.Yellow("Note: %s tracking is active; predictions use the cycle log only.", snap.Mode)
		}
		return nil
	},
}

var dayCmd = &cobra.Command{
	Use:   "day [date]",
	Short: "Show what is logged and predicted for a day",
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

		status := tracker.ResolveDayStatus(date, snap.Cycles, predictionsOf(snap))
		fmt.Println(date.Time().Format("Monday, January 2, 2006"))
		if status.CycleDay != nil {
			idx, _ := tracker.FindCycle(snap.Cycles, date)
			printDay(*status.CycleDay, snap.Cycles[idx].StartDate)
		} else {
			fmt.Println(faint("  nothing logged"))
		}
		for _, flag := range []struct {
			on    bool
			label string
			c     *color.Color
		}{
			{status.IsPredictedPeriod, "predicted period start", color.New(color.FgRed)},
			{status.IsOvulation, "predicted ovulation", color.New(color.FgYellow)},
			{status.IsFertile, "fertile window", color.New(color.FgCyan)},
		} {
			if flag.on {
				fmt.Printf("  %s\n", flag.c.Sprint(flag.label))
			}
		}
		return nil
	},
}

var calendarCmd = &cobra.Command{
	Use:     "calendar [YYYY-MM]",
	Aliases: []string{"cal"},
	Short:   "Show a colored month calendar",
	Long: `Show a month with logged and predicted days highlighted.

LEGEND:

  red        logged flow
  magenta    predicted period start
  yellow     predicted ovulation
  cyan       fertile window
  underline  today`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		year, month := today().Year(), today().Month()
		if len(args) == 1 {
			t, err := time.Parse("2006-01", args[0])
			if err != nil {
				return fmt.Errorf("invalid month %q: expected YYYY-MM", args[0])
			}
			year, month = t.Year(), t.Month()
		}

		snap, err := loadSnapshot(cmd.Context())
		if err != nil {
			return err
		}
		days := tracker.ResolveMonth(year, month, snap.Cycles, predictionsOf(snap))
		fmt.Print(renderCalendar(year, month, days, today()))
		return nil
	},
}

func predictionsOf(snap *models.Snapshot) *models.Predictions {
	if p, ok := tracker.CalculatePredictions(snap.Cycles, snap.Settings); ok {
		return &p
	}
	return nil
}

func renderCalendar(year int, month time.Month, days []tracker.DayStatus, t models.Date) string {
	var b strings.Builder
	title := fmt.Sprintf("%s %d", month, year)
	fmt.Fprintf(&b, "%s%s\n", strings.Repeat(" ", (20-len(title))/2), title)
	b.WriteString("Su Mo Tu We Th Fr Sa\n")

	if len(days) == 0 {
		return b.String()
	}
	offset := int(days[0].Date.Weekday())
	b.WriteString(strings.Repeat("   ", offset))
	for i, st := range days {
		b.WriteString(dayCell(st, t))
		if (offset+i+1)%7 == 0 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	if (offset+len(days))%7 != 0 {
		b.WriteString("\n")
	}
	return b.String()
}

func dayCell(st tracker.DayStatus, t models.Date) string {
	c := color.New()
	switch {
	case st.CycleDay != nil && st.CycleDay.HasBleeding():
		c = color.New(color.FgRed, color.Bold)
	case st.IsPredictedPeriod:
		c = color.New(color.FgMagenta)
	case st.IsOvulation:
		c = color.New(color.FgYellow, color.Bold)
	case st.IsFertile:
		c = color.New(color.FgCyan)
	case st.CycleDay != nil:
		c = color.New(color.FgGreen)
	}
	if st.Date.Equal(t) {
		c.Add(color.Underline)
	}
	return c.Sprintf("%2d", st.Date.Day())
}

func relativeDays(n int) string {
	switch {
	case n == 0:
		return "(today)"
	case n == 1:
		return "(tomorrow)"
	case n == -1:
		return "(yesterday)"
	case n > 0:
		return fmt.Sprintf("(in %d days)", n)
	default:
		return fmt.Sprintf("(%d days ago)", -n)
	}
}

func init() {
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(dayCmd)
	rootCmd.AddCommand(calendarCmd)
}
