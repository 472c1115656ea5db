// ABOUTME: CLI command for viewing and changing cycle settings.
// ABOUTME: Lengths drive predictions; toggles drive display and reminders.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/cycles/internal/models"
	"github.com/harperreed/cycles/internal/tracker"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	setCycleLength   int
	setPeriodLength  int
	setTempUnit      string
	setTrackTemp     bool
	setTrackMucus    bool
	setRemindPeriod  bool
	setRemindOvul    bool
	setRemindSymptom bool
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change cycle settings",
	Long: `Show cycle settings, or change them with flags.

Predictions use the configured average cycle length, not the measured
history shown by 'cycles cycle list'.

Examples:
  cycles settings
  cycles settings --cycle-length 30 --period-length 4
  cycles settings --unit C --track-temperature
  cycles settings --remind-ovulation`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		changed := false
		cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
			changed = changed || f.Changed
		})
		if !changed {
			snap, err := loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			printSettings(snap.Settings)
			return nil
		}

		snap, err := updateSnapshot(cmd.Context(), func(snap models.Snapshot) (models.Snapshot, error) {
			s := snap.Settings
			if flags.Changed("cycle-length") {
				s.AverageCycleLength = setCycleLength
			}
			if flags.Changed("period-length") {
				s.AveragePeriodLength = setPeriodLength
			}
			if flags.Changed("unit") {
				u, err := models.ParseTemperatureUnit(setTempUnit)
				if err != nil {
					return snap, err
				}
				s.TemperatureUnit = u
			}
			for _, b := range []struct {
				name string
				src  bool
				dst  *bool
			}{
				{"track-temperature", setTrackTemp, &s.TrackTemperature},
				{"track-mucus", setTrackMucus, &s.TrackCervicalMucus},
				{"remind-period", setRemindPeriod, &s.Notifications.PeriodReminder},
				{"remind-ovulation", setRemindOvul, &s.Notifications.OvulationReminder},
				{"remind-symptoms", setRemindSymptom, &s.Notifications.SymptomReminder},
			} {
				if flags.Changed(b.name) {
					*b.dst = b.src
				}
			}
			return tracker.UpdateSettings(snap, s)
		})
		if err != nil {
			return err
		}
		color.Green("✓ Settings updated")
		printSettings(snap.Settings)
		return nil
	},
}

func printSettings(s models.CycleSettings) {
	rows := []struct {
		label string
		value any
	}{
		{"cycle length", fmt.Sprintf("%d days", s.AverageCycleLength)},
		{"period length", fmt.Sprintf("%d days", s.AveragePeriodLength)},
		{"temperature unit", s.TemperatureUnit},
		{"track temperature", s.TrackTemperature},
		{"track cervical mucus", s.TrackCervicalMucus},
		{"remind period", s.Notifications.PeriodReminder},
		{"remind ovulation", s.Notifications.OvulationReminder},
		{"remind symptoms", s.Notifications.SymptomReminder},
	}
	for _, r := range rows {
		fmt.Printf("  %s %v\n", padRight(r.label, 22), r.value)
	}
}

func init() {
	settingsCmd.Flags().IntVar(&setCycleLength, "cycle-length", models.DefaultCycleLength, "average cycle length in days")
	settingsCmd.Flags().IntVar(&setPeriodLength, "period-length", models.DefaultPeriodLength, "average period length in days")
	settingsCmd.Flags().StringVar(&setTempUnit, "unit", "", "temperature unit: F or C")
	settingsCmd.Flags().BoolVar(&setTrackTemp, "track-temperature", false, "track basal body temperature")
	settingsCmd.Flags().BoolVar(&setTrackMucus, "track-mucus", false, "track cervical mucus")
	settingsCmd.Flags().BoolVar(&setRemindPeriod, "remind-period", true, "remind before the predicted period")
	settingsCmd.Flags().BoolVar(&setRemindOvul, "remind-ovulation", true, "remind before the fertile window and ovulation")
	settingsCmd.Flags().BoolVar(&setRemindSymptom, "remind-symptoms", true, "remind to log days with nothing recorded")
	rootCmd.AddCommand(settingsCmd)
}
