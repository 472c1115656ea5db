// ABOUTME: CLI commands for pregnancy tracking.
// ABOUTME: Covers start/end, status, symptoms, measurements, appointments, milestones, and settings.
package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/cycles/internal/models"
	"github.com/harperreed/cycles/internal/tracker"
	"github.com/spf13/cobra"
)

var (
	pregEndPostpartum bool
	pregEntryDate     string
	pregEntryNotes    string
	pregWeight        float64
	pregBP            string
	pregWeightUnit    string
	pregRemindAppts   bool
	pregRemindWeekly  bool
	pregRemindMeasure bool
)

var pregnancyCmd = &cobra.Command{
	Use:     "pregnancy",
	Aliases: []string{"preg"},
	Short:   "Track a pregnancy",
	Long: `Track a pregnancy from the last menstrual period (LMP).

The due date is LMP + 280 days. Weeks count whole weeks since the LMP;
trimester 1 runs through week 13, trimester 2 through week 26.

COMMANDS:

  start <lmp>              Switch to pregnancy tracking
  end <birth-date>         Record the birth (--postpartum to track recovery)
  status                   Week, trimester, due date, upcoming appointments
  symptom <type> <sev>     Log a symptom (mild, moderate, severe)
  measure                  Log weight and/or blood pressure
  appointment              Add, list, and complete appointments
  milestone                Add, list, and complete milestones
  settings                 Weight unit and reminder toggles`,
}

var pregnancyStartCmd = &cobra.Command{
	Use:   "start <last-period-date>",
	Short: "Start pregnancy tracking",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lmp, err := models.ParseDate(args[0])
		if err != nil {
			return err
		}
		snap, err := updateSnapshot(cmd.Context(), func(snap models.Snapshot) (models.Snapshot, error) {
			return tracker.EnterPregnancy(snap, lmp)
		})
		if err != nil {
			return fmt.Errorf("failed to start pregnancy: %w", err)
		}

		week, _ := tracker.WeekOfPregnancy(snap.Pregnancy, today())
		color.Green("✓ Pregnancy tracking started")
		fmt.Printf("  Due date %s, currently week %d\n", snap.Pregnancy.DueDate, week)
		return nil
	},
}

var pregnancyEndCmd = &cobra.Command{
	Use:   "end <birth-date>",
	Short: "Record the birth and end pregnancy tracking",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		birth, err := models.ParseDate(args[0])
		if err != nil {
			return err
		}
		_, err = updateSnapshot(cmd.Context(), func(snap models.Snapshot) (models.Snapshot, error) {
			if pregEndPostpartum {
				if snap.Mode != models.ModePregnancy {
					return snap, models.ErrNotPregnant
				}
				return tracker.EnterPostpartum(snap, birth)
			}
			return tracker.ExitPregnancy(snap, birth)
		})
		if err != nil {
			return fmt.Errorf("failed to end pregnancy: %w", err)
		}

		color.Green("✓ Birth recorded on %s", birth)
		if pregEndPostpartum {
			fmt.Println("  Postpartum tracking started. See 'cycles postpartum'.")
		} else {
			fmt.Println("  Back to cycle tracking.")
		}
		return nil
	},
}

var pregnancyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show pregnancy progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot(cmd.Context())
		if err != nil {
			return err
		}
		if snap.Mode != models.ModePregnancy {
			fmt.Println("Not tracking a pregnancy. Start with 'cycles pregnancy start <last-period-date>'.")
			return nil
		}

		t := today()
		rec := snap.Pregnancy
		week, _ := tracker.WeekOfPregnancy(rec, t)
		trimester, _ := tracker.CurrentTrimester(rec, t)
		days, _ := tracker.DaysUntilDue(rec, t)

		color.New(color.Bold).Printf("Week %d, trimester %d\n", week, trimester)
		fmt.Printf("  Due %s %s\n", rec.DueDate, faint(relativeDays(days)))

		if n := len(rec.Measurements); n > 0 {
			m := rec.Measurements[n-1]
			fmt.Printf("  Last measurement %s: %s\n", m.Date, measurementText(m, rec.Settings.WeightUnit))
		}

		var upcoming []models.Appointment
		for _, a := range rec.Appointments {
			if !a.Completed && !a.Date.Before(t) {
				upcoming = append(upcoming, a)
			}
		}
		if len(upcoming) > 0 {
			fmt.Println()
			fmt.Println("Upcoming appointments:")
			for _, a := range upcoming {
				printAppointment(a)
			}
		}
		return nil
	},
}

var pregnancySymptomCmd = &cobra.Command{
	Use:   "symptom <type> <severity>",
	Short: "Log a pregnancy symptom",
	Long: `Log a symptom with severity mild, moderate, or severe.

Examples:
  cycles pregnancy symptom nausea moderate
  cycles pregnancy symptom "back pain" mild --date 2024-03-02 --notes "after walk"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := symptomFromArgs(args)
		if err != nil {
			return err
		}
		err = updateRecord(cmd.Context(), models.ModePregnancy, func(rec models.PregnancyRecord) (models.PregnancyRecord, error) {
			return tracker.AddSymptom(rec, s), nil
		})
		if err != nil {
			return fmt.Errorf("failed to add symptom: %w", err)
		}
		color.Green("✓ Logged %s (%s)", s.Type, s.Severity)
		fmt.Printf("  %s %s\n", faint(shortID(s.ID)), s.Date)
		return nil
	},
}

var pregnancyMeasureCmd = &cobra.Command{
	Use:   "measure",
	Short: "Log weight and/or blood pressure",
	Long: `Log a measurement. Weight is in the configured unit (see 'pregnancy settings').

Examples:
  cycles pregnancy measure --weight 64.2
  cycles pregnancy measure --bp 118/76
  cycles pregnancy measure --weight 64.5 --bp 120/78 --date 2024-03-10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := dateArg([]string{pregEntryDate}, 0)
		if err != nil {
			return err
		}
		m := models.NewMeasurement(date)
		if cmd.Flags().Changed("weight") {
			if pregWeight <= 0 {
				return &models.InvalidValueError{Field: "weight", Value: strconv.FormatFloat(pregWeight, 'f', -1, 64)}
			}
			m = m.WithWeight(pregWeight)
		}
		if pregBP != "" {
			sys, dia, err := parseBloodPressure(pregBP)
			if err != nil {
				return err
			}
			m = m.WithBloodPressure(sys, dia)
		}
		if pregEntryNotes != "" {
			m = m.WithNotes(pregEntryNotes)
		}
		if m.Weight == nil && m.BloodPressure == nil && m.Notes == nil {
			return fmt.Errorf("nothing to record: pass --weight, --bp, or --notes")
		}

		err = updateRecord(cmd.Context(), models.ModePregnancy, func(rec models.PregnancyRecord) (models.PregnancyRecord, error) {
			return tracker.AddMeasurement(rec, m), nil
		})
		if err != nil {
			return fmt.Errorf("failed to add measurement: %w", err)
		}
		color.Green("✓ Recorded measurement for %s", date)
		return nil
	},
}

var appointmentCmd = &cobra.Command{
	Use:     "appointment",
	Aliases: []string{"appt"},
	Short:   "Manage prenatal appointments",
}

var appointmentAddCmd = &cobra.Command{
	Use:   "add <date> <title>",
	Short: "Schedule an appointment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := models.ParseDate(args[0])
		if err != nil {
			return err
		}
		a := models.NewAppointment(date, args[1])
		if pregEntryNotes != "" {
			a = a.WithNotes(pregEntryNotes)
		}
		err = updateRecord(cmd.Context(), models.ModePregnancy, func(rec models.PregnancyRecord) (models.PregnancyRecord, error) {
			return tracker.AddAppointment(rec, a), nil
		})
		if err != nil {
			return fmt.Errorf("failed to add appointment: %w", err)
		}
		color.Green("✓ Scheduled %s on %s", a.Title, date)
		fmt.Printf("  %s\n", faint(shortID(a.ID)))
		return nil
	},
}

var appointmentListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List appointments",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot(cmd.Context())
		if err != nil {
			return err
		}
		if len(snap.Pregnancy.Appointments) == 0 {
			fmt.Println("No appointments.")
			return nil
		}
		for _, a := range snap.Pregnancy.Appointments {
			printAppointment(a)
		}
		return nil
	},
}

var appointmentDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark an appointment as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var done models.Appointment
		err := updateRecord(cmd.Context(), "", func(rec models.PregnancyRecord) (models.PregnancyRecord, error) {
			out, a, err := tracker.CompleteAppointment(rec, args[0])
			done = a
			return out, err
		})
		if err != nil {
			return err
		}
		color.Green("✓ Completed %s (%s)", done.Title, done.Date)
		return nil
	},
}

var milestoneCmd = &cobra.Command{
	Use:   "milestone",
	Short: "Manage pregnancy milestones",
}

var milestoneAddCmd = &cobra.Command{
	Use:   "add <date> <title> [description]",
	Short: "Add a milestone",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := models.ParseDate(args[0])
		if err != nil {
			return err
		}
		desc := ""
		if len(args) == 3 {
			desc = args[2]
		}
		m := models.NewMilestone(date, args[1], desc)
		err = updateRecord(cmd.Context(), models.ModePregnancy, func(rec models.PregnancyRecord) (models.PregnancyRecord, error) {
			return tracker.AddMilestone(rec, m), nil
		})
		if err != nil {
			return fmt.Errorf("failed to add milestone: %w", err)
		}
		color.Green("✓ Added milestone %s on %s", m.Title, date)
		fmt.Printf("  %s\n", faint(shortID(m.ID)))
		return nil
	},
}

var milestoneListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List milestones",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot(cmd.Context())
		if err != nil {
			return err
		}
		if len(snap.Pregnancy.Milestones) == 0 {
			fmt.Println("No milestones.")
			return nil
		}
		for _, m := range snap.Pregnancy.Milestones {
			check := "[ ]"
			if m.Completed {
				check = color.GreenString("[x]")
			}
			fmt.Printf("%s %s %s %s %s\n", faint(shortID(m.ID)), check, m.Date, m.Title, faint(truncate(m.Description, 40)))
		}
		return nil
	},
}

var milestoneDoneCmd = &cobra.Command{
	Use:   "done <id>",
	Short: "Mark a milestone as completed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var done models.Milestone
		err := updateRecord(cmd.Context(), "", func(rec models.PregnancyRecord) (models.PregnancyRecord, error) {
			out, m, err := tracker.CompleteMilestone(rec, args[0])
			done = m
			return out, err
		})
		if err != nil {
			return err
		}
		color.Green("✓ Completed %s", done.Title)
		return nil
	},
}

var pregnancySettingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change pregnancy settings",
	Long: `Show pregnancy settings, or change them with flags.

Examples:
  cycles pregnancy settings
  cycles pregnancy settings --weight-unit lbs
  cycles pregnancy settings --remind-weekly=false`,
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		if !flags.Changed("weight-unit") && !flags.Changed("remind-appointments") &&
			!flags.Changed("remind-weekly") && !flags.Changed("remind-measurements") {
			snap, err := loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			printPregnancySettings(snap.Pregnancy.Settings)
			return nil
		}

		snap, err := updateSnapshot(cmd.Context(), func(snap models.Snapshot) (models.Snapshot, error) {
			s := snap.Pregnancy.Settings
			if flags.Changed("weight-unit") {
				s.WeightUnit = models.WeightUnit(strings.ToLower(strings.TrimSpace(pregWeightUnit)))
			}
			if flags.Changed("remind-appointments") {
				s.Notifications.Appointments = pregRemindAppts
			}
			if flags.Changed("remind-weekly") {
				s.Notifications.WeeklyUpdates = pregRemindWeekly
			}
			if flags.Changed("remind-measurements") {
				s.Notifications.Measurements = pregRemindMeasure
			}
			return tracker.UpdatePregnancySettings(snap, s)
		})
		if err != nil {
			return err
		}
		color.Green("✓ Pregnancy settings updated")
		printPregnancySettings(snap.Pregnancy.Settings)
		return nil
	},
}

// updateRecord applies fn to the pregnancy record. A non-empty mode must
// be active.
func updateRecord(ctx context.Context, mode models.Mode, fn func(models.PregnancyRecord) (models.PregnancyRecord, error)) error {
	_, err := updateSnapshot(ctx, func(snap models.Snapshot) (models.Snapshot, error) {
		if mode != "" && snap.Mode != mode {
			if mode == models.ModePostpartum {
				return snap, models.ErrNotPostpartum
			}
			return snap, models.ErrNotPregnant
		}
		rec, err := fn(snap.Pregnancy)
		if err != nil {
			return snap, err
		}
		out := snap.Clone()
		out.Pregnancy = rec
		return out, nil
	})
	return err
}

func symptomFromArgs(args []string) (models.PregnancySymptom, error) {
	date, err := dateArg([]string{pregEntryDate}, 0)
	if err != nil {
		return models.PregnancySymptom{}, err
	}
	severity, err := models.ParseSeverity(args[1])
	if err != nil {
		return models.PregnancySymptom{}, err
	}
	s := models.NewPregnancySymptom(date, strings.TrimSpace(args[0]), severity)
	if pregEntryNotes != "" {
		s = s.WithNotes(pregEntryNotes)
	}
	return s, nil
}

func parseBloodPressure(s string) (int, int, error) {
	sysText, diaText, ok := strings.Cut(s, "/")
	if !ok {
		return 0, 0, &models.InvalidValueError{Field: "blood pressure", Value: s}
	}
	sys, err1 := strconv.Atoi(strings.TrimSpace(sysText))
	dia, err2 := strconv.Atoi(strings.TrimSpace(diaText))
	if err1 != nil || err2 != nil || sys <= 0 || dia <= 0 {
		return 0, 0, &models.InvalidValueError{Field: "blood pressure", Value: s}
	}
	return sys, dia, nil
}

func measurementText(m models.Measurement, unit models.WeightUnit) string {
	var parts []string
	if m.Weight != nil {
		parts = append(parts, fmt.Sprintf("%.1f %s", *m.Weight, unit))
	}
	if m.BloodPressure != nil {
		parts = append(parts, fmt.Sprintf("%d/%d mmHg", m.BloodPressure.Systolic, m.BloodPressure.Diastolic))
	}
	return strings.Join(parts, ", ") + notesText(m.Notes)
}

func printAppointment(a models.Appointment) {
	check := "[ ]"
	if a.Completed {
		check = color.GreenString("[x]")
	}
	fmt.Printf("%s %s %s %s%s\n", faint(shortID(a.ID)), check, a.Date, a.Title, notesText(a.Notes))
}

func printPregnancySettings(s models.PregnancySettings) {
	fmt.Printf("  %s %s\n", padRight("weight unit", 22), s.WeightUnit)
	fmt.Printf("  %s %t\n", padRight("remind appointments", 22), s.Notifications.Appointments)
	fmt.Printf("  %s %t\n", padRight("remind weekly", 22), s.Notifications.WeeklyUpdates)
	fmt.Printf("  %s %t\n", padRight("remind measurements", 22), s.Notifications.Measurements)
}

func init() {
	pregnancyEndCmd.Flags().BoolVar(&pregEndPostpartum, "postpartum", false, "start postpartum recovery tracking")

	for _, c := range []*cobra.Command{pregnancySymptomCmd, pregnancyMeasureCmd} {
		c.Flags().StringVar(&pregEntryDate, "date", "", "date (YYYY-MM-DD, default today)")
	}
	for _, c := range []*cobra.Command{pregnancySymptomCmd, pregnancyMeasureCmd, appointmentAddCmd} {
		c.Flags().StringVar(&pregEntryNotes, "notes", "", "optional notes")
	}
	pregnancyMeasureCmd.Flags().Float64Var(&pregWeight, "weight", 0, "weight in the configured unit")
	pregnancyMeasureCmd.Flags().StringVar(&pregBP, "bp", "", "blood pressure as systolic/diastolic, e.g. 118/76")

	pregnancySettingsCmd.Flags().StringVar(&pregWeightUnit, "weight-unit", "", "kg or lbs")
	pregnancySettingsCmd.Flags().BoolVar(&pregRemindAppts, "remind-appointments", true, "remind about upcoming appointments")
	pregnancySettingsCmd.Flags().BoolVar(&pregRemindWeekly, "remind-weekly", true, "announce each new week")
	pregnancySettingsCmd.Flags().BoolVar(&pregRemindMeasure, "remind-measurements", true, "remind when no measurement this week")

	appointmentCmd.AddCommand(appointmentAddCmd)
	appointmentCmd.AddCommand(appointmentListCmd)
	appointmentCmd.AddCommand(appointmentDoneCmd)

	milestoneCmd.AddCommand(milestoneAddCmd)
	milestoneCmd.AddCommand(milestoneListCmd)
	milestoneCmd.AddCommand(milestoneDoneCmd)

	pregnancyCmd.AddCommand(pregnancyStartCmd)
	pregnancyCmd.AddCommand(pregnancyEndCmd)
	pregnancyCmd.AddCommand(pregnancyStatusCmd)
	pregnancyCmd.AddCommand(pregnancySymptomCmd)
	pregnancyCmd.AddCommand(pregnancyMeasureCmd)
	pregnancyCmd.AddCommand(appointmentCmd)
	pregnancyCmd.AddCommand(milestoneCmd)
	pregnancyCmd.AddCommand(pregnancySettingsCmd)
	rootCmd.AddCommand(pregnancyCmd)
}
