// ABOUTME: CLI commands for postpartum recovery tracking.
// ABOUTME: Supports start, status, symptom, note, period-returned, and end.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/cycles/internal/models"
	"github.com/harperreed/cycles/internal/tracker"
	"github.com/spf13/cobra"
)

var postpartumCmd = &cobra.Command{
	Use:     "postpartum",
	Aliases: []string{"pp"},
	Short:   "Track postpartum recovery",
	Long: `Track recovery after birth: symptoms, journal notes, and when periods return.

Enter postpartum mode with 'cycles pregnancy end <birth-date> --postpartum'
or directly with 'cycles postpartum start <birth-date>'. 'postpartum end'
returns to cycle tracking and keeps the recovery log.`,
}

var postpartumStartCmd = &cobra.Command{
	Use:   "start <birth-date>",
	Short: "Start postpartum tracking",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		birth, err := models.ParseDate(args[0])
		if err != nil {
			return err
		}
		if _, err := updateSnapshot(cmd.Context(), func(snap models.Snapshot) (models.Snapshot, error) {
			return tracker.EnterPostpartum(snap, birth)
		}); err != nil {
			return fmt.Errorf("failed to start postpartum tracking: %w", err)
		}
		color.Green("✓ Postpartum tracking started (birth %s)", birth)
		return nil
	},
}

var postpartumStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recovery progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := loadSnapshot(cmd.Context())
		if err != nil {
			return err
		}
		if snap.Mode != models.ModePostpartum {
			fmt.Println("Not tracking postpartum recovery.")
			return nil
		}

		rec := snap.Pregnancy
		weeks, _ := tracker.WeeksPostpartum(rec, today())
		color.New(color.Bold).Printf("Week %d postpartum\n", weeks)
		fmt.Printf("  Birth %s\n", rec.BirthDate)
		if rec.Postpartum.FirstPeriodReturn != nil {
			fmt.Printf("  First period returned %s\n", rec.Postpartum.FirstPeriodReturn)
		}

		if n := len(rec.Postpartum.Symptoms); n > 0 {
			fmt.Println()
			fmt.Println("Recent symptoms:")
			for _, s := range rec.Postpartum.Symptoms[max(0, n-5):] {
				fmt.Printf("  %s %s (%s)%s\n", s.Date, s.Type, s.Severity, notesText(s.Notes))
			}
		}
		if n := len(rec.Postpartum.Notes); n > 0 {
			fmt.Println()
			fmt.Println("Recent notes:")
			for _, note := range rec.Postpartum.Notes[max(0, n-5):] {
				fmt.Printf("  %s %s\n", note.Date, truncate(note.Content, 60))
			}
		}
		return nil
	},
}

var postpartumSymptomCmd = &cobra.Command{
	Use:   "symptom <type> <severity>",
	Short: "Log a recovery symptom",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := symptomFromArgs(args)
		if err != nil {
			return err
		}
		err = updateRecord(cmd.Context(), models.ModePostpartum, func(rec models.PregnancyRecord) (models.PregnancyRecord, error) {
			return tracker.AddPostpartumSymptom(rec, s), nil
		})
		if err != nil {
			return fmt.Errorf("failed to add symptom: %w", err)
		}
		color.Green("✓ Logged %s (%s)", s.Type, s.Severity)
		return nil
	},
}

var postpartumNoteCmd = &cobra.Command{
	Use:   "note <text>",
	Short: "Add a journal note",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := dateArg([]string{pregEntryDate}, 0)
		if err != nil {
			return err
		}
		note := models.PostpartumNote{Date: date, Content: strings.Join(args, " ")}
		err = updateRecord(cmd.Context(), models.ModePostpartum, func(rec models.PregnancyRecord) (models.PregnancyRecord, error) {
			return tracker.AddPostpartumNote(rec, note), nil
		})
		if err != nil {
			return fmt.Errorf("failed to add note: %w", err)
		}
		color.Green("✓ Added note for %s", date)
		return nil
	},
}

var postpartumPeriodCmd = &cobra.Command{
	Use:   "period-returned [date]",
	Short: "Record the first period after birth",
	Long: `Record when menstruation resumed. This does not log a cycle; use
'cycles log --bleeding' for that, which also works from postpartum mode.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := dateArg(args, 0)
		if err != nil {
			return err
		}
		err = updateRecord(cmd.Context(), models.ModePostpartum, func(rec models.PregnancyRecord) (models.PregnancyRecord, error) {
			return tracker.RecordFirstPeriodReturn(rec, date), nil
		})
		if err != nil {
			return err
		}
		color.Green("✓ First period return recorded on %s", date)
		return nil
	},
}

var postpartumEndCmd = &cobra.Command{
	Use:   "end",
	Short: "Return to cycle tracking",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := updateSnapshot(cmd.Context(), tracker.ExitPostpartum); err != nil {
			return err
		}
		color.Green("✓ Back to cycle tracking")
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{postpartumSymptomCmd, postpartumNoteCmd} {
		c.Flags().StringVar(&pregEntryDate, "date", "", "date (YYYY-MM-DD, default today)")
	}
	postpartumSymptomCmd.Flags().StringVar(&pregEntryNotes, "notes", "", "optional notes")

	postpartumCmd.AddCommand(postpartumStartCmd)
	postpartumCmd.AddCommand(postpartumStatusCmd)
	postpartumCmd.AddCommand(postpartumSymptomCmd)
	postpartumCmd.AddCommand(postpartumNoteCmd)
	postpartumCmd.AddCommand(postpartumPeriodCmd)
	postpartumCmd.AddCommand(postpartumEndCmd)
	rootCmd.AddCommand(postpartumCmd)
}
