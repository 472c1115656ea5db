// ABOUTME: CLI command for logging daily cycle observations.
// ABOUTME: A bleeding day after a 5+ day gap starts a new cycle automatically.
package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/cycles/internal/models"
	"github.com/harperreed/cycles/internal/tracker"
	"github.com/spf13/cobra"
)

var (
	logBleeding string
	logSymptoms string
	logMood     string
	logTemp     float64
	logUnit     string
	logMucus    string
	logNotes    string
)

var logCmd = &cobra.Command{
	Use:     "log [date]",
	Aliases: []string{"l"},
	Short:   "Log observations for a day",
	Long: `Log what you observed on a day. The date defaults to today (YYYY-MM-DD).

Logging flow on a day no cycle covers, or 5+ days after the last flow of the
current cycle, starts a new cycle. Other observations are merged into the
cycle that covers the day; fields you leave out keep their stored value.

VOCABULARY:

  --bleeding   light, medium, heavy
  --symptoms   cramps, headache, bloating, fatigue, acne, cravings,
               breast_tenderness, back_pain, nausea, spotting, insomnia
  --mood       happy, sad, irritable, anxious, energetic, calm
  --mucus      dry, sticky, creamy, watery, egg-white

  Unknown symptoms and moods are kept as custom tags.

EXAMPLES:

  cycles log --bleeding heavy --symptoms cramps,back_pain
  cycles log 2024-01-03 --mood calm --temp 97.7
  cycles log --temp 36.5 --unit C --mucus egg-white
  cycles log --notes "skipped coffee"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := dateArg(args, 0)
		if err != nil {
			return err
		}

		in := tracker.ObservationInput{
			Bleeding:        logBleeding,
			TemperatureUnit: logUnit,
			CervicalMucus:   logMucus,
		}
		if cmd.Flags().Changed("symptoms") {
			in.Symptoms = splitList(logSymptoms)
			if in.Symptoms == nil {
				in.Symptoms = []string{}
			}
		}
		if cmd.Flags().Changed("mood") {
			in.Moods = splitList(logMood)
			if in.Moods == nil {
				in.Moods = []string{}
			}
		}
		if cmd.Flags().Changed("temp") {
			t := logTemp
			in.Temperature = &t
		}
		if cmd.Flags().Changed("notes") {
			n := logNotes
			in.Notes = &n
		}

		var result tracker.LogResult
		_, err = updateSnapshot(cmd.Context(), func(snap models.Snapshot) (models.Snapshot, error) {
			obs, err := in.Observation(snap.Settings.TemperatureUnit)
			if err != nil {
				return snap, err
			}
			if obs.IsEmpty() {
				return snap, fmt.Errorf("nothing to log: pass at least one of --bleeding, --symptoms, --mood, --temp, --mucus, --notes")
			}
			next, res, err := tracker.LogObservation(snap, date, obs)
			result = res
			return next, err
		})
		if err != nil {
			return err
		}

		switch result.Action {
		case tracker.LogStartedCycle:
			color.Green("✓ Started a new cycle on %s", date)
		case tracker.LogMovedCycleStart:
			color.Green("✓ Moved the cycle start back to %s", date)
		case tracker.LogUpdatedDay:
			color.Green("✓ Updated %s", date)
		default:
			color.Green("✓ Logged %s", date)
		}
		printDay(result.Day, result.CycleStart)
		return nil
	},
}

func printDay(d models.CycleDay, cycleStart models.Date) {
	var parts []string
	if d.Bleeding != nil {
		parts = append(parts, color.RedString("%s flow", *d.Bleeding))
	}
	if tags := dayTags(d); tags != "" {
		parts = append(parts, tags)
	}
	if d.Temperature != nil {
		parts = append(parts, fmt.Sprintf("%.1f°%s", models.RoundForDisplay(d.Temperature.Value), d.Temperature.Unit))
	}
	if d.CervicalMucus != nil {
		parts = append(parts, fmt.Sprintf("mucus: %s", *d.CervicalMucus))
	}
	fmt.Printf("  %s  %s%s\n", faint(fmt.Sprintf("day %d", d.Date.DaysSince(cycleStart)+1)), strings.Join(parts, ", "), notesText(d.Notes))
}

func dayTags(d models.CycleDay) string {
	var tags []string
	for _, s := range d.Symptoms {
		tags = append(tags, string(s))
	}
	tags = append(tags, d.CustomSymptoms...)
	for _, m := range d.Mood {
		tags = append(tags, string(m))
	}
	tags = append(tags, d.CustomMoods...)
	return strings.Join(tags, ", ")
}

func init() {
	logCmd.Flags().StringVarP(&logBleeding, "bleeding", "b", "", "flow: light, medium, heavy")
	logCmd.Flags().StringVarP(&logSymptoms, "symptoms", "s", "", "comma-separated symptoms")
	logCmd.Flags().StringVarP(&logMood, "mood", "m", "", "comma-separated moods")
	logCmd.Flags().Float64Var(&logTemp, "temp", 0, "basal body temperature")
	logCmd.Flags().StringVar(&logUnit, "unit", "", "temperature unit F or C (default from settings)")
	logCmd.Flags().StringVar(&logMucus, "mucus", "", "cervical mucus: dry, sticky, creamy, watery, egg-white")
	logCmd.Flags().StringVar(&logNotes, "notes", "", "free-text notes")
	rootCmd.AddCommand(logCmd)
}
