// ABOUTME: CLI command for showing due reminders, once or on a cron schedule.
// ABOUTME: --watch keeps running and re-checks on the configured schedule.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/harperreed/cycles/internal/reminders"
	"github.com/spf13/cobra"
)

var (
	remindWatch    bool
	remindLead     int
	remindSchedule string
	remindNext     int
)

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Show reminders due today",
	Long: `Show reminders for the upcoming period, fertile window, and ovulation in
cycle mode, or appointments, weekly updates, and measurements in pregnancy
mode. Which reminders run is controlled by 'cycles settings' and
'cycles pregnancy settings'.

With --watch the command stays running and checks again on a cron schedule
("reminder_schedule" in config, default every day at 08:00). Each reminder
is printed once per run.

Examples:
  cycles remind
  cycles remind --lead 5
  cycles remind --watch --schedule "0 7,19 * * *"
  cycles remind --next 3           # show the next 3 scheduled checks`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		lead := cfg.GetReminderLeadDays()
		if cmd.Flags().Changed("lead") {
			lead = remindLead
		}
		spec := cfg.GetReminderSchedule()
		if remindSchedule != "" {
			spec = remindSchedule
		}

		if remindNext > 0 {
			runs, err := reminders.NextRuns(spec, now(), remindNext)
			if err != nil {
				return err
			}
			fmt.Printf("Schedule %q, next checks:\n", spec)
			for _, r := range runs {
				fmt.Printf("  %s\n", r.Format("Mon 2006-01-02 15:04"))
			}
			return nil
		}

		if !remindWatch {
			snap, err := loadSnapshot(cmd.Context())
			if err != nil {
				return err
			}
			due := reminders.Due(*snap, today(), lead)
			if len(due) == 0 {
				fmt.Println("No reminders due.")
				return nil
			}
			for _, r := range due {
				printReminder(r)
			}
			return nil
		}

		scheduler, err := reminders.NewScheduler(spec, lead, loadSnapshot, printReminder)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		fmt.Printf("Watching reminders on %q (Ctrl-C to stop)\n", spec)
		return scheduler.Run(ctx)
	},
}

func printReminder(r reminders.Reminder) {
	stamp := faint(now().Format("15:04"))
	var c *color.Color
	switch r.Kind {
	case reminders.KindPeriod:
		c = color.New(color.FgRed)
	case reminders.KindFertile, reminders.KindOvulation:
		c = color.New(color.FgCyan)
	case reminders.KindAppointment:
		c = color.New(color.FgYellow)
	default:
		c = color.New(color.FgGreen)
	}
	fmt.Printf("%s %s %s\n", stamp, c.Sprint("●"), r.Message)
}

func init() {
	remindCmd.Flags().BoolVarP(&remindWatch, "watch", "w", false, "keep running and check on the schedule")
	remindCmd.Flags().IntVar(&remindLead, "lead", 0, "days ahead to look (default from config, 2)")
	remindCmd.Flags().StringVar(&remindSchedule, "schedule", "", "cron schedule for --watch (default from config)")
	remindCmd.Flags().IntVar(&remindNext, "next", 0, "print the next N scheduled check times and exit")
	rootCmd.AddCommand(remindCmd)
}
