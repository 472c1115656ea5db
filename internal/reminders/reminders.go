// ABOUTME: Reminder rules for upcoming periods, fertile windows, and pregnancy check-ins.
// ABOUTME: Due is pure; it reads a snapshot and the notification toggles and returns what to announce today.
package reminders

import (
	"fmt"
	"sort"

	"github.com/harperreed/cycles/internal/models"
	"github.com/harperreed/cycles/internal/tracker"
)

// Kind identifies what a reminder is about.
type Kind string

const (
	KindPeriod       Kind = "period"
	KindFertile      Kind = "fertile"
	KindOvulation    Kind = "ovulation"
	KindLogSymptoms  Kind = "log_symptoms"
	KindWeeklyUpdate Kind = "weekly_update"
	KindAppointment  Kind = "appointment"
	KindMeasurement  Kind = "measurement"
)

// MeasurementInterval is how many days may pass without a pregnancy
// measurement before a reminder is raised.
const MeasurementInterval = 7

// Reminder is one message to surface to the user.
type Reminder struct {
	Kind     Kind        `json:"kind"`
	Date     models.Date `json:"date"`
	DaysAway int         `json:"days_away"`
	Message  string      `json:"message"`
}

// Key identifies a reminder for de-duplication across repeated checks.
func (r Reminder) Key() string {
	return fmt.Sprintf("%s:%s:%s", r.Kind, r.Date, r.Message)
}

// Due returns the reminders that apply on today, looking leadDays ahead for
// dated events. The active mode decides which rules run.
func Due(snap models.Snapshot, today models.Date, leadDays int) []Reminder {
	if leadDays < 0 {
		leadDays = 0
	}
	var out []Reminder
	switch snap.Mode {
	case models.ModePregnancy:
		out = pregnancyReminders(snap.Pregnancy, today, leadDays)
	case models.ModePostpartum:
		out = postpartumReminders(snap.Pregnancy, today)
	default:
		out = cycleReminders(snap, today, leadDays)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DaysAway < out[j].DaysAway
	})
	return out
}

func cycleReminders(snap models.Snapshot, today models.Date, leadDays int) []Reminder {
	preds, ok := tracker.CalculatePredictions(snap.Cycles, snap.Settings)
	if !ok {
		return nil
	}
	n := snap.Settings.Notifications
	var out []Reminder

	if n.PeriodReminder {
		if away, ok := within(today, preds.NextPeriod, leadDays); ok {
			out = append(out, Reminder{
				Kind:     KindPeriod,
				Date:     preds.NextPeriod,
				DaysAway: away,
				Message:  fmt.Sprintf("Period predicted %s (%s)", relative(away), preds.NextPeriod),
			})
		}
	}

	if n.OvulationReminder {
		start := preds.FertileWindow.Start
		if away, ok := within(today, start, leadDays); ok {
			out = append(out, Reminder{
				Kind:     KindFertile,
				Date:     start,
				DaysAway: away,
				Message: fmt.Sprintf("Fertile window starts %s (%s to %s)",
					relative(away), start, preds.FertileWindow.End),
			})
		}
		if away, ok := within(today, preds.Ovulation, leadDays); ok {
			out = append(out, Reminder{
				Kind:     KindOvulation,
				Date:     preds.Ovulation,
				DaysAway: away,
				Message:  fmt.Sprintf("Ovulation predicted %s (%s)", relative(away), preds.Ovulation),
			})
		}
	}

	if n.SymptomReminder {
		if _, covered := tracker.FindCycle(snap.Cycles, today); covered {
			if _, logged := tracker.FindDay(snap.Cycles, today); !logged {
				out = append(out, Reminder{
					Kind:    KindLogSymptoms,
					Date:    today,
					Message: "Nothing logged for today yet",
				})
			}
		}
	}
	return out
}

func pregnancyReminders(rec models.PregnancyRecord, today models.Date, leadDays int) []Reminder {
	n := rec.Settings.Notifications
	var out []Reminder

	if n.WeeklyUpdates && rec.LastPeriodDate != nil {
		days := today.DaysSince(*rec.LastPeriodDate)
		if days > 0 && days%7 == 0 {
			week, _ := tracker.WeekOfPregnancy(rec, today)
			trimester, _ := tracker.CurrentTrimester(rec, today)
			out = append(out, Reminder{
				Kind:    KindWeeklyUpdate,
				Date:    today,
				Message: fmt.Sprintf("Week %d of pregnancy (trimester %d)", week, trimester),
			})
		}
	}

	if n.Appointments {
		for _, a := range rec.Appointments {
			if a.Completed {
				continue
			}
			if away, ok := within(today, a.Date, leadDays); ok {
				out = append(out, Reminder{
					Kind:     KindAppointment,
					Date:     a.Date,
					DaysAway: away,
					Message:  fmt.Sprintf("%s %s", a.Title, relative(away)),
				})
			}
		}
	}

	if n.Measurements {
		var last *models.Date
		for i := range rec.Measurements {
			d := rec.Measurements[i].Date
			if last == nil || d.After(*last) {
				last = &d
			}
		}
		if last == nil || today.DaysSince(*last) >= MeasurementInterval {
			out = append(out, Reminder{
				Kind:    KindMeasurement,
				Date:    today,
				Message: "Time to record weight and blood pressure",
			})
		}
	}
	return out
}

func postpartumReminders(rec models.PregnancyRecord, today models.Date) []Reminder {
	if !rec.Settings.Notifications.WeeklyUpdates || rec.BirthDate == nil {
		return nil
	}
	days := today.DaysSince(*rec.BirthDate)
	if days <= 0 || days%7 != 0 {
		return nil
	}
	weeks, _ := tracker.WeeksPostpartum(rec, today)
	return []Reminder{{
		Kind:    KindWeeklyUpdate,
		Date:    today,
		Message: fmt.Sprintf("Week %d of postpartum recovery", weeks),
	}}
}

// within reports how many days ahead target is, and whether that falls in
// [0, leadDays].
func within(today, target models.Date, leadDays int) (int, bool) {
	away := target.DaysSince(today)
	return away, away >= 0 && away <= leadDays
}

func relative(days int) string {
	switch days {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("in %d days", days)
	}
}
