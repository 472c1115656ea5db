// ABOUTME: Pregnancy log operations and week/trimester math anchored on the last period.
// ABOUTME: "Today" is always passed in so results are reproducible in tests.
package tracker

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/cycles/internal/models"
)

const (
	// PregnancyDays is the span from last period to due date (40 weeks).
	PregnancyDays = 40 * 7

	firstTrimesterLastWeek  = 13
	secondTrimesterLastWeek = 26
)

// WeeksElapsed returns floor(days between from and today / 7). It is the
// single weeks primitive used by trimester, week-of-pregnancy, and
// postpartum calculations.
func WeeksElapsed(from, today models.Date) int {
	days := today.DaysSince(from)
	weeks := days / 7
	if days%7 != 0 && days < 0 {
		weeks--
	}
	return weeks
}

// StartPregnancy begins a new pregnancy episode. Symptoms, measurements, and
// appointments from any earlier episode in the record are discarded.
func StartPregnancy(rec models.PregnancyRecord, lastPeriod models.Date) models.PregnancyRecord {
	out := rec.Clone()
	due := lastPeriod.AddDays(PregnancyDays)
	out.IsPregnant = true
	out.IsPostpartum = false
	out.LastPeriodDate = &lastPeriod
	out.DueDate = &due
	out.Symptoms = []models.PregnancySymptom{}
	out.Measurements = []models.Measurement{}
	out.Appointments = []models.Appointment{}
	return out
}

// EndPregnancy records the birth and starts postpartum recovery tracking.
// Symptoms and measurements are kept.
func EndPregnancy(rec models.PregnancyRecord, birth models.Date) models.PregnancyRecord {
	out := rec.Clone()
	out.IsPregnant = false
	out.BirthDate = &birth
	out.Postpartum.RecoveryStart = &birth
	return out
}

// StartPostpartum switches the record into postpartum mode with a fresh
// recovery log.
func StartPostpartum(rec models.PregnancyRecord, birth models.Date) models.PregnancyRecord {
	out := rec.Clone()
	out.IsPregnant = false
	out.IsPostpartum = true
	out.BirthDate = &birth
	out.Postpartum = models.Postpartum{
		RecoveryStart: &birth,
		Symptoms:      []models.PregnancySymptom{},
		Notes:         []models.PostpartumNote{},
	}
	return out
}

// CurrentTrimester returns 1, 2, or 3, or false when no last period is set.
func CurrentTrimester(rec models.PregnancyRecord, today models.Date) (int, bool) {
	weeks, ok := WeekOfPregnancy(rec, today)
	if !ok {
		return 0, false
	}
	switch {
	case weeks <= firstTrimesterLastWeek:
		return 1, true
	case weeks <= secondTrimesterLastWeek:
		return 2, true
	default:
		return 3, true
	}
}

// WeekOfPregnancy returns whole weeks since the last period.
func WeekOfPregnancy(rec models.PregnancyRecord, today models.Date) (int, bool) {
	if rec.LastPeriodDate == nil {
		return 0, false
	}
	return WeeksElapsed(*rec.LastPeriodDate, today), true
}

// DaysUntilDue returns days remaining to the due date (negative once past).
func DaysUntilDue(rec models.PregnancyRecord, today models.Date) (int, bool) {
	if rec.DueDate == nil {
		return 0, false
	}
	return rec.DueDate.DaysSince(today), true
}

// WeeksPostpartum returns whole weeks since birth.
func WeeksPostpartum(rec models.PregnancyRecord, today models.Date) (int, bool) {
	if rec.BirthDate == nil {
		return 0, false
	}
	return WeeksElapsed(*rec.BirthDate, today), true
}

// AddSymptom appends a pregnancy symptom.
func AddSymptom(rec models.PregnancyRecord, s models.PregnancySymptom) models.PregnancyRecord {
	out := rec.Clone()
	out.Symptoms = append(out.Symptoms, ensureSymptomID(s))
	return out
}

// AddMeasurement appends a measurement.
func AddMeasurement(rec models.PregnancyRecord, m models.Measurement) models.PregnancyRecord {
	out := rec.Clone()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	out.Measurements = append(out.Measurements, m)
	return out
}

// AddAppointment appends an appointment. New appointments are never
// completed, whatever the caller passed.
func AddAppointment(rec models.PregnancyRecord, a models.Appointment) models.PregnancyRecord {
	out := rec.Clone()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	a.Completed = false
	out.Appointments = append(out.Appointments, a)
	return out
}

// AddMilestone appends a milestone.
func AddMilestone(rec models.PregnancyRecord, m models.Milestone) models.PregnancyRecord {
	out := rec.Clone()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	out.Milestones = append(out.Milestones, m)
	return out
}

// AddPostpartumSymptom appends a recovery symptom.
func AddPostpartumSymptom(rec models.PregnancyRecord, s models.PregnancySymptom) models.PregnancyRecord {
	out := rec.Clone()
	out.Postpartum.Symptoms = append(out.Postpartum.Symptoms, ensureSymptomID(s))
	return out
}

// AddPostpartumNote appends a recovery journal note.
func AddPostpartumNote(rec models.PregnancyRecord, n models.PostpartumNote) models.PregnancyRecord {
	out := rec.Clone()
	out.Postpartum.Notes = append(out.Postpartum.Notes, n)
	return out
}

// RecordFirstPeriodReturn notes when menstruation resumed after birth.
func RecordFirstPeriodReturn(rec models.PregnancyRecord, date models.Date) models.PregnancyRecord {
	out := rec.Clone()
	out.Postpartum.FirstPeriodReturn = &date
	return out
}

// CompleteAppointment marks the appointment matching idPrefix as completed.
func CompleteAppointment(rec models.PregnancyRecord, idPrefix string) (models.PregnancyRecord, models.Appointment, error) {
	ids := make([]uuid.UUID, len(rec.Appointments))
	for i, a := range rec.Appointments {
		ids[i] = a.ID
	}
	idx, err := resolvePrefix(ids, idPrefix)
	if err != nil {
		return rec, models.Appointment{}, fmt.Errorf("complete appointment: %w", err)
	}
	out := rec.Clone()
	out.Appointments[idx].Completed = true
	return out, out.Appointments[idx], nil
}

// CompleteMilestone marks the milestone matching idPrefix as completed.
func CompleteMilestone(rec models.PregnancyRecord, idPrefix string) (models.PregnancyRecord, models.Milestone, error) {
	ids := make([]uuid.UUID, len(rec.Milestones))
	for i, m := range rec.Milestones {
		ids[i] = m.ID
	}
	idx, err := resolvePrefix(ids, idPrefix)
	if err != nil {
		return rec, models.Milestone{}, fmt.Errorf("complete milestone: %w", err)
	}
	out := rec.Clone()
	out.Milestones[idx].Completed = true
	return out, out.Milestones[idx], nil
}

// resolvePrefix finds the single ID starting with prefix.
func resolvePrefix(ids []uuid.UUID, prefix string) (int, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return -1, fmt.Errorf("%w: empty id", models.ErrNotFound)
	}
	match := -1
	for i, id := range ids {
		if strings.HasPrefix(id.String(), prefix) {
			if match >= 0 {
				return -1, fmt.Errorf("%w: %s", models.ErrAmbiguousPrefix, prefix)
			}
			match = i
		}
	}
	if match < 0 {
		return -1, fmt.Errorf("%w: %s", models.ErrNotFound, prefix)
	}
	return match, nil
}

func ensureSymptomID(s models.PregnancySymptom) models.PregnancySymptom {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return s
}
