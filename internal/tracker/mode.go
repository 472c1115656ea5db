// ABOUTME: Mode transition controller for cycle, pregnancy, and postpartum tracking.
// ABOUTME: Each transition returns a fresh snapshot with mode and record flags flipped together.
package tracker

import (
	"fmt"

	"github.com/harperreed/cycles/internal/models"
)

// EnterPregnancy switches to pregnancy tracking anchored on lastPeriod.
// The cycle log is left untouched so history survives a later return.
func EnterPregnancy(snap models.Snapshot, lastPeriod models.Date) (models.Snapshot, error) {
	if snap.Mode == models.ModePregnancy {
		return snap, fmt.Errorf("enter pregnancy: %w", models.ErrAlreadyPregnant)
	}
	if lastPeriod.IsZero() {
		return snap, fmt.Errorf("enter pregnancy: %w", &models.InvalidDateError{Input: ""})
	}
	out := snap.Clone()
	out.Pregnancy = StartPregnancy(out.Pregnancy, lastPeriod)
	out.Mode = models.ModePregnancy
	return out, nil
}

// ExitPregnancy records the birth and returns to cycle tracking. The first
// cycle after birth is logged through the ordinary cycle log once observed.
func ExitPregnancy(snap models.Snapshot, birth models.Date) (models.Snapshot, error) {
	if snap.Mode != models.ModePregnancy {
		return snap, fmt.Errorf("exit pregnancy: %w", models.ErrNotPregnant)
	}
	if err := checkBirth(snap.Pregnancy, birth); err != nil {
		return snap, fmt.Errorf("exit pregnancy: %w", err)
	}
	out := snap.Clone()
	out.Pregnancy = EndPregnancy(out.Pregnancy, birth)
	out.Mode = models.ModeCycle
	return out, nil
}

// EnterPostpartum switches to postpartum tracking. From pregnancy mode it
// ends the pregnancy first so symptom and measurement history is kept.
func EnterPostpartum(snap models.Snapshot, birth models.Date) (models.Snapshot, error) {
	if snap.Mode == models.ModePostpartum {
		return snap, fmt.Errorf("enter postpartum: already active")
	}
	if err := checkBirth(snap.Pregnancy, birth); err != nil {
		return snap, fmt.Errorf("enter postpartum: %w", err)
	}
	out := snap.Clone()
	if out.Mode == models.ModePregnancy {
		out.Pregnancy = EndPregnancy(out.Pregnancy, birth)
	}
	out.Pregnancy = StartPostpartum(out.Pregnancy, birth)
	out.Mode = models.ModePostpartum
	return out, nil
}

// ExitPostpartum returns to cycle tracking, keeping the recovery log.
func ExitPostpartum(snap models.Snapshot) (models.Snapshot, error) {
	if snap.Mode != models.ModePostpartum {
		return snap, fmt.Errorf("exit postpartum: %w", models.ErrNotPostpartum)
	}
	out := snap.Clone()
	out.Pregnancy.IsPostpartum = false
	out.Mode = models.ModeCycle
	return out, nil
}

func checkBirth(rec models.PregnancyRecord, birth models.Date) error {
	if birth.IsZero() {
		return &models.InvalidDateError{Input: ""}
	}
	if rec.IsPregnant && rec.LastPeriodDate != nil && birth.Before(*rec.LastPeriodDate) {
		return models.ErrBirthBeforeConception
	}
	return nil
}
