// ABOUTME: Snapshot bundles the cycle log, pregnancy log, settings, and active mode.
// ABOUTME: It is the unit of persistence and the value every tracker operation returns.
package models

import (
	"fmt"
	"time"
)

// SnapshotVersion is the current snapshot schema version.
const SnapshotVersion = "1.0"

// Mode is the active tracking mode.
type Mode string

const (
	ModeCycle      Mode = "cycle"
	ModePregnancy  Mode = "pregnancy"
	ModePostpartum Mode = "postpartum"
)

// Snapshot is the whole tracking state of one local session.
type Snapshot struct {
	Version   string          `json:"version" yaml:"version"`
	Mode      Mode            `json:"mode" yaml:"mode"`
	Cycles    []Cycle         `json:"cycles" yaml:"cycles"`
	Settings  CycleSettings   `json:"settings" yaml:"settings"`
	Pregnancy PregnancyRecord `json:"pregnancy" yaml:"pregnancy"`
	UpdatedAt time.Time       `json:"updated_at" yaml:"updated_at"`
}

// NewSnapshot returns an empty session in cycle-tracking mode.
func NewSnapshot() Snapshot {
	return Snapshot{
		Version:   SnapshotVersion,
		Mode:      ModeCycle,
		Cycles:    []Cycle{},
		Settings:  DefaultCycleSettings(),
		Pregnancy: NewPregnancyRecord(),
	}
}

// Clone returns a deep copy so callers can derive a new snapshot without
// aliasing the old one.
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Cycles = make([]Cycle, len(s.Cycles))
	for i, c := range s.Cycles {
		out.Cycles[i] = c.Clone()
	}
	out.Pregnancy = s.Pregnancy.Clone()
	return out
}

// ActiveMode derives the mode from the pregnancy flags.
func (r PregnancyRecord) ActiveMode() Mode {
	switch {
	case r.IsPregnant:
		return ModePregnancy
	case r.IsPostpartum:
		return ModePostpartum
	default:
		return ModeCycle
	}
}

// CheckMode verifies that the mode flag and the pregnancy flags agree and
// that the pregnancy flags are mutually exclusive.
func (s Snapshot) CheckMode() error {
	if s.Pregnancy.IsPregnant && s.Pregnancy.IsPostpartum {
		return fmt.Errorf("%w: both pregnant and postpartum", ErrModeMismatch)
	}
	if s.Pregnancy.IsPregnant && s.Pregnancy.LastPeriodDate == nil {
		return fmt.Errorf("%w: pregnant without a last period date", ErrModeMismatch)
	}
	if want := s.Pregnancy.ActiveMode(); s.Mode != want {
		return fmt.Errorf("%w: mode %q, record says %q", ErrModeMismatch, s.Mode, want)
	}
	return nil
}

// Normalize fills fields a decoded snapshot may lack (older exports, empty
// stores) so callers can rely on non-nil slices and defaults.
func (s *Snapshot) Normalize() {
	if s.Version == "" {
		s.Version = SnapshotVersion
	}
	if s.Cycles == nil {
		s.Cycles = []Cycle{}
	}
	for i := range s.Cycles {
		if s.Cycles[i].Days == nil {
			s.Cycles[i].Days = []CycleDay{}
		}
	}
	if s.Settings.AverageCycleLength == 0 {
		s.Settings.AverageCycleLength = DefaultCycleLength
	}
	if s.Settings.AveragePeriodLength == 0 {
		s.Settings.AveragePeriodLength = DefaultPeriodLength
	}
	if s.Settings.TemperatureUnit == "" {
		s.Settings.TemperatureUnit = Fahrenheit
	}
	p := &s.Pregnancy
	if p.Symptoms == nil {
		p.Symptoms = []PregnancySymptom{}
	}
	if p.Measurements == nil {
		p.Measurements = []Measurement{}
	}
	if p.Appointments == nil {
		p.Appointments = []Appointment{}
	}
	if p.Milestones == nil {
		p.Milestones = []Milestone{}
	}
	if p.Postpartum.Symptoms == nil {
		p.Postpartum.Symptoms = []PregnancySymptom{}
	}
	if p.Postpartum.Notes == nil {
		p.Postpartum.Notes = []PostpartumNote{}
	}
	if p.Settings.WeightUnit == "" {
		p.Settings = DefaultPregnancySettings()
	}
	if s.Mode == "" {
		s.Mode = p.ActiveMode()
	}
}
