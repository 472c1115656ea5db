// ABOUTME: Per-user cycle settings and the derived Predictions value.
// ABOUTME: Defaults follow a 28-day cycle with a 5-day period in Fahrenheit.
package models

import "fmt"

const (
	DefaultCycleLength  = 28
	DefaultPeriodLength = 5
)

// NotificationSettings are reminder toggles. The engine never reads them;
// the reminder planner does.
type NotificationSettings struct {
	PeriodReminder    bool `json:"period_reminder" yaml:"period_reminder"`
	OvulationReminder bool `json:"ovulation_reminder" yaml:"ovulation_reminder"`
	SymptomReminder   bool `json:"symptom_reminder" yaml:"symptom_reminder"`
}

// CycleSettings configures predictions and display.
type CycleSettings struct {
	AverageCycleLength  int                  `json:"average_cycle_length" yaml:"average_cycle_length"`
	AveragePeriodLength int                  `json:"average_period_length" yaml:"average_period_length"`
	TemperatureUnit     TemperatureUnit      `json:"temperature_unit" yaml:"temperature_unit"`
	TrackTemperature    bool                 `json:"track_temperature" yaml:"track_temperature"`
	TrackCervicalMucus  bool                 `json:"track_cervical_mucus" yaml:"track_cervical_mucus"`
	Notifications       NotificationSettings `json:"notifications" yaml:"notifications"`
}

// DefaultCycleSettings returns the settings a new session starts with.
func DefaultCycleSettings() CycleSettings {
	return CycleSettings{
		AverageCycleLength:  DefaultCycleLength,
		AveragePeriodLength: DefaultPeriodLength,
		TemperatureUnit:     Fahrenheit,
		Notifications: NotificationSettings{
			PeriodReminder: true,
		},
	}
}

// Validate checks lengths and the temperature unit.
func (s CycleSettings) Validate() error {
	if s.AverageCycleLength <= 0 {
		return fmt.Errorf("average cycle length must be positive, got %d", s.AverageCycleLength)
	}
	if s.AveragePeriodLength <= 0 {
		return fmt.Errorf("average period length must be positive, got %d", s.AveragePeriodLength)
	}
	if !s.TemperatureUnit.IsValid() {
		return &InvalidUnitError{Unit: string(s.TemperatureUnit)}
	}
	return nil
}

// DateRange is an inclusive span of calendar dates.
type DateRange struct {
	Start Date `json:"start" yaml:"start"`
	End   Date `json:"end" yaml:"end"`
}

// Contains reports whether Start <= d <= End.
func (r DateRange) Contains(d Date) bool {
	return d.Between(r.Start, r.End)
}

// Predictions are derived from the cycle log and settings; never stored as
// a source of truth.
type Predictions struct {
	NextPeriod    Date      `json:"next_period" yaml:"next_period"`
	Ovulation     Date      `json:"ovulation" yaml:"ovulation"`
	FertileWindow DateRange `json:"fertile_window" yaml:"fertile_window"`
}
