// ABOUTME: Cycle and CycleDay models for menstrual cycle tracking.
// ABOUTME: Observation is the partial form of a CycleDay used for merges.
package models

import "sort"

// CycleDay holds one calendar date's observations.
type CycleDay struct {
	Date           Date           `json:"date" yaml:"date"`
	Bleeding       *Bleeding      `json:"bleeding,omitempty" yaml:"bleeding,omitempty"`
	Symptoms       []Symptom      `json:"symptoms,omitempty" yaml:"symptoms,omitempty"`
	CustomSymptoms []string       `json:"custom_symptoms,omitempty" yaml:"custom_symptoms,omitempty"`
	Mood           []Mood         `json:"mood,omitempty" yaml:"mood,omitempty"`
	CustomMoods    []string       `json:"custom_moods,omitempty" yaml:"custom_moods,omitempty"`
	Temperature    *Temperature   `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	Notes          *string        `json:"notes,omitempty" yaml:"notes,omitempty"`
	CervicalMucus  *CervicalMucus `json:"cervical_mucus,omitempty" yaml:"cervical_mucus,omitempty"`
}

// HasBleeding reports whether any flow was logged.
func (d CycleDay) HasBleeding() bool {
	return d.Bleeding != nil && *d.Bleeding != ""
}

// Clone returns a deep copy of the day.
func (d CycleDay) Clone() CycleDay {
	out := d
	out.Symptoms = cloneSlice(d.Symptoms)
	out.CustomSymptoms = cloneSlice(d.CustomSymptoms)
	out.Mood = cloneSlice(d.Mood)
	out.CustomMoods = cloneSlice(d.CustomMoods)
	out.Bleeding = clonePtr(d.Bleeding)
	out.Temperature = clonePtr(d.Temperature)
	out.Notes = clonePtr(d.Notes)
	out.CervicalMucus = clonePtr(d.CervicalMucus)
	return out
}

// Observation is a partial CycleDay. Nil fields are absent and leave the
// stored value untouched on merge; a non-nil empty slice clears a set.
type Observation struct {
	Bleeding       *Bleeding      `json:"bleeding,omitempty"`
	Symptoms       []Symptom      `json:"symptoms,omitempty"`
	CustomSymptoms []string       `json:"custom_symptoms,omitempty"`
	Mood           []Mood         `json:"mood,omitempty"`
	CustomMoods    []string       `json:"custom_moods,omitempty"`
	Temperature    *Temperature   `json:"temperature,omitempty"`
	Notes          *string        `json:"notes,omitempty"`
	CervicalMucus  *CervicalMucus `json:"cervical_mucus,omitempty"`
}

// IsEmpty reports whether the observation carries no fields.
func (o Observation) IsEmpty() bool {
	return o.Bleeding == nil && o.Symptoms == nil && o.CustomSymptoms == nil &&
		o.Mood == nil && o.CustomMoods == nil && o.Temperature == nil &&
		o.Notes == nil && o.CervicalMucus == nil
}

// WithBleeding sets the bleeding field.
func (o Observation) WithBleeding(b Bleeding) Observation {
	o.Bleeding = &b
	return o
}

// WithNotes sets the notes field.
func (o Observation) WithNotes(notes string) Observation {
	o.Notes = &notes
	return o
}

// WithSymptoms sets the symptom set.
func (o Observation) WithSymptoms(symptoms ...Symptom) Observation {
	o.Symptoms = NormalizeSymptoms(append([]Symptom{}, symptoms...))
	return o
}

// WithMood sets the mood set.
func (o Observation) WithMood(moods ...Mood) Observation {
	o.Mood = NormalizeMoods(append([]Mood{}, moods...))
	return o
}

// WithTemperature sets the temperature reading.
func (o Observation) WithTemperature(value float64, unit TemperatureUnit) Observation {
	o.Temperature = &Temperature{Value: value, Unit: unit}
	return o
}

// WithCervicalMucus sets the cervical mucus field.
func (o Observation) WithCervicalMucus(c CervicalMucus) Observation {
	o.CervicalMucus = &c
	return o
}

// MergeInto applies the present fields of o onto day. Sets are normalized
// so repeated merges of the same observation are no-ops.
func (o Observation) MergeInto(day CycleDay) CycleDay {
	out := day.Clone()
	if o.Bleeding != nil {
		out.Bleeding = clonePtr(o.Bleeding)
	}
	if o.Symptoms != nil {
		out.Symptoms = NormalizeSymptoms(cloneSlice(o.Symptoms))
	}
	if o.CustomSymptoms != nil {
		out.CustomSymptoms = NormalizeStrings(cloneSlice(o.CustomSymptoms))
	}
	if o.Mood != nil {
		out.Mood = NormalizeMoods(cloneSlice(o.Mood))
	}
	if o.CustomMoods != nil {
		out.CustomMoods = NormalizeStrings(cloneSlice(o.CustomMoods))
	}
	if o.Temperature != nil {
		out.Temperature = clonePtr(o.Temperature)
	}
	if o.Notes != nil {
		out.Notes = clonePtr(o.Notes)
	}
	if o.CervicalMucus != nil {
		out.CervicalMucus = clonePtr(o.CervicalMucus)
	}
	return out
}

// Cycle is one menstrual cycle: a start date, an optional end date, and the
// days observed inside that range in date order.
type Cycle struct {
	StartDate Date       `json:"start_date" yaml:"start_date"`
	EndDate   *Date      `json:"end_date,omitempty" yaml:"end_date,omitempty"`
	Days      []CycleDay `json:"days" yaml:"days"`
}

// NewCycle creates an open cycle starting on start.
func NewCycle(start Date) Cycle {
	return Cycle{StartDate: start, Days: []CycleDay{}}
}

// WithEndDate closes the cycle on end.
func (c Cycle) WithEndDate(end Date) Cycle {
	c.EndDate = &end
	return c
}

// WithDay adds or replaces a day, keeping date order.
func (c Cycle) WithDay(day CycleDay) Cycle {
	c.Days = cloneDays(c.Days)
	for i := range c.Days {
		if c.Days[i].Date.Equal(day.Date) {
			c.Days[i] = day
			return c
		}
	}
	c.Days = append(c.Days, day)
	c.SortDays()
	return c
}

// IsOpen reports whether the cycle has no end date yet.
func (c Cycle) IsOpen() bool {
	return c.EndDate == nil
}

// Contains reports whether date falls in [StartDate, EndDate], with an open
// cycle extending forever.
func (c Cycle) Contains(date Date) bool {
	if date.Before(c.StartDate) {
		return false
	}
	return c.EndDate == nil || !date.After(*c.EndDate)
}

// Length returns the cycle length in days for a closed cycle.
func (c Cycle) Length() (int, bool) {
	if c.EndDate == nil {
		return 0, false
	}
	return c.EndDate.DaysSince(c.StartDate) + 1, true
}

// PeriodLength counts consecutive bleeding days from the start date.
func (c Cycle) PeriodLength() int {
	n := 0
	for d := c.StartDate; ; d = d.AddDays(1) {
		day, ok := c.Day(d)
		if !ok || !day.HasBleeding() {
			return n
		}
		n++
	}
}

// Day returns the observations for date, if logged.
func (c Cycle) Day(date Date) (CycleDay, bool) {
	for _, d := range c.Days {
		if d.Date.Equal(date) {
			return d, true
		}
	}
	return CycleDay{}, false
}

// LastBleedingBefore returns the latest bleeding day strictly before date.
func (c Cycle) LastBleedingBefore(date Date) (Date, bool) {
	var last Date
	found := false
	for _, d := range c.Days {
		if d.Date.Before(date) && d.HasBleeding() {
			last = d.Date
			found = true
		}
	}
	return last, found
}

// SortDays orders Days by date.
func (c *Cycle) SortDays() {
	sort.SliceStable(c.Days, func(i, j int) bool {
		return c.Days[i].Date.Before(c.Days[j].Date)
	})
}

// Clone returns a deep copy of the cycle.
func (c Cycle) Clone() Cycle {
	out := c
	out.EndDate = clonePtr(c.EndDate)
	out.Days = cloneDays(c.Days)
	return out
}

func cloneDays(days []CycleDay) []CycleDay {
	if days == nil {
		return nil
	}
	out := make([]CycleDay, len(days))
	for i, d := range days {
		out[i] = d.Clone()
	}
	return out
}

func cloneSlice[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
