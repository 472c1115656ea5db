// ABOUTME: Pregnancy and postpartum record with symptoms, measurements, appointments.
// ABOUTME: Entries carry UUIDs so they can be addressed by prefix from the CLI.
package models

import (
	"github.com/google/uuid"
)

// PregnancySymptom is a graded symptom logged during pregnancy or postpartum.
type PregnancySymptom struct {
	ID       uuid.UUID `json:"id" yaml:"id"`
	Date     Date      `json:"date" yaml:"date"`
	Type     string    `json:"type" yaml:"type"`
	Severity Severity  `json:"severity" yaml:"severity"`
	Notes    *string   `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// NewPregnancySymptom creates a symptom entry with a generated ID.
func NewPregnancySymptom(date Date, symptomType string, severity Severity) PregnancySymptom {
	return PregnancySymptom{
		ID:       uuid.New(),
		Date:     date,
		Type:     symptomType,
		Severity: severity,
	}
}

// WithNotes sets notes on the symptom.
func (s PregnancySymptom) WithNotes(notes string) PregnancySymptom {
	s.Notes = &notes
	return s
}

// BloodPressure is a systolic/diastolic pair in mmHg.
type BloodPressure struct {
	Systolic  int `json:"systolic" yaml:"systolic"`
	Diastolic int `json:"diastolic" yaml:"diastolic"`
}

// Measurement is a weight and/or blood pressure reading.
type Measurement struct {
	ID            uuid.UUID      `json:"id" yaml:"id"`
	Date          Date           `json:"date" yaml:"date"`
	Weight        *float64       `json:"weight,omitempty" yaml:"weight,omitempty"`
	BloodPressure *BloodPressure `json:"blood_pressure,omitempty" yaml:"blood_pressure,omitempty"`
	Notes         *string        `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// NewMeasurement creates an empty measurement for date.
func NewMeasurement(date Date) Measurement {
	return Measurement{ID: uuid.New(), Date: date}
}

// WithWeight sets the weight.
func (m Measurement) WithWeight(w float64) Measurement {
	m.Weight = &w
	return m
}

// WithBloodPressure sets the blood pressure.
func (m Measurement) WithBloodPressure(systolic, diastolic int) Measurement {
	m.BloodPressure = &BloodPressure{Systolic: systolic, Diastolic: diastolic}
	return m
}

// WithNotes sets notes on the measurement.
func (m Measurement) WithNotes(notes string) Measurement {
	m.Notes = &notes
	return m
}

// Appointment is a scheduled prenatal visit.
type Appointment struct {
	ID        uuid.UUID `json:"id" yaml:"id"`
	Date      Date      `json:"date" yaml:"date"`
	Title     string    `json:"title" yaml:"title"`
	Notes     *string   `json:"notes,omitempty" yaml:"notes,omitempty"`
	Completed bool      `json:"completed" yaml:"completed"`
}

// NewAppointment creates an uncompleted appointment.
func NewAppointment(date Date, title string) Appointment {
	return Appointment{ID: uuid.New(), Date: date, Title: title}
}

// WithNotes sets notes on the appointment.
func (a Appointment) WithNotes(notes string) Appointment {
	a.Notes = &notes
	return a
}

// Milestone is a user-defined pregnancy milestone.
type Milestone struct {
	ID          uuid.UUID `json:"id" yaml:"id"`
	Date        Date      `json:"date" yaml:"date"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description" yaml:"description"`
	Completed   bool      `json:"completed" yaml:"completed"`
}

// NewMilestone creates an uncompleted milestone.
func NewMilestone(date Date, title, description string) Milestone {
	return Milestone{ID: uuid.New(), Date: date, Title: title, Description: description}
}

// PostpartumNote is a dated free-text journal entry.
type PostpartumNote struct {
	Date    Date   `json:"date" yaml:"date"`
	Content string `json:"content" yaml:"content"`
}

// Postpartum tracks recovery after birth.
type Postpartum struct {
	RecoveryStart     *Date              `json:"recovery_start,omitempty" yaml:"recovery_start,omitempty"`
	FirstPeriodReturn *Date              `json:"first_period_return,omitempty" yaml:"first_period_return,omitempty"`
	Symptoms          []PregnancySymptom `json:"symptoms" yaml:"symptoms"`
	Notes             []PostpartumNote   `json:"notes" yaml:"notes"`
}

// WeightUnit is the display unit for pregnancy weight.
type WeightUnit string

const (
	WeightKg  WeightUnit = "kg"
	WeightLbs WeightUnit = "lbs"
)

// PregnancyNotifications are reminder toggles for pregnancy mode.
type PregnancyNotifications struct {
	Appointments  bool `json:"appointments" yaml:"appointments"`
	WeeklyUpdates bool `json:"weekly_updates" yaml:"weekly_updates"`
	Measurements  bool `json:"measurements" yaml:"measurements"`
}

// PregnancySettings configures the pregnancy log display and reminders.
type PregnancySettings struct {
	WeightUnit    WeightUnit             `json:"weight_unit" yaml:"weight_unit"`
	Notifications PregnancyNotifications `json:"notifications" yaml:"notifications"`
}

// DefaultPregnancySettings returns kg with every reminder on.
func DefaultPregnancySettings() PregnancySettings {
	return PregnancySettings{
		WeightUnit: WeightKg,
		Notifications: PregnancyNotifications{
			Appointments:  true,
			WeeklyUpdates: true,
			Measurements:  true,
		},
	}
}

// PregnancyRecord is the pregnancy/postpartum episode for the session.
// IsPregnant and IsPostpartum are never both true.
type PregnancyRecord struct {
	IsPregnant     bool               `json:"is_pregnant" yaml:"is_pregnant"`
	IsPostpartum   bool               `json:"is_postpartum" yaml:"is_postpartum"`
	LastPeriodDate *Date              `json:"last_period_date,omitempty" yaml:"last_period_date,omitempty"`
	DueDate        *Date              `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	BirthDate      *Date              `json:"birth_date,omitempty" yaml:"birth_date,omitempty"`
	Symptoms       []PregnancySymptom `json:"symptoms" yaml:"symptoms"`
	Measurements   []Measurement      `json:"measurements" yaml:"measurements"`
	Appointments   []Appointment      `json:"appointments" yaml:"appointments"`
	Milestones     []Milestone        `json:"milestones" yaml:"milestones"`
	Postpartum     Postpartum         `json:"postpartum" yaml:"postpartum"`
	Settings       PregnancySettings  `json:"settings" yaml:"settings"`
}

// NewPregnancyRecord returns an inactive record with empty logs.
func NewPregnancyRecord() PregnancyRecord {
	return PregnancyRecord{
		Symptoms:     []PregnancySymptom{},
		Measurements: []Measurement{},
		Appointments: []Appointment{},
		Milestones:   []Milestone{},
		Postpartum: Postpartum{
			Symptoms: []PregnancySymptom{},
			Notes:    []PostpartumNote{},
		},
		Settings: DefaultPregnancySettings(),
	}
}

// Clone returns a deep copy of the record.
func (r PregnancyRecord) Clone() PregnancyRecord {
	out := r
	out.LastPeriodDate = clonePtr(r.LastPeriodDate)
	out.DueDate = clonePtr(r.DueDate)
	out.BirthDate = clonePtr(r.BirthDate)
	out.Symptoms = cloneSymptoms(r.Symptoms)
	out.Measurements = make([]Measurement, len(r.Measurements))
	for i, m := range r.Measurements {
		m.Weight = clonePtr(m.Weight)
		m.BloodPressure = clonePtr(m.BloodPressure)
		m.Notes = clonePtr(m.Notes)
		out.Measurements[i] = m
	}
	out.Appointments = make([]Appointment, len(r.Appointments))
	for i, a := range r.Appointments {
		a.Notes = clonePtr(a.Notes)
		out.Appointments[i] = a
	}
	out.Milestones = cloneSlice(r.Milestones)
	if out.Milestones == nil {
		out.Milestones = []Milestone{}
	}
	out.Postpartum = Postpartum{
		RecoveryStart:     clonePtr(r.Postpartum.RecoveryStart),
		FirstPeriodReturn: clonePtr(r.Postpartum.FirstPeriodReturn),
		Symptoms:          cloneSymptoms(r.Postpartum.Symptoms),
		Notes:             cloneSlice(r.Postpartum.Notes),
	}
	if out.Postpartum.Notes == nil {
		out.Postpartum.Notes = []PostpartumNote{}
	}
	return out
}

func cloneSymptoms(in []PregnancySymptom) []PregnancySymptom {
	out := make([]PregnancySymptom, len(in))
	for i, s := range in {
		s.Notes = clonePtr(s.Notes)
		out[i] = s
	}
	return out
}
