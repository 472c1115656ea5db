// ABOUTME: Builds insight requests from a snapshot: cycle history, phase, pregnancy, and postpartum.
// ABOUTME: All dates are rendered as ISO YYYY-MM-DD strings.
package insight

import (
	"sort"

	"github.com/harperreed/cycles/internal/models"
	"github.com/harperreed/cycles/internal/tracker"
)

// RecentDays bounds how many logged days go into a cycle context.
const RecentDays = 30

// RecentEntries bounds symptoms and measurements in a pregnancy context.
const RecentEntries = 10

const resultShape = `Structure your response exactly as follows:
{
  "summary": "Brief overview",
  "insights": {"<topic>": ["observations"]},
  "recommendations": ["lifestyle and self-care recommendations"],
  "alerts": {"<topic>": ["items needing attention"]}
}`

const cycleAnalysisPrompt = `Analyze menstrual cycle data and provide structured insights.
Keep responses focused on general patterns and wellness recommendations.
Use the insight topics "cycleHealth", "symptoms", and "mood", and the alert topics
"patterns", "irregularities", and "medical".

` + resultShape

const phasePrompt = `Provide insights for the current menstrual phase given below.
Keep information general and wellness-focused. Use the insight topics "description",
"duration", and "bodilyChanges".

` + resultShape

const pregnancyPrompt = `You are a health assistant specializing in pregnancy care. Provide insights and
recommendations for the current week of pregnancy. Use the insight topics "development",
"commonSymptoms", and "nextMilestones", and the alert topic "warningSigns".

` + resultShape

const postpartumPrompt = `You are a health assistant specializing in postpartum care. Provide insights and
recommendations for the current week of recovery. Use the insight topics "recovery",
"commonSymptoms", and "nextMilestones", and the alert topic "warningSigns".

` + resultShape

// CycleSummary is one cycle as seen by a provider.
type CycleSummary struct {
	Start        string `json:"start"`
	End          string `json:"end,omitempty"`
	Length       int    `json:"length,omitempty"`
	PeriodLength int    `json:"period_length"`
}

// DayContext is one logged day with tags flattened to strings.
type DayContext struct {
	Date          string   `json:"date"`
	Bleeding      string   `json:"bleeding,omitempty"`
	Symptoms      []string `json:"symptoms,omitempty"`
	Mood          []string `json:"mood,omitempty"`
	Temperature   string   `json:"temperature,omitempty"`
	CervicalMucus string   `json:"cervical_mucus,omitempty"`
	Notes         string   `json:"notes,omitempty"`
}

// PredictionContext mirrors models.Predictions with string dates.
type PredictionContext struct {
	NextPeriod         string `json:"next_period"`
	Ovulation          string `json:"ovulation"`
	FertileWindowStart string `json:"fertile_window_start"`
	FertileWindowEnd   string `json:"fertile_window_end"`
}

// CycleContext is the data for cycle analysis and phase prompts.
type CycleContext struct {
	Today       string             `json:"today"`
	Phase       tracker.Phase      `json:"phase"`
	CycleDay    int                `json:"cycle_day,omitempty"`
	Stats       tracker.CycleStats `json:"stats"`
	Predictions *PredictionContext `json:"predictions,omitempty"`
	Cycles      []CycleSummary     `json:"cycles"`
	RecentDays  []DayContext       `json:"recent_days"`
}

// EntryContext is a pregnancy symptom or measurement.
type EntryContext struct {
	Date     string  `json:"date"`
	Type     string  `json:"type,omitempty"`
	Severity string  `json:"severity,omitempty"`
	Weight   float64 `json:"weight,omitempty"`
	BP       string  `json:"blood_pressure,omitempty"`
	Notes    string  `json:"notes,omitempty"`
}

// PregnancyContext is the data for pregnancy and postpartum prompts.
type PregnancyContext struct {
	Today           string         `json:"today"`
	Stage           string         `json:"stage"`
	Week            int            `json:"week"`
	Trimester       int            `json:"trimester,omitempty"`
	DueDate         string         `json:"due_date,omitempty"`
	DaysUntilDue    int            `json:"days_until_due,omitempty"`
	WeightUnit      string         `json:"weight_unit,omitempty"`
	RecentSymptoms  []EntryContext `json:"recent_symptoms"`
	Measurements    []EntryContext `json:"measurements,omitempty"`
	UpcomingEvents  []string       `json:"upcoming_appointments,omitempty"`
	PostpartumNotes []string       `json:"postpartum_notes,omitempty"`
}

// BuildCycleRequest assembles the cycle-analysis request.
func BuildCycleRequest(snap models.Snapshot, today models.Date) Request {
	return Request{
		Kind:   KindCycleAnalysis,
		Prompt: cycleAnalysisPrompt,
		Cycle:  buildCycleContext(snap, today),
	}
}

// BuildPhaseRequest assembles the phase-insight request for today.
func BuildPhaseRequest(snap models.Snapshot, today models.Date) Request {
	ctx := buildCycleContext(snap, today)
	ctx.Cycles = nil
	return Request{Kind: KindPhase, Prompt: phasePrompt, Cycle: ctx}
}

func buildCycleContext(snap models.Snapshot, today models.Date) *CycleContext {
	ctx := &CycleContext{
		Today:      today.String(),
		Phase:      tracker.CurrentPhase(today, snap.Cycles, snap.Settings),
		Stats:      tracker.BuildCycleStats(snap.Cycles),
		Cycles:     make([]CycleSummary, 0, len(snap.Cycles)),
		RecentDays: []DayContext{},
	}
	if n, ok := tracker.CycleDayNumber(snap.Cycles, today); ok {
		ctx.CycleDay = n
	}
	if p, ok := tracker.CalculatePredictions(snap.Cycles, snap.Settings); ok {
		ctx.Predictions = NewPredictionContext(p)
	}

	var days []models.CycleDay
	for _, c := range snap.Cycles {
		ctx.Cycles = append(ctx.Cycles, NewCycleSummary(c))
		for _, d := range c.Days {
			if !d.Date.After(today) {
				days = append(days, d)
			}
		}
	}
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date.Before(days[j].Date) })
	if len(days) > RecentDays {
		days = days[len(days)-RecentDays:]
	}
	for _, d := range days {
		ctx.RecentDays = append(ctx.RecentDays, NewDayContext(d))
	}
	return ctx
}

// NewDayContext flattens a logged day for display or prompting.
func NewDayContext(d models.CycleDay) DayContext {
	out := DayContext{Date: d.Date.String()}
	if d.Bleeding != nil {
		out.Bleeding = string(*d.Bleeding)
	}
	for _, s := range d.Symptoms {
		out.Symptoms = append(out.Symptoms, string(s))
	}
	out.Symptoms = append(out.Symptoms, d.CustomSymptoms...)
	for _, m := range d.Mood {
		out.Mood = append(out.Mood, string(m))
	}
	out.Mood = append(out.Mood, d.CustomMoods...)
	if d.Temperature != nil {
		out.Temperature = formatTemperature(*d.Temperature)
	}
	if d.CervicalMucus != nil {
		out.CervicalMucus = string(*d.CervicalMucus)
	}
	if d.Notes != nil {
		out.Notes = *d.Notes
	}
	return out
}

// NewCycleSummary describes a cycle with its derived lengths.
func NewCycleSummary(c models.Cycle) CycleSummary {
	s := CycleSummary{Start: c.StartDate.String(), PeriodLength: c.PeriodLength()}
	if c.EndDate != nil {
		s.End = c.EndDate.String()
	}
	if n, ok := c.Length(); ok {
		s.Length = n
	}
	return s
}

// NewPredictionContext renders predictions with string dates.
func NewPredictionContext(p models.Predictions) *PredictionContext {
	return &PredictionContext{
		NextPeriod:         p.NextPeriod.String(),
		Ovulation:          p.Ovulation.String(),
		FertileWindowStart: p.FertileWindow.Start.String(),
		FertileWindowEnd:   p.FertileWindow.End.String(),
	}
}

// BuildPregnancyRequest assembles the pregnancy or postpartum request,
// depending on the snapshot mode. It reports false in cycle mode.
func BuildPregnancyRequest(snap models.Snapshot, today models.Date) (Request, bool) {
	rec := snap.Pregnancy
	switch snap.Mode {
	case models.ModePregnancy:
		week, _ := tracker.WeekOfPregnancy(rec, today)
		trimester, _ := tracker.CurrentTrimester(rec, today)
		days, _ := tracker.DaysUntilDue(rec, today)
		ctx := &PregnancyContext{
			Today:          today.String(),
			Stage:          "pregnancy",
			Week:           week,
			Trimester:      trimester,
			DaysUntilDue:   days,
			WeightUnit:     string(rec.Settings.WeightUnit),
			RecentSymptoms: symptomEntries(rec.Symptoms),
			Measurements:   measurementEntries(rec.Measurements),
		}
		if rec.DueDate != nil {
			ctx.DueDate = rec.DueDate.String()
		}
		for _, a := range rec.Appointments {
			if !a.Completed && !a.Date.Before(today) {
				ctx.UpcomingEvents = append(ctx.UpcomingEvents, a.Date.String()+" "+a.Title)
			}
		}
		return Request{Kind: KindPregnancy, Prompt: pregnancyPrompt, Pregnancy: ctx}, true

	case models.ModePostpartum:
		weeks, _ := tracker.WeeksPostpartum(rec, today)
		ctx := &PregnancyContext{
			Today:          today.String(),
			Stage:          "postpartum",
			Week:           weeks,
			RecentSymptoms: symptomEntries(rec.Postpartum.Symptoms),
		}
		notes := rec.Postpartum.Notes
		if len(notes) > RecentEntries {
			notes = notes[len(notes)-RecentEntries:]
		}
		for _, n := range notes {
			ctx.PostpartumNotes = append(ctx.PostpartumNotes, n.Date.String()+": "+n.Content)
		}
		return Request{Kind: KindPostpartum, Prompt: postpartumPrompt, Pregnancy: ctx}, true
	}
	return Request{}, false
}

func symptomEntries(in []models.PregnancySymptom) []EntryContext {
	if len(in) > RecentEntries {
		in = in[len(in)-RecentEntries:]
	}
	out := make([]EntryContext, 0, len(in))
	for _, s := range in {
		e := EntryContext{Date: s.Date.String(), Type: s.Type, Severity: string(s.Severity)}
		if s.Notes != nil {
			e.Notes = *s.Notes
		}
		out = append(out, e)
	}
	return out
}

func measurementEntries(in []models.Measurement) []EntryContext {
	if len(in) > RecentEntries {
		in = in[len(in)-RecentEntries:]
	}
	out := make([]EntryContext, 0, len(in))
	for _, m := range in {
		e := EntryContext{Date: m.Date.String()}
		if m.Weight != nil {
			e.Weight = *m.Weight
		}
		if m.BloodPressure != nil {
			e.BP = formatBP(*m.BloodPressure)
		}
		if m.Notes != nil {
			e.Notes = *m.Notes
		}
		out = append(out, e)
	}
	return out
}
