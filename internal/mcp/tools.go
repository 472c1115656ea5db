// ABOUTME: MCP tool implementations for cycle and pregnancy tracking.
// ABOUTME: Every write goes through Server.update so each tool call is one load-modify-save.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/harperreed/cycles/internal/insight"
	"github.com/harperreed/cycles/internal/models"
	"github.com/harperreed/cycles/internal/reminders"
	"github.com/harperreed/cycles/internal/tracker"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	// cycle log
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_day",
		Description: "Log observations for a day (flow, symptoms, mood, temperature, notes). Logging flow after a gap of 5+ days starts a new cycle.",
	}, s.handleLogDay)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_cycle",
		Description: "Add a cycle by start date (and optional end date). An open cycle is closed the day before a later one starts.",
	}, s.handleAddCycle)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_cycles",
		Description: "List cycles, most recent first, with cycle and period lengths",
	}, s.handleListCycles)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_predictions",
		Description: "Predict the next period, ovulation, and fertile window, with the current phase and cycle statistics",
	}, s.handleGetPredictions)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_day_status",
		Description: "Show what was logged on a day and whether it is a predicted period, ovulation, or fertile day",
	}, s.handleGetDayStatus)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_settings",
		Description: "Change average cycle/period length, temperature unit, or reminder toggles",
	}, s.handleUpdateSettings)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_reminders",
		Description: "List reminders due today (upcoming period, fertile window, appointments, weekly updates)",
	}, s.handleGetReminders)

	// pregnancy log
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "start_pregnancy",
		Description: "Switch to pregnancy tracking from the last menstrual period date; the due date is 280 days later",
	}, s.handleStartPregnancy)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "end_pregnancy",
		Description: "Record the birth date and return to cycle tracking, or enter postpartum tracking",
	}, s.handleEndPregnancy)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_pregnancy_symptom",
		Description: "Record a pregnancy or postpartum symptom with severity (mild, moderate, severe)",
	}, s.handleAddPregnancySymptom)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_measurement",
		Description: "Record weight and/or blood pressure during pregnancy",
	}, s.handleAddMeasurement)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_appointment",
		Description: "Schedule a prenatal appointment",
	}, s.handleAddAppointment)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "complete_appointment",
		Description: "Mark an appointment as completed by ID or ID prefix",
	}, s.handleCompleteAppointment)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "add_postpartum_note",
		Description: "Add a note to the postpartum recovery journal",
	}, s.handleAddPostpartumNote)

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "pregnancy_status",
		Description: "Current week, trimester, days until due, and upcoming appointments (or weeks postpartum)",
	}, s.handlePregnancyStatus)

	// utilities
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "convert_temperature",
		Description: "Convert a temperature between Fahrenheit (F) and Celsius (C)",
	}, s.handleConvertTemperature)
}

// Tool input/output types

type emptyInput struct{}

type simpleOutput struct {
	Message string `json:"message"`
}

type logDayInput struct {
	Date            string   `json:"date,omitempty" jsonschema:"Day to log as YYYY-MM-DD, defaults to today"`
	Bleeding        string   `json:"bleeding,omitempty" jsonschema:"Flow: light, medium, or heavy"`
	Symptoms        []string `json:"symptoms,omitempty" jsonschema:"Symptoms such as cramps, headache, bloating, fatigue, acne, cravings, breast_tenderness, back_pain, nausea, spotting, insomnia; other text is kept as a custom symptom"`
	Mood            []string `json:"mood,omitempty" jsonschema:"Moods such as happy, sad, irritable, anxious, energetic, calm; other text is kept as a custom mood"`
	Temperature     *float64 `json:"temperature,omitempty" jsonschema:"Basal body temperature"`
	TemperatureUnit string   `json:"temperature_unit,omitempty" jsonschema:"F or C, defaults to the configured unit"`
	CervicalMucus   string   `json:"cervical_mucus,omitempty" jsonschema:"dry, sticky, creamy, watery, or egg-white"`
	Notes           string   `json:"notes,omitempty" jsonschema:"Free-text notes"`
}

type logDayOutput struct {
	Action     string             `json:"action"`
	CycleStart string             `json:"cycle_start"`
	Day        insight.DayContext `json:"day"`
	Message    string             `json:"message"`
}

type addCycleInput struct {
	StartDate string `json:"start_date" jsonschema:"First day of the period as YYYY-MM-DD"`
	EndDate   string `json:"end_date,omitempty" jsonschema:"Last day of the cycle as YYYY-MM-DD; leave empty for the current cycle"`
}

type cycleOutput struct {
	Cycle   insight.CycleSummary `json:"cycle"`
	Message string               `json:"message"`
}

type listCyclesInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max results (default 12)"`
}

type predictionsOutput struct {
	HasData     bool                       `json:"has_data"`
	Predictions *insight.PredictionContext `json:"predictions,omitempty"`
	Phase       string                     `json:"phase"`
	CycleDay    int                        `json:"cycle_day,omitempty"`
	Stats       tracker.CycleStats         `json:"stats"`
	Message     string                     `json:"message"`
}

type dateInput struct {
	Date string `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD, defaults to today"`
}

type dayStatusOutput struct {
	Date              string              `json:"date"`
	Logged            *insight.DayContext `json:"logged,omitempty"`
	IsPredictedPeriod bool                `json:"is_predicted_period"`
	IsOvulation       bool                `json:"is_ovulation"`
	IsFertile         bool                `json:"is_fertile"`
}

type updateSettingsInput struct {
	AverageCycleLength  *int   `json:"average_cycle_length,omitempty" jsonschema:"Average cycle length in days"`
	AveragePeriodLength *int   `json:"average_period_length,omitempty" jsonschema:"Average period length in days"`
	TemperatureUnit     string `json:"temperature_unit,omitempty" jsonschema:"F or C"`
	TrackTemperature    *bool  `json:"track_temperature,omitempty" jsonschema:"Show temperature fields"`
	TrackCervicalMucus  *bool  `json:"track_cervical_mucus,omitempty" jsonschema:"Show cervical mucus fields"`
	PeriodReminder      *bool  `json:"period_reminder,omitempty" jsonschema:"Remind before the predicted period"`
	OvulationReminder   *bool  `json:"ovulation_reminder,omitempty" jsonschema:"Remind before the fertile window and ovulation"`
	SymptomReminder     *bool  `json:"symptom_reminder,omitempty" jsonschema:"Remind to log days with nothing recorded"`
}

type remindersInput struct {
	LeadDays int `json:"lead_days,omitempty" jsonschema:"How many days ahead to look (default 2)"`
}

type startPregnancyInput struct {
	LastPeriodDate string `json:"last_period_date" jsonschema:"First day of the last menstrual period as YYYY-MM-DD"`
}

type pregnancyOutput struct {
	DueDate   string `json:"due_date"`
	Week      int    `json:"week"`
	Trimester int    `json:"trimester"`
	Message   string `json:"message"`
}

type endPregnancyInput struct {
	BirthDate  string `json:"birth_date" jsonschema:"Birth date as YYYY-MM-DD"`
	Postpartum bool   `json:"postpartum,omitempty" jsonschema:"Enter postpartum recovery tracking instead of returning to cycle tracking"`
}

type addSymptomInput struct {
	Date     string `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD, defaults to today"`
	Type     string `json:"type" jsonschema:"Symptom, e.g. nausea or swelling"`
	Severity string `json:"severity" jsonschema:"mild, moderate, or severe"`
	Notes    string `json:"notes,omitempty" jsonschema:"Optional notes"`
}

type entryOutput struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

type addMeasurementInput struct {
	Date      string   `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD, defaults to today"`
	Weight    *float64 `json:"weight,omitempty" jsonschema:"Weight in the configured unit"`
	Systolic  *int     `json:"systolic,omitempty" jsonschema:"Systolic blood pressure"`
	Diastolic *int     `json:"diastolic,omitempty" jsonschema:"Diastolic blood pressure"`
	Notes     string   `json:"notes,omitempty" jsonschema:"Optional notes"`
}

type addAppointmentInput struct {
	Date  string `json:"date" jsonschema:"Appointment day as YYYY-MM-DD"`
	Title string `json:"title" jsonschema:"What the appointment is"`
	Notes string `json:"notes,omitempty" jsonschema:"Optional notes"`
}

type idInput struct {
	ID string `json:"id" jsonschema:"Appointment ID or prefix"`
}

type postpartumNoteInput struct {
	Date    string `json:"date,omitempty" jsonschema:"Day as YYYY-MM-DD, defaults to today"`
	Content string `json:"content" jsonschema:"Note text"`
}

type appointmentView struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Title     string `json:"title"`
	Notes     string `json:"notes,omitempty"`
	Completed bool   `json:"completed"`
}

type pregnancyStatusOutput struct {
	Mode                 string            `json:"mode"`
	Week                 int               `json:"week,omitempty"`
	Trimester            int               `json:"trimester,omitempty"`
	DueDate              string            `json:"due_date,omitempty"`
	DaysUntilDue         int               `json:"days_until_due,omitempty"`
	WeeksPostpartum      int               `json:"weeks_postpartum,omitempty"`
	UpcomingAppointments []appointmentView `json:"upcoming_appointments,omitempty"`
	Message              string            `json:"message"`
}

type convertInput struct {
	Value float64 `json:"value" jsonschema:"Temperature value"`
	From  string  `json:"from" jsonschema:"Unit of value: F or C"`
	To    string  `json:"to" jsonschema:"Target unit: F or C"`
}

type convertOutput struct {
	Value   float64 `json:"value"`
	Unit    string  `json:"unit"`
	Message string  `json:"message"`
}

// Tool handlers

func (s *Server) handleLogDay(ctx context.Context, req *mcp.CallToolRequest, input logDayInput) (*mcp.CallToolResult, logDayOutput, error) {
	date, err := s.parseDateOr(input.Date)
	if err != nil {
		return nil, logDayOutput{}, err
	}
	raw := tracker.ObservationInput{
		Bleeding:        input.Bleeding,
		Symptoms:        input.Symptoms,
		Moods:           input.Mood,
		Temperature:     input.Temperature,
		TemperatureUnit: input.TemperatureUnit,
		CervicalMucus:   input.CervicalMucus,
	}
	if input.Notes != "" {
		raw.Notes = &input.Notes
	}

	var result tracker.LogResult
	_, err = s.update(ctx, func(snap models.Snapshot) (models.Snapshot, error) {
		obs, err := raw.Observation(snap.Settings.TemperatureUnit)
		if err != nil {
			return snap, err
		}
		if obs.IsEmpty() {
			return snap, fmt.Errorf("nothing to log for %s", date)
		}
		next, res, err := tracker.LogObservation(snap, date, obs)
		result = res
		return next, err
	})
	if err != nil {
		return nil, logDayOutput{}, fmt.Errorf("failed to log day: %w", err)
	}

	msg := fmt.Sprintf("Logged %s", date)
	switch result.Action {
	case tracker.LogStartedCycle:
		msg = fmt.Sprintf("Started a new cycle on %s", date)
	case tracker.LogMovedCycleStart:
		msg = fmt.Sprintf("Moved the cycle start back to %s", date)
	}
	return nil, logDayOutput{
		Action:     string(result.Action),
		CycleStart: result.CycleStart.String(),
		Day:        insight.NewDayContext(result.Day),
		Message:    msg,
	}, nil
}

func (s *Server) handleAddCycle(ctx context.Context, req *mcp.CallToolRequest, input addCycleInput) (*mcp.CallToolResult, cycleOutput, error) {
	start, err := models.ParseDate(input.StartDate)
	if err != nil {
		return nil, cycleOutput{}, err
	}
	cycle := models.NewCycle(start)
	if input.EndDate != "" {
		end, err := models.ParseDate(input.EndDate)
		if err != nil {
			return nil, cycleOutput{}, err
		}
		cycle = cycle.WithEndDate(end)
	}

	snap, err := s.update(ctx, func(snap models.Snapshot) (models.Snapshot, error) {
		return tracker.AddCycle(snap, cycle)
	})
	if err != nil {
		return nil, cycleOutput{}, fmt.Errorf("failed to add cycle: %w", err)
	}

	idx, _ := tracker.FindCycle(snap.Cycles, start)
	return nil, cycleOutput{
		Cycle:   insight.NewCycleSummary(snap.Cycles[idx]),
		Message: fmt.Sprintf("Added cycle starting %s", start),
	}, nil
}

func (s *Server) handleListCycles(ctx context.Context, req *mcp.CallToolRequest, input listCyclesInput) (*mcp.CallToolResult, any, error) {
	if input.Limit <= 0 {
		input.Limit = 12
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load cycles: %w", err)
	}
	if len(snap.Cycles) == 0 {
		return nil, map[string]interface{}{"message": "No cycles logged yet."}, nil
	}

	cycles := make([]insight.CycleSummary, 0, input.Limit)
	for i := len(snap.Cycles) - 1; i >= 0 && len(cycles) < input.Limit; i-- {
		cycles = append(cycles, insight.NewCycleSummary(snap.Cycles[i]))
	}
	return nil, map[string]interface{}{
		"cycles": cycles,
		"total":  len(snap.Cycles),
	}, nil
}

func (s *Server) handleGetPredictions(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, predictionsOutput, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, predictionsOutput{}, fmt.Errorf("failed to load snapshot: %w", err)
	}
	today := s.today()
	out := predictionsOutput{
		Phase: string(tracker.CurrentPhase(today, snap.Cycles, snap.Settings)),
		Stats: tracker.BuildCycleStats(snap.Cycles),
	}

	preds, ok := tracker.CalculatePredictions(snap.Cycles, snap.Settings)
	if !ok {
		out.Message = "No cycles logged yet; log a period day to get predictions."
		return nil, out, nil
	}
	out.HasData = true
	out.Predictions = insight.NewPredictionContext(preds)
	out.CycleDay, _ = tracker.CycleDayNumber(snap.Cycles, today)
	out.Message = fmt.Sprintf("Next period %s, ovulation %s, fertile %s to %s",
		preds.NextPeriod, preds.Ovulation, preds.FertileWindow.Start, preds.FertileWindow.End)
	return nil, out, nil
}

func (s *Server) handleGetDayStatus(ctx context.Context, req *mcp.CallToolRequest, input dateInput) (*mcp.CallToolResult, dayStatusOutput, error) {
	date, err := s.parseDateOr(input.Date)
	if err != nil {
		return nil, dayStatusOutput{}, err
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, dayStatusOutput{}, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var preds *models.Predictions
	if p, ok := tracker.CalculatePredictions(snap.Cycles, snap.Settings); ok {
		preds = &p
	}
	status := tracker.ResolveDayStatus(date, snap.Cycles, preds)
	out := dayStatusOutput{
		Date:              date.String(),
		IsPredictedPeriod: status.IsPredictedPeriod,
		IsOvulation:       status.IsOvulation,
		IsFertile:         status.IsFertile,
	}
	if status.CycleDay != nil {
		day := insight.NewDayContext(*status.CycleDay)
		out.Logged = &day
	}
	return nil, out, nil
}

func (s *Server) handleUpdateSettings(ctx context.Context, req *mcp.CallToolRequest, input updateSettingsInput) (*mcp.CallToolResult, any, error) {
	snap, err := s.update(ctx, func(snap models.Snapshot) (models.Snapshot, error) {
		settings := snap.Settings
		if input.AverageCycleLength != nil {
			settings.AverageCycleLength = *input.AverageCycleLength
		}
		if input.AveragePeriodLength != nil {
			settings.AveragePeriodLength = *input.AveragePeriodLength
		}
		if input.TemperatureUnit != "" {
			u, err := models.ParseTemperatureUnit(input.TemperatureUnit)
			if err != nil {
				return snap, err
			}
			settings.TemperatureUnit = u
		}
		for _, f := range []struct {
			src *bool
			dst *bool
		}{
			{input.TrackTemperature, &settings.TrackTemperature},
			{input.TrackCervicalMucus, &settings.TrackCervicalMucus},
			{input.PeriodReminder, &settings.Notifications.PeriodReminder},
			{input.OvulationReminder, &settings.Notifications.OvulationReminder},
			{input.SymptomReminder, &settings.Notifications.SymptomReminder},
		} {
			if f.src != nil {
				*f.dst = *f.src
			}
		}
		return tracker.UpdateSettings(snap, settings)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return nil, snap.Settings, nil
}

func (s *Server) handleGetReminders(ctx context.Context, req *mcp.CallToolRequest, input remindersInput) (*mcp.CallToolResult, any, error) {
	if input.LeadDays <= 0 {
		input.LeadDays = 2
	}
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	due := reminders.Due(*snap, s.today(), input.LeadDays)
	if len(due) == 0 {
		return nil, map[string]interface{}{"message": "No reminders due."}, nil
	}
	return nil, map[string]interface{}{"reminders": due}, nil
}

func (s *Server) handleStartPregnancy(ctx context.Context, req *mcp.CallToolRequest, input startPregnancyInput) (*mcp.CallToolResult, pregnancyOutput, error) {
	lmp, err := models.ParseDate(input.LastPeriodDate)
	if err != nil {
		return nil, pregnancyOutput{}, err
	}
	snap, err := s.update(ctx, func(snap models.Snapshot) (models.Snapshot, error) {
		return tracker.EnterPregnancy(snap, lmp)
	})
	if err != nil {
		return nil, pregnancyOutput{}, fmt.Errorf("failed to start pregnancy: %w", err)
	}

	today := s.today()
	week, _ := tracker.WeekOfPregnancy(snap.Pregnancy, today)
	trimester, _ := tracker.CurrentTrimester(snap.Pregnancy, today)
	due := snap.Pregnancy.DueDate.String()
	return nil, pregnancyOutput{
		DueDate:   due,
		Week:      week,
		Trimester: trimester,
		Message:   fmt.Sprintf("Pregnancy tracking started. Due date %s (week %d, trimester %d)", due, week, trimester),
	}, nil
}

func (s *Server) handleEndPregnancy(ctx context.Context, req *mcp.CallToolRequest, input endPregnancyInput) (*mcp.CallToolResult, simpleOutput, error) {
	birth, err := models.ParseDate(input.BirthDate)
	if err != nil {
		return nil, simpleOutput{}, err
	}
	_, err = s.update(ctx, func(snap models.Snapshot) (models.Snapshot, error) {
		if input.Postpartum {
			return tracker.EnterPostpartum(snap, birth)
		}
		return tracker.ExitPregnancy(snap, birth)
	})
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to end pregnancy: %w", err)
	}

	if input.Postpartum {
		return nil, simpleOutput{Message: fmt.Sprintf("Birth recorded on %s; postpartum tracking started", birth)}, nil
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Birth recorded on %s; back to cycle tracking", birth)}, nil
}

func (s *Server) handleAddPregnancySymptom(ctx context.Context, req *mcp.CallToolRequest, input addSymptomInput) (*mcp.CallToolResult, entryOutput, error) {
	date, err := s.parseDateOr(input.Date)
	if err != nil {
		return nil, entryOutput{}, err
	}
	if input.Type == "" {
		return nil, entryOutput{}, fmt.Errorf("symptom type is required")
	}
	severity, err := models.ParseSeverity(input.Severity)
	if err != nil {
		return nil, entryOutput{}, err
	}
	symptom := models.NewPregnancySymptom(date, input.Type, severity)
	if input.Notes != "" {
		symptom = symptom.WithNotes(input.Notes)
	}

	_, err = s.update(ctx, func(snap models.Snapshot) (models.Snapshot, error) {
		out := snap.Clone()
		switch snap.Mode {
		case models.ModePregnancy:
			out.Pregnancy = tracker.AddSymptom(out.Pregnancy, symptom)
		case models.ModePostpartum:
			out.Pregnancy = tracker.AddPostpartumSymptom(out.Pregnancy, symptom)
		default:
			return snap, models.ErrNotPregnant
		}
		return out, nil
	})
	if err != nil {
		return nil, entryOutput{}, fmt.Errorf("failed to add symptom: %w", err)
	}
	return nil, entryOutput{
		ID:      shortID(symptom.ID),
		Message: fmt.Sprintf("Added %s (%s) on %s", input.Type, severity, date),
	}, nil
}

func (s *Server) handleAddMeasurement(ctx context.Context, req *mcp.CallToolRequest, input addMeasurementInput) (*mcp.CallToolResult, entryOutput, error) {
	date, err := s.parseDateOr(input.Date)
	if err != nil {
		return nil, entryOutput{}, err
	}
	if (input.Systolic == nil) != (input.Diastolic == nil) {
		return nil, entryOutput{}, fmt.Errorf("blood pressure needs both systolic and diastolic")
	}
	if input.Weight == nil && input.Systolic == nil && input.Notes == "" {
		return nil, entryOutput{}, fmt.Errorf("nothing to record: give a weight, blood pressure, or notes")
	}

	m := models.NewMeasurement(date)
	if input.Weight != nil {
		m = m.WithWeight(*input.Weight)
	}
	if input.Systolic != nil {
		m = m.WithBloodPressure(*input.Systolic, *input.Diastolic)
	}
	if input.Notes != "" {
		m = m.WithNotes(input.Notes)
	}

	_, err = s.update(ctx, func(snap models.Snapshot) (models.Snapshot, error) {
		if snap.Mode != models.ModePregnancy {
			return snap, models.ErrNotPregnant
		}
		out := snap.Clone()
		out.Pregnancy = tracker.AddMeasurement(out.Pregnancy, m)
		return out, nil
	})
	if err != nil {
		return nil, entryOutput{}, fmt.Errorf("failed to add measurement: %w", err)
	}
	return nil, entryOutput{
		ID:      shortID(m.ID),
		Message: fmt.Sprintf("Recorded measurement for %s", date),
	}, nil
}

func (s *Server) handleAddAppointment(ctx context.Context, req *mcp.CallToolRequest, input addAppointmentInput) (*mcp.CallToolResult, entryOutput, error) {
	date, err := models.ParseDate(input.Date)
	if err != nil {
		return nil, entryOutput{}, err
	}
	if input.Title == "" {
		return nil, entryOutput{}, fmt.Errorf("appointment title is required")
	}
	a := models.NewAppointment(date, input.Title)
	if input.Notes != "" {
		a = a.WithNotes(input.Notes)
	}

	_, err = s.update(ctx, func(snap models.Snapshot) (models.Snapshot, error) {
		if snap.Mode != models.ModePregnancy {
			return snap, models.ErrNotPregnant
		}
		out := snap.Clone()
		out.Pregnancy = tracker.AddAppointment(out.Pregnancy, a)
		return out, nil
	})
	if err != nil {
		return nil, entryOutput{}, fmt.Errorf("failed to add appointment: %w", err)
	}
	return nil, entryOutput{
		ID:      shortID(a.ID),
		Message: fmt.Sprintf("Scheduled %s on %s (ID: %s)", a.Title, date, shortID(a.ID)),
	}, nil
}

func (s *Server) handleCompleteAppointment(ctx context.Context, req *mcp.CallToolRequest, input idInput) (*mcp.CallToolResult, simpleOutput, error) {
	var done models.Appointment
	_, err := s.update(ctx, func(snap models.Snapshot) (models.Snapshot, error) {
		rec, a, err := tracker.CompleteAppointment(snap.Pregnancy, input.ID)
		if err != nil {
			return snap, err
		}
		done = a
		out := snap.Clone()
		out.Pregnancy = rec
		return out, nil
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, simpleOutput{}, fmt.Errorf("appointment not found: %s", input.ID)
		}
		return nil, simpleOutput{}, fmt.Errorf("failed to complete appointment: %w", err)
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Completed %s on %s", done.Title, done.Date)}, nil
}

func (s *Server) handleAddPostpartumNote(ctx context.Context, req *mcp.CallToolRequest, input postpartumNoteInput) (*mcp.CallToolResult, simpleOutput, error) {
	date, err := s.parseDateOr(input.Date)
	if err != nil {
		return nil, simpleOutput{}, err
	}
	if input.Content == "" {
		return nil, simpleOutput{}, fmt.Errorf("note content is required")
	}
	_, err = s.update(ctx, func(snap models.Snapshot) (models.Snapshot, error) {
		if snap.Mode != models.ModePostpartum {
			return snap, models.ErrNotPostpartum
		}
		out := snap.Clone()
		out.Pregnancy = tracker.AddPostpartumNote(out.Pregnancy, models.PostpartumNote{Date: date, Content: input.Content})
		return out, nil
	})
	if err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to add note: %w", err)
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Added note for %s", date)}, nil
}

func (s *Server) handlePregnancyStatus(ctx context.Context, req *mcp.CallToolRequest, input emptyInput) (*mcp.CallToolResult, pregnancyStatusOutput, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, pregnancyStatusOutput{}, fmt.Errorf("failed to load snapshot: %w", err)
	}
	today := s.today()
	rec := snap.Pregnancy
	out := pregnancyStatusOutput{Mode: string(snap.Mode)}

	switch snap.Mode {
	case models.ModePregnancy:
		out.Week, _ = tracker.WeekOfPregnancy(rec, today)
		out.Trimester, _ = tracker.CurrentTrimester(rec, today)
		out.DaysUntilDue, _ = tracker.DaysUntilDue(rec, today)
		if rec.DueDate != nil {
			out.DueDate = rec.DueDate.String()
		}
		for _, a := range rec.Appointments {
			if !a.Completed && !a.Date.Before(today) {
				out.UpcomingAppointments = append(out.UpcomingAppointments, newAppointmentView(a))
			}
		}
		out.Message = fmt.Sprintf("Week %d, trimester %d, %d days until due", out.Week, out.Trimester, out.DaysUntilDue)
	case models.ModePostpartum:
		out.WeeksPostpartum, _ = tracker.WeeksPostpartum(rec, today)
		out.Message = fmt.Sprintf("Week %d postpartum", out.WeeksPostpartum)
	default:
		out.Message = "Not tracking a pregnancy; use start_pregnancy to begin."
	}
	return nil, out, nil
}

func (s *Server) handleConvertTemperature(ctx context.Context, req *mcp.CallToolRequest, input convertInput) (*mcp.CallToolResult, convertOutput, error) {
	from, err := models.ParseTemperatureUnit(input.From)
	if err != nil {
		return nil, convertOutput{}, err
	}
	to, err := models.ParseTemperatureUnit(input.To)
	if err != nil {
		return nil, convertOutput{}, err
	}
	v, err := models.ConvertTemperature(input.Value, from, to)
	if err != nil {
		return nil, convertOutput{}, err
	}
	v = models.RoundForDisplay(v)
	return nil, convertOutput{
		Value:   v,
		Unit:    string(to),
		Message: fmt.Sprintf("%.1f°%s = %.1f°%s", input.Value, from, v, to),
	}, nil
}

func newAppointmentView(a models.Appointment) appointmentView {
	v := appointmentView{
		ID:        shortID(a.ID),
		Date:      a.Date.String(),
		Title:     a.Title,
		Completed: a.Completed,
	}
	if a.Notes != nil {
		v.Notes = *a.Notes
	}
	return v
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}
