// ABOUTME: Tests for MCP server, tools, and resources.
// ABOUTME: Runs handlers against a temp SQLite store with a fixed clock.
package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/cycles/internal/insight"
	"github.com/harperreed/cycles/internal/models"
	"github.com/harperreed/cycles/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// setupTestDB creates a test database in a temp directory.
func setupTestDB(t *testing.T) *storage.DB {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "cycles-mcp-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { _ = os.RemoveAll(tmpDir) })

	dbPath := filepath.Join(tmpDir, "cycles.db")
	db, err := storage.Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

// setupServer returns a server whose clock reads the given day at noon.
func setupServer(t *testing.T, today string) (*Server, *storage.DB) {
	t.Helper()
	db := setupTestDB(t)
	server, err := NewServer(db)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	day := models.MustParseDate(today)
	server.now = func() time.Time {
		return time.Date(day.Year(), day.Month(), day.Day(), 12, 0, 0, 0, time.Local)
	}
	return server, db
}

func logDay(t *testing.T, s *Server, input logDayInput) logDayOutput {
	t.Helper()
	_, out, err := s.handleLogDay(context.Background(), &mcp.CallToolRequest{}, input)
	if err != nil {
		t.Fatalf("log_day %+v failed: %v", input, err)
	}
	return out
}

// seedCycles logs two period starts 28 days apart.
func seedCycles(t *testing.T, s *Server) {
	t.Helper()
	logDay(t, s, logDayInput{Date: "2024-01-01", Bleeding: "heavy", Symptoms: []string{"cramps"}})
	logDay(t, s, logDayInput{Date: "2024-01-29", Bleeding: "light"})
}

func TestNewServer(t *testing.T) {
	db := setupTestDB(t)

	server, err := NewServer(db)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	if server == nil {
		t.Fatal("Expected non-nil server")
	}
	if server.mcpServer == nil {
		t.Error("Expected non-nil mcpServer")
	}
	if server.store == nil {
		t.Error("Expected non-nil store")
	}

	if _, err := NewServer(nil); err == nil {
		t.Error("Expected error for nil store")
	}
}

func TestHandleLogDay(t *testing.T) {
	server, db := setupServer(t, "2024-01-02")
	ctx := context.Background()

	out := logDay(t, server, logDayInput{Date: "2024-01-01", Bleeding: "heavy"})
	if out.Action != "started_cycle" {
		t.Errorf("Action = %s, want started_cycle", out.Action)
	}
	if out.CycleStart != "2024-01-01" {
		t.Errorf("CycleStart = %s, want 2024-01-01", out.CycleStart)
	}

	temp := 97.8
	out = logDay(t, server, logDayInput{Symptoms: []string{"headache", "brain fog"}, Temperature: &temp})
	if out.Action != "added_day" {
		t.Errorf("Action = %s, want added_day", out.Action)
	}
	if out.Day.Date != "2024-01-02" {
		t.Errorf("default date = %s, want today", out.Day.Date)
	}
	if len(out.Day.Symptoms) != 2 {
		t.Errorf("Symptoms = %v, want headache and custom symptom", out.Day.Symptoms)
	}
	if out.Day.Temperature != "97.8°F" {
		t.Errorf("Temperature = %s, want 97.8°F", out.Day.Temperature)
	}

	out = logDay(t, server, logDayInput{Date: "2024-01-01", Notes: "rough day"})
	if out.Action != "updated_day" {
		t.Errorf("Action = %s, want updated_day", out.Action)
	}
	if out.Day.Bleeding != "heavy" {
		t.Errorf("update dropped bleeding: %+v", out.Day)
	}

	snap, err := db.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(snap.Cycles) != 1 || len(snap.Cycles[0].Days) != 2 {
		t.Errorf("stored cycles = %+v, want one cycle with two days", snap.Cycles)
	}
}

func TestHandleLogDayErrors(t *testing.T) {
	server, db := setupServer(t, "2024-01-02")
	ctx := context.Background()

	tests := []struct {
		name      string
		input     logDayInput
		errSubstr string
	}{
		{"nothing to log", logDayInput{Date: "2024-01-01"}, "nothing to log"},
		{"bad date", logDayInput{Date: "01/02/2024", Bleeding: "light"}, "01/02/2024"},
		{"bad bleeding", logDayInput{Bleeding: "torrential"}, "torrential"},
		{"bad unit", logDayInput{Temperature: ptr(37.0), TemperatureUnit: "K"}, "K"},
		{"no active cycle", logDayInput{Mood: []string{"happy"}}, "failed to log day"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := server.handleLogDay(ctx, &mcp.CallToolRequest{}, tt.input)
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errSubstr) {
				t.Errorf("Error %q should contain %q", err.Error(), tt.errSubstr)
			}
		})
	}

	if _, err := db.Load(ctx); err != storage.ErrNoSnapshot {
		t.Errorf("failed logs should not save, got %v", err)
	}
}

func TestHandleAddCycleAndList(t *testing.T) {
	server, _ := setupServer(t, "2024-03-01")
	ctx := context.Background()

	_, out, err := server.handleAddCycle(ctx, &mcp.CallToolRequest{}, addCycleInput{StartDate: "2024-01-01", EndDate: "2024-01-28"})
	if err != nil {
		t.Fatalf("add_cycle failed: %v", err)
	}
	if out.Cycle.Length != 28 {
		t.Errorf("Length = %d, want 28", out.Cycle.Length)
	}

	if _, _, err := server.handleAddCycle(ctx, &mcp.CallToolRequest{}, addCycleInput{StartDate: "2024-01-20"}); err == nil {
		t.Error("Expected overlap error")
	}
	if _, _, err := server.handleAddCycle(ctx, &mcp.CallToolRequest{}, addCycleInput{StartDate: "2024-02-10", EndDate: "2024-02-01"}); err == nil {
		t.Error("Expected invalid range error")
	}
	if _, _, err := server.handleAddCycle(ctx, &mcp.CallToolRequest{}, addCycleInput{StartDate: "2024-01-29"}); err != nil {
		t.Fatalf("add_cycle open failed: %v", err)
	}

	_, list, err := server.handleListCycles(ctx, &mcp.CallToolRequest{}, listCyclesInput{Limit: 1})
	if err != nil {
		t.Fatalf("list_cycles failed: %v", err)
	}
	result := list.(map[string]interface{})
	cycles := result["cycles"].([]insight.CycleSummary)
	if len(cycles) != 1 || cycles[0].Start != "2024-01-29" {
		t.Errorf("cycles = %+v, want the latest cycle only", cycles)
	}
	if result["total"] != 2 {
		t.Errorf("total = %v, want 2", result["total"])
	}
}

func TestHandleListCyclesEmpty(t *testing.T) {
	server, _ := setupServer(t, "2024-03-01")

	_, out, err := server.handleListCycles(context.Background(), &mcp.CallToolRequest{}, listCyclesInput{})
	if err != nil {
		t.Fatalf("list_cycles failed: %v", err)
	}
	if _, ok := out.(map[string]interface{})["message"]; !ok {
		t.Errorf("expected a message for an empty log, got %v", out)
	}
}

func TestHandleGetPredictions(t *testing.T) {
	server, _ := setupServer(t, "2024-02-01")
	ctx := context.Background()

	_, out, err := server.handleGetPredictions(ctx, &mcp.CallToolRequest{}, emptyInput{})
	if err != nil {
		t.Fatalf("get_predictions failed: %v", err)
	}
	if out.HasData || out.Predictions != nil {
		t.Errorf("empty log should have no predictions: %+v", out)
	}

	seedCycles(t, server)
	_, out, err = server.handleGetPredictions(ctx, &mcp.CallToolRequest{}, emptyInput{})
	if err != nil {
		t.Fatalf("get_predictions failed: %v", err)
	}
	if !out.HasData {
		t.Fatal("Expected predictions")
	}
	if out.Predictions.NextPeriod != "2024-02-26" {
		t.Errorf("NextPeriod = %s, want 2024-02-26", out.Predictions.NextPeriod)
	}
	if out.Predictions.Ovulation != "2024-02-12" {
		t.Errorf("Ovulation = %s, want 2024-02-12", out.Predictions.Ovulation)
	}
	if out.CycleDay != 4 {
		t.Errorf("CycleDay = %d, want 4", out.CycleDay)
	}
	// day 4 without logged flow
	if out.Phase != "follicular" {
		t.Errorf("Phase = %s, want follicular", out.Phase)
	}
	if out.Stats.CycleCount != 2 {
		t.Errorf("CycleCount = %d, want 2", out.Stats.CycleCount)
	}

	logDay(t, server, logDayInput{Date: "2024-02-01", Bleeding: "light"})
	_, out, err = server.handleGetPredictions(ctx, &mcp.CallToolRequest{}, emptyInput{})
	if err != nil {
		t.Fatalf("get_predictions failed: %v", err)
	}
	if out.Phase != "menstrual" {
		t.Errorf("Phase with logged flow = %s, want menstrual", out.Phase)
	}
}

func TestHandleGetDayStatus(t *testing.T) {
	server, _ := setupServer(t, "2024-02-01")
	ctx := context.Background()
	seedCycles(t, server)

	tests := []struct {
		date      string
		logged    bool
		period    bool
		ovulation bool
		fertile   bool
	}{
		{"2024-01-01", true, false, false, false},
		{"2024-02-12", false, false, true, true},
		{"2024-02-08", false, false, false, true},
		{"2024-02-26", false, true, false, false},
		{"2024-02-20", false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			_, out, err := server.handleGetDayStatus(ctx, &mcp.CallToolRequest{}, dateInput{Date: tt.date})
			if err != nil {
				t.Fatalf("get_day_status failed: %v", err)
			}
			if (out.Logged != nil) != tt.logged {
				t.Errorf("Logged = %v, want %v", out.Logged != nil, tt.logged)
			}
			if out.IsPredictedPeriod != tt.period {
				t.Errorf("IsPredictedPeriod = %v, want %v", out.IsPredictedPeriod, tt.period)
			}
			if out.IsOvulation != tt.ovulation {
				t.Errorf("IsOvulation = %v, want %v", out.IsOvulation, tt.ovulation)
			}
			if out.IsFertile != tt.fertile {
				t.Errorf("IsFertile = %v, want %v", out.IsFertile, tt.fertile)
			}
		})
	}
}

func TestHandleUpdateSettings(t *testing.T) {
	server, db := setupServer(t, "2024-02-01")
	ctx := context.Background()

	length := 30
	on := true
	_, _, err := server.handleUpdateSettings(ctx, &mcp.CallToolRequest{}, updateSettingsInput{
		AverageCycleLength: &length,
		TemperatureUnit:    "c",
		OvulationReminder:  &on,
	})
	if err != nil {
		t.Fatalf("update_settings failed: %v", err)
	}

	snap, err := db.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if snap.Settings.AverageCycleLength != 30 {
		t.Errorf("AverageCycleLength = %d, want 30", snap.Settings.AverageCycleLength)
	}
	if snap.Settings.TemperatureUnit != models.Celsius {
		t.Errorf("TemperatureUnit = %s, want C", snap.Settings.TemperatureUnit)
	}
	if !snap.Settings.Notifications.OvulationReminder || !snap.Settings.Notifications.PeriodReminder {
		t.Errorf("Notifications = %+v, want ovulation on and period untouched", snap.Settings.Notifications)
	}

	zero := 0
	if _, _, err := server.handleUpdateSettings(ctx, &mcp.CallToolRequest{}, updateSettingsInput{AverageCycleLength: &zero}); err == nil {
		t.Error("Expected validation error for zero cycle length")
	}
}

func TestHandleGetReminders(t *testing.T) {
	server, _ := setupServer(t, "2024-02-25")
	ctx := context.Background()

	_, out, err := server.handleGetReminders(ctx, &mcp.CallToolRequest{}, remindersInput{})
	if err != nil {
		t.Fatalf("get_reminders failed: %v", err)
	}
	if _, ok := out.(map[string]interface{})["message"]; !ok {
		t.Errorf("empty log should have no reminders, got %v", out)
	}

	seedCycles(t, server)
	_, out, err = server.handleGetReminders(ctx, &mcp.CallToolRequest{}, remindersInput{})
	if err != nil {
		t.Fatalf("get_reminders failed: %v", err)
	}
	due, ok := out.(map[string]interface{})["reminders"]
	if !ok {
		t.Fatalf("expected a period reminder, got %v", out)
	}
	data, _ := json.Marshal(due)
	if !strings.Contains(string(data), "2024-02-26") {
		t.Errorf("reminders = %s, want the predicted period", data)
	}
}

func TestPregnancyTools(t *testing.T) {
	server, db := setupServer(t, "2024-03-11")
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	if _, _, err := server.handleAddMeasurement(ctx, req, addMeasurementInput{Weight: ptr(60.0)}); err == nil {
		t.Error("Expected not-pregnant error for measurement")
	}
	if _, _, err := server.handleAddPregnancySymptom(ctx, req, addSymptomInput{Type: "nausea", Severity: "mild"}); err == nil {
		t.Error("Expected not-pregnant error for symptom")
	}

	_, preg, err := server.handleStartPregnancy(ctx, req, startPregnancyInput{LastPeriodDate: "2024-01-01"})
	if err != nil {
		t.Fatalf("start_pregnancy failed: %v", err)
	}
	if preg.DueDate != "2024-10-07" || preg.Week != 10 || preg.Trimester != 1 {
		t.Errorf("start_pregnancy = %+v, want due 2024-10-07, week 10, trimester 1", preg)
	}
	if _, _, err := server.handleStartPregnancy(ctx, req, startPregnancyInput{LastPeriodDate: "2024-01-01"}); err == nil {
		t.Error("Expected already-pregnant error")
	}

	if _, _, err := server.handleAddPregnancySymptom(ctx, req, addSymptomInput{Type: "nausea", Severity: "severe", Notes: "mornings"}); err != nil {
		t.Errorf("add_pregnancy_symptom failed: %v", err)
	}
	if _, _, err := server.handleAddPregnancySymptom(ctx, req, addSymptomInput{Type: "nausea", Severity: "awful"}); err == nil {
		t.Error("Expected severity error")
	}

	if _, _, err := server.handleAddMeasurement(ctx, req, addMeasurementInput{Systolic: ptr(110)}); err == nil {
		t.Error("Expected error for half a blood pressure")
	}
	if _, _, err := server.handleAddMeasurement(ctx, req, addMeasurementInput{}); err == nil {
		t.Error("Expected error for empty measurement")
	}
	if _, _, err := server.handleAddMeasurement(ctx, req, addMeasurementInput{Weight: ptr(61.5), Systolic: ptr(110), Diastolic: ptr(70)}); err != nil {
		t.Errorf("add_measurement failed: %v", err)
	}

	_, appt, err := server.handleAddAppointment(ctx, req, addAppointmentInput{Date: "2024-03-20", Title: "Scan"})
	if err != nil {
		t.Fatalf("add_appointment failed: %v", err)
	}
	if len(appt.ID) != 8 {
		t.Errorf("ID = %q, want an 8 character prefix", appt.ID)
	}

	_, status, err := server.handlePregnancyStatus(ctx, req, emptyInput{})
	if err != nil {
		t.Fatalf("pregnancy_status failed: %v", err)
	}
	if status.Mode != "pregnancy" || status.DaysUntilDue != 210 {
		t.Errorf("status = %+v, want pregnancy with 210 days to go", status)
	}
	if len(status.UpcomingAppointments) != 1 || status.UpcomingAppointments[0].Title != "Scan" {
		t.Errorf("UpcomingAppointments = %+v, want the scan", status.UpcomingAppointments)
	}

	if _, _, err := server.handleCompleteAppointment(ctx, req, idInput{ID: "zzzzzzzz"}); err == nil {
		t.Error("Expected not found error")
	}
	if _, _, err := server.handleCompleteAppointment(ctx, req, idInput{ID: appt.ID}); err != nil {
		t.Fatalf("complete_appointment failed: %v", err)
	}
	_, status, _ = server.handlePregnancyStatus(ctx, req, emptyInput{})
	if len(status.UpcomingAppointments) != 0 {
		t.Errorf("completed appointment still upcoming: %+v", status.UpcomingAppointments)
	}

	snap, err := db.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(snap.Pregnancy.Symptoms) != 1 || len(snap.Pregnancy.Measurements) != 1 {
		t.Errorf("stored record = %+v", snap.Pregnancy)
	}
}

func TestPostpartumTools(t *testing.T) {
	server, db := setupServer(t, "2024-10-14")
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	if _, _, err := server.handleEndPregnancy(ctx, req, endPregnancyInput{BirthDate: "2024-09-30"}); err == nil {
		t.Error("Expected not-pregnant error")
	}
	if _, _, err := server.handleStartPregnancy(ctx, req, startPregnancyInput{LastPeriodDate: "2024-01-01"}); err != nil {
		t.Fatalf("start_pregnancy failed: %v", err)
	}
	if _, _, err := server.handleAddPostpartumNote(ctx, req, postpartumNoteInput{Content: "tired"}); err == nil {
		t.Error("Expected not-postpartum error")
	}
	if _, _, err := server.handleEndPregnancy(ctx, req, endPregnancyInput{BirthDate: "2023-12-01", Postpartum: true}); err == nil {
		t.Error("Expected birth-before-conception error")
	}
	if _, _, err := server.handleEndPregnancy(ctx, req, endPregnancyInput{BirthDate: "2024-09-30", Postpartum: true}); err != nil {
		t.Fatalf("end_pregnancy failed: %v", err)
	}

	if _, _, err := server.handleAddPostpartumNote(ctx, req, postpartumNoteInput{Content: "tired"}); err != nil {
		t.Errorf("add_postpartum_note failed: %v", err)
	}
	if _, _, err := server.handleAddPregnancySymptom(ctx, req, addSymptomInput{Type: "fatigue", Severity: "moderate"}); err != nil {
		t.Errorf("add_pregnancy_symptom in postpartum failed: %v", err)
	}

	_, status, err := server.handlePregnancyStatus(ctx, req, emptyInput{})
	if err != nil {
		t.Fatalf("pregnancy_status failed: %v", err)
	}
	if status.Mode != "postpartum" || status.WeeksPostpartum != 2 {
		t.Errorf("status = %+v, want postpartum week 2", status)
	}

	snap, err := db.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if snap.Mode != models.ModePostpartum {
		t.Errorf("Mode = %s, want postpartum", snap.Mode)
	}
	if len(snap.Pregnancy.Postpartum.Notes) != 1 || len(snap.Pregnancy.Postpartum.Symptoms) != 1 {
		t.Errorf("postpartum log = %+v", snap.Pregnancy.Postpartum)
	}
}

func TestHandleConvertTemperature(t *testing.T) {
	server, _ := setupServer(t, "2024-01-01")

	tests := []struct {
		name    string
		input   convertInput
		want    float64
		wantErr bool
	}{
		{"F to C", convertInput{Value: 98.6, From: "F", To: "C"}, 37.0, false},
		{"C to F", convertInput{Value: 36.5, From: "c", To: "f"}, 97.7, false},
		{"same unit", convertInput{Value: 97.5, From: "F", To: "F"}, 97.5, false},
		{"bad unit", convertInput{Value: 300, From: "K", To: "C"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, out, err := server.handleConvertTemperature(context.Background(), &mcp.CallToolRequest{}, tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if out.Value != tt.want {
				t.Errorf("Value = %v, want %v", out.Value, tt.want)
			}
		})
	}
}

func readResource(t *testing.T, handler func(context.Context, *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error), uri string) map[string]interface{} {
	t.Helper()
	res, err := handler(context.Background(), &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("%s failed: %v", uri, err)
	}
	if len(res.Contents) != 1 || res.Contents[0].URI != uri {
		t.Fatalf("%s contents = %+v", uri, res.Contents)
	}
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(res.Contents[0].Text), &data); err != nil {
		t.Fatalf("%s returned invalid JSON: %v", uri, err)
	}
	return data
}

func TestResources(t *testing.T) {
	server, _ := setupServer(t, "2024-02-01")
	seedCycles(t, server)

	summary := readResource(t, server.handleSummaryResource, summaryURI)
	if summary["mode"] != "cycle" {
		t.Errorf("mode = %v, want cycle", summary["mode"])
	}
	if summary["cycle_day"] != float64(4) {
		t.Errorf("cycle_day = %v, want 4", summary["cycle_day"])
	}
	if _, ok := summary["predictions"]; !ok {
		t.Error("summary missing predictions")
	}

	calendar := readResource(t, server.handleCalendarResource, calendarURI)
	if calendar["month"] != "2024-02" {
		t.Errorf("month = %v, want 2024-02", calendar["month"])
	}
	if days, ok := calendar["days"].([]interface{}); !ok || len(days) != 29 {
		t.Errorf("days = %v, want 29 entries", calendar["days"])
	}

	ctxData := readResource(t, server.handleInsightContextResource, insightContextURI)
	if ctxData["kind"] != "cycle_analysis" {
		t.Errorf("kind = %v, want cycle_analysis", ctxData["kind"])
	}
	if _, ok := ctxData["cycle"]; !ok {
		t.Error("insight context missing cycle data")
	}
}

func TestInsightContextResourcePregnancy(t *testing.T) {
	server, _ := setupServer(t, "2024-03-11")
	if _, _, err := server.handleStartPregnancy(context.Background(), &mcp.CallToolRequest{}, startPregnancyInput{LastPeriodDate: "2024-01-01"}); err != nil {
		t.Fatalf("start_pregnancy failed: %v", err)
	}

	data := readResource(t, server.handleInsightContextResource, insightContextURI)
	if data["kind"] != "pregnancy" {
		t.Errorf("kind = %v, want pregnancy", data["kind"])
	}
}

func ptr[T any](v T) *T {
	return &v
}
