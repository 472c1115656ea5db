// ABOUTME: Tests for insight request building, result parsing, and providers.
// ABOUTME: Providers are faked; the command provider test shells out to sh when available.
package insight

import (
	"context"
	"encoding/json"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/harperreed/cycles/internal/models"
	"github.com/harperreed/cycles/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	got Request
	res *Result
	err error
}

func (f *fakeProvider) Analyze(_ context.Context, req Request) (*Result, error) {
	f.got = req
	return f.res, f.err
}

func d(s string) models.Date {
	return models.MustParseDate(s)
}

func loggedSnapshot(t *testing.T) models.Snapshot {
	t.Helper()
	snap := models.NewSnapshot()
	var err error
	for _, entry := range []struct {
		date string
		obs  models.Observation
	}{
		{"2024-01-01", models.Observation{}.WithBleeding(models.BleedingHeavy).WithSymptoms(models.SymptomCramps)},
		{"2024-01-02", models.Observation{}.WithBleeding(models.BleedingMedium).WithMood(models.MoodIrritable)},
		{"2024-01-29", models.Observation{}.WithBleeding(models.BleedingLight).WithTemperature(97.64, models.Fahrenheit)},
	} {
		snap, _, err = tracker.LogObservation(snap, d(entry.date), entry.obs)
		require.NoError(t, err)
	}
	return snap
}

func TestAnalyzeWithoutProvider(t *testing.T) {
	_, err := Analyze(context.Background(), nil, Request{Kind: KindCycleAnalysis})
	assert.ErrorIs(t, err, ErrProviderUnavailable)
}

func TestAnalyzeDelegates(t *testing.T) {
	want := &Result{Summary: "regular"}
	p := &fakeProvider{res: want}
	req := BuildCycleRequest(loggedSnapshot(t), d("2024-02-01"))

	got, err := Analyze(context.Background(), p, req)
	require.NoError(t, err)
	assert.Same(t, want, got)
	assert.Equal(t, KindCycleAnalysis, p.got.Kind)

	p.err = errors.New("quota")
	_, err = Analyze(context.Background(), p, req)
	assert.ErrorContains(t, err, "analyze cycle_analysis: quota")
}

func TestBuildCycleRequest(t *testing.T) {
	req := BuildCycleRequest(loggedSnapshot(t), d("2024-02-01"))
	require.NotNil(t, req.Cycle)
	c := req.Cycle

	assert.Equal(t, "2024-02-01", c.Today)
	assert.Equal(t, 4, c.CycleDay)
	require.Len(t, c.Cycles, 2)
	assert.Equal(t, CycleSummary{Start: "2024-01-01", End: "2024-01-28", Length: 28, PeriodLength: 2}, c.Cycles[0])
	require.NotNil(t, c.Predictions)
	assert.Equal(t, "2024-02-26", c.Predictions.NextPeriod)
	assert.Equal(t, "2024-02-12", c.Predictions.Ovulation)

	require.Len(t, c.RecentDays, 3)
	assert.Equal(t, []string{"cramps"}, c.RecentDays[0].Symptoms)
	assert.Equal(t, []string{"irritable"}, c.RecentDays[1].Mood)
	assert.Equal(t, "97.6°F", c.RecentDays[2].Temperature)
}

func TestBuildCycleRequestExcludesFutureDays(t *testing.T) {
	req := BuildCycleRequest(loggedSnapshot(t), d("2024-01-15"))
	assert.Len(t, req.Cycle.RecentDays, 2)
}

func TestBuildPhaseRequest(t *testing.T) {
	req := BuildPhaseRequest(loggedSnapshot(t), d("2024-02-12"))
	assert.Equal(t, KindPhase, req.Kind)
	assert.Equal(t, tracker.PhaseOvulation, req.Cycle.Phase)
	assert.Nil(t, req.Cycle.Cycles)
}

func TestBuildPregnancyRequest(t *testing.T) {
	_, ok := BuildPregnancyRequest(models.NewSnapshot(), d("2024-03-11"))
	assert.False(t, ok, "cycle mode has no pregnancy request")

	snap, err := tracker.EnterPregnancy(models.NewSnapshot(), d("2024-01-01"))
	require.NoError(t, err)
	snap.Pregnancy = tracker.AddSymptom(snap.Pregnancy,
		models.NewPregnancySymptom(d("2024-03-01"), "nausea", models.SeverityMild))
	snap.Pregnancy = tracker.AddMeasurement(snap.Pregnancy,
		models.NewMeasurement(d("2024-03-02")).WithWeight(61.5).WithBloodPressure(110, 70))
	snap.Pregnancy = tracker.AddAppointment(snap.Pregnancy, models.NewAppointment(d("2024-03-20"), "Scan"))

	req, ok := BuildPregnancyRequest(snap, d("2024-03-11"))
	require.True(t, ok)
	p := req.Pregnancy
	assert.Equal(t, KindPregnancy, req.Kind)
	assert.Equal(t, 10, p.Week)
	assert.Equal(t, 1, p.Trimester)
	assert.Equal(t, "2024-10-07", p.DueDate)
	assert.Equal(t, 210, p.DaysUntilDue)
	assert.Equal(t, []string{"2024-03-20 Scan"}, p.UpcomingEvents)
	require.Len(t, p.Measurements, 1)
	assert.Equal(t, "110/70", p.Measurements[0].BP)

	post, err := tracker.EnterPostpartum(snap, d("2024-09-30"))
	require.NoError(t, err)
	post.Pregnancy = tracker.AddPostpartumNote(post.Pregnancy, models.PostpartumNote{Date: d("2024-10-02"), Content: "tired"})
	req, ok = BuildPregnancyRequest(post, d("2024-10-14"))
	require.True(t, ok)
	assert.Equal(t, KindPostpartum, req.Kind)
	assert.Equal(t, 2, req.Pregnancy.Week)
	assert.Equal(t, []string{"2024-10-02: tired"}, req.Pregnancy.PostpartumNotes)
}

func TestRequestText(t *testing.T) {
	req := BuildCycleRequest(loggedSnapshot(t), d("2024-02-01"))
	text, err := req.Text()
	require.NoError(t, err)

	prompt, data, found := strings.Cut(text, "\n\nAnalyze: ")
	require.True(t, found)
	assert.Contains(t, prompt, "cycleHealth")

	var decoded CycleContext
	require.NoError(t, json.Unmarshal([]byte(data), &decoded))
	assert.Equal(t, "2024-02-01", decoded.Today)

	plain, err := Request{Prompt: "hello"}.Text()
	require.NoError(t, err)
	assert.Equal(t, "hello", plain)
}

func TestParseResult(t *testing.T) {
	body := `{"summary":"steady","insights":{"cycleHealth":["regular"]},"recommendations":["sleep"],"alerts":{"medical":[]}}`
	tests := []struct {
		name  string
		input string
	}{
		{"bare", body},
		{"json fence", "```json\n" + body + "\n```"},
		{"plain fence", "```\n" + body + "\n```"},
		{"surrounding space", "\n  " + body + "  \n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := ParseResult(tt.input)
			require.NoError(t, err)
			assert.Equal(t, "steady", res.Summary)
			assert.Equal(t, []string{"regular"}, res.Insights["cycleHealth"])
			assert.Equal(t, []string{"sleep"}, res.Recommendations)
			assert.False(t, res.HasAlerts())
		})
	}
}

func TestParseResultErrors(t *testing.T) {
	_, err := ParseResult("   ")
	assert.Error(t, err)
	_, err = ParseResult("```json\nnot json\n```")
	assert.Error(t, err)

	res, err := ParseResult(`{"summary":"x"}`)
	require.NoError(t, err)
	assert.NotNil(t, res.Insights)
	assert.NotNil(t, res.Alerts)
}

func TestFallback(t *testing.T) {
	res := Fallback(KindCycleAnalysis)
	assert.NotEmpty(t, res.Summary)
	assert.True(t, res.HasAlerts())
	assert.Equal(t, "Phase information temporarily unavailable", Fallback(KindPhase).Summary)
}

func TestNewCommandProvider(t *testing.T) {
	assert.Nil(t, NewCommandProvider("  "))
	p := NewCommandProvider("llm -m local")
	assert.Equal(t, "llm", p.Name)
	assert.Equal(t, []string{"-m", "local"}, p.Args)
}

func TestCommandProvider(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	p := &CommandProvider{Name: "sh", Args: []string{"-c", "cat > /dev/null; printf '%s' '```json\n{\"summary\":\"from command\"}\n```'"}}

	res, err := Analyze(context.Background(), p, BuildCycleRequest(loggedSnapshot(t), d("2024-02-01")))
	require.NoError(t, err)
	assert.Equal(t, "from command", res.Summary)

	failing := &CommandProvider{Name: "sh", Args: []string{"-c", "echo boom >&2; exit 3"}}
	_, err = Analyze(context.Background(), failing, Request{Prompt: "x"})
	assert.ErrorContains(t, err, "boom")
}
