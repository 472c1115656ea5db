// ABOUTME: Tests for the cycle log: adding cycles, day upserts, and observation logging.
// ABOUTME: Covers implicit closure, overlap rejection, and new-cycle boundary detection.
package tracker

import (
	"errors"
	"testing"

	"github.com/harperreed/cycles/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) models.Date {
	return models.MustParseDate(s)
}

func snapshotWithCycles(t *testing.T, starts ...string) models.Snapshot {
	t.Helper()
	snap := models.NewSnapshot()
	for _, s := range starts {
		var err error
		snap, err = AddCycle(snap, models.NewCycle(d(s)))
		require.NoError(t, err)
	}
	return snap
}

func TestAddCycleClosesOpenCycle(t *testing.T) {
	snap := snapshotWithCycles(t, "2024-01-01", "2024-01-29")

	require.Len(t, snap.Cycles, 2)
	first := snap.Cycles[0]
	require.NotNil(t, first.EndDate)
	assert.Equal(t, "2024-01-28", first.EndDate.String())
	assert.True(t, snap.Cycles[1].IsOpen())

	n, ok := first.Length()
	assert.True(t, ok)
	assert.Equal(t, 28, n)
}

func TestAddCycleDoesNotMutateInput(t *testing.T) {
	before := snapshotWithCycles(t, "2024-01-01")
	after, err := AddCycle(before, models.NewCycle(d("2024-01-29")))
	require.NoError(t, err)

	assert.Len(t, before.Cycles, 1)
	assert.Nil(t, before.Cycles[0].EndDate, "input snapshot's open cycle must stay open")
	assert.Len(t, after.Cycles, 2)
}

func TestAddCycleRejectsOverlap(t *testing.T) {
	snap := models.NewSnapshot()
	closed := models.NewCycle(d("2024-01-01")).WithEndDate(d("2024-01-28"))
	snap, err := AddCycle(snap, closed)
	require.NoError(t, err)

	_, err = AddCycle(snap, models.NewCycle(d("2024-01-15")).WithEndDate(d("2024-02-10")))
	assert.True(t, errors.Is(err, models.ErrCycleOverlap), "got %v", err)

	_, err = AddCycle(snap, models.NewCycle(d("2024-01-01")))
	assert.True(t, errors.Is(err, models.ErrCycleOverlap), "same start should overlap, got %v", err)
}

func TestAddCycleOpenCycleWithLaterDays(t *testing.T) {
	snap := snapshotWithCycles(t, "2024-01-01")
	snap, ok := UpsertCycleDay(snap, d("2024-01-20"), models.Observation{}.WithNotes("late entry"))
	require.True(t, ok)

	_, err := AddCycle(snap, models.NewCycle(d("2024-01-15")))
	assert.True(t, errors.Is(err, models.ErrCycleOverlap), "got %v", err)
}

func TestAddCycleBackfill(t *testing.T) {
	snap := snapshotWithCycles(t, "2024-03-01")

	snap, err := AddCycle(snap, models.NewCycle(d("2024-02-01")))
	require.NoError(t, err)

	require.Len(t, snap.Cycles, 2)
	assert.Equal(t, "2024-02-01", snap.Cycles[0].StartDate.String())
	require.NotNil(t, snap.Cycles[0].EndDate)
	assert.Equal(t, "2024-02-29", snap.Cycles[0].EndDate.String())
	assert.True(t, snap.Cycles[1].IsOpen(), "latest cycle stays open")
}

func TestAddCycleValidation(t *testing.T) {
	snap := models.NewSnapshot()

	_, err := AddCycle(snap, models.NewCycle(d("2024-01-10")).WithEndDate(d("2024-01-01")))
	assert.True(t, errors.Is(err, models.ErrInvalidCycleRange), "got %v", err)

	outside := models.NewCycle(d("2024-01-10")).WithEndDate(d("2024-01-20")).
		WithDay(models.CycleDay{Date: d("2024-01-25")})
	_, err = AddCycle(snap, outside)
	assert.True(t, errors.Is(err, models.ErrDayOutsideCycle), "got %v", err)

	_, err = AddCycle(snap, models.Cycle{})
	var dateErr *models.InvalidDateError
	assert.True(t, errors.As(err, &dateErr), "got %v", err)
}

func TestUpsertCycleDay(t *testing.T) {
	snap := snapshotWithCycles(t, "2024-01-01")

	snap, ok := UpsertCycleDay(snap, d("2024-01-05"), models.Observation{}.WithSymptoms(models.SymptomCramps))
	require.True(t, ok)

	day, found := FindDay(snap.Cycles, d("2024-01-05"))
	require.True(t, found)
	assert.Equal(t, []models.Symptom{models.SymptomCramps}, day.Symptoms)

	// a second partial write keeps the earlier fields
	snap, ok = UpsertCycleDay(snap, d("2024-01-05"), models.Observation{}.WithMood(models.MoodIrritable))
	require.True(t, ok)
	day, _ = FindDay(snap.Cycles, d("2024-01-05"))
	assert.Equal(t, []models.Symptom{models.SymptomCramps}, day.Symptoms)
	assert.Equal(t, []models.Mood{models.MoodIrritable}, day.Mood)
	assert.Len(t, snap.Cycles[0].Days, 1, "upsert must not duplicate days")
}

func TestUpsertCycleDayIdempotent(t *testing.T) {
	snap := snapshotWithCycles(t, "2024-01-01")
	obs := models.Observation{}.WithBleeding(models.BleedingMedium).WithNotes("ok")

	once, _ := UpsertCycleDay(snap, d("2024-01-02"), obs)
	twice, _ := UpsertCycleDay(once, d("2024-01-02"), obs)

	assert.Equal(t, once.Cycles, twice.Cycles)
}

func TestUpsertCycleDayDropsUncoveredDate(t *testing.T) {
	snap := snapshotWithCycles(t, "2024-01-01")

	out, ok := UpsertCycleDay(snap, d("2023-12-20"), models.Observation{}.WithNotes("before"))
	assert.False(t, ok)
	assert.Equal(t, snap, out)

	empty := models.NewSnapshot()
	_, ok = UpsertCycleDay(empty, d("2024-01-01"), models.Observation{}.WithNotes("nothing"))
	assert.False(t, ok)
}

func TestDeleteCycleDay(t *testing.T) {
	snap := snapshotWithCycles(t, "2024-01-01")
	snap, _ = UpsertCycleDay(snap, d("2024-01-02"), models.Observation{}.WithNotes("a"))
	snap, _ = UpsertCycleDay(snap, d("2024-01-03"), models.Observation{}.WithNotes("b"))

	out, removed := DeleteCycleDay(snap, d("2024-01-02"))
	require.True(t, removed)
	require.Len(t, out.Cycles[0].Days, 1)
	assert.Equal(t, "2024-01-03", out.Cycles[0].Days[0].Date.String())
	assert.Len(t, snap.Cycles[0].Days, 2, "input must not change")

	_, removed = DeleteCycleDay(out, d("2024-02-01"))
	assert.False(t, removed)
}

func TestLogObservationStartsFirstCycle(t *testing.T) {
	snap := models.NewSnapshot()

	out, res, err := LogObservation(snap, d("2024-01-01"), models.Observation{}.WithBleeding(models.BleedingHeavy))
	require.NoError(t, err)

	assert.Equal(t, LogStartedCycle, res.Action)
	assert.Equal(t, "2024-01-01", res.CycleStart.String())
	require.Len(t, out.Cycles, 1)
	assert.True(t, out.Cycles[0].Days[0].HasBleeding())
}

func TestLogObservationContinuesPeriod(t *testing.T) {
	snap := models.NewSnapshot()
	heavy := models.Observation{}.WithBleeding(models.BleedingHeavy)

	snap, _, err := LogObservation(snap, d("2024-01-01"), heavy)
	require.NoError(t, err)
	snap, res, err := LogObservation(snap, d("2024-01-02"), heavy)
	require.NoError(t, err)

	assert.Equal(t, LogAddedDay, res.Action)
	assert.Len(t, snap.Cycles, 1)
	assert.Equal(t, 2, snap.Cycles[0].PeriodLength())

	snap, res, err = LogObservation(snap, d("2024-01-02"), models.Observation{}.WithNotes("heavy day"))
	require.NoError(t, err)
	assert.Equal(t, LogUpdatedDay, res.Action)
	assert.True(t, res.Day.HasBleeding(), "notes-only update keeps bleeding")
}

func TestLogObservationBoundaryDetection(t *testing.T) {
	tests := []struct {
		name      string
		second    string
		wantNew   bool
		wantCount int
	}{
		// last bleeding 2024-01-03; a gap of 4 non-bleeding days is still the same period
		{"short gap", "2024-01-08", false, 1},
		// gap of exactly five days starts a new cycle
		{"gap of five", "2024-01-09", true, 2},
		{"next month", "2024-01-29", true, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := models.NewSnapshot()
			bleed := models.Observation{}.WithBleeding(models.BleedingMedium)
			for _, day := range []string{"2024-01-01", "2024-01-02", "2024-01-03"} {
				var err error
				snap, _, err = LogObservation(snap, d(day), bleed)
				require.NoError(t, err)
			}

			out, res, err := LogObservation(snap, d(tt.second), models.Observation{}.WithBleeding(models.BleedingLight))
			require.NoError(t, err)
			assert.Equal(t, tt.wantNew, res.Action == LogStartedCycle)
			require.Len(t, out.Cycles, tt.wantCount)

			if tt.wantNew {
				require.NotNil(t, out.Cycles[0].EndDate)
				assert.Equal(t, d(tt.second).AddDays(-1), *out.Cycles[0].EndDate)
			}
		})
	}
}

func TestLogObservationNoActiveCycle(t *testing.T) {
	snap := models.NewSnapshot()

	_, _, err := LogObservation(snap, d("2024-01-05"), models.Observation{}.WithSymptoms(models.SymptomCramps))
	var noCycle *models.NoActiveCycleError
	require.True(t, errors.As(err, &noCycle), "got %v", err)
	assert.Equal(t, "2024-01-05", noCycle.Date.String())
}

func TestLogObservationBackfillsEarlierPeriod(t *testing.T) {
	snap := snapshotWithCycles(t, "2024-02-01")

	out, res, err := LogObservation(snap, d("2024-01-03"), models.Observation{}.WithBleeding(models.BleedingLight))
	require.NoError(t, err)

	assert.Equal(t, LogStartedCycle, res.Action)
	require.Len(t, out.Cycles, 2)
	assert.Equal(t, "2024-01-03", out.Cycles[0].StartDate.String())
	assert.Equal(t, "2024-01-31", out.Cycles[0].EndDate.String())
}

func TestLogObservationMovesNextCycleStartBack(t *testing.T) {
	bleed := models.Observation{}.WithBleeding(models.BleedingMedium)

	snap, _, err := LogObservation(models.NewSnapshot(), d("2024-01-05"), bleed)
	require.NoError(t, err)
	out, res, err := LogObservation(snap, d("2024-01-04"), bleed)
	require.NoError(t, err)

	assert.Equal(t, LogMovedCycleStart, res.Action)
	assert.Equal(t, "2024-01-04", res.CycleStart.String())
	require.Len(t, out.Cycles, 1)
	assert.Equal(t, "2024-01-04", out.Cycles[0].StartDate.String())
	assert.True(t, out.Cycles[0].IsOpen())
	assert.Equal(t, 2, out.Cycles[0].PeriodLength())
	assert.Equal(t, "2024-01-05", snap.Cycles[0].StartDate.String(), "input must not change")

	stats := BuildCycleStats(out.Cycles)
	assert.Equal(t, 2.0, stats.AveragePeriodLength)
}

func TestLogObservationMovesStartIntoClosedTail(t *testing.T) {
	snap := models.NewSnapshot()
	bleed := models.Observation{}.WithBleeding(models.BleedingMedium)
	for _, day := range []string{"2024-01-01", "2024-01-29"} {
		var err error
		snap, _, err = LogObservation(snap, d(day), bleed)
		require.NoError(t, err)
	}

	out, res, err := LogObservation(snap, d("2024-01-28"), bleed)
	require.NoError(t, err)

	assert.Equal(t, LogMovedCycleStart, res.Action)
	require.Len(t, out.Cycles, 2)
	assert.Equal(t, "2024-01-27", out.Cycles[0].EndDate.String())
	assert.Equal(t, "2024-01-28", out.Cycles[1].StartDate.String())
	assert.Len(t, out.Cycles[1].Days, 2)
}

func TestLogObservationFarBeforeNextCycleStartsOwnCycle(t *testing.T) {
	snap := snapshotWithCycles(t, "2024-01-10")

	// five clear days before the next start: a separate period
	out, res, err := LogObservation(snap, d("2024-01-04"), models.Observation{}.WithBleeding(models.BleedingLight))
	require.NoError(t, err)

	assert.Equal(t, LogStartedCycle, res.Action)
	require.Len(t, out.Cycles, 2)
	assert.Equal(t, "2024-01-09", out.Cycles[0].EndDate.String())
}

func TestLogObservationSplitMovesLaterDays(t *testing.T) {
	snap := models.NewSnapshot()
	bleed := models.Observation{}.WithBleeding(models.BleedingHeavy)

	snap, _, err := LogObservation(snap, d("2024-01-01"), bleed)
	require.NoError(t, err)
	snap, _, err = LogObservation(snap, d("2024-01-31"), models.Observation{}.WithNotes("tired"))
	require.NoError(t, err)

	out, res, err := LogObservation(snap, d("2024-01-29"), bleed)
	require.NoError(t, err)

	assert.Equal(t, LogStartedCycle, res.Action)
	require.Len(t, out.Cycles, 2)
	assert.Equal(t, "2024-01-28", out.Cycles[0].EndDate.String())
	assert.Len(t, out.Cycles[0].Days, 1)

	second := out.Cycles[1]
	assert.Equal(t, "2024-01-29", second.StartDate.String())
	require.Len(t, second.Days, 2)
	moved, ok := second.Day(d("2024-01-31"))
	require.True(t, ok)
	require.NotNil(t, moved.Notes)
	assert.Equal(t, "tired", *moved.Notes)
	assert.Len(t, snap.Cycles[0].Days, 2, "input must not change")
}

func TestFirstMatchingCycleWins(t *testing.T) {
	// overlapping ranges can only come from hand-built or imported data
	first := models.NewCycle(d("2024-01-01")).WithEndDate(d("2024-01-20")).
		WithDay(models.CycleDay{Date: d("2024-01-10")})
	second := models.NewCycle(d("2024-01-05")).WithEndDate(d("2024-01-30")).
		WithDay(models.CycleDay{Date: d("2024-01-10")})
	snap := models.NewSnapshot()
	snap.Cycles = []models.Cycle{first, second}

	tests := []struct {
		name string
		date string
	}{
		{"logged in both", "2024-01-10"},
		{"unlogged in both", "2024-01-12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := FindCycle(snap.Cycles, d(tt.date))
			require.True(t, ok)
			assert.Equal(t, 0, idx)

			out, applied := UpsertCycleDay(snap, d(tt.date), models.Observation{}.WithNotes("first"))
			require.True(t, applied)
			got, ok := out.Cycles[0].Day(d(tt.date))
			require.True(t, ok, "write must land in the first cycle")
			require.NotNil(t, got.Notes)
			assert.Equal(t, "first", *got.Notes)
			if other, ok := out.Cycles[1].Day(d(tt.date)); ok {
				assert.Nil(t, other.Notes, "second cycle must be untouched")
			}

			found, ok := FindDay(out.Cycles, d(tt.date))
			require.True(t, ok)
			require.NotNil(t, found.Notes)
			assert.Equal(t, "first", *found.Notes)

			status := ResolveDayStatus(d(tt.date), out.Cycles, nil)
			require.NotNil(t, status.CycleDay)
			assert.Equal(t, "first", *status.CycleDay.Notes)
		})
	}
}

func TestCyclesNeverOverlapAfterLogging(t *testing.T) {
	snap := models.NewSnapshot()
	bleed := models.Observation{}.WithBleeding(models.BleedingMedium)
	dates := []string{
		"2024-01-01", "2024-01-02", "2024-01-30", "2024-01-31",
		"2024-02-27", "2023-12-03", "2024-03-26", "2024-03-27",
	}
	for _, day := range dates {
		var err error
		snap, _, err = LogObservation(snap, d(day), bleed)
		require.NoError(t, err, day)
	}

	for i := 1; i < len(snap.Cycles); i++ {
		prev, cur := snap.Cycles[i-1], snap.Cycles[i]
		require.NotNil(t, prev.EndDate, "only the latest cycle may be open")
		assert.True(t, prev.EndDate.Before(cur.StartDate), "cycle %d overlaps cycle %d", i-1, i)
	}
	for _, c := range snap.Cycles {
		for _, day := range c.Days {
			assert.True(t, c.Contains(day.Date), "day %s outside cycle %s", day.Date, c.StartDate)
		}
	}
}
