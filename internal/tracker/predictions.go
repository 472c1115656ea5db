// ABOUTME: Prediction engine: next period, ovulation, and fertile window from fixed offsets.
// ABOUTME: Also derives the current cycle day and phase for dashboards.
package tracker

import "github.com/harperreed/cycles/internal/models"

const (
	// LutealPhaseDays is the assumed span from ovulation to the next period.
	LutealPhaseDays = 14
	// FertileDaysBefore and FertileDaysAfter bound the fertile window around ovulation.
	FertileDaysBefore = 5
	FertileDaysAfter  = 1
)

// CalculatePredictions projects the next period, ovulation, and fertile
// window from the start of the last cycle in the log. It reports false when
// there are no cycles. Ovulation is not clamped when the average cycle is
// shorter than the luteal phase.
func CalculatePredictions(cycles []models.Cycle, settings models.CycleSettings) (models.Predictions, bool) {
	last, ok := LatestCycle(cycles)
	if !ok {
		return models.Predictions{}, false
	}
	start := last.StartDate
	ovulation := start.AddDays(settings.AverageCycleLength - LutealPhaseDays)
	return models.Predictions{
		NextPeriod: start.AddDays(settings.AverageCycleLength),
		Ovulation:  ovulation,
		FertileWindow: models.DateRange{
			Start: ovulation.AddDays(-FertileDaysBefore),
			End:   ovulation.AddDays(FertileDaysAfter),
		},
	}, true
}

// Phase names where a day sits in the cycle.
type Phase string

const (
	PhaseUnknown    Phase = "unknown"
	PhaseMenstrual  Phase = "menstrual"
	PhaseFollicular Phase = "follicular"
	PhaseFertile    Phase = "fertile"
	PhaseOvulation  Phase = "ovulation"
	PhaseLuteal     Phase = "luteal"
)

// CycleDayNumber returns the 1-based day of the latest cycle that today
// falls on, or false when today precedes it or there are no cycles.
func CycleDayNumber(cycles []models.Cycle, today models.Date) (int, bool) {
	last, ok := LatestCycle(cycles)
	if !ok || today.Before(last.StartDate) {
		return 0, false
	}
	return today.DaysSince(last.StartDate) + 1, true
}

// CurrentPhase classifies today using logged bleeding first, then the
// predicted fertile window and ovulation date.
func CurrentPhase(today models.Date, cycles []models.Cycle, settings models.CycleSettings) Phase {
	preds, ok := CalculatePredictions(cycles, settings)
	if !ok {
		return PhaseUnknown
	}
	if day, found := FindDay(cycles, today); found && day.HasBleeding() {
		return PhaseMenstrual
	}
	switch {
	case today.Equal(preds.Ovulation):
		return PhaseOvulation
	case preds.FertileWindow.Contains(today):
		return PhaseFertile
	case today.Before(preds.Ovulation):
		return PhaseFollicular
	default:
		return PhaseLuteal
	}
}

// CycleStats summarizes history for display and insight prompts.
type CycleStats struct {
	CycleCount          int     `json:"cycle_count"`
	AverageCycleLength  float64 `json:"average_cycle_length"`
	AveragePeriodLength float64 `json:"average_period_length"`
	ShortestCycle       int     `json:"shortest_cycle"`
	LongestCycle        int     `json:"longest_cycle"`
}

// BuildCycleStats averages the lengths of closed cycles and the period
// lengths of cycles with logged bleeding. These are descriptive only; the
// prediction engine keeps using the configured averages.
func BuildCycleStats(cycles []models.Cycle) CycleStats {
	stats := CycleStats{CycleCount: len(cycles)}
	var lengthTotal, lengthCount, periodTotal, periodCount int
	for _, c := range cycles {
		if n, ok := c.Length(); ok {
			lengthTotal += n
			lengthCount++
			if stats.ShortestCycle == 0 || n < stats.ShortestCycle {
				stats.ShortestCycle = n
			}
			if n > stats.LongestCycle {
				stats.LongestCycle = n
			}
		}
		if p := c.PeriodLength(); p > 0 {
			periodTotal += p
			periodCount++
		}
	}
	if lengthCount > 0 {
		stats.AverageCycleLength = float64(lengthTotal) / float64(lengthCount)
	}
	if periodCount > 0 {
		stats.AveragePeriodLength = float64(periodTotal) / float64(periodCount)
	}
	return stats
}
