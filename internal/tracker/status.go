// ABOUTME: Day status resolver combining logged observations with predictions.
// ABOUTME: Exposes every flag independently; rendering precedence is the caller's job.
package tracker

import (
	"time"

	"github.com/harperreed/cycles/internal/models"
)

// DayStatus is everything known about one calendar date.
type DayStatus struct {
	Date              models.Date      `json:"date"`
	CycleDay          *models.CycleDay `json:"cycle_day,omitempty"`
	IsPredictedPeriod bool             `json:"is_predicted_period"`
	IsOvulation       bool             `json:"is_ovulation"`
	IsFertile         bool             `json:"is_fertile"`
}

// ResolveDayStatus looks up the logged day (first match across cycles) and
// tests date against the predictions. A nil predictions value leaves every
// prediction flag false.
func ResolveDayStatus(date models.Date, cycles []models.Cycle, preds *models.Predictions) DayStatus {
	status := DayStatus{Date: date}
	if day, ok := FindDay(cycles, date); ok {
		d := day.Clone()
		status.CycleDay = &d
	}
	if preds != nil {
		status.IsPredictedPeriod = date.Equal(preds.NextPeriod)
		status.IsOvulation = date.Equal(preds.Ovulation)
		status.IsFertile = preds.FertileWindow.Contains(date)
	}
	return status
}

// ResolveMonth returns one status per day of the given month.
func ResolveMonth(year int, month time.Month, cycles []models.Cycle, preds *models.Predictions) []DayStatus {
	first := models.NewDate(year, month, 1)
	var out []DayStatus
	for d := first; d.Month() == month; d = d.AddDays(1) {
		out = append(out, ResolveDayStatus(d, cycles, preds))
	}
	return out
}
