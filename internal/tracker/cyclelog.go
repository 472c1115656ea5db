// ABOUTME: Cycle log operations: add cycles, merge day observations, log with boundary detection.
// ABOUTME: Every operation takes a snapshot and returns a new one; inputs are never mutated.
package tracker

import (
	"fmt"
	"sort"

	"github.com/harperreed/cycles/internal/models"
)

// NewCycleGapDays is the minimum run of non-bleeding days between two
// bleeding days for the second to start a new cycle.
const NewCycleGapDays = 5

// FindCycle returns the index of the first cycle whose range contains date.
func FindCycle(cycles []models.Cycle, date models.Date) (int, bool) {
	for i, c := range cycles {
		if c.Contains(date) {
			return i, true
		}
	}
	return -1, false
}

// FindDay scans every cycle's day list for date; first match wins.
func FindDay(cycles []models.Cycle, date models.Date) (models.CycleDay, bool) {
	for _, c := range cycles {
		if day, ok := c.Day(date); ok {
			return day, true
		}
	}
	return models.CycleDay{}, false
}

// LatestCycle returns the last cycle in the log.
func LatestCycle(cycles []models.Cycle) (models.Cycle, bool) {
	if len(cycles) == 0 {
		return models.Cycle{}, false
	}
	return cycles[len(cycles)-1], true
}

// AddCycle inserts a cycle in chronological order. When the latest cycle is
// still open and starts before the new one, it is closed the day before the
// new start. Any other range overlap is rejected with ErrCycleOverlap.
func AddCycle(snap models.Snapshot, cycle models.Cycle) (models.Snapshot, error) {
	if cycle.StartDate.IsZero() {
		return snap, fmt.Errorf("add cycle: %w", &models.InvalidDateError{Input: ""})
	}
	if cycle.EndDate != nil && cycle.EndDate.Before(cycle.StartDate) {
		return snap, fmt.Errorf("add cycle %s: %w", cycle.StartDate, models.ErrInvalidCycleRange)
	}
	cycle = cycle.Clone()
	if cycle.Days == nil {
		cycle.Days = []models.CycleDay{}
	}
	for _, d := range cycle.Days {
		if !cycle.Contains(d.Date) {
			return snap, fmt.Errorf("add cycle %s: day %s: %w", cycle.StartDate, d.Date, models.ErrDayOutsideCycle)
		}
	}
	cycle.SortDays()

	out := snap.Clone()
	if n := len(out.Cycles); n > 0 {
		last := &out.Cycles[n-1]
		if last.IsOpen() && last.StartDate.Before(cycle.StartDate) {
			end := cycle.StartDate.AddDays(-1)
			if lastDay := len(last.Days); lastDay > 0 && last.Days[lastDay-1].Date.After(end) {
				return snap, fmt.Errorf("add cycle %s: open cycle has days after %s: %w",
					cycle.StartDate, end, models.ErrCycleOverlap)
			}
			last.EndDate = &end
		}
	}

	// a backfilled open cycle ends where the next logged cycle begins
	if cycle.IsOpen() {
		for _, existing := range out.Cycles {
			if existing.StartDate.After(cycle.StartDate) {
				end := existing.StartDate.AddDays(-1)
				cycle.EndDate = &end
				break
			}
		}
		for _, d := range cycle.Days {
			if !cycle.Contains(d.Date) {
				return snap, fmt.Errorf("add cycle %s: day %s runs into the next cycle: %w",
					cycle.StartDate, d.Date, models.ErrCycleOverlap)
			}
		}
	}

	for _, existing := range out.Cycles {
		if overlaps(existing, cycle) {
			return snap, fmt.Errorf("add cycle %s: overlaps cycle starting %s: %w",
				cycle.StartDate, existing.StartDate, models.ErrCycleOverlap)
		}
	}

	out.Cycles = append(out.Cycles, cycle)
	sort.SliceStable(out.Cycles, func(i, j int) bool {
		return out.Cycles[i].StartDate.Before(out.Cycles[j].StartDate)
	})
	return out, nil
}

// overlaps reports whether two cycle ranges share any date.
func overlaps(a, b models.Cycle) bool {
	// a starts after b ends, or b starts after a ends
	if b.EndDate != nil && a.StartDate.After(*b.EndDate) {
		return false
	}
	if a.EndDate != nil && b.StartDate.After(*a.EndDate) {
		return false
	}
	return true
}

// UpsertCycleDay merges obs into the day at date inside the first cycle
// whose range contains date. When no cycle contains date the write is
// dropped and applied is false.
func UpsertCycleDay(snap models.Snapshot, date models.Date, obs models.Observation) (models.Snapshot, bool) {
	idx, ok := FindCycle(snap.Cycles, date)
	if !ok {
		return snap, false
	}
	out := snap.Clone()
	cycle := out.Cycles[idx]
	day, exists := cycle.Day(date)
	if !exists {
		day = models.CycleDay{Date: date}
	}
	out.Cycles[idx] = cycle.WithDay(obs.MergeInto(day))
	return out, true
}

// DeleteCycleDay removes the observations logged for date. It reports
// whether a day was removed.
func DeleteCycleDay(snap models.Snapshot, date models.Date) (models.Snapshot, bool) {
	for ci, c := range snap.Cycles {
		for di, d := range c.Days {
			if !d.Date.Equal(date) {
				continue
			}
			out := snap.Clone()
			days := out.Cycles[ci].Days
			out.Cycles[ci].Days = append(days[:di:di], days[di+1:]...)
			return out, true
		}
	}
	return snap, false
}

// LogAction says what LogObservation did with an observation.
type LogAction string

const (
	LogStartedCycle    LogAction = "started_cycle"
	LogMovedCycleStart LogAction = "moved_cycle_start"
	LogUpdatedDay      LogAction = "updated_day"
	LogAddedDay        LogAction = "added_day"
)

// LogResult describes the outcome of LogObservation.
type LogResult struct {
	Action     LogAction
	CycleStart models.Date
	Day        models.CycleDay
}

// LogObservation is the single write path for daily observations. A bleeding
// observation starts a new cycle when no cycle covers date, or when date is
// in the open cycle at least NewCycleGapDays after its last bleeding day;
// days already logged on or after date move into the new cycle. A bleeding
// day less than NewCycleGapDays before the next cycle moves that cycle's
// start back instead. Anything else is merged into the covering cycle. An
// observation that neither fits a cycle nor starts one returns
// *NoActiveCycleError.
func LogObservation(snap models.Snapshot, date models.Date, obs models.Observation) (models.Snapshot, LogResult, error) {
	if date.IsZero() {
		return snap, LogResult{}, &models.InvalidDateError{Input: ""}
	}

	idx, covered := FindCycle(snap.Cycles, date)
	bleeding := obs.Bleeding != nil && *obs.Bleeding != ""

	if next, ok := pullsNextCycleBack(snap.Cycles, idx, covered, date); bleeding && ok {
		out := snap.Clone()
		if covered {
			end := date.AddDays(-1)
			out.Cycles[idx].EndDate = &end
		}
		day := obs.MergeInto(models.CycleDay{Date: date})
		c := out.Cycles[next]
		c.StartDate = date
		out.Cycles[next] = c.WithDay(day)
		return out, LogResult{Action: LogMovedCycleStart, CycleStart: date, Day: day}, nil
	}

	if bleeding && startsNewCycle(snap.Cycles, idx, covered, date) {
		base := snap
		cycle := models.NewCycle(date)
		if covered {
			base = snap.Clone()
			open := &base.Cycles[idx]
			keep := []models.CycleDay{}
			for _, d := range open.Days {
				if d.Date.Before(date) {
					keep = append(keep, d)
				} else {
					cycle = cycle.WithDay(d)
				}
			}
			open.Days = keep
		}
		day, ok := cycle.Day(date)
		if !ok {
			day = models.CycleDay{Date: date}
		}
		day = obs.MergeInto(day)
		out, err := AddCycle(base, cycle.WithDay(day))
		if err != nil {
			return snap, LogResult{}, fmt.Errorf("log %s: %w", date, err)
		}
		return out, LogResult{Action: LogStartedCycle, CycleStart: date, Day: day}, nil
	}

	if !covered {
		return snap, LogResult{}, &models.NoActiveCycleError{Date: date}
	}

	_, existed := snap.Cycles[idx].Day(date)
	out, _ := UpsertCycleDay(snap, date, obs)
	day, _ := out.Cycles[idx].Day(date)
	action := LogAddedDay
	if existed {
		action = LogUpdatedDay
	}
	return out, LogResult{Action: action, CycleStart: out.Cycles[idx].StartDate, Day: day}, nil
}

func startsNewCycle(cycles []models.Cycle, idx int, covered bool, date models.Date) bool {
	if !covered {
		return true
	}
	c := cycles[idx]
	// only the open cycle can be split; closed history is amended in place
	if !c.IsOpen() || c.StartDate.Equal(date) {
		return false
	}
	prev, ok := c.LastBleedingBefore(date)
	if !ok {
		prev = c.StartDate
	}
	gap := date.DaysSince(prev) - 1
	return gap >= NewCycleGapDays
}

// pullsNextCycleBack finds the cycle that starts fewer than NewCycleGapDays
// after date. A covered date only qualifies when it is the empty tail of a
// closed cycle and not part of that cycle's own period.
func pullsNextCycleBack(cycles []models.Cycle, idx int, covered bool, date models.Date) (int, bool) {
	next := -1
	for i, c := range cycles {
		if c.StartDate.After(date) {
			next = i
			break
		}
	}
	if next < 0 || cycles[next].StartDate.DaysSince(date)-1 >= NewCycleGapDays {
		return -1, false
	}
	if covered {
		c := cycles[idx]
		if !c.StartDate.Before(date) {
			return -1, false
		}
		for _, d := range c.Days {
			if !d.Date.Before(date) {
				return -1, false
			}
		}
		if prev, ok := c.LastBleedingBefore(date); ok && date.DaysSince(prev)-1 < NewCycleGapDays {
			return -1, false
		}
	}
	return next, true
}
