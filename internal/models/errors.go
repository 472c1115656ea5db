// ABOUTME: Error types shared by the tracking engine and its callers.
// ABOUTME: Typed errors carry the offending input; sentinels are matched with errors.Is.
package models

import (
	"errors"
	"fmt"
)

var (
	ErrCycleOverlap          = errors.New("cycle overlaps an existing cycle")
	ErrDayOutsideCycle       = errors.New("day falls outside its cycle's range")
	ErrInvalidCycleRange     = errors.New("cycle end date is before its start date")
	ErrAlreadyPregnant       = errors.New("pregnancy tracking is already active")
	ErrNotPregnant           = errors.New("pregnancy tracking is not active")
	ErrNotPostpartum         = errors.New("postpartum tracking is not active")
	ErrBirthBeforeConception = errors.New("birth date is before the last period date")
	ErrModeMismatch          = errors.New("mode flag disagrees with pregnancy record")
	ErrNotFound              = errors.New("not found")
	ErrAmbiguousPrefix       = errors.New("ambiguous prefix: matches multiple records")
)

// InvalidDateError reports an unparsable calendar date.
type InvalidDateError struct {
	Input string
	Err   error
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid date %q: expected YYYY-MM-DD", e.Input)
}

func (e *InvalidDateError) Unwrap() error {
	return e.Err
}

// InvalidUnitError reports an unrecognized temperature unit.
type InvalidUnitError struct {
	Unit string
}

func (e *InvalidUnitError) Error() string {
	return fmt.Sprintf("invalid temperature unit %q: expected F or C", e.Unit)
}

// NoActiveCycleError is returned when an observation cannot be attached to
// any cycle and does not itself start one.
type NoActiveCycleError struct {
	Date Date
}

func (e *NoActiveCycleError) Error() string {
	return fmt.Sprintf("no cycle covers %s: log a bleeding day to start one", e.Date)
}

// InvalidValueError reports an enum value outside its vocabulary.
type InvalidValueError struct {
	Field string
	Value string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}
