// ABOUTME: Temperature readings and unit conversion between Fahrenheit and Celsius.
// ABOUTME: Conversion is exact; rounding happens only for display.
package models

import (
	"math"
	"strings"
)

// TemperatureUnit is F or C.
type TemperatureUnit string

const (
	Fahrenheit TemperatureUnit = "F"
	Celsius    TemperatureUnit = "C"
)

// IsValid reports whether u is a known unit.
func (u TemperatureUnit) IsValid() bool {
	return u == Fahrenheit || u == Celsius
}

// ParseTemperatureUnit accepts F or C in either case.
func ParseTemperatureUnit(s string) (TemperatureUnit, error) {
	u := TemperatureUnit(strings.ToUpper(strings.TrimSpace(s)))
	if !u.IsValid() {
		return "", &InvalidUnitError{Unit: s}
	}
	return u, nil
}

// ConvertTemperature converts value from one unit to another without rounding.
func ConvertTemperature(value float64, from, to TemperatureUnit) (float64, error) {
	if !from.IsValid() {
		return 0, &InvalidUnitError{Unit: string(from)}
	}
	if !to.IsValid() {
		return 0, &InvalidUnitError{Unit: string(to)}
	}
	if from == to {
		return value, nil
	}
	if from == Fahrenheit {
		return (value - 32) * 5 / 9, nil
	}
	return value*9/5 + 32, nil
}

// RoundForDisplay rounds to one decimal place. This is lossy.
func RoundForDisplay(value float64) float64 {
	return math.Round(value*10) / 10
}

// Temperature is a single basal body temperature reading.
type Temperature struct {
	Value float64         `json:"value" yaml:"value"`
	Unit  TemperatureUnit `json:"unit" yaml:"unit"`
}

// In returns the reading expressed in unit.
func (t Temperature) In(unit TemperatureUnit) (Temperature, error) {
	v, err := ConvertTemperature(t.Value, t.Unit, unit)
	if err != nil {
		return Temperature{}, err
	}
	return Temperature{Value: v, Unit: unit}, nil
}
