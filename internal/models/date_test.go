// ABOUTME: Tests for the civil Date type.
// ABOUTME: Covers parsing, day arithmetic across DST and leap years, and text encoding.
package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"iso date", "2024-01-05", "2024-01-05", false},
		{"surrounding space", " 2024-03-10 ", "2024-03-10", false},
		{"leap day", "2024-02-29", "2024-02-29", false},
		{"not a leap year", "2023-02-29", "", true},
		{"time included", "2024-01-05T10:00:00Z", "", true},
		{"day first", "05-01-2024", "", true},
		{"empty", "", "", true},
		{"garbage", "yesterday", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				var dateErr *InvalidDateError
				if !errors.As(err, &dateErr) {
					t.Fatalf("ParseDate(%q) error = %v, want *InvalidDateError", tt.input, err)
				}
				if dateErr.Input != tt.input {
					t.Errorf("InvalidDateError.Input = %q, want %q", dateErr.Input, tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tt.input, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestDateAddDaysAndDaysSince(t *testing.T) {
	start := MustParseDate("2024-01-01")

	if got := start.AddDays(28).String(); got != "2024-01-29" {
		t.Errorf("AddDays(28) = %s, want 2024-01-29", got)
	}
	if got := start.AddDays(-1).String(); got != "2023-12-31" {
		t.Errorf("AddDays(-1) = %s, want 2023-12-31", got)
	}
	if got := start.AddDays(280).String(); got != "2024-10-07" {
		t.Errorf("AddDays(280) = %s, want 2024-10-07", got)
	}

	// US DST starts 2024-03-10; civil dates must not lose or gain a day.
	before := MustParseDate("2024-03-09")
	after := MustParseDate("2024-03-11")
	if got := after.DaysSince(before); got != 2 {
		t.Errorf("DaysSince across DST = %d, want 2", got)
	}
	if got := before.DaysSince(after); got != -2 {
		t.Errorf("DaysSince reversed = %d, want -2", got)
	}
}

func TestDateOfUsesWallClock(t *testing.T) {
	loc := time.FixedZone("UTC-8", -8*60*60)
	late := time.Date(2024, 1, 5, 23, 30, 0, 0, loc)

	if got := DateOf(late).String(); got != "2024-01-05" {
		t.Errorf("DateOf = %s, want 2024-01-05 (the local calendar day)", got)
	}
}

func TestDateComparisons(t *testing.T) {
	a := MustParseDate("2024-01-10")
	b := MustParseDate("2024-01-16")

	if !a.Before(b) || a.After(b) || a.Equal(b) {
		t.Error("expected 2024-01-10 to be strictly before 2024-01-16")
	}
	if !a.Between(a, b) || !b.Between(a, b) {
		t.Error("Between should be inclusive on both ends")
	}
	if a.AddDays(-1).Between(a, b) {
		t.Error("day before range should not be Between")
	}
	if a.Compare(b) != -1 || b.Compare(a) != 1 || a.Compare(a) != 0 {
		t.Error("Compare returned unexpected ordering")
	}
}

func TestDateJSON(t *testing.T) {
	type wrapper struct {
		Date     Date  `json:"date"`
		Optional *Date `json:"optional,omitempty"`
	}

	in := wrapper{Date: MustParseDate("2024-01-05")}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"date":"2024-01-05"}` {
		t.Errorf("Marshal = %s", data)
	}

	var out wrapper
	if err := json.Unmarshal([]byte(`{"date":"2024-02-29","optional":"2024-03-01"}`), &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if out.Date.String() != "2024-02-29" || out.Optional == nil || out.Optional.String() != "2024-03-01" {
		t.Errorf("Unmarshal = %+v", out)
	}

	err = json.Unmarshal([]byte(`{"date":"2024-13-01"}`), &out)
	var dateErr *InvalidDateError
	if !errors.As(err, &dateErr) {
		t.Errorf("Unmarshal bad date error = %v, want *InvalidDateError", err)
	}
}

func TestZeroDate(t *testing.T) {
	var d Date
	if !d.IsZero() {
		t.Error("zero Date should report IsZero")
	}
	if d.String() != "" {
		t.Errorf("zero Date String() = %q, want empty", d.String())
	}
	if err := d.UnmarshalText([]byte("")); err != nil || !d.IsZero() {
		t.Errorf("UnmarshalText(empty) = %v, zero=%v", err, d.IsZero())
	}
}
