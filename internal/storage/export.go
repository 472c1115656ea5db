// ABOUTME: Export and import functionality for tracking data.
// ABOUTME: Supports JSON, YAML, and Markdown export formats; JSON round-trips through ImportJSON.
package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/harperreed/cycles/internal/models"
	"github.com/harperreed/cycles/internal/tracker"
	"gopkg.in/yaml.v3"
)

// ExportData represents the full export format for tracking data.
type ExportData struct {
	Version    string          `json:"version" yaml:"version"`
	ExportedAt time.Time       `json:"exported_at" yaml:"exported_at"`
	Tool       string          `json:"tool" yaml:"tool"`
	Snapshot   models.Snapshot `json:"snapshot" yaml:"snapshot"`
}

// NewExportData wraps a snapshot for export.
func NewExportData(snap *models.Snapshot, now time.Time) *ExportData {
	return &ExportData{
		Version:    "1.0",
		ExportedAt: now,
		Tool:       "cycles",
		Snapshot:   snap.Clone(),
	}
}

// ExportJSON exports the snapshot as JSON.
func ExportJSON(snap *models.Snapshot, now time.Time) ([]byte, error) {
	return json.MarshalIndent(NewExportData(snap, now), "", "  ")
}

// ImportJSON decodes a JSON export back into a snapshot. Cycles are rebuilt in
// start order through the cycle log, so overlapping cycles, days outside their
// cycle, and invalid settings are rejected.
func ImportJSON(data []byte) (*models.Snapshot, error) {
	var exportData ExportData
	if err := json.Unmarshal(data, &exportData); err != nil {
		return nil, fmt.Errorf("unmarshal JSON: %w", err)
	}
	snap := exportData.Snapshot
	snap.Normalize()
	if err := snap.CheckMode(); err != nil {
		return nil, fmt.Errorf("import: %w", err)
	}
	if err := snap.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("import settings: %w", err)
	}

	// rebuild the log through the cycle log so imported data obeys the same
	// ordering and non-overlap rules as logged data
	cycles := make([]models.Cycle, len(snap.Cycles))
	copy(cycles, snap.Cycles)
	sort.SliceStable(cycles, func(i, j int) bool {
		return cycles[i].StartDate.Before(cycles[j].StartDate)
	})
	snap.Cycles = []models.Cycle{}
	for _, c := range cycles {
		next, err := tracker.AddCycle(snap, c)
		if err != nil {
			return nil, fmt.Errorf("import: %w", err)
		}
		snap = next
	}
	return &snap, nil
}

// ExportYAML exports the snapshot as YAML with cycles flattened for reading.
func ExportYAML(snap *models.Snapshot, now time.Time) ([]byte, error) {
	yamlData := struct {
		Version    string               `yaml:"version"`
		ExportedAt string               `yaml:"exported_at"`
		Tool       string               `yaml:"tool"`
		Mode       string               `yaml:"mode"`
		Settings   models.CycleSettings `yaml:"settings"`
		Cycles     []yamlCycle          `yaml:"cycles"`
		Pregnancy  *yamlPregnancy       `yaml:"pregnancy,omitempty"`
	}{
		Version:    "1.0",
		ExportedAt: now.Format(time.RFC3339),
		Tool:       "cycles",
		Mode:       string(snap.Mode),
		Settings:   snap.Settings,
		Cycles:     make([]yamlCycle, 0, len(snap.Cycles)),
	}

	for _, c := range snap.Cycles {
		yc := yamlCycle{
			Start: c.StartDate.String(),
			Days:  c.Days,
		}
		if c.EndDate != nil {
			yc.End = c.EndDate.String()
		}
		if n, ok := c.Length(); ok {
			yc.Length = n
		}
		yc.PeriodLength = c.PeriodLength()
		yamlData.Cycles = append(yamlData.Cycles, yc)
	}

	p := snap.Pregnancy
	if p.LastPeriodDate != nil || p.BirthDate != nil {
		yamlData.Pregnancy = &yamlPregnancy{
			IsPregnant:   p.IsPregnant,
			IsPostpartum: p.IsPostpartum,
			LastPeriod:   dateString(p.LastPeriodDate),
			DueDate:      dateString(p.DueDate),
			BirthDate:    dateString(p.BirthDate),
			Symptoms:     p.Symptoms,
			Measurements: p.Measurements,
			Appointments: p.Appointments,
			Milestones:   p.Milestones,
			Postpartum:   p.Postpartum,
		}
	}

	return yaml.Marshal(yamlData)
}

type yamlCycle struct {
	Start        string            `yaml:"start"`
	End          string            `yaml:"end,omitempty"`
	Length       int               `yaml:"length,omitempty"`
	PeriodLength int               `yaml:"period_length"`
	Days         []models.CycleDay `yaml:"days,omitempty"`
}

type yamlPregnancy struct {
	IsPregnant   bool                      `yaml:"is_pregnant"`
	IsPostpartum bool                      `yaml:"is_postpartum"`
	LastPeriod   string                    `yaml:"last_period,omitempty"`
	DueDate      string                    `yaml:"due_date,omitempty"`
	BirthDate    string                    `yaml:"birth_date,omitempty"`
	Symptoms     []models.PregnancySymptom `yaml:"symptoms,omitempty"`
	Measurements []models.Measurement      `yaml:"measurements,omitempty"`
	Appointments []models.Appointment      `yaml:"appointments,omitempty"`
	Milestones   []models.Milestone        `yaml:"milestones,omitempty"`
	Postpartum   models.Postpartum         `yaml:"postpartum"`
}

// ExportMarkdown exports the cycle log and pregnancy summary as Markdown.
// When since is set, only cycles ending on or after since are included.
func ExportMarkdown(snap *models.Snapshot, since *models.Date, now time.Time) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# Cycles Export - %s\n\n", now.Format("2006-01-02")))
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", now.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Mode: %s\n\n", snap.Mode))

	sb.WriteString("## Cycles\n\n")
	sb.WriteString("| Start | End | Length | Period |\n")
	sb.WriteString("|-------|-----|--------|--------|\n")
	for _, c := range snap.Cycles {
		if since != nil && c.EndDate != nil && c.EndDate.Before(*since) {
			continue
		}
		end, length := "", "ongoing"
		if c.EndDate != nil {
			end = c.EndDate.String()
		}
		if n, ok := c.Length(); ok {
			length = fmt.Sprintf("%d days", n)
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %d days |\n",
			c.StartDate, end, length, c.PeriodLength()))
	}
	sb.WriteString("\n")

	var days []models.CycleDay
	for _, c := range snap.Cycles {
		for _, d := range c.Days {
			if since != nil && d.Date.Before(*since) {
				continue
			}
			days = append(days, d)
		}
	}
	if len(days) > 0 {
		sb.WriteString("## Daily Log\n\n")
		sb.WriteString("| Date | Bleeding | Symptoms | Mood | Temperature | Notes |\n")
		sb.WriteString("|------|----------|----------|------|-------------|-------|\n")
		for _, d := range days {
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
				d.Date, bleedingText(d), symptomText(d), moodText(d), temperatureText(d), notesText(d.Notes)))
		}
		sb.WriteString("\n")
	}

	p := snap.Pregnancy
	if p.LastPeriodDate != nil {
		sb.WriteString("## Pregnancy\n\n")
		sb.WriteString(fmt.Sprintf("- Last period: %s\n", dateString(p.LastPeriodDate)))
		sb.WriteString(fmt.Sprintf("- Due date: %s\n", dateString(p.DueDate)))
		if p.BirthDate != nil {
			sb.WriteString(fmt.Sprintf("- Birth date: %s\n", p.BirthDate))
		}
		sb.WriteString("\n")

		if len(p.Appointments) > 0 {
			sb.WriteString("### Appointments\n\n")
			sb.WriteString("| Date | Title | Done | Notes |\n")
			sb.WriteString("|------|-------|------|-------|\n")
			for _, a := range p.Appointments {
				done := ""
				if a.Completed {
					done = "yes"
				}
				sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", a.Date, a.Title, done, notesText(a.Notes)))
			}
			sb.WriteString("\n")
		}

		if len(p.Symptoms) > 0 {
			sb.WriteString("### Symptoms\n\n")
			sb.WriteString("| Date | Symptom | Severity | Notes |\n")
			sb.WriteString("|------|---------|----------|-------|\n")
			for _, s := range p.Symptoms {
				sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", s.Date, s.Type, s.Severity, notesText(s.Notes)))
			}
			sb.WriteString("\n")
		}

		if len(p.Measurements) > 0 {
			sb.WriteString("### Measurements\n\n")
			sb.WriteString("| Date | Weight | Blood Pressure | Notes |\n")
			sb.WriteString("|------|--------|----------------|-------|\n")
			for _, m := range p.Measurements {
				weight, bp := "", ""
				if m.Weight != nil {
					weight = fmt.Sprintf("%.1f %s", *m.Weight, p.Settings.WeightUnit)
				}
				if m.BloodPressure != nil {
					bp = fmt.Sprintf("%d/%d", m.BloodPressure.Systolic, m.BloodPressure.Diastolic)
				}
				sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", m.Date, weight, bp, notesText(m.Notes)))
			}
			sb.WriteString("\n")
		}
	}

	if len(p.Postpartum.Notes) > 0 {
		sb.WriteString("## Postpartum Notes\n\n")
		for _, n := range p.Postpartum.Notes {
			sb.WriteString(fmt.Sprintf("- %s: %s\n", n.Date, n.Content))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func dateString(d *models.Date) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func notesText(n *string) string {
	if n == nil {
		return ""
	}
	return strings.ReplaceAll(*n, "|", "/")
}

func bleedingText(d models.CycleDay) string {
	if d.Bleeding == nil {
		return ""
	}
	return string(*d.Bleeding)
}

func symptomText(d models.CycleDay) string {
	tags := make([]string, 0, len(d.Symptoms)+len(d.CustomSymptoms))
	for _, s := range d.Symptoms {
		tags = append(tags, string(s))
	}
	tags = append(tags, d.CustomSymptoms...)
	return strings.Join(tags, ", ")
}

func moodText(d models.CycleDay) string {
	tags := make([]string, 0, len(d.Mood)+len(d.CustomMoods))
	for _, m := range d.Mood {
		tags = append(tags, string(m))
	}
	tags = append(tags, d.CustomMoods...)
	return strings.Join(tags, ", ")
}

func temperatureText(d models.CycleDay) string {
	if d.Temperature == nil {
		return ""
	}
	return fmt.Sprintf("%.1f°%s", models.RoundForDisplay(d.Temperature.Value), d.Temperature.Unit)
}
