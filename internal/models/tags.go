// ABOUTME: Closed vocabularies for bleeding, cervical mucus, symptoms, mood, and severity.
// ABOUTME: Unknown symptom and mood tags are kept in free-text extension fields.
package models

import (
	"sort"
	"strings"
)

// Bleeding is the flow intensity logged for a day.
type Bleeding string

const (
	BleedingLight  Bleeding = "light"
	BleedingMedium Bleeding = "medium"
	BleedingHeavy  Bleeding = "heavy"
)

// AllBleedings lists valid bleeding values.
var AllBleedings = []Bleeding{BleedingLight, BleedingMedium, BleedingHeavy}

// ParseBleeding validates a bleeding value.
func ParseBleeding(s string) (Bleeding, error) {
	b := Bleeding(normalizeTag(s))
	for _, v := range AllBleedings {
		if v == b {
			return b, nil
		}
	}
	return "", &InvalidValueError{Field: "bleeding", Value: s}
}

// CervicalMucus is the observed cervical fluid type.
type CervicalMucus string

const (
	MucusDry      CervicalMucus = "dry"
	MucusSticky   CervicalMucus = "sticky"
	MucusCreamy   CervicalMucus = "creamy"
	MucusWatery   CervicalMucus = "watery"
	MucusEggWhite CervicalMucus = "egg-white"
)

// AllCervicalMucus lists valid cervical mucus values.
var AllCervicalMucus = []CervicalMucus{MucusDry, MucusSticky, MucusCreamy, MucusWatery, MucusEggWhite}

// ParseCervicalMucus validates a cervical mucus value. Underscores are
// accepted in place of the hyphen in egg-white.
func ParseCervicalMucus(s string) (CervicalMucus, error) {
	c := CervicalMucus(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-"))
	for _, v := range AllCervicalMucus {
		if v == c {
			return c, nil
		}
	}
	return "", &InvalidValueError{Field: "cervical mucus", Value: s}
}

// Symptom is a tag from the cycle symptom vocabulary.
type Symptom string

const (
	SymptomCramps           Symptom = "cramps"
	SymptomHeadache         Symptom = "headache"
	SymptomBloating         Symptom = "bloating"
	SymptomFatigue          Symptom = "fatigue"
	SymptomAcne             Symptom = "acne"
	SymptomCravings         Symptom = "cravings"
	SymptomBreastTenderness Symptom = "breast_tenderness"
	SymptomBackPain         Symptom = "back_pain"
	SymptomNausea           Symptom = "nausea"
	SymptomSpotting         Symptom = "spotting"
	SymptomInsomnia         Symptom = "insomnia"
)

// AllSymptoms lists the symptom vocabulary.
var AllSymptoms = []Symptom{
	SymptomCramps, SymptomHeadache, SymptomBloating, SymptomFatigue,
	SymptomAcne, SymptomCravings, SymptomBreastTenderness, SymptomBackPain,
	SymptomNausea, SymptomSpotting, SymptomInsomnia,
}

// Mood is a tag from the mood vocabulary.
type Mood string

const (
	MoodHappy     Mood = "happy"
	MoodSad       Mood = "sad"
	MoodIrritable Mood = "irritable"
	MoodAnxious   Mood = "anxious"
	MoodEnergetic Mood = "energetic"
	MoodCalm      Mood = "calm"
)

// AllMoods lists the mood vocabulary.
var AllMoods = []Mood{MoodHappy, MoodSad, MoodIrritable, MoodAnxious, MoodEnergetic, MoodCalm}

// Severity grades a pregnancy or postpartum symptom.
type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// ParseSeverity validates a severity value.
func ParseSeverity(s string) (Severity, error) {
	switch v := Severity(normalizeTag(s)); v {
	case SeverityMild, SeverityModerate, SeveritySevere:
		return v, nil
	}
	return "", &InvalidValueError{Field: "severity", Value: s}
}

// SplitSymptoms separates raw tags into vocabulary symptoms and free-text
// extras. Both results are sorted and de-duplicated.
func SplitSymptoms(raw []string) ([]Symptom, []string) {
	known := make(map[Symptom]bool)
	var custom []string
	for _, r := range raw {
		tag := normalizeTag(r)
		if tag == "" {
			continue
		}
		matched := false
		for _, s := range AllSymptoms {
			if Symptom(tag) == s {
				known[s] = true
				matched = true
				break
			}
		}
		if !matched {
			custom = append(custom, strings.TrimSpace(r))
		}
	}
	out := make([]Symptom, 0, len(known))
	for s := range known {
		out = append(out, s)
	}
	return NormalizeSymptoms(out), NormalizeStrings(custom)
}

// SplitMoods separates raw tags into vocabulary moods and free-text extras.
func SplitMoods(raw []string) ([]Mood, []string) {
	known := make(map[Mood]bool)
	var custom []string
	for _, r := range raw {
		tag := normalizeTag(r)
		if tag == "" {
			continue
		}
		matched := false
		for _, m := range AllMoods {
			if Mood(tag) == m {
				known[m] = true
				matched = true
				break
			}
		}
		if !matched {
			custom = append(custom, strings.TrimSpace(r))
		}
	}
	out := make([]Mood, 0, len(known))
	for m := range known {
		out = append(out, m)
	}
	return NormalizeMoods(out), NormalizeStrings(custom)
}

// NormalizeSymptoms sorts and de-duplicates a symptom set. A nil input stays nil.
func NormalizeSymptoms(in []Symptom) []Symptom {
	if in == nil {
		return nil
	}
	seen := make(map[Symptom]bool, len(in))
	out := make([]Symptom, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NormalizeMoods sorts and de-duplicates a mood set. A nil input stays nil.
func NormalizeMoods(in []Mood) []Mood {
	if in == nil {
		return nil
	}
	seen := make(map[Mood]bool, len(in))
	out := make([]Mood, 0, len(in))
	for _, m := range in {
		if !seen[m] {
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// NormalizeStrings trims, sorts, and de-duplicates free-text tags.
func NormalizeStrings(in []string) []string {
	if in == nil {
		return nil
	}
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// normalizeTag lowercases and maps spaces and hyphens to underscores, so
// "Back Pain" and "back-pain" both match back_pain.
func normalizeTag(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	return strings.ReplaceAll(s, "-", "_")
}
