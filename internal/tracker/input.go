// ABOUTME: Parses loosely typed day input (strings from flags or tool calls) into an Observation.
// ABOUTME: Known tags go to the closed vocabularies; anything else lands in the custom fields.
package tracker

import (
	"strings"

	"github.com/harperreed/cycles/internal/models"
)

// ObservationInput is raw day input. Empty strings and nil slices mean
// "not provided"; an explicitly empty slice clears the stored set.
type ObservationInput struct {
	Bleeding        string
	Symptoms        []string
	Moods           []string
	Temperature     *float64
	TemperatureUnit string
	CervicalMucus   string
	Notes           *string
}

// Observation validates the input. Temperatures without a unit are taken
// in defaultUnit.
func (in ObservationInput) Observation(defaultUnit models.TemperatureUnit) (models.Observation, error) {
	var obs models.Observation

	if strings.TrimSpace(in.Bleeding) != "" {
		b, err := models.ParseBleeding(in.Bleeding)
		if err != nil {
			return obs, err
		}
		obs = obs.WithBleeding(b)
	}

	if in.Symptoms != nil {
		known, custom := models.SplitSymptoms(in.Symptoms)
		obs.Symptoms = known
		obs.CustomSymptoms = custom
		if obs.CustomSymptoms == nil {
			obs.CustomSymptoms = []string{}
		}
	}
	if in.Moods != nil {
		known, custom := models.SplitMoods(in.Moods)
		obs.Mood = known
		obs.CustomMoods = custom
		if obs.CustomMoods == nil {
			obs.CustomMoods = []string{}
		}
	}

	if in.Temperature != nil {
		unit := defaultUnit
		if strings.TrimSpace(in.TemperatureUnit) != "" {
			u, err := models.ParseTemperatureUnit(in.TemperatureUnit)
			if err != nil {
				return obs, err
			}
			unit = u
		}
		if !unit.IsValid() {
			return obs, &models.InvalidUnitError{Unit: string(unit)}
		}
		obs = obs.WithTemperature(*in.Temperature, unit)
	}

	if strings.TrimSpace(in.CervicalMucus) != "" {
		c, err := models.ParseCervicalMucus(in.CervicalMucus)
		if err != nil {
			return obs, err
		}
		obs = obs.WithCervicalMucus(c)
	}

	if in.Notes != nil {
		obs = obs.WithNotes(*in.Notes)
	}
	return obs, nil
}
