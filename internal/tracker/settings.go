// ABOUTME: Settings updates for the cycle and pregnancy logs.
// ABOUTME: Validation happens here so stores never persist unusable settings.
package tracker

import (
	"fmt"

	"github.com/harperreed/cycles/internal/models"
)

// UpdateSettings replaces the cycle settings after validating them.
func UpdateSettings(snap models.Snapshot, settings models.CycleSettings) (models.Snapshot, error) {
	if err := settings.Validate(); err != nil {
		return snap, fmt.Errorf("update settings: %w", err)
	}
	out := snap.Clone()
	out.Settings = settings
	return out, nil
}

// UpdatePregnancySettings replaces the pregnancy display settings.
func UpdatePregnancySettings(snap models.Snapshot, settings models.PregnancySettings) (models.Snapshot, error) {
	if settings.WeightUnit != models.WeightKg && settings.WeightUnit != models.WeightLbs {
		return snap, fmt.Errorf("update pregnancy settings: %w",
			&models.InvalidValueError{Field: "weight unit", Value: string(settings.WeightUnit)})
	}
	out := snap.Clone()
	out.Pregnancy.Settings = settings
	return out, nil
}
