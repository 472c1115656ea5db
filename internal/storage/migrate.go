// ABOUTME: Data migration between storage backends.
// ABOUTME: Copies the whole snapshot from source to destination.

package storage

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/harperreed/cycles/internal/models"
)

// MigrateSummary holds counts of migrated entities.
type MigrateSummary struct {
	Cycles       int
	Days         int
	Symptoms     int
	Measurements int
	Appointments int
}

// ErrDestinationNotEmpty is returned when MigrateData would overwrite data.
var ErrDestinationNotEmpty = errors.New("destination already holds a snapshot")

// MigrateData copies the snapshot from src to dst. The destination must be
// empty unless force is set.
func MigrateData(ctx context.Context, src, dst Store, force bool) (*MigrateSummary, error) {
	snap, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load source: %w", err)
	}

	if !force {
		_, err := dst.Load(ctx)
		switch {
		case err == nil:
			return nil, ErrDestinationNotEmpty
		case !errors.Is(err, ErrNoSnapshot):
			return nil, fmt.Errorf("check destination: %w", err)
		}
	}

	if err := dst.Save(ctx, snap); err != nil {
		return nil, fmt.Errorf("save destination: %w", err)
	}
	return summarize(snap), nil
}

func summarize(snap *models.Snapshot) *MigrateSummary {
	s := &MigrateSummary{
		Cycles:       len(snap.Cycles),
		Symptoms:     len(snap.Pregnancy.Symptoms) + len(snap.Pregnancy.Postpartum.Symptoms),
		Measurements: len(snap.Pregnancy.Measurements),
		Appointments: len(snap.Pregnancy.Appointments),
	}
	for _, c := range snap.Cycles {
		s.Days += len(c.Days)
	}
	return s
}

// IsDirNonEmpty checks whether a directory exists and contains any files or subdirectories.
// Returns false if the directory does not exist or is empty.
func IsDirNonEmpty(path string) (bool, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("read directory %q: %w", path, err)
	}
	return len(entries) > 0, nil
}
