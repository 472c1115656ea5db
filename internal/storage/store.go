// ABOUTME: Store interface for persisting a whole tracking snapshot.
// ABOUTME: Backends replace the saved snapshot atomically; last writer wins.
package storage

import (
	"context"
	"errors"

	"github.com/harperreed/cycles/internal/models"
)

// ErrNoSnapshot is returned by Load when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot saved")

// Store defines the persistence boundary for tracking data.
// This interface allows swapping implementations (e.g., for testing).
type Store interface {
	// Load returns the saved snapshot or ErrNoSnapshot.
	Load(ctx context.Context) (*models.Snapshot, error)
	// Save replaces the saved snapshot.
	Save(ctx context.Context, snap *models.Snapshot) error
	// Close releases the backend.
	Close() error
}

// LoadOrNew returns the saved snapshot, or a fresh one when the store is empty.
func LoadOrNew(ctx context.Context, s Store) (*models.Snapshot, error) {
	snap, err := s.Load(ctx)
	if errors.Is(err, ErrNoSnapshot) {
		fresh := models.NewSnapshot()
		return &fresh, nil
	}
	if err != nil {
		return nil, err
	}
	snap.Normalize()
	return snap, nil
}
