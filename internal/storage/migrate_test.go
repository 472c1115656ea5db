// ABOUTME: Tests for data migration between storage backends.
// ABOUTME: Covers sqlite-to-badger, badger-to-sqlite, and the non-empty destination guard.
package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/harperreed/cycles/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateDataSQLiteToBadger(t *testing.T) {
	ctx := context.Background()
	src := setupTestDB(t)
	want := sampleSnapshot(t)
	require.NoError(t, src.Save(ctx, want))

	dst := openTestBadger(t, t.TempDir(), "migrated")

	summary, err := MigrateData(ctx, src, dst, false)
	require.NoError(t, err)
	assert.Equal(t, &MigrateSummary{
		Cycles:       2,
		Days:         3,
		Symptoms:     2,
		Measurements: 2,
		Appointments: 1,
	}, summary)

	got, err := dst.Load(ctx)
	require.NoError(t, err)
	requireSameSnapshot(t, want, got)
}

func TestMigrateDataBadgerToSQLite(t *testing.T) {
	ctx := context.Background()
	src := openTestBadger(t, t.TempDir(), "s1")
	want := sampleSnapshot(t)
	require.NoError(t, src.Save(ctx, want))

	dst := setupTestDB(t)
	_, err := MigrateData(ctx, src, dst, false)
	require.NoError(t, err)

	got, err := dst.Load(ctx)
	require.NoError(t, err)
	requireSameSnapshot(t, want, got)
}

func TestMigrateDataEmptySource(t *testing.T) {
	ctx := context.Background()
	_, err := MigrateData(ctx, setupTestDB(t), openTestBadger(t, t.TempDir(), "s1"), false)
	require.ErrorIs(t, err, ErrNoSnapshot)
}

func TestMigrateDataDestinationNotEmpty(t *testing.T) {
	ctx := context.Background()
	src := setupTestDB(t)
	require.NoError(t, src.Save(ctx, sampleSnapshot(t)))

	dst := openTestBadger(t, t.TempDir(), "s1")
	existing := models.NewSnapshot()
	existing.Cycles = []models.Cycle{models.NewCycle(models.MustParseDate("2025-05-05"))}
	require.NoError(t, dst.Save(ctx, &existing))

	_, err := MigrateData(ctx, src, dst, false)
	require.ErrorIs(t, err, ErrDestinationNotEmpty)

	got, err := dst.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got.Cycles, 1, "destination must be untouched")

	summary, err := MigrateData(ctx, src, dst, true)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Cycles)
}

func TestIsDirNonEmpty(t *testing.T) {
	dir := t.TempDir()

	nonEmpty, err := IsDirNonEmpty(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.False(t, nonEmpty)

	nonEmpty, err = IsDirNonEmpty(dir)
	require.NoError(t, err)
	assert.False(t, nonEmpty)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "cycles.db"), []byte("x"), 0600))
	nonEmpty, err = IsDirNonEmpty(dir)
	require.NoError(t, err)
	assert.True(t, nonEmpty)
}
