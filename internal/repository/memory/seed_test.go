package memory

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/broiler/internal/domain/models"
)

const seedJSON = `{
  "flocks": [{"id": "F-01", "breed": "ross308", "placement_date": "2026-09-01T00:00:00Z",
              "growing_period_days": 42, "initial_count": 1000, "current_count": 990, "status": "active"}],
  "daily_records": [
    {"flock_id": "F-01", "day_number": 1, "mortality": 4, "feed_consumed_kg": 12.5, "feed_type": "starter", "average_weight_kg": null},
    {"flock_id": "F-01", "day_number": 7, "mortality": 2, "feed_consumed_kg": 30, "feed_type": "starter", "average_weight_kg": 0.19}
  ],
  "benchmarks": [{"breed": "ross308", "points": [{"day": 7, "weight_kg": 0.2}, {"day": 0, "weight_kg": 0.042}]}],
  "crate_types": [{"id": "std", "name": "Standard", "length_cm": 100, "width_cm": 60, "height_cm": 28, "tare_weight_kg": 2}]
}`

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reference.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadReferenceFile(t *testing.T) {
	ctx := context.Background()
	store, err := LoadReferenceFile(writeSeed(t, seedJSON))
	require.NoError(t, err)

	flock, err := store.GetFlock(ctx, "F-01")
	require.NoError(t, err)
	assert.Equal(t, 990, flock.CurrentCount)

	records, err := store.ListDailyRecords(ctx, "F-01")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.False(t, records[0].AverageWeight.IsWeighed())
	kg, ok := records[1].AverageWeight.Kg()
	require.True(t, ok)
	assert.Equal(t, 0.19, kg)

	curve, err := store.GetBenchmarkCurve(ctx, "ross308")
	require.NoError(t, err)
	assert.Equal(t, 0, curve.Points[0].Day)

	crate, err := store.GetCrateType(ctx, "std")
	require.NoError(t, err)
	assert.Equal(t, 2.0, crate.TareWeightKg)
}

func TestLoadReferenceFile_Errors(t *testing.T) {
	_, err := LoadReferenceFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = LoadReferenceFile(writeSeed(t, "{not json"))
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	_, err = LoadReferenceFile(writeSeed(t, `{"daily_records": [{"flock_id": "F-09", "day_number": 1}]}`))
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = LoadReferenceFile(writeSeed(t, `{"flocks": [{"id": "F-01", "initial_count": 0}]}`))
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
