package hotspot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsentry/airsentry/internal/pollution"
)

func testModel() *Model {
	return &Model{
		Pollutant: pollution.PM25,
		Means:     []float64{24.5, 78.2, 110.0},
		Stds:      []float64{5.1, 6.3, 48.7},
		Centroids: [][]float64{{-1, -1, -1}, {0, 0, 0}, {1, 1, 1}},
		Samples:   120,
		TrainedAt: time.Date(2026, 8, 20, 6, 0, 0, 0, time.UTC),
	}
}

func TestFileModelStore_RoundTrip(t *testing.T) {
	store, err := NewFileModelStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.Load(ctx, pollution.PM25)
	require.ErrorIs(t, err, ErrNoModel)

	model := testModel()
	require.NoError(t, store.Save(ctx, model))

	loaded, err := store.Load(ctx, pollution.PM25)
	require.NoError(t, err)
	assert.Equal(t, model, loaded)

	// Other pollutants are independent artifacts.
	_, err = store.Load(ctx, pollution.NO2)
	require.ErrorIs(t, err, ErrNoModel)
}

func TestFileModelStore_CorruptArtifact(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileModelStore(dir)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "hotspot_pm25.json"), []byte("{not json"), 0o644))

	_, err = store.Load(context.Background(), pollution.PM25)
	require.ErrorIs(t, err, ErrCorruptModel)
}

func TestFileModelStore_StructurallyInvalidArtifact(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileModelStore(dir)
	require.NoError(t, err)

	// Parses fine but fails validation: no centroids.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hotspot_pm25.json"),
		[]byte(`{"pollutant":"pm25","means":[0,0,0],"stds":[1,1,1],"centroids":[]}`), 0o644))

	_, err = store.Load(context.Background(), pollution.PM25)
	require.ErrorIs(t, err, ErrCorruptModel)
}

func TestFileModelStore_SaveRejectsInvalidModel(t *testing.T) {
	store, err := NewFileModelStore(t.TempDir())
	require.NoError(t, err)

	bad := testModel()
	bad.Stds = []float64{1, 0, 1}
	require.ErrorIs(t, store.Save(context.Background(), bad), ErrCorruptModel)
}
