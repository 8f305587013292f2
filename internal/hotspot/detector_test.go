package hotspot

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsentry/airsentry/internal/pollution"
)

func m(lat, lon, value float64, location string) pollution.Measurement {
	return pollution.Measurement{
		Lat: lat, Lon: lon,
		Pollutant: pollution.PM25,
		Value:     value,
		Location:  location,
	}
}

func snap(ms ...pollution.Measurement) *pollution.Snapshot {
	return &pollution.Snapshot{Measurements: ms}
}

func newDetector(t *testing.T) *Detector {
	t.Helper()
	return NewDetector(DetectorConfig{Models: NewMemoryModelStore(), Logger: zerolog.Nop()})
}

func TestDetectGrid(t *testing.T) {
	d := newDetector(t)

	// Two stations in the same 0.05° cell (hot), two in another (milder),
	// one lone station that must be ignored.
	hotspots := d.DetectGrid(snap(
		m(28.610, 77.210, 200, "Anand Vihar, Delhi"),
		m(28.612, 77.212, 220, "Anand Vihar, Delhi"),
		m(19.080, 72.880, 90, "Bandra, Mumbai"),
		m(19.082, 72.882, 110, "Bandra, Mumbai"),
		m(13.080, 80.270, 60, "Chennai"),
	), pollution.PM25)

	require.Len(t, hotspots, 2)
	assert.Equal(t, 1, hotspots[0].Rank)
	assert.InDelta(t, 210, hotspots[0].Value, 1e-9)
	assert.Equal(t, "Anand Vihar, Delhi", hotspots[0].Location)
	assert.Equal(t, 2, hotspots[0].Count)
	assert.Equal(t, 0, hotspots[0].ClusterID)

	assert.Equal(t, 2, hotspots[1].Rank)
	assert.InDelta(t, 100, hotspots[1].Value, 1e-9)
}

func TestDetectGrid_DenseRanksAndChunkedClusterIDs(t *testing.T) {
	d := newDetector(t)

	var ms []pollution.Measurement
	// 12 cells well apart, descending means 240, 230, ...
	for i := 0; i < 12; i++ {
		lat := 10.0 + float64(i)
		v := 240.0 - float64(i)*10
		ms = append(ms, m(lat, 77.0, v, ""), m(lat+0.001, 77.001, v, ""))
	}

	hotspots := d.DetectGrid(snap(ms...), pollution.PM25)
	require.Len(t, hotspots, 12)
	assert.Equal(t, 0, hotspots[0].ClusterID)
	assert.Equal(t, 0, hotspots[4].ClusterID)
	assert.Equal(t, 1, hotspots[5].ClusterID, "rank 6 starts the second chunk")
	assert.Equal(t, 2, hotspots[11].ClusterID)
}

func TestDetectGrid_EmptySnapshot(t *testing.T) {
	d := newDetector(t)
	assert.Empty(t, d.DetectGrid(snap(), pollution.PM25))
}

func TestDetectClusters_NoModelDegradesToEmpty(t *testing.T) {
	d := newDetector(t)

	hotspots := d.DetectClusters(context.Background(), snap(
		m(28.61, 77.21, 200, "Delhi"),
		m(28.62, 77.22, 210, "Delhi"),
	), pollution.PM25)

	require.NotNil(t, hotspots, "degraded result is empty, not nil")
	assert.Empty(t, hotspots)
}

func TestTrainAndDetectClusters(t *testing.T) {
	d := newDetector(t)
	ctx := context.Background()

	// Two well-separated groups: a severe one around Delhi and a mild
	// one around Chennai, padded to clear the training floor.
	var ms []pollution.Measurement
	for i := 0; i < 8; i++ {
		ms = append(ms, m(28.6+float64(i)*0.01, 77.2, 200+float64(i), "Delhi"))
		ms = append(ms, m(13.0+float64(i)*0.01, 80.2, 50+float64(i), "Chennai"))
	}

	require.NoError(t, d.Retrain(ctx, ms, pollution.PM25))

	hotspots := d.DetectClusters(ctx, snap(ms...), pollution.PM25)
	require.NotEmpty(t, hotspots)
	assert.Equal(t, 1, hotspots[0].Rank)
	assert.Greater(t, hotspots[0].Value, 150.0, "worst cluster must be the Delhi group")
	assert.Equal(t, "Delhi", hotspots[0].Location)

	for i := 1; i < len(hotspots); i++ {
		assert.GreaterOrEqual(t, hotspots[i-1].Value, hotspots[i].Value, "ranking is worst first")
	}
}

func TestRetrain_NotEnoughDataKeepsOldModel(t *testing.T) {
	store := NewMemoryModelStore()
	d := NewDetector(DetectorConfig{Models: store, Logger: zerolog.Nop()})
	ctx := context.Background()

	var ms []pollution.Measurement
	for i := 0; i < 12; i++ {
		ms = append(ms, m(20.0+float64(i)*0.5, 78.0, 100+float64(i), ""))
	}
	require.NoError(t, d.Retrain(ctx, ms, pollution.PM25))
	before, err := store.Load(ctx, pollution.PM25)
	require.NoError(t, err)

	// A tiny batch must not clobber the trained model.
	require.NoError(t, d.Retrain(ctx, ms[:3], pollution.PM25))
	after, err := store.Load(ctx, pollution.PM25)
	require.NoError(t, err)
	assert.Equal(t, before.TrainedAt, after.TrainedAt)
}

func TestTrain_Deterministic(t *testing.T) {
	var ms []pollution.Measurement
	for i := 0; i < 20; i++ {
		ms = append(ms, m(20.0+float64(i%5), 70.0+float64(i/5), 50+float64(i*7%120), ""))
	}

	a, err := Train(ms, pollution.PM25, DefaultClusters)
	require.NoError(t, err)
	b, err := Train(ms, pollution.PM25, DefaultClusters)
	require.NoError(t, err)

	assert.Equal(t, a.Centroids, b.Centroids)
	assert.Equal(t, a.Means, b.Means)
	assert.Equal(t, a.Stds, b.Stds)
}

func TestModel_Validate(t *testing.T) {
	valid := &Model{
		Pollutant: pollution.PM25,
		Means:     []float64{20, 77, 100},
		Stds:      []float64{1, 1, 10},
		Centroids: [][]float64{{0, 0, 0}, {1, 1, 1}},
	}
	assert.NoError(t, valid.Validate())

	assert.ErrorIs(t, (&Model{Means: []float64{1}, Stds: []float64{1, 1, 1}}).Validate(), ErrCorruptModel)
	assert.ErrorIs(t, (&Model{
		Means: []float64{0, 0, 0}, Stds: []float64{1, 0, 1},
		Centroids: [][]float64{{0, 0, 0}},
	}).Validate(), ErrCorruptModel)
}
