package predict

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/airsentry/airsentry/internal/pollution"
)

func snapshot(ms ...pollution.Measurement) *pollution.Snapshot {
	return &pollution.Snapshot{Measurements: ms}
}

func station(lat, lon, value float64) pollution.Measurement {
	return pollution.Measurement{Lat: lat, Lon: lon, Pollutant: pollution.PM25, Value: value}
}

func TestIDW_NearestStationDominates(t *testing.T) {
	idw := NewIDW(IDWConfig{Logger: zerolog.Nop()})

	snap := snapshot(
		station(28.60, 77.20, 200),
		station(28.90, 77.50, 50),
	)

	pred := idw.Predict(snap, 28.61, 77.21, pollution.PM25)
	assert.Equal(t, 2, pred.StationsUsed)
	assert.Greater(t, pred.Value, 150.0, "estimate must lean toward the near station")
}

func TestIDW_QueryOnStationReturnsNearlyItsValue(t *testing.T) {
	idw := NewIDW(IDWConfig{Logger: zerolog.Nop()})

	snap := snapshot(
		station(28.60, 77.20, 180),
		station(30.00, 79.00, 40),
	)

	pred := idw.Predict(snap, 28.60, 77.20, pollution.PM25)
	assert.InDelta(t, 180, pred.Value, 5)
}

func TestIDW_UsesAtMostFiveNeighbors(t *testing.T) {
	idw := NewIDW(IDWConfig{Logger: zerolog.Nop()})

	var ms []pollution.Measurement
	for i := 0; i < 10; i++ {
		ms = append(ms, station(20.0+float64(i)*0.5, 78.0, 100))
	}

	pred := idw.Predict(snapshot(ms...), 20.0, 78.0, pollution.PM25)
	assert.Equal(t, 5, pred.StationsUsed)
}

func TestIDW_NoDataReturnsDefault(t *testing.T) {
	idw := NewIDW(IDWConfig{Logger: zerolog.Nop()})

	tests := []struct {
		pollutant pollution.Pollutant
		want      float64
	}{
		{pollution.PM25, 85},
		{pollution.PM10, 120},
		{pollution.NO2, 45},
		{pollution.SO2, 20},
		{pollution.O3, 35},
	}
	for _, tc := range tests {
		pred := idw.Predict(snapshot(), 28.6, 77.2, tc.pollutant)
		assert.Equal(t, tc.want, pred.Value, "pollutant %s", tc.pollutant)
		assert.Equal(t, 0, pred.StationsUsed)
	}

	// CO default 1.2 is below the floor; the clamp wins.
	pred := idw.Predict(snapshot(), 28.6, 77.2, pollution.CO)
	assert.Equal(t, clampMin, pred.Value)
}

func TestIDW_ClampsToCredibleRange(t *testing.T) {
	idw := NewIDW(IDWConfig{Logger: zerolog.Nop()})

	high := idw.Predict(snapshot(station(28.6, 77.2, 480)), 28.6, 77.2, pollution.PM25)
	assert.Equal(t, clampMax, high.Value)

	low := idw.Predict(snapshot(station(28.6, 77.2, 1)), 28.6, 77.2, pollution.PM25)
	assert.Equal(t, clampMin, low.Value)
}

func TestIDW_EstimateWithinNeighborRange(t *testing.T) {
	idw := NewIDW(IDWConfig{Logger: zerolog.Nop()})

	snap := snapshot(
		station(28.5, 77.1, 60),
		station(28.7, 77.3, 90),
		station(28.6, 77.5, 120),
	)

	pred := idw.Predict(snap, 28.6, 77.25, pollution.PM25)
	assert.GreaterOrEqual(t, pred.Value, 60.0)
	assert.LessOrEqual(t, pred.Value, 120.0)
	assert.Equal(t, pollution.CategoryFor(pollution.PM25, pred.Value), pred.Category)
}
