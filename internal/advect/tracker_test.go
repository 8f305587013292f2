package advect

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsentry/airsentry/internal/pollution"
	"github.com/airsentry/airsentry/internal/weather"
)

func measurement(lat, lon, value float64) pollution.Measurement {
	return pollution.Measurement{Lat: lat, Lon: lon, Pollutant: pollution.PM25, Value: value}
}

func TestTrack_WesterlyDriftsEast(t *testing.T) {
	tracker := NewTracker(TrackerConfig{Logger: zerolog.Nop()})

	// Westerly wind (blowing FROM 270°) pushes the plume eastward.
	obs := &weather.Observation{Lat: 28.6, Lon: 77.2, WindSpeed: 5, WindDirection: 270}

	points := tracker.Track([]pollution.Measurement{measurement(28.61, 77.21, 182)}, []*weather.Observation{obs})
	require.Len(t, points, DefaultHorizonHours)

	first := points[0]
	assert.Equal(t, 1, first.HoursAhead)
	assert.InDelta(t, 77.21+5*0.01, first.PredictedLon, 1e-9)
	assert.InDelta(t, 28.61, first.PredictedLat, 1e-9)
	assert.Equal(t, 182.0, first.Value, "concentration is carried unchanged")

	last := points[len(points)-1]
	assert.Equal(t, DefaultHorizonHours, last.HoursAhead)
	assert.InDelta(t, 77.21+5*0.12, last.PredictedLon, 1e-9, "displacement grows linearly")
}

func TestTrack_NortherlyDriftsSouth(t *testing.T) {
	tracker := NewTracker(TrackerConfig{Logger: zerolog.Nop(), HorizonHours: 1})

	obs := &weather.Observation{Lat: 28.6, Lon: 77.2, WindSpeed: 4, WindDirection: 0}

	points := tracker.Track([]pollution.Measurement{measurement(28.6, 77.2, 100)}, []*weather.Observation{obs})
	require.Len(t, points, 1)
	assert.InDelta(t, 28.6-4*0.01, points[0].PredictedLat, 1e-9)
	assert.InDelta(t, 77.2, points[0].PredictedLon, 1e-9)
}

func TestTrack_DistanceGateSkipsFarMeasurements(t *testing.T) {
	tracker := NewTracker(TrackerConfig{Logger: zerolog.Nop()})

	obs := &weather.Observation{Lat: 28.6, Lon: 77.2, WindSpeed: 5, WindDirection: 180}

	points := tracker.Track([]pollution.Measurement{
		measurement(28.7, 77.3, 150), // close, tracked
		measurement(13.0, 80.2, 80),  // Chennai, far beyond the gate
	}, []*weather.Observation{obs})

	require.Len(t, points, DefaultHorizonHours)
	assert.Equal(t, 28.7, points[0].OriginLat)
}

func TestTrack_NearestStationWins(t *testing.T) {
	tracker := NewTracker(TrackerConfig{Logger: zerolog.Nop(), HorizonHours: 1})

	delhi := &weather.Observation{Lat: 28.6, Lon: 77.2, WindSpeed: 5, WindDirection: 270}
	mumbai := &weather.Observation{Lat: 19.1, Lon: 72.9, WindSpeed: 2, WindDirection: 90}

	points := tracker.Track(
		[]pollution.Measurement{measurement(19.0, 72.8, 95)},
		[]*weather.Observation{delhi, mumbai},
	)
	require.Len(t, points, 1)
	assert.Equal(t, 2.0, points[0].WindSpeed, "the Mumbai station is nearest")
}

func TestTrack_NoObservations(t *testing.T) {
	tracker := NewTracker(TrackerConfig{Logger: zerolog.Nop()})

	assert.Nil(t, tracker.Track([]pollution.Measurement{measurement(28.6, 77.2, 100)}, nil))
	assert.Nil(t, tracker.Track([]pollution.Measurement{measurement(28.6, 77.2, 100)},
		[]*weather.Observation{nil}))
}
