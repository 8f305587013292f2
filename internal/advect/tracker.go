// Package advect projects where observed pollution will drift under current
// wind. It is a nowcast approximation: wind is assumed constant over the
// horizon, and displacement is linear in degree space.
package advect

import (
	"math"

	"github.com/rs/zerolog"

	"github.com/airsentry/airsentry/internal/pollution"
	"github.com/airsentry/airsentry/internal/weather"
)

const (
	// DefaultHorizonHours is how far ahead movement is projected.
	DefaultHorizonHours = 12

	// maxStationDistSq gates the nearest-weather-station match, in
	// squared degrees (2° ≈ 200km).
	maxStationDistSq = 4.0

	// degreesPerWindHour converts one hour of wind (m/s) into degrees of
	// displacement. Tuned for readable map arrows, not transport
	// modeling.
	degreesPerWindHour = 0.01
)

// TrajectoryPoint is one projected position of one measurement.
type TrajectoryPoint struct {
	OriginLat     float64
	OriginLon     float64
	PredictedLat  float64
	PredictedLon  float64
	HoursAhead    int
	Value         float64
	Pollutant     pollution.Pollutant
	WindSpeed     float64
	WindDirection float64
}

// TrackerConfig holds configuration for the tracker.
type TrackerConfig struct {
	Logger zerolog.Logger

	// HorizonHours is the projection length (default: 12).
	HorizonHours int
}

// Tracker projects snapshot measurements along the wind field described by
// a set of weather observations.
type Tracker struct {
	logger  zerolog.Logger
	horizon int
}

// NewTracker creates a tracker.
func NewTracker(cfg TrackerConfig) *Tracker {
	horizon := cfg.HorizonHours
	if horizon <= 0 {
		horizon = DefaultHorizonHours
	}
	return &Tracker{logger: cfg.Logger, horizon: horizon}
}

// Horizon returns the projection length in hours.
func (t *Tracker) Horizon() int { return t.horizon }

// Track projects every measurement against its nearest weather observation.
// Measurements with no observation within the distance gate are skipped; an
// empty result is legitimate and means the wind field does not cover the
// data.
func (t *Tracker) Track(measurements []pollution.Measurement, observations []*weather.Observation) []TrajectoryPoint {
	stations := make([]*weather.Observation, 0, len(observations))
	for _, obs := range observations {
		if obs != nil {
			stations = append(stations, obs)
		}
	}
	if len(stations) == 0 {
		return nil
	}

	var points []TrajectoryPoint
	skipped := 0

	for _, m := range measurements {
		nearest, distSq := nearestStation(stations, m.Lat, m.Lon)
		if distSq > maxStationDistSq {
			skipped++
			continue
		}

		u, v := nearest.WindComponents()
		for h := 1; h <= t.horizon; h++ {
			points = append(points, TrajectoryPoint{
				OriginLat:     m.Lat,
				OriginLon:     m.Lon,
				PredictedLat:  m.Lat + v*float64(h)*degreesPerWindHour,
				PredictedLon:  m.Lon + u*float64(h)*degreesPerWindHour,
				HoursAhead:    h,
				Value:         m.Value,
				Pollutant:     m.Pollutant,
				WindSpeed:     nearest.WindSpeed,
				WindDirection: nearest.WindDirection,
			})
		}
	}

	if skipped > 0 {
		t.logger.Debug().
			Int("skipped", skipped).
			Int("points", len(points)).
			Msg("measurements outside weather coverage skipped")
	}

	return points
}

func nearestStation(stations []*weather.Observation, lat, lon float64) (*weather.Observation, float64) {
	best := stations[0]
	bestDist := math.MaxFloat64
	for _, s := range stations {
		dLat := s.Lat - lat
		dLon := s.Lon - lon
		if d := dLat*dLat + dLon*dLon; d < bestDist {
			best, bestDist = s, d
		}
	}
	return best, bestDist
}
