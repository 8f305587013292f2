// Package weather provides the meteorological context the analytic engines
// depend on: wind for advection and influence ranking, precipitation for
// washout effects.
package weather

import (
	"errors"
	"math"
	"time"
)

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrNoDataForLocation   = errors.New("no weather data for location")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
)

// Observation represents weather data at a specific point and time.
type Observation struct {
	Lat float64
	Lon float64

	// Temperature in Celsius.
	Temperature float64

	// Humidity percentage (0-100).
	Humidity float64

	// WindSpeed in m/s; WindDirection in meteorological degrees, the
	// direction the wind blows FROM (0=N, 90=E).
	WindSpeed     float64
	WindDirection float64

	// Precipitation rate in mm/h.
	Precipitation float64

	ObservedAt time.Time
	FetchedAt  time.Time
}

// WindComponents returns the U (eastward) and V (northward) components of
// the wind vector. The meteorological convention reports where wind comes
// FROM, so a northerly (dir=0) blows southward: U=0, V=-speed.
func (o *Observation) WindComponents() (u, v float64) {
	rad := o.WindDirection * math.Pi / 180
	return -o.WindSpeed * math.Sin(rad), -o.WindSpeed * math.Cos(rad)
}

// WindCategory categorizes wind speed for air quality impact assessment.
type WindCategory string

const (
	WindCalm     WindCategory = "CALM"     // < 1 m/s - pollutants accumulate
	WindLight    WindCategory = "LIGHT"    // 1-3 m/s - minimal dispersion
	WindModerate WindCategory = "MODERATE" // 3-8 m/s - good dispersion
	WindStrong   WindCategory = "STRONG"   // > 8 m/s - excellent dispersion
)

// GetWindCategory returns the wind category for the observation.
func (o *Observation) GetWindCategory() WindCategory {
	switch {
	case o.WindSpeed < 1:
		return WindCalm
	case o.WindSpeed < 3:
		return WindLight
	case o.WindSpeed < 8:
		return WindModerate
	default:
		return WindStrong
	}
}
