// Package worker drives the periodic refresh pipeline: collect sources,
// fuse, publish the snapshot, fold history, retrain models, refresh weather.
package worker

import (
	"time"
)

// WeatherPoint is one city whose current conditions the pipeline keeps warm
// for the advection and influence engines.
type WeatherPoint struct {
	Name string
	Lat  float64
	Lon  float64
}

// RefreshConfig holds configuration for the refresh pipeline.
type RefreshConfig struct {
	// WeatherPoints are the cities to keep weather for. If empty, uses
	// DefaultWeatherPoints.
	WeatherPoints []WeatherPoint

	// Timeout bounds one full refresh cycle.
	// Default: 5 minutes
	Timeout time.Duration

	// Interval between periodic refresh cycles.
	// Default: 30 minutes
	Interval time.Duration

	// AccumulateHistory enables folding each snapshot into the daily
	// history store.
	// Default: true
	AccumulateHistory bool

	// RetrainHotspots enables hotspot model retraining after each cycle.
	// Default: true
	RetrainHotspots bool

	// RefreshWeather enables refreshing current conditions per city.
	// Default: true
	RefreshWeather bool

	// SyntheticFallback, when set, generates synthetic data for a cycle
	// in which every real source came back empty. Never enabled in
	// production; demo and cold-start environments only.
	SyntheticFallback bool
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		WeatherPoints:     DefaultWeatherPoints(),
		Timeout:           5 * time.Minute,
		Interval:          30 * time.Minute,
		AccumulateHistory: true,
		RetrainHotspots:   true,
		RefreshWeather:    true,
	}
}

// DefaultWeatherPoints returns the major cities inside the area of interest.
// One point per city is enough: the weather service's grid cache covers the
// surrounding stations.
func DefaultWeatherPoints() []WeatherPoint {
	return []WeatherPoint{
		{Name: "Delhi", Lat: 28.6139, Lon: 77.2090},
		{Name: "Mumbai", Lat: 19.0760, Lon: 72.8777},
		{Name: "Kolkata", Lat: 22.5726, Lon: 88.3639},
		{Name: "Chennai", Lat: 13.0827, Lon: 80.2707},
		{Name: "Bangalore", Lat: 12.9716, Lon: 77.5946},
		{Name: "Hyderabad", Lat: 17.3850, Lon: 78.4867},
		{Name: "Ahmedabad", Lat: 23.0225, Lon: 72.5714},
		{Name: "Pune", Lat: 18.5204, Lon: 73.8567},
		{Name: "Lucknow", Lat: 26.8467, Lon: 80.9462},
		{Name: "Kanpur", Lat: 26.4499, Lon: 80.3319},
		{Name: "Jaipur", Lat: 26.9124, Lon: 75.7873},
		{Name: "Patna", Lat: 25.5941, Lon: 85.1376},
	}
}

// withDefaults fills zero fields.
func (c RefreshConfig) withDefaults() RefreshConfig {
	if len(c.WeatherPoints) == 0 {
		c.WeatherPoints = DefaultWeatherPoints()
	}
	if c.Timeout == 0 {
		c.Timeout = 5 * time.Minute
	}
	if c.Interval == 0 {
		c.Interval = 30 * time.Minute
	}
	return c
}
