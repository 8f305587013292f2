package pollution

// Category grades a value against per-pollutant health thresholds.
type Category string

const (
	CategoryGood               Category = "good"
	CategoryModerate           Category = "moderate"
	CategoryUnhealthySensitive Category = "unhealthy_sensitive"
	CategoryUnhealthy          Category = "unhealthy"
	CategoryVeryUnhealthy      Category = "very_unhealthy"
	CategoryHazardous          Category = "hazardous"
)

// Thresholds holds the upper bound of each category band, in the
// pollutant's unit. Values above VeryUnhealthy are hazardous.
type Thresholds struct {
	Good               float64
	Moderate           float64
	UnhealthySensitive float64
	Unhealthy          float64
	VeryUnhealthy      float64
}

// GasConfig carries per-pollutant display and validation metadata.
type GasConfig struct {
	Name       string
	Unit       string
	MaxScale   float64
	Thresholds Thresholds

	// PredictionDefault is returned by the spatial predictor when no
	// measurements exist for the pollutant.
	PredictionDefault float64
}

var gasConfigs = map[Pollutant]GasConfig{
	PM25: {
		Name: "PM2.5", Unit: "µg/m³", MaxScale: 250,
		Thresholds:        Thresholds{Good: 50, Moderate: 100, UnhealthySensitive: 150, Unhealthy: 200, VeryUnhealthy: 300},
		PredictionDefault: 85,
	},
	PM10: {
		Name: "PM10", Unit: "µg/m³", MaxScale: 350,
		Thresholds:        Thresholds{Good: 100, Moderate: 200, UnhealthySensitive: 250, Unhealthy: 350, VeryUnhealthy: 430},
		PredictionDefault: 120,
	},
	NO2: {
		Name: "NO₂", Unit: "µg/m³", MaxScale: 200,
		Thresholds:        Thresholds{Good: 40, Moderate: 80, UnhealthySensitive: 120, Unhealthy: 160, VeryUnhealthy: 200},
		PredictionDefault: 45,
	},
	SO2: {
		Name: "SO₂", Unit: "µg/m³", MaxScale: 100,
		Thresholds:        Thresholds{Good: 20, Moderate: 40, UnhealthySensitive: 60, Unhealthy: 80, VeryUnhealthy: 100},
		PredictionDefault: 20,
	},
	CO: {
		Name: "CO", Unit: "mg/m³", MaxScale: 10,
		Thresholds:        Thresholds{Good: 1, Moderate: 2, UnhealthySensitive: 4, Unhealthy: 6, VeryUnhealthy: 10},
		PredictionDefault: 1.2,
	},
	O3: {
		Name: "O₃", Unit: "µg/m³", MaxScale: 200,
		Thresholds:        Thresholds{Good: 60, Moderate: 120, UnhealthySensitive: 160, Unhealthy: 200, VeryUnhealthy: 240},
		PredictionDefault: 35,
	},
}

// categoryColors maps each category to its conventional AQI display color.
var categoryColors = map[Category]string{
	CategoryGood:               "#00E400",
	CategoryModerate:           "#FFFF00",
	CategoryUnhealthySensitive: "#FF7E00",
	CategoryUnhealthy:          "#FF0000",
	CategoryVeryUnhealthy:      "#8F3F97",
	CategoryHazardous:          "#7E0023",
}

// Config returns the configuration for a pollutant. Unknown pollutants fall
// back to PM2.5, the primary pollutant of the system.
func Config(p Pollutant) GasConfig {
	if cfg, ok := gasConfigs[p]; ok {
		return cfg
	}
	return gasConfigs[PM25]
}

// PlausibleRange returns the accepted value range for a pollutant. Rows
// outside this range are discarded during fusion, never clamped.
func PlausibleRange(p Pollutant) (min, max float64) {
	return 0, Config(p).MaxScale * 2
}

// InPlausibleRange reports whether a value passes the sanity filter.
func InPlausibleRange(p Pollutant, value float64) bool {
	min, max := PlausibleRange(p)
	return value >= min && value <= max
}

// CategoryFor grades a value against the pollutant's thresholds.
func CategoryFor(p Pollutant, value float64) Category {
	t := Config(p).Thresholds
	switch {
	case value <= t.Good:
		return CategoryGood
	case value <= t.Moderate:
		return CategoryModerate
	case value <= t.UnhealthySensitive:
		return CategoryUnhealthySensitive
	case value <= t.Unhealthy:
		return CategoryUnhealthy
	case value <= t.VeryUnhealthy:
		return CategoryVeryUnhealthy
	default:
		return CategoryHazardous
	}
}

// ColorFor returns the display color for a value of the given pollutant.
func ColorFor(p Pollutant, value float64) string {
	return categoryColors[CategoryFor(p, value)]
}
