// Package forecast projects the next 24 hours of pollution for a city from
// its observed level and a diurnal activity profile. It is a heuristic
// extrapolation, honest about being one: the mode field tells callers
// whether the city's own data or a regional baseline drove the numbers.
package forecast

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/airsentry/airsentry/internal/pollution"
)

const (
	// Horizon is the number of hourly points produced.
	Horizon = 24

	// minObservedRows is how many city rows the snapshot must hold before
	// the observed mean replaces the regional baseline.
	minObservedRows = 10

	// minObservedStd floors the spread used for noise when observed data
	// is suspiciously flat.
	minObservedStd = 10.0

	// noiseFactor scales the Gaussian noise relative to the city spread.
	noiseFactor = 0.12

	// driftPerHour is the slow buildup applied past the 12th hour.
	driftPerHour = 0.005

	clampMin = 15.0
	clampMax = 450.0
)

// Forecast modes.
const (
	ModeObserved = "observed"
	ModeBaseline = "baseline"
)

// baseline is a city's typical level and spread for the primary pollutant.
type baseline struct {
	mean float64
	std  float64
}

var cityBaselines = map[string]baseline{
	"delhi":         {180, 45},
	"mumbai":        {95, 25},
	"bangalore":     {65, 18},
	"chennai":       {55, 15},
	"kolkata":       {120, 32},
	"hyderabad":     {75, 20},
	"pune":          {70, 18},
	"ahmedabad":     {110, 28},
	"lucknow":       {150, 40},
	"patna":         {170, 42},
	"jaipur":        {130, 35},
	"kanpur":        {160, 38},
	"bhopal":        {85, 22},
	"surat":         {90, 24},
	"visakhapatnam": {50, 14},
}

var defaultBaseline = baseline{85, 25}

// Traffic peaks hit metros hardest; industrial cities stagnate at night
// instead of clearing.
var (
	metroCities      = set("delhi", "mumbai", "bangalore", "kolkata", "chennai", "hyderabad")
	industrialCities = set("kanpur", "surat", "ahmedabad", "lucknow")
)

func set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// Result is one 24-hour projection.
type Result struct {
	City        string
	Pollutant   pollution.Pollutant
	Labels      []string  // HH:MM, one per hour ahead
	Predictions []float64 // same length as Labels
	Mode        string    // ModeObserved or ModeBaseline
	CurrentMean float64
	Note        string
}

// ForecasterConfig holds configuration for the forecaster.
type ForecasterConfig struct {
	Clock  clockwork.Clock
	Rand   *rand.Rand
	Logger zerolog.Logger
}

// Forecaster produces 24-hour city projections. Clock and noise source are
// injected so tests pin both the diurnal profile and the jitter.
type Forecaster struct {
	clock  clockwork.Clock
	rng    *rand.Rand
	logger zerolog.Logger
}

// NewForecaster creates a forecaster.
func NewForecaster(cfg ForecasterConfig) *Forecaster {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Forecaster{clock: clock, rng: rng, logger: cfg.Logger}
}

// Forecast projects the next 24 hourly values for a city. When the snapshot
// carries at least ten rows matching the city, their mean and spread drive
// the projection; otherwise the regional baseline does. There is always an
// answer.
func (f *Forecaster) Forecast(snap *pollution.Snapshot, city string, pollutant pollution.Pollutant) Result {
	cityKey := strings.ToLower(strings.TrimSpace(city))

	base, ok := cityBaselines[cityKey]
	if !ok {
		base = defaultBaseline
	}

	mode := ModeBaseline
	note := fmt.Sprintf("using %s regional baseline", city)

	rows := snap.ForLocation(cityKey, pollutant)
	if len(rows) >= minObservedRows {
		var sum float64
		for _, m := range rows {
			sum += m.Value
		}
		mean := sum / float64(len(rows))

		var sq float64
		for _, m := range rows {
			sq += (m.Value - mean) * (m.Value - mean)
		}
		std := math.Sqrt(sq / float64(len(rows)-1))

		base = baseline{mean: mean, std: math.Max(std, minObservedStd)}
		mode = ModeObserved
		note = fmt.Sprintf("based on %d %s readings", len(rows), city)
	}

	now := f.clock.Now()
	labels := make([]string, 0, Horizon)
	predictions := make([]float64, 0, Horizon)

	for i := 1; i <= Horizon; i++ {
		at := now.Add(time.Duration(i) * time.Hour)
		labels = append(labels, at.Format("15:04"))

		pred := base.mean*diurnalMultiplier(at.Hour(), cityKey) +
			f.rng.NormFloat64()*base.std*noiseFactor
		if i > 12 {
			pred *= 1 + float64(i-12)*driftPerHour
		}
		pred = math.Min(math.Max(pred, clampMin), clampMax)
		predictions = append(predictions, math.Round(pred*10)/10)
	}

	f.logger.Debug().
		Str("city", city).
		Str("mode", mode).
		Float64("mean", base.mean).
		Msg("forecast generated")

	return Result{
		City:        city,
		Pollutant:   pollutant,
		Labels:      labels,
		Predictions: predictions,
		Mode:        mode,
		CurrentMean: math.Round(base.mean*10) / 10,
		Note:        note,
	}
}

// diurnalMultiplier encodes the daily activity profile: rush hours push
// levels up (hardest in metros), afternoons disperse, early mornings clear,
// late nights stagnate in industrial cities.
func diurnalMultiplier(hour int, city string) float64 {
	switch {
	case hour >= 7 && hour <= 10:
		if metroCities[city] {
			return 1.25
		}
		return 1.15
	case hour >= 17 && hour <= 21:
		if metroCities[city] {
			return 1.35
		}
		return 1.20
	case hour >= 22 || hour <= 2:
		if industrialCities[city] {
			return 1.1
		}
		return 0.9
	case hour > 2 && hour <= 5:
		return 0.7
	case hour >= 11 && hour <= 16:
		return 0.95
	default:
		return 1.0
	}
}
