// Package pollution defines the canonical measurement schema shared by all
// ingestion sources and analytic engines.
package pollution

import (
	"errors"
	"strings"
	"time"
)

// Domain errors.
var (
	ErrNoData           = errors.New("no measurement data available")
	ErrUnknownPollutant = errors.New("unknown pollutant")
	ErrInvalidBounds    = errors.New("invalid area-of-interest bounds")
)

// Pollutant identifies one air-quality measurable. Identifiers are
// canonically lower-case; normalizers fold source spellings onto these.
type Pollutant string

const (
	PM25 Pollutant = "pm25"
	PM10 Pollutant = "pm10"
	NO2  Pollutant = "no2"
	SO2  Pollutant = "so2"
	CO   Pollutant = "co"
	O3   Pollutant = "o3"
)

// Pollutants lists every supported pollutant in display order.
func Pollutants() []Pollutant {
	return []Pollutant{PM25, PM10, NO2, SO2, CO, O3}
}

// ParsePollutant canonicalizes a source spelling ("PM2.5", "NO₂", "pm25")
// to a supported Pollutant. Returns ErrUnknownPollutant for anything else.
func ParsePollutant(s string) (Pollutant, error) {
	folded := strings.ToLower(strings.TrimSpace(s))
	folded = strings.NewReplacer(".", "", "_", "", "-", "", " ", "").Replace(folded)
	switch folded {
	case "pm25", "pm2":
		return PM25, nil
	case "pm10":
		return PM10, nil
	case "no2", "nitrogendioxide":
		return NO2, nil
	case "so2", "sulphurdioxide", "sulfurdioxide":
		return SO2, nil
	case "co", "carbonmonoxide":
		return CO, nil
	case "o3", "ozone":
		return O3, nil
	}
	return "", ErrUnknownPollutant
}

// Measurement is the atomic unit of the fused dataset: one observation of one
// pollutant at one place and time. Measurements are immutable after creation;
// re-fetch cycles supersede them wholesale rather than updating in place.
type Measurement struct {
	Timestamp time.Time
	Lat       float64
	Lon       float64
	Pollutant Pollutant
	Value     float64
	Unit      string
	Source    string
	Location  string
	StationID string
}

// Bounds is a geographic area-of-interest box.
type Bounds struct {
	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64
}

// IndiaBounds returns the default area of interest covering India.
func IndiaBounds() Bounds {
	return Bounds{MinLat: 6.5, MaxLat: 37.5, MinLon: 68.0, MaxLon: 97.5}
}

// Validate reports whether the bounds describe a non-empty box with sane
// coordinates. Construction-time configuration errors are the only errors in
// the core allowed to abort a pipeline.
func (b Bounds) Validate() error {
	if b.MinLat >= b.MaxLat || b.MinLon >= b.MaxLon {
		return ErrInvalidBounds
	}
	if b.MinLat < -90 || b.MaxLat > 90 || b.MinLon < -180 || b.MaxLon > 180 {
		return ErrInvalidBounds
	}
	return nil
}

// Contains checks whether a coordinate lies inside the box.
func (b Bounds) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat &&
		lon >= b.MinLon && lon <= b.MaxLon
}
