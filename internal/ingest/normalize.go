package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/airsentry/airsentry/internal/pollution"
)

// Canonical column names of the measurement schema.
const (
	colTimestamp = "timestamp"
	colLatitude  = "latitude"
	colLongitude = "longitude"
	colParameter = "parameter"
	colValue     = "value"
	colUnit      = "unit"
	colLocation  = "location"
	colStationID = "station_id"
)

// defaultAliases fold common source spellings onto canonical column names.
var defaultAliases = map[string]string{
	"lat":         colLatitude,
	"lng":         colLongitude,
	"lon":         colLongitude,
	"long":        colLongitude,
	"date":        colTimestamp,
	"time":        colTimestamp,
	"datetime":    colTimestamp,
	"gas":         colParameter,
	"pollutant":   colParameter,
	"city":        colLocation,
	"station":     colLocation,
	"station_uid": colStationID,
	"uid":         colStationID,
}

// Schema describes how one source's tabular payload maps onto the canonical
// measurement schema.
type Schema struct {
	// Source identifier attached to every produced measurement.
	Source string

	// Aliases adds source-specific column renames on top of the defaults.
	Aliases map[string]string

	// DefaultUnit is attached when a row carries no unit column.
	DefaultUnit string

	// DefaultPollutant is assumed when a row carries no parameter column.
	// Empty means rows without a parameter are dropped.
	DefaultPollutant pollution.Pollutant
}

// RowError records one dropped row. Rows are dropped individually; a bad row
// never fails the batch.
type RowError struct {
	Index  int
	Field  string
	Reason string
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: field %q: %s", e.Index, e.Field, e.Reason)
}

// Result is the outcome of normalizing one raw payload: the rows that
// survived and the per-row failures, kept for observability.
type Result struct {
	Measurements []pollution.Measurement
	Dropped      []RowError
}

// Normalizer converts one source's raw tabular payload into canonical
// measurements. It is a pure transform; callers decide persistence.
type Normalizer struct {
	schema Schema
	clock  clockwork.Clock
	logger zerolog.Logger
}

// NewNormalizer creates a normalizer for one source schema.
func NewNormalizer(schema Schema, clock clockwork.Clock, logger zerolog.Logger) *Normalizer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Normalizer{schema: schema, clock: clock, logger: logger}
}

// Normalize converts raw rows to measurements. It fails with ErrSchema only
// when no row in the payload carries coordinates and a value; individual bad
// rows are reported in Result.Dropped and skipped.
func (n *Normalizer) Normalize(rows []map[string]any) (Result, error) {
	var res Result
	sawRequired := false

	for i, raw := range rows {
		row := n.canonicalize(raw)

		lat, latOK := toFloat(row[colLatitude])
		lon, lonOK := toFloat(row[colLongitude])
		value, valOK := toFloat(row[colValue])
		if latOK && lonOK && valOK {
			sawRequired = true
		} else {
			res.Dropped = append(res.Dropped, RowError{
				Index:  i,
				Field:  firstMissing(latOK, lonOK, valOK),
				Reason: "missing or non-numeric",
			})
			continue
		}

		p, err := n.rowPollutant(row)
		if err != nil {
			res.Dropped = append(res.Dropped, RowError{Index: i, Field: colParameter, Reason: err.Error()})
			continue
		}

		ts, fellBack := n.rowTimestamp(row)
		if fellBack {
			n.logger.Warn().
				Str("source", n.schema.Source).
				Int("row", i).
				Msg("unparsable timestamp, coerced to now")
		}

		unit, _ := row[colUnit].(string)
		if unit == "" {
			unit = n.schema.DefaultUnit
			if unit == "" {
				unit = pollution.Config(p).Unit
			}
		}
		location, _ := row[colLocation].(string)
		stationID := toString(row[colStationID])

		res.Measurements = append(res.Measurements, pollution.Measurement{
			Timestamp: ts,
			Lat:       lat,
			Lon:       lon,
			Pollutant: p,
			Value:     value,
			Unit:      unit,
			Source:    n.schema.Source,
			Location:  location,
			StationID: stationID,
		})
	}

	if len(rows) > 0 && !sawRequired {
		return Result{}, fmt.Errorf("source %s: %w", n.schema.Source, ErrSchema)
	}

	if len(res.Dropped) > 0 {
		n.logger.Warn().
			Str("source", n.schema.Source).
			Int("dropped", len(res.Dropped)).
			Int("kept", len(res.Measurements)).
			Msg("normalization dropped rows")
	}

	return res, nil
}

// canonicalize renames a raw row's keys onto the canonical schema, applying
// source-specific aliases first and the shared defaults second.
func (n *Normalizer) canonicalize(raw map[string]any) map[string]any {
	row := make(map[string]any, len(raw))
	for k, v := range raw {
		key := strings.ToLower(strings.TrimSpace(k))
		if canonical, ok := n.schema.Aliases[key]; ok {
			key = canonical
		} else if canonical, ok := defaultAliases[key]; ok {
			key = canonical
		}
		row[key] = v
	}
	return row
}

func (n *Normalizer) rowPollutant(row map[string]any) (pollution.Pollutant, error) {
	raw, ok := row[colParameter].(string)
	if !ok || raw == "" {
		if n.schema.DefaultPollutant != "" {
			return n.schema.DefaultPollutant, nil
		}
		return "", pollution.ErrUnknownPollutant
	}
	return pollution.ParsePollutant(raw)
}

// rowTimestamp parses the row timestamp into UTC. Unparsable timestamps are
// coerced to the injected clock's now: one bad timestamp must not fail the
// batch. The second return reports whether the fallback was taken.
func (n *Normalizer) rowTimestamp(row map[string]any) (time.Time, bool) {
	switch v := row[colTimestamp].(type) {
	case time.Time:
		return v.UTC(), false
	case string:
		for _, layout := range []string{
			time.RFC3339,
			"2006-01-02T15:04:05",
			"2006-01-02 15:04:05",
			"2006-01-02",
		} {
			if ts, err := time.Parse(layout, v); err == nil {
				return ts.UTC(), false
			}
		}
	}
	return n.clock.Now().UTC(), true
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

func toString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}

func firstMissing(latOK, lonOK, valOK bool) string {
	switch {
	case !latOK:
		return colLatitude
	case !lonOK:
		return colLongitude
	default:
		return colValue
	}
}
