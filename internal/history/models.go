// Package history accumulates daily per-station records so the forecaster
// and hotspot retraining can learn from more than the current snapshot.
package history

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when no history exists for a query.
var ErrNotFound = errors.New("history record not found")

// Record is one station's daily aggregate for one pollutant. The identity of
// a record is (StationUID, Pollutant, Date); re-ingesting the same day
// replaces the previous value, last write wins.
type Record struct {
	StationUID string
	Pollutant  string
	Date       time.Time // midnight UTC
	Value      float64
	Location   string
	Lat        float64
	Lon        float64
	UpdatedAt  time.Time
}

// Key returns the record's dedup identity.
func (r Record) Key() Key {
	return Key{StationUID: r.StationUID, Pollutant: r.Pollutant, Date: r.Date}
}

// Key identifies one record.
type Key struct {
	StationUID string
	Pollutant  string
	Date       time.Time
}

// Repository persists daily records.
type Repository interface {
	// Upsert writes records, replacing any existing record with the same
	// key.
	Upsert(ctx context.Context, records []Record) error

	// ByStation returns the records of one station and pollutant, oldest
	// first, bounded to the most recent limit days (0 means all).
	ByStation(ctx context.Context, stationUID, pollutant string, limit int) ([]Record, error)

	// ByLocation returns records whose location contains the query,
	// case-insensitively, oldest first.
	ByLocation(ctx context.Context, location, pollutant string, limit int) ([]Record, error)

	// Since returns all records of one pollutant on or after a date.
	Since(ctx context.Context, pollutant string, since time.Time) ([]Record, error)

	// Count returns the total number of stored records.
	Count(ctx context.Context) (int, error)
}
