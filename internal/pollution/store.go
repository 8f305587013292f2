package pollution

import (
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Snapshot is one published generation of the fused dataset. The refresh
// pipeline is the single writer; analytic consumers read whichever
// generation was current when their request arrived.
type Snapshot struct {
	Measurements []Measurement
	FetchedAt    time.Time
	SourceCounts map[string]int
}

// Empty reports whether the snapshot carries no data. An empty snapshot is a
// legitimate terminal state, signaled downstream as "no data available".
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Measurements) == 0
}

// ForPollutant returns the snapshot rows matching one pollutant.
func (s *Snapshot) ForPollutant(p Pollutant) []Measurement {
	if s == nil {
		return nil
	}
	var out []Measurement
	for _, m := range s.Measurements {
		if m.Pollutant == p {
			out = append(out, m)
		}
	}
	return out
}

// ForLocation returns rows of one pollutant whose location name contains the
// query, case-insensitively.
func (s *Snapshot) ForLocation(name string, p Pollutant) []Measurement {
	if s == nil {
		return nil
	}
	needle := strings.ToLower(strings.TrimSpace(name))
	var out []Measurement
	for _, m := range s.Measurements {
		if m.Pollutant == p && strings.Contains(strings.ToLower(m.Location), needle) {
			out = append(out, m)
		}
	}
	return out
}

// Store holds the current fused snapshot. Writes happen once per refresh
// cycle; reads are concurrent.
type Store struct {
	logger zerolog.Logger

	mu   sync.RWMutex
	snap *Snapshot
}

// NewStore creates an empty snapshot store.
func NewStore(logger zerolog.Logger) *Store {
	return &Store{logger: logger}
}

// Publish replaces the current snapshot with a new generation.
func (st *Store) Publish(measurements []Measurement, fetchedAt time.Time) {
	counts := make(map[string]int, 4)
	for _, m := range measurements {
		counts[m.Source]++
	}

	st.mu.Lock()
	st.snap = &Snapshot{
		Measurements: measurements,
		FetchedAt:    fetchedAt,
		SourceCounts: counts,
	}
	st.mu.Unlock()

	st.logger.Info().
		Int("rows", len(measurements)).
		Int("sources", len(counts)).
		Time("fetched_at", fetchedAt).
		Msg("fused snapshot published")
}

// Current returns the latest snapshot, or nil when no refresh has completed.
func (st *Store) Current() *Snapshot {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.snap
}

// Stats summarizes the values of one pollutant in a snapshot.
type Stats struct {
	Count  int
	Mean   float64
	Median float64
	Min    float64
	Max    float64
	Std    float64
}

// StatsFor computes summary statistics for one pollutant. Returns ErrNoData
// when the snapshot has no matching rows.
func (s *Snapshot) StatsFor(p Pollutant) (Stats, error) {
	rows := s.ForPollutant(p)
	if len(rows) == 0 {
		return Stats{}, ErrNoData
	}

	values := make([]float64, len(rows))
	var sum float64
	min, max := rows[0].Value, rows[0].Value
	for i, m := range rows {
		values[i] = m.Value
		sum += m.Value
		if m.Value < min {
			min = m.Value
		}
		if m.Value > max {
			max = m.Value
		}
	}
	mean := sum / float64(len(values))

	var sq float64
	for _, v := range values {
		sq += (v - mean) * (v - mean)
	}
	std := 0.0
	if len(values) > 1 {
		std = math.Sqrt(sq / float64(len(values)-1))
	}

	sort.Float64s(values)
	mid := len(values) / 2
	median := values[mid]
	if len(values)%2 == 0 {
		median = (values[mid-1] + values[mid]) / 2
	}

	return Stats{
		Count:  len(values),
		Mean:   mean,
		Median: median,
		Min:    min,
		Max:    max,
		Std:    std,
	}, nil
}
