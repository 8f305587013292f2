package history

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsentry/airsentry/internal/pollution"
)

func m(station string, value float64, ts time.Time) pollution.Measurement {
	return pollution.Measurement{
		Timestamp: ts,
		Lat:       28.61,
		Lon:       77.21,
		Pollutant: pollution.PM25,
		Value:     value,
		Source:    "waqi",
		Location:  "Delhi",
		StationID: station,
	}
}

func TestAccumulator_LastSeenWinsWithinBatch(t *testing.T) {
	repo := NewMemoryRepository()
	acc := NewAccumulator(AccumulatorConfig{Repository: repo, Logger: zerolog.Nop()})

	ts := time.Date(2026, 8, 20, 6, 0, 0, 0, time.UTC)
	n, err := acc.Accumulate(context.Background(), []pollution.Measurement{
		m("2554", 140, ts),
		m("2554", 182, ts.Add(2*time.Hour)), // same station, same day
		m("9001", 95, ts),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	records, err := repo.ByStation(context.Background(), "2554", "pm25", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, 182.0, records[0].Value, "later row in the batch must win")
	assert.Equal(t, time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC), records[0].Date)
}

func TestAccumulator_ReingestIsIdempotent(t *testing.T) {
	repo := NewMemoryRepository()
	acc := NewAccumulator(AccumulatorConfig{Repository: repo, Logger: zerolog.Nop()})

	ts := time.Date(2026, 8, 20, 6, 0, 0, 0, time.UTC)
	batch := []pollution.Measurement{m("2554", 140, ts), m("9001", 95, ts)}

	_, err := acc.Accumulate(context.Background(), batch)
	require.NoError(t, err)
	_, err = acc.Accumulate(context.Background(), batch)
	require.NoError(t, err)

	count, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestAccumulator_SyntheticStationKeyFromCoordinates(t *testing.T) {
	repo := NewMemoryRepository()
	acc := NewAccumulator(AccumulatorConfig{Repository: repo, Logger: zerolog.Nop()})

	ts := time.Date(2026, 8, 20, 6, 0, 0, 0, time.UTC)
	row := m("", 52.4, ts)
	_, err := acc.Accumulate(context.Background(), []pollution.Measurement{row})
	require.NoError(t, err)

	records, err := repo.ByStation(context.Background(), "waqi:28.610,77.210", "pm25", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestMemoryRepository_Queries(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	day := func(d int) time.Time { return time.Date(2026, 8, d, 0, 0, 0, 0, time.UTC) }
	require.NoError(t, repo.Upsert(ctx, []Record{
		{StationUID: "a", Pollutant: "pm25", Date: day(18), Value: 100, Location: "Anand Vihar, Delhi"},
		{StationUID: "a", Pollutant: "pm25", Date: day(19), Value: 120, Location: "Anand Vihar, Delhi"},
		{StationUID: "a", Pollutant: "pm25", Date: day(20), Value: 150, Location: "Anand Vihar, Delhi"},
		{StationUID: "b", Pollutant: "pm25", Date: day(20), Value: 90, Location: "Bandra, Mumbai"},
		{StationUID: "a", Pollutant: "no2", Date: day(20), Value: 45, Location: "Anand Vihar, Delhi"},
	}))

	t.Run("by station with limit", func(t *testing.T) {
		records, err := repo.ByStation(ctx, "a", "pm25", 2)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, day(19), records[0].Date, "oldest first, most recent window")
		assert.Equal(t, day(20), records[1].Date)
	})

	t.Run("by location is case-insensitive substring", func(t *testing.T) {
		records, err := repo.ByLocation(ctx, "delhi", "pm25", 0)
		require.NoError(t, err)
		assert.Len(t, records, 3)
	})

	t.Run("since filters by date", func(t *testing.T) {
		records, err := repo.Since(ctx, "pm25", day(20))
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})
}
