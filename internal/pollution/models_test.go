package pollution

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePollutant(t *testing.T) {
	tests := []struct {
		in   string
		want Pollutant
		ok   bool
	}{
		{"pm25", PM25, true},
		{"PM2.5", PM25, true},
		{"pm2_5", PM25, true},
		{" PM10 ", PM10, true},
		{"NO2", NO2, true},
		{"nitrogendioxide", NO2, true},
		{"Ozone", O3, true},
		{"carbon monoxide", CO, true},
		{"so2", SO2, true},
		{"benzene", "", false},
		{"", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParsePollutant(tc.in)
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			} else {
				require.ErrorIs(t, err, ErrUnknownPollutant)
			}
		})
	}
}

func TestBounds_Validate(t *testing.T) {
	assert.NoError(t, IndiaBounds().Validate())
	assert.ErrorIs(t, Bounds{MinLat: 30, MaxLat: 10, MinLon: 68, MaxLon: 97}.Validate(), ErrInvalidBounds)
	assert.ErrorIs(t, Bounds{MinLat: -100, MaxLat: 10, MinLon: 68, MaxLon: 97}.Validate(), ErrInvalidBounds)
}

func TestCategoryFor(t *testing.T) {
	assert.Equal(t, CategoryGood, CategoryFor(PM25, 30))
	assert.Equal(t, CategoryGood, CategoryFor(PM25, 50), "boundary belongs to the lower band")
	assert.Equal(t, CategoryModerate, CategoryFor(PM25, 51))
	assert.Equal(t, CategoryHazardous, CategoryFor(PM25, 400))
	assert.Equal(t, CategoryModerate, CategoryFor(CO, 1.5))
}

func TestConfig_UnknownFallsBackToPM25(t *testing.T) {
	assert.Equal(t, Config(PM25), Config(Pollutant("xenon")))
}

func TestPlausibleRange(t *testing.T) {
	min, max := PlausibleRange(PM25)
	assert.Equal(t, 0.0, min)
	assert.Equal(t, 500.0, max)
	assert.True(t, InPlausibleRange(PM25, 500))
	assert.False(t, InPlausibleRange(PM25, 500.1))
}

func snapshotOf(values ...float64) *Snapshot {
	ms := make([]Measurement, len(values))
	for i, v := range values {
		ms[i] = Measurement{Pollutant: PM25, Value: v, Location: "Delhi"}
	}
	return &Snapshot{Measurements: ms}
}

func TestSnapshot_StatsFor(t *testing.T) {
	stats, err := snapshotOf(10, 20, 30, 40).StatsFor(PM25)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Count)
	assert.InDelta(t, 25.0, stats.Mean, 1e-9)
	assert.InDelta(t, 25.0, stats.Median, 1e-9)
	assert.Equal(t, 10.0, stats.Min)
	assert.Equal(t, 40.0, stats.Max)
	assert.InDelta(t, 12.909944, stats.Std, 1e-5)
}

func TestSnapshot_StatsFor_NoData(t *testing.T) {
	_, err := snapshotOf().StatsFor(PM25)
	require.ErrorIs(t, err, ErrNoData)

	_, err = snapshotOf(10, 20).StatsFor(NO2)
	require.ErrorIs(t, err, ErrNoData)
}

func TestSnapshot_ForLocation(t *testing.T) {
	snap := &Snapshot{Measurements: []Measurement{
		{Pollutant: PM25, Value: 180, Location: "Anand Vihar, Delhi"},
		{Pollutant: PM25, Value: 90, Location: "Bandra, Mumbai"},
		{Pollutant: NO2, Value: 45, Location: "ITO, Delhi"},
	}}

	rows := snap.ForLocation("delhi", PM25)
	require.Len(t, rows, 1)
	assert.Equal(t, 180.0, rows[0].Value)
}

func TestStore_PublishAndCurrent(t *testing.T) {
	store := NewStore(zerolog.Nop())
	assert.True(t, store.Current().Empty())

	fetchedAt := time.Date(2026, 8, 20, 6, 0, 0, 0, time.UTC)
	store.Publish([]Measurement{
		{Pollutant: PM25, Value: 100, Source: "waqi"},
		{Pollutant: PM25, Value: 110, Source: "openaq"},
		{Pollutant: NO2, Value: 40, Source: "waqi"},
	}, fetchedAt)

	snap := store.Current()
	require.NotNil(t, snap)
	assert.Equal(t, fetchedAt, snap.FetchedAt)
	assert.Equal(t, map[string]int{"waqi": 2, "openaq": 1}, snap.SourceCounts)
	assert.Len(t, snap.ForPollutant(PM25), 2)
}
