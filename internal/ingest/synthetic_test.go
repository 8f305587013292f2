package ingest

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airsentry/airsentry/internal/pollution"
)

func TestSyntheticSource_GeneratesPlausibleRows(t *testing.T) {
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	src := NewSyntheticSource(clockwork.NewFakeClockAt(now), rand.New(rand.NewSource(42)), 3)

	rows, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Len(t, rows, 12*3*len(pollution.Pollutants()))

	for _, m := range rows {
		assert.Equal(t, SyntheticSourceName, m.Source)
		assert.Equal(t, now, m.Timestamp)
		assert.True(t, pollution.InPlausibleRange(m.Pollutant, m.Value),
			"pollutant %s value %f outside plausible range", m.Pollutant, m.Value)
	}
}

func TestSyntheticSource_SurvivesFusionWithinBounds(t *testing.T) {
	src := NewSyntheticSource(clockwork.NewFakeClock(), rand.New(rand.NewSource(7)), 2)
	rows, err := src.Fetch(context.Background())
	require.NoError(t, err)

	fuser, err := NewFuser(FuserConfig{Logger: zerolog.Nop()})
	require.NoError(t, err)

	fused := fuser.Fuse([]Batch{{Source: SyntheticSourceName, Measurements: rows}})
	// City jitter is small relative to the AOI; virtually everything survives.
	assert.GreaterOrEqual(t, len(fused), len(rows)*9/10)
}

func TestSyntheticSource_DeterministicWithFixedSeed(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2026, 8, 23, 0, 0, 0, 0, time.UTC))

	a, err := NewSyntheticSource(clock, rand.New(rand.NewSource(1)), 2).Fetch(context.Background())
	require.NoError(t, err)
	b, err := NewSyntheticSource(clock, rand.New(rand.NewSource(1)), 2).Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, a, b)
}
