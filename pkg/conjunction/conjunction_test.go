package conjunction

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/chrissnell/hilal/pkg/coord"
	"github.com/chrissnell/hilal/pkg/ephemeris"
	"github.com/soniakeys/meeus/v3/moonphase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sukabumi = coord.Location{
	Name:      "Sukabumi",
	Latitude:  -7.073889,
	Longitude: 106.531389,
	Elevation: 10,
	UTCOffset: 7,
}

// published new moon times, UTC
var knownNewMoons = []time.Time{
	time.Date(2024, 1, 11, 11, 57, 0, 0, time.UTC),
	time.Date(2024, 2, 9, 22, 59, 0, 0, time.UTC),
	time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC),
	time.Date(2024, 4, 8, 18, 21, 0, 0, time.UTC),
	time.Date(2024, 5, 8, 3, 22, 0, 0, time.UTC),
	time.Date(2024, 6, 6, 12, 38, 0, 0, time.UTC),
	time.Date(2024, 7, 5, 22, 57, 0, 0, time.UTC),
	time.Date(2024, 8, 4, 11, 13, 0, 0, time.UTC),
	time.Date(2024, 9, 3, 1, 55, 0, 0, time.UTC),
	time.Date(2024, 10, 2, 18, 49, 0, 0, time.UTC),
	time.Date(2024, 11, 1, 12, 47, 0, 0, time.UTC),
	time.Date(2024, 12, 1, 6, 21, 0, 0, time.UTC),
	time.Date(2024, 12, 30, 22, 27, 0, 0, time.UTC),
	time.Date(2025, 1, 29, 12, 36, 0, 0, time.UTC),
	time.Date(2026, 1, 18, 19, 52, 0, 0, time.UTC),
	time.Date(2026, 2, 17, 12, 1, 0, 0, time.UTC),
}

func TestNearestKnownNewMoons(t *testing.T) {
	f := New(DefaultOptions())
	for _, want := range knownNewMoons {
		t.Run(want.Format("2006-01-02"), func(t *testing.T) {
			// start a few days away on either side
			for _, offset := range []float64{-6, -0.5, 0.5, 6} {
				c, err := f.Nearest(ephemeris.JDFromTime(want) + offset)
				require.NoError(t, err)
				assert.WithinDuration(t, want, c.Time(), 2*time.Minute, "offset %v", offset)
				assert.Less(t, c.Elongation, 1e-4)
				assert.LessOrEqual(t, c.Iterations, DefaultOptions().MaxIterations)
			}
		})
	}
}

func TestBeforeAfter(t *testing.T) {
	f := New(DefaultOptions())
	feb := ephemeris.JDFromTime(time.Date(2026, 2, 17, 12, 1, 0, 0, time.UTC))

	tests := []struct {
		name string
		from float64
		find func(float64) (Conjunction, error)
		want time.Time
	}{
		{"before, one hour after", feb + 1.0/24, f.Before, knownNewMoons[15]},
		{"before, one hour ahead", feb - 1.0/24, f.Before, knownNewMoons[14]},
		{"after, one hour ahead", feb - 1.0/24, f.After, knownNewMoons[15]},
		{"after, one hour after", feb + 1.0/24, f.After, time.Date(2026, 3, 19, 1, 23, 0, 0, time.UTC)},
		{"before, mid lunation", feb + 14, f.Before, knownNewMoons[15]},
		{"after, mid lunation", feb - 14, f.After, knownNewMoons[15]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := tt.find(tt.from)
			require.NoError(t, err)
			assert.WithinDuration(t, tt.want, c.Time(), 3*time.Minute)
		})
	}
}

func TestAgainstMeeusPhases(t *testing.T) {
	f := New(DefaultOptions())
	for i := 0; i < 24; i++ {
		year := 2025 + (float64(i)+0.5)/12.3685
		jde := moonphase.New(year)
		jd := jde - ephemeris.DeltaT(jde)/ephemeris.SecondsPerDay

		c, err := f.Nearest(jd)
		require.NoError(t, err)
		assert.InDelta(t, jd, c.JD, 1.0/1440, "lunation near %.3f", year)
	}
}

func TestForMonthMonotonic(t *testing.T) {
	f := New(DefaultOptions())

	prev, err := f.ForMonth(2024, 1)
	require.NoError(t, err)
	assert.WithinDuration(t, knownNewMoons[0], prev.Time(), 2*time.Minute)

	for m := 2; m <= 12; m++ {
		c, err := f.ForMonth(2024, m)
		require.NoError(t, err)

		gap := c.JD - prev.JD
		assert.Greater(t, gap, 28.0, "month %d", m)
		assert.Less(t, gap, 31.0, "month %d", m)
		prev = c
	}
}

func TestTopocentric(t *testing.T) {
	f := New(DefaultOptions())
	jd := ephemeris.JD(2026, 2, 17.5)

	geo, err := f.Nearest(jd)
	require.NoError(t, err)
	topo, err := f.Topocentric(jd, sukabumi)
	require.NoError(t, err)

	assert.True(t, topo.Topocentric)
	assert.False(t, geo.Topocentric)
	assert.Less(t, topo.Elongation, 1e-4)

	// parallax delays the topocentric new moon for an observer who sees the
	// Moon in the evening sky; about 13:19 UT at Sukabumi
	want := time.Date(2026, 2, 17, 13, 19, 0, 0, time.UTC)
	assert.WithinDuration(t, want, topo.Time(), 15*time.Minute)
	assert.Greater(t, topo.JD, geo.JD)

	// the Moon passes north or south of the Sun by roughly its latitude
	assert.Greater(t, topo.Separation, topo.Elongation)
	assert.Less(t, topo.Separation, 6.5)
}

func TestNotConverged(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxIterations = 1

	_, err := New(opts).Nearest(ephemeris.JD(2026, 2, 10))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotConverged))

	var nc *NotConvergedError
	require.True(t, errors.As(err, &nc))
	assert.Equal(t, 1, nc.Iterations)
	assert.False(t, math.IsNaN(nc.Residual))
	assert.Contains(t, nc.Error(), "1 iterations")
}

func TestInvalidStep(t *testing.T) {
	opts := DefaultOptions()
	opts.Step = 0
	_, err := New(opts).Nearest(ephemeris.JD(2026, 2, 10))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotConverged))
}

func TestIdempotent(t *testing.T) {
	f := New(DefaultOptions())
	a, err := f.ForMonth(2026, 3)
	require.NoError(t, err)
	b, err := f.ForMonth(2026, 3)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func BenchmarkNearest(b *testing.B) {
	f := New(DefaultOptions())
	jd := ephemeris.JD(2026, 2, 10)
	for i := 0; i < b.N; i++ {
		f.Nearest(jd)
	}
}
