package hilal

import (
	"context"
	"errors"
	"testing"

	"github.com/chrissnell/hilal/pkg/coord"
	"github.com/chrissnell/hilal/pkg/horizon"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var sukabumi = coord.Location{
	Name:      "Sukabumi",
	Latitude:  -7.073889,
	Longitude: 106.531389,
	Elevation: 10,
	UTCOffset: 7,
}

var tromso = coord.Location{
	Name:      "Tromsø",
	Latitude:  69.6496,
	Longitude: 18.956,
	UTCOffset: 1,
}

func TestComputeVisibleEvening(t *testing.T) {
	r, err := NewEngine().Compute(sukabumi, 2026, 2, 18)
	require.NoError(t, err)
	require.True(t, r.Applicable)

	p := r.Parameters
	assert.Equal(t, "2026-02-18", r.Date)
	assert.InDelta(t, 18.285, r.Sunset.Hour, 0.01)
	assert.InDelta(t, 8.653, p.Altitude, 0.1)
	assert.InDelta(t, 11.096, p.Elongation, 0.1)
	assert.InDelta(t, 21.957, p.AgeHours, 0.1)

	// the geocentric conjunction came first
	assert.Greater(t, p.AgeGeocentricHours, p.AgeHours)
	assert.True(t, p.ConjunctionBeforeSunset())

	assert.Greater(t, p.ARCV, p.Altitude-p.SunAltitude-1)
	assert.Greater(t, p.Illumination, 0.0)
	assert.Less(t, p.Illumination, 0.02)
	assert.Greater(t, p.CrescentWidth, 0.0)
	assert.Less(t, p.CrescentWidth, 1.0)
	assert.GreaterOrEqual(t, p.PositionAngle, 0.0)
	assert.Less(t, p.PositionAngle, 360.0)

	require.NotNil(t, p.LagHours)
	require.NotNil(t, r.Moonset)
	assert.Greater(t, *p.LagHours, 0.3)
	assert.InDelta(t, r.Moonset.Hour-r.Sunset.Hour, *p.LagHours, 1e-6)

	e := r.Ephemeris
	assert.Equal(t, "Wednesday", e.Weekday)
	assert.InDelta(t, 75, e.DeltaT, 2)
	assert.InDelta(t, e.MeanObliquity+e.NutationObliquity, e.TrueObliquity, 1e-12)
	assert.Greater(t, e.MoonUpperLimb, p.Altitude)
	assert.Less(t, e.MoonLowerLimb, p.Altitude)
	assert.InDelta(t, 1.496e8, e.Sun.DistanceKm, 3e6)
	assert.Equal(t, p.ConjunctionJD, e.Conjunction.JD)
	assert.Equal(t, p.ConjunctionTopocentricJD, e.TopocentricConjunction.JD)
}

func TestComputeBeforeConjunction(t *testing.T) {
	r, err := NewEngine().Compute(sukabumi, 2026, 2, 17)
	require.NoError(t, err)
	require.True(t, r.Applicable)

	p := r.Parameters
	assert.Less(t, p.AgeHours, 0.0)
	assert.InDelta(t, -2.0333, p.AgeHours, 0.2)
	assert.InDelta(t, -1.1172, p.Altitude, 0.1)
	assert.InDelta(t, 1.3161, p.Elongation, 0.1)
	assert.False(t, p.ConjunctionBeforeSunset())

	// the Moon sets just before the Sun
	require.NotNil(t, p.LagHours)
	assert.Less(t, *p.LagHours, 0.0)
}

func TestComputeNoSunset(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	e := NewEngine()
	e.Logger = zap.New(core).Sugar()

	r, err := e.Compute(tromso, 2026, 6, 21)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotApplicable))
	assert.True(t, errors.Is(err, horizon.ErrNoEvent))
	assert.False(t, r.Applicable)
	assert.Equal(t, Parameters{}, r.Parameters)
	assert.Equal(t, "Tromsø", r.Location.Name)
	assert.Equal(t, 1, logs.FilterMessage("no sunset").Len())
}

func TestComputeInvalidDate(t *testing.T) {
	tests := []struct {
		name string
		date [3]int
	}{
		{"february 30", [3]int{2026, 2, 30}},
		{"month 13", [3]int{2026, 13, 1}},
		{"day 0", [3]int{2026, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEngine().Compute(sukabumi, tt.date[0], tt.date[1], tt.date[2])
			assert.ErrorIs(t, err, ErrInvalidDate)
		})
	}
}

func TestComputeIdempotent(t *testing.T) {
	e := NewEngine()
	a, err := e.Compute(sukabumi, 2026, 3, 19)
	require.NoError(t, err)
	b, err := e.Compute(sukabumi, 2026, 3, 19)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCrescentWidth(t *testing.T) {
	assert.InDelta(t, 0, CrescentWidth(0.25, 0), 1e-12)
	assert.InDelta(t, 15, CrescentWidth(0.25, 90), 1e-9)
	assert.InDelta(t, 30, CrescentWidth(0.25, 180), 1e-9)
}

func TestComputeMany(t *testing.T) {
	e := NewEngine()
	e.Workers = 2

	queries := []Query{
		{Location: sukabumi, Year: 2026, Month: 2, Day: 17},
		{Location: tromso, Year: 2026, Month: 6, Day: 21},
		{Location: sukabumi, Year: 2026, Month: 2, Day: 18},
	}
	reports, err := e.ComputeMany(context.Background(), queries)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	assert.True(t, reports[0].Applicable)
	assert.False(t, reports[1].Applicable)
	assert.True(t, reports[2].Applicable)
	assert.Equal(t, "2026-02-17", reports[0].Date)
	assert.Equal(t, "2026-02-18", reports[2].Date)

	single, err := e.Compute(sukabumi, 2026, 2, 18)
	require.NoError(t, err)
	assert.Equal(t, single, reports[2])
}

func TestComputeManyErrors(t *testing.T) {
	e := NewEngine()

	_, err := e.ComputeMany(context.Background(), []Query{
		{Location: sukabumi, Year: 2026, Month: 2, Day: 31},
	})
	assert.ErrorIs(t, err, ErrInvalidDate)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.ComputeMany(ctx, []Query{{Location: sukabumi, Year: 2026, Month: 2, Day: 18}})
	assert.ErrorIs(t, err, context.Canceled)
}

func BenchmarkCompute(b *testing.B) {
	e := NewEngine()
	for i := 0; i < b.N; i++ {
		_, _ = e.Compute(sukabumi, 2026, 2, 18)
	}
}
