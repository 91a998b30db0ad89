package reference

import (
	"math"
	"testing"

	"github.com/chrissnell/hilal/pkg/hilal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithinTolerance(t *testing.T) {
	results, err := Run(hilal.NewEngine(), Cases())
	require.NoError(t, err)
	require.Len(t, results, len(Cases()))

	for _, r := range results {
		t.Run(r.Case.String(), func(t *testing.T) {
			for q, d := range r.Delta {
				assert.LessOrEqual(t, math.Abs(d), Tolerances[q], "%s: got %.4f, delta %+.4f", q, r.Got[q], d)
			}
			assert.True(t, r.Within())
		})
	}
}

func TestConjunctionEveningAge(t *testing.T) {
	// Aceh: conjunction 20:35, sunset 18:51 local
	c := Cases()[0]
	require.Equal(t, "Aceh", c.Location.Name)
	assert.InDelta(t, -(1 + 44.0/60), c.Expected[AgeHours], 1e-3)

	results, err := Run(hilal.NewEngine(), []Case{c})
	require.NoError(t, err)
	assert.InDelta(t, c.Expected[AgeHours], results[0].Got[AgeHours], 0.01)
}

func TestAgeIncreasesEastward(t *testing.T) {
	// on the conjunction evening sunset comes earlier further east, so the
	// Moon is younger there
	results, err := Run(hilal.NewEngine(), Cases()[:5])
	require.NoError(t, err)
	for i := 1; i < len(results); i++ {
		assert.Less(t, results[i].Got[AgeHours], results[i-1].Got[AgeHours], results[i].Case.String())
	}
}

func TestSummarize(t *testing.T) {
	results := []Result{
		{Delta: map[Quantity]float64{MoonAltitude: 0.1, AgeHours: -0.2}},
		{Delta: map[Quantity]float64{MoonAltitude: -0.3}},
		{Delta: map[Quantity]float64{MoonAltitude: 0.2}},
	}
	stats := Summarize(results)
	require.Len(t, stats, 2)

	// sorted by name
	assert.Equal(t, AgeHours, stats[0].Quantity)
	assert.Equal(t, 1, stats[0].Count)
	assert.InDelta(t, -0.2, stats[0].Mean, 1e-12)
	assert.Zero(t, stats[0].StdDev)
	assert.InDelta(t, 0.2, stats[0].MaxAbs, 1e-12)

	assert.Equal(t, MoonAltitude, stats[1].Quantity)
	assert.Equal(t, 3, stats[1].Count)
	assert.InDelta(t, 0, stats[1].Mean, 1e-12)
	assert.InDelta(t, math.Sqrt(0.07), stats[1].StdDev, 1e-12)
	assert.InDelta(t, 0.3, stats[1].MaxAbs, 1e-12)
}

func TestWithin(t *testing.T) {
	assert.True(t, Result{Delta: map[Quantity]float64{SunsetHour: 0.009}}.Within())
	assert.False(t, Result{Delta: map[Quantity]float64{SunsetHour: -0.011}}.Within())
}
