// Package reference holds published results of the legacy hilal program
// and measures how far the engine is from them.
package reference

import (
	"fmt"
	"math"
	"sort"

	"github.com/chrissnell/hilal/pkg/coord"
	"github.com/chrissnell/hilal/pkg/hilal"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Quantity names a compared value
type Quantity string

const (
	MoonAltitude Quantity = "moon_altitude"
	Elongation   Quantity = "elongation"
	AgeHours     Quantity = "age_hours"
	SunAltitude  Quantity = "sun_altitude"
	SunsetHour   Quantity = "sunset_hour"
)

// Tolerances are the accepted absolute differences per quantity. Ages are
// published as conjunction minus sunset, both to the minute.
var Tolerances = map[Quantity]float64{
	MoonAltitude: 0.1,
	Elongation:   0.1,
	AgeHours:     0.2,
	SunAltitude:  0.05,
	SunsetHour:   0.01,
}

// Case is one published (location, date) result
type Case struct {
	Location         coord.Location
	Year, Month, Day int
	Expected         map[Quantity]float64
}

func (c Case) String() string {
	return fmt.Sprintf("%s %04d-%02d-%02d", c.Location.Name, c.Year, c.Month, c.Day)
}

func site(name string, lat, lon, tz float64) coord.Location {
	return coord.Location{Name: name, Latitude: lat, Longitude: lon, Elevation: 10, UTCOffset: tz}
}

var (
	aceh     = site("Aceh", 5.466667, 95.241944, 7)
	sukabumi = site("Sukabumi", -7.073889, 106.531389, 7)
	semarang = site("Semarang", -6.991667, 110.347778, 7)
	sampang  = site("Sampang", -7.220833, 113.2975, 7)
	mataram  = site("Mataram", -8.608333, 116.101389, 8)
)

// Cases returns the reference dataset: the evening of the 2026 February
// conjunction at five Indonesian sites and the following evening at
// Sukabumi.
func Cases() []Case {
	return []Case{
		{aceh, 2026, 2, 17, map[Quantity]float64{MoonAltitude: -1.0808, Elongation: 1.2089, AgeHours: -1.7333, SunAltitude: -0.2736}},
		{sukabumi, 2026, 2, 17, map[Quantity]float64{MoonAltitude: -1.1172, Elongation: 1.3161, AgeHours: -2.0333, SunAltitude: -0.2733}},
		{semarang, 2026, 2, 17, map[Quantity]float64{MoonAltitude: -1.2094, Elongation: 1.4414, AgeHours: -2.2333, SunAltitude: -0.2733}},
		{sampang, 2026, 2, 17, map[Quantity]float64{MoonAltitude: -1.2742, Elongation: 1.5331, AgeHours: -2.3833, SunAltitude: -0.2733}},
		{mataram, 2026, 2, 17, map[Quantity]float64{MoonAltitude: -1.3086, Elongation: 1.5975, AgeHours: -2.4833, SunAltitude: -0.2733}},
		{sukabumi, 2026, 2, 18, map[Quantity]float64{MoonAltitude: 8.653, Elongation: 11.096, AgeHours: 21.957, SunsetHour: 18.285}},
	}
}

// Result is the engine output for one case
type Result struct {
	Case  Case
	Got   map[Quantity]float64
	Delta map[Quantity]float64 // got minus expected
}

// Within reports whether every delta is inside its tolerance
func (r Result) Within() bool {
	for q, d := range r.Delta {
		if math.Abs(d) > Tolerances[q] {
			return false
		}
	}
	return true
}

// Run evaluates every case with e
func Run(e *hilal.Engine, cases []Case) ([]Result, error) {
	results := make([]Result, 0, len(cases))
	for _, c := range cases {
		rep, err := e.Compute(c.Location, c.Year, c.Month, c.Day)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c, err)
		}

		p := rep.Parameters
		got := map[Quantity]float64{
			MoonAltitude: p.Altitude,
			Elongation:   p.Elongation,
			AgeHours:     p.AgeHours,
			SunAltitude:  p.SunAltitude,
			SunsetHour:   rep.Sunset.Hour,
		}

		r := Result{Case: c, Got: got, Delta: make(map[Quantity]float64, len(c.Expected))}
		for q, want := range c.Expected {
			r.Delta[q] = got[q] - want
		}
		results = append(results, r)
	}
	return results, nil
}

// Stats summarizes the deltas of one quantity
type Stats struct {
	Quantity Quantity `json:"quantity"`
	Count    int      `json:"count"`
	Mean     float64  `json:"mean"`
	StdDev   float64  `json:"std_dev"`
	MaxAbs   float64  `json:"max_abs"`
}

// Summarize returns per-quantity statistics sorted by quantity name
func Summarize(results []Result) []Stats {
	deltas := map[Quantity][]float64{}
	for _, r := range results {
		for q, d := range r.Delta {
			deltas[q] = append(deltas[q], d)
		}
	}

	out := make([]Stats, 0, len(deltas))
	for q, ds := range deltas {
		abs := make([]float64, len(ds))
		for i, d := range ds {
			abs[i] = math.Abs(d)
		}

		s := Stats{
			Quantity: q,
			Count:    len(ds),
			Mean:     stat.Mean(ds, nil),
			MaxAbs:   floats.Max(abs),
		}
		if len(ds) > 1 {
			s.StdDev = stat.StdDev(ds, nil)
		}
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Quantity < out[j].Quantity })
	return out
}
