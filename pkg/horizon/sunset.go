// Package horizon finds the local clock times at which the Sun and Moon
// cross a given altitude.
package horizon

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/chrissnell/hilal/pkg/coord"
	"github.com/chrissnell/hilal/pkg/ephemeris"
	"github.com/soniakeys/unit"
)

// ErrNoEvent is returned when a body does not cross the requested altitude
// on the requested date (polar day or night, or no bracket in the window).
var ErrNoEvent = errors.New("horizon: no crossing")

// Event is a horizon crossing
type Event struct {
	Hour       float64 `json:"hour"` // local clock hour, [0, 24)
	JD         float64 `json:"jd"`   // UT
	Iterations int     `json:"iterations"`
}

// Time returns the event as a UTC time.Time
func (e Event) Time() time.Time {
	return ephemeris.TimeFromJD(e.JD)
}

// SunOptions tunes the fixed-point sunrise/sunset solver
type SunOptions struct {
	// Altitude is the geometric altitude of the Sun's center at the event.
	// -0.8333° allows for the semidiameter and horizon refraction.
	Altitude      float64 `json:"altitude" yaml:"altitude"`
	MaxIterations int     `json:"max_iterations" yaml:"max_iterations"`
	Tolerance     float64 `json:"tolerance" yaml:"tolerance"` // hours
}

// DefaultSunOptions returns the standard sunset definition
func DefaultSunOptions() SunOptions {
	return SunOptions{
		Altitude:      -0.8333,
		MaxIterations: 5,
		Tolerance:     0.001,
	}
}

// Sunset returns local sunset for the civil date y-m-d at loc
func Sunset(loc coord.Location, year, month, day int, opts SunOptions) (Event, error) {
	return solveSun(loc, year, month, day, opts, 18, 1)
}

// Sunrise returns local sunrise for the civil date y-m-d at loc
func Sunrise(loc coord.Location, year, month, day int, opts SunOptions) (Event, error) {
	return solveSun(loc, year, month, day, opts, 6, -1)
}

// solveSun iterates t ← 12 − EoT(t) ± H(t)/15 + (zone − λ/15) starting at
// guess. The civil date stays fixed; only the time of day moves.
func solveSun(loc coord.Location, year, month, day int, opts SunOptions, guess, sign float64) (Event, error) {
	jd0 := ephemeris.JD(year, month, float64(day))
	zone := loc.UTCOffset - loc.Longitude/15

	local := guess
	jd := localToJD(jd0, local, loc.UTCOffset)
	for i := 1; i <= opts.MaxIterations; i++ {
		ha, err := hourAngle(jd, loc.Latitude, opts.Altitude)
		if err != nil {
			return Event{Iterations: i}, err
		}

		next := unit.PMod(12-EquationOfTime(jd)+sign*ha/15+zone, 24)
		change := math.Abs(coord.Normalize180((next - local) * 15)) / 15
		local = next
		jd = localToJD(jd0, local, loc.UTCOffset)

		if change < opts.Tolerance {
			return Event{Hour: local, JD: jd, Iterations: i}, nil
		}
	}

	// the cap bounds the work; the last estimate is already within seconds
	return Event{Hour: local, JD: jd, Iterations: opts.MaxIterations}, nil
}

// hourAngle returns the Sun's hour angle in degrees when its center is at
// altitude h0, using the apparent declination at jd.
func hourAngle(jd, lat, h0 float64) (float64, error) {
	sun := ephemeris.ApparentSun(jd)
	eq := coord.EclipticToEquatorial(sun.Longitude, sun.Latitude, ephemeris.MeanObliquity(jd))

	sinD, cosD := math.Sincos(coord.Rad(eq.Dec))
	sinP, cosP := math.Sincos(coord.Rad(lat))
	den := cosD * cosP
	if math.Abs(den) < 1e-12 {
		return 0, fmt.Errorf("%w: observer at the pole", ErrNoEvent)
	}

	cosH := (math.Sin(coord.Rad(h0)) - sinD*sinP) / den
	if cosH < -1 || cosH > 1 {
		return 0, fmt.Errorf("%w: cos H = %.4f at latitude %.4f", ErrNoEvent, cosH, lat)
	}
	return coord.Deg(math.Acos(cosH)), nil
}

// EquationOfTime returns apparent minus mean solar time in hours (Meeus 28.1)
func EquationOfTime(jd float64) float64 {
	sun := ephemeris.ApparentSun(jd)
	eps := ephemeris.MeanObliquity(jd)
	eq := coord.EclipticToEquatorial(sun.Longitude, sun.Latitude, eps)

	e := ephemeris.SunMeanLongitude(jd) - 0.0057183 - eq.RA + ephemeris.NutationLongitude(jd)*math.Cos(coord.Rad(eps))
	return coord.Normalize180(e) / 15
}

func localToJD(jd0, local, utcOffset float64) float64 {
	return jd0 + (local-utcOffset)/24
}
