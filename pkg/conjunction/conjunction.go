// Package conjunction locates new moons: the instants at which the Sun and
// the Moon share the same apparent ecliptic longitude, as seen from the
// Earth's center or from an observer.
package conjunction

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/chrissnell/hilal/pkg/coord"
	"github.com/chrissnell/hilal/pkg/ephemeris"
)

// SynodicMonth is the mean interval between conjunctions in days
const SynodicMonth = 29.530588853

// ErrNotConverged is wrapped by NotConvergedError
var ErrNotConverged = errors.New("conjunction: did not converge")

// NotConvergedError reports the last estimate when the iteration cap is
// reached before the step and residual tolerances are met.
type NotConvergedError struct {
	JD         float64
	Iterations int
	Residual   float64 // degrees
}

func (e *NotConvergedError) Error() string {
	return fmt.Sprintf("conjunction: no convergence after %d iterations (jd %.6f, residual %.2e°)",
		e.Iterations, e.JD, e.Residual)
}

func (e *NotConvergedError) Unwrap() error {
	return ErrNotConverged
}

// Options tunes the Newton iteration
type Options struct {
	Tolerance       float64       `json:"tolerance" yaml:"tolerance"` // days
	MaxIterations   int           `json:"max_iterations" yaml:"max_iterations"`
	Step            time.Duration `json:"step" yaml:"step"`
	TopocentricStep time.Duration `json:"topocentric_step" yaml:"topocentric_step"`
	AngleTolerance  float64       `json:"angle_tolerance" yaml:"angle_tolerance"` // degrees
}

// DefaultOptions returns a step tolerance of about a second
func DefaultOptions() Options {
	return Options{
		Tolerance:       1e-5,
		MaxIterations:   10,
		Step:            time.Hour,
		TopocentricStep: 30 * time.Minute,
		AngleTolerance:  1e-6,
	}
}

// Conjunction is a converged new moon
type Conjunction struct {
	JD float64 `json:"jd"` // UT

	// Residual is λ☾ − λ☉ at JD, normalized to (-180, 180]
	Residual   float64 `json:"residual"`
	Elongation float64 `json:"elongation"`

	// Separation is the full great-circle distance between the two bodies,
	// which at conjunction is close to the Moon's ecliptic latitude.
	Separation float64 `json:"separation"`

	Iterations  int  `json:"iterations"`
	Topocentric bool `json:"topocentric"`
}

// Time returns the conjunction as a UTC time.Time
func (c Conjunction) Time() time.Time {
	return ephemeris.TimeFromJD(c.JD)
}

// Finder runs the conjunction search. The zero value is not usable; use New.
type Finder struct {
	opts Options
}

// New returns a Finder using opts
func New(opts Options) *Finder {
	return &Finder{opts: opts}
}

// Nearest returns the conjunction closest in time to jd
func (f *Finder) Nearest(jd float64) (Conjunction, error) {
	if phaseAngle(jd) < 180 {
		return f.Before(jd)
	}
	return f.After(jd)
}

// Before returns the last conjunction at or before jd
func (f *Finder) Before(jd float64) (Conjunction, error) {
	t0 := jd - phaseAngle(jd)/360*SynodicMonth
	c, err := f.geocentric(t0)
	if err == nil && c.JD > jd {
		return f.geocentric(t0 - SynodicMonth)
	}
	return c, err
}

// After returns the first conjunction after jd
func (f *Finder) After(jd float64) (Conjunction, error) {
	t0 := jd + (360-phaseAngle(jd))/360*SynodicMonth
	c, err := f.geocentric(t0)
	if err == nil && c.JD <= jd {
		return f.geocentric(t0 + SynodicMonth)
	}
	return c, err
}

// ForMonth returns the conjunction nearest the 15th of the given month at
// 0h UT, which is the one that opens the lunar month in progress.
func (f *Finder) ForMonth(year, month int) (Conjunction, error) {
	return f.Nearest(ephemeris.JD(year, month, 15))
}

// Topocentric returns the conjunction nearest jd as seen by an observer at
// loc, using the topocentric ecliptic longitudes of both bodies.
func (f *Finder) Topocentric(jd float64, loc coord.Location) (Conjunction, error) {
	geo, err := f.Nearest(jd)
	if err != nil {
		return geo, fmt.Errorf("seeding topocentric search: %w", err)
	}

	residual := func(t float64) float64 {
		mLon, _, sLon, _ := topocentricLongitudes(t, loc)
		return coord.Normalize180(mLon - sLon)
	}
	c, err := f.newton(geo.JD, residual, f.opts.TopocentricStep)
	c.Topocentric = true
	if err != nil {
		return c, err
	}

	mLon, mLat, sLon, sLat := topocentricLongitudes(c.JD, loc)
	c.Separation = coord.Separation(mLon, mLat, sLon, sLat)
	return c, nil
}

func (f *Finder) geocentric(t0 float64) (Conjunction, error) {
	c, err := f.newton(t0, geocentricResidual, f.opts.Step)
	if err != nil {
		return c, err
	}

	m := ephemeris.ApparentMoon(c.JD)
	s := ephemeris.ApparentSun(c.JD)
	c.Separation = coord.Separation(m.Longitude, m.Latitude, s.Longitude, s.Latitude)
	return c, nil
}

// newton solves residual(t) = 0 from t0 with a forward-difference
// derivative over step. It stops once the correction is below the day
// tolerance and the residual at the new estimate is below the angle
// tolerance.
func (f *Finder) newton(t0 float64, residual func(float64) float64, step time.Duration) (Conjunction, error) {
	h := step.Hours() / 24
	if h <= 0 {
		return Conjunction{}, fmt.Errorf("conjunction: derivative step must be positive, got %s", step)
	}

	t := t0
	r := residual(t)
	for i := 1; i <= f.opts.MaxIterations; i++ {
		slope := coord.Normalize180(residual(t+h)-r) / h
		if slope == 0 || math.IsNaN(slope) {
			return Conjunction{}, &NotConvergedError{JD: t, Iterations: i, Residual: r}
		}

		dt := r / slope
		t -= dt
		r = residual(t)

		if math.Abs(dt) < f.opts.Tolerance && math.Abs(r) < f.opts.AngleTolerance {
			return Conjunction{
				JD:         t,
				Residual:   r,
				Elongation: math.Abs(r),
				Iterations: i,
			}, nil
		}
	}
	return Conjunction{}, &NotConvergedError{JD: t, Iterations: f.opts.MaxIterations, Residual: r}
}

func geocentricResidual(t float64) float64 {
	return coord.Normalize180(ephemeris.ApparentMoon(t).Longitude - ephemeris.ApparentSun(t).Longitude)
}

// phaseAngle returns the elongation of the Moon east of the Sun, [0, 360)
func phaseAngle(jd float64) float64 {
	return coord.Normalize360(ephemeris.ApparentMoon(jd).Longitude - ephemeris.ApparentSun(jd).Longitude)
}

func topocentricLongitudes(jd float64, loc coord.Location) (mLon, mLat, sLon, sLat float64) {
	eps := ephemeris.MeanObliquity(jd)
	lst := coord.LST(jd, loc.Longitude) * 15

	m := ephemeris.ApparentMoon(jd)
	s := ephemeris.ApparentSun(jd)
	mLon, mLat = coord.TopocentricEcliptic(m.Longitude, m.Latitude, coord.MoonParallax(m.Distance), lst, eps, loc)
	sLon, sLat = coord.TopocentricEcliptic(s.Longitude, s.Latitude, coord.SunParallax(s.Distance), lst, eps, loc)
	return
}
