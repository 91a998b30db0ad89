// Package hilal computes the crescent parameters used by the visibility
// criteria: the Sun and Moon as seen by an observer at local sunset, the
// age of the Moon since conjunction, and the geometry of the crescent.
package hilal

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/chrissnell/hilal/pkg/conjunction"
	"github.com/chrissnell/hilal/pkg/coord"
	"github.com/chrissnell/hilal/pkg/ephemeris"
	"github.com/chrissnell/hilal/pkg/horizon"
	"github.com/chrissnell/hilal/pkg/lunar"
	"go.uber.org/zap"
)

// ErrNotApplicable is returned when there is no sunset on the requested
// date, so there is no evening to evaluate a crescent in.
var ErrNotApplicable = errors.New("hilal: not applicable")

// ErrInvalidDate is returned for a calendar date that does not exist
var ErrInvalidDate = errors.New("hilal: invalid date")

// DateFormat is the layout of Report.Date
const DateFormat = "2006-01-02"

// Engine computes crescent parameters. The zero value is not usable; start
// from NewEngine and adjust the options.
type Engine struct {
	Sunset      horizon.SunOptions
	Moonset     horizon.MoonOptions
	Conjunction conjunction.Options
	Refraction  coord.Refraction

	// Workers bounds ComputeMany. Zero or less means one per CPU.
	Workers int

	// Logger receives solver diagnostics at debug level. nil disables them.
	Logger *zap.SugaredLogger
}

// NewEngine returns an engine with the default solver settings
func NewEngine() *Engine {
	return &Engine{
		Sunset:      horizon.DefaultSunOptions(),
		Moonset:     horizon.DefaultMoonOptions(),
		Conjunction: conjunction.DefaultOptions(),
		Refraction:  coord.DefaultRefraction(),
	}
}

// Parameters are the quantities compared by the visibility criteria, all
// evaluated at local sunset. Angles are in degrees.
type Parameters struct {
	SunsetJD float64 `json:"sunset_jd"`

	// DateJD is 00:00 UT of the civil date of the observation
	DateJD float64 `json:"date_jd"`

	ConjunctionJD            float64 `json:"conjunction_jd"`
	ConjunctionTopocentricJD float64 `json:"conjunction_topocentric_jd"`

	// AgeHours is sunset minus the topocentric conjunction. It is negative
	// when the conjunction has not yet happened at sunset.
	AgeHours           float64 `json:"age_hours"`
	AgeGeocentricHours float64 `json:"age_geocentric_hours"`

	Elongation           float64 `json:"elongation"`
	ElongationGeocentric float64 `json:"elongation_geocentric"`

	// Altitude is the topocentric apparent altitude of the Moon's center
	Altitude           float64 `json:"altitude"`
	AltitudeGeocentric float64 `json:"altitude_geocentric"`
	SunAltitude        float64 `json:"sun_altitude"`

	// ARCV is the airless topocentric altitude difference Moon minus Sun
	ARCV float64 `json:"arcv"`

	Illumination    float64 `json:"illumination"`
	CrescentWidth   float64 `json:"crescent_width"` // arcminutes
	PositionAngle   float64 `json:"position_angle"`
	RelativeAzimuth float64 `json:"relative_azimuth"`

	// LagHours is moonset minus sunset, nil when the Moon does not set in
	// the search window.
	LagHours *float64 `json:"lag_hours,omitempty"`
}

// ConjunctionBeforeSunset reports whether the geocentric conjunction
// happened before sunset.
func (p Parameters) ConjunctionBeforeSunset() bool {
	return p.ConjunctionJD < p.SunsetJD
}

// Body is the detailed view of the Sun or Moon at sunset
type Body struct {
	coord.Position

	DistanceKm       float64 `json:"distance_km"`
	TopoSemidiameter float64 `json:"topo_semidiameter"`
}

// Ephemeris is the detailed position report at sunset
type Ephemeris struct {
	JD      float64 `json:"jd"`
	DeltaT  float64 `json:"delta_t"` // seconds
	Weekday string  `json:"weekday"`

	NutationLongitude float64 `json:"nutation_longitude"`
	NutationObliquity float64 `json:"nutation_obliquity"`
	MeanObliquity     float64 `json:"mean_obliquity"`
	TrueObliquity     float64 `json:"true_obliquity"`

	Sun  Body `json:"sun"`
	Moon Body `json:"moon"`

	MoonUpperLimb float64 `json:"moon_upper_limb"`
	MoonLowerLimb float64 `json:"moon_lower_limb"`

	Conjunction            conjunction.Conjunction `json:"conjunction"`
	TopocentricConjunction conjunction.Conjunction `json:"topocentric_conjunction"`
}

// Report is the full result for one location and date
type Report struct {
	Location   coord.Location `json:"location"`
	Date       string         `json:"date"`
	Applicable bool           `json:"applicable"`

	Sunset  horizon.Event  `json:"sunset"`
	Moonset *horizon.Event `json:"moonset,omitempty"`

	Parameters Parameters `json:"parameters"`
	Ephemeris  Ephemeris  `json:"ephemeris"`
}

// Compute evaluates the crescent at local sunset on the civil date
// year-month-day at loc. When the Sun does not set that day the report is
// returned with Applicable false and an error wrapping ErrNotApplicable.
func (e *Engine) Compute(loc coord.Location, year, month, day int) (Report, error) {
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return Report{}, fmt.Errorf("%w: %04d-%02d-%02d", ErrInvalidDate, year, month, day)
	}

	r := Report{Location: loc, Date: date.Format(DateFormat)}
	logger := e.logger().With("location", loc.Name, "date", r.Date)

	sunset, err := horizon.Sunset(loc, year, month, day, e.Sunset)
	if errors.Is(err, horizon.ErrNoEvent) {
		logger.Debugw("no sunset", "error", err)
		return r, fmt.Errorf("%w: %w", ErrNotApplicable, err)
	}
	if err != nil {
		return r, fmt.Errorf("sunset: %w", err)
	}
	r.Sunset = sunset
	jd := sunset.JD

	finder := conjunction.New(e.Conjunction)
	geo, err := finder.Nearest(jd)
	if err != nil {
		logger.Debugw("geocentric conjunction failed", "jd", jd, "error", err)
		return r, fmt.Errorf("conjunction: %w", err)
	}
	topo, err := finder.Topocentric(jd, loc)
	if err != nil {
		logger.Debugw("topocentric conjunction failed", "jd", jd, "error", err)
		return r, fmt.Errorf("topocentric conjunction: %w", err)
	}

	moon := coord.MoonPosition(jd, loc, e.Refraction)
	sun := coord.SunPosition(jd, loc, e.Refraction)
	moonSD := coord.TopocentricSemidiameter(moon.Semidiameter, moon.Parallax, moon.AirlessAltitude)

	p := Parameters{
		SunsetJD:                 jd,
		DateJD:                   ephemeris.JD(year, month, float64(day)),
		ConjunctionJD:            geo.JD,
		ConjunctionTopocentricJD: topo.JD,
		AgeHours:                 (jd - topo.JD) * 24,
		AgeGeocentricHours:       (jd - geo.JD) * 24,
		Elongation:               moon.Topocentric.Separation(sun.Topocentric),
		ElongationGeocentric:     moon.Equatorial.Separation(sun.Equatorial),
		Altitude:                 moon.Altitude,
		AltitudeGeocentric:       moon.Horizontal.Altitude,
		SunAltitude:              sun.Altitude,
		ARCV:                     moon.AirlessAltitude - sun.AirlessAltitude,
		PositionAngle:            lunar.BrightLimb(moon.Topocentric, sun.Topocentric),
		RelativeAzimuth:          coord.RelativeAzimuth(moon.Horizontal.Azimuth, sun.Horizontal.Azimuth),
	}
	sunKm := sun.Ecliptic.Distance * ephemeris.AUKilometers
	p.Illumination = lunar.Illumination(lunar.PhaseAngle(p.Elongation, sunKm, moon.Ecliptic.Distance))
	p.CrescentWidth = CrescentWidth(moonSD, p.Elongation)

	moonset, err := horizon.Moonset(loc, year, month, day, e.Moonset)
	switch {
	case err == nil:
		lag := horizon.LagTime(sunset, moonset)
		p.LagHours = &lag
		r.Moonset = &moonset
	case errors.Is(err, horizon.ErrNoEvent):
		logger.Debugw("no moonset in window", "error", err)
	default:
		return r, fmt.Errorf("moonset: %w", err)
	}

	r.Applicable = true
	r.Parameters = p
	r.Ephemeris = Ephemeris{
		JD:                jd,
		DeltaT:            ephemeris.DeltaT(jd),
		Weekday:           ephemeris.Weekday(p.DateJD).String(),
		NutationLongitude: ephemeris.NutationLongitude(jd),
		NutationObliquity: ephemeris.NutationObliquity(jd),
		MeanObliquity:     ephemeris.MeanObliquity(jd),
		TrueObliquity:     ephemeris.TrueObliquity(jd),
		Sun: Body{
			Position:         sun,
			DistanceKm:       sunKm,
			TopoSemidiameter: sun.Semidiameter,
		},
		Moon: Body{
			Position:         moon,
			DistanceKm:       moon.Ecliptic.Distance,
			TopoSemidiameter: moonSD,
		},
		MoonUpperLimb:          moon.Altitude + moonSD,
		MoonLowerLimb:          moon.Altitude - moonSD,
		Conjunction:            geo,
		TopocentricConjunction: topo,
	}

	logger.Debugw("computed",
		"sunset", horizon.FormatHour(sunset.Hour),
		"age", p.AgeHours,
		"altitude", p.Altitude,
		"elongation", p.Elongation,
		"conjunction_iterations", geo.Iterations)
	return r, nil
}

// CrescentWidth returns the width of the crescent in arcminutes from the
// topocentric semidiameter and the arc of light, both in degrees.
func CrescentWidth(semidiameter, arcl float64) float64 {
	return semidiameter * 60 * (1 - math.Cos(coord.Rad(arcl)))
}

func (e *Engine) logger() *zap.SugaredLogger {
	if e.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return e.Logger
}
