// Package lunar summarizes the Moon's phase and the orientation of its
// illuminated limb for an observer.
package lunar

import (
	"fmt"
	"math"
	"time"

	"github.com/chrissnell/hilal/pkg/conjunction"
	"github.com/chrissnell/hilal/pkg/coord"
	"github.com/chrissnell/hilal/pkg/ephemeris"
)

// SynodicMonth is the average length of the lunar cycle in days
const SynodicMonth = conjunction.SynodicMonth

// CrescentAngle contains the full set of computed orientation values
type CrescentAngle struct {
	BrightLimbAngle  float64 `json:"bright_limb_angle"` // χ: position angle of bright limb (degrees, from celestial N toward E)
	TerminatorAngle  float64 `json:"terminator_angle"`  // θ: terminator orientation in celestial coords (degrees)
	ParallacticAngle float64 `json:"parallactic_angle"` // q: parallactic angle of the Moon (degrees)
	LocalTerminator  float64 `json:"local_terminator"`  // θ_local: terminator angle relative to observer's local vertical (degrees)
	Rotation         float64 `json:"rotation"`          // clockwise rotation to apply to an upright phase icon (degrees)
	PhaseAngle       float64 `json:"phase_angle"`       // i: Sun-Moon-Earth angle (degrees)
	Illumination     float64 `json:"illumination"`      // k: illuminated fraction [0,1], computed from phase angle
}

// MoonPhase contains calculated moon phase information
type MoonPhase struct {
	Phase        float64 `json:"phase"`        // Phase fraction [0,1): 0=new, 0.5=full
	Elongation   float64 `json:"elongation"`   // Sun→Moon longitude difference in degrees [0,360)
	Illumination float64 `json:"illumination"` // Illuminated fraction [0,1]: 0=new, 1=full
	AgeDays      float64 `json:"age_days"`     // Days since the previous conjunction
	IsWaxing     bool    `json:"is_waxing"`
	PhaseName    string  `json:"phase_name"`

	PreviousNewMoon time.Time `json:"previous_new_moon"`
	NextNewMoon     time.Time `json:"next_new_moon"`
}

// Calculate computes the moon phase for a given instant
func Calculate(t time.Time) (MoonPhase, error) {
	jd := ephemeris.JDFromTime(t)
	moon := ephemeris.ApparentMoon(jd)
	sun := ephemeris.ApparentSun(jd)

	finder := conjunction.New(conjunction.DefaultOptions())
	prev, err := finder.Before(jd)
	if err != nil {
		return MoonPhase{}, fmt.Errorf("previous new moon: %w", err)
	}
	next, err := finder.After(jd)
	if err != nil {
		return MoonPhase{}, fmt.Errorf("next new moon: %w", err)
	}

	elongation := coord.Normalize360(moon.Longitude - sun.Longitude)
	psi := coord.Separation(moon.Longitude, moon.Latitude, sun.Longitude, sun.Latitude)
	illumination := Illumination(PhaseAngle(psi, sun.Distance*ephemeris.AUKilometers, moon.Distance))
	isWaxing := elongation < 180

	return MoonPhase{
		Phase:           elongation / 360.0,
		Elongation:      elongation,
		Illumination:    illumination,
		AgeDays:         jd - prev.JD,
		IsWaxing:        isWaxing,
		PhaseName:       phaseName(illumination, isWaxing),
		PreviousNewMoon: prev.Time(),
		NextNewMoon:     next.Time(),
	}, nil
}

// phaseName returns the 8-phase name based on illumination percentage and direction
func phaseName(illumination float64, isWaxing bool) string {
	switch {
	case illumination < 0.01:
		return "New Moon"
	case illumination > 0.99:
		return "Full Moon"
	case illumination >= 0.49 && illumination <= 0.51:
		if isWaxing {
			return "First Quarter"
		}
		return "Third Quarter"
	case illumination < 0.50:
		if isWaxing {
			return "Waxing Crescent"
		}
		return "Waning Crescent"
	default:
		if isWaxing {
			return "Waxing Gibbous"
		}
		return "Waning Gibbous"
	}
}

// PhaseAngle returns the selenocentric Sun-Earth angle i in degrees from
// the geocentric elongation psi and the two distances in km (Meeus 48.3).
func PhaseAngle(psi, sunDistance, moonDistance float64) float64 {
	sinPsi, cosPsi := math.Sincos(coord.Rad(psi))
	return coord.Deg(math.Atan2(sunDistance*sinPsi, moonDistance-sunDistance*cosPsi))
}

// Illumination returns the illuminated fraction k = (1 + cos i) / 2
func Illumination(phaseAngle float64) float64 {
	return (1 + math.Cos(coord.Rad(phaseAngle))) / 2
}

// BrightLimb returns the position angle χ of the midpoint of the Moon's
// bright limb, measured from celestial north toward east (Meeus 48.5).
func BrightLimb(moon, sun coord.Equatorial) float64 {
	sinD0, cosD0 := math.Sincos(coord.Rad(sun.Dec))
	sinD, cosD := math.Sincos(coord.Rad(moon.Dec))
	sinA, cosA := math.Sincos(coord.Rad(sun.RA - moon.RA))

	chi := math.Atan2(cosD0*sinA, sinD0*cosD-cosD0*sinD*cosA)
	return coord.Normalize360(coord.Deg(chi))
}

// Crescent computes the crescent orientation seen by an observer at loc,
// using topocentric positions. Rotation is the clockwise angle to apply to
// a phase icon so that its terminator matches the sky.
func Crescent(t time.Time, loc coord.Location) CrescentAngle {
	jd := ephemeris.JDFromTime(t)
	refr := coord.DefaultRefraction()
	moon := coord.MoonPosition(jd, loc, refr)
	sun := coord.SunPosition(jd, loc, refr)

	psi := moon.Topocentric.Separation(sun.Topocentric)
	i := PhaseAngle(psi, sun.Ecliptic.Distance*ephemeris.AUKilometers, moon.Ecliptic.Distance)

	chi := BrightLimb(moon.Topocentric, sun.Topocentric)
	theta := coord.Normalize360(chi + 90)
	q := coord.ParallacticAngle(moon.HourAngle, moon.Equatorial.Dec, loc.Latitude)
	thetaLocal := coord.Normalize360(theta - q)

	return CrescentAngle{
		BrightLimbAngle:  chi,
		TerminatorAngle:  theta,
		ParallacticAngle: q,
		LocalTerminator:  thetaLocal,
		Rotation:         -thetaLocal,
		PhaseAngle:       i,
		Illumination:     Illumination(i),
	}
}
