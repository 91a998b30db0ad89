package coord

import (
	"math"

	"github.com/chrissnell/hilal/pkg/ephemeris"
	"github.com/soniakeys/unit"
)

// GMST returns Greenwich mean sidereal time in hours for a UT Julian Day
// (Meeus 12.4).
func GMST(jd float64) float64 {
	d := jd - ephemeris.J2000
	T := d / ephemeris.DaysPerCentury
	theta := 280.46061837 + 360.98564736629*d + 0.000387933*T*T - T*T*T/38710000
	return Normalize360(theta) / 15
}

// LST returns apparent local sidereal time in hours, [0, 24). The equation
// of the equinoxes uses the mean obliquity.
func LST(jd, longitude float64) float64 {
	dpsi := ephemeris.NutationLongitude(jd)
	eps := ephemeris.MeanObliquity(jd)
	return unit.PMod(GMST(jd)+dpsi*math.Cos(Rad(eps))/15+longitude/15, 24)
}

// HourAngle returns the local hour angle in degrees, [0, 360), of a body at
// right ascension ra.
func HourAngle(jd, longitude, ra float64) float64 {
	return Normalize360(LST(jd, longitude)*15 - ra)
}
