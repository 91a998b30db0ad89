// Package ephemeris evaluates the truncated periodic series that give the
// geocentric positions of the Sun and Moon, together with the nutation and
// obliquity corrections that every coordinate transform depends on.
//
// Every exported function takes a Julian Day in Universal Time and is a pure
// function of it. Series that are defined in dynamical time (TT) convert
// internally using DeltaT.
package ephemeris

import (
	"time"

	"github.com/soniakeys/meeus/v3/base"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/unit"
)

const (
	// J2000 is the Julian Day of the standard epoch 2000 January 1.5 TT
	J2000 = 2451545.0

	// DaysPerCentury is the length of a Julian century in days
	DaysPerCentury = 36525.0

	// SecondsPerDay converts ΔT seconds to day fractions
	SecondsPerDay = 86400.0

	// AUKilometers converts astronomical units to kilometers
	AUKilometers = 149597870.7
)

// Ecliptic is a geocentric ecliptic position referred to the equinox of date.
type Ecliptic struct {
	Longitude float64 `json:"longitude"` // λ in degrees, [0, 360)
	Latitude  float64 `json:"latitude"`  // β in degrees, [-90, 90]
	Distance  float64 `json:"distance"`  // km for the Moon, AU for the Sun
}

// JD returns the Julian Day of a proleptic Gregorian calendar date.
// day may carry a fractional part for the time of day.
func JD(year, month int, day float64) float64 {
	return julian.CalendarGregorianToJD(year, month, day)
}

// Calendar splits a Julian Day into year, month and fractional day
func Calendar(jd float64) (year, month int, day float64) {
	return julian.JDToCalendar(jd)
}

// JDFromTime converts a time.Time to a Julian Day (UT)
func JDFromTime(t time.Time) float64 {
	return julian.TimeToJD(t)
}

// TimeFromJD converts a Julian Day (UT) to a UTC time.Time
func TimeFromJD(jd float64) time.Time {
	return julian.JDToTime(jd)
}

// Weekday returns the day of the week for the civil day containing jd
func Weekday(jd float64) time.Weekday {
	return time.Weekday(julian.DayOfWeek(jd))
}

// Centuries returns Julian centuries since J2000.0
func Centuries(jd float64) float64 {
	return (jd - J2000) / DaysPerCentury
}

// JDE converts a UT Julian Day to dynamical time (TT)
func JDE(jd float64) float64 {
	return jd + DeltaT(jd)/SecondsPerDay
}

// DeltaT returns TT − UT in seconds, using the Espenak–Meeus polynomial
// expressions evaluated at the decimal year of jd.
func DeltaT(jd float64) float64 {
	y, _, _ := Calendar(jd)
	year := float64(y) + (jd-JD(y, 1, 0))/365.25

	switch {
	case year <= -500:
		u := (year - 1820) / 100
		return -20 + 32*u*u
	case year <= 500:
		return base.Horner(year/100,
			10583.6, -1014.41, 33.78311, -5.952053, -0.1798452, 0.022174192, 0.0090316521)
	case year <= 1600:
		return base.Horner(year/100-10,
			1574.2, -556.01, 71.23472, 0.319781, -0.8503463, -0.005050998, 0.0083572073)
	case year <= 1700:
		return base.Horner(year-1600, 120, -0.9808, -0.01532, 1.0/7129)
	case year <= 1800:
		return base.Horner(year-1700, 8.83, 0.1603, -0.0059285, 0.00013336, -1.0/1174000)
	case year <= 1860:
		return base.Horner(year-1800,
			13.72, -0.332447, 0.0068612, 0.0041116, -0.00037436, 0.0000121272, -0.0000001699, 0.000000000875)
	case year <= 1900:
		return base.Horner(year-1860, 7.62, 0.5737, -0.251754, 0.01680668, -0.0004473624, 1.0/233174)
	case year <= 1920:
		return base.Horner(year-1900, -2.79, 1.494119, -0.0598939, 0.0061966, -0.000197)
	case year <= 1941:
		return base.Horner(year-1920, 21.2, 0.84493, -0.0761, 0.0020936)
	case year <= 1961:
		return base.Horner(year-1950, 29.07, 0.407, -1.0/233, 1.0/2547)
	case year <= 1986:
		return base.Horner(year-1975, 45.45, 1.067, -1.0/260, -1.0/718)
	case year <= 2005:
		return base.Horner(year-2000, 63.86, 0.3345, -0.060374, 0.0017275, 0.000651814, 0.00002373599)
	case year <= 2050:
		return base.Horner(year-2000, 62.92, 0.32217, 0.005589)
	case year <= 2150:
		u := (year - 1820) / 100
		return -20 + 32*u*u - 0.5628*(2150-year)
	default:
		u := (year - 1820) / 100
		return -20 + 32*u*u
	}
}

// fixAngle normalizes an angle to the range [0, 360) degrees
func fixAngle(a float64) float64 {
	return unit.PMod(a, 360)
}
