// Package coord converts between the ecliptic, equatorial and horizontal
// frames, and from geocentric to topocentric positions for an observer on
// the Earth's surface. Angles are in degrees unless stated otherwise.
package coord

import (
	"math"

	"github.com/soniakeys/unit"
)

// Location is an observer on the Earth's surface
type Location struct {
	Name      string  `json:"name,omitempty" yaml:"name"`
	Latitude  float64 `json:"latitude" yaml:"latitude"`     // degrees, north positive
	Longitude float64 `json:"longitude" yaml:"longitude"`   // degrees, east positive
	Elevation float64 `json:"elevation" yaml:"elevation"`   // meters above sea level
	UTCOffset float64 `json:"utc_offset" yaml:"utc_offset"` // hours
}

// Equatorial is a right ascension / declination pair
type Equatorial struct {
	RA  float64 `json:"ra"`  // [0, 360)
	Dec float64 `json:"dec"` // [-90, 90]
}

// Normalize360 wraps an angle into [0, 360)
func Normalize360(a float64) float64 {
	return unit.PMod(a, 360)
}

// Normalize180 wraps an angle into (-180, 180]
func Normalize180(a float64) float64 {
	a = unit.PMod(a, 360)
	if a > 180 {
		a -= 360
	}
	return a
}

// ClampUnit limits x to [-1, 1] so that it is always a valid argument for
// math.Asin and math.Acos.
func ClampUnit(x float64) float64 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// EclipticToEquatorial rotates ecliptic longitude/latitude by the
// obliquity eps (Meeus 13.3, 13.4).
func EclipticToEquatorial(lon, lat, eps float64) Equatorial {
	sinLon, cosLon := math.Sincos(Rad(lon))
	sinLat, cosLat := math.Sincos(Rad(lat))
	sinEps, cosEps := math.Sincos(Rad(eps))

	ra := math.Atan2(sinLon*cosEps*cosLat-sinLat*sinEps, cosLon*cosLat)
	dec := math.Asin(ClampUnit(sinLat*cosEps + cosLat*sinEps*sinLon))

	return Equatorial{
		RA:  Normalize360(Deg(ra)),
		Dec: Deg(dec),
	}
}

// EquatorialToEcliptic is the inverse rotation (Meeus 13.1, 13.2)
func EquatorialToEcliptic(eq Equatorial, eps float64) (lon, lat float64) {
	sinRA, cosRA := math.Sincos(Rad(eq.RA))
	sinDec, cosDec := math.Sincos(Rad(eq.Dec))
	sinEps, cosEps := math.Sincos(Rad(eps))

	l := math.Atan2(sinRA*cosEps*cosDec+sinDec*sinEps, cosRA*cosDec)
	b := math.Asin(ClampUnit(sinDec*cosEps - cosDec*sinEps*sinRA))

	return Normalize360(Deg(l)), Deg(b)
}

// Separation returns the great-circle angle between two points given as
// (longitude, latitude) pairs in any spherical frame.
func Separation(lon1, lat1, lon2, lat2 float64) float64 {
	sin1, cos1 := math.Sincos(Rad(lat1))
	sin2, cos2 := math.Sincos(Rad(lat2))
	sinDL, cosDL := math.Sincos(Rad(lon2 - lon1))

	// atan2 keeps full precision near 0° and 180° where acos does not
	y := math.Hypot(cos2*sinDL, cos1*sin2-sin1*cos2*cosDL)
	x := sin1*sin2 + cos1*cos2*cosDL
	return Deg(math.Atan2(y, x))
}

// Separation returns the angular distance between e and o
func (e Equatorial) Separation(o Equatorial) float64 {
	return Separation(e.RA, e.Dec, o.RA, o.Dec)
}

// Rad converts degrees to radians
func Rad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Deg converts radians to degrees
func Deg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
