package coord

import "math"

const (
	// EarthRadius is the equatorial radius in km
	EarthRadius = 6378.14

	// Flattening of the reference ellipsoid
	Flattening = 1 / 298.257

	// SolarParallax is the Sun's equatorial horizontal parallax at 1 AU in arcseconds
	SolarParallax = 8.794
)

// ObserverTerms returns ρ sin φ′ and ρ cos φ′ for the observer, in Earth
// equatorial radii (Meeus chapter 11).
func ObserverTerms(loc Location) (rhoSin, rhoCos float64) {
	ba := 1 - Flattening
	phi := Rad(loc.Latitude)
	u := math.Atan(ba * math.Tan(phi))
	h := loc.Elevation / (EarthRadius * 1000)

	sinU, cosU := math.Sincos(u)
	sinPhi, cosPhi := math.Sincos(phi)
	return ba*sinU + h*sinPhi, cosU + h*cosPhi
}

// MoonParallax returns the Moon's equatorial horizontal parallax in degrees
// for a geocentric distance in km.
func MoonParallax(distance float64) float64 {
	return Deg(math.Asin(ClampUnit(EarthRadius / distance)))
}

// SunParallax returns the Sun's horizontal parallax in degrees for a
// distance in AU.
func SunParallax(distance float64) float64 {
	return Deg(math.Asin(math.Sin(Rad(SolarParallax/3600)) / distance))
}

// MoonSemidiameter returns the geocentric semidiameter in degrees
func MoonSemidiameter(distance float64) float64 {
	return 358473400 / distance / 3600
}

// SunSemidiameter returns the semidiameter in degrees for a distance in AU
func SunSemidiameter(distance float64) float64 {
	return 959.63 / distance / 3600
}

// TopocentricSemidiameter scales the Moon's geocentric semidiameter for its
// smaller distance from an observer who sees it at altitude alt.
func TopocentricSemidiameter(sd, parallax, alt float64) float64 {
	return sd * (1 + math.Sin(Rad(alt))*math.Sin(Rad(parallax)))
}

// TopocentricEquatorial corrects a geocentric position for parallax given
// the body's hour angle ha and horizontal parallax (Meeus 40.2, 40.3).
func TopocentricEquatorial(eq Equatorial, parallax, ha float64, loc Location) Equatorial {
	rhoSin, rhoCos := ObserverTerms(loc)
	sinPi := math.Sin(Rad(parallax))
	sinH, cosH := math.Sincos(Rad(ha))
	sinD, cosD := math.Sincos(Rad(eq.Dec))

	den := cosD - rhoCos*sinPi*cosH
	dRA := math.Atan2(-rhoCos*sinPi*sinH, den)
	dec := math.Atan2((sinD-rhoSin*sinPi)*math.Cos(dRA), den)

	return Equatorial{
		RA:  Normalize360(eq.RA + Deg(dRA)),
		Dec: Deg(dec),
	}
}

// TopocentricEcliptic corrects ecliptic longitude and latitude for parallax
// directly (Meeus 40.6). lst is the local sidereal time in degrees and eps
// the obliquity used for the rest of the pipeline.
func TopocentricEcliptic(lon, lat, parallax, lst, eps float64, loc Location) (float64, float64) {
	rhoSin, rhoCos := ObserverTerms(loc)
	sinPi := math.Sin(Rad(parallax))
	sinL, cosL := math.Sincos(Rad(lon))
	sinB, cosB := math.Sincos(Rad(lat))
	sinE, cosE := math.Sincos(Rad(eps))
	sinT, cosT := math.Sincos(Rad(lst))

	n := cosL*cosB - rhoCos*sinPi*cosT
	y := sinL*cosB - sinPi*(rhoSin*sinE+rhoCos*cosE*sinT)
	lonT := math.Atan2(y, n)

	// cos λ′ / N reduces to 1 / hypot(y, N), which stays finite at λ′ = ±90°
	latT := math.Atan2(sinB-sinPi*(rhoSin*cosE-rhoCos*sinE*sinT), math.Hypot(y, n))

	return Normalize360(Deg(lonT)), Deg(latT)
}

// AltitudeParallax returns the parallax in altitude asin(sin π · cos h)
func AltitudeParallax(parallax, alt float64) float64 {
	return Deg(math.Asin(ClampUnit(math.Sin(Rad(parallax)) * math.Cos(Rad(alt)))))
}

// TopocentricAltitude converts a geocentric airless altitude to the
// topocentric apparent altitude: refraction is added to the geocentric
// value first and the parallax in altitude is then taken at the refracted
// altitude.
func TopocentricAltitude(geoAlt, parallax float64, r Refraction) float64 {
	app := geoAlt + r.Correction(geoAlt)
	return app - AltitudeParallax(parallax, app)
}

// TopocentricAirlessAltitude removes the parallax in altitude without
// refraction.
func TopocentricAirlessAltitude(geoAlt, parallax float64) float64 {
	return geoAlt - AltitudeParallax(parallax, geoAlt)
}
