package coord

import "github.com/chrissnell/hilal/pkg/ephemeris"

// Position is the complete view of the Sun or the Moon from an observer
// at one instant.
type Position struct {
	JD float64 `json:"jd"`

	// Apparent geocentric ecliptic position. Distance is km for the Moon
	// and AU for the Sun.
	Ecliptic ephemeris.Ecliptic `json:"ecliptic"`

	// Topocentric ecliptic longitude and latitude
	TopoLongitude float64 `json:"topo_longitude"`
	TopoLatitude  float64 `json:"topo_latitude"`

	Equatorial  Equatorial `json:"equatorial"`
	Topocentric Equatorial `json:"topocentric"`

	// HourAngle is the geocentric local hour angle
	HourAngle float64 `json:"hour_angle"`

	// Horizontal is geocentric and airless
	Horizontal Horizontal `json:"horizontal"`

	Parallax     float64 `json:"parallax"`
	Semidiameter float64 `json:"semidiameter"`
	Refraction   float64 `json:"refraction"`

	// Altitude is the topocentric apparent altitude, AirlessAltitude the
	// topocentric altitude without refraction.
	Altitude        float64 `json:"altitude"`
	AirlessAltitude float64 `json:"airless_altitude"`
}

// MoonPosition evaluates the Moon for an observer at jd (UT)
func MoonPosition(jd float64, loc Location, r Refraction) Position {
	ecl := ephemeris.ApparentMoon(jd)
	return observe(jd, loc, r, ecl, MoonParallax(ecl.Distance), MoonSemidiameter(ecl.Distance))
}

// SunPosition evaluates the Sun for an observer at jd (UT)
func SunPosition(jd float64, loc Location, r Refraction) Position {
	ecl := ephemeris.ApparentSun(jd)
	return observe(jd, loc, r, ecl, SunParallax(ecl.Distance), SunSemidiameter(ecl.Distance))
}

func observe(jd float64, loc Location, r Refraction, ecl ephemeris.Ecliptic, parallax, sd float64) Position {
	eps := ephemeris.MeanObliquity(jd)
	lst := LST(jd, loc.Longitude) * 15

	p := Position{
		JD:           jd,
		Ecliptic:     ecl,
		Equatorial:   EclipticToEquatorial(ecl.Longitude, ecl.Latitude, eps),
		Parallax:     parallax,
		Semidiameter: sd,
	}
	p.HourAngle = Normalize360(lst - p.Equatorial.RA)
	p.Topocentric = TopocentricEquatorial(p.Equatorial, parallax, p.HourAngle, loc)
	p.TopoLongitude, p.TopoLatitude = TopocentricEcliptic(ecl.Longitude, ecl.Latitude, parallax, lst, eps, loc)
	p.Horizontal = ToHorizontal(p.HourAngle, p.Equatorial.Dec, loc.Latitude)
	p.Refraction = r.Correction(p.Horizontal.Altitude)
	p.Altitude = TopocentricAltitude(p.Horizontal.Altitude, parallax, r)
	p.AirlessAltitude = TopocentricAirlessAltitude(p.Horizontal.Altitude, parallax)
	return p
}
