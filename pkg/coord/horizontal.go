package coord

import "math"

// Horizontal is an altitude / azimuth pair. Azimuth is measured from north
// through east.
type Horizontal struct {
	Altitude float64 `json:"altitude"`
	Azimuth  float64 `json:"azimuth"`
}

// ToHorizontal converts hour angle ha and declination dec to the horizontal
// frame of an observer at geographic latitude lat. The altitude is airless.
func ToHorizontal(ha, dec, lat float64) Horizontal {
	sinH, cosH := math.Sincos(Rad(ha))
	sinD, cosD := math.Sincos(Rad(dec))
	sinP, cosP := math.Sincos(Rad(lat))

	alt := math.Asin(ClampUnit(sinP*sinD + cosP*cosD*cosH))
	az := math.Atan2(-cosD*sinH, sinD*cosP-cosD*cosH*sinP)

	return Horizontal{
		Altitude: Deg(alt),
		Azimuth:  Normalize360(Deg(az)),
	}
}

// ParallacticAngle returns the angle q between the direction to the
// celestial pole and the zenith at a body's position (Meeus 14.1).
func ParallacticAngle(ha, dec, lat float64) float64 {
	sinH, cosH := math.Sincos(Rad(ha))
	sinD, cosD := math.Sincos(Rad(dec))
	return Deg(math.Atan2(sinH, math.Tan(Rad(lat))*cosD-sinD*cosH))
}

// RelativeAzimuth returns the azimuth of a relative to b in (-180, 180]
func RelativeAzimuth(a, b float64) float64 {
	return Normalize180(a - b)
}
