package ephemeris

import (
	"math"

	"github.com/soniakeys/meeus/v3/base"
)

// MoonMeanDistance is the constant part of the lunar distance series in km
const MoonMeanDistance = 385000.56

// Moon returns the geometric geocentric position of the Moon at jd (UT),
// referred to the mean equinox of date. Distance is in kilometers.
func Moon(jd float64) Ecliptic {
	return moonSeries(Centuries(JDE(jd)))
}

// ApparentMoon returns the Moon's position with nutation in longitude applied
func ApparentMoon(jd float64) Ecliptic {
	m := Moon(jd)
	m.Longitude = fixAngle(m.Longitude + NutationLongitude(jd))
	return m
}

// fundamentals returns the mean elongation of the Moon (D), the Sun's mean
// anomaly (M), the Moon's mean anomaly (M') and the Moon's argument of
// latitude (F), in degrees normalized to [0, 360).
func fundamentals(T float64) (D, M, Mp, F float64) {
	D = fixAngle(base.Horner(T, 297.8501921, 445267.1114034, -0.0018819, 1.0/545868, -1.0/113065000))
	M = fixAngle(base.Horner(T, 357.5291092, 35999.0502909, -0.0001536, 1.0/24490000))
	Mp = fixAngle(base.Horner(T, 134.9633964, 477198.8675055, 0.0087414, 1.0/69699, -1.0/14712000))
	F = fixAngle(base.Horner(T, 93.2720950, 483202.0175233, -0.0036539, -1.0/3526000, 1.0/863310000))
	return
}

// eccentricityFactor scales terms that carry the solar mean anomaly.
// E is recomputed per instant since Earth's orbital eccentricity drifts.
func eccentricityFactor(m int8, E float64) float64 {
	switch m {
	case 1, -1:
		return E
	case 2, -2:
		return E * E
	}
	return 1
}

// moonSeries evaluates Meeus chapter 47 at T Julian centuries of dynamical time.
func moonSeries(T float64) Ecliptic {
	Lp := fixAngle(base.Horner(T, 218.3164477, 481267.88123421, -0.0015786, 1.0/538841, -1.0/65194000))
	D, M, Mp, F := fundamentals(T)
	E := base.Horner(T, 1, -0.002516, -0.0000074)

	a1 := degToRad(fixAngle(119.75 + 131.849*T))
	a2 := degToRad(fixAngle(53.09 + 479264.29*T))
	a3 := degToRad(fixAngle(313.45 + 481266.484*T))

	d, m, mp, f := degToRad(D), degToRad(M), degToRad(Mp), degToRad(F)

	var sumL, sumR float64
	for _, t := range moonLonDistTerms {
		arg := float64(t.d)*d + float64(t.m)*m + float64(t.mp)*mp + float64(t.f)*f
		s, c := math.Sincos(arg)
		e := eccentricityFactor(t.m, E)
		sumL += float64(t.l) * s * e
		sumR += float64(t.r) * c * e
	}

	var sumB float64
	for _, t := range moonLatTerms {
		arg := float64(t.d)*d + float64(t.m)*m + float64(t.mp)*mp + float64(t.f)*f
		sumB += float64(t.b) * math.Sin(arg) * eccentricityFactor(t.m, E)
	}

	// Venus, Jupiter and Earth-flattening perturbations
	lp := degToRad(Lp)
	sumL += 3958*math.Sin(a1) + 1962*math.Sin(lp-f) + 318*math.Sin(a2)
	sumB += -2235*math.Sin(lp) + 382*math.Sin(a3) +
		175*math.Sin(a1-f) + 175*math.Sin(a1+f) +
		127*math.Sin(lp-mp) - 115*math.Sin(lp+mp)

	// sums are in micro-degrees and meters; scale after summation
	return Ecliptic{
		Longitude: fixAngle(Lp + sumL/1e6),
		Latitude:  sumB / 1e6,
		Distance:  MoonMeanDistance + sumR/1000,
	}
}

func degToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

func radToDeg(rad float64) float64 {
	return rad * 180.0 / math.Pi
}
