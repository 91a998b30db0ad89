package ephemeris

import (
	"math"

	"github.com/soniakeys/meeus/v3/base"
)

// NutationLongitude returns the nutation in longitude Δψ in degrees.
// Terms accumulate in units of 0.0001 arcsecond and are converted once.
func NutationLongitude(jd float64) float64 {
	return nutationLongitude(Centuries(JDE(jd)))
}

func nutationLongitude(T float64) float64 {
	D, M, Mp, F := fundamentals(T)
	om := degToRad(ascendingNode(T))
	d, m, mp, f := degToRad(D), degToRad(M), degToRad(Mp), degToRad(F)

	var sum float64
	for _, t := range nutationTerms {
		arg := float64(t.d)*d + float64(t.m)*m + float64(t.mp)*mp + float64(t.f)*f + float64(t.om)*om
		sum += (t.s0 + t.s1*T) * math.Sin(arg)
	}
	return sum / (3600 * 10000)
}

// NutationObliquity returns the nutation in obliquity Δε in degrees, from
// the four dominant terms (accurate to about 0.1″).
func NutationObliquity(jd float64) float64 {
	T := Centuries(JDE(jd))
	om := degToRad(ascendingNode(T))
	L := degToRad(280.4665 + 36000.7698*T)
	Lp := degToRad(218.3165 + 481267.8813*T)
	return (9.20*math.Cos(om) + 0.57*math.Cos(2*L) + 0.10*math.Cos(2*Lp) - 0.09*math.Cos(2*om)) / 3600
}

// MeanObliquity returns the mean obliquity of the ecliptic ε₀ in degrees
// (Meeus 22.2). This is the obliquity used by every coordinate transform.
func MeanObliquity(jd float64) float64 {
	T := Centuries(JDE(jd))
	return 23 + 26.0/60 + base.Horner(T, 21.448, -46.815, -0.00059, 0.001813)/3600
}

// TrueObliquity returns ε₀ + Δε in degrees
func TrueObliquity(jd float64) float64 {
	return MeanObliquity(jd) + NutationObliquity(jd)
}

// ascendingNode returns the longitude of the Moon's mean ascending node Ω
func ascendingNode(T float64) float64 {
	return fixAngle(base.Horner(T, 125.04452, -1934.136261, 0.0020708, 1.0/450000))
}
