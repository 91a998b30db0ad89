package ephemeris

import "math"

// AberrationConstant is the constant of annual aberration in arcseconds
const AberrationConstant = 20.4898

// Sun returns the geometric geocentric position of the Sun at jd (UT),
// referred to the FK5 system and the mean equinox of date. Distance is in AU.
func Sun(jd float64) Ecliptic {
	return sunSeries(Centuries(JDE(jd)))
}

// ApparentSun returns the Sun's position corrected for nutation in
// longitude and annual aberration.
func ApparentSun(jd float64) Ecliptic {
	s := Sun(jd)
	s.Longitude = fixAngle(s.Longitude + NutationLongitude(jd) - AberrationConstant/3600/s.Distance)
	return s
}

// SunMeanLongitude returns the Sun's mean longitude in degrees (Meeus 28.2),
// used by the equation of time.
func SunMeanLongitude(jd float64) float64 {
	tau := Centuries(JDE(jd)) / 10
	return fixAngle(280.4664567 + tau*(360007.6982779+tau*(0.03032028+tau*(1.0/49931+tau*(-1.0/15299+tau*(-1.0/1988000))))))
}

// sunSeries evaluates the truncated VSOP87 Earth series at T Julian
// centuries of dynamical time and converts to geocentric coordinates.
func sunSeries(T float64) Ecliptic {
	tau := T / 10

	L := vsopSum(tau, earthL[:])
	B := vsopSum(tau, earthB[:])
	R := vsopSum(tau, earthR[:])

	theta := fixAngle(180 + radToDeg(L))
	beta := -radToDeg(B)

	// conversion to FK5 (Meeus 25.9); Δβ is applied before Δθ uses tan β
	sinL1, cosL1 := math.Sincos(degToRad(theta - 1.397*T - 0.00031*T*T))
	beta += 0.03916 * (cosL1 - sinL1) / 3600
	dTheta := (-0.09033 + 0.03916*(cosL1+sinL1)*math.Tan(degToRad(beta))) / 3600

	return Ecliptic{
		Longitude: fixAngle(theta + dTheta),
		Latitude:  beta,
		Distance:  R,
	}
}

// vsopSum evaluates Σₙ τⁿ Σᵢ Aᵢ cos(Bᵢ + Cᵢτ) and scales by 1e-8
func vsopSum(tau float64, series [][]vsopTerm) float64 {
	var sum float64
	tpow := 1.0
	for _, terms := range series {
		var s float64
		for _, t := range terms {
			s += t.a * math.Cos(t.b+t.c*tau)
		}
		sum += s * tpow
		tpow *= tau
	}
	return sum / 1e8
}
