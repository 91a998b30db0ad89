package coord

import "math"

// Refraction holds the constants of the piecewise refraction model. The
// regime boundary and the horizon value were tuned against the legacy
// almanac tables, which keep the horizon refraction for bodies that have
// just set and drop it once they are more than a degree below the horizon.
type Refraction struct {
	Pressure        float64 `json:"pressure" yaml:"pressure"`                 // millibars
	Temperature     float64 `json:"temperature" yaml:"temperature"`           // °C
	NegligibleBelow float64 `json:"negligible_below" yaml:"negligible_below"` // degrees
	HorizonValue    float64 `json:"horizon_value" yaml:"horizon_value"`       // degrees, used at NegligibleBelow
}

// DefaultRefraction returns the standard-atmosphere constants
func DefaultRefraction() Refraction {
	return Refraction{
		Pressure:        1010,
		Temperature:     10,
		NegligibleBelow: -1,
		HorizonValue:    0.5667,
	}
}

// Correction returns the refraction in degrees to add to an airless
// altitude h. The result is never negative.
//
//	h < NegligibleBelow       0
//	NegligibleBelow <= h < 0  linear from HorizonValue to the value at 0°
//	h >= 0                    cotangent formula scaled for P and T
//
// The step from 0 to HorizonValue at NegligibleBelow is intended: a body
// whose airless altitude is under NegligibleBelow keeps it unrefracted.
func (r Refraction) Correction(h float64) float64 {
	var c float64
	switch {
	case h < r.NegligibleBelow:
		return 0
	case h < 0:
		f := (h - r.NegligibleBelow) / -r.NegligibleBelow
		c = r.HorizonValue + f*(r.cotangent(0)-r.HorizonValue)
	default:
		c = r.cotangent(h)
	}
	return math.Max(c, 0)
}

// cotangent evaluates the refraction formula in degrees for h >= 0
func (r Refraction) cotangent(h float64) float64 {
	arcmin := 1/math.Tan(Rad(h+7.31/(h+4.4))) + 0.0013515
	dR1 := -0.06 * math.Sin(Rad(14.7*arcmin/60+13))
	dR2 := (r.Pressure / 1010) * (283 / (273 + r.Temperature))
	return (arcmin + dR1/60) * dR2 / 60
}
