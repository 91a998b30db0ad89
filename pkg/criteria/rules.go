package criteria

import "math"

// Threshold requires minimum topocentric altitude and elongation and,
// when Age is set, a minimum moon age in hours.
type Threshold struct {
	RuleName   string   `json:"name" yaml:"name"`
	Altitude   float64  `json:"altitude" yaml:"altitude"`
	Elongation float64  `json:"elongation" yaml:"elongation"`
	Age        *float64 `json:"age,omitempty" yaml:"age,omitempty"`
}

func (t Threshold) Name() string { return t.RuleName }

func (t Threshold) Evaluate(in Input) Verdict {
	checks := []Check{
		atLeast("altitude", in.Altitude, t.Altitude),
		atLeast("elongation", in.Elongation, t.Elongation),
	}
	if t.Age != nil {
		checks = append(checks, atLeast("age", in.AgeHours, *t.Age))
	}
	return newVerdict(t.RuleName, checks...)
}

func (t Threshold) override(o Override) Rule {
	if o.Altitude != nil {
		t.Altitude = *o.Altitude
	}
	if o.Elongation != nil {
		t.Elongation = *o.Elongation
	}
	if o.Age != nil {
		t.Age = ptr(*o.Age)
	}
	return t
}

// GlobalCutoff is the single global calendar rule: topocentric altitude and
// geocentric elongation minimums, and a conjunction before 00:00 UTC at the
// end of the observation date.
type GlobalCutoff struct {
	RuleName   string  `json:"name" yaml:"name"`
	Altitude   float64 `json:"altitude" yaml:"altitude"`
	Elongation float64 `json:"elongation" yaml:"elongation"`
}

func (g GlobalCutoff) Name() string { return g.RuleName }

func (g GlobalCutoff) Evaluate(in Input) Verdict {
	return newVerdict(g.RuleName,
		atLeast("altitude", in.Altitude, g.Altitude),
		atLeast("elongation_geocentric", in.ElongationGeocentric, g.Elongation),
		before("conjunction", in.ConjunctionJD, in.DateJD+1),
	)
}

func (g GlobalCutoff) override(o Override) Rule {
	if o.Altitude != nil {
		g.Altitude = *o.Altitude
	}
	if o.Elongation != nil {
		g.Elongation = *o.Elongation
	}
	return g
}

// Existence requires the conjunction before sunset and, with
// RequireAltitude, the Moon's center above the horizon at sunset.
type Existence struct {
	RuleName        string `json:"name" yaml:"name"`
	RequireAltitude bool   `json:"require_altitude" yaml:"require_altitude"`
}

func (e Existence) Name() string { return e.RuleName }

func (e Existence) Evaluate(in Input) Verdict {
	checks := []Check{before("conjunction", in.ConjunctionJD, in.SunsetJD)}
	if e.RequireAltitude {
		checks = append(checks, above("altitude", in.Altitude, 0))
	}
	return newVerdict(e.RuleName, checks...)
}

// Odeh band lower bounds for q
const (
	OdehEasilyVisible     = 5.65
	OdehOpticalAid        = 0.216
	OdehExceptionalAcuity = -0.014
)

// Odeh is the continuous visual-acuity model: q = ARCV − f(W) with f a
// cubic in the crescent width W in arcminutes.
type Odeh struct{}

func (Odeh) Name() string { return "odeh" }

func (Odeh) Evaluate(in Input) Verdict {
	q := OdehScore(in.ARCV, in.CrescentWidth)
	v := newVerdict("odeh", above("q", q, OdehExceptionalAcuity))
	v.Score = &q
	v.Band = OdehBand(q)
	return v
}

// OdehScore returns q for an arc of vision and crescent width
func OdehScore(arcv, width float64) float64 {
	return arcv - (-0.1018*math.Pow(width, 3) + 0.7319*width*width - 6.3226*width + 7.1651)
}

// OdehBand names the visibility band of q
func OdehBand(q float64) string {
	switch {
	case q > OdehEasilyVisible:
		return "easily visible"
	case q > OdehOpticalAid:
		return "visible with optical aid"
	case q > OdehExceptionalAcuity:
		return "visible with exceptional acuity"
	default:
		return "not visible"
	}
}
