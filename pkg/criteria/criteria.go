// Package criteria evaluates crescent visibility rule sets against the
// parameters computed at sunset.
package criteria

import (
	"fmt"
	"sort"

	"github.com/chrissnell/hilal/pkg/hilal"
)

// Status summarizes a verdict
type Status string

const (
	Visible       Status = "visible"
	NotVisible    Status = "not visible"
	NotApplicable Status = "not applicable"
)

// Input is the parameter set every rule reads from. Angles are in degrees,
// instants are Julian Days (UT).
type Input struct {
	Altitude             float64 `json:"altitude"`
	Elongation           float64 `json:"elongation"`
	ElongationGeocentric float64 `json:"elongation_geocentric"`
	AgeHours             float64 `json:"age_hours"`
	ARCV                 float64 `json:"arcv"`
	CrescentWidth        float64 `json:"crescent_width"` // arcminutes

	SunsetJD      float64 `json:"sunset_jd"`
	ConjunctionJD float64 `json:"conjunction_jd"`
	DateJD        float64 `json:"date_jd"`
}

// FromParameters builds the rule input from computed parameters
func FromParameters(p hilal.Parameters) Input {
	return Input{
		Altitude:             p.Altitude,
		Elongation:           p.Elongation,
		ElongationGeocentric: p.ElongationGeocentric,
		AgeHours:             p.AgeHours,
		ARCV:                 p.ARCV,
		CrescentWidth:        p.CrescentWidth,
		SunsetJD:             p.SunsetJD,
		ConjunctionJD:        p.ConjunctionJD,
		DateJD:               p.DateJD,
	}
}

// Check is one comparison made by a rule
type Check struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	Op        string  `json:"op"`
	Threshold float64 `json:"threshold"`
	OK        bool    `json:"ok"`
}

func atLeast(name string, value, threshold float64) Check {
	return Check{Name: name, Value: value, Op: ">=", Threshold: threshold, OK: value >= threshold}
}

func above(name string, value, threshold float64) Check {
	return Check{Name: name, Value: value, Op: ">", Threshold: threshold, OK: value > threshold}
}

func before(name string, value, threshold float64) Check {
	return Check{Name: name, Value: value, Op: "<", Threshold: threshold, OK: value < threshold}
}

// Verdict is the outcome of one rule
type Verdict struct {
	Rule       string  `json:"rule"`
	Applicable bool    `json:"applicable"`
	Visible    bool    `json:"visible"`
	Checks     []Check `json:"checks,omitempty"`

	// Score and Band are set by continuous models
	Score *float64 `json:"score,omitempty"`
	Band  string   `json:"band,omitempty"`
}

// Status returns the verdict summary
func (v Verdict) Status() Status {
	switch {
	case !v.Applicable:
		return NotApplicable
	case v.Visible:
		return Visible
	default:
		return NotVisible
	}
}

func newVerdict(rule string, checks ...Check) Verdict {
	v := Verdict{Rule: rule, Applicable: true, Visible: len(checks) > 0, Checks: checks}
	for _, c := range checks {
		v.Visible = v.Visible && c.OK
	}
	return v
}

// Rule is a named visibility criterion
type Rule interface {
	Name() string
	Evaluate(Input) Verdict
}

// Table returns the default rule set in display order
func Table() []Rule {
	return []Rule{
		Threshold{RuleName: "mabims-2-3-8", Altitude: 2, Elongation: 3, Age: ptr(8)},
		Threshold{RuleName: "neo-mabims", Altitude: 3, Elongation: 6.4},
		Threshold{RuleName: "turkey", Altitude: 5, Elongation: 8},
		GlobalCutoff{RuleName: "khgt", Altitude: 5, Elongation: 8},
		Existence{RuleName: "wujudul-hilal", RequireAltitude: true},
		Threshold{RuleName: "lfnu", Altitude: 2, Elongation: 3},
		Existence{RuleName: "ijtima-qobla-ghurub"},
		Odeh{},
	}
}

// Override replaces the thresholds of a rule. Nil fields keep the
// default.
type Override struct {
	Altitude   *float64 `json:"altitude,omitempty" yaml:"altitude,omitempty"`
	Elongation *float64 `json:"elongation,omitempty" yaml:"elongation,omitempty"`
	Age        *float64 `json:"age,omitempty" yaml:"age,omitempty"`
}

type overridable interface {
	override(Override) Rule
}

// TableWith returns the default table with overrides applied by rule name
func TableWith(overrides map[string]Override) ([]Rule, error) {
	rules := Table()
	seen := make(map[string]bool, len(overrides))

	for i, r := range rules {
		o, ok := overrides[r.Name()]
		if !ok {
			continue
		}
		seen[r.Name()] = true

		or, ok := r.(overridable)
		if !ok {
			return nil, fmt.Errorf("criteria: rule %q has no thresholds to override", r.Name())
		}
		rules[i] = or.override(o)
	}

	if len(seen) != len(overrides) {
		var unknown []string
		for name := range overrides {
			if !seen[name] {
				unknown = append(unknown, name)
			}
		}
		sort.Strings(unknown)
		return nil, fmt.Errorf("criteria: unknown rules %v", unknown)
	}
	return rules, nil
}

// Names returns the rule names of rules
func Names(rules []Rule) []string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name()
	}
	return names
}

// Evaluate runs every rule against a report. A report that is not
// applicable yields a not-applicable verdict from every rule.
func Evaluate(rules []Rule, r hilal.Report) []Verdict {
	verdicts := make([]Verdict, len(rules))
	for i, rule := range rules {
		if !r.Applicable {
			verdicts[i] = Verdict{Rule: rule.Name()}
			continue
		}
		verdicts[i] = rule.Evaluate(FromParameters(r.Parameters))
	}
	return verdicts
}

func ptr(v float64) *float64 {
	return &v
}
