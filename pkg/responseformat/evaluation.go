package responseformat

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/chrissnell/hilal/pkg/criteria"
	"github.com/chrissnell/hilal/pkg/ephemeris"
	"github.com/chrissnell/hilal/pkg/hilal"
	"github.com/chrissnell/hilal/pkg/horizon"
	sexa "github.com/soniakeys/sexagesimal"
	"github.com/soniakeys/unit"
)

// Evaluation is a report together with the verdicts of every rule
type Evaluation struct {
	hilal.Report
	Verdicts []criteria.Verdict `json:"verdicts"`
}

// Evaluations renders as one block per report
type Evaluations []Evaluation

// WriteText renders the evaluations separated by blank lines
func (es Evaluations) WriteText(w io.Writer) error {
	for i, e := range es {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := e.WriteText(w); err != nil {
			return err
		}
	}
	return nil
}

// WriteText renders the evaluation as aligned label/value rows
func (e Evaluation) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	loc := e.Location

	fmt.Fprintf(tw, "Location\t%s\t%.6f, %.6f  %.0f m  UTC%+g\n",
		loc.Name, loc.Latitude, loc.Longitude, loc.Elevation, loc.UTCOffset)

	if !e.Applicable {
		fmt.Fprintf(tw, "Date\t%s\n", e.Date)
		fmt.Fprintf(tw, "Sunset\tnone\tcriteria not applicable\n")
	} else {
		p := e.Parameters
		fmt.Fprintf(tw, "Date\t%s\t%s\n", e.Date, e.Ephemeris.Weekday)
		fmt.Fprintf(tw, "Sunset\t%s\n", horizon.FormatHour(e.Sunset.Hour))
		if e.Moonset != nil && p.LagHours != nil {
			fmt.Fprintf(tw, "Moonset\t%s\tlag %+.2f h\n", horizon.FormatHour(e.Moonset.Hour), *p.LagHours)
		} else {
			fmt.Fprintf(tw, "Moonset\tnone in window\n")
		}
		fmt.Fprintf(tw, "Conjunction\t%s\tgeocentric\n", Instant(p.ConjunctionJD))
		fmt.Fprintf(tw, "\t%s\ttopocentric\n", Instant(p.ConjunctionTopocentricJD))
		fmt.Fprintf(tw, "Moon age\t%+.2f h\tgeocentric %+.2f h\n", p.AgeHours, p.AgeGeocentricHours)
		fmt.Fprintf(tw, "Altitude\t%s\tgeocentric airless %s\n", Angle(p.Altitude), Angle(p.AltitudeGeocentric))
		fmt.Fprintf(tw, "Sun altitude\t%s\n", Angle(p.SunAltitude))
		fmt.Fprintf(tw, "Elongation\t%s\tgeocentric %s\n", Angle(p.Elongation), Angle(p.ElongationGeocentric))
		fmt.Fprintf(tw, "ARCV\t%s\n", Angle(p.ARCV))
		fmt.Fprintf(tw, "Relative azimuth\t%s\n", Angle(p.RelativeAzimuth))
		fmt.Fprintf(tw, "Illumination\t%.2f%%\n", p.Illumination*100)
		fmt.Fprintf(tw, "Crescent width\t%.3f′\n", p.CrescentWidth)
		fmt.Fprintf(tw, "Position angle\t%.2f°\n", p.PositionAngle)
		fmt.Fprintf(tw, "Moon RA/Dec\t%s\t%s\n", RA(e.Ephemeris.Moon.Topocentric.RA), Angle(e.Ephemeris.Moon.Topocentric.Dec))
		fmt.Fprintf(tw, "Sun RA/Dec\t%s\t%s\n", RA(e.Ephemeris.Sun.Topocentric.RA), Angle(e.Ephemeris.Sun.Topocentric.Dec))
	}

	if len(e.Verdicts) > 0 {
		fmt.Fprintf(tw, "\nCriterion\tStatus\tChecks\n")
		for _, v := range e.Verdicts {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", v.Rule, v.Status(), checks(v))
		}
	}
	return tw.Flush()
}

func checks(v criteria.Verdict) string {
	parts := make([]string, 0, len(v.Checks)+1)
	for _, c := range v.Checks {
		mark := "✗"
		if c.OK {
			mark = "✓"
		}
		if c.Name == "conjunction" {
			parts = append(parts, fmt.Sprintf("%s conjunction %s %s", mark, c.Op, Instant(c.Threshold)))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s %.2f %s %g", mark, c.Name, c.Value, c.Op, c.Threshold))
	}
	if v.Band != "" {
		parts = append(parts, v.Band)
	}
	return strings.Join(parts, ", ")
}

// Angle formats degrees in sexagesimal notation
func Angle(deg float64) string {
	return fmt.Sprintf("%.0s", sexa.FmtAngle(unit.AngleFromDeg(deg)))
}

// RA formats a right ascension in degrees as hours, minutes and seconds
func RA(deg float64) string {
	return fmt.Sprintf("%.1s", sexa.FmtRA(unit.RAFromDeg(deg)))
}

// Instant formats a Julian Day (UT) as a UTC timestamp
func Instant(jd float64) string {
	return ephemeris.TimeFromJD(jd).Round(time.Second).Format("2006-01-02 15:04:05 UTC")
}
