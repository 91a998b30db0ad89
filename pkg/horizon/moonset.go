package horizon

import (
	"fmt"
	"math"
	"time"

	"github.com/chrissnell/hilal/pkg/coord"
	"github.com/chrissnell/hilal/pkg/ephemeris"
)

// MoonOptions tunes the sampled moonset search
type MoonOptions struct {
	// Altitude is the topocentric apparent altitude of the Moon's center
	Altitude float64       `json:"altitude" yaml:"altitude"`
	Step     time.Duration `json:"step" yaml:"step"`
	Start    float64       `json:"start" yaml:"start"` // local hour
	End      float64       `json:"end" yaml:"end"`     // local hour

	Refraction coord.Refraction `json:"refraction" yaml:"refraction"`
}

// DefaultMoonOptions samples noon to midnight every two minutes
func DefaultMoonOptions() MoonOptions {
	return MoonOptions{
		Altitude:   0,
		Step:       2 * time.Minute,
		Start:      12,
		End:        24,
		Refraction: coord.DefaultRefraction(),
	}
}

// Moonset returns the first time in the search window at which the Moon's
// topocentric apparent altitude falls through opts.Altitude. The crossing
// is located by linear interpolation between the bracketing samples.
func Moonset(loc coord.Location, year, month, day int, opts MoonOptions) (Event, error) {
	step := opts.Step.Hours()
	if step <= 0 {
		return Event{}, fmt.Errorf("horizon: moonset step must be positive, got %s", opts.Step)
	}

	jd0 := ephemeris.JD(year, month, float64(day))
	height := func(local float64) float64 {
		jd := localToJD(jd0, local, loc.UTCOffset)
		return coord.MoonPosition(jd, loc, opts.Refraction).Altitude - opts.Altitude
	}

	n := int(math.Ceil((opts.End - opts.Start) / step))
	prevT := opts.Start
	prev := height(prevT)
	for i := 1; i <= n; i++ {
		t := math.Min(opts.Start+float64(i)*step, opts.End)
		cur := height(t)

		if prev >= 0 && cur < 0 {
			hour := prevT + prev/(prev-cur)*(t-prevT)
			return Event{
				Hour:       math.Mod(hour, 24),
				JD:         localToJD(jd0, hour, loc.UTCOffset),
				Iterations: i,
			}, nil
		}
		prevT, prev = t, cur
	}

	return Event{Iterations: n}, fmt.Errorf("%w: moon does not set between %.2fh and %.2fh", ErrNoEvent, opts.Start, opts.End)
}

// LagTime returns the signed interval in hours from sunset to moonset.
// A negative lag means the Moon set first.
func LagTime(sunset, moonset Event) float64 {
	return (moonset.JD - sunset.JD) * 24
}

// DayLength returns the hours of daylight between sunrise and sunset
func DayLength(sunrise, sunset Event) float64 {
	return (sunset.JD - sunrise.JD) * 24
}

// FormatHour renders a local clock hour as HH:MM:SS
func FormatHour(hour float64) string {
	secs := int(math.Round(hour*3600)) % 86400
	if secs < 0 {
		secs += 86400
	}
	t := time.Date(2000, 1, 1, 0, 0, secs, 0, time.UTC)
	return t.Format("15:04:05")
}
