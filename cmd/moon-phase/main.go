package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/chrissnell/hilal/pkg/coord"
	"github.com/chrissnell/hilal/pkg/lunar"
	"github.com/chrissnell/hilal/pkg/responseformat"
)

type phaseReport struct {
	Time     time.Time            `json:"time"`
	Phase    lunar.MoonPhase      `json:"phase"`
	Crescent *lunar.CrescentAngle `json:"crescent,omitempty"`
}

func main() {
	var timeStr, format string
	var lat, lon float64
	flag.StringVar(&timeStr, "time", "", "UTC time to calculate phase for (RFC3339 format, e.g., 2024-01-15T12:00:00Z)")
	flag.Float64Var(&lat, "lat", 0, "Observer latitude for the crescent orientation")
	flag.Float64Var(&lon, "lon", 0, "Observer longitude for the crescent orientation")
	flag.StringVar(&format, "format", responseformat.FormatText, "Output format: text, json or msgpack")
	flag.Parse()

	var t time.Time
	if timeStr == "" {
		t = time.Now().UTC()
	} else {
		var err error
		t, err = time.Parse(time.RFC3339, timeStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing time: %v\n", err)
			os.Exit(1)
		}
	}

	phase, err := lunar.Calculate(t)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error calculating phase: %v\n", err)
		os.Exit(1)
	}

	rep := phaseReport{Time: t, Phase: phase}
	observer := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "lat" || f.Name == "lon" {
			observer = true
		}
	})
	if observer {
		c := lunar.Crescent(t, coord.Location{Latitude: lat, Longitude: lon})
		rep.Crescent = &c
	}

	if format != responseformat.FormatText {
		if err := responseformat.NewFormatter().Write(os.Stdout, format, rep); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Printf("Moon Phase for %s\n", t.Format(time.RFC3339))
	fmt.Printf("  Phase:        %.1f%% (%.4f)\n", phase.Phase*100, phase.Phase)
	fmt.Printf("  Phase Name:   %s\n", phase.PhaseName)
	fmt.Printf("  Illumination: %.1f%%\n", phase.Illumination*100)
	fmt.Printf("  Age:          %.1f days\n", phase.AgeDays)
	fmt.Printf("  Elongation:   %.1f°\n", phase.Elongation)
	if phase.IsWaxing {
		fmt.Printf("  Direction:    Waxing\n")
	} else {
		fmt.Printf("  Direction:    Waning\n")
	}
	fmt.Printf("  New Moon:     %s (previous)\n", phase.PreviousNewMoon.Format(time.RFC3339))
	fmt.Printf("                %s (next)\n", phase.NextNewMoon.Format(time.RFC3339))
	if rep.Crescent != nil {
		fmt.Printf("  Bright Limb:  %.1f°\n", rep.Crescent.BrightLimbAngle)
		fmt.Printf("  Rotation:     %.1f°\n", rep.Crescent.Rotation)
	}
}
