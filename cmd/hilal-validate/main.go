package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/chrissnell/hilal/internal/log"
	"github.com/chrissnell/hilal/internal/reference"
	"github.com/chrissnell/hilal/pkg/hilal"
	"github.com/chrissnell/hilal/pkg/responseformat"
)

type summary struct {
	Results []reference.Result `json:"results"`
	Stats   []reference.Stats  `json:"stats"`
	Passed  bool               `json:"passed"`
}

func main() {
	var (
		format = flag.String("format", responseformat.FormatText, "Output format: text, json or msgpack")
		debug  = flag.Bool("debug", false, "Turn on debugging output")
	)
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	passed, err := validate(os.Stdout, *format)
	if err != nil {
		log.Fatalf("validation failed: %v", err)
	}
	if !passed {
		os.Exit(1)
	}
}

func validate(w io.Writer, format string) (bool, error) {
	engine := hilal.NewEngine()
	engine.Logger = log.GetSugaredLogger()

	results, err := reference.Run(engine, reference.Cases())
	if err != nil {
		return false, err
	}

	s := summary{Results: results, Stats: reference.Summarize(results), Passed: true}
	for _, r := range results {
		if !r.Within() {
			s.Passed = false
			log.Warnw("case outside tolerance", "case", r.Case.String())
		}
	}

	if format != responseformat.FormatText {
		return s.Passed, responseformat.NewFormatter().Write(w, format, s)
	}
	return s.Passed, s.WriteText(w)
}

// WriteText prints one row per compared quantity followed by the summary
func (s summary) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Case\tQuantity\tExpected\tGot\tDelta\t\t")
	for _, r := range s.Results {
		qs := make([]string, 0, len(r.Delta))
		for q := range r.Delta {
			qs = append(qs, string(q))
		}
		sort.Strings(qs)
		for _, name := range qs {
			q := reference.Quantity(name)
			mark := "✓"
			if d := r.Delta[q]; d > reference.Tolerances[q] || d < -reference.Tolerances[q] {
				mark = "✗"
			}
			fmt.Fprintf(tw, "%s\t%s\t%.4f\t%.4f\t%+.4f\t%s\t\n",
				r.Case, q, r.Case.Expected[q], r.Got[q], r.Delta[q], mark)
		}
	}

	fmt.Fprintln(tw, "\t\t\t\t\t\t")
	fmt.Fprintln(tw, "Quantity\tCount\tMean\tStdDev\tMax |Δ|\tTolerance\t")
	for _, st := range s.Stats {
		fmt.Fprintf(tw, "%s\t%d\t%+.4f\t%.4f\t%.4f\t%.2f\t\n",
			st.Quantity, st.Count, st.Mean, st.StdDev, st.MaxAbs, reference.Tolerances[st.Quantity])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if s.Passed {
		_, err := fmt.Fprintln(w, "\nAll cases within tolerance")
		return err
	}
	_, err := fmt.Fprintln(w, "\nSome cases are outside tolerance")
	return err
}
