package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/chrissnell/hilal/internal/constants"
	"github.com/chrissnell/hilal/internal/log"
	"github.com/chrissnell/hilal/pkg/config"
	"github.com/chrissnell/hilal/pkg/coord"
	"github.com/chrissnell/hilal/pkg/criteria"
	"github.com/chrissnell/hilal/pkg/hilal"
	"github.com/chrissnell/hilal/pkg/responseformat"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], clockwork.NewRealClock(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "hilal: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	config   string
	location string
	lat, lon float64
	elev, tz float64
	date     string
	days     int
	format   string
	debug    bool
	logFile  string
	version  bool

	coordsSet bool
}

func parseFlags(args []string) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("hilal", flag.ContinueOnError)
	fs.StringVar(&o.config, "config", os.Getenv(constants.EnvConfig), "Path to configuration file: YAML, or SQLite with a .db extension")
	fs.StringVar(&o.location, "location", os.Getenv(constants.EnvLocation), "Location name from the config, or 'all'")
	fs.Float64Var(&o.lat, "lat", 0, "Observer latitude in degrees, north positive")
	fs.Float64Var(&o.lon, "lon", 0, "Observer longitude in degrees, east positive")
	fs.Float64Var(&o.elev, "elev", 0, "Observer elevation in meters")
	fs.Float64Var(&o.tz, "tz", 0, "Observer UTC offset in hours")
	fs.StringVar(&o.date, "date", "", "Civil date YYYY-MM-DD (default: today at the observer)")
	fs.IntVar(&o.days, "days", 1, "Number of consecutive evenings to evaluate")
	fs.StringVar(&o.format, "format", os.Getenv(constants.EnvFormat), "Output format: json, msgpack or text")
	fs.BoolVar(&o.debug, "debug", false, "Turn on debugging output")
	fs.StringVar(&o.logFile, "log-file", "", "Also write logs to this file, rotated by size")
	fs.BoolVar(&o.version, "version", false, "Show version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "lat" || f.Name == "lon" {
			o.coordsSet = true
		}
	})
	if o.days < 1 {
		return nil, fmt.Errorf("-days must be at least 1, got %d", o.days)
	}
	return o, nil
}

func run(ctx context.Context, args []string, clock clockwork.Clock, stdout io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}

	if o.version {
		_, err := fmt.Fprintf(stdout, "hilal %s\n", constants.Version)
		return err
	}

	if err := log.InitWithFile(o.debug, o.logFile); err != nil {
		return err
	}
	defer log.Sync()

	cfg := &config.ConfigData{}
	if o.config != "" {
		if cfg, err = loadConfig(o.config); err != nil {
			return err
		}
	}

	engine, err := cfg.NewEngine()
	if err != nil {
		return err
	}
	engine.Logger = log.GetSugaredLogger()

	rules, err := cfg.Rules()
	if err != nil {
		return err
	}

	locs, err := locations(o, cfg)
	if err != nil {
		return err
	}

	queries, err := buildQueries(o, locs, clock)
	if err != nil {
		return err
	}
	log.Debugw("evaluating", "queries", len(queries), "rules", criteria.Names(rules))

	reports, err := engine.ComputeMany(ctx, queries)
	if err != nil {
		return err
	}

	evs := make(responseformat.Evaluations, len(reports))
	for i, r := range reports {
		evs[i] = responseformat.Evaluation{Report: r, Verdicts: criteria.Evaluate(rules, r)}
		if !r.Applicable {
			log.Infow("no sunset, criteria not applicable", "location", r.Location.Name, "date", r.Date)
		}
	}

	return responseformat.NewFormatter().Write(stdout, o.format, evs)
}

func loadConfig(path string) (*config.ConfigData, error) {
	filename, _ := filepath.Abs(path)
	provider, err := config.Open(filename, log.GetSugaredLogger())
	if err != nil {
		return nil, fmt.Errorf("error opening config %s: %w", filename, err)
	}
	defer provider.Close()

	cfg, err := provider.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error reading config file. Did you pass the -config flag? Run with -h for help: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func locations(o *options, cfg *config.ConfigData) ([]coord.Location, error) {
	switch {
	case o.coordsSet:
		name := o.location
		if name == "" {
			name = fmt.Sprintf("%.4f,%.4f", o.lat, o.lon)
		}
		loc, err := config.LocationData{
			Name:      name,
			Latitude:  o.lat,
			Longitude: o.lon,
			Elevation: o.elev,
			UTCOffset: o.tz,
		}.Location()
		if err != nil {
			return nil, err
		}
		return []coord.Location{loc}, nil
	case o.location == "all":
		if len(cfg.Locations) == 0 {
			return nil, errors.New("-location all needs a config with locations")
		}
		return cfg.AllLocations()
	case o.location != "":
		loc, err := cfg.FindLocation(o.location)
		if err != nil {
			return nil, err
		}
		return []coord.Location{loc}, nil
	default:
		return nil, errors.New("no observer: pass -lat and -lon, or -location with -config")
	}
}

// buildQueries expands locations and evenings. Without -date each
// location starts from its own local date at the current instant.
func buildQueries(o *options, locs []coord.Location, clock clockwork.Clock) ([]hilal.Query, error) {
	var start time.Time
	if o.date != "" {
		var err error
		start, err = time.Parse(hilal.DateFormat, o.date)
		if err != nil {
			return nil, fmt.Errorf("-date: %w", err)
		}
	}

	queries := make([]hilal.Query, 0, len(locs)*o.days)
	for _, loc := range locs {
		day := start
		if o.date == "" {
			zone := time.FixedZone(loc.Name, int(loc.UTCOffset*3600))
			day = clock.Now().In(zone)
		}
		for i := 0; i < o.days; i++ {
			d := day.AddDate(0, 0, i)
			queries = append(queries, hilal.Query{
				Location: loc,
				Year:     d.Year(),
				Month:    int(d.Month()),
				Day:      d.Day(),
			})
		}
	}
	return queries, nil
}
