package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/chrissnell/hilal/pkg/coord"
	"github.com/chrissnell/hilal/pkg/criteria"
	"github.com/chrissnell/hilal/pkg/hilal"
	"go.uber.org/multierr"
)

// Validate checks every section and returns all problems found
func (c *ConfigData) Validate() error {
	var err error

	seen := make(map[string]bool, len(c.Locations))
	for i, loc := range c.Locations {
		err = multierr.Append(err, loc.validate())
		if loc.Name == "" {
			err = multierr.Append(err, fmt.Errorf("location %d: name is required", i))
			continue
		}
		key := strings.ToLower(loc.Name)
		if seen[key] {
			err = multierr.Append(err, fmt.Errorf("location %q: duplicate name", loc.Name))
		}
		seen[key] = true
	}

	e := c.Engine
	if e.Sunset.MaxIterations < 0 {
		err = multierr.Append(err, fmt.Errorf("engine.sunset.max-iterations must be positive, got %d", e.Sunset.MaxIterations))
	}
	if e.Sunset.Tolerance < 0 {
		err = multierr.Append(err, fmt.Errorf("engine.sunset.tolerance must be positive, got %v", e.Sunset.Tolerance))
	}
	if e.Conjunction.MaxIterations < 0 {
		err = multierr.Append(err, fmt.Errorf("engine.conjunction.max-iterations must be positive, got %d", e.Conjunction.MaxIterations))
	}
	if e.Conjunction.Tolerance < 0 || e.Conjunction.AngleTolerance < 0 {
		err = multierr.Append(err, fmt.Errorf("engine.conjunction tolerances must be positive"))
	}
	steps := []struct{ name, value string }{
		{"engine.moonset.step", e.Moonset.Step},
		{"engine.conjunction.step", e.Conjunction.Step},
		{"engine.conjunction.topocentric-step", e.Conjunction.TopocentricStep},
	}
	for _, s := range steps {
		if _, perr := parseStep(s.value); perr != nil {
			err = multierr.Append(err, fmt.Errorf("%s: %w", s.name, perr))
		}
	}
	if e.Moonset.Start != nil && e.Moonset.End != nil && *e.Moonset.Start >= *e.Moonset.End {
		err = multierr.Append(err, fmt.Errorf("engine.moonset: start %v must be before end %v", *e.Moonset.Start, *e.Moonset.End))
	}
	if e.Workers < 0 {
		err = multierr.Append(err, fmt.Errorf("engine.workers must not be negative, got %d", e.Workers))
	}

	if _, cerr := criteria.TableWith(c.overrides()); cerr != nil {
		err = multierr.Append(err, cerr)
	}

	return err
}

func (l LocationData) validate() error {
	var err error
	if l.Latitude < -90 || l.Latitude > 90 {
		err = multierr.Append(err, fmt.Errorf("location %q: latitude %v outside [-90, 90]", l.Name, l.Latitude))
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		err = multierr.Append(err, fmt.Errorf("location %q: longitude %v outside [-180, 180]", l.Name, l.Longitude))
	}
	if l.UTCOffset < -14 || l.UTCOffset > 14 {
		err = multierr.Append(err, fmt.Errorf("location %q: utc offset %v outside [-14, 14]", l.Name, l.UTCOffset))
	}
	return err
}

// Location converts the data to an observer, validating ranges
func (l LocationData) Location() (coord.Location, error) {
	if err := l.validate(); err != nil {
		return coord.Location{}, err
	}
	return coord.Location{
		Name:      l.Name,
		Latitude:  l.Latitude,
		Longitude: l.Longitude,
		Elevation: l.Elevation,
		UTCOffset: l.UTCOffset,
	}, nil
}

// FindLocation returns the observer with the given name, ignoring case
func (c *ConfigData) FindLocation(name string) (coord.Location, error) {
	for _, l := range c.Locations {
		if strings.EqualFold(l.Name, name) {
			return l.Location()
		}
	}
	return coord.Location{}, fmt.Errorf("location %q not found in config", name)
}

// AllLocations converts every configured observer
func (c *ConfigData) AllLocations() ([]coord.Location, error) {
	locs := make([]coord.Location, 0, len(c.Locations))
	for _, l := range c.Locations {
		loc, err := l.Location()
		if err != nil {
			return nil, err
		}
		locs = append(locs, loc)
	}
	return locs, nil
}

// NewEngine builds an engine from the defaults with the configured tuning
// applied.
func (c *ConfigData) NewEngine() (*hilal.Engine, error) {
	e := hilal.NewEngine()
	d := c.Engine

	if d.Sunset.Altitude != nil {
		e.Sunset.Altitude = *d.Sunset.Altitude
	}
	if d.Sunset.MaxIterations > 0 {
		e.Sunset.MaxIterations = d.Sunset.MaxIterations
	}
	if d.Sunset.Tolerance > 0 {
		e.Sunset.Tolerance = d.Sunset.Tolerance
	}

	if d.Moonset.Altitude != nil {
		e.Moonset.Altitude = *d.Moonset.Altitude
	}
	if d.Moonset.Start != nil {
		e.Moonset.Start = *d.Moonset.Start
	}
	if d.Moonset.End != nil {
		e.Moonset.End = *d.Moonset.End
	}
	step, err := parseStep(d.Moonset.Step)
	if err != nil {
		return nil, fmt.Errorf("engine.moonset.step: %w", err)
	}
	if step > 0 {
		e.Moonset.Step = step
	}

	if d.Conjunction.Tolerance > 0 {
		e.Conjunction.Tolerance = d.Conjunction.Tolerance
	}
	if d.Conjunction.MaxIterations > 0 {
		e.Conjunction.MaxIterations = d.Conjunction.MaxIterations
	}
	if d.Conjunction.AngleTolerance > 0 {
		e.Conjunction.AngleTolerance = d.Conjunction.AngleTolerance
	}
	if step, err = parseStep(d.Conjunction.Step); err != nil {
		return nil, fmt.Errorf("engine.conjunction.step: %w", err)
	} else if step > 0 {
		e.Conjunction.Step = step
	}
	if step, err = parseStep(d.Conjunction.TopocentricStep); err != nil {
		return nil, fmt.Errorf("engine.conjunction.topocentric-step: %w", err)
	} else if step > 0 {
		e.Conjunction.TopocentricStep = step
	}

	r := d.Refraction
	if r.Pressure != nil {
		e.Refraction.Pressure = *r.Pressure
	}
	if r.Temperature != nil {
		e.Refraction.Temperature = *r.Temperature
	}
	if r.NegligibleBelow != nil {
		e.Refraction.NegligibleBelow = *r.NegligibleBelow
	}
	if r.HorizonValue != nil {
		e.Refraction.HorizonValue = *r.HorizonValue
	}
	// moonset altitudes share the engine's atmosphere
	e.Moonset.Refraction = e.Refraction

	e.Workers = d.Workers
	return e, nil
}

// Rules returns the criteria table with the configured overrides
func (c *ConfigData) Rules() ([]criteria.Rule, error) {
	return criteria.TableWith(c.overrides())
}

func (c *ConfigData) overrides() map[string]criteria.Override {
	o := make(map[string]criteria.Override, len(c.Criteria))
	for name, cd := range c.Criteria {
		o[name] = criteria.Override{
			Altitude:   cd.Altitude,
			Elongation: cd.Elongation,
			Age:        cd.Age,
		}
	}
	return o
}

func parseStep(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("step must be positive, got %s", s)
	}
	return d, nil
}
