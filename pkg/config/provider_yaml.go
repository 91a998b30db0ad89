package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from YAML file
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	config, err := ParseYAML(cfgFile)
	if err != nil {
		return nil, err
	}

	y.config = config
	return config, nil
}

// ParseYAML decodes a YAML document into ConfigData
func ParseYAML(data []byte) (*ConfigData, error) {
	// Load into temporary struct with YAML tags
	var yamlConfig struct {
		Locations []LocationYAML           `yaml:"locations"`
		Engine    EngineYAML               `yaml:"engine,omitempty"`
		Criteria  map[string]CriterionYAML `yaml:"criteria,omitempty"`
	}

	err := yaml.UnmarshalStrict(data, &yamlConfig)
	if err != nil {
		return nil, err
	}

	// Convert to our internal format
	config := &ConfigData{
		Locations: make([]LocationData, len(yamlConfig.Locations)),
	}

	for i, loc := range yamlConfig.Locations {
		config.Locations[i] = LocationData{
			Name:      loc.Name,
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
			Elevation: loc.Elevation,
			UTCOffset: loc.UTCOffset,
		}
	}

	e := yamlConfig.Engine
	config.Engine = EngineData{
		Sunset: SunsetData{
			Altitude:      e.Sunset.Altitude,
			MaxIterations: e.Sunset.MaxIterations,
			Tolerance:     e.Sunset.Tolerance,
		},
		Moonset: MoonsetData{
			Altitude: e.Moonset.Altitude,
			Step:     e.Moonset.Step,
			Start:    e.Moonset.Start,
			End:      e.Moonset.End,
		},
		Conjunction: ConjunctionData{
			Tolerance:       e.Conjunction.Tolerance,
			MaxIterations:   e.Conjunction.MaxIterations,
			Step:            e.Conjunction.Step,
			TopocentricStep: e.Conjunction.TopocentricStep,
			AngleTolerance:  e.Conjunction.AngleTolerance,
		},
		Refraction: RefractionData{
			Pressure:        e.Refraction.Pressure,
			Temperature:     e.Refraction.Temperature,
			NegligibleBelow: e.Refraction.NegligibleBelow,
			HorizonValue:    e.Refraction.HorizonValue,
		},
		Workers: e.Workers,
	}

	if len(yamlConfig.Criteria) > 0 {
		config.Criteria = make(map[string]CriterionData, len(yamlConfig.Criteria))
		for name, c := range yamlConfig.Criteria {
			config.Criteria[name] = CriterionData{
				Altitude:   c.Altitude,
				Elongation: c.Elongation,
				Age:        c.Age,
			}
		}
	}

	return config, nil
}

// GetLocations returns the configured observers
func (y *YAMLProvider) GetLocations() ([]LocationData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return y.config.Locations, nil
}

// GetEngine returns solver tuning
func (y *YAMLProvider) GetEngine() (*EngineData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return &y.config.Engine, nil
}

// GetCriteria returns rule threshold overrides
func (y *YAMLProvider) GetCriteria() (map[string]CriterionData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return y.config.Criteria, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with kebab-case keys
type LocationYAML struct {
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
	Elevation float64 `yaml:"elevation,omitempty"`
	UTCOffset float64 `yaml:"utc-offset"`
}

type EngineYAML struct {
	Sunset      SunsetYAML      `yaml:"sunset,omitempty"`
	Moonset     MoonsetYAML     `yaml:"moonset,omitempty"`
	Conjunction ConjunctionYAML `yaml:"conjunction,omitempty"`
	Refraction  RefractionYAML  `yaml:"refraction,omitempty"`
	Workers     int             `yaml:"workers,omitempty"`
}

type SunsetYAML struct {
	Altitude      *float64 `yaml:"altitude,omitempty"`
	MaxIterations int      `yaml:"max-iterations,omitempty"`
	Tolerance     float64  `yaml:"tolerance,omitempty"`
}

type MoonsetYAML struct {
	Altitude *float64 `yaml:"altitude,omitempty"`
	Step     string   `yaml:"step,omitempty"`
	Start    *float64 `yaml:"start,omitempty"`
	End      *float64 `yaml:"end,omitempty"`
}

type ConjunctionYAML struct {
	Tolerance       float64 `yaml:"tolerance,omitempty"`
	MaxIterations   int     `yaml:"max-iterations,omitempty"`
	Step            string  `yaml:"step,omitempty"`
	TopocentricStep string  `yaml:"topocentric-step,omitempty"`
	AngleTolerance  float64 `yaml:"angle-tolerance,omitempty"`
}

type RefractionYAML struct {
	Pressure        *float64 `yaml:"pressure,omitempty"`
	Temperature     *float64 `yaml:"temperature,omitempty"`
	NegligibleBelow *float64 `yaml:"negligible-below,omitempty"`
	HorizonValue    *float64 `yaml:"horizon-value,omitempty"`
}

type CriterionYAML struct {
	Altitude   *float64 `yaml:"altitude,omitempty"`
	Elongation *float64 `yaml:"elongation,omitempty"`
	Age        *float64 `yaml:"age,omitempty"`
}
