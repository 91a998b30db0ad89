package config

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetLocations() ([]LocationData, error)
	GetEngine() (*EngineData, error)
	GetCriteria() (map[string]CriterionData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Locations []LocationData           `json:"locations"`
	Engine    EngineData               `json:"engine,omitempty"`
	Criteria  map[string]CriterionData `json:"criteria,omitempty"`
}

// LocationData is a named observer
type LocationData struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation,omitempty"`
	UTCOffset float64 `json:"utc_offset"`
}

// EngineData tunes the solvers. Zero values and nil pointers keep the
// defaults.
type EngineData struct {
	Sunset      SunsetData      `json:"sunset,omitempty"`
	Moonset     MoonsetData     `json:"moonset,omitempty"`
	Conjunction ConjunctionData `json:"conjunction,omitempty"`
	Refraction  RefractionData  `json:"refraction,omitempty"`
	Workers     int             `json:"workers,omitempty"`
}

type SunsetData struct {
	Altitude      *float64 `json:"altitude,omitempty"`
	MaxIterations int      `json:"max_iterations,omitempty"`
	Tolerance     float64  `json:"tolerance,omitempty"` // hours
}

type MoonsetData struct {
	Altitude *float64 `json:"altitude,omitempty"`
	Step     string   `json:"step,omitempty"` // time.Duration string
	Start    *float64 `json:"start,omitempty"`
	End      *float64 `json:"end,omitempty"`
}

type ConjunctionData struct {
	Tolerance       float64 `json:"tolerance,omitempty"` // days
	MaxIterations   int     `json:"max_iterations,omitempty"`
	Step            string  `json:"step,omitempty"`
	TopocentricStep string  `json:"topocentric_step,omitempty"`
	AngleTolerance  float64 `json:"angle_tolerance,omitempty"` // degrees
}

type RefractionData struct {
	Pressure        *float64 `json:"pressure,omitempty"`    // mb
	Temperature     *float64 `json:"temperature,omitempty"` // °C
	NegligibleBelow *float64 `json:"negligible_below,omitempty"`
	HorizonValue    *float64 `json:"horizon_value,omitempty"`
}

// CriterionData overrides the thresholds of one rule
type CriterionData struct {
	Altitude   *float64 `json:"altitude,omitempty"`
	Elongation *float64 `json:"elongation,omitempty"`
	Age        *float64 `json:"age,omitempty"`
}

// Open returns the provider for path: SQLite for .db, .sqlite and .sqlite3
// files, YAML otherwise
func Open(path string, logger *zap.SugaredLogger) (ConfigProvider, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		if _, err := os.Stat(path); err != nil {
			return nil, err
		}
		return NewSQLiteProvider(path, logger)
	default:
		return NewYAMLProvider(path), nil
	}
}
