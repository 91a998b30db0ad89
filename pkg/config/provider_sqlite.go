package config

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chrissnell/hilal/pkg/migrate"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// MigrationTable tracks the applied schema version of a config database
const MigrationTable = "config_migrations"

const engineKey = "engine"

// Migrations returns the provider for the config database schema
func Migrations() migrate.MigrationProvider {
	return migrate.NewFSProvider(migrations, "migrations", MigrationTable)
}

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider opens the database and brings its schema up to date
func NewSQLiteProvider(dbPath string, logger *zap.SugaredLogger) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	if err := migrate.NewMigrator(db, Migrations(), logger).MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate SQLite database: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	locations, err := s.GetLocations()
	if err != nil {
		return nil, fmt.Errorf("failed to load locations: %w", err)
	}
	config.Locations = locations

	engine, err := s.GetEngine()
	if err != nil {
		return nil, fmt.Errorf("failed to load engine settings: %w", err)
	}
	config.Engine = *engine

	criteria, err := s.GetCriteria()
	if err != nil {
		return nil, fmt.Errorf("failed to load criteria: %w", err)
	}
	config.Criteria = criteria

	return config, nil
}

// GetLocations returns the observers in insertion order
func (s *SQLiteProvider) GetLocations() ([]LocationData, error) {
	rows, err := s.db.Query(`SELECT name, latitude, longitude, elevation, utc_offset FROM locations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	var locations []LocationData
	for rows.Next() {
		var loc LocationData
		if err := rows.Scan(&loc.Name, &loc.Latitude, &loc.Longitude, &loc.Elevation, &loc.UTCOffset); err != nil {
			return nil, fmt.Errorf("failed to scan location row: %w", err)
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

// GetEngine returns the stored solver settings, or empty settings when none
// were saved
func (s *SQLiteProvider) GetEngine() (*EngineData, error) {
	var raw string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, engineKey).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return &EngineData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query engine settings: %w", err)
	}

	var engine EngineData
	if err := json.Unmarshal([]byte(raw), &engine); err != nil {
		return nil, fmt.Errorf("failed to decode engine settings: %w", err)
	}
	return &engine, nil
}

// GetCriteria returns the threshold overrides keyed by rule name
func (s *SQLiteProvider) GetCriteria() (map[string]CriterionData, error) {
	rows, err := s.db.Query(`SELECT name, altitude, elongation, age FROM criteria`)
	if err != nil {
		return nil, fmt.Errorf("failed to query criteria: %w", err)
	}
	defer rows.Close()

	criteria := make(map[string]CriterionData)
	for rows.Next() {
		var name string
		var altitude, elongation, age sql.NullFloat64
		if err := rows.Scan(&name, &altitude, &elongation, &age); err != nil {
			return nil, fmt.Errorf("failed to scan criterion row: %w", err)
		}
		criteria[name] = CriterionData{
			Altitude:   floatPtr(altitude),
			Elongation: floatPtr(elongation),
			Age:        floatPtr(age),
		}
	}
	return criteria, rows.Err()
}

// IsReadOnly returns false since SQLite configuration can be modified
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveConfig replaces the stored configuration with configData
func (s *SQLiteProvider) SaveConfig(configData *ConfigData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{"DELETE FROM locations", "DELETE FROM criteria", "DELETE FROM settings"} {
		if _, err := tx.Exec(q); err != nil {
			return fmt.Errorf("failed to clear existing config: %w", err)
		}
	}

	for _, loc := range configData.Locations {
		if err := insertLocation(tx, loc); err != nil {
			return fmt.Errorf("failed to insert location %s: %w", loc.Name, err)
		}
	}

	for name, c := range configData.Criteria {
		if err := upsertCriterion(tx, name, c); err != nil {
			return fmt.Errorf("failed to insert criterion %s: %w", name, err)
		}
	}

	raw, err := json.Marshal(configData.Engine)
	if err != nil {
		return fmt.Errorf("failed to encode engine settings: %w", err)
	}
	if _, err := tx.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)`, engineKey, string(raw)); err != nil {
		return fmt.Errorf("failed to insert engine settings: %w", err)
	}

	return tx.Commit()
}

// GetLocation retrieves one observer by case-insensitive name
func (s *SQLiteProvider) GetLocation(name string) (*LocationData, error) {
	var loc LocationData
	err := s.db.QueryRow(
		`SELECT name, latitude, longitude, elevation, utc_offset FROM locations WHERE name = ?`, name,
	).Scan(&loc.Name, &loc.Latitude, &loc.Longitude, &loc.Elevation, &loc.UTCOffset)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("location %q not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query location: %w", err)
	}
	return &loc, nil
}

// AddLocation stores a new observer after validating it
func (s *SQLiteProvider) AddLocation(loc LocationData) error {
	if loc.Name == "" {
		return errors.New("location name is required")
	}
	if err := loc.validate(); err != nil {
		return err
	}
	if err := insertLocation(s.db, loc); err != nil {
		return fmt.Errorf("failed to add location %s: %w", loc.Name, err)
	}
	return nil
}

// UpdateLocation replaces the observer stored under name
func (s *SQLiteProvider) UpdateLocation(name string, loc LocationData) error {
	if loc.Name == "" {
		return errors.New("location name is required")
	}
	if err := loc.validate(); err != nil {
		return err
	}
	result, err := s.db.Exec(`
		UPDATE locations SET name = ?, latitude = ?, longitude = ?, elevation = ?, utc_offset = ?
		WHERE name = ?`,
		loc.Name, loc.Latitude, loc.Longitude, loc.Elevation, loc.UTCOffset, name,
	)
	if err != nil {
		return fmt.Errorf("failed to update location %s: %w", name, err)
	}
	return expectRow(result, "location", name)
}

// DeleteLocation removes the observer stored under name
func (s *SQLiteProvider) DeleteLocation(name string) error {
	result, err := s.db.Exec(`DELETE FROM locations WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete location %s: %w", name, err)
	}
	return expectRow(result, "location", name)
}

// SetCriterion stores the overrides of one rule, replacing earlier ones
func (s *SQLiteProvider) SetCriterion(name string, c CriterionData) error {
	if _, err := (&ConfigData{Criteria: map[string]CriterionData{name: c}}).Rules(); err != nil {
		return err
	}
	return upsertCriterion(s.db, name, c)
}

// DeleteCriterion drops the overrides of one rule
func (s *SQLiteProvider) DeleteCriterion(name string) error {
	result, err := s.db.Exec(`DELETE FROM criteria WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete criterion %s: %w", name, err)
	}
	return expectRow(result, "criterion", name)
}

type execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

func insertLocation(db execer, loc LocationData) error {
	_, err := db.Exec(`
		INSERT INTO locations (name, latitude, longitude, elevation, utc_offset)
		VALUES (?, ?, ?, ?, ?)`,
		loc.Name, loc.Latitude, loc.Longitude, loc.Elevation, loc.UTCOffset,
	)
	return err
}

func upsertCriterion(db execer, name string, c CriterionData) error {
	_, err := db.Exec(`
		INSERT OR REPLACE INTO criteria (name, altitude, elongation, age)
		VALUES (?, ?, ?, ?)`,
		name, nullFloat64(c.Altitude), nullFloat64(c.Elongation), nullFloat64(c.Age),
	)
	return err
}

func expectRow(result sql.Result, kind, name string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s %q not found", kind, name)
	}
	return nil
}

func nullFloat64(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
