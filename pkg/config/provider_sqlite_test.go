package config

import (
	"path/filepath"
	"testing"

	"github.com/chrissnell/hilal/pkg/migrate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLite(t *testing.T) (*SQLiteProvider, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hilal.db")
	p, err := NewSQLiteProvider(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p, path
}

func TestSQLiteEmpty(t *testing.T) {
	p, _ := newSQLite(t)
	assert.False(t, p.IsReadOnly())

	cfg, err := p.LoadConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.Locations)
	assert.Empty(t, cfg.Criteria)
	assert.Equal(t, EngineData{}, cfg.Engine)

	v, err := migrate.NewMigrator(p.db, Migrations(), nil).GetCurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestSQLiteSaveConfigRoundTrip(t *testing.T) {
	want, err := ParseYAML([]byte(sampleYAML))
	require.NoError(t, err)

	p, path := newSQLite(t)
	require.NoError(t, p.SaveConfig(want))
	require.NoError(t, p.Close())

	// reopening must not reapply the schema
	p2, err := NewSQLiteProvider(path, nil)
	require.NoError(t, err)
	defer p2.Close()

	got, err := p2.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, want.Locations, got.Locations)
	assert.Equal(t, want.Engine, got.Engine)
	assert.Equal(t, want.Criteria, got.Criteria)
	assert.NoError(t, got.Validate())

	// saving again replaces rather than appends
	require.NoError(t, p2.SaveConfig(want))
	locs, err := p2.GetLocations()
	require.NoError(t, err)
	assert.Len(t, locs, 2)
}

func TestSQLiteLocations(t *testing.T) {
	p, _ := newSQLite(t)

	aceh := LocationData{Name: "Aceh", Latitude: 5.466667, Longitude: 95.241944, Elevation: 10, UTCOffset: 7}
	require.NoError(t, p.AddLocation(aceh))
	assert.Error(t, p.AddLocation(aceh), "duplicate name")
	assert.Error(t, p.AddLocation(LocationData{Name: "ACEH", Latitude: 1}), "names are case-insensitive")
	assert.Error(t, p.AddLocation(LocationData{Name: "Pole", Latitude: 91}))
	assert.Error(t, p.AddLocation(LocationData{Latitude: 1}))

	got, err := p.GetLocation("aceh")
	require.NoError(t, err)
	assert.Equal(t, aceh, *got)

	moved := aceh
	moved.Name = "Banda Aceh"
	moved.Elevation = 20
	require.NoError(t, p.UpdateLocation("Aceh", moved))
	_, err = p.GetLocation("Aceh")
	assert.ErrorContains(t, err, "not found")
	got, err = p.GetLocation("Banda Aceh")
	require.NoError(t, err)
	assert.Equal(t, 20.0, got.Elevation)

	assert.ErrorContains(t, p.UpdateLocation("Atlantis", moved), "not found")

	require.NoError(t, p.DeleteLocation("Banda Aceh"))
	assert.ErrorContains(t, p.DeleteLocation("Banda Aceh"), "not found")
}

func TestSQLiteCriteria(t *testing.T) {
	p, _ := newSQLite(t)

	alt := 4.0
	require.NoError(t, p.SetCriterion("neo-mabims", CriterionData{Altitude: &alt}))
	assert.Error(t, p.SetCriterion("no-such-rule", CriterionData{Altitude: &alt}))

	crit, err := p.GetCriteria()
	require.NoError(t, err)
	require.Contains(t, crit, "neo-mabims")
	assert.Equal(t, 4.0, *crit["neo-mabims"].Altitude)
	assert.Nil(t, crit["neo-mabims"].Age)

	require.NoError(t, p.DeleteCriterion("neo-mabims"))
	assert.ErrorContains(t, p.DeleteCriterion("neo-mabims"), "not found")
}

func TestOpen(t *testing.T) {
	_, dbPath := newSQLite(t)

	p, err := Open(dbPath, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteProvider{}, p)
	require.NoError(t, p.Close())

	p, err = Open(writeConfig(t, sampleYAML), nil)
	require.NoError(t, err)
	assert.IsType(t, &YAMLProvider{}, p)

	_, err = Open(filepath.Join(t.TempDir(), "missing.db"), nil)
	assert.Error(t, err)
}
