package migrate

import (
	"database/sql"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

var testMigrations = fstest.MapFS{
	"m/001_locations.up.sql":   {Data: []byte("CREATE TABLE locations (name TEXT PRIMARY KEY);")},
	"m/001_locations.down.sql": {Data: []byte("DROP TABLE locations;")},
	"m/002_settings.up.sql":    {Data: []byte("CREATE TABLE settings (key TEXT PRIMARY KEY, value TEXT);")},
	"m/002_settings.down.sql":  {Data: []byte("DROP TABLE settings;")},
	"m/README.md":              {Data: []byte("ignored")},
}

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func tableExists(t *testing.T, db *sql.DB, name string) bool {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name).Scan(&n))
	return n == 1
}

func TestGetMigrations(t *testing.T) {
	migrations, err := NewFSProvider(testMigrations, "m", "").GetMigrations()
	require.NoError(t, err)
	require.Len(t, migrations, 2)
	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "locations", migrations[0].Name)
	assert.Contains(t, migrations[1].Up, "CREATE TABLE settings")
	assert.Contains(t, migrations[1].Down, "DROP TABLE settings")
}

func TestMigrateUpAndDown(t *testing.T) {
	db := openDB(t)
	m := NewMigrator(db, NewFSProvider(testMigrations, "m", ""), nil)

	pending, err := m.GetPendingMigrations()
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	require.NoError(t, m.MigrateUp())
	v, err := m.GetCurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.True(t, tableExists(t, db, "settings"))

	// idempotent
	require.NoError(t, m.MigrateUp())

	require.NoError(t, m.MigrateDown(1))
	v, err = m.GetCurrentVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.False(t, tableExists(t, db, "settings"))
	assert.True(t, tableExists(t, db, "locations"))

	require.NoError(t, m.MigrateTo(0))
	v, err = m.GetCurrentVersion()
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.False(t, tableExists(t, db, "locations"))

	assert.Error(t, m.MigrateDown(0))
}

func TestMigrateMissingDown(t *testing.T) {
	db := openDB(t)
	fsys := fstest.MapFS{"m/001_only_up.up.sql": {Data: []byte("CREATE TABLE t (x INTEGER);")}}
	m := NewMigrator(db, NewFSProvider(fsys, "m", "versions"), nil)

	require.NoError(t, m.MigrateUp())
	assert.ErrorContains(t, m.MigrateDown(0), "no down SQL")
}
