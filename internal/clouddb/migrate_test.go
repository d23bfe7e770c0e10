package clouddb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMigrationsDir = "../../db/migrations"

func TestMigrateUpAndVersion(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, db.MigrateUp(testMigrationsDir))
	version, dirty, err := db.MigrateVersion(testMigrationsDir)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.EqualValues(t, 1, version)

	// The migrated schema must accept run records.
	require.NoError(t, db.InsertRun("run-1", "ascii", time.Now()))
}

func TestMigrateUpIdempotent(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.MigrateUp(testMigrationsDir))
	require.NoError(t, db.MigrateUp(testMigrationsDir))
}

func TestMigrateDown(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.MigrateUp(testMigrationsDir))
	require.NoError(t, db.MigrateDown(testMigrationsDir))

	_, _, err := db.MigrateVersion(testMigrationsDir)
	require.NoError(t, err)
}

func TestMigrateMissingDir(t *testing.T) {
	db := openTestDB(t)
	err := db.MigrateUp(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
