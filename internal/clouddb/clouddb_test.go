package clouddb

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *CloudDB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertAndGetRun(t *testing.T) {
	db := openTestDB(t)
	started := time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC)

	require.NoError(t, db.InsertRun("run-1", "ascii", started))

	run, err := db.GetRun("run-1")
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, StatusRunning, run.Status)
	assert.Equal(t, "ascii", run.Encoding)
	assert.Equal(t, started, run.CreatedAt)
	assert.Nil(t, run.CompletedAt)
}

func TestCompleteRun(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.InsertRun("run-1", "binary_little_endian", time.Now()))
	require.NoError(t, db.CompleteRun("run-1", "/tmp/out/scene.ply", 4096, 1000, 1.3172, 250*time.Millisecond))

	run, err := db.GetRun("run-1")
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, StatusCompleted, run.Status)
	assert.Equal(t, "/tmp/out/scene.ply", run.OutputPath)
	assert.Equal(t, 4096, run.RawPoints)
	assert.Equal(t, 1000, run.KeptPoints)
	assert.InDelta(t, 1.3172, run.ConfCutoff, 1e-9)
	assert.EqualValues(t, 250, run.DurationMs)
	assert.NotNil(t, run.CompletedAt)
}

func TestFailRun(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.InsertRun("run-1", "ascii", time.Now()))
	require.NoError(t, db.FailRun("run-1", "export to PLY: prediction.depth is required but not available", time.Second))

	run, err := db.GetRun("run-1")
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, StatusFailed, run.Status)
	assert.Contains(t, run.Error, "prediction.depth")
}

func TestGetRunMissing(t *testing.T) {
	db := openTestDB(t)
	run, err := db.GetRun("nope")
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestListRunsNewestFirst(t *testing.T) {
	db := openTestDB(t)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, db.InsertRun(id, "ascii", time.Now().Add(time.Duration(i)*time.Minute)))
	}

	runs, err := db.ListRuns(2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].RunID)
	assert.Equal(t, "b", runs[1].RunID)
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	db, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, db.InsertRun("run-1", "ascii", time.Now()))
	require.NoError(t, db.Close())

	// Reopening must keep existing rows.
	db2, err := Open(path)
	require.NoError(t, err)
	defer db2.Close()
	run, err := db2.GetRun("run-1")
	require.NoError(t, err)
	assert.NotNil(t, run)
}
