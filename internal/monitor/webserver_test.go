package monitor

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/depthcloud/internal/clouddb"
)

func newTestServer(t *testing.T) (*WebServer, *clouddb.CloudDB) {
	t.Helper()
	db, err := clouddb.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewWebServer(":0", db), db
}

func TestHandleHealth(t *testing.T) {
	ws, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	ws.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestHandleExportsEmpty(t *testing.T) {
	ws, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	ws.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/exports", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var runs []clouddb.ExportRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	assert.Empty(t, runs)
}

func TestHandleExportsList(t *testing.T) {
	ws, db := newTestServer(t)
	require.NoError(t, db.InsertRun("run-a", "ascii", time.Now()))
	require.NoError(t, db.CompleteRun("run-a", "/tmp/scene.ply", 100, 80, 1.2, time.Second))
	require.NoError(t, db.InsertRun("run-b", "ascii", time.Now()))

	rec := httptest.NewRecorder()
	ws.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/exports", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var runs []clouddb.ExportRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &runs))
	require.Len(t, runs, 2)
	assert.Equal(t, "run-b", runs[0].RunID)
	assert.Equal(t, 80, runs[1].KeptPoints)
}

func TestHandleExportsBadLimit(t *testing.T) {
	ws, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	ws.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/exports?limit=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleExportsMethodNotAllowed(t *testing.T) {
	ws, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	ws.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/exports", strings.NewReader("{}")))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleExportByID(t *testing.T) {
	ws, db := newTestServer(t)
	require.NoError(t, db.InsertRun("run-a", "binary_little_endian", time.Now()))

	rec := httptest.NewRecorder()
	ws.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/exports/run-a", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var run clouddb.ExportRun
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &run))
	assert.Equal(t, "run-a", run.RunID)
	assert.Equal(t, "binary_little_endian", run.Encoding)
}

func TestHandleExportNotFound(t *testing.T) {
	ws, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	ws.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/exports/ghost", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleExportsChart(t *testing.T) {
	ws, db := newTestServer(t)
	require.NoError(t, db.InsertRun("run-a", "ascii", time.Now()))
	require.NoError(t, db.CompleteRun("run-a", "/tmp/scene.ply", 500, 400, 1.1, time.Second))

	rec := httptest.NewRecorder()
	ws.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/exports/chart", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "export runs")
}
