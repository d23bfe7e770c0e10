// Package monitor serves a small HTTP debugging interface over the
// export run log: run history as JSON and a go-echarts chart of point
// counts per run.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/depthcloud/internal/clouddb"
)

// WebServer handles the HTTP interface for browsing export runs.
type WebServer struct {
	address string
	db      *clouddb.CloudDB
	server  *http.Server
}

// NewWebServer creates a monitor server bound to address, reading run
// history from db.
func NewWebServer(address string, db *clouddb.CloudDB) *WebServer {
	ws := &WebServer{
		address: address,
		db:      db,
	}
	ws.server = &http.Server{
		Addr:    address,
		Handler: ws.setupRoutes(),
	}
	return ws
}

func (ws *WebServer) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", ws.handleHealth)
	mux.HandleFunc("/api/exports", ws.handleExports)
	mux.HandleFunc("/api/exports/", ws.handleExport)
	mux.HandleFunc("/debug/exports/chart", ws.handleExportsChart)
	return mux
}

// Handler exposes the route table for tests and embedding.
func (ws *WebServer) Handler() http.Handler {
	return ws.server.Handler
}

// Start runs the server until ctx is cancelled, then shuts down
// gracefully.
func (ws *WebServer) Start(ctx context.Context) error {
	go func() {
		log.Printf("starting monitor HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to start monitor server: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return ws.server.Shutdown(shutdownCtx)
}

func (ws *WebServer) writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// handleExports returns recent export runs, newest first.
// Query params: limit (default 50).
func (ws *WebServer) handleExports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v <= 0 || v > 1000 {
			ws.writeJSONError(w, http.StatusBadRequest, "invalid 'limit' parameter")
			return
		}
		limit = v
	}

	runs, err := ws.db.ListRuns(limit)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("list export runs: %v", err))
		return
	}
	if runs == nil {
		runs = []clouddb.ExportRun{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

// handleExport returns one run by its run ID (/api/exports/<run_id>).
func (ws *WebServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ws.writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	runID := r.URL.Path[len("/api/exports/"):]
	if runID == "" {
		ws.writeJSONError(w, http.StatusBadRequest, "missing run id")
		return
	}
	run, err := ws.db.GetRun(runID)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("get export run: %v", err))
		return
	}
	if run == nil {
		ws.writeJSONError(w, http.StatusNotFound, fmt.Sprintf("no export run '%s'", runID))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(run)
}

// handleExportsChart renders a bar chart (HTML) of raw vs kept point
// counts for recent runs. Debugging-only endpoint, no auth.
func (ws *WebServer) handleExportsChart(w http.ResponseWriter, r *http.Request) {
	runs, err := ws.db.ListRuns(100)
	if err != nil {
		ws.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("list export runs: %v", err))
		return
	}

	// Oldest first for a left-to-right timeline.
	labels := make([]string, 0, len(runs))
	raw := make([]opts.BarData, 0, len(runs))
	kept := make([]opts.BarData, 0, len(runs))
	for i := len(runs) - 1; i >= 0; i-- {
		run := runs[i]
		label := run.RunID
		if len(label) > 8 {
			label = label[:8]
		}
		labels = append(labels, label)
		raw = append(raw, opts.BarData{Value: run.RawPoints})
		kept = append(kept, opts.BarData{Value: run.KeptPoints})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "export runs",
			Subtitle: "back-projected vs exported point counts",
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels).
		AddSeries("raw points", raw).
		AddSeries("kept points", kept)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := bar.Render(w); err != nil {
		log.Printf("render export chart: %v", err)
	}
}
