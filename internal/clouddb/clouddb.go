package clouddb

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
	"time"

	_ "modernc.org/sqlite"
)

// CloudDB wraps the sqlite database holding the export run log.
type CloudDB struct {
	*sql.DB
}

// schema.sql defines the export_runs table. It is idempotent so Open
// can run it unconditionally on every start.
//
//go:embed schema.sql
var schemaSQL string

// Open opens (creating if needed) the run-log database at path and
// ensures the schema is present.
func Open(path string) (*CloudDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing run-log schema: %w", err)
	}
	log.Println("initialized export run-log schema")
	return &CloudDB{db}, nil
}

// ExportRun is one row of the export run log.
type ExportRun struct {
	ID          int64      `json:"id"`
	RunID       string     `json:"run_id"`
	Status      string     `json:"status"`
	OutputPath  string     `json:"output_path,omitempty"`
	Encoding    string     `json:"encoding"`
	RawPoints   int        `json:"raw_points"`
	KeptPoints  int        `json:"kept_points"`
	ConfCutoff  float64    `json:"conf_cutoff"`
	DurationMs  int64      `json:"duration_ms"`
	Error       string     `json:"error,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// InsertRun records the start of an export run.
func (db *CloudDB) InsertRun(runID, encoding string, startedAt time.Time) error {
	query := `
		INSERT INTO export_runs (run_id, status, encoding, created_at)
		VALUES (?, ?, ?, ?)
	`
	if _, err := db.Exec(query, runID, StatusRunning, encoding, startedAt.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("inserting export run %s: %w", runID, err)
	}
	return nil
}

// CompleteRun marks a run as finished with its result statistics.
func (db *CloudDB) CompleteRun(runID, outputPath string, rawPoints, keptPoints int, confCutoff float64, duration time.Duration) error {
	query := `
		UPDATE export_runs
		SET status = ?, output_path = ?, raw_points = ?, kept_points = ?,
		    conf_cutoff = ?, duration_ms = ?, completed_at = ?
		WHERE run_id = ?
	`
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := db.Exec(query, StatusCompleted, outputPath, rawPoints, keptPoints,
		confCutoff, duration.Milliseconds(), now, runID); err != nil {
		return fmt.Errorf("completing export run %s: %w", runID, err)
	}
	return nil
}

// FailRun marks a run as failed with the error message.
func (db *CloudDB) FailRun(runID, errMsg string, duration time.Duration) error {
	query := `
		UPDATE export_runs
		SET status = ?, error = ?, duration_ms = ?, completed_at = ?
		WHERE run_id = ?
	`
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := db.Exec(query, StatusFailed, errMsg, duration.Milliseconds(), now, runID); err != nil {
		return fmt.Errorf("failing export run %s: %w", runID, err)
	}
	return nil
}

// GetRun returns a single run by its run ID, or nil when absent.
func (db *CloudDB) GetRun(runID string) (*ExportRun, error) {
	query := selectRuns + ` WHERE run_id = ?`
	rows, err := db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("querying export run %s: %w", runID, err)
	}
	defer rows.Close()
	runs, err := scanRuns(rows)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// ListRuns returns the most recent runs, newest first.
func (db *CloudDB) ListRuns(limit int) ([]ExportRun, error) {
	if limit <= 0 {
		limit = 50
	}
	query := selectRuns + ` ORDER BY id DESC LIMIT ?`
	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("listing export runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

const selectRuns = `
	SELECT id, run_id, status, output_path, encoding, raw_points, kept_points,
	       conf_cutoff, duration_ms, error, created_at, completed_at
	FROM export_runs
`

func scanRuns(rows *sql.Rows) ([]ExportRun, error) {
	var runs []ExportRun
	for rows.Next() {
		var r ExportRun
		var outputPath, errMsg, createdAt, completedAt sql.NullString
		if err := rows.Scan(&r.ID, &r.RunID, &r.Status, &outputPath, &r.Encoding,
			&r.RawPoints, &r.KeptPoints, &r.ConfCutoff, &r.DurationMs,
			&errMsg, &createdAt, &completedAt); err != nil {
			return nil, fmt.Errorf("scanning export run: %w", err)
		}
		r.OutputPath = outputPath.String
		r.Error = errMsg.String
		if createdAt.Valid {
			if t, err := time.Parse(time.RFC3339, createdAt.String); err == nil {
				r.CreatedAt = t
			}
		}
		if completedAt.Valid {
			if t, err := time.Parse(time.RFC3339, completedAt.String); err == nil {
				r.CompletedAt = &t
			}
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
