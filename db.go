package main

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// AnalysisRun is one persisted run history row. History is a collaborator
// concern around the engine; the engine itself stays stateless per run.
type AnalysisRun struct {
	ID                int64
	RunAt             time.Time
	Mode              string
	ActionableCount   int
	QuestionableCount int
	AvgAgeDays        float64
	AvgActiveDays     float64
	FallbackCount     int
	ReportPath        string
}

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS analysis_runs (
		id                 INTEGER PRIMARY KEY AUTOINCREMENT,
		run_at             DATETIME NOT NULL,
		mode               TEXT NOT NULL,
		actionable_count   INTEGER NOT NULL,
		questionable_count INTEGER NOT NULL,
		avg_age_days       REAL NOT NULL,
		avg_active_days    REAL NOT NULL,
		fallback_count     INTEGER NOT NULL DEFAULT 0,
		report_path        TEXT DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_runs_run_at ON analysis_runs(run_at);

	CREATE TABLE IF NOT EXISTS run_classifications (
		id       INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id   INTEGER NOT NULL,
		item_id  INTEGER NOT NULL,
		category TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_rc_run ON run_classifications(run_id);
	`
	_, err = db.Exec(schema)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// InsertAnalysisRun records a completed run and its per-item category
// assignments, returning the new run id.
func InsertAnalysisRun(db *sql.DB, report *Report, reportPath string) (int64, error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO analysis_runs (run_at, mode, actionable_count, questionable_count, avg_age_days, avg_active_days, fallback_count, report_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		report.GeneratedAt, string(report.Mode),
		report.Stats.ActionableCount, report.Stats.QuestionableCount,
		report.Stats.AverageAgeDays, report.Stats.AverageActiveDurationDays,
		report.FallbackCount, reportPath,
	)
	if err != nil {
		return 0, err
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`INSERT INTO run_classifications (run_id, item_id, category) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, section := range report.Categories {
		for _, item := range section.Items {
			if _, err := stmt.Exec(runID, item.ID, section.Name); err != nil {
				return 0, err
			}
		}
	}

	return runID, tx.Commit()
}

// GetRecentRuns returns up to limit runs, newest first.
func GetRecentRuns(db *sql.DB, limit int) ([]AnalysisRun, error) {
	rows, err := db.Query(
		`SELECT id, run_at, mode, actionable_count, questionable_count, avg_age_days, avg_active_days, fallback_count, report_path
		 FROM analysis_runs ORDER BY run_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []AnalysisRun
	for rows.Next() {
		var run AnalysisRun
		err := rows.Scan(
			&run.ID, &run.RunAt, &run.Mode, &run.ActionableCount, &run.QuestionableCount,
			&run.AvgAgeDays, &run.AvgActiveDays, &run.FallbackCount, &run.ReportPath,
		)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRunCategories returns the per-item category assignments for one run,
// insertion order preserved.
func GetRunCategories(db *sql.DB, runID int64) (map[string][]int64, error) {
	rows, err := db.Query(
		`SELECT item_id, category FROM run_classifications WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byCategory := make(map[string][]int64)
	for rows.Next() {
		var itemID int64
		var category string
		if err := rows.Scan(&itemID, &category); err != nil {
			return nil, err
		}
		byCategory[category] = append(byCategory[category], itemID)
	}
	return byCategory, rows.Err()
}
