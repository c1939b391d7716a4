package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Initialize the SQLite database schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createJobsQuery := `
	CREATE TABLE IF NOT EXISTS jobs (
		job_id INTEGER PRIMARY KEY,
		invoice_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		location TEXT NOT NULL,
		client_name TEXT NOT NULL DEFAULT '',
		date_due TEXT NOT NULL,
		price REAL NOT NULL DEFAULT 0,
		earliest_start_hour INTEGER NOT NULL DEFAULT 0,
		latest_start_hour INTEGER NOT NULL DEFAULT 0,
		buffer_after INTEGER NOT NULL DEFAULT 0,
		scheduled_at TEXT
	);
	`

	createPreferencesQuery := `
	CREATE TABLE IF NOT EXISTS preferences (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		max_jobs_per_day INTEGER NOT NULL,
		work_day_start INTEGER NOT NULL,
		work_day_end INTEGER NOT NULL,
		starting_point_address TEXT NOT NULL,
		excluded_days TEXT NOT NULL DEFAULT '',
		excluded_dates TEXT NOT NULL DEFAULT '',
		allow_weekends INTEGER NOT NULL DEFAULT 0,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL
	);
	`

	createClustersQuery := `
	CREATE TABLE IF NOT EXISTS clusters (
		cluster_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		lon REAL NOT NULL,
		lat REAL NOT NULL,
		radius_km REAL NOT NULL,
		max_jobs_per_day INTEGER NOT NULL,
		buffer_minutes INTEGER NOT NULL,
		aliases TEXT NOT NULL,
		exclusions TEXT NOT NULL DEFAULT '[]',
		position INTEGER NOT NULL
	);
	`

	createSchedulesQuery := `
	CREATE TABLE IF NOT EXISTS schedules (
		schedule_id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		location TEXT NOT NULL,
		start_datetime TEXT NOT NULL,
		hours REAL NOT NULL DEFAULT 0,
		committed INTEGER NOT NULL DEFAULT 1
	);
	`

	createPatternsQuery := `
	CREATE TABLE IF NOT EXISTS patterns (
		identifier TEXT PRIMARY KEY,
		preferred_hour INTEGER NOT NULL,
		hour_confidence REAL NOT NULL,
		preferred_day_of_week INTEGER NOT NULL,
		day_confidence REAL NOT NULL,
		average_duration INTEGER NOT NULL,
		occurrences TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	`

	createMatrixQuery := `
	CREATE TABLE IF NOT EXISTS optimization_matrix (
		run_id TEXT PRIMARY KEY,
		set_key TEXT NOT NULL,
		locations TEXT NOT NULL,
		coords TEXT NOT NULL,
		durations TEXT NOT NULL,
		distances TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lon REAL NOT NULL,
        lat REAL NOT NULL
    );
	`

	createIndexQueries := `
	CREATE INDEX IF NOT EXISTS idx_optimization_matrix_set_key
    ON optimization_matrix(set_key, created_at);
	`

	statements := []string{
		createJobsQuery,
		createPreferencesQuery,
		createClustersQuery,
		createSchedulesQuery,
		createPatternsQuery,
		createMatrixQuery,
		createGeocodeCacheQuery,
		createIndexQueries,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type JobSeed struct {
	JobID      int     `json:"job_id"`
	InvoiceID  int     `json:"invoice_id"`
	Title      string  `json:"title"`
	Location   string  `json:"location"`
	ClientName string  `json:"client_name"`
	DateDue    string  `json:"date_due"`
	Price      float64 `json:"price"`
}

type ScheduleSeed struct {
	Title         string  `json:"title"`
	Location      string  `json:"location"`
	StartDateTime string  `json:"start_datetime"`
	Hours         float64 `json:"hours"`
	Committed     bool    `json:"committed"`
}

type SeedDocument struct {
	Jobs      []JobSeed      `json:"jobs"`
	Schedules []ScheduleSeed `json:"schedules"`
}

// Populate the database with jobs and schedule history from a JSON file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	raw, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed data: read %q: %w", jsonPath, err)
	}

	var doc SeedDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("seed data: parse json: %w", err)
	}

	for i, j := range doc.Jobs {
		if j.JobID <= 0 {
			return fmt.Errorf("seed data: invalid job_id at index %d: %d", i+1, j.JobID)
		}
		if strings.TrimSpace(j.Location) == "" {
			return fmt.Errorf("seed data: job at index %d: location cannot be empty", i+1)
		}
		if _, err := time.Parse(time.RFC3339, j.DateDue); err != nil {
			return fmt.Errorf("seed data: job at index %d: bad date_due %q", i+1, j.DateDue)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed data: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	jobStmt, err := tx.Prepare(`
	INSERT OR REPLACE INTO jobs (
		job_id,
		invoice_id,
		title,
		location,
		client_name,
		date_due,
		price
	)
	VALUES (?, ?, ?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("seed data: prepare job insert: %w", err)
	}
	defer jobStmt.Close()

	for _, j := range doc.Jobs {
		if _, err := jobStmt.Exec(
			j.JobID, j.InvoiceID, j.Title, strings.TrimSpace(j.Location),
			j.ClientName, j.DateDue, j.Price,
		); err != nil {
			return fmt.Errorf("seed data: insert job_id=%d: %w", j.JobID, err)
		}
	}

	schedStmt, err := tx.Prepare(`
	INSERT INTO schedules (title, location, start_datetime, hours, committed)
	VALUES (?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("seed data: prepare schedule insert: %w", err)
	}
	defer schedStmt.Close()

	for i, e := range doc.Schedules {
		if _, err := time.Parse(time.RFC3339, e.StartDateTime); err != nil {
			return fmt.Errorf("seed data: schedule at index %d: bad start_datetime %q", i+1, e.StartDateTime)
		}
		committed := 0
		if e.Committed {
			committed = 1
		}
		if _, err := schedStmt.Exec(e.Title, e.Location, e.StartDateTime, e.Hours, committed); err != nil {
			return fmt.Errorf("seed data: insert schedule at index %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed data: commit tx: %w", err)
	}

	return nil
}

// EnsureDefaultPreferences inserts a working preferences row when none
// exists, so a fresh local database can optimize immediately.
func EnsureDefaultPreferences(db *sql.DB, depotAddress string) error {
	var n int
	if err := db.QueryRow(`SELECT COUNT(1) FROM preferences WHERE id = 1;`).Scan(&n); err != nil {
		return fmt.Errorf("ensure preferences: count: %w", err)
	}
	if n > 0 {
		return nil
	}

	start := time.Now().UTC()
	end := start.AddDate(0, 3, 0)

	_, err := db.Exec(`
	INSERT INTO preferences (
		id, max_jobs_per_day, work_day_start, work_day_end,
		starting_point_address, excluded_days, excluded_dates,
		allow_weekends, start_date, end_date
	)
	VALUES (1, ?, ?, ?, ?, '', '', 0, ?, ?);
	`, 6, 8, 17, depotAddress, start.Format(time.DateOnly), end.Format(time.DateOnly))
	if err != nil {
		return fmt.Errorf("ensure preferences: insert defaults: %w", err)
	}

	return nil
}
