package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"schedule-optimizer-service/internal/domain"
)

// SQLite-backed implementation of the ExistingScheduleSource port. The
// schedules table serves double duty: committed future entries feed
// conflict resolution, and past entries are the history that patterns are
// derived from.
type SqliteScheduleRepository struct{ DB *sql.DB }

func NewSqliteScheduleRepository(db *sql.DB) *SqliteScheduleRepository {
	return &SqliteScheduleRepository{DB: db}
}

// GetSchedules returns committed entries whose start falls in the range.
func (s *SqliteScheduleRepository) GetSchedules(ctx context.Context, rng domain.DateRange) ([]domain.ScheduleEntry, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite schedule repository: DB is nil")
	}

	query := `
	SELECT title, location, start_datetime, hours
	FROM schedules
	WHERE committed = 1
		AND start_datetime >= ?
		AND start_datetime < ?
	ORDER BY start_datetime;
	`
	from := domain.DateOnly(rng.Start).Format(time.RFC3339)
	to := domain.DateOnly(rng.End).AddDate(0, 0, 1).Format(time.RFC3339)

	rows, err := s.DB.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("get schedules: query schedules table: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows, "get schedules")
}

// ListRecentFor returns up to limit most recent entries matching the job
// identity by exact normalized title, or fuzzily by title/location
// substring.
func (s *SqliteScheduleRepository) ListRecentFor(ctx context.Context, title, location string, limit int) ([]domain.ScheduleEntry, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite schedule repository: DB is nil")
	}
	if limit <= 0 {
		limit = domain.MaxPatternOccurrences
	}

	normTitle := domain.Normalize(title)
	normLocation := domain.Normalize(location)

	query := `
	SELECT title, location, start_datetime, hours
	FROM schedules
	WHERE lower(title) = ?
		OR lower(title) LIKE ?
		OR lower(location) LIKE ?
	ORDER BY start_datetime DESC
	LIMIT ?;
	`
	rows, err := s.DB.QueryContext(ctx, query,
		normTitle, "%"+normTitle+"%", "%"+normLocation+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("list recent schedules: query schedules table: %w", err)
	}
	defer rows.Close()

	return scanEntries(rows, "list recent schedules")
}

func scanEntries(rows *sql.Rows, op string) ([]domain.ScheduleEntry, error) {
	entries := make([]domain.ScheduleEntry, 0, 16)
	for rows.Next() {
		var e domain.ScheduleEntry
		var start string
		if err := rows.Scan(&e.Title, &e.Location, &start, &e.Hours); err != nil {
			return nil, fmt.Errorf("%s: scan row: %w", op, err)
		}
		t, err := time.Parse(time.RFC3339, start)
		if err != nil {
			return nil, fmt.Errorf("%s: bad start_datetime %q: %w", op, start, err)
		}
		e.StartDateTime = t
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: row iteration: %w", op, err)
	}
	return entries, nil
}
