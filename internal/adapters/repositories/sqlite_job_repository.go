package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"schedule-optimizer-service/internal/domain"
)

// SQLite-backed implementation of the JobSource port.
type SqliteJobRepository struct{ DB *sql.DB }

func NewSqliteJobRepository(db *sql.DB) *SqliteJobRepository {
	return &SqliteJobRepository{DB: db}
}

// Return jobs without a committed schedule, due on or before the end of
// the optimization range. Estimated duration and priority are derived
// here: they are views over the invoice, not stored fields.
func (s *SqliteJobRepository) FetchUnscheduledJobs(ctx context.Context, rng domain.DateRange) ([]domain.Job, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite job repository: DB is nil")
	}

	query := `
	SELECT
		job_id,
		invoice_id,
		title,
		location,
		client_name,
		date_due,
		price,
		earliest_start_hour,
		latest_start_hour,
		buffer_after
	FROM jobs
	WHERE scheduled_at IS NULL
		AND date_due <= ?
	ORDER BY job_id;
	`
	cutoff := domain.DateOnly(rng.End).AddDate(0, 0, 1).Format(time.RFC3339)

	rows, err := s.DB.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("fetch unscheduled jobs: query jobs table: %w", err)
	}
	defer rows.Close()

	now := time.Now().UTC()
	jobs := make([]domain.Job, 0, 64)
	for rows.Next() {
		var j domain.Job
		var due string
		var price float64
		if err := rows.Scan(
			&j.JobID, &j.InvoiceID, &j.Title, &j.Location, &j.ClientName,
			&due, &price, &j.EarliestStartHour, &j.LatestStartHour, &j.BufferAfter,
		); err != nil {
			return nil, fmt.Errorf("fetch unscheduled jobs: scan row: %w", err)
		}

		j.DateDue, err = time.Parse(time.RFC3339, due)
		if err != nil {
			return nil, fmt.Errorf("fetch unscheduled jobs: job_id=%d bad due date %q: %w", j.JobID, due, err)
		}
		j.EstimatedDuration = domain.DurationForPrice(price)
		j.Priority = domain.PriorityFromDue(j.DateDue, now)

		jobs = append(jobs, j)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("fetch unscheduled jobs: row iteration: %w", err)
	}

	return jobs, nil
}
