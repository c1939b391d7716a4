package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"schedule-optimizer-service/internal/domain"
)

// SQLite-backed implementation of the PreferenceSource port. Preferences
// are a single configuration row; its absence is an error the engine
// treats as fatal.
type SqlitePreferenceRepository struct{ DB *sql.DB }

func NewSqlitePreferenceRepository(db *sql.DB) *SqlitePreferenceRepository {
	return &SqlitePreferenceRepository{DB: db}
}

func (s *SqlitePreferenceRepository) GetPreferences(ctx context.Context) (*domain.Preferences, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite preference repository: DB is nil")
	}

	query := `
	SELECT
		max_jobs_per_day,
		work_day_start,
		work_day_end,
		starting_point_address,
		excluded_days,
		excluded_dates,
		allow_weekends,
		start_date,
		end_date
	FROM preferences
	WHERE id = 1;
	`

	var p domain.Preferences
	var excludedDays, excludedDates, startDate, endDate string
	var allowWeekends int

	err := s.DB.QueryRowContext(ctx, query).Scan(
		&p.MaxJobsPerDay, &p.WorkDayStart, &p.WorkDayEnd, &p.StartingPointAddress,
		&excludedDays, &excludedDates, &allowWeekends, &startDate, &endDate,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.New("get preferences: no scheduling preferences configured")
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences: query preferences table: %w", err)
	}

	p.AllowWeekends = allowWeekends != 0

	if p.ExcludedDays, err = parseWeekdays(excludedDays); err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	if p.ExcludedDates, err = parseDates(excludedDates); err != nil {
		return nil, fmt.Errorf("get preferences: %w", err)
	}
	if p.StartDate, err = time.Parse(time.DateOnly, startDate); err != nil {
		return nil, fmt.Errorf("get preferences: bad start date %q: %w", startDate, err)
	}
	if p.EndDate, err = time.Parse(time.DateOnly, endDate); err != nil {
		return nil, fmt.Errorf("get preferences: bad end date %q: %w", endDate, err)
	}

	return &p, nil
}

// parseWeekdays decodes a CSV of numeric weekdays (0=Sunday .. 6=Saturday).
func parseWeekdays(csv string) ([]time.Weekday, error) {
	csv = strings.TrimSpace(csv)
	if csv == "" {
		return nil, nil
	}
	parts := strings.Split(csv, ",")
	out := make([]time.Weekday, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("bad excluded day %q", p)
		}
		out = append(out, time.Weekday(n))
	}
	return out, nil
}

// parseDates decodes a CSV of ISO dates.
func parseDates(csv string) ([]time.Time, error) {
	csv = strings.TrimSpace(csv)
	if csv == "" {
		return nil, nil
	}
	parts := strings.Split(csv, ",")
	out := make([]time.Time, 0, len(parts))
	for _, p := range parts {
		d, err := time.Parse(time.DateOnly, strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("bad excluded date %q", p)
		}
		out = append(out, d)
	}
	return out, nil
}
