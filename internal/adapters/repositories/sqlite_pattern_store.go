package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"schedule-optimizer-service/internal/domain"
)

// SQLite-backed implementation of the PatternStore port. Patterns never
// auto-expire; rows stay until explicitly invalidated.
type SqlitePatternStore struct{ DB *sql.DB }

func NewSqlitePatternStore(db *sql.DB) *SqlitePatternStore {
	return &SqlitePatternStore{DB: db}
}

// Find returns the cached pattern for an identifier, or (nil, nil).
func (s *SqlitePatternStore) Find(ctx context.Context, identifier string) (*domain.HistoricalPattern, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite pattern store: DB is nil")
	}

	query := `
	SELECT
		identifier,
		preferred_hour,
		hour_confidence,
		preferred_day_of_week,
		day_confidence,
		average_duration,
		occurrences,
		updated_at
	FROM patterns
	WHERE identifier = ?;
	`

	var p domain.HistoricalPattern
	var occurrences []byte
	var updatedAt string

	err := s.DB.QueryRowContext(ctx, query, identifier).Scan(
		&p.Identifier, &p.PreferredHour, &p.HourConfidence,
		&p.PreferredDayOfWeek, &p.DayConfidence, &p.AverageDuration,
		&occurrences, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find pattern: query patterns table: %w", err)
	}

	if err := json.Unmarshal(occurrences, &p.Occurrences); err != nil {
		return nil, fmt.Errorf("find pattern: decode occurrences for %q: %w", identifier, err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("find pattern: bad updated_at %q: %w", updatedAt, err)
	}

	return &p, nil
}

// Save upserts a derived pattern. Last write wins across concurrent runs.
func (s *SqlitePatternStore) Save(ctx context.Context, p *domain.HistoricalPattern) error {
	if s.DB == nil {
		return errors.New("sqlite pattern store: DB is nil")
	}
	if p == nil || p.Identifier == "" {
		return errors.New("save pattern: identifier must not be empty")
	}

	occurrences, err := json.Marshal(p.Occurrences)
	if err != nil {
		return fmt.Errorf("save pattern: encode occurrences: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO patterns (
		identifier,
		preferred_hour,
		hour_confidence,
		preferred_day_of_week,
		day_confidence,
		average_duration,
		occurrences,
		updated_at
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`,
		p.Identifier, p.PreferredHour, p.HourConfidence,
		p.PreferredDayOfWeek, p.DayConfidence, p.AverageDuration,
		occurrences, p.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save pattern %q: %w", p.Identifier, err)
	}

	return nil
}
