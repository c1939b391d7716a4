package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"schedule-optimizer-service/internal/domain"
)

// SQLite backed store for per-run distance matrices. Location lists,
// coordinates and the two N×N matrices are stored as JSON blobs; lookups
// by content use the precomputed location-set key column.
type SqliteMatrixStore struct {
	DB *sql.DB
}

func NewSqliteMatrixStore(db *sql.DB) *SqliteMatrixStore {
	return &SqliteMatrixStore{DB: db}
}

// FindByRun returns the matrix persisted for one run, or (nil, nil).
func (s *SqliteMatrixStore) FindByRun(ctx context.Context, runID string) (*domain.DistanceMatrix, error) {
	return s.findOne(ctx, `
	SELECT run_id, set_key, locations, coords, durations, distances
    FROM optimization_matrix
    WHERE run_id = ?;
	`, runID)
}

// FindBySetKey returns the most recent matrix for a location set,
// or (nil, nil).
func (s *SqliteMatrixStore) FindBySetKey(ctx context.Context, setKey string) (*domain.DistanceMatrix, error) {
	return s.findOne(ctx, `
	SELECT run_id, set_key, locations, coords, durations, distances
    FROM optimization_matrix
    WHERE set_key = ?
    ORDER BY created_at DESC
    LIMIT 1;
	`, setKey)
}

func (s *SqliteMatrixStore) findOne(ctx context.Context, query, arg string) (*domain.DistanceMatrix, error) {
	if s.DB == nil {
		return nil, errors.New("matrix store: db is nil")
	}

	var m domain.DistanceMatrix
	var locations, coords, durations, distances []byte

	row := s.DB.QueryRowContext(ctx, query, arg)
	err := row.Scan(&m.RunID, &m.SetKey, &locations, &coords, &durations, &distances)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get matrix: scan row: %w", err)
	}

	for _, field := range []struct {
		raw  []byte
		dest any
		name string
	}{
		{locations, &m.Locations, "locations"},
		{coords, &m.Coords, "coords"},
		{durations, &m.Durations, "durations"},
		{distances, &m.Distances, "distances"},
	} {
		if err := json.Unmarshal(field.raw, field.dest); err != nil {
			return nil, fmt.Errorf("get matrix: decode %s: %w", field.name, err)
		}
	}

	return &m, nil
}

// Save upserts a matrix row keyed by run id.
func (s *SqliteMatrixStore) Save(ctx context.Context, m *domain.DistanceMatrix) error {
	if s.DB == nil {
		return errors.New("matrix store: db is nil")
	}
	if m == nil || m.RunID == "" {
		return errors.New("insert matrix: run id must not be empty")
	}

	locations, err := json.Marshal(m.Locations)
	if err != nil {
		return fmt.Errorf("insert matrix: encode locations: %w", err)
	}
	coords, err := json.Marshal(m.Coords)
	if err != nil {
		return fmt.Errorf("insert matrix: encode coords: %w", err)
	}
	durations, err := json.Marshal(m.Durations)
	if err != nil {
		return fmt.Errorf("insert matrix: encode durations: %w", err)
	}
	distances, err := json.Marshal(m.Distances)
	if err != nil {
		return fmt.Errorf("insert matrix: encode distances: %w", err)
	}

	_, err = s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO optimization_matrix (
        run_id,
        set_key,
        locations,
        coords,
        durations,
        distances,
        created_at
    )
    VALUES (?, ?, ?, ?, ?, ?, ?);
	`, m.RunID, m.SetKey, locations, coords, durations, distances, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert matrix run_id=%q: %w", m.RunID, err)
	}

	return nil
}
