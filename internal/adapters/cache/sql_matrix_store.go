package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"schedule-optimizer-service/internal/domain"
	"schedule-optimizer-service/internal/platform/obs"
)

// SQLMatrixStore is the Postgres variant of the matrix store, used when
// runs share a central cache instead of a local SQLite file.
type SQLMatrixStore struct {
	DB *sql.DB
}

func NewSQLMatrixStore(db *sql.DB) *SQLMatrixStore {
	return &SQLMatrixStore{DB: db}
}

func (s *SQLMatrixStore) FindByRun(ctx context.Context, runID string) (_ *domain.DistanceMatrix, err error) {
	defer obs.Time(ctx, "matrix.store.FindByRun")(&err)

	return s.findOne(ctx, `
	SELECT run_id, set_key, locations, coords, durations, distances
    FROM optimization_matrix
    WHERE run_id = $1;
	`, runID)
}

func (s *SQLMatrixStore) FindBySetKey(ctx context.Context, setKey string) (_ *domain.DistanceMatrix, err error) {
	defer obs.Time(ctx, "matrix.store.FindBySetKey")(&err)

	return s.findOne(ctx, `
	SELECT run_id, set_key, locations, coords, durations, distances
    FROM optimization_matrix
    WHERE set_key = $1
    ORDER BY created_at DESC
    LIMIT 1;
	`, setKey)
}

func (s *SQLMatrixStore) findOne(ctx context.Context, query, arg string) (*domain.DistanceMatrix, error) {
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

func (s *SQLMatrixStore) Save(ctx context.Context, m *domain.DistanceMatrix) (err error) {
	defer obs.Time(ctx, "matrix.store.Save")(&err)

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
	INSERT INTO optimization_matrix (run_id, set_key, locations, coords, durations, distances, created_at)
    VALUES ($1, $2, $3, $4, $5, $6, now())
	ON CONFLICT (run_id) DO UPDATE
	SET set_key = EXCLUDED.set_key,
		locations = EXCLUDED.locations,
		coords = EXCLUDED.coords,
		durations = EXCLUDED.durations,
		distances = EXCLUDED.distances;
	`, m.RunID, m.SetKey, locations, coords, durations, distances)
	if err != nil {
		return fmt.Errorf("insert matrix run_id=%q: %w", m.RunID, err)
	}

	return nil
}
