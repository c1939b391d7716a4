package ports

import (
	"context"

	"schedule-optimizer-service/internal/domain"
)

// Port: persistent distance-matrix cache.
//
// Rows are keyed by run id but looked up by content (the location-set key),
// so identical location sets are never re-priced. Saves are upserts; two
// concurrent runs persisting the same set is accepted redundant work.
type MatrixStore interface {
	// FindByRun returns the matrix persisted for a run, or (nil, nil).
	FindByRun(ctx context.Context, runID string) (*domain.DistanceMatrix, error)
	// FindBySetKey returns the most recent matrix for a location set,
	// or (nil, nil).
	FindBySetKey(ctx context.Context, setKey string) (*domain.DistanceMatrix, error)
	Save(ctx context.Context, m *domain.DistanceMatrix) error
}

// Port: persistent address -> coordinates cache shared across runs.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, coords map[string]domain.Coordinates) error
}
