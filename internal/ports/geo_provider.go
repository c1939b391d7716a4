package ports

import (
	"context"

	"schedule-optimizer-service/internal/domain"
)

// TravelLeg is the cost of moving between two points.
type TravelLeg struct {
	DurationMinutes float64
	DistanceKM      float64
}

// MatrixResult is an N×N pairwise cost table in the caller's coordinate
// order. Durations are minutes, Distances km.
type MatrixResult struct {
	Durations [][]float64
	Distances [][]float64
}

// Port: external geocoding and routing provider.
type GeoProvider interface {
	// Geocode resolves an address. A miss (address unknown to the
	// provider) returns (nil, nil); errors mean the provider itself
	// failed.
	Geocode(ctx context.Context, address string) (*domain.Coordinates, error)

	// Distance returns the travel cost between two coordinate pairs.
	Distance(ctx context.Context, from, to domain.Coordinates) (TravelLeg, error)

	// Matrix returns pairwise travel costs for a coordinate batch.
	Matrix(ctx context.Context, coords []domain.Coordinates) (*MatrixResult, error)
}
