package geo

import (
	"context"
	"fmt"

	"schedule-optimizer-service/internal/domain"
	"schedule-optimizer-service/internal/ports"
)

// MockProvider is an in-memory GeoProvider for tests and offline runs.
// Coordinates are looked up by normalized address; pair costs by
// "from|to" key. Calls are counted so tests can assert cache reuse.
type MockProvider struct {
	CoordsByAddress map[string]domain.Coordinates
	Legs            map[string]ports.TravelLeg

	GeocodeCalls int
	MatrixCalls  int
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		CoordsByAddress: make(map[string]domain.Coordinates),
		Legs:            make(map[string]ports.TravelLeg),
	}
}

// SetLeg registers the cost of one directed pair by coordinate key.
func (p *MockProvider) SetLeg(from, to domain.Coordinates, minutes, km float64) {
	p.Legs[pairKey(from, to)] = ports.TravelLeg{DurationMinutes: minutes, DistanceKM: km}
}

func (p *MockProvider) Geocode(ctx context.Context, address string) (*domain.Coordinates, error) {
	p.GeocodeCalls++
	c, ok := p.CoordsByAddress[domain.Normalize(address)]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (p *MockProvider) Distance(ctx context.Context, from, to domain.Coordinates) (ports.TravelLeg, error) {
	leg, ok := p.Legs[pairKey(from, to)]
	if !ok {
		return ports.TravelLeg{}, fmt.Errorf("missing mock leg %v -> %v", from, to)
	}
	return leg, nil
}

func (p *MockProvider) Matrix(ctx context.Context, coords []domain.Coordinates) (*ports.MatrixResult, error) {
	p.MatrixCalls++

	n := len(coords)
	out := &ports.MatrixResult{
		Durations: make([][]float64, n),
		Distances: make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		out.Durations[i] = make([]float64, n)
		out.Distances[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			leg, ok := p.Legs[pairKey(coords[i], coords[j])]
			if !ok {
				return nil, fmt.Errorf("missing mock leg %v -> %v", coords[i], coords[j])
			}
			out.Durations[i][j] = leg.DurationMinutes
			out.Distances[i][j] = leg.DistanceKM
		}
	}
	return out, nil
}

func pairKey(from, to domain.Coordinates) string {
	return fmt.Sprintf("%.4f,%.4f|%.4f,%.4f", from.Lon, from.Lat, to.Lon, to.Lat)
}
