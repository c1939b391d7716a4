package geo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"schedule-optimizer-service/internal/domain"
	"schedule-optimizer-service/internal/platform/obs"
	"schedule-optimizer-service/internal/ports"
)

type matrixRequest struct {
	Locations [][]float64 `json:"locations"`
	Metrics   []string    `json:"metrics"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// Matrix fetches the full pairwise cost table for a coordinate batch from
// the OpenRouteService matrix endpoint. ORS reports seconds and meters;
// results are converted to the engine's minutes and kilometers. Cells the
// service cannot route are left at zero rather than failing the batch.
func (o *ORSProvider) Matrix(ctx context.Context, coords []domain.Coordinates) (_ *ports.MatrixResult, err error) {
	defer obs.Time(ctx, "ors.Matrix")(&err)

	n := len(coords)
	if n == 0 {
		return &ports.MatrixResult{}, nil
	}

	locations := make([][]float64, 0, n)
	for _, c := range coords {
		locations = append(locations, c.CoordsToList())
	}

	payload, err := json.Marshal(matrixRequest{
		Locations: locations,
		Metrics:   []string{"distance", "duration"},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal matrix request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)
	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return nil, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return nil, fmt.Errorf("decode matrix response: %w", err)
	}

	if len(mr.Distances) != n || len(mr.Durations) != n {
		return nil, fmt.Errorf(
			"expected %d matrix rows; got distances=%d durations=%d",
			n, len(mr.Distances), len(mr.Durations),
		)
	}

	out := &ports.MatrixResult{
		Durations: make([][]float64, n),
		Distances: make([][]float64, n),
	}
	for i := 0; i < n; i++ {
		if len(mr.Durations[i]) != n || len(mr.Distances[i]) != n {
			return nil, fmt.Errorf("matrix row %d has wrong width", i)
		}
		out.Durations[i] = make([]float64, n)
		out.Distances[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if secs := mr.Durations[i][j]; secs != nil {
				out.Durations[i][j] = *secs / 60
			}
			if meters := mr.Distances[i][j]; meters != nil {
				out.Distances[i][j] = *meters / 1000
			}
		}
	}

	return out, nil
}
