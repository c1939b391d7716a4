package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"schedule-optimizer-service/internal/domain"
	"schedule-optimizer-service/internal/platform/obs"
	"schedule-optimizer-service/internal/ports"
)

// ORSProvider implements the GeoProvider port on OpenRouteService.
//
// It coordinates address normalization, a persistent geocode cache, and
// external API calls with retry/backoff. Safe for concurrent use.
type ORSProvider struct {
	session      *http.Client
	apiKey       string
	baseURL      string
	profile      string
	country      string
	geocodeCache ports.GeocodeCache
	log          zerolog.Logger
}

func NewORSProvider(apiKey string, geocodeCache ports.GeocodeCache, log zerolog.Logger) (*ORSProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	return &ORSProvider{
		session:      &http.Client{Timeout: 10 * time.Second},
		apiKey:       apiKey,
		baseURL:      "https://api.openrouteservice.org",
		profile:      "driving-car",
		country:      "CA",
		geocodeCache: geocodeCache,
		log:          log,
	}, nil
}

// SetEndpoint overrides the default API endpoint, routing profile and
// geocode country filter. Empty arguments keep the current value.
func (o *ORSProvider) SetEndpoint(baseURL, profile, country string) {
	if baseURL != "" {
		o.baseURL = baseURL
	}
	if profile != "" {
		o.profile = profile
	}
	if country != "" {
		o.country = country
	}
}

type geocodeResponse struct {
	Features []struct {
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"features"`
}

// Geocode resolves an address via cache, then /geocode/search. An address
// the provider does not know returns (nil, nil).
func (o *ORSProvider) Geocode(ctx context.Context, address string) (_ *domain.Coordinates, err error) {
	defer obs.Time(ctx, "ors.Geocode")(&err)

	norm := domain.Normalize(address)
	if norm == "" {
		return nil, errors.New("geocode: address must be non-empty")
	}

	if o.geocodeCache != nil {
		hits, err := o.geocodeCache.GetMany(ctx, []string{norm})
		if err != nil {
			o.log.Warn().Err(err).Msg("geocode cache read failed")
		} else if c, ok := hits[norm]; ok {
			return &c, nil
		}
	}

	endpoint := o.baseURL + "/geocode/search"
	resp, err := o.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := o.newRequest(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}
		q := req.URL.Query()
		q.Set("text", norm)
		q.Set("boundary.country", o.country)
		q.Set("size", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return nil, fmt.Errorf("geocode %q: %w", norm, err)
	}
	defer resp.Body.Close()

	var decoded geocodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}

	// No features is a miss, not a provider failure.
	if len(decoded.Features) == 0 {
		return nil, nil
	}
	raw := decoded.Features[0].Geometry.Coordinates
	if len(raw) != 2 {
		return nil, fmt.Errorf("geocode %q: invalid coordinate format", norm)
	}

	c := domain.Coordinates{Lon: raw[0], Lat: raw[1]}
	if o.geocodeCache != nil {
		if err := o.geocodeCache.PutMany(ctx, map[string]domain.Coordinates{norm: c}); err != nil {
			o.log.Warn().Err(err).Msg("geocode cache write failed")
		}
	}

	return &c, nil
}

// Distance prices a single pair through the matrix endpoint.
func (o *ORSProvider) Distance(ctx context.Context, from, to domain.Coordinates) (ports.TravelLeg, error) {
	m, err := o.Matrix(ctx, []domain.Coordinates{from, to})
	if err != nil {
		return ports.TravelLeg{}, err
	}
	if len(m.Durations) < 2 || len(m.Durations[0]) < 2 {
		return ports.TravelLeg{}, errors.New("distance: malformed matrix result")
	}
	return ports.TravelLeg{
		DurationMinutes: m.Durations[0][1],
		DistanceKM:      m.Distances[0][1],
	}, nil
}
