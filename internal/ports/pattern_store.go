package ports

import (
	"context"

	"schedule-optimizer-service/internal/domain"
)

// Port: persistent cache of derived historical patterns.
//
// Writers must upsert; two concurrent runs deriving the same identity may
// both save, and last write wins.
type PatternStore interface {
	// Find returns the cached pattern, or (nil, nil) when none exists.
	Find(ctx context.Context, identifier string) (*domain.HistoricalPattern, error)
	Save(ctx context.Context, pattern *domain.HistoricalPattern) error
}
