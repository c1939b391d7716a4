package ports

import (
	"context"

	"schedule-optimizer-service/internal/domain"
)

// Port: the backlog of jobs waiting to be scheduled.
type JobSource interface {
	// Return jobs without a committed schedule whose due date is relevant
	// to the given range.
	FetchUnscheduledJobs(ctx context.Context, rng domain.DateRange) ([]domain.Job, error)
}

// Port: admin-configured global scheduling preferences.
type PreferenceSource interface {
	// Return the configured preferences. An absent configuration is an
	// error; the engine treats it as fatal during initialization.
	GetPreferences(ctx context.Context) (*domain.Preferences, error)
}

// Port: geographic cluster reference data.
type ClusterSource interface {
	GetClusters(ctx context.Context) ([]domain.LocationCluster, error)
	// SaveClusters upserts cluster definitions; used to seed the default
	// regional set when the table is empty.
	SaveClusters(ctx context.Context, clusters []domain.LocationCluster) error
}

// Port: the committed calendar the engine must not collide with, which is
// also the source of historical occurrences for pattern analysis.
type ExistingScheduleSource interface {
	// GetSchedules returns committed entries within the range.
	GetSchedules(ctx context.Context, rng domain.DateRange) ([]domain.ScheduleEntry, error)
	// ListRecentFor returns up to limit most recent historical entries
	// matching the job identity by exact or fuzzy title/location.
	ListRecentFor(ctx context.Context, title, location string, limit int) ([]domain.ScheduleEntry, error)
}
