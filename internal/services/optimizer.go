package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"schedule-optimizer-service/internal/domain"
	"schedule-optimizer-service/internal/platform/obs"
	"schedule-optimizer-service/internal/ports"
)

// StrategyHybrid is the one scheduling strategy the engine implements.
const StrategyHybrid = "hybrid"

// Deps bundles the collaborator ports one Optimizer needs.
type Deps struct {
	Jobs        ports.JobSource
	Preferences ports.PreferenceSource
	Clusters    ports.ClusterSource
	Schedules   ports.ExistingScheduleSource
	Patterns    ports.PatternStore
	Geo         ports.GeoProvider
	MatrixStore ports.MatrixStore
	Log         zerolog.Logger
}

// Optimizer orchestrates one optimization run: clustering, pattern
// analysis, hybrid scheduling, route sequencing, conflict resolution and
// metrics. An Optimizer is single-run state (it carries a per-run
// coordinate cache) and is not safe for concurrent use; create one per
// run.
type Optimizer struct {
	deps Deps

	prefs    *domain.Preferences
	clusters []domain.LocationCluster
	existing []domain.ScheduleEntry
	coords   map[string]domain.Coordinates
}

func NewOptimizer(deps Deps) *Optimizer {
	return &Optimizer{
		deps:   deps,
		coords: make(map[string]domain.Coordinates),
	}
}

// Initialize loads preferences, clusters and the committed calendar for
// the range. Missing preferences or an unreadable cluster table are fatal;
// everything later in the pipeline degrades instead of failing.
func (o *Optimizer) Initialize(ctx context.Context, rng domain.DateRange) error {
	prefs, err := o.deps.Preferences.GetPreferences(ctx)
	if err != nil {
		return fmt.Errorf("initialize optimizer: load preferences: %w", err)
	}
	if prefs == nil {
		return errors.New("initialize optimizer: no preferences configured")
	}
	o.prefs = prefs

	clusters, err := o.deps.Clusters.GetClusters(ctx)
	if err != nil {
		return fmt.Errorf("initialize optimizer: load clusters: %w", err)
	}
	if len(clusters) == 0 {
		// First use: seed the fixed default regional set.
		clusters = domain.DefaultClusters()
		if err := o.deps.Clusters.SaveClusters(ctx, clusters); err != nil {
			o.deps.Log.Warn().Err(err).Msg("seeding default clusters failed, using in-memory defaults")
		}
	}
	o.clusters = clusters

	existing, err := o.deps.Schedules.GetSchedules(ctx, rng)
	if err != nil {
		o.deps.Log.Warn().Err(err).Msg("loading existing schedules failed, conflict resolution disabled")
		existing = nil
	}
	o.existing = existing

	return nil
}

// Optimize runs the full pipeline and returns the run's result object.
// It only errors when initialization or the job fetch fails; per-job and
// per-location failures surface as data (unscheduled jobs, fallback drive
// estimates, low confidence).
func (o *Optimizer) Optimize(ctx context.Context, strategy string, rng domain.DateRange) (_ *domain.OptimizationResult, err error) {
	defer obs.Time(ctx, "optimizer.Optimize")(&err)

	if strategy == "" {
		strategy = StrategyHybrid
	}
	obs.OptimizationRuns.WithLabelValues(strategy).Inc()

	if o.prefs == nil {
		if err := o.Initialize(ctx, rng); err != nil {
			return nil, err
		}
	}

	runID := uuid.NewString()
	log := o.deps.Log.With().Str("run_id", runID).Logger()

	jobs, err := o.deps.Jobs.FetchUnscheduledJobs(ctx, rng)
	if err != nil {
		return nil, fmt.Errorf("optimize: fetch unscheduled jobs: %w", err)
	}

	result := &domain.OptimizationResult{
		RunID:       runID,
		Strategy:    strategy,
		TotalJobs:   len(jobs),
		GeneratedAt: time.Now().UTC(),
	}
	if len(jobs) == 0 {
		return result, nil
	}

	locations := make([]string, 0, len(jobs)+1)
	locations = append(locations, o.prefs.StartingPointAddress)
	for _, j := range jobs {
		locations = append(locations, j.Location)
	}
	matrix := o.buildRunMatrix(ctx, runID, locations, log)

	clustered := ClusterJobs(jobs, o.clusters, log)

	analyzer := &PatternAnalyzer{
		Store:   o.deps.Patterns,
		History: o.deps.Schedules,
		Log:     log,
	}
	patterns := analyzer.Analyze(ctx, jobs, o.prefs.WorkDayStart, o.prefs.WorkDayEnd)

	groups, unscheduled := BuildGroups(clustered, o.clusters, patterns, o.prefs, rng, log)

	router := &RouteOptimizer{
		Geo:          o.deps.Geo,
		Matrix:       matrix,
		Coords:       o.coords,
		DepotAddress: o.prefs.StartingPointAddress,
		Log:          log,
	}
	for _, g := range groups {
		router.OptimizeGroup(ctx, g)
	}

	resolved := ResolveConflicts(groups, o.existing, o.prefs, rng, log)
	obs.ConflictsResolved.Add(float64(resolved))

	result.ScheduledGroups = groups
	result.UnscheduledJobs = unscheduled
	result.Metrics = CalculateMetrics(groups, len(jobs), resolved)

	log.Info().
		Int("total_jobs", len(jobs)).
		Int("groups", len(groups)).
		Int("unscheduled", len(unscheduled)).
		Int("conflicts_resolved", resolved).
		Msg("optimization run complete")

	return result, nil
}

// buildRunMatrix obtains the run's pairwise distance matrix, reusing any
// cached matrix whose location set matches exactly. On reuse a fresh row
// is still persisted under the new run id, with no provider calls. All
// failures here are degraded: the run continues without a matrix and the
// route optimizer falls back to per-leg pricing.
func (o *Optimizer) buildRunMatrix(ctx context.Context, runID string, locations []string, log zerolog.Logger) *domain.DistanceMatrix {
	set := domain.LocationSet(locations)
	if len(set) < 2 {
		return nil
	}
	setKey := domain.LocationSetKey(set)

	cached, err := o.deps.MatrixStore.FindBySetKey(ctx, setKey)
	if err != nil {
		log.Warn().Err(err).Msg("matrix cache lookup failed")
	} else if cached != nil {
		reuse := *cached
		reuse.RunID = runID
		if err := o.deps.MatrixStore.Save(ctx, &reuse); err != nil {
			log.Warn().Err(err).Msg("persisting reused matrix failed")
		}
		log.Debug().Str("set_key", setKey).Msg("reusing cached distance matrix")
		for i, l := range reuse.Locations {
			if i < len(reuse.Coords) {
				o.coords[l] = reuse.Coords[i]
			}
		}
		return &reuse
	}

	// Geocode every location; addresses that cannot be resolved are
	// dropped from the matrix and priced per-leg later.
	kept := make([]string, 0, len(set))
	coords := make([]domain.Coordinates, 0, len(set))
	for _, l := range set {
		c, err := o.deps.Geo.Geocode(ctx, l)
		if err != nil {
			log.Warn().Err(err).Str("location", l).Msg("geocode failed during matrix build")
			continue
		}
		if c == nil {
			log.Warn().Str("location", l).Msg("location not geocodable, excluded from matrix")
			continue
		}
		o.coords[l] = *c
		kept = append(kept, l)
		coords = append(coords, *c)
	}
	if len(kept) < 2 {
		return nil
	}

	mr, err := o.deps.Geo.Matrix(ctx, coords)
	if err != nil {
		log.Warn().Err(err).Msg("matrix calculation failed, routing will price legs individually")
		return nil
	}

	m := &domain.DistanceMatrix{
		RunID:     runID,
		SetKey:    domain.LocationSetKey(kept),
		Locations: kept,
		Coords:    coords,
		Durations: mr.Durations,
		Distances: mr.Distances,
	}
	if err := o.deps.MatrixStore.Save(ctx, m); err != nil {
		log.Warn().Err(err).Msg("persisting distance matrix failed")
	}
	return m
}
