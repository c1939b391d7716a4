package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"schedule-optimizer-service/internal/domain"
	"schedule-optimizer-service/internal/platform/obs"
	"schedule-optimizer-service/internal/ports"
)

// RouteOptimizer sequences one day's batch of jobs with a greedy
// nearest-neighbor heuristic and prices every leg, including the mandatory
// depot legs at both ends.
//
// Leg costs resolve in order: run-wide distance matrix, per-batch
// sub-matrix, live provider call on resolved coordinates, then the
// deterministic textual fallback. The optimizer never fails a batch; at
// worst every leg is a fallback estimate. Not safe for concurrent use: it
// carries per-batch state between calls.
type RouteOptimizer struct {
	Geo          ports.GeoProvider
	Matrix       *domain.DistanceMatrix // may be nil when the run matrix could not be built
	Coords       map[string]domain.Coordinates
	DepotAddress string
	Log          zerolog.Logger

	sub *domain.DistanceMatrix
}

// OptimizeGroup orders the group's jobs in place and fills in drive times.
func (r *RouteOptimizer) OptimizeGroup(ctx context.Context, g *domain.ScheduleGroup) {
	if len(g.Jobs) == 0 {
		return
	}

	// When the run matrix does not cover the batch, one provider matrix
	// call prices the whole day instead of one call per leg.
	r.sub = r.buildSubMatrix(ctx, g)
	defer func() { r.sub = nil }()

	if len(g.Jobs) == 1 {
		// No sequencing needed; only the depot legs matter.
		job := g.Jobs[0]
		in := r.leg(ctx, r.DepotAddress, job.Job.Location)
		out := r.leg(ctx, job.Job.Location, r.DepotAddress)
		job.DriveTimeToPrevious = roundMinutes(in.DurationMinutes)
		job.DriveTimeToNext = roundMinutes(out.DurationMinutes)
		job.OrderInRoute = 1
		g.TotalDriveTime = job.DriveTimeToPrevious + job.DriveTimeToNext
		g.RouteOptimized = false
		r.finalizeTimes(g)
		return
	}

	ordered := r.nearestNeighborOrder(ctx, g.Jobs)

	total := 0
	prevLocation := r.DepotAddress
	for i, job := range ordered {
		in := r.leg(ctx, prevLocation, job.Job.Location)
		job.DriveTimeToPrevious = roundMinutes(in.DurationMinutes)
		job.OrderInRoute = i + 1
		total += job.DriveTimeToPrevious
		if i > 0 {
			ordered[i-1].DriveTimeToNext = job.DriveTimeToPrevious
		}
		prevLocation = job.Job.Location
	}

	back := r.leg(ctx, prevLocation, r.DepotAddress)
	last := ordered[len(ordered)-1]
	last.DriveTimeToNext = roundMinutes(back.DurationMinutes)
	total += last.DriveTimeToNext

	g.Jobs = ordered
	g.TotalDriveTime = total
	g.RouteOptimized = true
	r.finalizeTimes(g)
}

// nearestNeighborOrder seeds on the highest hour-confidence job (earliest
// scheduled time breaks ties) and then repeatedly visits the cheapest
// unvisited job from the current position, ties going to list order.
func (r *RouteOptimizer) nearestNeighborOrder(ctx context.Context, jobs []*domain.OptimizedJob) []*domain.OptimizedJob {
	seedIdx := 0
	for i, j := range jobs[1:] {
		if betterSeed(j, jobs[seedIdx]) {
			seedIdx = i + 1
		}
	}

	ordered := make([]*domain.OptimizedJob, 0, len(jobs))
	visited := make([]bool, len(jobs))

	ordered = append(ordered, jobs[seedIdx])
	visited[seedIdx] = true
	current := jobs[seedIdx].Job.Location

	for len(ordered) < len(jobs) {
		best := -1
		bestDur := math.MaxFloat64
		for i, j := range jobs {
			if visited[i] {
				continue
			}
			d := r.leg(ctx, current, j.Job.Location).DurationMinutes
			if d < bestDur {
				best, bestDur = i, d
			}
		}

		ordered = append(ordered, jobs[best])
		visited[best] = true
		current = jobs[best].Job.Location
	}

	return ordered
}

func betterSeed(a, b *domain.OptimizedJob) bool {
	ca, cb := hourConfidence(a), hourConfidence(b)
	if ca != cb {
		return ca > cb
	}
	return a.ScheduledTime.Before(b.ScheduledTime)
}

func hourConfidence(j *domain.OptimizedJob) float64 {
	if j.Pattern == nil {
		return 0
	}
	return j.Pattern.HourConfidence
}

// leg prices a single drive. Degraded lookups fall through; the textual
// estimate is the floor and never errors.
func (r *RouteOptimizer) leg(ctx context.Context, from, to string) ports.TravelLeg {
	if domain.Normalize(from) == domain.Normalize(to) {
		return ports.TravelLeg{}
	}

	if r.Matrix != nil {
		if dur, ok := r.Matrix.Duration(from, to); ok {
			dist, _ := r.Matrix.Distance(from, to)
			return ports.TravelLeg{DurationMinutes: dur, DistanceKM: dist}
		}
	}

	if r.sub != nil {
		if dur, ok := r.sub.Duration(from, to); ok {
			dist, _ := r.sub.Distance(from, to)
			return ports.TravelLeg{DurationMinutes: dur, DistanceKM: dist}
		}
	}

	fromC, okFrom := r.coordFor(ctx, from)
	toC, okTo := r.coordFor(ctx, to)
	if okFrom && okTo {
		leg, err := r.Geo.Distance(ctx, fromC, toC)
		if err == nil {
			return leg
		}
		r.Log.Warn().Err(err).Str("from", from).Str("to", to).Msg("routing provider failed, using fallback")
	}

	obs.GeoFallbacks.Inc()
	return FallbackLeg(from, to)
}

// buildSubMatrix prices a batch the run matrix does not fully cover with
// a single provider matrix call over the batch's geocodable locations.
// Returns nil when the run matrix suffices or when the batch cannot be
// priced wholesale; legs then resolve individually.
func (r *RouteOptimizer) buildSubMatrix(ctx context.Context, g *domain.ScheduleGroup) *domain.DistanceMatrix {
	locations := make([]string, 0, len(g.Jobs)+1)
	locations = append(locations, r.DepotAddress)
	for _, j := range g.Jobs {
		locations = append(locations, j.Job.Location)
	}
	if r.Matrix != nil && r.Matrix.Covers(locations) {
		return nil
	}

	set := domain.LocationSet(locations)
	kept := make([]string, 0, len(set))
	coords := make([]domain.Coordinates, 0, len(set))
	for _, l := range set {
		c, ok := r.coordFor(ctx, l)
		if !ok {
			continue
		}
		kept = append(kept, l)
		coords = append(coords, c)
	}
	if len(kept) < 2 {
		return nil
	}

	mr, err := r.Geo.Matrix(ctx, coords)
	if err != nil {
		r.Log.Warn().Err(err).Msg("batch matrix failed, pricing legs individually")
		return nil
	}

	return &domain.DistanceMatrix{
		Locations: kept,
		Coords:    coords,
		Durations: mr.Durations,
		Distances: mr.Distances,
	}
}

// coordFor resolves a location's coordinates: per-run memory cache, then
// the run matrix, then an individual geocode as last resort. Misses are
// remembered as the zero coordinate so a dead address is only tried once.
func (r *RouteOptimizer) coordFor(ctx context.Context, location string) (domain.Coordinates, bool) {
	key := domain.Normalize(location)

	if c, ok := r.Coords[key]; ok {
		return c, c.Valid()
	}

	if r.Matrix != nil {
		if c, ok := r.Matrix.Coordinate(location); ok && c.Valid() {
			r.Coords[key] = c
			return c, true
		}
	}

	c, err := r.Geo.Geocode(ctx, location)
	if err != nil {
		r.Log.Warn().Err(err).Str("location", location).Msg("geocode failed")
		r.Coords[key] = domain.Coordinates{}
		return domain.Coordinates{}, false
	}
	if c == nil {
		r.Coords[key] = domain.Coordinates{}
		return domain.Coordinates{}, false
	}

	r.Coords[key] = *c
	return *c, true
}

// finalizeTimes recomputes the group window once drive legs are known.
func (r *RouteOptimizer) finalizeTimes(g *domain.ScheduleGroup) {
	start := g.Jobs[0].ScheduledTime
	for _, j := range g.Jobs {
		if j.ScheduledTime.Before(start) {
			start = j.ScheduledTime
		}
	}
	g.EstimatedStartTime = start
	g.EstimatedEndTime = start.Add(time.Duration(g.TotalWorkTime+g.TotalDriveTime) * time.Minute)
}

// FallbackLeg is the deterministic textual-distance heuristic used when a
// leg cannot be priced by the matrix or the provider. Identical locations
// cost nothing extra; otherwise the estimate scales with how little the
// two location strings share.
func FallbackLeg(from, to string) ports.TravelLeg {
	a := strings.Fields(domain.Normalize(from))
	b := strings.Fields(domain.Normalize(to))

	if len(a) == 0 || len(b) == 0 {
		return ports.TravelLeg{DurationMinutes: 35, DistanceKM: 25}
	}

	set := make(map[string]struct{}, len(a))
	for _, w := range a {
		set[w] = struct{}{}
	}
	shared := 0
	for _, w := range b {
		if _, ok := set[w]; ok {
			shared++
		}
	}

	longest := max(len(a), len(b))
	dissimilarity := 1 - float64(shared)/float64(longest)

	dur := 10 + math.Round(dissimilarity*25)
	return ports.TravelLeg{DurationMinutes: dur, DistanceKM: math.Round(dur * 0.7)}
}

func roundMinutes(m float64) int { return int(math.Round(m)) }
