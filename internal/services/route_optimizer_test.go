package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"schedule-optimizer-service/internal/adapters/geo"
	"schedule-optimizer-service/internal/domain"
)

func optimizedJob(id int, location string, pattern *domain.HistoricalPattern) *domain.OptimizedJob {
	return &domain.OptimizedJob{
		Job:           domain.Job{JobID: id, Location: location, EstimatedDuration: 120},
		ScheduledTime: time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC),
		Pattern:       pattern,
	}
}

func TestOptimizeGroupNearestNeighbor(t *testing.T) {
	matrix := &domain.DistanceMatrix{
		Locations: []string{"a", "b", "c", "hub"},
		Durations: [][]float64{
			{0, 8, 7, 5},
			{8, 0, 9, 20},
			{7, 9, 0, 15},
			{5, 12, 15, 0},
		},
		Distances: [][]float64{
			{0, 6, 5, 4},
			{6, 0, 7, 14},
			{5, 7, 0, 11},
			{4, 9, 11, 0},
		},
	}

	// Job at "a" has the strongest hour history, so it seeds the route.
	seedPattern := &domain.HistoricalPattern{PreferredHour: 9, HourConfidence: 0.9}
	g := &domain.ScheduleGroup{
		ClusterID: "test",
		Date:      time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		Jobs: []*domain.OptimizedJob{
			optimizedJob(2, "B", nil),
			optimizedJob(1, "A", seedPattern),
			optimizedJob(3, "C", nil),
		},
		TotalWorkTime: 360,
	}

	r := &RouteOptimizer{
		Geo:          geo.NewMockProvider(),
		Matrix:       matrix,
		Coords:       make(map[string]domain.Coordinates),
		DepotAddress: "HUB",
		Log:          zerolog.Nop(),
	}
	r.OptimizeGroup(context.Background(), g)

	if !g.RouteOptimized {
		t.Fatalf("multi-stop group should be marked route optimized")
	}

	wantOrder := []int{1, 3, 2} // a, then nearest c, then b
	for i, j := range g.Jobs {
		if j.Job.JobID != wantOrder[i] {
			t.Fatalf("stop %d = job %d, want %d", i+1, j.Job.JobID, wantOrder[i])
		}
		if j.OrderInRoute != i+1 {
			t.Errorf("job %d OrderInRoute = %d, want %d", j.Job.JobID, j.OrderInRoute, i+1)
		}
	}

	// hub->a=5, a->c=7, c->b=9, b->hub=20.
	if g.TotalDriveTime != 41 {
		t.Errorf("TotalDriveTime = %d, want 41", g.TotalDriveTime)
	}
	if g.Jobs[0].DriveTimeToPrevious != 5 {
		t.Errorf("first stop depot leg = %d, want 5", g.Jobs[0].DriveTimeToPrevious)
	}
	if g.Jobs[2].DriveTimeToNext != 20 {
		t.Errorf("last stop return leg = %d, want 20", g.Jobs[2].DriveTimeToNext)
	}
	if g.Jobs[0].DriveTimeToNext != g.Jobs[1].DriveTimeToPrevious {
		t.Errorf("chained drive times disagree: %d vs %d",
			g.Jobs[0].DriveTimeToNext, g.Jobs[1].DriveTimeToPrevious)
	}

	wantEnd := g.EstimatedStartTime.Add((360 + 41) * time.Minute)
	if !g.EstimatedEndTime.Equal(wantEnd) {
		t.Errorf("EstimatedEndTime = %v, want %v", g.EstimatedEndTime, wantEnd)
	}
}

func TestOptimizeGroupSingleJob(t *testing.T) {
	matrix := &domain.DistanceMatrix{
		Locations: []string{"a", "hub"},
		Durations: [][]float64{{0, 6}, {5, 0}},
		Distances: [][]float64{{0, 4}, {4, 0}},
	}

	g := &domain.ScheduleGroup{
		Date:          time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		Jobs:          []*domain.OptimizedJob{optimizedJob(1, "A", nil)},
		TotalWorkTime: 120,
	}

	r := &RouteOptimizer{
		Geo:          geo.NewMockProvider(),
		Matrix:       matrix,
		Coords:       make(map[string]domain.Coordinates),
		DepotAddress: "HUB",
		Log:          zerolog.Nop(),
	}
	r.OptimizeGroup(context.Background(), g)

	if g.RouteOptimized {
		t.Errorf("single-stop group should not be marked route optimized")
	}
	if g.Jobs[0].OrderInRoute != 1 {
		t.Errorf("OrderInRoute = %d, want 1", g.Jobs[0].OrderInRoute)
	}
	if g.Jobs[0].DriveTimeToPrevious != 5 || g.Jobs[0].DriveTimeToNext != 6 {
		t.Errorf("depot legs = %d, %d, want 5, 6",
			g.Jobs[0].DriveTimeToPrevious, g.Jobs[0].DriveTimeToNext)
	}
	if g.TotalDriveTime != 11 {
		t.Errorf("TotalDriveTime = %d, want 11", g.TotalDriveTime)
	}
}

func TestOptimizeGroupBatchesUncoveredLegs(t *testing.T) {
	// No run matrix, but every location geocodes: the whole batch must be
	// priced through a single provider matrix call, not one call per leg.
	mock := geo.NewMockProvider()
	depot := domain.Coordinates{Lat: 49.20, Lon: -122.90}
	ca := domain.Coordinates{Lat: 49.21, Lon: -122.90}
	cb := domain.Coordinates{Lat: 49.22, Lon: -122.90}
	mock.CoordsByAddress[domain.Normalize("HUB")] = depot
	mock.CoordsByAddress[domain.Normalize("A")] = ca
	mock.CoordsByAddress[domain.Normalize("B")] = cb
	mock.SetLeg(depot, ca, 5, 4)
	mock.SetLeg(ca, depot, 5, 4)
	mock.SetLeg(depot, cb, 9, 7)
	mock.SetLeg(cb, depot, 9, 7)
	mock.SetLeg(ca, cb, 4, 3)
	mock.SetLeg(cb, ca, 4, 3)

	g := &domain.ScheduleGroup{
		ClusterID: "test",
		Date:      time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		Jobs: []*domain.OptimizedJob{
			optimizedJob(1, "A", nil),
			optimizedJob(2, "B", nil),
		},
		TotalWorkTime: 240,
	}

	r := &RouteOptimizer{
		Geo:          mock,
		Coords:       make(map[string]domain.Coordinates),
		DepotAddress: "HUB",
		Log:          zerolog.Nop(),
	}
	r.OptimizeGroup(context.Background(), g)

	if mock.MatrixCalls != 1 {
		t.Fatalf("MatrixCalls = %d, want 1", mock.MatrixCalls)
	}
	if mock.GeocodeCalls != 3 {
		t.Errorf("GeocodeCalls = %d, want 3 (one per distinct location)", mock.GeocodeCalls)
	}

	// hub->a=5, a->b=4, b->hub=9: priced from the batch matrix, not the
	// textual fallback.
	if g.TotalDriveTime != 18 {
		t.Errorf("TotalDriveTime = %d, want 18", g.TotalDriveTime)
	}
	if g.Jobs[0].Job.JobID != 1 || g.Jobs[1].Job.JobID != 2 {
		t.Errorf("route order = %d, %d, want 1, 2", g.Jobs[0].Job.JobID, g.Jobs[1].Job.JobID)
	}
}

func TestOptimizeGroupFallsBackWithoutData(t *testing.T) {
	// No matrix, no coordinates, empty provider: every leg must come from
	// the textual estimate and the group still gets fully priced.
	g := &domain.ScheduleGroup{
		Date: time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		Jobs: []*domain.OptimizedJob{
			optimizedJob(1, "10 First St, Surrey", nil),
			optimizedJob(2, "99 Other Rd, Delta", nil),
		},
		TotalWorkTime: 240,
	}

	r := &RouteOptimizer{
		Geo:          geo.NewMockProvider(),
		Coords:       make(map[string]domain.Coordinates),
		DepotAddress: "1 Depot Way, Burnaby",
		Log:          zerolog.Nop(),
	}
	r.OptimizeGroup(context.Background(), g)

	if g.TotalDriveTime <= 0 {
		t.Errorf("fallback pricing produced no drive time")
	}
	for _, j := range g.Jobs {
		if j.OrderInRoute == 0 {
			t.Errorf("job %d was not sequenced", j.Job.JobID)
		}
	}
}

func TestFallbackLeg(t *testing.T) {
	a := FallbackLeg("10 First St, Surrey", "99 Other Rd, Delta")
	b := FallbackLeg("10 First St, Surrey", "99 Other Rd, Delta")
	if a != b {
		t.Fatalf("fallback estimate is not deterministic: %v vs %v", a, b)
	}

	if a.DurationMinutes < 10 || a.DurationMinutes > 35 {
		t.Errorf("duration %v outside the 10..35 band", a.DurationMinutes)
	}

	same := FallbackLeg("10 First St, Surrey", "10 first st,  surrey")
	far := FallbackLeg("10 First St, Surrey", "completely different everything")
	if same.DurationMinutes >= far.DurationMinutes {
		t.Errorf("similar locations (%v) should price below dissimilar ones (%v)",
			same.DurationMinutes, far.DurationMinutes)
	}

	empty := FallbackLeg("", "somewhere")
	if empty.DurationMinutes != 35 || empty.DistanceKM != 25 {
		t.Errorf("empty-input fallback = %v, want {35 25}", empty)
	}
}
