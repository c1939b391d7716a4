package services

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"schedule-optimizer-service/internal/domain"
)

func TestBuildGroupsSplitsOnCapacity(t *testing.T) {
	prefs := testPrefs()
	rng := prefs.Range()

	cluster := domain.LocationCluster{
		ID: "burnaby-newwest", Name: "Burnaby / New Westminster",
		MaxJobsPerDay: 2,
		Aliases:       []string{"burnaby"},
	}

	due := time.Date(2026, 3, 25, 0, 0, 0, 0, time.UTC)
	jobs := []domain.Job{
		{JobID: 1, Title: "Clean A", Location: "10 First St, Burnaby", DateDue: due, EstimatedDuration: 120},
		{JobID: 2, Title: "Clean B", Location: "20 Second St, Burnaby", DateDue: due, EstimatedDuration: 120},
		{JobID: 3, Title: "Clean C", Location: "30 Third St, Burnaby", DateDue: due, EstimatedDuration: 120},
	}

	// Every job prefers Tuesdays at 10:00 with solid history.
	patterns := make(map[string]*domain.HistoricalPattern)
	for _, j := range jobs {
		patterns[domain.JobIdentifier(j.Title, j.Location)] = &domain.HistoricalPattern{
			PreferredHour:      10,
			HourConfidence:     0.8,
			PreferredDayOfWeek: 2,
			DayConfidence:      0.8,
			AverageDuration:    120,
		}
	}

	groups, unscheduled := BuildGroups(
		map[string][]domain.Job{cluster.ID: jobs},
		[]domain.LocationCluster{cluster},
		patterns, prefs, rng, zerolog.Nop(),
	)

	if len(unscheduled) != 0 {
		t.Fatalf("unscheduled = %v, want none", unscheduled)
	}
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2 (capacity 2 over 3 jobs)", len(groups))
	}

	// Range starts Monday 2026-03-02, so the first Tuesday is 03-03 and
	// the overflow batch lands one week later.
	if !groups[0].Date.Equal(time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("first batch date = %v, want 2026-03-03", groups[0].Date)
	}
	if !groups[1].Date.Equal(time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("second batch date = %v, want 2026-03-10", groups[1].Date)
	}
	if len(groups[0].Jobs) != 2 || len(groups[1].Jobs) != 1 {
		t.Errorf("batch sizes = %d, %d, want 2, 1", len(groups[0].Jobs), len(groups[1].Jobs))
	}

	for _, g := range groups {
		if g.ClusterID != cluster.ID {
			t.Errorf("group cluster = %q, want %q", g.ClusterID, cluster.ID)
		}
		for _, j := range g.Jobs {
			if j.ScheduledTime.Hour() != 10 {
				t.Errorf("job %d scheduled at hour %d, want pattern hour 10", j.Job.JobID, j.ScheduledTime.Hour())
			}
			if !domain.SameUTCDate(j.ScheduledTime, g.Date) {
				t.Errorf("job %d scheduled on %v, not the group date %v", j.Job.JobID, j.ScheduledTime, g.Date)
			}
		}
	}
}

func TestBuildGroupsPatternlessDefaults(t *testing.T) {
	prefs := testPrefs()
	rng := prefs.Range()

	cluster := domain.LocationCluster{ID: "richmond", Name: "Richmond", MaxJobsPerDay: 5}

	jobs := []domain.Job{
		{JobID: 1, Title: "New client A", Location: "1 Oak St, Richmond", DateDue: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)},
		{JobID: 2, Title: "New client B", Location: "2 Elm St, Richmond", DateDue: time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)},
	}

	groups, unscheduled := BuildGroups(
		map[string][]domain.Job{cluster.ID: jobs},
		[]domain.LocationCluster{cluster},
		map[string]*domain.HistoricalPattern{}, prefs, rng, zerolog.Nop(),
	)

	if len(unscheduled) != 0 {
		t.Fatalf("unscheduled = %v, want none", unscheduled)
	}
	// Patternless jobs round-robin across weekdays, one group each.
	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2", len(groups))
	}

	for _, g := range groups {
		for _, j := range g.Jobs {
			if j.ScheduledTime.Hour() != 9 {
				t.Errorf("patternless job at hour %d, want default 9", j.ScheduledTime.Hour())
			}
			if j.Confidence != 0.5 {
				t.Errorf("patternless confidence = %v, want 0.5", j.Confidence)
			}
			wd := g.Date.Weekday()
			if wd == time.Saturday || wd == time.Sunday {
				t.Errorf("patternless job landed on weekend %v", g.Date)
			}
		}
	}
}

func TestBuildGroupsHonorsRequestedRangeOverPreferences(t *testing.T) {
	prefs := testPrefs()
	// The request asks for June; the preference window (March/April) must
	// not pull any batch back before the requested start.
	rng := domain.DateRange{
		Start: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
	}

	cluster := domain.LocationCluster{ID: "surrey", Name: "Surrey", MaxJobsPerDay: 5}
	job := domain.Job{JobID: 4, Title: "Quarterly clean", Location: "7 Pine St, Surrey", DateDue: time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)}

	patterns := map[string]*domain.HistoricalPattern{
		domain.JobIdentifier(job.Title, job.Location): {
			PreferredHour: 10, PreferredDayOfWeek: 2,
			HourConfidence: 1, DayConfidence: 1,
		},
	}

	groups, unscheduled := BuildGroups(
		map[string][]domain.Job{cluster.ID: {job}},
		[]domain.LocationCluster{cluster},
		patterns, prefs, rng, zerolog.Nop(),
	)

	if len(unscheduled) != 0 {
		t.Fatalf("unscheduled = %v, want none", unscheduled)
	}
	if len(groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(groups))
	}

	g := groups[0]
	if g.Date.Before(rng.Start) || g.Date.After(rng.End) {
		t.Fatalf("group dated %v, outside the requested range %v..%v", g.Date, rng.Start, rng.End)
	}
	// 2026-06-01 is a Monday, so the first Tuesday in range is 06-02.
	want := time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)
	if !g.Date.Equal(want) {
		t.Errorf("group date = %v, want %v", g.Date, want)
	}
}

func TestBuildGroupsDropsUnplaceableBatch(t *testing.T) {
	prefs := testPrefs()
	// Tuesdays are impossible everywhere in the range.
	prefs.ExcludedDays = []time.Weekday{time.Tuesday}
	rng := prefs.Range()

	cluster := domain.LocationCluster{ID: "langley", Name: "Langley", MaxJobsPerDay: 5}
	job := domain.Job{JobID: 9, Title: "Tuesday only", Location: "5 Fir St, Langley", DateDue: time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)}

	patterns := map[string]*domain.HistoricalPattern{
		domain.JobIdentifier(job.Title, job.Location): {
			PreferredHour: 10, PreferredDayOfWeek: 2,
			HourConfidence: 1, DayConfidence: 1,
		},
	}

	groups, unscheduled := BuildGroups(
		map[string][]domain.Job{cluster.ID: {job}},
		[]domain.LocationCluster{cluster},
		patterns, prefs, rng, zerolog.Nop(),
	)

	if len(groups) != 0 {
		t.Errorf("groups = %d, want 0", len(groups))
	}
	if len(unscheduled) != 1 || unscheduled[0].JobID != 9 {
		t.Errorf("unscheduled = %v, want job 9", unscheduled)
	}
}

func TestBuildGroupsUnassignedUsesGlobalCapacity(t *testing.T) {
	prefs := testPrefs()
	prefs.MaxJobsPerDay = 1
	rng := prefs.Range()

	jobs := []domain.Job{
		{JobID: 1, Title: "A", Location: "somewhere remote"},
		{JobID: 2, Title: "B", Location: "somewhere else remote"},
	}
	// Force both into the same weekday bucket via patterns.
	patterns := make(map[string]*domain.HistoricalPattern)
	for _, j := range jobs {
		patterns[domain.JobIdentifier(j.Title, j.Location)] = &domain.HistoricalPattern{
			PreferredHour: 9, PreferredDayOfWeek: 1,
			HourConfidence: 1, DayConfidence: 1,
		}
	}

	groups, _ := BuildGroups(
		map[string][]domain.Job{domain.UnassignedClusterID: jobs},
		nil, patterns, prefs, rng, zerolog.Nop(),
	)

	if len(groups) != 2 {
		t.Fatalf("groups = %d, want 2 (global capacity 1)", len(groups))
	}
	for _, g := range groups {
		if g.ClusterID != domain.UnassignedClusterID {
			t.Errorf("cluster = %q, want unassigned", g.ClusterID)
		}
		if len(g.Jobs) != 1 {
			t.Errorf("group size = %d, want 1", len(g.Jobs))
		}
	}
}
