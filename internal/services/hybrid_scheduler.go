package services

import (
	"sort"
	"time"

	"github.com/rs/zerolog"

	"schedule-optimizer-service/internal/domain"
)

// BuildGroups runs the hybrid scheduling strategy: within each cluster,
// jobs are sorted by pattern confidence, bucketed by preferred weekday,
// sliced into capacity-bounded batches, and each batch is resolved to the
// next available calendar date.
//
// Batches that cannot be placed on any date are dropped into the returned
// unscheduled list; that is a diagnostic, not an error.
func BuildGroups(
	clustered map[string][]domain.Job,
	clusters []domain.LocationCluster,
	patterns map[string]*domain.HistoricalPattern,
	prefs *domain.Preferences,
	rng domain.DateRange,
	log zerolog.Logger,
) ([]*domain.ScheduleGroup, []domain.Job) {
	var groups []*domain.ScheduleGroup
	var unscheduled []domain.Job

	// Deterministic cluster order: table order, then the synthetic bucket.
	order := make([]domain.LocationCluster, 0, len(clusters)+1)
	order = append(order, clusters...)
	order = append(order, domain.LocationCluster{
		ID:   domain.UnassignedClusterID,
		Name: "Unassigned",
	})

	for _, cluster := range order {
		jobs := clustered[cluster.ID]
		if len(jobs) == 0 {
			continue
		}

		capacity := cluster.MaxJobsPerDay
		if capacity <= 0 {
			capacity = prefs.MaxJobsPerDay
		}

		g, u := scheduleCluster(cluster, jobs, capacity, patterns, prefs, rng, log)
		groups = append(groups, g...)
		unscheduled = append(unscheduled, u...)
	}

	return groups, unscheduled
}

type rankedJob struct {
	job        domain.Job
	pattern    *domain.HistoricalPattern
	confidence float64
}

func scheduleCluster(
	cluster domain.LocationCluster,
	jobs []domain.Job,
	capacity int,
	patterns map[string]*domain.HistoricalPattern,
	prefs *domain.Preferences,
	rng domain.DateRange,
	log zerolog.Logger,
) ([]*domain.ScheduleGroup, []domain.Job) {
	ranked := make([]rankedJob, 0, len(jobs))
	for _, j := range jobs {
		p := patterns[domain.JobIdentifier(j.Title, j.Location)]
		ranked = append(ranked, rankedJob{job: j, pattern: p, confidence: JobConfidence(p)})
	}

	// Highest confidence first; earlier due date breaks ties.
	sort.SliceStable(ranked, func(i, k int) bool {
		if ranked[i].confidence != ranked[k].confidence {
			return ranked[i].confidence > ranked[k].confidence
		}
		return ranked[i].job.DateDue.Before(ranked[k].job.DateDue)
	})

	// Weekday buckets, ISO numbered. Patternless jobs cycle Mon-Fri.
	buckets := make(map[int][]rankedJob)
	cycled := 0
	for _, r := range ranked {
		iso := 0
		if r.pattern != nil && r.pattern.PreferredDayOfWeek >= 1 && r.pattern.PreferredDayOfWeek <= 7 {
			iso = r.pattern.PreferredDayOfWeek
		} else {
			iso = 1 + cycled%5
			cycled++
		}
		buckets[iso] = append(buckets[iso], r)
	}

	var groups []*domain.ScheduleGroup
	var unscheduled []domain.Job

	for iso := 1; iso <= 7; iso++ {
		bucket := buckets[iso]
		if len(bucket) == 0 {
			continue
		}
		wd := domain.WeekdayFromISO(iso)

		for batchIdx := 0; batchIdx*capacity < len(bucket); batchIdx++ {
			start := batchIdx * capacity
			end := min(start+capacity, len(bucket))
			batch := bucket[start:end]

			// Batch i lands i weeks past the first occurrence of the
			// weekday after the range start.
			target := NextWeekdayAfter(rng.Start, wd).AddDate(0, 0, 7*batchIdx)

			date, ok := NextAvailableForward(target, rng, prefs)
			if !ok {
				date, ok = NextAvailableBackwardFallback(wd, rng, prefs)
			}
			if !ok {
				log.Warn().
					Str("cluster", cluster.ID).
					Int("weekday", iso).
					Int("batch", batchIdx).
					Int("jobs", len(batch)).
					Msg("no schedulable date for batch")
				for _, r := range batch {
					unscheduled = append(unscheduled, r.job)
				}
				continue
			}

			groups = append(groups, newGroup(cluster, date, batch))
		}
	}

	return groups, unscheduled
}

func newGroup(cluster domain.LocationCluster, date time.Time, batch []rankedJob) *domain.ScheduleGroup {
	g := &domain.ScheduleGroup{
		ClusterID:   cluster.ID,
		ClusterName: cluster.Name,
		Date:        date,
	}

	for _, r := range batch {
		hour := defaultPreferredHour
		if r.pattern != nil {
			hour = r.pattern.PreferredHour
		}
		scheduled := time.Date(date.Year(), date.Month(), date.Day(), hour, 0, 0, 0, time.UTC)

		g.Jobs = append(g.Jobs, &domain.OptimizedJob{
			Job:           r.job,
			ScheduledTime: scheduled,
			Confidence:    r.confidence,
			Pattern:       r.pattern,
		})
		g.TotalWorkTime += r.job.EstimatedDuration
	}

	// Provisional timings; routing refines these with drive legs.
	g.EstimatedStartTime = g.Jobs[0].ScheduledTime
	for _, j := range g.Jobs {
		if j.ScheduledTime.Before(g.EstimatedStartTime) {
			g.EstimatedStartTime = j.ScheduledTime
		}
	}
	g.EstimatedEndTime = g.EstimatedStartTime.Add(time.Duration(g.TotalWorkTime) * time.Minute)

	return g
}
