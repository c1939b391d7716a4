package services

import "schedule-optimizer-service/internal/domain"

// CalculateMetrics is pure aggregation over a run's finalized groups.
func CalculateMetrics(groups []*domain.ScheduleGroup, totalJobs, conflictsResolved int) domain.Metrics {
	m := domain.Metrics{ConflictsResolved: conflictsResolved}

	scheduled := 0
	for _, g := range groups {
		m.TotalDriveTime += g.TotalDriveTime
		scheduled += len(g.Jobs)
	}

	if len(groups) > 0 {
		m.AverageJobsPerDay = float64(scheduled) / float64(len(groups))
	}
	if totalJobs > 0 {
		m.UtilizationRate = float64(scheduled) / float64(totalJobs)
	}

	return m
}
