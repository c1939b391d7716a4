package services

import (
	"github.com/rs/zerolog"

	"schedule-optimizer-service/internal/domain"
)

// ClusterJobs partitions jobs into geographic clusters by scanning the
// cluster table in order and taking the first alias match on the job's
// location text. First match wins: assignment is order-dependent, not
// best-match, and ambiguous locations resolve to the earliest cluster in
// the table. Jobs matching nothing land in the "unassigned" bucket.
//
// The function is deterministic and has no error path; the worst case is
// every job unassigned.
func ClusterJobs(
	jobs []domain.Job,
	clusters []domain.LocationCluster,
	log zerolog.Logger,
) map[string][]domain.Job {
	out := make(map[string][]domain.Job, len(clusters)+1)

	for _, job := range jobs {
		assigned := ""
		for _, c := range clusters {
			if !c.Matches(job.Location) {
				continue
			}
			if assigned == "" {
				assigned = c.ID
				out[c.ID] = append(out[c.ID], job)
				continue
			}
			// Later clusters that would also match are only surfaced,
			// never preferred.
			log.Debug().
				Int("job_id", job.JobID).
				Str("assigned", assigned).
				Str("also_matches", c.ID).
				Msg("ambiguous cluster match")
		}

		if assigned == "" {
			out[domain.UnassignedClusterID] = append(out[domain.UnassignedClusterID], job)
		}
	}

	return out
}
