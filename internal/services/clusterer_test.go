package services

import (
	"testing"
	"time"

	"github.com/rs/zerolog"

	"schedule-optimizer-service/internal/domain"
)

func TestClusterJobsFirstMatchWins(t *testing.T) {
	due := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	jobs := []domain.Job{
		{JobID: 1, Title: "Window wash", Location: "120 Robson St, Vancouver, BC", DateDue: due},
		{JobID: 2, Title: "Gutter clean", Location: "33 Lonsdale Ave, North Vancouver, BC", DateDue: due},
		{JobID: 3, Title: "Roof repair", Location: "900 Somewhere Rd, Chilliwack, BC", DateDue: due},
	}

	out := ClusterJobs(jobs, domain.DefaultClusters(), zerolog.Nop())

	if got := out["vancouver-core"]; len(got) != 1 || got[0].JobID != 1 {
		t.Errorf("vancouver-core = %v, want job 1 only", got)
	}
	// "north vancouver" contains "vancouver" but must land on the shore
	// cluster via first match plus the core exclusion.
	if got := out["north-shore"]; len(got) != 1 || got[0].JobID != 2 {
		t.Errorf("north-shore = %v, want job 2 only", got)
	}
	if got := out[domain.UnassignedClusterID]; len(got) != 1 || got[0].JobID != 3 {
		t.Errorf("unassigned = %v, want job 3 only", got)
	}
}

func TestClusterJobsDeterministic(t *testing.T) {
	jobs := []domain.Job{
		{JobID: 1, Location: "Surrey"},
		{JobID: 2, Location: "Surrey"},
	}
	clusters := domain.DefaultClusters()

	first := ClusterJobs(jobs, clusters, zerolog.Nop())
	second := ClusterJobs(jobs, clusters, zerolog.Nop())

	a, b := first["surrey-delta"], second["surrey-delta"]
	if len(a) != 2 || len(b) != 2 {
		t.Fatalf("surrey-delta sizes = %d, %d, want 2, 2", len(a), len(b))
	}
	for i := range a {
		if a[i].JobID != b[i].JobID {
			t.Fatalf("assignment order changed between runs: %v vs %v", a, b)
		}
	}
}
