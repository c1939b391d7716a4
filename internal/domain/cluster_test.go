package domain

import "testing"

func TestClusterMatchesExclusions(t *testing.T) {
	core := LocationCluster{
		ID:         "vancouver-core",
		Aliases:    []string{"vancouver"},
		Exclusions: []string{"north vancouver", "west vancouver"},
	}

	if !core.Matches("120 Robson St, Vancouver, BC") {
		t.Fatalf("downtown address should match vancouver-core")
	}
	if core.Matches("33 Lonsdale Ave, North Vancouver, BC") {
		t.Fatalf("exclusion should veto the vancouver alias")
	}
}

func TestDefaultClustersOrdering(t *testing.T) {
	clusters := DefaultClusters()
	if len(clusters) != 8 {
		t.Fatalf("expected 8 default clusters, got %d", len(clusters))
	}

	// North Shore must come before Vancouver Core so first-match assignment
	// sends North Vancouver addresses to the right bucket.
	var shoreIdx, coreIdx int = -1, -1
	for i, c := range clusters {
		switch c.ID {
		case "north-shore":
			shoreIdx = i
		case "vancouver-core":
			coreIdx = i
		}
	}
	if shoreIdx == -1 || coreIdx == -1 {
		t.Fatalf("missing north-shore or vancouver-core in defaults")
	}
	if shoreIdx > coreIdx {
		t.Fatalf("north-shore (%d) must precede vancouver-core (%d)", shoreIdx, coreIdx)
	}

	seen := make(map[string]bool)
	for _, c := range clusters {
		if seen[c.ID] {
			t.Errorf("duplicate cluster id %q", c.ID)
		}
		seen[c.ID] = true
		if len(c.Aliases) == 0 {
			t.Errorf("cluster %q has no aliases", c.ID)
		}
		if c.MaxJobsPerDay <= 0 {
			t.Errorf("cluster %q has no daily capacity", c.ID)
		}
	}
}
