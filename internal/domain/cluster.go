package domain

import "strings"

// UnassignedClusterID is the synthetic bucket for jobs whose location
// matches no configured cluster.
const UnassignedClusterID = "unassigned"

// LocationCluster is a named geographic bucket of jobs sharing a regional
// capacity constraint. Clusters are static reference data: read-only during
// an optimization run.
type LocationCluster struct {
	ID     string
	Name   string
	Center Coordinates
	// RadiusKM is informational; assignment is keyword based, not geometric.
	RadiusKM float64

	MaxJobsPerDay int
	BufferMinutes int

	// Aliases are case-insensitive substrings that pull a job location into
	// this cluster. Exclusions veto a match even when an alias is present
	// ("vancouver" must not capture "north vancouver" addresses).
	Aliases    []string
	Exclusions []string
}

// Matches reports whether a job location string belongs to this cluster.
func (c LocationCluster) Matches(location string) bool {
	loc := strings.ToLower(location)
	for _, ex := range c.Exclusions {
		if strings.Contains(loc, ex) {
			return false
		}
	}
	for _, alias := range c.Aliases {
		if strings.Contains(loc, alias) {
			return true
		}
	}
	return false
}

// DefaultClusters returns the fixed seed set of regional clusters used when
// the cluster table is empty. Order matters: assignment is first-match, so
// more specific regions come before the ones whose aliases they contain.
func DefaultClusters() []LocationCluster {
	return []LocationCluster{
		{
			ID: "north-shore", Name: "North Shore",
			Center: Coordinates{Lon: -123.0724, Lat: 49.3200}, RadiusKM: 12,
			MaxJobsPerDay: 5, BufferMinutes: 15,
			Aliases: []string{"north vancouver", "west vancouver", "lions bay", "deep cove"},
		},
		{
			ID: "vancouver-core", Name: "Vancouver Core",
			Center: Coordinates{Lon: -123.1207, Lat: 49.2827}, RadiusKM: 10,
			MaxJobsPerDay: 6, BufferMinutes: 10,
			Aliases:    []string{"vancouver", "kitsilano", "point grey", "mount pleasant"},
			Exclusions: []string{"north vancouver", "west vancouver"},
		},
		{
			ID: "burnaby-newwest", Name: "Burnaby / New Westminster",
			Center: Coordinates{Lon: -122.9805, Lat: 49.2488}, RadiusKM: 10,
			MaxJobsPerDay: 6, BufferMinutes: 10,
			Aliases: []string{"burnaby", "new westminster", "metrotown"},
		},
		{
			ID: "richmond", Name: "Richmond",
			Center: Coordinates{Lon: -123.1336, Lat: 49.1666}, RadiusKM: 10,
			MaxJobsPerDay: 5, BufferMinutes: 10,
			Aliases: []string{"richmond", "steveston"},
		},
		{
			ID: "tri-cities", Name: "Tri-Cities",
			Center: Coordinates{Lon: -122.7932, Lat: 49.2838}, RadiusKM: 12,
			MaxJobsPerDay: 5, BufferMinutes: 15,
			Aliases: []string{"coquitlam", "port moody", "port coquitlam", "anmore"},
		},
		{
			ID: "surrey-delta", Name: "Surrey / Delta",
			Center: Coordinates{Lon: -122.8490, Lat: 49.1913}, RadiusKM: 15,
			MaxJobsPerDay: 6, BufferMinutes: 15,
			Aliases: []string{"surrey", "delta", "white rock", "cloverdale"},
		},
		{
			ID: "langley", Name: "Langley",
			Center: Coordinates{Lon: -122.6604, Lat: 49.1044}, RadiusKM: 12,
			MaxJobsPerDay: 5, BufferMinutes: 15,
			Aliases: []string{"langley", "aldergrove", "fort langley"},
		},
		{
			ID: "ridge-meadows", Name: "Maple Ridge / Pitt Meadows",
			Center: Coordinates{Lon: -122.6016, Lat: 49.2193}, RadiusKM: 12,
			MaxJobsPerDay: 4, BufferMinutes: 20,
			Aliases: []string{"maple ridge", "pitt meadows"},
		},
	}
}
