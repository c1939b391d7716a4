package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
)

// DistanceMatrix is one run's precomputed pairwise travel costs. Locations
// and Coords are parallel lists; Durations (minutes) and Distances (km) are
// N×N matrices in the same order.
//
// Matrices are content-addressed by SetKey: a later run whose deduplicated,
// sorted location set matches may reuse the numbers under its own run id.
type DistanceMatrix struct {
	RunID     string
	SetKey    string
	Locations []string
	Coords    []Coordinates
	Durations [][]float64
	Distances [][]float64
}

// LocationSet normalizes, deduplicates and sorts a location list. This is
// the canonical form both for matrix rows and for the cache key.
func LocationSet(locations []string) []string {
	seen := make(map[string]struct{}, len(locations))
	out := make([]string, 0, len(locations))
	for _, l := range locations {
		n := Normalize(l)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// LocationSetKey hashes a canonical location set for content-addressed
// cache lookup.
func LocationSetKey(locations []string) string {
	set := LocationSet(locations)
	sum := sha256.Sum256([]byte(strings.Join(set, "\n")))
	return hex.EncodeToString(sum[:])
}

// Index returns the matrix row for a location, or -1 when absent.
func (m *DistanceMatrix) Index(location string) int {
	n := Normalize(location)
	for i, l := range m.Locations {
		if l == n {
			return i
		}
	}
	return -1
}

// Duration returns the cached travel minutes between two locations.
func (m *DistanceMatrix) Duration(from, to string) (float64, bool) {
	i, j := m.Index(from), m.Index(to)
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Durations[i][j], true
}

// Distance returns the cached travel km between two locations.
func (m *DistanceMatrix) Distance(from, to string) (float64, bool) {
	i, j := m.Index(from), m.Index(to)
	if i < 0 || j < 0 {
		return 0, false
	}
	return m.Distances[i][j], true
}

// Covers reports whether every given location is priced in the matrix.
func (m *DistanceMatrix) Covers(locations []string) bool {
	for _, l := range locations {
		if m.Index(l) < 0 {
			return false
		}
	}
	return true
}

// Coordinate returns the geocoded position stored for a location.
func (m *DistanceMatrix) Coordinate(location string) (Coordinates, bool) {
	i := m.Index(location)
	if i < 0 || i >= len(m.Coords) {
		return Coordinates{}, false
	}
	return m.Coords[i], true
}
