package domain

import "testing"

func TestLocationSet(t *testing.T) {
	set := LocationSet([]string{
		"B Street,  Surrey",
		"a street, vancouver",
		"A Street, Vancouver",
		"  ",
	})

	if len(set) != 2 {
		t.Fatalf("expected 2 locations, got %d: %v", len(set), set)
	}
	if set[0] != "a street, vancouver" || set[1] != "b street, surrey" {
		t.Fatalf("set not sorted/normalized: %v", set)
	}
}

func TestLocationSetKeyStable(t *testing.T) {
	a := LocationSetKey([]string{"X Ave", "Y Ave", "x ave"})
	b := LocationSetKey([]string{"y ave", "X  Ave"})
	if a != b {
		t.Fatalf("equivalent sets produced different keys")
	}

	c := LocationSetKey([]string{"X Ave", "Z Ave"})
	if a == c {
		t.Fatalf("different sets produced the same key")
	}
}

func TestMatrixLookups(t *testing.T) {
	m := &DistanceMatrix{
		Locations: []string{"a st", "b st"},
		Coords:    []Coordinates{{Lon: -123, Lat: 49}, {Lon: -122, Lat: 49}},
		Durations: [][]float64{{0, 12.5}, {13, 0}},
		Distances: [][]float64{{0, 8.2}, {8.4, 0}},
	}

	d, ok := m.Duration("A  St", "b st")
	if !ok || d != 12.5 {
		t.Fatalf("Duration = %v ok=%v, want 12.5 true", d, ok)
	}

	if _, ok := m.Duration("a st", "unknown"); ok {
		t.Fatalf("expected miss for unknown location")
	}

	if !m.Covers([]string{"a st", "B St"}) {
		t.Fatalf("Covers should accept known locations")
	}
	if m.Covers([]string{"a st", "c st"}) {
		t.Fatalf("Covers should reject unknown locations")
	}

	c, ok := m.Coordinate("b st")
	if !ok || c.Lon != -122 {
		t.Fatalf("Coordinate = %v ok=%v", c, ok)
	}
}
