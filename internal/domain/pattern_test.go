package domain

import (
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	got := Normalize("  123   Main St,\tVancouver  ")
	want := "123 main st, vancouver"
	if got != want {
		t.Fatalf("Normalize = %q, want %q", got, want)
	}

	if Normalize("   ") != "" {
		t.Fatalf("whitespace-only input should normalize to empty string")
	}
}

func TestJobIdentifier(t *testing.T) {
	a := JobIdentifier("Gutter  Cleaning", "88 Oak St,  Burnaby")
	b := JobIdentifier("gutter cleaning", "88 oak st, burnaby")
	if a != b {
		t.Fatalf("identifiers differ for equivalent inputs: %q vs %q", a, b)
	}
	if a != "gutter cleaning|88 oak st, burnaby" {
		t.Fatalf("unexpected identifier %q", a)
	}
}

func TestISOWeekday(t *testing.T) {
	// 2026-01-04 is a Sunday.
	sunday := time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC)
	if got := ISOWeekday(sunday); got != 7 {
		t.Fatalf("ISOWeekday(sunday) = %d, want 7", got)
	}

	monday := sunday.AddDate(0, 0, 1)
	if got := ISOWeekday(monday); got != 1 {
		t.Fatalf("ISOWeekday(monday) = %d, want 1", got)
	}

	for iso := 1; iso <= 7; iso++ {
		day := sunday.AddDate(0, 0, iso)
		if WeekdayFromISO(iso) != day.Weekday() {
			t.Errorf("WeekdayFromISO(%d) = %v, want %v", iso, WeekdayFromISO(iso), day.Weekday())
		}
	}
}
