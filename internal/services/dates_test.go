package services

import (
	"testing"
	"time"

	"schedule-optimizer-service/internal/domain"
)

func testPrefs() *domain.Preferences {
	return &domain.Preferences{
		MaxJobsPerDay:        6,
		WorkDayStart:         8,
		WorkDayEnd:           17,
		StartingPointAddress: "depot",
		StartDate:            time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		EndDate:              time.Date(2026, 4, 30, 0, 0, 0, 0, time.UTC),
	}
}

func TestIsDateAvailable(t *testing.T) {
	prefs := testPrefs()
	prefs.ExcludedDays = []time.Weekday{time.Wednesday}
	prefs.ExcludedDates = []time.Time{time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)}
	rng := prefs.Range()

	// 2026-03-02 is a Monday.
	if !IsDateAvailable(time.Date(2026, 3, 2, 15, 0, 0, 0, time.UTC), rng, prefs) {
		t.Errorf("plain weekday should be available regardless of time-of-day")
	}
	if IsDateAvailable(time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC), rng, prefs) {
		t.Errorf("saturday should be unavailable when weekends are off")
	}
	if IsDateAvailable(time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC), rng, prefs) {
		t.Errorf("excluded weekday (wednesday) should be unavailable")
	}
	if IsDateAvailable(time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC), rng, prefs) {
		t.Errorf("excluded specific date should be unavailable")
	}
	if IsDateAvailable(time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC), rng, prefs) {
		t.Errorf("date past the range end should be unavailable")
	}

	prefs.AllowWeekends = true
	if !IsDateAvailable(time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC), rng, prefs) {
		t.Errorf("saturday should be available when weekends are on")
	}
}

func TestIsDateAvailableHonorsRunRange(t *testing.T) {
	prefs := testPrefs()
	// The run asks for June even though preferences configure March/April.
	rng := domain.DateRange{
		Start: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
	}

	if IsDateAvailable(time.Date(2026, 4, 28, 0, 0, 0, 0, time.UTC), rng, prefs) {
		t.Errorf("date inside the preference window but before the run range must be unavailable")
	}
	if !IsDateAvailable(time.Date(2026, 6, 8, 0, 0, 0, 0, time.UTC), rng, prefs) {
		t.Errorf("weekday inside the run range should be available")
	}
}

func TestNextWeekdayAfterIsStrict(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	next := NextWeekdayAfter(monday, time.Monday)
	want := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Errorf("NextWeekdayAfter(monday, Monday) = %v, want %v", next, want)
	}

	tue := NextWeekdayAfter(monday, time.Tuesday)
	if !tue.Equal(time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("NextWeekdayAfter(monday, Tuesday) = %v", tue)
	}
}

func TestNextAvailableForwardSkipsExcludedWeeks(t *testing.T) {
	prefs := testPrefs()
	prefs.ExcludedDates = []time.Time{time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)}

	got, ok := NextAvailableForward(time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), prefs.Range(), prefs)
	if !ok {
		t.Fatalf("expected a forward date")
	}
	want := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("forward date = %v, want %v (one week later, same weekday)", got, want)
	}
}

func TestNextAvailableForwardExhausted(t *testing.T) {
	prefs := testPrefs()
	prefs.ExcludedDays = []time.Weekday{time.Tuesday}

	if _, ok := NextAvailableForward(time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), prefs.Range(), prefs); ok {
		t.Fatalf("weekday excluded everywhere should exhaust the forward search")
	}
}

func TestNextAvailableBackwardFallback(t *testing.T) {
	prefs := testPrefs()

	// 2026-04-30 is a Thursday; the last Tuesday within 30 days is 04-28.
	got, ok := NextAvailableBackwardFallback(time.Tuesday, prefs.Range(), prefs)
	if !ok {
		t.Fatalf("expected a backward fallback date")
	}
	want := time.Date(2026, 4, 28, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("backward fallback = %v, want %v", got, want)
	}
}

func TestNextAvailableBackwardFallbackUsesRunRange(t *testing.T) {
	prefs := testPrefs()
	rng := domain.DateRange{
		Start: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
	}

	// 2026-06-30 is a Tuesday; the rescue must come from the run range's
	// end, not the preference window's.
	got, ok := NextAvailableBackwardFallback(time.Tuesday, rng, prefs)
	if !ok {
		t.Fatalf("expected a backward fallback date")
	}
	want := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("backward fallback = %v, want %v", got, want)
	}
}
