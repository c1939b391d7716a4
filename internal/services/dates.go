package services

import (
	"time"

	"schedule-optimizer-service/internal/domain"
)

const (
	// forwardAttempts bounds the week-by-week forward search.
	forwardAttempts = 52
	// backwardDays bounds the end-of-range rescue search.
	backwardDays = 30
)

// IsDateAvailable is the single scheduling-availability predicate: a date
// qualifies unless it hits an excluded weekday, an excluded specific date,
// a disallowed weekend, or falls outside the run's range. The range is the
// caller-requested window, which overrides the preference-configured one.
func IsDateAvailable(date time.Time, rng domain.DateRange, prefs *domain.Preferences) bool {
	d := domain.DateOnly(date)

	if !rng.ContainsDate(d) {
		return false
	}

	wd := d.Weekday()
	if !prefs.AllowWeekends && (wd == time.Saturday || wd == time.Sunday) {
		return false
	}
	for _, ex := range prefs.ExcludedDays {
		if wd == ex {
			return false
		}
	}
	for _, ex := range prefs.ExcludedDates {
		if domain.SameUTCDate(d, ex) {
			return false
		}
	}

	return true
}

// NextWeekdayAfter returns the first occurrence of wd strictly after t.
func NextWeekdayAfter(t time.Time, wd time.Weekday) time.Time {
	d := domain.DateOnly(t).AddDate(0, 0, 1)
	for d.Weekday() != wd {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// NextAvailableForward searches week by week from the target date for an
// available date on the same weekday. Bounded at 52 attempts so
// termination is provable regardless of preferences.
func NextAvailableForward(target time.Time, rng domain.DateRange, prefs *domain.Preferences) (time.Time, bool) {
	d := domain.DateOnly(target)
	for i := 0; i < forwardAttempts; i++ {
		if IsDateAvailable(d, rng, prefs) {
			return d, true
		}
		d = d.AddDate(0, 0, 7)
	}
	return time.Time{}, false
}

// NextAvailableBackwardFallback rescues batches that fell off the end of
// the range: it walks back from the run range's end boundary, up to 30
// days, looking for an available date on the wanted weekday.
func NextAvailableBackwardFallback(wd time.Weekday, rng domain.DateRange, prefs *domain.Preferences) (time.Time, bool) {
	end := domain.DateOnly(rng.End)
	for i := 0; i <= backwardDays; i++ {
		d := end.AddDate(0, 0, -i)
		if d.Weekday() != wd {
			continue
		}
		if IsDateAvailable(d, rng, prefs) {
			return d, true
		}
	}
	return time.Time{}, false
}
