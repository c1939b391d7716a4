package domain

import (
	"strings"
	"time"
)

// MaxPatternOccurrences bounds how much history a pattern retains.
const MaxPatternOccurrences = 5

// Normalize lowercases a string and collapses internal whitespace so that
// cache keys stay stable across formatting differences.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// JobIdentifier keys a historical pattern by normalized title and location.
func JobIdentifier(title, location string) string {
	return Normalize(title) + "|" + Normalize(location)
}

// PatternOccurrence is one retained historical scheduling of a job identity.
type PatternOccurrence struct {
	StartTime       time.Time
	DurationMinutes int
}

// HistoricalPattern holds the derived scheduling preferences for one job
// identity. Created lazily, cached until manually invalidated; the engine
// never auto-expires patterns.
type HistoricalPattern struct {
	Identifier string

	PreferredHour  int
	HourConfidence float64

	// PreferredDayOfWeek is ISO numbered: Monday=1 .. Sunday=7.
	PreferredDayOfWeek int
	DayConfidence      float64

	AverageDuration int // minutes

	Occurrences []PatternOccurrence
	UpdatedAt   time.Time
}

// ISOWeekday maps a time.Weekday to ISO numbering (Sunday becomes 7).
func ISOWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// WeekdayFromISO is the inverse of ISOWeekday.
func WeekdayFromISO(iso int) time.Weekday {
	return time.Weekday(iso % 7)
}
