package domain

import "time"

// Job is a single unscheduled service job handed to one optimization run.
// It is immutable input: the engine never writes back to the record it came
// from, it only produces OptimizedJob wrappers around it.
type Job struct {
	JobID      int
	InvoiceID  int
	Title      string
	Location   string
	ClientName string
	DateDue    time.Time

	// EstimatedDuration is in minutes, derived from the invoice price tier.
	EstimatedDuration int
	// Priority is 1 (low) to 10 (urgent), derived from days until due.
	Priority int

	// Scheduling constraints. Hour-of-day bounds; zero values mean
	// "no constraint beyond the global business-hours window".
	EarliestStartHour int
	LatestStartHour   int
	BufferAfter       int // minutes reserved after the job
}

// DurationForPrice maps an invoice price to an estimated on-site duration
// in minutes. Tiers mirror the billing bands used when the jobs were quoted.
func DurationForPrice(price float64) int {
	switch {
	case price < 600:
		return 150
	case price < 900:
		return 180
	default:
		return 240
	}
}

// PriorityFromDue derives a 1..10 priority from how close the job is to its
// due date. Overdue jobs saturate at 10; anything four weeks out is a 1.
func PriorityFromDue(due, now time.Time) int {
	days := int(due.Sub(now).Hours() / 24)
	switch {
	case days <= 0:
		return 10
	case days >= 28:
		return 1
	default:
		return 10 - (days*9)/28
	}
}
