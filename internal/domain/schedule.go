package domain

import "time"

// DateRange bounds one optimization run. Both ends are inclusive at date
// granularity.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ContainsDate reports whether t falls inside the range, ignoring
// time-of-day.
func (r DateRange) ContainsDate(t time.Time) bool {
	d := DateOnly(t)
	return !d.Before(DateOnly(r.Start)) && !d.After(DateOnly(r.End))
}

// DateOnly truncates a timestamp to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// SameUTCDate reports UTC calendar-day equality.
func SameUTCDate(a, b time.Time) bool { return DateOnly(a).Equal(DateOnly(b)) }

// Preferences are the admin-configured scheduling controls. Missing
// preferences are a fatal initialization error, so the engine always works
// with a fully populated value.
type Preferences struct {
	MaxJobsPerDay        int
	WorkDayStart         int // hour, inclusive
	WorkDayEnd           int // hour, inclusive
	StartingPointAddress string

	ExcludedDays  []time.Weekday
	ExcludedDates []time.Time
	AllowWeekends bool

	StartDate time.Time
	EndDate   time.Time
}

// Range returns the configured optimization window.
func (p *Preferences) Range() DateRange {
	return DateRange{Start: p.StartDate, End: p.EndDate}
}

// ScheduleEntry is an already-committed (or historical) calendar entry as
// supplied by the existing-schedule source.
type ScheduleEntry struct {
	Title         string
	Location      string
	StartDateTime time.Time
	Hours         float64 // scheduled hours; minutes are Hours*60
}

// OptimizedJob is a job with its computed placement on a day's route.
type OptimizedJob struct {
	Job           Job
	ScheduledTime time.Time

	DriveTimeToPrevious int // minutes; from depot for the first stop
	DriveTimeToNext     int // minutes; to depot for the last stop
	OrderInRoute        int // 1-based position on the day's route

	Confidence float64
	Pattern    *HistoricalPattern // nil when no history existed
}

// ScheduleGroup is one cluster on one calendar date: an ordered route of
// jobs plus aggregate timings.
type ScheduleGroup struct {
	ClusterID   string
	ClusterName string
	Date        time.Time
	Jobs        []*OptimizedJob

	TotalDriveTime     int // minutes, depot legs included
	TotalWorkTime      int // minutes
	EstimatedStartTime time.Time
	EstimatedEndTime   time.Time
	RouteOptimized     bool
}

// Metrics aggregates one run's outcome.
type Metrics struct {
	TotalDriveTime    int
	AverageJobsPerDay float64
	UtilizationRate   float64
	ConflictsResolved int
}

// OptimizationResult is the sole artifact an optimization run exposes.
// It is produced fresh per run and immutable thereafter.
type OptimizationResult struct {
	RunID           string
	Strategy        string
	TotalJobs       int
	ScheduledGroups []*ScheduleGroup
	UnscheduledJobs []Job
	Metrics         Metrics
	GeneratedAt     time.Time
}
