package services

import (
	"time"

	"github.com/rs/zerolog"

	"schedule-optimizer-service/internal/domain"
)

// conflictSearchDays bounds the forward scan for a replacement date.
const conflictSearchDays = 60

// ResolveConflicts compares finalized groups against committed calendar
// entries. A group whose date collides (UTC day equality) with any entry
// is shifted whole to the next later date that is both available and free
// of committed entries, preserving each job's time-of-day. Groups that
// cannot be moved keep their conflicting date; the conflict surfaces in
// the output rather than blocking the run.
//
// Returns the number of groups successfully shifted. A shifted group is
// never dated before its originally assigned date.
func ResolveConflicts(
	groups []*domain.ScheduleGroup,
	existing []domain.ScheduleEntry,
	prefs *domain.Preferences,
	rng domain.DateRange,
	log zerolog.Logger,
) int {
	busy := make(map[time.Time]struct{}, len(existing))
	for _, e := range existing {
		busy[domain.DateOnly(e.StartDateTime)] = struct{}{}
	}
	if len(busy) == 0 {
		return 0
	}

	resolved := 0
	for _, g := range groups {
		date := domain.DateOnly(g.Date)
		if _, conflict := busy[date]; !conflict {
			continue
		}

		next, ok := nextFreeDate(date, busy, rng, prefs)
		if !ok {
			log.Warn().
				Str("cluster", g.ClusterID).
				Time("date", date).
				Msg("conflict could not be resolved, keeping original date")
			continue
		}

		shiftGroup(g, next)
		resolved++
		log.Info().
			Str("cluster", g.ClusterID).
			Time("from", date).
			Time("to", next).
			Msg("shifted conflicting group")
	}

	return resolved
}

// nextFreeDate scans strictly past the conflicting date for a day that
// satisfies the availability predicate and has no committed entry.
func nextFreeDate(after time.Time, busy map[time.Time]struct{}, rng domain.DateRange, prefs *domain.Preferences) (time.Time, bool) {
	for i := 1; i <= conflictSearchDays; i++ {
		d := after.AddDate(0, 0, i)
		if !IsDateAvailable(d, rng, prefs) {
			continue
		}
		if _, taken := busy[d]; taken {
			continue
		}
		return d, true
	}
	return time.Time{}, false
}

// shiftGroup re-stamps the group and every job onto the new date, keeping
// each job's original hour and minute. The end time is re-derived from the
// shifted start plus the original span, so a window that crossed midnight
// keeps its day offset.
func shiftGroup(g *domain.ScheduleGroup, date time.Time) {
	restamp := func(t time.Time) time.Time {
		u := t.UTC()
		return time.Date(date.Year(), date.Month(), date.Day(),
			u.Hour(), u.Minute(), u.Second(), 0, time.UTC)
	}

	span := g.EstimatedEndTime.Sub(g.EstimatedStartTime)

	g.Date = date
	for _, j := range g.Jobs {
		j.ScheduledTime = restamp(j.ScheduledTime)
	}
	g.EstimatedStartTime = restamp(g.EstimatedStartTime)
	g.EstimatedEndTime = g.EstimatedStartTime.Add(span)
}
