package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"schedule-optimizer-service/internal/domain"
	"schedule-optimizer-service/internal/ports"
)

const (
	defaultPreferredHour   = 9
	defaultAverageDuration = 180

	// Historical durations outside this band are treated as data-entry
	// noise and ignored when averaging.
	minSaneDuration = 60
	maxSaneDuration = 480
)

// PatternAnalyzer derives per-job-identity scheduling preferences from
// historical calendar entries, caching the result in the pattern store.
type PatternAnalyzer struct {
	Store   ports.PatternStore
	History ports.ExistingScheduleSource
	Log     zerolog.Logger
}

// Analyze returns one pattern per distinct job identity present in jobs.
// Cached patterns are reused; misses are derived from up to five recent
// historical entries and written through to the store. Store and history
// failures are degraded, not fatal: the affected identity simply gets no
// pattern.
func (a *PatternAnalyzer) Analyze(
	ctx context.Context,
	jobs []domain.Job,
	workDayStart, workDayEnd int,
) map[string]*domain.HistoricalPattern {
	patterns := make(map[string]*domain.HistoricalPattern)

	for _, job := range jobs {
		id := domain.JobIdentifier(job.Title, job.Location)
		if _, ok := patterns[id]; ok {
			continue
		}

		cached, err := a.Store.Find(ctx, id)
		if err != nil {
			a.Log.Warn().Err(err).Str("identifier", id).Msg("pattern lookup failed")
		} else if cached != nil {
			patterns[id] = cached
			continue
		}

		entries, err := a.History.ListRecentFor(ctx, job.Title, job.Location, domain.MaxPatternOccurrences)
		if err != nil {
			a.Log.Warn().Err(err).Str("identifier", id).Msg("history query failed")
			continue
		}
		if len(entries) == 0 {
			continue
		}

		p := BuildPattern(id, entries, workDayStart, workDayEnd)
		patterns[id] = p

		if err := a.Store.Save(ctx, p); err != nil {
			a.Log.Warn().Err(err).Str("identifier", id).Msg("pattern save failed")
		}
	}

	return patterns
}

// BuildPattern derives a pattern from historical entries. Pure: same
// entries and business-hours window always yield the same pattern.
func BuildPattern(
	identifier string,
	entries []domain.ScheduleEntry,
	workDayStart, workDayEnd int,
) *domain.HistoricalPattern {
	p := &domain.HistoricalPattern{
		Identifier:      identifier,
		PreferredHour:   defaultPreferredHour,
		AverageDuration: defaultAverageDuration,
		UpdatedAt:       time.Now().UTC(),
	}

	if len(entries) > domain.MaxPatternOccurrences {
		entries = entries[:domain.MaxPatternOccurrences]
	}

	hourCounts := make(map[int]int)
	qualifying := 0
	dayCounts := make(map[int]int)
	durationSum, durationN := 0, 0

	for _, e := range entries {
		start := e.StartDateTime.UTC()

		h := start.Hour()
		if h >= workDayStart && h <= workDayEnd {
			hourCounts[h]++
			qualifying++
		}

		dayCounts[domain.ISOWeekday(start)]++

		d := int(e.Hours * 60)
		if d >= minSaneDuration && d <= maxSaneDuration {
			durationSum += d
			durationN++
		}

		p.Occurrences = append(p.Occurrences, domain.PatternOccurrence{
			StartTime:       start,
			DurationMinutes: int(e.Hours * 60),
		})
	}

	if hour, count, ok := modal(hourCounts); ok {
		p.PreferredHour = hour
		p.HourConfidence = confidence(count, qualifying)
	}

	if day, count, ok := modal(dayCounts); ok {
		p.PreferredDayOfWeek = day
		p.DayConfidence = confidence(count, len(entries))
	}

	if durationN > 0 {
		p.AverageDuration = durationSum / durationN
	}

	return p
}

// modal returns the most frequent key; ties break toward the smaller key
// so derivation stays deterministic.
func modal(counts map[int]int) (key, count int, ok bool) {
	for k, c := range counts {
		if !ok || c > count || (c == count && k < key) {
			key, count, ok = k, c, true
		}
	}
	return key, count, ok
}

// confidence is the fraction of occurrences agreeing with the mode:
// 0 with no data, 1 with a single occurrence.
func confidence(modalCount, total int) float64 {
	if total == 0 {
		return 0
	}
	if total == 1 {
		return 1
	}
	return float64(modalCount) / float64(total)
}

// JobConfidence scores how strongly history backs a job's placement.
// Without any pattern the job sits at the 0.5 midpoint.
func JobConfidence(p *domain.HistoricalPattern) float64 {
	if p == nil {
		return 0.5
	}
	return (p.HourConfidence + p.DayConfidence) / 2
}
