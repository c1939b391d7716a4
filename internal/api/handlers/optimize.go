package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"schedule-optimizer-service/internal/api/dto"
	"schedule-optimizer-service/internal/domain"
	"schedule-optimizer-service/internal/services"
)

// OptimizeHandler runs a full optimization pass over the unscheduled
// backlog. A fresh Optimizer is built per request because it carries
// per-run state.
type OptimizeHandler struct {
	Deps services.Deps
}

func (h *OptimizeHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.OptimizeRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	if req.Strategy != "" && req.Strategy != services.StrategyHybrid {
		writeError(w, r, http.StatusBadRequest, "unknown strategy: "+req.Strategy)
		return
	}

	rng, err := h.resolveRange(r, req)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	opt := services.NewOptimizer(h.Deps)
	result, err := opt.Optimize(r.Context(), req.Strategy, rng)
	if err != nil {
		log.Error().Err(err).Msg("optimization run failed")
		writeError(w, r, http.StatusInternalServerError, "optimization failed")
		return
	}

	writeJSON(w, r, http.StatusOK, toOptimizeResponse(result))
}

// resolveRange prefers explicit request dates, then the configured
// preference window, then a three month default.
func (h *OptimizeHandler) resolveRange(r *http.Request, req dto.OptimizeRequest) (domain.DateRange, error) {
	if req.StartDate != "" || req.EndDate != "" {
		start, err := time.Parse(time.DateOnly, req.StartDate)
		if err != nil {
			return domain.DateRange{}, errBadDate("start_date", req.StartDate)
		}
		end, err := time.Parse(time.DateOnly, req.EndDate)
		if err != nil {
			return domain.DateRange{}, errBadDate("end_date", req.EndDate)
		}
		if end.Before(start) {
			return domain.DateRange{}, errRangeOrder
		}
		return domain.DateRange{Start: start.UTC(), End: end.UTC()}, nil
	}

	if prefs, err := h.Deps.Preferences.GetPreferences(r.Context()); err == nil && prefs != nil {
		if rng := prefs.Range(); !rng.Start.IsZero() && !rng.End.IsZero() {
			return rng, nil
		}
	}

	now := time.Now().UTC()
	return domain.DateRange{Start: now, End: now.AddDate(0, 3, 0)}, nil
}

var errRangeOrder = errors.New("end_date must not be before start_date")

func errBadDate(field, value string) error {
	return fmt.Errorf("invalid %s %q, expected YYYY-MM-DD", field, value)
}

func toOptimizeResponse(res *domain.OptimizationResult) dto.OptimizeResponse {
	out := dto.OptimizeResponse{
		RunID:           res.RunID,
		Strategy:        res.Strategy,
		TotalJobs:       res.TotalJobs,
		ScheduledGroups: make([]dto.ScheduleGroupResponse, 0, len(res.ScheduledGroups)),
		UnscheduledJobs: make([]dto.JobResponse, 0, len(res.UnscheduledJobs)),
		Metrics: dto.MetricsResponse{
			TotalDriveTime:    res.Metrics.TotalDriveTime,
			AverageJobsPerDay: res.Metrics.AverageJobsPerDay,
			UtilizationRate:   res.Metrics.UtilizationRate,
			ConflictsResolved: res.Metrics.ConflictsResolved,
		},
		GeneratedAt: res.GeneratedAt,
	}

	for _, g := range res.ScheduledGroups {
		gr := dto.ScheduleGroupResponse{
			ClusterID:          g.ClusterID,
			ClusterName:        g.ClusterName,
			Date:               g.Date,
			Jobs:               make([]dto.OptimizedJobResponse, 0, len(g.Jobs)),
			TotalDriveTime:     g.TotalDriveTime,
			TotalWorkTime:      g.TotalWorkTime,
			EstimatedStartTime: g.EstimatedStartTime,
			EstimatedEndTime:   g.EstimatedEndTime,
			RouteOptimized:     g.RouteOptimized,
		}
		for _, j := range g.Jobs {
			gr.Jobs = append(gr.Jobs, dto.OptimizedJobResponse{
				JobID:               j.Job.JobID,
				Title:               j.Job.Title,
				Location:            j.Job.Location,
				ScheduledTime:       j.ScheduledTime,
				DriveTimeToPrevious: j.DriveTimeToPrevious,
				DriveTimeToNext:     j.DriveTimeToNext,
				OrderInRoute:        j.OrderInRoute,
				Confidence:          j.Confidence,
			})
		}
		out.ScheduledGroups = append(out.ScheduledGroups, gr)
	}

	for _, j := range res.UnscheduledJobs {
		out.UnscheduledJobs = append(out.UnscheduledJobs, toJobResponse(j))
	}

	return out
}
