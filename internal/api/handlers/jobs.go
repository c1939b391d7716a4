package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"schedule-optimizer-service/internal/api/dto"
	"schedule-optimizer-service/internal/domain"
	"schedule-optimizer-service/internal/ports"
)

// JobHandler exposes read-only access to the unscheduled backlog.
type JobHandler struct {
	Source ports.JobSource
}

func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// Default window: everything due in the next quarter.
	now := time.Now().UTC()
	rng := domain.DateRange{Start: now, End: now.AddDate(0, 3, 0)}

	jobs, err := h.Source.FetchUnscheduledJobs(r.Context(), rng)
	if err != nil {
		log.Error().Err(err).Msg("list jobs failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListJobsResponse{
		Jobs: make([]dto.JobResponse, 0, len(jobs)),
	}
	for _, j := range jobs {
		res.Jobs = append(res.Jobs, toJobResponse(j))
	}

	writeJSON(w, r, http.StatusOK, res)
}

func toJobResponse(j domain.Job) dto.JobResponse {
	return dto.JobResponse{
		JobID:             j.JobID,
		InvoiceID:         j.InvoiceID,
		Title:             j.Title,
		Location:          j.Location,
		ClientName:        j.ClientName,
		DateDue:           j.DateDue,
		EstimatedDuration: j.EstimatedDuration,
		Priority:          j.Priority,
	}
}
