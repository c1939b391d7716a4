package dto

import "time"

type OptimizeRequest struct {
	Strategy  string `json:"strategy"`
	StartDate string `json:"start_date"` // YYYY-MM-DD; defaults to the configured range
	EndDate   string `json:"end_date"`
}

type OptimizedJobResponse struct {
	JobID               int       `json:"job_id"`
	Title               string    `json:"title"`
	Location            string    `json:"location"`
	ScheduledTime       time.Time `json:"scheduled_time"`
	DriveTimeToPrevious int       `json:"drive_time_to_previous_minutes"`
	DriveTimeToNext     int       `json:"drive_time_to_next_minutes"`
	OrderInRoute        int       `json:"order_in_route"`
	Confidence          float64   `json:"confidence"`
}

type ScheduleGroupResponse struct {
	ClusterID          string                 `json:"cluster_id"`
	ClusterName        string                 `json:"cluster_name"`
	Date               time.Time              `json:"date"`
	Jobs               []OptimizedJobResponse `json:"jobs"`
	TotalDriveTime     int                    `json:"total_drive_time_minutes"`
	TotalWorkTime      int                    `json:"total_work_time_minutes"`
	EstimatedStartTime time.Time              `json:"estimated_start_time"`
	EstimatedEndTime   time.Time              `json:"estimated_end_time"`
	RouteOptimized     bool                   `json:"route_optimized"`
}

type MetricsResponse struct {
	TotalDriveTime    int     `json:"total_drive_time_minutes"`
	AverageJobsPerDay float64 `json:"average_jobs_per_day"`
	UtilizationRate   float64 `json:"utilization_rate"`
	ConflictsResolved int     `json:"conflicts_resolved"`
}

type OptimizeResponse struct {
	RunID           string                  `json:"run_id"`
	Strategy        string                  `json:"strategy"`
	TotalJobs       int                     `json:"total_jobs"`
	ScheduledGroups []ScheduleGroupResponse `json:"scheduled_groups"`
	UnscheduledJobs []JobResponse           `json:"unscheduled_jobs"`
	Metrics         MetricsResponse         `json:"metrics"`
	GeneratedAt     time.Time               `json:"generated_at"`
}
