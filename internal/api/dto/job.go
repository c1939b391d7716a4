package dto

import "time"

type JobResponse struct {
	JobID             int       `json:"job_id"`
	InvoiceID         int       `json:"invoice_id"`
	Title             string    `json:"title"`
	Location          string    `json:"location"`
	ClientName        string    `json:"client_name"`
	DateDue           time.Time `json:"date_due"`
	EstimatedDuration int       `json:"estimated_duration_minutes"`
	Priority          int       `json:"priority"`
}

type ListJobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}
