package dto

import "time"

// RegradeFailure describes one submission the bulk regrade could not update.
type RegradeFailure struct {
	SubmissionID uint   `json:"submission_id"`
	Reason       string `json:"reason"`
}

// RegradeResponse reports the outcome of a bulk regrade run.
type RegradeResponse struct {
	RunID       uint             `json:"run_id"`
	RowsUpdated int              `json:"rows_updated"`
	RowsFailed  int              `json:"rows_failed"`
	StartedAt   time.Time        `json:"started_at"`
	FinishedAt  time.Time        `json:"finished_at"`
	Failures    []RegradeFailure `json:"failures,omitempty"`
}
