package types

import "time"

// BatchFailure records one meeting that could not be ingested, with the
// pipeline stage where it failed.
type BatchFailure struct {
	ExternalID string `json:"external_id"`
	Stage      string `json:"stage"`
	Reason     string `json:"reason"`
}

// BatchReport summarizes one ingestion batch for operational logging and
// alerting. Failures here are per-meeting; a failure to list meetings at all
// is surfaced as an error from the coordinator instead.
type BatchReport struct {
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Ingested   int            `json:"ingested"`
	Skipped    int            `json:"skipped_unchanged"`
	Failed     []BatchFailure `json:"failed,omitempty"`
}

// Total returns the number of meetings the batch attempted.
func (r *BatchReport) Total() int {
	return r.Ingested + r.Skipped + len(r.Failed)
}
