package model

import "time"

// ProgressSnapshot is an append-only historical record of where a task stood
// on a given calendar day. At most one snapshot exists per task per day.
type ProgressSnapshot struct {
	ID                int       `json:"id"`
	TaskID            int       `json:"task_id"`
	ProjectID         int       `json:"project_id"`
	SnapshotDate      time.Time `json:"snapshot_date"`
	RemainingEstimate float64   `json:"remaining_estimate"`
	Progress          float64   `json:"progress"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}
