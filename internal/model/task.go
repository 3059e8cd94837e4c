package model

import "time"

type Task struct {
	ID        int        `json:"id"`
	ProjectID int        `json:"project_id"`
	Title     string     `json:"title"`
	Status    string     `json:"status"` // todo / in_progress / done
	Progress  float64    `json:"progress"`
	StartDate *time.Time `json:"start_date,omitempty"`
	Color     string     `json:"color"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ResourceAssignment binds a resource type to a task with its effort estimate.
type ResourceAssignment struct {
	TaskID           int     `json:"task_id"`
	ResourceID       string  `json:"resource_id"`
	EstimatedDays    float64 `json:"estimated_days"`
	NumberOfProfiles int     `json:"number_of_profiles"`
	FocusFactor      float64 `json:"focus_factor"` // percentage, 0 means "inherit"
}

// ProjectResourceAssignment is the project-wide pool for one resource type.
type ProjectResourceAssignment struct {
	ProjectID         int     `json:"project_id"`
	ResourceID        string  `json:"resource_id"`
	NumberOfResources int     `json:"number_of_resources"`
	FocusFactor       float64 `json:"focus_factor"`
}
