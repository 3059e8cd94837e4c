package schedule

import (
	"math"

	"planboard/internal/model"
)

// defaultFocusFactor is used when neither the task-level nor the
// project-level assignment carries a usable focus factor. A zero or negative
// focus factor would divide durations into infinity, so it is defaulted
// rather than propagated.
const defaultFocusFactor = 100.0

// TotalEstimate sums the estimated effort of a task's assignments in
// person-days.
func TotalEstimate(assignments []model.ResourceAssignment) float64 {
	total := 0.0
	for _, a := range assignments {
		total += a.EstimatedDays
	}
	return total
}

// resolveFocus picks the effective focus factor for an assignment: the
// task-level value when set, otherwise the project pool's value for the same
// resource, otherwise 100.
func resolveFocus(a model.ResourceAssignment, projectAssignments []model.ProjectResourceAssignment) float64 {
	if a.FocusFactor > 0 {
		return a.FocusFactor
	}
	for _, p := range projectAssignments {
		if p.ResourceID == a.ResourceID && p.FocusFactor > 0 {
			return p.FocusFactor
		}
	}
	return defaultFocusFactor
}

// DailyThroughput is the combined person-days burned per working day when
// every assigned profile works the task simultaneously.
func DailyThroughput(assignments []model.ResourceAssignment, projectAssignments []model.ProjectResourceAssignment) float64 {
	throughput := 0.0
	for _, a := range assignments {
		profiles := a.NumberOfProfiles
		if profiles < 1 {
			profiles = 1
		}
		throughput += float64(profiles) * resolveFocus(a, projectAssignments) / 100
	}
	return throughput
}

// TaskDuration computes a task's duration in working days.
//
// With a usable snapshot (progress underway and work remaining) the recorded
// remaining estimate is divided by the combined daily throughput. Without
// one, each resource type works its own estimate in parallel and the task is
// gated by the slowest: duration = ceil(max estimatedDays_r / dailyRate_r).
// A task with no assignments takes one day.
func TaskDuration(assignments []model.ResourceAssignment, projectAssignments []model.ProjectResourceAssignment, snap *model.ProgressSnapshot) int {
	if snap != nil && snap.Progress > 0 && snap.RemainingEstimate > 0 {
		throughput := DailyThroughput(assignments, projectAssignments)
		if throughput <= 0 {
			return clampDuration(math.Ceil(snap.RemainingEstimate))
		}
		return clampDuration(math.Ceil(snap.RemainingEstimate / throughput))
	}

	if len(assignments) == 0 {
		return 1
	}

	slowest := 0.0
	for _, a := range assignments {
		profiles := a.NumberOfProfiles
		if profiles < 1 {
			profiles = 1
		}
		rate := float64(profiles) * resolveFocus(a, projectAssignments) / 100
		d := a.EstimatedDays / rate
		if d > slowest {
			slowest = d
		}
	}
	return clampDuration(math.Ceil(slowest))
}

// CurrentRemaining is the task's remaining effort in person-days: the latest
// snapshot's recorded estimate when one exists, otherwise the effort implied
// by the task's progress percentage. Never negative.
func CurrentRemaining(task model.Task, assignments []model.ResourceAssignment, snap *model.ProgressSnapshot) float64 {
	if snap != nil {
		if snap.RemainingEstimate < 0 {
			return 0
		}
		return snap.RemainingEstimate
	}
	remaining := TotalEstimate(assignments) * (1 - task.Progress/100)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func clampDuration(d float64) int {
	if d < 1 {
		return 1
	}
	return int(d)
}
