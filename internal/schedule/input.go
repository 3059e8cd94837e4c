package schedule

import (
	"time"

	"planboard/internal/model"
)

// Input is an immutable view of one project's planning data. Every function
// in this package is a pure computation over an Input: nothing here mutates
// tasks, assignments or snapshots, and identical inputs always produce
// identical outputs.
type Input struct {
	// Tasks in their original project ordering. The ordering is a simulation
	// input, not a display detail: the leveling simulator breaks resource
	// contention in favour of the earliest task in this slice.
	Tasks []model.Task

	// Dependencies maps a task id to its prerequisite task ids.
	Dependencies map[int][]int

	// Assignments maps a task id to its resource assignments.
	Assignments map[int][]model.ResourceAssignment

	// ProjectAssignments holds the project-wide resource pools, in a stable
	// order (the simulator walks them in slice order).
	ProjectAssignments []model.ProjectResourceAssignment

	// Snapshots is the append-only progress history, any order.
	Snapshots []model.ProgressSnapshot

	ProjectStart time.Time
	Today        time.Time
}

// Diagnostics collects data-integrity anomalies encountered during a
// computation. Anomalies never abort a computation; the schedule is still
// produced on a best-effort basis.
type Diagnostics struct {
	// CycleTaskIDs lists tasks whose dependency edge was suppressed because
	// it closed a cycle.
	CycleTaskIDs []int `json:"cycle_task_ids,omitempty"`

	// UnknownDependencyIDs lists referenced prerequisite ids with no
	// matching task.
	UnknownDependencyIDs []int `json:"unknown_dependency_ids,omitempty"`
}

func (d *Diagnostics) addCycle(id int) {
	for _, existing := range d.CycleTaskIDs {
		if existing == id {
			return
		}
	}
	d.CycleTaskIDs = append(d.CycleTaskIDs, id)
}

func (d *Diagnostics) addUnknownDependency(id int) {
	for _, existing := range d.UnknownDependencyIDs {
		if existing == id {
			return
		}
	}
	d.UnknownDependencyIDs = append(d.UnknownDependencyIDs, id)
}

// taskIndex builds an id lookup over the input's tasks.
func (in *Input) taskIndex() map[int]model.Task {
	idx := make(map[int]model.Task, len(in.Tasks))
	for _, t := range in.Tasks {
		idx[t.ID] = t
	}
	return idx
}

// latestSnapshotAsOf returns the most recent snapshot for taskID dated on or
// before asOf, or nil when none exists.
func latestSnapshotAsOf(snapshots []model.ProgressSnapshot, taskID int, asOf time.Time) *model.ProgressSnapshot {
	cutoff := dateOnly(asOf)
	var latest *model.ProgressSnapshot
	for i := range snapshots {
		s := &snapshots[i]
		if s.TaskID != taskID {
			continue
		}
		day := dateOnly(s.SnapshotDate)
		if day.After(cutoff) {
			continue
		}
		if latest == nil || day.After(dateOnly(latest.SnapshotDate)) {
			latest = s
		}
	}
	return latest
}

// dateOnly truncates a timestamp to its calendar day in UTC.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
