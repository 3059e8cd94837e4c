package schedule

import (
	"time"

	"planboard/internal/model"
)

// DateRange is a task's resolved calendar window. End is always a working
// day on or after Start.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// ResolveDates computes the {start, end} window of every task in the input
// by walking the dependency graph in post-order.
//
// Dependency-free tasks start at their explicit start date, the project
// start, or today, whichever applies first, each skipped to the next
// weekday. Dependent tasks start at the latest end date of their
// prerequisites. A task whose latest snapshot shows work underway can never
// be scheduled to start after today has already passed it, so its start is
// pulled up to today.
//
// The memo table lives on the resolver instance created for this one call;
// concurrent resolutions over different inputs never share state.
func ResolveDates(in Input) (map[int]DateRange, Diagnostics) {
	r := &resolver{
		in:       &in,
		tasks:    in.taskIndex(),
		resolved: make(map[int]DateRange, len(in.Tasks)),
		visiting: make(map[int]bool),
	}
	for _, t := range in.Tasks {
		r.resolve(t.ID)
	}
	return r.resolved, r.diags
}

type resolver struct {
	in       *Input
	tasks    map[int]model.Task
	resolved map[int]DateRange
	visiting map[int]bool
	diags    Diagnostics
}

// resolve returns the task's window, computing and memoizing it on first
// request. The boolean is false when the edge that led here must be treated
// as non-constraining: a back-edge into the recursion stack (cycle) or a
// reference to a task that does not exist.
func (r *resolver) resolve(id int) (DateRange, bool) {
	if dr, ok := r.resolved[id]; ok {
		return dr, true
	}
	if r.visiting[id] {
		// Back-edge: recursing further would never terminate. The edge is
		// dropped and the cycle reported through diagnostics.
		r.diags.addCycle(id)
		return DateRange{}, false
	}
	task, ok := r.tasks[id]
	if !ok {
		r.diags.addUnknownDependency(id)
		return DateRange{}, false
	}

	r.visiting[id] = true
	defer delete(r.visiting, id)

	var start time.Time
	for _, dep := range r.in.Dependencies[id] {
		dr, constrained := r.resolve(dep)
		if !constrained {
			continue
		}
		if dr.End.After(start) {
			start = dr.End
		}
	}
	if start.IsZero() {
		// No (usable) dependencies: fall back through explicit start,
		// project start, today.
		switch {
		case task.StartDate != nil:
			start = SkipToNextWeekday(dateOnly(*task.StartDate))
		case !r.in.ProjectStart.IsZero():
			start = SkipToNextWeekday(dateOnly(r.in.ProjectStart))
		default:
			start = SkipToNextWeekday(dateOnly(r.in.Today))
		}
	}

	snap := latestSnapshotAsOf(r.in.Snapshots, id, r.in.Today)
	if snap != nil && snap.Progress > 0 && snap.RemainingEstimate > completionEpsilon {
		today := SkipToNextWeekday(dateOnly(r.in.Today))
		if today.After(start) {
			start = today
		}
	}

	duration := TaskDuration(r.in.Assignments[id], r.in.ProjectAssignments, snap)
	dr := DateRange{Start: start, End: AddWorkingDays(start, duration)}
	r.resolved[id] = dr
	return dr, true
}
