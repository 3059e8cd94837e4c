package schedule

import (
	"time"

	"planboard/internal/model"
)

const (
	// completionEpsilon is the remaining-effort level below which a task (or
	// a whole project) counts as done. Floating-point subtraction of daily
	// capacity rarely lands on exactly zero.
	completionEpsilon = 0.01

	// completionBufferDays is the number of extra days kept on the timeline
	// past the detected completion day, as a short visual run-out.
	completionBufferDays = 5

	// DefaultMaxHorizonDays caps the simulated range so a starved plan (a
	// resource nobody pools, an unbreakable cycle) still terminates.
	DefaultMaxHorizonDays = 1095
)

// BurndownResult holds the day-indexed output of one simulation. All series
// share the Days axis, which starts at the project start date.
type BurndownResult struct {
	Days []time.Time `json:"days"`

	// Theoretical is the planned-estimate-only projection: every task seeded
	// from its original estimate and progress, simulated from project start,
	// ignoring snapshot history.
	Theoretical []float64 `json:"theoretical"`

	// ActualInformed is re-seeded from the latest snapshots and simulated
	// from today onward; entries before today are nil (no projection into
	// the past).
	ActualInformed []*float64 `json:"actual_informed"`

	// PerTask carries each task's remaining effort per day from the
	// actual-informed run, nil before today.
	PerTask map[int][]*float64 `json:"per_task"`

	// Scope carries, per task per day, the positive scope increase revealed
	// by the snapshot history as of that day.
	Scope map[int][]float64 `json:"scope"`

	// CompletionDayIndex is the first day index where the actual-informed
	// total dropped below the completion threshold, or -1 when the horizon
	// cap was reached first.
	CompletionDayIndex int `json:"completion_day_index"`

	// TheoreticalCompletionDayIndex is the same detection over the
	// theoretical run.
	TheoreticalCompletionDayIndex int `json:"theoretical_completion_day_index"`

	Diagnostics Diagnostics `json:"diagnostics"`
}

// SimulateBurndown runs the day-by-day resource-leveling simulation twice
// over a shared timeline: once on the original estimates and once re-seeded
// from the recorded progress. The timeline is extended until both runs
// complete (plus a short buffer) or maxHorizonDays is hit, whichever comes
// first. maxHorizonDays <= 0 selects DefaultMaxHorizonDays.
//
// The function is deterministic: identical inputs produce identical series.
func SimulateBurndown(in Input, maxHorizonDays int) BurndownResult {
	if maxHorizonDays <= 0 {
		maxHorizonDays = DefaultMaxHorizonDays
	}

	start := dateOnly(in.ProjectStart)
	if in.ProjectStart.IsZero() {
		start = dateOnly(in.Today)
	}
	todayIdx := calendarDaysBetween(start, dateOnly(in.Today))
	if todayIdx < 0 {
		todayIdx = 0
	}
	if todayIdx >= maxHorizonDays {
		todayIdx = maxHorizonDays - 1
	}

	var diags Diagnostics
	theoretical := newLevelState(&in, seedTheoretical, &diags)
	actual := newLevelState(&in, seedFromSnapshots, &diags)

	res := BurndownResult{
		PerTask:                       make(map[int][]*float64, len(in.Tasks)),
		Scope:                         make(map[int][]float64, len(in.Tasks)),
		CompletionDayIndex:            -1,
		TheoreticalCompletionDayIndex: -1,
	}

	for idx := 0; idx < maxHorizonDays; idx++ {
		day := start.AddDate(0, 0, idx)
		working := IsWorkingDay(day)

		if working {
			theoretical.step()
		}
		theoTotal := theoretical.total()
		if res.TheoreticalCompletionDayIndex < 0 && theoTotal <= completionEpsilon {
			res.TheoreticalCompletionDayIndex = idx
		}

		var actTotal *float64
		if idx >= todayIdx {
			if working {
				actual.step()
			}
			t := actual.total()
			actTotal = &t
			if res.CompletionDayIndex < 0 && t <= completionEpsilon {
				res.CompletionDayIndex = idx
			}
		}

		res.Days = append(res.Days, day)
		res.Theoretical = append(res.Theoretical, theoTotal)
		res.ActualInformed = append(res.ActualInformed, actTotal)
		for _, t := range in.Tasks {
			if actTotal == nil {
				res.PerTask[t.ID] = append(res.PerTask[t.ID], nil)
			} else {
				rem := actual.remaining[t.ID]
				res.PerTask[t.ID] = append(res.PerTask[t.ID], &rem)
			}
			res.Scope[t.ID] = append(res.Scope[t.ID], scopeAsOf(&in, t.ID, day))
		}

		if done, lastIdx := bothComplete(&res); done && idx >= lastIdx+completionBufferDays-1 {
			break
		}
	}

	res.Diagnostics = diags
	return res
}

func bothComplete(res *BurndownResult) (bool, int) {
	if res.CompletionDayIndex < 0 || res.TheoreticalCompletionDayIndex < 0 {
		return false, 0
	}
	last := res.CompletionDayIndex
	if res.TheoreticalCompletionDayIndex > last {
		last = res.TheoreticalCompletionDayIndex
	}
	return true, last
}

// scopeAsOf is the positive scope increase for a task given its latest
// snapshot on or before day: recorded remaining work beyond what the
// recorded progress percentage implies.
func scopeAsOf(in *Input, taskID int, day time.Time) float64 {
	snap := latestSnapshotAsOf(in.Snapshots, taskID, day)
	if snap == nil {
		return 0
	}
	theoretical := TotalEstimate(in.Assignments[taskID]) * (1 - snap.Progress/100)
	increase := snap.RemainingEstimate - theoretical
	if increase < 0 {
		return 0
	}
	return increase
}

// levelState is the mutable day-to-day state of one simulation run.
type levelState struct {
	in        *Input
	remaining map[int]float64
	completed map[int]bool
}

type seedMode int

const (
	seedTheoretical seedMode = iota
	seedFromSnapshots
)

func newLevelState(in *Input, mode seedMode, diags *Diagnostics) *levelState {
	s := &levelState{
		in:        in,
		remaining: make(map[int]float64, len(in.Tasks)),
		completed: make(map[int]bool, len(in.Tasks)),
	}
	for _, t := range in.Tasks {
		var rem float64
		switch mode {
		case seedTheoretical:
			rem = TotalEstimate(in.Assignments[t.ID]) * (1 - t.Progress/100)
		case seedFromSnapshots:
			snap := latestSnapshotAsOf(in.Snapshots, t.ID, in.Today)
			rem = CurrentRemaining(t, in.Assignments[t.ID], snap)
		}
		if rem < 0 {
			rem = 0
		}
		s.remaining[t.ID] = rem
		if rem <= completionEpsilon {
			s.completed[t.ID] = true
		}
	}
	// Drop dependency references to tasks that do not exist; a phantom
	// prerequisite would otherwise starve its dependents forever.
	for _, t := range in.Tasks {
		for _, dep := range in.Dependencies[t.ID] {
			if _, ok := s.remaining[dep]; !ok {
				diags.addUnknownDependency(dep)
			}
		}
	}
	return s
}

// step simulates one working day: resolve which tasks are workable, hand
// each resource pool's full daily capacity to the first workable task that
// needs it, then burn the assigned work down.
func (s *levelState) step() {
	workable := make(map[int]bool, len(s.in.Tasks))
	for _, t := range s.in.Tasks {
		if s.completed[t.ID] {
			continue
		}
		blocked := false
		for _, dep := range s.in.Dependencies[t.ID] {
			if _, known := s.remaining[dep]; !known {
				continue
			}
			if !s.completed[dep] {
				blocked = true
				break
			}
		}
		if !blocked {
			workable[t.ID] = true
		}
	}

	// Resource exclusivity: a pool's whole capacity goes to exactly one task
	// per day, chosen by original task ordering. Unneeded capacity is lost,
	// never carried over.
	assigned := make(map[int]float64)
	for _, pool := range s.in.ProjectAssignments {
		capacity := float64(pool.NumberOfResources) * pool.FocusFactor / 100
		if capacity <= 0 {
			continue
		}
		for _, t := range s.in.Tasks {
			if !workable[t.ID] || s.remaining[t.ID] <= 0 {
				continue
			}
			if !usesResource(s.in.Assignments[t.ID], pool.ResourceID) {
				continue
			}
			assigned[t.ID] += capacity
			break
		}
	}

	for _, t := range s.in.Tasks {
		work := assigned[t.ID]
		if work <= 0 {
			continue
		}
		rem := s.remaining[t.ID] - work
		if rem < 0 {
			rem = 0
		}
		s.remaining[t.ID] = rem
		if rem <= completionEpsilon {
			s.completed[t.ID] = true
		}
	}
}

func (s *levelState) total() float64 {
	total := 0.0
	for _, t := range s.in.Tasks {
		total += s.remaining[t.ID]
	}
	return total
}

func usesResource(assignments []model.ResourceAssignment, resourceID string) bool {
	for _, a := range assignments {
		if a.ResourceID == resourceID {
			return true
		}
	}
	return false
}

func calendarDaysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
