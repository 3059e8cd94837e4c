package schedule

import (
	"reflect"
	"testing"
	"time"

	"planboard/internal/model"
)

func devPool(n int, focus float64) []model.ProjectResourceAssignment {
	return []model.ProjectResourceAssignment{
		{ResourceID: "dev", NumberOfResources: n, FocusFactor: focus},
	}
}

func TestSimulateResourceExclusivity(t *testing.T) {
	// Two tasks compete for one dev at full focus. The whole 1.0 capacity
	// must land on the first task in project order, never split.
	in := Input{
		Tasks: []model.Task{{ID: 1}, {ID: 2}},
		Assignments: map[int][]model.ResourceAssignment{
			1: singleDev(1, 5),
			2: singleDev(2, 3),
		},
		ProjectAssignments: devPool(1, 100),
		ProjectStart:       date(2025, time.June, 2), // Monday
		Today:              date(2025, time.June, 2),
	}
	res := SimulateBurndown(in, 0)

	first := res.PerTask[1][0]
	second := res.PerTask[2][0]
	if first == nil || second == nil {
		t.Fatalf("expected simulated values on day 0")
	}
	if *first != 4 || *second != 3 {
		t.Fatalf("day 0 remaining = [%v, %v], want [4, 3]", *first, *second)
	}
	if res.Theoretical[0] != 7 {
		t.Fatalf("day 0 total = %v, want 7", res.Theoretical[0])
	}
}

func TestSimulateCapacityNeverSplitAcrossDays(t *testing.T) {
	in := Input{
		Tasks: []model.Task{{ID: 1}, {ID: 2}},
		Assignments: map[int][]model.ResourceAssignment{
			1: singleDev(1, 5),
			2: singleDev(2, 3),
		},
		ProjectAssignments: devPool(1, 100),
		ProjectStart:       date(2025, time.June, 2),
		Today:              date(2025, time.June, 2),
	}
	res := SimulateBurndown(in, 0)

	// On every working day before task 1 completes, task 2 must not move.
	prev := 3.0
	for idx, day := range res.Days {
		if !IsWorkingDay(day) {
			continue
		}
		one := res.PerTask[1][idx]
		two := res.PerTask[2][idx]
		if one == nil || two == nil {
			t.Fatalf("missing values at index %d", idx)
		}
		if *one > completionEpsilon && *two != prev {
			t.Fatalf("index %d: task 2 moved to %v while task 1 still at %v", idx, *two, *one)
		}
		prev = *two
	}
}

func TestSimulateWeekendFreeze(t *testing.T) {
	in := Input{
		Tasks:              []model.Task{{ID: 1}},
		Assignments:        map[int][]model.ResourceAssignment{1: singleDev(1, 10)},
		ProjectAssignments: devPool(1, 100),
		ProjectStart:       date(2025, time.June, 2), // Monday
		Today:              date(2025, time.June, 2),
	}
	res := SimulateBurndown(in, 0)
	// Indices 5 and 6 are the first Saturday and Sunday.
	if res.Theoretical[5] != res.Theoretical[4] || res.Theoretical[6] != res.Theoretical[4] {
		t.Fatalf("weekend changed remaining: %v %v vs Friday %v",
			res.Theoretical[5], res.Theoretical[6], res.Theoretical[4])
	}
}

func TestSimulateCompletionAndTrim(t *testing.T) {
	// 10 person-days at 1.0/day from Monday: five weekdays, a weekend, five
	// more weekdays. Remaining hits zero on day index 11.
	in := Input{
		Tasks:              []model.Task{{ID: 1}},
		Assignments:        map[int][]model.ResourceAssignment{1: singleDev(1, 10)},
		ProjectAssignments: devPool(1, 100),
		ProjectStart:       date(2025, time.June, 2),
		Today:              date(2025, time.June, 2),
	}
	res := SimulateBurndown(in, 0)
	if res.CompletionDayIndex != 11 {
		t.Fatalf("completion index = %d, want 11", res.CompletionDayIndex)
	}
	if want := res.CompletionDayIndex + completionBufferDays; len(res.Days) != want {
		t.Fatalf("trimmed length = %d, want %d", len(res.Days), want)
	}
	for _, series := range [][]float64{res.Theoretical} {
		if len(series) != len(res.Days) {
			t.Fatalf("series length %d != day axis %d", len(series), len(res.Days))
		}
	}
}

func TestSimulateDeterminism(t *testing.T) {
	in := Input{
		Tasks: []model.Task{{ID: 3, Progress: 20}, {ID: 1}, {ID: 2}},
		Dependencies: map[int][]int{
			2: {3},
		},
		Assignments: map[int][]model.ResourceAssignment{
			1: singleDev(1, 4),
			2: singleDev(2, 6),
			3: {
				{TaskID: 3, ResourceID: "dev", EstimatedDays: 5, NumberOfProfiles: 1, FocusFactor: 80},
				{TaskID: 3, ResourceID: "qa", EstimatedDays: 2, NumberOfProfiles: 1, FocusFactor: 100},
			},
		},
		ProjectAssignments: []model.ProjectResourceAssignment{
			{ResourceID: "dev", NumberOfResources: 1, FocusFactor: 100},
			{ResourceID: "qa", NumberOfResources: 1, FocusFactor: 50},
		},
		Snapshots: []model.ProgressSnapshot{
			{TaskID: 3, SnapshotDate: date(2025, time.June, 3), Progress: 20, RemainingEstimate: 6},
		},
		ProjectStart: date(2025, time.June, 2),
		Today:        date(2025, time.June, 4),
	}
	a := SimulateBurndown(in, 0)
	b := SimulateBurndown(in, 0)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("identical inputs produced different series")
	}
}

func TestSimulateDependencyGating(t *testing.T) {
	in := Input{
		Tasks: []model.Task{{ID: 1}, {ID: 2}},
		Dependencies: map[int][]int{
			2: {1},
		},
		Assignments: map[int][]model.ResourceAssignment{
			1: singleDev(1, 2),
			2: singleDev(2, 2),
		},
		ProjectAssignments: devPool(1, 100),
		ProjectStart:       date(2025, time.June, 2),
		Today:              date(2025, time.June, 2),
	}
	res := SimulateBurndown(in, 0)
	// Task 2 cannot move until task 1 completes on index 1.
	if v := res.PerTask[2][1]; v == nil || *v != 2 {
		t.Fatalf("task 2 moved while blocked: %v", v)
	}
	if v := res.PerTask[2][2]; v == nil || *v != 1 {
		t.Fatalf("task 2 did not start after unblock: %v", v)
	}
	if res.CompletionDayIndex != 3 {
		t.Fatalf("completion index = %d, want 3", res.CompletionDayIndex)
	}
}

func TestSimulateActualInformedSeries(t *testing.T) {
	// Today is Wednesday, two days into the project. The actual-informed
	// series must be nil before today and re-seeded from the snapshot.
	in := Input{
		Tasks:              []model.Task{{ID: 1}},
		Assignments:        map[int][]model.ResourceAssignment{1: singleDev(1, 10)},
		ProjectAssignments: devPool(1, 100),
		Snapshots: []model.ProgressSnapshot{
			{TaskID: 1, SnapshotDate: date(2025, time.June, 3), Progress: 80, RemainingEstimate: 2},
		},
		ProjectStart: date(2025, time.June, 2),
		Today:        date(2025, time.June, 4),
	}
	res := SimulateBurndown(in, 0)
	if res.ActualInformed[0] != nil || res.ActualInformed[1] != nil {
		t.Fatalf("expected nil projection before today")
	}
	if v := res.ActualInformed[2]; v == nil || *v != 1 {
		t.Fatalf("today's actual-informed total = %v, want 1 after one day of burn", v)
	}
	if res.CompletionDayIndex != 3 {
		t.Fatalf("actual completion index = %d, want 3", res.CompletionDayIndex)
	}
	// The theoretical run ignores the snapshot entirely.
	if res.TheoreticalCompletionDayIndex != 11 {
		t.Fatalf("theoretical completion index = %d, want 11", res.TheoreticalCompletionDayIndex)
	}
}

func TestSimulateScopeSeries(t *testing.T) {
	in := Input{
		Tasks:              []model.Task{{ID: 1}},
		Assignments:        map[int][]model.ResourceAssignment{1: singleDev(1, 10)},
		ProjectAssignments: devPool(1, 100),
		Snapshots: []model.ProgressSnapshot{
			// Progress says 5 should remain but 8 were recorded: 3 days of
			// discovered scope.
			{TaskID: 1, SnapshotDate: date(2025, time.June, 3), Progress: 50, RemainingEstimate: 8},
		},
		ProjectStart: date(2025, time.June, 2),
		Today:        date(2025, time.June, 4),
	}
	res := SimulateBurndown(in, 0)
	if res.Scope[1][0] != 0 {
		t.Fatalf("scope before first snapshot = %v, want 0", res.Scope[1][0])
	}
	if res.Scope[1][1] != 3 {
		t.Fatalf("scope on snapshot day = %v, want 3", res.Scope[1][1])
	}
}

func TestSimulateEmptyInput(t *testing.T) {
	res := SimulateBurndown(Input{
		ProjectStart: date(2025, time.June, 2),
		Today:        date(2025, time.June, 2),
	}, 0)
	if res.CompletionDayIndex != 0 {
		t.Fatalf("empty project completion index = %d, want 0", res.CompletionDayIndex)
	}
	if len(res.Days) != completionBufferDays {
		t.Fatalf("empty project series length = %d, want %d", len(res.Days), completionBufferDays)
	}
}

func TestSimulateStarvedPlanHitsHorizonCap(t *testing.T) {
	// The task needs a resource nobody pools; the run must still terminate.
	in := Input{
		Tasks:              []model.Task{{ID: 1}},
		Assignments:        map[int][]model.ResourceAssignment{1: singleDev(1, 5)},
		ProjectAssignments: []model.ProjectResourceAssignment{{ResourceID: "qa", NumberOfResources: 1, FocusFactor: 100}},
		ProjectStart:       date(2025, time.June, 2),
		Today:              date(2025, time.June, 2),
	}
	res := SimulateBurndown(in, 30)
	if res.CompletionDayIndex != -1 {
		t.Fatalf("starved plan reported completion %d", res.CompletionDayIndex)
	}
	if len(res.Days) != 30 {
		t.Fatalf("capped length = %d, want 30", len(res.Days))
	}
}
