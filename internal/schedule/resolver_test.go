package schedule

import (
	"testing"
	"time"

	"planboard/internal/model"
)

func singleDev(taskID int, days float64) []model.ResourceAssignment {
	return []model.ResourceAssignment{
		{TaskID: taskID, ResourceID: "dev", EstimatedDays: days, NumberOfProfiles: 1, FocusFactor: 100},
	}
}

func TestResolveDependencyFreeExplicitStart(t *testing.T) {
	saturday := date(2025, time.June, 7)
	in := Input{
		Tasks:        []model.Task{{ID: 1, Title: "setup", StartDate: &saturday}},
		Assignments:  map[int][]model.ResourceAssignment{1: singleDev(1, 3)},
		ProjectStart: date(2025, time.June, 2),
		Today:        date(2025, time.June, 2),
	}
	dates, _ := ResolveDates(in)
	monday := date(2025, time.June, 9)
	if !dates[1].Start.Equal(monday) {
		t.Fatalf("start = %s, want weekend-skipped %s", dates[1].Start, monday)
	}
	if !dates[1].End.Equal(AddWorkingDays(monday, 3)) {
		t.Fatalf("end = %s, want start+3 working days", dates[1].End)
	}
}

func TestResolveDependencyFreeProjectStartFallback(t *testing.T) {
	in := Input{
		Tasks:        []model.Task{{ID: 1}},
		Assignments:  map[int][]model.ResourceAssignment{1: singleDev(1, 2)},
		ProjectStart: date(2025, time.June, 1), // Sunday
		Today:        date(2025, time.June, 4),
	}
	dates, _ := ResolveDates(in)
	if want := date(2025, time.June, 2); !dates[1].Start.Equal(want) {
		t.Fatalf("start = %s, want project start skipped to %s", dates[1].Start, want)
	}
}

func TestResolveDependentStartsAtPrerequisiteEnd(t *testing.T) {
	in := Input{
		Tasks: []model.Task{{ID: 1}, {ID: 2}},
		Dependencies: map[int][]int{
			2: {1},
		},
		Assignments: map[int][]model.ResourceAssignment{
			1: singleDev(1, 5),
			2: singleDev(2, 2),
		},
		ProjectStart: date(2025, time.June, 2),
		Today:        date(2025, time.June, 2),
	}
	dates, _ := ResolveDates(in)
	if !dates[2].Start.Equal(dates[1].End) {
		t.Fatalf("dependent start %s != prerequisite end %s", dates[2].Start, dates[1].End)
	}
}

func TestResolveDiamondSharedDependency(t *testing.T) {
	// 1 <- 2, 1 <- 3, {2,3} <- 4. The shared root must resolve to one
	// consistent window and 4 must start at the later branch end.
	in := Input{
		Tasks: []model.Task{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}},
		Dependencies: map[int][]int{
			2: {1},
			3: {1},
			4: {2, 3},
		},
		Assignments: map[int][]model.ResourceAssignment{
			1: singleDev(1, 2),
			2: singleDev(2, 7),
			3: singleDev(3, 3),
			4: singleDev(4, 1),
		},
		ProjectStart: date(2025, time.June, 2),
		Today:        date(2025, time.June, 2),
	}
	dates, diags := ResolveDates(in)
	if len(diags.CycleTaskIDs) != 0 {
		t.Fatalf("unexpected cycle diagnostics: %v", diags.CycleTaskIDs)
	}
	if !dates[2].Start.Equal(dates[1].End) || !dates[3].Start.Equal(dates[1].End) {
		t.Fatalf("branches do not share the root end date")
	}
	want := dates[2].End
	if dates[3].End.After(want) {
		want = dates[3].End
	}
	if !dates[4].Start.Equal(want) {
		t.Fatalf("diamond join start = %s, want max branch end %s", dates[4].Start, want)
	}
}

func TestResolveCycleDoesNotLoop(t *testing.T) {
	in := Input{
		Tasks: []model.Task{{ID: 1}, {ID: 2}},
		Dependencies: map[int][]int{
			1: {2},
			2: {1},
		},
		Assignments: map[int][]model.ResourceAssignment{
			1: singleDev(1, 2),
			2: singleDev(2, 2),
		},
		ProjectStart: date(2025, time.June, 2),
		Today:        date(2025, time.June, 2),
	}
	dates, diags := ResolveDates(in)
	if len(dates) != 2 {
		t.Fatalf("expected both tasks resolved despite cycle, got %d", len(dates))
	}
	if len(diags.CycleTaskIDs) == 0 {
		t.Fatalf("expected cycle diagnostics")
	}
	for id, dr := range dates {
		if dr.End.Before(dr.Start) {
			t.Fatalf("task %d has end %s before start %s", id, dr.End, dr.Start)
		}
	}
}

func TestResolveUnknownDependencyIgnored(t *testing.T) {
	in := Input{
		Tasks:        []model.Task{{ID: 1}},
		Dependencies: map[int][]int{1: {99}},
		Assignments:  map[int][]model.ResourceAssignment{1: singleDev(1, 2)},
		ProjectStart: date(2025, time.June, 2),
		Today:        date(2025, time.June, 2),
	}
	dates, diags := ResolveDates(in)
	if want := date(2025, time.June, 2); !dates[1].Start.Equal(want) {
		t.Fatalf("start = %s, want project-start fallback %s", dates[1].Start, want)
	}
	if len(diags.UnknownDependencyIDs) != 1 || diags.UnknownDependencyIDs[0] != 99 {
		t.Fatalf("unknown dependency diagnostics = %v", diags.UnknownDependencyIDs)
	}
}

func TestResolveInProgressTaskPulledToToday(t *testing.T) {
	in := Input{
		Tasks:       []model.Task{{ID: 1, Status: "in_progress", Progress: 40}},
		Assignments: map[int][]model.ResourceAssignment{1: singleDev(1, 10)},
		Snapshots: []model.ProgressSnapshot{
			{TaskID: 1, SnapshotDate: date(2025, time.June, 10), Progress: 40, RemainingEstimate: 6},
		},
		ProjectStart: date(2025, time.June, 2),
		Today:        date(2025, time.June, 11),
	}
	dates, _ := ResolveDates(in)
	if want := date(2025, time.June, 11); !dates[1].Start.Equal(want) {
		t.Fatalf("start = %s, want pulled up to today %s", dates[1].Start, want)
	}
	// Snapshot-informed duration: ceil(6/1.0) = 6 working days.
	if want := AddWorkingDays(date(2025, time.June, 11), 6); !dates[1].End.Equal(want) {
		t.Fatalf("end = %s, want %s", dates[1].End, want)
	}
}

func TestResolveEndNeverBeforeStart(t *testing.T) {
	in := Input{
		Tasks: []model.Task{{ID: 1}, {ID: 2}, {ID: 3}},
		Dependencies: map[int][]int{
			3: {1, 2},
		},
		Assignments: map[int][]model.ResourceAssignment{
			1: singleDev(1, 1),
			2: singleDev(2, 4),
			3: {},
		},
		ProjectStart: date(2025, time.June, 2),
		Today:        date(2025, time.June, 2),
	}
	dates, _ := ResolveDates(in)
	for id, dr := range dates {
		if dr.End.Before(dr.Start) {
			t.Fatalf("task %d: end %s before start %s", id, dr.End, dr.Start)
		}
	}
}
