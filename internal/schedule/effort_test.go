package schedule

import (
	"testing"

	"planboard/internal/model"
)

func TestTaskDurationSingleProfile(t *testing.T) {
	// 10 person-days at one profile and 80% focus: ceil(10/0.8) = 13.
	assignments := []model.ResourceAssignment{
		{ResourceID: "dev", EstimatedDays: 10, NumberOfProfiles: 1, FocusFactor: 80},
	}
	if got := TaskDuration(assignments, nil, nil); got != 13 {
		t.Fatalf("duration = %d, want 13", got)
	}
}

func TestTaskDurationParallelProfiles(t *testing.T) {
	// 20 person-days across two profiles at 80% focus: ceil(20/1.6) = 13.
	assignments := []model.ResourceAssignment{
		{ResourceID: "dev", EstimatedDays: 20, NumberOfProfiles: 2, FocusFactor: 80},
	}
	if got := TaskDuration(assignments, nil, nil); got != 13 {
		t.Fatalf("duration = %d, want 13", got)
	}
}

func TestTaskDurationGatedBySlowestResource(t *testing.T) {
	assignments := []model.ResourceAssignment{
		{ResourceID: "dev", EstimatedDays: 4, NumberOfProfiles: 1, FocusFactor: 100},
		{ResourceID: "qa", EstimatedDays: 9, NumberOfProfiles: 1, FocusFactor: 100},
	}
	if got := TaskDuration(assignments, nil, nil); got != 9 {
		t.Fatalf("duration = %d, want 9 (gated by qa)", got)
	}
}

func TestTaskDurationNoAssignments(t *testing.T) {
	if got := TaskDuration(nil, nil, nil); got != 1 {
		t.Fatalf("duration = %d, want 1", got)
	}
}

func TestTaskDurationFocusFallback(t *testing.T) {
	project := []model.ProjectResourceAssignment{
		{ResourceID: "dev", NumberOfResources: 3, FocusFactor: 50},
	}
	assignments := []model.ResourceAssignment{
		{ResourceID: "dev", EstimatedDays: 5, NumberOfProfiles: 1, FocusFactor: 0},
	}
	// Task-level focus is unset, project-level 50% applies: ceil(5/0.5) = 10.
	if got := TaskDuration(assignments, project, nil); got != 10 {
		t.Fatalf("duration = %d, want 10 via project focus", got)
	}

	// Neither level set: default 100% applies, never a division by zero.
	if got := TaskDuration(assignments, nil, nil); got != 5 {
		t.Fatalf("duration = %d, want 5 via default focus", got)
	}
}

func TestTaskDurationSnapshotInformed(t *testing.T) {
	assignments := []model.ResourceAssignment{
		{ResourceID: "dev", EstimatedDays: 20, NumberOfProfiles: 2, FocusFactor: 80},
	}
	snap := &model.ProgressSnapshot{Progress: 40, RemainingEstimate: 8}
	// Throughput 2*0.8 = 1.6, so ceil(8/1.6) = 5.
	if got := TaskDuration(assignments, nil, snap); got != 5 {
		t.Fatalf("duration = %d, want 5", got)
	}
}

func TestTaskDurationSnapshotZeroThroughput(t *testing.T) {
	snap := &model.ProgressSnapshot{Progress: 30, RemainingEstimate: 6.5}
	// No assignments means no throughput; the remaining estimate itself is
	// the duration.
	if got := TaskDuration(nil, nil, snap); got != 7 {
		t.Fatalf("duration = %d, want 7", got)
	}
}

func TestTaskDurationIgnoresUnusableSnapshot(t *testing.T) {
	assignments := []model.ResourceAssignment{
		{ResourceID: "dev", EstimatedDays: 10, NumberOfProfiles: 1, FocusFactor: 100},
	}
	// Progress zero: the snapshot carries no throughput information yet.
	snap := &model.ProgressSnapshot{Progress: 0, RemainingEstimate: 10}
	if got := TaskDuration(assignments, nil, snap); got != 10 {
		t.Fatalf("duration = %d, want 10 from estimates", got)
	}
}

func TestCurrentRemaining(t *testing.T) {
	task := model.Task{Progress: 25}
	assignments := []model.ResourceAssignment{
		{ResourceID: "dev", EstimatedDays: 8, NumberOfProfiles: 1, FocusFactor: 100},
	}
	if got := CurrentRemaining(task, assignments, nil); got != 6 {
		t.Fatalf("progress-derived remaining = %v, want 6", got)
	}
	snap := &model.ProgressSnapshot{RemainingEstimate: 3.5}
	if got := CurrentRemaining(task, assignments, snap); got != 3.5 {
		t.Fatalf("snapshot remaining = %v, want 3.5", got)
	}
	negative := &model.ProgressSnapshot{RemainingEstimate: -2}
	if got := CurrentRemaining(task, assignments, negative); got != 0 {
		t.Fatalf("negative snapshot remaining = %v, want 0", got)
	}
}
