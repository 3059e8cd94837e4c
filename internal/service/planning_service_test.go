package service

import (
	"encoding/json"
	"testing"
	"time"

	"planboard/internal/model"
)

func TestVelocityWindowPrefersRequestValue(t *testing.T) {
	if got := velocityWindow(7, 30); got != 7 {
		t.Fatalf("expected request window 7 to win, got %d", got)
	}
}

func TestVelocityWindowFallsBackToConfigured(t *testing.T) {
	if got := velocityWindow(0, 30); got != 30 {
		t.Fatalf("expected configured window 30, got %d", got)
	}
	if got := velocityWindow(-5, 30); got != 30 {
		t.Fatalf("expected configured window for negative request, got %d", got)
	}
}

func TestVelocityWindowUnsetEverywhere(t *testing.T) {
	// Zero flows through so ComputeVelocity applies its own default.
	if got := velocityWindow(0, 0); got != 0 {
		t.Fatalf("expected 0 when nothing is configured, got %d", got)
	}
}

func TestScheduleViewCarriesMilestones(t *testing.T) {
	view := ScheduleView{
		ProjectID: 3,
		Entries:   []ScheduleEntry{},
		Milestones: []model.Milestone{
			{
				ID:        1,
				ProjectID: 3,
				Title:     "Beta freeze",
				Date:      time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC),
				Icon:      "flag",
				Color:     "#ff0000",
			},
		},
	}

	payload, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded struct {
		Milestones []model.Milestone `json:"milestones"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(decoded.Milestones) != 1 || decoded.Milestones[0].Title != "Beta freeze" {
		t.Fatalf("expected milestone to round-trip, got %+v", decoded.Milestones)
	}
}
