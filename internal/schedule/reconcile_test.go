package schedule

import (
	"math"
	"testing"
	"time"

	"planboard/internal/model"
)

func TestReconcileScopeIncrease(t *testing.T) {
	assignments := singleDev(1, 10)
	snap := model.ProgressSnapshot{Progress: 50, RemainingEstimate: 8}
	rec := ReconcileScope(assignments, snap)
	if rec.TheoreticalRemaining != 5 {
		t.Fatalf("theoretical remaining = %v, want 5", rec.TheoreticalRemaining)
	}
	if rec.ScopeIncrease != 3 {
		t.Fatalf("scope increase = %v, want 3", rec.ScopeIncrease)
	}
}

func TestReconcileScopeNegative(t *testing.T) {
	assignments := singleDev(1, 10)
	snap := model.ProgressSnapshot{Progress: 50, RemainingEstimate: 4}
	rec := ReconcileScope(assignments, snap)
	if rec.ScopeIncrease != -1 {
		t.Fatalf("scope increase = %v, want -1 (running ahead)", rec.ScopeIncrease)
	}
}

func TestClassifyVarianceBands(t *testing.T) {
	cases := []struct {
		name      string
		remaining float64
		want      string
		wantPct   float64
	}{
		{"on track", 5.5, VarianceOnTrack, 5},
		{"boundary on track", 6, VarianceOnTrack, 10},
		{"scope creep", 7, VarianceScopeCreep, 20},
		{"major issues", 8, VarianceMajorIssues, 30},
		{"ahead but within band", 4.5, VarianceOnTrack, -5},
		{"far ahead is creep too", 3.5, VarianceScopeCreep, -15},
		{"far ahead is major", 2, VarianceMajorIssues, -30},
	}
	for _, c := range cases {
		// Original estimate 10, progress 50 implies 5 remaining.
		rep := ClassifyVariance(10, c.remaining, 50)
		if rep.Status != c.want {
			t.Fatalf("%s: status = %s, want %s", c.name, rep.Status, c.want)
		}
		if math.Abs(rep.VariancePercentage-c.wantPct) > 1e-9 {
			t.Fatalf("%s: percentage = %v, want %v", c.name, rep.VariancePercentage, c.wantPct)
		}
	}
}

func TestClassifyVarianceZeroEstimate(t *testing.T) {
	rep := ClassifyVariance(0, 3, 0)
	if rep.Variance != 3 {
		t.Fatalf("variance = %v, want 3", rep.Variance)
	}
	if rep.VariancePercentage != 0 || rep.Status != VarianceOnTrack {
		t.Fatalf("zero estimate must not divide: pct=%v status=%s", rep.VariancePercentage, rep.Status)
	}
}

func TestScopeExtendedEnd(t *testing.T) {
	r := DateRange{
		Start: date(2025, time.June, 2),
		End:   date(2025, time.June, 6), // Friday
	}
	got := ScopeExtendedEnd(r, 2.3)
	// ceil(2.3) = 3 working days past Friday: Wednesday.
	if want := date(2025, time.June, 11); !got.Equal(want) {
		t.Fatalf("extended end = %s, want %s", got, want)
	}
	if got := ScopeExtendedEnd(r, -1); !got.Equal(r.End) {
		t.Fatalf("negative scope moved the end date to %s", got)
	}
}
