package schedule

import (
	"math"
	"time"

	"planboard/internal/model"
)

// Variance classification bands, in percent of the original estimate. Both
// directions count: finishing dramatically faster than the recorded progress
// implies is a deviation that needs explaining, not silently "good".
const (
	onTrackBandPct    = 10.0
	scopeCreepBandPct = 25.0
)

const (
	VarianceOnTrack     = "on_track"
	VarianceScopeCreep  = "scope_creep"
	VarianceMajorIssues = "major_issues"
)

// ScopeReconciliation compares a snapshot's recorded remaining work against
// what its recorded progress percentage implies.
type ScopeReconciliation struct {
	// ScopeIncrease is positive when extra scope was discovered: remaining
	// work beyond the progress-implied amount.
	ScopeIncrease        float64 `json:"scope_increase"`
	TheoreticalRemaining float64 `json:"theoretical_remaining"`
}

// ReconcileScope computes the scope drift a single snapshot reveals for a
// task.
func ReconcileScope(assignments []model.ResourceAssignment, snap model.ProgressSnapshot) ScopeReconciliation {
	theoretical := TotalEstimate(assignments) * (1 - snap.Progress/100)
	return ScopeReconciliation{
		ScopeIncrease:        snap.RemainingEstimate - theoretical,
		TheoreticalRemaining: theoretical,
	}
}

// ScopeExtendedEnd pushes a resolved end date out by the whole working days
// of discovered scope. Non-positive scope leaves the end date unchanged.
func ScopeExtendedEnd(r DateRange, scopeIncrease float64) time.Time {
	if scopeIncrease <= 0 {
		return r.End
	}
	return AddWorkingDays(r.End, int(math.Ceil(scopeIncrease)))
}

// VarianceReport classifies how far a task has drifted from its original
// estimate.
type VarianceReport struct {
	Variance           float64 `json:"variance"`
	VariancePercentage float64 `json:"variance_percentage"`
	Status             string  `json:"status"`
}

// ClassifyVariance compares the current remaining effort against the
// remaining effort the progress percentage implies, as a share of the
// original estimate. Bands are symmetric around zero.
func ClassifyVariance(originalEstimate, currentRemaining, progress float64) VarianceReport {
	theoretical := originalEstimate * (1 - progress/100)
	variance := currentRemaining - theoretical

	pct := 0.0
	if originalEstimate > 0 {
		pct = variance / originalEstimate * 100
	}

	status := VarianceOnTrack
	switch abs := math.Abs(pct); {
	case abs <= onTrackBandPct:
		status = VarianceOnTrack
	case abs <= scopeCreepBandPct:
		status = VarianceScopeCreep
	default:
		status = VarianceMajorIssues
	}

	return VarianceReport{
		Variance:           variance,
		VariancePercentage: pct,
		Status:             status,
	}
}
