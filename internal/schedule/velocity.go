package schedule

import (
	"sort"
	"time"

	"planboard/internal/model"
)

const (
	// DefaultVelocityWindowDays is the trailing window over which recent
	// velocity is averaged.
	DefaultVelocityWindowDays = 15

	// DefaultTrendTolerance is the band around planned velocity within which
	// the trend counts as stable (fraction, 0.10 = ±10%).
	DefaultTrendTolerance = 0.10
)

const (
	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendDeclining = "declining"
)

// VelocityReport compares the actually observed burn rate against the
// project's theoretical daily maximum.
type VelocityReport struct {
	PlannedVelocity float64 `json:"planned_velocity"`
	RecentVelocity  float64 `json:"recent_velocity"`
	Trend           string  `json:"trend"`
}

// PlannedVelocity is the maximum theoretical daily burn in person-days per
// day: every pooled resource working at its focus factor.
func PlannedVelocity(projectAssignments []model.ProjectResourceAssignment) float64 {
	total := 0.0
	for _, p := range projectAssignments {
		total += float64(p.NumberOfResources) * p.FocusFactor / 100
	}
	return total
}

// ComputeVelocity derives the recent burn rate from consecutive snapshot
// pairs inside a trailing window ending at the latest snapshot date. For
// each same-task pair lying wholly inside the window, the burn is the drop
// in remaining estimate (scope growth shows up as negative burn); the summed
// burn is divided by the calendar span the considered snapshots cover.
//
// windowDays <= 0 selects DefaultVelocityWindowDays, tolerance <= 0 selects
// DefaultTrendTolerance. With fewer than two usable snapshots the trend is
// reported stable: there is no evidence of a deviation either way.
func ComputeVelocity(snapshots []model.ProgressSnapshot, windowDays int, planned float64, tolerance float64) VelocityReport {
	if windowDays <= 0 {
		windowDays = DefaultVelocityWindowDays
	}
	if tolerance <= 0 {
		tolerance = DefaultTrendTolerance
	}

	report := VelocityReport{PlannedVelocity: planned, Trend: TrendStable}
	if len(snapshots) == 0 {
		return report
	}

	var windowEnd time.Time
	for _, s := range snapshots {
		if day := dateOnly(s.SnapshotDate); day.After(windowEnd) {
			windowEnd = day
		}
	}
	cutoff := windowEnd.AddDate(0, 0, -windowDays)

	perTask := make(map[int][]model.ProgressSnapshot)
	taskOrder := make([]int, 0)
	for _, s := range snapshots {
		if _, seen := perTask[s.TaskID]; !seen {
			taskOrder = append(taskOrder, s.TaskID)
		}
		perTask[s.TaskID] = append(perTask[s.TaskID], s)
	}
	sort.Ints(taskOrder)

	burn := 0.0
	pairs := 0
	var spanStart, spanEnd time.Time
	for _, taskID := range taskOrder {
		series := perTask[taskID]
		sort.Slice(series, func(i, j int) bool {
			return series[i].SnapshotDate.Before(series[j].SnapshotDate)
		})
		for i := 1; i < len(series); i++ {
			prev, curr := series[i-1], series[i]
			prevDay := dateOnly(prev.SnapshotDate)
			currDay := dateOnly(curr.SnapshotDate)
			// Only pairs lying wholly inside the window count; a pair
			// straddling the cutoff would smear months-old burn into the
			// recent average.
			if prevDay.Before(cutoff) {
				continue
			}
			burn += prev.RemainingEstimate - curr.RemainingEstimate
			pairs++
			if spanStart.IsZero() || prevDay.Before(spanStart) {
				spanStart = prevDay
			}
			if currDay.After(spanEnd) {
				spanEnd = currDay
			}
		}
	}

	if pairs == 0 {
		return report
	}
	elapsed := calendarDaysBetween(spanStart, spanEnd)
	if elapsed <= 0 {
		return report
	}
	report.RecentVelocity = burn / float64(elapsed)

	if planned > 0 {
		switch ratio := report.RecentVelocity / planned; {
		case ratio >= 1+tolerance:
			report.Trend = TrendImproving
		case ratio <= 1-tolerance:
			report.Trend = TrendDeclining
		default:
			report.Trend = TrendStable
		}
	}
	return report
}
