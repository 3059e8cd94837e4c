package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"planboard/internal/model"
	"planboard/internal/repository"
	"planboard/internal/schedule"
	"planboard/pkg/circuitbreaker"
	"planboard/pkg/metrics"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrProjectNotFound is returned when the requested project does not exist.
var ErrProjectNotFound = errors.New("project not found")

// ScheduleEntry is one task's resolved plan window.
type ScheduleEntry struct {
	TaskID           int        `json:"task_id"`
	Title            string     `json:"title"`
	Start            time.Time  `json:"start"`
	End              time.Time  `json:"end"`
	ScopeAdjustedEnd *time.Time `json:"scope_adjusted_end,omitempty"`
}

// ScheduleView is the full resolved schedule for a project. Milestones are
// carried through untouched so clients can render them on the same timeline.
type ScheduleView struct {
	ProjectID   int                  `json:"project_id"`
	Entries     []ScheduleEntry      `json:"entries"`
	Milestones  []model.Milestone    `json:"milestones"`
	Diagnostics schedule.Diagnostics `json:"diagnostics"`
}

// TaskVariance pairs a task with its estimate-drift classification.
type TaskVariance struct {
	TaskID   int                     `json:"task_id"`
	Title    string                  `json:"title"`
	Variance schedule.VarianceReport `json:"variance"`
}

// PlanningService loads a project's plan data and runs the scheduling
// computations over it. Burndown projections are cached in Redis because
// they are the most expensive call and are read on every board refresh.
type PlanningService struct {
	projects    *repository.ProjectRepository
	tasks       *repository.TaskRepository
	assignments *repository.AssignmentRepository
	snapshots   *repository.SnapshotRepository
	milestones  *repository.MilestoneRepository
	cache       *redis.Client
	breaker     *circuitbreaker.CircuitBreaker
	logger      *zap.Logger

	cacheTTL           time.Duration
	maxHorizonDays     int
	velocityWindowDays int
	trendTolerance     float64
}

func NewPlanningService(
	projects *repository.ProjectRepository,
	tasks *repository.TaskRepository,
	assignments *repository.AssignmentRepository,
	snapshots *repository.SnapshotRepository,
	milestones *repository.MilestoneRepository,
	cache *redis.Client,
	logger *zap.Logger,
) *PlanningService {
	return &PlanningService{
		projects:    projects,
		tasks:       tasks,
		assignments: assignments,
		snapshots:   snapshots,
		milestones:  milestones,
		cache:       cache,
		breaker:     circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig()),
		logger:      logger,
		cacheTTL:    5 * time.Minute,
	}
}

// WithForecastSettings overrides the simulation and velocity tuning.
func (s *PlanningService) WithForecastSettings(maxHorizonDays, velocityWindowDays, cacheTTLSeconds int, trendTolerance float64) *PlanningService {
	s.maxHorizonDays = maxHorizonDays
	s.velocityWindowDays = velocityWindowDays
	s.trendTolerance = trendTolerance
	if cacheTTLSeconds > 0 {
		s.cacheTTL = time.Duration(cacheTTLSeconds) * time.Second
	}
	return s
}

// buildInput assembles the scheduling input for a project from the database.
func (s *PlanningService) buildInput(ctx context.Context, projectID int) (schedule.Input, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return schedule.Input{}, err
	}
	if project == nil {
		return schedule.Input{}, ErrProjectNotFound
	}

	tasks, err := s.tasks.ListByProject(ctx, projectID)
	if err != nil {
		return schedule.Input{}, err
	}
	deps, err := s.tasks.Dependencies(ctx, projectID)
	if err != nil {
		return schedule.Input{}, err
	}
	taskAssignments, err := s.assignments.ListTaskAssignments(ctx, projectID)
	if err != nil {
		return schedule.Input{}, err
	}
	projectAssignments, err := s.assignments.ListProjectAssignments(ctx, projectID)
	if err != nil {
		return schedule.Input{}, err
	}
	snapshots, err := s.snapshots.ListByProject(ctx, projectID)
	if err != nil {
		return schedule.Input{}, err
	}

	return schedule.Input{
		Tasks:              tasks,
		Dependencies:       deps,
		Assignments:        taskAssignments,
		ProjectAssignments: projectAssignments,
		Snapshots:          snapshots,
		ProjectStart:       project.StartDate,
		Today:              time.Now().UTC(),
	}, nil
}

// Schedule resolves every task's plan window, extending ends where the
// latest snapshot revealed extra scope.
func (s *PlanningService) Schedule(ctx context.Context, projectID int) (*ScheduleView, error) {
	in, err := s.buildInput(ctx, projectID)
	if err != nil {
		return nil, err
	}

	milestones, err := s.milestones.ListByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	ranges, diags := schedule.ResolveDates(in)
	metrics.ObserveSimulation("schedule", time.Since(started))

	view := &ScheduleView{
		ProjectID:   projectID,
		Entries:     make([]ScheduleEntry, 0, len(in.Tasks)),
		Milestones:  milestones,
		Diagnostics: diags,
	}

	for _, t := range in.Tasks {
		r, ok := ranges[t.ID]
		if !ok {
			continue
		}
		entry := ScheduleEntry{
			TaskID: t.ID,
			Title:  t.Title,
			Start:  r.Start,
			End:    r.End,
		}
		if snap := latestSnapshot(in.Snapshots, t.ID); snap != nil {
			rec := schedule.ReconcileScope(in.Assignments[t.ID], *snap)
			if rec.ScopeIncrease > 0 {
				extended := schedule.ScopeExtendedEnd(r, rec.ScopeIncrease)
				entry.ScopeAdjustedEnd = &extended
			}
		}
		view.Entries = append(view.Entries, entry)
	}

	return view, nil
}

// Burndown returns the cached projection when fresh, otherwise simulates
// and stores it. Cache failures fall through to a direct simulation.
func (s *PlanningService) Burndown(ctx context.Context, projectID int) (*schedule.BurndownResult, error) {
	key := burndownCacheKey(projectID)

	var cached string
	var miss bool
	err := s.breaker.Execute(func() error {
		var err error
		cached, err = s.cache.Get(ctx, key).Result()
		if err == redis.Nil {
			// A miss is a healthy cache, not a failure.
			miss = true
			return nil
		}
		return err
	})
	switch {
	case err != nil:
		metrics.IncrementCache("bypass")
		s.logger.Warn("Projection cache unavailable",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
	case miss:
		metrics.IncrementCache("miss")
	default:
		var res schedule.BurndownResult
		if err := json.Unmarshal([]byte(cached), &res); err == nil {
			metrics.IncrementCache("hit")
			return &res, nil
		}
	}

	in, err := s.buildInput(ctx, projectID)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	res := schedule.SimulateBurndown(in, s.maxHorizonDays)
	metrics.ObserveSimulation("burndown", time.Since(started))
	metrics.IncrementRecompute("http")

	if payload, err := json.Marshal(res); err == nil {
		cacheErr := s.breaker.Execute(func() error {
			return s.cache.Set(ctx, key, payload, s.cacheTTL).Err()
		})
		if cacheErr != nil {
			s.logger.Warn("Failed to cache projection",
				zap.Int("project_id", projectID),
				zap.Error(cacheErr),
			)
		}
	}

	return &res, nil
}

// Recompute forces a fresh simulation and refreshes the cache. Used by the
// snapshot event handler so readers see the new projection immediately.
func (s *PlanningService) Recompute(ctx context.Context, projectID int, trigger string) (*schedule.BurndownResult, error) {
	in, err := s.buildInput(ctx, projectID)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	res := schedule.SimulateBurndown(in, s.maxHorizonDays)
	metrics.ObserveSimulation("burndown", time.Since(started))
	metrics.IncrementRecompute(trigger)

	if payload, err := json.Marshal(res); err == nil {
		cacheErr := s.breaker.Execute(func() error {
			return s.cache.Set(ctx, burndownCacheKey(projectID), payload, s.cacheTTL).Err()
		})
		if cacheErr != nil {
			s.logger.Warn("Failed to cache projection",
				zap.Int("project_id", projectID),
				zap.Error(cacheErr),
			)
		}
	}

	return &res, nil
}

// Variance classifies every task's drift from its original estimate.
func (s *PlanningService) Variance(ctx context.Context, projectID int) ([]TaskVariance, error) {
	in, err := s.buildInput(ctx, projectID)
	if err != nil {
		return nil, err
	}

	reports := make([]TaskVariance, 0, len(in.Tasks))
	for _, t := range in.Tasks {
		assignments := in.Assignments[t.ID]
		snap := latestSnapshot(in.Snapshots, t.ID)
		remaining := schedule.CurrentRemaining(t, assignments, snap)
		progress := t.Progress
		if snap != nil {
			progress = snap.Progress
		}
		reports = append(reports, TaskVariance{
			TaskID:   t.ID,
			Title:    t.Title,
			Variance: schedule.ClassifyVariance(schedule.TotalEstimate(assignments), remaining, progress),
		})
	}
	return reports, nil
}

// Velocity compares the observed burn rate against the planned maximum.
// windowDays narrows the trailing window for this call; zero or negative
// falls back to the configured window.
func (s *PlanningService) Velocity(ctx context.Context, projectID int, windowDays int) (*schedule.VelocityReport, error) {
	in, err := s.buildInput(ctx, projectID)
	if err != nil {
		return nil, err
	}

	planned := schedule.PlannedVelocity(in.ProjectAssignments)
	report := schedule.ComputeVelocity(in.Snapshots, velocityWindow(windowDays, s.velocityWindowDays), planned, s.trendTolerance)
	return &report, nil
}

// velocityWindow resolves the effective trailing window: per-request value
// first, then the configured one. ComputeVelocity applies its own default
// when both are unset.
func velocityWindow(requested, configured int) int {
	if requested > 0 {
		return requested
	}
	return configured
}

// InvalidateCache drops a project's cached projection.
func (s *PlanningService) InvalidateCache(ctx context.Context, projectID int) {
	err := s.breaker.Execute(func() error {
		return s.cache.Del(ctx, burndownCacheKey(projectID)).Err()
	})
	if err != nil {
		s.logger.Warn("Failed to invalidate projection cache",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
	}
}

func burndownCacheKey(projectID int) string {
	return fmt.Sprintf("burndown:project:%d", projectID)
}

// latestSnapshot returns the newest snapshot for a task, or nil.
func latestSnapshot(snapshots []model.ProgressSnapshot, taskID int) *model.ProgressSnapshot {
	var latest *model.ProgressSnapshot
	for i := range snapshots {
		s := &snapshots[i]
		if s.TaskID != taskID {
			continue
		}
		if latest == nil || s.SnapshotDate.After(latest.SnapshotDate) {
			latest = s
		}
	}
	return latest
}
