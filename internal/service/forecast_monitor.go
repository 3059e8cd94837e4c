package service

import (
	"context"
	"time"

	"planboard/internal/repository"
	"planboard/internal/schedule"
	"planboard/pkg/metrics"
	"planboard/pkg/mq"
	"planboard/pkg/trace"

	"go.uber.org/zap"
)

// ScopeAlertEvent is published when a task drifts out of its on-track band.
type ScopeAlertEvent struct {
	ProjectID          int     `json:"project_id"`
	TaskID             int     `json:"task_id"`
	Title              string  `json:"title"`
	Status             string  `json:"status"`
	VariancePercentage float64 `json:"variance_percentage"`
	TraceID            string  `json:"trace_id,omitempty"`
}

// ForecastUpdatedEvent is published after each monitoring sweep of a project.
type ForecastUpdatedEvent struct {
	ProjectID          int     `json:"project_id"`
	PlannedVelocity    float64 `json:"planned_velocity"`
	RecentVelocity     float64 `json:"recent_velocity"`
	Trend              string  `json:"trend"`
	CompletionDayIndex int     `json:"completion_day_index"`
	TraceID            string  `json:"trace_id,omitempty"`
}

// ForecastMonitor periodically sweeps active projects, recomputes their
// forecasts, and raises alerts for tasks drifting off plan.
type ForecastMonitor struct {
	projects  *repository.ProjectRepository
	planning  *PlanningService
	publisher *mq.Publisher
	logger    *zap.Logger
	interval  time.Duration
}

func NewForecastMonitor(
	projects *repository.ProjectRepository,
	planning *PlanningService,
	publisher *mq.Publisher,
	logger *zap.Logger,
	interval time.Duration,
) *ForecastMonitor {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &ForecastMonitor{
		projects:  projects,
		planning:  planning,
		publisher: publisher,
		logger:    logger,
		interval:  interval,
	}
}

// Run sweeps immediately, then on every tick until ctx is cancelled.
func (m *ForecastMonitor) Run(ctx context.Context) {
	m.logger.Info("Starting forecast monitor", zap.Duration("interval", m.interval))

	m.sweep(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Forecast monitor stopped")
			return
		case <-ticker.C:
			m.sweep(ctx)
		}
	}
}

func (m *ForecastMonitor) sweep(ctx context.Context) {
	ctx = trace.WithContext(ctx, trace.GenerateTraceID())
	traceID := trace.FromContext(ctx)

	projects, err := m.projects.ListActive(ctx)
	if err != nil {
		m.logger.Error("Failed to list active projects", zap.Error(err))
		return
	}

	m.logger.Debug("Sweeping projects", zap.Int("count", len(projects)))

	for _, p := range projects {
		if err := m.monitorProject(ctx, p.ID, traceID); err != nil {
			m.logger.Error("Failed to monitor project",
				zap.Int("project_id", p.ID),
				zap.Error(err),
			)
		}
	}
}

func (m *ForecastMonitor) monitorProject(ctx context.Context, projectID int, traceID string) error {
	variances, err := m.planning.Variance(ctx, projectID)
	if err != nil {
		return err
	}

	for _, v := range variances {
		if v.Variance.Status == schedule.VarianceOnTrack {
			continue
		}
		event := ScopeAlertEvent{
			ProjectID:          projectID,
			TaskID:             v.TaskID,
			Title:              v.Title,
			Status:             v.Variance.Status,
			VariancePercentage: v.Variance.VariancePercentage,
			TraceID:            traceID,
		}
		if err := m.publisher.PublishWithContext(ctx, "plan.scope_alert", event); err != nil {
			m.logger.Error("Failed to publish scope alert",
				zap.Int("project_id", projectID),
				zap.Int("task_id", v.TaskID),
				zap.Error(err),
			)
			continue
		}
		metrics.IncrementScopeAlert(v.Variance.Status)
		m.logger.Warn("Scope alert raised",
			zap.Int("project_id", projectID),
			zap.Int("task_id", v.TaskID),
			zap.String("status", v.Variance.Status),
			zap.Float64("variance_pct", v.Variance.VariancePercentage),
		)
	}

	velocity, err := m.planning.Velocity(ctx, projectID, 0)
	if err != nil {
		return err
	}

	burndown, err := m.planning.Recompute(ctx, projectID, "runner")
	if err != nil {
		return err
	}

	update := ForecastUpdatedEvent{
		ProjectID:          projectID,
		PlannedVelocity:    velocity.PlannedVelocity,
		RecentVelocity:     velocity.RecentVelocity,
		Trend:              velocity.Trend,
		CompletionDayIndex: burndown.CompletionDayIndex,
		TraceID:            traceID,
	}
	if err := m.publisher.PublishWithContext(ctx, "plan.forecast_updated", update); err != nil {
		m.logger.Error("Failed to publish forecast update",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		return err
	}

	m.logger.Info("Forecast updated",
		zap.Int("project_id", projectID),
		zap.String("trend", velocity.Trend),
		zap.Int("completion_day_index", burndown.CompletionDayIndex),
	)
	return nil
}
