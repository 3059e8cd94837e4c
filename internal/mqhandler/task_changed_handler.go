package mqhandler

import (
	"context"
	"encoding/json"
	"time"

	"planboard/internal/service"
	"planboard/pkg/logger"
	"planboard/pkg/metrics"
	"planboard/pkg/trace"
	"planboard/pkg/util"

	"go.uber.org/zap"
)

// TaskChangedPayload announces a task mutation that may shift the plan.
type TaskChangedPayload struct {
	TaskID    int    `json:"task_id"`
	ProjectID int    `json:"project_id"`
	Change    string `json:"change"`
	TraceID   string `json:"trace_id,omitempty"`
}

// TaskChangedHandler drops the stale cached projection when a task changes.
// The next read recomputes lazily; no eager simulation here.
type TaskChangedHandler struct {
	planning *service.PlanningService
	deduper  *util.Deduper
	logger   *zap.Logger
}

func NewTaskChangedHandler(planning *service.PlanningService, deduper *util.Deduper, log *zap.Logger) *TaskChangedHandler {
	return &TaskChangedHandler{planning: planning, deduper: deduper, logger: log}
}

func (h *TaskChangedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	started := time.Now()
	defer func() {
		metrics.RecordMQConsumeLatency("task.changed", "planboard.task", time.Since(started))
	}()

	var payload TaskChangedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.logger.Error("Invalid TaskChangedPayload, dropping",
			zap.String("raw", string(raw)),
			zap.Error(err),
		)
		return nil
	}

	if payload.TraceID != "" {
		ctx = trace.WithContext(ctx, payload.TraceID)
	}
	traceLogger := logger.WithTrace(ctx, h.logger)

	traceLogger.Info("TaskChangedHandler: task changed",
		zap.Int("task_id", payload.TaskID),
		zap.Int("project_id", payload.ProjectID),
		zap.String("change", payload.Change),
	)

	h.planning.InvalidateCache(ctx, payload.ProjectID)
	return nil
}
