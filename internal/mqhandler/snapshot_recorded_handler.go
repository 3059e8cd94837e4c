package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"planboard/internal/service"
	"planboard/pkg/logger"
	"planboard/pkg/metrics"
	"planboard/pkg/mq"
	"planboard/pkg/trace"
	"planboard/pkg/util"

	"go.uber.org/zap"
)

const maxRetries = 5

// SnapshotRecordedPayload mirrors the outbox event written on snapshot insert.
type SnapshotRecordedPayload struct {
	TaskID       int     `json:"task_id"`
	ProjectID    int     `json:"project_id"`
	SnapshotDate string  `json:"snapshot_date"`
	Progress     float64 `json:"progress"`
	TraceID      string  `json:"trace_id,omitempty"`
}

// PlanRecomputedPayload announces a refreshed projection to downstream
// consumers.
type PlanRecomputedPayload struct {
	ProjectID          int    `json:"project_id"`
	CompletionDayIndex int    `json:"completion_day_index"`
	Trigger            string `json:"trigger"`
	TraceID            string `json:"trace_id,omitempty"`
}

// SnapshotRecordedHandler recomputes a project's projection whenever a new
// progress snapshot lands.
type SnapshotRecordedHandler struct {
	planning     *service.PlanningService
	publisher    *mq.Publisher
	deduper      *util.Deduper
	retryCounter *util.RetryCounter
	logger       *zap.Logger
}

func NewSnapshotRecordedHandler(
	planning *service.PlanningService,
	publisher *mq.Publisher,
	deduper *util.Deduper,
	retryCounter *util.RetryCounter,
	log *zap.Logger,
) *SnapshotRecordedHandler {
	return &SnapshotRecordedHandler{
		planning:     planning,
		publisher:    publisher,
		deduper:      deduper,
		retryCounter: retryCounter,
		logger:       log,
	}
}

func (h *SnapshotRecordedHandler) Handle(ctx context.Context, raw json.RawMessage) error {
	started := time.Now()
	defer func() {
		metrics.RecordMQConsumeLatency("snapshot.recorded", "planboard.snapshot", time.Since(started))
	}()

	var payload SnapshotRecordedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		h.logger.Error("Invalid SnapshotRecordedPayload, sending to DLQ",
			zap.String("raw", string(raw)),
			zap.Error(err),
		)
		return h.sendToDLQ(raw, err)
	}

	if payload.TraceID != "" {
		ctx = trace.WithContext(ctx, payload.TraceID)
	}
	traceLogger := logger.WithTrace(ctx, h.logger)

	traceLogger.Info("SnapshotRecordedHandler: received snapshot",
		zap.Int("task_id", payload.TaskID),
		zap.Int("project_id", payload.ProjectID),
		zap.String("snapshot_date", payload.SnapshotDate),
	)

	dedupHandler := fmt.Sprintf("snapshot:%s", payload.SnapshotDate)
	if !h.deduper.AcquireOnce(ctx, dedupHandler, payload.TaskID) {
		traceLogger.Info("Duplicated event, skip",
			zap.Int("task_id", payload.TaskID),
		)
		return nil
	}

	retryKey := util.FormatRetryKey("snapshot_recorded", payload.TaskID)
	retryCount, _ := h.retryCounter.IncrementAndGet(ctx, retryKey)
	traceLogger.Debug("Retry count", zap.Int64("retry", retryCount))

	h.planning.InvalidateCache(ctx, payload.ProjectID)

	res, err := h.planning.Recompute(ctx, payload.ProjectID, "snapshot")
	if err != nil {
		retryable, errType := util.IsRetryableError(err)
		if util.ShouldRetry(retryCount, maxRetries, retryable) {
			traceLogger.Warn("Recompute failed, will retry",
				zap.Int("project_id", payload.ProjectID),
				zap.String("error_type", errType),
				zap.Int64("retry", retryCount),
				zap.Error(err),
			)
			return err
		}
		traceLogger.Error("Recompute failed permanently, sending to DLQ",
			zap.Int("project_id", payload.ProjectID),
			zap.String("error_type", errType),
			zap.Error(err),
		)
		return h.sendToDLQ(raw, err)
	}

	h.retryCounter.Reset(ctx, retryKey)

	recomputed := PlanRecomputedPayload{
		ProjectID:          payload.ProjectID,
		CompletionDayIndex: res.CompletionDayIndex,
		Trigger:            "snapshot",
		TraceID:            trace.FromContext(ctx),
	}
	if err := h.publisher.PublishWithContext(ctx, "plan.recomputed", recomputed); err != nil {
		// The projection itself is fresh; losing the announcement is
		// recoverable on the next recompute.
		traceLogger.Error("Failed to publish plan.recomputed",
			zap.Int("project_id", payload.ProjectID),
			zap.Error(err),
		)
	}

	traceLogger.Info("Projection recomputed",
		zap.Int("project_id", payload.ProjectID),
		zap.Int("completion_day_index", res.CompletionDayIndex),
	)
	return nil
}

// sendToDLQ parks an unprocessable message and acks the original.
func (h *SnapshotRecordedHandler) sendToDLQ(raw json.RawMessage, cause error) error {
	if err := h.publisher.PublishToDLQ("snapshot.recorded", raw, cause.Error()); err != nil {
		h.logger.Error("Failed to publish to DLQ", zap.Error(err))
		return err
	}
	return nil
}
