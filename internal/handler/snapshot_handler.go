package handler

import (
	"net/http"
	"strconv"
	"time"

	"planboard/internal/model"
	"planboard/internal/repository"
	"planboard/pkg/metrics"
	"planboard/pkg/trace"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SnapshotHandler struct {
	snapshots *repository.SnapshotRepository
	tasks     *repository.TaskRepository
	logger    *zap.Logger
}

func NewSnapshotHandler(
	snapshots *repository.SnapshotRepository,
	tasks *repository.TaskRepository,
	logger *zap.Logger,
) *SnapshotHandler {
	return &SnapshotHandler{snapshots: snapshots, tasks: tasks, logger: logger}
}

type recordSnapshotRequest struct {
	SnapshotDate      string  `json:"snapshot_date"`
	RemainingEstimate float64 `json:"remaining_estimate"`
	Progress          float64 `json:"progress"`
	Status            string  `json:"status"`
}

// snapshotRecordedEvent is the outbox payload for snapshot.recorded.
type snapshotRecordedEvent struct {
	TaskID       int     `json:"task_id"`
	ProjectID    int     `json:"project_id"`
	SnapshotDate string  `json:"snapshot_date"`
	Progress     float64 `json:"progress"`
	TraceID      string  `json:"trace_id,omitempty"`
}

func (h *SnapshotHandler) RecordSnapshot(c *gin.Context) {
	idStr := c.Param("id")
	taskID, err := strconv.Atoi(idStr)
	if err != nil {
		h.logger.Warn("RecordSnapshot: invalid task id format",
			zap.String("task_id", idStr),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var req recordSnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("RecordSnapshot: invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	h.logger.Info("RecordSnapshot request received",
		zap.Int("task_id", taskID),
		zap.Float64("remaining_estimate", req.RemainingEstimate),
		zap.Float64("progress", req.Progress),
		zap.String("client_ip", c.ClientIP()),
	)

	if req.RemainingEstimate < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "remaining_estimate must be >= 0"})
		return
	}
	if req.Progress < 0 || req.Progress > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "progress must be between 0 and 100"})
		return
	}

	snapshotDate := time.Now().UTC().Truncate(24 * time.Hour)
	if req.SnapshotDate != "" {
		snapshotDate, err = time.Parse("2006-01-02", req.SnapshotDate)
		if err != nil {
			h.logger.Warn("RecordSnapshot: invalid snapshot_date",
				zap.String("snapshot_date", req.SnapshotDate),
				zap.Error(err),
			)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid snapshot_date, expected YYYY-MM-DD"})
			return
		}
	}

	task, err := h.tasks.GetByID(c.Request.Context(), taskID)
	if err != nil {
		h.logger.Error("RecordSnapshot: failed to load task",
			zap.Int("task_id", taskID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record snapshot"})
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	status := req.Status
	if status == "" {
		status = task.Status
		if req.Progress >= 100 {
			status = "done"
		} else if req.Progress > 0 && status == "todo" {
			status = "in_progress"
		}
	}

	snapshot := &model.ProgressSnapshot{
		TaskID:            taskID,
		ProjectID:         task.ProjectID,
		SnapshotDate:      snapshotDate,
		RemainingEstimate: req.RemainingEstimate,
		Progress:          req.Progress,
		Status:            status,
	}

	payload := snapshotRecordedEvent{
		TaskID:       taskID,
		ProjectID:    task.ProjectID,
		SnapshotDate: snapshotDate.Format("2006-01-02"),
		Progress:     req.Progress,
		TraceID:      trace.FromContext(c.Request.Context()),
	}

	id, err := h.snapshots.InsertWithOutbox(c.Request.Context(), snapshot, &payload)
	if err != nil {
		if err == repository.ErrSnapshotExists {
			h.logger.Warn("RecordSnapshot: duplicate snapshot for day",
				zap.Int("task_id", taskID),
				zap.Time("snapshot_date", snapshotDate),
			)
			c.JSON(http.StatusConflict, gin.H{"error": "snapshot already recorded for this day"})
			return
		}
		h.logger.Error("RecordSnapshot: failed to insert snapshot",
			zap.Int("task_id", taskID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record snapshot"})
		return
	}

	metrics.SnapshotsRecorded.Inc()

	h.logger.Info("RecordSnapshot: success",
		zap.Int("snapshot_id", id),
		zap.Int("task_id", taskID),
	)
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *SnapshotHandler) ListTaskSnapshots(c *gin.Context) {
	idStr := c.Param("id")
	taskID, err := strconv.Atoi(idStr)
	if err != nil {
		h.logger.Warn("ListTaskSnapshots: invalid task id format",
			zap.String("task_id", idStr),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	snapshots, err := h.snapshots.ListByTask(c.Request.Context(), taskID)
	if err != nil {
		h.logger.Error("ListTaskSnapshots: failed to fetch snapshots",
			zap.Int("task_id", taskID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch snapshots"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"snapshots": snapshots})
}
