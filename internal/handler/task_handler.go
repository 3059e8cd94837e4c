package handler

import (
	"net/http"
	"strconv"
	"time"

	"planboard/internal/model"
	"planboard/internal/repository"
	"planboard/internal/service"
	"planboard/pkg/mq"
	"planboard/pkg/trace"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type TaskHandler struct {
	tasks       *repository.TaskRepository
	assignments *repository.AssignmentRepository
	planning    *service.PlanningService
	publisher   *mq.Publisher
	logger      *zap.Logger
}

func NewTaskHandler(
	tasks *repository.TaskRepository,
	assignments *repository.AssignmentRepository,
	planning *service.PlanningService,
	publisher *mq.Publisher,
	logger *zap.Logger,
) *TaskHandler {
	return &TaskHandler{tasks: tasks, assignments: assignments, planning: planning, publisher: publisher, logger: logger}
}

// taskChangedPayload mirrors mqhandler.TaskChangedPayload.
type taskChangedPayload struct {
	TaskID    int    `json:"task_id"`
	ProjectID int    `json:"project_id"`
	Change    string `json:"change"`
	TraceID   string `json:"trace_id,omitempty"`
}

// publishTaskChanged is best-effort: the HTTP path already invalidated the
// cache, the event only fans the change out to other consumers.
func (h *TaskHandler) publishTaskChanged(c *gin.Context, taskID, projectID int, change string) {
	ctx := c.Request.Context()
	payload := taskChangedPayload{
		TaskID:    taskID,
		ProjectID: projectID,
		Change:    change,
		TraceID:   trace.FromContext(ctx),
	}
	if err := h.publisher.PublishWithContext(ctx, "task.changed", payload); err != nil {
		h.logger.Error("Failed to publish task.changed",
			zap.Int("task_id", taskID),
			zap.Error(err),
		)
	}
}

type createTaskRequest struct {
	ProjectID int     `json:"project_id" binding:"required"`
	Title     string  `json:"title" binding:"required"`
	Status    string  `json:"status"`
	Progress  float64 `json:"progress"`
	StartDate string  `json:"start_date"`
	Color     string  `json:"color"`
	DependsOn []int   `json:"depends_on"`
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("CreateTask: invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	h.logger.Info("CreateTask request received",
		zap.Int("project_id", req.ProjectID),
		zap.String("title", req.Title),
		zap.String("client_ip", c.ClientIP()),
	)

	task := &model.Task{
		ProjectID: req.ProjectID,
		Title:     req.Title,
		Status:    req.Status,
		Progress:  req.Progress,
		Color:     req.Color,
	}
	if task.Status == "" {
		task.Status = "todo"
	}
	if req.StartDate != "" {
		start, err := time.Parse("2006-01-02", req.StartDate)
		if err != nil {
			h.logger.Warn("CreateTask: invalid start_date",
				zap.String("start_date", req.StartDate),
				zap.Error(err),
			)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date, expected YYYY-MM-DD"})
			return
		}
		task.StartDate = &start
	}

	id, err := h.tasks.Insert(c.Request.Context(), task)
	if err != nil {
		h.logger.Error("CreateTask: failed to insert task",
			zap.Int("project_id", req.ProjectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task"})
		return
	}

	for _, dep := range req.DependsOn {
		if err := h.tasks.AddDependency(c.Request.Context(), id, dep); err != nil {
			h.logger.Error("CreateTask: failed to add dependency",
				zap.Int("task_id", id),
				zap.Int("depends_on_id", dep),
				zap.Error(err),
			)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task dependency"})
			return
		}
	}

	h.planning.InvalidateCache(c.Request.Context(), req.ProjectID)
	h.publishTaskChanged(c, id, req.ProjectID, "created")

	h.logger.Info("CreateTask: success", zap.Int("task_id", id))
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

type updateTaskRequest struct {
	Title     *string  `json:"title"`
	Status    *string  `json:"status"`
	Progress  *float64 `json:"progress"`
	StartDate *string  `json:"start_date"`
	Color     *string  `json:"color"`
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	idStr := c.Param("id")
	taskID, err := strconv.Atoi(idStr)
	if err != nil {
		h.logger.Warn("UpdateTask: invalid task id format",
			zap.String("task_id", idStr),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var req updateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("UpdateTask: invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	h.logger.Info("UpdateTask request received",
		zap.Int("task_id", taskID),
		zap.String("client_ip", c.ClientIP()),
	)

	if req.StartDate != nil {
		if _, err := time.Parse("2006-01-02", *req.StartDate); err != nil {
			h.logger.Warn("UpdateTask: invalid start_date",
				zap.String("start_date", *req.StartDate),
				zap.Error(err),
			)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date, expected YYYY-MM-DD"})
			return
		}
	}

	task, err := h.tasks.GetByID(c.Request.Context(), taskID)
	if err != nil {
		h.logger.Error("UpdateTask: failed to load task", zap.Int("task_id", taskID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update task"})
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	err = h.tasks.UpdateFields(c.Request.Context(), taskID, req.Title, req.Status, req.Progress, req.StartDate, req.Color)
	if err != nil {
		if err == pgx.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		h.logger.Error("UpdateTask: failed to update task",
			zap.Int("task_id", taskID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update task"})
		return
	}

	h.planning.InvalidateCache(c.Request.Context(), task.ProjectID)
	h.publishTaskChanged(c, taskID, task.ProjectID, "updated")

	h.logger.Info("UpdateTask: success", zap.Int("task_id", taskID))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *TaskHandler) ListTasks(c *gin.Context) {
	idStr := c.Param("id")
	projectID, err := strconv.Atoi(idStr)
	if err != nil {
		h.logger.Warn("ListTasks: invalid project id format",
			zap.String("project_id", idStr),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	h.logger.Info("ListTasks request received",
		zap.Int("project_id", projectID),
		zap.String("client_ip", c.ClientIP()),
	)

	tasks, err := h.tasks.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		h.logger.Error("ListTasks: failed to fetch tasks",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch tasks"})
		return
	}

	h.logger.Info("ListTasks: success",
		zap.Int("project_id", projectID),
		zap.Int("task_count", len(tasks)),
	)
	c.JSON(http.StatusOK, gin.H{"tasks": tasks})
}

type assignResourceRequest struct {
	ResourceID       string  `json:"resource_id" binding:"required"`
	EstimatedDays    float64 `json:"estimated_days" binding:"required"`
	NumberOfProfiles int     `json:"number_of_profiles"`
	FocusFactor      float64 `json:"focus_factor"`
}

func (h *TaskHandler) AssignResource(c *gin.Context) {
	idStr := c.Param("id")
	taskID, err := strconv.Atoi(idStr)
	if err != nil {
		h.logger.Warn("AssignResource: invalid task id format",
			zap.String("task_id", idStr),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return
	}

	var req assignResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("AssignResource: invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	h.logger.Info("AssignResource request received",
		zap.Int("task_id", taskID),
		zap.String("resource_id", req.ResourceID),
		zap.String("client_ip", c.ClientIP()),
	)

	task, err := h.tasks.GetByID(c.Request.Context(), taskID)
	if err != nil {
		h.logger.Error("AssignResource: failed to load task", zap.Int("task_id", taskID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to assign resource"})
		return
	}
	if task == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	assignment := &model.ResourceAssignment{
		TaskID:           taskID,
		ResourceID:       req.ResourceID,
		EstimatedDays:    req.EstimatedDays,
		NumberOfProfiles: req.NumberOfProfiles,
		FocusFactor:      req.FocusFactor,
	}
	if assignment.NumberOfProfiles <= 0 {
		assignment.NumberOfProfiles = 1
	}

	if err := h.assignments.UpsertTaskAssignment(c.Request.Context(), assignment); err != nil {
		h.logger.Error("AssignResource: failed to upsert assignment",
			zap.Int("task_id", taskID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to assign resource"})
		return
	}

	h.planning.InvalidateCache(c.Request.Context(), task.ProjectID)
	h.publishTaskChanged(c, taskID, task.ProjectID, "resources")

	h.logger.Info("AssignResource: success",
		zap.Int("task_id", taskID),
		zap.String("resource_id", req.ResourceID),
	)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
