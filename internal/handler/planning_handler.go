package handler

import (
	"net/http"
	"strconv"

	"planboard/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PlanningHandler struct {
	planning *service.PlanningService
	logger   *zap.Logger
}

func NewPlanningHandler(planning *service.PlanningService, logger *zap.Logger) *PlanningHandler {
	return &PlanningHandler{planning: planning, logger: logger}
}

func (h *PlanningHandler) projectID(c *gin.Context) (int, bool) {
	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil {
		h.logger.Warn("Invalid project id format",
			zap.String("project_id", idStr),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return 0, false
	}
	return id, true
}

func (h *PlanningHandler) GetSchedule(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	h.logger.Info("GetSchedule request received",
		zap.Int("project_id", projectID),
		zap.String("client_ip", c.ClientIP()),
	)

	view, err := h.planning.Schedule(c.Request.Context(), projectID)
	if err != nil {
		if err == service.ErrProjectNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		h.logger.Error("GetSchedule: failed to resolve schedule",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve schedule"})
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *PlanningHandler) GetBurndown(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	h.logger.Info("GetBurndown request received",
		zap.Int("project_id", projectID),
		zap.String("client_ip", c.ClientIP()),
	)

	res, err := h.planning.Burndown(c.Request.Context(), projectID)
	if err != nil {
		if err == service.ErrProjectNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		h.logger.Error("GetBurndown: simulation failed",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute burndown"})
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *PlanningHandler) GetVariance(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	h.logger.Info("GetVariance request received",
		zap.Int("project_id", projectID),
		zap.String("client_ip", c.ClientIP()),
	)

	reports, err := h.planning.Variance(c.Request.Context(), projectID)
	if err != nil {
		if err == service.ErrProjectNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		h.logger.Error("GetVariance: failed to classify variance",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute variance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"tasks": reports})
}

func (h *PlanningHandler) GetVelocity(c *gin.Context) {
	projectID, ok := h.projectID(c)
	if !ok {
		return
	}
	window := 0
	if raw := c.Query("window"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.logger.Warn("Invalid velocity window parameter",
				zap.Int("project_id", projectID),
				zap.String("window", raw),
			)
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid window parameter"})
			return
		}
		window = parsed
	}
	h.logger.Info("GetVelocity request received",
		zap.Int("project_id", projectID),
		zap.Int("window_days", window),
		zap.String("client_ip", c.ClientIP()),
	)

	report, err := h.planning.Velocity(c.Request.Context(), projectID, window)
	if err != nil {
		if err == service.ErrProjectNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "project not found"})
			return
		}
		h.logger.Error("GetVelocity: failed to compute velocity",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute velocity"})
		return
	}

	c.JSON(http.StatusOK, report)
}
