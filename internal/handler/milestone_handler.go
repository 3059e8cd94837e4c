package handler

import (
	"net/http"
	"strconv"
	"time"

	"planboard/internal/model"
	"planboard/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type MilestoneHandler struct {
	milestones *repository.MilestoneRepository
	logger     *zap.Logger
}

func NewMilestoneHandler(milestones *repository.MilestoneRepository, logger *zap.Logger) *MilestoneHandler {
	return &MilestoneHandler{milestones: milestones, logger: logger}
}

type createMilestoneRequest struct {
	Title string `json:"title" binding:"required"`
	Date  string `json:"date" binding:"required"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

func (h *MilestoneHandler) CreateMilestone(c *gin.Context) {
	idStr := c.Param("id")
	projectID, err := strconv.Atoi(idStr)
	if err != nil {
		h.logger.Warn("CreateMilestone: invalid project id format",
			zap.String("project_id", idStr),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	var req createMilestoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("CreateMilestone: invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		h.logger.Warn("CreateMilestone: invalid date",
			zap.String("date", req.Date),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	h.logger.Info("CreateMilestone request received",
		zap.Int("project_id", projectID),
		zap.String("title", req.Title),
		zap.String("client_ip", c.ClientIP()),
	)

	milestone := &model.Milestone{
		ProjectID: projectID,
		Title:     req.Title,
		Date:      date,
		Icon:      req.Icon,
		Color:     req.Color,
	}

	id, err := h.milestones.Insert(c.Request.Context(), milestone)
	if err != nil {
		h.logger.Error("CreateMilestone: failed to insert milestone",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create milestone"})
		return
	}

	h.logger.Info("CreateMilestone: success", zap.Int("milestone_id", id))
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *MilestoneHandler) ListMilestones(c *gin.Context) {
	idStr := c.Param("id")
	projectID, err := strconv.Atoi(idStr)
	if err != nil {
		h.logger.Warn("ListMilestones: invalid project id format",
			zap.String("project_id", idStr),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project id"})
		return
	}

	milestones, err := h.milestones.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		h.logger.Error("ListMilestones: failed to fetch milestones",
			zap.Int("project_id", projectID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch milestones"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"milestones": milestones})
}
