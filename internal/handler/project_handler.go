package handler

import (
	"net/http"
	"time"

	"planboard/internal/model"
	"planboard/internal/repository"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProjectHandler struct {
	projects *repository.ProjectRepository
	logger   *zap.Logger
}

func NewProjectHandler(projects *repository.ProjectRepository, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{projects: projects, logger: logger}
}

type createProjectRequest struct {
	Title     string `json:"title" binding:"required"`
	StartDate string `json:"start_date" binding:"required"`
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("CreateProject: invalid request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		h.logger.Warn("CreateProject: invalid start_date",
			zap.String("start_date", req.StartDate),
			zap.Error(err),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date, expected YYYY-MM-DD"})
		return
	}

	h.logger.Info("CreateProject request received",
		zap.String("title", req.Title),
		zap.String("client_ip", c.ClientIP()),
	)

	project := &model.Project{
		Title:     req.Title,
		StartDate: start,
		Status:    "active",
	}

	id, err := h.projects.Insert(c.Request.Context(), project)
	if err != nil {
		h.logger.Error("CreateProject: failed to insert project",
			zap.String("title", req.Title),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create project"})
		return
	}

	h.logger.Info("CreateProject: success", zap.Int("project_id", id))
	c.JSON(http.StatusCreated, gin.H{"id": id})
}
