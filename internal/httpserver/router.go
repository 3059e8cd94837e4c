package httpserver

import (
	"context"
	"strconv"
	"time"

	"planboard/internal/handler"
	"planboard/pkg/metrics"
	"planboard/pkg/mq"
	"planboard/pkg/trace"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handlers struct {
	Project   *handler.ProjectHandler
	Task      *handler.TaskHandler
	Snapshot  *handler.SnapshotHandler
	Milestone *handler.MilestoneHandler
	Planning  *handler.PlanningHandler
	Admin     *handler.AdminHandler
}

func NewRouter(h Handlers, logger *zap.Logger, db *pgxpool.Pool, consumer *mq.Consumer, jwtSecret string) *gin.Engine {
	r := gin.Default()

	r.Use(TraceMiddleware())

	r.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		metrics.RecordHTTPRequestDuration(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(c.Writer.Status()),
			latency,
		)
		logger.Info("HTTP Request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
			zap.String("user_agent", c.Request.UserAgent()),
			zap.String("trace_id", trace.FromContext(c.Request.Context())),
		)
	})

	// Health endpoints stay unauthenticated.
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/health", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}

		if consumer != nil && !consumer.IsConnected() {
			c.JSON(500, gin.H{"status": "mq_not_ready"})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Plan reads.
	r.GET("/projects/:id/tasks", h.Task.ListTasks)
	r.GET("/projects/:id/milestones", h.Milestone.ListMilestones)
	r.GET("/projects/:id/schedule", h.Planning.GetSchedule)
	r.GET("/projects/:id/burndown", h.Planning.GetBurndown)
	r.GET("/projects/:id/variance", h.Planning.GetVariance)
	r.GET("/projects/:id/velocity", h.Planning.GetVelocity)
	r.GET("/tasks/:id/snapshots", h.Snapshot.ListTaskSnapshots)

	// Plan mutations require a token.
	authed := r.Group("/", AuthMiddleware(jwtSecret, logger))
	authed.POST("/projects", h.Project.CreateProject)
	authed.POST("/projects/:id/milestones", h.Milestone.CreateMilestone)
	authed.POST("/tasks", h.Task.CreateTask)
	authed.PATCH("/tasks/:id", h.Task.UpdateTask)
	authed.POST("/tasks/:id/resources", h.Task.AssignResource)
	authed.POST("/tasks/:id/snapshots", h.Snapshot.RecordSnapshot)

	// Operator endpoints.
	authed.POST("/admin/outbox/replay", h.Admin.ReplayOutboxEvent)
	authed.POST("/admin/outbox/replay-failed", h.Admin.ReplayFailedEvents)

	return r
}
