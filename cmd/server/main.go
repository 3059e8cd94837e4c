package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planboard/internal/config"
	"planboard/internal/handler"
	"planboard/internal/httpserver"
	"planboard/internal/mqhandler"
	"planboard/internal/repository"
	"planboard/internal/service"
	"planboard/pkg/db"
	"planboard/pkg/logger"
	"planboard/pkg/mq"
	"planboard/pkg/outbox"
	"planboard/pkg/redis"
	"planboard/pkg/util"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting planboard server...",
		zap.String("db_host", cfg.DB.Host),
		zap.Int("db_port", cfg.DB.Port),
		zap.String("mq_url", cfg.MQ.URL),
	)

	// DB
	log.Info("Initializing database connection...")
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()
	log.Info("Database connection established successfully")

	// Redis
	rdb := redis.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	// MQ publisher
	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	if err := publisher.SetupDLQ("snapshot.recorded"); err != nil {
		log.Fatal("Failed to declare DLQ", zap.Error(err))
	}

	// Repositories
	outboxRepo := outbox.NewRepository(dbConn)
	projectRepo := repository.NewProjectRepository(dbConn, log)
	taskRepo := repository.NewTaskRepository(dbConn, log)
	assignmentRepo := repository.NewAssignmentRepository(dbConn, log)
	snapshotRepo := repository.NewSnapshotRepository(dbConn, log, outboxRepo)
	milestoneRepo := repository.NewMilestoneRepository(dbConn, log)

	// Services
	planning := service.NewPlanningService(projectRepo, taskRepo, assignmentRepo, snapshotRepo, milestoneRepo, rdb, log).
		WithForecastSettings(
			cfg.Forecast.MaxHorizonDays,
			cfg.Forecast.VelocityWindowDays,
			cfg.Forecast.CacheTTLSeconds,
			cfg.Forecast.TrendTolerance,
		)

	deduper := util.NewDeduperWithLogger(rdb, 10*time.Minute, log)
	retryCounter := util.NewRetryCounter(rdb, 1*time.Hour)
	replayService := outbox.NewReplayService(outboxRepo, publisher)

	// Outbox dispatcher
	dispatchCtx, dispatchCancel := context.WithCancel(context.Background())
	defer dispatchCancel()
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log)
	go dispatcher.Start(dispatchCtx)

	// MQ consumers
	snapshotHandler := mqhandler.NewSnapshotRecordedHandler(planning, publisher, deduper, retryCounter, log)
	taskChangedHandler := mqhandler.NewTaskChangedHandler(planning, deduper, log)

	log.Info("Initializing MQ consumer for snapshot.recorded...",
		zap.String("queue", "planboard.snapshot.q"),
		zap.String("routing_key", "snapshot.recorded"),
	)
	snapshotConsumer, err := mq.NewConsumer(cfg.MQ.URL, "planboard.snapshot.q", "snapshot.recorded", log)
	if err != nil {
		log.Fatal("Failed to init snapshot consumer", zap.Error(err))
	}
	defer snapshotConsumer.Close()
	snapshotConsumer.SetHandler(snapshotHandler.Handle)

	go func() {
		log.Info("Starting snapshot.recorded consumer...")
		if err := snapshotConsumer.StartConsuming(); err != nil {
			log.Fatal("Snapshot consumer failed", zap.Error(err))
		}
	}()

	log.Info("Initializing MQ consumer for task.changed...",
		zap.String("queue", "planboard.task.q"),
		zap.String("routing_key", "task.changed"),
	)
	taskConsumer, err := mq.NewConsumer(cfg.MQ.URL, "planboard.task.q", "task.changed", log)
	if err != nil {
		log.Fatal("Failed to init task consumer", zap.Error(err))
	}
	defer taskConsumer.Close()
	taskConsumer.SetHandler(taskChangedHandler.Handle)

	go func() {
		log.Info("Starting task.changed consumer...")
		if err := taskConsumer.StartConsuming(); err != nil {
			log.Fatal("Task consumer failed", zap.Error(err))
		}
	}()

	// HTTP server
	handlers := httpserver.Handlers{
		Project:   handler.NewProjectHandler(projectRepo, log),
		Task:      handler.NewTaskHandler(taskRepo, assignmentRepo, planning, publisher, log),
		Snapshot:  handler.NewSnapshotHandler(snapshotRepo, taskRepo, log),
		Milestone: handler.NewMilestoneHandler(milestoneRepo, log),
		Planning:  handler.NewPlanningHandler(planning, log),
		Admin:     handler.NewAdminHandler(replayService, log),
	}
	router := httpserver.NewRouter(handlers, log, dbConn, snapshotConsumer, cfg.Auth.Secret)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	log.Info("planboard server is fully initialized and running",
		zap.String("http_port", cfg.Server.Port),
		zap.String("mq_queue_snapshot", "planboard.snapshot.q"),
		zap.String("mq_queue_task", "planboard.task.q"),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down planboard server gracefully...")

	log.Info("Stopping MQ consumers...")
	snapshotConsumer.Stop()
	taskConsumer.Stop()

	log.Info("Stopping outbox dispatcher...")
	dispatchCancel()

	log.Info("Shutting down HTTP server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		log.Info("HTTP server stopped")
	}

	log.Info("Closing database connection...")
	dbConn.Close()

	log.Info("planboard server shutdown complete")
}
