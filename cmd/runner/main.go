package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planboard/internal/config"
	"planboard/internal/repository"
	"planboard/internal/service"
	"planboard/pkg/db"
	"planboard/pkg/logger"
	"planboard/pkg/mq"
	"planboard/pkg/redis"

	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	log.Info("Starting planboard runner...",
		zap.String("db_host", cfg.DB.Host),
		zap.String("mq_url", cfg.MQ.URL),
	)

	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	rdb := redis.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to init MQ publisher", zap.Error(err))
	}
	defer publisher.Close()

	projectRepo := repository.NewProjectRepository(dbConn, log)
	taskRepo := repository.NewTaskRepository(dbConn, log)
	assignmentRepo := repository.NewAssignmentRepository(dbConn, log)
	snapshotRepo := repository.NewSnapshotRepository(dbConn, log, nil)
	milestoneRepo := repository.NewMilestoneRepository(dbConn, log)

	planning := service.NewPlanningService(projectRepo, taskRepo, assignmentRepo, snapshotRepo, milestoneRepo, rdb, log).
		WithForecastSettings(
			cfg.Forecast.MaxHorizonDays,
			cfg.Forecast.VelocityWindowDays,
			cfg.Forecast.CacheTTLSeconds,
			cfg.Forecast.TrendTolerance,
		)

	interval := time.Duration(cfg.Forecast.RecomputeIntervalSeconds) * time.Second
	monitor := service.NewForecastMonitor(projectRepo, planning, publisher, log, interval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Info("Shutting down planboard runner gracefully...")
		cancel()
	}()

	monitor.Run(ctx)

	log.Info("planboard runner shutdown complete")
}
