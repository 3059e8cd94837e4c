package repository

import (
	"context"
	"errors"
	"fmt"

	"planboard/internal/model"
	"planboard/pkg/outbox"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ErrSnapshotExists is returned when a snapshot for the same task and day
// was already recorded.
var ErrSnapshotExists = errors.New("snapshot already recorded for this day")

type SnapshotRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
	outbox *outbox.Repository
}

func NewSnapshotRepository(db *pgxpool.Pool, logger *zap.Logger, ob *outbox.Repository) *SnapshotRepository {
	return &SnapshotRepository{db: db, logger: logger, outbox: ob}
}

// InsertWithOutbox stores a snapshot, mirrors progress onto the task row, and
// queues a snapshot.recorded event in the same transaction.
func (r *SnapshotRepository) InsertWithOutbox(ctx context.Context, s *model.ProgressSnapshot, payload interface{}) (int, error) {
	r.logger.Debug("Inserting progress snapshot",
		zap.Int("task_id", s.TaskID),
		zap.Time("snapshot_date", s.SnapshotDate),
		zap.Float64("remaining_estimate", s.RemainingEstimate),
	)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
        INSERT INTO progress_snapshots (task_id, project_id, snapshot_date, remaining_estimate, progress, status)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at
    `
	err = tx.QueryRow(ctx, query,
		s.TaskID,
		s.ProjectID,
		s.SnapshotDate,
		s.RemainingEstimate,
		s.Progress,
		s.Status,
	).Scan(&s.ID, &s.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrSnapshotExists
		}
		r.logger.Error("Failed to insert snapshot",
			zap.Error(err),
			zap.Int("task_id", s.TaskID),
		)
		return 0, err
	}

	update := `
        UPDATE tasks
        SET progress = $2, status = $3, updated_at = NOW()
        WHERE id = $1
    `
	if _, err := tx.Exec(ctx, update, s.TaskID, s.Progress, s.Status); err != nil {
		r.logger.Error("Failed to mirror snapshot onto task",
			zap.Error(err),
			zap.Int("task_id", s.TaskID),
		)
		return 0, err
	}

	aggregateID := int64(s.TaskID)
	if err := outbox.InsertEventInTx(ctx, tx, r.outbox, "snapshot", &aggregateID, "snapshot.recorded", payload); err != nil {
		r.logger.Error("Failed to queue snapshot event",
			zap.Error(err),
			zap.Int("task_id", s.TaskID),
		)
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	r.logger.Info("Snapshot recorded",
		zap.Int("snapshot_id", s.ID),
		zap.Int("task_id", s.TaskID),
	)
	return s.ID, nil
}

// ListByProject returns every snapshot for a project ordered by day then task.
func (r *SnapshotRepository) ListByProject(ctx context.Context, projectID int) ([]model.ProgressSnapshot, error) {
	query := `
        SELECT id, task_id, project_id, snapshot_date, remaining_estimate, progress, status, created_at
        FROM progress_snapshots
        WHERE project_id = $1
        ORDER BY snapshot_date ASC, task_id ASC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query snapshots",
			zap.Error(err),
			zap.Int("project_id", projectID),
		)
		return nil, err
	}
	defer rows.Close()

	snapshots := []model.ProgressSnapshot{}
	for rows.Next() {
		var s model.ProgressSnapshot
		if err := rows.Scan(
			&s.ID,
			&s.TaskID,
			&s.ProjectID,
			&s.SnapshotDate,
			&s.RemainingEstimate,
			&s.Progress,
			&s.Status,
			&s.CreatedAt,
		); err != nil {
			r.logger.Error("Failed to scan snapshot row", zap.Error(err))
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// ListByTask returns a single task's snapshots ordered by day.
func (r *SnapshotRepository) ListByTask(ctx context.Context, taskID int) ([]model.ProgressSnapshot, error) {
	query := `
        SELECT id, task_id, project_id, snapshot_date, remaining_estimate, progress, status, created_at
        FROM progress_snapshots
        WHERE task_id = $1
        ORDER BY snapshot_date ASC
    `
	rows, err := r.db.Query(ctx, query, taskID)
	if err != nil {
		r.logger.Error("Failed to query task snapshots",
			zap.Error(err),
			zap.Int("task_id", taskID),
		)
		return nil, err
	}
	defer rows.Close()

	snapshots := []model.ProgressSnapshot{}
	for rows.Next() {
		var s model.ProgressSnapshot
		if err := rows.Scan(
			&s.ID,
			&s.TaskID,
			&s.ProjectID,
			&s.SnapshotDate,
			&s.RemainingEstimate,
			&s.Progress,
			&s.Status,
			&s.CreatedAt,
		); err != nil {
			r.logger.Error("Failed to scan snapshot row", zap.Error(err))
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}
