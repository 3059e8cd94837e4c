package repository

import (
	"context"

	"planboard/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type TaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

func (r *TaskRepository) Insert(ctx context.Context, t *model.Task) (int, error) {
	r.logger.Debug("Inserting task",
		zap.Int("project_id", t.ProjectID),
		zap.String("title", t.Title),
		zap.String("status", t.Status),
	)
	query := `
        INSERT INTO tasks (project_id, title, status, progress, start_date, color)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		t.ProjectID,
		t.Title,
		t.Status,
		t.Progress,
		t.StartDate,
		t.Color,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert task",
			zap.Error(err),
			zap.Int("project_id", t.ProjectID),
		)
		return 0, err
	}
	r.logger.Info("Task inserted successfully",
		zap.Int("task_id", id),
		zap.Int("project_id", t.ProjectID),
	)
	return id, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, id int) (*model.Task, error) {
	query := `
        SELECT id, project_id, title, status, progress, start_date, color, created_at, updated_at
        FROM tasks
        WHERE id = $1
    `
	var t model.Task
	err := r.db.QueryRow(ctx, query, id).Scan(
		&t.ID,
		&t.ProjectID,
		&t.Title,
		&t.Status,
		&t.Progress,
		&t.StartDate,
		&t.Color,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get task", zap.Error(err), zap.Int("task_id", id))
		return nil, err
	}
	return &t, nil
}

// ListByProject returns tasks in their stable plan order. The scheduler
// depends on this ordering, do not change it.
func (r *TaskRepository) ListByProject(ctx context.Context, projectID int) ([]model.Task, error) {
	r.logger.Debug("Listing tasks for project", zap.Int("project_id", projectID))
	query := `
        SELECT id, project_id, title, status, progress, start_date, color, created_at, updated_at
        FROM tasks
        WHERE project_id = $1
        ORDER BY id ASC
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query tasks",
			zap.Error(err),
			zap.Int("project_id", projectID),
		)
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(
			&t.ID,
			&t.ProjectID,
			&t.Title,
			&t.Status,
			&t.Progress,
			&t.StartDate,
			&t.Color,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan task row", zap.Error(err))
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateFields applies a partial update. Nil fields are left untouched.
func (r *TaskRepository) UpdateFields(ctx context.Context, id int, title *string, status *string, progress *float64, startDate *string, color *string) error {
	query := `
        UPDATE tasks
        SET title = COALESCE($2, title),
            status = COALESCE($3, status),
            progress = COALESCE($4, progress),
            start_date = COALESCE($5::date, start_date),
            color = COALESCE($6, color),
            updated_at = NOW()
        WHERE id = $1
    `
	tag, err := r.db.Exec(ctx, query, id, title, status, progress, startDate, color)
	if err != nil {
		r.logger.Error("Failed to update task", zap.Error(err), zap.Int("task_id", id))
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	r.logger.Info("Task updated", zap.Int("task_id", id))
	return nil
}

// Dependencies returns the prerequisite map for a project:
// task id -> ids of tasks that must finish first.
func (r *TaskRepository) Dependencies(ctx context.Context, projectID int) (map[int][]int, error) {
	query := `
        SELECT d.task_id, d.depends_on_task_id
        FROM task_dependencies d
        JOIN tasks t ON t.id = d.task_id
        WHERE t.project_id = $1
        ORDER BY d.task_id, d.depends_on_task_id
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query dependencies",
			zap.Error(err),
			zap.Int("project_id", projectID),
		)
		return nil, err
	}
	defer rows.Close()

	deps := map[int][]int{}
	for rows.Next() {
		var taskID, dependsOn int
		if err := rows.Scan(&taskID, &dependsOn); err != nil {
			r.logger.Error("Failed to scan dependency row", zap.Error(err))
			return nil, err
		}
		deps[taskID] = append(deps[taskID], dependsOn)
	}
	return deps, rows.Err()
}

// AddDependency records that taskID cannot start before dependsOnID ends.
func (r *TaskRepository) AddDependency(ctx context.Context, taskID, dependsOnID int) error {
	query := `
        INSERT INTO task_dependencies (task_id, depends_on_task_id)
        VALUES ($1, $2)
        ON CONFLICT DO NOTHING
    `
	_, err := r.db.Exec(ctx, query, taskID, dependsOnID)
	if err != nil {
		r.logger.Error("Failed to add dependency",
			zap.Error(err),
			zap.Int("task_id", taskID),
			zap.Int("depends_on_task_id", dependsOnID),
		)
		return err
	}
	return nil
}
