package repository

import (
	"context"

	"planboard/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type AssignmentRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewAssignmentRepository(db *pgxpool.Pool, logger *zap.Logger) *AssignmentRepository {
	return &AssignmentRepository{db: db, logger: logger}
}

// ListTaskAssignments returns every resource assignment for a project,
// keyed by task id, in stable insertion order per task.
func (r *AssignmentRepository) ListTaskAssignments(ctx context.Context, projectID int) (map[int][]model.ResourceAssignment, error) {
	query := `
        SELECT a.task_id, a.resource_id, a.estimated_days, a.number_of_profiles, a.focus_factor
        FROM task_resources a
        JOIN tasks t ON t.id = a.task_id
        WHERE t.project_id = $1
        ORDER BY a.task_id, a.id
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query task assignments",
			zap.Error(err),
			zap.Int("project_id", projectID),
		)
		return nil, err
	}
	defer rows.Close()

	assignments := map[int][]model.ResourceAssignment{}
	for rows.Next() {
		var a model.ResourceAssignment
		if err := rows.Scan(
			&a.TaskID,
			&a.ResourceID,
			&a.EstimatedDays,
			&a.NumberOfProfiles,
			&a.FocusFactor,
		); err != nil {
			r.logger.Error("Failed to scan assignment row", zap.Error(err))
			return nil, err
		}
		assignments[a.TaskID] = append(assignments[a.TaskID], a)
	}
	return assignments, rows.Err()
}

// ListProjectAssignments returns project-level resource pools in stable order.
func (r *AssignmentRepository) ListProjectAssignments(ctx context.Context, projectID int) ([]model.ProjectResourceAssignment, error) {
	query := `
        SELECT project_id, resource_id, number_of_resources, focus_factor
        FROM project_resources
        WHERE project_id = $1
        ORDER BY id
    `
	rows, err := r.db.Query(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to query project assignments",
			zap.Error(err),
			zap.Int("project_id", projectID),
		)
		return nil, err
	}
	defer rows.Close()

	assignments := []model.ProjectResourceAssignment{}
	for rows.Next() {
		var a model.ProjectResourceAssignment
		if err := rows.Scan(
			&a.ProjectID,
			&a.ResourceID,
			&a.NumberOfResources,
			&a.FocusFactor,
		); err != nil {
			r.logger.Error("Failed to scan project assignment row", zap.Error(err))
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

// UpsertTaskAssignment creates or replaces a resource assignment on a task.
func (r *AssignmentRepository) UpsertTaskAssignment(ctx context.Context, a *model.ResourceAssignment) error {
	query := `
        INSERT INTO task_resources (task_id, resource_id, estimated_days, number_of_profiles, focus_factor)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (task_id, resource_id)
        DO UPDATE SET estimated_days = EXCLUDED.estimated_days,
                      number_of_profiles = EXCLUDED.number_of_profiles,
                      focus_factor = EXCLUDED.focus_factor
    `
	_, err := r.db.Exec(ctx, query,
		a.TaskID,
		a.ResourceID,
		a.EstimatedDays,
		a.NumberOfProfiles,
		a.FocusFactor,
	)
	if err != nil {
		r.logger.Error("Failed to upsert task assignment",
			zap.Error(err),
			zap.Int("task_id", a.TaskID),
			zap.String("resource_id", a.ResourceID),
		)
		return err
	}
	return nil
}
