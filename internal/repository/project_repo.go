package repository

import (
	"context"

	"planboard/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type ProjectRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewProjectRepository(db *pgxpool.Pool, logger *zap.Logger) *ProjectRepository {
	return &ProjectRepository{db: db, logger: logger}
}

func (r *ProjectRepository) Insert(ctx context.Context, p *model.Project) (int, error) {
	r.logger.Debug("Inserting project",
		zap.String("title", p.Title),
		zap.Time("start_date", p.StartDate),
	)
	query := `
        INSERT INTO projects (title, start_date, status)
        VALUES ($1, $2, $3)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		p.Title,
		p.StartDate,
		p.Status,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert project",
			zap.Error(err),
			zap.String("title", p.Title),
		)
		return 0, err
	}
	r.logger.Info("Project inserted successfully", zap.Int("project_id", id))
	return id, nil
}

func (r *ProjectRepository) GetByID(ctx context.Context, id int) (*model.Project, error) {
	query := `
        SELECT id, title, start_date, status, created_at, updated_at
        FROM projects
        WHERE id = $1
    `
	var p model.Project
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Title,
		&p.StartDate,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error("Failed to get project", zap.Error(err), zap.Int("project_id", id))
		return nil, err
	}
	return &p, nil
}

// ListActive returns projects the forecast runner should monitor.
func (r *ProjectRepository) ListActive(ctx context.Context) ([]model.Project, error) {
	query := `
        SELECT id, title, start_date, status, created_at, updated_at
        FROM projects
        WHERE status = 'active'
        ORDER BY id ASC
    `
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to query active projects", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var p model.Project
		if err := rows.Scan(
			&p.ID,
			&p.Title,
			&p.StartDate,
			&p.Status,
			&p.CreatedAt,
			&p.UpdatedAt,
		); err != nil {
			r.logger.Error("Failed to scan project row", zap.Error(err))
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}
