package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bisnisbaik/backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProjectRepository handles database operations for user website projects.
type ProjectRepository struct {
	db *pgxpool.Pool
}

// NewProjectRepository creates a new ProjectRepository.
func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: db}
}

const projectColumns = `id, user_id, name, description, template_id,
	customizations, status, published_url, created_at, updated_at`

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	var custom []byte
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.Description, &p.TemplateID,
		&custom, &p.Status, &p.PublishedURL, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}
	if len(custom) > 0 {
		if err := json.Unmarshal(custom, &p.Customizations); err != nil {
			return nil, fmt.Errorf("failed to decode customizations: %w", err)
		}
	}
	return &p, nil
}

// Create inserts a new project.
func (r *ProjectRepository) Create(ctx context.Context, p *domain.Project) error {
	custom, err := json.Marshal(p.Customizations)
	if err != nil {
		return fmt.Errorf("failed to encode customizations: %w", err)
	}
	if p.Customizations == nil {
		custom = []byte(`{}`)
	}
	query := `
		INSERT INTO user_projects (id, user_id, name, description, template_id,
			customizations, status, published_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = r.db.Exec(ctx, query,
		p.ID, p.UserID, p.Name, p.Description, p.TemplateID,
		custom, p.Status, p.PublishedURL, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// ListByUser returns all of a user's projects, newest first.
func (r *ProjectRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM user_projects WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// LatestByUser returns the user's most recent project, or nil.
func (r *ProjectRepository) LatestByUser(ctx context.Context, userID string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM user_projects WHERE user_id = $1 ORDER BY created_at DESC LIMIT 1`
	return scanProject(r.db.QueryRow(ctx, query, userID))
}

// FindByUserAndTemplate returns the user's project for a template, or nil.
func (r *ProjectRepository) FindByUserAndTemplate(ctx context.Context, userID, templateID string) (*domain.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM user_projects WHERE user_id = $1 AND template_id = $2
		ORDER BY created_at DESC LIMIT 1
	`
	return scanProject(r.db.QueryRow(ctx, query, userID, templateID))
}
