package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skillbridge/backend/internal/models"
)

type ProjectRepo struct {
	pool *pgxpool.Pool
}

func NewProjectRepo(pool *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{pool: pool}
}

const projectColumns = `id, owner_id, title, description, budget, timeline_days, category, status, selected_proposal_id, created_at, updated_at`

func scanProject(row pgx.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(&p.ID, &p.OwnerID, &p.Title, &p.Description, &p.Budget, &p.TimelineDays, &p.Category, &p.Status, &p.SelectedProposalID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepo) Create(ctx context.Context, p *models.Project) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO projects (id, owner_id, title, description, budget, timeline_days, category, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at
	`, p.ID, p.OwnerID, p.Title, p.Description, p.Budget, p.TimelineDays, p.Category, p.Status).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *ProjectRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	return scanProject(r.pool.QueryRow(ctx, `
		SELECT `+projectColumns+` FROM projects WHERE id = $1
	`, id))
}

// GetByIDForUpdate locks the project row for update. Call within a transaction.
func (r *ProjectRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Project, error) {
	return scanProject(tx.QueryRow(ctx, `
		SELECT `+projectColumns+` FROM projects WHERE id = $1 FOR UPDATE
	`, id))
}

// UpdateStatus sets project status. Call after GetByIDForUpdate in the same tx.
func (r *ProjectRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string) error {
	_, err := tx.Exec(ctx, `
		UPDATE projects SET status = $2, updated_at = now() WHERE id = $1
	`, id, status)
	return err
}

// SetSelectedProposal records the accepted proposal and moves the project
// to the given status in one statement.
func (r *ProjectRepo) SetSelectedProposal(ctx context.Context, tx pgx.Tx, id, proposalID uuid.UUID, status string) error {
	_, err := tx.Exec(ctx, `
		UPDATE projects SET selected_proposal_id = $2, status = $3, updated_at = now() WHERE id = $1
	`, id, proposalID, status)
	return err
}

// List returns projects newest-first, optionally filtered by status and category.
func (r *ProjectRepo) List(ctx context.Context, status, category string) ([]*models.Project, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+projectColumns+` FROM projects
		WHERE ($1 = '' OR status = $1) AND ($2 = '' OR category = $2)
		ORDER BY created_at DESC
	`, status, category)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *ProjectRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*models.Project, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+projectColumns+` FROM projects WHERE owner_id = $1 ORDER BY created_at DESC
	`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
