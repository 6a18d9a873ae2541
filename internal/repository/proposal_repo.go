package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skillbridge/backend/internal/models"
)

type ProposalRepo struct {
	pool *pgxpool.Pool
}

func NewProposalRepo(pool *pgxpool.Pool) *ProposalRepo {
	return &ProposalRepo{pool: pool}
}

const proposalColumns = `id, project_id, freelancer_id, price, timeline_days, message, status, created_at`

func scanProposal(row pgx.Row) (*models.Proposal, error) {
	var p models.Proposal
	err := row.Scan(&p.ID, &p.ProjectID, &p.FreelancerID, &p.Price, &p.TimelineDays, &p.Message, &p.Status, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProposalRepo) Create(ctx context.Context, p *models.Proposal) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO proposals (id, project_id, freelancer_id, price, timeline_days, message, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, p.ID, p.ProjectID, p.FreelancerID, p.Price, p.TimelineDays, p.Message, p.Status).Scan(&p.CreatedAt)
}

func (r *ProposalRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	return scanProposal(r.pool.QueryRow(ctx, `
		SELECT `+proposalColumns+` FROM proposals WHERE id = $1
	`, id))
}

// GetByIDTx reads a proposal inside the given transaction so checks run
// against state covered by the caller's project lock.
func (r *ProposalRepo) GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Proposal, error) {
	return scanProposal(tx.QueryRow(ctx, `
		SELECT `+proposalColumns+` FROM proposals WHERE id = $1
	`, id))
}

// GetByIDForUpdate locks the proposal row for update. Call within a transaction.
func (r *ProposalRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Proposal, error) {
	return scanProposal(tx.QueryRow(ctx, `
		SELECT `+proposalColumns+` FROM proposals WHERE id = $1 FOR UPDATE
	`, id))
}

func (r *ProposalRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string) error {
	_, err := tx.Exec(ctx, `UPDATE proposals SET status = $2 WHERE id = $1`, id, status)
	return err
}

// UpdatePrice changes the bid while the proposal is still pending.
func (r *ProposalRepo) UpdatePrice(ctx context.Context, id uuid.UUID, price int) error {
	_, err := r.pool.Exec(ctx, `UPDATE proposals SET price = $2 WHERE id = $1`, id, price)
	return err
}

func (r *ProposalRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Proposal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+proposalColumns+` FROM proposals WHERE project_id = $1 ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func (r *ProposalRepo) ListByFreelancer(ctx context.Context, freelancerID uuid.UUID) ([]*models.Proposal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+proposalColumns+` FROM proposals WHERE freelancer_id = $1 ORDER BY created_at DESC
	`, freelancerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, rows.Err()
}
