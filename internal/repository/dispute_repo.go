package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skillbridge/backend/internal/models"
)

type DisputeRepo struct {
	pool *pgxpool.Pool
}

func NewDisputeRepo(pool *pgxpool.Pool) *DisputeRepo {
	return &DisputeRepo{pool: pool}
}

const disputeColumns = `id, project_id, raised_by_id, reason, evidence_files, resolved_by_id, resolved_at, note, created_at`

func scanDispute(row pgx.Row) (*models.Dispute, error) {
	var d models.Dispute
	err := row.Scan(&d.ID, &d.ProjectID, &d.RaisedByID, &d.Reason, &d.EvidenceFiles, &d.ResolvedByID, &d.ResolvedAt, &d.Note, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts the dispute inside the caller's transaction.
func (r *DisputeRepo) Create(ctx context.Context, tx pgx.Tx, d *models.Dispute) error {
	if d.EvidenceFiles == nil {
		d.EvidenceFiles = []string{}
	}
	return tx.QueryRow(ctx, `
		INSERT INTO disputes (id, project_id, raised_by_id, reason, evidence_files)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, d.ID, d.ProjectID, d.RaisedByID, d.Reason, d.EvidenceFiles).Scan(&d.CreatedAt)
}

func (r *DisputeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	return scanDispute(r.pool.QueryRow(ctx, `
		SELECT `+disputeColumns+` FROM disputes WHERE id = $1
	`, id))
}

// GetByIDForUpdate locks the dispute row for update. Call within a
// transaction, after the project lock.
func (r *DisputeRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Dispute, error) {
	return scanDispute(tx.QueryRow(ctx, `
		SELECT `+disputeColumns+` FROM disputes WHERE id = $1 FOR UPDATE
	`, id))
}

// Resolve stamps the dispute with the resolver, timestamp and note.
func (r *DisputeRepo) Resolve(ctx context.Context, tx pgx.Tx, id, resolverID uuid.UUID, note string, at time.Time) error {
	_, err := tx.Exec(ctx, `
		UPDATE disputes SET resolved_by_id = $2, resolved_at = $3, note = $4 WHERE id = $1
	`, id, resolverID, at, note)
	return err
}

func (r *DisputeRepo) List(ctx context.Context) ([]*models.Dispute, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+disputeColumns+` FROM disputes ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Dispute
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}

func (r *DisputeRepo) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Dispute, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+disputeColumns+` FROM disputes WHERE project_id = $1 ORDER BY created_at DESC
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Dispute
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, d)
	}
	return list, rows.Err()
}
