package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skillbridge/backend/internal/models"
)

type EscrowRepo struct {
	pool *pgxpool.Pool
}

func NewEscrowRepo(pool *pgxpool.Pool) *EscrowRepo {
	return &EscrowRepo{pool: pool}
}

const escrowColumns = `id, project_id, amount, status, created_at, updated_at`

func scanEscrow(row pgx.Row) (*models.Escrow, error) {
	var e models.Escrow
	err := row.Scan(&e.ID, &e.ProjectID, &e.Amount, &e.Status, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts the escrow inside the given transaction. The projects
// row lock held by the caller serializes creation, and the unique
// project_id constraint backstops it.
func (r *EscrowRepo) Create(ctx context.Context, tx pgx.Tx, e *models.Escrow) error {
	return tx.QueryRow(ctx, `
		INSERT INTO escrows (id, project_id, amount, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`, e.ID, e.ProjectID, e.Amount, e.Status).Scan(&e.CreatedAt, &e.UpdatedAt)
}

func (r *EscrowRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Escrow, error) {
	return scanEscrow(r.pool.QueryRow(ctx, `
		SELECT `+escrowColumns+` FROM escrows WHERE id = $1
	`, id))
}

func (r *EscrowRepo) GetByProjectID(ctx context.Context, projectID uuid.UUID) (*models.Escrow, error) {
	return scanEscrow(r.pool.QueryRow(ctx, `
		SELECT `+escrowColumns+` FROM escrows WHERE project_id = $1
	`, projectID))
}

// GetByIDForUpdate locks the escrow row for update. Call within a transaction.
func (r *EscrowRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Escrow, error) {
	return scanEscrow(tx.QueryRow(ctx, `
		SELECT `+escrowColumns+` FROM escrows WHERE id = $1 FOR UPDATE
	`, id))
}

// GetByProjectForUpdate locks the project's escrow row for update.
// Returns pgx.ErrNoRows when the project has no escrow yet.
func (r *EscrowRepo) GetByProjectForUpdate(ctx context.Context, tx pgx.Tx, projectID uuid.UUID) (*models.Escrow, error) {
	return scanEscrow(tx.QueryRow(ctx, `
		SELECT `+escrowColumns+` FROM escrows WHERE project_id = $1 FOR UPDATE
	`, projectID))
}

func (r *EscrowRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string) error {
	_, err := tx.Exec(ctx, `
		UPDATE escrows SET status = $2, updated_at = now() WHERE id = $1
	`, id, status)
	return err
}

// UpdateAmountAndStatus is used by deposit only, before any settlement
// entry exists; afterwards the amount is immutable.
func (r *EscrowRepo) UpdateAmountAndStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int, status string) error {
	_, err := tx.Exec(ctx, `
		UPDATE escrows SET amount = $2, status = $3, updated_at = now() WHERE id = $1
	`, id, amount, status)
	return err
}

// ListTerminalSince returns escrows that settled after the given time.
// Used by the reconciliation sweep.
func (r *EscrowRepo) ListTerminalSince(ctx context.Context, since time.Time) ([]*models.Escrow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+escrowColumns+` FROM escrows
		WHERE status IN ($1, $2) AND updated_at >= $3
		ORDER BY updated_at DESC
	`, models.EscrowStatusReleased, models.EscrowStatusRefunded, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Escrow
	for rows.Next() {
		e, err := scanEscrow(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}
