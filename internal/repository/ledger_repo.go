package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skillbridge/backend/internal/models"
)

// LedgerRepo writes and sums the append-only escrow ledger. Entries are
// never updated or deleted.
type LedgerRepo struct {
	pool *pgxpool.Pool
}

func NewLedgerRepo(pool *pgxpool.Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// Append inserts one ledger entry inside the given transaction.
func (r *LedgerRepo) Append(ctx context.Context, tx pgx.Tx, e *models.LedgerEntry) error {
	return tx.QueryRow(ctx, `
		INSERT INTO ledger_entries (id, escrow_id, entry_type, amount, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, e.ID, e.EscrowID, e.EntryType, e.Amount, e.Note).Scan(&e.CreatedAt)
}

// HasDeposit reports whether a deposit entry exists for the escrow.
// Read inside the caller's transaction so the exactly-once deposit
// guard sees locked state.
func (r *LedgerRepo) HasDeposit(ctx context.Context, tx pgx.Tx, escrowID uuid.UUID) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM ledger_entries WHERE escrow_id = $1 AND entry_type = $2)
	`, escrowID, models.LedgerEntryDeposit).Scan(&exists)
	return exists, err
}

// Sums returns per-kind totals for the escrow within the caller's transaction.
func (r *LedgerRepo) Sums(ctx context.Context, tx pgx.Tx, escrowID uuid.UUID) (models.LedgerSums, error) {
	return sumLedger(ctx, tx, escrowID)
}

// SumsByEscrow is the pool-backed variant used outside transactions.
func (r *LedgerRepo) SumsByEscrow(ctx context.Context, escrowID uuid.UUID) (models.LedgerSums, error) {
	return sumLedger(ctx, r.pool, escrowID)
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func sumLedger(ctx context.Context, q queryRower, escrowID uuid.UUID) (models.LedgerSums, error) {
	var s models.LedgerSums
	err := q.QueryRow(ctx, `
		SELECT
			COALESCE(SUM(amount) FILTER (WHERE entry_type = 'deposit'), 0),
			COALESCE(SUM(amount) FILTER (WHERE entry_type = 'release'), 0),
			COALESCE(SUM(amount) FILTER (WHERE entry_type = 'refund'), 0),
			COALESCE(SUM(amount) FILTER (WHERE entry_type = 'fee'), 0)
		FROM ledger_entries WHERE escrow_id = $1
	`, escrowID).Scan(&s.Deposit, &s.Release, &s.Refund, &s.Fee)
	return s, err
}

func (r *LedgerRepo) ListByEscrow(ctx context.Context, escrowID uuid.UUID) ([]*models.LedgerEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, escrow_id, entry_type, amount, note, created_at
		FROM ledger_entries WHERE escrow_id = $1 ORDER BY created_at ASC
	`, escrowID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.LedgerEntry
	for rows.Next() {
		var e models.LedgerEntry
		if err := rows.Scan(&e.ID, &e.EscrowID, &e.EntryType, &e.Amount, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &e)
	}
	return list, rows.Err()
}
