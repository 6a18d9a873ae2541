package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/skillbridge/backend/internal/models"
)

// TxBeginner abstracts pgxpool.Pool so tests can run without a database.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// ProjectStore is the minimal project repository interface for the engine.
type ProjectStore interface {
	Create(ctx context.Context, p *models.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Project, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string) error
	SetSelectedProposal(ctx context.Context, tx pgx.Tx, id, proposalID uuid.UUID, status string) error
}

// ProposalStore is the minimal proposal repository interface for the engine.
type ProposalStore interface {
	Create(ctx context.Context, p *models.Proposal) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error)
	GetByIDTx(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Proposal, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Proposal, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string) error
	UpdatePrice(ctx context.Context, id uuid.UUID, price int) error
}

// EscrowStore is the minimal escrow repository interface for the engine.
type EscrowStore interface {
	Create(ctx context.Context, tx pgx.Tx, e *models.Escrow) error
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Escrow, error)
	GetByProjectForUpdate(ctx context.Context, tx pgx.Tx, projectID uuid.UUID) (*models.Escrow, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status string) error
	UpdateAmountAndStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, amount int, status string) error
}

// LedgerStore appends to and sums the escrow ledger.
type LedgerStore interface {
	Append(ctx context.Context, tx pgx.Tx, e *models.LedgerEntry) error
	HasDeposit(ctx context.Context, tx pgx.Tx, escrowID uuid.UUID) (bool, error)
	Sums(ctx context.Context, tx pgx.Tx, escrowID uuid.UUID) (models.LedgerSums, error)
}

// DisputeStore is the minimal dispute repository interface for the engine.
type DisputeStore interface {
	Create(ctx context.Context, tx pgx.Tx, d *models.Dispute) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*models.Dispute, error)
	Resolve(ctx context.Context, tx pgx.Tx, id, resolverID uuid.UUID, note string, at time.Time) error
}

// SettingStore reads the platform commission percentage.
type SettingStore interface {
	PlatformFeePct(ctx context.Context) (int, error)
}

// InsertReconcileTxFunc enqueues a ledger reconciliation job for the
// escrow within the given transaction. Provided by main using
// river.Client.InsertTx; nil disables reconciliation jobs (tests).
type InsertReconcileTxFunc func(ctx context.Context, tx pgx.Tx, escrowID uuid.UUID) error
