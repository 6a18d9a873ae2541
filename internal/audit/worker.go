// Package audit re-verifies money conservation after settlement. Jobs
// are enqueued in the settling transaction, so a reconcile job exists
// iff the settlement committed.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/skillbridge/backend/internal/models"
)

// EscrowStore is the read-only escrow access the auditors need.
type EscrowStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Escrow, error)
	ListTerminalSince(ctx context.Context, since time.Time) ([]*models.Escrow, error)
}

// LedgerStore sums the ledger outside any transaction.
type LedgerStore interface {
	SumsByEscrow(ctx context.Context, escrowID uuid.UUID) (models.LedgerSums, error)
}

// ReconcileArgs targets one settled escrow.
type ReconcileArgs struct {
	EscrowID uuid.UUID `json:"escrow_id"`
}

func (ReconcileArgs) Kind() string { return "ledger_reconcile" }

// ReconcileWorker checks that a terminal escrow's ledger balances:
// sum(deposit) == sum(release) + sum(refund) + sum(fee).
type ReconcileWorker struct {
	river.WorkerDefaults[ReconcileArgs]
	escrows EscrowStore
	ledger  LedgerStore
	log     *slog.Logger
}

func NewReconcileWorker(escrows EscrowStore, ledger LedgerStore, log *slog.Logger) *ReconcileWorker {
	if log == nil {
		log = slog.Default()
	}
	return &ReconcileWorker{escrows: escrows, ledger: ledger, log: log}
}

func (w *ReconcileWorker) Work(ctx context.Context, job *river.Job[ReconcileArgs]) error {
	escrow, err := w.escrows.GetByID(ctx, job.Args.EscrowID)
	if err != nil {
		return fmt.Errorf("load escrow %s: %w", job.Args.EscrowID, err)
	}
	return reconcile(ctx, w.ledger, escrow, w.log)
}

func reconcile(ctx context.Context, ledger LedgerStore, escrow *models.Escrow, log *slog.Logger) error {
	if !escrow.Terminal() {
		// The settling transaction committed the enqueue and the status
		// change together, so this means a later write re-opened the escrow.
		log.Warn("reconcile on non-terminal escrow", "escrow_id", escrow.ID, "status", escrow.Status)
		return nil
	}
	sums, err := ledger.SumsByEscrow(ctx, escrow.ID)
	if err != nil {
		return fmt.Errorf("sum ledger for escrow %s: %w", escrow.ID, err)
	}
	if !sums.Balanced() {
		log.Error("ledger imbalance detected",
			"escrow_id", escrow.ID,
			"deposit", sums.Deposit,
			"release", sums.Release,
			"refund", sums.Refund,
			"fee", sums.Fee,
		)
		return fmt.Errorf("escrow %s ledger does not balance: deposit=%d settled=%d",
			escrow.ID, sums.Deposit, sums.Release+sums.Refund+sums.Fee)
	}
	if sums.Deposit != escrow.Amount {
		return fmt.Errorf("escrow %s deposit sum %d does not match amount %d", escrow.ID, sums.Deposit, escrow.Amount)
	}
	return nil
}

// SweepArgs triggers a periodic re-check of recently settled escrows.
type SweepArgs struct{}

func (SweepArgs) Kind() string { return "ledger_reconcile_sweep" }

// SweepWindow bounds how far back the periodic sweep looks.
const SweepWindow = 24 * time.Hour

type SweepWorker struct {
	river.WorkerDefaults[SweepArgs]
	escrows EscrowStore
	ledger  LedgerStore
	log     *slog.Logger
}

func NewSweepWorker(escrows EscrowStore, ledger LedgerStore, log *slog.Logger) *SweepWorker {
	if log == nil {
		log = slog.Default()
	}
	return &SweepWorker{escrows: escrows, ledger: ledger, log: log}
}

func (w *SweepWorker) Work(ctx context.Context, job *river.Job[SweepArgs]) error {
	escrows, err := w.escrows.ListTerminalSince(ctx, time.Now().Add(-SweepWindow))
	if err != nil {
		return fmt.Errorf("list settled escrows: %w", err)
	}
	var firstErr error
	for _, e := range escrows {
		if err := reconcile(ctx, w.ledger, e, w.log); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
