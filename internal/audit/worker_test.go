package audit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/skillbridge/backend/internal/models"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

type stubEscrows struct {
	escrows map[uuid.UUID]*models.Escrow
}

func (s *stubEscrows) GetByID(_ context.Context, id uuid.UUID) (*models.Escrow, error) {
	e, ok := s.escrows[id]
	if !ok {
		return nil, errors.New("escrow not found")
	}
	return e, nil
}

func (s *stubEscrows) ListTerminalSince(_ context.Context, _ time.Time) ([]*models.Escrow, error) {
	var out []*models.Escrow
	for _, e := range s.escrows {
		if e.Terminal() {
			out = append(out, e)
		}
	}
	return out, nil
}

type stubLedger struct {
	sums map[uuid.UUID]models.LedgerSums
}

func (s *stubLedger) SumsByEscrow(_ context.Context, escrowID uuid.UUID) (models.LedgerSums, error) {
	return s.sums[escrowID], nil
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func reconcileJob(escrowID uuid.UUID) *river.Job[ReconcileArgs] {
	return &river.Job[ReconcileArgs]{Args: ReconcileArgs{EscrowID: escrowID}}
}

func TestReconcileWorker_Balanced(t *testing.T) {
	id := uuid.New()
	escrows := &stubEscrows{escrows: map[uuid.UUID]*models.Escrow{
		id: {ID: id, Amount: 10000, Status: models.EscrowStatusReleased},
	}}
	ledger := &stubLedger{sums: map[uuid.UUID]models.LedgerSums{
		id: {Deposit: 10000, Release: 8800, Fee: 1200},
	}}

	w := NewReconcileWorker(escrows, ledger, nil)
	if err := w.Work(context.Background(), reconcileJob(id)); err != nil {
		t.Fatalf("Work: %v", err)
	}
}

func TestReconcileWorker_Imbalance(t *testing.T) {
	id := uuid.New()
	escrows := &stubEscrows{escrows: map[uuid.UUID]*models.Escrow{
		id: {ID: id, Amount: 10000, Status: models.EscrowStatusReleased},
	}}
	// 1000 went missing between deposit and settlement.
	ledger := &stubLedger{sums: map[uuid.UUID]models.LedgerSums{
		id: {Deposit: 10000, Release: 7800, Fee: 1200},
	}}

	w := NewReconcileWorker(escrows, ledger, nil)
	if err := w.Work(context.Background(), reconcileJob(id)); err == nil {
		t.Fatal("expected an error on ledger imbalance")
	}
}

func TestReconcileWorker_DepositMismatch(t *testing.T) {
	id := uuid.New()
	// The ledger balances internally but does not match the escrow amount.
	escrows := &stubEscrows{escrows: map[uuid.UUID]*models.Escrow{
		id: {ID: id, Amount: 10000, Status: models.EscrowStatusRefunded},
	}}
	ledger := &stubLedger{sums: map[uuid.UUID]models.LedgerSums{
		id: {Deposit: 9000, Refund: 9000},
	}}

	w := NewReconcileWorker(escrows, ledger, nil)
	if err := w.Work(context.Background(), reconcileJob(id)); err == nil {
		t.Fatal("expected an error on deposit mismatch")
	}
}

func TestReconcileWorker_NonTerminalSkipped(t *testing.T) {
	id := uuid.New()
	escrows := &stubEscrows{escrows: map[uuid.UUID]*models.Escrow{
		id: {ID: id, Amount: 10000, Status: models.EscrowStatusDisputed},
	}}
	ledger := &stubLedger{sums: map[uuid.UUID]models.LedgerSums{}}

	w := NewReconcileWorker(escrows, ledger, nil)
	if err := w.Work(context.Background(), reconcileJob(id)); err != nil {
		t.Fatalf("non-terminal escrow should be skipped, got %v", err)
	}
}

func TestSweepWorker(t *testing.T) {
	good := uuid.New()
	bad := uuid.New()
	open := uuid.New()
	escrows := &stubEscrows{escrows: map[uuid.UUID]*models.Escrow{
		good: {ID: good, Amount: 5000, Status: models.EscrowStatusReleased},
		bad:  {ID: bad, Amount: 5000, Status: models.EscrowStatusRefunded},
		open: {ID: open, Amount: 5000, Status: models.EscrowStatusHeld},
	}}
	ledger := &stubLedger{sums: map[uuid.UUID]models.LedgerSums{
		good: {Deposit: 5000, Release: 4400, Fee: 600},
		bad:  {Deposit: 5000, Refund: 4000},
	}}

	w := NewSweepWorker(escrows, ledger, nil)
	err := w.Work(context.Background(), &river.Job[SweepArgs]{})
	if err == nil {
		t.Fatal("sweep should surface the imbalanced escrow")
	}
}
