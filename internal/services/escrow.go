package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/skillbridge/backend/internal/models"
)

// EscrowService is the money-conservation core. Every mutation locks
// the project row (SELECT FOR UPDATE) before reading any mutable field,
// re-validates preconditions against the locked state, and commits
// escrow status changes and ledger entries in one transaction.
type EscrowService struct {
	Pool      TxBeginner
	Projects  ProjectStore
	Proposals ProposalStore
	Escrows   EscrowStore
	Ledger    LedgerStore
	Settings  SettingStore

	// InsertReconcile enqueues a post-settlement ledger audit job in the
	// same transaction. Optional.
	InsertReconcile InsertReconcileTxFunc
}

func NewEscrowService(pool TxBeginner, projects ProjectStore, proposals ProposalStore, escrows EscrowStore, ledger LedgerStore, settings SettingStore) *EscrowService {
	return &EscrowService{
		Pool:      pool,
		Projects:  projects,
		Proposals: proposals,
		Escrows:   escrows,
		Ledger:    ledger,
		Settings:  settings,
	}
}

// Deposit funds the project's escrow exactly once. amount defaults to
// the selected proposal's price when nil. A second deposit on a funded
// project fails with ErrInvalidState and writes nothing.
func (s *EscrowService) Deposit(ctx context.Context, projectID uuid.UUID, amount *int, actor *models.User) (*models.Escrow, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	project, err := s.Projects.GetByIDForUpdate(ctx, tx, projectID)
	if err != nil {
		return nil, notFound(err, "project")
	}
	if project.OwnerID != actor.ID {
		return nil, fmt.Errorf("%w: only the project owner can fund escrow", ErrForbidden)
	}
	if project.Status != models.ProjectStatusInProgress || project.SelectedProposalID == nil {
		return nil, fmt.Errorf("%w: project must be in progress with a selected proposal", ErrInvalidState)
	}

	amt := 0
	if amount != nil {
		amt = *amount
	} else {
		proposal, err := s.Proposals.GetByIDTx(ctx, tx, *project.SelectedProposalID)
		if err != nil {
			return nil, notFound(err, "selected proposal")
		}
		amt = proposal.Price
	}
	if amt <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	escrow, err := s.Escrows.GetByProjectForUpdate(ctx, tx, projectID)
	switch {
	case err == nil:
		if escrow.Status == models.EscrowStatusReleased || escrow.Status == models.EscrowStatusRefunded {
			return nil, fmt.Errorf("%w: escrow already settled", ErrInvalidState)
		}
		funded, err := s.Ledger.HasDeposit(ctx, tx, escrow.ID)
		if err != nil {
			return nil, err
		}
		if funded {
			return nil, fmt.Errorf("%w: escrow already funded", ErrInvalidState)
		}
		if err := s.Escrows.UpdateAmountAndStatus(ctx, tx, escrow.ID, amt, models.EscrowStatusPendingAdmin); err != nil {
			return nil, err
		}
		escrow.Amount = amt
		escrow.Status = models.EscrowStatusPendingAdmin
	case errors.Is(err, pgx.ErrNoRows):
		escrow = &models.Escrow{
			ID:        uuid.New(),
			ProjectID: projectID,
			Amount:    amt,
			Status:    models.EscrowStatusPendingAdmin,
		}
		if err := s.Escrows.Create(ctx, tx, escrow); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	if err := s.Ledger.Append(ctx, tx, &models.LedgerEntry{
		ID:        uuid.New(),
		EscrowID:  escrow.ID,
		EntryType: models.LedgerEntryDeposit,
		Amount:    amt,
		Note:      "client deposit",
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return escrow, nil
}

// Approve moves a pending escrow to held. Admin-only; approval is a
// gate, not a money movement, so no ledger entry is written.
func (s *EscrowService) Approve(ctx context.Context, escrowID uuid.UUID, actor *models.User) (*models.Escrow, error) {
	if actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	escrow, err := s.Escrows.GetByIDForUpdate(ctx, tx, escrowID)
	if err != nil {
		return nil, notFound(err, "escrow")
	}
	if escrow.Status != models.EscrowStatusPendingAdmin {
		return nil, fmt.Errorf("%w: escrow is not awaiting approval", ErrInvalidState)
	}
	if err := s.Escrows.UpdateStatus(ctx, tx, escrow.ID, models.EscrowStatusHeld); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	escrow.Status = models.EscrowStatusHeld
	return escrow, nil
}

// SubmitResult is the freelancer's hand-off: project moves to awaiting
// client review. Requires a held escrow.
func (s *EscrowService) SubmitResult(ctx context.Context, projectID uuid.UUID, actor *models.User) (*models.Project, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	project, err := s.Projects.GetByIDForUpdate(ctx, tx, projectID)
	if err != nil {
		return nil, notFound(err, "project")
	}
	if project.SelectedProposalID == nil {
		return nil, fmt.Errorf("%w: project has no selected proposal", ErrInvalidState)
	}
	proposal, err := s.Proposals.GetByIDTx(ctx, tx, *project.SelectedProposalID)
	if err != nil {
		return nil, notFound(err, "selected proposal")
	}
	if proposal.FreelancerID != actor.ID {
		return nil, fmt.Errorf("%w: only the selected freelancer can submit the result", ErrForbidden)
	}
	if project.Status != models.ProjectStatusInProgress {
		return nil, fmt.Errorf("%w: project is not in progress", ErrInvalidState)
	}

	escrow, err := s.Escrows.GetByProjectForUpdate(ctx, tx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: escrow is not funded", ErrInvalidState)
		}
		return nil, err
	}
	if escrow.Status != models.EscrowStatusHeld {
		return nil, fmt.Errorf("%w: escrow is not held", ErrInvalidState)
	}

	if err := s.Projects.UpdateStatus(ctx, tx, project.ID, models.ProjectStatusAwaitingReview); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	project.Status = models.ProjectStatusAwaitingReview
	return project, nil
}

// ConfirmCompletion settles the escrow on the happy path: fee to the
// platform, payout to the freelancer. feePct overrides the platform
// default when non-nil. Entries are appended fee first, then release;
// zero-amount entries are skipped since ledger amounts are strictly
// positive.
func (s *EscrowService) ConfirmCompletion(ctx context.Context, projectID uuid.UUID, feePct *int, actor *models.User) (*models.Escrow, error) {
	pct, err := s.feePct(ctx, feePct)
	if err != nil {
		return nil, err
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	project, err := s.Projects.GetByIDForUpdate(ctx, tx, projectID)
	if err != nil {
		return nil, notFound(err, "project")
	}
	if project.OwnerID != actor.ID {
		return nil, fmt.Errorf("%w: only the project owner can confirm completion", ErrForbidden)
	}
	if project.Status != models.ProjectStatusAwaitingReview {
		return nil, fmt.Errorf("%w: project is not awaiting review", ErrInvalidState)
	}

	escrow, err := s.Escrows.GetByProjectForUpdate(ctx, tx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: escrow is not funded", ErrInvalidState)
		}
		return nil, err
	}
	if escrow.Status != models.EscrowStatusHeld {
		return nil, fmt.Errorf("%w: escrow is not held", ErrInvalidState)
	}

	fee := ComputeFee(escrow.Amount, pct)
	payout := escrow.Amount - fee
	if payout < 0 {
		return nil, fmt.Errorf("%w: fee exceeds escrow amount", ErrInvalidState)
	}

	if fee > 0 {
		if err := s.Ledger.Append(ctx, tx, &models.LedgerEntry{
			ID:        uuid.New(),
			EscrowID:  escrow.ID,
			EntryType: models.LedgerEntryFee,
			Amount:    fee,
			Note:      fmt.Sprintf("platform fee %d%%", pct),
		}); err != nil {
			return nil, err
		}
	}
	if payout > 0 {
		if err := s.Ledger.Append(ctx, tx, &models.LedgerEntry{
			ID:        uuid.New(),
			EscrowID:  escrow.ID,
			EntryType: models.LedgerEntryRelease,
			Amount:    payout,
			Note:      "released to freelancer",
		}); err != nil {
			return nil, err
		}
	}

	if err := s.Escrows.UpdateStatus(ctx, tx, escrow.ID, models.EscrowStatusReleased); err != nil {
		return nil, err
	}
	if err := s.Projects.UpdateStatus(ctx, tx, project.ID, models.ProjectStatusCompleted); err != nil {
		return nil, err
	}
	if s.InsertReconcile != nil {
		if err := s.InsertReconcile(ctx, tx, escrow.ID); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	escrow.Status = models.EscrowStatusReleased
	return escrow, nil
}

func (s *EscrowService) feePct(ctx context.Context, override *int) (int, error) {
	if override != nil {
		if *override < 0 || *override > 100 {
			return 0, fmt.Errorf("%w: fee percentage must be between 0 and 100", ErrInvalidInput)
		}
		return *override, nil
	}
	pct, err := s.Settings.PlatformFeePct(ctx)
	if err != nil {
		return 0, err
	}
	return pct, nil
}
