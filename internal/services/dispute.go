package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/skillbridge/backend/internal/models"
)

// DisputeService raises and adjudicates disputes. Resolution amounts
// must reconcile exactly against the escrow and its ledger; partial or
// short settlement is rejected before any write.
type DisputeService struct {
	Pool      TxBeginner
	Projects  ProjectStore
	Proposals ProposalStore
	Escrows   EscrowStore
	Ledger    LedgerStore
	Disputes  DisputeStore

	InsertReconcile InsertReconcileTxFunc
}

func NewDisputeService(pool TxBeginner, projects ProjectStore, proposals ProposalStore, escrows EscrowStore, ledger LedgerStore, disputes DisputeStore) *DisputeService {
	return &DisputeService{
		Pool:      pool,
		Projects:  projects,
		Proposals: proposals,
		Escrows:   escrows,
		Ledger:    ledger,
		Disputes:  disputes,
	}
}

// Create raises a dispute against an active project. Only the owner or
// the selected freelancer may raise one; the escrow's disputed status
// gates a second open dispute.
func (s *DisputeService) Create(ctx context.Context, projectID uuid.UUID, raiser *models.User, reason string, evidenceFiles []string) (*models.Dispute, error) {
	if reason == "" {
		return nil, fmt.Errorf("%w: reason is required", ErrInvalidInput)
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

	participant := project.OwnerID == raiser.ID
	if !participant && project.SelectedProposalID != nil {
		proposal, err := s.Proposals.GetByIDTx(ctx, tx, *project.SelectedProposalID)
		if err != nil {
			return nil, notFound(err, "selected proposal")
		}
		participant = proposal.FreelancerID == raiser.ID
	}
	if !participant {
		return nil, fmt.Errorf("%w: only project participants can raise a dispute", ErrForbidden)
	}

	if project.Status != models.ProjectStatusInProgress && project.Status != models.ProjectStatusAwaitingReview {
		return nil, fmt.Errorf("%w: project is not in a disputable state", ErrInvalidState)
	}

	escrow, err := s.Escrows.GetByProjectForUpdate(ctx, tx, projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: escrow is not funded", ErrInvalidState)
		}
		return nil, err
	}
	if escrow.Status != models.EscrowStatusPendingAdmin && escrow.Status != models.EscrowStatusHeld {
		return nil, fmt.Errorf("%w: escrow is not under hold or review", ErrInvalidState)
	}

	if err := s.Escrows.UpdateStatus(ctx, tx, escrow.ID, models.EscrowStatusDisputed); err != nil {
		return nil, err
	}
	if err := s.Projects.UpdateStatus(ctx, tx, project.ID, models.ProjectStatusDisputed); err != nil {
		return nil, err
	}

	d := &models.Dispute{
		ID:            uuid.New(),
		ProjectID:     projectID,
		RaisedByID:    raiser.ID,
		Reason:        reason,
		EvidenceFiles: evidenceFiles,
	}
	if err := s.Disputes.Create(ctx, tx, d); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// Resolve adjudicates a dispute. releaseAmount and refundAmount must be
// non-negative and sum exactly to the escrow amount; the deposit sum is
// re-read from the ledger before any entry is written. The escrow's
// disputed status is consumed by the first resolution, so a second
// resolve attempt fails with ErrInvalidState.
func (s *DisputeService) Resolve(ctx context.Context, disputeID uuid.UUID, action string, releaseAmount, refundAmount int, note string, resolver *models.User) (*models.Dispute, error) {
	if resolver.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: admin role required", ErrForbidden)
	}
	switch action {
	case models.DisputeActionRelease, models.DisputeActionRefund, models.DisputeActionSplit:
	default:
		return nil, fmt.Errorf("%w: unknown dispute action %q", ErrInvalidInput, action)
	}
	if releaseAmount < 0 || refundAmount < 0 {
		return nil, fmt.Errorf("%w: settlement amounts must be non-negative", ErrInvalidInput)
	}

	dispute, err := s.Disputes.GetByID(ctx, disputeID)
	if err != nil {
		return nil, notFound(err, "dispute")
	}

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	project, err := s.Projects.GetByIDForUpdate(ctx, tx, dispute.ProjectID)
	if err != nil {
		return nil, notFound(err, "project")
	}
	dispute, err = s.Disputes.GetByIDForUpdate(ctx, tx, disputeID)
	if err != nil {
		return nil, notFound(err, "dispute")
	}

	escrow, err := s.Escrows.GetByProjectForUpdate(ctx, tx, project.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: escrow is not funded", ErrInvalidState)
		}
		return nil, err
	}
	if escrow.Status != models.EscrowStatusDisputed {
		return nil, fmt.Errorf("%w: escrow is not disputed", ErrInvalidState)
	}

	if releaseAmount+refundAmount != escrow.Amount {
		return nil, fmt.Errorf("%w: settlement must reconcile exactly with the escrow amount", ErrInvalidInput)
	}
	// The action dictates which side must be zero; the sum check alone
	// would let money vanish (e.g. action=release dropping refundAmount).
	switch action {
	case models.DisputeActionRelease:
		if refundAmount != 0 {
			return nil, fmt.Errorf("%w: release requires a zero refund amount", ErrInvalidInput)
		}
	case models.DisputeActionRefund:
		if releaseAmount != 0 {
			return nil, fmt.Errorf("%w: refund requires a zero release amount", ErrInvalidInput)
		}
	case models.DisputeActionSplit:
		if releaseAmount == 0 || refundAmount == 0 {
			return nil, fmt.Errorf("%w: split requires both amounts to be positive", ErrInvalidInput)
		}
	}

	sums, err := s.Ledger.Sums(ctx, tx, escrow.ID)
	if err != nil {
		return nil, err
	}
	if sums.Deposit != escrow.Amount {
		return nil, fmt.Errorf("%w: ledger deposits do not match the escrow amount", ErrInvalidState)
	}

	if releaseAmount > 0 {
		if err := s.Ledger.Append(ctx, tx, &models.LedgerEntry{
			ID:        uuid.New(),
			EscrowID:  escrow.ID,
			EntryType: models.LedgerEntryRelease,
			Amount:    releaseAmount,
			Note:      "dispute resolution: " + note,
		}); err != nil {
			return nil, err
		}
	}
	if refundAmount > 0 {
		if err := s.Ledger.Append(ctx, tx, &models.LedgerEntry{
			ID:        uuid.New(),
			EscrowID:  escrow.ID,
			EntryType: models.LedgerEntryRefund,
			Amount:    refundAmount,
			Note:      "dispute resolution: " + note,
		}); err != nil {
			return nil, err
		}
	}

	escrowStatus := models.EscrowStatusReleased
	projectStatus := models.ProjectStatusCompleted
	if action == models.DisputeActionRefund {
		escrowStatus = models.EscrowStatusRefunded
		projectStatus = models.ProjectStatusClosedRefunded
	}
	if err := s.Escrows.UpdateStatus(ctx, tx, escrow.ID, escrowStatus); err != nil {
		return nil, err
	}
	if err := s.Projects.UpdateStatus(ctx, tx, project.ID, projectStatus); err != nil {
		return nil, err
	}

	resolvedAt := time.Now().UTC()
	if err := s.Disputes.Resolve(ctx, tx, dispute.ID, resolver.ID, note, resolvedAt); err != nil {
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

	dispute.ResolvedByID = &resolver.ID
	dispute.ResolvedAt = &resolvedAt
	dispute.Note = note
	return dispute, nil
}
