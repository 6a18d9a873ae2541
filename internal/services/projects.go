package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/skillbridge/backend/internal/models"
)

// ProjectService owns the project/proposal state machines up to and
// including freelancer selection. From selection onwards the escrow
// engine drives project status.
type ProjectService struct {
	Pool      TxBeginner
	Projects  ProjectStore
	Proposals ProposalStore
}

func NewProjectService(pool TxBeginner, projects ProjectStore, proposals ProposalStore) *ProjectService {
	return &ProjectService{Pool: pool, Projects: projects, Proposals: proposals}
}

// CreateProject opens a new project owned by the acting client.
func (s *ProjectService) CreateProject(ctx context.Context, actor *models.User, title, description, category string, budget, timelineDays int) (*models.Project, error) {
	if actor.Role != models.RoleClient {
		return nil, fmt.Errorf("%w: only clients can post projects", ErrForbidden)
	}
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if budget <= 0 {
		return nil, fmt.Errorf("%w: budget must be positive", ErrInvalidInput)
	}
	p := &models.Project{
		ID:           uuid.New(),
		OwnerID:      actor.ID,
		Title:        title,
		Description:  description,
		Budget:       budget,
		TimelineDays: timelineDays,
		Category:     category,
		Status:       models.ProjectStatusOpen,
	}
	if err := s.Projects.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// CreateProposal submits a freelancer's bid on an open project.
func (s *ProjectService) CreateProposal(ctx context.Context, actor *models.User, projectID uuid.UUID, price, timelineDays int, message string) (*models.Proposal, error) {
	if actor.Role != models.RoleFreelancer {
		return nil, fmt.Errorf("%w: only freelancers can submit proposals", ErrForbidden)
	}
	if price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	project, err := s.Projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, notFound(err, "project")
	}
	if project.Status != models.ProjectStatusOpen {
		return nil, fmt.Errorf("%w: project is not open", ErrInvalidState)
	}
	p := &models.Proposal{
		ID:           uuid.New(),
		ProjectID:    projectID,
		FreelancerID: actor.ID,
		Price:        price,
		TimelineDays: timelineDays,
		Message:      message,
		Status:       models.ProposalStatusPending,
	}
	if err := s.Proposals.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// SelectFreelancer accepts one proposal and moves the project to
// in_progress. The project row is locked first, so a concurrent second
// selection serializes behind the first and fails the open-status check.
func (s *ProjectService) SelectFreelancer(ctx context.Context, projectID, proposalID uuid.UUID, actor *models.User) (*models.Project, error) {
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
		return nil, fmt.Errorf("%w: only the project owner can select a freelancer", ErrForbidden)
	}
	if project.Status != models.ProjectStatusOpen {
		return nil, fmt.Errorf("%w: project is not open", ErrInvalidState)
	}

	proposal, err := s.Proposals.GetByIDForUpdate(ctx, tx, proposalID)
	if err != nil {
		return nil, notFound(err, "proposal")
	}
	if proposal.ProjectID != project.ID {
		return nil, fmt.Errorf("%w: proposal does not belong to project", ErrInvalidState)
	}
	if proposal.Status != models.ProposalStatusPending {
		return nil, fmt.Errorf("%w: proposal is not pending", ErrInvalidState)
	}

	if err := s.Proposals.UpdateStatus(ctx, tx, proposal.ID, models.ProposalStatusAccepted); err != nil {
		return nil, err
	}
	if err := s.Projects.SetSelectedProposal(ctx, tx, project.ID, proposal.ID, models.ProjectStatusInProgress); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	project.Status = models.ProjectStatusInProgress
	project.SelectedProposalID = &proposal.ID
	return project, nil
}

// CloseProject lets the owner close an open project before selection.
func (s *ProjectService) CloseProject(ctx context.Context, projectID uuid.UUID, actor *models.User) (*models.Project, error) {
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
		return nil, fmt.Errorf("%w: only the project owner can close it", ErrForbidden)
	}
	if project.Status != models.ProjectStatusOpen {
		return nil, fmt.Errorf("%w: project is not open", ErrInvalidState)
	}
	if err := s.Projects.UpdateStatus(ctx, tx, project.ID, models.ProjectStatusClosedRefunded); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	project.Status = models.ProjectStatusClosedRefunded
	return project, nil
}

// WithdrawProposal sets the proposal to withdrawn. Only ownership is
// checked; the proposal's own prior status is not. Withdrawing an
// already-accepted proposal does not roll back the project.
func (s *ProjectService) WithdrawProposal(ctx context.Context, proposalID uuid.UUID, actor *models.User) (*models.Proposal, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	proposal, err := s.Proposals.GetByIDForUpdate(ctx, tx, proposalID)
	if err != nil {
		return nil, notFound(err, "proposal")
	}
	if proposal.FreelancerID != actor.ID {
		return nil, fmt.Errorf("%w: only the proposing freelancer can withdraw", ErrForbidden)
	}
	if err := s.Proposals.UpdateStatus(ctx, tx, proposal.ID, models.ProposalStatusWithdrawn); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	proposal.Status = models.ProposalStatusWithdrawn
	return proposal, nil
}

// UpdateProposalPrice changes a pending bid.
func (s *ProjectService) UpdateProposalPrice(ctx context.Context, proposalID uuid.UUID, price int, actor *models.User) (*models.Proposal, error) {
	if price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", ErrInvalidInput)
	}
	proposal, err := s.Proposals.GetByID(ctx, proposalID)
	if err != nil {
		return nil, notFound(err, "proposal")
	}
	if proposal.FreelancerID != actor.ID {
		return nil, fmt.Errorf("%w: only the proposing freelancer can update it", ErrForbidden)
	}
	if proposal.Status != models.ProposalStatusPending {
		return nil, fmt.Errorf("%w: proposal is not pending", ErrInvalidState)
	}
	if err := s.Proposals.UpdatePrice(ctx, proposalID, price); err != nil {
		return nil, err
	}
	proposal.Price = price
	return proposal, nil
}
