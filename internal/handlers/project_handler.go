package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/skillbridge/backend/internal/middleware"
	"github.com/skillbridge/backend/internal/models"
)

// ProjectAPI is the write-side project/proposal surface used by the handler.
type ProjectAPI interface {
	CreateProject(ctx context.Context, actor *models.User, title, description, category string, budget, timelineDays int) (*models.Project, error)
	CreateProposal(ctx context.Context, actor *models.User, projectID uuid.UUID, price, timelineDays int, message string) (*models.Proposal, error)
	SelectFreelancer(ctx context.Context, projectID, proposalID uuid.UUID, actor *models.User) (*models.Project, error)
	CloseProject(ctx context.Context, projectID uuid.UUID, actor *models.User) (*models.Project, error)
	WithdrawProposal(ctx context.Context, proposalID uuid.UUID, actor *models.User) (*models.Proposal, error)
	UpdateProposalPrice(ctx context.Context, proposalID uuid.UUID, price int, actor *models.User) (*models.Proposal, error)
}

// ProjectReader is the read-side project access for listings.
type ProjectReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	List(ctx context.Context, status, category string) ([]*models.Project, error)
}

// ProposalReader lists bids.
type ProposalReader interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Proposal, error)
}

// ProjectHandler serves /api/v1/projects and /api/v1/proposals endpoints.
type ProjectHandler struct {
	Service   ProjectAPI
	Projects  ProjectReader
	Proposals ProposalReader
	Logger    *slog.Logger
}

// --- POST /api/v1/projects ---

type createProjectRequest struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Budget       int    `json:"budget"`
	TimelineDays int    `json:"timeline_days"`
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	project, err := h.Service.CreateProject(r.Context(), user, req.Title, req.Description, req.Category, req.Budget, req.TimelineDays)
	if err != nil {
		writeServiceError(w, h.Logger, "create project", err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// --- GET /api/v1/projects ---

// ListProjects supports ?status= and ?category= filters.
func (h *ProjectHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Projects.List(r.Context(), r.URL.Query().Get("status"), r.URL.Query().Get("category"))
	if err != nil {
		h.Logger.Error("list projects", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// --- GET /api/v1/projects/{id} ---

func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	project, err := h.Projects.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "project not found")
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// --- POST /api/v1/projects/{id}/close ---

func (h *ProjectHandler) CloseProject(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	project, err := h.Service.CloseProject(r.Context(), id, user)
	if err != nil {
		writeServiceError(w, h.Logger, "close project", err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// --- POST /api/v1/projects/{id}/select-freelancer ---

type selectFreelancerRequest struct {
	ProposalID string `json:"proposal_id"`
}

func (h *ProjectHandler) SelectFreelancer(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	projectID, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req selectFreelancerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	proposalID, err := uuid.Parse(req.ProposalID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid proposal_id")
		return
	}

	project, err := h.Service.SelectFreelancer(r.Context(), projectID, proposalID, user)
	if err != nil {
		writeServiceError(w, h.Logger, "select freelancer", err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// --- POST /api/v1/projects/{id}/proposals ---

type createProposalRequest struct {
	Price        int    `json:"price"`
	TimelineDays int    `json:"timeline_days"`
	Message      string `json:"message"`
}

func (h *ProjectHandler) CreateProposal(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	projectID, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	var req createProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	proposal, err := h.Service.CreateProposal(r.Context(), user, projectID, req.Price, req.TimelineDays, req.Message)
	if err != nil {
		writeServiceError(w, h.Logger, "create proposal", err)
		return
	}
	writeJSON(w, http.StatusCreated, proposal)
}

// --- GET /api/v1/projects/{id}/proposals ---

func (h *ProjectHandler) ListProposals(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	proposals, err := h.Proposals.ListByProject(r.Context(), projectID)
	if err != nil {
		h.Logger.Error("list proposals", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, proposals)
}

// --- POST /api/v1/proposals/{id}/withdraw ---

func (h *ProjectHandler) WithdrawProposal(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid proposal id")
		return
	}
	proposal, err := h.Service.WithdrawProposal(r.Context(), id, user)
	if err != nil {
		writeServiceError(w, h.Logger, "withdraw proposal", err)
		return
	}
	writeJSON(w, http.StatusOK, proposal)
}

// --- PATCH /api/v1/proposals/{id} ---

type updateProposalRequest struct {
	Price int `json:"price"`
}

func (h *ProjectHandler) UpdateProposal(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid proposal id")
		return
	}

	var req updateProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	proposal, err := h.Service.UpdateProposalPrice(r.Context(), id, req.Price, user)
	if err != nil {
		writeServiceError(w, h.Logger, "update proposal", err)
		return
	}
	writeJSON(w, http.StatusOK, proposal)
}
