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

// EscrowAPI is the escrow state machine surface used by the handler.
type EscrowAPI interface {
	Deposit(ctx context.Context, projectID uuid.UUID, amount *int, actor *models.User) (*models.Escrow, error)
	Approve(ctx context.Context, escrowID uuid.UUID, actor *models.User) (*models.Escrow, error)
	SubmitResult(ctx context.Context, projectID uuid.UUID, actor *models.User) (*models.Project, error)
	ConfirmCompletion(ctx context.Context, projectID uuid.UUID, feePct *int, actor *models.User) (*models.Escrow, error)
}

// EscrowReader fetches the escrow for a project.
type EscrowReader interface {
	GetByProjectID(ctx context.Context, projectID uuid.UUID) (*models.Escrow, error)
}

// LedgerReader lists the ledger for an escrow.
type LedgerReader interface {
	ListByEscrow(ctx context.Context, escrowID uuid.UUID) ([]*models.LedgerEntry, error)
}

// EscrowHandler serves the escrow lifecycle endpoints.
type EscrowHandler struct {
	Service EscrowAPI
	Escrows EscrowReader
	Ledger  LedgerReader
	Logger  *slog.Logger
}

// --- POST /api/v1/projects/{id}/escrow/deposit ---

type depositRequest struct {
	// Amount is optional; nil defaults to the selected proposal's price.
	Amount *int `json:"amount"`
}

func (h *EscrowHandler) Deposit(w http.ResponseWriter, r *http.Request) {
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

	var req depositRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}

	escrow, err := h.Service.Deposit(r.Context(), projectID, req.Amount, user)
	if err != nil {
		writeServiceError(w, h.Logger, "deposit", err)
		return
	}
	writeJSON(w, http.StatusCreated, escrow)
}

// --- POST /api/v1/escrow/{id}/admin/approve ---

func (h *EscrowHandler) Approve(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	escrowID, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid escrow id")
		return
	}

	escrow, err := h.Service.Approve(r.Context(), escrowID, user)
	if err != nil {
		writeServiceError(w, h.Logger, "approve escrow", err)
		return
	}
	writeJSON(w, http.StatusOK, escrow)
}

// --- POST /api/v1/projects/{id}/submit-result ---

func (h *EscrowHandler) SubmitResult(w http.ResponseWriter, r *http.Request) {
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

	project, err := h.Service.SubmitResult(r.Context(), projectID, user)
	if err != nil {
		writeServiceError(w, h.Logger, "submit result", err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}

// --- POST /api/v1/projects/{id}/confirm-completion ---

type confirmCompletionRequest struct {
	// FeePct overrides the platform commission when non-nil.
	FeePct *int `json:"fee_pct"`
}

func (h *EscrowHandler) ConfirmCompletion(w http.ResponseWriter, r *http.Request) {
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

	var req confirmCompletionRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
	}

	escrow, err := h.Service.ConfirmCompletion(r.Context(), projectID, req.FeePct, user)
	if err != nil {
		writeServiceError(w, h.Logger, "confirm completion", err)
		return
	}
	writeJSON(w, http.StatusOK, escrow)
}

// --- GET /api/v1/projects/{id}/escrow ---

type escrowDetailResponse struct {
	Escrow *models.Escrow        `json:"escrow"`
	Ledger []*models.LedgerEntry `json:"ledger"`
}

// GetEscrow returns the project's escrow together with its ledger.
func (h *EscrowHandler) GetEscrow(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}

	escrow, err := h.Escrows.GetByProjectID(r.Context(), projectID)
	if err != nil {
		writeError(w, http.StatusNotFound, "escrow not found")
		return
	}
	entries, err := h.Ledger.ListByEscrow(r.Context(), escrow.ID)
	if err != nil {
		h.Logger.Error("list ledger", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, escrowDetailResponse{Escrow: escrow, Ledger: entries})
}
