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

// DisputeAPI is the dispute lifecycle surface used by the handler.
type DisputeAPI interface {
	Create(ctx context.Context, projectID uuid.UUID, raiser *models.User, reason string, evidenceFiles []string) (*models.Dispute, error)
	Resolve(ctx context.Context, disputeID uuid.UUID, action string, releaseAmount, refundAmount int, note string, resolver *models.User) (*models.Dispute, error)
}

// DisputeReader lists disputes for a project.
type DisputeReader interface {
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]*models.Dispute, error)
}

// DisputeHandler serves dispute creation and resolution.
type DisputeHandler struct {
	Service  DisputeAPI
	Disputes DisputeReader
	Logger   *slog.Logger
}

// --- POST /api/v1/projects/{id}/dispute ---

type createDisputeRequest struct {
	Reason        string   `json:"reason"`
	EvidenceFiles []string `json:"evidence_files"`
}

func (h *DisputeHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var req createDisputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	dispute, err := h.Service.Create(r.Context(), projectID, user, req.Reason, req.EvidenceFiles)
	if err != nil {
		writeServiceError(w, h.Logger, "create dispute", err)
		return
	}
	writeJSON(w, http.StatusCreated, dispute)
}

// --- GET /api/v1/projects/{id}/disputes ---

func (h *DisputeHandler) ListByProject(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid project id")
		return
	}
	disputes, err := h.Disputes.ListByProject(r.Context(), projectID)
	if err != nil {
		h.Logger.Error("list disputes", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, disputes)
}

// --- POST /api/v1/disputes/{id}/resolve ---

type resolveDisputeRequest struct {
	Action        string `json:"action"`
	ReleaseAmount int    `json:"release_amount"`
	RefundAmount  int    `json:"refund_amount"`
	Note          string `json:"note"`
}

func (h *DisputeHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	disputeID, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid dispute id")
		return
	}

	var req resolveDisputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	dispute, err := h.Service.Resolve(r.Context(), disputeID, req.Action, req.ReleaseAmount, req.RefundAmount, req.Note, user)
	if err != nil {
		writeServiceError(w, h.Logger, "resolve dispute", err)
		return
	}
	writeJSON(w, http.StatusOK, dispute)
}
