package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/skillbridge/backend/internal/models"
)

// UserAdmin is the user management surface of the admin panel.
type UserAdmin interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, verified *bool) ([]*models.User, error)
	SetVerified(ctx context.Context, id uuid.UUID) error
}

// ProjectAdmin lists all projects regardless of owner.
type ProjectAdmin interface {
	List(ctx context.Context, status, category string) ([]*models.Project, error)
}

// DisputeAdmin lists all disputes.
type DisputeAdmin interface {
	List(ctx context.Context) ([]*models.Dispute, error)
}

// SettingAdmin reads and updates the platform commission.
type SettingAdmin interface {
	Get(ctx context.Context) (*models.PlatformSetting, error)
	UpdateFee(ctx context.Context, pct int) (*models.PlatformSetting, error)
}

// AdminHandler serves /api/v1/admin endpoints. Role enforcement happens
// in middleware; handlers here assume an admin caller.
type AdminHandler struct {
	Users    UserAdmin
	Projects ProjectAdmin
	Disputes DisputeAdmin
	Settings SettingAdmin
	Logger   *slog.Logger
}

// --- GET /api/v1/admin/users ---

// ListUsers supports ?verified=true|false.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	var verified *bool
	switch r.URL.Query().Get("verified") {
	case "true":
		v := true
		verified = &v
	case "false":
		v := false
		verified = &v
	}

	users, err := h.Users.List(r.Context(), verified)
	if err != nil {
		h.Logger.Error("list users", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// --- POST /api/v1/admin/users/{id}/verify ---

func (h *AdminHandler) VerifyUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if _, err := h.Users.GetByID(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	if err := h.Users.SetVerified(r.Context(), id); err != nil {
		h.Logger.Error("verify user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	user, err := h.Users.GetByID(r.Context(), id)
	if err != nil {
		h.Logger.Error("reload user", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// --- GET /api/v1/admin/projects ---

func (h *AdminHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.Projects.List(r.Context(), r.URL.Query().Get("status"), r.URL.Query().Get("category"))
	if err != nil {
		h.Logger.Error("list projects", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, projects)
}

// --- GET /api/v1/admin/disputes ---

func (h *AdminHandler) ListDisputes(w http.ResponseWriter, r *http.Request) {
	disputes, err := h.Disputes.List(r.Context())
	if err != nil {
		h.Logger.Error("list disputes", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, disputes)
}

// --- GET /api/v1/admin/commission ---

func (h *AdminHandler) GetCommission(w http.ResponseWriter, r *http.Request) {
	setting, err := h.Settings.Get(r.Context())
	if err != nil {
		h.Logger.Error("get commission", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, setting)
}

// --- PATCH /api/v1/admin/commission ---

type updateCommissionRequest struct {
	PlatformFeePct int `json:"platform_fee_pct"`
}

func (h *AdminHandler) UpdateCommission(w http.ResponseWriter, r *http.Request) {
	var req updateCommissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.PlatformFeePct < 0 || req.PlatformFeePct > 100 {
		writeError(w, http.StatusBadRequest, "platform_fee_pct must be between 0 and 100")
		return
	}

	setting, err := h.Settings.UpdateFee(r.Context(), req.PlatformFeePct)
	if err != nil {
		h.Logger.Error("update commission", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, setting)
}
