package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/skillbridge/backend/internal/middleware"
	"github.com/skillbridge/backend/internal/models"
	"github.com/skillbridge/backend/internal/services"
)

// ---------------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------------

// mockEscrowAPI returns canned values and records the last call.
type mockEscrowAPI struct {
	escrow  *models.Escrow
	project *models.Project
	err     error

	depositAmount *int
	feePct        *int
}

func (m *mockEscrowAPI) Deposit(_ context.Context, _ uuid.UUID, amount *int, _ *models.User) (*models.Escrow, error) {
	m.depositAmount = amount
	return m.escrow, m.err
}

func (m *mockEscrowAPI) Approve(_ context.Context, _ uuid.UUID, _ *models.User) (*models.Escrow, error) {
	return m.escrow, m.err
}

func (m *mockEscrowAPI) SubmitResult(_ context.Context, _ uuid.UUID, _ *models.User) (*models.Project, error) {
	return m.project, m.err
}

func (m *mockEscrowAPI) ConfirmCompletion(_ context.Context, _ uuid.UUID, feePct *int, _ *models.User) (*models.Escrow, error) {
	m.feePct = feePct
	return m.escrow, m.err
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func authedRequest(method, target, body string, user *models.User) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	if user != nil {
		req = req.WithContext(middleware.WithUser(req.Context(), user))
	}
	return req
}

// serve routes through a mux so {id} path values resolve.
func serve(pattern string, handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handler)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestDepositHandler(t *testing.T) {
	user := &models.User{ID: uuid.New(), Role: models.RoleClient}
	projectID := uuid.New()
	escrow := &models.Escrow{ID: uuid.New(), ProjectID: projectID, Amount: 5000, Status: models.EscrowStatusPendingAdmin}

	api := &mockEscrowAPI{escrow: escrow}
	h := &EscrowHandler{Service: api, Logger: testLogger}

	req := authedRequest(http.MethodPost, "/api/v1/projects/"+projectID.String()+"/escrow/deposit", `{"amount": 5000}`, user)
	rec := serve("POST /api/v1/projects/{id}/escrow/deposit", h.Deposit, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if api.depositAmount == nil || *api.depositAmount != 5000 {
		t.Errorf("amount not forwarded: %v", api.depositAmount)
	}

	var got models.Escrow
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ID != escrow.ID || got.Amount != 5000 {
		t.Errorf("unexpected body: %+v", got)
	}
}

func TestDepositHandler_EmptyBodyMeansDefaultAmount(t *testing.T) {
	user := &models.User{ID: uuid.New(), Role: models.RoleClient}
	api := &mockEscrowAPI{escrow: &models.Escrow{ID: uuid.New()}}
	h := &EscrowHandler{Service: api, Logger: testLogger}

	req := authedRequest(http.MethodPost, "/api/v1/projects/"+uuid.NewString()+"/escrow/deposit", "", user)
	rec := serve("POST /api/v1/projects/{id}/escrow/deposit", h.Deposit, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if api.depositAmount != nil {
		t.Errorf("empty body should forward a nil amount, got %d", *api.depositAmount)
	}
}

func TestDepositHandler_Unauthorized(t *testing.T) {
	h := &EscrowHandler{Service: &mockEscrowAPI{}, Logger: testLogger}

	req := authedRequest(http.MethodPost, "/api/v1/projects/"+uuid.NewString()+"/escrow/deposit", "{}", nil)
	rec := serve("POST /api/v1/projects/{id}/escrow/deposit", h.Deposit, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestDepositHandler_BadProjectID(t *testing.T) {
	user := &models.User{ID: uuid.New(), Role: models.RoleClient}
	h := &EscrowHandler{Service: &mockEscrowAPI{}, Logger: testLogger}

	req := authedRequest(http.MethodPost, "/api/v1/projects/not-a-uuid/escrow/deposit", "{}", user)
	rec := serve("POST /api/v1/projects/{id}/escrow/deposit", h.Deposit, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

// The service error taxonomy must map onto distinct HTTP statuses.
func TestServiceErrorMapping(t *testing.T) {
	user := &models.User{ID: uuid.New(), Role: models.RoleClient}

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", fmt.Errorf("%w: amount must be positive", services.ErrInvalidInput), http.StatusBadRequest},
		{"forbidden", fmt.Errorf("%w: only the project owner can fund escrow", services.ErrForbidden), http.StatusForbidden},
		{"not found", fmt.Errorf("%w: project", services.ErrNotFound), http.StatusNotFound},
		{"invalid state", fmt.Errorf("%w: escrow already funded", services.ErrInvalidState), http.StatusConflict},
		{"unknown error", fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := &EscrowHandler{Service: &mockEscrowAPI{err: tc.err}, Logger: testLogger}

			req := authedRequest(http.MethodPost, "/api/v1/projects/"+uuid.NewString()+"/escrow/deposit", "{}", user)
			rec := serve("POST /api/v1/projects/{id}/escrow/deposit", h.Deposit, req)

			if rec.Code != tc.want {
				t.Errorf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestConfirmCompletionHandler_FeeOverride(t *testing.T) {
	user := &models.User{ID: uuid.New(), Role: models.RoleClient}
	api := &mockEscrowAPI{escrow: &models.Escrow{ID: uuid.New(), Status: models.EscrowStatusReleased}}
	h := &EscrowHandler{Service: api, Logger: testLogger}

	req := authedRequest(http.MethodPost, "/api/v1/projects/"+uuid.NewString()+"/confirm-completion", `{"fee_pct": 10}`, user)
	rec := serve("POST /api/v1/projects/{id}/confirm-completion", h.ConfirmCompletion, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if api.feePct == nil || *api.feePct != 10 {
		t.Errorf("fee override not forwarded: %v", api.feePct)
	}
}
