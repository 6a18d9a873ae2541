package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skillbridge/backend/internal/auth"
	"github.com/skillbridge/backend/internal/handlers"
	"github.com/skillbridge/backend/internal/middleware"
	"github.com/skillbridge/backend/internal/models"
)

// Handlers bundles the endpoint handlers the router mounts.
type Handlers struct {
	Auth    *auth.Handler
	Project *handlers.ProjectHandler
	Escrow  *handlers.EscrowHandler
	Dispute *handlers.DisputeHandler
	Admin   *handlers.AdminHandler
}

// New returns an http.Handler serving the API under /api/v1 plus
// /metrics. Authenticated routes run behind JWTAuth; admin routes add
// a role check on top.
func New(h Handlers, tokens middleware.TokenValidator, users middleware.UserLookup) http.Handler {
	mux := http.NewServeMux()
	base := "/api/v1"

	authn := middleware.JWTAuth(tokens, users)
	admin := func(fn http.HandlerFunc) http.Handler {
		return authn(middleware.RequireRole(models.RoleAdmin)(fn))
	}
	authed := func(fn http.HandlerFunc) http.Handler {
		return authn(fn)
	}

	mux.HandleFunc("POST "+base+"/auth/register", h.Auth.Register)
	mux.HandleFunc("POST "+base+"/auth/login", h.Auth.Login)

	mux.Handle("POST "+base+"/projects", authed(h.Project.CreateProject))
	mux.HandleFunc("GET "+base+"/projects", h.Project.ListProjects)
	mux.HandleFunc("GET "+base+"/projects/{id}", h.Project.GetProject)
	mux.Handle("POST "+base+"/projects/{id}/close", authed(h.Project.CloseProject))
	mux.Handle("POST "+base+"/projects/{id}/select-freelancer", authed(h.Project.SelectFreelancer))

	mux.Handle("POST "+base+"/projects/{id}/proposals", authed(h.Project.CreateProposal))
	mux.Handle("GET "+base+"/projects/{id}/proposals", authed(h.Project.ListProposals))
	mux.Handle("POST "+base+"/proposals/{id}/withdraw", authed(h.Project.WithdrawProposal))
	mux.Handle("PATCH "+base+"/proposals/{id}", authed(h.Project.UpdateProposal))

	mux.Handle("POST "+base+"/projects/{id}/escrow/deposit", authed(h.Escrow.Deposit))
	mux.Handle("GET "+base+"/projects/{id}/escrow", authed(h.Escrow.GetEscrow))
	mux.Handle("POST "+base+"/escrow/{id}/admin/approve", admin(h.Escrow.Approve))
	mux.Handle("POST "+base+"/projects/{id}/submit-result", authed(h.Escrow.SubmitResult))
	mux.Handle("POST "+base+"/projects/{id}/confirm-completion", authed(h.Escrow.ConfirmCompletion))

	mux.Handle("POST "+base+"/projects/{id}/dispute", authed(h.Dispute.Create))
	mux.Handle("GET "+base+"/projects/{id}/disputes", authed(h.Dispute.ListByProject))
	mux.Handle("POST "+base+"/disputes/{id}/resolve", admin(h.Dispute.Resolve))

	mux.Handle("GET "+base+"/admin/users", admin(h.Admin.ListUsers))
	mux.Handle("POST "+base+"/admin/users/{id}/verify", admin(h.Admin.VerifyUser))
	mux.Handle("GET "+base+"/admin/projects", admin(h.Admin.ListProjects))
	mux.Handle("GET "+base+"/admin/disputes", admin(h.Admin.ListDisputes))
	mux.Handle("GET "+base+"/admin/commission", admin(h.Admin.GetCommission))
	mux.Handle("PATCH "+base+"/admin/commission", admin(h.Admin.UpdateCommission))

	mux.Handle("GET /metrics", promhttp.Handler())

	return middleware.Metrics(mux)
}
