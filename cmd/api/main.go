package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/rs/cors"

	"github.com/skillbridge/backend/internal/audit"
	"github.com/skillbridge/backend/internal/auth"
	"github.com/skillbridge/backend/internal/config"
	"github.com/skillbridge/backend/internal/db"
	"github.com/skillbridge/backend/internal/handlers"
	"github.com/skillbridge/backend/internal/repository"
	"github.com/skillbridge/backend/internal/router"
	"github.com/skillbridge/backend/internal/services"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Cannot reach PostgreSQL. Ensure Postgres is running, e.g. make dev-up or docker-compose up -d", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	slog.Info("Connected to PostgreSQL")

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		slog.Error("Schema migrations failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Schema migrations applied")

	// River migrations
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		slog.Error("Failed to create River migrator", "error", err)
		os.Exit(1)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		slog.Error("River migrate up failed", "error", err)
		os.Exit(1)
	}
	slog.Info("River migrations applied")

	// Repositories
	userRepo := repository.NewUserRepo(pool)
	projectRepo := repository.NewProjectRepo(pool)
	proposalRepo := repository.NewProposalRepo(pool)
	escrowRepo := repository.NewEscrowRepo(pool)
	ledgerRepo := repository.NewLedgerRepo(pool)
	disputeRepo := repository.NewDisputeRepo(pool)
	settingRepo := repository.NewSettingRepo(pool, cfg.PlatformFeePct)

	// Ledger audit workers
	workers := river.NewWorkers()
	river.AddWorker(workers, audit.NewReconcileWorker(escrowRepo, ledgerRepo, logger))
	river.AddWorker(workers, audit.NewSweepWorker(escrowRepo, ledgerRepo, logger))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: cfg.RiverWorkers},
		},
		Workers: workers,
		PeriodicJobs: []*river.PeriodicJob{
			river.NewPeriodicJob(
				river.PeriodicInterval(time.Hour),
				func() (river.JobArgs, *river.InsertOpts) {
					return audit.SweepArgs{}, nil
				},
				&river.PeriodicJobOpts{RunOnStart: true},
			),
		},
	})
	if err != nil {
		slog.Error("Failed to create River client", "error", err)
		os.Exit(1)
	}

	insertReconcile := func(ctx context.Context, tx pgx.Tx, escrowID uuid.UUID) error {
		_, err := riverClient.InsertTx(ctx, tx, audit.ReconcileArgs{EscrowID: escrowID}, nil)
		return err
	}

	// Auth
	authRepo := auth.NewRepository(pool)
	authSvc := auth.NewService(authRepo, cfg.JWTSecret)
	authHandler := auth.NewHandler(authSvc, logger)

	// Core services
	projectSvc := services.NewProjectService(pool, projectRepo, proposalRepo)
	escrowSvc := services.NewEscrowService(pool, projectRepo, proposalRepo, escrowRepo, ledgerRepo, settingRepo)
	escrowSvc.InsertReconcile = insertReconcile
	disputeSvc := services.NewDisputeService(pool, projectRepo, proposalRepo, escrowRepo, ledgerRepo, disputeRepo)
	disputeSvc.InsertReconcile = insertReconcile

	h := router.Handlers{
		Auth: authHandler,
		Project: &handlers.ProjectHandler{
			Service:   projectSvc,
			Projects:  projectRepo,
			Proposals: proposalRepo,
			Logger:    logger,
		},
		Escrow: &handlers.EscrowHandler{
			Service: escrowSvc,
			Escrows: escrowRepo,
			Ledger:  ledgerRepo,
			Logger:  logger,
		},
		Dispute: &handlers.DisputeHandler{
			Service:  disputeSvc,
			Disputes: disputeRepo,
			Logger:   logger,
		},
		Admin: &handlers.AdminHandler{
			Users:    userRepo,
			Projects: projectRepo,
			Disputes: disputeRepo,
			Settings: settingRepo,
			Logger:   logger,
		},
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(router.New(h, authSvc, userRepo))

	// Start River client (processes reconcile jobs)
	riverCtx, stopRiver := context.WithCancel(ctx)
	defer stopRiver()
	go func() {
		if err := riverClient.Start(riverCtx); err != nil && riverCtx.Err() == nil {
			slog.Error("River client stopped", "error", err)
		}
	}()

	slog.Info("Starting HTTP server", "addr", cfg.Addr())
	if err := http.ListenAndServe(cfg.Addr(), corsHandler); err != nil {
		slog.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}
}
