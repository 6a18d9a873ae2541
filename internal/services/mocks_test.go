package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/skillbridge/backend/internal/models"
)

// ---------------------------------------------------------------------------
// In-memory mocks for the engine's store interfaces. These let us test
// the real service logic without a database.
// ---------------------------------------------------------------------------

// --- noopTx satisfies pgx.Tx for test use; only Commit/Rollback are called. ---

type noopTx struct{}

func (noopTx) Begin(context.Context) (pgx.Tx, error) { return noopTx{}, nil }
func (noopTx) Commit(context.Context) error          { return nil }
func (noopTx) Rollback(context.Context) error        { return nil }
func (noopTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (noopTx) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }
func (noopTx) QueryRow(context.Context, string, ...any) pgx.Row        { return nil }
func (noopTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (noopTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }
func (noopTx) LargeObjects() pgx.LargeObjects                         { return pgx.LargeObjects{} }
func (noopTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (noopTx) Conn() *pgx.Conn { return nil }

// --- TxBeginner mock ---

type mockPool struct{}

func (mockPool) Begin(context.Context) (pgx.Tx, error) { return noopTx{}, nil }

// --- ProjectStore mock ---

type mockProjects struct {
	mu       sync.Mutex
	projects map[uuid.UUID]*models.Project
}

func newMockProjects(ps ...*models.Project) *mockProjects {
	m := &mockProjects{projects: make(map[uuid.UUID]*models.Project)}
	for _, p := range ps {
		cp := *p
		m.projects[p.ID] = &cp
	}
	return m
}

func (m *mockProjects) Create(_ context.Context, p *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.projects[p.ID] = &cp
	return nil
}

func (m *mockProjects) GetByID(_ context.Context, id uuid.UUID) (*models.Project, error) {
	return m.get(id)
}

func (m *mockProjects) GetByIDForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*models.Project, error) {
	return m.get(id)
}

func (m *mockProjects) get(id uuid.UUID) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (m *mockProjects) UpdateStatus(_ context.Context, _ pgx.Tx, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return fmt.Errorf("project %s not found", id)
	}
	p.Status = status
	return nil
}

func (m *mockProjects) SetSelectedProposal(_ context.Context, _ pgx.Tx, id, proposalID uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.projects[id]
	if !ok {
		return fmt.Errorf("project %s not found", id)
	}
	pid := proposalID
	p.SelectedProposalID = &pid
	p.Status = status
	return nil
}

func (m *mockProjects) status(id uuid.UUID) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.projects[id].Status
}

// --- ProposalStore mock ---

type mockProposals struct {
	mu        sync.Mutex
	proposals map[uuid.UUID]*models.Proposal
}

func newMockProposals(ps ...*models.Proposal) *mockProposals {
	m := &mockProposals{proposals: make(map[uuid.UUID]*models.Proposal)}
	for _, p := range ps {
		cp := *p
		m.proposals[p.ID] = &cp
	}
	return m
}

func (m *mockProposals) Create(_ context.Context, p *models.Proposal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.proposals[p.ID] = &cp
	return nil
}

func (m *mockProposals) GetByID(_ context.Context, id uuid.UUID) (*models.Proposal, error) {
	return m.get(id)
}

func (m *mockProposals) GetByIDTx(_ context.Context, _ pgx.Tx, id uuid.UUID) (*models.Proposal, error) {
	return m.get(id)
}

func (m *mockProposals) GetByIDForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*models.Proposal, error) {
	return m.get(id)
}

func (m *mockProposals) get(id uuid.UUID) (*models.Proposal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (m *mockProposals) UpdateStatus(_ context.Context, _ pgx.Tx, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[id]
	if !ok {
		return fmt.Errorf("proposal %s not found", id)
	}
	p.Status = status
	return nil
}

func (m *mockProposals) UpdatePrice(_ context.Context, id uuid.UUID, price int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[id]
	if !ok {
		return fmt.Errorf("proposal %s not found", id)
	}
	p.Price = price
	return nil
}

func (m *mockProposals) status(id uuid.UUID) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.proposals[id].Status
}

// --- EscrowStore mock ---

type mockEscrows struct {
	mu      sync.Mutex
	escrows map[uuid.UUID]*models.Escrow
}

func newMockEscrows(es ...*models.Escrow) *mockEscrows {
	m := &mockEscrows{escrows: make(map[uuid.UUID]*models.Escrow)}
	for _, e := range es {
		cp := *e
		m.escrows[e.ID] = &cp
	}
	return m
}

func (m *mockEscrows) Create(_ context.Context, _ pgx.Tx, e *models.Escrow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *e
	m.escrows[e.ID] = &cp
	return nil
}

func (m *mockEscrows) GetByIDForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*models.Escrow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.escrows[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (m *mockEscrows) GetByProjectForUpdate(_ context.Context, _ pgx.Tx, projectID uuid.UUID) (*models.Escrow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.escrows {
		if e.ProjectID == projectID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *mockEscrows) UpdateStatus(_ context.Context, _ pgx.Tx, id uuid.UUID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.escrows[id]
	if !ok {
		return fmt.Errorf("escrow %s not found", id)
	}
	e.Status = status
	return nil
}

func (m *mockEscrows) UpdateAmountAndStatus(_ context.Context, _ pgx.Tx, id uuid.UUID, amount int, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.escrows[id]
	if !ok {
		return fmt.Errorf("escrow %s not found", id)
	}
	e.Amount = amount
	e.Status = status
	return nil
}

func (m *mockEscrows) byProject(projectID uuid.UUID) *models.Escrow {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.escrows {
		if e.ProjectID == projectID {
			cp := *e
			return &cp
		}
	}
	return nil
}

// --- LedgerStore mock ---

type mockLedger struct {
	mu      sync.Mutex
	entries []*models.LedgerEntry
}

func (m *mockLedger) Append(_ context.Context, _ pgx.Tx, e *models.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.Amount <= 0 {
		return fmt.Errorf("ledger amount must be positive, got %d", e.Amount)
	}
	cp := *e
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *mockLedger) HasDeposit(_ context.Context, _ pgx.Tx, escrowID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.entries {
		if e.EscrowID == escrowID && e.EntryType == models.LedgerEntryDeposit {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockLedger) Sums(_ context.Context, _ pgx.Tx, escrowID uuid.UUID) (models.LedgerSums, error) {
	return m.sums(escrowID), nil
}

func (m *mockLedger) sums(escrowID uuid.UUID) models.LedgerSums {
	m.mu.Lock()
	defer m.mu.Unlock()
	var s models.LedgerSums
	for _, e := range m.entries {
		if e.EscrowID != escrowID {
			continue
		}
		switch e.EntryType {
		case models.LedgerEntryDeposit:
			s.Deposit += e.Amount
		case models.LedgerEntryRelease:
			s.Release += e.Amount
		case models.LedgerEntryRefund:
			s.Refund += e.Amount
		case models.LedgerEntryFee:
			s.Fee += e.Amount
		}
	}
	return s
}

func (m *mockLedger) byType(entryType string) []*models.LedgerEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.LedgerEntry
	for _, e := range m.entries {
		if e.EntryType == entryType {
			out = append(out, e)
		}
	}
	return out
}

// --- DisputeStore mock ---

type mockDisputes struct {
	mu       sync.Mutex
	disputes map[uuid.UUID]*models.Dispute
}

func newMockDisputes(ds ...*models.Dispute) *mockDisputes {
	m := &mockDisputes{disputes: make(map[uuid.UUID]*models.Dispute)}
	for _, d := range ds {
		cp := *d
		m.disputes[d.ID] = &cp
	}
	return m
}

func (m *mockDisputes) Create(_ context.Context, _ pgx.Tx, d *models.Dispute) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *d
	m.disputes[d.ID] = &cp
	return nil
}

func (m *mockDisputes) GetByID(_ context.Context, id uuid.UUID) (*models.Dispute, error) {
	return m.get(id)
}

func (m *mockDisputes) GetByIDForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*models.Dispute, error) {
	return m.get(id)
}

func (m *mockDisputes) get(id uuid.UUID) (*models.Dispute, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.disputes[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	cp := *d
	return &cp, nil
}

func (m *mockDisputes) Resolve(_ context.Context, _ pgx.Tx, id, resolverID uuid.UUID, note string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.disputes[id]
	if !ok {
		return fmt.Errorf("dispute %s not found", id)
	}
	rid := resolverID
	ts := at
	d.ResolvedByID = &rid
	d.ResolvedAt = &ts
	d.Note = note
	return nil
}

// --- SettingStore mock ---

type mockSettings struct {
	pct int
}

func (m *mockSettings) PlatformFeePct(context.Context) (int, error) { return m.pct, nil }

// ---------------------------------------------------------------------------
// Shared fixtures
// ---------------------------------------------------------------------------

func client(id uuid.UUID) *models.User {
	return &models.User{ID: id, Role: models.RoleClient}
}

func freelancer(id uuid.UUID) *models.User {
	return &models.User{ID: id, Role: models.RoleFreelancer}
}

func admin(id uuid.UUID) *models.User {
	return &models.User{ID: id, Role: models.RoleAdmin}
}

func intPtr(v int) *int { return &v }
