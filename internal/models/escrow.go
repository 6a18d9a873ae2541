package models

import (
	"time"

	"github.com/google/uuid"
)

// Escrow status enums.
//
// pending_admin → held → released; pending_admin|held → disputed →
// released|refunded. A held escrow is refunded only through a dispute.
const (
	EscrowStatusPendingAdmin = "pending_admin"
	EscrowStatusHeld         = "held"
	EscrowStatusReleased     = "released"
	EscrowStatusRefunded     = "refunded"
	EscrowStatusDisputed     = "disputed"
)

// Escrow is the held-funds account tied one-to-one to a project. Amount
// is in minor currency units and immutable once settlement entries have
// been recorded against it.
type Escrow struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	Amount    int       `json:"amount"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Terminal reports whether the escrow has settled and its ledger must
// reconcile: sum(deposit) == sum(release)+sum(refund)+sum(fee).
func (e *Escrow) Terminal() bool {
	return e.Status == EscrowStatusReleased || e.Status == EscrowStatusRefunded
}
