package models

import (
	"time"

	"github.com/google/uuid"
)

// Ledger entry_type enums.
const (
	LedgerEntryDeposit = "deposit"
	LedgerEntryRelease = "release"
	LedgerEntryRefund  = "refund"
	LedgerEntryFee     = "fee"
)

// LedgerEntry is an immutable record of one money movement against an
// escrow. Amounts are strictly positive minor units; entries are never
// updated or deleted.
type LedgerEntry struct {
	ID        uuid.UUID `json:"id"`
	EscrowID  uuid.UUID `json:"escrow_id"`
	EntryType string    `json:"entry_type"`
	Amount    int       `json:"amount"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// LedgerSums holds per-kind entry totals for one escrow.
type LedgerSums struct {
	Deposit int
	Release int
	Refund  int
	Fee     int
}

// Balanced reports whether deposits match settlements exactly.
func (s LedgerSums) Balanced() bool {
	return s.Deposit == s.Release+s.Refund+s.Fee
}
