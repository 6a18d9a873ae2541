package models

import (
	"time"

	"github.com/google/uuid"
)

// Dispute resolution actions accepted by the settlement engine.
const (
	DisputeActionRelease = "release"
	DisputeActionRefund  = "refund"
	DisputeActionSplit   = "split"
)

type Dispute struct {
	ID            uuid.UUID  `json:"id"`
	ProjectID     uuid.UUID  `json:"project_id"`
	RaisedByID    uuid.UUID  `json:"raised_by_id"`
	Reason        string     `json:"reason"`
	EvidenceFiles []string   `json:"evidence_files"`
	ResolvedByID  *uuid.UUID `json:"resolved_by_id,omitempty"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
	Note          string     `json:"note"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Resolved reports whether the dispute has been adjudicated.
func (d *Dispute) Resolved() bool { return d.ResolvedAt != nil }
