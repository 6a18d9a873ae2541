package models

import (
	"time"

	"github.com/google/uuid"
)

// Proposal status enums. Exactly one proposal per project may reach
// accepted; the others stay pending, withdrawn or rejected.
const (
	ProposalStatusPending   = "pending"
	ProposalStatusWithdrawn = "withdrawn"
	ProposalStatusAccepted  = "accepted"
	ProposalStatusRejected  = "rejected"
)

type Proposal struct {
	ID           uuid.UUID `json:"id"`
	ProjectID    uuid.UUID `json:"project_id"`
	FreelancerID uuid.UUID `json:"freelancer_id"`
	Price        int       `json:"price"`
	TimelineDays int       `json:"timeline_days"`
	Message      string    `json:"message"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
}
