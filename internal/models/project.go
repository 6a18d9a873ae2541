package models

import (
	"time"

	"github.com/google/uuid"
)

// Project status enums.
//
// open → in_progress → awaiting_client_review → completed, with side
// branches in_progress|awaiting_client_review → disputed →
// completed|closed_refunded, and open → closed_refunded when the owner
// closes before selecting a freelancer.
const (
	ProjectStatusOpen           = "open"
	ProjectStatusInProgress     = "in_progress"
	ProjectStatusAwaitingReview = "awaiting_client_review"
	ProjectStatusCompleted      = "completed"
	ProjectStatusClosedRefunded = "closed_refunded"
	ProjectStatusDisputed       = "disputed"
)

type Project struct {
	ID                 uuid.UUID  `json:"id"`
	OwnerID            uuid.UUID  `json:"owner_id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Budget             int        `json:"budget"`
	TimelineDays       int        `json:"timeline_days"`
	Category           string     `json:"category"`
	Status             string     `json:"status"`
	SelectedProposalID *uuid.UUID `json:"selected_proposal_id,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}
