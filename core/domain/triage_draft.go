package domain

import (
	"time"

	"github.com/google/uuid"
)

// GenerationMethod records how a draft reply was produced
type GenerationMethod string

const (
	MethodDeterministic GenerationMethod = "deterministic" // template dispatch
	MethodAIAssisted    GenerationMethod = "ai_assisted"   // template filled from AI extraction
	MethodGeneric       GenerationMethod = "generic"       // holding reply, no template matched
	MethodNone          GenerationMethod = "none"          // classification degraded, empty draft
)

// EdgeCase flags a situation the standard templates must not answer
// on autopilot.
type EdgeCase string

const (
	EdgeNone                EdgeCase = ""
	EdgeNoSelfService       EdgeCase = "no_self_service"
	EdgeInstitutionalAcct   EdgeCase = "institutional_account"
	EdgeFutureDatedRequest  EdgeCase = "future_dated_request"
	EdgeAlreadyResolvedDupe EdgeCase = "already_resolved_duplicate"
)

// Draft is a proposed reply awaiting human review.
type Draft struct {
	ID         uuid.UUID        `json:"id"`
	TicketID   uuid.UUID        `json:"ticket_id"`
	Body       string           `json:"body"`
	Language   Language         `json:"language"`
	Method     GenerationMethod `json:"method"`
	Confidence float64          `json:"confidence"`
	EdgeCase   EdgeCase         `json:"edge_case,omitempty"`
	Superseded bool             `json:"superseded"`
	CreatedAt  time.Time        `json:"created_at"`
}
