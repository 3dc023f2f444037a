package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReviewDecision is the action a human reviewer took on a draft
type ReviewDecision string

const (
	DecisionApprove ReviewDecision = "approve"
	DecisionEdit    ReviewDecision = "edit"
	DecisionReject  ReviewDecision = "reject"
)

// Valid reports whether the decision is one the workflow accepts.
func (d ReviewDecision) Valid() bool {
	switch d {
	case DecisionApprove, DecisionEdit, DecisionReject:
		return true
	}
	return false
}

// ResolvedStatus maps a decision to the terminal ticket status it produces.
func (d ReviewDecision) ResolvedStatus() TicketStatus {
	switch d {
	case DecisionApprove:
		return StatusResolvedApproved
	case DecisionEdit:
		return StatusResolvedEdited
	case DecisionReject:
		return StatusResolvedRejected
	}
	return StatusAwaitingReview
}

// HumanReview records one reviewer decision on one draft. A draft
// receives at most one review; repeated decisions return the stored
// record unchanged.
type HumanReview struct {
	ID        uuid.UUID      `json:"id"`
	TicketID  uuid.UUID      `json:"ticket_id"`
	DraftID   uuid.UUID      `json:"draft_id"`
	Decision  ReviewDecision `json:"decision"`
	FinalText string         `json:"final_text"`
	Reviewer  string         `json:"reviewer"`
	DecidedAt time.Time      `json:"decided_at"`
}
