package out

import (
	"context"

	"triage_server/core/domain"
)

// ReviewRequest is the payload pushed to reviewers when a draft
// enters the queue.
type ReviewRequest struct {
	TicketID   string                  `json:"ticket_id"`
	DraftID    string                  `json:"draft_id"`
	Intent     domain.Intent           `json:"intent"`
	Language   domain.Language         `json:"language"`
	Confidence float64                 `json:"confidence"`
	Method     domain.GenerationMethod `json:"method"`
	EdgeCase   domain.EdgeCase         `json:"edge_case,omitempty"`
	Excerpt    string                  `json:"excerpt"`
	DraftBody  string                  `json:"draft_body"`
}

// ReviewNotifier delivers review requests to the human queue.
// Delivery is at-least-once; the caller owns retry policy.
type ReviewNotifier interface {
	NotifyReviewer(ctx context.Context, req *ReviewRequest) error
}
