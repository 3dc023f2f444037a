package http

import (
	"triage_server/core/domain"
	"triage_server/core/service/review"
	"triage_server/pkg/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// ReviewHandler handles reviewer decisions.
type ReviewHandler struct {
	review *review.Service
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(reviewSvc *review.Service) *ReviewHandler {
	return &ReviewHandler{review: reviewSvc}
}

// Register registers review routes.
func (h *ReviewHandler) Register(router fiber.Router) {
	router.Post("/tickets/:id/review", h.Decide)
}

// DecideRequest represents a reviewer decision.
type DecideRequest struct {
	DraftID   string `json:"draft_id"`
	Decision  string `json:"decision"`
	FinalText string `json:"final_text,omitempty"`
	Reviewer  string `json:"reviewer"`
}

// Decide applies a reviewer decision to a draft. Repeating the same
// decision returns the stored review unchanged.
func (h *ReviewHandler) Decide(c *fiber.Ctx) error {
	ticketID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.BadRequest("invalid ticket ID")
	}

	var req DecideRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	draftID, err := uuid.Parse(req.DraftID)
	if err != nil {
		return apperr.BadRequest("invalid draft ID")
	}

	rev, err := h.review.Decide(c.Context(), review.DecideInput{
		TicketID:  ticketID,
		DraftID:   draftID,
		Decision:  domain.ReviewDecision(req.Decision),
		FinalText: req.FinalText,
		Reviewer:  req.Reviewer,
	})
	if err != nil {
		return err
	}

	return c.JSON(rev)
}
