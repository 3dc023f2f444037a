// Package http provides the inbound HTTP adapter.
package http

import (
	"time"

	"triage_server/core/domain"
	"triage_server/core/service/pipeline"
	"triage_server/pkg/apperr"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// TicketHandler handles ticket intake and lookup.
type TicketHandler struct {
	pipeline *pipeline.Service
}

// NewTicketHandler creates a new ticket handler.
func NewTicketHandler(pipelineSvc *pipeline.Service) *TicketHandler {
	return &TicketHandler{pipeline: pipelineSvc}
}

// Register registers ticket routes.
func (h *TicketHandler) Register(router fiber.Router) {
	tickets := router.Group("/tickets")

	tickets.Post("/", h.SubmitTicket)
	tickets.Get("/:id", h.GetTicket)
}

// SubmitTicketRequest represents a ticket submission.
type SubmitTicketRequest struct {
	Source          string `json:"source"`
	CustomerContact string `json:"customer_contact"`
	Subject         string `json:"subject"`
	Body            string `json:"body"`
	ReceivedAt      string `json:"received_at,omitempty"`
}

// SubmitTicket runs a submission through the triage pipeline.
func (h *TicketHandler) SubmitTicket(c *fiber.Ctx) error {
	var req SubmitTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperr.BadRequest("invalid request body")
	}

	in := &domain.InboundTicket{
		Source:          domain.TicketSource(req.Source),
		CustomerContact: req.CustomerContact,
		Subject:         req.Subject,
		Body:            req.Body,
	}
	if req.ReceivedAt != "" {
		received, err := time.Parse(time.RFC3339, req.ReceivedAt)
		if err != nil {
			return apperr.BadRequest("received_at must be RFC 3339")
		}
		in.ReceivedAt = received.UTC()
	}

	result, err := h.pipeline.Process(c.Context(), in)
	if err != nil {
		return err
	}

	status := fiber.StatusCreated
	if result.Duplicate {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(result)
}

// GetTicket returns a ticket with its active draft and review.
func (h *TicketHandler) GetTicket(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.BadRequest("invalid ticket ID")
	}

	view, err := h.pipeline.GetTicket(c.Context(), id)
	if err != nil {
		return err
	}

	return c.JSON(view)
}
