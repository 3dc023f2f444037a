package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// TicketSource identifies the channel a ticket arrived from
type TicketSource string

const (
	SourceEmail   TicketSource = "email"
	SourceWebForm TicketSource = "web_form"
	SourceAPI     TicketSource = "api"
)

// TicketStatus tracks the ticket through the review workflow
type TicketStatus string

const (
	StatusCreated          TicketStatus = "created"
	StatusAwaitingReview   TicketStatus = "awaiting_review"
	StatusResolvedApproved TicketStatus = "resolved_approved"
	StatusResolvedEdited   TicketStatus = "resolved_edited"
	StatusResolvedRejected TicketStatus = "resolved_rejected"
)

// IsResolved reports whether the status is terminal.
func (s TicketStatus) IsResolved() bool {
	switch s {
	case StatusResolvedApproved, StatusResolvedEdited, StatusResolvedRejected:
		return true
	}
	return false
}

// Ticket represents a normalized inbound support request.
// Subject and body fields hold masked text only; raw customer text
// never leaves the masking step.
type Ticket struct {
	ID              uuid.UUID    `json:"id"`
	Source          TicketSource `json:"source"`
	CustomerContact string       `json:"customer_contact"`
	Subject         string       `json:"subject"`
	MaskedExcerpt   string       `json:"masked_excerpt"`
	IdempotencyKey  string       `json:"idempotency_key"`
	Status          TicketStatus `json:"status"`

	// Classification outcome, set once after extraction/fallback
	Intent     Intent   `json:"intent"`
	Language   Language `json:"language"`
	Confidence float64  `json:"confidence"`

	NotificationFailed bool      `json:"notification_failed"`
	ReceivedAt         time.Time `json:"received_at"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// IdempotencyKey derives the dedupe key for an inbound payload.
// Unit separator keeps "ab"+"c" and "a"+"bc" from colliding.
func IdempotencyKey(source TicketSource, contact, subject, body string) string {
	h := sha256.New()
	h.Write([]byte(string(source)))
	h.Write([]byte{0x1f})
	h.Write([]byte(contact))
	h.Write([]byte{0x1f})
	h.Write([]byte(subject))
	h.Write([]byte{0x1f})
	h.Write([]byte(body))
	return hex.EncodeToString(h.Sum(nil))
}

// InboundTicket is the normalized payload accepted by the pipeline,
// before masking and persistence.
type InboundTicket struct {
	Source          TicketSource `json:"source"`
	CustomerContact string       `json:"customer_contact"`
	Subject         string       `json:"subject"`
	Body            string       `json:"body"`
	ReceivedAt      time.Time    `json:"received_at"`
}

// Validate checks the fields the pipeline cannot proceed without.
func (t *InboundTicket) Validate() map[string]any {
	problems := map[string]any{}
	switch t.Source {
	case SourceEmail, SourceWebForm, SourceAPI:
	default:
		problems["source"] = "must be one of email, web_form, api"
	}
	if t.CustomerContact == "" {
		problems["customer_contact"] = "required"
	}
	if t.Subject == "" && t.Body == "" {
		problems["body"] = "subject and body cannot both be empty"
	}
	if len(problems) == 0 {
		return nil
	}
	return problems
}
