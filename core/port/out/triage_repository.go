package out

import (
	"context"

	"triage_server/core/domain"

	"github.com/google/uuid"
)

// TicketRepository persists tickets and their workflow state.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error)

	// FindByIdempotencyKey returns (nil, nil) when no ticket matches.
	FindByIdempotencyKey(ctx context.Context, key string) (*domain.Ticket, error)

	// SetClassification records the extraction outcome. Called once
	// per ticket, after deterministic extraction or AI fallback.
	SetClassification(ctx context.Context, id uuid.UUID, intent domain.Intent, lang domain.Language, confidence float64) error

	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TicketStatus) error
	SetNotificationFailed(ctx context.Context, id uuid.UUID, failed bool) error
}

// DraftRepository persists generated reply drafts.
type DraftRepository interface {
	Create(ctx context.Context, draft *domain.Draft) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Draft, error)

	// GetActiveByTicket returns the non-superseded draft for a ticket,
	// or (nil, nil) when none exists.
	GetActiveByTicket(ctx context.Context, ticketID uuid.UUID) (*domain.Draft, error)

	Supersede(ctx context.Context, id uuid.UUID) error
}

// ReviewRepository persists reviewer decisions. Create is idempotent
// per draft: inserting a second review for the same draft returns the
// stored one.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.HumanReview) (*domain.HumanReview, error)
	GetByDraft(ctx context.Context, draftID uuid.UUID) (*domain.HumanReview, error)
}

// BodyArchive stores the full masked ticket body out-of-band; the
// relational row carries only an excerpt.
type BodyArchive interface {
	SaveBody(ctx context.Context, ticketID uuid.UUID, maskedBody string) error
	GetBody(ctx context.Context, ticketID uuid.UUID) (string, error)
}
