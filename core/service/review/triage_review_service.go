package review

import (
	"context"
	"time"

	"triage_server/core/domain"
	"triage_server/core/port/out"
	"triage_server/pkg/apperr"
	"triage_server/pkg/logger"

	"github.com/google/uuid"
)

// Config tunes the notification retry behavior.
type Config struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// Service owns the review state machine and the notification path.
type Service struct {
	tickets  out.TicketRepository
	drafts   out.DraftRepository
	reviews  out.ReviewRepository
	notifier out.ReviewNotifier
	metrics  out.MetricsSink
	cfg      Config

	// sleep is swapped out in tests
	sleep func(time.Duration)
}

func NewService(
	tickets out.TicketRepository,
	drafts out.DraftRepository,
	reviews out.ReviewRepository,
	notifier out.ReviewNotifier,
	metrics out.MetricsSink,
	cfg Config,
) *Service {
	return &Service{
		tickets:  tickets,
		drafts:   drafts,
		reviews:  reviews,
		notifier: notifier,
		metrics:  metrics,
		cfg:      cfg,
		sleep:    time.Sleep,
	}
}

// EnterReview moves the ticket into awaiting_review and notifies the
// reviewer queue. Notification failure never blocks the workflow: an
// exhausted retry schedule flags the ticket and leaves it waiting for
// the next queue sweep.
func (s *Service) EnterReview(ctx context.Context, ticket *domain.Ticket, d *domain.Draft) error {
	if err := s.tickets.UpdateStatus(ctx, ticket.ID, domain.StatusAwaitingReview); err != nil {
		return apperr.DatabaseError("update ticket status", err)
	}
	ticket.Status = domain.StatusAwaitingReview

	req := &out.ReviewRequest{
		TicketID:   ticket.ID.String(),
		DraftID:    d.ID.String(),
		Intent:     ticket.Intent,
		Language:   d.Language,
		Confidence: d.Confidence,
		Method:     d.Method,
		EdgeCase:   d.EdgeCase,
		Excerpt:    ticket.MaskedExcerpt,
		DraftBody:  d.Body,
	}

	if err := s.deliver(ctx, req); err != nil {
		s.metrics.Incr(out.MetricNotifyExhausted)
		logger.WithTicket(ticket.ID).WithError(err).
			Warn("Review notification exhausted retries, flagging ticket")
		if ferr := s.tickets.SetNotificationFailed(ctx, ticket.ID, true); ferr != nil {
			return apperr.DatabaseError("flag notification failure", ferr)
		}
		ticket.NotificationFailed = true
	}
	return nil
}

// deliver runs the notifier through the retry schedule.
func (s *Service) deliver(ctx context.Context, req *out.ReviewRequest) error {
	schedule := newRetrySchedule(s.cfg.MaxAttempts, s.cfg.BaseDelay, s.cfg.MaxDelay)

	var lastErr error
	for {
		wait, ok := schedule.Next()
		if !ok {
			return lastErr
		}
		if wait > 0 {
			s.metrics.Incr(out.MetricNotifyRetries)
			s.sleep(wait)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if lastErr = s.notifier.NotifyReviewer(ctx, req); lastErr == nil {
			return nil
		}
		logger.WithError(lastErr).
			WithField("attempt", schedule.Attempt()).
			Debug("Review notification attempt failed")
	}
}

// DecideInput is a reviewer decision on a draft.
type DecideInput struct {
	TicketID  uuid.UUID
	DraftID   uuid.UUID
	Decision  domain.ReviewDecision
	FinalText string
	Reviewer  string
}

// Decide applies a reviewer decision. The state machine is terminal
// and idempotent: the first decision on a draft resolves the ticket,
// and any repeat of the same request returns the stored review
// without changing anything.
func (s *Service) Decide(ctx context.Context, in DecideInput) (*domain.HumanReview, error) {
	if !in.Decision.Valid() {
		return nil, apperr.BadRequest("decision must be approve, edit or reject")
	}
	if in.Reviewer == "" {
		return nil, apperr.MissingField("reviewer")
	}
	if in.Decision == domain.DecisionEdit && in.FinalText == "" {
		return nil, apperr.MissingField("final_text")
	}

	d, err := s.drafts.GetByID(ctx, in.DraftID)
	if err != nil {
		return nil, apperr.DatabaseError("load draft", err)
	}
	if d == nil {
		return nil, apperr.NotFound("draft")
	}
	if d.TicketID != in.TicketID {
		return nil, apperr.StateConflict("draft does not belong to this ticket")
	}

	// Duplicate decision: return what was decided the first time
	if existing, err := s.reviews.GetByDraft(ctx, in.DraftID); err != nil {
		return nil, apperr.DatabaseError("load review", err)
	} else if existing != nil {
		return existing, nil
	}

	if d.Superseded {
		return nil, apperr.StateConflict("draft has been superseded")
	}

	ticket, err := s.tickets.GetByID(ctx, in.TicketID)
	if err != nil {
		return nil, apperr.DatabaseError("load ticket", err)
	}
	if ticket == nil {
		return nil, apperr.NotFound("ticket")
	}
	if ticket.Status.IsResolved() {
		return nil, apperr.StateConflict("ticket is already resolved")
	}

	finalText := in.FinalText
	switch in.Decision {
	case domain.DecisionApprove:
		finalText = d.Body
	case domain.DecisionReject:
		finalText = ""
	}

	rev := &domain.HumanReview{
		ID:        uuid.New(),
		TicketID:  in.TicketID,
		DraftID:   in.DraftID,
		Decision:  in.Decision,
		FinalText: finalText,
		Reviewer:  in.Reviewer,
		DecidedAt: time.Now().UTC(),
	}

	// The repository enforces one review per draft; a concurrent
	// insert loses the race and gets the winner back.
	stored, err := s.reviews.Create(ctx, rev)
	if err != nil {
		return nil, apperr.DatabaseError("store review", err)
	}
	if stored.ID != rev.ID {
		return stored, nil
	}

	if err := s.tickets.UpdateStatus(ctx, in.TicketID, in.Decision.ResolvedStatus()); err != nil {
		return nil, apperr.DatabaseError("resolve ticket", err)
	}
	return stored, nil
}
