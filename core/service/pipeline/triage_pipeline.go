// Package pipeline orchestrates the per-ticket flow: mask, persist,
// extract, route, fall back to AI, draft, enter review. Every step
// commits before the next so a crash resumes from persisted state
// instead of reprocessing.
package pipeline

import (
	"context"
	"time"
	"unicode"

	"triage_server/core/domain"
	"triage_server/core/port/out"
	"triage_server/core/service/draft"
	"triage_server/core/service/extraction"
	"triage_server/core/service/pii"
	"triage_server/core/service/review"
	"triage_server/core/service/routing"
	"triage_server/pkg/apperr"
	"triage_server/pkg/logger"

	"github.com/google/uuid"
)

const excerptRunes = 500

// ProcessResult is what the caller gets back for one submission.
type ProcessResult struct {
	TicketID         uuid.UUID               `json:"ticket_id"`
	DraftID          uuid.UUID               `json:"draft_id"`
	Intent           domain.Intent           `json:"intent"`
	Confidence       float64                 `json:"confidence"`
	Status           domain.TicketStatus     `json:"status"`
	Method           domain.GenerationMethod `json:"method"`
	Duplicate        bool                    `json:"duplicate"`
	ProcessingTimeMs int64                   `json:"processing_time_ms"`
}

// Service is the orchestrator.
type Service struct {
	masker    *pii.Masker
	extractor *extraction.Extractor
	router    *routing.Router
	fallback  out.FallbackClassifier
	generator *draft.Generator
	review    *review.Service

	tickets out.TicketRepository
	drafts  out.DraftRepository
	reviews out.ReviewRepository
	archive out.BodyArchive
	metrics out.MetricsSink
}

func NewService(
	masker *pii.Masker,
	extractor *extraction.Extractor,
	router *routing.Router,
	fallback out.FallbackClassifier,
	generator *draft.Generator,
	reviewSvc *review.Service,
	tickets out.TicketRepository,
	drafts out.DraftRepository,
	reviews out.ReviewRepository,
	archive out.BodyArchive,
	metrics out.MetricsSink,
) *Service {
	return &Service{
		masker:    masker,
		extractor: extractor,
		router:    router,
		fallback:  fallback,
		generator: generator,
		review:    reviewSvc,
		tickets:   tickets,
		drafts:    drafts,
		reviews:   reviews,
		archive:   archive,
		metrics:   metrics,
	}
}

// Process runs one inbound ticket through the whole pipeline.
func (s *Service) Process(ctx context.Context, in *domain.InboundTicket) (*ProcessResult, error) {
	start := time.Now()
	defer func() {
		s.metrics.Observe(out.MetricPipelineLatency, time.Since(start))
	}()
	s.metrics.Incr(out.MetricTicketsReceived)

	if problems := in.Validate(); problems != nil {
		return nil, apperr.ValidationFailed("invalid ticket payload", problems)
	}

	key := domain.IdempotencyKey(in.Source, in.CustomerContact, in.Subject, in.Body)
	maskedSubject := s.masker.Mask(in.Subject)
	maskedBody := s.masker.Mask(in.Body)

	ticket, duplicateResolved, resumed, err := s.findOrCreate(ctx, in, key, maskedSubject, maskedBody)
	if err != nil {
		return nil, err
	}

	if resumed {
		s.metrics.Incr(out.MetricTicketsDeduplicated)
		active, err := s.drafts.GetActiveByTicket(ctx, ticket.ID)
		if err != nil {
			return nil, apperr.DatabaseError("load active draft", err)
		}
		if active != nil {
			// Exact resubmission of a live ticket already in the review
			// queue: hand back what exists
			if ticket.Status != domain.StatusCreated {
				return &ProcessResult{
					TicketID:         ticket.ID,
					DraftID:          active.ID,
					Intent:           ticket.Intent,
					Confidence:       active.Confidence,
					Status:           ticket.Status,
					Method:           active.Method,
					Duplicate:        true,
					ProcessingTimeMs: time.Since(start).Milliseconds(),
				}, nil
			}
			// The draft committed but review entry did not. The resumed
			// run regenerates, which supersedes the stale draft.
			if err := s.drafts.Supersede(ctx, active.ID); err != nil {
				return nil, apperr.DatabaseError("supersede stale draft", err)
			}
		}
		// Fall through and finish the remaining steps.
	}

	result := s.resumedClassification(ticket, resumed, maskedSubject, maskedBody)
	if result == nil {
		result = s.classify(ctx, ticket, maskedSubject, maskedBody)
		if err := s.tickets.SetClassification(ctx, ticket.ID, result.Intent, result.Language, result.Confidence); err != nil {
			return nil, apperr.DatabaseError("store classification", err)
		}
		ticket.Intent, ticket.Language, ticket.Confidence = result.Intent, result.Language, result.Confidence
	}

	d := s.generator.Generate(draft.Input{
		TicketID:          ticket.ID,
		Result:            result,
		MaskedBody:        maskedBody,
		DuplicateResolved: duplicateResolved,
	})
	if err := s.drafts.Create(ctx, d); err != nil {
		return nil, apperr.DatabaseError("store draft", err)
	}
	s.metrics.Incr(out.MetricDraftsGenerated)

	if err := s.review.EnterReview(ctx, ticket, d); err != nil {
		return nil, err
	}

	return &ProcessResult{
		TicketID:         ticket.ID,
		DraftID:          d.ID,
		Intent:           result.Intent,
		Confidence:       result.Confidence,
		Status:           ticket.Status,
		Method:           d.Method,
		Duplicate:        resumed,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

// findOrCreate applies the idempotency rules. A live ticket with the
// same key is resumed; a resolved one marks the new submission as an
// already-resolved duplicate and a fresh ticket is created. Only
// masked text reaches the row and the archive.
func (s *Service) findOrCreate(ctx context.Context, in *domain.InboundTicket, key, maskedSubject, maskedBody string) (ticket *domain.Ticket, duplicateResolved, resumed bool, err error) {
	existing, err := s.tickets.FindByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, false, false, apperr.DatabaseError("idempotency lookup", err)
	}
	if existing != nil {
		if !existing.Status.IsResolved() {
			return existing, false, true, nil
		}
		duplicateResolved = true
	}

	now := time.Now().UTC()
	ticket = &domain.Ticket{
		ID:              uuid.New(),
		Source:          in.Source,
		CustomerContact: in.CustomerContact,
		Subject:         maskedSubject,
		MaskedExcerpt:   excerpt(maskedBody),
		IdempotencyKey:  key,
		Status:          domain.StatusCreated,
		Intent:          domain.IntentUnclear,
		ReceivedAt:      in.ReceivedAt,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if ticket.ReceivedAt.IsZero() {
		ticket.ReceivedAt = now
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, false, false, apperr.DatabaseError("create ticket", err)
	}

	// Full masked body lives out-of-band; losing the archive write
	// degrades nothing in the pipeline itself.
	if err := s.archive.SaveBody(ctx, ticket.ID, maskedBody); err != nil {
		logger.WithTicket(ticket.ID).WithError(err).Warn("Failed to archive masked body")
	}

	return ticket, duplicateResolved, false, nil
}

// classify runs the deterministic engine and, when it is not
// confident enough, the AI fallback. The returned result is the one
// the ticket is classified as; an unresolvable outcome comes back as
// the failed sentinel.
func (s *Service) classify(ctx context.Context, ticket *domain.Ticket, subject, masked string) *domain.ExtractionResult {
	det := s.extractor.Extract(subject, masked)

	switch s.router.Route(det) {
	case domain.RouteResolve:
		s.metrics.Incr(out.MetricResolvedDeterminstic)
		return det

	case domain.RouteEscalate:
		// Nothing for the model to read: empty or symbol-only text
		// goes straight to the unresolvable queue.
		if !hasTextContent(subject) && !hasTextContent(masked) {
			s.metrics.Incr(out.MetricUnresolvable)
			logger.WithTicket(ticket.ID).Warn("Ticket text empty after masking, skipping AI fallback")
			return domain.FailedExtraction(det.Language)
		}

		s.metrics.Incr(out.MetricEscalatedToAI)
		ai := s.fallback.Classify(ctx, subject, masked)

		// The deterministic pass still knows the language and any
		// extracted fields; keep them unless the model disagrees.
		if ai.Language == "" {
			ai.Language = det.Language
		}
		if ai.Failed {
			ai.Language = det.Language
		}
		for k, v := range det.Fields {
			if ai.Fields == nil {
				ai.Fields = map[string]string{}
			}
			if _, ok := ai.Fields[k]; !ok {
				ai.Fields[k] = v
			}
		}

		if s.router.Route(ai) == domain.RouteResolve {
			return ai
		}
		if ai.Failed {
			s.metrics.Incr(out.MetricAIFallbackFailed)
		}
		s.metrics.Incr(out.MetricUnresolvable)
		logger.WithTicket(ticket.ID).Warn("Ticket unresolvable, queueing empty draft for review")
		sentinel := domain.FailedExtraction(det.Language)
		sentinel.Fields = det.Fields
		return sentinel
	}

	// Deterministic routing never yields unresolvable
	return det
}

// resumedClassification rebuilds the committed classification for a
// resumed ticket so extraction and the AI call are not repeated. A
// fresh row and the unresolvable sentinel both persist as unclear with
// zero confidence; that case runs classification again.
func (s *Service) resumedClassification(ticket *domain.Ticket, resumed bool, maskedSubject, maskedBody string) *domain.ExtractionResult {
	if !resumed {
		return nil
	}
	if ticket.Intent == domain.IntentUnclear && ticket.Confidence == 0 {
		return nil
	}

	// Provenance is not persisted; a committed confidence below the
	// deterministic resolve gate can only have come from the fallback.
	prov := domain.ProvenanceDeterministic
	if ticket.Confidence < s.router.Thresholds().ResolveThreshold {
		prov = domain.ProvenanceAI
	}

	return &domain.ExtractionResult{
		Intent:     ticket.Intent,
		Language:   ticket.Language,
		Confidence: ticket.Confidence,
		Provenance: prov,
		Fields:     extraction.ExtractFields(maskedSubject + "\n" + maskedBody),
	}
}

// hasTextContent reports whether s carries anything classifiable.
func hasTextContent(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func excerpt(masked string) string {
	runes := []rune(masked)
	if len(runes) <= excerptRunes {
		return masked
	}
	return string(runes[:excerptRunes])
}

// TicketView is the read model for the lookup endpoint.
type TicketView struct {
	Ticket *domain.Ticket      `json:"ticket"`
	Draft  *domain.Draft       `json:"draft,omitempty"`
	Review *domain.HumanReview `json:"review,omitempty"`
}

// GetTicket loads a ticket with its active draft and review.
func (s *Service) GetTicket(ctx context.Context, id uuid.UUID) (*TicketView, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, apperr.DatabaseError("load ticket", err)
	}
	if ticket == nil {
		return nil, apperr.NotFound("ticket")
	}

	view := &TicketView{Ticket: ticket}
	if d, err := s.drafts.GetActiveByTicket(ctx, id); err != nil {
		return nil, apperr.DatabaseError("load draft", err)
	} else if d != nil {
		view.Draft = d
		if rev, err := s.reviews.GetByDraft(ctx, d.ID); err != nil {
			return nil, apperr.DatabaseError("load review", err)
		} else if rev != nil {
			view.Review = rev
		}
	}
	return view, nil
}
