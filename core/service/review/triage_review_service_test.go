package review

import (
	"context"
	"errors"
	"testing"
	"time"

	"triage_server/core/domain"
	"triage_server/core/port/out"
	"triage_server/pkg/apperr"
	"triage_server/pkg/metrics"

	"github.com/google/uuid"
)

// --- in-memory fakes ---

type fakeTicketRepo struct {
	tickets map[uuid.UUID]*domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[uuid.UUID]*domain.Ticket{}}
}

func (r *fakeTicketRepo) Create(_ context.Context, t *domain.Ticket) error {
	r.tickets[t.ID] = t
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Ticket, error) {
	return r.tickets[id], nil
}

func (r *fakeTicketRepo) FindByIdempotencyKey(_ context.Context, key string) (*domain.Ticket, error) {
	for _, t := range r.tickets {
		if t.IdempotencyKey == key {
			return t, nil
		}
	}
	return nil, nil
}

func (r *fakeTicketRepo) SetClassification(_ context.Context, id uuid.UUID, intent domain.Intent, lang domain.Language, conf float64) error {
	t := r.tickets[id]
	t.Intent, t.Language, t.Confidence = intent, lang, conf
	return nil
}

func (r *fakeTicketRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.TicketStatus) error {
	r.tickets[id].Status = status
	return nil
}

func (r *fakeTicketRepo) SetNotificationFailed(_ context.Context, id uuid.UUID, failed bool) error {
	r.tickets[id].NotificationFailed = failed
	return nil
}

type fakeDraftRepo struct {
	drafts map[uuid.UUID]*domain.Draft
}

func newFakeDraftRepo() *fakeDraftRepo {
	return &fakeDraftRepo{drafts: map[uuid.UUID]*domain.Draft{}}
}

func (r *fakeDraftRepo) Create(_ context.Context, d *domain.Draft) error {
	r.drafts[d.ID] = d
	return nil
}

func (r *fakeDraftRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Draft, error) {
	return r.drafts[id], nil
}

func (r *fakeDraftRepo) GetActiveByTicket(_ context.Context, ticketID uuid.UUID) (*domain.Draft, error) {
	for _, d := range r.drafts {
		if d.TicketID == ticketID && !d.Superseded {
			return d, nil
		}
	}
	return nil, nil
}

func (r *fakeDraftRepo) Supersede(_ context.Context, id uuid.UUID) error {
	r.drafts[id].Superseded = true
	return nil
}

type fakeReviewRepo struct {
	byDraft map[uuid.UUID]*domain.HumanReview
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{byDraft: map[uuid.UUID]*domain.HumanReview{}}
}

func (r *fakeReviewRepo) Create(_ context.Context, rev *domain.HumanReview) (*domain.HumanReview, error) {
	if existing, ok := r.byDraft[rev.DraftID]; ok {
		return existing, nil
	}
	r.byDraft[rev.DraftID] = rev
	return rev, nil
}

func (r *fakeReviewRepo) GetByDraft(_ context.Context, draftID uuid.UUID) (*domain.HumanReview, error) {
	return r.byDraft[draftID], nil
}

type fakeNotifier struct {
	failures int // fail this many calls before succeeding
	calls    int
	last     *out.ReviewRequest
}

func (n *fakeNotifier) NotifyReviewer(_ context.Context, req *out.ReviewRequest) error {
	n.calls++
	if n.calls <= n.failures {
		return errors.New("queue unavailable")
	}
	n.last = req
	return nil
}

// --- helpers ---

func newTestService(notifier *fakeNotifier) (*Service, *fakeTicketRepo, *fakeDraftRepo, *fakeReviewRepo) {
	tickets := newFakeTicketRepo()
	drafts := newFakeDraftRepo()
	reviews := newFakeReviewRepo()
	svc := NewService(tickets, drafts, reviews, notifier, metrics.Noop{}, Config{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    4 * time.Millisecond,
	})
	svc.sleep = func(time.Duration) {}
	return svc, tickets, drafts, reviews
}

func seedTicketAndDraft(tickets *fakeTicketRepo, drafts *fakeDraftRepo) (*domain.Ticket, *domain.Draft) {
	ticket := &domain.Ticket{
		ID:     uuid.New(),
		Status: domain.StatusCreated,
		Intent: domain.IntentCancellation,
	}
	tickets.tickets[ticket.ID] = ticket

	d := &domain.Draft{
		ID:       uuid.New(),
		TicketID: ticket.ID,
		Body:     "Hei,\n\nVi har mottatt oppsigelsen din.",
		Language: domain.LanguageNorwegian,
		Method:   domain.MethodDeterministic,
	}
	drafts.drafts[d.ID] = d
	return ticket, d
}

// --- EnterReview ---

func TestEnterReviewNotifies(t *testing.T) {
	notifier := &fakeNotifier{}
	svc, tickets, drafts, _ := newTestService(notifier)
	ticket, d := seedTicketAndDraft(tickets, drafts)

	if err := svc.EnterReview(context.Background(), ticket, d); err != nil {
		t.Fatalf("EnterReview() error = %v", err)
	}
	if ticket.Status != domain.StatusAwaitingReview {
		t.Errorf("Status = %s, want awaiting_review", ticket.Status)
	}
	if notifier.calls != 1 {
		t.Errorf("notifier calls = %d, want 1", notifier.calls)
	}
	if ticket.NotificationFailed {
		t.Error("NotificationFailed should not be set")
	}

	// The reviewer sees the full draft text, not just metadata
	req := notifier.last
	if req == nil {
		t.Fatal("no request captured")
	}
	if req.DraftBody != d.Body {
		t.Errorf("DraftBody = %q, want draft body", req.DraftBody)
	}
	if req.TicketID != ticket.ID.String() || req.DraftID != d.ID.String() {
		t.Error("request does not reference the ticket and draft")
	}
}

func TestEnterReviewRetriesThenSucceeds(t *testing.T) {
	notifier := &fakeNotifier{failures: 2}
	svc, tickets, drafts, _ := newTestService(notifier)
	ticket, d := seedTicketAndDraft(tickets, drafts)

	if err := svc.EnterReview(context.Background(), ticket, d); err != nil {
		t.Fatalf("EnterReview() error = %v", err)
	}
	if notifier.calls != 3 {
		t.Errorf("notifier calls = %d, want 3", notifier.calls)
	}
	if ticket.NotificationFailed {
		t.Error("NotificationFailed should not be set after eventual success")
	}
}

func TestEnterReviewExhaustionFlagsTicket(t *testing.T) {
	notifier := &fakeNotifier{failures: 10}
	svc, tickets, drafts, _ := newTestService(notifier)
	ticket, d := seedTicketAndDraft(tickets, drafts)

	if err := svc.EnterReview(context.Background(), ticket, d); err != nil {
		t.Fatalf("EnterReview() error = %v", err)
	}
	if notifier.calls != 3 {
		t.Errorf("notifier calls = %d, want 3 (max attempts)", notifier.calls)
	}
	if !ticket.NotificationFailed {
		t.Error("expected NotificationFailed to be set")
	}
	// Exhaustion never kicks the ticket out of the queue
	if ticket.Status != domain.StatusAwaitingReview {
		t.Errorf("Status = %s, want awaiting_review", ticket.Status)
	}
}

// --- Decide ---

func TestDecideApprove(t *testing.T) {
	svc, tickets, drafts, _ := newTestService(&fakeNotifier{})
	ticket, d := seedTicketAndDraft(tickets, drafts)
	ticket.Status = domain.StatusAwaitingReview

	rev, err := svc.Decide(context.Background(), DecideInput{
		TicketID: ticket.ID,
		DraftID:  d.ID,
		Decision: domain.DecisionApprove,
		Reviewer: "agent-1",
	})
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if rev.FinalText != d.Body {
		t.Errorf("FinalText = %q, want draft body", rev.FinalText)
	}
	if ticket.Status != domain.StatusResolvedApproved {
		t.Errorf("Status = %s, want resolved_approved", ticket.Status)
	}
}

func TestDecideEditIsIdempotent(t *testing.T) {
	svc, tickets, drafts, _ := newTestService(&fakeNotifier{})
	ticket, d := seedTicketAndDraft(tickets, drafts)
	ticket.Status = domain.StatusAwaitingReview

	in := DecideInput{
		TicketID:  ticket.ID,
		DraftID:   d.ID,
		Decision:  domain.DecisionEdit,
		FinalText: "Hei, her er et justert svar.",
		Reviewer:  "agent-2",
	}

	first, err := svc.Decide(context.Background(), in)
	if err != nil {
		t.Fatalf("first Decide() error = %v", err)
	}
	if ticket.Status != domain.StatusResolvedEdited {
		t.Errorf("Status = %s, want resolved_edited", ticket.Status)
	}

	second, err := svc.Decide(context.Background(), in)
	if err != nil {
		t.Fatalf("second Decide() error = %v", err)
	}
	if second.ID != first.ID {
		t.Error("duplicate decision created a new review")
	}
	if second.FinalText != first.FinalText || second.DecidedAt != first.DecidedAt {
		t.Error("duplicate decision altered the stored review")
	}
	if ticket.Status != domain.StatusResolvedEdited {
		t.Errorf("Status changed on duplicate decision: %s", ticket.Status)
	}
}

func TestDecideReject(t *testing.T) {
	svc, tickets, drafts, _ := newTestService(&fakeNotifier{})
	ticket, d := seedTicketAndDraft(tickets, drafts)
	ticket.Status = domain.StatusAwaitingReview

	rev, err := svc.Decide(context.Background(), DecideInput{
		TicketID: ticket.ID,
		DraftID:  d.ID,
		Decision: domain.DecisionReject,
		Reviewer: "agent-3",
	})
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if rev.FinalText != "" {
		t.Errorf("FinalText = %q, want empty for reject", rev.FinalText)
	}
	if ticket.Status != domain.StatusResolvedRejected {
		t.Errorf("Status = %s, want resolved_rejected", ticket.Status)
	}
}

func TestDecideValidation(t *testing.T) {
	svc, tickets, drafts, _ := newTestService(&fakeNotifier{})
	ticket, d := seedTicketAndDraft(tickets, drafts)
	ticket.Status = domain.StatusAwaitingReview

	tests := []struct {
		name     string
		in       DecideInput
		wantCode string
	}{
		{
			name:     "unknown decision",
			in:       DecideInput{TicketID: ticket.ID, DraftID: d.ID, Decision: "escalate", Reviewer: "a"},
			wantCode: apperr.CodeBadRequest,
		},
		{
			name:     "missing reviewer",
			in:       DecideInput{TicketID: ticket.ID, DraftID: d.ID, Decision: domain.DecisionApprove},
			wantCode: apperr.CodeMissingField,
		},
		{
			name:     "edit without final text",
			in:       DecideInput{TicketID: ticket.ID, DraftID: d.ID, Decision: domain.DecisionEdit, Reviewer: "a"},
			wantCode: apperr.CodeMissingField,
		},
		{
			name:     "unknown draft",
			in:       DecideInput{TicketID: ticket.ID, DraftID: uuid.New(), Decision: domain.DecisionApprove, Reviewer: "a"},
			wantCode: apperr.CodeNotFound,
		},
		{
			name:     "draft from another ticket",
			in:       DecideInput{TicketID: uuid.New(), DraftID: d.ID, Decision: domain.DecisionApprove, Reviewer: "a"},
			wantCode: apperr.CodeStateConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Decide(context.Background(), tt.in)
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apperr.AsAppError(err).Code; got != tt.wantCode {
				t.Errorf("code = %s, want %s", got, tt.wantCode)
			}
		})
	}
}

func TestDecideSupersededDraftConflicts(t *testing.T) {
	svc, tickets, drafts, _ := newTestService(&fakeNotifier{})
	ticket, d := seedTicketAndDraft(tickets, drafts)
	ticket.Status = domain.StatusAwaitingReview
	d.Superseded = true

	_, err := svc.Decide(context.Background(), DecideInput{
		TicketID: ticket.ID,
		DraftID:  d.ID,
		Decision: domain.DecisionApprove,
		Reviewer: "agent-1",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if got := apperr.AsAppError(err).Code; got != apperr.CodeStateConflict {
		t.Errorf("code = %s, want STATE_CONFLICT", got)
	}
}

// --- retry schedule ---

func TestRetryScheduleGrowthAndCap(t *testing.T) {
	s := newRetrySchedule(5, 100*time.Millisecond, 300*time.Millisecond)

	// First attempt is immediate
	d, ok := s.Next()
	if !ok || d != 0 {
		t.Fatalf("first Next() = (%v, %v), want (0, true)", d, ok)
	}

	// Delays stay positive and never exceed cap + jitter
	for i := 1; i < 5; i++ {
		d, ok := s.Next()
		if !ok {
			t.Fatalf("Next() exhausted early at attempt %d", i+1)
		}
		if d <= 0 {
			t.Errorf("attempt %d: delay %v, want > 0", i+1, d)
		}
		// 20% jitter above the 300ms cap
		if d > 360*time.Millisecond {
			t.Errorf("delay %v exceeds jittered cap", d)
		}
	}

	if _, ok := s.Next(); ok {
		t.Error("schedule should be exhausted after max attempts")
	}
	if !s.Exhausted() {
		t.Error("Exhausted() = false after consuming all attempts")
	}
}

func TestRetryScheduleSingleAttempt(t *testing.T) {
	s := newRetrySchedule(1, time.Second, time.Second)

	if _, ok := s.Next(); !ok {
		t.Fatal("first attempt should be allowed")
	}
	if _, ok := s.Next(); ok {
		t.Error("second attempt should be refused")
	}
}
