package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"triage_server/core/domain"
	"triage_server/core/port/out"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ReviewAdapter implements out.ReviewRepository.
type ReviewAdapter struct {
	db *sqlx.DB
}

var _ out.ReviewRepository = (*ReviewAdapter)(nil)

// NewReviewAdapter creates a new ReviewAdapter.
func NewReviewAdapter(db *sqlx.DB) *ReviewAdapter {
	return &ReviewAdapter{db: db}
}

// reviewRow represents the database row.
type reviewRow struct {
	ID        uuid.UUID `db:"id"`
	TicketID  uuid.UUID `db:"ticket_id"`
	DraftID   uuid.UUID `db:"draft_id"`
	Decision  string    `db:"decision"`
	FinalText string    `db:"final_text"`
	Reviewer  string    `db:"reviewer"`
	DecidedAt time.Time `db:"decided_at"`
}

func (r *reviewRow) toEntity() *domain.HumanReview {
	return &domain.HumanReview{
		ID:        r.ID,
		TicketID:  r.TicketID,
		DraftID:   r.DraftID,
		Decision:  domain.ReviewDecision(r.Decision),
		FinalText: r.FinalText,
		Reviewer:  r.Reviewer,
		DecidedAt: r.DecidedAt,
	}
}

// Create inserts a review. The unique index on draft_id makes this
// idempotent: a second decision for the same draft loses the race and
// the stored review comes back instead.
func (a *ReviewAdapter) Create(ctx context.Context, rev *domain.HumanReview) (*domain.HumanReview, error) {
	query := `
		INSERT INTO reviews (id, ticket_id, draft_id, decision, final_text, reviewer, decided_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (draft_id) DO NOTHING
		RETURNING decided_at`

	err := a.db.QueryRowContext(ctx, query,
		rev.ID, rev.TicketID, rev.DraftID, string(rev.Decision),
		rev.FinalText, rev.Reviewer, rev.DecidedAt,
	).Scan(&rev.DecidedAt)

	if err == sql.ErrNoRows {
		// Conflict, a review for this draft already exists
		existing, gerr := a.GetByDraft(ctx, rev.DraftID)
		if gerr != nil {
			return nil, gerr
		}
		if existing == nil {
			return nil, fmt.Errorf("review conflict but no stored review for draft %s", rev.DraftID)
		}
		return existing, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	return rev, nil
}

// GetByDraft retrieves the review for a draft.
func (a *ReviewAdapter) GetByDraft(ctx context.Context, draftID uuid.UUID) (*domain.HumanReview, error) {
	var row reviewRow
	query := `SELECT * FROM reviews WHERE draft_id = $1`

	if err := a.db.GetContext(ctx, &row, query, draftID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return row.toEntity(), nil
}
