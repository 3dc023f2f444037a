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

// DraftAdapter implements out.DraftRepository.
type DraftAdapter struct {
	db *sqlx.DB
}

var _ out.DraftRepository = (*DraftAdapter)(nil)

// NewDraftAdapter creates a new DraftAdapter.
func NewDraftAdapter(db *sqlx.DB) *DraftAdapter {
	return &DraftAdapter{db: db}
}

// draftRow represents the database row.
type draftRow struct {
	ID         uuid.UUID      `db:"id"`
	TicketID   uuid.UUID      `db:"ticket_id"`
	Body       string         `db:"body"`
	Language   sql.NullString `db:"language"`
	Method     string         `db:"method"`
	Confidence float64        `db:"confidence"`
	EdgeCase   sql.NullString `db:"edge_case"`
	Superseded bool           `db:"superseded"`
	CreatedAt  time.Time      `db:"created_at"`
}

func (r *draftRow) toEntity() *domain.Draft {
	d := &domain.Draft{
		ID:         r.ID,
		TicketID:   r.TicketID,
		Body:       r.Body,
		Method:     domain.GenerationMethod(r.Method),
		Confidence: r.Confidence,
		Superseded: r.Superseded,
		CreatedAt:  r.CreatedAt,
	}
	if r.Language.Valid {
		d.Language = domain.Language(r.Language.String)
	}
	if r.EdgeCase.Valid {
		d.EdgeCase = domain.EdgeCase(r.EdgeCase.String)
	}
	return d
}

// Create inserts a new draft.
func (a *DraftAdapter) Create(ctx context.Context, d *domain.Draft) error {
	query := `
		INSERT INTO drafts (id, ticket_id, body, language, method, confidence, edge_case, superseded)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`

	lang := sql.NullString{String: string(d.Language), Valid: d.Language != ""}
	edge := sql.NullString{String: string(d.EdgeCase), Valid: d.EdgeCase != ""}

	err := a.db.QueryRowContext(ctx, query,
		d.ID, d.TicketID, d.Body, lang, string(d.Method),
		d.Confidence, edge, d.Superseded,
	).Scan(&d.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create draft: %w", err)
	}

	return nil
}

// GetByID retrieves a draft by ID.
func (a *DraftAdapter) GetByID(ctx context.Context, id uuid.UUID) (*domain.Draft, error) {
	var row draftRow
	query := `SELECT * FROM drafts WHERE id = $1`

	if err := a.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	return row.toEntity(), nil
}

// GetActiveByTicket retrieves the non-superseded draft for a ticket.
func (a *DraftAdapter) GetActiveByTicket(ctx context.Context, ticketID uuid.UUID) (*domain.Draft, error) {
	var row draftRow
	query := `
		SELECT * FROM drafts
		WHERE ticket_id = $1 AND superseded = FALSE
		ORDER BY created_at DESC
		LIMIT 1`

	if err := a.db.GetContext(ctx, &row, query, ticketID); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active draft: %w", err)
	}

	return row.toEntity(), nil
}

// Supersede marks a draft as replaced.
func (a *DraftAdapter) Supersede(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE drafts SET superseded = TRUE WHERE id = $1`

	result, err := a.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to supersede draft: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("draft not found: %s", id)
	}

	return nil
}
