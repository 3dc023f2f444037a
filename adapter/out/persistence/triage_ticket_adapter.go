// Package persistence provides database adapters implementing outbound ports.
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

// TicketAdapter implements out.TicketRepository.
type TicketAdapter struct {
	db *sqlx.DB
}

var _ out.TicketRepository = (*TicketAdapter)(nil)

// NewTicketAdapter creates a new TicketAdapter.
func NewTicketAdapter(db *sqlx.DB) *TicketAdapter {
	return &TicketAdapter{db: db}
}

// ticketRow represents the database row.
type ticketRow struct {
	ID                 uuid.UUID      `db:"id"`
	Source             string         `db:"source"`
	CustomerContact    string         `db:"customer_contact"`
	Subject            string         `db:"subject"`
	MaskedExcerpt      string         `db:"masked_excerpt"`
	IdempotencyKey     string         `db:"idempotency_key"`
	Status             string         `db:"status"`
	Intent             string         `db:"intent"`
	Language           sql.NullString `db:"language"`
	Confidence         float64        `db:"confidence"`
	NotificationFailed bool           `db:"notification_failed"`
	ReceivedAt         time.Time      `db:"received_at"`
	CreatedAt          time.Time      `db:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at"`
}

func (r *ticketRow) toEntity() *domain.Ticket {
	t := &domain.Ticket{
		ID:                 r.ID,
		Source:             domain.TicketSource(r.Source),
		CustomerContact:    r.CustomerContact,
		Subject:            r.Subject,
		MaskedExcerpt:      r.MaskedExcerpt,
		IdempotencyKey:     r.IdempotencyKey,
		Status:             domain.TicketStatus(r.Status),
		Intent:             domain.Intent(r.Intent),
		Confidence:         r.Confidence,
		NotificationFailed: r.NotificationFailed,
		ReceivedAt:         r.ReceivedAt,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
	if r.Language.Valid {
		t.Language = domain.Language(r.Language.String)
	}
	return t
}

// Create inserts a new ticket.
func (a *TicketAdapter) Create(ctx context.Context, t *domain.Ticket) error {
	query := `
		INSERT INTO tickets (id, source, customer_contact, subject, masked_excerpt, idempotency_key, status, intent, language, confidence, notification_failed, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	lang := sql.NullString{String: string(t.Language), Valid: t.Language != ""}

	err := a.db.QueryRowContext(ctx, query,
		t.ID, string(t.Source), t.CustomerContact, t.Subject, t.MaskedExcerpt,
		t.IdempotencyKey, string(t.Status), string(t.Intent), lang,
		t.Confidence, t.NotificationFailed, t.ReceivedAt,
	).Scan(&t.CreatedAt, &t.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	return nil
}

// GetByID retrieves a ticket by ID.
func (a *TicketAdapter) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	var row ticketRow
	query := `SELECT * FROM tickets WHERE id = $1`

	if err := a.db.GetContext(ctx, &row, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	return row.toEntity(), nil
}

// FindByIdempotencyKey retrieves the ticket holding the key. Live
// tickets win over resolved ones so a resubmission resumes the open
// workflow; among resolved tickets the newest wins.
func (a *TicketAdapter) FindByIdempotencyKey(ctx context.Context, key string) (*domain.Ticket, error) {
	var row ticketRow
	query := `
		SELECT * FROM tickets
		WHERE idempotency_key = $1
		ORDER BY (status IN ('resolved_approved', 'resolved_edited', 'resolved_rejected')), created_at DESC
		LIMIT 1`

	if err := a.db.GetContext(ctx, &row, query, key); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find ticket by idempotency key: %w", err)
	}

	return row.toEntity(), nil
}

// SetClassification records the extraction outcome on the ticket.
func (a *TicketAdapter) SetClassification(ctx context.Context, id uuid.UUID, intent domain.Intent, lang domain.Language, confidence float64) error {
	query := `
		UPDATE tickets
		SET intent = $2, language = $3, confidence = $4, updated_at = NOW()
		WHERE id = $1`

	language := sql.NullString{String: string(lang), Valid: lang != ""}

	result, err := a.db.ExecContext(ctx, query, id, string(intent), language, confidence)
	if err != nil {
		return fmt.Errorf("failed to set classification: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("ticket not found: %s", id)
	}

	return nil
}

// UpdateStatus moves the ticket through the workflow.
func (a *TicketAdapter) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TicketStatus) error {
	query := `UPDATE tickets SET status = $2, updated_at = NOW() WHERE id = $1`

	result, err := a.db.ExecContext(ctx, query, id, string(status))
	if err != nil {
		return fmt.Errorf("failed to update ticket status: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("ticket not found: %s", id)
	}

	return nil
}

// SetNotificationFailed flags a ticket whose reviewer notification
// exhausted its retries.
func (a *TicketAdapter) SetNotificationFailed(ctx context.Context, id uuid.UUID, failed bool) error {
	query := `UPDATE tickets SET notification_failed = $2, updated_at = NOW() WHERE id = $1`

	_, err := a.db.ExecContext(ctx, query, id, failed)
	if err != nil {
		return fmt.Errorf("failed to flag notification failure: %w", err)
	}

	return nil
}
