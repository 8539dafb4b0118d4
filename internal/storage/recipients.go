package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const listRecipientEmails = `SELECT email FROM recipients ORDER BY created_at, id`

// ListRecipientEmails returns a snapshot of every recipient address.
func (q *Queries) ListRecipientEmails(ctx context.Context) ([]string, error) {
	rows, err := q.db.Query(ctx, listRecipientEmails)
	if err != nil {
		return nil, fmt.Errorf("list recipient emails: %w", mapError("ListRecipientEmails", err))
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan recipient email: %w", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recipient emails: %w", mapError("ListRecipientEmails", err))
	}
	return emails, nil
}

const listRecipients = `SELECT id, email, created_at FROM recipients ORDER BY created_at, id`

// ListRecipients returns every recipient, oldest first.
func (q *Queries) ListRecipients(ctx context.Context) ([]Recipient, error) {
	rows, err := q.db.Query(ctx, listRecipients)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", mapError("ListRecipients", err))
	}
	defer rows.Close()

	recipients := []Recipient{}
	for rows.Next() {
		var r Recipient
		if err := rows.Scan(&r.ID, &r.Email, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan recipient: %w", err)
		}
		recipients = append(recipients, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list recipients: %w", mapError("ListRecipients", err))
	}
	return recipients, nil
}

const createRecipient = `
INSERT INTO recipients (email)
VALUES ($1)
RETURNING id, email, created_at`

// CreateRecipient stores a new address. A duplicate (case-insensitive)
// address returns ErrConflict.
func (q *Queries) CreateRecipient(ctx context.Context, email string) (Recipient, error) {
	var r Recipient
	err := q.db.QueryRow(ctx, createRecipient, strings.TrimSpace(email)).Scan(&r.ID, &r.Email, &r.CreatedAt)
	if err != nil {
		return Recipient{}, fmt.Errorf("create recipient: %w", mapError("CreateRecipient", err))
	}
	return r, nil
}

const deleteRecipient = `DELETE FROM recipients WHERE id = $1`

// DeleteRecipient returns ErrNotFound when no row was removed.
func (q *Queries) DeleteRecipient(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, deleteRecipient, id)
	if err != nil {
		return fmt.Errorf("delete recipient %s: %w", id, mapError("DeleteRecipient", err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete recipient %s: %w", id, ErrNotFound)
	}
	return nil
}
