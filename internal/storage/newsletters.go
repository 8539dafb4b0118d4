package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const createNewsletter = `
INSERT INTO newsletters (subject, description, image_url)
VALUES ($1, $2, $3)
RETURNING id, subject, description, image_url, created_at, updated_at`

// CreateNewsletter inserts a newsletter and returns the stored row with its
// assigned id and timestamps.
func (q *Queries) CreateNewsletter(ctx context.Context, arg CreateNewsletterParams) (Newsletter, error) {
	var n Newsletter
	err := q.db.QueryRow(ctx, createNewsletter, arg.Subject, arg.Description, arg.ImageURL).Scan(
		&n.ID, &n.Subject, &n.Description, &n.ImageURL, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return Newsletter{}, fmt.Errorf("create newsletter: %w", mapError("CreateNewsletter", err))
	}
	return n, nil
}

const listNewsletters = `
SELECT id, subject, description, image_url, created_at, updated_at
FROM newsletters
ORDER BY created_at DESC, id DESC
LIMIT $1 OFFSET $2`

const countNewsletters = `SELECT count(*) FROM newsletters`

// ListNewsletters returns up to limit newsletters starting at offset, newest
// first, together with the total number of newsletters.
func (q *Queries) ListNewsletters(ctx context.Context, limit, offset int) ([]Newsletter, int64, error) {
	var total int64
	if err := q.db.QueryRow(ctx, countNewsletters).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count newsletters: %w", mapError("CountNewsletters", err))
	}

	rows, err := q.db.Query(ctx, listNewsletters, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list newsletters: %w", mapError("ListNewsletters", err))
	}
	defer rows.Close()

	items := make([]Newsletter, 0, limit)
	for rows.Next() {
		var n Newsletter
		if err := rows.Scan(&n.ID, &n.Subject, &n.Description, &n.ImageURL, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan newsletter: %w", err)
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list newsletters: %w", mapError("ListNewsletters", err))
	}
	return items, total, nil
}

const getNewsletterByID = `
SELECT id, subject, description, image_url, created_at, updated_at
FROM newsletters
WHERE id = $1`

// GetNewsletterByID returns ErrNotFound when no newsletter has the id.
func (q *Queries) GetNewsletterByID(ctx context.Context, id uuid.UUID) (Newsletter, error) {
	var n Newsletter
	err := q.db.QueryRow(ctx, getNewsletterByID, id).Scan(
		&n.ID, &n.Subject, &n.Description, &n.ImageURL, &n.CreatedAt, &n.UpdatedAt,
	)
	if err != nil {
		return Newsletter{}, fmt.Errorf("get newsletter %s: %w", id, mapError("GetNewsletterByID", err))
	}
	return n, nil
}

const deleteNewsletter = `DELETE FROM newsletters WHERE id = $1`

// DeleteNewsletter returns ErrNotFound when no row was removed.
func (q *Queries) DeleteNewsletter(ctx context.Context, id uuid.UUID) error {
	tag, err := q.db.Exec(ctx, deleteNewsletter, id)
	if err != nil {
		return fmt.Errorf("delete newsletter %s: %w", id, mapError("DeleteNewsletter", err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete newsletter %s: %w", id, ErrNotFound)
	}
	return nil
}
