package storage

import (
	"context"

	"github.com/google/uuid"
)

// NewsletterRepository is the content repository used by the publish and
// delete flows.
type NewsletterRepository struct {
	q *Queries
}

// NewNewsletterRepository creates a NewsletterRepository over db.
func NewNewsletterRepository(db DBTX) *NewsletterRepository {
	return &NewsletterRepository{q: New(db)}
}

func (r *NewsletterRepository) Create(ctx context.Context, arg CreateNewsletterParams) (Newsletter, error) {
	return r.q.CreateNewsletter(ctx, arg)
}

func (r *NewsletterRepository) List(ctx context.Context, limit, offset int) ([]Newsletter, int64, error) {
	return r.q.ListNewsletters(ctx, limit, offset)
}

func (r *NewsletterRepository) GetByID(ctx context.Context, id uuid.UUID) (Newsletter, error) {
	return r.q.GetNewsletterByID(ctx, id)
}

func (r *NewsletterRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	return r.q.DeleteNewsletter(ctx, id)
}

// RecipientDirectory owns the broadcast recipient set.
type RecipientDirectory struct {
	q *Queries
}

// NewRecipientDirectory creates a RecipientDirectory over db.
func NewRecipientDirectory(db DBTX) *RecipientDirectory {
	return &RecipientDirectory{q: New(db)}
}

// ListAddresses returns the current address snapshot.
func (d *RecipientDirectory) ListAddresses(ctx context.Context) ([]string, error) {
	return d.q.ListRecipientEmails(ctx)
}

func (d *RecipientDirectory) List(ctx context.Context) ([]Recipient, error) {
	return d.q.ListRecipients(ctx)
}

func (d *RecipientDirectory) Create(ctx context.Context, email string) (Recipient, error) {
	return d.q.CreateRecipient(ctx, email)
}

func (d *RecipientDirectory) Delete(ctx context.Context, id uuid.UUID) error {
	return d.q.DeleteRecipient(ctx, id)
}

// AdminStore holds operator accounts.
type AdminStore struct {
	q *Queries
}

// NewAdminStore creates an AdminStore over db.
func NewAdminStore(db DBTX) *AdminStore {
	return &AdminStore{q: New(db)}
}

func (s *AdminStore) GetByLogin(ctx context.Context, login string) (Admin, error) {
	return s.q.GetAdminByLogin(ctx, login)
}

func (s *AdminStore) Create(ctx context.Context, arg CreateAdminParams) (Admin, error) {
	return s.q.CreateAdmin(ctx, arg)
}

func (s *AdminStore) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return s.q.UpdateAdminPassword(ctx, id, passwordHash)
}

func (s *AdminStore) Count(ctx context.Context) (int64, error) {
	return s.q.CountAdmins(ctx)
}
