// Package newsletter publishes newsletters: it stores the optional image,
// persists the record and broadcasts the rendered message to every
// recipient.
package newsletter

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sungwon/newsletter/internal/broadcast"
	"github.com/sungwon/newsletter/internal/storage"
)

// AssetStore stores images and deletes them by derived id.
type AssetStore interface {
	Upload(ctx context.Context, data []byte, folder string) (string, error)
	Delete(ctx context.Context, derivedID string) error
}

// Repository persists newsletter records.
type Repository interface {
	Create(ctx context.Context, arg storage.CreateNewsletterParams) (storage.Newsletter, error)
	List(ctx context.Context, limit, offset int) ([]storage.Newsletter, int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (storage.Newsletter, error)
	DeleteByID(ctx context.Context, id uuid.UUID) error
}

// Directory lists the current recipient addresses.
type Directory interface {
	ListAddresses(ctx context.Context) ([]string, error)
}

// Broadcaster fans a message out to recipients.
type Broadcaster interface {
	Broadcast(ctx context.Context, recipients []string, subject, body string) []broadcast.Outcome
}

// Asset is an uploaded image.
type Asset struct {
	Data     []byte `validate:"required"`
	Filename string
}

// PublishRequest is the input of Publish.
type PublishRequest struct {
	Subject     string `validate:"required,max=255"`
	Description string `validate:"required,max=20000"`
	Image       *Asset
}

// Record is the API view of a persisted newsletter.
type Record struct {
	ID          uuid.UUID `json:"id"`
	Subject     string    `json:"subject"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func recordFrom(n storage.Newsletter) Record {
	return Record{
		ID:          n.ID,
		Subject:     n.Subject,
		Description: n.Description,
		ImageURL:    n.ImageURL,
		CreatedAt:   n.CreatedAt,
		UpdatedAt:   n.UpdatedAt,
	}
}

// PublishResult is the persisted record and the broadcast summary.
type PublishResult struct {
	Newsletter Record            `json:"newsletter"`
	Summary    broadcast.Summary `json:"summary"`
}

// PageRequest selects a page of newsletters. Values <= 0 fall back to the
// defaults.
type PageRequest struct {
	Page  int
	Limit int
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// PageResult is one page of newsletters, newest first.
type PageResult struct {
	Newsletters []Record `json:"newsletters"`
	Total       int64    `json:"total"`
	TotalPages  int      `json:"total_pages"`
	CurrentPage int      `json:"current_page"`
	Limit       int      `json:"limit"`
}

// DeleteResult reports non-fatal problems from a completed delete.
type DeleteResult struct {
	Warnings []string `json:"warnings"`
}
