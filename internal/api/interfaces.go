package api

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sungwon/newsletter/internal/auth"
	"github.com/sungwon/newsletter/internal/newsletter"
	"github.com/sungwon/newsletter/internal/storage"
)

// NewsletterService is the publish pipeline as seen by the handlers.
type NewsletterService interface {
	Publish(ctx context.Context, req newsletter.PublishRequest) (*newsletter.PublishResult, error)
	List(ctx context.Context, req newsletter.PageRequest) (*newsletter.PageResult, error)
	Get(ctx context.Context, id uuid.UUID) (*newsletter.Record, error)
	Delete(ctx context.Context, id uuid.UUID) (*newsletter.DeleteResult, error)
}

// RecipientStore manages broadcast recipients.
type RecipientStore interface {
	List(ctx context.Context) ([]storage.Recipient, error)
	Create(ctx context.Context, email string) (storage.Recipient, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AdminLookup finds operator accounts at login.
type AdminLookup interface {
	GetByLogin(ctx context.Context, login string) (storage.Admin, error)
}

// TokenIssuer signs operator tokens.
type TokenIssuer interface {
	Issue(p auth.Principal) (string, time.Time, error)
}
