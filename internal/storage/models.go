package storage

import (
	"time"

	"github.com/google/uuid"
)

// Newsletter is a persisted newsletter record. ImageURL is empty when the
// newsletter carries no image.
type Newsletter struct {
	ID          uuid.UUID
	Subject     string
	Description string
	ImageURL    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateNewsletterParams are the caller-supplied fields of a new newsletter.
type CreateNewsletterParams struct {
	Subject     string
	Description string
	ImageURL    string
}

// Recipient is a broadcast destination.
type Recipient struct {
	ID        uuid.UUID
	Email     string
	CreatedAt time.Time
}

// Admin is an operator account allowed to publish and delete newsletters.
type Admin struct {
	ID           uuid.UUID
	Username     string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateAdminParams are the fields of a new admin account.
type CreateAdminParams struct {
	Username     string
	Email        string
	PasswordHash string
	Role         string
}
