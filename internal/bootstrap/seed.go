// Package bootstrap provides startup-time initialization routines
// such as seeding the admin account.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sungwon/newsletter/internal/auth"
	"github.com/sungwon/newsletter/internal/storage"
)

// AdminAccounts is the subset of storage.AdminStore used for seeding.
type AdminAccounts interface {
	GetByLogin(ctx context.Context, login string) (storage.Admin, error)
	Create(ctx context.Context, arg storage.CreateAdminParams) (storage.Admin, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	Count(ctx context.Context) (int64, error)
}

// AdminSeed is the configured bootstrap account.
type AdminSeed struct {
	Username string
	Email    string
	Password string
}

// SeedAdmin ensures an admin account exists. It is safe on every startup:
// with no admins it creates the configured one, and with a configured
// password it refreshes that admin's hash when the password changed.
func SeedAdmin(ctx context.Context, admins AdminAccounts, log zerolog.Logger, seed AdminSeed) error {
	seed.Username = strings.TrimSpace(seed.Username)
	seed.Email = strings.TrimSpace(seed.Email)

	count, err := admins.Count(ctx)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}

	if count > 0 {
		log.Info().Int64("admins", count).Msg("admin already exists, skipping seed")
		if seed.Password != "" && seed.Username != "" {
			return refreshPassword(ctx, admins, log, seed)
		}
		return nil
	}

	if seed.Username == "" || seed.Email == "" || seed.Password == "" {
		log.Warn().Msg("no admin account exists and bootstrap credentials are incomplete; set NEWSLETTER_BOOTSTRAP_ADMIN_PASSWORD")
		return nil
	}

	hash, err := auth.HashPassword(seed.Password)
	if err != nil {
		return err
	}
	admin, err := admins.Create(ctx, storage.CreateAdminParams{
		Username:     seed.Username,
		Email:        seed.Email,
		PasswordHash: hash,
		Role:         auth.RoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}

	log.Info().
		Stringer("admin_id", admin.ID).
		Str("username", admin.Username).
		Msg("admin seeded successfully")
	return nil
}

func refreshPassword(ctx context.Context, admins AdminAccounts, log zerolog.Logger, seed AdminSeed) error {
	admin, err := admins.GetByLogin(ctx, seed.Username)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get admin: %w", err)
	}
	if auth.PasswordMatches(admin.PasswordHash, seed.Password) {
		return nil
	}

	hash, err := auth.HashPassword(seed.Password)
	if err != nil {
		return err
	}
	if err := admins.UpdatePassword(ctx, admin.ID, hash); err != nil {
		return fmt.Errorf("update admin password: %w", err)
	}

	log.Info().Str("username", admin.Username).Msg("admin password updated from configuration")
	return nil
}
