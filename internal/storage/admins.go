package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const getAdminByLogin = `
SELECT id, username, email, password_hash, role, created_at, updated_at
FROM admins
WHERE username = $1 OR lower(email) = lower($1)
LIMIT 1`

// GetAdminByLogin looks an admin up by username or email.
func (q *Queries) GetAdminByLogin(ctx context.Context, login string) (Admin, error) {
	var a Admin
	err := q.db.QueryRow(ctx, getAdminByLogin, login).Scan(
		&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return Admin{}, fmt.Errorf("get admin: %w", mapError("GetAdminByLogin", err))
	}
	return a, nil
}

const createAdmin = `
INSERT INTO admins (username, email, password_hash, role)
VALUES ($1, $2, $3, $4)
RETURNING id, username, email, password_hash, role, created_at, updated_at`

// CreateAdmin inserts an admin account.
func (q *Queries) CreateAdmin(ctx context.Context, arg CreateAdminParams) (Admin, error) {
	role := arg.Role
	if role == "" {
		role = "admin"
	}
	var a Admin
	err := q.db.QueryRow(ctx, createAdmin, arg.Username, arg.Email, arg.PasswordHash, role).Scan(
		&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.Role, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return Admin{}, fmt.Errorf("create admin: %w", mapError("CreateAdmin", err))
	}
	return a, nil
}

const updateAdminPassword = `UPDATE admins SET password_hash = $2, updated_at = now() WHERE id = $1`

// UpdateAdminPassword replaces the stored password hash.
func (q *Queries) UpdateAdminPassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := q.db.Exec(ctx, updateAdminPassword, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update admin password: %w", mapError("UpdateAdminPassword", err))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update admin password: %w", ErrNotFound)
	}
	return nil
}

const countAdmins = `SELECT count(*) FROM admins`

// CountAdmins returns the number of admin accounts.
func (q *Queries) CountAdmins(ctx context.Context) (int64, error) {
	var n int64
	if err := q.db.QueryRow(ctx, countAdmins).Scan(&n); err != nil {
		return 0, fmt.Errorf("count admins: %w", mapError("CountAdmins", err))
	}
	return n, nil
}
