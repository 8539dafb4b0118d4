//go:build integration

package storage_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/sungwon/newsletter/internal/storage"
)

// --- Newsletter Tests ---

func TestCreateNewsletter(t *testing.T) {
	_, queries := setupTestDB(t)
	ctx := context.Background()

	n, err := queries.CreateNewsletter(ctx, storage.CreateNewsletterParams{
		Subject:     "Weekly digest",
		Description: "What happened this week",
		ImageURL:    "/uploads/newsletters/abc.png",
	})
	if err != nil {
		t.Fatalf("CreateNewsletter failed: %v", err)
	}
	if n.ID == uuid.Nil {
		t.Error("expected non-nil UUID for newsletter ID")
	}
	if n.Subject != "Weekly digest" {
		t.Errorf("expected subject 'Weekly digest', got %s", n.Subject)
	}
	if n.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestListNewsletters_NewestFirstWithTotal(t *testing.T) {
	_, queries := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := queries.CreateNewsletter(ctx, storage.CreateNewsletterParams{
			Subject: fmt.Sprintf("issue-%d", i),
		}); err != nil {
			t.Fatalf("CreateNewsletter failed: %v", err)
		}
	}

	page, total, err := queries.ListNewsletters(ctx, 2, 0)
	if err != nil {
		t.Fatalf("ListNewsletters failed: %v", err)
	}
	if total != 5 {
		t.Errorf("expected total 5, got %d", total)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page))
	}
	if page[0].CreatedAt.Before(page[1].CreatedAt) {
		t.Error("expected newest first")
	}

	tail, _, err := queries.ListNewsletters(ctx, 2, 4)
	if err != nil {
		t.Fatalf("ListNewsletters failed: %v", err)
	}
	if len(tail) != 1 {
		t.Errorf("expected 1 item on last page, got %d", len(tail))
	}
}

func TestListNewsletters_OffsetBeyondEnd(t *testing.T) {
	_, queries := setupTestDB(t)
	ctx := context.Background()

	if _, err := queries.CreateNewsletter(ctx, storage.CreateNewsletterParams{Subject: "only"}); err != nil {
		t.Fatalf("CreateNewsletter failed: %v", err)
	}

	items, total, err := queries.ListNewsletters(ctx, 10, 50)
	if err != nil {
		t.Fatalf("ListNewsletters failed: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("expected empty page, got %d items", len(items))
	}
	if total != 1 {
		t.Errorf("expected total 1, got %d", total)
	}
}

func TestGetNewsletterByID_NotFound(t *testing.T) {
	_, queries := setupTestDB(t)

	_, err := queries.GetNewsletterByID(context.Background(), uuid.New())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteNewsletter(t *testing.T) {
	_, queries := setupTestDB(t)
	ctx := context.Background()

	n, err := queries.CreateNewsletter(ctx, storage.CreateNewsletterParams{Subject: "to delete"})
	if err != nil {
		t.Fatalf("CreateNewsletter failed: %v", err)
	}

	if err := queries.DeleteNewsletter(ctx, n.ID); err != nil {
		t.Fatalf("DeleteNewsletter failed: %v", err)
	}
	if _, err := queries.GetNewsletterByID(ctx, n.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := queries.DeleteNewsletter(ctx, n.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

// --- Recipient Tests ---

func TestRecipients_CreateListDelete(t *testing.T) {
	_, queries := setupTestDB(t)
	ctx := context.Background()

	a, err := queries.CreateRecipient(ctx, "a@example.com")
	if err != nil {
		t.Fatalf("CreateRecipient failed: %v", err)
	}
	if _, err := queries.CreateRecipient(ctx, " b@example.com "); err != nil {
		t.Fatalf("CreateRecipient failed: %v", err)
	}

	emails, err := queries.ListRecipientEmails(ctx)
	if err != nil {
		t.Fatalf("ListRecipientEmails failed: %v", err)
	}
	if len(emails) != 2 || emails[0] != "a@example.com" || emails[1] != "b@example.com" {
		t.Errorf("unexpected emails: %v", emails)
	}

	if err := queries.DeleteRecipient(ctx, a.ID); err != nil {
		t.Fatalf("DeleteRecipient failed: %v", err)
	}
	list, err := queries.ListRecipients(ctx)
	if err != nil {
		t.Fatalf("ListRecipients failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 recipient, got %d", len(list))
	}
}

func TestCreateRecipient_DuplicateIsConflict(t *testing.T) {
	_, queries := setupTestDB(t)
	ctx := context.Background()

	if _, err := queries.CreateRecipient(ctx, "dup@example.com"); err != nil {
		t.Fatalf("CreateRecipient failed: %v", err)
	}
	_, err := queries.CreateRecipient(ctx, "DUP@example.com")
	if !errors.Is(err, storage.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestListRecipientEmails_Empty(t *testing.T) {
	_, queries := setupTestDB(t)

	emails, err := queries.ListRecipientEmails(context.Background())
	if err != nil {
		t.Fatalf("ListRecipientEmails failed: %v", err)
	}
	if len(emails) != 0 {
		t.Errorf("expected no emails, got %v", emails)
	}
}

func TestDeleteRecipient_NotFound(t *testing.T) {
	_, queries := setupTestDB(t)

	err := queries.DeleteRecipient(context.Background(), uuid.New())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// --- Admin Tests ---

func TestAdmins_CreateAndLookup(t *testing.T) {
	_, queries := setupTestDB(t)
	ctx := context.Background()

	created, err := queries.CreateAdmin(ctx, storage.CreateAdminParams{
		Username:     "editor",
		Email:        "Editor@example.com",
		PasswordHash: "$2a$12$hashhere",
	})
	if err != nil {
		t.Fatalf("CreateAdmin failed: %v", err)
	}
	if created.Role != "admin" {
		t.Errorf("expected default role 'admin', got %s", created.Role)
	}

	byName, err := queries.GetAdminByLogin(ctx, "editor")
	if err != nil {
		t.Fatalf("GetAdminByLogin(username) failed: %v", err)
	}
	byEmail, err := queries.GetAdminByLogin(ctx, "editor@EXAMPLE.com")
	if err != nil {
		t.Fatalf("GetAdminByLogin(email) failed: %v", err)
	}
	if byName.ID != created.ID || byEmail.ID != created.ID {
		t.Error("expected both lookups to return the created admin")
	}

	n, err := queries.CountAdmins(ctx)
	if err != nil {
		t.Fatalf("CountAdmins failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 admin, got %d", n)
	}
}

func TestUpdateAdminPassword(t *testing.T) {
	_, queries := setupTestDB(t)
	ctx := context.Background()

	created, err := queries.CreateAdmin(ctx, storage.CreateAdminParams{
		Username: "ops", Email: "ops@example.com", PasswordHash: "old",
	})
	if err != nil {
		t.Fatalf("CreateAdmin failed: %v", err)
	}
	if err := queries.UpdateAdminPassword(ctx, created.ID, "new"); err != nil {
		t.Fatalf("UpdateAdminPassword failed: %v", err)
	}
	fetched, err := queries.GetAdminByLogin(ctx, "ops")
	if err != nil {
		t.Fatalf("GetAdminByLogin failed: %v", err)
	}
	if fetched.PasswordHash != "new" {
		t.Errorf("expected updated hash, got %s", fetched.PasswordHash)
	}
	if err := queries.UpdateAdminPassword(ctx, uuid.New(), "x"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown admin, got %v", err)
	}
}

func TestGetAdminByLogin_NotFound(t *testing.T) {
	_, queries := setupTestDB(t)

	_, err := queries.GetAdminByLogin(context.Background(), "nobody")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// --- Repository wrappers ---

func TestNewsletterRepository_RoundTrip(t *testing.T) {
	db, _ := setupTestDB(t)
	repo := storage.NewNewsletterRepository(db.Pool)
	ctx := context.Background()

	n, err := repo.Create(ctx, storage.CreateNewsletterParams{Subject: "via repo"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	got, err := repo.GetByID(ctx, n.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.ImageURL != "" {
		t.Errorf("expected empty image url, got %q", got.ImageURL)
	}
	if err := repo.DeleteByID(ctx, n.ID); err != nil {
		t.Fatalf("DeleteByID failed: %v", err)
	}
	items, total, err := repo.List(ctx, 10, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Errorf("expected empty repository, got total=%d items=%d", total, len(items))
	}
}

func TestRecipientDirectory_ListAddresses(t *testing.T) {
	db, _ := setupTestDB(t)
	dir := storage.NewRecipientDirectory(db.Pool)
	ctx := context.Background()

	for _, email := range []string{"x@example.com", "y@example.com"} {
		if _, err := dir.Create(ctx, email); err != nil {
			t.Fatalf("Create(%s) failed: %v", email, err)
		}
	}
	addrs, err := dir.ListAddresses(ctx)
	if err != nil {
		t.Fatalf("ListAddresses failed: %v", err)
	}
	if len(addrs) != 2 {
		t.Errorf("expected 2 addresses, got %v", addrs)
	}
}

func TestAdminStore_Count(t *testing.T) {
	db, _ := setupTestDB(t)
	store := storage.NewAdminStore(db.Pool)
	ctx := context.Background()

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 admins, got %d", n)
	}
	if _, err := store.Create(ctx, storage.CreateAdminParams{Username: "a", Email: "a@example.com", PasswordHash: "h"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := store.Create(ctx, storage.CreateAdminParams{Username: "a", Email: "b@example.com", PasswordHash: "h"}); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("expected ErrConflict for duplicate username, got %v", err)
	}
}
