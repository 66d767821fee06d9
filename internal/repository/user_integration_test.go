//go:build integration

package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prepjet/prepjet/internal/model"
	"github.com/prepjet/prepjet/internal/testutil"
)

// ============================================================================
// User Repository Integration Tests
// ============================================================================

func TestIntegrationUserRepository_UpsertInsert(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	id := testutil.UniqueID("user")
	first := "Ada"
	payload := &model.IdentityUserPayload{
		ID:        id,
		Email:     id + "@example.com",
		FirstName: &first,
	}

	user, err := repo.UpsertUserFromIdentity(ctx, payload)
	if err != nil {
		t.Fatalf("UpsertUserFromIdentity failed: %v", err)
	}

	if user.ID != id {
		t.Errorf("ID mismatch: got %q, want %q", user.ID, id)
	}
	if user.Role != model.RoleUser {
		t.Errorf("New users should default to %q, got %q", model.RoleUser, user.Role)
	}
	if user.FirstName == nil || *user.FirstName != "Ada" {
		t.Errorf("FirstName not persisted: %v", user.FirstName)
	}
}

func TestIntegrationUserRepository_UpsertUpdatePreservesRole(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	id := testutil.UniqueID("user")
	payload := &model.IdentityUserPayload{ID: id, Email: id + "@example.com"}

	if _, err := repo.UpsertUserFromIdentity(ctx, payload); err != nil {
		t.Fatalf("initial upsert failed: %v", err)
	}

	if err := repo.SetUserRole(ctx, id, model.RoleAdmin); err != nil {
		t.Fatalf("SetUserRole failed: %v", err)
	}

	// A re-delivered update must not demote the user.
	newEmail := id + "+updated@example.com"
	payload.Email = newEmail
	updated, err := repo.UpsertUserFromIdentity(ctx, payload)
	if err != nil {
		t.Fatalf("update upsert failed: %v", err)
	}

	if updated.Email != newEmail {
		t.Errorf("Email not updated: got %q, want %q", updated.Email, newEmail)
	}
	if updated.Role != model.RoleAdmin {
		t.Errorf("Role should survive profile updates: got %q", updated.Role)
	}
}

func TestIntegrationUserRepository_UpsertDuplicateEmail(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	email := testutil.UniqueID("shared") + "@example.com"

	if _, err := repo.UpsertUserFromIdentity(ctx, &model.IdentityUserPayload{
		ID:    testutil.UniqueID("user-a"),
		Email: email,
	}); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	_, err := repo.UpsertUserFromIdentity(ctx, &model.IdentityUserPayload{
		ID:    testutil.UniqueID("user-b"),
		Email: email,
	})
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("Expected ErrEmailExists, got: %v", err)
	}
}

func TestIntegrationUserRepository_GetByID_NotFound(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	_, err := repo.GetUserByID(ctx, "nonexistent-user")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Expected ErrUserNotFound, got: %v", err)
	}
}

func TestIntegrationUserRepository_GetByEmail(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	id := testutil.UniqueID("user")
	email := id + "@example.com"
	if _, err := repo.UpsertUserFromIdentity(ctx, &model.IdentityUserPayload{ID: id, Email: email}); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}

	user, err := repo.GetUserByEmail(ctx, email)
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if user.ID != id {
		t.Errorf("ID mismatch: got %q, want %q", user.ID, id)
	}
}

func TestIntegrationUserRepository_ListUsersPagination(t *testing.T) {
	ctx, repo := newUserTestEnv(t)

	base := testutil.UniqueID("page")
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("%s-%02d", base, i)
		if _, err := repo.UpsertUserFromIdentity(ctx, &model.IdentityUserPayload{
			ID:    id,
			Email: id + "@example.com",
		}); err != nil {
			t.Fatalf("upsert (%d) failed: %v", i, err)
		}
		time.Sleep(1 * time.Millisecond)
	}

	firstPage, hasMore, err := repo.ListUsers(ctx, "", 3)
	if err != nil {
		t.Fatalf("ListUsers (first page) failed: %v", err)
	}
	if len(firstPage) != 3 {
		t.Fatalf("Expected 3 users on first page, got %d", len(firstPage))
	}
	if !hasMore {
		t.Error("Expected hasMore on first page")
	}

	cursor := firstPage[len(firstPage)-1].ID
	secondPage, hasMore, err := repo.ListUsers(ctx, cursor, 3)
	if err != nil {
		t.Fatalf("ListUsers (second page) failed: %v", err)
	}
	if len(secondPage) != 2 {
		t.Errorf("Expected 2 users on second page, got %d", len(secondPage))
	}
	if hasMore {
		t.Error("Second page should be the last page")
	}

	// No overlap between pages
	seen := make(map[string]bool)
	for _, u := range firstPage {
		seen[u.ID] = true
	}
	for _, u := range secondPage {
		if seen[u.ID] {
			t.Errorf("User %q appeared on both pages", u.ID)
		}
	}
}

// ============================================================================
// Test Environment Setup
// ============================================================================

func newUserTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetUsersSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset users schema: %v", err)
	}

	return ctx, repo
}
