//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/prepjet/prepjet/internal/model"
	"github.com/prepjet/prepjet/internal/testutil"
)

// ============================================================================
// Checkout Event Repository Integration Tests
// ============================================================================

func TestIntegrationCheckoutEventRepository_BulkInsert(t *testing.T) {
	ctx, events := newCheckoutEventTestEnv(t)

	batch := []*model.CheckoutEvent{
		testutil.NewTestCheckoutEvent(t, testutil.UniqueID("stream")),
		testutil.NewTestCheckoutEvent(t, testutil.UniqueID("stream")),
	}

	if err := events.BulkInsert(ctx, batch); err != nil {
		t.Fatalf("BulkInsert failed: %v", err)
	}

	recent, err := events.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("Expected 2 events, got %d", len(recent))
	}
}

func TestIntegrationCheckoutEventRepository_BulkInsertIdempotent(t *testing.T) {
	ctx, events := newCheckoutEventTestEnv(t)

	event := testutil.NewTestCheckoutEvent(t, testutil.UniqueID("stream"))
	batch := []*model.CheckoutEvent{event}

	if err := events.BulkInsert(ctx, batch); err != nil {
		t.Fatalf("first BulkInsert failed: %v", err)
	}

	// Re-delivery of the same stream ID must be a no-op.
	replay := testutil.NewTestCheckoutEvent(t, event.EventID)
	if err := events.BulkInsert(ctx, []*model.CheckoutEvent{replay}); err != nil {
		t.Fatalf("replay BulkInsert failed: %v", err)
	}

	recent, err := events.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	if len(recent) != 1 {
		t.Errorf("Expected 1 event after replay, got %d", len(recent))
	}
}

func TestIntegrationCheckoutEventRepository_CountByStatus(t *testing.T) {
	ctx, events := newCheckoutEventTestEnv(t)

	opened := testutil.NewTestCheckoutEvent(t, testutil.UniqueID("stream"))
	notReady := testutil.NewTestCheckoutEvent(t, testutil.UniqueID("stream"))
	notReady.Status = model.CheckoutNotReady
	notReady.CustomerEmail = ""

	if err := events.BulkInsert(ctx, []*model.CheckoutEvent{opened, notReady}); err != nil {
		t.Fatalf("BulkInsert failed: %v", err)
	}

	from := time.Now().UTC().Add(-time.Hour)
	to := time.Now().UTC().Add(time.Hour)
	counts, err := events.CountByStatus(ctx, from, to)
	if err != nil {
		t.Fatalf("CountByStatus failed: %v", err)
	}

	if counts[model.CheckoutOpened] != 1 {
		t.Errorf("Expected 1 opened, got %d", counts[model.CheckoutOpened])
	}
	if counts[model.CheckoutNotReady] != 1 {
		t.Errorf("Expected 1 not_ready, got %d", counts[model.CheckoutNotReady])
	}
}

// ============================================================================
// Test Environment Setup
// ============================================================================

func newCheckoutEventTestEnv(t *testing.T) (context.Context, *CheckoutEventRepository) {
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

	if err := testutil.ResetCheckoutEventsSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset checkout_events schema: %v", err)
	}

	return ctx, NewCheckoutEventRepository(repo)
}
