package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/ametelkin/onair-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBroadcastLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	started := time.Now().Truncate(time.Second)
	id, err := s.OpenBroadcast(ctx, started)
	if err != nil {
		t.Fatalf("open broadcast: %v", err)
	}
	if id == 0 {
		t.Fatal("expected a non-zero broadcast id")
	}

	if err := s.CloseBroadcast(ctx, id, started.Add(time.Hour)); err != nil {
		t.Fatalf("close broadcast: %v", err)
	}
}

func TestCallLifecycleAndListing(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	started := time.Now().Truncate(time.Second)
	broadcastID, err := s.OpenBroadcast(ctx, started)
	if err != nil {
		t.Fatalf("open broadcast: %v", err)
	}

	anaID, err := s.OpenCall(ctx, broadcastID, "Ana", started.Add(time.Minute))
	if err != nil {
		t.Fatalf("open call: %v", err)
	}
	benID, err := s.OpenCall(ctx, broadcastID, "Ben", started.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("open call: %v", err)
	}

	if err := s.CloseCall(ctx, anaID, started.Add(10*time.Minute), store.OutcomeHangup); err != nil {
		t.Fatalf("close call: %v", err)
	}

	calls, err := s.ListRecentCalls(ctx, 10)
	if err != nil {
		t.Fatalf("list calls: %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", len(calls))
	}

	// Newest first.
	if calls[0].ID != benID || calls[1].ID != anaID {
		t.Fatalf("unexpected order: %d, %d", calls[0].ID, calls[1].ID)
	}

	if calls[0].Outcome != nil || calls[0].EndedAt != nil {
		t.Fatalf("Ben's call is still open, got %+v", calls[0])
	}

	ana := calls[1]
	if ana.ClientName != "Ana" || ana.BroadcastID != broadcastID {
		t.Fatalf("unexpected call row: %+v", ana)
	}
	if ana.Outcome == nil || *ana.Outcome != store.OutcomeHangup {
		t.Fatalf("expected hangup outcome, got %+v", ana.Outcome)
	}
	if ana.EndedAt == nil {
		t.Fatal("expected ended_at to be set")
	}
}

func TestListRecentCallsHonorsLimit(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	started := time.Now().Truncate(time.Second)
	broadcastID, err := s.OpenBroadcast(ctx, started)
	if err != nil {
		t.Fatalf("open broadcast: %v", err)
	}

	for i := 0; i < 5; i++ {
		if _, err := s.OpenCall(ctx, broadcastID, "caller", started.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("open call %d: %v", i, err)
		}
	}

	calls, err := s.ListRecentCalls(ctx, 3)
	if err != nil {
		t.Fatalf("list calls: %v", err)
	}
	if len(calls) != 3 {
		t.Fatalf("expected 3 calls, got %d", len(calls))
	}
}
