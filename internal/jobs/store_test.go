package jobs

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewStore(rdb, time.Hour)
}

func TestStoreUpsertAndGet(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.Upsert(ctx, &Record{CafeID: 1, Status: StatusQueued}); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	record, err := store.Get(ctx, 1)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if record == nil {
		t.Fatal("expected a record")
	}
	if record.Status != StatusQueued {
		t.Fatalf("expected queued, got %q", record.Status)
	}
	if record.CreatedAt.IsZero() || record.UpdatedAt.IsZero() {
		t.Fatalf("expected timestamps to be set: %+v", record)
	}
	if !record.ExpiresAt.Equal(record.CreatedAt.Add(time.Hour)) {
		t.Fatalf("expected expiry to follow the ttl, got %v", record.ExpiresAt)
	}
}

func TestStoreGetMissing(t *testing.T) {
	store := newTestStore(t)

	record, err := store.Get(context.Background(), 99)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if record != nil {
		t.Fatalf("expected nil for a missing key, got %+v", record)
	}
}

func TestStoreMarkDone(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	seed := &Record{
		CafeID: 2,
		Status: StatusRunning,
		Error:  &ErrorInfo{Code: "SNAPSHOT_FAILED", Message: "previous run"},
	}
	if err := store.Upsert(ctx, seed); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	if err := store.MarkDone(ctx, 2, "cafe-2.png"); err != nil {
		t.Fatalf("MarkDone returned error: %v", err)
	}

	record, err := store.Get(ctx, 2)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if record.Status != StatusSucceeded {
		t.Fatalf("expected done, got %q", record.Status)
	}
	if record.SnapshotPath != "cafe-2.png" {
		t.Fatalf("unexpected snapshot path %q", record.SnapshotPath)
	}
	if record.Error != nil {
		t.Fatalf("expected stale error to be cleared, got %+v", record.Error)
	}
	if !record.CreatedAt.Equal(seed.CreatedAt) {
		t.Fatalf("CreatedAt changed: %v vs %v", record.CreatedAt, seed.CreatedAt)
	}
}

func TestStoreMarkFailed(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.Upsert(ctx, &Record{CafeID: 3, Status: StatusRunning}); err != nil {
		t.Fatalf("Upsert returned error: %v", err)
	}

	errInfo := &ErrorInfo{Code: "SNAPSHOT_FAILED", Message: "fetch static map: unexpected status 500"}
	if err := store.MarkFailed(ctx, 3, errInfo); err != nil {
		t.Fatalf("MarkFailed returned error: %v", err)
	}

	record, err := store.Get(ctx, 3)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if record.Status != StatusFailed {
		t.Fatalf("expected error status, got %q", record.Status)
	}
	if record.Error == nil || record.Error.Code != "SNAPSHOT_FAILED" {
		t.Fatalf("unexpected error info %+v", record.Error)
	}
}

func TestStoreUpdateMissingKey(t *testing.T) {
	store := newTestStore(t)

	err := store.MarkDone(context.Background(), 42, "cafe-42.png")
	if err == nil {
		t.Fatal("expected error for a missing job")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Fatalf("unexpected error %v", err)
	}
}
