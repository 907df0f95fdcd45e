package ops

import (
	"context"
	"testing"

	"scribe/internal/db"
	"scribe/internal/errors"
)

func TestDelete_SoftDeletes(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	seedCompleted(t, database, "01DEL1", "default", "Gone", "text", "d1", daysAgo(1))

	out, err := Delete(ctx, database, nil, DeleteInput{ID: "01DEL1"})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !out.Deleted {
		t.Error("Deleted should be true")
	}

	if _, err := db.GetByID(ctx, database, "01DEL1", false); !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("active lookup should fail after delete, got %v", err)
	}
	if _, err := db.GetByID(ctx, database, "01DEL1", true); err != nil {
		t.Errorf("deleted record should still be fetchable with includeDeleted: %v", err)
	}
}

func TestDelete_MissingID(t *testing.T) {
	database := newTestDB(t)

	_, err := Delete(context.Background(), database, nil, DeleteInput{ID: "01NOPE"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}
}

func TestBulkDelete_Idempotent(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	seedCompleted(t, database, "01BD1", "default", "One", "a", "b1", daysAgo(3))
	seedCompleted(t, database, "01BD2", "default", "Two", "b", "b2", daysAgo(2))

	ids := []string{"01BD1", "01BD2", "01MISSING"}
	out, err := BulkDelete(ctx, database, nil, BulkDeleteInput{Library: "default", IDs: ids})
	if err != nil {
		t.Fatalf("BulkDelete failed: %v", err)
	}
	// Unknown IDs are skipped, not errors.
	if out.Deleted != 2 {
		t.Errorf("Deleted = %d, want 2", out.Deleted)
	}

	again, err := BulkDelete(ctx, database, nil, BulkDeleteInput{Library: "default", IDs: ids})
	if err != nil {
		t.Fatalf("repeat BulkDelete failed: %v", err)
	}
	if again.Deleted != 0 {
		t.Errorf("repeat Deleted = %d, want 0", again.Deleted)
	}
	if again.Message != "No matching active transcripts; nothing to do" {
		t.Errorf("repeat Message = %q", again.Message)
	}
}

func TestBulkDelete_RequiresIDs(t *testing.T) {
	database := newTestDB(t)

	_, err := BulkDelete(context.Background(), database, nil, BulkDeleteInput{Library: "default"})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("expected INVALID_REQUEST, got %v", err)
	}
}
