package ops

import (
	"context"
	"testing"

	"scribe/internal/errors"
	"scribe/internal/event"
)

func TestPurge_RemovesOnlySoftDeleted(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	bus := event.NewBus()

	seedCompleted(t, database, "01GONE", "default", "Old recording", "words", "aa11", daysAgo(40))
	seedCompleted(t, database, "01KEPT", "default", "Still wanted", "words", "bb22", daysAgo(40))

	if _, err := Delete(ctx, database, bus, DeleteInput{ID: "01GONE"}); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	out, err := Purge(ctx, database, PurgeInput{})
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if out.Purged != 1 {
		t.Errorf("purged = %d, want 1", out.Purged)
	}

	// The purged row is gone even when deleted records are requested.
	if _, err := Fetch(ctx, database, FetchInput{ID: "01GONE", IncludeDeleted: true}); err == nil {
		t.Error("expected purged record to be unfetchable")
	} else if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}

	// The active row survives.
	if _, err := Fetch(ctx, database, FetchInput{ID: "01KEPT"}); err != nil {
		t.Errorf("active record should survive purge: %v", err)
	}
}

func TestPurge_NothingToDo(t *testing.T) {
	database := newTestDB(t)

	out, err := Purge(context.Background(), database, PurgeInput{})
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if out.Purged != 0 {
		t.Errorf("purged = %d, want 0", out.Purged)
	}
	if out.Message != "No deleted transcripts to purge" {
		t.Errorf("message = %q", out.Message)
	}
}

func TestPurge_LibraryFilter(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()
	bus := event.NewBus()

	seedCompleted(t, database, "01WORK", "work", "Work call", "words", "cc33", daysAgo(5))
	seedCompleted(t, database, "01HOME", "home", "Home movie", "words", "dd44", daysAgo(5))
	if _, err := BulkDelete(ctx, database, bus, BulkDeleteInput{Library: "work", IDs: []string{"01WORK"}}); err != nil {
		t.Fatalf("BulkDelete failed: %v", err)
	}
	if _, err := BulkDelete(ctx, database, bus, BulkDeleteInput{Library: "home", IDs: []string{"01HOME"}}); err != nil {
		t.Fatalf("BulkDelete failed: %v", err)
	}

	library := "Work"
	out, err := Purge(ctx, database, PurgeInput{Library: &library})
	if err != nil {
		t.Fatalf("Purge failed: %v", err)
	}
	if out.Purged != 1 {
		t.Errorf("purged = %d, want 1 (library filter normalized)", out.Purged)
	}

	// The other library's deleted record is untouched.
	if _, err := Fetch(ctx, database, FetchInput{ID: "01HOME", IncludeDeleted: true}); err != nil {
		t.Errorf("deleted record outside the filter should remain: %v", err)
	}
}
