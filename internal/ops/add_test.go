package ops

import (
	"context"
	"testing"

	"scribe/internal/db"
	"scribe/internal/errors"
	"scribe/internal/transcript"
)

func TestAdd_CreatesPendingWithTags(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	ref := "meeting.mp4"
	out, err := Add(ctx, database, nil, AddInput{
		Library:    "Work",
		Title:      "Weekly sync",
		SourceKind: transcript.SourceUpload,
		SourceRef:  &ref,
		Tags:       []string{"Meetings", "weekly"},
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if out.Status != transcript.StatusPending {
		t.Errorf("Status = %q, want pending", out.Status)
	}

	rec, err := db.GetByID(ctx, database, out.ID, false)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if rec.LibraryNorm != "work" || rec.LibraryRaw != "Work" {
		t.Errorf("library = %q/%q, want work/Work", rec.LibraryNorm, rec.LibraryRaw)
	}
	if rec.Checksum != nil {
		t.Error("pending transcript must not have a checksum yet")
	}
	if len(rec.Tags) != 2 {
		t.Fatalf("tags = %d, want 2", len(rec.Tags))
	}
	if rec.Tags[0].Name != "meetings" {
		t.Errorf("tag name = %q, want normalized %q", rec.Tags[0].Name, "meetings")
	}
}

func TestAdd_Validation(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	if _, err := Add(ctx, database, nil, AddInput{Title: "   "}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("blank title: expected INVALID_REQUEST, got %v", err)
	}
	if _, err := Add(ctx, database, nil, AddInput{
		Title: "x", SourceKind: transcript.SourceKind("carrier-pigeon"),
	}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("bad source kind: expected INVALID_REQUEST, got %v", err)
	}
}

func TestComplete_DerivesChecksumFromText(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	added, err := Add(ctx, database, nil, AddInput{Title: "Talk"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	text := "hello world hello"
	out, err := Complete(ctx, database, nil, CompleteInput{ID: added.ID, Text: text})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if out.Checksum != transcript.Checksum([]byte(text)) {
		t.Errorf("derived checksum mismatch: %q", out.Checksum)
	}
	if out.WordCount != 3 {
		t.Errorf("WordCount = %d, want 3", out.WordCount)
	}

	rec, err := db.GetByID(ctx, database, added.ID, false)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if rec.Status != transcript.StatusCompleted {
		t.Errorf("Status = %q, want completed", rec.Status)
	}
	if rec.Text == nil || *rec.Text != text {
		t.Error("text not stored")
	}
}

func TestComplete_OnlyFromPendingOrProcessing(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	added, err := Add(ctx, database, nil, AddInput{Title: "Talk"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := Complete(ctx, database, nil, CompleteInput{ID: added.ID, Text: "first"}); err != nil {
		t.Fatalf("first Complete failed: %v", err)
	}

	_, err = Complete(ctx, database, nil, CompleteInput{ID: added.ID, Text: "second"})
	if !errors.Is(err, errors.ErrConflict) {
		t.Errorf("completing twice: expected CONFLICT, got %v", err)
	}
}

func TestFail_MarksFailedWithReason(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	added, err := Add(ctx, database, nil, AddInput{Title: "Broken upload"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	out, err := Fail(ctx, database, nil, FailInput{ID: added.ID, Reason: "codec unsupported"})
	if err != nil {
		t.Fatalf("Fail failed: %v", err)
	}
	if out.Status != transcript.StatusFailed {
		t.Errorf("Status = %q, want failed", out.Status)
	}

	entries, err := db.ListActivity(ctx, database, "default", 10)
	if err != nil {
		t.Fatalf("ListActivity failed: %v", err)
	}
	found := false
	for _, e := range entries {
		if e.Action == "fail" {
			found = true
			if e.Detail != "Broken upload: codec unsupported" {
				t.Errorf("fail detail = %q", e.Detail)
			}
		}
	}
	if !found {
		t.Error("fail action missing from activity log")
	}
}

func TestFetch_TextToggle(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	added, err := Add(ctx, database, nil, AddInput{Title: "Talk"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := Complete(ctx, database, nil, CompleteInput{ID: added.ID, Text: "full body"}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}

	withText, err := Fetch(ctx, database, FetchInput{ID: added.ID})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if withText.Text != "full body" {
		t.Errorf("Text = %q, want full body", withText.Text)
	}

	noText := false
	without, err := Fetch(ctx, database, FetchInput{ID: added.ID, IncludeText: &noText})
	if err != nil {
		t.Fatalf("Fetch without text failed: %v", err)
	}
	if without.Text != "" {
		t.Errorf("Text should be omitted, got %q", without.Text)
	}
}

func TestList_FiltersByStatusAndTag(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	a, _ := Add(ctx, database, nil, AddInput{Title: "Done", Tags: []string{"keep"}})
	if _, err := Complete(ctx, database, nil, CompleteInput{ID: a.ID, Text: "done text"}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if _, err := Add(ctx, database, nil, AddInput{Title: "Still pending"}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	status := "completed"
	out, err := List(ctx, database, ListInput{Library: "default", Status: &status})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(out.Items) != 1 || out.Items[0].Title != "Done" {
		t.Errorf("status filter returned %d items", len(out.Items))
	}

	tag := "keep"
	out, err = List(ctx, database, ListInput{Library: "default", Tag: &tag})
	if err != nil {
		t.Fatalf("List by tag failed: %v", err)
	}
	if len(out.Items) != 1 || out.Items[0].ID != a.ID {
		t.Errorf("tag filter returned %d items", len(out.Items))
	}

	bad := "sideways"
	if _, err := List(ctx, database, ListInput{Status: &bad}); !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("bad status: expected INVALID_REQUEST, got %v", err)
	}
}

func TestTagAttachDetach(t *testing.T) {
	database := newTestDB(t)
	ctx := context.Background()

	added, err := Add(ctx, database, nil, AddInput{Title: "Tagged"})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	attached, err := TagAttach(ctx, database, TagAttachInput{ID: added.ID, Name: "Interviews"})
	if err != nil {
		t.Fatalf("TagAttach failed: %v", err)
	}
	if attached.Tag.Name != "interviews" {
		t.Errorf("attached tag = %q, want interviews", attached.Tag.Name)
	}

	// Attaching again is a no-op, not a duplicate row.
	if _, err := TagAttach(ctx, database, TagAttachInput{ID: added.ID, Name: "interviews"}); err != nil {
		t.Fatalf("repeat TagAttach failed: %v", err)
	}
	rec, err := db.GetByID(ctx, database, added.ID, false)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(rec.Tags) != 1 {
		t.Fatalf("tags = %d, want 1", len(rec.Tags))
	}

	if _, err := TagDetach(ctx, database, TagAttachInput{ID: added.ID, Name: "interviews"}); err != nil {
		t.Fatalf("TagDetach failed: %v", err)
	}
	rec, err = db.GetByID(ctx, database, added.ID, false)
	if err != nil {
		t.Fatalf("GetByID after detach failed: %v", err)
	}
	if len(rec.Tags) != 0 {
		t.Errorf("tags = %d after detach, want 0", len(rec.Tags))
	}

	// Detaching a tag that is not attached is a no-op.
	if _, err := TagDetach(ctx, database, TagAttachInput{ID: added.ID, Name: "interviews"}); err != nil {
		t.Errorf("detach of unattached tag should be a no-op: %v", err)
	}
}
