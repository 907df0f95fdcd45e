package ops

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"scribe/internal/db"
	"scribe/internal/transcript"
)

// dayStamp returns a unix timestamp n days before the test anchor clock.
var testNow = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func daysAgo(n int) int64 {
	return testNow.Add(-time.Duration(n) * 24 * time.Hour).Unix()
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := db.Init(t.TempDir())
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

// seedCompleted inserts a completed transcript directly, pinning created_at
// so age-based classification is reproducible.
func seedCompleted(t *testing.T, database *sql.DB, id, library, title, text, checksum string, createdAt int64) {
	t.Helper()
	rec := &transcript.Transcript{
		ID:          id,
		LibraryRaw:  library,
		LibraryNorm: transcript.Normalize(library),
		Title:       title,
		SourceKind:  transcript.SourceUpload,
		Status:      transcript.StatusCompleted,
		Text:        &text,
		Checksum:    &checksum,
		WordCount:   transcript.CountWords(text),
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if err := db.Insert(context.Background(), database, rec); err != nil {
		t.Fatalf("Insert(%s) failed: %v", id, err)
	}
}

// seedDuplicateSet inserts n completed transcripts sharing one checksum,
// one per entry of ageDays (oldest last in the slice does not matter; the
// engine sorts). IDs are prefix-1..prefix-n.
func seedDuplicateSet(t *testing.T, database *sql.DB, prefix, library, checksum string, ageDays []int) []string {
	t.Helper()
	ids := make([]string, 0, len(ageDays))
	for i, age := range ageDays {
		id := fmt.Sprintf("%s-%d", prefix, i+1)
		seedCompleted(t, database, id, library, "Weekly sync", "the same words", checksum, daysAgo(age))
		ids = append(ids, id)
	}
	return ids
}

func protectRecord(t *testing.T, database *sql.DB, id string) {
	t.Helper()
	if _, err := db.BulkSetProtected(context.Background(), database, []string{id}, true); err != nil {
		t.Fatalf("BulkSetProtected(%s) failed: %v", id, err)
	}
}
