package dedupe

import (
	"fmt"
	"testing"

	"scribe/internal/transcript"
)

// rec builds a completed transcript for grouping tests. checksum=="" means
// no checksum (nil).
func rec(id, checksum string, createdAt int64, text string) transcript.Transcript {
	t := transcript.Transcript{
		ID:          id,
		LibraryRaw:  "default",
		LibraryNorm: "default",
		Title:       "episode " + id,
		SourceKind:  transcript.SourceUpload,
		Status:      transcript.StatusCompleted,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if checksum != "" {
		t.Checksum = &checksum
	}
	if text != "" {
		t.Text = &text
		t.WordCount = transcript.CountWords(text)
	}
	return t
}

func TestGroupByChecksum_PartitionsByChecksum(t *testing.T) {
	records := []transcript.Transcript{
		rec("a1", "abc", 100, "one"),
		rec("b1", "def", 200, "two"),
		rec("a2", "abc", 300, "three"),
	}

	groups := GroupByChecksum(records)

	if len(groups) != 2 {
		t.Fatalf("got %d buckets, want 2", len(groups))
	}
	if len(groups["abc"]) != 2 {
		t.Errorf("abc bucket has %d members, want 2", len(groups["abc"]))
	}
	if len(groups["def"]) != 1 {
		t.Errorf("def bucket has %d members, want 1", len(groups["def"]))
	}
	// Relative input order preserved within a bucket
	if groups["abc"][0].ID != "a1" || groups["abc"][1].ID != "a2" {
		t.Errorf("abc bucket order = %s,%s, want a1,a2", groups["abc"][0].ID, groups["abc"][1].ID)
	}
}

func TestGroupByChecksum_ExcludesNilChecksums(t *testing.T) {
	records := []transcript.Transcript{
		rec("a1", "abc", 100, ""),
		rec("p1", "", 200, ""), // pending, no checksum yet
		rec("p2", "", 300, ""),
	}

	groups := GroupByChecksum(records)

	if len(groups) != 1 {
		t.Fatalf("got %d buckets, want 1", len(groups))
	}
	if _, ok := groups[""]; ok {
		t.Error("nil-checksum records must not form a bucket")
	}
}

func TestDuplicateGroups_DropsSingletons(t *testing.T) {
	records := []transcript.Transcript{
		rec("a1", "abc", 100, "x"),
		rec("a2", "abc", 200, "x"),
		rec("b1", "def", 300, "y"), // singleton, not a duplicate
	}

	groups := DuplicateGroups(records)

	if len(groups) != 1 {
		t.Fatalf("got %d duplicate groups, want 1", len(groups))
	}
	if groups[0].Checksum != "abc" {
		t.Errorf("group checksum = %q, want abc", groups[0].Checksum)
	}
	if groups[0].Count() != 2 {
		t.Errorf("Count = %d, want 2", groups[0].Count())
	}
}

func TestDuplicateGroups_SortsNewestFirstStable(t *testing.T) {
	records := []transcript.Transcript{
		rec("old", "abc", 100, "x"),
		rec("tie1", "abc", 500, "x"),
		rec("tie2", "abc", 500, "x"),
		rec("mid", "abc", 300, "x"),
	}

	groups := DuplicateGroups(records)
	if len(groups) != 1 {
		t.Fatalf("got %d groups, want 1", len(groups))
	}

	got := make([]string, 0, 4)
	for _, m := range groups[0].Members {
		got = append(got, m.ID)
	}
	want := []string{"tie1", "tie2", "mid", "old"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("member order = %v, want %v", got, want)
		}
	}

	if groups[0].Newest() != 500 {
		t.Errorf("Newest = %d, want 500", groups[0].Newest())
	}
	if groups[0].Oldest() != 100 {
		t.Errorf("Oldest = %d, want 100", groups[0].Oldest())
	}
}

func TestDuplicateGroup_WastedSizeExcludesNewest(t *testing.T) {
	records := []transcript.Transcript{
		rec("a1", "abc", 100, "aaaa"), // 4 chars
		rec("a2", "abc", 200, "bbbbbb"), // 6 chars
		rec("a3", "abc", 300, "cc"), // 2 chars, newest
	}

	groups := DuplicateGroups(records)
	want := (4 + 6) * transcript.BytesPerChar
	if got := groups[0].WastedSize(); got != want {
		t.Errorf("WastedSize = %d, want %d", got, want)
	}
}

func TestDuplicateGroups_NeverMixesChecksums(t *testing.T) {
	var records []transcript.Transcript
	for i := 0; i < 20; i++ {
		sum := "even"
		if i%2 == 1 {
			sum = "odd"
		}
		records = append(records, rec(fmt.Sprintf("r%d", i), sum, int64(i), "x"))
	}

	for _, g := range DuplicateGroups(records) {
		for _, m := range g.Members {
			if *m.Checksum != g.Checksum {
				t.Fatalf("member %s with checksum %s placed in group %s", m.ID, *m.Checksum, g.Checksum)
			}
		}
	}
}
